package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotTaken indicates the requested interval is no longer free for
	// the employee. Callers should re-query availability.
	ErrSlotTaken = errors.New("booking: slot already taken")
	// ErrAppointmentNotFound indicates no appointment exists for the tenant.
	ErrAppointmentNotFound = errors.New("booking: appointment not found")
	// ErrNoEmployeeAvailable indicates no qualified employee is free for
	// the requested slot.
	ErrNoEmployeeAvailable = errors.New("booking: no employee available for slot")
	// ErrAlreadyCancelled indicates the appointment was cancelled before.
	ErrAlreadyCancelled = errors.New("booking: appointment already cancelled")
)

// PersistenceError wraps storage failures with the operation that hit them.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("booking: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
