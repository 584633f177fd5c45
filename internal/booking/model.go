// Package booking creates, reads, and cancels appointments, including the
// multi-session expansion for services sold as a series.
package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Session statuses. The booked visit is "pending"; the remaining visits of
// a series are placeholders to be scheduled later.
const (
	SessionPending        = "pending"
	SessionScheduledLater = "scheduled_later"
)

// Appointment is one confirmed visit. Duration and total sessions are
// snapshots of the service at booking time, so later catalog edits never
// move an existing appointment.
type Appointment struct {
	ID              uuid.UUID `json:"id"`
	TenantID        string    `json:"tenant_id"`
	BranchID        uuid.UUID `json:"branch_id"`
	ServiceID       uuid.UUID `json:"service_id"`
	EmployeeID      uuid.UUID `json:"employee_id"`
	ClientID        uuid.UUID `json:"client_id"`
	Date            time.Time `json:"-"`
	StartMinute     int       `json:"start_minute"`
	DurationMinutes int       `json:"duration_minutes"`
	TotalSessions   int       `json:"total_sessions"`
	StartsAt        time.Time `json:"starts_at"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`

	// Display names resolved from the catalog, populated on reads.
	ServiceName  string `json:"service_name,omitempty"`
	EmployeeName string `json:"employee_name,omitempty"`
	ClientName   string `json:"client_name,omitempty"`

	Sessions []*Session `json:"sessions,omitempty"`
}

// EndMinute is the exclusive end of the appointment's interval.
func (a *Appointment) EndMinute() int {
	return a.StartMinute + a.DurationMinutes
}

// Session is one visit in a service series. Number 1 is the booked visit;
// 2..N are unscheduled placeholders.
type Session struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	Number        int       `json:"number"`
	Status        string    `json:"status"`
}

// BookRequest carries the inputs to create an appointment. A nil EmployeeID
// means "any available employee".
type BookRequest struct {
	TenantID   string
	BranchID   uuid.UUID
	ServiceID  uuid.UUID
	EmployeeID uuid.UUID
	ClientID   uuid.UUID
	Date       time.Time
	StartMin   int
}

// Validate checks the request invariants that hold before any lookup.
func (r *BookRequest) Validate() error {
	if r.TenantID == "" {
		return errors.New("booking: tenant id required")
	}
	if r.BranchID == uuid.Nil {
		return errors.New("booking: branch id required")
	}
	if r.ServiceID == uuid.Nil {
		return errors.New("booking: service id required")
	}
	if r.ClientID == uuid.Nil {
		return errors.New("booking: client id required")
	}
	if r.Date.IsZero() {
		return errors.New("booking: date required")
	}
	if r.StartMin < 0 || r.StartMin >= 24*60 {
		return errors.New("booking: start minute out of range")
	}
	return nil
}

// StartsAt combines a date and a minute-of-day into the appointment's wall
// clock start, kept in UTC.
func StartsAt(date time.Time, startMinute int) time.Time {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return d.Add(time.Duration(startMinute) * time.Minute)
}
