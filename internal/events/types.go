package events

import (
	"time"

	"github.com/google/uuid"
)

// Event type identifiers, versioned so payloads can evolve.
const (
	TypeAppointmentConfirmed = "appointment.confirmed.v1"
	TypeAppointmentCancelled = "appointment.cancelled.v1"
)

// AppointmentConfirmedV1 is emitted after a booking commits.
type AppointmentConfirmedV1 struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	TenantID      string    `json:"tenant_id"`
	BranchID      uuid.UUID `json:"branch_id"`
	ServiceID     uuid.UUID `json:"service_id"`
	ServiceName   string    `json:"service_name"`
	EmployeeID    uuid.UUID `json:"employee_id"`
	EmployeeName  string    `json:"employee_name"`
	ClientID      uuid.UUID `json:"client_id"`
	ClientName    string    `json:"client_name"`
	StartsAt      time.Time `json:"starts_at"`
	DurationMin   int       `json:"duration_minutes"`
	TotalSessions int       `json:"total_sessions"`
}

// AppointmentCancelledV1 is emitted after a cancellation commits.
type AppointmentCancelledV1 struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	TenantID      string    `json:"tenant_id"`
	ServiceName   string    `json:"service_name"`
	EmployeeName  string    `json:"employee_name"`
	ClientName    string    `json:"client_name"`
	StartsAt      time.Time `json:"starts_at"`
}
