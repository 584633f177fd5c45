// Package catalog holds the tenant-scoped records the scheduling engine
// reads: branches, services, employees and their weekly schedules, clients,
// and day-specific schedule exceptions.
package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TimeRange is a half-open [Start,End) interval in minutes from midnight.
type TimeRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Valid reports whether the range is well-formed within a single day.
func (r TimeRange) Valid() bool {
	return r.Start >= 0 && r.End <= 24*60 && r.Start < r.End
}

// Contains reports whether [start,end) lies fully inside the range.
func (r TimeRange) Contains(start, end int) bool {
	return start >= r.Start && end <= r.End
}

// Overlaps reports whether two half-open ranges intersect.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start < other.End && other.Start < r.End
}

// WeeklySchedule holds working ranges per weekday, indexed by time.Weekday
// (0 = Sunday). An empty entry means the employee does not work that day.
type WeeklySchedule [7][]TimeRange

// RangesFor returns the working ranges for a weekday.
func (w WeeklySchedule) RangesFor(day time.Weekday) []TimeRange {
	return w[int(day)]
}

// Branch is a physical location belonging to a tenant.
type Branch struct {
	ID         uuid.UUID   `json:"id"`
	TenantID   string      `json:"tenant_id"`
	Name       string      `json:"name"`
	Address    string      `json:"address,omitempty"`
	ServiceIDs []uuid.UUID `json:"service_ids,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Service is a bookable offering. DurationMinutes and TotalSessions are
// snapshotted onto appointments at booking time.
type Service struct {
	ID              uuid.UUID `json:"id"`
	TenantID        string    `json:"tenant_id"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"duration_minutes"`
	TotalSessions   int       `json:"total_sessions"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

// Validate checks the service invariants.
func (s *Service) Validate() error {
	if s.TenantID == "" {
		return errors.New("catalog: service tenant id required")
	}
	if s.Name == "" {
		return errors.New("catalog: service name required")
	}
	if s.DurationMinutes <= 0 {
		return errors.New("catalog: service duration must be positive")
	}
	if s.TotalSessions < 1 {
		return errors.New("catalog: service total sessions must be at least 1")
	}
	return nil
}

// Employee works at one branch and may perform the services in ServiceIDs.
// Inactive employees are excluded from availability.
type Employee struct {
	ID         uuid.UUID      `json:"id"`
	TenantID   string         `json:"tenant_id"`
	BranchID   uuid.UUID      `json:"branch_id"`
	Name       string         `json:"name"`
	Active     bool           `json:"active"`
	Weekly     WeeklySchedule `json:"weekly_schedule"`
	ServiceIDs []uuid.UUID    `json:"service_ids,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// CanPerform reports whether the employee's capability set includes the service.
func (e *Employee) CanPerform(serviceID uuid.UUID) bool {
	for _, id := range e.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

// Client is a person who books appointments with a tenant.
type Client struct {
	ID        uuid.UUID `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ExceptionType distinguishes the two kinds of day overrides.
type ExceptionType string

const (
	// ExceptionUnavailable marks the whole day as non-working.
	ExceptionUnavailable ExceptionType = "unavailable"
	// ExceptionSpecialHours replaces the day's working ranges entirely.
	ExceptionSpecialHours ExceptionType = "special_hours"
)

// ScheduleException overrides an employee's weekly pattern for one date.
type ScheduleException struct {
	TenantID   string        `json:"tenant_id"`
	EmployeeID uuid.UUID     `json:"employee_id"`
	Date       time.Time     `json:"date"`
	Type       ExceptionType `json:"type"`
	Ranges     []TimeRange   `json:"ranges,omitempty"`
}

// Validate checks the exception invariants.
func (x *ScheduleException) Validate() error {
	if x.TenantID == "" {
		return errors.New("catalog: exception tenant id required")
	}
	if x.EmployeeID == uuid.Nil {
		return errors.New("catalog: exception employee id required")
	}
	switch x.Type {
	case ExceptionUnavailable:
	case ExceptionSpecialHours:
		for _, r := range x.Ranges {
			if !r.Valid() {
				return errors.New("catalog: exception range invalid")
			}
		}
	default:
		return errors.New("catalog: unknown exception type")
	}
	return nil
}

// DateKey formats a date the way exception lookups key it.
func DateKey(date time.Time) string {
	return date.Format("2006-01-02")
}

// ParseDate parses a YYYY-MM-DD boundary date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
