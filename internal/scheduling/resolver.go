// Package scheduling computes bookable slots from employee schedules,
// day overrides, and existing appointments.
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/reservly/booking-platform/internal/catalog"
)

// ExceptionSource yields the day override for (employee, date), or
// catalog.ErrExceptionNotFound when the weekly pattern applies.
// catalog.Repository satisfies it.
type ExceptionSource interface {
	GetScheduleException(ctx context.Context, tenantID string, employeeID uuid.UUID, date time.Time) (*catalog.ScheduleException, error)
}

// Resolver produces the effective working ranges of an employee for one
// date: a day override, when present, fully replaces the weekly pattern.
type Resolver struct {
	exceptions ExceptionSource
}

// NewResolver creates a schedule resolver.
func NewResolver(exceptions ExceptionSource) *Resolver {
	if exceptions == nil {
		panic("scheduling: exception source required")
	}
	return &Resolver{exceptions: exceptions}
}

// WorkingRanges resolves the employee's working ranges on date. An
// "unavailable" override or an absent weekday entry yields an empty set.
func (r *Resolver) WorkingRanges(ctx context.Context, tenantID string, emp *catalog.Employee, date time.Time) ([]catalog.TimeRange, error) {
	exc, err := r.exceptions.GetScheduleException(ctx, tenantID, emp.ID, date)
	if err != nil {
		if errors.Is(err, catalog.ErrExceptionNotFound) {
			return emp.Weekly.RangesFor(date.Weekday()), nil
		}
		return nil, fmt.Errorf("scheduling: resolve schedule for employee %s: %w", emp.ID, err)
	}

	switch exc.Type {
	case catalog.ExceptionUnavailable:
		return nil, nil
	case catalog.ExceptionSpecialHours:
		return exc.Ranges, nil
	default:
		return nil, fmt.Errorf("scheduling: unknown exception type %q for employee %s", exc.Type, emp.ID)
	}
}
