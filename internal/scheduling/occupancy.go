package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Interval is a half-open [Start,End) busy window in minutes from midnight.
type Interval struct {
	Start int
	End   int
}

// Overlaps reports whether two half-open intervals intersect.
func (i Interval) Overlaps(start, end int) bool {
	return i.Start < end && start < i.End
}

// OccupancySource yields the confirmed busy intervals per employee for one
// date. Cancelled appointments never appear. The booking repository
// satisfies it.
type OccupancySource interface {
	BusyIntervals(ctx context.Context, tenantID string, employeeIDs []uuid.UUID, date time.Time) (map[uuid.UUID][]Interval, error)
}
