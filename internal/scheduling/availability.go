package scheduling

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reservly/booking-platform/internal/catalog"
)

const (
	// DayStartMinute is the earliest candidate start (06:00).
	DayStartMinute = 6 * 60
	// DayEndMinute is the latest minute an appointment may end (23:00).
	DayEndMinute = 23 * 60

	defaultWorkers = 4
)

// StepFor returns the slot grid step for a service duration: the largest
// of 60, 45, 30 that does not exceed the duration, else 15.
func StepFor(durationMinutes int) int {
	switch {
	case durationMinutes >= 60:
		return 60
	case durationMinutes >= 45:
		return 45
	case durationMinutes >= 30:
		return 30
	default:
		return 15
	}
}

// Slot is one bookable start time with every employee free to take it.
type Slot struct {
	StartMinute int         `json:"start_minute"`
	EmployeeIDs []uuid.UUID `json:"employee_ids"`
}

// Calculator computes the open slots of a branch for one service and date.
type Calculator struct {
	resolver  *Resolver
	occupancy OccupancySource
	workers   int
}

// NewCalculator creates an availability calculator. workers bounds the
// per-employee fan-out; values below 1 fall back to the default.
func NewCalculator(resolver *Resolver, occupancy OccupancySource, workers int) *Calculator {
	if resolver == nil {
		panic("scheduling: resolver required")
	}
	if occupancy == nil {
		panic("scheduling: occupancy source required")
	}
	if workers < 1 {
		workers = defaultWorkers
	}
	return &Calculator{resolver: resolver, occupancy: occupancy, workers: workers}
}

// Availability returns the sorted open slots for svc on date across the
// given employees. Employees that are inactive or cannot perform the
// service are skipped; no qualified employee yields an empty slice.
func (c *Calculator) Availability(ctx context.Context, tenantID string, svc *catalog.Service, employees []*catalog.Employee, date time.Time) ([]Slot, error) {
	var candidates []*catalog.Employee
	for _, emp := range employees {
		if emp.Active && emp.CanPerform(svc.ID) {
			candidates = append(candidates, emp)
		}
	}
	if len(candidates) == 0 {
		return []Slot{}, nil
	}

	ids := make([]uuid.UUID, len(candidates))
	for i, emp := range candidates {
		ids[i] = emp.ID
	}
	busy, err := c.occupancy.BusyIntervals(ctx, tenantID, ids, date)
	if err != nil {
		return nil, fmt.Errorf("scheduling: load busy intervals: %w", err)
	}

	free := make(map[uuid.UUID][]int, len(candidates))
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)

	jobs := make(chan *catalog.Employee)
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for emp := range jobs {
				starts, err := c.startsForEmployee(ctx, tenantID, emp, svc, date, busy[emp.ID])
				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
				} else if len(starts) > 0 {
					free[emp.ID] = starts
				}
				mu.Unlock()
			}
		}()
	}
	for _, emp := range candidates {
		jobs <- emp
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return mergeSlots(free), nil
}

// startsForEmployee walks the slot grid and keeps every start whose full
// appointment fits a working range and touches no busy interval.
func (c *Calculator) startsForEmployee(ctx context.Context, tenantID string, emp *catalog.Employee, svc *catalog.Service, date time.Time, busy []Interval) ([]int, error) {
	ranges, err := c.resolver.WorkingRanges(ctx, tenantID, emp, date)
	if err != nil {
		return nil, err
	}
	if len(ranges) == 0 {
		return nil, nil
	}

	step := StepFor(svc.DurationMinutes)
	var starts []int
	for start := DayStartMinute; start+svc.DurationMinutes <= DayEndMinute; start += step {
		end := start + svc.DurationMinutes
		if !withinRanges(ranges, start, end) {
			continue
		}
		if overlapsAny(busy, start, end) {
			continue
		}
		starts = append(starts, start)
	}
	return starts, nil
}

func withinRanges(ranges []catalog.TimeRange, start, end int) bool {
	for _, r := range ranges {
		if r.Contains(start, end) {
			return true
		}
	}
	return false
}

func overlapsAny(busy []Interval, start, end int) bool {
	for _, b := range busy {
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// mergeSlots inverts per-employee start lists into per-start employee
// lists, sorted for deterministic output.
func mergeSlots(free map[uuid.UUID][]int) []Slot {
	byStart := make(map[int][]uuid.UUID)
	for empID, starts := range free {
		for _, start := range starts {
			byStart[start] = append(byStart[start], empID)
		}
	}

	slots := make([]Slot, 0, len(byStart))
	for start, empIDs := range byStart {
		sort.Slice(empIDs, func(i, j int) bool {
			return empIDs[i].String() < empIDs[j].String()
		})
		slots = append(slots, Slot{StartMinute: start, EmployeeIDs: empIDs})
	}
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].StartMinute < slots[j].StartMinute
	})
	return slots
}

// FormatMinute renders minutes from midnight as HH:MM for API responses.
func FormatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
