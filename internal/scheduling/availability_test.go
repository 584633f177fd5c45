package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservly/booking-platform/internal/catalog"
)

type stubOccupancy struct {
	busy map[uuid.UUID][]Interval
}

func (s *stubOccupancy) BusyIntervals(ctx context.Context, tenantID string, employeeIDs []uuid.UUID, date time.Time) (map[uuid.UUID][]Interval, error) {
	return s.busy, nil
}

func TestStepFor(t *testing.T) {
	cases := []struct {
		duration int
		want     int
	}{
		{90, 60},
		{60, 60},
		{59, 45},
		{45, 45},
		{44, 30},
		{30, 30},
		{29, 15},
		{15, 15},
		{10, 15},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StepFor(tc.duration), "duration %d", tc.duration)
	}
}

func TestCalculator_BusySlotExcluded(t *testing.T) {
	repo := catalog.NewInMemoryRepository()
	svc := &catalog.Service{ID: uuid.New(), TenantID: "tenant-a", Name: "Massage", DurationMinutes: 30, TotalSessions: 1, Active: true}
	emp := mondayEmployee("tenant-a")
	emp.ServiceIDs = []uuid.UUID{svc.ID}

	// Existing appointment 10:00-10:30.
	occ := &stubOccupancy{busy: map[uuid.UUID][]Interval{
		emp.ID: {{Start: 600, End: 630}},
	}}
	calc := NewCalculator(NewResolver(repo), occ, 2)
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	slots, err := calc.Availability(context.Background(), "tenant-a", svc, []*catalog.Employee{emp}, monday)
	require.NoError(t, err)

	starts := make([]int, len(slots))
	for i, s := range slots {
		starts[i] = s.StartMinute
	}

	// 09:00-17:00 working day, 30-minute grid, 10:00 taken.
	assert.Contains(t, starts, 540)
	assert.Contains(t, starts, 570)
	assert.NotContains(t, starts, 600)
	assert.Contains(t, starts, 630)
	// Last start that still fits before 17:00.
	assert.Contains(t, starts, 990)
	assert.NotContains(t, starts, 1020)

	for _, s := range slots {
		assert.Equal(t, []uuid.UUID{emp.ID}, s.EmployeeIDs)
	}
}

func TestCalculator_OperatingWindowBounds(t *testing.T) {
	repo := catalog.NewInMemoryRepository()
	svc := &catalog.Service{ID: uuid.New(), TenantID: "tenant-a", Name: "Late", DurationMinutes: 60, TotalSessions: 1, Active: true}

	emp := &catalog.Employee{ID: uuid.New(), TenantID: "tenant-a", Name: "Noa", Active: true, ServiceIDs: []uuid.UUID{svc.ID}}
	// Claims a 04:00-24:00 working day; the operating window still bounds slots.
	emp.Weekly[time.Monday] = []catalog.TimeRange{{Start: 240, End: 1440}}

	calc := NewCalculator(NewResolver(repo), &stubOccupancy{}, 1)
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	slots, err := calc.Availability(context.Background(), "tenant-a", svc, []*catalog.Employee{emp}, monday)
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	assert.Equal(t, DayStartMinute, slots[0].StartMinute)
	last := slots[len(slots)-1]
	assert.LessOrEqual(t, last.StartMinute+svc.DurationMinutes, DayEndMinute)
	assert.Equal(t, 1320, last.StartMinute) // 22:00 start for a 60-minute service
}

func TestCalculator_FiltersUnqualifiedEmployees(t *testing.T) {
	repo := catalog.NewInMemoryRepository()
	svc := &catalog.Service{ID: uuid.New(), TenantID: "tenant-a", Name: "Facial", DurationMinutes: 30, TotalSessions: 1, Active: true}
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	qualified := mondayEmployee("tenant-a")
	qualified.ServiceIDs = []uuid.UUID{svc.ID}

	inactive := mondayEmployee("tenant-a")
	inactive.ServiceIDs = []uuid.UUID{svc.ID}
	inactive.Active = false

	unskilled := mondayEmployee("tenant-a")

	calc := NewCalculator(NewResolver(repo), &stubOccupancy{}, 3)
	slots, err := calc.Availability(context.Background(), "tenant-a", svc,
		[]*catalog.Employee{qualified, inactive, unskilled}, monday)
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	for _, s := range slots {
		assert.Equal(t, []uuid.UUID{qualified.ID}, s.EmployeeIDs)
	}
}

func TestCalculator_NoQualifiedEmployees(t *testing.T) {
	repo := catalog.NewInMemoryRepository()
	svc := &catalog.Service{ID: uuid.New(), TenantID: "tenant-a", Name: "Facial", DurationMinutes: 30, TotalSessions: 1, Active: true}
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	calc := NewCalculator(NewResolver(repo), &stubOccupancy{}, 2)
	slots, err := calc.Availability(context.Background(), "tenant-a", svc, nil, monday)
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.NotNil(t, slots)
}

func TestCalculator_Deterministic(t *testing.T) {
	repo := catalog.NewInMemoryRepository()
	svc := &catalog.Service{ID: uuid.New(), TenantID: "tenant-a", Name: "Massage", DurationMinutes: 45, TotalSessions: 1, Active: true}
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	employees := make([]*catalog.Employee, 0, 5)
	for i := 0; i < 5; i++ {
		emp := mondayEmployee("tenant-a")
		emp.ServiceIDs = []uuid.UUID{svc.ID}
		employees = append(employees, emp)
	}

	calc := NewCalculator(NewResolver(repo), &stubOccupancy{}, 4)

	first, err := calc.Availability(context.Background(), "tenant-a", svc, employees, monday)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := calc.Availability(context.Background(), "tenant-a", svc, employees, monday)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCalculator_UnavailableOverrideRemovesEmployee(t *testing.T) {
	repo := catalog.NewInMemoryRepository()
	svc := &catalog.Service{ID: uuid.New(), TenantID: "tenant-a", Name: "Massage", DurationMinutes: 30, TotalSessions: 1, Active: true}
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	emp := mondayEmployee("tenant-a")
	emp.ServiceIDs = []uuid.UUID{svc.ID}

	require.NoError(t, repo.UpsertScheduleException(context.Background(), &catalog.ScheduleException{
		TenantID:   "tenant-a",
		EmployeeID: emp.ID,
		Date:       monday,
		Type:       catalog.ExceptionUnavailable,
	}))

	calc := NewCalculator(NewResolver(repo), &stubOccupancy{}, 2)
	slots, err := calc.Availability(context.Background(), "tenant-a", svc, []*catalog.Employee{emp}, monday)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestFormatMinute(t *testing.T) {
	assert.Equal(t, "06:00", FormatMinute(360))
	assert.Equal(t, "09:30", FormatMinute(570))
	assert.Equal(t, "23:00", FormatMinute(1380))
}
