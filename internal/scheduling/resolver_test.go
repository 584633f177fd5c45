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

func mondayEmployee(tenantID string) *catalog.Employee {
	emp := &catalog.Employee{
		ID:       uuid.New(),
		TenantID: tenantID,
		BranchID: uuid.New(),
		Name:     "Ana",
		Active:   true,
	}
	emp.Weekly[time.Monday] = []catalog.TimeRange{{Start: 540, End: 1020}} // 09:00-17:00
	return emp
}

func TestResolver_WeeklyPattern(t *testing.T) {
	repo := catalog.NewInMemoryRepository()
	resolver := NewResolver(repo)
	emp := mondayEmployee("tenant-a")

	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, monday.Weekday())

	ranges, err := resolver.WorkingRanges(context.Background(), "tenant-a", emp, monday)
	require.NoError(t, err)
	assert.Equal(t, []catalog.TimeRange{{Start: 540, End: 1020}}, ranges)

	// No weekday entry means no working ranges.
	sunday := monday.AddDate(0, 0, -1)
	ranges, err = resolver.WorkingRanges(context.Background(), "tenant-a", emp, sunday)
	require.NoError(t, err)
	assert.Empty(t, ranges)
}

func TestResolver_UnavailableOverride(t *testing.T) {
	repo := catalog.NewInMemoryRepository()
	resolver := NewResolver(repo)
	emp := mondayEmployee("tenant-a")
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.UpsertScheduleException(context.Background(), &catalog.ScheduleException{
		TenantID:   "tenant-a",
		EmployeeID: emp.ID,
		Date:       monday,
		Type:       catalog.ExceptionUnavailable,
	}))

	ranges, err := resolver.WorkingRanges(context.Background(), "tenant-a", emp, monday)
	require.NoError(t, err)
	assert.Empty(t, ranges)
}

func TestResolver_SpecialHoursReplaceWeekly(t *testing.T) {
	repo := catalog.NewInMemoryRepository()
	resolver := NewResolver(repo)
	emp := mondayEmployee("tenant-a")
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.UpsertScheduleException(context.Background(), &catalog.ScheduleException{
		TenantID:   "tenant-a",
		EmployeeID: emp.ID,
		Date:       monday,
		Type:       catalog.ExceptionSpecialHours,
		Ranges:     []catalog.TimeRange{{Start: 720, End: 900}}, // 12:00-15:00
	}))

	ranges, err := resolver.WorkingRanges(context.Background(), "tenant-a", emp, monday)
	require.NoError(t, err)
	assert.Equal(t, []catalog.TimeRange{{Start: 720, End: 900}}, ranges)

	// The override binds only its own date.
	nextMonday := monday.AddDate(0, 0, 7)
	ranges, err = resolver.WorkingRanges(context.Background(), "tenant-a", emp, nextMonday)
	require.NoError(t, err)
	assert.Equal(t, []catalog.TimeRange{{Start: 540, End: 1020}}, ranges)
}
