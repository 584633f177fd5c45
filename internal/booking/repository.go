package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reservly/booking-platform/internal/catalog"
	"github.com/reservly/booking-platform/internal/scheduling"
)

// Repository defines tenant-scoped appointment storage. Create must be
// atomic: either the appointment and all its sessions land, or nothing
// does, and a confirmed overlap for the same employee yields ErrSlotTaken.
type Repository interface {
	Create(ctx context.Context, appt *Appointment, sessions []*Session) error
	Get(ctx context.Context, tenantID string, id uuid.UUID) (*Appointment, error)
	Cancel(ctx context.Context, tenantID string, id uuid.UUID) error
	BusyIntervals(ctx context.Context, tenantID string, employeeIDs []uuid.UUID, date time.Time) (map[uuid.UUID][]scheduling.Interval, error)
}

// InMemoryRepository is a map-backed Repository used in tests and local
// runs. Overlap rejection happens under the same lock as the insert, so
// concurrent bookers observe the same exactly-one-wins behavior as the
// database exclusion constraint.
type InMemoryRepository struct {
	mu       sync.Mutex
	appts    map[uuid.UUID]*Appointment
	sessions map[uuid.UUID][]*Session
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		appts:    make(map[uuid.UUID]*Appointment),
		sessions: make(map[uuid.UUID][]*Session),
	}
}

// Create stores the appointment and its sessions, rejecting confirmed
// overlaps for the same tenant, employee, and date.
func (r *InMemoryRepository) Create(ctx context.Context, appt *Appointment, sessions []*Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.appts {
		if existing.Status != StatusConfirmed {
			continue
		}
		if existing.TenantID != appt.TenantID || existing.EmployeeID != appt.EmployeeID {
			continue
		}
		if catalog.DateKey(existing.Date) != catalog.DateKey(appt.Date) {
			continue
		}
		if existing.StartMinute < appt.EndMinute() && appt.StartMinute < existing.EndMinute() {
			return ErrSlotTaken
		}
	}

	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = time.Now().UTC()
	}
	copied := *appt
	r.appts[appt.ID] = &copied

	stored := make([]*Session, 0, len(sessions))
	for _, s := range sessions {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		s.AppointmentID = appt.ID
		sc := *s
		stored = append(stored, &sc)
	}
	r.sessions[appt.ID] = stored
	return nil
}

// Get retrieves an appointment with its sessions, scoped to the tenant.
func (r *InMemoryRepository) Get(ctx context.Context, tenantID string, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appts[id]
	if !ok || appt.TenantID != tenantID {
		return nil, ErrAppointmentNotFound
	}
	copied := *appt
	for _, s := range r.sessions[id] {
		sc := *s
		copied.Sessions = append(copied.Sessions, &sc)
	}
	return &copied, nil
}

// Cancel marks the appointment cancelled, freeing its interval.
func (r *InMemoryRepository) Cancel(ctx context.Context, tenantID string, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appts[id]
	if !ok || appt.TenantID != tenantID {
		return ErrAppointmentNotFound
	}
	if appt.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	appt.Status = StatusCancelled
	return nil
}

// BusyIntervals returns the confirmed intervals per employee on date.
func (r *InMemoryRepository) BusyIntervals(ctx context.Context, tenantID string, employeeIDs []uuid.UUID, date time.Time) (map[uuid.UUID][]scheduling.Interval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := make(map[uuid.UUID]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		wanted[id] = true
	}

	out := make(map[uuid.UUID][]scheduling.Interval)
	for _, appt := range r.appts {
		if appt.Status != StatusConfirmed || appt.TenantID != tenantID {
			continue
		}
		if !wanted[appt.EmployeeID] {
			continue
		}
		if catalog.DateKey(appt.Date) != catalog.DateKey(date) {
			continue
		}
		out[appt.EmployeeID] = append(out[appt.EmployeeID], scheduling.Interval{
			Start: appt.StartMinute,
			End:   appt.EndMinute(),
		})
	}
	return out, nil
}

var (
	_ Repository                 = (*InMemoryRepository)(nil)
	_ scheduling.OccupancySource = (*InMemoryRepository)(nil)
)
