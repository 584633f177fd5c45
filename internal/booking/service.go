package booking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/reservly/booking-platform/internal/catalog"
	"github.com/reservly/booking-platform/internal/events"
	"github.com/reservly/booking-platform/internal/observability/metrics"
	"github.com/reservly/booking-platform/internal/scheduling"
	"github.com/reservly/booking-platform/pkg/logging"
)

var bookingTracer = otel.Tracer("reservly.internal.booking")

// EventPublisher records booking events for asynchronous delivery. The
// events outbox satisfies it.
type EventPublisher interface {
	Insert(ctx context.Context, tenantID string, eventType string, payload any) (uuid.UUID, error)
}

// Service runs the booking transaction: recompute availability, pick an
// employee, persist atomically, then hand off notification.
type Service struct {
	repo    Repository
	catalog catalog.Repository
	calc    *scheduling.Calculator
	outbox  EventPublisher
	metrics *metrics.BookingMetrics
	logger  *logging.Logger

	// pick selects an index in [0,n) among employees free for the slot.
	// Seeded in tests for deterministic assignment.
	pick func(n int) int
	now  func() time.Time
}

// NewService constructs a booking service. outbox and m may be nil, which
// disables event publication and metrics respectively.
func NewService(repo Repository, cat catalog.Repository, calc *scheduling.Calculator, outbox EventPublisher, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("booking: repository required")
	}
	if cat == nil {
		panic("booking: catalog repository required")
	}
	if calc == nil {
		panic("booking: availability calculator required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:    repo,
		catalog: cat,
		calc:    calc,
		outbox:  outbox,
		metrics: m,
		logger:  logger,
		pick:    rand.Intn,
		now:     time.Now,
	}
}

// WithPicker overrides employee tie-breaking, for deterministic tests.
func (s *Service) WithPicker(pick func(n int) int) *Service {
	if pick != nil {
		s.pick = pick
	}
	return s
}

// Availability computes the open slots of a branch for a service and date.
func (s *Service) Availability(ctx context.Context, tenantID string, branchID, serviceID uuid.UUID, date time.Time) ([]scheduling.Slot, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.availability")
	defer span.End()
	span.SetAttributes(
		attribute.String("reservly.tenant_id", tenantID),
		attribute.String("reservly.service_id", serviceID.String()),
	)

	svc, err := s.activeService(ctx, tenantID, serviceID)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveAvailability("error")
		return nil, err
	}
	if _, err := s.catalog.GetBranch(ctx, tenantID, branchID); err != nil {
		span.RecordError(err)
		s.metrics.ObserveAvailability("error")
		return nil, err
	}

	employees, err := s.catalog.ListEmployeesByBranch(ctx, tenantID, branchID)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveAvailability("error")
		return nil, fmt.Errorf("booking: list employees: %w", err)
	}

	slots, err := s.calc.Availability(ctx, tenantID, svc, employees, date)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveAvailability("error")
		return nil, err
	}
	s.metrics.ObserveAvailability("ok")
	return slots, nil
}

// Book creates a confirmed appointment for the requested slot. It
// recomputes availability so stale clients cannot book over an existing
// appointment, and relies on the repository for the final overlap check
// under concurrency.
func (s *Service) Book(ctx context.Context, req *BookRequest) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.book")
	defer span.End()
	started := s.now()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("reservly.tenant_id", req.TenantID),
		attribute.String("reservly.service_id", req.ServiceID.String()),
		attribute.Int("reservly.start_minute", req.StartMin),
	)

	svc, err := s.activeService(ctx, req.TenantID, req.ServiceID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	client, err := s.catalog.GetClient(ctx, req.TenantID, req.ClientID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	employees, err := s.catalog.ListEmployeesByBranch(ctx, req.TenantID, req.BranchID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("booking: list employees: %w", err)
	}

	slots, err := s.calc.Availability(ctx, req.TenantID, svc, employees, req.Date)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	employeeID, err := s.selectEmployee(slots, req)
	if err != nil {
		span.RecordError(err)
		s.observeBooking("slot_taken", started)
		return nil, err
	}

	appt := &Appointment{
		ID:              uuid.New(),
		TenantID:        req.TenantID,
		BranchID:        req.BranchID,
		ServiceID:       svc.ID,
		EmployeeID:      employeeID,
		ClientID:        client.ID,
		Date:            req.Date,
		StartMinute:     req.StartMin,
		DurationMinutes: svc.DurationMinutes,
		TotalSessions:   svc.TotalSessions,
		StartsAt:        StartsAt(req.Date, req.StartMin),
		Status:          StatusConfirmed,
	}
	sessions := expandSessions(appt.ID, svc.TotalSessions)

	if err := s.repo.Create(ctx, appt, sessions); err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrSlotTaken) {
			s.observeBooking("slot_taken", started)
		} else {
			s.observeBooking("error", started)
		}
		return nil, err
	}
	appt.Sessions = sessions

	s.enrich(ctx, appt)

	// Notification is fire-and-forget: a publish failure never unwinds a
	// committed booking.
	if s.outbox != nil {
		_, err := s.outbox.Insert(ctx, appt.TenantID, events.TypeAppointmentConfirmed, events.AppointmentConfirmedV1{
			AppointmentID: appt.ID,
			TenantID:      appt.TenantID,
			BranchID:      appt.BranchID,
			ServiceID:     appt.ServiceID,
			ServiceName:   appt.ServiceName,
			EmployeeID:    appt.EmployeeID,
			EmployeeName:  appt.EmployeeName,
			ClientID:      appt.ClientID,
			ClientName:    appt.ClientName,
			StartsAt:      appt.StartsAt,
			DurationMin:   appt.DurationMinutes,
			TotalSessions: appt.TotalSessions,
		})
		if err != nil {
			s.logger.Error("failed to publish booking event", "error", err, "appointment_id", appt.ID)
		}
	}

	s.observeBooking("confirmed", started)
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"tenant_id", appt.TenantID,
		"employee_id", appt.EmployeeID,
		"starts_at", appt.StartsAt,
		"sessions", len(sessions),
	)
	return appt, nil
}

// Get retrieves an appointment with display names resolved.
func (s *Service) Get(ctx context.Context, tenantID string, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	s.enrich(ctx, appt)
	return appt, nil
}

// Cancel marks an appointment cancelled and publishes the cancellation
// event. Cancelling twice is a no-op.
func (s *Service) Cancel(ctx context.Context, tenantID string, id uuid.UUID) error {
	ctx, span := bookingTracer.Start(ctx, "booking.cancel")
	defer span.End()
	span.SetAttributes(
		attribute.String("reservly.tenant_id", tenantID),
		attribute.String("reservly.appointment_id", id.String()),
	)

	err := s.repo.Cancel(ctx, tenantID, id)
	if errors.Is(err, ErrAlreadyCancelled) {
		return nil
	}
	if err != nil {
		span.RecordError(err)
		return err
	}

	if s.outbox != nil {
		appt, err := s.Get(ctx, tenantID, id)
		if err != nil {
			s.logger.Error("failed to load cancelled appointment for event", "error", err, "appointment_id", id)
			return nil
		}
		_, err = s.outbox.Insert(ctx, tenantID, events.TypeAppointmentCancelled, events.AppointmentCancelledV1{
			AppointmentID: appt.ID,
			TenantID:      appt.TenantID,
			ServiceName:   appt.ServiceName,
			EmployeeName:  appt.EmployeeName,
			ClientName:    appt.ClientName,
			StartsAt:      appt.StartsAt,
		})
		if err != nil {
			s.logger.Error("failed to publish cancellation event", "error", err, "appointment_id", id)
		}
	}

	s.logger.Info("appointment cancelled", "appointment_id", id, "tenant_id", tenantID)
	return nil
}

func (s *Service) activeService(ctx context.Context, tenantID string, serviceID uuid.UUID) (*catalog.Service, error) {
	svc, err := s.catalog.GetService(ctx, tenantID, serviceID)
	if err != nil {
		return nil, err
	}
	if !svc.Active {
		return nil, catalog.ErrServiceNotFound
	}
	return svc, nil
}

// selectEmployee resolves the employee for the requested slot from the
// freshly computed availability.
func (s *Service) selectEmployee(slots []scheduling.Slot, req *BookRequest) (uuid.UUID, error) {
	for _, slot := range slots {
		if slot.StartMinute != req.StartMin {
			continue
		}
		if req.EmployeeID != uuid.Nil {
			for _, id := range slot.EmployeeIDs {
				if id == req.EmployeeID {
					return id, nil
				}
			}
			return uuid.Nil, ErrSlotTaken
		}
		if len(slot.EmployeeIDs) == 0 {
			return uuid.Nil, ErrNoEmployeeAvailable
		}
		return slot.EmployeeIDs[s.pick(len(slot.EmployeeIDs))], nil
	}
	return uuid.Nil, ErrSlotTaken
}

// expandSessions builds the session rows for a series: visit 1 is the
// booked slot, visits 2..N wait to be scheduled.
func expandSessions(apptID uuid.UUID, total int) []*Session {
	sessions := make([]*Session, 0, total)
	for n := 1; n <= total; n++ {
		status := SessionScheduledLater
		if n == 1 {
			status = SessionPending
		}
		sessions = append(sessions, &Session{
			ID:            uuid.New(),
			AppointmentID: apptID,
			Number:        n,
			Status:        status,
		})
	}
	return sessions
}

func (s *Service) enrich(ctx context.Context, appt *Appointment) {
	if svc, err := s.catalog.GetService(ctx, appt.TenantID, appt.ServiceID); err == nil {
		appt.ServiceName = svc.Name
	}
	if emp, err := s.catalog.GetEmployee(ctx, appt.TenantID, appt.EmployeeID); err == nil {
		appt.EmployeeName = emp.Name
	}
	if client, err := s.catalog.GetClient(ctx, appt.TenantID, appt.ClientID); err == nil {
		appt.ClientName = client.Name
	}
}

func (s *Service) observeBooking(outcome string, started time.Time) {
	s.metrics.ObserveBooking(outcome, s.now().Sub(started).Seconds())
}
