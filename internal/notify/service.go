package notify

import (
	"context"
	"fmt"

	"github.com/reservly/booking-platform/internal/business"
	"github.com/reservly/booking-platform/internal/events"
	"github.com/reservly/booking-platform/pkg/logging"
)

// ProfileStore retrieves tenant business profiles.
type ProfileStore interface {
	Get(ctx context.Context, tenantID string) (*business.Profile, error)
}

// Service sends booking notifications to business operators, honoring the
// tenant's notification preferences.
type Service struct {
	email    EmailSender
	whatsapp WhatsAppSender
	profiles ProfileStore
	logger   *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, whatsapp WhatsAppSender, profiles ProfileStore, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:    email,
		whatsapp: whatsapp,
		profiles: profiles,
		logger:   logger,
	}
}

// NotifyAppointmentCreated notifies operators about a new booking.
func (s *Service) NotifyAppointmentCreated(ctx context.Context, evt events.AppointmentConfirmedV1) error {
	if s.profiles == nil {
		s.logger.Debug("notify: profile store not configured, skipping notifications")
		return nil
	}

	profile, err := s.profiles.Get(ctx, evt.TenantID)
	if err != nil {
		s.logger.Error("notify: failed to get business profile", "error", err, "tenant_id", evt.TenantID)
		return fmt.Errorf("notify: get business profile: %w", err)
	}
	if !profile.Notifications.NotifyOnBooking {
		s.logger.Debug("notify: booking notifications disabled", "tenant_id", evt.TenantID)
		return nil
	}

	when := evt.StartsAt.Format("Monday, January 2 at 15:04")
	clientName := evt.ClientName
	if clientName == "" {
		clientName = "A client"
	}

	subject := fmt.Sprintf("New booking - %s", clientName)
	body := fmt.Sprintf(`%s booked %s.

Service: %s
With: %s
When: %s
Duration: %d minutes`,
		clientName, evt.ServiceName, evt.ServiceName, evt.EmployeeName, when, evt.DurationMin)
	if evt.TotalSessions > 1 {
		body += fmt.Sprintf("\nSessions: 1 of %d booked, the rest to be scheduled", evt.TotalSessions)
	}
	body += fmt.Sprintf("\n\n— %s", profile.Name)

	waBody := fmt.Sprintf("New booking: %s, %s with %s on %s (%d min)",
		clientName, evt.ServiceName, evt.EmployeeName, when, evt.DurationMin)

	return s.fanOut(ctx, profile, subject, body, waBody)
}

// NotifyAppointmentCancelled notifies operators about a cancellation.
func (s *Service) NotifyAppointmentCancelled(ctx context.Context, evt events.AppointmentCancelledV1) error {
	if s.profiles == nil {
		return nil
	}

	profile, err := s.profiles.Get(ctx, evt.TenantID)
	if err != nil {
		return fmt.Errorf("notify: get business profile: %w", err)
	}
	if !profile.Notifications.NotifyOnCancellation {
		return nil
	}

	when := evt.StartsAt.Format("Monday, January 2 at 15:04")
	clientName := evt.ClientName
	if clientName == "" {
		clientName = "A client"
	}

	subject := fmt.Sprintf("Booking cancelled - %s", clientName)
	body := fmt.Sprintf(`%s cancelled their %s appointment.

With: %s
Was scheduled for: %s

The slot is open again.

— %s`, clientName, evt.ServiceName, evt.EmployeeName, when, profile.Name)

	waBody := fmt.Sprintf("Cancelled: %s, %s with %s on %s. Slot is open again.",
		clientName, evt.ServiceName, evt.EmployeeName, when)

	return s.fanOut(ctx, profile, subject, body, waBody)
}

// fanOut sends to every enabled channel and recipient, aggregating failures
// so one bad recipient never blocks the rest.
func (s *Service) fanOut(ctx context.Context, profile *business.Profile, subject, body, waBody string) error {
	var errs []error

	prefs := profile.Notifications
	if prefs.EmailEnabled && s.email != nil {
		for _, recipient := range prefs.EmailRecipients {
			msg := EmailMessage{To: recipient, Subject: subject, Body: body}
			if err := s.email.Send(ctx, msg); err != nil {
				s.logger.Error("notify: failed to send email", "error", err, "to", recipient)
				errs = append(errs, err)
			}
		}
	}

	if prefs.WhatsAppEnabled && s.whatsapp != nil {
		for _, recipient := range prefs.WhatsAppRecipients {
			if err := s.whatsapp.SendWhatsApp(ctx, recipient, waBody); err != nil {
				s.logger.Error("notify: failed to send whatsapp", "error", err, "to", recipient)
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d notification(s) failed", len(errs))
	}
	return nil
}
