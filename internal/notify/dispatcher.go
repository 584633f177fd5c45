package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/reservly/booking-platform/internal/events"
	"github.com/reservly/booking-platform/pkg/logging"
)

// Dispatcher routes outbox entries to the notification service. It
// implements events.DeliveryHandler.
type Dispatcher struct {
	svc    *Service
	logger *logging.Logger
}

// NewDispatcher creates a dispatcher for outbox delivery.
func NewDispatcher(svc *Service, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{svc: svc, logger: logger}
}

// Handle decodes the entry payload and invokes the matching notification.
// Unknown event types are logged and acknowledged so they never wedge the
// outbox.
func (d *Dispatcher) Handle(ctx context.Context, entry events.OutboxEntry) error {
	switch entry.Type {
	case events.TypeAppointmentConfirmed:
		var evt events.AppointmentConfirmedV1
		if err := json.Unmarshal(entry.Payload, &evt); err != nil {
			return fmt.Errorf("notify: decode %s: %w", entry.Type, err)
		}
		return d.svc.NotifyAppointmentCreated(ctx, evt)
	case events.TypeAppointmentCancelled:
		var evt events.AppointmentCancelledV1
		if err := json.Unmarshal(entry.Payload, &evt); err != nil {
			return fmt.Errorf("notify: decode %s: %w", entry.Type, err)
		}
		return d.svc.NotifyAppointmentCancelled(ctx, evt)
	default:
		d.logger.Warn("notify: unknown event type, skipping", "type", entry.Type, "event_id", entry.ID)
		return nil
	}
}

var _ events.DeliveryHandler = (*Dispatcher)(nil)
