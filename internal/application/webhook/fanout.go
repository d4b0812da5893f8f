package webhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/domain/webhook"
	"github.com/google/uuid"
)

// EventFanout subscribes to the event bus and enqueues one delivery per
// active registration subscribed to the event type. The dispatcher poller
// owns the HTTP calls; enqueueing here keeps fan-out in the same process
// as event publication and makes deliveries survive restarts.
type EventFanout struct {
	registrationRepo webhook.RegistrationRepository
	deliveryRepo     webhook.DeliveryRepository
}

var _ shared.EventHandler = (*EventFanout)(nil)

// NewEventFanout creates the fan-out subscriber
func NewEventFanout(registrationRepo webhook.RegistrationRepository, deliveryRepo webhook.DeliveryRepository) *EventFanout {
	return &EventFanout{
		registrationRepo: registrationRepo,
		deliveryRepo:     deliveryRepo,
	}
}

// EventTypes returns nil so the fan-out sees every published event
func (f *EventFanout) EventTypes() []string {
	return nil
}

// Handle enqueues deliveries for every matching registration. The payload
// and signature are fixed at enqueue time.
func (f *EventFanout) Handle(ctx context.Context, event shared.DomainEvent) error {
	regs, err := f.registrationRepo.FindActiveByEventType(ctx, event.TenantID(), event.EventType())
	if err != nil {
		return err
	}
	if len(regs) == 0 {
		return nil
	}

	payload, err := json.Marshal(eventEnvelope{
		ID:         event.EventID(),
		Event:      event.EventType(),
		OccurredAt: event.OccurredAt(),
		Data:       event,
	})
	if err != nil {
		return err
	}

	deliveries := make([]*webhook.Delivery, 0, len(regs))
	for i := range regs {
		deliveries = append(deliveries, webhook.NewDelivery(&regs[i], event.EventID(), event.EventType(), payload))
	}

	return f.deliveryRepo.Save(ctx, deliveries...)
}

// eventEnvelope is the body receivers get. Data carries the full event
// struct, so receivers see the same fields internal subscribers do.
type eventEnvelope struct {
	ID         uuid.UUID          `json:"id"`
	Event      string             `json:"event"`
	OccurredAt time.Time          `json:"occurred_at"`
	Data       shared.DomainEvent `json:"data"`
}
