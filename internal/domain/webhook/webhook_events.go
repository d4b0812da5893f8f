package webhook

import (
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeWebhookRegistration = "WebhookRegistration"

// Event type constants
const (
	EventTypeRegistrationCreated       = "webhook.registered"
	EventTypeRegistrationUpdated       = "webhook.updated"
	EventTypeRegistrationSecretRotated = "webhook.secret_rotated"
	EventTypeRegistrationDeleted       = "webhook.deleted"

	// EventTypeTest is the synthetic event delivered when a user tests an endpoint.
	EventTypeTest = "webhook.test"
)

// RegistrationCreatedEvent is published when a webhook endpoint is registered
type RegistrationCreatedEvent struct {
	shared.BaseDomainEvent
	RegistrationID uuid.UUID `json:"registration_id"`
	Name           string    `json:"name"`
	TargetURL      string    `json:"target_url"`
	EventTypes     []string  `json:"event_types"`
}

// NewRegistrationCreatedEvent creates a new RegistrationCreatedEvent
func NewRegistrationCreatedEvent(r *Registration) *RegistrationCreatedEvent {
	return &RegistrationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRegistrationCreated, AggregateTypeWebhookRegistration, r.ID, r.TenantID),
		RegistrationID:  r.ID,
		Name:            r.Name,
		TargetURL:       r.TargetURL,
		EventTypes:      r.EventTypes,
	}
}

// RegistrationUpdatedEvent is published when a webhook endpoint changes
type RegistrationUpdatedEvent struct {
	shared.BaseDomainEvent
	RegistrationID uuid.UUID `json:"registration_id"`
	Name           string    `json:"name"`
	TargetURL      string    `json:"target_url"`
	EventTypes     []string  `json:"event_types"`
	Active         bool      `json:"active"`
}

// NewRegistrationUpdatedEvent creates a new RegistrationUpdatedEvent
func NewRegistrationUpdatedEvent(r *Registration) *RegistrationUpdatedEvent {
	return &RegistrationUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRegistrationUpdated, AggregateTypeWebhookRegistration, r.ID, r.TenantID),
		RegistrationID:  r.ID,
		Name:            r.Name,
		TargetURL:       r.TargetURL,
		EventTypes:      r.EventTypes,
		Active:          r.Active,
	}
}

// RegistrationSecretRotatedEvent is published when a signing secret is rotated.
// The secret itself is never included in the event payload.
type RegistrationSecretRotatedEvent struct {
	shared.BaseDomainEvent
	RegistrationID uuid.UUID `json:"registration_id"`
	Name           string    `json:"name"`
}

// NewRegistrationSecretRotatedEvent creates a new RegistrationSecretRotatedEvent
func NewRegistrationSecretRotatedEvent(r *Registration) *RegistrationSecretRotatedEvent {
	return &RegistrationSecretRotatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRegistrationSecretRotated, AggregateTypeWebhookRegistration, r.ID, r.TenantID),
		RegistrationID:  r.ID,
		Name:            r.Name,
	}
}

// RegistrationDeletedEvent is published when a webhook endpoint is removed
type RegistrationDeletedEvent struct {
	shared.BaseDomainEvent
	RegistrationID uuid.UUID `json:"registration_id"`
	Name           string    `json:"name"`
	TargetURL      string    `json:"target_url"`
}

// NewRegistrationDeletedEvent creates a new RegistrationDeletedEvent
func NewRegistrationDeletedEvent(r *Registration) *RegistrationDeletedEvent {
	return &RegistrationDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRegistrationDeleted, AggregateTypeWebhookRegistration, r.ID, r.TenantID),
		RegistrationID:  r.ID,
		Name:            r.Name,
		TargetURL:       r.TargetURL,
	}
}
