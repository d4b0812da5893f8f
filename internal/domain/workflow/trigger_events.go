package workflow

import (
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeAdvancedTrigger = "AdvancedTrigger"

// Event type constants
const (
	EventTypeTriggerCreated = "trigger.created"
	EventTypeTriggerUpdated = "trigger.updated"
	EventTypeTriggerDeleted = "trigger.deleted"
	EventTypeTriggerFired   = "trigger.fired"
)

// TriggerCreatedEvent is published when an automation trigger is created
type TriggerCreatedEvent struct {
	shared.BaseDomainEvent
	TriggerID        uuid.UUID `json:"trigger_id"`
	Name             string    `json:"name"`
	TriggerEventType string    `json:"event_type"`
}

// NewTriggerCreatedEvent creates a new TriggerCreatedEvent
func NewTriggerCreatedEvent(t *AdvancedTrigger) *TriggerCreatedEvent {
	return &TriggerCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeTriggerCreated, AggregateTypeAdvancedTrigger, t.ID, t.TenantID),
		TriggerID:        t.ID,
		Name:             t.Name,
		TriggerEventType: t.EventType,
	}
}

// TriggerUpdatedEvent is published when a trigger definition changes
type TriggerUpdatedEvent struct {
	shared.BaseDomainEvent
	TriggerID        uuid.UUID `json:"trigger_id"`
	Name             string    `json:"name"`
	TriggerEventType string    `json:"event_type"`
	Active           bool      `json:"active"`
}

// NewTriggerUpdatedEvent creates a new TriggerUpdatedEvent
func NewTriggerUpdatedEvent(t *AdvancedTrigger) *TriggerUpdatedEvent {
	return &TriggerUpdatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeTriggerUpdated, AggregateTypeAdvancedTrigger, t.ID, t.TenantID),
		TriggerID:        t.ID,
		Name:             t.Name,
		TriggerEventType: t.EventType,
		Active:           t.Active,
	}
}

// TriggerFiredEvent is published after a trigger's actions executed
type TriggerFiredEvent struct {
	shared.BaseDomainEvent
	TriggerID     uuid.UUID `json:"trigger_id"`
	Name          string    `json:"name"`
	SourceEventID uuid.UUID `json:"source_event_id"`
	SourceEvent   string    `json:"source_event"`
	ActionErrors  []string  `json:"action_errors,omitempty"`
}

// NewTriggerFiredEvent creates a new TriggerFiredEvent
func NewTriggerFiredEvent(t *AdvancedTrigger, sourceEventID uuid.UUID, sourceEvent string, actionErrors []string) *TriggerFiredEvent {
	return &TriggerFiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTriggerFired, AggregateTypeAdvancedTrigger, t.ID, t.TenantID),
		TriggerID:       t.ID,
		Name:            t.Name,
		SourceEventID:   sourceEventID,
		SourceEvent:     sourceEvent,
		ActionErrors:    actionErrors,
	}
}
