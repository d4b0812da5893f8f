package client

import (
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeClient = "Client"

// Event type constants
const (
	EventTypeClientCreated         = "client.created"
	EventTypeClientUpdated         = "client.updated"
	EventTypeClientStatusChanged   = "client.status_changed"
	EventTypeClientAssigned        = "client.assigned"
	EventTypeClientGSTRegistration = "client.gst_registration_changed"
	EventTypeClientDeleted         = "client.deleted"
)

// ClientCreatedEvent is published when a new client is created
type ClientCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID  `json:"client_id"`
	Code     string     `json:"code"`
	Name     string     `json:"name"`
	Type     ClientType `json:"type"`
	TIN      string     `json:"tin,omitempty"`
}

// NewClientCreatedEvent creates a new ClientCreatedEvent
func NewClientCreatedEvent(c *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientCreated, AggregateTypeClient, c.ID, c.TenantID),
		ClientID:        c.ID,
		Code:            c.Code,
		Name:            c.Name,
		Type:            c.Type,
		TIN:             c.TIN,
	}
}

// ClientUpdatedEvent is published when a client's profile is updated
type ClientUpdatedEvent struct {
	shared.BaseDomainEvent
	ClientID      uuid.UUID `json:"client_id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	BusinessName  string    `json:"business_name,omitempty"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
}

// NewClientUpdatedEvent creates a new ClientUpdatedEvent
func NewClientUpdatedEvent(c *Client) *ClientUpdatedEvent {
	return &ClientUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientUpdated, AggregateTypeClient, c.ID, c.TenantID),
		ClientID:        c.ID,
		Code:            c.Code,
		Name:            c.Name,
		BusinessName:    c.BusinessName,
		ContactPerson:   c.ContactPerson,
		Phone:           c.Phone,
		Email:           c.Email,
	}
}

// ClientStatusChangedEvent is published when a client's status changes
type ClientStatusChangedEvent struct {
	shared.BaseDomainEvent
	ClientID  uuid.UUID    `json:"client_id"`
	Code      string       `json:"code"`
	OldStatus ClientStatus `json:"old_status"`
	NewStatus ClientStatus `json:"new_status"`
}

// NewClientStatusChangedEvent creates a new ClientStatusChangedEvent
func NewClientStatusChangedEvent(c *Client, oldStatus, newStatus ClientStatus) *ClientStatusChangedEvent {
	return &ClientStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientStatusChanged, AggregateTypeClient, c.ID, c.TenantID),
		ClientID:        c.ID,
		Code:            c.Code,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// ClientAssignedEvent is published when a client is assigned to an associate
type ClientAssignedEvent struct {
	shared.BaseDomainEvent
	ClientID   uuid.UUID  `json:"client_id"`
	Code       string     `json:"code"`
	OldUserID  *uuid.UUID `json:"old_user_id,omitempty"`
	NewUserID  uuid.UUID  `json:"new_user_id"`
	ClientName string     `json:"client_name"`
}

// NewClientAssignedEvent creates a new ClientAssignedEvent
func NewClientAssignedEvent(c *Client, oldUserID *uuid.UUID, newUserID uuid.UUID) *ClientAssignedEvent {
	return &ClientAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientAssigned, AggregateTypeClient, c.ID, c.TenantID),
		ClientID:        c.ID,
		Code:            c.Code,
		OldUserID:       oldUserID,
		NewUserID:       newUserID,
		ClientName:      c.Name,
	}
}

// ClientGSTRegistrationChangedEvent is published when GST registration changes
type ClientGSTRegistrationChangedEvent struct {
	shared.BaseDomainEvent
	ClientID   uuid.UUID `json:"client_id"`
	Code       string    `json:"code"`
	Registered bool      `json:"registered"`
	TIN        string    `json:"tin,omitempty"`
}

// NewClientGSTRegistrationChangedEvent creates a new ClientGSTRegistrationChangedEvent
func NewClientGSTRegistrationChangedEvent(c *Client, registered bool) *ClientGSTRegistrationChangedEvent {
	return &ClientGSTRegistrationChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientGSTRegistration, AggregateTypeClient, c.ID, c.TenantID),
		ClientID:        c.ID,
		Code:            c.Code,
		Registered:      registered,
		TIN:             c.TIN,
	}
}

// ClientDeletedEvent is published when a client is deleted
type ClientDeletedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
}

// NewClientDeletedEvent creates a new ClientDeletedEvent
func NewClientDeletedEvent(c *Client) *ClientDeletedEvent {
	return &ClientDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientDeleted, AggregateTypeClient, c.ID, c.TenantID),
		ClientID:        c.ID,
		Code:            c.Code,
		Name:            c.Name,
	}
}
