package event

import (
	"github.com/bettstax/backend/internal/domain/client"
	"github.com/bettstax/backend/internal/domain/document"
	"github.com/bettstax/backend/internal/domain/filing"
	"github.com/bettstax/backend/internal/domain/identity"
	"github.com/bettstax/backend/internal/domain/payment"
	"github.com/bettstax/backend/internal/domain/webhook"
	"github.com/bettstax/backend/internal/domain/workflow"
)

// RegisterAllEvents registers all domain event types with the serializer.
// This is required for the OutboxProcessor to deserialize events from the
// outbox table; the key must match what EventType() returns.
func RegisterAllEvents(serializer Serializer) {
	// Client events
	serializer.Register(client.EventTypeClientCreated, &client.ClientCreatedEvent{})
	serializer.Register(client.EventTypeClientUpdated, &client.ClientUpdatedEvent{})
	serializer.Register(client.EventTypeClientStatusChanged, &client.ClientStatusChangedEvent{})
	serializer.Register(client.EventTypeClientAssigned, &client.ClientAssignedEvent{})
	serializer.Register(client.EventTypeClientGSTRegistration, &client.ClientGSTRegistrationChangedEvent{})
	serializer.Register(client.EventTypeClientDeleted, &client.ClientDeletedEvent{})

	// Filing events
	serializer.Register(filing.EventTypeFilingCreated, &filing.FilingCreatedEvent{})
	serializer.Register(filing.EventTypeFilingSubmitted, &filing.FilingSubmittedEvent{})
	serializer.Register(filing.EventTypeFilingStatusChanged, &filing.FilingStatusChangedEvent{})
	serializer.Register(filing.EventTypeFilingApproved, &filing.FilingApprovedEvent{})
	serializer.Register(filing.EventTypeFilingRejected, &filing.FilingRejectedEvent{})
	serializer.Register(filing.EventTypeFilingFiled, &filing.FilingFiledEvent{})
	serializer.Register(filing.EventTypeFilingOverdue, &filing.FilingOverdueEvent{})
	serializer.Register(filing.EventTypeFilingCancelled, &filing.FilingCancelledEvent{})
	serializer.Register(filing.EventTypeFilingDeleted, &filing.FilingDeletedEvent{})

	// Payment events
	serializer.Register(payment.EventTypePaymentRecorded, &payment.PaymentRecordedEvent{})
	serializer.Register(payment.EventTypePaymentConfirmed, &payment.PaymentConfirmedEvent{})
	serializer.Register(payment.EventTypePaymentFailed, &payment.PaymentFailedEvent{})
	serializer.Register(payment.EventTypePaymentRefunded, &payment.PaymentRefundedEvent{})

	// Document events
	serializer.Register(document.EventTypeDocumentUploadInitiated, &document.DocumentUploadInitiatedEvent{})
	serializer.Register(document.EventTypeDocumentAvailable, &document.DocumentAvailableEvent{})
	serializer.Register(document.EventTypeDocumentDeleted, &document.DocumentDeletedEvent{})

	// Webhook registration lifecycle events
	serializer.Register(webhook.EventTypeRegistrationCreated, &webhook.RegistrationCreatedEvent{})
	serializer.Register(webhook.EventTypeRegistrationUpdated, &webhook.RegistrationUpdatedEvent{})
	serializer.Register(webhook.EventTypeRegistrationSecretRotated, &webhook.RegistrationSecretRotatedEvent{})
	serializer.Register(webhook.EventTypeRegistrationDeleted, &webhook.RegistrationDeletedEvent{})

	// Workflow trigger events
	serializer.Register(workflow.EventTypeTriggerCreated, &workflow.TriggerCreatedEvent{})
	serializer.Register(workflow.EventTypeTriggerUpdated, &workflow.TriggerUpdatedEvent{})
	serializer.Register(workflow.EventTypeTriggerFired, &workflow.TriggerFiredEvent{})

	// Identity events
	serializer.Register(identity.EventTypeTenantCreated, &identity.TenantCreatedEvent{})
	serializer.Register(identity.EventTypeTenantUpdated, &identity.TenantUpdatedEvent{})
	serializer.Register(identity.EventTypeTenantStatusChanged, &identity.TenantStatusChangedEvent{})
	serializer.Register(identity.EventTypeUserCreated, &identity.UserCreatedEvent{})
	serializer.Register(identity.EventTypeUserDeactivated, &identity.UserDeactivatedEvent{})
	serializer.Register(identity.EventTypeUserPasswordChanged, &identity.UserPasswordChangedEvent{})
	serializer.Register(identity.EventTypeUserRoleChanged, &identity.UserRoleChangedEvent{})
	serializer.Register(identity.EventTypeUserStatusChanged, &identity.UserStatusChangedEvent{})
}
