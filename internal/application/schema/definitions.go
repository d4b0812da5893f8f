package schema

import (
	"github.com/bettstax/backend/internal/domain/client"
	"github.com/bettstax/backend/internal/domain/document"
	"github.com/bettstax/backend/internal/domain/filing"
	"github.com/bettstax/backend/internal/domain/payment"
)

// DefaultDefinitions describes the entities the rule builder can target.
// Payload lists must name every event struct of the entity so the merged
// field set stays complete when events gain fields.
func DefaultDefinitions() []EntityDefinition {
	return []EntityDefinition{
		{
			EntityType: client.AggregateTypeClient,
			EventTypes: []string{
				client.EventTypeClientCreated,
				client.EventTypeClientUpdated,
				client.EventTypeClientStatusChanged,
				client.EventTypeClientAssigned,
				client.EventTypeClientGSTRegistration,
				client.EventTypeClientDeleted,
			},
			Payloads: []any{
				client.ClientCreatedEvent{},
				client.ClientUpdatedEvent{},
				client.ClientStatusChangedEvent{},
				client.ClientAssignedEvent{},
				client.ClientGSTRegistrationChangedEvent{},
				client.ClientDeletedEvent{},
			},
			Enums: map[string][]string{
				"type": {
					string(client.ClientTypeIndividual),
					string(client.ClientTypeBusiness),
					string(client.ClientTypeNGO),
				},
				"old_status": clientStatusValues(),
				"new_status": clientStatusValues(),
			},
		},
		{
			EntityType: filing.AggregateTypeTaxFiling,
			EventTypes: []string{
				filing.EventTypeFilingCreated,
				filing.EventTypeFilingSubmitted,
				filing.EventTypeFilingStatusChanged,
				filing.EventTypeFilingApproved,
				filing.EventTypeFilingRejected,
				filing.EventTypeFilingFiled,
				filing.EventTypeFilingOverdue,
				filing.EventTypeFilingCancelled,
				filing.EventTypeFilingDeleted,
			},
			Payloads: []any{
				filing.FilingCreatedEvent{},
				filing.FilingSubmittedEvent{},
				filing.FilingStatusChangedEvent{},
				filing.FilingApprovedEvent{},
				filing.FilingRejectedEvent{},
				filing.FilingFiledEvent{},
				filing.FilingOverdueEvent{},
				filing.FilingCancelledEvent{},
				filing.FilingDeletedEvent{},
			},
			Enums: map[string][]string{
				"tax_type": {
					string(filing.TaxTypeGST),
					string(filing.TaxTypeIncomeTax),
					string(filing.TaxTypePayrollPAYE),
					string(filing.TaxTypeWithholding),
				},
				"old_status": filingStatusValues(),
				"new_status": filingStatusValues(),
			},
		},
		{
			EntityType: payment.AggregateTypePayment,
			EventTypes: []string{
				payment.EventTypePaymentRecorded,
				payment.EventTypePaymentConfirmed,
				payment.EventTypePaymentFailed,
				payment.EventTypePaymentRefunded,
			},
			Payloads: []any{
				payment.PaymentRecordedEvent{},
				payment.PaymentConfirmedEvent{},
				payment.PaymentFailedEvent{},
				payment.PaymentRefundedEvent{},
			},
			Enums: map[string][]string{
				"method": {
					string(payment.PaymentMethodBankTransfer),
					string(payment.PaymentMethodCash),
					string(payment.PaymentMethodCheque),
					string(payment.PaymentMethodMobileMoney),
				},
			},
		},
		{
			EntityType: document.AggregateTypeDocument,
			EventTypes: []string{
				document.EventTypeDocumentUploadInitiated,
				document.EventTypeDocumentAvailable,
				document.EventTypeDocumentDeleted,
			},
			Payloads: []any{
				document.DocumentUploadInitiatedEvent{},
				document.DocumentAvailableEvent{},
				document.DocumentDeletedEvent{},
			},
			Enums: map[string][]string{
				"category": {
					string(document.CategoryTaxReturn),
					string(document.CategoryReceipt),
					string(document.CategoryCertificate),
					string(document.CategoryCorrespondence),
					string(document.CategorySupporting),
					string(document.CategoryOther),
				},
			},
		},
	}
}

// NewDefaultRegistry builds a registry pre-loaded with DefaultDefinitions.
// Registration can only fail on a programming error, so it panics.
func NewDefaultRegistry() *Registry {
	registry := NewRegistry()
	for _, def := range DefaultDefinitions() {
		if err := registry.Register(def); err != nil {
			panic("schema: " + err.Error())
		}
	}
	return registry
}

func clientStatusValues() []string {
	return []string{
		string(client.ClientStatusActive),
		string(client.ClientStatusInactive),
		string(client.ClientStatusSuspended),
	}
}

func filingStatusValues() []string {
	return []string{
		string(filing.FilingStatusDraft),
		string(filing.FilingStatusSubmitted),
		string(filing.FilingStatusUnderReview),
		string(filing.FilingStatusApproved),
		string(filing.FilingStatusFiled),
		string(filing.FilingStatusRejected),
		string(filing.FilingStatusOverdue),
		string(filing.FilingStatusCancelled),
	}
}
