package filing

import (
	"time"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeTaxFiling = "TaxFiling"

// Event type constants
const (
	EventTypeFilingCreated       = "filing.created"
	EventTypeFilingSubmitted     = "filing.submitted"
	EventTypeFilingStatusChanged = "filing.status_changed"
	EventTypeFilingApproved      = "filing.approved"
	EventTypeFilingRejected      = "filing.rejected"
	EventTypeFilingFiled         = "filing.filed"
	EventTypeFilingOverdue       = "filing.overdue"
	EventTypeFilingCancelled     = "filing.cancelled"
	EventTypeFilingDeleted       = "filing.deleted"
)

// FilingCreatedEvent is published when a new filing draft is created
type FilingCreatedEvent struct {
	shared.BaseDomainEvent
	FilingID      uuid.UUID       `json:"filing_id"`
	FilingNumber  string          `json:"filing_number"`
	ClientID      uuid.UUID       `json:"client_id"`
	ClientName    string          `json:"client_name"`
	TaxType       TaxType         `json:"tax_type"`
	PeriodStart   time.Time       `json:"period_start"`
	PeriodEnd     time.Time       `json:"period_end"`
	DueDate       time.Time       `json:"due_date"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
}

// NewFilingCreatedEvent creates a new FilingCreatedEvent
func NewFilingCreatedEvent(f *TaxFiling) *FilingCreatedEvent {
	return &FilingCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFilingCreated, AggregateTypeTaxFiling, f.ID, f.TenantID),
		FilingID:        f.ID,
		FilingNumber:    f.FilingNumber,
		ClientID:        f.ClientID,
		ClientName:      f.ClientName,
		TaxType:         f.TaxType,
		PeriodStart:     f.PeriodStart,
		PeriodEnd:       f.PeriodEnd,
		DueDate:         f.DueDate,
		TaxableAmount:   f.TaxableAmount,
	}
}

// FilingSubmittedEvent is published when a filing is submitted for review
type FilingSubmittedEvent struct {
	shared.BaseDomainEvent
	FilingID     uuid.UUID       `json:"filing_id"`
	FilingNumber string          `json:"filing_number"`
	ClientID     uuid.UUID       `json:"client_id"`
	ClientName   string          `json:"client_name"`
	TaxType      TaxType         `json:"tax_type"`
	OldStatus    FilingStatus    `json:"old_status"`
	TaxDue       decimal.Decimal `json:"tax_due"`
	TotalDue     decimal.Decimal `json:"total_due"`
	DueDate      time.Time       `json:"due_date"`
	SubmittedBy  *uuid.UUID      `json:"submitted_by,omitempty"`
}

// NewFilingSubmittedEvent creates a new FilingSubmittedEvent
func NewFilingSubmittedEvent(f *TaxFiling, oldStatus FilingStatus) *FilingSubmittedEvent {
	return &FilingSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFilingSubmitted, AggregateTypeTaxFiling, f.ID, f.TenantID),
		FilingID:        f.ID,
		FilingNumber:    f.FilingNumber,
		ClientID:        f.ClientID,
		ClientName:      f.ClientName,
		TaxType:         f.TaxType,
		OldStatus:       oldStatus,
		TaxDue:          f.TaxDue,
		TotalDue:        f.TotalDue,
		DueDate:         f.DueDate,
		SubmittedBy:     f.SubmittedBy,
	}
}

// FilingStatusChangedEvent is published on review-stage transitions
type FilingStatusChangedEvent struct {
	shared.BaseDomainEvent
	FilingID     uuid.UUID    `json:"filing_id"`
	FilingNumber string       `json:"filing_number"`
	ClientID     uuid.UUID    `json:"client_id"`
	TaxType      TaxType      `json:"tax_type"`
	OldStatus    FilingStatus `json:"old_status"`
	NewStatus    FilingStatus `json:"new_status"`
}

// NewFilingStatusChangedEvent creates a new FilingStatusChangedEvent
func NewFilingStatusChangedEvent(f *TaxFiling, oldStatus, newStatus FilingStatus) *FilingStatusChangedEvent {
	return &FilingStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFilingStatusChanged, AggregateTypeTaxFiling, f.ID, f.TenantID),
		FilingID:        f.ID,
		FilingNumber:    f.FilingNumber,
		ClientID:        f.ClientID,
		TaxType:         f.TaxType,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// FilingApprovedEvent is published when a filing passes review
type FilingApprovedEvent struct {
	shared.BaseDomainEvent
	FilingID     uuid.UUID       `json:"filing_id"`
	FilingNumber string          `json:"filing_number"`
	ClientID     uuid.UUID       `json:"client_id"`
	ClientName   string          `json:"client_name"`
	TaxType      TaxType         `json:"tax_type"`
	OldStatus    FilingStatus    `json:"old_status"`
	TotalDue     decimal.Decimal `json:"total_due"`
	ReviewerID   *uuid.UUID      `json:"reviewer_id,omitempty"`
}

// NewFilingApprovedEvent creates a new FilingApprovedEvent
func NewFilingApprovedEvent(f *TaxFiling, oldStatus FilingStatus) *FilingApprovedEvent {
	return &FilingApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFilingApproved, AggregateTypeTaxFiling, f.ID, f.TenantID),
		FilingID:        f.ID,
		FilingNumber:    f.FilingNumber,
		ClientID:        f.ClientID,
		ClientName:      f.ClientName,
		TaxType:         f.TaxType,
		OldStatus:       oldStatus,
		TotalDue:        f.TotalDue,
		ReviewerID:      f.ReviewerID,
	}
}

// FilingRejectedEvent is published when a reviewer rejects a filing
type FilingRejectedEvent struct {
	shared.BaseDomainEvent
	FilingID     uuid.UUID    `json:"filing_id"`
	FilingNumber string       `json:"filing_number"`
	ClientID     uuid.UUID    `json:"client_id"`
	ClientName   string       `json:"client_name"`
	TaxType      TaxType      `json:"tax_type"`
	OldStatus    FilingStatus `json:"old_status"`
	Reason       string       `json:"reason"`
	ReviewerID   *uuid.UUID   `json:"reviewer_id,omitempty"`
}

// NewFilingRejectedEvent creates a new FilingRejectedEvent
func NewFilingRejectedEvent(f *TaxFiling, oldStatus FilingStatus, reason string) *FilingRejectedEvent {
	return &FilingRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFilingRejected, AggregateTypeTaxFiling, f.ID, f.TenantID),
		FilingID:        f.ID,
		FilingNumber:    f.FilingNumber,
		ClientID:        f.ClientID,
		ClientName:      f.ClientName,
		TaxType:         f.TaxType,
		OldStatus:       oldStatus,
		Reason:          reason,
		ReviewerID:      f.ReviewerID,
	}
}

// FilingFiledEvent is published when a return is lodged with the authority
type FilingFiledEvent struct {
	shared.BaseDomainEvent
	FilingID       uuid.UUID       `json:"filing_id"`
	FilingNumber   string          `json:"filing_number"`
	ClientID       uuid.UUID       `json:"client_id"`
	ClientName     string          `json:"client_name"`
	TaxType        TaxType         `json:"tax_type"`
	OldStatus      FilingStatus    `json:"old_status"`
	TotalDue       decimal.Decimal `json:"total_due"`
	FiledReference string          `json:"filed_reference"`
	FiledAt        *time.Time      `json:"filed_at,omitempty"`
}

// NewFilingFiledEvent creates a new FilingFiledEvent
func NewFilingFiledEvent(f *TaxFiling, oldStatus FilingStatus) *FilingFiledEvent {
	return &FilingFiledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFilingFiled, AggregateTypeTaxFiling, f.ID, f.TenantID),
		FilingID:        f.ID,
		FilingNumber:    f.FilingNumber,
		ClientID:        f.ClientID,
		ClientName:      f.ClientName,
		TaxType:         f.TaxType,
		OldStatus:       oldStatus,
		TotalDue:        f.TotalDue,
		FiledReference:  f.FiledReference,
		FiledAt:         f.FiledAt,
	}
}

// FilingOverdueEvent is published when the scheduler flags a late filing
type FilingOverdueEvent struct {
	shared.BaseDomainEvent
	FilingID     uuid.UUID       `json:"filing_id"`
	FilingNumber string          `json:"filing_number"`
	ClientID     uuid.UUID       `json:"client_id"`
	ClientName   string          `json:"client_name"`
	TaxType      TaxType         `json:"tax_type"`
	OldStatus    FilingStatus    `json:"old_status"`
	DueDate      time.Time       `json:"due_date"`
	TotalDue     decimal.Decimal `json:"total_due"`
}

// NewFilingOverdueEvent creates a new FilingOverdueEvent
func NewFilingOverdueEvent(f *TaxFiling, oldStatus FilingStatus) *FilingOverdueEvent {
	return &FilingOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFilingOverdue, AggregateTypeTaxFiling, f.ID, f.TenantID),
		FilingID:        f.ID,
		FilingNumber:    f.FilingNumber,
		ClientID:        f.ClientID,
		ClientName:      f.ClientName,
		TaxType:         f.TaxType,
		OldStatus:       oldStatus,
		DueDate:         f.DueDate,
		TotalDue:        f.TotalDue,
	}
}

// FilingCancelledEvent is published when a filing is closed without lodging
type FilingCancelledEvent struct {
	shared.BaseDomainEvent
	FilingID     uuid.UUID    `json:"filing_id"`
	FilingNumber string       `json:"filing_number"`
	ClientID     uuid.UUID    `json:"client_id"`
	TaxType      TaxType      `json:"tax_type"`
	OldStatus    FilingStatus `json:"old_status"`
	Reason       string       `json:"reason"`
}

// NewFilingCancelledEvent creates a new FilingCancelledEvent
func NewFilingCancelledEvent(f *TaxFiling, oldStatus FilingStatus, reason string) *FilingCancelledEvent {
	return &FilingCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFilingCancelled, AggregateTypeTaxFiling, f.ID, f.TenantID),
		FilingID:        f.ID,
		FilingNumber:    f.FilingNumber,
		ClientID:        f.ClientID,
		TaxType:         f.TaxType,
		OldStatus:       oldStatus,
		Reason:          reason,
	}
}

// FilingDeletedEvent is published when a draft filing is deleted
type FilingDeletedEvent struct {
	shared.BaseDomainEvent
	FilingID     uuid.UUID `json:"filing_id"`
	FilingNumber string    `json:"filing_number"`
	ClientID     uuid.UUID `json:"client_id"`
}

// NewFilingDeletedEvent creates a new FilingDeletedEvent
func NewFilingDeletedEvent(f *TaxFiling) *FilingDeletedEvent {
	return &FilingDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFilingDeleted, AggregateTypeTaxFiling, f.ID, f.TenantID),
		FilingID:        f.ID,
		FilingNumber:    f.FilingNumber,
		ClientID:        f.ClientID,
	}
}
