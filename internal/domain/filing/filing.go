package filing

import (
	"time"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxType identifies the tax regime a filing belongs to
type TaxType string

const (
	TaxTypeGST         TaxType = "gst"
	TaxTypeIncomeTax   TaxType = "income_tax"
	TaxTypePayrollPAYE TaxType = "payroll_paye"
	TaxTypeWithholding TaxType = "withholding"
)

// IsValid checks if the tax type is recognized
func (t TaxType) IsValid() bool {
	switch t {
	case TaxTypeGST, TaxTypeIncomeTax, TaxTypePayrollPAYE, TaxTypeWithholding:
		return true
	}
	return false
}

// String returns the string representation of TaxType
func (t TaxType) String() string {
	return string(t)
}

// AllTaxTypes returns every supported tax type
func AllTaxTypes() []TaxType {
	return []TaxType{TaxTypeGST, TaxTypeIncomeTax, TaxTypePayrollPAYE, TaxTypeWithholding}
}

// FilingStatus represents the lifecycle state of a tax filing
type FilingStatus string

const (
	FilingStatusDraft       FilingStatus = "draft"
	FilingStatusSubmitted   FilingStatus = "submitted"
	FilingStatusUnderReview FilingStatus = "under_review"
	FilingStatusApproved    FilingStatus = "approved"
	FilingStatusFiled       FilingStatus = "filed"
	FilingStatusRejected    FilingStatus = "rejected"
	FilingStatusOverdue     FilingStatus = "overdue"
	FilingStatusCancelled   FilingStatus = "cancelled"
)

// IsValid checks if the status is a valid FilingStatus
func (s FilingStatus) IsValid() bool {
	switch s {
	case FilingStatusDraft, FilingStatusSubmitted, FilingStatusUnderReview,
		FilingStatusApproved, FilingStatusFiled, FilingStatusRejected,
		FilingStatusOverdue, FilingStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of FilingStatus
func (s FilingStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are allowed
func (s FilingStatus) IsTerminal() bool {
	return s == FilingStatusFiled || s == FilingStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s FilingStatus) CanTransitionTo(target FilingStatus) bool {
	switch s {
	case FilingStatusDraft:
		return target == FilingStatusSubmitted || target == FilingStatusCancelled || target == FilingStatusOverdue
	case FilingStatusSubmitted:
		return target == FilingStatusUnderReview || target == FilingStatusRejected ||
			target == FilingStatusCancelled || target == FilingStatusOverdue
	case FilingStatusUnderReview:
		return target == FilingStatusApproved || target == FilingStatusRejected || target == FilingStatusCancelled
	case FilingStatusApproved:
		return target == FilingStatusFiled || target == FilingStatusCancelled
	case FilingStatusRejected:
		return target == FilingStatusSubmitted || target == FilingStatusCancelled
	case FilingStatusOverdue:
		return target == FilingStatusSubmitted || target == FilingStatusCancelled
	case FilingStatusFiled, FilingStatusCancelled:
		return false // Terminal states
	}
	return false
}

// TaxFiling represents one tax return for a client, tax type, and period.
// It is the aggregate root for the filing lifecycle from draft to filed.
type TaxFiling struct {
	shared.TenantAggregateRoot
	FilingNumber    string       `gorm:"type:varchar(50);not null;uniqueIndex:idx_filing_tenant_number,priority:2"`
	ClientID        uuid.UUID    `gorm:"type:uuid;not null;index"`
	ClientName      string       `gorm:"type:varchar(200);not null"`
	TaxType         TaxType      `gorm:"type:varchar(30);not null;index"`
	PeriodStart     time.Time    `gorm:"not null"`
	PeriodEnd       time.Time    `gorm:"not null"`
	DueDate         time.Time    `gorm:"not null;index"`
	TaxableAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxDue          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Penalty         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Interest        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalDue        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status          FilingStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	SubmittedAt     *time.Time
	SubmittedBy     *uuid.UUID `gorm:"type:uuid"`
	ReviewerID      *uuid.UUID `gorm:"type:uuid"`
	ReviewerNotes   string     `gorm:"type:text"`
	RejectionReason string     `gorm:"type:text"`
	FiledAt         *time.Time
	FiledReference  string `gorm:"type:varchar(100)"` // Authority receipt reference
	CancelledAt     *time.Time
	CancelReason    string `gorm:"type:text"`
	Attributes      string `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (TaxFiling) TableName() string {
	return "tax_filings"
}

// NewTaxFiling creates a new draft filing. TaxDue and TotalDue are expected
// to be set by the caller from the tax calculator before the first save.
func NewTaxFiling(tenantID uuid.UUID, filingNumber string, clientID uuid.UUID, clientName string, taxType TaxType, periodStart, periodEnd, dueDate time.Time, taxableAmount decimal.Decimal) (*TaxFiling, error) {
	if filingNumber == "" {
		return nil, shared.NewDomainError("INVALID_FILING_NUMBER", "Filing number cannot be empty")
	}
	if len(filingNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_FILING_NUMBER", "Filing number cannot exceed 50 characters")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if clientName == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot be empty")
	}
	if !taxType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TAX_TYPE", "Unknown tax type")
	}
	if periodEnd.Before(periodStart) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period end cannot be before period start")
	}
	if taxableAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Taxable amount cannot be negative")
	}

	f := &TaxFiling{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		FilingNumber:        filingNumber,
		ClientID:            clientID,
		ClientName:          clientName,
		TaxType:             taxType,
		PeriodStart:         periodStart,
		PeriodEnd:           periodEnd,
		DueDate:             dueDate,
		TaxableAmount:       taxableAmount,
		TaxDue:              decimal.Zero,
		Penalty:             decimal.Zero,
		Interest:            decimal.Zero,
		TotalDue:            decimal.Zero,
		Status:              FilingStatusDraft,
		Attributes:          "{}",
	}

	f.AddDomainEvent(NewFilingCreatedEvent(f))

	return f, nil
}

// SetLiability sets the calculated amounts and recomputes the total.
// Allowed only while the filing is editable (draft or rejected).
func (f *TaxFiling) SetLiability(taxableAmount, taxDue, penalty, interest decimal.Decimal) error {
	if !f.IsEditable() {
		return shared.NewDomainError("INVALID_STATE", "Amounts can only change while the filing is draft or rejected")
	}
	if taxableAmount.IsNegative() || taxDue.IsNegative() || penalty.IsNegative() || interest.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Monetary amounts cannot be negative")
	}

	f.TaxableAmount = taxableAmount
	f.TaxDue = taxDue
	f.Penalty = penalty
	f.Interest = interest
	f.recalculateTotal()
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	return nil
}

// ApplyLateCharges sets penalty and interest without touching the principal.
// Used when marking a filing overdue or recalculating after the due date.
func (f *TaxFiling) ApplyLateCharges(penalty, interest decimal.Decimal) error {
	if penalty.IsNegative() || interest.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Late charges cannot be negative")
	}
	if f.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot apply charges to a closed filing")
	}

	f.Penalty = penalty
	f.Interest = interest
	f.recalculateTotal()
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	return nil
}

// SetDueDate updates the due date, draft only
func (f *TaxFiling) SetDueDate(dueDate time.Time) error {
	if f.Status != FilingStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Due date can only change on a draft filing")
	}

	f.DueDate = dueDate
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	return nil
}

// Submit moves the filing to submitted for review
func (f *TaxFiling) Submit(userID uuid.UUID) error {
	if !f.Status.CanTransitionTo(FilingStatusSubmitted) {
		return shared.NewDomainError("INVALID_STATE", "Filing cannot be submitted from status "+f.Status.String())
	}
	if f.TaxableAmount.IsZero() && f.TaxDue.IsZero() && f.TaxType != TaxTypeGST {
		// Nil returns are valid for GST only; other types need amounts
		return shared.NewDomainError("EMPTY_FILING", "Filing has no amounts to submit")
	}

	oldStatus := f.Status
	now := time.Now()
	f.Status = FilingStatusSubmitted
	f.SubmittedAt = &now
	f.SubmittedBy = &userID
	f.RejectionReason = ""
	f.UpdatedAt = now
	f.IncrementVersion()

	f.AddDomainEvent(NewFilingSubmittedEvent(f, oldStatus))

	return nil
}

// StartReview moves a submitted filing into review and records the reviewer
func (f *TaxFiling) StartReview(reviewerID uuid.UUID) error {
	if !f.Status.CanTransitionTo(FilingStatusUnderReview) {
		return shared.NewDomainError("INVALID_STATE", "Filing cannot enter review from status "+f.Status.String())
	}
	if reviewerID == uuid.Nil {
		return shared.NewDomainError("INVALID_REVIEWER", "Reviewer ID cannot be empty")
	}

	oldStatus := f.Status
	f.Status = FilingStatusUnderReview
	f.ReviewerID = &reviewerID
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	f.AddDomainEvent(NewFilingStatusChangedEvent(f, oldStatus, FilingStatusUnderReview))

	return nil
}

// FlagForReview moves a submitted filing into review without a named
// reviewer, e.g. when an automation trigger flags it. The reason is
// recorded in the reviewer notes.
func (f *TaxFiling) FlagForReview(reason string) error {
	if !f.Status.CanTransitionTo(FilingStatusUnderReview) {
		return shared.NewDomainError("INVALID_STATE", "Filing cannot enter review from status "+f.Status.String())
	}

	oldStatus := f.Status
	f.Status = FilingStatusUnderReview
	if reason != "" {
		f.ReviewerNotes = reason
	}
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	f.AddDomainEvent(NewFilingStatusChangedEvent(f, oldStatus, FilingStatusUnderReview))

	return nil
}

// Approve marks a reviewed filing as approved for submission to the authority
func (f *TaxFiling) Approve(reviewerID uuid.UUID, notes string) error {
	if !f.Status.CanTransitionTo(FilingStatusApproved) {
		return shared.NewDomainError("INVALID_STATE", "Filing cannot be approved from status "+f.Status.String())
	}

	oldStatus := f.Status
	f.Status = FilingStatusApproved
	f.ReviewerID = &reviewerID
	f.ReviewerNotes = notes
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	f.AddDomainEvent(NewFilingApprovedEvent(f, oldStatus))

	return nil
}

// Reject sends a filing back with a reason. The client can amend and resubmit.
func (f *TaxFiling) Reject(reviewerID uuid.UUID, reason string) error {
	if !f.Status.CanTransitionTo(FilingStatusRejected) {
		return shared.NewDomainError("INVALID_STATE", "Filing cannot be rejected from status "+f.Status.String())
	}
	if reason == "" {
		return shared.NewDomainError("REASON_REQUIRED", "Rejection reason is required")
	}

	oldStatus := f.Status
	f.Status = FilingStatusRejected
	f.ReviewerID = &reviewerID
	f.RejectionReason = reason
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	f.AddDomainEvent(NewFilingRejectedEvent(f, oldStatus, reason))

	return nil
}

// MarkFiled records that the return was lodged with the tax authority
func (f *TaxFiling) MarkFiled(reference string) error {
	if !f.Status.CanTransitionTo(FilingStatusFiled) {
		return shared.NewDomainError("INVALID_STATE", "Filing cannot be filed from status "+f.Status.String())
	}
	if reference == "" {
		return shared.NewDomainError("REFERENCE_REQUIRED", "Authority receipt reference is required")
	}

	oldStatus := f.Status
	now := time.Now()
	f.Status = FilingStatusFiled
	f.FiledAt = &now
	f.FiledReference = reference
	f.UpdatedAt = now
	f.IncrementVersion()

	f.AddDomainEvent(NewFilingFiledEvent(f, oldStatus))

	return nil
}

// MarkOverdue flags a filing whose due date has passed without submission
func (f *TaxFiling) MarkOverdue() error {
	if !f.Status.CanTransitionTo(FilingStatusOverdue) {
		return shared.NewDomainError("INVALID_STATE", "Filing cannot be marked overdue from status "+f.Status.String())
	}
	if !time.Now().After(f.DueDate) {
		return shared.NewDomainError("NOT_DUE", "Filing due date has not passed")
	}

	oldStatus := f.Status
	f.Status = FilingStatusOverdue
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	f.AddDomainEvent(NewFilingOverdueEvent(f, oldStatus))

	return nil
}

// Cancel closes the filing without lodging it
func (f *TaxFiling) Cancel(reason string) error {
	if !f.Status.CanTransitionTo(FilingStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", "Filing cannot be cancelled from status "+f.Status.String())
	}
	if reason == "" {
		return shared.NewDomainError("REASON_REQUIRED", "Cancellation reason is required")
	}

	oldStatus := f.Status
	now := time.Now()
	f.Status = FilingStatusCancelled
	f.CancelledAt = &now
	f.CancelReason = reason
	f.UpdatedAt = now
	f.IncrementVersion()

	f.AddDomainEvent(NewFilingCancelledEvent(f, oldStatus, reason))

	return nil
}

// SetReviewerNotes updates review notes without a status change
func (f *TaxFiling) SetReviewerNotes(notes string) {
	f.ReviewerNotes = notes
	f.UpdatedAt = time.Now()
	f.IncrementVersion()
}

// SetAttributes sets custom attributes as JSON
func (f *TaxFiling) SetAttributes(attributes string) {
	if attributes == "" {
		attributes = "{}"
	}
	f.Attributes = attributes
	f.UpdatedAt = time.Now()
	f.IncrementVersion()
}

// IsEditable reports whether amounts may still change
func (f *TaxFiling) IsEditable() bool {
	return f.Status == FilingStatusDraft || f.Status == FilingStatusRejected
}

// IsOverdue reports whether the filing is past due and not closed
func (f *TaxFiling) IsOverdue(now time.Time) bool {
	if f.Status.IsTerminal() || f.Status == FilingStatusApproved {
		return false
	}
	return now.After(f.DueDate)
}

// IsDraft returns true while the filing is a draft
func (f *TaxFiling) IsDraft() bool {
	return f.Status == FilingStatusDraft
}

// IsFiled returns true once lodged with the authority
func (f *TaxFiling) IsFiled() bool {
	return f.Status == FilingStatusFiled
}

// MarkDeleted adds the deletion event before removal
func (f *TaxFiling) MarkDeleted() {
	f.AddDomainEvent(NewFilingDeletedEvent(f))
}

func (f *TaxFiling) recalculateTotal() {
	f.TotalDue = f.TaxDue.Add(f.Penalty).Add(f.Interest)
}
