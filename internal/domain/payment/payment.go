package payment

import (
	"time"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the lifecycle state of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusConfirmed, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// PaymentMethod is how the money moved
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
)

// IsValid checks if the method is recognized
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodCash, PaymentMethodCheque, PaymentMethodMobileMoney:
		return true
	}
	return false
}

// Payment records money received against a tax filing.
// It is the aggregate root for payment tracking.
type Payment struct {
	shared.TenantAggregateRoot
	PaymentNumber string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_payment_tenant_number,priority:2"`
	FilingID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency      string          `gorm:"type:varchar(3);not null;default:'SLE'"`
	Method        PaymentMethod   `gorm:"type:varchar(30);not null"`
	Reference     string          `gorm:"type:varchar(200)"` // Bank slip / mobile money transaction ref
	Status        PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaidAt        time.Time       `gorm:"not null"`
	ConfirmedAt   *time.Time
	ConfirmedBy   *uuid.UUID `gorm:"type:uuid"`
	FailureReason string     `gorm:"type:text"`
	RefundedAt    *time.Time
	RefundReason  string     `gorm:"type:text"`
	ReceiptDocID  *uuid.UUID `gorm:"type:uuid"` // Uploaded receipt document
	Notes         string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment records a pending payment against a filing
func NewPayment(tenantID uuid.UUID, paymentNumber string, filingID, clientID uuid.UUID, amount decimal.Decimal, method PaymentMethod, paidAt time.Time) (*Payment, error) {
	if paymentNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot be empty")
	}
	if filingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FILING", "Filing ID cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Unknown payment method")
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	p := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PaymentNumber:       paymentNumber,
		FilingID:            filingID,
		ClientID:            clientID,
		Amount:              amount,
		Currency:            "SLE",
		Method:              method,
		Status:              PaymentStatusPending,
		PaidAt:              paidAt,
	}

	p.AddDomainEvent(NewPaymentRecordedEvent(p))

	return p, nil
}

// SetReference attaches the external transaction reference
func (p *Payment) SetReference(reference string) error {
	if len(reference) > 200 {
		return shared.NewDomainError("INVALID_REFERENCE", "Reference cannot exceed 200 characters")
	}

	p.Reference = reference
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// AttachReceipt links an uploaded receipt document
func (p *Payment) AttachReceipt(documentID uuid.UUID) error {
	if documentID == uuid.Nil {
		return shared.NewDomainError("INVALID_DOCUMENT", "Document ID cannot be empty")
	}

	p.ReceiptDocID = &documentID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// Confirm marks a pending payment as received and verified
func (p *Payment) Confirm(userID uuid.UUID) error {
	if p.Status != PaymentStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending payments can be confirmed")
	}
	if userID == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Confirming user is required")
	}

	now := time.Now()
	p.Status = PaymentStatusConfirmed
	p.ConfirmedAt = &now
	p.ConfirmedBy = &userID
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentConfirmedEvent(p))

	return nil
}

// Fail marks a pending payment as failed with a reason
func (p *Payment) Fail(reason string) error {
	if p.Status != PaymentStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending payments can fail")
	}
	if reason == "" {
		return shared.NewDomainError("REASON_REQUIRED", "Failure reason is required")
	}

	p.Status = PaymentStatusFailed
	p.FailureReason = reason
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentFailedEvent(p, reason))

	return nil
}

// Refund reverses a confirmed payment
func (p *Payment) Refund(reason string) error {
	if p.Status != PaymentStatusConfirmed {
		return shared.NewDomainError("INVALID_STATE", "Only confirmed payments can be refunded")
	}
	if reason == "" {
		return shared.NewDomainError("REASON_REQUIRED", "Refund reason is required")
	}

	now := time.Now()
	p.Status = PaymentStatusRefunded
	p.RefundedAt = &now
	p.RefundReason = reason
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentRefundedEvent(p, reason))

	return nil
}

// SetNotes sets free-form notes
func (p *Payment) SetNotes(notes string) {
	p.Notes = notes
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// IsConfirmed returns true for confirmed payments
func (p *Payment) IsConfirmed() bool {
	return p.Status == PaymentStatusConfirmed
}

// IsPending returns true while awaiting confirmation
func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPending
}
