package payment

import (
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type for payment events
const AggregateTypePayment = "Payment"

// Payment event types. The dotted form doubles as the webhook
// subscription key, so renaming one is a breaking API change.
const (
	EventTypePaymentRecorded  = "payment.recorded"
	EventTypePaymentConfirmed = "payment.confirmed"
	EventTypePaymentFailed    = "payment.failed"
	EventTypePaymentRefunded  = "payment.refunded"
)

// PaymentRecordedEvent is emitted when a payment is first recorded
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentNumber string          `json:"payment_number"`
	FilingID      uuid.UUID       `json:"filing_id"`
	ClientID      uuid.UUID       `json:"client_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Method        PaymentMethod   `json:"method"`
}

// NewPaymentRecordedEvent creates a payment recorded event
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypePayment, p.ID, p.TenantID),
		PaymentNumber:   p.PaymentNumber,
		FilingID:        p.FilingID,
		ClientID:        p.ClientID,
		Amount:          p.Amount,
		Currency:        p.Currency,
		Method:          p.Method,
	}
}

// PaymentConfirmedEvent is emitted when a payment is confirmed
type PaymentConfirmedEvent struct {
	shared.BaseDomainEvent
	PaymentNumber string          `json:"payment_number"`
	FilingID      uuid.UUID       `json:"filing_id"`
	ClientID      uuid.UUID       `json:"client_id"`
	Amount        decimal.Decimal `json:"amount"`
	ConfirmedBy   *uuid.UUID      `json:"confirmed_by,omitempty"`
}

// NewPaymentConfirmedEvent creates a payment confirmed event
func NewPaymentConfirmedEvent(p *Payment) *PaymentConfirmedEvent {
	return &PaymentConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentConfirmed, AggregateTypePayment, p.ID, p.TenantID),
		PaymentNumber:   p.PaymentNumber,
		FilingID:        p.FilingID,
		ClientID:        p.ClientID,
		Amount:          p.Amount,
		ConfirmedBy:     p.ConfirmedBy,
	}
}

// PaymentFailedEvent is emitted when a payment fails
type PaymentFailedEvent struct {
	shared.BaseDomainEvent
	PaymentNumber string          `json:"payment_number"`
	FilingID      uuid.UUID       `json:"filing_id"`
	ClientID      uuid.UUID       `json:"client_id"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason"`
}

// NewPaymentFailedEvent creates a payment failed event
func NewPaymentFailedEvent(p *Payment, reason string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentFailed, AggregateTypePayment, p.ID, p.TenantID),
		PaymentNumber:   p.PaymentNumber,
		FilingID:        p.FilingID,
		ClientID:        p.ClientID,
		Amount:          p.Amount,
		Reason:          reason,
	}
}

// PaymentRefundedEvent is emitted when a confirmed payment is reversed
type PaymentRefundedEvent struct {
	shared.BaseDomainEvent
	PaymentNumber string          `json:"payment_number"`
	FilingID      uuid.UUID       `json:"filing_id"`
	ClientID      uuid.UUID       `json:"client_id"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason"`
}

// NewPaymentRefundedEvent creates a payment refunded event
func NewPaymentRefundedEvent(p *Payment, reason string) *PaymentRefundedEvent {
	return &PaymentRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRefunded, AggregateTypePayment, p.ID, p.TenantID),
		PaymentNumber:   p.PaymentNumber,
		FilingID:        p.FilingID,
		ClientID:        p.ClientID,
		Amount:          p.Amount,
		Reason:          reason,
	}
}
