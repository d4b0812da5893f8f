package payment

import (
	"time"

	"github.com/bettstax/backend/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest represents a request to record a payment against a filing
type RecordPaymentRequest struct {
	FilingID     uuid.UUID       `json:"filing_id" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Method       string          `json:"method" binding:"required,oneof=bank_transfer cash cheque mobile_money"`
	Reference    string          `json:"reference" binding:"max=200"`
	PaidAt       *time.Time      `json:"paid_at"`
	ReceiptDocID *uuid.UUID      `json:"receipt_doc_id"`
	Notes        string          `json:"notes"`
	CreatedBy    *uuid.UUID      `json:"-"` // Set from JWT context, not from request body
}

// FailPaymentRequest represents a request to mark a payment as failed
type FailPaymentRequest struct {
	Reason string `json:"reason" binding:"required,max=2000"`
}

// RefundPaymentRequest represents a request to refund a confirmed payment
type RefundPaymentRequest struct {
	Reason string `json:"reason" binding:"required,max=2000"`
}

// AttachReceiptRequest represents a request to link an uploaded receipt
type AttachReceiptRequest struct {
	DocumentID uuid.UUID `json:"document_id" binding:"required"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	PaymentNumber string          `json:"payment_number"`
	FilingID      uuid.UUID       `json:"filing_id"`
	ClientID      uuid.UUID       `json:"client_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Method        string          `json:"method"`
	Reference     string          `json:"reference,omitempty"`
	Status        string          `json:"status"`
	PaidAt        time.Time       `json:"paid_at"`
	ConfirmedAt   *time.Time      `json:"confirmed_at,omitempty"`
	ConfirmedBy   *uuid.UUID      `json:"confirmed_by,omitempty"`
	FailureReason string          `json:"failure_reason,omitempty"`
	RefundedAt    *time.Time      `json:"refunded_at,omitempty"`
	RefundReason  string          `json:"refund_reason,omitempty"`
	ReceiptDocID  *uuid.UUID      `json:"receipt_doc_id,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// PaymentListFilter represents filtering options for payment lists
type PaymentListFilter struct {
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir"`
	Search   string     `form:"search"`
	Status   string     `form:"status" binding:"omitempty,oneof=pending confirmed failed refunded"`
	Method   string     `form:"method" binding:"omitempty,oneof=bank_transfer cash cheque mobile_money"`
	ClientID string     `form:"client_id" binding:"omitempty,uuid"`
	FilingID string     `form:"filing_id" binding:"omitempty,uuid"`
	PaidFrom *time.Time `form:"paid_from"`
	PaidTo   *time.Time `form:"paid_to"`
}

// FilingBalanceResponse reports the outstanding balance on one filing
type FilingBalanceResponse struct {
	FilingID       uuid.UUID       `json:"filing_id"`
	TotalDue       decimal.Decimal `json:"total_due"`
	ConfirmedTotal decimal.Decimal `json:"confirmed_total"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	FullyPaid      bool            `json:"fully_paid"`
}

// MethodTotalResponse aggregates confirmed payments for one method
type MethodTotalResponse struct {
	Method string          `json:"method"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// ToPaymentResponse converts a domain payment to a response DTO
func ToPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		TenantID:      p.TenantID,
		PaymentNumber: p.PaymentNumber,
		FilingID:      p.FilingID,
		ClientID:      p.ClientID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Method:        string(p.Method),
		Reference:     p.Reference,
		Status:        string(p.Status),
		PaidAt:        p.PaidAt,
		ConfirmedAt:   p.ConfirmedAt,
		ConfirmedBy:   p.ConfirmedBy,
		FailureReason: p.FailureReason,
		RefundedAt:    p.RefundedAt,
		RefundReason:  p.RefundReason,
		ReceiptDocID:  p.ReceiptDocID,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}
}

// ToPaymentResponses converts a slice of domain payments to response DTOs
func ToPaymentResponses(payments []*payment.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		responses[i] = ToPaymentResponse(p)
	}
	return responses
}
