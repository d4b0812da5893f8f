package filing

import (
	"time"

	"github.com/bettstax/backend/internal/domain/filing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateFilingRequest represents a request to open a new draft filing
type CreateFilingRequest struct {
	ClientID      uuid.UUID        `json:"client_id" binding:"required"`
	TaxType       string           `json:"tax_type" binding:"required,oneof=gst income_tax payroll_paye withholding"`
	PeriodStart   time.Time        `json:"period_start" binding:"required"`
	PeriodEnd     time.Time        `json:"period_end" binding:"required"`
	DueDate       *time.Time       `json:"due_date"` // Computed from deadline rules when omitted
	TaxableAmount decimal.Decimal  `json:"taxable_amount"`
	TaxDue        *decimal.Decimal `json:"tax_due"` // Calculated when omitted
	// Inputs for the calculator, used when TaxDue is omitted
	WithholdingCategory string           `json:"withholding_category" binding:"omitempty,oneof=dividends interest rent royalties contractor_resident contractor_nonresident professional_fees employment_nonresident"`
	Corporate           bool             `json:"corporate"`
	Turnover            *decimal.Decimal `json:"turnover"`
	Attributes          string           `json:"attributes"`
	CreatedBy           *uuid.UUID       `json:"-"` // Set from JWT context, not from request body
}

// UpdateFilingRequest represents a request to amend a draft or rejected filing
type UpdateFilingRequest struct {
	TaxableAmount *decimal.Decimal `json:"taxable_amount"`
	TaxDue        *decimal.Decimal `json:"tax_due"`
	Penalty       *decimal.Decimal `json:"penalty"`
	Interest      *decimal.Decimal `json:"interest"`
	DueDate       *time.Time       `json:"due_date"`
	Attributes    *string          `json:"attributes"`
	// Recalculate recomputes tax due from the taxable amount, overriding TaxDue
	Recalculate         bool             `json:"recalculate"`
	WithholdingCategory string           `json:"withholding_category" binding:"omitempty,oneof=dividends interest rent royalties contractor_resident contractor_nonresident professional_fees employment_nonresident"`
	Corporate           bool             `json:"corporate"`
	Turnover            *decimal.Decimal `json:"turnover"`
}

// ApproveFilingRequest represents a request to approve a reviewed filing
type ApproveFilingRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

// RejectFilingRequest represents a request to send a filing back for amendment
type RejectFilingRequest struct {
	Reason string `json:"reason" binding:"required,max=2000"`
}

// MarkFiledRequest represents a request to record lodgement with the authority
type MarkFiledRequest struct {
	Reference string `json:"reference" binding:"required,max=100"`
}

// CancelFilingRequest represents a request to cancel a filing
type CancelFilingRequest struct {
	Reason string `json:"reason" binding:"required,max=2000"`
}

// FilingResponse represents a filing in API responses
type FilingResponse struct {
	ID              uuid.UUID       `json:"id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	FilingNumber    string          `json:"filing_number"`
	ClientID        uuid.UUID       `json:"client_id"`
	ClientName      string          `json:"client_name"`
	TaxType         string          `json:"tax_type"`
	PeriodStart     time.Time       `json:"period_start"`
	PeriodEnd       time.Time       `json:"period_end"`
	DueDate         time.Time       `json:"due_date"`
	TaxableAmount   decimal.Decimal `json:"taxable_amount"`
	TaxDue          decimal.Decimal `json:"tax_due"`
	Penalty         decimal.Decimal `json:"penalty"`
	Interest        decimal.Decimal `json:"interest"`
	TotalDue        decimal.Decimal `json:"total_due"`
	Status          string          `json:"status"`
	SubmittedAt     *time.Time      `json:"submitted_at,omitempty"`
	SubmittedBy     *uuid.UUID      `json:"submitted_by,omitempty"`
	ReviewerID      *uuid.UUID      `json:"reviewer_id,omitempty"`
	ReviewerNotes   string          `json:"reviewer_notes,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	FiledAt         *time.Time      `json:"filed_at,omitempty"`
	FiledReference  string          `json:"filed_reference,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason    string          `json:"cancel_reason,omitempty"`
	Attributes      string          `json:"attributes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// FilingListResponse represents a list item for filings
type FilingListResponse struct {
	ID           uuid.UUID       `json:"id"`
	FilingNumber string          `json:"filing_number"`
	ClientID     uuid.UUID       `json:"client_id"`
	ClientName   string          `json:"client_name"`
	TaxType      string          `json:"tax_type"`
	PeriodStart  time.Time       `json:"period_start"`
	PeriodEnd    time.Time       `json:"period_end"`
	DueDate      time.Time       `json:"due_date"`
	TotalDue     decimal.Decimal `json:"total_due"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// FilingListFilter represents filtering options for filing lists
type FilingListFilter struct {
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir"`
	Search   string     `form:"search"`
	Status   string     `form:"status" binding:"omitempty,oneof=draft submitted under_review approved filed rejected overdue cancelled"`
	TaxType  string     `form:"tax_type" binding:"omitempty,oneof=gst income_tax payroll_paye withholding"`
	ClientID string     `form:"client_id" binding:"omitempty,uuid"`
	DueFrom  *time.Time `form:"due_from"`
	DueTo    *time.Time `form:"due_to"`
}

// FilingStatsResponse summarizes filing counts and liabilities for a tenant
type FilingStatsResponse struct {
	ByStatus  map[string]int64       `json:"by_status"`
	Overdue   int64                  `json:"overdue"`
	ByTaxType []TaxTypeTotalResponse `json:"by_tax_type"`
}

// TaxTypeTotalResponse aggregates filing amounts for one tax type
type TaxTypeTotalResponse struct {
	TaxType  string          `json:"tax_type"`
	Count    int64           `json:"count"`
	TaxDue   decimal.Decimal `json:"tax_due"`
	TotalDue decimal.Decimal `json:"total_due"`
}

// SweepResult reports what an overdue sweep changed
type SweepResult struct {
	Scanned int `json:"scanned"`
	Marked  int `json:"marked"`
}

// ToFilingResponse converts a domain filing to a response DTO
func ToFilingResponse(f *filing.TaxFiling) FilingResponse {
	return FilingResponse{
		ID:              f.ID,
		TenantID:        f.TenantID,
		FilingNumber:    f.FilingNumber,
		ClientID:        f.ClientID,
		ClientName:      f.ClientName,
		TaxType:         string(f.TaxType),
		PeriodStart:     f.PeriodStart,
		PeriodEnd:       f.PeriodEnd,
		DueDate:         f.DueDate,
		TaxableAmount:   f.TaxableAmount,
		TaxDue:          f.TaxDue,
		Penalty:         f.Penalty,
		Interest:        f.Interest,
		TotalDue:        f.TotalDue,
		Status:          string(f.Status),
		SubmittedAt:     f.SubmittedAt,
		SubmittedBy:     f.SubmittedBy,
		ReviewerID:      f.ReviewerID,
		ReviewerNotes:   f.ReviewerNotes,
		RejectionReason: f.RejectionReason,
		FiledAt:         f.FiledAt,
		FiledReference:  f.FiledReference,
		CancelledAt:     f.CancelledAt,
		CancelReason:    f.CancelReason,
		Attributes:      f.Attributes,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
		Version:         f.Version,
	}
}

// ToFilingListResponse converts a domain filing to a list item DTO
func ToFilingListResponse(f *filing.TaxFiling) FilingListResponse {
	return FilingListResponse{
		ID:           f.ID,
		FilingNumber: f.FilingNumber,
		ClientID:     f.ClientID,
		ClientName:   f.ClientName,
		TaxType:      string(f.TaxType),
		PeriodStart:  f.PeriodStart,
		PeriodEnd:    f.PeriodEnd,
		DueDate:      f.DueDate,
		TotalDue:     f.TotalDue,
		Status:       string(f.Status),
		CreatedAt:    f.CreatedAt,
	}
}

// ToFilingListResponses converts a slice of domain filings to list DTOs
func ToFilingListResponses(filings []filing.TaxFiling) []FilingListResponse {
	responses := make([]FilingListResponse, len(filings))
	for i := range filings {
		responses[i] = ToFilingListResponse(&filings[i])
	}
	return responses
}
