package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportFilter defines the common filtering options for report queries
type ReportFilter struct {
	TenantID uuid.UUID  `json:"-"`
	From     time.Time  `json:"from"`
	To       time.Time  `json:"to"`
	ClientID *uuid.UUID `json:"client_id,omitempty"`
	TaxType  string     `json:"tax_type,omitempty"`
	Status   string     `json:"status,omitempty"`
}

// FilingSummaryRow is one filing in the filing summary report
type FilingSummaryRow struct {
	FilingNumber string          `json:"filing_number"`
	ClientCode   string          `json:"client_code"`
	ClientName   string          `json:"client_name"`
	TaxType      string          `json:"tax_type"`
	PeriodStart  time.Time       `json:"period_start"`
	PeriodEnd    time.Time       `json:"period_end"`
	DueDate      time.Time       `json:"due_date"`
	Status       string          `json:"status"`
	TaxDue       decimal.Decimal `json:"tax_due"`
	Penalty      decimal.Decimal `json:"penalty"`
	Interest     decimal.Decimal `json:"interest"`
	TotalDue     decimal.Decimal `json:"total_due"`
}

// FilingSummaryTotals aggregates the filing summary report
type FilingSummaryTotals struct {
	FilingCount   int64            `json:"filing_count"`
	ByStatus      map[string]int64 `json:"by_status"`
	TotalTaxDue   decimal.Decimal  `json:"total_tax_due"`
	TotalPenalty  decimal.Decimal  `json:"total_penalty"`
	TotalInterest decimal.Decimal  `json:"total_interest"`
	TotalDue      decimal.Decimal  `json:"total_due"`
}

// PaymentSummaryRow is one payment in the payment summary report
type PaymentSummaryRow struct {
	PaymentNumber string          `json:"payment_number"`
	FilingNumber  string          `json:"filing_number,omitempty"`
	ClientCode    string          `json:"client_code"`
	ClientName    string          `json:"client_name"`
	Method        string          `json:"method"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Reference     string          `json:"reference,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
}

// PaymentSummaryTotals aggregates the payment summary report
type PaymentSummaryTotals struct {
	PaymentCount   int64            `json:"payment_count"`
	ConfirmedCount int64            `json:"confirmed_count"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	ConfirmedTotal decimal.Decimal  `json:"confirmed_total"`
	ByMethod       map[string]int64 `json:"by_method"`
}

// StatementLine is one movement on a client statement: a filing adds to the
// balance owed, a confirmed payment reduces it.
type StatementLine struct {
	Date        time.Time       `json:"date"`
	Kind        string          `json:"kind"` // "filing" or "payment"
	Reference   string          `json:"reference"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`   // Liability added
	Credit      decimal.Decimal `json:"credit"`  // Payment received
	Balance     decimal.Decimal `json:"balance"` // Running balance after this line
}

// ClientStatement is the full statement for one client over a period
type ClientStatement struct {
	ClientID       uuid.UUID       `json:"client_id"`
	ClientCode     string          `json:"client_code"`
	ClientName     string          `json:"client_name"`
	PeriodStart    time.Time       `json:"period_start"`
	PeriodEnd      time.Time       `json:"period_end"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Lines          []StatementLine `json:"lines"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// ComplianceStatusRow summarizes one client's filing discipline
type ComplianceStatusRow struct {
	ClientID        uuid.UUID       `json:"client_id"`
	ClientCode      string          `json:"client_code"`
	ClientName      string          `json:"client_name"`
	TaxpayerSize    string          `json:"taxpayer_size"`
	FilingsDue      int64           `json:"filings_due"`
	FiledOnTime     int64           `json:"filed_on_time"`
	FiledLate       int64           `json:"filed_late"`
	Outstanding     int64           `json:"outstanding"`
	OverdueAmount   decimal.Decimal `json:"overdue_amount"`
	ComplianceScore decimal.Decimal `json:"compliance_score"` // 0-100, on-time share of due filings
}

// RevenueByTaxTypeRow aggregates liabilities and collections per tax type
type RevenueByTaxTypeRow struct {
	TaxType        string          `json:"tax_type"`
	FilingCount    int64           `json:"filing_count"`
	TotalAssessed  decimal.Decimal `json:"total_assessed"`
	TotalPenalty   decimal.Decimal `json:"total_penalty"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
	TotalCollected decimal.Decimal `json:"total_collected"`
	CollectionRate decimal.Decimal `json:"collection_rate"` // Percentage of assessed amount collected
}

// QueryRepository runs the aggregation queries behind each report type.
// Implementations read across the filing, payment and client tables.
type QueryRepository interface {
	// FilingSummary lists filings in the period with report totals
	FilingSummary(ctx context.Context, filter ReportFilter) ([]FilingSummaryRow, *FilingSummaryTotals, error)

	// PaymentSummary lists payments in the period with report totals
	PaymentSummary(ctx context.Context, filter ReportFilter) ([]PaymentSummaryRow, *PaymentSummaryTotals, error)

	// ClientStatement builds the chronological statement for one client.
	// The filter's ClientID is required.
	ClientStatement(ctx context.Context, filter ReportFilter) (*ClientStatement, error)

	// ComplianceStatus summarizes filing discipline per client
	ComplianceStatus(ctx context.Context, filter ReportFilter) ([]ComplianceStatusRow, error)

	// RevenueByTaxType aggregates assessed and collected amounts per tax type
	RevenueByTaxType(ctx context.Context, filter ReportFilter) ([]RevenueByTaxTypeRow, error)
}
