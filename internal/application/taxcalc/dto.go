package taxcalc

import (
	"time"

	"github.com/bettstax/backend/internal/domain/taxcalc"
	"github.com/shopspring/decimal"
)

// ============================================================================
// Request DTOs
// ============================================================================

// CalculateLiabilityRequest asks for the tax due on a taxable amount
type CalculateLiabilityRequest struct {
	TaxType             string           `json:"tax_type" binding:"required,oneof=gst income_tax payroll_paye withholding"`
	Amount              decimal.Decimal  `json:"amount" binding:"required"`
	WithholdingCategory string           `json:"withholding_category" binding:"omitempty,oneof=dividends interest rent royalties contractor_resident contractor_nonresident professional_fees employment_nonresident"`
	Corporate           bool             `json:"corporate"`
	Turnover            *decimal.Decimal `json:"turnover"`
}

// CalculateComprehensiveRequest asks for the full assessment breakdown,
// optionally with a due date preview for a filing period
type CalculateComprehensiveRequest struct {
	TaxType             string           `json:"tax_type" binding:"required,oneof=gst income_tax payroll_paye withholding"`
	Amount              decimal.Decimal  `json:"amount" binding:"required"`
	WithholdingCategory string           `json:"withholding_category" binding:"omitempty,oneof=dividends interest rent royalties contractor_resident contractor_nonresident professional_fees employment_nonresident"`
	Corporate           bool             `json:"corporate"`
	Turnover            *decimal.Decimal `json:"turnover"`
	PeriodEnd           *time.Time       `json:"period_end"`
}

// LateChargesRequest asks for penalty and interest on an unpaid liability
type LateChargesRequest struct {
	TaxDue  decimal.Decimal `json:"tax_due" binding:"required"`
	DueDate time.Time       `json:"due_date" binding:"required"`
	AsOf    *time.Time      `json:"as_of"`
}

// ============================================================================
// Response DTOs
// ============================================================================

// LiabilityResponse carries a computed tax liability
type LiabilityResponse struct {
	TaxType       string          `json:"tax_type"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	TaxDue        decimal.Decimal `json:"tax_due"`
	EffectiveRate decimal.Decimal `json:"effective_rate"`
}

// BandResponse is one band of a progressive calculation
type BandResponse struct {
	From   decimal.Decimal  `json:"from"`
	To     *decimal.Decimal `json:"to,omitempty"`
	Rate   decimal.Decimal  `json:"rate"`
	Amount decimal.Decimal  `json:"amount"`
	Tax    decimal.Decimal  `json:"tax"`
}

// PayrollBreakdown carries the PAYE and NASSIT lines
type PayrollBreakdown struct {
	GrossPay          decimal.Decimal `json:"gross_pay"`
	PAYE              decimal.Decimal `json:"paye"`
	EmployeeNASSIT    decimal.Decimal `json:"employee_nassit"`
	EmployerNASSIT    decimal.Decimal `json:"employer_nassit"`
	NetPay            decimal.Decimal `json:"net_pay"`
	TotalEmployerCost decimal.Decimal `json:"total_employer_cost"`
}

// CorporateBreakdown carries the corporate assessment lines
type CorporateBreakdown struct {
	ChargeableIncome   decimal.Decimal `json:"chargeable_income"`
	StandardTax        decimal.Decimal `json:"standard_tax"`
	Turnover           decimal.Decimal `json:"turnover"`
	MinimumTurnoverTax decimal.Decimal `json:"minimum_turnover_tax"`
	MinimumApplied     bool            `json:"minimum_applied"`
}

// GSTBreakdown carries the GST lines
type GSTBreakdown struct {
	Rate                  decimal.Decimal `json:"rate"`
	RegistrationThreshold decimal.Decimal `json:"registration_threshold"`
	OverRegistrationLimit bool            `json:"over_registration_limit"`
}

// WithholdingBreakdown carries the withholding lines
type WithholdingBreakdown struct {
	Category string          `json:"category"`
	Rate     decimal.Decimal `json:"rate"`
}

// ComprehensiveResponse is the full assessment breakdown
type ComprehensiveResponse struct {
	TaxType       string                `json:"tax_type"`
	TaxableAmount decimal.Decimal       `json:"taxable_amount"`
	TaxDue        decimal.Decimal       `json:"tax_due"`
	EffectiveRate decimal.Decimal       `json:"effective_rate"`
	Bands         []BandResponse        `json:"bands,omitempty"`
	Payroll       *PayrollBreakdown     `json:"payroll,omitempty"`
	Corporate     *CorporateBreakdown   `json:"corporate,omitempty"`
	GST           *GSTBreakdown         `json:"gst,omitempty"`
	Withholding   *WithholdingBreakdown `json:"withholding,omitempty"`
	DueDate       *time.Time            `json:"due_date,omitempty"`
}

// LateChargesResponse carries penalty and interest on a late filing
type LateChargesResponse struct {
	TaxDue   decimal.Decimal `json:"tax_due"`
	DueDate  time.Time       `json:"due_date"`
	AsOf     time.Time       `json:"as_of"`
	DaysLate int             `json:"days_late"`
	Penalty  decimal.Decimal `json:"penalty"`
	Interest decimal.Decimal `json:"interest"`
	Total    decimal.Decimal `json:"total"`
}

// BracketRow is one row of a rate table
type BracketRow struct {
	UpTo *decimal.Decimal `json:"up_to,omitempty"`
	Rate decimal.Decimal  `json:"rate"`
}

// RateTablesResponse exposes the statutory rate tables
type RateTablesResponse struct {
	GSTRate                  decimal.Decimal `json:"gst_rate"`
	GSTRegistrationThreshold decimal.Decimal `json:"gst_registration_threshold"`
	CorporateRate            decimal.Decimal `json:"corporate_rate"`
	MinimumTurnoverRate      decimal.Decimal `json:"minimum_turnover_rate"`
	NASSITEmployeeRate       decimal.Decimal `json:"nassit_employee_rate"`
	NASSITEmployerRate       decimal.Decimal `json:"nassit_employer_rate"`
	LateFilingPenaltyRate    decimal.Decimal `json:"late_filing_penalty_rate"`
	LateInterestAnnualRate   decimal.Decimal `json:"late_interest_annual_rate"`
	AnnualIncomeBrackets     []BracketRow    `json:"annual_income_brackets"`
	MonthlyPAYEBrackets      []BracketRow    `json:"monthly_paye_brackets"`
}

// WithholdingCategoryResponse is one withholding category and its rate
type WithholdingCategoryResponse struct {
	Category string          `json:"category"`
	Rate     decimal.Decimal `json:"rate"`
}

// ============================================================================
// Conversion Functions
// ============================================================================

func toBandResponses(bands []taxcalc.BandAmount) []BandResponse {
	responses := make([]BandResponse, len(bands))
	for i, b := range bands {
		responses[i] = BandResponse{
			From:   b.From,
			To:     b.To,
			Rate:   b.Rate,
			Amount: b.Amount,
			Tax:    b.Tax,
		}
	}
	return responses
}

func toBracketRows(brackets []taxcalc.Bracket) []BracketRow {
	rows := make([]BracketRow, len(brackets))
	for i, b := range brackets {
		rows[i] = BracketRow{UpTo: b.UpTo, Rate: b.Rate}
	}
	return rows
}
