package taxcalc

import (
	"time"

	"github.com/bettstax/backend/internal/domain/filing"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Finance Act 2025 rates and thresholds. Amounts are annual SLE unless noted.
var (
	// GSTRate is the standard Goods and Services Tax rate
	GSTRate = decimal.NewFromFloat(0.15)

	// GSTRegistrationThreshold is the annual turnover above which GST
	// registration is mandatory
	GSTRegistrationThreshold = decimal.NewFromInt(500000)

	// CorporateTaxRate applies to chargeable business income
	CorporateTaxRate = decimal.NewFromFloat(0.25)

	// MinimumTurnoverTaxRate is the alternative minimum tax on turnover
	// when chargeable income is nil or produces a lower liability
	MinimumTurnoverTaxRate = decimal.NewFromFloat(0.03)

	// NASSITEmployeeRate and NASSITEmployerRate are the social security
	// contribution rates on gross payroll
	NASSITEmployeeRate = decimal.NewFromFloat(0.05)
	NASSITEmployerRate = decimal.NewFromFloat(0.10)

	// LateFilingPenaltyRate is applied once to tax due after the due date
	LateFilingPenaltyRate = decimal.NewFromFloat(0.10)

	// LateInterestAnnualRate accrues daily on tax due after the due date
	LateInterestAnnualRate = decimal.NewFromFloat(0.15)
)

// Bracket is one progressive income tax band. A nil UpTo means no upper bound.
type Bracket struct {
	UpTo *decimal.Decimal
	Rate decimal.Decimal
}

// annualBrackets returns the Finance Act 2025 individual income tax bands.
// The first 7,200 SLE is exempt; the top marginal rate is 30%.
func annualBrackets() []Bracket {
	upTo := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}
	return []Bracket{
		{UpTo: upTo(7200), Rate: decimal.Zero},
		{UpTo: upTo(10800), Rate: decimal.NewFromFloat(0.15)},
		{UpTo: upTo(14400), Rate: decimal.NewFromFloat(0.20)},
		{UpTo: upTo(18000), Rate: decimal.NewFromFloat(0.25)},
		{UpTo: nil, Rate: decimal.NewFromFloat(0.30)},
	}
}

// monthlyBrackets derives the PAYE bands as annual bands divided by twelve
func monthlyBrackets() []Bracket {
	twelve := decimal.NewFromInt(12)
	annual := annualBrackets()
	monthly := make([]Bracket, len(annual))
	for i, b := range annual {
		mb := Bracket{Rate: b.Rate}
		if b.UpTo != nil {
			v := b.UpTo.Div(twelve)
			mb.UpTo = &v
		}
		monthly[i] = mb
	}
	return monthly
}

// AnnualIncomeBrackets exposes the individual income tax table
func AnnualIncomeBrackets() []Bracket {
	return annualBrackets()
}

// MonthlyPAYEBrackets exposes the monthly payroll withholding table
func MonthlyPAYEBrackets() []Bracket {
	return monthlyBrackets()
}

// WithholdingCategory identifies a withholding tax class
type WithholdingCategory string

const (
	WithholdingDividends             WithholdingCategory = "dividends"
	WithholdingInterest              WithholdingCategory = "interest"
	WithholdingRent                  WithholdingCategory = "rent"
	WithholdingRoyalties             WithholdingCategory = "royalties"
	WithholdingContractorResident    WithholdingCategory = "contractor_resident"
	WithholdingContractorNonResident WithholdingCategory = "contractor_nonresident"
	WithholdingProfessionalFees      WithholdingCategory = "professional_fees"
	WithholdingEmploymentNonResident WithholdingCategory = "employment_nonresident"
)

// withholdingRates maps category to flat rate
var withholdingRates = map[WithholdingCategory]decimal.Decimal{
	WithholdingDividends:             decimal.NewFromFloat(0.10),
	WithholdingInterest:              decimal.NewFromFloat(0.15),
	WithholdingRent:                  decimal.NewFromFloat(0.10),
	WithholdingRoyalties:             decimal.NewFromFloat(0.25),
	WithholdingContractorResident:    decimal.NewFromFloat(0.055),
	WithholdingContractorNonResident: decimal.NewFromFloat(0.105),
	WithholdingProfessionalFees:      decimal.NewFromFloat(0.10),
	WithholdingEmploymentNonResident: decimal.NewFromFloat(0.25),
}

// AllWithholdingCategories returns every category with its rate
func AllWithholdingCategories() map[WithholdingCategory]decimal.Decimal {
	out := make(map[WithholdingCategory]decimal.Decimal, len(withholdingRates))
	for k, v := range withholdingRates {
		out[k] = v
	}
	return out
}

// WithholdingRate returns the flat rate for a category
func WithholdingRate(category WithholdingCategory) (decimal.Decimal, error) {
	rate, ok := withholdingRates[category]
	if !ok {
		return decimal.Zero, shared.NewDomainError("INVALID_INPUT", "Unknown withholding category: "+string(category))
	}
	return rate, nil
}

// BandAmount is the tax charged within one band of a progressive calculation
type BandAmount struct {
	From   decimal.Decimal  `json:"from"`
	To     *decimal.Decimal `json:"to,omitempty"`
	Rate   decimal.Decimal  `json:"rate"`
	Amount decimal.Decimal  `json:"amount"` // Income taxed in this band
	Tax    decimal.Decimal  `json:"tax"`
}

// CalculateGST returns GST due on taxable supplies
func CalculateGST(taxableSupplies decimal.Decimal) (decimal.Decimal, error) {
	if taxableSupplies.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_INPUT", "Taxable supplies cannot be negative")
	}
	return taxableSupplies.Mul(GSTRate), nil
}

// CalculateProgressive charges income across a bracket table and returns the
// total with the per-band breakdown
func CalculateProgressive(income decimal.Decimal, brackets []Bracket) (decimal.Decimal, []BandAmount, error) {
	if income.IsNegative() {
		return decimal.Zero, nil, shared.NewDomainError("INVALID_INPUT", "Income cannot be negative")
	}

	total := decimal.Zero
	bands := make([]BandAmount, 0, len(brackets))
	lower := decimal.Zero

	for _, b := range brackets {
		if income.LessThanOrEqual(lower) {
			break
		}

		var bandWidth decimal.Decimal
		if b.UpTo == nil {
			bandWidth = income.Sub(lower)
		} else {
			upper := *b.UpTo
			if income.LessThan(upper) {
				upper = income
			}
			bandWidth = upper.Sub(lower)
		}
		if bandWidth.IsNegative() {
			bandWidth = decimal.Zero
		}

		tax := bandWidth.Mul(b.Rate)
		total = total.Add(tax)
		bands = append(bands, BandAmount{
			From:   lower,
			To:     b.UpTo,
			Rate:   b.Rate,
			Amount: bandWidth,
			Tax:    tax,
		})

		if b.UpTo == nil {
			break
		}
		lower = *b.UpTo
	}

	return total, bands, nil
}

// CalculateAnnualIncomeTax returns individual income tax on annual income
func CalculateAnnualIncomeTax(annualIncome decimal.Decimal) (decimal.Decimal, []BandAmount, error) {
	return CalculateProgressive(annualIncome, annualBrackets())
}

// PayrollResult breaks down one month of payroll withholding
type PayrollResult struct {
	GrossPay          decimal.Decimal `json:"gross_pay"`
	PAYE              decimal.Decimal `json:"paye"`
	Bands             []BandAmount    `json:"bands"`
	EmployeeNASSIT    decimal.Decimal `json:"employee_nassit"`
	EmployerNASSIT    decimal.Decimal `json:"employer_nassit"`
	NetPay            decimal.Decimal `json:"net_pay"`
	TotalEmployerCost decimal.Decimal `json:"total_employer_cost"`
}

// CalculateMonthlyPAYE returns payroll tax and NASSIT contributions for one
// month of gross pay. PAYE is charged on gross less the employee NASSIT
// contribution.
func CalculateMonthlyPAYE(grossPay decimal.Decimal) (*PayrollResult, error) {
	if grossPay.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Gross pay cannot be negative")
	}

	employeeNASSIT := grossPay.Mul(NASSITEmployeeRate)
	employerNASSIT := grossPay.Mul(NASSITEmployerRate)
	taxable := grossPay.Sub(employeeNASSIT)

	paye, bands, err := CalculateProgressive(taxable, monthlyBrackets())
	if err != nil {
		return nil, err
	}

	return &PayrollResult{
		GrossPay:          grossPay,
		PAYE:              paye,
		Bands:             bands,
		EmployeeNASSIT:    employeeNASSIT,
		EmployerNASSIT:    employerNASSIT,
		NetPay:            grossPay.Sub(employeeNASSIT).Sub(paye),
		TotalEmployerCost: grossPay.Add(employerNASSIT),
	}, nil
}

// CorporateResult carries the corporate assessment with the minimum-tax
// alternative when turnover is known
type CorporateResult struct {
	ChargeableIncome   decimal.Decimal `json:"chargeable_income"`
	StandardTax        decimal.Decimal `json:"standard_tax"`
	Turnover           decimal.Decimal `json:"turnover"`
	MinimumTurnoverTax decimal.Decimal `json:"minimum_turnover_tax"`
	TaxDue             decimal.Decimal `json:"tax_due"`
	MinimumApplied     bool            `json:"minimum_applied"`
}

// CalculateCorporateTax assesses corporate income tax. When turnover is
// positive the 3% minimum turnover tax applies if it exceeds the standard
// 25% assessment.
func CalculateCorporateTax(chargeableIncome, turnover decimal.Decimal) (*CorporateResult, error) {
	if chargeableIncome.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Chargeable income cannot be negative")
	}
	if turnover.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Turnover cannot be negative")
	}

	standard := chargeableIncome.Mul(CorporateTaxRate)
	minimum := turnover.Mul(MinimumTurnoverTaxRate)

	result := &CorporateResult{
		ChargeableIncome:   chargeableIncome,
		StandardTax:        standard,
		Turnover:           turnover,
		MinimumTurnoverTax: minimum,
		TaxDue:             standard,
	}
	if turnover.IsPositive() && minimum.GreaterThan(standard) {
		result.TaxDue = minimum
		result.MinimumApplied = true
	}

	return result, nil
}

// CalculateWithholding returns tax withheld on a payment in a category
func CalculateWithholding(category WithholdingCategory, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_INPUT", "Amount cannot be negative")
	}
	rate, err := WithholdingRate(category)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

// LateCharges computes the late filing penalty and daily pro-rated interest
// on unpaid tax between the due date and asOf. Both are zero when the filing
// is not yet late.
func LateCharges(taxDue decimal.Decimal, dueDate, asOf time.Time) (penalty, interest decimal.Decimal) {
	if !asOf.After(dueDate) || taxDue.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero
	}

	penalty = taxDue.Mul(LateFilingPenaltyRate)

	daysLate := int64(asOf.Sub(dueDate).Hours() / 24)
	if daysLate < 1 {
		daysLate = 1
	}
	interest = taxDue.
		Mul(LateInterestAnnualRate).
		Mul(decimal.NewFromInt(daysLate)).
		Div(decimal.NewFromInt(365))

	return penalty, interest
}

// LiabilityOptions carries the extra inputs some tax types need
type LiabilityOptions struct {
	// Withholding category, required for filing.TaxTypeWithholding
	Category WithholdingCategory
	// Annual turnover, used for the corporate minimum tax alternative
	Turnover decimal.Decimal
	// Corporate switches income tax to the corporate assessment
	Corporate bool
}

// CalculateLiability returns the tax due for a filing's tax type and taxable
// amount. This is the single entry point the filing service uses.
func CalculateLiability(taxType filing.TaxType, amount decimal.Decimal, opts LiabilityOptions) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_INPUT", "Taxable amount cannot be negative")
	}

	switch taxType {
	case filing.TaxTypeGST:
		return CalculateGST(amount)
	case filing.TaxTypeIncomeTax:
		if opts.Corporate {
			result, err := CalculateCorporateTax(amount, opts.Turnover)
			if err != nil {
				return decimal.Zero, err
			}
			return result.TaxDue, nil
		}
		tax, _, err := CalculateAnnualIncomeTax(amount)
		return tax, err
	case filing.TaxTypePayrollPAYE:
		result, err := CalculateMonthlyPAYE(amount)
		if err != nil {
			return decimal.Zero, err
		}
		return result.PAYE, nil
	case filing.TaxTypeWithholding:
		return CalculateWithholding(opts.Category, amount)
	default:
		return decimal.Zero, shared.NewDomainError("INVALID_INPUT", "Unknown tax type: "+taxType.String())
	}
}
