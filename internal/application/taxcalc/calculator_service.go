package taxcalc

import (
	"context"
	"sort"
	"time"

	"github.com/bettstax/backend/internal/domain/compliance"
	"github.com/bettstax/backend/internal/domain/filing"
	"github.com/bettstax/backend/internal/domain/taxcalc"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CalculatorService exposes the Finance Act rate tables and assessments.
// The arithmetic lives in the domain; this service shapes requests and
// resolves due date previews against the tenant's deadline rules.
type CalculatorService struct {
	ruleRepo    compliance.DeadlineRuleRepository
	holidayRepo compliance.PublicHolidayRepository
}

// NewCalculatorService creates a new CalculatorService
func NewCalculatorService(
	ruleRepo compliance.DeadlineRuleRepository,
	holidayRepo compliance.PublicHolidayRepository,
) *CalculatorService {
	return &CalculatorService{
		ruleRepo:    ruleRepo,
		holidayRepo: holidayRepo,
	}
}

// CalculateLiability returns the tax due for a tax type and taxable amount
func (s *CalculatorService) CalculateLiability(ctx context.Context, req CalculateLiabilityRequest) (*LiabilityResponse, error) {
	taxDue, err := taxcalc.CalculateLiability(filing.TaxType(req.TaxType), req.Amount, liabilityOptions(req.WithholdingCategory, req.Corporate, req.Turnover))
	if err != nil {
		return nil, err
	}

	return &LiabilityResponse{
		TaxType:       req.TaxType,
		TaxableAmount: req.Amount,
		TaxDue:        taxDue,
		EffectiveRate: effectiveRate(taxDue, req.Amount),
	}, nil
}

// CalculateComprehensive returns the full assessment breakdown, including
// a due date preview when a period end is given
func (s *CalculatorService) CalculateComprehensive(ctx context.Context, tenantID uuid.UUID, req CalculateComprehensiveRequest) (*ComprehensiveResponse, error) {
	taxType := filing.TaxType(req.TaxType)

	response := &ComprehensiveResponse{
		TaxType:       req.TaxType,
		TaxableAmount: req.Amount,
	}

	switch taxType {
	case filing.TaxTypeGST:
		taxDue, err := taxcalc.CalculateGST(req.Amount)
		if err != nil {
			return nil, err
		}
		response.TaxDue = taxDue
		response.GST = &GSTBreakdown{
			Rate:                  taxcalc.GSTRate,
			RegistrationThreshold: taxcalc.GSTRegistrationThreshold,
			OverRegistrationLimit: req.Amount.GreaterThan(taxcalc.GSTRegistrationThreshold),
		}

	case filing.TaxTypeIncomeTax:
		if req.Corporate {
			turnover := decimal.Zero
			if req.Turnover != nil {
				turnover = *req.Turnover
			}
			result, err := taxcalc.CalculateCorporateTax(req.Amount, turnover)
			if err != nil {
				return nil, err
			}
			response.TaxDue = result.TaxDue
			response.Corporate = &CorporateBreakdown{
				ChargeableIncome:   result.ChargeableIncome,
				StandardTax:        result.StandardTax,
				Turnover:           result.Turnover,
				MinimumTurnoverTax: result.MinimumTurnoverTax,
				MinimumApplied:     result.MinimumApplied,
			}
		} else {
			taxDue, bands, err := taxcalc.CalculateAnnualIncomeTax(req.Amount)
			if err != nil {
				return nil, err
			}
			response.TaxDue = taxDue
			response.Bands = toBandResponses(bands)
		}

	case filing.TaxTypePayrollPAYE:
		result, err := taxcalc.CalculateMonthlyPAYE(req.Amount)
		if err != nil {
			return nil, err
		}
		response.TaxDue = result.PAYE
		response.Bands = toBandResponses(result.Bands)
		response.Payroll = &PayrollBreakdown{
			GrossPay:          result.GrossPay,
			PAYE:              result.PAYE,
			EmployeeNASSIT:    result.EmployeeNASSIT,
			EmployerNASSIT:    result.EmployerNASSIT,
			NetPay:            result.NetPay,
			TotalEmployerCost: result.TotalEmployerCost,
		}

	case filing.TaxTypeWithholding:
		category := taxcalc.WithholdingCategory(req.WithholdingCategory)
		taxDue, err := taxcalc.CalculateWithholding(category, req.Amount)
		if err != nil {
			return nil, err
		}
		rate, err := taxcalc.WithholdingRate(category)
		if err != nil {
			return nil, err
		}
		response.TaxDue = taxDue
		response.Withholding = &WithholdingBreakdown{
			Category: req.WithholdingCategory,
			Rate:     rate,
		}

	default:
		// the binding oneof keeps this unreachable from the API
		taxDue, err := taxcalc.CalculateLiability(taxType, req.Amount, liabilityOptions(req.WithholdingCategory, req.Corporate, req.Turnover))
		if err != nil {
			return nil, err
		}
		response.TaxDue = taxDue
	}

	response.EffectiveRate = effectiveRate(response.TaxDue, req.Amount)

	if req.PeriodEnd != nil {
		due, err := s.computeDueDate(ctx, tenantID, taxType, *req.PeriodEnd)
		if err != nil {
			return nil, err
		}
		response.DueDate = &due
	}

	return response, nil
}

// CalculateLateCharges returns the penalty and daily pro-rated interest on
// an unpaid liability
func (s *CalculatorService) CalculateLateCharges(ctx context.Context, req LateChargesRequest) (*LateChargesResponse, error) {
	asOf := time.Now()
	if req.AsOf != nil {
		asOf = *req.AsOf
	}

	penalty, interest := taxcalc.LateCharges(req.TaxDue, req.DueDate, asOf)

	daysLate := 0
	if asOf.After(req.DueDate) {
		daysLate = int(asOf.Sub(req.DueDate).Hours() / 24)
		if daysLate < 1 {
			daysLate = 1
		}
	}

	return &LateChargesResponse{
		TaxDue:   req.TaxDue,
		DueDate:  req.DueDate,
		AsOf:     asOf,
		DaysLate: daysLate,
		Penalty:  penalty,
		Interest: interest,
		Total:    penalty.Add(interest),
	}, nil
}

// RateTables returns the statutory rates and bracket tables
func (s *CalculatorService) RateTables() *RateTablesResponse {
	return &RateTablesResponse{
		GSTRate:                  taxcalc.GSTRate,
		GSTRegistrationThreshold: taxcalc.GSTRegistrationThreshold,
		CorporateRate:            taxcalc.CorporateTaxRate,
		MinimumTurnoverRate:      taxcalc.MinimumTurnoverTaxRate,
		NASSITEmployeeRate:       taxcalc.NASSITEmployeeRate,
		NASSITEmployerRate:       taxcalc.NASSITEmployerRate,
		LateFilingPenaltyRate:    taxcalc.LateFilingPenaltyRate,
		LateInterestAnnualRate:   taxcalc.LateInterestAnnualRate,
		AnnualIncomeBrackets:     toBracketRows(taxcalc.AnnualIncomeBrackets()),
		MonthlyPAYEBrackets:      toBracketRows(taxcalc.MonthlyPAYEBrackets()),
	}
}

// WithholdingCategories returns the withholding categories and rates,
// sorted by category name
func (s *CalculatorService) WithholdingCategories() []WithholdingCategoryResponse {
	rates := taxcalc.AllWithholdingCategories()
	responses := make([]WithholdingCategoryResponse, 0, len(rates))
	for category, rate := range rates {
		responses = append(responses, WithholdingCategoryResponse{
			Category: string(category),
			Rate:     rate,
		})
	}
	sort.Slice(responses, func(i, j int) bool {
		return responses[i].Category < responses[j].Category
	})
	return responses
}

func (s *CalculatorService) computeDueDate(ctx context.Context, tenantID uuid.UUID, taxType filing.TaxType, periodEnd time.Time) (time.Time, error) {
	rule, err := s.ruleRepo.FindByTaxType(ctx, tenantID, taxType)
	if err != nil {
		return time.Time{}, err
	}
	if rule == nil || !rule.Active {
		return compliance.FallbackDueDate(periodEnd), nil
	}

	calendar := compliance.CalendarFunc(func(date time.Time) bool { return false })
	if rule.AdjustForHolidays {
		holidays, err := s.holidayRepo.FindActive(ctx, tenantID)
		if err != nil {
			return time.Time{}, err
		}
		slice := make(compliance.HolidaySlice, len(holidays))
		for i := range holidays {
			slice[i] = &holidays[i]
		}
		return compliance.DueDate(rule, periodEnd, slice)
	}

	return compliance.DueDate(rule, periodEnd, calendar)
}

func liabilityOptions(category string, corporate bool, turnover *decimal.Decimal) taxcalc.LiabilityOptions {
	opts := taxcalc.LiabilityOptions{
		Category:  taxcalc.WithholdingCategory(category),
		Corporate: corporate,
	}
	if turnover != nil {
		opts.Turnover = *turnover
	}
	return opts
}

func effectiveRate(taxDue, amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}
	return taxDue.Div(amount).Round(6)
}
