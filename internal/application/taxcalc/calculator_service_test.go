package taxcalc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bettstax/backend/internal/domain/compliance"
	"github.com/bettstax/backend/internal/domain/filing"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// ============================================================================
// Mocks
// ============================================================================

// MockRuleRepository is a mock implementation of DeadlineRuleRepository
type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*compliance.DeadlineRule, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*compliance.DeadlineRule), args.Error(1)
}

func (m *MockRuleRepository) FindByTaxType(ctx context.Context, tenantID uuid.UUID, taxType filing.TaxType) (*compliance.DeadlineRule, error) {
	args := m.Called(ctx, tenantID, taxType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*compliance.DeadlineRule), args.Error(1)
}

func (m *MockRuleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]compliance.DeadlineRule, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]compliance.DeadlineRule), args.Error(1)
}

func (m *MockRuleRepository) Save(ctx context.Context, rule *compliance.DeadlineRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockRuleRepository) ExistsByTaxType(ctx context.Context, tenantID uuid.UUID, taxType filing.TaxType) (bool, error) {
	args := m.Called(ctx, tenantID, taxType)
	return args.Bool(0), args.Error(1)
}

func (m *MockRuleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

var _ compliance.DeadlineRuleRepository = (*MockRuleRepository)(nil)

// MockHolidayRepository is a mock implementation of PublicHolidayRepository
type MockHolidayRepository struct {
	mock.Mock
}

func (m *MockHolidayRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*compliance.PublicHoliday, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*compliance.PublicHoliday), args.Error(1)
}

func (m *MockHolidayRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]compliance.PublicHoliday, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]compliance.PublicHoliday), args.Error(1)
}

func (m *MockHolidayRepository) FindByYear(ctx context.Context, tenantID uuid.UUID, year int) ([]compliance.PublicHoliday, error) {
	args := m.Called(ctx, tenantID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]compliance.PublicHoliday), args.Error(1)
}

func (m *MockHolidayRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]compliance.PublicHoliday, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]compliance.PublicHoliday), args.Error(1)
}

func (m *MockHolidayRepository) ExistsOnDate(ctx context.Context, tenantID uuid.UUID, date time.Time) (bool, error) {
	args := m.Called(ctx, tenantID, date)
	return args.Bool(0), args.Error(1)
}

func (m *MockHolidayRepository) Save(ctx context.Context, holiday *compliance.PublicHoliday) error {
	args := m.Called(ctx, holiday)
	return args.Error(0)
}

func (m *MockHolidayRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockHolidayRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

var _ compliance.PublicHolidayRepository = (*MockHolidayRepository)(nil)

// ============================================================================
// Test Helpers
// ============================================================================

func newCalculatorService() (*CalculatorService, *MockRuleRepository, *MockHolidayRepository) {
	mockRules := new(MockRuleRepository)
	mockHolidays := new(MockHolidayRepository)
	return NewCalculatorService(mockRules, mockHolidays), mockRules, mockHolidays
}

// ============================================================================
// Liability Tests
// ============================================================================

func TestCalculatorService_CalculateLiability_GST(t *testing.T) {
	service, _, _ := newCalculatorService()

	response, err := service.CalculateLiability(context.Background(), CalculateLiabilityRequest{
		TaxType: "gst",
		Amount:  decimal.NewFromInt(1000000),
	})

	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(150000).Equal(response.TaxDue))
	assert.True(t, decimal.NewFromFloat(0.15).Equal(response.EffectiveRate))
}

func TestCalculatorService_CalculateLiability_Withholding(t *testing.T) {
	service, _, _ := newCalculatorService()

	response, err := service.CalculateLiability(context.Background(), CalculateLiabilityRequest{
		TaxType:             "withholding",
		Amount:              decimal.NewFromInt(10000),
		WithholdingCategory: "contractor_resident",
	})

	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(550).Equal(response.TaxDue))
}

func TestCalculatorService_CalculateLiability_UnknownCategory(t *testing.T) {
	service, _, _ := newCalculatorService()

	response, err := service.CalculateLiability(context.Background(), CalculateLiabilityRequest{
		TaxType:             "withholding",
		Amount:              decimal.NewFromInt(10000),
		WithholdingCategory: "gambling",
	})

	assert.Error(t, err)
	assert.Nil(t, response)
	var domainErr *shared.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
}

func TestCalculatorService_CalculateLiability_NegativeAmount(t *testing.T) {
	service, _, _ := newCalculatorService()

	response, err := service.CalculateLiability(context.Background(), CalculateLiabilityRequest{
		TaxType: "gst",
		Amount:  decimal.NewFromInt(-100),
	})

	assert.Error(t, err)
	assert.Nil(t, response)
}

// ============================================================================
// Comprehensive Tests
// ============================================================================

func TestCalculatorService_Comprehensive_IncomeTaxBands(t *testing.T) {
	service, _, _ := newCalculatorService()

	// 20,000 annual: 7,200@0 + 3,600@15% + 3,600@20% + 3,600@25% + 2,000@30%
	// = 0 + 540 + 720 + 900 + 600 = 2,760
	response, err := service.CalculateComprehensive(context.Background(), uuid.New(), CalculateComprehensiveRequest{
		TaxType: "income_tax",
		Amount:  decimal.NewFromInt(20000),
	})

	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2760).Equal(response.TaxDue), "got %s", response.TaxDue)
	assert.Len(t, response.Bands, 5)
	assert.True(t, response.Bands[0].Tax.IsZero())
	assert.Nil(t, response.Payroll)
	assert.Nil(t, response.GST)
}

func TestCalculatorService_Comprehensive_Payroll(t *testing.T) {
	service, _, _ := newCalculatorService()

	// gross 2,000: employee NASSIT 100, employer 200, taxable 1,900
	// monthly bands: 600@0, 300@15%=45, 300@20%=60, 300@25%=75, 400@30%=120 → PAYE 300
	response, err := service.CalculateComprehensive(context.Background(), uuid.New(), CalculateComprehensiveRequest{
		TaxType: "payroll_paye",
		Amount:  decimal.NewFromInt(2000),
	})

	assert.NoError(t, err)
	assert.NotNil(t, response.Payroll)
	assert.True(t, decimal.NewFromInt(100).Equal(response.Payroll.EmployeeNASSIT))
	assert.True(t, decimal.NewFromInt(200).Equal(response.Payroll.EmployerNASSIT))
	assert.True(t, decimal.NewFromInt(300).Equal(response.Payroll.PAYE), "got %s", response.Payroll.PAYE)
	assert.True(t, decimal.NewFromInt(1600).Equal(response.Payroll.NetPay))
	assert.True(t, decimal.NewFromInt(2200).Equal(response.Payroll.TotalEmployerCost))
}

func TestCalculatorService_Comprehensive_CorporateMinimumTax(t *testing.T) {
	service, _, _ := newCalculatorService()

	turnover := decimal.NewFromInt(1000000)

	// standard 25% of 50,000 = 12,500; minimum 3% of 1,000,000 = 30,000
	response, err := service.CalculateComprehensive(context.Background(), uuid.New(), CalculateComprehensiveRequest{
		TaxType:   "income_tax",
		Amount:    decimal.NewFromInt(50000),
		Corporate: true,
		Turnover:  &turnover,
	})

	assert.NoError(t, err)
	assert.NotNil(t, response.Corporate)
	assert.True(t, response.Corporate.MinimumApplied)
	assert.True(t, decimal.NewFromInt(30000).Equal(response.TaxDue))
	assert.True(t, decimal.NewFromInt(12500).Equal(response.Corporate.StandardTax))
}

func TestCalculatorService_Comprehensive_GSTOverThreshold(t *testing.T) {
	service, _, _ := newCalculatorService()

	response, err := service.CalculateComprehensive(context.Background(), uuid.New(), CalculateComprehensiveRequest{
		TaxType: "gst",
		Amount:  decimal.NewFromInt(600000),
	})

	assert.NoError(t, err)
	assert.NotNil(t, response.GST)
	assert.True(t, response.GST.OverRegistrationLimit)
	assert.True(t, decimal.NewFromInt(90000).Equal(response.TaxDue))
}

func TestCalculatorService_Comprehensive_WithDueDatePreview(t *testing.T) {
	service, mockRules, mockHolidays := newCalculatorService()

	ctx := context.Background()
	tenantID := uuid.New()
	rule, _ := compliance.NewDeadlineRule(tenantID, filing.TaxTypeGST, compliance.DeadlineBasePeriodEnd, 21)
	periodEnd := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	mockRules.On("FindByTaxType", ctx, tenantID, filing.TaxTypeGST).Return(rule, nil)
	mockHolidays.On("FindActive", ctx, tenantID).Return([]compliance.PublicHoliday{}, nil)

	response, err := service.CalculateComprehensive(ctx, tenantID, CalculateComprehensiveRequest{
		TaxType:   "gst",
		Amount:    decimal.NewFromInt(100000),
		PeriodEnd: &periodEnd,
	})

	assert.NoError(t, err)
	assert.NotNil(t, response.DueDate)
	assert.Equal(t, time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC), *response.DueDate)
}

// ============================================================================
// Late Charges Tests
// ============================================================================

func TestCalculatorService_CalculateLateCharges(t *testing.T) {
	service, _, _ := newCalculatorService()

	dueDate := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	asOf := dueDate.AddDate(0, 0, 10)

	response, err := service.CalculateLateCharges(context.Background(), LateChargesRequest{
		TaxDue:  decimal.NewFromInt(150000),
		DueDate: dueDate,
		AsOf:    &asOf,
	})

	assert.NoError(t, err)
	assert.Equal(t, 10, response.DaysLate)
	// penalty 10% = 15,000
	assert.True(t, decimal.NewFromInt(15000).Equal(response.Penalty))
	// interest 15% * 10/365 of 150,000
	expectedInterest := decimal.NewFromInt(150000).
		Mul(decimal.NewFromFloat(0.15)).
		Mul(decimal.NewFromInt(10)).
		Div(decimal.NewFromInt(365))
	assert.True(t, expectedInterest.Equal(response.Interest))
	assert.True(t, response.Total.Equal(response.Penalty.Add(response.Interest)))
}

func TestCalculatorService_CalculateLateCharges_NotLate(t *testing.T) {
	service, _, _ := newCalculatorService()

	dueDate := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	asOf := dueDate.AddDate(0, 0, -5)

	response, err := service.CalculateLateCharges(context.Background(), LateChargesRequest{
		TaxDue:  decimal.NewFromInt(150000),
		DueDate: dueDate,
		AsOf:    &asOf,
	})

	assert.NoError(t, err)
	assert.Equal(t, 0, response.DaysLate)
	assert.True(t, response.Penalty.IsZero())
	assert.True(t, response.Interest.IsZero())
}

// ============================================================================
// Rate Table Tests
// ============================================================================

func TestCalculatorService_RateTables(t *testing.T) {
	service, _, _ := newCalculatorService()

	tables := service.RateTables()

	assert.True(t, decimal.NewFromFloat(0.15).Equal(tables.GSTRate))
	assert.True(t, decimal.NewFromFloat(0.25).Equal(tables.CorporateRate))
	assert.Len(t, tables.AnnualIncomeBrackets, 5)
	assert.Len(t, tables.MonthlyPAYEBrackets, 5)
	// monthly first band is the annual exemption over twelve
	assert.True(t, decimal.NewFromInt(600).Equal(*tables.MonthlyPAYEBrackets[0].UpTo))
}

func TestCalculatorService_WithholdingCategories(t *testing.T) {
	service, _, _ := newCalculatorService()

	categories := service.WithholdingCategories()

	assert.Len(t, categories, 8)
	// sorted by category name
	assert.Equal(t, "contractor_nonresident", categories[0].Category)
	for _, c := range categories {
		assert.True(t, c.Rate.IsPositive())
	}
}
