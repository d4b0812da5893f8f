package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bettstax/backend/internal/domain/filing"
	"github.com/bettstax/backend/internal/domain/payment"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payment.Payment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByNumberForTenant(ctx context.Context, tenantID uuid.UUID, paymentNumber string) (*payment.Payment, error) {
	args := m.Called(ctx, tenantID, paymentNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*payment.Payment, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByFilingForTenant(ctx context.Context, tenantID, filingID uuid.UUID) ([]*payment.Payment, error) {
	args := m.Called(ctx, tenantID, filingID)
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByClientForTenant(ctx context.Context, tenantID, clientID uuid.UUID, filter shared.Filter) ([]*payment.Payment, error) {
	args := m.Called(ctx, tenantID, clientID, filter)
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByStatusForTenant(ctx context.Context, tenantID uuid.UUID, status payment.PaymentStatus, filter shared.Filter) ([]*payment.Payment, error) {
	args := m.Called(ctx, tenantID, status, filter)
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindPaidBetweenForTenant(ctx context.Context, tenantID uuid.UUID, from, to time.Time, filter shared.Filter) ([]*payment.Payment, error) {
	args := m.Called(ctx, tenantID, from, to, filter)
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveWithLock(ctx context.Context, p *payment.Payment, expectedVersion int) error {
	args := m.Called(ctx, p, expectedVersion)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockPaymentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) CountByStatusForTenant(ctx context.Context, tenantID uuid.UUID, status payment.PaymentStatus) (int64, error) {
	args := m.Called(ctx, tenantID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) CountByClientAndStatus(ctx context.Context, tenantID, clientID uuid.UUID, status payment.PaymentStatus) (int64, error) {
	args := m.Called(ctx, tenantID, clientID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) SumConfirmedByFiling(ctx context.Context, tenantID, filingID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, filingID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) SumConfirmedByMethod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]payment.MethodTotal, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).([]payment.MethodTotal), args.Error(1)
}

func (m *MockPaymentRepository) GeneratePaymentNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// MockFilingRepository is a mock implementation of TaxFilingRepository
type MockFilingRepository struct {
	mock.Mock
}

func (m *MockFilingRepository) FindByID(ctx context.Context, id uuid.UUID) (*filing.TaxFiling, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*filing.TaxFiling), args.Error(1)
}

func (m *MockFilingRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*filing.TaxFiling, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*filing.TaxFiling), args.Error(1)
}

func (m *MockFilingRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, filingNumber string) (*filing.TaxFiling, error) {
	args := m.Called(ctx, tenantID, filingNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*filing.TaxFiling), args.Error(1)
}

func (m *MockFilingRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]filing.TaxFiling, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]filing.TaxFiling), args.Error(1)
}

func (m *MockFilingRepository) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID, filter shared.Filter) ([]filing.TaxFiling, error) {
	args := m.Called(ctx, tenantID, clientID, filter)
	return args.Get(0).([]filing.TaxFiling), args.Error(1)
}

func (m *MockFilingRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status filing.FilingStatus, filter shared.Filter) ([]filing.TaxFiling, error) {
	args := m.Called(ctx, tenantID, status, filter)
	return args.Get(0).([]filing.TaxFiling), args.Error(1)
}

func (m *MockFilingRepository) FindByTaxType(ctx context.Context, tenantID uuid.UUID, taxType filing.TaxType, filter shared.Filter) ([]filing.TaxFiling, error) {
	args := m.Called(ctx, tenantID, taxType, filter)
	return args.Get(0).([]filing.TaxFiling), args.Error(1)
}

func (m *MockFilingRepository) FindDueBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time, filter shared.Filter) ([]filing.TaxFiling, error) {
	args := m.Called(ctx, tenantID, from, to, filter)
	return args.Get(0).([]filing.TaxFiling), args.Error(1)
}

func (m *MockFilingRepository) FindOverdueCandidates(ctx context.Context, tenantID uuid.UUID, asOf time.Time, limit int) ([]filing.TaxFiling, error) {
	args := m.Called(ctx, tenantID, asOf, limit)
	return args.Get(0).([]filing.TaxFiling), args.Error(1)
}

func (m *MockFilingRepository) FindActivePeriodFiling(ctx context.Context, tenantID, clientID uuid.UUID, taxType filing.TaxType, periodStart time.Time) (*filing.TaxFiling, error) {
	args := m.Called(ctx, tenantID, clientID, taxType, periodStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*filing.TaxFiling), args.Error(1)
}

func (m *MockFilingRepository) Save(ctx context.Context, f *filing.TaxFiling) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFilingRepository) SaveWithLock(ctx context.Context, f *filing.TaxFiling) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFilingRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockFilingRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFilingRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status filing.FilingStatus) (int64, error) {
	args := m.Called(ctx, tenantID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFilingRepository) CountByClient(ctx context.Context, tenantID, clientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, clientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFilingRepository) CountOverdue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (int64, error) {
	args := m.Called(ctx, tenantID, asOf)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFilingRepository) SumTaxDueByType(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (map[filing.TaxType]filing.TaxTypeTotal, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).(map[filing.TaxType]filing.TaxTypeTotal), args.Error(1)
}

func (m *MockFilingRepository) GenerateFilingNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// =============================================================================
// Helpers
// =============================================================================

func newPaymentService() (*PaymentService, *MockPaymentRepository, *MockFilingRepository) {
	mockPayments := new(MockPaymentRepository)
	mockFilings := new(MockFilingRepository)
	service := NewPaymentService(mockPayments, mockFilings)
	return service, mockPayments, mockFilings
}

func newTestFiling(tenantID uuid.UUID) *filing.TaxFiling {
	periodStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	f, _ := filing.NewTaxFiling(tenantID, "TF-2026-00001", uuid.New(), "Kamara Trading",
		filing.TaxTypeGST, periodStart, periodEnd, time.Now().AddDate(0, 1, 0), decimal.NewFromInt(1000000))
	_ = f.SetLiability(decimal.NewFromInt(1000000), decimal.NewFromInt(150000), decimal.Zero, decimal.Zero)
	return f
}

func newTestPayment(tenantID uuid.UUID, amount int64) *payment.Payment {
	p, _ := payment.NewPayment(tenantID, "PAY-2026-00001", uuid.New(), uuid.New(),
		decimal.NewFromInt(amount), payment.PaymentMethodBankTransfer, time.Now())
	return p
}

// =============================================================================
// Tests
// =============================================================================

func TestPaymentService_Record_Success(t *testing.T) {
	service, mockPayments, mockFilings := newPaymentService()

	ctx := context.Background()
	tenantID := uuid.New()
	f := newTestFiling(tenantID)

	req := RecordPaymentRequest{
		FilingID:  f.ID,
		Amount:    decimal.NewFromInt(150000),
		Method:    "mobile_money",
		Reference: "OM-998877",
	}

	mockFilings.On("FindByIDForTenant", ctx, tenantID, f.ID).Return(f, nil)
	mockPayments.On("GeneratePaymentNumber", ctx, tenantID).Return("PAY-2026-00007", nil)
	mockPayments.On("Save", ctx, mock.AnythingOfType("*payment.Payment")).Return(nil)

	result, err := service.Record(ctx, tenantID, req)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "PAY-2026-00007", result.PaymentNumber)
	assert.Equal(t, f.ClientID, result.ClientID)
	assert.Equal(t, "pending", result.Status)
	assert.Equal(t, "SLE", result.Currency)
	assert.Equal(t, "OM-998877", result.Reference)
	mockPayments.AssertExpectations(t)
}

func TestPaymentService_Record_CancelledFiling(t *testing.T) {
	service, mockPayments, mockFilings := newPaymentService()

	ctx := context.Background()
	tenantID := uuid.New()
	f := newTestFiling(tenantID)
	_ = f.Cancel("Duplicate entry")

	req := RecordPaymentRequest{
		FilingID: f.ID,
		Amount:   decimal.NewFromInt(1000),
		Method:   "cash",
	}

	mockFilings.On("FindByIDForTenant", ctx, tenantID, f.ID).Return(f, nil)

	result, err := service.Record(ctx, tenantID, req)

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "FILING_CANCELLED", domainErr.Code)
	mockPayments.AssertNotCalled(t, "Save")
}

func TestPaymentService_Confirm_Success(t *testing.T) {
	service, mockPayments, _ := newPaymentService()

	ctx := context.Background()
	tenantID := uuid.New()
	userID := uuid.New()
	p := newTestPayment(tenantID, 150000)
	versionBefore := p.Version

	mockPayments.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)
	mockPayments.On("SaveWithLock", ctx, p, versionBefore).Return(nil)

	result, err := service.Confirm(ctx, tenantID, p.ID, userID)

	assert.NoError(t, err)
	assert.Equal(t, "confirmed", result.Status)
	assert.NotNil(t, result.ConfirmedAt)
	assert.Equal(t, &userID, result.ConfirmedBy)
	mockPayments.AssertExpectations(t)
}

func TestPaymentService_Confirm_RecordsBusinessMetrics(t *testing.T) {
	service, mockPayments, _ := newPaymentService()

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: noop.NewMeterProvider().Meter("test"),
	})
	require.NoError(t, err)
	service.SetBusinessMetrics(bm)

	ctx := context.Background()
	tenantID := uuid.New()
	p := newTestPayment(tenantID, 150000)
	versionBefore := p.Version

	mockPayments.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)
	mockPayments.On("SaveWithLock", ctx, p, versionBefore).Return(nil)

	result, err := service.Confirm(ctx, tenantID, p.ID, uuid.New())

	assert.NoError(t, err)
	assert.Equal(t, "confirmed", result.Status)
	mockPayments.AssertExpectations(t)
}

func TestPaymentService_Confirm_AlreadyConfirmed(t *testing.T) {
	service, mockPayments, _ := newPaymentService()

	ctx := context.Background()
	tenantID := uuid.New()
	p := newTestPayment(tenantID, 150000)
	_ = p.Confirm(uuid.New())

	mockPayments.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)

	result, err := service.Confirm(ctx, tenantID, p.ID, uuid.New())

	assert.Error(t, err)
	assert.Nil(t, result)
	mockPayments.AssertNotCalled(t, "SaveWithLock")
}

func TestPaymentService_Fail_Success(t *testing.T) {
	service, mockPayments, _ := newPaymentService()

	ctx := context.Background()
	tenantID := uuid.New()
	p := newTestPayment(tenantID, 50000)
	versionBefore := p.Version

	mockPayments.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)
	mockPayments.On("SaveWithLock", ctx, p, versionBefore).Return(nil)

	result, err := service.Fail(ctx, tenantID, p.ID, "Cheque bounced")

	assert.NoError(t, err)
	assert.Equal(t, "failed", result.Status)
	assert.Equal(t, "Cheque bounced", result.FailureReason)
}

func TestPaymentService_Refund_RequiresConfirmed(t *testing.T) {
	service, mockPayments, _ := newPaymentService()

	ctx := context.Background()
	tenantID := uuid.New()
	p := newTestPayment(tenantID, 50000)

	mockPayments.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)

	result, err := service.Refund(ctx, tenantID, p.ID, "Client overpaid")

	assert.Error(t, err)
	assert.Nil(t, result)
	mockPayments.AssertNotCalled(t, "SaveWithLock")
}

func TestPaymentService_OutstandingBalance(t *testing.T) {
	service, mockPayments, mockFilings := newPaymentService()

	ctx := context.Background()
	tenantID := uuid.New()
	f := newTestFiling(tenantID)

	mockFilings.On("FindByIDForTenant", ctx, tenantID, f.ID).Return(f, nil)
	mockPayments.On("SumConfirmedByFiling", ctx, tenantID, f.ID).Return(decimal.NewFromInt(100000), nil)

	result, err := service.OutstandingBalance(ctx, tenantID, f.ID)

	assert.NoError(t, err)
	assert.True(t, result.TotalDue.Equal(decimal.NewFromInt(150000)))
	assert.True(t, result.ConfirmedTotal.Equal(decimal.NewFromInt(100000)))
	assert.True(t, result.Outstanding.Equal(decimal.NewFromInt(50000)))
	assert.False(t, result.FullyPaid)
}

func TestPaymentService_OutstandingBalance_FullyPaid(t *testing.T) {
	service, mockPayments, mockFilings := newPaymentService()

	ctx := context.Background()
	tenantID := uuid.New()
	f := newTestFiling(tenantID)

	mockFilings.On("FindByIDForTenant", ctx, tenantID, f.ID).Return(f, nil)
	mockPayments.On("SumConfirmedByFiling", ctx, tenantID, f.ID).Return(decimal.NewFromInt(150000), nil)

	result, err := service.OutstandingBalance(ctx, tenantID, f.ID)

	assert.NoError(t, err)
	assert.True(t, result.Outstanding.IsZero())
	assert.True(t, result.FullyPaid)
}

func TestPaymentService_TotalsByMethod(t *testing.T) {
	service, mockPayments, _ := newPaymentService()

	ctx := context.Background()
	tenantID := uuid.New()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	mockPayments.On("SumConfirmedByMethod", ctx, tenantID, from, to).Return([]payment.MethodTotal{
		{Method: payment.PaymentMethodMobileMoney, Count: 12, Amount: decimal.NewFromInt(340000)},
		{Method: payment.PaymentMethodCash, Count: 3, Amount: decimal.NewFromInt(90000)},
	}, nil)

	results, err := service.TotalsByMethod(ctx, tenantID, from, to)

	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "mobile_money", results[0].Method)
	assert.Equal(t, int64(12), results[0].Count)
}

func TestPaymentService_Delete_PendingOnly(t *testing.T) {
	service, mockPayments, _ := newPaymentService()

	ctx := context.Background()
	tenantID := uuid.New()
	p := newTestPayment(tenantID, 50000)
	_ = p.Confirm(uuid.New())

	mockPayments.On("FindByIDForTenant", ctx, tenantID, p.ID).Return(p, nil)

	err := service.Delete(ctx, tenantID, p.ID)

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "CANNOT_DELETE", domainErr.Code)
	mockPayments.AssertNotCalled(t, "DeleteForTenant")
}
