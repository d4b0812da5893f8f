package webhook

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/domain/webhook"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Mocks
// ============================================================================

// MockRegistrationRepository is a mock implementation of RegistrationRepository
type MockRegistrationRepository struct {
	mock.Mock
}

func (m *MockRegistrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*webhook.Registration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*webhook.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*webhook.Registration, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*webhook.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]webhook.Registration, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]webhook.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) FindActiveByEventType(ctx context.Context, tenantID uuid.UUID, eventType string) ([]webhook.Registration, error) {
	args := m.Called(ctx, tenantID, eventType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]webhook.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) Save(ctx context.Context, r *webhook.Registration) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRegistrationRepository) SaveWithLock(ctx context.Context, r *webhook.Registration) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRegistrationRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockRegistrationRepository) Count(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

var _ webhook.RegistrationRepository = (*MockRegistrationRepository)(nil)

// MockDeliveryRepository is a mock implementation of DeliveryRepository
type MockDeliveryRepository struct {
	mock.Mock
}

func (m *MockDeliveryRepository) Save(ctx context.Context, deliveries ...*webhook.Delivery) error {
	args := m.Called(ctx, deliveries)
	return args.Error(0)
}

func (m *MockDeliveryRepository) Update(ctx context.Context, d *webhook.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliveryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*webhook.Delivery, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*webhook.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) FindDue(ctx context.Context, before time.Time, limit int) ([]*webhook.Delivery, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*webhook.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) FindByRegistration(ctx context.Context, tenantID, registrationID uuid.UUID, filter shared.Filter) ([]webhook.Delivery, error) {
	args := m.Called(ctx, tenantID, registrationID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]webhook.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status webhook.DeliveryStatus, filter shared.Filter) ([]webhook.Delivery, error) {
	args := m.Called(ctx, tenantID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]webhook.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) CountByRegistration(ctx context.Context, tenantID, registrationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, registrationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeliveryRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status webhook.DeliveryStatus) (int64, error) {
	args := m.Called(ctx, tenantID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeliveryRepository) StatsByRegistration(ctx context.Context, tenantID, registrationID uuid.UUID) (webhook.DeliveryStats, error) {
	args := m.Called(ctx, tenantID, registrationID)
	return args.Get(0).(webhook.DeliveryStats), args.Error(1)
}

func (m *MockDeliveryRepository) ResetStuckProcessing(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeliveryRepository) DeleteSentBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

var _ webhook.DeliveryRepository = (*MockDeliveryRepository)(nil)

// MockDeliverySender is a mock implementation of DeliverySender
type MockDeliverySender struct {
	mock.Mock
}

func (m *MockDeliverySender) Send(ctx context.Context, reg *webhook.Registration, delivery *webhook.Delivery) (int, error) {
	args := m.Called(ctx, reg, delivery)
	return args.Int(0), args.Error(1)
}

var _ DeliverySender = (*MockDeliverySender)(nil)

// ============================================================================
// Helpers
// ============================================================================

func newWebhookTestTenantID() uuid.UUID {
	return uuid.MustParse("22222222-2222-2222-2222-222222222222")
}

func newTestService() (*WebhookService, *MockRegistrationRepository, *MockDeliveryRepository, *MockDeliverySender) {
	regRepo := new(MockRegistrationRepository)
	deliveryRepo := new(MockDeliveryRepository)
	sender := new(MockDeliverySender)
	return NewWebhookService(regRepo, deliveryRepo, sender), regRepo, deliveryRepo, sender
}

func newTestRegistration(t *testing.T, tenantID uuid.UUID) *webhook.Registration {
	t.Helper()
	reg, err := webhook.NewRegistration(tenantID, "Filing notifications", "https://hooks.example.sl/ctis", []string{"filing.submitted", "payment.confirmed"})
	require.NoError(t, err)
	return reg
}

// ============================================================================
// Registration lifecycle
// ============================================================================

func TestWebhookService_Register_Success(t *testing.T) {
	service, regRepo, _, _ := newTestService()
	tenantID := newWebhookTestTenantID()

	regRepo.On("Save", mock.Anything, mock.MatchedBy(func(r *webhook.Registration) bool {
		return r.TenantID == tenantID &&
			r.Name == "Filing notifications" &&
			r.TargetURL == "https://hooks.example.sl/ctis" &&
			r.Active &&
			r.MaxRetries == webhook.DefaultDeliveryMaxRetries &&
			r.Headers == "{}"
	})).Return(nil)

	resp, err := service.Register(context.Background(), tenantID, CreateWebhookRequest{
		Name:       "Filing notifications",
		TargetURL:  "https://hooks.example.sl/ctis",
		EventTypes: []string{"filing.submitted", "filing.approved"},
	})

	assert.NoError(t, err)
	assert.Len(t, resp.Secret, webhook.SecretByteLength*2)
	assert.Equal(t, []string{"filing.submitted", "filing.approved"}, resp.EventTypes)
	regRepo.AssertExpectations(t)
}

func TestWebhookService_Register_CustomRetryAndHeaders(t *testing.T) {
	service, regRepo, _, _ := newTestService()
	tenantID := newWebhookTestTenantID()

	regRepo.On("Save", mock.Anything, mock.MatchedBy(func(r *webhook.Registration) bool {
		return r.MaxRetries == 3 && r.Headers == `{"X-Environment":"staging"}`
	})).Return(nil)

	resp, err := service.Register(context.Background(), tenantID, CreateWebhookRequest{
		Name:       "Staging hook",
		TargetURL:  "https://staging.example.sl/hook",
		EventTypes: []string{"*"},
		Headers:    `{"X-Environment":"staging"}`,
		MaxRetries: 3,
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, resp.MaxRetries)
}

func TestWebhookService_Register_InvalidTargetURL(t *testing.T) {
	service, regRepo, _, _ := newTestService()

	_, err := service.Register(context.Background(), newWebhookTestTenantID(), CreateWebhookRequest{
		Name:       "Bad",
		TargetURL:  "ftp://example.com/hook",
		EventTypes: []string{"*"},
	})

	var domainErr *shared.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_TARGET_URL", domainErr.Code)
	regRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestWebhookService_Register_InvalidHeadersJSON(t *testing.T) {
	service, _, _, _ := newTestService()

	_, err := service.Register(context.Background(), newWebhookTestTenantID(), CreateWebhookRequest{
		Name:       "Bad headers",
		TargetURL:  "https://example.com/hook",
		EventTypes: []string{"*"},
		Headers:    "not-json",
	})

	var domainErr *shared.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_HEADERS", domainErr.Code)
}

func TestWebhookService_Get_MasksSecret(t *testing.T) {
	service, regRepo, _, _ := newTestService()
	tenantID := newWebhookTestTenantID()
	reg := newTestRegistration(t, tenantID)

	regRepo.On("FindByIDForTenant", mock.Anything, tenantID, reg.ID).Return(reg, nil)

	resp, err := service.Get(context.Background(), tenantID, reg.ID)

	assert.NoError(t, err)
	assert.Empty(t, resp.Secret)
	assert.Equal(t, reg.TargetURL, resp.TargetURL)
}

func TestWebhookService_Update_PartialMerge(t *testing.T) {
	service, regRepo, _, _ := newTestService()
	tenantID := newWebhookTestTenantID()
	reg := newTestRegistration(t, tenantID)
	originalURL := reg.TargetURL

	regRepo.On("FindByIDForTenant", mock.Anything, tenantID, reg.ID).Return(reg, nil)
	regRepo.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(r *webhook.Registration) bool {
		return r.Name == "Renamed hook" && r.TargetURL == originalURL && r.Version == 2
	})).Return(nil)

	newName := "Renamed hook"
	resp, err := service.Update(context.Background(), tenantID, reg.ID, UpdateWebhookRequest{Name: &newName})

	assert.NoError(t, err)
	assert.Equal(t, "Renamed hook", resp.Name)
	assert.Equal(t, originalURL, resp.TargetURL)
	regRepo.AssertExpectations(t)
}

func TestWebhookService_RotateSecret(t *testing.T) {
	service, regRepo, _, _ := newTestService()
	tenantID := newWebhookTestTenantID()
	reg := newTestRegistration(t, tenantID)
	oldSecret := reg.Secret

	regRepo.On("FindByIDForTenant", mock.Anything, tenantID, reg.ID).Return(reg, nil)
	regRepo.On("SaveWithLock", mock.Anything, reg).Return(nil)

	resp, err := service.RotateSecret(context.Background(), tenantID, reg.ID)

	assert.NoError(t, err)
	assert.Len(t, resp.Secret, webhook.SecretByteLength*2)
	assert.NotEqual(t, oldSecret, resp.Secret)
	regRepo.AssertExpectations(t)
}

func TestWebhookService_Deactivate(t *testing.T) {
	service, regRepo, _, _ := newTestService()
	tenantID := newWebhookTestTenantID()
	reg := newTestRegistration(t, tenantID)

	regRepo.On("FindByIDForTenant", mock.Anything, tenantID, reg.ID).Return(reg, nil)
	regRepo.On("Save", mock.Anything, mock.MatchedBy(func(r *webhook.Registration) bool {
		return !r.Active
	})).Return(nil)

	resp, err := service.Deactivate(context.Background(), tenantID, reg.ID)

	assert.NoError(t, err)
	assert.False(t, resp.Active)
}

func TestWebhookService_Delete(t *testing.T) {
	service, regRepo, _, _ := newTestService()
	tenantID := newWebhookTestTenantID()
	reg := newTestRegistration(t, tenantID)

	regRepo.On("FindByIDForTenant", mock.Anything, tenantID, reg.ID).Return(reg, nil)
	regRepo.On("Delete", mock.Anything, tenantID, reg.ID).Return(nil)

	err := service.Delete(context.Background(), tenantID, reg.ID)

	assert.NoError(t, err)
	regRepo.AssertExpectations(t)
}

// ============================================================================
// Test ping
// ============================================================================

func TestWebhookService_TestEndpoint_Success(t *testing.T) {
	service, regRepo, deliveryRepo, sender := newTestService()
	tenantID := newWebhookTestTenantID()
	reg := newTestRegistration(t, tenantID)

	regRepo.On("FindByIDForTenant", mock.Anything, tenantID, reg.ID).Return(reg, nil)
	sender.On("Send", mock.Anything, reg, mock.MatchedBy(func(d *webhook.Delivery) bool {
		return d.EventType == webhook.EventTypeTest && d.MaxRetries == 1
	})).Return(204, nil)
	deliveryRepo.On("Save", mock.Anything, mock.MatchedBy(func(deliveries []*webhook.Delivery) bool {
		return len(deliveries) == 1 &&
			deliveries[0].Status == webhook.DeliveryStatusSent &&
			deliveries[0].ResponseStatus == 204 &&
			deliveries[0].AttemptCount == 1
	})).Return(nil)
	regRepo.On("Save", mock.Anything, mock.MatchedBy(func(r *webhook.Registration) bool {
		return r.LastStatus == 204 && r.LastDeliveryAt != nil
	})).Return(nil)

	resp, err := service.TestEndpoint(context.Background(), tenantID, reg.ID)

	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 204, resp.ResponseStatus)
	sender.AssertExpectations(t)
	deliveryRepo.AssertExpectations(t)
}

func TestWebhookService_TestEndpoint_FailureIsNeverRetried(t *testing.T) {
	service, regRepo, deliveryRepo, sender := newTestService()
	tenantID := newWebhookTestTenantID()
	reg := newTestRegistration(t, tenantID)

	regRepo.On("FindByIDForTenant", mock.Anything, tenantID, reg.ID).Return(reg, nil)
	sender.On("Send", mock.Anything, reg, mock.Anything).Return(503, errors.New("unexpected status 503"))
	deliveryRepo.On("Save", mock.Anything, mock.MatchedBy(func(deliveries []*webhook.Delivery) bool {
		return deliveries[0].Status == webhook.DeliveryStatusDead && deliveries[0].NextRetryAt == nil
	})).Return(nil)
	regRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	resp, err := service.TestEndpoint(context.Background(), tenantID, reg.ID)

	assert.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, 503, resp.ResponseStatus)
	assert.Contains(t, resp.Error, "503")
}

func TestWebhookService_TestEndpoint_NoSenderConfigured(t *testing.T) {
	regRepo := new(MockRegistrationRepository)
	deliveryRepo := new(MockDeliveryRepository)
	service := NewWebhookService(regRepo, deliveryRepo, nil)
	tenantID := newWebhookTestTenantID()
	reg := newTestRegistration(t, tenantID)

	regRepo.On("FindByIDForTenant", mock.Anything, tenantID, reg.ID).Return(reg, nil)

	_, err := service.TestEndpoint(context.Background(), tenantID, reg.ID)

	var domainErr *shared.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "DELIVERY_UNAVAILABLE", domainErr.Code)
}

// ============================================================================
// Export / import
// ============================================================================

func TestWebhookService_Export_OmitsSecrets(t *testing.T) {
	service, regRepo, _, _ := newTestService()
	tenantID := newWebhookTestTenantID()
	regA := newTestRegistration(t, tenantID)
	regB, err := webhook.NewRegistration(tenantID, "Dead letter monitor", "https://ops.example.sl/hook", []string{"*"})
	require.NoError(t, err)

	regRepo.On("FindAllForTenant", mock.Anything, tenantID, mock.Anything).Return([]webhook.Registration{*regA, *regB}, nil)

	resp, err := service.Export(context.Background(), tenantID)

	assert.NoError(t, err)
	assert.Len(t, resp.Webhooks, 2)
	assert.Equal(t, "https://hooks.example.sl/ctis", resp.Webhooks[0].TargetURL)
	assert.Equal(t, "https://ops.example.sl/hook", resp.Webhooks[1].TargetURL)
}

func TestWebhookService_Import_SkipsDuplicateURLs(t *testing.T) {
	service, regRepo, _, _ := newTestService()
	tenantID := newWebhookTestTenantID()
	existing := newTestRegistration(t, tenantID)

	regRepo.On("FindAllForTenant", mock.Anything, tenantID, mock.Anything).Return([]webhook.Registration{*existing}, nil)
	regRepo.On("Save", mock.Anything, mock.MatchedBy(func(r *webhook.Registration) bool {
		return r.TargetURL == "https://new.example.sl/hook" && !r.Active
	})).Return(nil).Once()

	resp, err := service.Import(context.Background(), tenantID, ImportWebhooksRequest{
		Webhooks: []ExportedWebhook{
			{Name: "Duplicate", TargetURL: existing.TargetURL, EventTypes: []string{"*"}, Active: true},
			{Name: "New hook", TargetURL: "https://new.example.sl/hook", EventTypes: []string{"filing.filed"}, Active: false},
			{Name: "Broken", TargetURL: "https://broken.example.sl/hook", EventTypes: nil, Active: true},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Imported)
	assert.Equal(t, 1, resp.Skipped)
	assert.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "Broken")
	regRepo.AssertExpectations(t)
}

// ============================================================================
// Delivery log
// ============================================================================

func TestWebhookService_Stats(t *testing.T) {
	service, regRepo, deliveryRepo, _ := newTestService()
	tenantID := newWebhookTestTenantID()
	reg := newTestRegistration(t, tenantID)
	deliveredAt := time.Now()
	reg.RecordDelivery(deliveredAt, 200)

	regRepo.On("FindByIDForTenant", mock.Anything, tenantID, reg.ID).Return(reg, nil)
	deliveryRepo.On("StatsByRegistration", mock.Anything, tenantID, reg.ID).Return(webhook.DeliveryStats{
		Pending: 2,
		Sent:    8,
		Failed:  1,
		Dead:    1,
	}, nil)

	resp, err := service.Stats(context.Background(), tenantID, reg.ID)

	assert.NoError(t, err)
	assert.Equal(t, int64(12), resp.Total)
	assert.InDelta(t, 0.8, resp.SuccessRate, 0.0001)
	assert.Equal(t, 200, resp.LastStatus)
	assert.NotNil(t, resp.LastDeliveryAt)
}

func TestWebhookService_ListDeliveries_StatusFilter(t *testing.T) {
	service, regRepo, deliveryRepo, _ := newTestService()
	tenantID := newWebhookTestTenantID()
	reg := newTestRegistration(t, tenantID)

	regRepo.On("FindByIDForTenant", mock.Anything, tenantID, reg.ID).Return(reg, nil)
	deliveryRepo.On("FindByRegistration", mock.Anything, tenantID, reg.ID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 1 && f.PageSize == 20 && f.Filters["status"] == "DEAD"
	})).Return([]webhook.Delivery{}, nil)
	deliveryRepo.On("CountByRegistration", mock.Anything, tenantID, reg.ID).Return(int64(5), nil)

	_, count, err := service.ListDeliveries(context.Background(), tenantID, reg.ID, DeliveryListFilter{Status: "dead"})

	assert.NoError(t, err)
	assert.Equal(t, int64(5), count)
	deliveryRepo.AssertExpectations(t)
}

func TestWebhookService_ListDeadLetters(t *testing.T) {
	service, _, deliveryRepo, _ := newTestService()
	tenantID := newWebhookTestTenantID()

	deliveryRepo.On("FindByStatus", mock.Anything, tenantID, webhook.DeliveryStatusDead, mock.Anything).Return([]webhook.Delivery{}, nil)

	_, err := service.ListDeadLetters(context.Background(), tenantID, DeliveryListFilter{})

	assert.NoError(t, err)
	deliveryRepo.AssertExpectations(t)
}

func TestWebhookService_Redeliver_Dead(t *testing.T) {
	service, _, deliveryRepo, _ := newTestService()
	tenantID := newWebhookTestTenantID()
	reg := newTestRegistration(t, tenantID)
	delivery := webhook.NewDelivery(reg, uuid.New(), "filing.submitted", []byte(`{}`))
	require.NoError(t, delivery.MarkProcessing())
	delivery.MaxRetries = 1
	delivery.MarkFailed(500, "boom")
	require.True(t, delivery.IsDead())

	deliveryRepo.On("FindByIDForTenant", mock.Anything, tenantID, delivery.ID).Return(delivery, nil)
	deliveryRepo.On("Update", mock.Anything, mock.MatchedBy(func(d *webhook.Delivery) bool {
		return d.Status == webhook.DeliveryStatusPending && d.AttemptCount == 0 && d.LastError == ""
	})).Return(nil)

	resp, err := service.Redeliver(context.Background(), tenantID, delivery.ID)

	assert.NoError(t, err)
	assert.Equal(t, string(webhook.DeliveryStatusPending), resp.Status)
	deliveryRepo.AssertExpectations(t)
}

func TestWebhookService_Redeliver_SentIsRejected(t *testing.T) {
	service, _, deliveryRepo, _ := newTestService()
	tenantID := newWebhookTestTenantID()
	reg := newTestRegistration(t, tenantID)
	delivery := webhook.NewDelivery(reg, uuid.New(), "filing.submitted", []byte(`{}`))
	require.NoError(t, delivery.MarkProcessing())
	delivery.MarkSent(200)

	deliveryRepo.On("FindByIDForTenant", mock.Anything, tenantID, delivery.ID).Return(delivery, nil)

	_, err := service.Redeliver(context.Background(), tenantID, delivery.ID)

	var domainErr *shared.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "CANNOT_REDELIVER", domainErr.Code)
	deliveryRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
