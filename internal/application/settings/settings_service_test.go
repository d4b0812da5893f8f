package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/bettstax/backend/internal/domain/settings"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// ============================================================================
// Mocks
// ============================================================================

// MockSettingRepository is a mock implementation of SettingRepository
type MockSettingRepository struct {
	mock.Mock
}

func (m *MockSettingRepository) FindByID(ctx context.Context, id uuid.UUID) (*settings.SystemSetting, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settings.SystemSetting), args.Error(1)
}

func (m *MockSettingRepository) FindByKeyForTenant(ctx context.Context, tenantID uuid.UUID, key string) (*settings.SystemSetting, error) {
	args := m.Called(ctx, tenantID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settings.SystemSetting), args.Error(1)
}

func (m *MockSettingRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]*settings.SystemSetting, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*settings.SystemSetting), args.Error(1)
}

func (m *MockSettingRepository) FindByCategoryForTenant(ctx context.Context, tenantID uuid.UUID, category string) ([]*settings.SystemSetting, error) {
	args := m.Called(ctx, tenantID, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*settings.SystemSetting), args.Error(1)
}

func (m *MockSettingRepository) Save(ctx context.Context, setting *settings.SystemSetting) error {
	args := m.Called(ctx, setting)
	return args.Error(0)
}

func (m *MockSettingRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockSettingRepository) ExistsByKey(ctx context.Context, tenantID uuid.UUID, key string) (bool, error) {
	args := m.Called(ctx, tenantID, key)
	return args.Bool(0), args.Error(1)
}

var _ settings.SettingRepository = (*MockSettingRepository)(nil)

// ============================================================================
// Tests
// ============================================================================

func TestSettingsService_Upsert_CreatesNew(t *testing.T) {
	mockRepo := new(MockSettingRepository)
	service := NewSettingsService(mockRepo)

	ctx := context.Background()
	tenantID := uuid.New()

	mockRepo.On("FindByKeyForTenant", ctx, tenantID, "firm.website").Return(nil, shared.ErrNotFound)
	mockRepo.On("Save", ctx, mock.AnythingOfType("*settings.SystemSetting")).Return(nil)

	response, err := service.Upsert(ctx, tenantID, UpsertSettingRequest{
		Key:      "firm.website",
		Value:    "https://betts.sl",
		Category: "firm",
	})

	assert.NoError(t, err)
	assert.Equal(t, "firm.website", response.Key)
	assert.Equal(t, "https://betts.sl", response.Value)
	assert.Equal(t, "string", response.ValueType)
	assert.True(t, response.Editable)
	mockRepo.AssertExpectations(t)
}

func TestSettingsService_Upsert_UpdatesExisting(t *testing.T) {
	mockRepo := new(MockSettingRepository)
	service := NewSettingsService(mockRepo)

	ctx := context.Background()
	tenantID := uuid.New()
	existing, _ := settings.NewSystemSetting(tenantID, settings.KeyFirmName, "Betts Firm", settings.ValueTypeString, "firm", true)

	mockRepo.On("FindByKeyForTenant", ctx, tenantID, settings.KeyFirmName).Return(existing, nil)
	mockRepo.On("Save", ctx, existing).Return(nil)

	response, err := service.Upsert(ctx, tenantID, UpsertSettingRequest{
		Key:   settings.KeyFirmName,
		Value: "Betts & Partners",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Betts & Partners", response.Value)
	assert.Equal(t, 1, response.Version)
}

func TestSettingsService_Upsert_TypedValueValidation(t *testing.T) {
	mockRepo := new(MockSettingRepository)
	service := NewSettingsService(mockRepo)

	ctx := context.Background()
	tenantID := uuid.New()

	mockRepo.On("FindByKeyForTenant", ctx, tenantID, "documents.max_size_bytes").Return(nil, shared.ErrNotFound)

	response, err := service.Upsert(ctx, tenantID, UpsertSettingRequest{
		Key:       "documents.max_size_bytes",
		Value:     "not-a-number",
		ValueType: "int",
	})

	assert.Error(t, err)
	assert.Nil(t, response)
	var domainErr *shared.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_VALUE", domainErr.Code)
	mockRepo.AssertNotCalled(t, "Save")
}

func TestSettingsService_Upsert_LockedSetting(t *testing.T) {
	mockRepo := new(MockSettingRepository)
	service := NewSettingsService(mockRepo)

	ctx := context.Background()
	tenantID := uuid.New()
	locked, _ := settings.NewSystemSetting(tenantID, settings.KeyCurrency, "SLE", settings.ValueTypeString, "firm", false)

	mockRepo.On("FindByKeyForTenant", ctx, tenantID, settings.KeyCurrency).Return(locked, nil)

	response, err := service.Upsert(ctx, tenantID, UpsertSettingRequest{
		Key:   settings.KeyCurrency,
		Value: "USD",
	})

	assert.Error(t, err)
	assert.Nil(t, response)
	var domainErr *shared.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "SETTING_LOCKED", domainErr.Code)
	mockRepo.AssertNotCalled(t, "Save")
}

func TestSettingsService_Delete_EditableOnly(t *testing.T) {
	mockRepo := new(MockSettingRepository)
	service := NewSettingsService(mockRepo)

	ctx := context.Background()
	tenantID := uuid.New()
	locked, _ := settings.NewSystemSetting(tenantID, settings.KeyCurrency, "SLE", settings.ValueTypeString, "firm", false)

	mockRepo.On("FindByKeyForTenant", ctx, tenantID, settings.KeyCurrency).Return(locked, nil)

	err := service.Delete(ctx, tenantID, settings.KeyCurrency)

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "SETTING_LOCKED", domainErr.Code)
	mockRepo.AssertNotCalled(t, "DeleteForTenant")
}

func TestSettingsService_Delete_Success(t *testing.T) {
	mockRepo := new(MockSettingRepository)
	service := NewSettingsService(mockRepo)

	ctx := context.Background()
	tenantID := uuid.New()
	setting, _ := settings.NewSystemSetting(tenantID, settings.KeyFirmTIN, "1001234567", settings.ValueTypeString, "firm", true)

	mockRepo.On("FindByKeyForTenant", ctx, tenantID, settings.KeyFirmTIN).Return(setting, nil)
	mockRepo.On("DeleteForTenant", ctx, tenantID, setting.ID).Return(nil)

	err := service.Delete(ctx, tenantID, settings.KeyFirmTIN)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestSettingsService_List_ByCategory(t *testing.T) {
	mockRepo := new(MockSettingRepository)
	service := NewSettingsService(mockRepo)

	ctx := context.Background()
	tenantID := uuid.New()
	setting, _ := settings.NewSystemSetting(tenantID, settings.KeyFirmName, "Betts Firm", settings.ValueTypeString, "firm", true)

	mockRepo.On("FindByCategoryForTenant", ctx, tenantID, "firm").Return([]*settings.SystemSetting{setting}, nil)

	responses, err := service.List(ctx, tenantID, SettingListFilter{Category: "firm"})

	assert.NoError(t, err)
	assert.Len(t, responses, 1)
	mockRepo.AssertNotCalled(t, "FindAllForTenant")
}

func TestSettingsService_SeedDefaults_SkipsExisting(t *testing.T) {
	mockRepo := new(MockSettingRepository)
	service := NewSettingsService(mockRepo)

	ctx := context.Background()
	tenantID := uuid.New()

	mockRepo.On("ExistsByKey", ctx, tenantID, settings.KeyFirmName).Return(true, nil)
	mockRepo.On("ExistsByKey", ctx, tenantID, mock.AnythingOfType("string")).Return(false, nil)
	mockRepo.On("Save", ctx, mock.AnythingOfType("*settings.SystemSetting")).Return(nil)

	created, err := service.SeedDefaults(ctx, tenantID)

	assert.NoError(t, err)
	assert.Equal(t, 5, created)
}

func TestSettingsService_IntValue_FallsBack(t *testing.T) {
	mockRepo := new(MockSettingRepository)
	service := NewSettingsService(mockRepo)

	ctx := context.Background()
	tenantID := uuid.New()

	mockRepo.On("FindByKeyForTenant", ctx, tenantID, settings.KeyDocumentMaxBytes).Return(nil, shared.ErrNotFound)

	v := service.IntValue(ctx, tenantID, settings.KeyDocumentMaxBytes, 1024)

	assert.Equal(t, int64(1024), v)
}
