package settings

import (
	"context"
	"errors"

	"github.com/bettstax/backend/internal/domain/settings"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettingsService manages per-tenant configuration values
type SettingsService struct {
	settingRepo settings.SettingRepository
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(settingRepo settings.SettingRepository) *SettingsService {
	return &SettingsService{settingRepo: settingRepo}
}

// Get retrieves a setting by key
func (s *SettingsService) Get(ctx context.Context, tenantID uuid.UUID, key string) (*SettingResponse, error) {
	setting, err := s.settingRepo.FindByKeyForTenant(ctx, tenantID, key)
	if err != nil {
		return nil, err
	}

	response := ToSettingResponse(setting)
	return &response, nil
}

// List retrieves settings, optionally narrowed to one category
func (s *SettingsService) List(ctx context.Context, tenantID uuid.UUID, filter SettingListFilter) ([]SettingResponse, error) {
	var (
		items []*settings.SystemSetting
		err   error
	)
	if filter.Category != "" {
		items, err = s.settingRepo.FindByCategoryForTenant(ctx, tenantID, filter.Category)
	} else {
		items, err = s.settingRepo.FindAllForTenant(ctx, tenantID)
	}
	if err != nil {
		return nil, err
	}

	return ToSettingResponses(items), nil
}

// Upsert creates a setting or updates the value of an existing one.
// The value type and category of an existing setting are fixed; only
// value and description move.
func (s *SettingsService) Upsert(ctx context.Context, tenantID uuid.UUID, req UpsertSettingRequest) (*SettingResponse, error) {
	setting, err := s.settingRepo.FindByKeyForTenant(ctx, tenantID, req.Key)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if setting == nil || errors.Is(err, shared.ErrNotFound) {
		valueType := settings.ValueTypeString
		if req.ValueType != "" {
			valueType = settings.ValueType(req.ValueType)
		}
		setting, err = settings.NewSystemSetting(tenantID, req.Key, req.Value, valueType, req.Category, true)
		if err != nil {
			return nil, err
		}
		if req.Description != nil {
			setting.Description = *req.Description
		}
	} else {
		if err := setting.UpdateValue(req.Value); err != nil {
			return nil, err
		}
		if req.Description != nil {
			setting.SetDescription(*req.Description)
		}
	}

	if err := s.settingRepo.Save(ctx, setting); err != nil {
		return nil, err
	}

	response := ToSettingResponse(setting)
	return &response, nil
}

// Delete removes an editable setting
func (s *SettingsService) Delete(ctx context.Context, tenantID uuid.UUID, key string) error {
	setting, err := s.settingRepo.FindByKeyForTenant(ctx, tenantID, key)
	if err != nil {
		return err
	}

	if !setting.Editable {
		return shared.NewDomainError("SETTING_LOCKED", "Setting is not editable")
	}

	return s.settingRepo.DeleteForTenant(ctx, tenantID, setting.ID)
}

// SeedDefaults loads the default settings for a tenant, skipping keys
// that already exist. Returns how many were created.
func (s *SettingsService) SeedDefaults(ctx context.Context, tenantID uuid.UUID) (int, error) {
	created := 0
	for _, setting := range settings.DefaultSettings(tenantID) {
		exists, err := s.settingRepo.ExistsByKey(ctx, tenantID, setting.Key)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		if err := s.settingRepo.Save(ctx, setting); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// ============================================================================
// Typed lookups for internal consumers
// ============================================================================

// StringValue returns a setting's string value or def when absent
func (s *SettingsService) StringValue(ctx context.Context, tenantID uuid.UUID, key, def string) string {
	setting, err := s.settingRepo.FindByKeyForTenant(ctx, tenantID, key)
	if err != nil || setting == nil {
		return def
	}
	return setting.StringValue()
}

// IntValue returns a setting's int value or def when absent or unparseable
func (s *SettingsService) IntValue(ctx context.Context, tenantID uuid.UUID, key string, def int64) int64 {
	setting, err := s.settingRepo.FindByKeyForTenant(ctx, tenantID, key)
	if err != nil || setting == nil {
		return def
	}
	return setting.IntValue(def)
}

// BoolValue returns a setting's bool value or def when absent or unparseable
func (s *SettingsService) BoolValue(ctx context.Context, tenantID uuid.UUID, key string, def bool) bool {
	setting, err := s.settingRepo.FindByKeyForTenant(ctx, tenantID, key)
	if err != nil || setting == nil {
		return def
	}
	return setting.BoolValue(def)
}

// DecimalValue returns a setting's decimal value or def when absent or unparseable
func (s *SettingsService) DecimalValue(ctx context.Context, tenantID uuid.UUID, key string, def decimal.Decimal) decimal.Decimal {
	setting, err := s.settingRepo.FindByKeyForTenant(ctx, tenantID, key)
	if err != nil || setting == nil {
		return def
	}
	return setting.DecimalValue(def)
}
