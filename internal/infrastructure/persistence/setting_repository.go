package persistence

import (
	"context"
	"errors"

	"github.com/bettstax/backend/internal/domain/settings"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSettingRepository implements SettingRepository using GORM
type GormSettingRepository struct {
	db *gorm.DB
}

// NewGormSettingRepository creates a new GormSettingRepository
func NewGormSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// FindByID retrieves a setting by its ID
func (r *GormSettingRepository) FindByID(ctx context.Context, id uuid.UUID) (*settings.SystemSetting, error) {
	var s settings.SystemSetting
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindByKeyForTenant retrieves a setting by key
func (r *GormSettingRepository) FindByKeyForTenant(ctx context.Context, tenantID uuid.UUID, key string) (*settings.SystemSetting, error) {
	var s settings.SystemSetting
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND key = ?", tenantID, key).
		First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindAllForTenant retrieves all settings for a tenant
func (r *GormSettingRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]*settings.SystemSetting, error) {
	var list []*settings.SystemSetting
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Order("category ASC, key ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// FindByCategoryForTenant retrieves settings in one category
func (r *GormSettingRepository) FindByCategoryForTenant(ctx context.Context, tenantID uuid.UUID, category string) ([]*settings.SystemSetting, error) {
	var list []*settings.SystemSetting
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND category = ?", tenantID, category).
		Order("key ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Save persists a setting (create or update)
func (r *GormSettingRepository) Save(ctx context.Context, setting *settings.SystemSetting) error {
	return r.db.WithContext(ctx).Save(setting).Error
}

// DeleteForTenant removes a setting scoped to a tenant
func (r *GormSettingRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&settings.SystemSetting{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByKey checks whether a key is already present for a tenant
func (r *GormSettingRepository) ExistsByKey(ctx context.Context, tenantID uuid.UUID, key string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&settings.SystemSetting{}).
		Where("tenant_id = ? AND key = ?", tenantID, key).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
