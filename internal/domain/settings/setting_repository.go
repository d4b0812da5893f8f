package settings

import (
	"context"

	"github.com/google/uuid"
)

// SettingRepository defines the interface for system setting persistence
type SettingRepository interface {
	// FindByID retrieves a setting by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*SystemSetting, error)

	// FindByKeyForTenant retrieves a setting by key
	FindByKeyForTenant(ctx context.Context, tenantID uuid.UUID, key string) (*SystemSetting, error)

	// FindAllForTenant retrieves all settings for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]*SystemSetting, error)

	// FindByCategoryForTenant retrieves settings in one category
	FindByCategoryForTenant(ctx context.Context, tenantID uuid.UUID, category string) ([]*SystemSetting, error)

	// Save persists a setting (create or update)
	Save(ctx context.Context, setting *SystemSetting) error

	// DeleteForTenant removes a setting scoped to a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// ExistsByKey checks whether a key is already present for a tenant
	ExistsByKey(ctx context.Context, tenantID uuid.UUID, key string) (bool, error)
}
