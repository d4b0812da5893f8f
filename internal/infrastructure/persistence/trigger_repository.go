package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/domain/workflow"
	"github.com/bettstax/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TriggerSortFields defines allowed sort fields for advanced triggers
var TriggerSortFields = map[string]bool{
	"name":          true,
	"event_type":    true,
	"priority":      true,
	"active":        true,
	"fire_count":    true,
	"last_fired_at": true,
	"created_at":    true,
	"updated_at":    true,
}

// GormTriggerRepository implements TriggerRepository using GORM
type GormTriggerRepository struct {
	db *gorm.DB
}

// NewGormTriggerRepository creates a new GormTriggerRepository
func NewGormTriggerRepository(db *gorm.DB) *GormTriggerRepository {
	return &GormTriggerRepository{db: db}
}

// FindByID finds a trigger by its ID
func (r *GormTriggerRepository) FindByID(ctx context.Context, id uuid.UUID) (*workflow.AdvancedTrigger, error) {
	var t workflow.AdvancedTrigger
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindByIDForTenant finds a trigger by ID within a tenant
func (r *GormTriggerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*workflow.AdvancedTrigger, error) {
	var t workflow.AdvancedTrigger
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindAllForTenant finds all triggers for a tenant
func (r *GormTriggerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]workflow.AdvancedTrigger, error) {
	var triggers []workflow.AdvancedTrigger
	query := r.db.WithContext(ctx).Model(&workflow.AdvancedTrigger{}).Scopes(tenant.TenantScope(tenantID))

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", searchPattern, searchPattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "event_type", "active":
			query = query.Where(key+" = ?", value)
		}
	}

	orderBy := ValidateSortField(filter.OrderBy, TriggerSortFields, "priority")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Find(&triggers).Error; err != nil {
		return nil, err
	}
	return triggers, nil
}

// FindActiveByEventType finds active triggers for an event type,
// ordered by priority ascending
func (r *GormTriggerRepository) FindActiveByEventType(ctx context.Context, tenantID uuid.UUID, eventType string) ([]workflow.AdvancedTrigger, error) {
	var triggers []workflow.AdvancedTrigger
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND event_type = ? AND active = ?", tenantID, eventType, true).
		Order("priority ASC, created_at ASC").
		Find(&triggers).Error; err != nil {
		return nil, err
	}
	return triggers, nil
}

// Save creates or updates a trigger
func (r *GormTriggerRepository) Save(ctx context.Context, t *workflow.AdvancedTrigger) error {
	return r.db.WithContext(ctx).Save(t).Error
}

// SaveWithLock saves a trigger with optimistic locking. The aggregate's
// version was already incremented by the mutating domain method, so the
// row must still hold the previous version.
func (r *GormTriggerRepository) SaveWithLock(ctx context.Context, t *workflow.AdvancedTrigger) error {
	t.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).
		Model(&workflow.AdvancedTrigger{}).
		Where("id = ? AND tenant_id = ? AND version = ?", t.ID, t.TenantID, t.Version-1).
		Select("*").
		Updates(t)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes a trigger
func (r *GormTriggerRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&workflow.AdvancedTrigger{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count returns the number of triggers for a tenant
func (r *GormTriggerRepository) Count(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&workflow.AdvancedTrigger{}).
		Scopes(tenant.TenantScope(tenantID)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormTriggerRepository implements TriggerRepository
var _ workflow.TriggerRepository = (*GormTriggerRepository)(nil)
