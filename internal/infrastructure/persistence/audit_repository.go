package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bettstax/backend/internal/domain/audit"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/infrastructure/persistence/models"
	"github.com/bettstax/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAuditEntryRepository implements EntryRepository using GORM. The
// trail is append-only: rows are only ever inserted or purged.
type GormAuditEntryRepository struct {
	db *gorm.DB
}

// NewGormAuditEntryRepository creates a new GormAuditEntryRepository
func NewGormAuditEntryRepository(db *gorm.DB) *GormAuditEntryRepository {
	return &GormAuditEntryRepository{db: db}
}

// Append persists one or more entries
func (r *GormAuditEntryRepository) Append(ctx context.Context, entries ...*audit.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	entryModels := make([]*models.AuditEntryModel, len(entries))
	for i, e := range entries {
		entryModels[i] = models.AuditEntryModelFromDomain(e)
	}
	return r.db.WithContext(ctx).Create(&entryModels).Error
}

// FindByIDForTenant finds an entry by ID within a tenant
func (r *GormAuditEntryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*audit.Entry, error) {
	var model models.AuditEntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Search lists entries for a tenant, newest first, with the total count
func (r *GormAuditEntryRepository) Search(ctx context.Context, tenantID uuid.UUID, q audit.Query) ([]audit.Entry, int64, error) {
	q = q.Normalize()

	countQuery := r.applyQuery(r.db.WithContext(ctx).Model(&models.AuditEntryModel{}).Scopes(tenant.TenantScope(tenantID)), q)
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := r.applyQuery(r.db.WithContext(ctx).Model(&models.AuditEntryModel{}).Scopes(tenant.TenantScope(tenantID)), q)
	var entryModels []models.AuditEntryModel
	if err := listQuery.
		Order("occurred_at DESC").
		Offset(q.Offset()).
		Limit(q.PageSize).
		Find(&entryModels).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]audit.Entry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, total, nil
}

// FindByEntity lists entries for one aggregate instance, newest first
func (r *GormAuditEntryRepository) FindByEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID, limit int) ([]audit.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entryModels []models.AuditEntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND entity_type = ? AND entity_id = ?", tenantID, entityType, entityID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]audit.Entry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// CountSince counts entries recorded since the given time
func (r *GormAuditEntryRepository) CountSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AuditEntryModel{}).
		Where("tenant_id = ? AND occurred_at >= ?", tenantID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// PurgeBefore removes entries older than the given time across all tenants
func (r *GormAuditEntryRepository) PurgeBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("occurred_at < ?", before).
		Delete(&models.AuditEntryModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// applyQuery applies the audit query filters
func (r *GormAuditEntryRepository) applyQuery(query *gorm.DB, q audit.Query) *gorm.DB {
	if q.ActorID != nil {
		query = query.Where("actor_id = ?", *q.ActorID)
	}
	if q.Action != "" {
		query = query.Where("action = ?", string(q.Action))
	}
	if q.EntityType != "" {
		query = query.Where("entity_type = ?", q.EntityType)
	}
	if q.EntityID != nil {
		query = query.Where("entity_id = ?", *q.EntityID)
	}
	if !q.From.IsZero() {
		query = query.Where("occurred_at >= ?", q.From)
	}
	if !q.To.IsZero() {
		query = query.Where("occurred_at < ?", q.To)
	}
	if q.Search != "" {
		query = query.Where("summary ILIKE ?", "%"+q.Search+"%")
	}
	return query
}

// Ensure GormAuditEntryRepository implements EntryRepository
var _ audit.EntryRepository = (*GormAuditEntryRepository)(nil)
