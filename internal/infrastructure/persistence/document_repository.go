package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bettstax/backend/internal/domain/document"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDocumentRepository implements DocumentRepository using GORM
type GormDocumentRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormDocumentRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID retrieves a document by its ID
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	var d document.Document
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// FindByIDForTenant retrieves a document scoped to a tenant
func (r *GormDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*document.Document, error) {
	var d document.Document
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// FindByStorageKey retrieves a document by its storage key
func (r *GormDocumentRepository) FindByStorageKey(ctx context.Context, storageKey string) (*document.Document, error) {
	var d document.Document
	if err := r.db.WithContext(ctx).
		Where("storage_key = ?", storageKey).
		First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// FindAllForTenant retrieves documents for a tenant with pagination,
// excluding soft-deleted ones.
func (r *GormDocumentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*document.Document, error) {
	var documents []*document.Document
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&document.Document{}).
			Where("tenant_id = ? AND status != ?", tenantID, document.DocumentStatusDeleted),
		filter,
	)
	if err := query.Find(&documents).Error; err != nil {
		return nil, err
	}
	return documents, nil
}

// FindByClientForTenant retrieves documents for one client
func (r *GormDocumentRepository) FindByClientForTenant(ctx context.Context, tenantID, clientID uuid.UUID, filter shared.Filter) ([]*document.Document, error) {
	var documents []*document.Document
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&document.Document{}).
			Where("tenant_id = ? AND client_id = ? AND status != ?", tenantID, clientID, document.DocumentStatusDeleted),
		filter,
	)
	if err := query.Find(&documents).Error; err != nil {
		return nil, err
	}
	return documents, nil
}

// FindByFilingForTenant retrieves documents attached to one filing
func (r *GormDocumentRepository) FindByFilingForTenant(ctx context.Context, tenantID, filingID uuid.UUID) ([]*document.Document, error) {
	var documents []*document.Document
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND filing_id = ? AND status != ?", tenantID, filingID, document.DocumentStatusDeleted).
		Order("created_at ASC").
		Find(&documents).Error; err != nil {
		return nil, err
	}
	return documents, nil
}

// FindByCategoryForTenant retrieves documents in one category
func (r *GormDocumentRepository) FindByCategoryForTenant(ctx context.Context, tenantID uuid.UUID, category document.DocumentCategory, filter shared.Filter) ([]*document.Document, error) {
	var documents []*document.Document
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&document.Document{}).
			Where("tenant_id = ? AND category = ? AND status != ?", tenantID, category, document.DocumentStatusDeleted),
		filter,
	)
	if err := query.Find(&documents).Error; err != nil {
		return nil, err
	}
	return documents, nil
}

// FindStalePending retrieves pending_upload documents created before the
// cutoff, across all tenants. Used by the cleanup job.
func (r *GormDocumentRepository) FindStalePending(ctx context.Context, cutoffHours int, limit int) ([]*document.Document, error) {
	cutoff := time.Now().Add(-time.Duration(cutoffHours) * time.Hour)
	var documents []*document.Document
	query := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", document.DocumentStatusPendingUpload, cutoff).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&documents).Error; err != nil {
		return nil, err
	}
	return documents, nil
}

// Save persists a document (create or update) together with its pending events
func (r *GormDocumentRepository) Save(ctx context.Context, d *document.Document) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(d).Error; err != nil {
			return err
		}
		return r.saveEvents(ctx, tx, &d.TenantAggregateRoot)
	})
}

// SaveWithLock persists a document with optimistic locking
func (r *GormDocumentRepository) SaveWithLock(ctx context.Context, d *document.Document, expectedVersion int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d.Version = expectedVersion + 1
		d.UpdatedAt = time.Now()

		result := tx.Model(&document.Document{}).
			Where("id = ? AND tenant_id = ? AND version = ?", d.ID, d.TenantID, expectedVersion).
			Select("*").
			Updates(d)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.saveEvents(ctx, tx, &d.TenantAggregateRoot)
	})
}

// DeleteForTenant hard-removes a document row scoped to a tenant
func (r *GormDocumentRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&document.Document{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForTenant returns the number of documents matching the filter
func (r *GormDocumentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&document.Document{}).
		Where("tenant_id = ? AND status != ?", tenantID, document.DocumentStatusDeleted)
	query = r.applySearch(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UsageForTenant sums storage consumption over non-deleted documents
func (r *GormDocumentRepository) UsageForTenant(ctx context.Context, tenantID uuid.UUID) (*document.StorageUsage, error) {
	var usage document.StorageUsage
	if err := r.db.WithContext(ctx).
		Model(&document.Document{}).
		Select("COUNT(*) AS document_count, COALESCE(SUM(size_bytes), 0) AS total_bytes").
		Where("tenant_id = ? AND status != ?", tenantID, document.DocumentStatusDeleted).
		Scan(&usage).Error; err != nil {
		return nil, err
	}
	return &usage, nil
}

// saveEvents writes the aggregate's pending events to the outbox and clears them
func (r *GormDocumentRepository) saveEvents(ctx context.Context, tx *gorm.DB, root *shared.TenantAggregateRoot) error {
	if r.outboxSaver == nil {
		return nil
	}
	events := root.GetDomainEvents()
	if len(events) == 0 {
		return nil
	}
	if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
		return err
	}
	root.ClearDomainEvents()
	return nil
}

// applySearch applies search and field filters only (no paging)
func (r *GormDocumentRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", search, search)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status", "category", "client_id", "filing_id", "content_type", "uploaded_by":
			query = query.Where(key+" = ?", value)
		case "uploaded_after":
			query = query.Where("created_at >= ?", value)
		case "uploaded_before":
			query = query.Where("created_at < ?", value)
		}
	}
	return query
}

// applyFilter applies search, filters, sorting and pagination to the query
func (r *GormDocumentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applySearch(query, filter)

	allowedSortFields := map[string]bool{
		"name": true, "category": true, "size_bytes": true,
		"status": true, "created_at": true, "updated_at": true,
	}
	orderBy := ValidateSortField(filter.OrderBy, allowedSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if filter.Page > 0 {
			query = query.Offset((filter.Page - 1) * filter.PageSize)
		}
	}
	return query
}
