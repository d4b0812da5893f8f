package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bettstax/backend/internal/domain/client"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientRepository implements ClientRepository using GORM
type GormClientRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormClientRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a client by its ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	var c client.Client
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByIDForTenant finds a client by ID within a tenant
func (r *GormClientRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*client.Client, error) {
	var c client.Client
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByCode finds a client by its code within a tenant
func (r *GormClientRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*client.Client, error) {
	var c client.Client
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(code)).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByTIN finds a client by tax identification number within a tenant
func (r *GormClientRepository) FindByTIN(ctx context.Context, tenantID uuid.UUID, tin string) (*client.Client, error) {
	if tin == "" {
		return nil, shared.NewDomainError("INVALID_TIN", "TIN cannot be empty")
	}
	var c client.Client
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND tin = ?", tenantID, tin).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByPortalUser finds the client linked to a portal user account
func (r *GormClientRepository) FindByPortalUser(ctx context.Context, tenantID, userID uuid.UUID) (*client.Client, error) {
	var c client.Client
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND portal_user_id = ?", tenantID, userID).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindAllForTenant finds all clients for a tenant
func (r *GormClientRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]client.Client, error) {
	var clients []client.Client
	query := r.applyFilter(r.db.WithContext(ctx).Model(&client.Client{}).Scopes(tenant.TenantScope(tenantID)), filter)
	if err := query.Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// FindByType finds clients by taxpayer type
func (r *GormClientRepository) FindByType(ctx context.Context, tenantID uuid.UUID, clientType client.ClientType, filter shared.Filter) ([]client.Client, error) {
	var clients []client.Client
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&client.Client{}).
			Where("tenant_id = ? AND type = ?", tenantID, clientType),
		filter,
	)
	if err := query.Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// FindByStatus finds clients by status for a tenant
func (r *GormClientRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status client.ClientStatus, filter shared.Filter) ([]client.Client, error) {
	var clients []client.Client
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&client.Client{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)
	if err := query.Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// FindByAssociate finds clients assigned to an associate
func (r *GormClientRepository) FindByAssociate(ctx context.Context, tenantID, userID uuid.UUID, filter shared.Filter) ([]client.Client, error) {
	var clients []client.Client
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&client.Client{}).
			Where("tenant_id = ? AND assigned_to = ?", tenantID, userID),
		filter,
	)
	if err := query.Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// FindGSTRegistered finds GST-registered clients for a tenant
func (r *GormClientRepository) FindGSTRegistered(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]client.Client, error) {
	var clients []client.Client
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&client.Client{}).
			Where("tenant_id = ? AND gst_registered = ?", tenantID, true),
		filter,
	)
	if err := query.Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// FindByIDs finds multiple clients by their IDs
func (r *GormClientRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]client.Client, error) {
	if len(ids) == 0 {
		return []client.Client{}, nil
	}
	var clients []client.Client
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// Save creates or updates a client and writes its pending domain events to
// the outbox inside the same transaction
func (r *GormClientRepository) Save(ctx context.Context, c *client.Client) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(c).Error; err != nil {
			return err
		}
		return r.saveEvents(ctx, tx, &c.TenantAggregateRoot)
	})
}

// SaveWithLock saves a client with optimistic locking. The aggregate's
// version was already incremented by the mutating domain method, so the
// row must still hold the previous version.
func (r *GormClientRepository) SaveWithLock(ctx context.Context, c *client.Client) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expectedVersion := c.Version - 1
		c.UpdatedAt = time.Now()

		result := tx.Model(&client.Client{}).
			Where("id = ? AND tenant_id = ? AND version = ?", c.ID, c.TenantID, expectedVersion).
			Select("*").
			Updates(c)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.saveEvents(ctx, tx, &c.TenantAggregateRoot)
	})
}

// DeleteForTenant deletes a client within a tenant. The client's deleted
// event, when pending, goes to the outbox in the same transaction.
func (r *GormClientRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c client.Client
		if err := tx.Where("tenant_id = ? AND id = ?", tenantID, id).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&client.Client{}, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
			return err
		}
		if r.outboxSaver != nil {
			event := client.NewClientDeletedEvent(&c)
			return r.outboxSaver.SaveEvents(ctx, tx, event)
		}
		return nil
	})
}

// CountForTenant counts clients for a tenant
func (r *GormClientRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&client.Client{}).Scopes(tenant.TenantScope(tenantID)), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts clients by status for a tenant
func (r *GormClientRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status client.ClientStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&client.Client{}).
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByAssociate counts clients assigned to an associate
func (r *GormClientRepository) CountByAssociate(ctx context.Context, tenantID, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&client.Client{}).
		Where("tenant_id = ? AND assigned_to = ?", tenantID, userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if a client with the given code exists in the tenant
func (r *GormClientRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&client.Client{}).
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByTIN checks if a client with the given TIN exists in the tenant
func (r *GormClientRepository) ExistsByTIN(ctx context.Context, tenantID uuid.UUID, tin string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&client.Client{}).
		Where("tenant_id = ? AND tin = ?", tenantID, tin).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsForTenant checks if a client with the given ID exists in the tenant
func (r *GormClientRepository) ExistsForTenant(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&client.Client{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// saveEvents writes the aggregate's pending events to the outbox and clears them
func (r *GormClientRepository) saveEvents(ctx context.Context, tx *gorm.DB, root *shared.TenantAggregateRoot) error {
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

// applySearch applies the search clause without pagination, for counting
func (r *GormClientRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ? OR business_name ILIKE ? OR tin ILIKE ?", search, search, search, search)
	}
	for key, value := range filter.Filters {
		switch key {
		case "type", "status", "taxpayer_size", "district":
			query = query.Where(key+" = ?", value)
		case "gst_registered":
			query = query.Where("gst_registered = ?", value)
		case "assigned_to":
			query = query.Where("assigned_to = ?", value)
		}
	}
	return query
}

// applyFilter applies search, filters, sorting and pagination to the query
func (r *GormClientRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applySearch(query, filter)

	allowedSortFields := map[string]bool{
		"code": true, "name": true, "status": true, "type": true,
		"taxpayer_size": true, "created_at": true, "updated_at": true,
		"onboarded_at": true, "last_filing_at": true,
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
