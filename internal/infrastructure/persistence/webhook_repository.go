package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/domain/webhook"
	"github.com/bettstax/backend/internal/infrastructure/persistence/models"
	"github.com/bettstax/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WebhookRegistrationSortFields defines allowed sort fields for registrations
var WebhookRegistrationSortFields = map[string]bool{
	"name":             true,
	"active":           true,
	"last_delivery_at": true,
	"created_at":       true,
	"updated_at":       true,
}

// GormWebhookRegistrationRepository implements RegistrationRepository using GORM
type GormWebhookRegistrationRepository struct {
	db *gorm.DB
}

// NewGormWebhookRegistrationRepository creates a new GormWebhookRegistrationRepository
func NewGormWebhookRegistrationRepository(db *gorm.DB) *GormWebhookRegistrationRepository {
	return &GormWebhookRegistrationRepository{db: db}
}

// FindByID finds a registration by its ID
func (r *GormWebhookRegistrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*webhook.Registration, error) {
	var model models.WebhookRegistrationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a registration by ID within a tenant
func (r *GormWebhookRegistrationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*webhook.Registration, error) {
	var model models.WebhookRegistrationModel
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

// FindAllForTenant finds all registrations for a tenant
func (r *GormWebhookRegistrationRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]webhook.Registration, error) {
	var registrationModels []models.WebhookRegistrationModel
	query := r.db.WithContext(ctx).Model(&models.WebhookRegistrationModel{}).Scopes(tenant.TenantScope(tenantID))

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR target_url ILIKE ?", searchPattern, searchPattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "active":
			query = query.Where("active = ?", value)
		}
	}

	orderBy := ValidateSortField(filter.OrderBy, WebhookRegistrationSortFields, "name")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Find(&registrationModels).Error; err != nil {
		return nil, err
	}

	registrations := make([]webhook.Registration, len(registrationModels))
	for i, model := range registrationModels {
		registrations[i] = *model.ToDomain()
	}
	return registrations, nil
}

// FindActiveByEventType finds active registrations subscribed to an event
// type. Wildcard subscribers match every event, so the filtering happens
// in memory after loading the tenant's active registrations.
func (r *GormWebhookRegistrationRepository) FindActiveByEventType(ctx context.Context, tenantID uuid.UUID, eventType string) ([]webhook.Registration, error) {
	var registrationModels []models.WebhookRegistrationModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Find(&registrationModels).Error; err != nil {
		return nil, err
	}

	matched := make([]webhook.Registration, 0, len(registrationModels))
	for _, model := range registrationModels {
		reg := model.ToDomain()
		if reg.SubscribesTo(eventType) {
			matched = append(matched, *reg)
		}
	}
	return matched, nil
}

// Save creates or updates a registration
func (r *GormWebhookRegistrationRepository) Save(ctx context.Context, reg *webhook.Registration) error {
	model := models.WebhookRegistrationModelFromDomain(reg)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a registration with optimistic locking. The aggregate's
// version was already incremented by the mutating domain method, so the
// row must still hold the previous version.
func (r *GormWebhookRegistrationRepository) SaveWithLock(ctx context.Context, reg *webhook.Registration) error {
	reg.UpdatedAt = time.Now()
	model := models.WebhookRegistrationModelFromDomain(reg)

	result := r.db.WithContext(ctx).
		Model(&models.WebhookRegistrationModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", reg.ID, reg.TenantID, reg.Version-1).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes a registration and its queued deliveries
func (r *GormWebhookRegistrationRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.WebhookRegistrationModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Delete(&models.WebhookDeliveryModel{}, "tenant_id = ? AND registration_id = ?", tenantID, id).Error
	})
}

// Count returns the number of registrations for a tenant
func (r *GormWebhookRegistrationRepository) Count(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WebhookRegistrationModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GormWebhookDeliveryRepository implements DeliveryRepository using GORM
type GormWebhookDeliveryRepository struct {
	db *gorm.DB
}

// NewGormWebhookDeliveryRepository creates a new GormWebhookDeliveryRepository
func NewGormWebhookDeliveryRepository(db *gorm.DB) *GormWebhookDeliveryRepository {
	return &GormWebhookDeliveryRepository{db: db}
}

// Save persists one or more deliveries
func (r *GormWebhookDeliveryRepository) Save(ctx context.Context, deliveries ...*webhook.Delivery) error {
	if len(deliveries) == 0 {
		return nil
	}
	deliveryModels := make([]*models.WebhookDeliveryModel, len(deliveries))
	for i, d := range deliveries {
		deliveryModels[i] = models.WebhookDeliveryModelFromDomain(d)
	}
	return r.db.WithContext(ctx).Create(&deliveryModels).Error
}

// Update persists the state of an attempted delivery
func (r *GormWebhookDeliveryRepository) Update(ctx context.Context, d *webhook.Delivery) error {
	model := models.WebhookDeliveryModelFromDomain(d)
	result := r.db.WithContext(ctx).
		Model(&models.WebhookDeliveryModel{}).
		Where("id = ?", d.ID).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByIDForTenant finds a delivery by ID within a tenant
func (r *GormWebhookDeliveryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*webhook.Delivery, error) {
	var model models.WebhookDeliveryModel
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

// FindDue retrieves pending and retry-due deliveries across all tenants,
// oldest first, up to the specified limit
func (r *GormWebhookDeliveryRepository) FindDue(ctx context.Context, before time.Time, limit int) ([]*webhook.Delivery, error) {
	if limit <= 0 {
		limit = 100
	}
	var deliveryModels []models.WebhookDeliveryModel
	if err := r.db.WithContext(ctx).
		Where("status = ? OR (status = ? AND (next_retry_at IS NULL OR next_retry_at <= ?))",
			string(webhook.DeliveryStatusPending), string(webhook.DeliveryStatusFailed), before).
		Order("created_at ASC").
		Limit(limit).
		Find(&deliveryModels).Error; err != nil {
		return nil, err
	}

	deliveries := make([]*webhook.Delivery, len(deliveryModels))
	for i := range deliveryModels {
		deliveries[i] = deliveryModels[i].ToDomain()
	}
	return deliveries, nil
}

// FindByRegistration lists deliveries for one registration, newest first
func (r *GormWebhookDeliveryRepository) FindByRegistration(ctx context.Context, tenantID, registrationID uuid.UUID, filter shared.Filter) ([]webhook.Delivery, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND registration_id = ?", tenantID, registrationID)
	return r.listDeliveries(query, filter)
}

// FindByStatus lists deliveries in a given status for a tenant, newest first
func (r *GormWebhookDeliveryRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status webhook.DeliveryStatus, filter shared.Filter) ([]webhook.Delivery, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, string(status))
	return r.listDeliveries(query, filter)
}

// CountByRegistration counts deliveries for one registration
func (r *GormWebhookDeliveryRepository) CountByRegistration(ctx context.Context, tenantID, registrationID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WebhookDeliveryModel{}).
		Where("tenant_id = ? AND registration_id = ?", tenantID, registrationID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts a tenant's deliveries in a given status
func (r *GormWebhookDeliveryRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status webhook.DeliveryStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WebhookDeliveryModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, string(status)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// StatsByRegistration aggregates delivery counts per status for one registration
func (r *GormWebhookDeliveryRepository) StatsByRegistration(ctx context.Context, tenantID, registrationID uuid.UUID) (webhook.DeliveryStats, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.WebhookDeliveryModel{}).
		Select("status, COUNT(*) AS count").
		Where("tenant_id = ? AND registration_id = ?", tenantID, registrationID).
		Group("status").
		Scan(&counts).Error; err != nil {
		return webhook.DeliveryStats{}, err
	}

	var stats webhook.DeliveryStats
	for _, sc := range counts {
		switch webhook.DeliveryStatus(sc.Status) {
		case webhook.DeliveryStatusPending:
			stats.Pending = sc.Count
		case webhook.DeliveryStatusProcessing:
			stats.Processing = sc.Count
		case webhook.DeliveryStatusSent:
			stats.Sent = sc.Count
		case webhook.DeliveryStatusFailed:
			stats.Failed = sc.Count
		case webhook.DeliveryStatusDead:
			stats.Dead = sc.Count
		}
	}
	return stats, nil
}

// ResetStuckProcessing returns deliveries stuck in PROCESSING longer than
// the threshold back to PENDING, e.g. after a dispatcher crash
func (r *GormWebhookDeliveryRepository) ResetStuckProcessing(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.WebhookDeliveryModel{}).
		Where("status = ? AND updated_at < ?", string(webhook.DeliveryStatusProcessing), olderThan).
		Updates(map[string]interface{}{
			"status":     string(webhook.DeliveryStatusPending),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteSentBefore purges successfully delivered entries older than the given time
func (r *GormWebhookDeliveryRepository) DeleteSentBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND delivered_at < ?", string(webhook.DeliveryStatusSent), before).
		Delete(&models.WebhookDeliveryModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *GormWebhookDeliveryRepository) listDeliveries(query *gorm.DB, filter shared.Filter) ([]webhook.Delivery, error) {
	query = query.Model(&models.WebhookDeliveryModel{}).Order("created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var deliveryModels []models.WebhookDeliveryModel
	if err := query.Find(&deliveryModels).Error; err != nil {
		return nil, err
	}

	deliveries := make([]webhook.Delivery, len(deliveryModels))
	for i, model := range deliveryModels {
		deliveries[i] = *model.ToDomain()
	}
	return deliveries, nil
}

// Ensure the repositories implement their domain interfaces
var (
	_ webhook.RegistrationRepository = (*GormWebhookRegistrationRepository)(nil)
	_ webhook.DeliveryRepository     = (*GormWebhookDeliveryRepository)(nil)
)
