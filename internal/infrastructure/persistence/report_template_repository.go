package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bettstax/backend/internal/domain/report"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/infrastructure/persistence/models"
	"github.com/bettstax/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportTemplateSortFields defines allowed sort fields for report templates
var ReportTemplateSortFields = map[string]bool{
	"code":       true,
	"name":       true,
	"type":       true,
	"schedule":   true,
	"created_at": true,
	"updated_at": true,
}

// GormReportTemplateRepository implements TemplateRepository using GORM
type GormReportTemplateRepository struct {
	db *gorm.DB
}

// NewGormReportTemplateRepository creates a new GormReportTemplateRepository
func NewGormReportTemplateRepository(db *gorm.DB) *GormReportTemplateRepository {
	return &GormReportTemplateRepository{db: db}
}

// FindByID finds a template by its ID
func (r *GormReportTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*report.ReportTemplate, error) {
	var model models.ReportTemplateModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a template by ID within a tenant
func (r *GormReportTemplateRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*report.ReportTemplate, error) {
	var model models.ReportTemplateModel
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

// FindByCode finds a template by its code within a tenant. Returns
// (nil, nil) when no template carries the code.
func (r *GormReportTemplateRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*report.ReportTemplate, error) {
	var model models.ReportTemplateModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(code)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all templates for a tenant
func (r *GormReportTemplateRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]report.ReportTemplate, error) {
	var templateModels []models.ReportTemplateModel
	query := r.db.WithContext(ctx).Model(&models.ReportTemplateModel{}).Scopes(tenant.TenantScope(tenantID))

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ? OR description ILIKE ?", searchPattern, searchPattern, searchPattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "type", "schedule", "active", "system":
			query = query.Where(key+" = ?", value)
		}
	}

	orderBy := ValidateSortField(filter.OrderBy, ReportTemplateSortFields, "code")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Find(&templateModels).Error; err != nil {
		return nil, err
	}

	templates := make([]report.ReportTemplate, len(templateModels))
	for i, model := range templateModels {
		templates[i] = *model.ToDomain()
	}
	return templates, nil
}

// FindByType finds templates producing a given report type
func (r *GormReportTemplateRepository) FindByType(ctx context.Context, tenantID uuid.UUID, reportType report.ReportType) ([]report.ReportTemplate, error) {
	var templateModels []models.ReportTemplateModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND type = ?", tenantID, string(reportType)).
		Order("code ASC").
		Find(&templateModels).Error; err != nil {
		return nil, err
	}

	templates := make([]report.ReportTemplate, len(templateModels))
	for i, model := range templateModels {
		templates[i] = *model.ToDomain()
	}
	return templates, nil
}

// FindScheduled finds active templates with the given schedule across all
// tenants. Used by the scheduler.
func (r *GormReportTemplateRepository) FindScheduled(ctx context.Context, schedule report.Schedule) ([]report.ReportTemplate, error) {
	var templateModels []models.ReportTemplateModel
	if err := r.db.WithContext(ctx).
		Where("schedule = ? AND active = ?", string(schedule), true).
		Order("tenant_id ASC, code ASC").
		Find(&templateModels).Error; err != nil {
		return nil, err
	}

	templates := make([]report.ReportTemplate, len(templateModels))
	for i, model := range templateModels {
		templates[i] = *model.ToDomain()
	}
	return templates, nil
}

// Save creates or updates a template
func (r *GormReportTemplateRepository) Save(ctx context.Context, t *report.ReportTemplate) error {
	model := models.ReportTemplateModelFromDomain(t)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a template with optimistic locking. The aggregate's
// version was already incremented by the mutating domain method, so the
// row must still hold the previous version.
func (r *GormReportTemplateRepository) SaveWithLock(ctx context.Context, t *report.ReportTemplate) error {
	t.UpdatedAt = time.Now()
	model := models.ReportTemplateModelFromDomain(t)

	result := r.db.WithContext(ctx).
		Model(&models.ReportTemplateModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", t.ID, t.TenantID, t.Version-1).
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

// Delete removes a user-defined template
func (r *GormReportTemplateRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ReportTemplateModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count returns the number of templates for a tenant
func (r *GormReportTemplateRepository) Count(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ReportTemplateModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormReportTemplateRepository implements TemplateRepository
var _ report.TemplateRepository = (*GormReportTemplateRepository)(nil)
