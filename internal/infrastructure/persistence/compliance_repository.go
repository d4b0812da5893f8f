package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bettstax/backend/internal/domain/compliance"
	"github.com/bettstax/backend/internal/domain/filing"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDeadlineRuleRepository implements DeadlineRuleRepository using GORM
type GormDeadlineRuleRepository struct {
	db *gorm.DB
}

// NewGormDeadlineRuleRepository creates a new GormDeadlineRuleRepository
func NewGormDeadlineRuleRepository(db *gorm.DB) *GormDeadlineRuleRepository {
	return &GormDeadlineRuleRepository{db: db}
}

// FindByIDForTenant finds a rule by ID within a tenant
func (r *GormDeadlineRuleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*compliance.DeadlineRule, error) {
	var rule compliance.DeadlineRule
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// FindByTaxType finds the rule for a tax type within a tenant. Returns
// (nil, nil) when no rule is configured so callers can fall back to the
// statutory defaults.
func (r *GormDeadlineRuleRepository) FindByTaxType(ctx context.Context, tenantID uuid.UUID, taxType filing.TaxType) (*compliance.DeadlineRule, error) {
	var rule compliance.DeadlineRule
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND tax_type = ?", tenantID, taxType).
		First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// FindAllForTenant finds all rules for a tenant
func (r *GormDeadlineRuleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]compliance.DeadlineRule, error) {
	var rules []compliance.DeadlineRule
	query := r.db.WithContext(ctx).Model(&compliance.DeadlineRule{}).Scopes(tenant.TenantScope(tenantID))
	for key, value := range filter.Filters {
		switch key {
		case "tax_type", "base", "active":
			query = query.Where(key+" = ?", value)
		}
	}

	allowedSortFields := map[string]bool{
		"tax_type": true, "offset_days": true, "grace_days": true,
		"created_at": true, "updated_at": true,
	}
	orderBy := ValidateSortField(filter.OrderBy, allowedSortFields, "tax_type")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if filter.Page > 0 {
			query = query.Offset((filter.Page - 1) * filter.PageSize)
		}
	}

	if err := query.Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// Save creates or updates a rule
func (r *GormDeadlineRuleRepository) Save(ctx context.Context, rule *compliance.DeadlineRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

// DeleteForTenant deletes a rule within a tenant
func (r *GormDeadlineRuleRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&compliance.DeadlineRule{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByTaxType checks whether a rule exists for a tax type
func (r *GormDeadlineRuleRepository) ExistsByTaxType(ctx context.Context, tenantID uuid.UUID, taxType filing.TaxType) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&compliance.DeadlineRule{}).
		Where("tenant_id = ? AND tax_type = ?", tenantID, taxType).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountForTenant counts rules for a tenant
func (r *GormDeadlineRuleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&compliance.DeadlineRule{}).
		Scopes(tenant.TenantScope(tenantID)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GormPublicHolidayRepository implements PublicHolidayRepository using GORM
type GormPublicHolidayRepository struct {
	db *gorm.DB
}

// NewGormPublicHolidayRepository creates a new GormPublicHolidayRepository
func NewGormPublicHolidayRepository(db *gorm.DB) *GormPublicHolidayRepository {
	return &GormPublicHolidayRepository{db: db}
}

// FindByIDForTenant finds a holiday by ID within a tenant
func (r *GormPublicHolidayRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*compliance.PublicHoliday, error) {
	var holiday compliance.PublicHoliday
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&holiday).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &holiday, nil
}

// FindAllForTenant finds all holidays for a tenant
func (r *GormPublicHolidayRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]compliance.PublicHoliday, error) {
	var holidays []compliance.PublicHoliday
	query := r.db.WithContext(ctx).Model(&compliance.PublicHoliday{}).Scopes(tenant.TenantScope(tenantID))
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "recurring", "active":
			query = query.Where(key+" = ?", value)
		case "year":
			query = query.Where("EXTRACT(YEAR FROM date) = ? OR recurring = true", value)
		}
	}

	allowedSortFields := map[string]bool{
		"date": true, "name": true, "created_at": true, "updated_at": true,
	}
	orderBy := ValidateSortField(filter.OrderBy, allowedSortFields, "date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if filter.Page > 0 {
			query = query.Offset((filter.Page - 1) * filter.PageSize)
		}
	}

	if err := query.Find(&holidays).Error; err != nil {
		return nil, err
	}
	return holidays, nil
}

// FindByYear finds holidays effective in a calendar year, including
// recurring entries from any year.
func (r *GormPublicHolidayRepository) FindByYear(ctx context.Context, tenantID uuid.UUID, year int) ([]compliance.PublicHoliday, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	var holidays []compliance.PublicHoliday
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND ((date >= ? AND date < ?) OR recurring = true)", tenantID, start, end).
		Order("date ASC").
		Find(&holidays).Error; err != nil {
		return nil, err
	}
	return holidays, nil
}

// FindActive finds all active holidays for a tenant
func (r *GormPublicHolidayRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]compliance.PublicHoliday, error) {
	var holidays []compliance.PublicHoliday
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = true", tenantID).
		Order("date ASC").
		Find(&holidays).Error; err != nil {
		return nil, err
	}
	return holidays, nil
}

// ExistsOnDate checks whether a holiday entry exists for the date.
// Recurring entries match on month and day.
func (r *GormPublicHolidayRepository) ExistsOnDate(ctx context.Context, tenantID uuid.UUID, date time.Time) (bool, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&compliance.PublicHoliday{}).
		Where("tenant_id = ? AND active = true", tenantID).
		Where(
			"(recurring = false AND date = ?) OR (recurring = true AND EXTRACT(MONTH FROM date) = ? AND EXTRACT(DAY FROM date) = ?)",
			day, int(day.Month()), day.Day(),
		).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a holiday
func (r *GormPublicHolidayRepository) Save(ctx context.Context, holiday *compliance.PublicHoliday) error {
	return r.db.WithContext(ctx).Save(holiday).Error
}

// DeleteForTenant deletes a holiday within a tenant
func (r *GormPublicHolidayRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&compliance.PublicHoliday{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForTenant counts holidays for a tenant
func (r *GormPublicHolidayRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&compliance.PublicHoliday{}).
		Scopes(tenant.TenantScope(tenantID)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
