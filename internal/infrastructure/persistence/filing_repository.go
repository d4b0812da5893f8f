package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bettstax/backend/internal/domain/filing"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormTaxFilingRepository implements TaxFilingRepository using GORM
type GormTaxFilingRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormTaxFilingRepository creates a new GormTaxFilingRepository
func NewGormTaxFilingRepository(db *gorm.DB) *GormTaxFilingRepository {
	return &GormTaxFilingRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormTaxFilingRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a filing by its ID
func (r *GormTaxFilingRepository) FindByID(ctx context.Context, id uuid.UUID) (*filing.TaxFiling, error) {
	var f filing.TaxFiling
	if err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// FindByIDForTenant finds a filing by ID within a tenant
func (r *GormTaxFilingRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*filing.TaxFiling, error) {
	var f filing.TaxFiling
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// FindByNumber finds a filing by its filing number within a tenant
func (r *GormTaxFilingRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, filingNumber string) (*filing.TaxFiling, error) {
	var f filing.TaxFiling
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND filing_number = ?", tenantID, strings.ToUpper(filingNumber)).
		First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// FindAllForTenant finds all filings for a tenant
func (r *GormTaxFilingRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]filing.TaxFiling, error) {
	var filings []filing.TaxFiling
	query := r.applyFilter(r.db.WithContext(ctx).Model(&filing.TaxFiling{}).Scopes(tenant.TenantScope(tenantID)), filter)
	if err := query.Find(&filings).Error; err != nil {
		return nil, err
	}
	return filings, nil
}

// FindByClient finds filings for a client
func (r *GormTaxFilingRepository) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID, filter shared.Filter) ([]filing.TaxFiling, error) {
	var filings []filing.TaxFiling
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&filing.TaxFiling{}).
			Where("tenant_id = ? AND client_id = ?", tenantID, clientID),
		filter,
	)
	if err := query.Find(&filings).Error; err != nil {
		return nil, err
	}
	return filings, nil
}

// FindByStatus finds filings by status for a tenant
func (r *GormTaxFilingRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status filing.FilingStatus, filter shared.Filter) ([]filing.TaxFiling, error) {
	var filings []filing.TaxFiling
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&filing.TaxFiling{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)
	if err := query.Find(&filings).Error; err != nil {
		return nil, err
	}
	return filings, nil
}

// FindByTaxType finds filings by tax type for a tenant
func (r *GormTaxFilingRepository) FindByTaxType(ctx context.Context, tenantID uuid.UUID, taxType filing.TaxType, filter shared.Filter) ([]filing.TaxFiling, error) {
	var filings []filing.TaxFiling
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&filing.TaxFiling{}).
			Where("tenant_id = ? AND tax_type = ?", tenantID, taxType),
		filter,
	)
	if err := query.Find(&filings).Error; err != nil {
		return nil, err
	}
	return filings, nil
}

// FindDueBetween finds non-terminal filings whose due date falls in the window
func (r *GormTaxFilingRepository) FindDueBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time, filter shared.Filter) ([]filing.TaxFiling, error) {
	var filings []filing.TaxFiling
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&filing.TaxFiling{}).
			Where("tenant_id = ? AND due_date >= ? AND due_date < ?", tenantID, from, to).
			Where("status NOT IN ?", []filing.FilingStatus{
				filing.FilingStatusFiled,
				filing.FilingStatusCancelled,
			}),
		filter,
	)
	if err := query.Find(&filings).Error; err != nil {
		return nil, err
	}
	return filings, nil
}

// FindOverdueCandidates finds filings past their due date that can still be
// marked overdue. A zero tenantID scans every tenant (scheduler sweep).
func (r *GormTaxFilingRepository) FindOverdueCandidates(ctx context.Context, tenantID uuid.UUID, asOf time.Time, limit int) ([]filing.TaxFiling, error) {
	query := r.db.WithContext(ctx).
		Where("due_date < ?", asOf).
		Where("status IN ?", []filing.FilingStatus{
			filing.FilingStatusDraft,
			filing.FilingStatusSubmitted,
		}).
		Order("due_date ASC")
	if tenantID != uuid.Nil {
		query = query.Scopes(tenant.TenantScope(tenantID))
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var filings []filing.TaxFiling
	if err := query.Find(&filings).Error; err != nil {
		return nil, err
	}
	return filings, nil
}

// FindActivePeriodFiling finds a non-cancelled filing for the same client,
// tax type and period start. Returns (nil, nil) when none exists.
func (r *GormTaxFilingRepository) FindActivePeriodFiling(ctx context.Context, tenantID, clientID uuid.UUID, taxType filing.TaxType, periodStart time.Time) (*filing.TaxFiling, error) {
	var f filing.TaxFiling
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND client_id = ? AND tax_type = ? AND period_start = ?", tenantID, clientID, taxType, periodStart).
		Where("status <> ?", filing.FilingStatusCancelled).
		First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

// Save creates or updates a filing and writes its pending domain events to
// the outbox inside the same transaction
func (r *GormTaxFilingRepository) Save(ctx context.Context, f *filing.TaxFiling) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(f).Error; err != nil {
			return err
		}
		return r.saveEvents(ctx, tx, &f.TenantAggregateRoot)
	})
}

// SaveWithLock saves a filing with optimistic locking. The aggregate's
// version was already incremented by the mutating domain method, so the
// row must still hold the previous version.
func (r *GormTaxFilingRepository) SaveWithLock(ctx context.Context, f *filing.TaxFiling) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expectedVersion := f.Version - 1
		f.UpdatedAt = time.Now()

		result := tx.Model(&filing.TaxFiling{}).
			Where("id = ? AND tenant_id = ? AND version = ?", f.ID, f.TenantID, expectedVersion).
			Select("*").
			Updates(f)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.saveEvents(ctx, tx, &f.TenantAggregateRoot)
	})
}

// DeleteForTenant deletes a filing within a tenant
func (r *GormTaxFilingRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var f filing.TaxFiling
		if err := tx.Where("tenant_id = ? AND id = ?", tenantID, id).First(&f).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&filing.TaxFiling{}, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
			return err
		}
		if r.outboxSaver != nil {
			event := filing.NewFilingDeletedEvent(&f)
			return r.outboxSaver.SaveEvents(ctx, tx, event)
		}
		return nil
	})
}

// CountForTenant counts filings for a tenant
func (r *GormTaxFilingRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&filing.TaxFiling{}).Scopes(tenant.TenantScope(tenantID)), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts filings by status for a tenant
func (r *GormTaxFilingRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status filing.FilingStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&filing.TaxFiling{}).
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByClient counts filings for a client
func (r *GormTaxFilingRepository) CountByClient(ctx context.Context, tenantID, clientID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&filing.TaxFiling{}).
		Where("tenant_id = ? AND client_id = ?", tenantID, clientID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountOverdue counts filings past due and not closed for a tenant
func (r *GormTaxFilingRepository) CountOverdue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&filing.TaxFiling{}).
		Where("tenant_id = ? AND due_date < ?", tenantID, asOf).
		Where("status IN ?", []filing.FilingStatus{
			filing.FilingStatusDraft,
			filing.FilingStatusSubmitted,
			filing.FilingStatusUnderReview,
			filing.FilingStatusOverdue,
		}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumTaxDueByType sums total due grouped by tax type for filings in a period
func (r *GormTaxFilingRepository) SumTaxDueByType(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (map[filing.TaxType]filing.TaxTypeTotal, error) {
	type row struct {
		TaxType  filing.TaxType
		Count    int64
		TaxDue   decimal.Decimal
		TotalDue decimal.Decimal
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&filing.TaxFiling{}).
		Select("tax_type, COUNT(*) AS count, COALESCE(SUM(tax_due), 0) AS tax_due, COALESCE(SUM(total_due), 0) AS total_due").
		Where("tenant_id = ? AND period_end >= ? AND period_end < ?", tenantID, from, to).
		Where("status <> ?", filing.FilingStatusCancelled).
		Group("tax_type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := make(map[filing.TaxType]filing.TaxTypeTotal, len(rows))
	for _, row := range rows {
		totals[row.TaxType] = filing.TaxTypeTotal{
			Count:    row.Count,
			TaxDue:   row.TaxDue,
			TotalDue: row.TotalDue,
		}
	}
	return totals, nil
}

// GenerateFilingNumber generates a unique filing number for a tenant.
// Format: TF-YYYY-NNNNN (e.g., TF-2026-00001)
func (r *GormTaxFilingRepository) GenerateFilingNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("TF-%d-", year)

	var lastFiling filing.TaxFiling
	err := r.db.WithContext(ctx).
		Model(&filing.TaxFiling{}).
		Where("tenant_id = ? AND filing_number LIKE ?", tenantID, prefix+"%").
		Order("filing_number DESC").
		First(&lastFiling).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastFiling.FilingNumber != "" {
		parts := strings.Split(lastFiling.FilingNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

// saveEvents writes the aggregate's pending events to the outbox and clears them
func (r *GormTaxFilingRepository) saveEvents(ctx context.Context, tx *gorm.DB, root *shared.TenantAggregateRoot) error {
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
func (r *GormTaxFilingRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("filing_number ILIKE ? OR client_name ILIKE ?", search, search)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status", "tax_type", "client_id":
			query = query.Where(key+" = ?", value)
		case "due_before":
			query = query.Where("due_date < ?", value)
		case "due_after":
			query = query.Where("due_date >= ?", value)
		case "period_start":
			query = query.Where("period_start >= ?", value)
		case "period_end":
			query = query.Where("period_end < ?", value)
		}
	}
	return query
}

// applyFilter applies search, filters, sorting and pagination to the query
func (r *GormTaxFilingRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applySearch(query, filter)

	allowedSortFields := map[string]bool{
		"filing_number": true, "client_name": true, "tax_type": true,
		"status": true, "due_date": true, "period_start": true,
		"period_end": true, "total_due": true, "created_at": true,
		"updated_at": true,
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
