package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bettstax/backend/internal/domain/payment"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormPaymentRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID retrieves a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByIDForTenant retrieves a payment scoped to a tenant
func (r *GormPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByNumberForTenant retrieves a payment by its payment number
func (r *GormPaymentRepository) FindByNumberForTenant(ctx context.Context, tenantID uuid.UUID, paymentNumber string) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND payment_number = ?", tenantID, strings.ToUpper(paymentNumber)).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindAllForTenant retrieves payments for a tenant with pagination
func (r *GormPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	query := r.applyFilter(r.db.WithContext(ctx).Model(&payment.Payment{}).Scopes(tenant.TenantScope(tenantID)), filter)
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindByFilingForTenant retrieves all payments against one filing
func (r *GormPaymentRepository) FindByFilingForTenant(ctx context.Context, tenantID, filingID uuid.UUID) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND filing_id = ?", tenantID, filingID).
		Order("paid_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindByClientForTenant retrieves payments for one client
func (r *GormPaymentRepository) FindByClientForTenant(ctx context.Context, tenantID, clientID uuid.UUID, filter shared.Filter) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&payment.Payment{}).
			Where("tenant_id = ? AND client_id = ?", tenantID, clientID),
		filter,
	)
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindByStatusForTenant retrieves payments in a given status
func (r *GormPaymentRepository) FindByStatusForTenant(ctx context.Context, tenantID uuid.UUID, status payment.PaymentStatus, filter shared.Filter) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&payment.Payment{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindPaidBetweenForTenant retrieves payments with PaidAt inside [from, to)
func (r *GormPaymentRepository) FindPaidBetweenForTenant(ctx context.Context, tenantID uuid.UUID, from, to time.Time, filter shared.Filter) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&payment.Payment{}).
			Where("tenant_id = ? AND paid_at >= ? AND paid_at < ?", tenantID, from, to),
		filter,
	)
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Save persists a payment (create or update) together with its pending events
func (r *GormPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		return r.saveEvents(ctx, tx, &p.TenantAggregateRoot)
	})
}

// SaveWithLock persists a payment with optimistic locking
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, p *payment.Payment, expectedVersion int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p.Version = expectedVersion + 1
		p.UpdatedAt = time.Now()

		result := tx.Model(&payment.Payment{}).
			Where("id = ? AND tenant_id = ? AND version = ?", p.ID, p.TenantID, expectedVersion).
			Select("*").
			Updates(p)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.saveEvents(ctx, tx, &p.TenantAggregateRoot)
	})
}

// DeleteForTenant removes a payment scoped to a tenant
func (r *GormPaymentRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&payment.Payment{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForTenant returns the number of payments for a tenant
func (r *GormPaymentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&payment.Payment{}).
		Scopes(tenant.TenantScope(tenantID)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatusForTenant returns the number of payments in a status
func (r *GormPaymentRepository) CountByStatusForTenant(ctx context.Context, tenantID uuid.UUID, status payment.PaymentStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&payment.Payment{}).
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByClientAndStatus returns the number of one client's payments in a status
func (r *GormPaymentRepository) CountByClientAndStatus(ctx context.Context, tenantID, clientID uuid.UUID, status payment.PaymentStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&payment.Payment{}).
		Where("tenant_id = ? AND client_id = ? AND status = ?", tenantID, clientID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumConfirmedByFiling returns the confirmed total paid against a filing
func (r *GormPaymentRepository) SumConfirmedByFiling(ctx context.Context, tenantID, filingID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := r.db.WithContext(ctx).
		Model(&payment.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("tenant_id = ? AND filing_id = ? AND status = ?", tenantID, filingID, payment.PaymentStatusConfirmed).
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// SumConfirmedByMethod aggregates confirmed payments per method for payments
// with PaidAt inside [from, to)
func (r *GormPaymentRepository) SumConfirmedByMethod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]payment.MethodTotal, error) {
	type row struct {
		Method payment.PaymentMethod
		Count  int64
		Amount decimal.Decimal
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&payment.Payment{}).
		Select("method, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Where("tenant_id = ? AND status = ? AND paid_at >= ? AND paid_at < ?", tenantID, payment.PaymentStatusConfirmed, from, to).
		Group("method").
		Order("method ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := make([]payment.MethodTotal, len(rows))
	for i, row := range rows {
		totals[i] = payment.MethodTotal{
			Method: row.Method,
			Count:  row.Count,
			Amount: row.Amount,
		}
	}
	return totals, nil
}

// GeneratePaymentNumber generates a unique payment number for a tenant.
// Format: PAY-YYYY-NNNNN (e.g., PAY-2026-00001)
func (r *GormPaymentRepository) GeneratePaymentNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("PAY-%d-", year)

	var lastPayment payment.Payment
	err := r.db.WithContext(ctx).
		Model(&payment.Payment{}).
		Where("tenant_id = ? AND payment_number LIKE ?", tenantID, prefix+"%").
		Order("payment_number DESC").
		First(&lastPayment).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastPayment.PaymentNumber != "" {
		parts := strings.Split(lastPayment.PaymentNumber, "-")
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
func (r *GormPaymentRepository) saveEvents(ctx context.Context, tx *gorm.DB, root *shared.TenantAggregateRoot) error {
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

// applyFilter applies search, filters, sorting and pagination to the query
func (r *GormPaymentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("payment_number ILIKE ? OR reference ILIKE ?", search, search)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status", "method", "client_id", "filing_id":
			query = query.Where(key+" = ?", value)
		case "paid_after":
			query = query.Where("paid_at >= ?", value)
		case "paid_before":
			query = query.Where("paid_at < ?", value)
		}
	}

	allowedSortFields := map[string]bool{
		"payment_number": true, "amount": true, "method": true,
		"status": true, "paid_at": true, "created_at": true,
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
