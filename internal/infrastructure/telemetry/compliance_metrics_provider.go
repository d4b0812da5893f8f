// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormComplianceMetricsProvider implements ComplianceMetricsProvider using GORM.
// It queries the tax_filings and webhook_deliveries tables directly for
// aggregated metrics.
type GormComplianceMetricsProvider struct {
	db *gorm.DB
}

// NewGormComplianceMetricsProvider creates a new GormComplianceMetricsProvider.
func NewGormComplianceMetricsProvider(db *gorm.DB) *GormComplianceMetricsProvider {
	return &GormComplianceMetricsProvider{db: db}
}

// GetOverdueFilingCount returns the number of filings past due and not closed
// for a tenant.
func (p *GormComplianceMetricsProvider) GetOverdueFilingCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("tax_filings").
		Where("tenant_id = ?", tenantID).
		Where("due_date < NOW()").
		Where("status NOT IN ?", []string{"filed", "cancelled", "rejected"}).
		Count(&count).Error

	return count, err
}

// GetPendingDeliveryCount returns the number of webhook deliveries still
// waiting to be dispatched for a tenant.
func (p *GormComplianceMetricsProvider) GetPendingDeliveryCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("webhook_deliveries").
		Where("tenant_id = ?", tenantID).
		Where("status IN ?", []string{"PENDING", "PROCESSING"}).
		Count(&count).Error

	return count, err
}

// GormTenantProvider implements TenantProvider using GORM.
type GormTenantProvider struct {
	db *gorm.DB
}

// NewGormTenantProvider creates a new GormTenantProvider.
func NewGormTenantProvider(db *gorm.DB) *GormTenantProvider {
	return &GormTenantProvider{db: db}
}

// GetActiveTenantIDs returns all active tenant IDs.
func (p *GormTenantProvider) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("tenants").
		Select("id").
		Where("status = ?", "active").
		Find(&ids).Error

	return ids, err
}
