// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the tax practice backend.
// It tracks filing creation, payment activity, and compliance health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	filingCreatedTotal *Counter
	filingTaxDueTotal  *Counter
	paymentTotal       *Counter

	// Gauge metrics (point-in-time values)
	filingOverdueCount      *Gauge
	webhookPendingDeliveryCount *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data providers for periodic collection
	complianceProvider ComplianceMetricsProvider
}

// ComplianceMetricsProvider provides compliance data for periodic metrics
// collection. The interface lets the telemetry layer query filing and
// webhook state without depending on those domains directly.
type ComplianceMetricsProvider interface {
	// GetOverdueFilingCount returns the number of filings past their due
	// date and not yet closed for a tenant
	GetOverdueFilingCount(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// GetPendingDeliveryCount returns the number of webhook deliveries
	// still waiting to be dispatched for a tenant
	GetPendingDeliveryCount(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter              metric.Meter
	Logger             *zap.Logger
	CollectInterval    time.Duration // Default: 5 minutes
	ComplianceProvider ComplianceMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:              cfg.Meter,
		logger:             logger,
		stopChan:           make(chan struct{}),
		complianceProvider: cfg.ComplianceProvider,
	}

	// Initialize counter metrics
	var err error

	// Filing metrics
	bm.filingCreatedTotal, err = NewCounter(
		cfg.Meter,
		"bettstax_filing_created_total",
		"Total number of tax filings created",
		"{filings}",
	)
	if err != nil {
		return nil, err
	}

	bm.filingTaxDueTotal, err = NewCounter(
		cfg.Meter,
		"bettstax_filing_tax_due_total",
		"Total tax due across filings in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	// Payment metrics
	bm.paymentTotal, err = NewCounter(
		cfg.Meter,
		"bettstax_payment_total",
		"Total number of recorded payments",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	// Compliance gauge metrics
	bm.filingOverdueCount, err = NewGauge(
		cfg.Meter,
		"bettstax_filing_overdue_count",
		"Number of filings past due and not closed",
		"{filings}",
	)
	if err != nil {
		return nil, err
	}

	bm.webhookPendingDeliveryCount, err = NewGauge(
		cfg.Meter,
		"bettstax_webhook_pending_count",
		"Number of webhook deliveries waiting to be dispatched",
		"{deliveries}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Filing Metrics
// =============================================================================

// RecordFilingCreated records a filing creation event.
// This should be called from the application layer when a filing is created.
func (bm *BusinessMetrics) RecordFilingCreated(ctx context.Context, tenantID uuid.UUID, taxType string) {
	bm.filingCreatedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrTaxType.String(taxType),
	)
}

// RecordFilingTaxDue records the tax due on a filing.
// Amount should be in the smallest currency unit (cents).
func (bm *BusinessMetrics) RecordFilingTaxDue(ctx context.Context, tenantID uuid.UUID, taxType string, amountCents int64) {
	bm.filingTaxDueTotal.Add(ctx, amountCents,
		AttrTenantID.String(tenantID.String()),
		AttrTaxType.String(taxType),
	)
}

// RecordFilingWithTaxDue is a convenience method that records both filing count and tax due.
func (bm *BusinessMetrics) RecordFilingWithTaxDue(ctx context.Context, tenantID uuid.UUID, taxType string, taxDue decimal.Decimal) {
	bm.RecordFilingCreated(ctx, tenantID, taxType)

	// Convert to cents (multiply by 100)
	amountCents := taxDue.Mul(decimal.NewFromInt(100)).IntPart()
	bm.RecordFilingTaxDue(ctx, tenantID, taxType, amountCents)
}

// =============================================================================
// Payment Metrics
// =============================================================================

// PaymentOutcome represents the outcome of a payment for metrics labeling.
type PaymentOutcome string

const (
	PaymentOutcomeConfirmed PaymentOutcome = "confirmed"
	PaymentOutcomeFailed    PaymentOutcome = "failed"
	PaymentOutcomeRefunded  PaymentOutcome = "refunded"
)

// RecordPayment records a payment transition.
// This should be called when a payment is confirmed, failed, or refunded.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, tenantID uuid.UUID, paymentMethod string, outcome PaymentOutcome) {
	bm.paymentTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrPaymentMethod.String(paymentMethod),
		AttrPaymentStatus.String(string(outcome)),
	)
}

// =============================================================================
// Compliance Metrics
// =============================================================================

// RecordOverdueFilingCount records the current overdue filing count for a tenant.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOverdueFilingCount(ctx context.Context, tenantID uuid.UUID, count int64) {
	bm.filingOverdueCount.Record(ctx, count,
		AttrTenantID.String(tenantID.String()),
	)
}

// RecordPendingDeliveryCount records the number of queued webhook deliveries.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordPendingDeliveryCount(ctx context.Context, tenantID uuid.UUID, count int64) {
	bm.webhookPendingDeliveryCount.Record(ctx, count,
		AttrTenantID.String(tenantID.String()),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// TenantProvider provides tenant IDs for periodic metrics collection.
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects compliance metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, tenantProvider, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectComplianceMetrics(ctx, tenantProvider)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectComplianceMetrics(ctx, tenantProvider)
		}
	}
}

// collectComplianceMetrics collects compliance gauge metrics for all tenants.
func (bm *BusinessMetrics) collectComplianceMetrics(ctx context.Context, tenantProvider TenantProvider) {
	if bm.complianceProvider == nil {
		bm.logger.Debug("No compliance provider configured, skipping compliance metrics collection")
		return
	}

	tenantIDs, err := tenantProvider.GetActiveTenantIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		bm.collectTenantComplianceMetrics(ctx, tenantID)
	}
}

// collectTenantComplianceMetrics collects compliance metrics for a single tenant.
func (bm *BusinessMetrics) collectTenantComplianceMetrics(ctx context.Context, tenantID uuid.UUID) {
	overdueCount, err := bm.complianceProvider.GetOverdueFilingCount(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to get overdue filing count for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordOverdueFilingCount(ctx, tenantID, overdueCount)
	}

	pendingCount, err := bm.complianceProvider.GetPendingDeliveryCount(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to get pending delivery count for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordPendingDeliveryCount(ctx, tenantID, pendingCount)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
