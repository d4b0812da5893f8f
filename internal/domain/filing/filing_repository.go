package filing

import (
	"context"
	"time"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxFilingRepository defines the interface for filing persistence
type TaxFilingRepository interface {
	// FindByID finds a filing by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*TaxFiling, error)

	// FindByIDForTenant finds a filing by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*TaxFiling, error)

	// FindByNumber finds a filing by its filing number within a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, filingNumber string) (*TaxFiling, error)

	// FindAllForTenant finds all filings for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]TaxFiling, error)

	// FindByClient finds filings for a client
	FindByClient(ctx context.Context, tenantID, clientID uuid.UUID, filter shared.Filter) ([]TaxFiling, error)

	// FindByStatus finds filings by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status FilingStatus, filter shared.Filter) ([]TaxFiling, error)

	// FindByTaxType finds filings by tax type for a tenant
	FindByTaxType(ctx context.Context, tenantID uuid.UUID, taxType TaxType, filter shared.Filter) ([]TaxFiling, error)

	// FindDueBetween finds non-terminal filings whose due date falls in the window
	FindDueBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time, filter shared.Filter) ([]TaxFiling, error)

	// FindOverdueCandidates finds filings past their due date that are still
	// in a state that can be marked overdue (draft or submitted). A zero
	// tenantID scans every tenant; the scheduler uses that form.
	FindOverdueCandidates(ctx context.Context, tenantID uuid.UUID, asOf time.Time, limit int) ([]TaxFiling, error)

	// FindActivePeriodFiling finds a non-cancelled filing for the same
	// client, tax type and period start, used to enforce one filing per period
	FindActivePeriodFiling(ctx context.Context, tenantID, clientID uuid.UUID, taxType TaxType, periodStart time.Time) (*TaxFiling, error)

	// Save creates or updates a filing
	Save(ctx context.Context, f *TaxFiling) error

	// SaveWithLock saves a filing with optimistic locking (version check)
	SaveWithLock(ctx context.Context, f *TaxFiling) error

	// DeleteForTenant deletes a filing within a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts filings for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByStatus counts filings by status for a tenant
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status FilingStatus) (int64, error)

	// CountByClient counts filings for a client
	CountByClient(ctx context.Context, tenantID, clientID uuid.UUID) (int64, error)

	// CountOverdue counts filings past due and not closed for a tenant
	CountOverdue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (int64, error)

	// SumTaxDueByType sums total due grouped by tax type for filings in a period
	SumTaxDueByType(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (map[TaxType]TaxTypeTotal, error)

	// GenerateFilingNumber produces the next sequential filing number for the year
	GenerateFilingNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// TaxTypeTotal aggregates filing amounts for one tax type
type TaxTypeTotal struct {
	Count    int64
	TaxDue   decimal.Decimal
	TotalDue decimal.Decimal
}
