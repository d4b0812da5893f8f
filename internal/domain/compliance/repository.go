package compliance

import (
	"context"
	"time"

	"github.com/bettstax/backend/internal/domain/filing"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DeadlineRuleRepository defines the interface for deadline rule persistence
type DeadlineRuleRepository interface {
	// FindByIDForTenant finds a rule by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*DeadlineRule, error)

	// FindByTaxType finds the rule for a tax type within a tenant
	FindByTaxType(ctx context.Context, tenantID uuid.UUID, taxType filing.TaxType) (*DeadlineRule, error)

	// FindAllForTenant finds all rules for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]DeadlineRule, error)

	// Save creates or updates a rule
	Save(ctx context.Context, rule *DeadlineRule) error

	// DeleteForTenant deletes a rule within a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// ExistsByTaxType checks whether a rule exists for a tax type
	ExistsByTaxType(ctx context.Context, tenantID uuid.UUID, taxType filing.TaxType) (bool, error)

	// CountForTenant counts rules for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// PublicHolidayRepository defines the interface for holiday persistence
type PublicHolidayRepository interface {
	// FindByIDForTenant finds a holiday by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PublicHoliday, error)

	// FindAllForTenant finds all holidays for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PublicHoliday, error)

	// FindByYear finds holidays effective in a calendar year, including
	// recurring entries
	FindByYear(ctx context.Context, tenantID uuid.UUID, year int) ([]PublicHoliday, error)

	// FindActive finds all active holidays for a tenant
	FindActive(ctx context.Context, tenantID uuid.UUID) ([]PublicHoliday, error)

	// ExistsOnDate checks whether a holiday entry exists for the date
	ExistsOnDate(ctx context.Context, tenantID uuid.UUID, date time.Time) (bool, error)

	// Save creates or updates a holiday
	Save(ctx context.Context, holiday *PublicHoliday) error

	// DeleteForTenant deletes a holiday within a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts holidays for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
