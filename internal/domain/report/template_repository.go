package report

import (
	"context"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TemplateRepository defines the interface for report template persistence
type TemplateRepository interface {
	// FindByID finds a template by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ReportTemplate, error)

	// FindByIDForTenant finds a template by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ReportTemplate, error)

	// FindByCode finds a template by its code within a tenant.
	// Returns (nil, nil) when no template carries the code.
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*ReportTemplate, error)

	// FindAllForTenant finds all templates for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ReportTemplate, error)

	// FindByType finds templates producing a given report type
	FindByType(ctx context.Context, tenantID uuid.UUID, reportType ReportType) ([]ReportTemplate, error)

	// FindScheduled finds active templates with the given schedule across all tenants
	FindScheduled(ctx context.Context, schedule Schedule) ([]ReportTemplate, error)

	// Save creates or updates a template
	Save(ctx context.Context, t *ReportTemplate) error

	// SaveWithLock saves a template with optimistic locking (version check)
	SaveWithLock(ctx context.Context, t *ReportTemplate) error

	// Delete removes a user-defined template
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// Count returns the number of templates for a tenant
	Count(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
