package workflow

import (
	"context"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TriggerRepository defines the interface for advanced trigger persistence
type TriggerRepository interface {
	// FindByID finds a trigger by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*AdvancedTrigger, error)

	// FindByIDForTenant finds a trigger by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*AdvancedTrigger, error)

	// FindAllForTenant finds all triggers for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]AdvancedTrigger, error)

	// FindActiveByEventType finds active triggers for an event type,
	// ordered by priority ascending
	FindActiveByEventType(ctx context.Context, tenantID uuid.UUID, eventType string) ([]AdvancedTrigger, error)

	// Save creates or updates a trigger
	Save(ctx context.Context, t *AdvancedTrigger) error

	// SaveWithLock saves a trigger with optimistic locking (version check)
	SaveWithLock(ctx context.Context, t *AdvancedTrigger) error

	// Delete removes a trigger
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// Count returns the number of triggers for a tenant
	Count(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
