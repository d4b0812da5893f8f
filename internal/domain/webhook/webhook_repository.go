package webhook

import (
	"context"
	"time"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RegistrationRepository defines the interface for webhook registration persistence
type RegistrationRepository interface {
	// FindByID finds a registration by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Registration, error)

	// FindByIDForTenant finds a registration by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Registration, error)

	// FindAllForTenant finds all registrations for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Registration, error)

	// FindActiveByEventType finds active registrations subscribed to an event
	// type, including wildcard subscribers
	FindActiveByEventType(ctx context.Context, tenantID uuid.UUID, eventType string) ([]Registration, error)

	// Save creates or updates a registration
	Save(ctx context.Context, r *Registration) error

	// SaveWithLock saves a registration with optimistic locking (version check)
	SaveWithLock(ctx context.Context, r *Registration) error

	// Delete removes a registration and its queued deliveries
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// Count returns the number of registrations for a tenant
	Count(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// DeliveryRepository defines the interface for the webhook delivery queue
type DeliveryRepository interface {
	// Save persists one or more deliveries
	Save(ctx context.Context, deliveries ...*Delivery) error

	// Update persists the state of an attempted delivery
	Update(ctx context.Context, d *Delivery) error

	// FindByIDForTenant finds a delivery by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Delivery, error)

	// FindDue retrieves pending and retry-due deliveries across all tenants,
	// oldest first, up to the specified limit
	FindDue(ctx context.Context, before time.Time, limit int) ([]*Delivery, error)

	// FindByRegistration lists deliveries for one registration, newest first
	FindByRegistration(ctx context.Context, tenantID, registrationID uuid.UUID, filter shared.Filter) ([]Delivery, error)

	// FindByStatus lists deliveries in a given status for a tenant, newest first
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status DeliveryStatus, filter shared.Filter) ([]Delivery, error)

	// CountByRegistration counts deliveries for one registration
	CountByRegistration(ctx context.Context, tenantID, registrationID uuid.UUID) (int64, error)

	// CountByStatus counts a tenant's deliveries in a given status
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status DeliveryStatus) (int64, error)

	// StatsByRegistration aggregates delivery counts per status for one registration
	StatsByRegistration(ctx context.Context, tenantID, registrationID uuid.UUID) (DeliveryStats, error)

	// ResetStuckProcessing returns deliveries stuck in PROCESSING longer than
	// the threshold back to PENDING, e.g. after a dispatcher crash
	ResetStuckProcessing(ctx context.Context, olderThan time.Time) (int64, error)

	// DeleteSentBefore purges successfully delivered entries older than the given time
	DeleteSentBefore(ctx context.Context, before time.Time) (int64, error)
}
