package client

import (
	"context"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	// FindByID finds a client by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// FindByIDForTenant finds a client by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Client, error)

	// FindByCode finds a client by its code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Client, error)

	// FindByTIN finds a client by tax identification number within a tenant
	FindByTIN(ctx context.Context, tenantID uuid.UUID, tin string) (*Client, error)

	// FindByPortalUser finds the client linked to a portal user account
	FindByPortalUser(ctx context.Context, tenantID, userID uuid.UUID) (*Client, error)

	// FindAllForTenant finds all clients for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Client, error)

	// FindByType finds clients by taxpayer type
	FindByType(ctx context.Context, tenantID uuid.UUID, clientType ClientType, filter shared.Filter) ([]Client, error)

	// FindByStatus finds clients by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status ClientStatus, filter shared.Filter) ([]Client, error)

	// FindByAssociate finds clients assigned to an associate
	FindByAssociate(ctx context.Context, tenantID, userID uuid.UUID, filter shared.Filter) ([]Client, error)

	// FindGSTRegistered finds GST-registered clients for a tenant
	FindGSTRegistered(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Client, error)

	// FindByIDs finds multiple clients by their IDs
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Client, error)

	// Save creates or updates a client
	Save(ctx context.Context, c *Client) error

	// SaveWithLock saves a client with optimistic locking (version check)
	SaveWithLock(ctx context.Context, c *Client) error

	// DeleteForTenant deletes a client within a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts clients for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByStatus counts clients by status for a tenant
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status ClientStatus) (int64, error)

	// CountByAssociate counts clients assigned to an associate
	CountByAssociate(ctx context.Context, tenantID, userID uuid.UUID) (int64, error)

	// ExistsByCode checks if a client with the given code exists in the tenant
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)

	// ExistsByTIN checks if a client with the given TIN exists in the tenant
	ExistsByTIN(ctx context.Context, tenantID uuid.UUID, tin string) (bool, error)
}
