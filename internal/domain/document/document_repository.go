package document

import (
	"context"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StorageUsage summarizes object storage consumption for a tenant
type StorageUsage struct {
	DocumentCount int64
	TotalBytes    int64
}

// DocumentRepository defines the interface for document metadata persistence
type DocumentRepository interface {
	// FindByID retrieves a document by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Document, error)

	// FindByIDForTenant retrieves a document scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Document, error)

	// FindByStorageKey retrieves a document by its storage key
	FindByStorageKey(ctx context.Context, storageKey string) (*Document, error)

	// FindAllForTenant retrieves documents for a tenant with pagination,
	// excluding soft-deleted ones.
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Document, error)

	// FindByClientForTenant retrieves documents for one client
	FindByClientForTenant(ctx context.Context, tenantID, clientID uuid.UUID, filter shared.Filter) ([]*Document, error)

	// FindByFilingForTenant retrieves documents attached to one filing
	FindByFilingForTenant(ctx context.Context, tenantID, filingID uuid.UUID) ([]*Document, error)

	// FindByCategoryForTenant retrieves documents in one category
	FindByCategoryForTenant(ctx context.Context, tenantID uuid.UUID, category DocumentCategory, filter shared.Filter) ([]*Document, error)

	// FindStalePending retrieves pending_upload documents created before
	// the cutoff, across all tenants. Used by the cleanup job.
	FindStalePending(ctx context.Context, cutoffHours int, limit int) ([]*Document, error)

	// Save persists a document (create or update)
	Save(ctx context.Context, document *Document) error

	// SaveWithLock persists a document with optimistic locking
	SaveWithLock(ctx context.Context, document *Document, expectedVersion int) error

	// DeleteForTenant hard-removes a document row scoped to a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant returns the number of documents matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// UsageForTenant sums storage consumption over non-deleted documents
	UsageForTenant(ctx context.Context, tenantID uuid.UUID) (*StorageUsage, error)
}
