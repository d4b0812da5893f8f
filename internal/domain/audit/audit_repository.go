package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Query filters the audit trail. Zero values mean "no restriction".
type Query struct {
	ActorID    *uuid.UUID
	Action     Action
	EntityType string
	EntityID   *uuid.UUID
	From       time.Time
	To         time.Time
	Search     string // Substring match on the summary
	Page       int
	PageSize   int
}

// Normalize applies pagination defaults in place and returns the query.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 50
	}
	if q.PageSize > 500 {
		q.PageSize = 500
	}
	return q
}

// Offset returns the row offset for the normalized page.
func (q Query) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// EntryRepository defines the append-only audit trail persistence.
// Entries are never updated; retention is enforced via PurgeBefore.
type EntryRepository interface {
	// Append persists one or more entries
	Append(ctx context.Context, entries ...*Entry) error

	// FindByIDForTenant finds an entry by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Entry, error)

	// Search lists entries for a tenant, newest first, with the total count
	Search(ctx context.Context, tenantID uuid.UUID, q Query) ([]Entry, int64, error)

	// FindByEntity lists entries for one aggregate instance, newest first
	FindByEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID, limit int) ([]Entry, error)

	// CountSince counts entries recorded since the given time
	CountSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (int64, error)

	// PurgeBefore removes entries older than the given time across all tenants
	PurgeBefore(ctx context.Context, before time.Time) (int64, error)
}
