package audit

import (
	"context"
	"time"

	"github.com/bettstax/backend/internal/domain/audit"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AuditService handles audit trail reads, explicit appends and retention.
// The trail itself is append-only: entries are never edited, and the only
// destructive operation is the admin-driven retention purge.
type AuditService struct {
	entryRepo audit.EntryRepository
}

// NewAuditService creates a new AuditService
func NewAuditService(entryRepo audit.EntryRepository) *AuditService {
	return &AuditService{entryRepo: entryRepo}
}

// Record appends one explicit audit entry. Handlers use this for actions the
// event bus never sees, such as exports, calculations and login attempts.
func (s *AuditService) Record(ctx context.Context, tenantID uuid.UUID, req RecordEntryRequest) error {
	entry, err := audit.NewEntry(tenantID, req.Action, req.EntityType, req.Summary)
	if err != nil {
		return err
	}
	if req.ActorID != nil {
		entry.WithActor(*req.ActorID, req.ActorName)
	}
	if req.EntityID != nil {
		entry.WithEntity(*req.EntityID)
	}
	if req.Detail != "" {
		entry.WithDetail(req.Detail)
	}
	if req.IPAddress != "" || req.UserAgent != "" {
		entry.WithRequestContext(req.IPAddress, req.UserAgent)
	}
	return s.entryRepo.Append(ctx, entry)
}

// GetEntry retrieves a single audit entry
func (s *AuditService) GetEntry(ctx context.Context, tenantID, id uuid.UUID) (*EntryResponse, error) {
	entry, err := s.entryRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToEntryResponse(entry)
	return &response, nil
}

// Search lists audit entries for a tenant, newest first
func (s *AuditService) Search(ctx context.Context, tenantID uuid.UUID, filter AuditListFilter) ([]EntryResponse, int64, error) {
	query := audit.Query{
		Action:     audit.Action(filter.Action),
		EntityType: filter.EntityType,
		Search:     filter.Search,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}
	if filter.ActorID != "" {
		actorID, err := uuid.Parse(filter.ActorID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_ACTOR", "Invalid actor ID")
		}
		query.ActorID = &actorID
	}
	if filter.EntityID != "" {
		entityID, err := uuid.Parse(filter.EntityID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_ENTITY", "Invalid entity ID")
		}
		query.EntityID = &entityID
	}
	if filter.From != nil {
		query.From = *filter.From
	}
	if filter.To != nil {
		query.To = *filter.To
	}

	entries, total, err := s.entryRepo.Search(ctx, tenantID, query.Normalize())
	if err != nil {
		return nil, 0, err
	}
	return ToEntryResponses(entries), total, nil
}

// EntityHistory lists the audit trail of one aggregate instance, newest first
func (s *AuditService) EntityHistory(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID, limit int) ([]EntryResponse, error) {
	if limit < 1 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}
	entries, err := s.entryRepo.FindByEntity(ctx, tenantID, entityType, entityID, limit)
	if err != nil {
		return nil, err
	}
	return ToEntryResponses(entries), nil
}

// ActivityCount counts entries recorded in the trailing window, e.g. for the
// dashboard "activity last 24h" badge.
func (s *AuditService) ActivityCount(ctx context.Context, tenantID uuid.UUID, window time.Duration) (int64, error) {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return s.entryRepo.CountSince(ctx, tenantID, time.Now().Add(-window))
}

// Purge removes entries older than the retention window across all tenants.
// Restricted to platform admins at the routing layer.
func (s *AuditService) Purge(ctx context.Context, req PurgeRequest) (*PurgeResponse, error) {
	if req.RetentionDays < 30 {
		return nil, shared.NewDomainError("RETENTION_TOO_SHORT", "Audit retention must be at least 30 days")
	}
	before := time.Now().AddDate(0, 0, -req.RetentionDays)
	removed, err := s.entryRepo.PurgeBefore(ctx, before)
	if err != nil {
		return nil, err
	}
	return &PurgeResponse{Removed: removed, Before: before}, nil
}
