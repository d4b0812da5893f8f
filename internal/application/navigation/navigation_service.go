package navigation

import (
	"context"
	"fmt"
	"time"

	"github.com/bettstax/backend/internal/domain/client"
	"github.com/bettstax/backend/internal/domain/document"
	"github.com/bettstax/backend/internal/domain/filing"
	"github.com/bettstax/backend/internal/domain/identity"
	"github.com/bettstax/backend/internal/domain/payment"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/domain/webhook"
	"github.com/google/uuid"
)

// FilingCounter is the slice of the filing repository the sidebar needs
type FilingCounter interface {
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status filing.FilingStatus) (int64, error)
	CountOverdue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (int64, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// PaymentCounter is the slice of the payment repository the sidebar needs
type PaymentCounter interface {
	CountByStatusForTenant(ctx context.Context, tenantID uuid.UUID, status payment.PaymentStatus) (int64, error)
	CountByClientAndStatus(ctx context.Context, tenantID, clientID uuid.UUID, status payment.PaymentStatus) (int64, error)
}

// DocumentCounter is the slice of the document repository the sidebar needs
type DocumentCounter interface {
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// ClientCounter is the slice of the client repository the sidebar needs
type ClientCounter interface {
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status client.ClientStatus) (int64, error)
	CountByAssociate(ctx context.Context, tenantID, userID uuid.UUID) (int64, error)
}

// DeliveryCounter is the slice of the webhook delivery repository the sidebar needs
type DeliveryCounter interface {
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status webhook.DeliveryStatus) (int64, error)
}

// CountsCache caches computed badge counts per (tenant, role, user) key.
// Implementations keep serving a stale value when a refresh fails and arm
// a retry window, so sidebar polling never hammers a struggling database.
type CountsCache interface {
	GetOrLoad(ctx context.Context, key string, loader func(context.Context) (CountsResponse, error)) (CountsResponse, error)
}

// NavigationService computes the badge counts for the portal sidebars
type NavigationService struct {
	filings    FilingCounter
	payments   PaymentCounter
	documents  DocumentCounter
	clients    ClientCounter
	deliveries DeliveryCounter
	cache      CountsCache
}

// NewNavigationService creates a new NavigationService. A nil cache
// disables caching and computes counts on every call.
func NewNavigationService(
	filings FilingCounter,
	payments PaymentCounter,
	documents DocumentCounter,
	clients ClientCounter,
	deliveries DeliveryCounter,
	cache CountsCache,
) *NavigationService {
	return &NavigationService{
		filings:    filings,
		payments:   payments,
		documents:  documents,
		clients:    clients,
		deliveries: deliveries,
		cache:      cache,
	}
}

// Counts returns the badge counts for one signed-in user. Client-role users
// see only their own client's numbers; associates additionally see how many
// clients are assigned to them; admins also get the dead-letter count.
func (s *NavigationService) Counts(ctx context.Context, tenantID uuid.UUID, role identity.Role, userID uuid.UUID, clientID *uuid.UUID) (*CountsResponse, error) {
	if role == identity.RoleClient && clientID == nil {
		return nil, shared.NewDomainError("CLIENT_SCOPE_REQUIRED", "Client users must be linked to a client")
	}

	loader := func(ctx context.Context) (CountsResponse, error) {
		return s.compute(ctx, tenantID, role, userID, clientID)
	}

	if s.cache == nil {
		counts, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return &counts, nil
	}

	counts, err := s.cache.GetOrLoad(ctx, cacheKey(tenantID, role, userID), loader)
	if err != nil {
		return nil, err
	}
	return &counts, nil
}

func (s *NavigationService) compute(ctx context.Context, tenantID uuid.UUID, role identity.Role, userID uuid.UUID, clientID *uuid.UUID) (CountsResponse, error) {
	if role == identity.RoleClient {
		return s.computeForClient(ctx, tenantID, *clientID)
	}
	return s.computeForStaff(ctx, tenantID, role, userID)
}

// computeForClient scopes every count to the user's linked client.
func (s *NavigationService) computeForClient(ctx context.Context, tenantID, clientID uuid.UUID) (CountsResponse, error) {
	counts := CountsResponse{GeneratedAt: time.Now()}

	pending := int64(0)
	for _, status := range []filing.FilingStatus{filing.FilingStatusSubmitted, filing.FilingStatusUnderReview} {
		n, err := s.filings.CountForTenant(ctx, tenantID, clientStatusFilter(clientID, string(status)))
		if err != nil {
			return CountsResponse{}, fmt.Errorf("failed to count %s filings: %w", status, err)
		}
		pending += n
	}
	counts.PendingFilings = pending

	overdue, err := s.filings.CountForTenant(ctx, tenantID, clientStatusFilter(clientID, string(filing.FilingStatusOverdue)))
	if err != nil {
		return CountsResponse{}, fmt.Errorf("failed to count overdue filings: %w", err)
	}
	counts.OverdueFilings = overdue

	unconfirmed, err := s.payments.CountByClientAndStatus(ctx, tenantID, clientID, payment.PaymentStatusPending)
	if err != nil {
		return CountsResponse{}, fmt.Errorf("failed to count pending payments: %w", err)
	}
	counts.UnconfirmedPayments = unconfirmed

	pendingDocs, err := s.documents.CountForTenant(ctx, tenantID, clientStatusFilter(clientID, string(document.DocumentStatusPendingUpload)))
	if err != nil {
		return CountsResponse{}, fmt.Errorf("failed to count pending documents: %w", err)
	}
	counts.PendingDocuments = pendingDocs

	return counts, nil
}

// computeForStaff returns tenant-wide counts for associates and admins.
func (s *NavigationService) computeForStaff(ctx context.Context, tenantID uuid.UUID, role identity.Role, userID uuid.UUID) (CountsResponse, error) {
	counts := CountsResponse{GeneratedAt: time.Now()}

	pending := int64(0)
	for _, status := range []filing.FilingStatus{filing.FilingStatusSubmitted, filing.FilingStatusUnderReview} {
		n, err := s.filings.CountByStatus(ctx, tenantID, status)
		if err != nil {
			return CountsResponse{}, fmt.Errorf("failed to count %s filings: %w", status, err)
		}
		pending += n
	}
	counts.PendingFilings = pending

	// Live number: filings past due regardless of whether the overdue
	// sweep has stamped them yet.
	overdue, err := s.filings.CountOverdue(ctx, tenantID, time.Now())
	if err != nil {
		return CountsResponse{}, fmt.Errorf("failed to count overdue filings: %w", err)
	}
	counts.OverdueFilings = overdue

	unconfirmed, err := s.payments.CountByStatusForTenant(ctx, tenantID, payment.PaymentStatusPending)
	if err != nil {
		return CountsResponse{}, fmt.Errorf("failed to count pending payments: %w", err)
	}
	counts.UnconfirmedPayments = unconfirmed

	pendingDocs, err := s.documents.CountForTenant(ctx, tenantID, statusFilter(string(document.DocumentStatusPendingUpload)))
	if err != nil {
		return CountsResponse{}, fmt.Errorf("failed to count pending documents: %w", err)
	}
	counts.PendingDocuments = pendingDocs

	active, err := s.clients.CountByStatus(ctx, tenantID, client.ClientStatusActive)
	if err != nil {
		return CountsResponse{}, fmt.Errorf("failed to count active clients: %w", err)
	}
	counts.ActiveClients = &active

	assigned, err := s.clients.CountByAssociate(ctx, tenantID, userID)
	if err != nil {
		return CountsResponse{}, fmt.Errorf("failed to count assigned clients: %w", err)
	}
	counts.AssignedClients = &assigned

	if role == identity.RoleAdmin {
		dead, err := s.deliveries.CountByStatus(ctx, tenantID, webhook.DeliveryStatusDead)
		if err != nil {
			return CountsResponse{}, fmt.Errorf("failed to count dead deliveries: %w", err)
		}
		counts.DeadDeliveries = &dead
	}

	return counts, nil
}

// cacheKey identifies one user's badge set. Role is part of the key so a
// role change never serves counts computed for the old role.
func cacheKey(tenantID uuid.UUID, role identity.Role, userID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", tenantID, role, userID)
}

func statusFilter(status string) shared.Filter {
	return shared.Filter{Filters: map[string]any{"status": status}}
}

func clientStatusFilter(clientID uuid.UUID, status string) shared.Filter {
	return shared.Filter{Filters: map[string]any{"client_id": clientID, "status": status}}
}
