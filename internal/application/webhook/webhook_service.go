package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/domain/webhook"
	"github.com/google/uuid"
)

// DeliverySender performs one synchronous HTTP delivery attempt. It returns
// the response status (0 when the request never completed) and an error for
// transport failures or non-2xx responses. The dispatcher's HTTP sender in
// the infrastructure layer implements it.
type DeliverySender interface {
	Send(ctx context.Context, reg *webhook.Registration, delivery *webhook.Delivery) (int, error)
}

// exportPageSize bounds how many registrations an export or import dedup
// scan reads. Tenants register endpoints by hand, so the bound is generous.
const exportPageSize = 500

// WebhookService handles webhook registration management, the delivery log
// and synchronous test pings. Asynchronous delivery is owned by the
// dispatcher; enqueueing is owned by the event fan-out subscriber.
type WebhookService struct {
	registrationRepo webhook.RegistrationRepository
	deliveryRepo     webhook.DeliveryRepository
	sender           DeliverySender
}

// NewWebhookService creates a new WebhookService. The sender may be nil when
// outbound HTTP is not configured; test pings then fail with a domain error.
func NewWebhookService(registrationRepo webhook.RegistrationRepository, deliveryRepo webhook.DeliveryRepository, sender DeliverySender) *WebhookService {
	return &WebhookService{
		registrationRepo: registrationRepo,
		deliveryRepo:     deliveryRepo,
		sender:           sender,
	}
}

// Register creates a webhook registration. The response carries the signing
// secret; it is shown once and never returned by reads.
func (s *WebhookService) Register(ctx context.Context, tenantID uuid.UUID, req CreateWebhookRequest) (*WebhookResponse, error) {
	reg, err := webhook.NewRegistration(tenantID, req.Name, req.TargetURL, req.EventTypes)
	if err != nil {
		return nil, err
	}
	reg.Description = req.Description
	if req.MaxRetries > 0 {
		if err := reg.SetMaxRetries(req.MaxRetries); err != nil {
			return nil, err
		}
	}
	if req.Headers != "" {
		if err := reg.SetHeaders(req.Headers); err != nil {
			return nil, err
		}
	}

	if err := s.registrationRepo.Save(ctx, reg); err != nil {
		return nil, err
	}

	response := ToWebhookResponse(reg)
	response.Secret = reg.Secret
	return &response, nil
}

// Get retrieves a registration by ID
func (s *WebhookService) Get(ctx context.Context, tenantID, id uuid.UUID) (*WebhookResponse, error) {
	reg, err := s.registrationRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToWebhookResponse(reg)
	return &response, nil
}

// List retrieves registrations with filtering
func (s *WebhookService) List(ctx context.Context, tenantID uuid.UUID, filter WebhookListFilter) ([]WebhookResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	regs, err := s.registrationRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.registrationRepo.Count(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}

	return ToWebhookResponses(regs), count, nil
}

// Update changes a registration's endpoint, subscriptions or retry policy
func (s *WebhookService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateWebhookRequest) (*WebhookResponse, error) {
	reg, err := s.registrationRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	name := reg.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := reg.Description
	if req.Description != nil {
		description = *req.Description
	}
	targetURL := reg.TargetURL
	if req.TargetURL != nil {
		targetURL = *req.TargetURL
	}
	eventTypes := reg.EventTypes
	if req.EventTypes != nil {
		eventTypes = req.EventTypes
	}

	if err := reg.Update(name, description, targetURL, eventTypes); err != nil {
		return nil, err
	}
	if req.MaxRetries != nil {
		if err := reg.SetMaxRetries(*req.MaxRetries); err != nil {
			return nil, err
		}
	}
	if req.Headers != nil {
		if err := reg.SetHeaders(*req.Headers); err != nil {
			return nil, err
		}
	}

	if err := s.registrationRepo.SaveWithLock(ctx, reg); err != nil {
		return nil, err
	}

	response := ToWebhookResponse(reg)
	return &response, nil
}

// RotateSecret replaces the signing secret and returns the new value once
func (s *WebhookService) RotateSecret(ctx context.Context, tenantID, id uuid.UUID) (*SecretResponse, error) {
	reg, err := s.registrationRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	secret, err := reg.RotateSecret()
	if err != nil {
		return nil, err
	}

	if err := s.registrationRepo.SaveWithLock(ctx, reg); err != nil {
		return nil, err
	}

	return &SecretResponse{Secret: secret}, nil
}

// Activate enables deliveries for a registration
func (s *WebhookService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*WebhookResponse, error) {
	return s.setActive(ctx, tenantID, id, true)
}

// Deactivate stops deliveries for a registration
func (s *WebhookService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) (*WebhookResponse, error) {
	return s.setActive(ctx, tenantID, id, false)
}

func (s *WebhookService) setActive(ctx context.Context, tenantID, id uuid.UUID, active bool) (*WebhookResponse, error) {
	reg, err := s.registrationRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if active {
		reg.Activate()
	} else {
		reg.Deactivate()
	}

	if err := s.registrationRepo.Save(ctx, reg); err != nil {
		return nil, err
	}

	response := ToWebhookResponse(reg)
	return &response, nil
}

// Delete removes a registration together with its queued deliveries
func (s *WebhookService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.registrationRepo.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	return s.registrationRepo.Delete(ctx, tenantID, id)
}

// TestEndpoint posts a synthetic webhook.test event to the target right now,
// bypassing the queue, and records the attempt in the delivery log. Test
// deliveries get a single attempt and are never retried.
func (s *WebhookService) TestEndpoint(ctx context.Context, tenantID, id uuid.UUID) (*TestResponse, error) {
	reg, err := s.registrationRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if s.sender == nil {
		return nil, shared.NewDomainError("DELIVERY_UNAVAILABLE", "Outbound webhook delivery is not configured")
	}

	payload, err := testPayload(reg)
	if err != nil {
		return nil, err
	}

	delivery := webhook.NewDelivery(reg, uuid.New(), webhook.EventTypeTest, payload)
	delivery.MaxRetries = 1
	if err := delivery.MarkProcessing(); err != nil {
		return nil, err
	}

	status, sendErr := s.sender.Send(ctx, reg, delivery)
	if sendErr != nil {
		delivery.MarkFailed(status, sendErr.Error())
	} else {
		delivery.MarkSent(status)
	}

	if err := s.deliveryRepo.Save(ctx, delivery); err != nil {
		return nil, err
	}

	reg.RecordDelivery(time.Now(), status)
	if err := s.registrationRepo.Save(ctx, reg); err != nil {
		slog.WarnContext(ctx, "failed to record test delivery on registration",
			"registration_id", reg.ID,
			"error", err)
	}

	response := &TestResponse{
		Success:        sendErr == nil,
		ResponseStatus: status,
		DeliveryID:     delivery.ID,
	}
	if sendErr != nil {
		response.Error = sendErr.Error()
	}
	return response, nil
}

// EnqueueForRegistration queues a delivery of the event to one specific
// registration regardless of its subscriptions. Workflow triggers use this
// for their notify_webhook action.
func (s *WebhookService) EnqueueForRegistration(ctx context.Context, tenantID, registrationID uuid.UUID, event shared.DomainEvent) error {
	reg, err := s.registrationRepo.FindByIDForTenant(ctx, tenantID, registrationID)
	if err != nil {
		return err
	}
	if !reg.IsDeliverable() {
		return shared.NewDomainError("WEBHOOK_INACTIVE", "Webhook registration is not active")
	}

	payload, err := json.Marshal(eventEnvelope{
		ID:         event.EventID(),
		Event:      event.EventType(),
		OccurredAt: event.OccurredAt(),
		Data:       event,
	})
	if err != nil {
		return err
	}

	return s.deliveryRepo.Save(ctx, webhook.NewDelivery(reg, event.EventID(), event.EventType(), payload))
}

// Export returns every registration in a portable form, without secrets
func (s *WebhookService) Export(ctx context.Context, tenantID uuid.UUID) (*ExportResponse, error) {
	regs, err := s.registrationRepo.FindAllForTenant(ctx, tenantID, exportFilter())
	if err != nil {
		return nil, err
	}

	exported := make([]ExportedWebhook, len(regs))
	for i := range regs {
		exported[i] = ToExportedWebhook(&regs[i])
	}

	return &ExportResponse{ExportedAt: time.Now(), Webhooks: exported}, nil
}

// Import registers the given endpoints, skipping any whose target URL is
// already registered. Imported registrations get freshly generated secrets.
func (s *WebhookService) Import(ctx context.Context, tenantID uuid.UUID, req ImportWebhooksRequest) (*ImportResultResponse, error) {
	existing, err := s.registrationRepo.FindAllForTenant(ctx, tenantID, exportFilter())
	if err != nil {
		return nil, err
	}
	registered := make(map[string]struct{}, len(existing))
	for i := range existing {
		registered[existing[i].TargetURL] = struct{}{}
	}

	result := &ImportResultResponse{}
	for _, item := range req.Webhooks {
		if _, ok := registered[item.TargetURL]; ok {
			result.Skipped++
			continue
		}

		reg, err := webhook.NewRegistration(tenantID, item.Name, item.TargetURL, item.EventTypes)
		if err != nil {
			result.Errors = append(result.Errors, item.Name+": "+err.Error())
			continue
		}
		reg.Description = item.Description
		if item.MaxRetries > 0 {
			if err := reg.SetMaxRetries(item.MaxRetries); err != nil {
				result.Errors = append(result.Errors, item.Name+": "+err.Error())
				continue
			}
		}
		if item.Headers != "" {
			if err := reg.SetHeaders(item.Headers); err != nil {
				result.Errors = append(result.Errors, item.Name+": "+err.Error())
				continue
			}
		}
		if !item.Active {
			reg.Deactivate()
		}

		if err := s.registrationRepo.Save(ctx, reg); err != nil {
			result.Errors = append(result.Errors, item.Name+": "+err.Error())
			continue
		}

		registered[item.TargetURL] = struct{}{}
		result.Imported++
	}

	return result, nil
}

// Stats aggregates delivery outcomes for one registration
func (s *WebhookService) Stats(ctx context.Context, tenantID, id uuid.UUID) (*DeliveryStatsResponse, error) {
	reg, err := s.registrationRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.deliveryRepo.StatsByRegistration(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	response := &DeliveryStatsResponse{
		Pending:        stats.Pending,
		Processing:     stats.Processing,
		Sent:           stats.Sent,
		Failed:         stats.Failed,
		Dead:           stats.Dead,
		Total:          stats.Total(),
		LastDeliveryAt: reg.LastDeliveryAt,
		LastStatus:     reg.LastStatus,
	}
	if completed := stats.Sent + stats.Failed + stats.Dead; completed > 0 {
		response.SuccessRate = float64(stats.Sent) / float64(completed)
	}
	return response, nil
}

// ListDeliveries lists the delivery log for one registration, newest first.
// The total reflects all deliveries for the registration regardless of the
// status filter.
func (s *WebhookService) ListDeliveries(ctx context.Context, tenantID, registrationID uuid.UUID, filter DeliveryListFilter) ([]DeliveryResponse, int64, error) {
	if _, err := s.registrationRepo.FindByIDForTenant(ctx, tenantID, registrationID); err != nil {
		return nil, 0, err
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Filters:  make(map[string]interface{}),
	}
	if domainFilter.Page <= 0 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize <= 0 {
		domainFilter.PageSize = 20
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = string(deliveryStatus(filter.Status))
	}

	deliveries, err := s.deliveryRepo.FindByRegistration(ctx, tenantID, registrationID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.deliveryRepo.CountByRegistration(ctx, tenantID, registrationID)
	if err != nil {
		return nil, 0, err
	}

	return ToDeliveryResponses(deliveries), count, nil
}

// ListDeadLetters lists deliveries that exhausted their retries, newest first
func (s *WebhookService) ListDeadLetters(ctx context.Context, tenantID uuid.UUID, filter DeliveryListFilter) ([]DeliveryResponse, error) {
	domainFilter := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}
	if domainFilter.Page <= 0 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize <= 0 {
		domainFilter.PageSize = 20
	}

	deliveries, err := s.deliveryRepo.FindByStatus(ctx, tenantID, webhook.DeliveryStatusDead, domainFilter)
	if err != nil {
		return nil, err
	}
	return ToDeliveryResponses(deliveries), nil
}

// Redeliver requeues a failed or dead delivery with a fresh attempt budget
func (s *WebhookService) Redeliver(ctx context.Context, tenantID, deliveryID uuid.UUID) (*DeliveryResponse, error) {
	delivery, err := s.deliveryRepo.FindByIDForTenant(ctx, tenantID, deliveryID)
	if err != nil {
		return nil, err
	}

	if err := delivery.Redeliver(); err != nil {
		return nil, shared.NewDomainError("CANNOT_REDELIVER", err.Error())
	}

	if err := s.deliveryRepo.Update(ctx, delivery); err != nil {
		return nil, err
	}

	response := ToDeliveryResponse(delivery)
	return &response, nil
}

// testPayload builds the synthetic webhook.test event body
func testPayload(reg *webhook.Registration) ([]byte, error) {
	body := struct {
		Event          string    `json:"event"`
		RegistrationID uuid.UUID `json:"registration_id"`
		Name           string    `json:"name"`
		Message        string    `json:"message"`
		Timestamp      time.Time `json:"timestamp"`
	}{
		Event:          webhook.EventTypeTest,
		RegistrationID: reg.ID,
		Name:           reg.Name,
		Message:        "Test delivery requested for this endpoint",
		Timestamp:      time.Now(),
	}
	return json.Marshal(body)
}

func exportFilter() shared.Filter {
	return shared.Filter{
		Page:     1,
		PageSize: exportPageSize,
		OrderBy:  "name",
		OrderDir: "asc",
	}
}

func deliveryStatus(s string) webhook.DeliveryStatus {
	return webhook.DeliveryStatus(strings.ToUpper(s))
}
