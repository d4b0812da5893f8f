package webhook

import (
	"time"

	"github.com/bettstax/backend/internal/domain/webhook"
	"github.com/google/uuid"
)

// ============================================================================
// Request DTOs
// ============================================================================

// CreateWebhookRequest registers a new outbound webhook endpoint
type CreateWebhookRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	Description string   `json:"description" binding:"omitempty,max=2000"`
	TargetURL   string   `json:"target_url" binding:"required,url,max=500"`
	EventTypes  []string `json:"event_types" binding:"required,min=1,dive,min=1,max=100"`
	Headers     string   `json:"headers"` // JSON object of extra header values
	MaxRetries  int      `json:"max_retries" binding:"omitempty,min=1,max=10"`
}

// UpdateWebhookRequest represents a request to update a registration
type UpdateWebhookRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string  `json:"description" binding:"omitempty,max=2000"`
	TargetURL   *string  `json:"target_url" binding:"omitempty,url,max=500"`
	EventTypes  []string `json:"event_types" binding:"omitempty,min=1,dive,min=1,max=100"`
	Headers     *string  `json:"headers"`
	MaxRetries  *int     `json:"max_retries" binding:"omitempty,min=1,max=10"`
}

// WebhookListFilter represents filter options for the registration list
type WebhookListFilter struct {
	Search   string `form:"search"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=name target_url created_at updated_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// DeliveryListFilter represents filter options for the delivery log
type DeliveryListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending processing sent failed dead"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ExportedWebhook is the import/export wire form of a registration.
// Secrets are never exported; imports generate fresh ones.
type ExportedWebhook struct {
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	Description string   `json:"description,omitempty"`
	TargetURL   string   `json:"target_url" binding:"required,url,max=500"`
	EventTypes  []string `json:"event_types" binding:"required,min=1"`
	Headers     string   `json:"headers,omitempty"`
	MaxRetries  int      `json:"max_retries,omitempty" binding:"omitempty,min=1,max=10"`
	Active      bool     `json:"active"`
}

// ImportWebhooksRequest imports registrations exported from another tenant
// or environment. Entries whose target URL is already registered are skipped.
type ImportWebhooksRequest struct {
	Webhooks []ExportedWebhook `json:"webhooks" binding:"required,min=1,dive"`
}

// ============================================================================
// Response DTOs
// ============================================================================

// WebhookResponse represents a registration in API responses. The secret is
// only populated right after registration or rotation; reads return it empty.
type WebhookResponse struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	TargetURL      string     `json:"target_url"`
	Secret         string     `json:"secret,omitempty"`
	EventTypes     []string   `json:"event_types"`
	Headers        string     `json:"headers,omitempty"`
	Active         bool       `json:"active"`
	MaxRetries     int        `json:"max_retries"`
	LastDeliveryAt *time.Time `json:"last_delivery_at,omitempty"`
	LastStatus     int        `json:"last_status,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Version        int        `json:"version"`
}

// SecretResponse returns a freshly rotated signing secret
type SecretResponse struct {
	Secret string `json:"secret"`
}

// DeliveryResponse represents one delivery log line
type DeliveryResponse struct {
	ID             uuid.UUID  `json:"id"`
	RegistrationID uuid.UUID  `json:"registration_id"`
	EventID        uuid.UUID  `json:"event_id"`
	EventType      string     `json:"event_type"`
	Payload        string     `json:"payload,omitempty"`
	Status         string     `json:"status"`
	AttemptCount   int        `json:"attempt_count"`
	MaxRetries     int        `json:"max_retries"`
	LastError      string     `json:"last_error,omitempty"`
	ResponseStatus int        `json:"response_status,omitempty"`
	NextRetryAt    *time.Time `json:"next_retry_at,omitempty"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// DeliveryStatsResponse aggregates delivery outcomes for one registration
type DeliveryStatsResponse struct {
	Pending        int64      `json:"pending"`
	Processing     int64      `json:"processing"`
	Sent           int64      `json:"sent"`
	Failed         int64      `json:"failed"`
	Dead           int64      `json:"dead"`
	Total          int64      `json:"total"`
	SuccessRate    float64    `json:"success_rate"` // Sent over completed attempts
	LastDeliveryAt *time.Time `json:"last_delivery_at,omitempty"`
	LastStatus     int        `json:"last_status,omitempty"`
}

// TestResponse reports the outcome of a synchronous test ping
type TestResponse struct {
	Success        bool      `json:"success"`
	ResponseStatus int       `json:"response_status,omitempty"`
	Error          string    `json:"error,omitempty"`
	DeliveryID     uuid.UUID `json:"delivery_id"`
}

// ExportResponse wraps the exported registrations
type ExportResponse struct {
	ExportedAt time.Time         `json:"exported_at"`
	Webhooks   []ExportedWebhook `json:"webhooks"`
}

// ImportResultResponse reports how an import went
type ImportResultResponse struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ============================================================================
// Mappers
// ============================================================================

// ToWebhookResponse converts a domain registration to a response DTO.
// The signing secret is deliberately left out.
func ToWebhookResponse(r *webhook.Registration) WebhookResponse {
	return WebhookResponse{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		TargetURL:      r.TargetURL,
		EventTypes:     r.EventTypes,
		Headers:        r.Headers,
		Active:         r.Active,
		MaxRetries:     r.MaxRetries,
		LastDeliveryAt: r.LastDeliveryAt,
		LastStatus:     r.LastStatus,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		Version:        r.Version,
	}
}

// ToWebhookResponses converts a slice of registrations to response DTOs
func ToWebhookResponses(regs []webhook.Registration) []WebhookResponse {
	responses := make([]WebhookResponse, len(regs))
	for i := range regs {
		responses[i] = ToWebhookResponse(&regs[i])
	}
	return responses
}

// ToDeliveryResponse converts a domain delivery to a response DTO
func ToDeliveryResponse(d *webhook.Delivery) DeliveryResponse {
	return DeliveryResponse{
		ID:             d.ID,
		RegistrationID: d.RegistrationID,
		EventID:        d.EventID,
		EventType:      d.EventType,
		Payload:        string(d.Payload),
		Status:         string(d.Status),
		AttemptCount:   d.AttemptCount,
		MaxRetries:     d.MaxRetries,
		LastError:      d.LastError,
		ResponseStatus: d.ResponseStatus,
		NextRetryAt:    d.NextRetryAt,
		DeliveredAt:    d.DeliveredAt,
		CreatedAt:      d.CreatedAt,
	}
}

// ToDeliveryResponses converts a slice of deliveries to response DTOs
func ToDeliveryResponses(deliveries []webhook.Delivery) []DeliveryResponse {
	responses := make([]DeliveryResponse, len(deliveries))
	for i := range deliveries {
		responses[i] = ToDeliveryResponse(&deliveries[i])
	}
	return responses
}

// ToExportedWebhook converts a registration to its import/export form
func ToExportedWebhook(r *webhook.Registration) ExportedWebhook {
	return ExportedWebhook{
		Name:        r.Name,
		Description: r.Description,
		TargetURL:   r.TargetURL,
		EventTypes:  r.EventTypes,
		Headers:     r.Headers,
		MaxRetries:  r.MaxRetries,
		Active:      r.Active,
	}
}
