package webhook

import (
	"crypto/rand"
	"encoding/hex"
	"net/url"
	"strings"
	"time"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EventTypeWildcard subscribes a registration to every published event type.
const EventTypeWildcard = "*"

// Retry configuration for webhook deliveries
const (
	DefaultDeliveryMaxRetries = 5
	MaxDeliveryMaxRetries     = 10
	SecretByteLength          = 32
)

// Registration represents an outbound webhook endpoint registered by a tenant.
// It is the aggregate root for webhook configuration; deliveries reference it
// but are managed as a separate queue.
type Registration struct {
	shared.TenantAggregateRoot
	Name           string     `gorm:"type:varchar(100);not null"`
	Description    string     `gorm:"type:text"`
	TargetURL      string     `gorm:"type:varchar(500);not null"`
	Secret         string     `gorm:"type:varchar(100);not null"` // HMAC-SHA256 signing key, hex encoded
	EventTypes     []string   `gorm:"-"`                          // Subscribed event types, "*" matches all
	Headers        string     `gorm:"type:jsonb"`                 // Extra headers sent with every delivery
	Active         bool       `gorm:"not null;default:true"`
	MaxRetries     int        `gorm:"not null;default:5"`
	LastDeliveryAt *time.Time // Updated when a delivery for this registration completes
	LastStatus     int        `gorm:"not null;default:0"` // HTTP status of the most recent delivery attempt
}

// TableName returns the table name for GORM
func (Registration) TableName() string {
	return "webhook_registrations"
}

// NewRegistration creates a webhook registration with a freshly generated secret.
func NewRegistration(tenantID uuid.UUID, name, targetURL string, eventTypes []string) (*Registration, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := ValidateTargetURL(targetURL); err != nil {
		return nil, err
	}
	normalized, err := normalizeEventTypes(eventTypes)
	if err != nil {
		return nil, err
	}

	secret, err := GenerateSecret()
	if err != nil {
		return nil, shared.NewDomainError("SECRET_GENERATION_FAILED", "Could not generate webhook secret")
	}

	r := &Registration{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		TargetURL:           targetURL,
		Secret:              secret,
		EventTypes:          normalized,
		Headers:             "{}",
		Active:              true,
		MaxRetries:          DefaultDeliveryMaxRetries,
	}

	r.AddDomainEvent(NewRegistrationCreatedEvent(r))

	return r, nil
}

// Update changes the registration's name, description, target URL and subscriptions.
func (r *Registration) Update(name, description, targetURL string, eventTypes []string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := ValidateTargetURL(targetURL); err != nil {
		return err
	}
	normalized, err := normalizeEventTypes(eventTypes)
	if err != nil {
		return err
	}

	r.Name = name
	r.Description = description
	r.TargetURL = targetURL
	r.EventTypes = normalized
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewRegistrationUpdatedEvent(r))

	return nil
}

// SetMaxRetries changes how many attempts a delivery gets before it is parked.
func (r *Registration) SetMaxRetries(maxRetries int) error {
	if maxRetries < 1 || maxRetries > MaxDeliveryMaxRetries {
		return shared.NewDomainError("INVALID_MAX_RETRIES", "Max retries must be between 1 and 10")
	}
	r.MaxRetries = maxRetries
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}

// SetHeaders replaces the custom headers sent with every delivery.
// The input must be a JSON object of string values.
func (r *Registration) SetHeaders(headersJSON string) error {
	if headersJSON == "" {
		headersJSON = "{}"
	}
	if _, err := ParseHeaders(headersJSON); err != nil {
		return err
	}
	r.Headers = headersJSON
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}

// RotateSecret replaces the signing secret. In-flight deliveries keep the
// signature computed at enqueue time, so consumers must accept both secrets
// during rotation.
func (r *Registration) RotateSecret() (string, error) {
	secret, err := GenerateSecret()
	if err != nil {
		return "", shared.NewDomainError("SECRET_GENERATION_FAILED", "Could not generate webhook secret")
	}
	r.Secret = secret
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewRegistrationSecretRotatedEvent(r))

	return secret, nil
}

// Activate enables deliveries for this registration.
func (r *Registration) Activate() {
	if r.Active {
		return
	}
	r.Active = true
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// Deactivate stops new deliveries from being enqueued. Pending deliveries
// are skipped by the dispatcher while the registration is inactive.
func (r *Registration) Deactivate() {
	if !r.Active {
		return
	}
	r.Active = false
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// RecordDelivery captures the outcome of the most recent delivery attempt.
func (r *Registration) RecordDelivery(at time.Time, httpStatus int) {
	r.LastDeliveryAt = &at
	r.LastStatus = httpStatus
	r.UpdatedAt = time.Now()
}

// SubscribesTo reports whether the registration wants events of the given type.
func (r *Registration) SubscribesTo(eventType string) bool {
	for _, t := range r.EventTypes {
		if t == EventTypeWildcard || t == eventType {
			return true
		}
	}
	return false
}

// IsDeliverable reports whether the dispatcher should attempt deliveries.
func (r *Registration) IsDeliverable() bool {
	return r.Active
}

// GenerateSecret produces a hex-encoded random signing key.
func GenerateSecret() (string, error) {
	buf := make([]byte, SecretByteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// ValidateTargetURL checks that the target is an absolute http(s) URL.
// Plain http is accepted so local development receivers work; production
// deployments are expected to register https endpoints.
func ValidateTargetURL(raw string) error {
	if raw == "" {
		return shared.NewDomainError("INVALID_TARGET_URL", "Target URL is required")
	}
	if len(raw) > 500 {
		return shared.NewDomainError("INVALID_TARGET_URL", "Target URL cannot exceed 500 characters")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return shared.NewDomainError("INVALID_TARGET_URL", "Target URL is not a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return shared.NewDomainError("INVALID_TARGET_URL", "Target URL must use http or https")
	}
	if u.Host == "" {
		return shared.NewDomainError("INVALID_TARGET_URL", "Target URL must include a host")
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Webhook name is required")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Webhook name cannot exceed 100 characters")
	}
	return nil
}

func normalizeEventTypes(eventTypes []string) ([]string, error) {
	if len(eventTypes) == 0 {
		return nil, shared.NewDomainError("INVALID_EVENT_TYPES", "At least one event type is required")
	}
	seen := make(map[string]struct{}, len(eventTypes))
	out := make([]string, 0, len(eventTypes))
	for _, t := range eventTypes {
		t = strings.TrimSpace(t)
		if t == "" {
			return nil, shared.NewDomainError("INVALID_EVENT_TYPES", "Event types cannot be blank")
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}
