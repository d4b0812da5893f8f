package models

import (
	"encoding/json"
	"time"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/domain/webhook"
	"github.com/google/uuid"
)

// WebhookRegistrationModel is the GORM model for webhook_registrations table
type WebhookRegistrationModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key"`
	TenantID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name           string     `gorm:"type:varchar(100);not null"`
	Description    string     `gorm:"type:text"`
	TargetURL      string     `gorm:"column:target_url;type:varchar(500);not null"`
	Secret         string     `gorm:"type:varchar(100);not null"`
	EventTypes     string     `gorm:"column:event_types;type:jsonb;not null;default:'[]'"`
	Headers        string     `gorm:"type:jsonb"`
	Active         bool       `gorm:"not null;default:true"`
	MaxRetries     int        `gorm:"column:max_retries;not null;default:5"`
	LastDeliveryAt *time.Time `gorm:"column:last_delivery_at"`
	LastStatus     int        `gorm:"column:last_status;not null;default:0"`
	CreatedAt      time.Time  `gorm:"not null"`
	UpdatedAt      time.Time  `gorm:"not null"`
	Version        int        `gorm:"not null;default:1"`
}

// TableName returns the table name for WebhookRegistrationModel
func (WebhookRegistrationModel) TableName() string {
	return "webhook_registrations"
}

// ToDomain converts WebhookRegistrationModel to domain Registration
func (m *WebhookRegistrationModel) ToDomain() *webhook.Registration {
	var eventTypes []string
	if m.EventTypes != "" {
		if err := json.Unmarshal([]byte(m.EventTypes), &eventTypes); err != nil {
			eventTypes = nil
		}
	}
	return &webhook.Registration{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID: m.TenantID,
		},
		Name:           m.Name,
		Description:    m.Description,
		TargetURL:      m.TargetURL,
		Secret:         m.Secret,
		EventTypes:     eventTypes,
		Headers:        m.Headers,
		Active:         m.Active,
		MaxRetries:     m.MaxRetries,
		LastDeliveryAt: m.LastDeliveryAt,
		LastStatus:     m.LastStatus,
	}
}

// WebhookRegistrationModelFromDomain creates a WebhookRegistrationModel from domain Registration
func WebhookRegistrationModelFromDomain(r *webhook.Registration) *WebhookRegistrationModel {
	eventTypes, err := json.Marshal(r.EventTypes)
	if err != nil || len(r.EventTypes) == 0 {
		eventTypes = []byte("[]")
	}
	return &WebhookRegistrationModel{
		ID:             r.ID,
		TenantID:       r.TenantID,
		Name:           r.Name,
		Description:    r.Description,
		TargetURL:      r.TargetURL,
		Secret:         r.Secret,
		EventTypes:     string(eventTypes),
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

// WebhookDeliveryModel is the GORM model for webhook_deliveries table
type WebhookDeliveryModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key"`
	TenantID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	RegistrationID uuid.UUID  `gorm:"column:registration_id;type:uuid;not null;index"`
	EventID        uuid.UUID  `gorm:"column:event_id;type:uuid;not null"`
	EventType      string     `gorm:"column:event_type;type:varchar(100);not null"`
	Payload        []byte     `gorm:"type:bytea;not null"`
	Signature      string     `gorm:"type:varchar(100);not null"`
	Status         string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_delivery_status_retry,priority:1"`
	AttemptCount   int        `gorm:"column:attempt_count;not null;default:0"`
	MaxRetries     int        `gorm:"column:max_retries;not null;default:5"`
	LastError      string     `gorm:"column:last_error;type:text"`
	ResponseStatus int        `gorm:"column:response_status;not null;default:0"`
	NextRetryAt    *time.Time `gorm:"column:next_retry_at;index:idx_delivery_status_retry,priority:2"`
	DeliveredAt    *time.Time `gorm:"column:delivered_at"`
	CreatedAt      time.Time  `gorm:"not null;index"`
	UpdatedAt      time.Time  `gorm:"not null"`
}

// TableName returns the table name for WebhookDeliveryModel
func (WebhookDeliveryModel) TableName() string {
	return "webhook_deliveries"
}

// ToDomain converts WebhookDeliveryModel to domain Delivery
func (m *WebhookDeliveryModel) ToDomain() *webhook.Delivery {
	return &webhook.Delivery{
		ID:             m.ID,
		TenantID:       m.TenantID,
		RegistrationID: m.RegistrationID,
		EventID:        m.EventID,
		EventType:      m.EventType,
		Payload:        m.Payload,
		Signature:      m.Signature,
		Status:         webhook.DeliveryStatus(m.Status),
		AttemptCount:   m.AttemptCount,
		MaxRetries:     m.MaxRetries,
		LastError:      m.LastError,
		ResponseStatus: m.ResponseStatus,
		NextRetryAt:    m.NextRetryAt,
		DeliveredAt:    m.DeliveredAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// WebhookDeliveryModelFromDomain creates a WebhookDeliveryModel from domain Delivery
func WebhookDeliveryModelFromDomain(d *webhook.Delivery) *WebhookDeliveryModel {
	return &WebhookDeliveryModel{
		ID:             d.ID,
		TenantID:       d.TenantID,
		RegistrationID: d.RegistrationID,
		EventID:        d.EventID,
		EventType:      d.EventType,
		Payload:        d.Payload,
		Signature:      d.Signature,
		Status:         string(d.Status),
		AttemptCount:   d.AttemptCount,
		MaxRetries:     d.MaxRetries,
		LastError:      d.LastError,
		ResponseStatus: d.ResponseStatus,
		NextRetryAt:    d.NextRetryAt,
		DeliveredAt:    d.DeliveredAt,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}
