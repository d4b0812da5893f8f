package document

import (
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type for document events
const AggregateTypeDocument = "Document"

// Document event types
const (
	EventTypeDocumentUploadInitiated = "document.upload_initiated"
	EventTypeDocumentAvailable       = "document.available"
	EventTypeDocumentDeleted         = "document.deleted"
)

// DocumentUploadInitiatedEvent is emitted when upload metadata is created
type DocumentUploadInitiatedEvent struct {
	shared.BaseDomainEvent
	ClientID    uuid.UUID        `json:"client_id"`
	FilingID    *uuid.UUID       `json:"filing_id,omitempty"`
	Name        string           `json:"name"`
	Category    DocumentCategory `json:"category"`
	ContentType string           `json:"content_type"`
	SizeBytes   int64            `json:"size_bytes"`
	UploadedBy  uuid.UUID        `json:"uploaded_by"`
}

// NewDocumentUploadInitiatedEvent creates an upload initiated event
func NewDocumentUploadInitiatedEvent(d *Document) *DocumentUploadInitiatedEvent {
	return &DocumentUploadInitiatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentUploadInitiated, AggregateTypeDocument, d.ID, d.TenantID),
		ClientID:        d.ClientID,
		FilingID:        d.FilingID,
		Name:            d.Name,
		Category:        d.Category,
		ContentType:     d.ContentType,
		SizeBytes:       d.SizeBytes,
		UploadedBy:      d.UploadedBy,
	}
}

// DocumentAvailableEvent is emitted when the object is confirmed in storage
type DocumentAvailableEvent struct {
	shared.BaseDomainEvent
	ClientID  uuid.UUID        `json:"client_id"`
	FilingID  *uuid.UUID       `json:"filing_id,omitempty"`
	Name      string           `json:"name"`
	Category  DocumentCategory `json:"category"`
	SizeBytes int64            `json:"size_bytes"`
	Checksum  string           `json:"checksum,omitempty"`
}

// NewDocumentAvailableEvent creates a document available event
func NewDocumentAvailableEvent(d *Document) *DocumentAvailableEvent {
	return &DocumentAvailableEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentAvailable, AggregateTypeDocument, d.ID, d.TenantID),
		ClientID:        d.ClientID,
		FilingID:        d.FilingID,
		Name:            d.Name,
		Category:        d.Category,
		SizeBytes:       d.SizeBytes,
		Checksum:        d.Checksum,
	}
}

// DocumentDeletedEvent is emitted when a document is soft-deleted
type DocumentDeletedEvent struct {
	shared.BaseDomainEvent
	ClientID   uuid.UUID `json:"client_id"`
	Name       string    `json:"name"`
	StorageKey string    `json:"storage_key"`
}

// NewDocumentDeletedEvent creates a document deleted event
func NewDocumentDeletedEvent(d *Document) *DocumentDeletedEvent {
	return &DocumentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentDeleted, AggregateTypeDocument, d.ID, d.TenantID),
		ClientID:        d.ClientID,
		Name:            d.Name,
		StorageKey:      d.StorageKey,
	}
}
