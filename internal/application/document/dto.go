package document

import (
	"time"

	"github.com/bettstax/backend/internal/domain/document"
	"github.com/google/uuid"
)

// ============================================================================
// Request DTOs
// ============================================================================

// InitiateUploadRequest represents a request to initiate a document upload
type InitiateUploadRequest struct {
	ClientID    uuid.UUID  `json:"client_id" binding:"required"`
	FilingID    *uuid.UUID `json:"filing_id"`
	Name        string     `json:"name" binding:"required,min=1,max=255"`
	Category    string     `json:"category" binding:"required,oneof=tax_return receipt certificate correspondence supporting other"`
	ContentType string     `json:"content_type" binding:"required"`
	SizeBytes   int64      `json:"size_bytes" binding:"required,gt=0"`
	Description string     `json:"description" binding:"omitempty,max=2000"`

	// UploadedBy is set from the authenticated user, not from the request body
	UploadedBy *uuid.UUID `json:"-"`
}

// ConfirmUploadRequest represents a request to confirm a completed upload
type ConfirmUploadRequest struct {
	Checksum string `json:"checksum" binding:"omitempty,len=64,hexadecimal"`
}

// LinkFilingRequest represents a request to attach a document to a filing
type LinkFilingRequest struct {
	FilingID uuid.UUID `json:"filing_id" binding:"required"`
}

// UpdateDocumentRequest represents a request to update document metadata
type UpdateDocumentRequest struct {
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// DocumentListFilter represents filter options for document list
type DocumentListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=pending_upload available archived deleted"`
	Category string `form:"category" binding:"omitempty,oneof=tax_return receipt certificate correspondence supporting other"`
	ClientID string `form:"client_id" binding:"omitempty,uuid"`
	FilingID string `form:"filing_id" binding:"omitempty,uuid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ============================================================================
// Response DTOs
// ============================================================================

// InitiateUploadResponse carries the presigned PUT URL for the client
type InitiateUploadResponse struct {
	DocumentID uuid.UUID `json:"document_id"`
	UploadURL  string    `json:"upload_url"`
	StorageKey string    `json:"storage_key"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// DownloadURLResponse carries a presigned GET URL
type DownloadURLResponse struct {
	DocumentID uuid.UUID `json:"document_id"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// DocumentResponse represents a document in API responses
type DocumentResponse struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    uuid.UUID  `json:"tenant_id"`
	ClientID    uuid.UUID  `json:"client_id"`
	FilingID    *uuid.UUID `json:"filing_id,omitempty"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	StorageKey  string     `json:"storage_key"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	Checksum    string     `json:"checksum,omitempty"`
	Description string     `json:"description,omitempty"`
	UploadedBy  uuid.UUID  `json:"uploaded_by"`
	AvailableAt *time.Time `json:"available_at,omitempty"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Version     int        `json:"version"`
}

// DocumentListResponse represents a list item for documents
type DocumentListResponse struct {
	ID          uuid.UUID  `json:"id"`
	ClientID    uuid.UUID  `json:"client_id"`
	FilingID    *uuid.UUID `json:"filing_id,omitempty"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	UploadedBy  uuid.UUID  `json:"uploaded_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

// StorageUsageResponse summarizes how much of the bucket a tenant uses
type StorageUsageResponse struct {
	DocumentCount int64 `json:"document_count"`
	TotalBytes    int64 `json:"total_bytes"`
}

// ============================================================================
// Conversion Functions
// ============================================================================

// ToDocumentResponse converts a domain Document to DocumentResponse
func ToDocumentResponse(d *document.Document) DocumentResponse {
	return DocumentResponse{
		ID:          d.ID,
		TenantID:    d.TenantID,
		ClientID:    d.ClientID,
		FilingID:    d.FilingID,
		Name:        d.Name,
		Category:    d.Category.String(),
		Status:      d.Status.String(),
		StorageKey:  d.StorageKey,
		ContentType: d.ContentType,
		SizeBytes:   d.SizeBytes,
		Checksum:    d.Checksum,
		Description: d.Description,
		UploadedBy:  d.UploadedBy,
		AvailableAt: d.AvailableAt,
		ArchivedAt:  d.ArchivedAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		Version:     d.Version,
	}
}

// ToDocumentListResponse converts a domain Document to DocumentListResponse
func ToDocumentListResponse(d *document.Document) DocumentListResponse {
	return DocumentListResponse{
		ID:          d.ID,
		ClientID:    d.ClientID,
		FilingID:    d.FilingID,
		Name:        d.Name,
		Category:    d.Category.String(),
		Status:      d.Status.String(),
		ContentType: d.ContentType,
		SizeBytes:   d.SizeBytes,
		UploadedBy:  d.UploadedBy,
		CreatedAt:   d.CreatedAt,
	}
}

// ToDocumentListResponses converts a slice of domain Documents to DocumentListResponses
func ToDocumentListResponses(docs []*document.Document) []DocumentListResponse {
	responses := make([]DocumentListResponse, len(docs))
	for i, d := range docs {
		responses[i] = ToDocumentListResponse(d)
	}
	return responses
}
