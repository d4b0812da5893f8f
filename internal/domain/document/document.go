package document

import (
	"regexp"
	"time"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentStatus represents the upload lifecycle of a document
type DocumentStatus string

const (
	// DocumentStatusPendingUpload means metadata exists but the object
	// has not been confirmed in storage yet.
	DocumentStatusPendingUpload DocumentStatus = "pending_upload"
	DocumentStatusAvailable     DocumentStatus = "available"
	DocumentStatusArchived      DocumentStatus = "archived"
	DocumentStatusDeleted       DocumentStatus = "deleted"
)

// IsValid checks if the status is a valid DocumentStatus
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusPendingUpload, DocumentStatusAvailable, DocumentStatusArchived, DocumentStatusDeleted:
		return true
	}
	return false
}

// String returns the string representation of DocumentStatus
func (s DocumentStatus) String() string {
	return string(s)
}

// DocumentCategory classifies what kind of paper this is
type DocumentCategory string

const (
	CategoryTaxReturn      DocumentCategory = "tax_return"
	CategoryReceipt        DocumentCategory = "receipt"
	CategoryCertificate    DocumentCategory = "certificate"
	CategoryCorrespondence DocumentCategory = "correspondence"
	CategorySupporting     DocumentCategory = "supporting"
	CategoryOther          DocumentCategory = "other"
)

// String returns the string representation of DocumentCategory
func (c DocumentCategory) String() string {
	return string(c)
}

// IsValid checks if the category is recognized
func (c DocumentCategory) IsValid() bool {
	switch c {
	case CategoryTaxReturn, CategoryReceipt, CategoryCertificate, CategoryCorrespondence, CategorySupporting, CategoryOther:
		return true
	}
	return false
}

// AllowedContentTypes is the upload allow-list. Formats clients
// actually send us: PDFs, office documents, images of receipts.
var AllowedContentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"image/jpeg": true,
	"image/png":  true,
	"text/csv":   true,
	"text/plain": true,
}

var checksumPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Document holds metadata for a file kept in object storage.
// The bytes themselves live in the bucket; this aggregate tracks
// where they are and whether the upload completed.
type Document struct {
	shared.TenantAggregateRoot
	ClientID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	FilingID    *uuid.UUID       `gorm:"type:uuid;index"`
	Name        string           `gorm:"type:varchar(255);not null"`
	Category    DocumentCategory `gorm:"type:varchar(30);not null;index"`
	StorageKey  string           `gorm:"type:varchar(500);not null;uniqueIndex"`
	ContentType string           `gorm:"type:varchar(100);not null"`
	SizeBytes   int64            `gorm:"not null"`
	Checksum    string           `gorm:"type:varchar(64)"` // SHA-256 hex, set on confirm
	UploadedBy  uuid.UUID        `gorm:"type:uuid;not null"`
	Status      DocumentStatus   `gorm:"type:varchar(20);not null;default:'pending_upload';index"`
	Description string           `gorm:"type:text"`
	AvailableAt *time.Time
	ArchivedAt  *time.Time
	DeletedAt   *time.Time
}

// TableName returns the table name for GORM
func (Document) TableName() string {
	return "documents"
}

// NewDocument creates upload metadata in pending_upload state. The
// caller is expected to hand the client a presigned PUT URL next.
func NewDocument(tenantID, clientID uuid.UUID, name string, category DocumentCategory, storageKey, contentType string, sizeBytes int64, uploadedBy uuid.UUID) (*Document, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Document name cannot be empty")
	}
	if len(name) > 255 {
		return nil, shared.NewDomainError("INVALID_NAME", "Document name cannot exceed 255 characters")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown document category")
	}
	if storageKey == "" {
		return nil, shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot be empty")
	}
	if !AllowedContentTypes[contentType] {
		return nil, shared.NewDomainError("UNSUPPORTED_CONTENT_TYPE", "Content type is not allowed")
	}
	if sizeBytes <= 0 {
		return nil, shared.NewDomainError("INVALID_SIZE", "Document size must be positive")
	}
	if uploadedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Uploading user is required")
	}

	d := &Document{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClientID:            clientID,
		Name:                name,
		Category:            category,
		StorageKey:          storageKey,
		ContentType:         contentType,
		SizeBytes:           sizeBytes,
		UploadedBy:          uploadedBy,
		Status:              DocumentStatusPendingUpload,
	}

	d.AddDomainEvent(NewDocumentUploadInitiatedEvent(d))

	return d, nil
}

// LinkFiling attaches the document to a tax filing
func (d *Document) LinkFiling(filingID uuid.UUID) error {
	if filingID == uuid.Nil {
		return shared.NewDomainError("INVALID_FILING", "Filing ID cannot be empty")
	}

	d.FilingID = &filingID
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	return nil
}

// MarkAvailable confirms the object landed in storage. The checksum
// comes from the storage backend after the existence check.
func (d *Document) MarkAvailable(checksum string) error {
	if d.Status != DocumentStatusPendingUpload {
		return shared.NewDomainError("INVALID_STATE", "Only pending uploads can be confirmed")
	}
	if checksum != "" && !checksumPattern.MatchString(checksum) {
		return shared.NewDomainError("INVALID_CHECKSUM", "Checksum must be SHA-256 hex")
	}

	now := time.Now()
	d.Status = DocumentStatusAvailable
	d.Checksum = checksum
	d.AvailableAt = &now
	d.UpdatedAt = now
	d.IncrementVersion()

	d.AddDomainEvent(NewDocumentAvailableEvent(d))

	return nil
}

// Archive moves an available document out of the working set
func (d *Document) Archive() error {
	if d.Status != DocumentStatusAvailable {
		return shared.NewDomainError("INVALID_STATE", "Only available documents can be archived")
	}

	now := time.Now()
	d.Status = DocumentStatusArchived
	d.ArchivedAt = &now
	d.UpdatedAt = now
	d.IncrementVersion()

	return nil
}

// Restore brings an archived document back to available
func (d *Document) Restore() error {
	if d.Status != DocumentStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Only archived documents can be restored")
	}

	d.Status = DocumentStatusAvailable
	d.ArchivedAt = nil
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	return nil
}

// MarkDeleted soft-deletes the document. The storage object is removed
// by the service before this is persisted.
func (d *Document) MarkDeleted() error {
	if d.Status == DocumentStatusDeleted {
		return shared.NewDomainError("INVALID_STATE", "Document is already deleted")
	}

	now := time.Now()
	d.Status = DocumentStatusDeleted
	d.DeletedAt = &now
	d.UpdatedAt = now
	d.IncrementVersion()

	d.AddDomainEvent(NewDocumentDeletedEvent(d))

	return nil
}

// SetDescription sets a free-form description
func (d *Document) SetDescription(description string) {
	d.Description = description
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
}

// IsAvailable returns true when the object is confirmed in storage
func (d *Document) IsAvailable() bool {
	return d.Status == DocumentStatusAvailable
}

// IsDownloadable returns true when a download URL may be issued
func (d *Document) IsDownloadable() bool {
	return d.Status == DocumentStatusAvailable || d.Status == DocumentStatusArchived
}
