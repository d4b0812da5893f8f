package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/bettstax/backend/internal/domain/client"
	"github.com/bettstax/backend/internal/domain/document"
	"github.com/bettstax/backend/internal/domain/filing"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ObjectStorageService defines the interface for object storage operations.
// Implemented by the infrastructure layer (S3, MinIO, or the local stub).
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	// Returns the upload URL and expiration time
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file
	// Returns the download URL and expiration time
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// DocumentServiceConfig holds configuration for the document service
type DocumentServiceConfig struct {
	// UploadURLExpiry is the duration for which upload URLs are valid
	UploadURLExpiry time.Duration
	// DownloadURLExpiry is the duration for which download URLs are valid
	DownloadURLExpiry time.Duration
	// MaxDocumentSizeBytes caps a single upload
	MaxDocumentSizeBytes int64
	// StaleUploadCutoffHours is how long a pending_upload record may sit
	// before the cleanup job reclaims it
	StaleUploadCutoffHours int
}

// DefaultDocumentServiceConfig returns the default configuration
func DefaultDocumentServiceConfig() DocumentServiceConfig {
	return DocumentServiceConfig{
		UploadURLExpiry:        15 * time.Minute,
		DownloadURLExpiry:      1 * time.Hour,
		MaxDocumentSizeBytes:   50 * 1024 * 1024,
		StaleUploadCutoffHours: 48,
	}
}

// DocumentService handles document metadata and presigned-URL operations
type DocumentService struct {
	documentRepo   document.DocumentRepository
	clientRepo     client.ClientRepository
	filingRepo     filing.TaxFilingRepository
	storageService ObjectStorageService
	config         DocumentServiceConfig
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	documentRepo document.DocumentRepository,
	clientRepo client.ClientRepository,
	filingRepo filing.TaxFilingRepository,
	storageService ObjectStorageService,
) *DocumentService {
	return &DocumentService{
		documentRepo:   documentRepo,
		clientRepo:     clientRepo,
		filingRepo:     filingRepo,
		storageService: storageService,
		config:         DefaultDocumentServiceConfig(),
	}
}

// SetConfig sets the service configuration
func (s *DocumentService) SetConfig(config DocumentServiceConfig) {
	s.config = config
}

// InitiateUpload creates a pending document record and returns a presigned upload URL
func (s *DocumentService) InitiateUpload(
	ctx context.Context,
	tenantID uuid.UUID,
	req InitiateUploadRequest,
) (*InitiateUploadResponse, error) {
	// Validate client exists
	_, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, req.ClientID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found")
		}
		return nil, err
	}

	// Validate the filing exists and belongs to the same client
	if req.FilingID != nil {
		f, err := s.filingRepo.FindByIDForTenant(ctx, tenantID, *req.FilingID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("FILING_NOT_FOUND", "Filing not found")
			}
			return nil, err
		}
		if f.ClientID != req.ClientID {
			return nil, shared.NewDomainError("FILING_CLIENT_MISMATCH",
				"Filing does not belong to the given client")
		}
	}

	if req.SizeBytes > s.config.MaxDocumentSizeBytes {
		return nil, shared.NewDomainError("DOCUMENT_TOO_LARGE",
			fmt.Sprintf("Documents may not exceed %d bytes", s.config.MaxDocumentSizeBytes))
	}

	uploadedBy := uuid.Nil
	if req.UploadedBy != nil {
		uploadedBy = *req.UploadedBy
	}

	storageKey := s.generateStorageKey(tenantID, req.ClientID, req.Name)

	// The constructor enforces the content-type allow-list, name length
	// and size positivity.
	doc, err := document.NewDocument(
		tenantID,
		req.ClientID,
		req.Name,
		document.DocumentCategory(req.Category),
		storageKey,
		req.ContentType,
		req.SizeBytes,
		uploadedBy,
	)
	if err != nil {
		return nil, err
	}

	if req.FilingID != nil {
		if err := doc.LinkFiling(*req.FilingID); err != nil {
			return nil, err
		}
	}
	if req.Description != "" {
		doc.SetDescription(req.Description)
	}

	// Save the document in pending_upload status
	if err := s.documentRepo.Save(ctx, doc); err != nil {
		return nil, err
	}

	// Generate presigned upload URL
	uploadURL, expiresAt, err := s.storageService.GenerateUploadURL(
		ctx,
		storageKey,
		req.ContentType,
		s.config.UploadURLExpiry,
	)
	if err != nil {
		// Clean up the document record if URL generation fails
		_ = s.documentRepo.DeleteForTenant(ctx, tenantID, doc.ID)
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	return &InitiateUploadResponse{
		DocumentID: doc.ID,
		UploadURL:  uploadURL,
		StorageKey: storageKey,
		ExpiresAt:  expiresAt,
	}, nil
}

// ConfirmUpload verifies the object landed in storage and marks the document available
func (s *DocumentService) ConfirmUpload(
	ctx context.Context,
	tenantID uuid.UUID,
	documentID uuid.UUID,
	req ConfirmUploadRequest,
) (*DocumentResponse, error) {
	doc, err := s.documentRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	// Verify the file exists in storage
	exists, err := s.storageService.ObjectExists(ctx, doc.StorageKey)
	if err != nil {
		return nil, shared.NewDomainError("STORAGE_CHECK_FAILED", "Failed to verify upload")
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND",
			"File not found in storage. Please upload the file first.")
	}

	if err := doc.MarkAvailable(req.Checksum); err != nil {
		return nil, err
	}

	if err := s.documentRepo.Save(ctx, doc); err != nil {
		return nil, err
	}

	response := ToDocumentResponse(doc)
	return &response, nil
}

// GetByID retrieves a document by ID
func (s *DocumentService) GetByID(ctx context.Context, tenantID, documentID uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.documentRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	response := ToDocumentResponse(doc)
	return &response, nil
}

// DownloadURL issues a presigned GET URL for an available or archived document
func (s *DocumentService) DownloadURL(ctx context.Context, tenantID, documentID uuid.UUID) (*DownloadURLResponse, error) {
	doc, err := s.documentRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	if !doc.IsDownloadable() {
		return nil, shared.NewDomainError("NOT_DOWNLOADABLE",
			"Document is not available for download")
	}

	url, expiresAt, err := s.storageService.GenerateDownloadURL(ctx, doc.StorageKey, s.config.DownloadURLExpiry)
	if err != nil {
		return nil, shared.NewDomainError("DOWNLOAD_URL_FAILED", "Failed to generate download URL")
	}

	return &DownloadURLResponse{
		DocumentID: doc.ID,
		URL:        url,
		ExpiresAt:  expiresAt,
	}, nil
}

// List retrieves documents with filtering and pagination
func (s *DocumentService) List(ctx context.Context, tenantID uuid.UUID, filter DocumentListFilter) ([]DocumentListResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	} else {
		// Deleted documents stay out of listings unless asked for
		domainFilter.Filters["status_not"] = string(document.DocumentStatusDeleted)
	}
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}
	if filter.ClientID != "" {
		if clientID, err := uuid.Parse(filter.ClientID); err == nil {
			domainFilter.Filters["client_id"] = clientID
		}
	}
	if filter.FilingID != "" {
		if filingID, err := uuid.Parse(filter.FilingID); err == nil {
			domainFilter.Filters["filing_id"] = filingID
		}
	}

	docs, err := s.documentRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.documentRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToDocumentListResponses(docs), count, nil
}

// ListByClient retrieves documents for one client
func (s *DocumentService) ListByClient(ctx context.Context, tenantID, clientID uuid.UUID, filter DocumentListFilter) ([]DocumentListResponse, int64, error) {
	filter.ClientID = clientID.String()
	return s.List(ctx, tenantID, filter)
}

// ListByFiling retrieves documents attached to one filing
func (s *DocumentService) ListByFiling(ctx context.Context, tenantID, filingID uuid.UUID) ([]DocumentListResponse, error) {
	docs, err := s.documentRepo.FindByFilingForTenant(ctx, tenantID, filingID)
	if err != nil {
		return nil, err
	}
	return ToDocumentListResponses(docs), nil
}

// LinkFiling attaches an existing document to a filing
func (s *DocumentService) LinkFiling(ctx context.Context, tenantID, documentID uuid.UUID, req LinkFilingRequest) (*DocumentResponse, error) {
	doc, err := s.documentRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	f, err := s.filingRepo.FindByIDForTenant(ctx, tenantID, req.FilingID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("FILING_NOT_FOUND", "Filing not found")
		}
		return nil, err
	}
	if f.ClientID != doc.ClientID {
		return nil, shared.NewDomainError("FILING_CLIENT_MISMATCH",
			"Filing does not belong to the document's client")
	}

	if err := doc.LinkFiling(req.FilingID); err != nil {
		return nil, err
	}

	if err := s.documentRepo.Save(ctx, doc); err != nil {
		return nil, err
	}

	response := ToDocumentResponse(doc)
	return &response, nil
}

// Update edits document metadata
func (s *DocumentService) Update(ctx context.Context, tenantID, documentID uuid.UUID, req UpdateDocumentRequest) (*DocumentResponse, error) {
	doc, err := s.documentRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		doc.SetDescription(*req.Description)
	}

	if err := s.documentRepo.Save(ctx, doc); err != nil {
		return nil, err
	}

	response := ToDocumentResponse(doc)
	return &response, nil
}

// Archive moves an available document out of the working set
func (s *DocumentService) Archive(ctx context.Context, tenantID, documentID uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.documentRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	if err := doc.Archive(); err != nil {
		return nil, err
	}

	if err := s.documentRepo.Save(ctx, doc); err != nil {
		return nil, err
	}

	response := ToDocumentResponse(doc)
	return &response, nil
}

// Restore brings an archived document back to available
func (s *DocumentService) Restore(ctx context.Context, tenantID, documentID uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.documentRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	if err := doc.Restore(); err != nil {
		return nil, err
	}

	if err := s.documentRepo.Save(ctx, doc); err != nil {
		return nil, err
	}

	response := ToDocumentResponse(doc)
	return &response, nil
}

// Delete soft-deletes a document and removes its storage object
func (s *DocumentService) Delete(ctx context.Context, tenantID, documentID uuid.UUID) error {
	doc, err := s.documentRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return err
	}

	// Remove the object first; the metadata row survives for the audit
	// trail. A missing object is fine, the record may never have been
	// uploaded.
	if err := s.storageService.DeleteObject(ctx, doc.StorageKey); err != nil {
		slog.WarnContext(ctx, "failed to delete document object from storage",
			"document_id", doc.ID,
			"storage_key", doc.StorageKey,
			"error", err)
	}

	if err := doc.MarkDeleted(); err != nil {
		return err
	}

	return s.documentRepo.Save(ctx, doc)
}

// Usage reports storage consumption for the tenant
func (s *DocumentService) Usage(ctx context.Context, tenantID uuid.UUID) (*StorageUsageResponse, error) {
	usage, err := s.documentRepo.UsageForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	return &StorageUsageResponse{
		DocumentCount: usage.DocumentCount,
		TotalBytes:    usage.TotalBytes,
	}, nil
}

// CleanupStaleUploads reclaims pending_upload records whose presigned
// URL expired long ago. Runs from the scheduler, across tenants.
func (s *DocumentService) CleanupStaleUploads(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}

	stale, err := s.documentRepo.FindStalePending(ctx, s.config.StaleUploadCutoffHours, limit)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, doc := range stale {
		// Object may or may not exist depending on whether the upload
		// half-finished; try the delete either way.
		if err := s.storageService.DeleteObject(ctx, doc.StorageKey); err != nil {
			slog.WarnContext(ctx, "failed to delete stale upload object",
				"document_id", doc.ID,
				"storage_key", doc.StorageKey,
				"error", err)
		}
		if err := s.documentRepo.DeleteForTenant(ctx, doc.TenantID, doc.ID); err != nil {
			slog.WarnContext(ctx, "failed to delete stale upload record",
				"document_id", doc.ID,
				"error", err)
			continue
		}
		removed++
	}

	return removed, nil
}

// generateStorageKey generates a unique storage key for a file
func (s *DocumentService) generateStorageKey(tenantID, clientID uuid.UUID, fileName string) string {
	ext := filepath.Ext(fileName)
	uniqueID := uuid.New().String()
	// Format: tenants/{tenantID}/clients/{clientID}/documents/{uniqueID}{ext}
	return fmt.Sprintf("tenants/%s/clients/%s/documents/%s%s",
		tenantID.String(),
		clientID.String(),
		uniqueID,
		ext,
	)
}
