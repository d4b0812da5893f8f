package handler

import (
	"context"

	documentapp "github.com/bettstax/backend/internal/application/document"
	"github.com/bettstax/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentHandler handles document API endpoints
type DocumentHandler struct {
	BaseHandler
	documentService *documentapp.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *documentapp.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
	}
}

// InitiateUpload godoc
// @ID           initiateDocumentUpload
// @Summary      Initiate a document upload
// @Description  Register document metadata and obtain a presigned upload URL
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        request body documentapp.InitiateUploadRequest true "Upload initiation request"
// @Success      201 {object} APIResponse[documentapp.InitiateUploadResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /documents [post]
func (h *DocumentHandler) InitiateUpload(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req documentapp.InitiateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if userID, err := getUserID(c); err == nil {
		req.UploadedBy = &userID
	}

	resp, err := h.documentService.InitiateUpload(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// ConfirmUpload godoc
// @ID           confirmDocumentUpload
// @Summary      Confirm a completed upload
// @Description  Mark an initiated upload as available, optionally recording its checksum
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body documentapp.ConfirmUploadRequest true "Upload confirmation"
// @Success      200 {object} APIResponse[documentapp.DocumentResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/confirm [post]
func (h *DocumentHandler) ConfirmUpload(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	var req documentapp.ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.documentService.ConfirmUpload(c.Request.Context(), tenantID, documentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// GetByID godoc
// @ID           getDocumentById
// @Summary      Get document by ID
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} APIResponse[documentapp.DocumentResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id} [get]
func (h *DocumentHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	doc, err := h.documentService.GetByID(c.Request.Context(), tenantID, documentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// DownloadURL godoc
// @ID           documentDownloadUrl
// @Summary      Get a download URL
// @Description  Obtain a short-lived presigned download URL for an available document
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} APIResponse[documentapp.DownloadURLResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/download [get]
func (h *DocumentHandler) DownloadURL(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	resp, err := h.documentService.DownloadURL(c.Request.Context(), tenantID, documentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// List godoc
// @ID           listDocuments
// @Summary      List documents
// @Description  List documents with filtering and pagination. Client portal users only see their own documents.
// @Tags         documents
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        search query string false "Search by name"
// @Param        status query string false "Filter by status"
// @Param        category query string false "Filter by category"
// @Param        client_id query string false "Filter by client" format(uuid)
// @Success      200 {object} APIResponse[[]documentapp.DocumentListResponse]
// @Security     BearerAuth
// @Router       /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter documentapp.DocumentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if clientID, scoped := h.portalScope(c); scoped {
		if clientID == uuid.Nil {
			return
		}
		filter.ClientID = clientID.String()
	}

	docs, total, err := h.documentService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, docs, total, filter.Page, filter.PageSize)
}

// ListByClient godoc
// @ID           listDocumentsByClient
// @Summary      List a client's documents
// @Tags         documents
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        category query string false "Filter by category"
// @Success      200 {object} APIResponse[[]documentapp.DocumentListResponse]
// @Failure      403 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id}/documents [get]
func (h *DocumentHandler) ListByClient(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	if own, scoped := h.portalScope(c); scoped {
		if own == uuid.Nil {
			return
		}
		if own != clientID {
			h.Forbidden(c, "Access to this client's documents is not allowed")
			return
		}
	}

	var filter documentapp.DocumentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	docs, total, err := h.documentService.ListByClient(c.Request.Context(), tenantID, clientID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, docs, total, filter.Page, filter.PageSize)
}

// ListByFiling godoc
// @ID           listDocumentsByFiling
// @Summary      List a filing's documents
// @Tags         documents
// @Produce      json
// @Param        id path string true "Filing ID" format(uuid)
// @Success      200 {object} APIResponse[[]documentapp.DocumentListResponse]
// @Security     BearerAuth
// @Router       /filings/{id}/documents [get]
func (h *DocumentHandler) ListByFiling(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid filing ID format")
		return
	}

	docs, err := h.documentService.ListByFiling(c.Request.Context(), tenantID, filingID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, docs)
}

// LinkFiling godoc
// @ID           linkDocumentFiling
// @Summary      Link a document to a filing
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body documentapp.LinkFilingRequest true "Filing link request"
// @Success      200 {object} APIResponse[documentapp.DocumentResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/filing [put]
func (h *DocumentHandler) LinkFiling(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	var req documentapp.LinkFilingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.documentService.LinkFiling(c.Request.Context(), tenantID, documentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// Update godoc
// @ID           updateDocument
// @Summary      Update document metadata
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body documentapp.UpdateDocumentRequest true "Document update request"
// @Success      200 {object} APIResponse[documentapp.DocumentResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id} [put]
func (h *DocumentHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	var req documentapp.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.documentService.Update(c.Request.Context(), tenantID, documentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// Archive godoc
// @ID           archiveDocument
// @Summary      Archive a document
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} APIResponse[documentapp.DocumentResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/archive [post]
func (h *DocumentHandler) Archive(c *gin.Context) {
	h.documentTransition(c, h.documentService.Archive)
}

// Restore godoc
// @ID           restoreDocument
// @Summary      Restore an archived document
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} APIResponse[documentapp.DocumentResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/restore [post]
func (h *DocumentHandler) Restore(c *gin.Context) {
	h.documentTransition(c, h.documentService.Restore)
}

// Delete godoc
// @ID           deleteDocument
// @Summary      Delete a document
// @Description  Soft-delete a document and remove its stored object
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), tenantID, documentID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Usage godoc
// @ID           documentStorageUsage
// @Summary      Storage usage
// @Description  Total stored bytes and document counts for the firm
// @Tags         documents
// @Produce      json
// @Success      200 {object} APIResponse[documentapp.StorageUsageResponse]
// @Security     BearerAuth
// @Router       /documents/usage [get]
func (h *DocumentHandler) Usage(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	usage, err := h.documentService.Usage(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, usage)
}

// portalScope reports whether the caller is a portal user and, if so,
// the client they are pinned to. Writes a 403 when a portal user has no
// linked client.
func (h *DocumentHandler) portalScope(c *gin.Context) (uuid.UUID, bool) {
	if middleware.GetJWTRole(c) != middleware.RoleClient {
		return uuid.Nil, false
	}
	clientID, ok := portalClientID(c)
	if !ok {
		h.Forbidden(c, "No client linked to this account")
		return uuid.Nil, true
	}
	return clientID, true
}

func (h *DocumentHandler) documentTransition(c *gin.Context, op func(ctx context.Context, tenantID, documentID uuid.UUID) (*documentapp.DocumentResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	doc, err := op(c.Request.Context(), tenantID, documentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}
