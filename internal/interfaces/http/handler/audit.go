package handler

import (
	"time"

	auditapp "github.com/bettstax/backend/internal/application/audit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditHandler handles audit trail API endpoints
type AuditHandler struct {
	BaseHandler
	auditService *auditapp.AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditService *auditapp.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
	}
}

// GetEntry godoc
// @ID           getAuditEntry
// @Summary      Get audit entry by ID
// @Tags         audit
// @Produce      json
// @Param        id path string true "Entry ID" format(uuid)
// @Success      200 {object} APIResponse[auditapp.EntryResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /audit/{id} [get]
func (h *AuditHandler) GetEntry(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}

	entry, err := h.auditService.GetEntry(c.Request.Context(), tenantID, entryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entry)
}

// Search godoc
// @ID           searchAuditEntries
// @Summary      Search the audit trail
// @Tags         audit
// @Produce      json
// @Param        actor_id query string false "Filter by actor" format(uuid)
// @Param        action query string false "Filter by action"
// @Param        entity_type query string false "Filter by entity type"
// @Param        entity_id query string false "Filter by entity" format(uuid)
// @Param        from query string false "Range start" format(date-time)
// @Param        to query string false "Range end" format(date-time)
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]auditapp.EntryResponse]
// @Security     BearerAuth
// @Router       /audit [get]
func (h *AuditHandler) Search(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter auditapp.AuditListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entries, total, err := h.auditService.Search(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}

// EntityHistory godoc
// @ID           auditEntityHistory
// @Summary      Entity change history
// @Description  Chronological audit entries for a single entity
// @Tags         audit
// @Produce      json
// @Param        entityType path string true "Entity type"
// @Param        entityId path string true "Entity ID" format(uuid)
// @Param        limit query int false "Maximum entries" default(50)
// @Success      200 {object} APIResponse[[]auditapp.EntryResponse]
// @Security     BearerAuth
// @Router       /audit/history/{entityType}/{entityId} [get]
func (h *AuditHandler) EntityHistory(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	entityType := c.Param("entityType")
	if entityType == "" {
		h.BadRequest(c, "Entity type is required")
		return
	}

	entityID, err := uuid.Parse(c.Param("entityId"))
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		parsed, err := parsePositiveInt(v)
		if err != nil {
			h.BadRequest(c, "Invalid limit value")
			return
		}
		limit = parsed
	}

	entries, err := h.auditService.EntityHistory(c.Request.Context(), tenantID, entityType, entityID, limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entries)
}

// ActivityCount godoc
// @ID           auditActivityCount
// @Summary      Recent activity count
// @Description  Number of audit entries recorded within the last N hours (default 24)
// @Tags         audit
// @Produce      json
// @Param        hours query int false "Window in hours" default(24)
// @Success      200 {object} APIResponse[CountData]
// @Security     BearerAuth
// @Router       /audit/activity [get]
func (h *AuditHandler) ActivityCount(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	hours := 24
	if v := c.Query("hours"); v != "" {
		parsed, err := parsePositiveInt(v)
		if err != nil {
			h.BadRequest(c, "Invalid hours value")
			return
		}
		hours = parsed
	}

	count, err := h.auditService.ActivityCount(c.Request.Context(), tenantID, time.Duration(hours)*time.Hour)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, CountData{Count: count})
}

// Purge godoc
// @ID           purgeAuditEntries
// @Summary      Purge old audit entries
// @Description  Delete audit entries older than the retention window
// @Tags         audit
// @Accept       json
// @Produce      json
// @Param        request body auditapp.PurgeRequest true "Retention window"
// @Success      200 {object} APIResponse[auditapp.PurgeResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /audit/purge [post]
func (h *AuditHandler) Purge(c *gin.Context) {
	var req auditapp.PurgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.auditService.Purge(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
