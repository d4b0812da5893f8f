package handler

import (
	navigationapp "github.com/bettstax/backend/internal/application/navigation"
	"github.com/bettstax/backend/internal/domain/identity"
	"github.com/bettstax/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NavigationHandler handles sidebar badge count API endpoints
type NavigationHandler struct {
	BaseHandler
	navigationService *navigationapp.NavigationService
}

// NewNavigationHandler creates a new NavigationHandler
func NewNavigationHandler(navigationService *navigationapp.NavigationService) *NavigationHandler {
	return &NavigationHandler{
		navigationService: navigationService,
	}
}

// Counts godoc
// @ID           navigationCounts
// @Summary      Navigation badge counts
// @Description  Role-scoped counts for the sidebar: pending filings, upcoming deadlines and the rest
// @Tags         navigation
// @Produce      json
// @Success      200 {object} APIResponse[navigationapp.CountsResponse]
// @Security     BearerAuth
// @Router       /navigation/counts [get]
func (h *NavigationHandler) Counts(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	role := identity.Role(middleware.GetJWTRole(c))

	var clientID *uuid.UUID
	if id, ok := portalClientID(c); ok {
		clientID = &id
	}

	counts, err := h.navigationService.Counts(c.Request.Context(), tenantID, role, userID, clientID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, counts)
}
