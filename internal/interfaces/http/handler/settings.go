package handler

import (
	settingsapp "github.com/bettstax/backend/internal/application/settings"
	"github.com/gin-gonic/gin"
)

// SettingsHandler handles firm settings API endpoints
type SettingsHandler struct {
	BaseHandler
	settingsService *settingsapp.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *settingsapp.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}

// Get godoc
// @ID           getSetting
// @Summary      Get a setting
// @Tags         settings
// @Produce      json
// @Param        key path string true "Setting key"
// @Success      200 {object} APIResponse[settingsapp.SettingResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /settings/{key} [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	key := c.Param("key")
	if key == "" {
		h.BadRequest(c, "Setting key is required")
		return
	}

	setting, err := h.settingsService.Get(c.Request.Context(), tenantID, key)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, setting)
}

// List godoc
// @ID           listSettings
// @Summary      List settings
// @Tags         settings
// @Produce      json
// @Param        category query string false "Filter by category"
// @Success      200 {object} APIResponse[[]settingsapp.SettingResponse]
// @Security     BearerAuth
// @Router       /settings [get]
func (h *SettingsHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter settingsapp.SettingListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	settings, err := h.settingsService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, settings)
}

// Upsert godoc
// @ID           upsertSetting
// @Summary      Create or update a setting
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request body settingsapp.UpsertSettingRequest true "Setting"
// @Success      200 {object} APIResponse[settingsapp.SettingResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /settings [put]
func (h *SettingsHandler) Upsert(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req settingsapp.UpsertSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	setting, err := h.settingsService.Upsert(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, setting)
}

// Delete godoc
// @ID           deleteSetting
// @Summary      Delete a setting
// @Description  Remove an override, restoring the built-in default
// @Tags         settings
// @Produce      json
// @Param        key path string true "Setting key"
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /settings/{key} [delete]
func (h *SettingsHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	key := c.Param("key")
	if key == "" {
		h.BadRequest(c, "Setting key is required")
		return
	}

	if err := h.settingsService.Delete(c.Request.Context(), tenantID, key); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// SeedDefaults godoc
// @ID           seedSettings
// @Summary      Seed default settings
// @Tags         settings
// @Produce      json
// @Success      200 {object} APIResponse[CountData]
// @Security     BearerAuth
// @Router       /settings/seed [post]
func (h *SettingsHandler) SeedDefaults(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	count, err := h.settingsService.SeedDefaults(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, CountData{Count: int64(count)})
}
