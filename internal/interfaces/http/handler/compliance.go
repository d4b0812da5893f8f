package handler

import (
	"context"

	complianceapp "github.com/bettstax/backend/internal/application/compliance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ComplianceHandler handles deadline rule and holiday calendar API endpoints
type ComplianceHandler struct {
	BaseHandler
	complianceService *complianceapp.ComplianceService
}

// NewComplianceHandler creates a new ComplianceHandler
func NewComplianceHandler(complianceService *complianceapp.ComplianceService) *ComplianceHandler {
	return &ComplianceHandler{
		complianceService: complianceService,
	}
}

// CreateRule godoc
// @ID           createDeadlineRule
// @Summary      Create a deadline rule
// @Description  Define how filing due dates are computed for a tax type
// @Tags         compliance
// @Accept       json
// @Produce      json
// @Param        request body complianceapp.CreateDeadlineRuleRequest true "Deadline rule"
// @Success      201 {object} APIResponse[complianceapp.DeadlineRuleResponse]
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /compliance/rules [post]
func (h *ComplianceHandler) CreateRule(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req complianceapp.CreateDeadlineRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rule, err := h.complianceService.CreateRule(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, rule)
}

// GetRule godoc
// @ID           getDeadlineRule
// @Summary      Get deadline rule by ID
// @Tags         compliance
// @Produce      json
// @Param        id path string true "Rule ID" format(uuid)
// @Success      200 {object} APIResponse[complianceapp.DeadlineRuleResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /compliance/rules/{id} [get]
func (h *ComplianceHandler) GetRule(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID format")
		return
	}

	rule, err := h.complianceService.GetRule(c.Request.Context(), tenantID, ruleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rule)
}

// GetRuleByTaxType godoc
// @ID           getDeadlineRuleByTaxType
// @Summary      Get the active rule for a tax type
// @Tags         compliance
// @Produce      json
// @Param        taxType path string true "Tax type"
// @Success      200 {object} APIResponse[complianceapp.DeadlineRuleResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /compliance/rules/tax-type/{taxType} [get]
func (h *ComplianceHandler) GetRuleByTaxType(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	taxType := c.Param("taxType")
	if taxType == "" {
		h.BadRequest(c, "Tax type is required")
		return
	}

	rule, err := h.complianceService.GetRuleByTaxType(c.Request.Context(), tenantID, taxType)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rule)
}

// ListRules godoc
// @ID           listDeadlineRules
// @Summary      List deadline rules
// @Tags         compliance
// @Produce      json
// @Param        tax_type query string false "Filter by tax type"
// @Param        active query bool false "Filter by active state"
// @Success      200 {object} APIResponse[[]complianceapp.DeadlineRuleResponse]
// @Security     BearerAuth
// @Router       /compliance/rules [get]
func (h *ComplianceHandler) ListRules(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter complianceapp.DeadlineRuleListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rules, total, err := h.complianceService.ListRules(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, rules, total, filter.Page, filter.PageSize)
}

// UpdateRule godoc
// @ID           updateDeadlineRule
// @Summary      Update a deadline rule
// @Tags         compliance
// @Accept       json
// @Produce      json
// @Param        id path string true "Rule ID" format(uuid)
// @Param        request body complianceapp.UpdateDeadlineRuleRequest true "Rule update"
// @Success      200 {object} APIResponse[complianceapp.DeadlineRuleResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /compliance/rules/{id} [put]
func (h *ComplianceHandler) UpdateRule(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID format")
		return
	}

	var req complianceapp.UpdateDeadlineRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rule, err := h.complianceService.UpdateRule(c.Request.Context(), tenantID, ruleID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rule)
}

// ActivateRule godoc
// @ID           activateDeadlineRule
// @Summary      Activate a deadline rule
// @Tags         compliance
// @Produce      json
// @Param        id path string true "Rule ID" format(uuid)
// @Success      200 {object} APIResponse[complianceapp.DeadlineRuleResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /compliance/rules/{id}/activate [post]
func (h *ComplianceHandler) ActivateRule(c *gin.Context) {
	h.ruleTransition(c, h.complianceService.ActivateRule)
}

// DeactivateRule godoc
// @ID           deactivateDeadlineRule
// @Summary      Deactivate a deadline rule
// @Tags         compliance
// @Produce      json
// @Param        id path string true "Rule ID" format(uuid)
// @Success      200 {object} APIResponse[complianceapp.DeadlineRuleResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /compliance/rules/{id}/deactivate [post]
func (h *ComplianceHandler) DeactivateRule(c *gin.Context) {
	h.ruleTransition(c, h.complianceService.DeactivateRule)
}

// DeleteRule godoc
// @ID           deleteDeadlineRule
// @Summary      Delete a deadline rule
// @Tags         compliance
// @Produce      json
// @Param        id path string true "Rule ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /compliance/rules/{id} [delete]
func (h *ComplianceHandler) DeleteRule(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID format")
		return
	}

	if err := h.complianceService.DeleteRule(c.Request.Context(), tenantID, ruleID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// PreviewDueDate godoc
// @ID           previewDueDate
// @Summary      Preview a due date
// @Description  Compute the due date a filing would get for a tax type and period end
// @Tags         compliance
// @Accept       json
// @Produce      json
// @Param        request body complianceapp.PreviewDueDateRequest true "Preview request"
// @Success      200 {object} APIResponse[complianceapp.PreviewDueDateResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /compliance/preview-due-date [post]
func (h *ComplianceHandler) PreviewDueDate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req complianceapp.PreviewDueDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	preview, err := h.complianceService.PreviewDueDate(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, preview)
}

// CreateHoliday godoc
// @ID           createHoliday
// @Summary      Add a public holiday
// @Tags         compliance
// @Accept       json
// @Produce      json
// @Param        request body complianceapp.CreateHolidayRequest true "Holiday"
// @Success      201 {object} APIResponse[complianceapp.HolidayResponse]
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /compliance/holidays [post]
func (h *ComplianceHandler) CreateHoliday(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req complianceapp.CreateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	holiday, err := h.complianceService.CreateHoliday(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, holiday)
}

// GetHoliday godoc
// @ID           getHoliday
// @Summary      Get holiday by ID
// @Tags         compliance
// @Produce      json
// @Param        id path string true "Holiday ID" format(uuid)
// @Success      200 {object} APIResponse[complianceapp.HolidayResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /compliance/holidays/{id} [get]
func (h *ComplianceHandler) GetHoliday(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	holidayID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid holiday ID format")
		return
	}

	holiday, err := h.complianceService.GetHoliday(c.Request.Context(), tenantID, holidayID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, holiday)
}

// ListHolidays godoc
// @ID           listHolidays
// @Summary      List holidays
// @Tags         compliance
// @Produce      json
// @Param        year query int false "Filter by year"
// @Param        active query bool false "Filter by active state"
// @Success      200 {object} APIResponse[[]complianceapp.HolidayResponse]
// @Security     BearerAuth
// @Router       /compliance/holidays [get]
func (h *ComplianceHandler) ListHolidays(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter complianceapp.HolidayListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	holidays, total, err := h.complianceService.ListHolidays(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, holidays, total, filter.Page, filter.PageSize)
}

// UpdateHoliday godoc
// @ID           updateHoliday
// @Summary      Update a holiday
// @Tags         compliance
// @Accept       json
// @Produce      json
// @Param        id path string true "Holiday ID" format(uuid)
// @Param        request body complianceapp.UpdateHolidayRequest true "Holiday update"
// @Success      200 {object} APIResponse[complianceapp.HolidayResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /compliance/holidays/{id} [put]
func (h *ComplianceHandler) UpdateHoliday(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	holidayID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid holiday ID format")
		return
	}

	var req complianceapp.UpdateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	holiday, err := h.complianceService.UpdateHoliday(c.Request.Context(), tenantID, holidayID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, holiday)
}

// ActivateHoliday godoc
// @ID           activateHoliday
// @Summary      Activate a holiday
// @Tags         compliance
// @Produce      json
// @Param        id path string true "Holiday ID" format(uuid)
// @Success      200 {object} APIResponse[complianceapp.HolidayResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /compliance/holidays/{id}/activate [post]
func (h *ComplianceHandler) ActivateHoliday(c *gin.Context) {
	h.holidayTransition(c, h.complianceService.ActivateHoliday)
}

// DeactivateHoliday godoc
// @ID           deactivateHoliday
// @Summary      Deactivate a holiday
// @Tags         compliance
// @Produce      json
// @Param        id path string true "Holiday ID" format(uuid)
// @Success      200 {object} APIResponse[complianceapp.HolidayResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /compliance/holidays/{id}/deactivate [post]
func (h *ComplianceHandler) DeactivateHoliday(c *gin.Context) {
	h.holidayTransition(c, h.complianceService.DeactivateHoliday)
}

// DeleteHoliday godoc
// @ID           deleteHoliday
// @Summary      Delete a holiday
// @Tags         compliance
// @Produce      json
// @Param        id path string true "Holiday ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /compliance/holidays/{id} [delete]
func (h *ComplianceHandler) DeleteHoliday(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	holidayID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid holiday ID format")
		return
	}

	if err := h.complianceService.DeleteHoliday(c.Request.Context(), tenantID, holidayID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// SeedDefaults godoc
// @ID           seedComplianceDefaults
// @Summary      Seed default rules and holidays
// @Description  Install the statutory deadline rules and the Sierra Leone holiday calendar
// @Tags         compliance
// @Accept       json
// @Produce      json
// @Param        request body complianceapp.SeedDefaultsRequest true "Seed options"
// @Success      200 {object} APIResponse[complianceapp.SeedDefaultsResponse]
// @Security     BearerAuth
// @Router       /compliance/seed [post]
func (h *ComplianceHandler) SeedDefaults(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req complianceapp.SeedDefaultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.complianceService.SeedDefaults(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

func (h *ComplianceHandler) ruleTransition(c *gin.Context, op func(ctx context.Context, tenantID, ruleID uuid.UUID) (*complianceapp.DeadlineRuleResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID format")
		return
	}

	rule, err := op(c.Request.Context(), tenantID, ruleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rule)
}

func (h *ComplianceHandler) holidayTransition(c *gin.Context, op func(ctx context.Context, tenantID, holidayID uuid.UUID) (*complianceapp.HolidayResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	holidayID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid holiday ID format")
		return
	}

	holiday, err := op(c.Request.Context(), tenantID, holidayID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, holiday)
}
