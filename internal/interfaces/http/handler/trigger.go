package handler

import (
	"context"

	workflowapp "github.com/bettstax/backend/internal/application/workflow"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TriggerHandler handles workflow trigger API endpoints
type TriggerHandler struct {
	BaseHandler
	triggerService *workflowapp.TriggerService
}

// NewTriggerHandler creates a new TriggerHandler
func NewTriggerHandler(triggerService *workflowapp.TriggerService) *TriggerHandler {
	return &TriggerHandler{
		triggerService: triggerService,
	}
}

// SetTriggerPriorityRequest represents a request to reorder a trigger
// @Description Request body for setting trigger priority
type SetTriggerPriorityRequest struct {
	Priority int `json:"priority" binding:"gte=-1000,lte=1000"`
}

// Create godoc
// @ID           createTrigger
// @Summary      Create a workflow trigger
// @Description  Define an event-condition-action rule that fires on domain events
// @Tags         triggers
// @Accept       json
// @Produce      json
// @Param        request body workflowapp.CreateTriggerRequest true "Trigger definition"
// @Success      201 {object} APIResponse[workflowapp.TriggerResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /triggers [post]
func (h *TriggerHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req workflowapp.CreateTriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	trigger, err := h.triggerService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, trigger)
}

// Get godoc
// @ID           getTrigger
// @Summary      Get trigger by ID
// @Tags         triggers
// @Produce      json
// @Param        id path string true "Trigger ID" format(uuid)
// @Success      200 {object} APIResponse[workflowapp.TriggerResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /triggers/{id} [get]
func (h *TriggerHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	triggerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid trigger ID format")
		return
	}

	trigger, err := h.triggerService.Get(c.Request.Context(), tenantID, triggerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, trigger)
}

// List godoc
// @ID           listTriggers
// @Summary      List triggers
// @Tags         triggers
// @Produce      json
// @Param        event_type query string false "Filter by event type"
// @Param        active query bool false "Filter by active state"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]workflowapp.TriggerResponse]
// @Security     BearerAuth
// @Router       /triggers [get]
func (h *TriggerHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter workflowapp.TriggerListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	triggers, total, err := h.triggerService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, triggers, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateTrigger
// @Summary      Update a trigger
// @Tags         triggers
// @Accept       json
// @Produce      json
// @Param        id path string true "Trigger ID" format(uuid)
// @Param        request body workflowapp.UpdateTriggerRequest true "Trigger update"
// @Success      200 {object} APIResponse[workflowapp.TriggerResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /triggers/{id} [put]
func (h *TriggerHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	triggerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid trigger ID format")
		return
	}

	var req workflowapp.UpdateTriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	trigger, err := h.triggerService.Update(c.Request.Context(), tenantID, triggerID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, trigger)
}

// SetPriority godoc
// @ID           setTriggerPriority
// @Summary      Set trigger priority
// @Description  Higher priority triggers fire first for the same event
// @Tags         triggers
// @Accept       json
// @Produce      json
// @Param        id path string true "Trigger ID" format(uuid)
// @Param        request body SetTriggerPriorityRequest true "Priority"
// @Success      200 {object} APIResponse[workflowapp.TriggerResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /triggers/{id}/priority [put]
func (h *TriggerHandler) SetPriority(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	triggerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid trigger ID format")
		return
	}

	var req SetTriggerPriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	trigger, err := h.triggerService.SetPriority(c.Request.Context(), tenantID, triggerID, req.Priority)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, trigger)
}

// Activate godoc
// @ID           activateTrigger
// @Summary      Activate a trigger
// @Tags         triggers
// @Produce      json
// @Param        id path string true "Trigger ID" format(uuid)
// @Success      200 {object} APIResponse[workflowapp.TriggerResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /triggers/{id}/activate [post]
func (h *TriggerHandler) Activate(c *gin.Context) {
	h.triggerTransition(c, h.triggerService.Activate)
}

// Deactivate godoc
// @ID           deactivateTrigger
// @Summary      Deactivate a trigger
// @Tags         triggers
// @Produce      json
// @Param        id path string true "Trigger ID" format(uuid)
// @Success      200 {object} APIResponse[workflowapp.TriggerResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /triggers/{id}/deactivate [post]
func (h *TriggerHandler) Deactivate(c *gin.Context) {
	h.triggerTransition(c, h.triggerService.Deactivate)
}

// Delete godoc
// @ID           deleteTrigger
// @Summary      Delete a trigger
// @Tags         triggers
// @Produce      json
// @Param        id path string true "Trigger ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /triggers/{id} [delete]
func (h *TriggerHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	triggerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid trigger ID format")
		return
	}

	if err := h.triggerService.Delete(c.Request.Context(), tenantID, triggerID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Validate godoc
// @ID           validateTrigger
// @Summary      Validate a trigger definition
// @Description  Check conditions and actions against the event's entity schema without saving
// @Tags         triggers
// @Accept       json
// @Produce      json
// @Param        request body workflowapp.ValidateTriggerRequest true "Trigger definition to validate"
// @Success      200 {object} APIResponse[workflowapp.ValidationResponse]
// @Security     BearerAuth
// @Router       /triggers/validate [post]
func (h *TriggerHandler) Validate(c *gin.Context) {
	var req workflowapp.ValidateTriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.triggerService.Validate(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Test godoc
// @ID           testTrigger
// @Summary      Dry-run a trigger
// @Description  Evaluate the trigger's conditions against a sample payload without executing actions
// @Tags         triggers
// @Accept       json
// @Produce      json
// @Param        id path string true "Trigger ID" format(uuid)
// @Param        request body workflowapp.TestTriggerRequest true "Sample event payload"
// @Success      200 {object} APIResponse[workflowapp.TestTriggerResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /triggers/{id}/test [post]
func (h *TriggerHandler) Test(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	triggerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid trigger ID format")
		return
	}

	var req workflowapp.TestTriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.triggerService.Test(c.Request.Context(), tenantID, triggerID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

func (h *TriggerHandler) triggerTransition(c *gin.Context, op func(ctx context.Context, tenantID, triggerID uuid.UUID) (*workflowapp.TriggerResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	triggerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid trigger ID format")
		return
	}

	trigger, err := op(c.Request.Context(), tenantID, triggerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, trigger)
}
