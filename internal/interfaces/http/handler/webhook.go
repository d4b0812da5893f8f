package handler

import (
	"context"

	webhookapp "github.com/bettstax/backend/internal/application/webhook"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WebhookHandler handles webhook registration and delivery API endpoints
type WebhookHandler struct {
	BaseHandler
	webhookService *webhookapp.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhookService *webhookapp.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// Register godoc
// @ID           registerWebhook
// @Summary      Register a webhook
// @Description  Register an endpoint to receive signed event notifications
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        request body webhookapp.CreateWebhookRequest true "Webhook registration"
// @Success      201 {object} APIResponse[webhookapp.WebhookResponse]
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /webhooks [post]
func (h *WebhookHandler) Register(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req webhookapp.CreateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	webhook, err := h.webhookService.Register(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, webhook)
}

// Get godoc
// @ID           getWebhook
// @Summary      Get webhook by ID
// @Tags         webhooks
// @Produce      json
// @Param        id path string true "Webhook ID" format(uuid)
// @Success      200 {object} APIResponse[webhookapp.WebhookResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /webhooks/{id} [get]
func (h *WebhookHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	webhookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid webhook ID format")
		return
	}

	webhook, err := h.webhookService.Get(c.Request.Context(), tenantID, webhookID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, webhook)
}

// List godoc
// @ID           listWebhooks
// @Summary      List webhooks
// @Tags         webhooks
// @Produce      json
// @Param        search query string false "Search by name or URL"
// @Param        active query bool false "Filter by active state"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]webhookapp.WebhookResponse]
// @Security     BearerAuth
// @Router       /webhooks [get]
func (h *WebhookHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter webhookapp.WebhookListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	webhooks, total, err := h.webhookService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, webhooks, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateWebhook
// @Summary      Update a webhook
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        id path string true "Webhook ID" format(uuid)
// @Param        request body webhookapp.UpdateWebhookRequest true "Webhook update"
// @Success      200 {object} APIResponse[webhookapp.WebhookResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /webhooks/{id} [put]
func (h *WebhookHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	webhookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid webhook ID format")
		return
	}

	var req webhookapp.UpdateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	webhook, err := h.webhookService.Update(c.Request.Context(), tenantID, webhookID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, webhook)
}

// RotateSecret godoc
// @ID           rotateWebhookSecret
// @Summary      Rotate the signing secret
// @Description  Generate a new HMAC signing secret. The secret is only returned once.
// @Tags         webhooks
// @Produce      json
// @Param        id path string true "Webhook ID" format(uuid)
// @Success      200 {object} APIResponse[webhookapp.SecretResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /webhooks/{id}/rotate-secret [post]
func (h *WebhookHandler) RotateSecret(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	webhookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid webhook ID format")
		return
	}

	secret, err := h.webhookService.RotateSecret(c.Request.Context(), tenantID, webhookID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, secret)
}

// Activate godoc
// @ID           activateWebhook
// @Summary      Activate a webhook
// @Tags         webhooks
// @Produce      json
// @Param        id path string true "Webhook ID" format(uuid)
// @Success      200 {object} APIResponse[webhookapp.WebhookResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /webhooks/{id}/activate [post]
func (h *WebhookHandler) Activate(c *gin.Context) {
	h.webhookTransition(c, h.webhookService.Activate)
}

// Deactivate godoc
// @ID           deactivateWebhook
// @Summary      Deactivate a webhook
// @Tags         webhooks
// @Produce      json
// @Param        id path string true "Webhook ID" format(uuid)
// @Success      200 {object} APIResponse[webhookapp.WebhookResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /webhooks/{id}/deactivate [post]
func (h *WebhookHandler) Deactivate(c *gin.Context) {
	h.webhookTransition(c, h.webhookService.Deactivate)
}

// Delete godoc
// @ID           deleteWebhook
// @Summary      Delete a webhook
// @Tags         webhooks
// @Produce      json
// @Param        id path string true "Webhook ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /webhooks/{id} [delete]
func (h *WebhookHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	webhookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid webhook ID format")
		return
	}

	if err := h.webhookService.Delete(c.Request.Context(), tenantID, webhookID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// TestEndpoint godoc
// @ID           testWebhookEndpoint
// @Summary      Send a test delivery
// @Description  Deliver a signed ping event to the registered URL and report the result
// @Tags         webhooks
// @Produce      json
// @Param        id path string true "Webhook ID" format(uuid)
// @Success      200 {object} APIResponse[webhookapp.TestResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /webhooks/{id}/test [post]
func (h *WebhookHandler) TestEndpoint(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	webhookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid webhook ID format")
		return
	}

	result, err := h.webhookService.TestEndpoint(c.Request.Context(), tenantID, webhookID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Export godoc
// @ID           exportWebhooks
// @Summary      Export webhook configuration
// @Description  Export all webhook registrations without their secrets
// @Tags         webhooks
// @Produce      json
// @Success      200 {object} APIResponse[webhookapp.ExportResponse]
// @Security     BearerAuth
// @Router       /webhooks/export [get]
func (h *WebhookHandler) Export(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	export, err := h.webhookService.Export(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, export)
}

// Import godoc
// @ID           importWebhooks
// @Summary      Import webhook configuration
// @Description  Recreate webhook registrations from an export. Fresh secrets are generated.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        request body webhookapp.ImportWebhooksRequest true "Webhook export payload"
// @Success      200 {object} APIResponse[webhookapp.ImportResultResponse]
// @Security     BearerAuth
// @Router       /webhooks/import [post]
func (h *WebhookHandler) Import(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req webhookapp.ImportWebhooksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.webhookService.Import(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Stats godoc
// @ID           webhookStats
// @Summary      Delivery statistics
// @Tags         webhooks
// @Produce      json
// @Param        id path string true "Webhook ID" format(uuid)
// @Success      200 {object} APIResponse[webhookapp.DeliveryStatsResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /webhooks/{id}/stats [get]
func (h *WebhookHandler) Stats(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	webhookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid webhook ID format")
		return
	}

	stats, err := h.webhookService.Stats(c.Request.Context(), tenantID, webhookID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}

// ListDeliveries godoc
// @ID           listWebhookDeliveries
// @Summary      List deliveries for a webhook
// @Tags         webhooks
// @Produce      json
// @Param        id path string true "Webhook ID" format(uuid)
// @Param        status query string false "Filter by delivery status"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]webhookapp.DeliveryResponse]
// @Security     BearerAuth
// @Router       /webhooks/{id}/deliveries [get]
func (h *WebhookHandler) ListDeliveries(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	webhookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid webhook ID format")
		return
	}

	var filter webhookapp.DeliveryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	deliveries, total, err := h.webhookService.ListDeliveries(c.Request.Context(), tenantID, webhookID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, deliveries, total, filter.Page, filter.PageSize)
}

// ListDeadLetters godoc
// @ID           listWebhookDeadLetters
// @Summary      List dead-lettered deliveries
// @Description  Deliveries that exhausted their retries across all webhooks
// @Tags         webhooks
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]webhookapp.DeliveryResponse]
// @Security     BearerAuth
// @Router       /webhooks/dead-letters [get]
func (h *WebhookHandler) ListDeadLetters(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter webhookapp.DeliveryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	deliveries, err := h.webhookService.ListDeadLetters(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, deliveries)
}

// Redeliver godoc
// @ID           redeliverWebhookDelivery
// @Summary      Requeue a dead delivery
// @Tags         webhooks
// @Produce      json
// @Param        id path string true "Delivery ID" format(uuid)
// @Success      200 {object} APIResponse[webhookapp.DeliveryResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /webhooks/deliveries/{id}/redeliver [post]
func (h *WebhookHandler) Redeliver(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid delivery ID format")
		return
	}

	delivery, err := h.webhookService.Redeliver(c.Request.Context(), tenantID, deliveryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, delivery)
}

func (h *WebhookHandler) webhookTransition(c *gin.Context, op func(ctx context.Context, tenantID, webhookID uuid.UUID) (*webhookapp.WebhookResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	webhookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid webhook ID format")
		return
	}

	webhook, err := op(c.Request.Context(), tenantID, webhookID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, webhook)
}
