package handler

import (
	schemaapp "github.com/bettstax/backend/internal/application/schema"
	"github.com/gin-gonic/gin"
)

// SchemaHandler handles entity schema reflection API endpoints.
// The trigger builder UI uses these to offer field and operator pickers.
type SchemaHandler struct {
	BaseHandler
	schemaService *schemaapp.SchemaService
}

// NewSchemaHandler creates a new SchemaHandler
func NewSchemaHandler(schemaService *schemaapp.SchemaService) *SchemaHandler {
	return &SchemaHandler{
		schemaService: schemaService,
	}
}

// ListEntityTypes godoc
// @ID           listEntityTypes
// @Summary      List entity types
// @Description  Entity types that emit events, with their event names
// @Tags         schema
// @Produce      json
// @Success      200 {object} APIResponse[[]schemaapp.EntityTypeResponse]
// @Security     BearerAuth
// @Router       /schema/entities [get]
func (h *SchemaHandler) ListEntityTypes(c *gin.Context) {
	h.Success(c, h.schemaService.ListEntityTypes(c.Request.Context()))
}

// GetSchema godoc
// @ID           getEntitySchema
// @Summary      Get an entity schema
// @Description  Field names, types and allowed operators for an entity type
// @Tags         schema
// @Produce      json
// @Param        entityType path string true "Entity type"
// @Success      200 {object} APIResponse[schemaapp.EntitySchemaResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /schema/entities/{entityType} [get]
func (h *SchemaHandler) GetSchema(c *gin.Context) {
	entityType := c.Param("entityType")
	if entityType == "" {
		h.BadRequest(c, "Entity type is required")
		return
	}

	schema, err := h.schemaService.GetSchema(c.Request.Context(), entityType)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, schema)
}

// GetSchemaForEvent godoc
// @ID           getSchemaForEvent
// @Summary      Get the schema behind an event
// @Description  Resolve an event type to its entity's payload schema
// @Tags         schema
// @Produce      json
// @Param        eventType path string true "Event type"
// @Success      200 {object} APIResponse[schemaapp.EntitySchemaResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /schema/events/{eventType} [get]
func (h *SchemaHandler) GetSchemaForEvent(c *gin.Context) {
	eventType := c.Param("eventType")
	if eventType == "" {
		h.BadRequest(c, "Event type is required")
		return
	}

	schema, err := h.schemaService.GetSchemaForEvent(c.Request.Context(), eventType)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, schema)
}

// Operators godoc
// @ID           listSchemaOperators
// @Summary      List condition operators
// @Description  Operators available per field type in trigger conditions
// @Tags         schema
// @Produce      json
// @Success      200 {object} APIResponse[[]schemaapp.OperatorSetResponse]
// @Security     BearerAuth
// @Router       /schema/operators [get]
func (h *SchemaHandler) Operators(c *gin.Context) {
	h.Success(c, h.schemaService.Operators(c.Request.Context()))
}
