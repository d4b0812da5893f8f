package handler

import (
	"context"
	"net/http"

	reportapp "github.com/bettstax/backend/internal/application/report"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportHandler handles report template and export API endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// CreateTemplate godoc
// @ID           createReportTemplate
// @Summary      Create a report template
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        request body reportapp.CreateTemplateRequest true "Template definition"
// @Success      201 {object} APIResponse[reportapp.TemplateResponse]
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /reports/templates [post]
func (h *ReportHandler) CreateTemplate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req reportapp.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	template, err := h.reportService.CreateTemplate(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, template)
}

// GetTemplate godoc
// @ID           getReportTemplate
// @Summary      Get report template by ID
// @Tags         reports
// @Produce      json
// @Param        id path string true "Template ID" format(uuid)
// @Success      200 {object} APIResponse[reportapp.TemplateResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /reports/templates/{id} [get]
func (h *ReportHandler) GetTemplate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID format")
		return
	}

	template, err := h.reportService.GetTemplate(c.Request.Context(), tenantID, templateID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, template)
}

// GetTemplateByCode godoc
// @ID           getReportTemplateByCode
// @Summary      Get report template by code
// @Tags         reports
// @Produce      json
// @Param        code path string true "Template code"
// @Success      200 {object} APIResponse[reportapp.TemplateResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /reports/templates/code/{code} [get]
func (h *ReportHandler) GetTemplateByCode(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Template code is required")
		return
	}

	template, err := h.reportService.GetTemplateByCode(c.Request.Context(), tenantID, code)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, template)
}

// ListTemplates godoc
// @ID           listReportTemplates
// @Summary      List report templates
// @Tags         reports
// @Produce      json
// @Param        type query string false "Filter by report type"
// @Param        active query bool false "Filter by active state"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]reportapp.TemplateResponse]
// @Security     BearerAuth
// @Router       /reports/templates [get]
func (h *ReportHandler) ListTemplates(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter reportapp.TemplateListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	templates, total, err := h.reportService.ListTemplates(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, templates, total, filter.Page, filter.PageSize)
}

// UpdateTemplate godoc
// @ID           updateReportTemplate
// @Summary      Update a report template
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        id path string true "Template ID" format(uuid)
// @Param        request body reportapp.UpdateTemplateRequest true "Template update"
// @Success      200 {object} APIResponse[reportapp.TemplateResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /reports/templates/{id} [put]
func (h *ReportHandler) UpdateTemplate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID format")
		return
	}

	var req reportapp.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	template, err := h.reportService.UpdateTemplate(c.Request.Context(), tenantID, templateID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, template)
}

// DeleteTemplate godoc
// @ID           deleteReportTemplate
// @Summary      Delete a report template
// @Tags         reports
// @Produce      json
// @Param        id path string true "Template ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /reports/templates/{id} [delete]
func (h *ReportHandler) DeleteTemplate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID format")
		return
	}

	if err := h.reportService.DeleteTemplate(c.Request.Context(), tenantID, templateID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ActivateTemplate godoc
// @ID           activateReportTemplate
// @Summary      Activate a report template
// @Tags         reports
// @Produce      json
// @Param        id path string true "Template ID" format(uuid)
// @Success      200 {object} APIResponse[reportapp.TemplateResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /reports/templates/{id}/activate [post]
func (h *ReportHandler) ActivateTemplate(c *gin.Context) {
	h.templateTransition(c, h.reportService.ActivateTemplate)
}

// DeactivateTemplate godoc
// @ID           deactivateReportTemplate
// @Summary      Deactivate a report template
// @Tags         reports
// @Produce      json
// @Param        id path string true "Template ID" format(uuid)
// @Success      200 {object} APIResponse[reportapp.TemplateResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /reports/templates/{id}/deactivate [post]
func (h *ReportHandler) DeactivateTemplate(c *gin.Context) {
	h.templateTransition(c, h.reportService.DeactivateTemplate)
}

// SetSchedule godoc
// @ID           setReportSchedule
// @Summary      Schedule a report template
// @Description  Run the template automatically every day or month, or clear the schedule
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        id path string true "Template ID" format(uuid)
// @Param        request body reportapp.SetScheduleRequest true "Schedule"
// @Success      200 {object} APIResponse[reportapp.TemplateResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /reports/templates/{id}/schedule [put]
func (h *ReportHandler) SetSchedule(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID format")
		return
	}

	var req reportapp.SetScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	template, err := h.reportService.SetSchedule(c.Request.Context(), tenantID, templateID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, template)
}

// Render godoc
// @ID           renderReport
// @Summary      Render a report
// @Description  Run a template over a date range and return the rows as JSON
// @Tags         reports
// @Produce      json
// @Param        id path string true "Template ID" format(uuid)
// @Param        from query string true "Range start" format(date-time)
// @Param        to query string true "Range end" format(date-time)
// @Param        client_id query string false "Restrict to a client" format(uuid)
// @Param        tax_type query string false "Restrict to a tax type"
// @Success      200 {object} APIResponse[reportapp.RenderedReportResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /reports/templates/{id}/render [get]
func (h *ReportHandler) Render(c *gin.Context) {
	tenantID, templateID, req, ok := h.renderParams(c)
	if !ok {
		return
	}

	report, err := h.reportService.Render(c.Request.Context(), tenantID, templateID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, report)
}

// ExportCSV godoc
// @ID           exportReportCsv
// @Summary      Export a report as CSV
// @Tags         reports
// @Produce      text/csv
// @Param        id path string true "Template ID" format(uuid)
// @Param        from query string true "Range start" format(date-time)
// @Param        to query string true "Range end" format(date-time)
// @Success      200 {file} file
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /reports/templates/{id}/export/csv [get]
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	tenantID, templateID, req, ok := h.renderParams(c)
	if !ok {
		return
	}

	data, filename, err := h.reportService.ExportCSV(c.Request.Context(), tenantID, templateID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Data(http.StatusOK, "text/csv", data)
}

// ExportPDF godoc
// @ID           exportReportPdf
// @Summary      Export a report as PDF
// @Tags         reports
// @Produce      application/pdf
// @Param        id path string true "Template ID" format(uuid)
// @Param        from query string true "Range start" format(date-time)
// @Param        to query string true "Range end" format(date-time)
// @Success      200 {file} file
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /reports/templates/{id}/export/pdf [get]
func (h *ReportHandler) ExportPDF(c *gin.Context) {
	tenantID, templateID, req, ok := h.renderParams(c)
	if !ok {
		return
	}

	data, filename, err := h.reportService.ExportPDF(c.Request.Context(), tenantID, templateID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Data(http.StatusOK, "application/pdf", data)
}

// ReportTypes godoc
// @ID           reportTypes
// @Summary      Available report types
// @Tags         reports
// @Produce      json
// @Success      200 {object} APIResponse[[]reportapp.ReportTypeResponse]
// @Security     BearerAuth
// @Router       /reports/types [get]
func (h *ReportHandler) ReportTypes(c *gin.Context) {
	h.Success(c, h.reportService.ReportTypes())
}

// SeedDefaults godoc
// @ID           seedReportTemplates
// @Summary      Seed system report templates
// @Tags         reports
// @Produce      json
// @Success      200 {object} APIResponse[CountData]
// @Security     BearerAuth
// @Router       /reports/templates/seed [post]
func (h *ReportHandler) SeedDefaults(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	count, err := h.reportService.SeedDefaults(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, CountData{Count: int64(count)})
}

func (h *ReportHandler) renderParams(c *gin.Context) (uuid.UUID, uuid.UUID, reportapp.RenderReportRequest, bool) {
	var zero reportapp.RenderReportRequest

	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return uuid.Nil, uuid.Nil, zero, false
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID format")
		return uuid.Nil, uuid.Nil, zero, false
	}

	var req reportapp.RenderReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return uuid.Nil, uuid.Nil, zero, false
	}

	return tenantID, templateID, req, true
}

func (h *ReportHandler) templateTransition(c *gin.Context, op func(ctx context.Context, tenantID, templateID uuid.UUID) (*reportapp.TemplateResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID format")
		return
	}

	template, err := op(c.Request.Context(), tenantID, templateID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, template)
}
