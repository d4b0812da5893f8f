package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bettstax/backend/internal/domain/report"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PDFRenderer turns report HTML into a PDF document. Implemented by the
// chromedp-backed renderer in infrastructure/pdf.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html, title string) ([]byte, error)
}

// ReportService manages report templates and runs the aggregation queries
// behind each report type
type ReportService struct {
	templateRepo report.TemplateRepository
	queryRepo    report.QueryRepository
	renderer     PDFRenderer
}

// NewReportService creates a new ReportService. The renderer may be nil
// when PDF output is not configured.
func NewReportService(
	templateRepo report.TemplateRepository,
	queryRepo report.QueryRepository,
	renderer PDFRenderer,
) *ReportService {
	return &ReportService{
		templateRepo: templateRepo,
		queryRepo:    queryRepo,
		renderer:     renderer,
	}
}

// ============================================================================
// Template Operations
// ============================================================================

// CreateTemplate creates a user-defined report template
func (s *ReportService) CreateTemplate(ctx context.Context, tenantID uuid.UUID, req CreateTemplateRequest) (*TemplateResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))

	existing, err := s.templateRepo.FindByCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("TEMPLATE_EXISTS", "A template with this code already exists")
	}

	template, err := report.NewReportTemplate(tenantID, code, req.Name, report.ReportType(req.Type), toDomainDefinition(req.Definition), toDomainFormats(req.Formats))
	if err != nil {
		return nil, err
	}
	template.Description = req.Description

	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, err
	}

	response := ToTemplateResponse(template)
	return &response, nil
}

// GetTemplate retrieves a template by ID
func (s *ReportService) GetTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}

	response := ToTemplateResponse(template)
	return &response, nil
}

// GetTemplateByCode retrieves a template by its code
func (s *ReportService) GetTemplateByCode(ctx context.Context, tenantID uuid.UUID, code string) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByCode(ctx, tenantID, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, shared.ErrNotFound
	}

	response := ToTemplateResponse(template)
	return &response, nil
}

// ListTemplates retrieves templates with filtering
func (s *ReportService) ListTemplates(ctx context.Context, tenantID uuid.UUID, filter TemplateListFilter) ([]TemplateResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}

	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	templates, err := s.templateRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.templateRepo.Count(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}

	return ToTemplateResponses(templates), count, nil
}

// UpdateTemplate changes a user-defined template. System templates reject
// the update in the domain layer.
func (s *ReportService) UpdateTemplate(ctx context.Context, tenantID, templateID uuid.UUID, req UpdateTemplateRequest) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}

	name := template.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := template.Description
	if req.Description != nil {
		description = *req.Description
	}
	def, err := template.DefinitionValue()
	if err != nil {
		return nil, err
	}
	if req.Definition != nil {
		def = toDomainDefinition(*req.Definition)
	}
	formats := toDomainFormats(template.Formats)
	if req.Formats != nil {
		formats = toDomainFormats(req.Formats)
	}

	if err := template.Update(name, description, def, formats); err != nil {
		return nil, err
	}

	if err := s.templateRepo.SaveWithLock(ctx, template); err != nil {
		return nil, err
	}

	response := ToTemplateResponse(template)
	return &response, nil
}

// DeleteTemplate removes a user-defined template
func (s *ReportService) DeleteTemplate(ctx context.Context, tenantID, templateID uuid.UUID) error {
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return err
	}
	if !template.CanDelete() {
		return shared.NewDomainError("SYSTEM_TEMPLATE_IMMUTABLE", "System templates cannot be deleted")
	}
	return s.templateRepo.Delete(ctx, tenantID, templateID)
}

// SeedDefaults installs the system templates for a tenant, skipping codes
// that already exist. Returns the number created.
func (s *ReportService) SeedDefaults(ctx context.Context, tenantID uuid.UUID) (int, error) {
	created := 0
	for _, template := range report.DefaultTemplates(tenantID) {
		existing, err := s.templateRepo.FindByCode(ctx, tenantID, template.Code)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}
		if err := s.templateRepo.Save(ctx, template); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// ActivateTemplate enables a template
func (s *ReportService) ActivateTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}

	template.Activate()

	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, err
	}

	response := ToTemplateResponse(template)
	return &response, nil
}

// DeactivateTemplate disables a template. Deactivated templates cannot be
// rendered and are skipped by the scheduler.
func (s *ReportService) DeactivateTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}

	template.Deactivate()

	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, err
	}

	response := ToTemplateResponse(template)
	return &response, nil
}

// SetSchedule configures automatic generation for a template
func (s *ReportService) SetSchedule(ctx context.Context, tenantID, templateID uuid.UUID, req SetScheduleRequest) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}

	if err := template.SetSchedule(report.Schedule(req.Schedule)); err != nil {
		return nil, err
	}

	if err := s.templateRepo.SaveWithLock(ctx, template); err != nil {
		return nil, err
	}

	response := ToTemplateResponse(template)
	return &response, nil
}

// ============================================================================
// Rendering and Export
// ============================================================================

// Render runs the template's aggregation query and applies its definition
func (s *ReportService) Render(ctx context.Context, tenantID, templateID uuid.UUID, req RenderReportRequest) (*RenderedReportResponse, error) {
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, tenantID, template, req)
}

// ExportCSV renders the template and encodes the rows as CSV. The returned
// filename carries the template code and period.
func (s *ReportService) ExportCSV(ctx context.Context, tenantID, templateID uuid.UUID, req RenderReportRequest) ([]byte, string, error) {
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return nil, "", err
	}
	if !template.SupportsFormat(report.FormatCSV) {
		return nil, "", shared.NewDomainError("FORMAT_NOT_ALLOWED", "Template does not allow CSV output")
	}

	rendered, err := s.render(ctx, tenantID, template, req)
	if err != nil {
		return nil, "", err
	}

	data, err := encodeCSV(rendered)
	if err != nil {
		return nil, "", err
	}

	return data, exportFilename(template.Code, req, "csv"), nil
}

// ExportPDF renders the template as an HTML table and converts it to PDF
func (s *ReportService) ExportPDF(ctx context.Context, tenantID, templateID uuid.UUID, req RenderReportRequest) ([]byte, string, error) {
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return nil, "", err
	}
	if !template.SupportsFormat(report.FormatPDF) {
		return nil, "", shared.NewDomainError("FORMAT_NOT_ALLOWED", "Template does not allow PDF output")
	}
	if s.renderer == nil {
		return nil, "", shared.NewDomainError("PDF_UNAVAILABLE", "PDF rendering is not configured")
	}

	rendered, err := s.render(ctx, tenantID, template, req)
	if err != nil {
		return nil, "", err
	}

	html, err := buildReportHTML(rendered)
	if err != nil {
		return nil, "", err
	}

	data, err := s.renderer.RenderHTML(ctx, html, rendered.Title)
	if err != nil {
		return nil, "", shared.NewDomainError("PDF_RENDER_FAILED", "Failed to render PDF: "+err.Error())
	}

	return data, exportFilename(template.Code, req, "pdf"), nil
}

// ReportTypes lists the available report types with their default columns
func (s *ReportService) ReportTypes() []ReportTypeResponse {
	return reportTypeCatalog()
}

// ============================================================================
// Scheduled Generation
// ============================================================================

// RunScheduled generates every active template carrying the given schedule
// across all tenants and stamps the run time. Called by the scheduler with
// the period derived from now: the previous day for daily templates, the
// previous calendar month for monthly ones.
func (s *ReportService) RunScheduled(ctx context.Context, schedule string, now time.Time) (*ScheduledRunResponse, error) {
	templates, err := s.templateRepo.FindScheduled(ctx, report.Schedule(schedule))
	if err != nil {
		return nil, err
	}

	from, to := schedulePeriod(report.Schedule(schedule), now)
	result := &ScheduledRunResponse{}

	for i := range templates {
		template := &templates[i]
		req := RenderReportRequest{From: from, To: to}

		if _, err := s.render(ctx, template.TenantID, template, req); err != nil {
			result.Failed++
			slog.WarnContext(ctx, "scheduled report generation failed",
				"template_id", template.ID,
				"template_code", template.Code,
				"error", err)
			continue
		}

		template.RecordRun(now)
		if err := s.templateRepo.Save(ctx, template); err != nil {
			slog.WarnContext(ctx, "failed to stamp report run",
				"template_id", template.ID,
				"error", err)
		}
		result.Generated++
	}

	return result, nil
}

// schedulePeriod derives the reporting window for a scheduler pass
func schedulePeriod(schedule report.Schedule, now time.Time) (time.Time, time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if schedule == report.ScheduleMonthly {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return monthStart.AddDate(0, -1, 0), monthStart
	}
	return day.AddDate(0, 0, -1), day
}

func exportFilename(code string, req RenderReportRequest, ext string) string {
	return fmt.Sprintf("%s_%s_%s.%s",
		strings.ToLower(code),
		req.From.Format("20060102"),
		req.To.Format("20060102"),
		ext)
}
