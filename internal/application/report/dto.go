package report

import (
	"time"

	"github.com/bettstax/backend/internal/domain/report"
	"github.com/google/uuid"
)

// ============================================================================
// Request DTOs
// ============================================================================

// ColumnRequest selects and labels one field of the report rows
type ColumnRequest struct {
	Key   string `json:"key" binding:"required,max=100"`
	Label string `json:"label" binding:"omitempty,max=200"`
}

// DefinitionRequest describes how query rows become a rendered report
type DefinitionRequest struct {
	Columns []ColumnRequest        `json:"columns" binding:"required,min=1,dive"`
	Filters map[string]interface{} `json:"filters" binding:"omitempty"`
	GroupBy string                 `json:"group_by" binding:"omitempty,max=100"`
}

// CreateTemplateRequest defines the request for creating a report template
type CreateTemplateRequest struct {
	Code        string            `json:"code" binding:"required,min=1,max=50"`
	Name        string            `json:"name" binding:"required,min=1,max=200"`
	Description string            `json:"description" binding:"omitempty,max=2000"`
	Type        string            `json:"type" binding:"required,oneof=filing_summary payment_summary client_statement compliance_status revenue_by_tax_type"`
	Definition  DefinitionRequest `json:"definition" binding:"required"`
	Formats     []string          `json:"formats" binding:"omitempty,dive,oneof=json csv pdf"`
}

// UpdateTemplateRequest defines the request for updating a report template
type UpdateTemplateRequest struct {
	Name        *string            `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string            `json:"description" binding:"omitempty,max=2000"`
	Definition  *DefinitionRequest `json:"definition" binding:"omitempty"`
	Formats     []string           `json:"formats" binding:"omitempty,dive,oneof=json csv pdf"`
}

// SetScheduleRequest configures automatic generation for a template
type SetScheduleRequest struct {
	Schedule string `json:"schedule" binding:"required,oneof=none daily monthly"`
}

// TemplateListFilter defines filtering options for template lists
type TemplateListFilter struct {
	Search   string `form:"search" binding:"omitempty,max=100"`
	Type     string `form:"type" binding:"omitempty,oneof=filing_summary payment_summary client_statement compliance_status revenue_by_tax_type"`
	Active   *bool  `form:"active" binding:"omitempty"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=code name type created_at updated_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// RenderReportRequest defines the period and filters for a report run
type RenderReportRequest struct {
	From     time.Time  `form:"from" binding:"required"`
	To       time.Time  `form:"to" binding:"required,gtefield=From"`
	ClientID *uuid.UUID `form:"client_id" binding:"omitempty"`
	TaxType  string     `form:"tax_type" binding:"omitempty,oneof=gst income_tax payroll_paye withholding"`
	Status   string     `form:"status" binding:"omitempty,max=30"`
}

// ============================================================================
// Response DTOs
// ============================================================================

// ColumnResponse is one column of a template definition
type ColumnResponse struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// DefinitionResponse is the parsed template definition
type DefinitionResponse struct {
	Columns []ColumnResponse       `json:"columns"`
	Filters map[string]interface{} `json:"filters,omitempty"`
	GroupBy string                 `json:"group_by,omitempty"`
}

// TemplateResponse defines the response structure for a report template
type TemplateResponse struct {
	ID          uuid.UUID          `json:"id"`
	Code        string             `json:"code"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Type        string             `json:"type"`
	Definition  DefinitionResponse `json:"definition"`
	Formats     []string           `json:"formats"`
	System      bool               `json:"system"`
	Active      bool               `json:"active"`
	Schedule    string             `json:"schedule"`
	LastRunAt   *time.Time         `json:"last_run_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Version     int                `json:"version"`
}

// RenderedReportResponse is one generated report
type RenderedReportResponse struct {
	TemplateID   uuid.UUID                `json:"template_id"`
	TemplateCode string                   `json:"template_code"`
	Title        string                   `json:"title"`
	Type         string                   `json:"type"`
	From         time.Time                `json:"from"`
	To           time.Time                `json:"to"`
	GeneratedAt  time.Time                `json:"generated_at"`
	Columns      []ColumnResponse         `json:"columns"`
	Rows         []map[string]interface{} `json:"rows"`
	Totals       map[string]interface{}   `json:"totals,omitempty"`
}

// ReportTypeResponse describes one available report type with its columns
type ReportTypeResponse struct {
	Type           string           `json:"type"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	DefaultColumns []ColumnResponse `json:"default_columns"`
}

// ScheduledRunResponse summarizes one scheduler pass
type ScheduledRunResponse struct {
	Generated int `json:"generated"`
	Failed    int `json:"failed"`
}

// ============================================================================
// Mappers
// ============================================================================

// ToTemplateResponse converts a domain template to a response DTO
func ToTemplateResponse(t *report.ReportTemplate) TemplateResponse {
	def, err := t.DefinitionValue()
	if err != nil {
		def = report.Definition{}
	}

	return TemplateResponse{
		ID:          t.ID,
		Code:        t.Code,
		Name:        t.Name,
		Description: t.Description,
		Type:        string(t.Type),
		Definition:  toDefinitionResponse(def),
		Formats:     t.Formats,
		System:      t.System,
		Active:      t.Active,
		Schedule:    string(t.Schedule),
		LastRunAt:   t.LastRunAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Version:     t.Version,
	}
}

// ToTemplateResponses converts a list of domain templates to response DTOs
func ToTemplateResponses(templates []report.ReportTemplate) []TemplateResponse {
	responses := make([]TemplateResponse, len(templates))
	for i := range templates {
		responses[i] = ToTemplateResponse(&templates[i])
	}
	return responses
}

func toDefinitionResponse(def report.Definition) DefinitionResponse {
	columns := make([]ColumnResponse, len(def.Columns))
	for i, c := range def.Columns {
		label := c.Label
		if label == "" {
			label = c.Key
		}
		columns[i] = ColumnResponse{Key: c.Key, Label: label}
	}
	return DefinitionResponse{
		Columns: columns,
		Filters: def.Filters,
		GroupBy: def.GroupBy,
	}
}

func toDomainDefinition(req DefinitionRequest) report.Definition {
	columns := make([]report.Column, len(req.Columns))
	for i, c := range req.Columns {
		columns[i] = report.Column{Key: c.Key, Label: c.Label}
	}
	return report.Definition{
		Columns: columns,
		Filters: req.Filters,
		GroupBy: req.GroupBy,
	}
}

func toDomainFormats(formats []string) []report.OutputFormat {
	out := make([]report.OutputFormat, len(formats))
	for i, f := range formats {
		out[i] = report.OutputFormat(f)
	}
	return out
}
