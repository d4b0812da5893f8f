package report

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ReportType identifies which aggregation query feeds a template
type ReportType string

const (
	ReportTypeFilingSummary    ReportType = "filing_summary"
	ReportTypePaymentSummary   ReportType = "payment_summary"
	ReportTypeClientStatement  ReportType = "client_statement"
	ReportTypeComplianceStatus ReportType = "compliance_status"
	ReportTypeRevenueByTaxType ReportType = "revenue_by_tax_type"
)

// OutputFormat is a rendering target for a generated report
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatCSV  OutputFormat = "csv"
	FormatPDF  OutputFormat = "pdf"
)

// Schedule controls automatic generation by the scheduler
type Schedule string

const (
	ScheduleNone    Schedule = "none"
	ScheduleDaily   Schedule = "daily"
	ScheduleMonthly Schedule = "monthly"
)

// Column selects and labels one field of the underlying query rows
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Definition describes how query rows become a rendered report
type Definition struct {
	Columns []Column       `json:"columns"`
	Filters map[string]any `json:"filters,omitempty"`
	GroupBy string         `json:"group_by,omitempty"`
}

var templateCodePattern = regexp.MustCompile(`^[A-Z0-9_-]+$`)

// ReportTemplate is a saved report configuration. System templates are
// seeded at migration time and cannot be edited or deleted, only
// activated and deactivated.
type ReportTemplate struct {
	shared.TenantAggregateRoot
	Code        string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_report_tenant_code,priority:2"`
	Name        string     `gorm:"type:varchar(200);not null"`
	Description string     `gorm:"type:text"`
	Type        ReportType `gorm:"type:varchar(30);not null"`
	Definition  string     `gorm:"type:jsonb;not null"` // Serialized Definition
	Formats     []string   `gorm:"-"`                   // Allowed output formats
	System      bool       `gorm:"not null;default:false"`
	Active      bool       `gorm:"not null;default:true"`
	Schedule    Schedule   `gorm:"type:varchar(20);not null;default:'none'"`
	LastRunAt   *time.Time
}

// TableName returns the table name for GORM
func (ReportTemplate) TableName() string {
	return "report_templates"
}

// NewReportTemplate creates a user-defined template.
func NewReportTemplate(tenantID uuid.UUID, code, name string, reportType ReportType, def Definition, formats []OutputFormat) (*ReportTemplate, error) {
	if err := validateTemplateCode(code); err != nil {
		return nil, err
	}
	if err := validateTemplateName(name); err != nil {
		return nil, err
	}
	if err := ValidateReportType(reportType); err != nil {
		return nil, err
	}
	normalizedFormats, err := normalizeFormats(formats)
	if err != nil {
		return nil, err
	}
	defJSON, err := marshalDefinition(def)
	if err != nil {
		return nil, err
	}

	t := &ReportTemplate{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Type:                reportType,
		Definition:          defJSON,
		Formats:             normalizedFormats,
		Active:              true,
		Schedule:            ScheduleNone,
	}

	return t, nil
}

// NewSystemTemplate creates a seeded, non-deletable template.
func NewSystemTemplate(tenantID uuid.UUID, code, name string, reportType ReportType, def Definition, formats []OutputFormat) (*ReportTemplate, error) {
	t, err := NewReportTemplate(tenantID, code, name, reportType, def, formats)
	if err != nil {
		return nil, err
	}
	t.System = true
	return t, nil
}

// Update changes a user-defined template. System templates are immutable.
func (t *ReportTemplate) Update(name, description string, def Definition, formats []OutputFormat) error {
	if t.System {
		return shared.NewDomainError("SYSTEM_TEMPLATE_IMMUTABLE", "System templates cannot be modified")
	}
	if err := validateTemplateName(name); err != nil {
		return err
	}
	normalizedFormats, err := normalizeFormats(formats)
	if err != nil {
		return err
	}
	defJSON, err := marshalDefinition(def)
	if err != nil {
		return err
	}

	t.Name = name
	t.Description = description
	t.Definition = defJSON
	t.Formats = normalizedFormats
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// SetSchedule configures automatic generation.
func (t *ReportTemplate) SetSchedule(schedule Schedule) error {
	switch schedule {
	case ScheduleNone, ScheduleDaily, ScheduleMonthly:
	default:
		return shared.NewDomainError("INVALID_SCHEDULE", "Schedule must be none, daily or monthly")
	}
	t.Schedule = schedule
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// Activate enables the template. Allowed for system templates.
func (t *ReportTemplate) Activate() {
	if t.Active {
		return
	}
	t.Active = true
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// Deactivate disables the template. Allowed for system templates.
func (t *ReportTemplate) Deactivate() {
	if !t.Active {
		return
	}
	t.Active = false
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// RecordRun stores the time of the latest successful generation.
func (t *ReportTemplate) RecordRun(at time.Time) {
	t.LastRunAt = &at
	t.UpdatedAt = time.Now()
}

// CanDelete reports whether the template may be removed.
func (t *ReportTemplate) CanDelete() bool {
	return !t.System
}

// SupportsFormat reports whether the template allows the given output format.
func (t *ReportTemplate) SupportsFormat(format OutputFormat) bool {
	for _, f := range t.Formats {
		if f == string(format) {
			return true
		}
	}
	return false
}

// DefinitionValue deserializes the stored definition.
func (t *ReportTemplate) DefinitionValue() (Definition, error) {
	var def Definition
	if t.Definition == "" {
		return def, nil
	}
	if err := json.Unmarshal([]byte(t.Definition), &def); err != nil {
		return def, shared.NewDomainError("INVALID_DEFINITION", "Stored definition is not valid JSON")
	}
	return def, nil
}

// ValidateReportType checks the report type against the known set.
func ValidateReportType(rt ReportType) error {
	switch rt {
	case ReportTypeFilingSummary, ReportTypePaymentSummary, ReportTypeClientStatement,
		ReportTypeComplianceStatus, ReportTypeRevenueByTaxType:
		return nil
	}
	return shared.NewDomainError("INVALID_REPORT_TYPE", "Unknown report type: "+string(rt))
}

// ValidateFormat checks a single output format.
func ValidateFormat(f OutputFormat) error {
	switch f {
	case FormatJSON, FormatCSV, FormatPDF:
		return nil
	}
	return shared.NewDomainError("INVALID_FORMAT", "Unknown output format: "+string(f))
}

func marshalDefinition(def Definition) (string, error) {
	if len(def.Columns) == 0 {
		return "", shared.NewDomainError("INVALID_DEFINITION", "Report definition needs at least one column")
	}
	for _, col := range def.Columns {
		if strings.TrimSpace(col.Key) == "" {
			return "", shared.NewDomainError("INVALID_DEFINITION", "Report columns need a key")
		}
	}
	raw, err := json.Marshal(def)
	if err != nil {
		return "", shared.NewDomainError("INVALID_DEFINITION", "Definition cannot be serialized")
	}
	return string(raw), nil
}

func normalizeFormats(formats []OutputFormat) ([]string, error) {
	if len(formats) == 0 {
		formats = []OutputFormat{FormatJSON}
	}
	seen := make(map[OutputFormat]struct{}, len(formats))
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, string(f))
	}
	return out, nil
}

func validateTemplateCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return shared.NewDomainError("INVALID_CODE", "Template code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Template code cannot exceed 50 characters")
	}
	if !templateCodePattern.MatchString(strings.ToUpper(code)) {
		return shared.NewDomainError("INVALID_CODE", "Template code can only contain letters, numbers, hyphens and underscores")
	}
	return nil
}

func validateTemplateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Template name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Template name cannot exceed 200 characters")
	}
	return nil
}
