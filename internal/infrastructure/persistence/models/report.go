package models

import (
	"encoding/json"
	"time"

	"github.com/bettstax/backend/internal/domain/report"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ReportTemplateModel is the GORM model for report_templates table
type ReportTemplateModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key"`
	TenantID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_report_tenant_code,priority:1"`
	Code        string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_report_tenant_code,priority:2"`
	Name        string     `gorm:"type:varchar(200);not null"`
	Description string     `gorm:"type:text"`
	Type        string     `gorm:"type:varchar(30);not null"`
	Definition  string     `gorm:"type:jsonb;not null"`
	Formats     string     `gorm:"type:jsonb;not null;default:'[\"json\"]'"`
	System      bool       `gorm:"not null;default:false"`
	Active      bool       `gorm:"not null;default:true"`
	Schedule    string     `gorm:"type:varchar(20);not null;default:'none'"`
	LastRunAt   *time.Time `gorm:"column:last_run_at"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
	Version     int        `gorm:"not null;default:1"`
}

// TableName returns the table name for ReportTemplateModel
func (ReportTemplateModel) TableName() string {
	return "report_templates"
}

// ToDomain converts ReportTemplateModel to domain ReportTemplate
func (m *ReportTemplateModel) ToDomain() *report.ReportTemplate {
	var formats []string
	if m.Formats != "" {
		// A corrupt formats column falls back to json-only rather than
		// failing every read.
		if err := json.Unmarshal([]byte(m.Formats), &formats); err != nil {
			formats = []string{string(report.FormatJSON)}
		}
	}
	return &report.ReportTemplate{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID: m.TenantID,
		},
		Code:        m.Code,
		Name:        m.Name,
		Description: m.Description,
		Type:        report.ReportType(m.Type),
		Definition:  m.Definition,
		Formats:     formats,
		System:      m.System,
		Active:      m.Active,
		Schedule:    report.Schedule(m.Schedule),
		LastRunAt:   m.LastRunAt,
	}
}

// ReportTemplateModelFromDomain creates a ReportTemplateModel from domain ReportTemplate
func ReportTemplateModelFromDomain(t *report.ReportTemplate) *ReportTemplateModel {
	formats, err := json.Marshal(t.Formats)
	if err != nil || len(t.Formats) == 0 {
		formats = []byte(`["json"]`)
	}
	return &ReportTemplateModel{
		ID:          t.ID,
		TenantID:    t.TenantID,
		Code:        t.Code,
		Name:        t.Name,
		Description: t.Description,
		Type:        string(t.Type),
		Definition:  t.Definition,
		Formats:     string(formats),
		System:      t.System,
		Active:      t.Active,
		Schedule:    string(t.Schedule),
		LastRunAt:   t.LastRunAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Version:     t.Version,
	}
}
