package models

import (
	"time"

	"github.com/bettstax/backend/internal/domain/audit"
	"github.com/google/uuid"
)

// AuditEntryModel is the GORM model for audit_entries table
type AuditEntryModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_audit_tenant_time,priority:1"`
	ActorID    *uuid.UUID `gorm:"type:uuid;index"`
	ActorName  string     `gorm:"type:varchar(200);not null"`
	Action     string     `gorm:"type:varchar(30);not null;index"`
	EntityType string     `gorm:"type:varchar(50);not null;index:idx_audit_entity,priority:1"`
	EntityID   *uuid.UUID `gorm:"type:uuid;index:idx_audit_entity,priority:2"`
	Summary    string     `gorm:"type:text;not null"`
	Detail     string     `gorm:"type:jsonb"`
	IPAddress  string     `gorm:"column:ip_address;type:varchar(45)"`
	UserAgent  string     `gorm:"column:user_agent;type:varchar(500)"`
	OccurredAt time.Time  `gorm:"not null;index:idx_audit_tenant_time,priority:2"`
}

// TableName returns the table name for AuditEntryModel
func (AuditEntryModel) TableName() string {
	return "audit_entries"
}

// ToDomain converts AuditEntryModel to domain Entry
func (m *AuditEntryModel) ToDomain() *audit.Entry {
	return &audit.Entry{
		ID:         m.ID,
		TenantID:   m.TenantID,
		ActorID:    m.ActorID,
		ActorName:  m.ActorName,
		Action:     audit.Action(m.Action),
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		Summary:    m.Summary,
		Detail:     m.Detail,
		IPAddress:  m.IPAddress,
		UserAgent:  m.UserAgent,
		OccurredAt: m.OccurredAt,
	}
}

// AuditEntryModelFromDomain creates an AuditEntryModel from domain Entry
func AuditEntryModelFromDomain(e *audit.Entry) *AuditEntryModel {
	return &AuditEntryModel{
		ID:         e.ID,
		TenantID:   e.TenantID,
		ActorID:    e.ActorID,
		ActorName:  e.ActorName,
		Action:     string(e.Action),
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Summary:    e.Summary,
		Detail:     e.Detail,
		IPAddress:  e.IPAddress,
		UserAgent:  e.UserAgent,
		OccurredAt: e.OccurredAt,
	}
}
