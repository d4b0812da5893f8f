package audit

import (
	"time"

	"github.com/bettstax/backend/internal/domain/audit"
	"github.com/google/uuid"
)

// ============================================================================
// Request DTOs
// ============================================================================

// RecordEntryRequest captures an audit entry appended explicitly by a handler,
// e.g. an export download or an ad-hoc tax calculation. Regular aggregate
// changes are recorded automatically by the event bus subscriber.
type RecordEntryRequest struct {
	Action     audit.Action
	EntityType string
	EntityID   *uuid.UUID
	Summary    string
	Detail     string
	ActorID    *uuid.UUID
	ActorName  string
	IPAddress  string
	UserAgent  string
}

// AuditListFilter represents filter options for the audit trail
type AuditListFilter struct {
	ActorID    string     `form:"actor_id" binding:"omitempty,uuid"`
	Action     string     `form:"action" binding:"omitempty,oneof=create update delete status_change login login_failed export calculate note"`
	EntityType string     `form:"entity_type" binding:"omitempty,max=100"`
	EntityID   string     `form:"entity_id" binding:"omitempty,uuid"`
	From       *time.Time `form:"from"`
	To         *time.Time `form:"to"`
	Search     string     `form:"search"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=500"`
}

// PurgeRequest removes audit entries older than the retention window.
// Retention is never shorter than 30 days.
type PurgeRequest struct {
	RetentionDays int `json:"retention_days" binding:"required,min=30,max=3650"`
}

// ============================================================================
// Response DTOs
// ============================================================================

// EntryResponse represents one audit trail line in API responses
type EntryResponse struct {
	ID         uuid.UUID  `json:"id"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty"`
	ActorName  string     `json:"actor_name"`
	Action     string     `json:"action"`
	EntityType string     `json:"entity_type"`
	EntityID   *uuid.UUID `json:"entity_id,omitempty"`
	Summary    string     `json:"summary"`
	Detail     string     `json:"detail,omitempty"`
	IPAddress  string     `json:"ip_address,omitempty"`
	UserAgent  string     `json:"user_agent,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// PurgeResponse reports the outcome of a retention purge
type PurgeResponse struct {
	Removed int64     `json:"removed"`
	Before  time.Time `json:"before"`
}

// ============================================================================
// Mappers
// ============================================================================

// ToEntryResponse converts a domain entry to a response DTO
func ToEntryResponse(e *audit.Entry) EntryResponse {
	return EntryResponse{
		ID:         e.ID,
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

// ToEntryResponses converts a slice of domain entries to response DTOs
func ToEntryResponses(entries []audit.Entry) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToEntryResponse(&entries[i])
	}
	return responses
}
