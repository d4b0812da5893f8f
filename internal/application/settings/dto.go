package settings

import (
	"time"

	"github.com/bettstax/backend/internal/domain/settings"
	"github.com/google/uuid"
)

// ============================================================================
// Request DTOs
// ============================================================================

// UpsertSettingRequest creates a setting or updates its value
type UpsertSettingRequest struct {
	Key         string  `json:"key" binding:"required,min=1,max=100"`
	Value       string  `json:"value"`
	ValueType   string  `json:"value_type" binding:"omitempty,oneof=string int bool decimal json"`
	Category    string  `json:"category" binding:"omitempty,max=50"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// SettingListFilter represents filter options for setting list
type SettingListFilter struct {
	Category string `form:"category" binding:"omitempty,max=50"`
}

// ============================================================================
// Response DTOs
// ============================================================================

// SettingResponse represents a system setting in API responses
type SettingResponse struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	ValueType   string    `json:"value_type"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	Editable    bool      `json:"editable"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

// ============================================================================
// Conversion Functions
// ============================================================================

// ToSettingResponse converts a domain SystemSetting to SettingResponse
func ToSettingResponse(s *settings.SystemSetting) SettingResponse {
	return SettingResponse{
		ID:          s.ID,
		TenantID:    s.TenantID,
		Key:         s.Key,
		Value:       s.Value,
		ValueType:   string(s.ValueType),
		Category:    s.Category,
		Description: s.Description,
		Editable:    s.Editable,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		Version:     s.Version,
	}
}

// ToSettingResponses converts a slice of domain SystemSettings
func ToSettingResponses(items []*settings.SystemSetting) []SettingResponse {
	responses := make([]SettingResponse, len(items))
	for i, s := range items {
		responses[i] = ToSettingResponse(s)
	}
	return responses
}
