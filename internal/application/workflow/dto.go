package workflow

import (
	"time"

	"github.com/bettstax/backend/internal/domain/workflow"
	"github.com/google/uuid"
)

// ============================================================================
// Request DTOs
// ============================================================================

// ConditionRequest is one field comparison in a rule definition
type ConditionRequest struct {
	Field    string `json:"field" binding:"required,min=1,max=200"`
	Operator string `json:"operator" binding:"required,oneof=eq neq gt gte lt lte contains in is_empty is_not_empty"`
	Value    any    `json:"value"`
}

// ConditionGroupRequest combines conditions with and/or logic.
// An empty group matches every payload.
type ConditionGroupRequest struct {
	Logic      string             `json:"logic" binding:"omitempty,oneof=and or"`
	Conditions []ConditionRequest `json:"conditions" binding:"omitempty,dive"`
}

// ActionRequest is one effect to run when the rule fires
type ActionRequest struct {
	Type   string         `json:"type" binding:"required,oneof=notify_webhook send_email flag_filing_for_review create_audit_note"`
	Params map[string]any `json:"params"`
}

// CreateTriggerRequest represents a request to create an automation trigger
type CreateTriggerRequest struct {
	Name        string                `json:"name" binding:"required,min=1,max=100"`
	Description string                `json:"description" binding:"omitempty,max=2000"`
	EventType   string                `json:"event_type" binding:"required,min=1,max=100"`
	Conditions  ConditionGroupRequest `json:"conditions"`
	Actions     []ActionRequest       `json:"actions" binding:"required,min=1,dive"`
	Priority    int                   `json:"priority" binding:"omitempty,gte=-1000,lte=1000"`
}

// UpdateTriggerRequest represents a request to update an automation trigger
type UpdateTriggerRequest struct {
	Name        *string                `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string                `json:"description" binding:"omitempty,max=2000"`
	EventType   *string                `json:"event_type" binding:"omitempty,min=1,max=100"`
	Conditions  *ConditionGroupRequest `json:"conditions"`
	Actions     []ActionRequest        `json:"actions" binding:"omitempty,min=1,dive"`
	Priority    *int                   `json:"priority" binding:"omitempty,gte=-1000,lte=1000"`
}

// TriggerListFilter represents filter options for the trigger list
type TriggerListFilter struct {
	EventType string `form:"event_type" binding:"omitempty,max=100"`
	Active    *bool  `form:"active"`
	Search    string `form:"search"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string `form:"order_by" binding:"omitempty,oneof=name event_type priority fire_count created_at updated_at"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ValidateTriggerRequest checks a rule definition without saving it
type ValidateTriggerRequest struct {
	EventType  string                `json:"event_type" binding:"required,min=1,max=100"`
	Conditions ConditionGroupRequest `json:"conditions"`
	Actions    []ActionRequest       `json:"actions" binding:"required,min=1,dive"`
}

// TestTriggerRequest evaluates a saved trigger against a sample payload
type TestTriggerRequest struct {
	Payload map[string]any `json:"payload" binding:"required"`
}

// ============================================================================
// Response DTOs
// ============================================================================

// ConditionResponse mirrors ConditionRequest in responses
type ConditionResponse struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value,omitempty"`
}

// ConditionGroupResponse mirrors ConditionGroupRequest in responses
type ConditionGroupResponse struct {
	Logic      string              `json:"logic,omitempty"`
	Conditions []ConditionResponse `json:"conditions"`
}

// ActionResponse mirrors ActionRequest in responses
type ActionResponse struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params,omitempty"`
}

// TriggerResponse represents an automation trigger in API responses
type TriggerResponse struct {
	ID          uuid.UUID              `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	EventType   string                 `json:"event_type"`
	Conditions  ConditionGroupResponse `json:"conditions"`
	Actions     []ActionResponse       `json:"actions"`
	Active      bool                   `json:"active"`
	Priority    int                    `json:"priority"`
	FireCount   int64                  `json:"fire_count"`
	LastFiredAt *time.Time             `json:"last_fired_at,omitempty"`
	LastError   string                 `json:"last_error,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	Version     int                    `json:"version"`
}

// ValidationResponse reports definition problems found without saving
type ValidationResponse struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ConditionResultResponse is the per-condition outcome of a sample test
type ConditionResultResponse struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value,omitempty"`
	Matched  bool   `json:"matched"`
}

// TestTriggerResponse reports how a sample payload evaluated
type TestTriggerResponse struct {
	Matched    bool                      `json:"matched"`
	Active     bool                      `json:"active"`
	Conditions []ConditionResultResponse `json:"conditions"`
}

// ============================================================================
// Mappers
// ============================================================================

// ToTriggerResponse converts a domain trigger to a response DTO. Stored
// definitions that fail to parse come back as empty, matching what the
// engine would do with them.
func ToTriggerResponse(t *workflow.AdvancedTrigger) TriggerResponse {
	response := TriggerResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		EventType:   t.EventType,
		Active:      t.Active,
		Priority:    t.Priority,
		FireCount:   t.FireCount,
		LastFiredAt: t.LastFiredAt,
		LastError:   t.LastError,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Version:     t.Version,
	}

	if group, err := t.ConditionGroupValue(); err == nil {
		response.Conditions = toConditionGroupResponse(group)
	}
	if actions, err := t.ActionsValue(); err == nil {
		response.Actions = toActionResponses(actions)
	}
	return response
}

// ToTriggerResponses converts a slice of domain triggers to response DTOs
func ToTriggerResponses(triggers []workflow.AdvancedTrigger) []TriggerResponse {
	responses := make([]TriggerResponse, len(triggers))
	for i := range triggers {
		responses[i] = ToTriggerResponse(&triggers[i])
	}
	return responses
}

func toConditionGroupResponse(group workflow.ConditionGroup) ConditionGroupResponse {
	response := ConditionGroupResponse{
		Logic:      string(group.Logic),
		Conditions: make([]ConditionResponse, len(group.Conditions)),
	}
	for i, c := range group.Conditions {
		response.Conditions[i] = ConditionResponse{
			Field:    c.Field,
			Operator: string(c.Operator),
			Value:    c.Value,
		}
	}
	return response
}

func toActionResponses(actions []workflow.Action) []ActionResponse {
	responses := make([]ActionResponse, len(actions))
	for i, a := range actions {
		responses[i] = ActionResponse{Type: string(a.Type), Params: a.Params}
	}
	return responses
}

func toDomainGroup(req ConditionGroupRequest) workflow.ConditionGroup {
	group := workflow.ConditionGroup{
		Logic:      workflow.GroupLogic(req.Logic),
		Conditions: make([]workflow.Condition, len(req.Conditions)),
	}
	if group.Logic == "" && len(req.Conditions) > 0 {
		group.Logic = workflow.GroupLogicAnd
	}
	for i, c := range req.Conditions {
		group.Conditions[i] = workflow.Condition{
			Field:    c.Field,
			Operator: workflow.Operator(c.Operator),
			Value:    c.Value,
		}
	}
	return group
}

func toDomainActions(reqs []ActionRequest) []workflow.Action {
	actions := make([]workflow.Action, len(reqs))
	for i, a := range reqs {
		actions[i] = workflow.Action{Type: workflow.ActionType(a.Type), Params: a.Params}
	}
	return actions
}
