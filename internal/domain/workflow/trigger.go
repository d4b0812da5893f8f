package workflow

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Operator is a comparison applied to one payload field
type Operator string

const (
	OperatorEquals      Operator = "eq"
	OperatorNotEquals   Operator = "neq"
	OperatorGreaterThan Operator = "gt"
	OperatorGreaterOrEq Operator = "gte"
	OperatorLessThan    Operator = "lt"
	OperatorLessOrEq    Operator = "lte"
	OperatorContains    Operator = "contains"
	OperatorIn          Operator = "in"
	OperatorIsEmpty     Operator = "is_empty"
	OperatorIsNotEmpty  Operator = "is_not_empty"
)

// GroupLogic combines the results of a group's conditions
type GroupLogic string

const (
	GroupLogicAnd GroupLogic = "and"
	GroupLogicOr  GroupLogic = "or"
)

// ActionType identifies what a trigger does when it fires
type ActionType string

const (
	// ActionNotifyWebhook enqueues the event for one webhook registration
	ActionNotifyWebhook ActionType = "notify_webhook"
	// ActionSendEmail sends a notification email
	ActionSendEmail ActionType = "send_email"
	// ActionFlagFilingForReview moves the related filing to under_review
	ActionFlagFilingForReview ActionType = "flag_filing_for_review"
	// ActionCreateAuditNote appends a note to the audit trail
	ActionCreateAuditNote ActionType = "create_audit_note"
)

// Condition compares one payload field against a value
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value,omitempty"`
}

// ConditionGroup is a set of conditions combined with and/or logic.
// An empty group matches every payload.
type ConditionGroup struct {
	Logic      GroupLogic  `json:"logic"`
	Conditions []Condition `json:"conditions"`
}

// Action is one effect executed when a trigger fires
type Action struct {
	Type   ActionType     `json:"type"`
	Params map[string]any `json:"params,omitempty"`
}

// AdvancedTrigger is a tenant-defined automation rule: when an event of the
// given type is published and its payload matches the condition group, the
// configured actions run. It is the aggregate root for workflow automation.
type AdvancedTrigger struct {
	shared.TenantAggregateRoot
	Name        string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"type:text"`
	EventType   string `gorm:"type:varchar(100);not null;index"` // Matched against published event types
	Conditions  string `gorm:"type:jsonb;not null"`              // Serialized ConditionGroup
	Actions     string `gorm:"type:jsonb;not null"`              // Serialized []Action
	Active      bool   `gorm:"not null;default:true"`
	Priority    int    `gorm:"not null;default:0"` // Lower runs first when several triggers match
	FireCount   int64  `gorm:"not null;default:0"`
	LastFiredAt *time.Time
	LastError   string `gorm:"type:text"` // Most recent action failure, cleared on success
}

// TableName returns the table name for GORM
func (AdvancedTrigger) TableName() string {
	return "advanced_triggers"
}

// NewAdvancedTrigger creates a trigger after validating its definition.
func NewAdvancedTrigger(tenantID uuid.UUID, name, eventType string, group ConditionGroup, actions []Action) (*AdvancedTrigger, error) {
	if err := validateTriggerName(name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(eventType) == "" {
		return nil, shared.NewDomainError("INVALID_EVENT_TYPE", "Trigger event type is required")
	}
	if err := ValidateConditionGroup(group); err != nil {
		return nil, err
	}
	if err := ValidateActions(actions); err != nil {
		return nil, err
	}

	condJSON, err := json.Marshal(group)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CONDITIONS", "Conditions cannot be serialized")
	}
	actionsJSON, err := json.Marshal(actions)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_ACTIONS", "Actions cannot be serialized")
	}

	t := &AdvancedTrigger{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		EventType:           eventType,
		Conditions:          string(condJSON),
		Actions:             string(actionsJSON),
		Active:              true,
	}

	t.AddDomainEvent(NewTriggerCreatedEvent(t))

	return t, nil
}

// Update replaces the trigger definition.
func (t *AdvancedTrigger) Update(name, description, eventType string, group ConditionGroup, actions []Action) error {
	if err := validateTriggerName(name); err != nil {
		return err
	}
	if strings.TrimSpace(eventType) == "" {
		return shared.NewDomainError("INVALID_EVENT_TYPE", "Trigger event type is required")
	}
	if err := ValidateConditionGroup(group); err != nil {
		return err
	}
	if err := ValidateActions(actions); err != nil {
		return err
	}

	condJSON, err := json.Marshal(group)
	if err != nil {
		return shared.NewDomainError("INVALID_CONDITIONS", "Conditions cannot be serialized")
	}
	actionsJSON, err := json.Marshal(actions)
	if err != nil {
		return shared.NewDomainError("INVALID_ACTIONS", "Actions cannot be serialized")
	}

	t.Name = name
	t.Description = description
	t.EventType = eventType
	t.Conditions = string(condJSON)
	t.Actions = string(actionsJSON)
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTriggerUpdatedEvent(t))

	return nil
}

// SetPriority changes the execution order among matching triggers.
func (t *AdvancedTrigger) SetPriority(priority int) {
	t.Priority = priority
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// Activate enables the trigger.
func (t *AdvancedTrigger) Activate() {
	if t.Active {
		return
	}
	t.Active = true
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// Deactivate disables the trigger without deleting its definition.
func (t *AdvancedTrigger) Deactivate() {
	if !t.Active {
		return
	}
	t.Active = false
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// ConditionGroupValue deserializes the stored condition group.
func (t *AdvancedTrigger) ConditionGroupValue() (ConditionGroup, error) {
	var group ConditionGroup
	if t.Conditions == "" {
		return group, nil
	}
	if err := json.Unmarshal([]byte(t.Conditions), &group); err != nil {
		return group, shared.NewDomainError("INVALID_CONDITIONS", "Stored conditions are not valid JSON")
	}
	return group, nil
}

// ActionsValue deserializes the stored action list.
func (t *AdvancedTrigger) ActionsValue() ([]Action, error) {
	var actions []Action
	if t.Actions == "" {
		return actions, nil
	}
	if err := json.Unmarshal([]byte(t.Actions), &actions); err != nil {
		return nil, shared.NewDomainError("INVALID_ACTIONS", "Stored actions are not valid JSON")
	}
	return actions, nil
}

// Matches reports whether the trigger should fire for an event payload.
func (t *AdvancedTrigger) Matches(eventType string, payload map[string]any) (bool, error) {
	if !t.Active || t.EventType != eventType {
		return false, nil
	}
	group, err := t.ConditionGroupValue()
	if err != nil {
		return false, err
	}
	return EvaluateGroup(group, payload), nil
}

// RecordFire updates bookkeeping after the trigger's actions ran.
func (t *AdvancedTrigger) RecordFire(at time.Time, actionErr error) {
	t.FireCount++
	t.LastFiredAt = &at
	if actionErr != nil {
		t.LastError = actionErr.Error()
	} else {
		t.LastError = ""
	}
	t.UpdatedAt = time.Now()
}

// ValidateConditionGroup checks logic and operators without evaluating.
func ValidateConditionGroup(group ConditionGroup) error {
	if len(group.Conditions) > 0 && group.Logic != GroupLogicAnd && group.Logic != GroupLogicOr {
		return shared.NewDomainError("INVALID_CONDITIONS", "Condition logic must be 'and' or 'or'")
	}
	for _, c := range group.Conditions {
		if strings.TrimSpace(c.Field) == "" {
			return shared.NewDomainError("INVALID_CONDITIONS", "Condition field is required")
		}
		if !isKnownOperator(c.Operator) {
			return shared.NewDomainError("INVALID_CONDITIONS", "Unknown condition operator: "+string(c.Operator))
		}
		if requiresValue(c.Operator) && c.Value == nil {
			return shared.NewDomainError("INVALID_CONDITIONS", "Operator "+string(c.Operator)+" requires a value")
		}
	}
	return nil
}

// ValidateActions checks action types and their required parameters.
func ValidateActions(actions []Action) error {
	if len(actions) == 0 {
		return shared.NewDomainError("INVALID_ACTIONS", "At least one action is required")
	}
	for _, a := range actions {
		switch a.Type {
		case ActionNotifyWebhook:
			raw, ok := a.Params["registration_id"]
			if !ok {
				return shared.NewDomainError("INVALID_ACTIONS", "notify_webhook requires a registration_id parameter")
			}
			s, ok := raw.(string)
			if !ok {
				return shared.NewDomainError("INVALID_ACTIONS", "registration_id must be a UUID string")
			}
			if _, err := uuid.Parse(s); err != nil {
				return shared.NewDomainError("INVALID_ACTIONS", "registration_id must be a UUID string")
			}
		case ActionSendEmail:
			raw, ok := a.Params["recipient"]
			if !ok {
				return shared.NewDomainError("INVALID_ACTIONS", "send_email requires a recipient parameter")
			}
			s, ok := raw.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return shared.NewDomainError("INVALID_ACTIONS", "recipient must be a non-empty string")
			}
		case ActionCreateAuditNote:
			raw, ok := a.Params["note"]
			if !ok {
				return shared.NewDomainError("INVALID_ACTIONS", "create_audit_note requires a note parameter")
			}
			s, ok := raw.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return shared.NewDomainError("INVALID_ACTIONS", "note must be a non-empty string")
			}
		case ActionFlagFilingForReview:
			// no parameters
		default:
			return shared.NewDomainError("INVALID_ACTIONS", "Unknown action type: "+string(a.Type))
		}
	}
	return nil
}

func validateTriggerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Trigger name is required")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Trigger name cannot exceed 100 characters")
	}
	return nil
}

func isKnownOperator(op Operator) bool {
	switch op {
	case OperatorEquals, OperatorNotEquals, OperatorGreaterThan, OperatorGreaterOrEq,
		OperatorLessThan, OperatorLessOrEq, OperatorContains, OperatorIn,
		OperatorIsEmpty, OperatorIsNotEmpty:
		return true
	}
	return false
}

func requiresValue(op Operator) bool {
	return op != OperatorIsEmpty && op != OperatorIsNotEmpty
}
