package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/domain/workflow"
	"github.com/google/uuid"
)

// FieldCatalog answers which payload fields an event type is known to carry.
// It is backed by the entity schema reflection; a nil catalog disables the
// field warnings in Validate.
type FieldCatalog interface {
	KnownEventType(eventType string) bool
	KnownField(eventType, fieldPath string) bool
}

// TriggerService handles automation trigger use cases
type TriggerService struct {
	triggerRepo workflow.TriggerRepository
	fields      FieldCatalog
}

// NewTriggerService creates a new TriggerService
func NewTriggerService(triggerRepo workflow.TriggerRepository, fields FieldCatalog) *TriggerService {
	return &TriggerService{
		triggerRepo: triggerRepo,
		fields:      fields,
	}
}

// Create defines a new automation trigger
func (s *TriggerService) Create(ctx context.Context, tenantID uuid.UUID, req CreateTriggerRequest) (*TriggerResponse, error) {
	t, err := workflow.NewAdvancedTrigger(tenantID, req.Name, req.EventType, toDomainGroup(req.Conditions), toDomainActions(req.Actions))
	if err != nil {
		return nil, err
	}
	t.Description = req.Description
	if req.Priority != 0 {
		t.Priority = req.Priority
	}

	if err := s.triggerRepo.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save trigger: %w", err)
	}

	response := ToTriggerResponse(t)
	return &response, nil
}

// Get retrieves a trigger by ID
func (s *TriggerService) Get(ctx context.Context, tenantID, triggerID uuid.UUID) (*TriggerResponse, error) {
	t, err := s.triggerRepo.FindByIDForTenant(ctx, tenantID, triggerID)
	if err != nil {
		return nil, err
	}

	response := ToTriggerResponse(t)
	return &response, nil
}

// List retrieves triggers with filtering and pagination
func (s *TriggerService) List(ctx context.Context, tenantID uuid.UUID, filter TriggerListFilter) ([]TriggerResponse, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "priority"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.EventType != "" {
		domainFilter.Filters["event_type"] = filter.EventType
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	triggers, err := s.triggerRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list triggers: %w", err)
	}

	total, err := s.triggerRepo.Count(ctx, tenantID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count triggers: %w", err)
	}

	return ToTriggerResponses(triggers), total, nil
}

// Update replaces parts of a trigger definition. Fields left nil keep their
// current values; conditions and actions are revalidated as a whole.
func (s *TriggerService) Update(ctx context.Context, tenantID, triggerID uuid.UUID, req UpdateTriggerRequest) (*TriggerResponse, error) {
	t, err := s.triggerRepo.FindByIDForTenant(ctx, tenantID, triggerID)
	if err != nil {
		return nil, err
	}

	name := t.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := t.Description
	if req.Description != nil {
		description = *req.Description
	}
	eventType := t.EventType
	if req.EventType != nil {
		eventType = *req.EventType
	}

	group, err := t.ConditionGroupValue()
	if err != nil {
		return nil, err
	}
	if req.Conditions != nil {
		group = toDomainGroup(*req.Conditions)
	}

	actions, err := t.ActionsValue()
	if err != nil {
		return nil, err
	}
	if req.Actions != nil {
		actions = toDomainActions(req.Actions)
	}

	if err := t.Update(name, description, eventType, group, actions); err != nil {
		return nil, err
	}
	if req.Priority != nil {
		t.SetPriority(*req.Priority)
	}

	if err := s.triggerRepo.SaveWithLock(ctx, t); err != nil {
		return nil, err
	}

	response := ToTriggerResponse(t)
	return &response, nil
}

// SetPriority changes the execution order among matching triggers
func (s *TriggerService) SetPriority(ctx context.Context, tenantID, triggerID uuid.UUID, priority int) (*TriggerResponse, error) {
	t, err := s.triggerRepo.FindByIDForTenant(ctx, tenantID, triggerID)
	if err != nil {
		return nil, err
	}

	t.SetPriority(priority)

	if err := s.triggerRepo.SaveWithLock(ctx, t); err != nil {
		return nil, err
	}

	response := ToTriggerResponse(t)
	return &response, nil
}

// Activate enables a trigger
func (s *TriggerService) Activate(ctx context.Context, tenantID, triggerID uuid.UUID) (*TriggerResponse, error) {
	return s.setActive(ctx, tenantID, triggerID, true)
}

// Deactivate disables a trigger without deleting its definition
func (s *TriggerService) Deactivate(ctx context.Context, tenantID, triggerID uuid.UUID) (*TriggerResponse, error) {
	return s.setActive(ctx, tenantID, triggerID, false)
}

func (s *TriggerService) setActive(ctx context.Context, tenantID, triggerID uuid.UUID, active bool) (*TriggerResponse, error) {
	t, err := s.triggerRepo.FindByIDForTenant(ctx, tenantID, triggerID)
	if err != nil {
		return nil, err
	}

	if active {
		t.Activate()
	} else {
		t.Deactivate()
	}

	if err := s.triggerRepo.Save(ctx, t); err != nil {
		return nil, err
	}

	response := ToTriggerResponse(t)
	return &response, nil
}

// Delete removes a trigger permanently
func (s *TriggerService) Delete(ctx context.Context, tenantID, triggerID uuid.UUID) error {
	if _, err := s.triggerRepo.FindByIDForTenant(ctx, tenantID, triggerID); err != nil {
		return err
	}
	return s.triggerRepo.Delete(ctx, tenantID, triggerID)
}

// Validate checks a trigger definition without saving it. Definition
// problems come back as errors; fields the schema does not know about only
// produce warnings, since event payloads may carry data beyond what the
// reflection sees.
func (s *TriggerService) Validate(ctx context.Context, req ValidateTriggerRequest) (*ValidationResponse, error) {
	response := &ValidationResponse{Valid: true}

	group := toDomainGroup(req.Conditions)
	if err := workflow.ValidateConditionGroup(group); err != nil {
		response.Errors = append(response.Errors, domainMessage(err))
	}
	if err := workflow.ValidateActions(toDomainActions(req.Actions)); err != nil {
		response.Errors = append(response.Errors, domainMessage(err))
	}

	if s.fields != nil {
		if !s.fields.KnownEventType(req.EventType) {
			response.Warnings = append(response.Warnings, fmt.Sprintf("event type %q is not published by any known entity", req.EventType))
		} else {
			for _, c := range group.Conditions {
				if !s.fields.KnownField(req.EventType, c.Field) {
					response.Warnings = append(response.Warnings, fmt.Sprintf("field %q is not part of %s payloads", c.Field, req.EventType))
				}
			}
		}
	}

	response.Valid = len(response.Errors) == 0
	return response, nil
}

// Test evaluates a saved trigger's conditions against a sample payload and
// reports the per-condition outcomes. The trigger's active flag is reported
// but does not prevent evaluation, so disabled rules can be tested too.
func (s *TriggerService) Test(ctx context.Context, tenantID, triggerID uuid.UUID, req TestTriggerRequest) (*TestTriggerResponse, error) {
	t, err := s.triggerRepo.FindByIDForTenant(ctx, tenantID, triggerID)
	if err != nil {
		return nil, err
	}

	group, err := t.ConditionGroupValue()
	if err != nil {
		return nil, err
	}

	response := &TestTriggerResponse{
		Matched:    workflow.EvaluateGroup(group, req.Payload),
		Active:     t.Active,
		Conditions: make([]ConditionResultResponse, len(group.Conditions)),
	}
	for i, c := range group.Conditions {
		response.Conditions[i] = ConditionResultResponse{
			Field:    c.Field,
			Operator: string(c.Operator),
			Value:    c.Value,
			Matched:  workflow.EvaluateCondition(c, req.Payload),
		}
	}
	return response, nil
}

// domainMessage returns the human-readable part of a domain error, or the
// error text itself for anything else.
func domainMessage(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}
