package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bettstax/backend/internal/domain/audit"
	"github.com/bettstax/backend/internal/domain/filing"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/domain/workflow"
	"github.com/google/uuid"
)

// WebhookEnqueuer queues an event for delivery to one webhook registration,
// regardless of the registration's event subscriptions.
type WebhookEnqueuer interface {
	EnqueueForRegistration(ctx context.Context, tenantID, registrationID uuid.UUID, event shared.DomainEvent) error
}

// FilingReviewFlagger moves a filing to under_review on behalf of a rule.
type FilingReviewFlagger interface {
	FlagForReview(ctx context.Context, tenantID, filingID uuid.UUID, reason string) error
}

// Notifier sends trigger-driven notification emails. The SMTP implementation
// lives in the infrastructure layer.
type Notifier interface {
	SendTriggerNotification(ctx context.Context, recipient, subject, body string) error
}

// TriggerEngine evaluates automation triggers against published domain
// events. It subscribes to all event types; for each event it loads the
// tenant's active triggers for that type in priority order, evaluates their
// condition groups against the event payload, and runs the actions of every
// trigger that matches. One failing trigger never blocks the others.
type TriggerEngine struct {
	triggerRepo workflow.TriggerRepository
	auditRepo   audit.EntryRepository
	enqueuer    WebhookEnqueuer
	flagger     FilingReviewFlagger
	notifier    Notifier
}

var _ shared.EventHandler = (*TriggerEngine)(nil)

// NewTriggerEngine creates a trigger engine. The enqueuer, flagger and
// notifier may be nil; actions that need a missing backend fail and are
// recorded on the trigger instead of crashing the engine.
func NewTriggerEngine(
	triggerRepo workflow.TriggerRepository,
	auditRepo audit.EntryRepository,
	enqueuer WebhookEnqueuer,
	flagger FilingReviewFlagger,
	notifier Notifier,
) *TriggerEngine {
	return &TriggerEngine{
		triggerRepo: triggerRepo,
		auditRepo:   auditRepo,
		enqueuer:    enqueuer,
		flagger:     flagger,
		notifier:    notifier,
	}
}

// EventTypes returns nil so the engine receives every published event.
func (e *TriggerEngine) EventTypes() []string {
	return nil
}

// Handle evaluates the tenant's triggers for one published event.
func (e *TriggerEngine) Handle(ctx context.Context, event shared.DomainEvent) error {
	// A trigger firing publishes trigger.fired; evaluating triggers against
	// that event again would let rules feed themselves.
	if event.EventType() == workflow.EventTypeTriggerFired {
		return nil
	}

	triggers, err := e.triggerRepo.FindActiveByEventType(ctx, event.TenantID(), event.EventType())
	if err != nil {
		return fmt.Errorf("failed to load triggers for %s: %w", event.EventType(), err)
	}
	if len(triggers) == 0 {
		return nil
	}

	payload, err := eventPayload(event)
	if err != nil {
		return err
	}

	for i := range triggers {
		t := &triggers[i]
		matched, err := t.Matches(event.EventType(), payload)
		if err != nil {
			slog.WarnContext(ctx, "skipping trigger with unreadable definition",
				"trigger_id", t.ID, "trigger_name", t.Name, "error", err)
			continue
		}
		if !matched {
			continue
		}
		e.fire(ctx, t, event, payload)
	}
	return nil
}

// fire runs all actions of one matching trigger and records the outcome.
func (e *TriggerEngine) fire(ctx context.Context, t *workflow.AdvancedTrigger, event shared.DomainEvent, payload map[string]any) {
	var actionErrors []string

	actions, err := t.ActionsValue()
	if err != nil {
		actionErrors = append(actionErrors, err.Error())
	}
	for _, action := range actions {
		if err := e.execute(ctx, t, action, event, payload); err != nil {
			actionErrors = append(actionErrors, string(action.Type)+": "+err.Error())
		}
	}

	var fireErr error
	if len(actionErrors) > 0 {
		fireErr = errors.New(strings.Join(actionErrors, "; "))
		slog.WarnContext(ctx, "trigger fired with action failures",
			"trigger_id", t.ID, "trigger_name", t.Name, "event_type", event.EventType(), "error", fireErr)
	}

	t.RecordFire(time.Now(), fireErr)
	t.AddDomainEvent(workflow.NewTriggerFiredEvent(t, event.EventID(), event.EventType(), actionErrors))

	if err := e.triggerRepo.Save(ctx, t); err != nil {
		slog.WarnContext(ctx, "failed to record trigger fire",
			"trigger_id", t.ID, "trigger_name", t.Name, "error", err)
	}
}

func (e *TriggerEngine) execute(ctx context.Context, t *workflow.AdvancedTrigger, action workflow.Action, event shared.DomainEvent, payload map[string]any) error {
	switch action.Type {
	case workflow.ActionNotifyWebhook:
		if e.enqueuer == nil {
			return errors.New("webhook delivery is not configured")
		}
		registrationID, err := uuid.Parse(stringParam(action.Params, "registration_id"))
		if err != nil {
			return errors.New("registration_id is not a valid UUID")
		}
		return e.enqueuer.EnqueueForRegistration(ctx, t.TenantID, registrationID, event)

	case workflow.ActionSendEmail:
		if e.notifier == nil {
			return errors.New("email notifications are not configured")
		}
		recipient := stringParam(action.Params, "recipient")
		subject := stringParam(action.Params, "subject")
		if subject == "" {
			subject = fmt.Sprintf("Automation rule %q fired", t.Name)
		}
		body := stringParam(action.Params, "body")
		if body == "" {
			body = fmt.Sprintf("Rule %q fired for event %s.", t.Name, event.EventType())
		}
		return e.notifier.SendTriggerNotification(ctx, recipient, subject, expandPlaceholders(body, payload))

	case workflow.ActionFlagFilingForReview:
		if e.flagger == nil {
			return errors.New("filing review is not configured")
		}
		if event.AggregateType() != filing.AggregateTypeTaxFiling {
			return errors.New("flag_filing_for_review only applies to filing events")
		}
		reason := stringParam(action.Params, "reason")
		if reason == "" {
			reason = fmt.Sprintf("Flagged by automation rule %q", t.Name)
		}
		return e.flagger.FlagForReview(ctx, t.TenantID, event.AggregateID(), reason)

	case workflow.ActionCreateAuditNote:
		entry, err := audit.NewEntry(t.TenantID, audit.ActionNote, event.AggregateType(), expandPlaceholders(stringParam(action.Params, "note"), payload))
		if err != nil {
			return err
		}
		entry.WithEntity(event.AggregateID())
		if detail, err := json.Marshal(map[string]string{"trigger": t.Name, "event": event.EventType()}); err == nil {
			entry.WithDetail(string(detail))
		}
		return e.auditRepo.Append(ctx, entry)

	default:
		return errors.New("unknown action type: " + string(action.Type))
	}
}

// eventPayload flattens a domain event into the JSON shape triggers are
// written against, so condition fields line up with webhook payloads.
func eventPayload(event shared.DomainEvent) (map[string]any, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s event: %w", event.EventType(), err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to read %s event payload: %w", event.EventType(), err)
	}
	return payload, nil
}

// expandPlaceholders substitutes {{field.path}} references in action text
// with values from the event payload. Unknown references stay as-is.
func expandPlaceholders(text string, payload map[string]any) string {
	if !strings.Contains(text, "{{") {
		return text
	}

	var b strings.Builder
	for {
		start := strings.Index(text, "{{")
		if start < 0 {
			b.WriteString(text)
			break
		}
		end := strings.Index(text[start:], "}}")
		if end < 0 {
			b.WriteString(text)
			break
		}
		end += start

		b.WriteString(text[:start])
		path := strings.TrimSpace(text[start+2 : end])
		if value, found := workflow.LookupField(payload, path); found {
			b.WriteString(fmt.Sprintf("%v", value))
		} else {
			b.WriteString(text[start : end+2])
		}
		text = text[end+2:]
	}
	return b.String()
}

func stringParam(params map[string]any, key string) string {
	if params == nil {
		return ""
	}
	if s, ok := params[key].(string); ok {
		return s
	}
	return ""
}
