package audit

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bettstax/backend/internal/domain/audit"
	"github.com/bettstax/backend/internal/domain/shared"
)

// EventRecorder subscribes to the in-process event bus and appends one audit
// entry per domain event, so every aggregate gets a change history without
// each service writing audit rows by hand.
type EventRecorder struct {
	entryRepo audit.EntryRepository
}

var _ shared.EventHandler = (*EventRecorder)(nil)

// NewEventRecorder creates a recorder backed by the given repository
func NewEventRecorder(entryRepo audit.EntryRepository) *EventRecorder {
	return &EventRecorder{entryRepo: entryRepo}
}

// EventTypes returns nil so the recorder receives every published event
func (r *EventRecorder) EventTypes() []string {
	return nil
}

// Handle turns a domain event into an audit entry. The event payload is
// attached verbatim as the detail snapshot.
func (r *EventRecorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	entry, err := audit.NewEntry(event.TenantID(), actionFor(event.EventType()), event.AggregateType(), summarize(event.EventType()))
	if err != nil {
		return err
	}
	entry.WithEntity(event.AggregateID())
	if detail, err := json.Marshal(event); err == nil {
		entry.WithDetail(string(detail))
	}
	return r.entryRepo.Append(ctx, entry)
}

// actionFor classifies an event type by its suffix. Anything that is not
// clearly a create, update or delete counts as a status change.
func actionFor(eventType string) audit.Action {
	switch {
	case strings.HasSuffix(eventType, ".created"),
		strings.HasSuffix(eventType, ".registered"),
		strings.HasSuffix(eventType, ".recorded"),
		strings.HasSuffix(eventType, ".upload_initiated"):
		return audit.ActionCreate
	case strings.HasSuffix(eventType, ".updated"),
		strings.HasSuffix(eventType, ".assigned"),
		strings.HasSuffix(eventType, ".secret_rotated"),
		strings.HasSuffix(eventType, ".password_changed"),
		strings.HasSuffix(eventType, ".role_changed"):
		return audit.ActionUpdate
	case strings.HasSuffix(eventType, ".deleted"):
		return audit.ActionDelete
	default:
		return audit.ActionStatusChange
	}
}

// summarize renders "filing.status_changed" as "Filing status changed"
func summarize(eventType string) string {
	s := strings.NewReplacer(".", " ", "_", " ").Replace(eventType)
	if s == "" {
		return eventType
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
