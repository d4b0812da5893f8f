package audit

import (
	"strings"
	"time"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Action classifies what happened to an entity
type Action string

const (
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionStatusChange Action = "status_change"
	ActionLogin        Action = "login"
	ActionLoginFailed  Action = "login_failed"
	ActionExport       Action = "export"
	ActionCalculate    Action = "calculate"
	ActionNote         Action = "note" // Free-form note, e.g. appended by an automation trigger
)

// Entry is one immutable line in the audit trail. Entries are append-only:
// there is no update or delete operation, only retention-driven purging.
type Entry struct {
	ID         uuid.UUID  `json:"id"`
	TenantID   uuid.UUID  `json:"tenant_id"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty"` // Nil for system and scheduler actions
	ActorName  string     `json:"actor_name"`
	Action     Action     `json:"action"`
	EntityType string     `json:"entity_type"`
	EntityID   *uuid.UUID `json:"entity_id,omitempty"`
	Summary    string     `json:"summary"`
	Detail     string     `json:"detail,omitempty"` // JSON snapshot of changed fields
	IPAddress  string     `json:"ip_address,omitempty"`
	UserAgent  string     `json:"user_agent,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// SystemActorName is recorded when no authenticated user performed the action.
const SystemActorName = "system"

// NewEntry creates an audit entry for a user action.
func NewEntry(tenantID uuid.UUID, action Action, entityType, summary string) (*Entry, error) {
	if err := validateAction(action); err != nil {
		return nil, err
	}
	if strings.TrimSpace(entityType) == "" {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", "Audit entity type is required")
	}
	if strings.TrimSpace(summary) == "" {
		return nil, shared.NewDomainError("INVALID_SUMMARY", "Audit summary is required")
	}

	return &Entry{
		ID:         uuid.New(),
		TenantID:   tenantID,
		ActorName:  SystemActorName,
		Action:     action,
		EntityType: entityType,
		Summary:    summary,
		OccurredAt: time.Now(),
	}, nil
}

// WithActor attributes the entry to an authenticated user.
func (e *Entry) WithActor(actorID uuid.UUID, actorName string) *Entry {
	e.ActorID = &actorID
	if actorName != "" {
		e.ActorName = actorName
	}
	return e
}

// WithEntity links the entry to a specific aggregate instance.
func (e *Entry) WithEntity(entityID uuid.UUID) *Entry {
	e.EntityID = &entityID
	return e
}

// WithDetail attaches a JSON snapshot of the change.
func (e *Entry) WithDetail(detailJSON string) *Entry {
	e.Detail = detailJSON
	return e
}

// WithRequestContext records where the action came from.
func (e *Entry) WithRequestContext(ip, userAgent string) *Entry {
	e.IPAddress = ip
	e.UserAgent = userAgent
	return e
}

func validateAction(action Action) error {
	switch action {
	case ActionCreate, ActionUpdate, ActionDelete, ActionStatusChange,
		ActionLogin, ActionLoginFailed, ActionExport, ActionCalculate, ActionNote:
		return nil
	}
	return shared.NewDomainError("INVALID_ACTION", "Unknown audit action: "+string(action))
}
