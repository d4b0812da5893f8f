package webhook

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus represents the lifecycle state of a queued delivery
type DeliveryStatus string

const (
	DeliveryStatusPending    DeliveryStatus = "PENDING"
	DeliveryStatusProcessing DeliveryStatus = "PROCESSING"
	DeliveryStatusSent       DeliveryStatus = "SENT"
	DeliveryStatusFailed     DeliveryStatus = "FAILED"
	DeliveryStatusDead       DeliveryStatus = "DEAD"
)

// DeliveryBaseBackoff is the wait before the first redelivery attempt.
// Each further attempt doubles it: 30s, 1m, 2m, 4m, ...
const DeliveryBaseBackoff = 30 * time.Second

// Delivery is one queued webhook dispatch. It is persisted before the HTTP
// call is made so that deliveries survive process restarts, mirroring the
// transactional outbox the event pipeline uses.
type Delivery struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	RegistrationID uuid.UUID
	EventID        uuid.UUID
	EventType      string
	Payload        []byte
	Signature      string // Computed at enqueue time with the registration secret
	Status         DeliveryStatus
	AttemptCount   int
	MaxRetries     int
	LastError      string
	ResponseStatus int // HTTP status of the last attempt, 0 when the request never completed
	NextRetryAt    *time.Time
	DeliveredAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewDelivery enqueues a payload for a registration. The signature is fixed
// at enqueue time so a later secret rotation does not invalidate in-flight
// deliveries.
func NewDelivery(reg *Registration, eventID uuid.UUID, eventType string, payload []byte) *Delivery {
	now := time.Now()
	return &Delivery{
		ID:             uuid.New(),
		TenantID:       reg.TenantID,
		RegistrationID: reg.ID,
		EventID:        eventID,
		EventType:      eventType,
		Payload:        payload,
		Signature:      Sign(reg.Secret, payload),
		Status:         DeliveryStatusPending,
		AttemptCount:   0,
		MaxRetries:     reg.MaxRetries,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsDue reports whether the delivery should be attempted at the given time.
func (d *Delivery) IsDue(now time.Time) bool {
	switch d.Status {
	case DeliveryStatusPending:
		return true
	case DeliveryStatusFailed:
		return d.NextRetryAt == nil || !d.NextRetryAt.After(now)
	default:
		return false
	}
}

// MarkProcessing claims the delivery for an attempt.
func (d *Delivery) MarkProcessing() error {
	if d.Status != DeliveryStatusPending && d.Status != DeliveryStatusFailed {
		return errors.New("can only mark pending or failed deliveries as processing")
	}
	d.Status = DeliveryStatusProcessing
	d.AttemptCount++
	d.UpdatedAt = time.Now()
	return nil
}

// MarkSent records a successful delivery (any 2xx response).
func (d *Delivery) MarkSent(httpStatus int) {
	now := time.Now()
	d.Status = DeliveryStatusSent
	d.ResponseStatus = httpStatus
	d.LastError = ""
	d.NextRetryAt = nil
	d.DeliveredAt = &now
	d.UpdatedAt = now
}

// MarkFailed records a failed attempt and schedules the next retry with
// exponential backoff. Once the attempt budget is exhausted the delivery
// is parked as dead and requires manual redelivery.
func (d *Delivery) MarkFailed(httpStatus int, errMsg string) {
	d.ResponseStatus = httpStatus
	d.LastError = errMsg
	d.UpdatedAt = time.Now()

	if d.AttemptCount >= d.MaxRetries {
		d.Status = DeliveryStatusDead
		d.NextRetryAt = nil
		return
	}

	d.Status = DeliveryStatusFailed
	backoff := DeliveryBaseBackoff * time.Duration(1<<uint(d.AttemptCount-1))
	nextRetry := time.Now().Add(backoff)
	d.NextRetryAt = &nextRetry
}

// Redeliver resets a dead or failed delivery so the dispatcher picks it up
// again immediately with a fresh attempt budget.
func (d *Delivery) Redeliver() error {
	if d.Status != DeliveryStatusDead && d.Status != DeliveryStatusFailed {
		return errors.New("can only redeliver failed or dead deliveries")
	}
	d.Status = DeliveryStatusPending
	d.AttemptCount = 0
	d.LastError = ""
	d.ResponseStatus = 0
	d.NextRetryAt = nil
	d.UpdatedAt = time.Now()
	return nil
}

// Kill parks the delivery as dead immediately, outside the retry budget.
// The dispatcher uses this when the registration backing a queued delivery
// no longer exists.
func (d *Delivery) Kill(reason string) {
	d.Status = DeliveryStatusDead
	d.LastError = reason
	d.NextRetryAt = nil
	d.UpdatedAt = time.Now()
}

// IsDead returns true when the delivery exhausted its attempts.
func (d *Delivery) IsDead() bool {
	return d.Status == DeliveryStatusDead
}

// DeliveryStats aggregates delivery counts for one registration.
type DeliveryStats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
}

// Total returns the number of deliveries across all states.
func (s DeliveryStats) Total() int64 {
	return s.Pending + s.Processing + s.Sent + s.Failed + s.Dead
}
