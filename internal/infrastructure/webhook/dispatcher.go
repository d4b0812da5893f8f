package webhook

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	webhookapp "github.com/bettstax/backend/internal/application/webhook"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/domain/webhook"
	"github.com/bettstax/backend/internal/infrastructure/config"
)

// Dispatcher polls the delivery queue and performs outbound HTTP calls.
// Deliveries are claimed by flipping them to PROCESSING before the request
// goes out, so a crash mid-attempt leaves a stuck row the sweep returns to
// PENDING instead of losing or duplicating it.
type Dispatcher struct {
	deliveryRepo     webhook.DeliveryRepository
	registrationRepo webhook.RegistrationRepository
	sender           webhookapp.DeliverySender
	config           config.WebhookConfig
	logger           *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewDispatcher creates a dispatcher. It does not start polling until Start
// is called.
func NewDispatcher(
	deliveryRepo webhook.DeliveryRepository,
	registrationRepo webhook.RegistrationRepository,
	sender webhookapp.DeliverySender,
	cfg config.WebhookConfig,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		deliveryRepo:     deliveryRepo,
		registrationRepo: registrationRepo,
		sender:           sender,
		config:           cfg,
		logger:           logger,
	}
}

// Start launches the poll and sweep loops.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = true
	d.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(2)
	go d.pollLoop(ctx)
	go d.sweepLoop(ctx)

	d.logger.Info("Webhook dispatcher started",
		zap.Duration("poll_interval", d.config.PollInterval),
		zap.Int("batch_size", d.config.BatchSize),
	)
	return nil
}

// Stop waits for in-flight attempts to finish.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = false
	d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("Webhook dispatcher stopped gracefully")
		return nil
	case <-ctx.Done():
		d.logger.Warn("Webhook dispatcher stop timed out")
		return ctx.Err()
	}
}

func (d *Dispatcher) pollLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.dispatchBatch(ctx)
		}
	}
}

func (d *Dispatcher) sweepLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.sweep(ctx)
		}
	}
}

// dispatchBatch claims and attempts one batch of due deliveries.
func (d *Dispatcher) dispatchBatch(ctx context.Context) {
	due, err := d.deliveryRepo.FindDue(ctx, time.Now(), d.config.BatchSize)
	if err != nil {
		d.logger.Error("Failed to poll due webhook deliveries", zap.Error(err))
		return
	}

	for _, delivery := range due {
		if ctx.Err() != nil {
			return
		}
		d.attempt(ctx, delivery)
	}
}

// attempt performs a single delivery attempt and persists the outcome.
func (d *Dispatcher) attempt(ctx context.Context, delivery *webhook.Delivery) {
	reg, err := d.registrationRepo.FindByID(ctx, delivery.RegistrationID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// The registration was deleted from under the queue; park
			// the delivery rather than retrying into nothing.
			delivery.Kill("webhook registration no longer exists")
			if updateErr := d.deliveryRepo.Update(ctx, delivery); updateErr != nil {
				d.logger.Error("Failed to park orphaned webhook delivery",
					zap.String("delivery_id", delivery.ID.String()),
					zap.Error(updateErr))
			}
			return
		}
		// Transient lookup failure; leave the row due so the next poll
		// picks it up again.
		d.logger.Error("Failed to load webhook registration",
			zap.String("delivery_id", delivery.ID.String()),
			zap.String("registration_id", delivery.RegistrationID.String()),
			zap.Error(err))
		return
	}

	if !reg.IsDeliverable() {
		// Paused endpoint: leave the delivery queued. FindDue keeps
		// returning it, but the backoff below only advances on real
		// attempts, so skipping here is cheap and reactivation resumes
		// delivery where it left off.
		return
	}

	if err := delivery.MarkProcessing(); err != nil {
		return
	}
	if err := d.deliveryRepo.Update(ctx, delivery); err != nil {
		d.logger.Error("Failed to claim webhook delivery",
			zap.String("delivery_id", delivery.ID.String()),
			zap.Error(err))
		return
	}

	status, sendErr := d.sender.Send(ctx, reg, delivery)
	if sendErr != nil {
		delivery.MarkFailed(status, sendErr.Error())
		d.logger.Warn("Webhook delivery attempt failed",
			zap.String("delivery_id", delivery.ID.String()),
			zap.String("event_type", delivery.EventType),
			zap.String("target_url", reg.TargetURL),
			zap.Int("attempt", delivery.AttemptCount),
			zap.Int("http_status", status),
			zap.Error(sendErr))
	} else {
		delivery.MarkSent(status)
		d.logger.Debug("Webhook delivered",
			zap.String("delivery_id", delivery.ID.String()),
			zap.String("event_type", delivery.EventType),
			zap.Int("http_status", status))
	}

	if err := d.deliveryRepo.Update(ctx, delivery); err != nil {
		d.logger.Error("Failed to record webhook delivery outcome",
			zap.String("delivery_id", delivery.ID.String()),
			zap.Error(err))
		return
	}

	reg.RecordDelivery(time.Now(), status)
	if err := d.registrationRepo.Save(ctx, reg); err != nil {
		d.logger.Warn("Failed to record delivery on registration",
			zap.String("registration_id", reg.ID.String()),
			zap.Error(err))
	}
}

// sweep purges old sent deliveries and rescues rows stuck in PROCESSING
// after a crash.
func (d *Dispatcher) sweep(ctx context.Context) {
	purged, err := d.deliveryRepo.DeleteSentBefore(ctx, time.Now().Add(-d.config.SentRetention))
	if err != nil {
		d.logger.Error("Webhook delivery purge failed", zap.Error(err))
	} else if purged > 0 {
		d.logger.Info("Purged sent webhook deliveries", zap.Int64("count", purged))
	}

	reset, err := d.deliveryRepo.ResetStuckProcessing(ctx, time.Now().Add(-d.config.StuckResetAfter))
	if err != nil {
		d.logger.Error("Webhook stuck-delivery reset failed", zap.Error(err))
	} else if reset > 0 {
		d.logger.Warn("Reset stuck webhook deliveries", zap.Int64("count", reset))
	}
}
