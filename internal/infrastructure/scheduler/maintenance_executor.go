package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	auditapp "github.com/bettstax/backend/internal/application/audit"
	filingapp "github.com/bettstax/backend/internal/application/filing"
	reportapp "github.com/bettstax/backend/internal/application/report"
)

// OverdueSweeper marks filings past their due date as overdue and applies
// late charges. Implemented by the filing service.
type OverdueSweeper interface {
	SweepOverdue(ctx context.Context, asOf time.Time) (*filingapp.SweepResult, error)
}

// DeadlineReminder mails upcoming filing deadlines to client contacts.
// Implemented by the compliance reminder service.
type DeadlineReminder interface {
	SendUpcomingReminders(ctx context.Context, asOf time.Time) (int, error)
}

// ScheduledReportRunner generates reports for templates carrying the given
// schedule. Implemented by the report service.
type ScheduledReportRunner interface {
	RunScheduled(ctx context.Context, schedule string, now time.Time) (*reportapp.ScheduledRunResponse, error)
}

// UploadCleaner expires documents stuck in pending_upload. Implemented by
// the document service.
type UploadCleaner interface {
	CleanupStaleUploads(ctx context.Context, limit int) (int, error)
}

// AuditPurger enforces the audit log retention window. Implemented by the
// audit service.
type AuditPurger interface {
	Purge(ctx context.Context, req auditapp.PurgeRequest) (*auditapp.PurgeResponse, error)
}

// MaintenanceExecutorConfig tunes the maintenance jobs
type MaintenanceExecutorConfig struct {
	// AuditRetentionDays is how long audit entries are kept. The audit
	// service enforces a 30-day floor.
	AuditRetentionDays int
	// DocumentCleanupBatch bounds one cleanup pass
	DocumentCleanupBatch int
}

// DefaultMaintenanceExecutorConfig returns the default tuning
func DefaultMaintenanceExecutorConfig() MaintenanceExecutorConfig {
	return MaintenanceExecutorConfig{
		AuditRetentionDays:   365,
		DocumentCleanupBatch: 200,
	}
}

// MaintenanceExecutor dispatches maintenance jobs to the application
// services that own each concern. Any nil dependency turns its job type
// into a no-op, so deployments can switch individual jobs off.
type MaintenanceExecutor struct {
	sweeper  OverdueSweeper
	reminder DeadlineReminder
	reports  ScheduledReportRunner
	cleaner  UploadCleaner
	purger   AuditPurger
	config   MaintenanceExecutorConfig
	logger   *zap.Logger
}

var _ JobExecutor = (*MaintenanceExecutor)(nil)

// NewMaintenanceExecutor creates a new maintenance executor
func NewMaintenanceExecutor(
	sweeper OverdueSweeper,
	reminder DeadlineReminder,
	reports ScheduledReportRunner,
	cleaner UploadCleaner,
	purger AuditPurger,
	config MaintenanceExecutorConfig,
	logger *zap.Logger,
) *MaintenanceExecutor {
	return &MaintenanceExecutor{
		sweeper:  sweeper,
		reminder: reminder,
		reports:  reports,
		cleaner:  cleaner,
		purger:   purger,
		config:   config,
		logger:   logger,
	}
}

// Execute runs one maintenance job
func (e *MaintenanceExecutor) Execute(ctx context.Context, job *Job) error {
	switch job.Type {
	case JobTypeDeadlineScan:
		return e.runDeadlineScan(ctx, job)
	case JobTypeScheduledReports:
		return e.runScheduledReports(ctx, job)
	case JobTypeDocumentCleanup:
		return e.runDocumentCleanup(ctx, job)
	case JobTypeAuditPurge:
		return e.runAuditPurge(ctx, job)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownJobType, job.Type)
	}
}

// runDeadlineScan flags overdue filings and then sends reminders for
// upcoming deadlines. The sweep runs first so a filing due today is never
// reminded about and marked overdue in the same pass.
func (e *MaintenanceExecutor) runDeadlineScan(ctx context.Context, job *Job) error {
	if e.sweeper != nil {
		result, err := e.sweeper.SweepOverdue(ctx, job.AsOf)
		if err != nil {
			return fmt.Errorf("overdue sweep: %w", err)
		}
		e.logger.Info("Overdue sweep finished",
			zap.String("job_id", job.ID.String()),
			zap.Int("scanned", result.Scanned),
			zap.Int("marked", result.Marked),
		)
	}

	if e.reminder != nil {
		sent, err := e.reminder.SendUpcomingReminders(ctx, job.AsOf)
		if err != nil {
			return fmt.Errorf("deadline reminders: %w", err)
		}
		e.logger.Info("Deadline reminders sent",
			zap.String("job_id", job.ID.String()),
			zap.Int("sent", sent),
		)
	}

	return nil
}

func (e *MaintenanceExecutor) runScheduledReports(ctx context.Context, job *Job) error {
	if e.reports == nil {
		return nil
	}

	schedule := job.Schedule
	if schedule == "" {
		schedule = "daily"
	}

	result, err := e.reports.RunScheduled(ctx, schedule, job.AsOf)
	if err != nil {
		return fmt.Errorf("scheduled reports: %w", err)
	}

	e.logger.Info("Scheduled reports generated",
		zap.String("job_id", job.ID.String()),
		zap.String("schedule", schedule),
		zap.Int("generated", result.Generated),
		zap.Int("failed", result.Failed),
	)
	return nil
}

func (e *MaintenanceExecutor) runDocumentCleanup(ctx context.Context, job *Job) error {
	if e.cleaner == nil {
		return nil
	}

	expired, err := e.cleaner.CleanupStaleUploads(ctx, e.config.DocumentCleanupBatch)
	if err != nil {
		return fmt.Errorf("document cleanup: %w", err)
	}

	if expired > 0 {
		e.logger.Info("Expired stale pending uploads",
			zap.String("job_id", job.ID.String()),
			zap.Int("expired", expired),
		)
	}
	return nil
}

func (e *MaintenanceExecutor) runAuditPurge(ctx context.Context, job *Job) error {
	if e.purger == nil {
		return nil
	}

	result, err := e.purger.Purge(ctx, auditapp.PurgeRequest{RetentionDays: e.config.AuditRetentionDays})
	if err != nil {
		return fmt.Errorf("audit purge: %w", err)
	}

	if result.Removed > 0 {
		e.logger.Info("Purged audit entries",
			zap.String("job_id", job.ID.String()),
			zap.Int64("removed", result.Removed),
			zap.Time("before", result.Before),
		)
	}
	return nil
}
