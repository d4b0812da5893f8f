package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	auditapp "github.com/bettstax/backend/internal/application/audit"
	filingapp "github.com/bettstax/backend/internal/application/filing"
	reportapp "github.com/bettstax/backend/internal/application/report"
)

type MockOverdueSweeper struct {
	mock.Mock
}

func (m *MockOverdueSweeper) SweepOverdue(ctx context.Context, asOf time.Time) (*filingapp.SweepResult, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*filingapp.SweepResult), args.Error(1)
}

type MockDeadlineReminder struct {
	mock.Mock
}

func (m *MockDeadlineReminder) SendUpcomingReminders(ctx context.Context, asOf time.Time) (int, error) {
	args := m.Called(ctx, asOf)
	return args.Int(0), args.Error(1)
}

type MockReportRunner struct {
	mock.Mock
}

func (m *MockReportRunner) RunScheduled(ctx context.Context, schedule string, now time.Time) (*reportapp.ScheduledRunResponse, error) {
	args := m.Called(ctx, schedule, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reportapp.ScheduledRunResponse), args.Error(1)
}

type MockUploadCleaner struct {
	mock.Mock
}

func (m *MockUploadCleaner) CleanupStaleUploads(ctx context.Context, limit int) (int, error) {
	args := m.Called(ctx, limit)
	return args.Int(0), args.Error(1)
}

type MockAuditPurger struct {
	mock.Mock
}

func (m *MockAuditPurger) Purge(ctx context.Context, req auditapp.PurgeRequest) (*auditapp.PurgeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditapp.PurgeResponse), args.Error(1)
}

func newTestExecutor() (*MaintenanceExecutor, *MockOverdueSweeper, *MockDeadlineReminder, *MockReportRunner, *MockUploadCleaner, *MockAuditPurger) {
	sweeper := new(MockOverdueSweeper)
	reminder := new(MockDeadlineReminder)
	reports := new(MockReportRunner)
	cleaner := new(MockUploadCleaner)
	purger := new(MockAuditPurger)
	e := NewMaintenanceExecutor(sweeper, reminder, reports, cleaner, purger,
		DefaultMaintenanceExecutorConfig(), zap.NewNop())
	return e, sweeper, reminder, reports, cleaner, purger
}

func TestMaintenanceExecutor_Execute(t *testing.T) {
	ctx := context.Background()
	asOf := time.Date(2026, 7, 15, 2, 0, 0, 0, time.UTC)

	t.Run("deadline scan sweeps then reminds", func(t *testing.T) {
		e, sweeper, reminder, _, _, _ := newTestExecutor()
		sweeper.On("SweepOverdue", ctx, asOf).Return(&filingapp.SweepResult{Scanned: 10, Marked: 3}, nil)
		reminder.On("SendUpcomingReminders", ctx, asOf).Return(5, nil)

		err := e.Execute(ctx, NewJob(JobTypeDeadlineScan, asOf, 0))

		assert.NoError(t, err)
		sweeper.AssertExpectations(t)
		reminder.AssertExpectations(t)
	})

	t.Run("sweep failure aborts before reminders", func(t *testing.T) {
		e, sweeper, reminder, _, _, _ := newTestExecutor()
		sweeper.On("SweepOverdue", ctx, asOf).Return(nil, errors.New("db down"))

		err := e.Execute(ctx, NewJob(JobTypeDeadlineScan, asOf, 0))

		assert.ErrorContains(t, err, "overdue sweep")
		reminder.AssertNotCalled(t, "SendUpcomingReminders", mock.Anything, mock.Anything)
	})

	t.Run("report job passes its schedule through", func(t *testing.T) {
		e, _, _, reports, _, _ := newTestExecutor()
		reports.On("RunScheduled", ctx, "monthly", asOf).Return(&reportapp.ScheduledRunResponse{Generated: 2}, nil)

		job := NewJob(JobTypeScheduledReports, asOf, 0)
		job.Schedule = "monthly"

		assert.NoError(t, e.Execute(ctx, job))
		reports.AssertExpectations(t)
	})

	t.Run("report job defaults to the daily schedule", func(t *testing.T) {
		e, _, _, reports, _, _ := newTestExecutor()
		reports.On("RunScheduled", ctx, "daily", asOf).Return(&reportapp.ScheduledRunResponse{}, nil)

		assert.NoError(t, e.Execute(ctx, NewJob(JobTypeScheduledReports, asOf, 0)))
		reports.AssertExpectations(t)
	})

	t.Run("document cleanup uses the configured batch size", func(t *testing.T) {
		e, _, _, _, cleaner, _ := newTestExecutor()
		cleaner.On("CleanupStaleUploads", ctx, 200).Return(7, nil)

		assert.NoError(t, e.Execute(ctx, NewJob(JobTypeDocumentCleanup, asOf, 0)))
		cleaner.AssertExpectations(t)
	})

	t.Run("audit purge uses the configured retention", func(t *testing.T) {
		e, _, _, _, _, purger := newTestExecutor()
		purger.On("Purge", ctx, auditapp.PurgeRequest{RetentionDays: 365}).
			Return(&auditapp.PurgeResponse{Removed: 40, Before: asOf.AddDate(-1, 0, 0)}, nil)

		assert.NoError(t, e.Execute(ctx, NewJob(JobTypeAuditPurge, asOf, 0)))
		purger.AssertExpectations(t)
	})

	t.Run("unknown job type errors", func(t *testing.T) {
		e, _, _, _, _, _ := newTestExecutor()

		err := e.Execute(ctx, NewJob(JobType("VACUUM"), asOf, 0))
		assert.ErrorIs(t, err, ErrUnknownJobType)
	})

	t.Run("nil dependencies turn jobs into no-ops", func(t *testing.T) {
		e := NewMaintenanceExecutor(nil, nil, nil, nil, nil,
			DefaultMaintenanceExecutorConfig(), zap.NewNop())

		for _, jobType := range DailyJobTypes() {
			assert.NoError(t, e.Execute(ctx, NewJob(jobType, asOf, 0)))
		}
	})
}
