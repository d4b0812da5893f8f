package email

import (
	"context"
	"time"

	identityapp "github.com/bettstax/backend/internal/application/identity"
	workflowapp "github.com/bettstax/backend/internal/application/workflow"
)

// NoopSender satisfies the mail interfaces without sending anything.
// Used in tests and in deployments without an SMTP server.
type NoopSender struct{}

var (
	_ workflowapp.Notifier      = (*NoopSender)(nil)
	_ identityapp.WelcomeMailer = (*NoopSender)(nil)
)

func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

func (n *NoopSender) SendTriggerNotification(ctx context.Context, recipient, subject, body string) error {
	return nil
}

func (n *NoopSender) SendWelcome(ctx context.Context, recipient, name, temporaryPassword string) error {
	return nil
}

func (n *NoopSender) SendDeadlineReminder(ctx context.Context, recipient, clientName, taxType string, dueDate time.Time) error {
	return nil
}

func (n *NoopSender) SendFilingStatusNotification(ctx context.Context, recipient, clientName, taxType, period, status string) error {
	return nil
}
