package email

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	identityapp "github.com/bettstax/backend/internal/application/identity"
	workflowapp "github.com/bettstax/backend/internal/application/workflow"
	"github.com/bettstax/backend/internal/infrastructure/config"
)

// SMTPSender delivers notification mail over SMTP. It backs every outbound
// mail path: workflow trigger notifications, deadline reminders, filing
// status updates and welcome mail for new accounts.
type SMTPSender struct {
	config config.EmailConfig
	logger *zap.Logger
}

var (
	_ workflowapp.Notifier      = (*SMTPSender)(nil)
	_ identityapp.WelcomeMailer = (*SMTPSender)(nil)
)

// NewSMTPSender creates a sender from the email config section.
func NewSMTPSender(cfg config.EmailConfig, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{
		config: cfg,
		logger: logger,
	}
}

// SendTriggerNotification delivers a workflow trigger's send_email action.
// Subject and body arrive fully expanded from the trigger engine.
func (s *SMTPSender) SendTriggerNotification(ctx context.Context, recipient, subject, body string) error {
	return s.send(ctx, recipient, subject, body)
}

// SendWelcome mails initial credentials to a newly created user.
func (s *SMTPSender) SendWelcome(ctx context.Context, recipient, name, temporaryPassword string) error {
	subject := "Welcome to BettsTax"
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"An account has been created for you on the BettsTax client portal.\n\n"+
			"Email: %s\n"+
			"Temporary password: %s\n\n"+
			"You will be asked to choose a new password when you first sign in.\n\n"+
			"Betts & Co",
		name, recipient, temporaryPassword)
	return s.send(ctx, recipient, subject, body)
}

// SendDeadlineReminder mails an upcoming filing deadline to a client contact.
func (s *SMTPSender) SendDeadlineReminder(ctx context.Context, recipient, clientName, taxType string, dueDate time.Time) error {
	subject := fmt.Sprintf("Reminder: %s filing due %s", taxType, dueDate.Format("2 January 2006"))
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"This is a reminder that your %s filing is due on %s.\n\n"+
			"Please make sure all required documents are submitted before the deadline "+
			"to avoid penalties under the Finance Act.\n\n"+
			"Betts & Co",
		clientName, taxType, dueDate.Format("Monday, 2 January 2006"))
	return s.send(ctx, recipient, subject, body)
}

// SendFilingStatusNotification mails a filing status change to a client contact.
func (s *SMTPSender) SendFilingStatusNotification(ctx context.Context, recipient, clientName, taxType, period, status string) error {
	subject := fmt.Sprintf("Your %s filing for %s is now %s", taxType, period, status)
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"The status of your %s filing for %s has changed to: %s.\n\n"+
			"Sign in to the BettsTax portal to view the details.\n\n"+
			"Betts & Co",
		clientName, taxType, period, status)
	return s.send(ctx, recipient, subject, body)
}

func (s *SMTPSender) send(ctx context.Context, recipient, subject, body string) error {
	if !s.config.Enabled {
		s.logger.Debug("Email disabled, dropping message",
			zap.String("recipient", recipient),
			zap.String("subject", subject))
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(s.config.FromName, s.config.From); err != nil {
		return fmt.Errorf("email: invalid sender address: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return fmt.Errorf("email: invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.config.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.config.Username),
			mail.WithPassword(s.config.Password),
		)
	}

	client, err := mail.NewClient(s.config.Host, opts...)
	if err != nil {
		return fmt.Errorf("email: client setup failed: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("email: send failed: %w", err)
	}

	s.logger.Debug("Email sent",
		zap.String("recipient", recipient),
		zap.String("subject", subject))
	return nil
}
