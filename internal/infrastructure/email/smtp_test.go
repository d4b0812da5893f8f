package email

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/bettstax/backend/internal/infrastructure/config"
)

func TestSMTPSender_DisabledDropsMail(t *testing.T) {
	sender := NewSMTPSender(config.EmailConfig{Enabled: false}, zap.NewNop())
	ctx := context.Background()

	assert.NoError(t, sender.SendTriggerNotification(ctx, "aminata@client.sl", "Filing overdue", "body"))
	assert.NoError(t, sender.SendWelcome(ctx, "aminata@client.sl", "Aminata Sesay", "Temp1234"))
	assert.NoError(t, sender.SendDeadlineReminder(ctx, "aminata@client.sl", "Sesay Trading", "GST", time.Now().AddDate(0, 0, 7)))
	assert.NoError(t, sender.SendFilingStatusNotification(ctx, "aminata@client.sl", "Sesay Trading", "GST", "2026-07", "FILED"))
}

func TestNoopSender(t *testing.T) {
	sender := NewNoopSender()
	ctx := context.Background()

	assert.NoError(t, sender.SendTriggerNotification(ctx, "x@y.sl", "s", "b"))
	assert.NoError(t, sender.SendWelcome(ctx, "x@y.sl", "n", "p"))
	assert.NoError(t, sender.SendDeadlineReminder(ctx, "x@y.sl", "c", "GST", time.Now()))
	assert.NoError(t, sender.SendFilingStatusNotification(ctx, "x@y.sl", "c", "GST", "2026-07", "FILED"))
}
