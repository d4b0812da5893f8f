package compliance

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bettstax/backend/internal/domain/client"
	"github.com/bettstax/backend/internal/domain/filing"
	"github.com/bettstax/backend/internal/domain/identity"
	"github.com/bettstax/backend/internal/domain/settings"
	"github.com/bettstax/backend/internal/domain/shared"
)

// DeadlineMailer sends one filing deadline reminder. The SMTP sender in the
// infrastructure layer implements it.
type DeadlineMailer interface {
	SendDeadlineReminder(ctx context.Context, recipient, clientName, taxType string, dueDate time.Time) error
}

// LeadDaysProvider reads the reminder lead-day setting for a tenant.
// Satisfied by the settings service.
type LeadDaysProvider interface {
	StringValue(ctx context.Context, tenantID uuid.UUID, key, def string) string
}

// Bounds one tenant's reminder batch per lead day. A practice with more
// filings due on a single day than this has bigger problems than email.
const reminderBatchSize = 500

var defaultLeadDays = []int{14, 7, 1}

// ReminderService drives the daily deadline reminder scan. For every active
// tenant it looks up filings due exactly N days out for each configured
// lead day and mails the client contact.
type ReminderService struct {
	tenantRepo identity.TenantRepository
	filingRepo filing.TaxFilingRepository
	clientRepo client.ClientRepository
	settings   LeadDaysProvider
	mailer     DeadlineMailer
}

// NewReminderService creates a new ReminderService. The mailer may be nil,
// in which case scans count zero reminders.
func NewReminderService(
	tenantRepo identity.TenantRepository,
	filingRepo filing.TaxFilingRepository,
	clientRepo client.ClientRepository,
	settingsProvider LeadDaysProvider,
	mailer DeadlineMailer,
) *ReminderService {
	return &ReminderService{
		tenantRepo: tenantRepo,
		filingRepo: filingRepo,
		clientRepo: clientRepo,
		settings:   settingsProvider,
		mailer:     mailer,
	}
}

// SendUpcomingReminders runs the reminder scan for every active tenant as of
// the given day and returns the number of reminders sent. Per-filing mail
// failures are logged and skipped so one bad address cannot stall the scan.
func (s *ReminderService) SendUpcomingReminders(ctx context.Context, asOf time.Time) (int, error) {
	if s.mailer == nil {
		return 0, nil
	}

	tenants, err := s.tenantRepo.FindActive(ctx, shared.Filter{})
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range tenants {
		sent += s.remindTenant(ctx, tenants[i].ID, asOf)
	}
	return sent, nil
}

func (s *ReminderService) remindTenant(ctx context.Context, tenantID uuid.UUID, asOf time.Time) int {
	leadDays := parseLeadDays(s.settings.StringValue(ctx, tenantID, settings.KeyReminderLeadDays, ""))

	// Clients repeat across filings and lead days; resolve each once.
	contacts := make(map[uuid.UUID]*client.Client)

	sent := 0
	for _, lead := range leadDays {
		day := asOf.AddDate(0, 0, lead)
		dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

		filings, err := s.filingRepo.FindDueBetween(ctx, tenantID, dayStart, dayStart.AddDate(0, 0, 1), shared.Filter{
			Page:     1,
			PageSize: reminderBatchSize,
			OrderBy:  "due_date",
			OrderDir: "asc",
		})
		if err != nil {
			slog.WarnContext(ctx, "deadline reminder scan failed for tenant",
				"tenant_id", tenantID,
				"lead_days", lead,
				"error", err)
			continue
		}

		for i := range filings {
			f := &filings[i]

			c, ok := contacts[f.ClientID]
			if !ok {
				c, err = s.clientRepo.FindByIDForTenant(ctx, tenantID, f.ClientID)
				if err != nil {
					slog.WarnContext(ctx, "reminder skipped, client lookup failed",
						"filing_id", f.ID,
						"client_id", f.ClientID,
						"error", err)
					continue
				}
				contacts[f.ClientID] = c
			}
			if c.Email == "" {
				continue
			}

			if err := s.mailer.SendDeadlineReminder(ctx, c.Email, c.Name, taxTypeLabel(f.TaxType), f.DueDate); err != nil {
				slog.WarnContext(ctx, "deadline reminder mail failed",
					"filing_id", f.ID,
					"recipient", c.Email,
					"error", err)
				continue
			}
			sent++
		}
	}
	return sent
}

// parseLeadDays reads a comma-separated lead-day list like "14,7,1".
// Malformed input falls back to the default schedule.
func parseLeadDays(value string) []int {
	if strings.TrimSpace(value) == "" {
		return defaultLeadDays
	}

	var days []int
	for _, part := range strings.Split(value, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return defaultLeadDays
		}
		days = append(days, n)
	}
	if len(days) == 0 {
		return defaultLeadDays
	}
	return days
}

func taxTypeLabel(t filing.TaxType) string {
	switch t {
	case filing.TaxTypeGST:
		return "GST"
	case filing.TaxTypeIncomeTax:
		return "Income Tax"
	case filing.TaxTypePayrollPAYE:
		return "PAYE"
	case filing.TaxTypeWithholding:
		return "Withholding Tax"
	default:
		return string(t)
	}
}
