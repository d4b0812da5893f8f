package compliance

import (
	"time"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PublicHoliday is a non-business day used by the due date calculator.
// Recurring holidays match on month and day every year.
type PublicHoliday struct {
	shared.TenantAggregateRoot
	Date      time.Time `gorm:"type:date;not null;index"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Recurring bool      `gorm:"not null;default:false"`
	Active    bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PublicHoliday) TableName() string {
	return "public_holidays"
}

// NewPublicHoliday creates a public holiday entry
func NewPublicHoliday(tenantID uuid.UUID, date time.Time, name string, recurring bool) (*PublicHoliday, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Holiday name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Holiday name cannot exceed 200 characters")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Holiday date is required")
	}

	return &PublicHoliday{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Date:                truncateToDay(date),
		Name:                name,
		Recurring:           recurring,
		Active:              true,
	}, nil
}

// Update changes the holiday entry
func (h *PublicHoliday) Update(date time.Time, name string, recurring bool) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Holiday name cannot be empty")
	}
	if date.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Holiday date is required")
	}

	h.Date = truncateToDay(date)
	h.Name = name
	h.Recurring = recurring
	h.UpdatedAt = time.Now()
	h.IncrementVersion()

	return nil
}

// Activate re-enables the holiday for deadline calculations
func (h *PublicHoliday) Activate() {
	h.Active = true
	h.UpdatedAt = time.Now()
	h.IncrementVersion()
}

// Deactivate excludes the holiday from deadline calculations
func (h *PublicHoliday) Deactivate() {
	h.Active = false
	h.UpdatedAt = time.Now()
	h.IncrementVersion()
}

// Matches reports whether the holiday falls on the given date
func (h *PublicHoliday) Matches(date time.Time) bool {
	if !h.Active {
		return false
	}
	d := truncateToDay(date)
	if h.Recurring {
		return h.Date.Month() == d.Month() && h.Date.Day() == d.Day()
	}
	return h.Date.Year() == d.Year() && h.Date.Month() == d.Month() && h.Date.Day() == d.Day()
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DefaultHolidays returns the seeded Sierra Leone public holidays for a tenant
func DefaultHolidays(tenantID uuid.UUID, year int) []*PublicHoliday {
	mk := func(month time.Month, day int, name string) *PublicHoliday {
		h, _ := NewPublicHoliday(tenantID, time.Date(year, month, day, 0, 0, 0, 0, time.UTC), name, true)
		return h
	}
	return []*PublicHoliday{
		mk(time.January, 1, "New Year's Day"),
		mk(time.February, 18, "Armed Forces Day"),
		mk(time.March, 8, "International Women's Day"),
		mk(time.April, 27, "Independence Day"),
		mk(time.May, 1, "Labour Day"),
		mk(time.December, 25, "Christmas Day"),
		mk(time.December, 26, "Boxing Day"),
	}
}
