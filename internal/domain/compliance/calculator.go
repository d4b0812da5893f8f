package compliance

import (
	"time"

	"github.com/bettstax/backend/internal/domain/shared"
)

// HolidayCalendar answers whether a date is a non-business holiday
type HolidayCalendar interface {
	IsHoliday(date time.Time) bool
}

// CalendarFunc adapts a function to the HolidayCalendar interface
type CalendarFunc func(date time.Time) bool

// IsHoliday implements HolidayCalendar
func (f CalendarFunc) IsHoliday(date time.Time) bool {
	return f(date)
}

// HolidaySlice is a HolidayCalendar over loaded holiday entries
type HolidaySlice []*PublicHoliday

// IsHoliday implements HolidayCalendar
func (s HolidaySlice) IsHoliday(date time.Time) bool {
	for _, h := range s {
		if h.Matches(date) {
			return true
		}
	}
	return false
}

// maxAdjustmentSteps bounds the weekend/holiday roll so a fully blocked
// calendar cannot loop forever
const maxAdjustmentSteps = 60

// DueDate computes the filing due date for a period ending on periodEnd
// under the given rule and holiday calendar:
// anchor from the rule base, plus offset days, rolled off weekends and
// holidays per the rule, plus grace days.
func DueDate(rule *DeadlineRule, periodEnd time.Time, calendar HolidayCalendar) (time.Time, error) {
	if rule == nil {
		return time.Time{}, shared.NewDomainError("RULE_REQUIRED", "Deadline rule is required")
	}
	if periodEnd.IsZero() {
		return time.Time{}, shared.NewDomainError("INVALID_DATE", "Period end is required")
	}

	due := rule.BaseDate(periodEnd).AddDate(0, 0, rule.OffsetDays)

	step := 1
	if rule.WeekendAdjustment == WeekendAdjustPreviousBusinessDay {
		step = -1
	}

	if rule.WeekendAdjustment != WeekendAdjustNone || rule.AdjustForHolidays {
		for i := 0; i < maxAdjustmentSteps; i++ {
			if rule.WeekendAdjustment != WeekendAdjustNone && isWeekend(due) {
				due = due.AddDate(0, 0, step)
				continue
			}
			if rule.AdjustForHolidays && calendar != nil && calendar.IsHoliday(due) {
				due = due.AddDate(0, 0, step)
				continue
			}
			break
		}
	}

	if rule.GraceDays > 0 {
		due = due.AddDate(0, 0, rule.GraceDays)
	}

	return due, nil
}

// FallbackDueDate is used when a tax type has no active rule: the period end
// itself, rolled forward off weekends.
func FallbackDueDate(periodEnd time.Time) time.Time {
	due := periodEnd
	for isWeekend(due) {
		due = due.AddDate(0, 0, 1)
	}
	return due
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
