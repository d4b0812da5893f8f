package compliance

import (
	"time"

	"github.com/bettstax/backend/internal/domain/filing"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DeadlineBase anchors the due date computation
type DeadlineBase string

const (
	DeadlineBasePeriodEnd DeadlineBase = "period_end"
	DeadlineBaseMonthEnd  DeadlineBase = "month_end"
	DeadlineBaseYearEnd   DeadlineBase = "year_end"
)

// IsValid checks if the base is recognized
func (b DeadlineBase) IsValid() bool {
	switch b {
	case DeadlineBasePeriodEnd, DeadlineBaseMonthEnd, DeadlineBaseYearEnd:
		return true
	}
	return false
}

// WeekendAdjustment controls how due dates falling on weekends move
type WeekendAdjustment string

const (
	WeekendAdjustNextBusinessDay     WeekendAdjustment = "next_business_day"
	WeekendAdjustPreviousBusinessDay WeekendAdjustment = "previous_business_day"
	WeekendAdjustNone                WeekendAdjustment = "none"
)

// IsValid checks if the adjustment mode is recognized
func (w WeekendAdjustment) IsValid() bool {
	switch w {
	case WeekendAdjustNextBusinessDay, WeekendAdjustPreviousBusinessDay, WeekendAdjustNone:
		return true
	}
	return false
}

// DeadlineRule configures due date computation for one tax type.
// One active rule per tax type per tenant.
type DeadlineRule struct {
	shared.TenantAggregateRoot
	TaxType           filing.TaxType    `gorm:"type:varchar(30);not null;uniqueIndex:idx_deadline_rule_tenant_type,priority:2"`
	Base              DeadlineBase      `gorm:"type:varchar(20);not null;default:'period_end'"`
	OffsetDays        int               `gorm:"not null;default:0"`
	GraceDays         int               `gorm:"not null;default:0"`
	WeekendAdjustment WeekendAdjustment `gorm:"type:varchar(30);not null;default:'next_business_day'"`
	AdjustForHolidays bool              `gorm:"not null;default:true"`
	Active            bool              `gorm:"not null;default:true"`
	Description       string            `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (DeadlineRule) TableName() string {
	return "deadline_rules"
}

// NewDeadlineRule creates a deadline rule for a tax type
func NewDeadlineRule(tenantID uuid.UUID, taxType filing.TaxType, base DeadlineBase, offsetDays int) (*DeadlineRule, error) {
	if !taxType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TAX_TYPE", "Unknown tax type")
	}
	if !base.IsValid() {
		return nil, shared.NewDomainError("INVALID_BASE", "Deadline base must be period_end, month_end or year_end")
	}
	if offsetDays < 0 || offsetDays > 366 {
		return nil, shared.NewDomainError("INVALID_OFFSET", "Offset days must be between 0 and 366")
	}

	return &DeadlineRule{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		TaxType:             taxType,
		Base:                base,
		OffsetDays:          offsetDays,
		WeekendAdjustment:   WeekendAdjustNextBusinessDay,
		AdjustForHolidays:   true,
		Active:              true,
	}, nil
}

// Update replaces the rule parameters
func (r *DeadlineRule) Update(base DeadlineBase, offsetDays, graceDays int, weekendAdj WeekendAdjustment, adjustForHolidays bool, description string) error {
	if !base.IsValid() {
		return shared.NewDomainError("INVALID_BASE", "Deadline base must be period_end, month_end or year_end")
	}
	if offsetDays < 0 || offsetDays > 366 {
		return shared.NewDomainError("INVALID_OFFSET", "Offset days must be between 0 and 366")
	}
	if graceDays < 0 || graceDays > 90 {
		return shared.NewDomainError("INVALID_GRACE", "Grace days must be between 0 and 90")
	}
	if !weekendAdj.IsValid() {
		return shared.NewDomainError("INVALID_ADJUSTMENT", "Unknown weekend adjustment mode")
	}

	r.Base = base
	r.OffsetDays = offsetDays
	r.GraceDays = graceDays
	r.WeekendAdjustment = weekendAdj
	r.AdjustForHolidays = adjustForHolidays
	r.Description = description
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// Activate enables the rule
func (r *DeadlineRule) Activate() {
	r.Active = true
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// Deactivate disables the rule; the calculator falls back to period end
func (r *DeadlineRule) Deactivate() {
	r.Active = false
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// BaseDate resolves the anchor date for a filing period ending on periodEnd
func (r *DeadlineRule) BaseDate(periodEnd time.Time) time.Time {
	switch r.Base {
	case DeadlineBaseMonthEnd:
		return endOfMonth(periodEnd)
	case DeadlineBaseYearEnd:
		return time.Date(periodEnd.Year(), 12, 31, 0, 0, 0, 0, periodEnd.Location())
	default:
		return periodEnd
	}
}

func endOfMonth(d time.Time) time.Time {
	firstOfNext := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location()).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1)
}

// DefaultRules returns the seeded Finance Act 2025 deadline rules for a tenant
func DefaultRules(tenantID uuid.UUID) []*DeadlineRule {
	gst, _ := NewDeadlineRule(tenantID, filing.TaxTypeGST, DeadlineBasePeriodEnd, 21)
	gst.Description = "GST returns due 21 days after the end of the taxable period"

	paye, _ := NewDeadlineRule(tenantID, filing.TaxTypePayrollPAYE, DeadlineBaseMonthEnd, 15)
	paye.Description = "PAYE remittance due 15 days after month end"

	income, _ := NewDeadlineRule(tenantID, filing.TaxTypeIncomeTax, DeadlineBaseYearEnd, 120)
	income.Description = "Annual income tax returns due 120 days after year end"

	withholding, _ := NewDeadlineRule(tenantID, filing.TaxTypeWithholding, DeadlineBaseMonthEnd, 15)
	withholding.Description = "Withholding tax remittance due 15 days after month end"

	return []*DeadlineRule{gst, paye, income, withholding}
}
