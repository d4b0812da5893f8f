package compliance

import (
	"time"

	"github.com/bettstax/backend/internal/domain/compliance"
	"github.com/google/uuid"
)

// ============================================================================
// Request DTOs
// ============================================================================

// CreateDeadlineRuleRequest represents a request to create a deadline rule
type CreateDeadlineRuleRequest struct {
	TaxType           string `json:"tax_type" binding:"required,oneof=gst income_tax payroll_paye withholding"`
	Base              string `json:"base" binding:"required,oneof=period_end month_end year_end"`
	OffsetDays        int    `json:"offset_days" binding:"gte=0,lte=366"`
	GraceDays         int    `json:"grace_days" binding:"omitempty,gte=0,lte=90"`
	WeekendAdjustment string `json:"weekend_adjustment" binding:"omitempty,oneof=next_business_day previous_business_day none"`
	AdjustForHolidays *bool  `json:"adjust_for_holidays"`
	Description       string `json:"description" binding:"omitempty,max=500"`
}

// UpdateDeadlineRuleRequest represents a request to update a deadline rule
type UpdateDeadlineRuleRequest struct {
	Base              *string `json:"base" binding:"omitempty,oneof=period_end month_end year_end"`
	OffsetDays        *int    `json:"offset_days" binding:"omitempty,gte=0,lte=366"`
	GraceDays         *int    `json:"grace_days" binding:"omitempty,gte=0,lte=90"`
	WeekendAdjustment *string `json:"weekend_adjustment" binding:"omitempty,oneof=next_business_day previous_business_day none"`
	AdjustForHolidays *bool   `json:"adjust_for_holidays"`
	Description       *string `json:"description" binding:"omitempty,max=500"`
}

// DeadlineRuleListFilter represents filter options for deadline rule list
type DeadlineRuleListFilter struct {
	TaxType  string `form:"tax_type" binding:"omitempty,oneof=gst income_tax payroll_paye withholding"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PreviewDueDateRequest asks what due date a filing period would get
type PreviewDueDateRequest struct {
	TaxType   string    `json:"tax_type" binding:"required,oneof=gst income_tax payroll_paye withholding"`
	PeriodEnd time.Time `json:"period_end" binding:"required"`
}

// CreateHolidayRequest represents a request to create a public holiday
type CreateHolidayRequest struct {
	Date      time.Time `json:"date" binding:"required"`
	Name      string    `json:"name" binding:"required,min=1,max=200"`
	Recurring bool      `json:"recurring"`
}

// UpdateHolidayRequest represents a request to update a public holiday
type UpdateHolidayRequest struct {
	Date      *time.Time `json:"date"`
	Name      *string    `json:"name" binding:"omitempty,min=1,max=200"`
	Recurring *bool      `json:"recurring"`
}

// HolidayListFilter represents filter options for holiday list
type HolidayListFilter struct {
	Year     int    `form:"year" binding:"omitempty,min=2000,max=2100"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SeedDefaultsRequest controls which calendar year the holiday seed targets
type SeedDefaultsRequest struct {
	Year int `json:"year" binding:"omitempty,min=2000,max=2100"`
}

// ============================================================================
// Response DTOs
// ============================================================================

// DeadlineRuleResponse represents a deadline rule in API responses
type DeadlineRuleResponse struct {
	ID                uuid.UUID `json:"id"`
	TenantID          uuid.UUID `json:"tenant_id"`
	TaxType           string    `json:"tax_type"`
	Base              string    `json:"base"`
	OffsetDays        int       `json:"offset_days"`
	GraceDays         int       `json:"grace_days"`
	WeekendAdjustment string    `json:"weekend_adjustment"`
	AdjustForHolidays bool      `json:"adjust_for_holidays"`
	Active            bool      `json:"active"`
	Description       string    `json:"description,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	Version           int       `json:"version"`
}

// PreviewDueDateResponse carries a computed due date
type PreviewDueDateResponse struct {
	TaxType     string     `json:"tax_type"`
	PeriodEnd   time.Time  `json:"period_end"`
	DueDate     time.Time  `json:"due_date"`
	RuleApplied bool       `json:"rule_applied"`
	RuleID      *uuid.UUID `json:"rule_id,omitempty"`
}

// HolidayResponse represents a public holiday in API responses
type HolidayResponse struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Date      time.Time `json:"date"`
	Name      string    `json:"name"`
	Recurring bool      `json:"recurring"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// SeedDefaultsResponse reports what the seeding pass created
type SeedDefaultsResponse struct {
	RulesCreated    int `json:"rules_created"`
	HolidaysCreated int `json:"holidays_created"`
}

// ============================================================================
// Conversion Functions
// ============================================================================

// ToDeadlineRuleResponse converts a domain DeadlineRule to DeadlineRuleResponse
func ToDeadlineRuleResponse(r *compliance.DeadlineRule) DeadlineRuleResponse {
	return DeadlineRuleResponse{
		ID:                r.ID,
		TenantID:          r.TenantID,
		TaxType:           r.TaxType.String(),
		Base:              string(r.Base),
		OffsetDays:        r.OffsetDays,
		GraceDays:         r.GraceDays,
		WeekendAdjustment: string(r.WeekendAdjustment),
		AdjustForHolidays: r.AdjustForHolidays,
		Active:            r.Active,
		Description:       r.Description,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		Version:           r.Version,
	}
}

// ToDeadlineRuleResponses converts a slice of domain DeadlineRules
func ToDeadlineRuleResponses(rules []compliance.DeadlineRule) []DeadlineRuleResponse {
	responses := make([]DeadlineRuleResponse, len(rules))
	for i := range rules {
		responses[i] = ToDeadlineRuleResponse(&rules[i])
	}
	return responses
}

// ToHolidayResponse converts a domain PublicHoliday to HolidayResponse
func ToHolidayResponse(h *compliance.PublicHoliday) HolidayResponse {
	return HolidayResponse{
		ID:        h.ID,
		TenantID:  h.TenantID,
		Date:      h.Date,
		Name:      h.Name,
		Recurring: h.Recurring,
		Active:    h.Active,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
		Version:   h.Version,
	}
}

// ToHolidayResponses converts a slice of domain PublicHolidays
func ToHolidayResponses(holidays []compliance.PublicHoliday) []HolidayResponse {
	responses := make([]HolidayResponse, len(holidays))
	for i := range holidays {
		responses[i] = ToHolidayResponse(&holidays[i])
	}
	return responses
}
