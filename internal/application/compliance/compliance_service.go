package compliance

import (
	"context"
	"time"

	"github.com/bettstax/backend/internal/domain/compliance"
	"github.com/bettstax/backend/internal/domain/filing"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ComplianceService manages deadline rules, the holiday calendar and
// due date previews
type ComplianceService struct {
	ruleRepo    compliance.DeadlineRuleRepository
	holidayRepo compliance.PublicHolidayRepository
}

// NewComplianceService creates a new ComplianceService
func NewComplianceService(
	ruleRepo compliance.DeadlineRuleRepository,
	holidayRepo compliance.PublicHolidayRepository,
) *ComplianceService {
	return &ComplianceService{
		ruleRepo:    ruleRepo,
		holidayRepo: holidayRepo,
	}
}

// ============================================================================
// Deadline Rules
// ============================================================================

// CreateRule creates a deadline rule for a tax type
func (s *ComplianceService) CreateRule(ctx context.Context, tenantID uuid.UUID, req CreateDeadlineRuleRequest) (*DeadlineRuleResponse, error) {
	taxType := filing.TaxType(req.TaxType)

	exists, err := s.ruleRepo.ExistsByTaxType(ctx, tenantID, taxType)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("RULE_EXISTS", "A deadline rule for this tax type already exists")
	}

	rule, err := compliance.NewDeadlineRule(tenantID, taxType, compliance.DeadlineBase(req.Base), req.OffsetDays)
	if err != nil {
		return nil, err
	}

	// The constructor defaults cover the common case; apply the optional
	// knobs in one pass when any differ.
	weekendAdj := rule.WeekendAdjustment
	if req.WeekendAdjustment != "" {
		weekendAdj = compliance.WeekendAdjustment(req.WeekendAdjustment)
	}
	adjustForHolidays := rule.AdjustForHolidays
	if req.AdjustForHolidays != nil {
		adjustForHolidays = *req.AdjustForHolidays
	}
	if req.GraceDays != 0 || req.WeekendAdjustment != "" || req.AdjustForHolidays != nil || req.Description != "" {
		if err := rule.Update(rule.Base, rule.OffsetDays, req.GraceDays, weekendAdj, adjustForHolidays, req.Description); err != nil {
			return nil, err
		}
	}

	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}

	response := ToDeadlineRuleResponse(rule)
	return &response, nil
}

// GetRule retrieves a deadline rule by ID
func (s *ComplianceService) GetRule(ctx context.Context, tenantID, ruleID uuid.UUID) (*DeadlineRuleResponse, error) {
	rule, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, ruleID)
	if err != nil {
		return nil, err
	}

	response := ToDeadlineRuleResponse(rule)
	return &response, nil
}

// GetRuleByTaxType retrieves the deadline rule for a tax type
func (s *ComplianceService) GetRuleByTaxType(ctx context.Context, tenantID uuid.UUID, taxType string) (*DeadlineRuleResponse, error) {
	rule, err := s.ruleRepo.FindByTaxType(ctx, tenantID, filing.TaxType(taxType))
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, shared.ErrNotFound
	}

	response := ToDeadlineRuleResponse(rule)
	return &response, nil
}

// ListRules retrieves deadline rules with filtering
func (s *ComplianceService) ListRules(ctx context.Context, tenantID uuid.UUID, filter DeadlineRuleListFilter) ([]DeadlineRuleResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "tax_type"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}

	if filter.TaxType != "" {
		domainFilter.Filters["tax_type"] = filter.TaxType
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	rules, err := s.ruleRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.ruleRepo.CountForTenant(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}

	return ToDeadlineRuleResponses(rules), count, nil
}

// UpdateRule updates a deadline rule's parameters
func (s *ComplianceService) UpdateRule(ctx context.Context, tenantID, ruleID uuid.UUID, req UpdateDeadlineRuleRequest) (*DeadlineRuleResponse, error) {
	rule, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, ruleID)
	if err != nil {
		return nil, err
	}

	base := rule.Base
	if req.Base != nil {
		base = compliance.DeadlineBase(*req.Base)
	}
	offsetDays := rule.OffsetDays
	if req.OffsetDays != nil {
		offsetDays = *req.OffsetDays
	}
	graceDays := rule.GraceDays
	if req.GraceDays != nil {
		graceDays = *req.GraceDays
	}
	weekendAdj := rule.WeekendAdjustment
	if req.WeekendAdjustment != nil {
		weekendAdj = compliance.WeekendAdjustment(*req.WeekendAdjustment)
	}
	adjustForHolidays := rule.AdjustForHolidays
	if req.AdjustForHolidays != nil {
		adjustForHolidays = *req.AdjustForHolidays
	}
	description := rule.Description
	if req.Description != nil {
		description = *req.Description
	}

	if err := rule.Update(base, offsetDays, graceDays, weekendAdj, adjustForHolidays, description); err != nil {
		return nil, err
	}

	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}

	response := ToDeadlineRuleResponse(rule)
	return &response, nil
}

// ActivateRule enables a deadline rule
func (s *ComplianceService) ActivateRule(ctx context.Context, tenantID, ruleID uuid.UUID) (*DeadlineRuleResponse, error) {
	rule, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, ruleID)
	if err != nil {
		return nil, err
	}

	rule.Activate()

	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}

	response := ToDeadlineRuleResponse(rule)
	return &response, nil
}

// DeactivateRule disables a deadline rule; filings for the tax type fall
// back to period-end due dates
func (s *ComplianceService) DeactivateRule(ctx context.Context, tenantID, ruleID uuid.UUID) (*DeadlineRuleResponse, error) {
	rule, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, ruleID)
	if err != nil {
		return nil, err
	}

	rule.Deactivate()

	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}

	response := ToDeadlineRuleResponse(rule)
	return &response, nil
}

// DeleteRule removes a deadline rule
func (s *ComplianceService) DeleteRule(ctx context.Context, tenantID, ruleID uuid.UUID) error {
	if _, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, ruleID); err != nil {
		return err
	}
	return s.ruleRepo.DeleteForTenant(ctx, tenantID, ruleID)
}

// PreviewDueDate computes the due date a filing period would receive
// without creating a filing
func (s *ComplianceService) PreviewDueDate(ctx context.Context, tenantID uuid.UUID, req PreviewDueDateRequest) (*PreviewDueDateResponse, error) {
	taxType := filing.TaxType(req.TaxType)

	rule, err := s.ruleRepo.FindByTaxType(ctx, tenantID, taxType)
	if err != nil {
		return nil, err
	}

	if rule == nil || !rule.Active {
		return &PreviewDueDateResponse{
			TaxType:     req.TaxType,
			PeriodEnd:   req.PeriodEnd,
			DueDate:     compliance.FallbackDueDate(req.PeriodEnd),
			RuleApplied: false,
		}, nil
	}

	var calendar compliance.HolidayCalendar = compliance.CalendarFunc(func(date time.Time) bool { return false })
	if rule.AdjustForHolidays {
		holidays, err := s.holidayRepo.FindActive(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		slice := make(compliance.HolidaySlice, len(holidays))
		for i := range holidays {
			slice[i] = &holidays[i]
		}
		calendar = slice
	}

	due, err := compliance.DueDate(rule, req.PeriodEnd, calendar)
	if err != nil {
		return nil, err
	}

	return &PreviewDueDateResponse{
		TaxType:     req.TaxType,
		PeriodEnd:   req.PeriodEnd,
		DueDate:     due,
		RuleApplied: true,
		RuleID:      &rule.ID,
	}, nil
}

// ============================================================================
// Public Holidays
// ============================================================================

// CreateHoliday creates a public holiday entry
func (s *ComplianceService) CreateHoliday(ctx context.Context, tenantID uuid.UUID, req CreateHolidayRequest) (*HolidayResponse, error) {
	exists, err := s.holidayRepo.ExistsOnDate(ctx, tenantID, req.Date)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("HOLIDAY_EXISTS", "A holiday already exists on this date")
	}

	holiday, err := compliance.NewPublicHoliday(tenantID, req.Date, req.Name, req.Recurring)
	if err != nil {
		return nil, err
	}

	if err := s.holidayRepo.Save(ctx, holiday); err != nil {
		return nil, err
	}

	response := ToHolidayResponse(holiday)
	return &response, nil
}

// GetHoliday retrieves a holiday by ID
func (s *ComplianceService) GetHoliday(ctx context.Context, tenantID, holidayID uuid.UUID) (*HolidayResponse, error) {
	holiday, err := s.holidayRepo.FindByIDForTenant(ctx, tenantID, holidayID)
	if err != nil {
		return nil, err
	}

	response := ToHolidayResponse(holiday)
	return &response, nil
}

// ListHolidays retrieves holidays, optionally narrowed to one year
func (s *ComplianceService) ListHolidays(ctx context.Context, tenantID uuid.UUID, filter HolidayListFilter) ([]HolidayResponse, int64, error) {
	if filter.Year > 0 {
		holidays, err := s.holidayRepo.FindByYear(ctx, tenantID, filter.Year)
		if err != nil {
			return nil, 0, err
		}
		return ToHolidayResponses(holidays), int64(len(holidays)), nil
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}

	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	holidays, err := s.holidayRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.holidayRepo.CountForTenant(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}

	return ToHolidayResponses(holidays), count, nil
}

// UpdateHoliday changes a holiday entry
func (s *ComplianceService) UpdateHoliday(ctx context.Context, tenantID, holidayID uuid.UUID, req UpdateHolidayRequest) (*HolidayResponse, error) {
	holiday, err := s.holidayRepo.FindByIDForTenant(ctx, tenantID, holidayID)
	if err != nil {
		return nil, err
	}

	date := holiday.Date
	if req.Date != nil {
		date = *req.Date
	}
	name := holiday.Name
	if req.Name != nil {
		name = *req.Name
	}
	recurring := holiday.Recurring
	if req.Recurring != nil {
		recurring = *req.Recurring
	}

	if err := holiday.Update(date, name, recurring); err != nil {
		return nil, err
	}

	if err := s.holidayRepo.Save(ctx, holiday); err != nil {
		return nil, err
	}

	response := ToHolidayResponse(holiday)
	return &response, nil
}

// ActivateHoliday re-enables a holiday for deadline calculations
func (s *ComplianceService) ActivateHoliday(ctx context.Context, tenantID, holidayID uuid.UUID) (*HolidayResponse, error) {
	holiday, err := s.holidayRepo.FindByIDForTenant(ctx, tenantID, holidayID)
	if err != nil {
		return nil, err
	}

	holiday.Activate()

	if err := s.holidayRepo.Save(ctx, holiday); err != nil {
		return nil, err
	}

	response := ToHolidayResponse(holiday)
	return &response, nil
}

// DeactivateHoliday excludes a holiday from deadline calculations
func (s *ComplianceService) DeactivateHoliday(ctx context.Context, tenantID, holidayID uuid.UUID) (*HolidayResponse, error) {
	holiday, err := s.holidayRepo.FindByIDForTenant(ctx, tenantID, holidayID)
	if err != nil {
		return nil, err
	}

	holiday.Deactivate()

	if err := s.holidayRepo.Save(ctx, holiday); err != nil {
		return nil, err
	}

	response := ToHolidayResponse(holiday)
	return &response, nil
}

// DeleteHoliday removes a holiday entry
func (s *ComplianceService) DeleteHoliday(ctx context.Context, tenantID, holidayID uuid.UUID) error {
	if _, err := s.holidayRepo.FindByIDForTenant(ctx, tenantID, holidayID); err != nil {
		return err
	}
	return s.holidayRepo.DeleteForTenant(ctx, tenantID, holidayID)
}

// ============================================================================
// Seeding
// ============================================================================

// SeedDefaults loads the Finance Act deadline rules and the Sierra Leone
// holiday calendar for a tenant, skipping entries that already exist.
// Used at tenant onboarding and exposed for re-runs after rule cleanup.
func (s *ComplianceService) SeedDefaults(ctx context.Context, tenantID uuid.UUID, req SeedDefaultsRequest) (*SeedDefaultsResponse, error) {
	year := req.Year
	if year == 0 {
		year = time.Now().Year()
	}

	result := &SeedDefaultsResponse{}

	for _, rule := range compliance.DefaultRules(tenantID) {
		exists, err := s.ruleRepo.ExistsByTaxType(ctx, tenantID, rule.TaxType)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		if err := s.ruleRepo.Save(ctx, rule); err != nil {
			return nil, err
		}
		result.RulesCreated++
	}

	for _, holiday := range compliance.DefaultHolidays(tenantID, year) {
		exists, err := s.holidayRepo.ExistsOnDate(ctx, tenantID, holiday.Date)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		if err := s.holidayRepo.Save(ctx, holiday); err != nil {
			return nil, err
		}
		result.HolidaysCreated++
	}

	return result, nil
}
