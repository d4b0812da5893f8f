package filing

import (
	"context"
	"time"

	"github.com/bettstax/backend/internal/domain/client"
	"github.com/bettstax/backend/internal/domain/compliance"
	"github.com/bettstax/backend/internal/domain/filing"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/domain/taxcalc"
	"github.com/bettstax/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// overdueSweepBatchSize bounds one pass of the overdue scheduler job
const overdueSweepBatchSize = 200

// FilingService handles the tax filing lifecycle from draft to filed
type FilingService struct {
	filingRepo      filing.TaxFilingRepository
	clientRepo      client.ClientRepository
	ruleRepo        compliance.DeadlineRuleRepository
	holidayRepo     compliance.PublicHolidayRepository
	businessMetrics *telemetry.BusinessMetrics
}

// NewFilingService creates a new FilingService
func NewFilingService(
	filingRepo filing.TaxFilingRepository,
	clientRepo client.ClientRepository,
	ruleRepo compliance.DeadlineRuleRepository,
	holidayRepo compliance.PublicHolidayRepository,
) *FilingService {
	return &FilingService{
		filingRepo:  filingRepo,
		clientRepo:  clientRepo,
		ruleRepo:    ruleRepo,
		holidayRepo: holidayRepo,
	}
}

// SetBusinessMetrics attaches the business metrics collector. Optional;
// when unset no metrics are recorded.
func (s *FilingService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create opens a new draft filing for a client, tax type and period.
// The due date comes from the tenant's deadline rules unless overridden,
// and the tax due from the calculator unless given explicitly.
func (s *FilingService) Create(ctx context.Context, tenantID uuid.UUID, req CreateFilingRequest) (*FilingResponse, error) {
	// Resolve the client; suspended and inactive clients cannot file
	c, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, req.ClientID)
	if err != nil {
		return nil, err
	}
	if !c.IsActive() {
		return nil, shared.NewDomainError("CLIENT_NOT_ACTIVE", "Filings can only be created for active clients")
	}

	taxType := filing.TaxType(req.TaxType)

	// One active filing per client, tax type and period
	existing, err := s.filingRepo.FindActivePeriodFiling(ctx, tenantID, req.ClientID, taxType, req.PeriodStart)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_PERIOD", "An active filing already exists for this client, tax type and period")
	}

	// Resolve the due date
	dueDate := time.Time{}
	if req.DueDate != nil {
		dueDate = *req.DueDate
	} else {
		dueDate, err = s.computeDueDate(ctx, tenantID, taxType, req.PeriodEnd)
		if err != nil {
			return nil, err
		}
	}

	filingNumber, err := s.filingRepo.GenerateFilingNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	f, err := filing.NewTaxFiling(tenantID, filingNumber, c.ID, c.Name, taxType, req.PeriodStart, req.PeriodEnd, dueDate, req.TaxableAmount)
	if err != nil {
		return nil, err
	}

	// Resolve the liability
	taxDue := decimal.Zero
	if req.TaxDue != nil {
		taxDue = *req.TaxDue
	} else if req.TaxableAmount.IsPositive() {
		taxDue, err = taxcalc.CalculateLiability(taxType, req.TaxableAmount, liabilityOptions(req.WithholdingCategory, req.Corporate, req.Turnover))
		if err != nil {
			return nil, err
		}
	}
	if err := f.SetLiability(req.TaxableAmount, taxDue, decimal.Zero, decimal.Zero); err != nil {
		return nil, err
	}

	if req.Attributes != "" {
		f.SetAttributes(req.Attributes)
	}

	if req.CreatedBy != nil {
		f.CreatedBy = req.CreatedBy
	}

	if err := s.filingRepo.Save(ctx, f); err != nil {
		return nil, err
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordFilingWithTaxDue(ctx, tenantID, string(taxType), f.TaxDue)
	}

	response := ToFilingResponse(f)
	return &response, nil
}

// GetByID retrieves a filing by ID
func (s *FilingService) GetByID(ctx context.Context, tenantID, filingID uuid.UUID) (*FilingResponse, error) {
	f, err := s.filingRepo.FindByIDForTenant(ctx, tenantID, filingID)
	if err != nil {
		return nil, err
	}

	response := ToFilingResponse(f)
	return &response, nil
}

// GetByNumber retrieves a filing by its filing number
func (s *FilingService) GetByNumber(ctx context.Context, tenantID uuid.UUID, filingNumber string) (*FilingResponse, error) {
	f, err := s.filingRepo.FindByNumber(ctx, tenantID, filingNumber)
	if err != nil {
		return nil, err
	}

	response := ToFilingResponse(f)
	return &response, nil
}

// List retrieves a list of filings with filtering and pagination
func (s *FilingService) List(ctx context.Context, tenantID uuid.UUID, filter FilingListFilter) ([]FilingListResponse, int64, error) {
	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "due_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	// Build domain filter
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}

	// Add specific filters
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.TaxType != "" {
		domainFilter.Filters["tax_type"] = filter.TaxType
	}
	if filter.ClientID != "" {
		clientID, err := uuid.Parse(filter.ClientID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_CLIENT", "Invalid client ID")
		}
		domainFilter.Filters["client_id"] = clientID
	}
	if filter.DueFrom != nil {
		domainFilter.Filters["due_from"] = *filter.DueFrom
	}
	if filter.DueTo != nil {
		domainFilter.Filters["due_to"] = *filter.DueTo
	}

	filings, err := s.filingRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.filingRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToFilingListResponses(filings), total, nil
}

// ListByClient retrieves filings for one client
func (s *FilingService) ListByClient(ctx context.Context, tenantID, clientID uuid.UUID, filter FilingListFilter) ([]FilingListResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "due_date",
		OrderDir: "desc",
		Filters:  make(map[string]any),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.TaxType != "" {
		domainFilter.Filters["tax_type"] = filter.TaxType
	}

	filings, err := s.filingRepo.FindByClient(ctx, tenantID, clientID, domainFilter)
	if err != nil {
		return nil, err
	}

	return ToFilingListResponses(filings), nil
}

// Update amends a draft or rejected filing's amounts and due date
func (s *FilingService) Update(ctx context.Context, tenantID, filingID uuid.UUID, req UpdateFilingRequest) (*FilingResponse, error) {
	f, err := s.filingRepo.FindByIDForTenant(ctx, tenantID, filingID)
	if err != nil {
		return nil, err
	}

	if req.TaxableAmount != nil || req.TaxDue != nil || req.Penalty != nil || req.Interest != nil || req.Recalculate {
		taxableAmount := f.TaxableAmount
		taxDue := f.TaxDue
		penalty := f.Penalty
		interest := f.Interest

		if req.TaxableAmount != nil {
			taxableAmount = *req.TaxableAmount
		}
		if req.TaxDue != nil {
			taxDue = *req.TaxDue
		}
		if req.Penalty != nil {
			penalty = *req.Penalty
		}
		if req.Interest != nil {
			interest = *req.Interest
		}

		// Recalculate overrides any explicit tax due
		if req.Recalculate {
			taxDue, err = taxcalc.CalculateLiability(f.TaxType, taxableAmount, liabilityOptions(req.WithholdingCategory, req.Corporate, req.Turnover))
			if err != nil {
				return nil, err
			}
		}

		if err := f.SetLiability(taxableAmount, taxDue, penalty, interest); err != nil {
			return nil, err
		}
	}

	if req.DueDate != nil {
		if err := f.SetDueDate(*req.DueDate); err != nil {
			return nil, err
		}
	}

	if req.Attributes != nil {
		f.SetAttributes(*req.Attributes)
	}

	if err := s.filingRepo.Save(ctx, f); err != nil {
		return nil, err
	}

	response := ToFilingResponse(f)
	return &response, nil
}

// Submit moves a filing to submitted for staff review
func (s *FilingService) Submit(ctx context.Context, tenantID, filingID, userID uuid.UUID) (*FilingResponse, error) {
	f, err := s.filingRepo.FindByIDForTenant(ctx, tenantID, filingID)
	if err != nil {
		return nil, err
	}

	if err := f.Submit(userID); err != nil {
		return nil, err
	}

	if err := s.filingRepo.SaveWithLock(ctx, f); err != nil {
		return nil, err
	}

	response := ToFilingResponse(f)
	return &response, nil
}

// StartReview moves a submitted filing into review
func (s *FilingService) StartReview(ctx context.Context, tenantID, filingID, reviewerID uuid.UUID) (*FilingResponse, error) {
	f, err := s.filingRepo.FindByIDForTenant(ctx, tenantID, filingID)
	if err != nil {
		return nil, err
	}

	if err := f.StartReview(reviewerID); err != nil {
		return nil, err
	}

	if err := s.filingRepo.SaveWithLock(ctx, f); err != nil {
		return nil, err
	}

	response := ToFilingResponse(f)
	return &response, nil
}

// FlagForReview moves a submitted filing into review on behalf of an
// automation trigger. The reason lands in the reviewer notes.
func (s *FilingService) FlagForReview(ctx context.Context, tenantID, filingID uuid.UUID, reason string) error {
	f, err := s.filingRepo.FindByIDForTenant(ctx, tenantID, filingID)
	if err != nil {
		return err
	}

	if err := f.FlagForReview(reason); err != nil {
		return err
	}

	return s.filingRepo.SaveWithLock(ctx, f)
}

// Approve marks a reviewed filing as ready for lodgement
func (s *FilingService) Approve(ctx context.Context, tenantID, filingID, reviewerID uuid.UUID, notes string) (*FilingResponse, error) {
	f, err := s.filingRepo.FindByIDForTenant(ctx, tenantID, filingID)
	if err != nil {
		return nil, err
	}

	if err := f.Approve(reviewerID, notes); err != nil {
		return nil, err
	}

	if err := s.filingRepo.SaveWithLock(ctx, f); err != nil {
		return nil, err
	}

	response := ToFilingResponse(f)
	return &response, nil
}

// Reject sends a filing back to the client with a reason
func (s *FilingService) Reject(ctx context.Context, tenantID, filingID, reviewerID uuid.UUID, reason string) (*FilingResponse, error) {
	f, err := s.filingRepo.FindByIDForTenant(ctx, tenantID, filingID)
	if err != nil {
		return nil, err
	}

	if err := f.Reject(reviewerID, reason); err != nil {
		return nil, err
	}

	if err := s.filingRepo.SaveWithLock(ctx, f); err != nil {
		return nil, err
	}

	response := ToFilingResponse(f)
	return &response, nil
}

// MarkFiled records lodgement with the tax authority and stamps the
// client's last filing time
func (s *FilingService) MarkFiled(ctx context.Context, tenantID, filingID uuid.UUID, reference string) (*FilingResponse, error) {
	f, err := s.filingRepo.FindByIDForTenant(ctx, tenantID, filingID)
	if err != nil {
		return nil, err
	}

	if err := f.MarkFiled(reference); err != nil {
		return nil, err
	}

	if err := s.filingRepo.SaveWithLock(ctx, f); err != nil {
		return nil, err
	}

	// Stamp the client; a failure here must not undo the lodgement
	if c, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, f.ClientID); err == nil {
		c.RecordFiling(*f.FiledAt)
		_ = s.clientRepo.Save(ctx, c)
	}

	response := ToFilingResponse(f)
	return &response, nil
}

// Cancel closes a filing without lodging it
func (s *FilingService) Cancel(ctx context.Context, tenantID, filingID uuid.UUID, reason string) (*FilingResponse, error) {
	f, err := s.filingRepo.FindByIDForTenant(ctx, tenantID, filingID)
	if err != nil {
		return nil, err
	}

	if err := f.Cancel(reason); err != nil {
		return nil, err
	}

	if err := s.filingRepo.SaveWithLock(ctx, f); err != nil {
		return nil, err
	}

	response := ToFilingResponse(f)
	return &response, nil
}

// RecalculateCharges reapplies late charges on a filing past its due date
func (s *FilingService) RecalculateCharges(ctx context.Context, tenantID, filingID uuid.UUID) (*FilingResponse, error) {
	f, err := s.filingRepo.FindByIDForTenant(ctx, tenantID, filingID)
	if err != nil {
		return nil, err
	}

	penalty, interest := taxcalc.LateCharges(f.TaxDue, f.DueDate, time.Now())
	if err := f.ApplyLateCharges(penalty, interest); err != nil {
		return nil, err
	}

	if err := s.filingRepo.Save(ctx, f); err != nil {
		return nil, err
	}

	response := ToFilingResponse(f)
	return &response, nil
}

// MarkOverdue flags one filing whose due date has passed
func (s *FilingService) MarkOverdue(ctx context.Context, tenantID, filingID uuid.UUID) (*FilingResponse, error) {
	f, err := s.filingRepo.FindByIDForTenant(ctx, tenantID, filingID)
	if err != nil {
		return nil, err
	}

	if err := s.markOverdueWithCharges(ctx, f); err != nil {
		return nil, err
	}

	response := ToFilingResponse(f)
	return &response, nil
}

// SweepOverdue finds filings past their due date across all tenants, marks
// them overdue and applies late charges. The deadline scheduler runs this
// daily; asOf is normally time.Now().
func (s *FilingService) SweepOverdue(ctx context.Context, asOf time.Time) (*SweepResult, error) {
	result := &SweepResult{}

	candidates, err := s.filingRepo.FindOverdueCandidates(ctx, uuid.Nil, asOf, overdueSweepBatchSize)
	if err != nil {
		return nil, err
	}

	result.Scanned = len(candidates)
	for i := range candidates {
		f := &candidates[i]
		if err := s.markOverdueWithCharges(ctx, f); err != nil {
			// Version conflicts and state races are expected between
			// the sweep and interactive submissions; skip and move on
			continue
		}
		result.Marked++
	}

	return result, nil
}

// UpcomingDeadlines lists non-terminal filings due within the window
func (s *FilingService) UpcomingDeadlines(ctx context.Context, tenantID uuid.UUID, days int) ([]FilingListResponse, error) {
	if days <= 0 {
		days = 30
	}

	now := time.Now()
	filter := shared.Filter{
		Page:     1,
		PageSize: 100,
		OrderBy:  "due_date",
		OrderDir: "asc",
	}

	filings, err := s.filingRepo.FindDueBetween(ctx, tenantID, now, now.AddDate(0, 0, days), filter)
	if err != nil {
		return nil, err
	}

	return ToFilingListResponses(filings), nil
}

// Stats summarizes filing counts by status plus liabilities by tax type
// over the window
func (s *FilingService) Stats(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*FilingStatsResponse, error) {
	stats := &FilingStatsResponse{
		ByStatus: make(map[string]int64),
	}

	statuses := []filing.FilingStatus{
		filing.FilingStatusDraft, filing.FilingStatusSubmitted, filing.FilingStatusUnderReview,
		filing.FilingStatusApproved, filing.FilingStatusFiled, filing.FilingStatusRejected,
		filing.FilingStatusOverdue, filing.FilingStatusCancelled,
	}
	for _, status := range statuses {
		count, err := s.filingRepo.CountByStatus(ctx, tenantID, status)
		if err != nil {
			return nil, err
		}
		stats.ByStatus[status.String()] = count
	}

	overdue, err := s.filingRepo.CountOverdue(ctx, tenantID, time.Now())
	if err != nil {
		return nil, err
	}
	stats.Overdue = overdue

	totals, err := s.filingRepo.SumTaxDueByType(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	for _, taxType := range filing.AllTaxTypes() {
		total, ok := totals[taxType]
		if !ok {
			continue
		}
		stats.ByTaxType = append(stats.ByTaxType, TaxTypeTotalResponse{
			TaxType:  taxType.String(),
			Count:    total.Count,
			TaxDue:   total.TaxDue,
			TotalDue: total.TotalDue,
		})
	}

	return stats, nil
}

// Delete removes a filing. Only drafts can be deleted; anything that has
// entered the workflow must be cancelled instead.
func (s *FilingService) Delete(ctx context.Context, tenantID, filingID uuid.UUID) error {
	f, err := s.filingRepo.FindByIDForTenant(ctx, tenantID, filingID)
	if err != nil {
		return err
	}

	if !f.IsDraft() {
		return shared.NewDomainError("CANNOT_DELETE", "Only draft filings can be deleted")
	}

	return s.filingRepo.DeleteForTenant(ctx, tenantID, filingID)
}

// markOverdueWithCharges transitions one filing to overdue, applies late
// charges and saves under the version lock
func (s *FilingService) markOverdueWithCharges(ctx context.Context, f *filing.TaxFiling) error {
	if err := f.MarkOverdue(); err != nil {
		return err
	}

	penalty, interest := taxcalc.LateCharges(f.TaxDue, f.DueDate, time.Now())
	if err := f.ApplyLateCharges(penalty, interest); err != nil {
		return err
	}

	return s.filingRepo.SaveWithLock(ctx, f)
}

// computeDueDate resolves the due date from the tenant's deadline rule for
// the tax type, falling back to the period end rolled off the weekend when
// no active rule exists
func (s *FilingService) computeDueDate(ctx context.Context, tenantID uuid.UUID, taxType filing.TaxType, periodEnd time.Time) (time.Time, error) {
	rule, err := s.ruleRepo.FindByTaxType(ctx, tenantID, taxType)
	if err != nil {
		return time.Time{}, err
	}
	if rule == nil || !rule.Active {
		return compliance.FallbackDueDate(periodEnd), nil
	}

	calendar := compliance.CalendarFunc(func(date time.Time) bool { return false })
	if rule.AdjustForHolidays {
		holidays, err := s.holidayRepo.FindActive(ctx, tenantID)
		if err != nil {
			return time.Time{}, err
		}
		slice := make(compliance.HolidaySlice, len(holidays))
		for i := range holidays {
			slice[i] = &holidays[i]
		}
		return compliance.DueDate(rule, periodEnd, slice)
	}

	return compliance.DueDate(rule, periodEnd, calendar)
}

func liabilityOptions(category string, corporate bool, turnover *decimal.Decimal) taxcalc.LiabilityOptions {
	opts := taxcalc.LiabilityOptions{
		Category:  taxcalc.WithholdingCategory(category),
		Corporate: corporate,
	}
	if turnover != nil {
		opts.Turnover = *turnover
	}
	return opts
}
