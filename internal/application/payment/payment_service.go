package payment

import (
	"context"
	"time"

	"github.com/bettstax/backend/internal/domain/filing"
	"github.com/bettstax/backend/internal/domain/payment"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// PaymentService handles payment recording and reconciliation against filings
type PaymentService struct {
	paymentRepo     payment.PaymentRepository
	filingRepo      filing.TaxFilingRepository
	businessMetrics *telemetry.BusinessMetrics
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(paymentRepo payment.PaymentRepository, filingRepo filing.TaxFilingRepository) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		filingRepo:  filingRepo,
	}
}

// SetBusinessMetrics attaches the business metrics collector. Optional;
// when unset no metrics are recorded.
func (s *PaymentService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Record registers a pending payment against a filing. The client is taken
// from the filing, not the request.
func (s *PaymentService) Record(ctx context.Context, tenantID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	f, err := s.filingRepo.FindByIDForTenant(ctx, tenantID, req.FilingID)
	if err != nil {
		return nil, err
	}
	if f.Status == filing.FilingStatusCancelled {
		return nil, shared.NewDomainError("FILING_CANCELLED", "Cannot record a payment against a cancelled filing")
	}

	paymentNumber, err := s.paymentRepo.GeneratePaymentNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	paidAt := time.Time{}
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	p, err := payment.NewPayment(tenantID, paymentNumber, f.ID, f.ClientID, req.Amount, payment.PaymentMethod(req.Method), paidAt)
	if err != nil {
		return nil, err
	}

	if req.Reference != "" {
		if err := p.SetReference(req.Reference); err != nil {
			return nil, err
		}
	}
	if req.ReceiptDocID != nil {
		if err := p.AttachReceipt(*req.ReceiptDocID); err != nil {
			return nil, err
		}
	}
	if req.Notes != "" {
		p.SetNotes(req.Notes)
	}
	if req.CreatedBy != nil {
		p.CreatedBy = req.CreatedBy
	}

	if err := s.paymentRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	response := ToPaymentResponse(p)
	return &response, nil
}

// GetByID retrieves a payment by ID
func (s *PaymentService) GetByID(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}

	response := ToPaymentResponse(p)
	return &response, nil
}

// GetByNumber retrieves a payment by its payment number
func (s *PaymentService) GetByNumber(ctx context.Context, tenantID uuid.UUID, paymentNumber string) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByNumberForTenant(ctx, tenantID, paymentNumber)
	if err != nil {
		return nil, err
	}

	response := ToPaymentResponse(p)
	return &response, nil
}

// List retrieves a list of payments with filtering and pagination
func (s *PaymentService) List(ctx context.Context, tenantID uuid.UUID, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "paid_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}

	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Method != "" {
		domainFilter.Filters["method"] = filter.Method
	}
	if filter.ClientID != "" {
		clientID, err := uuid.Parse(filter.ClientID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_CLIENT", "Invalid client ID")
		}
		domainFilter.Filters["client_id"] = clientID
	}
	if filter.FilingID != "" {
		filingID, err := uuid.Parse(filter.FilingID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_FILING", "Invalid filing ID")
		}
		domainFilter.Filters["filing_id"] = filingID
	}
	if filter.PaidFrom != nil {
		domainFilter.Filters["paid_from"] = *filter.PaidFrom
	}
	if filter.PaidTo != nil {
		domainFilter.Filters["paid_to"] = *filter.PaidTo
	}

	payments, err := s.paymentRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.paymentRepo.CountForTenant(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}

	return ToPaymentResponses(payments), total, nil
}

// ListByFiling retrieves every payment recorded against one filing
func (s *PaymentService) ListByFiling(ctx context.Context, tenantID, filingID uuid.UUID) ([]PaymentResponse, error) {
	payments, err := s.paymentRepo.FindByFilingForTenant(ctx, tenantID, filingID)
	if err != nil {
		return nil, err
	}

	return ToPaymentResponses(payments), nil
}

// Confirm marks a pending payment as confirmed, stamping the confirming user
func (s *PaymentService) Confirm(ctx context.Context, tenantID, paymentID, userID uuid.UUID) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}

	expectedVersion := p.Version
	if err := p.Confirm(userID); err != nil {
		return nil, err
	}

	if err := s.paymentRepo.SaveWithLock(ctx, p, expectedVersion); err != nil {
		return nil, err
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordPayment(ctx, tenantID, string(p.Method), telemetry.PaymentOutcomeConfirmed)
	}

	response := ToPaymentResponse(p)
	return &response, nil
}

// Fail marks a pending payment as failed with a reason
func (s *PaymentService) Fail(ctx context.Context, tenantID, paymentID uuid.UUID, reason string) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}

	expectedVersion := p.Version
	if err := p.Fail(reason); err != nil {
		return nil, err
	}

	if err := s.paymentRepo.SaveWithLock(ctx, p, expectedVersion); err != nil {
		return nil, err
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordPayment(ctx, tenantID, string(p.Method), telemetry.PaymentOutcomeFailed)
	}

	response := ToPaymentResponse(p)
	return &response, nil
}

// Refund reverses a confirmed payment with a reason
func (s *PaymentService) Refund(ctx context.Context, tenantID, paymentID uuid.UUID, reason string) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}

	expectedVersion := p.Version
	if err := p.Refund(reason); err != nil {
		return nil, err
	}

	if err := s.paymentRepo.SaveWithLock(ctx, p, expectedVersion); err != nil {
		return nil, err
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordPayment(ctx, tenantID, string(p.Method), telemetry.PaymentOutcomeRefunded)
	}

	response := ToPaymentResponse(p)
	return &response, nil
}

// AttachReceipt links an uploaded receipt document to a payment
func (s *PaymentService) AttachReceipt(ctx context.Context, tenantID, paymentID, documentID uuid.UUID) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}

	if err := p.AttachReceipt(documentID); err != nil {
		return nil, err
	}

	if err := s.paymentRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	response := ToPaymentResponse(p)
	return &response, nil
}

// OutstandingBalance reports total due minus confirmed payments for a filing
func (s *PaymentService) OutstandingBalance(ctx context.Context, tenantID, filingID uuid.UUID) (*FilingBalanceResponse, error) {
	f, err := s.filingRepo.FindByIDForTenant(ctx, tenantID, filingID)
	if err != nil {
		return nil, err
	}

	confirmed, err := s.paymentRepo.SumConfirmedByFiling(ctx, tenantID, filingID)
	if err != nil {
		return nil, err
	}

	outstanding := f.TotalDue.Sub(confirmed)
	return &FilingBalanceResponse{
		FilingID:       filingID,
		TotalDue:       f.TotalDue,
		ConfirmedTotal: confirmed,
		Outstanding:    outstanding,
		FullyPaid:      !outstanding.IsPositive(),
	}, nil
}

// TotalsByMethod aggregates confirmed payments by method over a period
func (s *PaymentService) TotalsByMethod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]MethodTotalResponse, error) {
	totals, err := s.paymentRepo.SumConfirmedByMethod(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	responses := make([]MethodTotalResponse, len(totals))
	for i, t := range totals {
		responses[i] = MethodTotalResponse{
			Method: string(t.Method),
			Count:  t.Count,
			Amount: t.Amount,
		}
	}
	return responses, nil
}

// Delete removes a payment. Only pending payments can be deleted; confirmed
// money movements must be refunded instead.
func (s *PaymentService) Delete(ctx context.Context, tenantID, paymentID uuid.UUID) error {
	p, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return err
	}

	if !p.IsPending() {
		return shared.NewDomainError("CANNOT_DELETE", "Only pending payments can be deleted")
	}

	return s.paymentRepo.DeleteForTenant(ctx, tenantID, paymentID)
}
