package payment

import (
	"context"
	"time"

	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MethodTotal aggregates confirmed payment volume for one method
type MethodTotal struct {
	Method PaymentMethod
	Count  int64
	Amount decimal.Decimal
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID retrieves a payment by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByIDForTenant retrieves a payment scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)

	// FindByNumberForTenant retrieves a payment by its payment number
	FindByNumberForTenant(ctx context.Context, tenantID uuid.UUID, paymentNumber string) (*Payment, error)

	// FindAllForTenant retrieves payments for a tenant with pagination
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Payment, error)

	// FindByFilingForTenant retrieves all payments against one filing
	FindByFilingForTenant(ctx context.Context, tenantID, filingID uuid.UUID) ([]*Payment, error)

	// FindByClientForTenant retrieves payments for one client
	FindByClientForTenant(ctx context.Context, tenantID, clientID uuid.UUID, filter shared.Filter) ([]*Payment, error)

	// FindByStatusForTenant retrieves payments in a given status
	FindByStatusForTenant(ctx context.Context, tenantID uuid.UUID, status PaymentStatus, filter shared.Filter) ([]*Payment, error)

	// FindPaidBetweenForTenant retrieves payments with PaidAt inside [from, to)
	FindPaidBetweenForTenant(ctx context.Context, tenantID uuid.UUID, from, to time.Time, filter shared.Filter) ([]*Payment, error)

	// Save persists a payment (create or update)
	Save(ctx context.Context, payment *Payment) error

	// SaveWithLock persists a payment with optimistic locking
	SaveWithLock(ctx context.Context, payment *Payment, expectedVersion int) error

	// DeleteForTenant removes a payment scoped to a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant returns the number of payments for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// CountByStatusForTenant returns the number of payments in a status
	CountByStatusForTenant(ctx context.Context, tenantID uuid.UUID, status PaymentStatus) (int64, error)

	// CountByClientAndStatus returns the number of one client's payments in a status
	CountByClientAndStatus(ctx context.Context, tenantID, clientID uuid.UUID, status PaymentStatus) (int64, error)

	// SumConfirmedByFiling returns the confirmed total paid against a filing
	SumConfirmedByFiling(ctx context.Context, tenantID, filingID uuid.UUID) (decimal.Decimal, error)

	// SumConfirmedByMethod aggregates confirmed payments per method
	// for payments with PaidAt inside [from, to).
	SumConfirmedByMethod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]MethodTotal, error)

	// GeneratePaymentNumber generates the next sequential payment number
	GeneratePaymentNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
