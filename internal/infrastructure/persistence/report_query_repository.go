package persistence

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/bettstax/backend/internal/domain/report"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/bettstax/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReportQueryRepository implements QueryRepository using GORM. The
// queries read across the filing, payment and client tables.
type GormReportQueryRepository struct {
	db *gorm.DB
}

// NewGormReportQueryRepository creates a new GormReportQueryRepository
func NewGormReportQueryRepository(db *gorm.DB) *GormReportQueryRepository {
	return &GormReportQueryRepository{db: db}
}

// FilingSummary lists filings in the period with report totals
func (r *GormReportQueryRepository) FilingSummary(ctx context.Context, filter report.ReportFilter) ([]report.FilingSummaryRow, *report.FilingSummaryTotals, error) {
	type filingResult struct {
		FilingNumber string
		ClientCode   string
		ClientName   string
		TaxType      string
		PeriodStart  time.Time
		PeriodEnd    time.Time
		DueDate      time.Time
		Status       string
		TaxDue       decimal.Decimal
		Penalty      decimal.Decimal
		Interest     decimal.Decimal
		TotalDue     decimal.Decimal
	}

	var results []filingResult

	query := r.db.WithContext(ctx).Table("tax_filings tf").
		Select(`
			tf.filing_number,
			COALESCE(c.code, '') as client_code,
			tf.client_name,
			tf.tax_type,
			tf.period_start,
			tf.period_end,
			tf.due_date,
			tf.status,
			tf.tax_due,
			tf.penalty,
			tf.interest,
			tf.total_due
		`).
		Joins("LEFT JOIN clients c ON c.id = tf.client_id").
		Where("tf.tenant_id = ?", filter.TenantID).
		Where("tf.due_date >= ? AND tf.due_date < ?", filter.From, filter.To)

	query = r.applyReportFilter(query, "tf", filter)

	if err := query.Order("tf.due_date ASC, tf.filing_number ASC").Scan(&results).Error; err != nil {
		return nil, nil, err
	}

	rows := make([]report.FilingSummaryRow, len(results))
	totals := &report.FilingSummaryTotals{
		ByStatus:      make(map[string]int64),
		TotalTaxDue:   decimal.Zero,
		TotalPenalty:  decimal.Zero,
		TotalInterest: decimal.Zero,
		TotalDue:      decimal.Zero,
	}
	for i, res := range results {
		rows[i] = report.FilingSummaryRow{
			FilingNumber: res.FilingNumber,
			ClientCode:   res.ClientCode,
			ClientName:   res.ClientName,
			TaxType:      res.TaxType,
			PeriodStart:  res.PeriodStart,
			PeriodEnd:    res.PeriodEnd,
			DueDate:      res.DueDate,
			Status:       res.Status,
			TaxDue:       res.TaxDue,
			Penalty:      res.Penalty,
			Interest:     res.Interest,
			TotalDue:     res.TotalDue,
		}
		totals.FilingCount++
		totals.ByStatus[res.Status]++
		totals.TotalTaxDue = totals.TotalTaxDue.Add(res.TaxDue)
		totals.TotalPenalty = totals.TotalPenalty.Add(res.Penalty)
		totals.TotalInterest = totals.TotalInterest.Add(res.Interest)
		totals.TotalDue = totals.TotalDue.Add(res.TotalDue)
	}

	return rows, totals, nil
}

// PaymentSummary lists payments in the period with report totals
func (r *GormReportQueryRepository) PaymentSummary(ctx context.Context, filter report.ReportFilter) ([]report.PaymentSummaryRow, *report.PaymentSummaryTotals, error) {
	type paymentResult struct {
		PaymentNumber string
		FilingNumber  string
		ClientCode    string
		ClientName    string
		Method        string
		Status        string
		Amount        decimal.Decimal
		Reference     string
		PaidAt        *time.Time
	}

	var results []paymentResult

	query := r.db.WithContext(ctx).Table("payments p").
		Select(`
			p.payment_number,
			COALESCE(tf.filing_number, '') as filing_number,
			COALESCE(c.code, '') as client_code,
			COALESCE(c.name, '') as client_name,
			p.method,
			p.status,
			p.amount,
			p.reference,
			p.paid_at
		`).
		Joins("LEFT JOIN tax_filings tf ON tf.id = p.filing_id").
		Joins("LEFT JOIN clients c ON c.id = p.client_id").
		Where("p.tenant_id = ?", filter.TenantID).
		Where("p.paid_at >= ? AND p.paid_at < ?", filter.From, filter.To)

	if filter.ClientID != nil {
		query = query.Where("p.client_id = ?", *filter.ClientID)
	}
	if filter.Status != "" {
		query = query.Where("p.status = ?", filter.Status)
	}
	if filter.TaxType != "" {
		query = query.Where("tf.tax_type = ?", filter.TaxType)
	}

	if err := query.Order("p.paid_at ASC, p.payment_number ASC").Scan(&results).Error; err != nil {
		return nil, nil, err
	}

	rows := make([]report.PaymentSummaryRow, len(results))
	totals := &report.PaymentSummaryTotals{
		ByMethod:       make(map[string]int64),
		TotalAmount:    decimal.Zero,
		ConfirmedTotal: decimal.Zero,
	}
	for i, res := range results {
		rows[i] = report.PaymentSummaryRow{
			PaymentNumber: res.PaymentNumber,
			FilingNumber:  res.FilingNumber,
			ClientCode:    res.ClientCode,
			ClientName:    res.ClientName,
			Method:        res.Method,
			Status:        res.Status,
			Amount:        res.Amount,
			Reference:     res.Reference,
			PaidAt:        res.PaidAt,
		}
		totals.PaymentCount++
		totals.ByMethod[res.Method]++
		totals.TotalAmount = totals.TotalAmount.Add(res.Amount)
		if res.Status == "confirmed" {
			totals.ConfirmedCount++
			totals.ConfirmedTotal = totals.ConfirmedTotal.Add(res.Amount)
		}
	}

	return rows, totals, nil
}

// ClientStatement builds the chronological statement for one client.
// Filings debit the balance on their due date, confirmed payments credit
// it when paid. The opening balance covers everything before the period.
func (r *GormReportQueryRepository) ClientStatement(ctx context.Context, filter report.ReportFilter) (*report.ClientStatement, error) {
	if filter.ClientID == nil {
		return nil, shared.NewDomainError("CLIENT_REQUIRED", "Client statement requires a client")
	}
	clientID := *filter.ClientID

	type clientResult struct {
		ID   uuid.UUID
		Code string
		Name string
	}
	var c clientResult
	err := r.db.WithContext(ctx).Table("clients").
		Select("id, code, name").
		Where("tenant_id = ? AND id = ?", filter.TenantID, clientID).
		Take(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	// Opening balance: liabilities due minus confirmed payments before the period.
	var openingDebits, openingCredits decimal.Decimal
	if err := r.db.WithContext(ctx).Table("tax_filings").
		Select("COALESCE(SUM(total_due), 0)").
		Where("tenant_id = ? AND client_id = ? AND due_date < ?", filter.TenantID, clientID, filter.From).
		Where("status NOT IN ?", []string{"draft", "cancelled"}).
		Scan(&openingDebits).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Table("payments").
		Select("COALESCE(SUM(amount), 0)").
		Where("tenant_id = ? AND client_id = ? AND status = ? AND paid_at < ?", filter.TenantID, clientID, "confirmed", filter.From).
		Scan(&openingCredits).Error; err != nil {
		return nil, err
	}
	opening := openingDebits.Sub(openingCredits)

	type filingLine struct {
		FilingNumber string
		TaxType      string
		DueDate      time.Time
		TotalDue     decimal.Decimal
	}
	var filings []filingLine
	if err := r.db.WithContext(ctx).Table("tax_filings").
		Select("filing_number, tax_type, due_date, total_due").
		Where("tenant_id = ? AND client_id = ?", filter.TenantID, clientID).
		Where("due_date >= ? AND due_date < ?", filter.From, filter.To).
		Where("status NOT IN ?", []string{"draft", "cancelled"}).
		Scan(&filings).Error; err != nil {
		return nil, err
	}

	type paymentLine struct {
		PaymentNumber string
		Method        string
		PaidAt        time.Time
		Amount        decimal.Decimal
	}
	var payments []paymentLine
	if err := r.db.WithContext(ctx).Table("payments").
		Select("payment_number, method, paid_at, amount").
		Where("tenant_id = ? AND client_id = ? AND status = ?", filter.TenantID, clientID, "confirmed").
		Where("paid_at >= ? AND paid_at < ?", filter.From, filter.To).
		Scan(&payments).Error; err != nil {
		return nil, err
	}

	lines := make([]report.StatementLine, 0, len(filings)+len(payments))
	for _, f := range filings {
		lines = append(lines, report.StatementLine{
			Date:        f.DueDate,
			Kind:        "filing",
			Reference:   f.FilingNumber,
			Description: f.TaxType + " liability",
			Debit:       f.TotalDue,
			Credit:      decimal.Zero,
		})
	}
	for _, p := range payments {
		lines = append(lines, report.StatementLine{
			Date:        p.PaidAt,
			Kind:        "payment",
			Reference:   p.PaymentNumber,
			Description: "Payment via " + p.Method,
			Debit:       decimal.Zero,
			Credit:      p.Amount,
		})
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Date.Before(lines[j].Date)
	})

	balance := opening
	for i := range lines {
		balance = balance.Add(lines[i].Debit).Sub(lines[i].Credit)
		lines[i].Balance = balance
	}

	return &report.ClientStatement{
		ClientID:       c.ID,
		ClientCode:     c.Code,
		ClientName:     c.Name,
		PeriodStart:    filter.From,
		PeriodEnd:      filter.To,
		OpeningBalance: opening,
		Lines:          lines,
		ClosingBalance: balance,
	}, nil
}

// ComplianceStatus summarizes filing discipline per client. The score is
// the on-time share of filings due in the period, 0-100.
func (r *GormReportQueryRepository) ComplianceStatus(ctx context.Context, filter report.ReportFilter) ([]report.ComplianceStatusRow, error) {
	type complianceResult struct {
		ClientID      uuid.UUID
		ClientCode    string
		ClientName    string
		TaxpayerSize  string
		FilingsDue    int64
		FiledOnTime   int64
		FiledLate     int64
		Outstanding   int64
		OverdueAmount decimal.Decimal
	}

	var results []complianceResult

	query := r.db.WithContext(ctx).Table("clients c").
		Select(`
			c.id as client_id,
			c.code as client_code,
			c.name as client_name,
			c.taxpayer_size,
			COUNT(tf.id) as filings_due,
			COALESCE(SUM(CASE WHEN tf.status IN ('filed', 'approved') AND tf.filed_at IS NOT NULL AND tf.filed_at <= tf.due_date THEN 1 ELSE 0 END), 0) as filed_on_time,
			COALESCE(SUM(CASE WHEN tf.status IN ('filed', 'approved') AND (tf.filed_at IS NULL OR tf.filed_at > tf.due_date) THEN 1 ELSE 0 END), 0) as filed_late,
			COALESCE(SUM(CASE WHEN tf.status NOT IN ('filed', 'approved', 'cancelled') THEN 1 ELSE 0 END), 0) as outstanding,
			COALESCE(SUM(CASE WHEN tf.status = 'overdue' THEN tf.total_due ELSE 0 END), 0) as overdue_amount
		`).
		Joins("INNER JOIN tax_filings tf ON tf.client_id = c.id AND tf.status != 'cancelled' AND tf.due_date >= ? AND tf.due_date < ?", filter.From, filter.To).
		Where("c.tenant_id = ?", filter.TenantID).
		Group("c.id, c.code, c.name, c.taxpayer_size")

	if filter.ClientID != nil {
		query = query.Where("c.id = ?", *filter.ClientID)
	}
	if filter.TaxType != "" {
		query = query.Where("tf.tax_type = ?", filter.TaxType)
	}

	if err := query.Order("c.code ASC").Scan(&results).Error; err != nil {
		return nil, err
	}

	hundred := decimal.NewFromInt(100)
	rows := make([]report.ComplianceStatusRow, len(results))
	for i, res := range results {
		score := decimal.Zero
		if res.FilingsDue > 0 {
			score = decimal.NewFromInt(res.FiledOnTime).
				Div(decimal.NewFromInt(res.FilingsDue)).
				Mul(hundred).
				Round(2)
		}
		rows[i] = report.ComplianceStatusRow{
			ClientID:        res.ClientID,
			ClientCode:      res.ClientCode,
			ClientName:      res.ClientName,
			TaxpayerSize:    res.TaxpayerSize,
			FilingsDue:      res.FilingsDue,
			FiledOnTime:     res.FiledOnTime,
			FiledLate:       res.FiledLate,
			Outstanding:     res.Outstanding,
			OverdueAmount:   res.OverdueAmount,
			ComplianceScore: score,
		}
	}

	return rows, nil
}

// RevenueByTaxType aggregates assessed and collected amounts per tax type
func (r *GormReportQueryRepository) RevenueByTaxType(ctx context.Context, filter report.ReportFilter) ([]report.RevenueByTaxTypeRow, error) {
	type revenueResult struct {
		TaxType       string
		FilingCount   int64
		TotalAssessed decimal.Decimal
		TotalPenalty  decimal.Decimal
		TotalInterest decimal.Decimal
	}

	var results []revenueResult

	query := r.db.WithContext(ctx).Table("tax_filings").
		Select(`
			tax_type,
			COUNT(*) as filing_count,
			COALESCE(SUM(tax_due), 0) as total_assessed,
			COALESCE(SUM(penalty), 0) as total_penalty,
			COALESCE(SUM(interest), 0) as total_interest
		`).
		Scopes(tenant.TenantScope(filter.TenantID)).
		Where("due_date >= ? AND due_date < ?", filter.From, filter.To).
		Where("status NOT IN ?", []string{"draft", "cancelled"}).
		Group("tax_type")

	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.TaxType != "" {
		query = query.Where("tax_type = ?", filter.TaxType)
	}

	if err := query.Order("tax_type ASC").Scan(&results).Error; err != nil {
		return nil, err
	}

	type collectedResult struct {
		TaxType        string
		TotalCollected decimal.Decimal
	}
	var collected []collectedResult
	collectedQuery := r.db.WithContext(ctx).Table("payments p").
		Select("tf.tax_type, COALESCE(SUM(p.amount), 0) as total_collected").
		Joins("INNER JOIN tax_filings tf ON tf.id = p.filing_id").
		Where("p.tenant_id = ? AND p.status = ?", filter.TenantID, "confirmed").
		Where("tf.due_date >= ? AND tf.due_date < ?", filter.From, filter.To).
		Group("tf.tax_type")
	if filter.ClientID != nil {
		collectedQuery = collectedQuery.Where("p.client_id = ?", *filter.ClientID)
	}
	if err := collectedQuery.Scan(&collected).Error; err != nil {
		return nil, err
	}
	collectedByType := make(map[string]decimal.Decimal, len(collected))
	for _, cr := range collected {
		collectedByType[cr.TaxType] = cr.TotalCollected
	}

	hundred := decimal.NewFromInt(100)
	rows := make([]report.RevenueByTaxTypeRow, len(results))
	for i, res := range results {
		totalCollected := collectedByType[res.TaxType]
		rate := decimal.Zero
		if !res.TotalAssessed.IsZero() {
			rate = totalCollected.Div(res.TotalAssessed).Mul(hundred).Round(2)
		}
		rows[i] = report.RevenueByTaxTypeRow{
			TaxType:        res.TaxType,
			FilingCount:    res.FilingCount,
			TotalAssessed:  res.TotalAssessed,
			TotalPenalty:   res.TotalPenalty,
			TotalInterest:  res.TotalInterest,
			TotalCollected: totalCollected,
			CollectionRate: rate,
		}
	}

	return rows, nil
}

// applyReportFilter applies the optional report filter fields to a
// tax_filings query aliased as the given table alias.
func (r *GormReportQueryRepository) applyReportFilter(query *gorm.DB, alias string, filter report.ReportFilter) *gorm.DB {
	if filter.ClientID != nil {
		query = query.Where(alias+".client_id = ?", *filter.ClientID)
	}
	if filter.TaxType != "" {
		query = query.Where(alias+".tax_type = ?", filter.TaxType)
	}
	if filter.Status != "" {
		query = query.Where(alias+".status = ?", filter.Status)
	}
	return query
}

// Ensure GormReportQueryRepository implements QueryRepository
var _ report.QueryRepository = (*GormReportQueryRepository)(nil)
