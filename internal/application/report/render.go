package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"html/template"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bettstax/backend/internal/domain/report"
	"github.com/bettstax/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// render runs the aggregation query behind the template and projects the
// rows through its column definition.
func (s *ReportService) render(ctx context.Context, tenantID uuid.UUID, t *report.ReportTemplate, req RenderReportRequest) (*RenderedReportResponse, error) {
	if !t.Active {
		return nil, shared.NewDomainError("TEMPLATE_INACTIVE", "Template is deactivated")
	}

	def, err := t.DefinitionValue()
	if err != nil {
		return nil, err
	}

	filter := report.ReportFilter{
		TenantID: tenantID,
		From:     req.From,
		To:       req.To,
		ClientID: req.ClientID,
		TaxType:  req.TaxType,
		Status:   req.Status,
	}
	applyDefinitionFilters(&filter, def.Filters)

	if t.Type == report.ReportTypeClientStatement && filter.ClientID == nil {
		return nil, shared.NewDomainError("CLIENT_REQUIRED", "Client statements need a client_id filter")
	}

	rows, totals, err := s.runQuery(ctx, t.Type, filter)
	if err != nil {
		return nil, err
	}

	columns := toDefinitionResponse(def).Columns

	return &RenderedReportResponse{
		TemplateID:   t.ID,
		TemplateCode: t.Code,
		Title:        t.Name,
		Type:         string(t.Type),
		From:         req.From,
		To:           req.To,
		GeneratedAt:  time.Now(),
		Columns:      columns,
		Rows:         projectColumns(rows, columns),
		Totals:       totals,
	}, nil
}

// applyDefinitionFilters fills request filter fields left empty from the
// template's stored defaults
func applyDefinitionFilters(filter *report.ReportFilter, defaults map[string]interface{}) {
	if len(defaults) == 0 {
		return
	}
	if filter.TaxType == "" {
		if v, ok := defaults["tax_type"].(string); ok {
			filter.TaxType = v
		}
	}
	if filter.Status == "" {
		if v, ok := defaults["status"].(string); ok {
			filter.Status = v
		}
	}
	if filter.ClientID == nil {
		if v, ok := defaults["client_id"].(string); ok {
			if id, err := uuid.Parse(v); err == nil {
				filter.ClientID = &id
			}
		}
	}
}

// runQuery dispatches to the aggregation query for the report type and
// normalizes the typed rows into generic maps
func (s *ReportService) runQuery(ctx context.Context, reportType report.ReportType, filter report.ReportFilter) ([]map[string]interface{}, map[string]interface{}, error) {
	switch reportType {
	case report.ReportTypeFilingSummary:
		rows, totals, err := s.queryRepo.FilingSummary(ctx, filter)
		if err != nil {
			return nil, nil, err
		}
		generic, err := toGenericRows(rows)
		if err != nil {
			return nil, nil, err
		}
		totalMap, err := toGenericMap(totals)
		if err != nil {
			return nil, nil, err
		}
		return generic, totalMap, nil

	case report.ReportTypePaymentSummary:
		rows, totals, err := s.queryRepo.PaymentSummary(ctx, filter)
		if err != nil {
			return nil, nil, err
		}
		generic, err := toGenericRows(rows)
		if err != nil {
			return nil, nil, err
		}
		totalMap, err := toGenericMap(totals)
		if err != nil {
			return nil, nil, err
		}
		return generic, totalMap, nil

	case report.ReportTypeClientStatement:
		statement, err := s.queryRepo.ClientStatement(ctx, filter)
		if err != nil {
			return nil, nil, err
		}
		generic, err := toGenericRows(statement.Lines)
		if err != nil {
			return nil, nil, err
		}
		totals := map[string]interface{}{
			"client_code":     statement.ClientCode,
			"client_name":     statement.ClientName,
			"opening_balance": statement.OpeningBalance.String(),
			"closing_balance": statement.ClosingBalance.String(),
		}
		return generic, totals, nil

	case report.ReportTypeComplianceStatus:
		rows, err := s.queryRepo.ComplianceStatus(ctx, filter)
		if err != nil {
			return nil, nil, err
		}
		generic, err := toGenericRows(rows)
		if err != nil {
			return nil, nil, err
		}
		return generic, nil, nil

	case report.ReportTypeRevenueByTaxType:
		rows, err := s.queryRepo.RevenueByTaxType(ctx, filter)
		if err != nil {
			return nil, nil, err
		}
		generic, err := toGenericRows(rows)
		if err != nil {
			return nil, nil, err
		}
		return generic, nil, nil
	}

	return nil, nil, shared.NewDomainError("INVALID_REPORT_TYPE", "Unknown report type: "+string(reportType))
}

// toGenericRows converts typed query rows into maps keyed by their JSON
// field names. Numbers stay as json.Number so decimal values keep their
// exact representation.
func toGenericRows(rows interface{}) ([]map[string]interface{}, error) {
	raw, err := json.Marshal(rows)
	if err != nil {
		return nil, err
	}
	var generic []map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	return generic, nil
}

func toGenericMap(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	return generic, nil
}

// projectColumns keeps only the defined columns, in definition order
func projectColumns(rows []map[string]interface{}, columns []ColumnResponse) []map[string]interface{} {
	projected := make([]map[string]interface{}, len(rows))
	for i, row := range rows {
		out := make(map[string]interface{}, len(columns))
		for _, col := range columns {
			out[col.Key] = row[col.Key]
		}
		projected[i] = out
	}
	return projected
}

// ============================================================================
// CSV Encoding
// ============================================================================

func encodeCSV(rendered *RenderedReportResponse) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(rendered.Columns))
	for i, col := range rendered.Columns {
		header[i] = col.Label
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	record := make([]string, len(rendered.Columns))
	for _, row := range rendered.Rows {
		for i, col := range rendered.Columns {
			record[i] = formatCell(col.Key, row[col.Key])
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatCell renders one projected value for CSV and PDF output
func formatCell(key string, v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		if isMoneyKey(key) {
			if amount, ok := formatAmount(val); ok {
				return amount
			}
		}
		return formatTimestamp(val)
	case json.Number:
		if isMoneyKey(key) {
			if amount, ok := formatAmount(val.String()); ok {
				return amount
			}
		}
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

// moneyKeys are the row fields carrying SLE amounts by exact name; the
// suffix list below covers derived keys like total_due or overdue_amount
var moneyKeys = map[string]bool{
	"amount":   true,
	"debit":    true,
	"credit":   true,
	"balance":  true,
	"penalty":  true,
	"interest": true,
}

var moneyKeySuffixes = []string{
	"_due", "_amount", "_assessed", "_collected", "_penalty", "_interest",
}

func isMoneyKey(key string) bool {
	if moneyKeys[key] {
		return true
	}
	for _, suffix := range moneyKeySuffixes {
		if strings.HasSuffix(key, suffix) {
			return true
		}
	}
	return false
}

// slePrinter groups thousands the way NRA-facing statements are printed
var slePrinter = message.NewPrinter(language.English)

// formatAmount renders an SLE amount with thousands grouping and two
// decimal places, banker's rounding at presentation
func formatAmount(raw string) (string, bool) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return "", false
	}
	f, _ := d.RoundBank(2).Float64()
	return slePrinter.Sprintf("%.2f", f), true
}

// formatTimestamp shortens RFC3339 strings for display. Midnight values
// collapse to the date, others keep the clock time.
func formatTimestamp(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04")
}

// ============================================================================
// PDF HTML
// ============================================================================

var reportHTMLTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 11px; color: #1a1a1a; margin: 24px; }
h1 { font-size: 18px; margin-bottom: 2px; }
.meta { color: #555; margin-bottom: 16px; }
table { width: 100%; border-collapse: collapse; }
th { text-align: left; border-bottom: 2px solid #333; padding: 6px 8px; }
td { border-bottom: 1px solid #ddd; padding: 5px 8px; }
tr:nth-child(even) td { background: #f7f7f7; }
.totals { margin-top: 16px; }
.totals div { padding: 2px 0; }
.totals span { font-weight: bold; }
.footer { margin-top: 24px; color: #888; font-size: 9px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">{{.Period}}</div>
<table>
<thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
{{if .Totals}}<div class="totals">
{{range .Totals}}<div><span>{{.Label}}:</span> {{.Value}}</div>
{{end}}</div>{{end}}
<div class="footer">Generated {{.GeneratedAt}}</div>
</body>
</html>
`))

type htmlTotal struct {
	Label string
	Value string
}

type htmlReportData struct {
	Title       string
	Period      string
	Header      []string
	Rows        [][]string
	Totals      []htmlTotal
	GeneratedAt string
}

// buildReportHTML lays out the rendered report as a printable HTML table
func buildReportHTML(rendered *RenderedReportResponse) (string, error) {
	header := make([]string, len(rendered.Columns))
	for i, col := range rendered.Columns {
		header[i] = col.Label
	}

	rows := make([][]string, len(rendered.Rows))
	for i, row := range rendered.Rows {
		cells := make([]string, len(rendered.Columns))
		for j, col := range rendered.Columns {
			cells[j] = formatCell(col.Key, row[col.Key])
		}
		rows[i] = cells
	}

	var totals []htmlTotal
	for _, key := range sortedKeys(rendered.Totals) {
		totals = append(totals, htmlTotal{
			Label: key,
			Value: formatCell(key, rendered.Totals[key]),
		})
	}

	data := htmlReportData{
		Title:       rendered.Title,
		Period:      rendered.From.Format("2006-01-02") + " to " + rendered.To.Format("2006-01-02"),
		Header:      header,
		Rows:        rows,
		Totals:      totals,
		GeneratedAt: rendered.GeneratedAt.Format("2006-01-02 15:04:05 MST"),
	}

	var buf bytes.Buffer
	if err := reportHTMLTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ============================================================================
// Report Type Catalog
// ============================================================================

func reportTypeCatalog() []ReportTypeResponse {
	types := []struct {
		reportType  report.ReportType
		name        string
		description string
	}{
		{report.ReportTypeFilingSummary, "Filing Summary", "Filings in the period with liabilities, penalties and status totals"},
		{report.ReportTypePaymentSummary, "Payment Summary", "Payments in the period with confirmation and method totals"},
		{report.ReportTypeClientStatement, "Client Statement", "Chronological statement of liabilities and payments for one client"},
		{report.ReportTypeComplianceStatus, "Compliance Status", "Per-client filing discipline with on-time scores"},
		{report.ReportTypeRevenueByTaxType, "Revenue by Tax Type", "Assessed and collected amounts per tax type"},
	}

	responses := make([]ReportTypeResponse, len(types))
	for i, t := range types {
		columns := report.DefaultColumns(t.reportType)
		cols := make([]ColumnResponse, len(columns))
		for j, c := range columns {
			cols[j] = ColumnResponse{Key: c.Key, Label: c.Label}
		}
		responses[i] = ReportTypeResponse{
			Type:           string(t.reportType),
			Name:           t.name,
			Description:    t.description,
			DefaultColumns: cols,
		}
	}
	return responses
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
