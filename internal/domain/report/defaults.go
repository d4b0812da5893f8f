package report

import "github.com/google/uuid"

// DefaultColumns returns the full column set for a report type, keyed by
// the JSON field names of its query rows
func DefaultColumns(reportType ReportType) []Column {
	switch reportType {
	case ReportTypeFilingSummary:
		return []Column{
			{Key: "filing_number", Label: "Filing"},
			{Key: "client_code", Label: "Client Code"},
			{Key: "client_name", Label: "Client"},
			{Key: "tax_type", Label: "Tax Type"},
			{Key: "period_start", Label: "Period Start"},
			{Key: "period_end", Label: "Period End"},
			{Key: "due_date", Label: "Due Date"},
			{Key: "status", Label: "Status"},
			{Key: "tax_due", Label: "Tax Due"},
			{Key: "penalty", Label: "Penalty"},
			{Key: "interest", Label: "Interest"},
			{Key: "total_due", Label: "Total Due"},
		}
	case ReportTypePaymentSummary:
		return []Column{
			{Key: "payment_number", Label: "Payment"},
			{Key: "filing_number", Label: "Filing"},
			{Key: "client_code", Label: "Client Code"},
			{Key: "client_name", Label: "Client"},
			{Key: "method", Label: "Method"},
			{Key: "status", Label: "Status"},
			{Key: "amount", Label: "Amount"},
			{Key: "reference", Label: "Reference"},
			{Key: "paid_at", Label: "Paid At"},
		}
	case ReportTypeClientStatement:
		return []Column{
			{Key: "date", Label: "Date"},
			{Key: "kind", Label: "Kind"},
			{Key: "reference", Label: "Reference"},
			{Key: "description", Label: "Description"},
			{Key: "debit", Label: "Debit"},
			{Key: "credit", Label: "Credit"},
			{Key: "balance", Label: "Balance"},
		}
	case ReportTypeComplianceStatus:
		return []Column{
			{Key: "client_code", Label: "Client Code"},
			{Key: "client_name", Label: "Client"},
			{Key: "taxpayer_size", Label: "Taxpayer Size"},
			{Key: "filings_due", Label: "Filings Due"},
			{Key: "filed_on_time", Label: "On Time"},
			{Key: "filed_late", Label: "Late"},
			{Key: "outstanding", Label: "Outstanding"},
			{Key: "overdue_amount", Label: "Overdue Amount"},
			{Key: "compliance_score", Label: "Score"},
		}
	case ReportTypeRevenueByTaxType:
		return []Column{
			{Key: "tax_type", Label: "Tax Type"},
			{Key: "filing_count", Label: "Filings"},
			{Key: "total_assessed", Label: "Assessed"},
			{Key: "total_penalty", Label: "Penalty"},
			{Key: "total_interest", Label: "Interest"},
			{Key: "total_collected", Label: "Collected"},
			{Key: "collection_rate", Label: "Collection %"},
		}
	}
	return nil
}

// DefaultTemplates returns the seeded system templates for a tenant,
// one per report type, allowing every output format
func DefaultTemplates(tenantID uuid.UUID) []*ReportTemplate {
	mk := func(code, name string, reportType ReportType, description string) *ReportTemplate {
		t, err := NewSystemTemplate(tenantID, code, name, reportType,
			Definition{Columns: DefaultColumns(reportType)},
			[]OutputFormat{FormatJSON, FormatCSV, FormatPDF})
		if err != nil {
			panic(err) // seed definitions are static and always valid
		}
		t.Description = description
		return t
	}

	return []*ReportTemplate{
		mk("FILING-SUMMARY", "Filing Summary", ReportTypeFilingSummary,
			"Filings in the period with liabilities, penalties and status totals"),
		mk("PAYMENT-SUMMARY", "Payment Summary", ReportTypePaymentSummary,
			"Payments in the period with confirmation and method totals"),
		mk("CLIENT-STATEMENT", "Client Statement", ReportTypeClientStatement,
			"Chronological statement of liabilities and payments for one client"),
		mk("COMPLIANCE-STATUS", "Compliance Status", ReportTypeComplianceStatus,
			"Per-client filing discipline with on-time scores"),
		mk("REVENUE-BY-TAX-TYPE", "Revenue by Tax Type", ReportTypeRevenueByTaxType,
			"Assessed and collected amounts per tax type"),
	}
}
