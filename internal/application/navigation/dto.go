package navigation

import "time"

// CountsResponse carries the sidebar badge numbers. The pointer fields are
// role-gated: ActiveClients and AssignedClients are only populated for
// staff, DeadDeliveries only for admins.
type CountsResponse struct {
	PendingFilings      int64     `json:"pending_filings"`
	OverdueFilings      int64     `json:"overdue_filings"`
	UnconfirmedPayments int64     `json:"unconfirmed_payments"`
	PendingDocuments    int64     `json:"pending_documents"`
	ActiveClients       *int64    `json:"active_clients,omitempty"`
	AssignedClients     *int64    `json:"assigned_clients,omitempty"`
	DeadDeliveries      *int64    `json:"dead_deliveries,omitempty"`
	GeneratedAt         time.Time `json:"generated_at"`
}
