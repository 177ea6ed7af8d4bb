package domain

// AdminDashboardStats aggregates ticket metrics across the whole desk.
// PendingAssignment counts unassigned tickets that still need attention.
type AdminDashboardStats struct {
	OpenTickets        int64   `json:"open_tickets"`
	PendingAssignment  int64   `json:"pending_assignment"`
	ResolvedToday      int64   `json:"resolved_today"`
	AvgResolutionHours float64 `json:"avg_resolution_time"`
}

// UserDashboardStats aggregates metrics over the caller's own tickets.
type UserDashboardStats struct {
	OpenTickets    int64 `json:"open_tickets"`
	PendingTickets int64 `json:"pending_tickets"`
	ClosedTickets  int64 `json:"closed_tickets"`
}
