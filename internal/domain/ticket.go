package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusClosed     TicketStatus = "Closed"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
	TicketPriorityUrgent TicketPriority = "Urgent"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          int64
	TicketCode  string
	Subject     string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	Category    *string
	RequesterID int64
	AssigneeID  *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined display fields, populated on reads.
	RequesterName  string
	RequesterEmail string
	AssigneeName   *string
}

// ValidStatus reports whether the value belongs to the fixed status set.
func ValidStatus(status TicketStatus) bool {
	switch status {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// ValidPriority reports whether the value belongs to the fixed priority set.
func ValidPriority(priority TicketPriority) bool {
	switch priority {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}
