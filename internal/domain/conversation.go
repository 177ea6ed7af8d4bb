package domain

import "time"

// ConversationEntry is one message in a ticket's append-only trail.
// Entries with IsInternal set are visible to admins only.
type ConversationEntry struct {
	ID         int64
	TicketID   int64
	UserID     int64
	Message    string
	IsInternal bool
	CreatedAt  time.Time

	AuthorName  string
	AuthorEmail string
}
