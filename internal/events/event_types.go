package events

import "time"

// EventType enumerates supported event identifiers. The values double as
// the live-push event names delivered to rooms.
type EventType string

const (
	EventTicketCreated EventType = "ticket_created"
	EventTicketReply   EventType = "ticket_reply"
)

// Event is an ephemeral notification descriptor. It is consumed once by the
// notification service and never persisted.
type Event struct {
	ID         string
	Type       EventType
	TicketID   int64
	TicketCode string
	Timestamp  time.Time
	Payload    interface{}
}

// TicketCreatedPayload carries fan-out data for a new ticket.
type TicketCreatedPayload struct {
	Subject      string
	RequesterID  int64
	ActorName    string
	RecipientIDs []int64
}

// TicketReplyPayload carries fan-out data for a conversation reply. The
// message text is the same for every recipient regardless of the reply's
// internal flag.
type TicketReplyPayload struct {
	Message      string
	RequesterID  int64
	AssigneeID   *int64
	ActorName    string
	RecipientIDs []int64
}
