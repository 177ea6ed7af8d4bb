package domain

import "time"

// Attachment associates an uploaded blob with a ticket.
type Attachment struct {
	ID           int64
	TicketID     int64
	StorageKey   string
	OriginalName string
	ByteSize     int64
	UploadedBy   int64
	CreatedAt    time.Time

	UploadedByName string
}
