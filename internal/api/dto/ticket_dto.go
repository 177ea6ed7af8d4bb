package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CreateTicketRequest payload. Attachments arrive as multipart files, not
// in the JSON body.
type CreateTicketRequest struct {
	Subject     string                `json:"subject" form:"subject"`
	Description string                `json:"description" form:"description"`
	Priority    domain.TicketPriority `json:"priority" form:"priority"`
	Category    *string               `json:"category" form:"category"`
}

// UpdateTicketRequest is the optional-field patch body. Absent fields are
// untouched; assignee_id zero clears the assignment.
type UpdateTicketRequest struct {
	Subject     *string                `json:"subject"`
	Description *string                `json:"description"`
	Status      *domain.TicketStatus   `json:"status"`
	Priority    *domain.TicketPriority `json:"priority"`
	AssigneeID  *int64                 `json:"assignee_id"`
}

// CreateReplyRequest payload for conversation replies.
type CreateReplyRequest struct {
	Message    string `json:"message" form:"message"`
	IsInternal bool   `json:"is_internal" form:"is_internal"`
}

// TicketSummary response.
type TicketSummary struct {
	ID             int64                 `json:"id"`
	TicketCode     string                `json:"ticket_id"`
	Subject        string                `json:"subject"`
	Status         domain.TicketStatus   `json:"status"`
	Priority       domain.TicketPriority `json:"priority"`
	Category       *string               `json:"category"`
	RequesterID    int64                 `json:"requester_id"`
	RequesterName  string                `json:"requester_name"`
	RequesterEmail string                `json:"requester_email"`
	AssigneeID     *int64                `json:"assignee_id"`
	AssigneeName   *string               `json:"assignee_name"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info including the
// conversation trail and attachments, oldest first.
type TicketDetailResponse struct {
	TicketSummary
	Description   string                 `json:"description"`
	Conversations []ConversationResponse `json:"conversations"`
	Attachments   []AttachmentResponse   `json:"attachments"`
}

// ConversationResponse represents one trail entry.
type ConversationResponse struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	UserName   string    `json:"user_name"`
	Message    string    `json:"message"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID             int64     `json:"id"`
	StorageKey     string    `json:"storage_key"`
	OriginalName   string    `json:"original_name"`
	ByteSize       int64     `json:"byte_size"`
	UploadedBy     int64     `json:"uploaded_by"`
	UploadedByName string    `json:"uploaded_by_name"`
	CreatedAt      time.Time `json:"created_at"`
}
