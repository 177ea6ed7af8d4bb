package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// codeAttempts bounds retries when a generated ticket code collides.
const codeAttempts = 5

// TicketService coordinates the ticket lifecycle: creation, listing,
// patching, the conversation trail, and dashboard aggregates. Every write
// commits before any notification is attempted.
type TicketService struct {
	tickets       repository.TicketRepository
	conversations repository.ConversationRepository
	attachments   repository.AttachmentRepository
	users         repository.UserRepository
	dispatcher    events.Dispatcher
	statsCache    *StatsCache
	logger        *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo       repository.TicketRepository
	ConversationRepo repository.ConversationRepository
	AttachmentRepo   repository.AttachmentRepository
	UserRepo         repository.UserRepository
	Dispatcher       events.Dispatcher
	StatsCache       *StatsCache
	Logger           *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:       deps.TicketRepo,
		conversations: deps.ConversationRepo,
		attachments:   deps.AttachmentRepo,
		users:         deps.UserRepo,
		dispatcher:    deps.Dispatcher,
		statsCache:    deps.StatsCache,
		logger:        logger,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject     string
	Description string
	Priority    domain.TicketPriority
	Category    *string
}

// TicketListFilter describes listing filters. Status accepts the "all"
// sentinel (any casing, plus the legacy "All Statuses" value) to disable
// status filtering.
type TicketListFilter struct {
	Status     string
	SearchTerm string
}

// TicketPatch is an explicit optional-field patch: nil fields are left
// untouched. AssigneeID zero clears the assignment.
type TicketPatch struct {
	Subject     *string
	Description *string
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	AssigneeID  *int64
}

// AttachmentInput defines metadata for an already-stored blob.
type AttachmentInput struct {
	StorageKey   string
	OriginalName string
	ByteSize     int64
}

// TicketDetail is a ticket with its conversation trail and attachments,
// both ordered oldest first.
type TicketDetail struct {
	Ticket        domain.Ticket
	Conversations []domain.ConversationEntry
	Attachments   []domain.Attachment
}

// CreateTicket persists a new ticket, synthesizes the first conversation
// entry from the description, registers attachments best-effort, and emits
// a creation event to the requester and all admins.
func (s *TicketService) CreateTicket(ctx context.Context, caller *domain.User, input TicketCreateInput, attachments []AttachmentInput) (*domain.Ticket, error) {
	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	if subject == "" || description == "" {
		return nil, apperrors.NewValidationError("subject and description are required", nil)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": input.Priority})
	}

	ticket := &domain.Ticket{
		Subject:     subject,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		Category:    input.Category,
		RequesterID: caller.ID,
	}

	// The code is five random digits; collisions are rare but real, so the
	// insert retries with a fresh code instead of trusting randomness.
	var createErr error
	for attempt := 0; attempt < codeAttempts; attempt++ {
		ticket.TicketCode = generateTicketCode()
		createErr = s.tickets.Create(ctx, ticket)
		if !errors.Is(createErr, repository.ErrDuplicateTicketCode) {
			break
		}
	}
	if createErr != nil {
		return nil, apperrors.NewStoreError(createErr)
	}

	ticket.RequesterName = caller.Name
	ticket.RequesterEmail = caller.Email

	initial := &domain.ConversationEntry{
		TicketID:   ticket.ID,
		UserID:     caller.ID,
		Message:    description,
		IsInternal: false,
	}
	if err := s.conversations.Create(ctx, initial); err != nil {
		s.logger.Error("initial conversation entry failed",
			zap.Int64("ticket_id", ticket.ID), zap.Error(err))
	}

	s.registerAttachments(ctx, ticket.ID, caller.ID, attachments)

	recipients := append([]int64{caller.ID}, s.adminRecipients(ctx)...)
	s.publishEvent(ctx, events.Event{
		Type:       events.EventTicketCreated,
		TicketID:   ticket.ID,
		TicketCode: ticket.TicketCode,
		Payload: events.TicketCreatedPayload{
			Subject:      ticket.Subject,
			RequesterID:  caller.ID,
			ActorName:    caller.Name,
			RecipientIDs: recipients,
		},
	})
	return ticket, nil
}

// ListTickets returns tickets visible to the caller, newest first. Admins
// see everything; other callers see only their own tickets.
func (s *TicketService) ListTickets(ctx context.Context, caller *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{}
	if !caller.IsAdmin() {
		requesterID := caller.ID
		repoFilter.RequesterID = &requesterID
	}

	if status := strings.TrimSpace(filter.Status); status != "" && !isAllStatuses(status) {
		parsed := domain.TicketStatus(status)
		if !domain.ValidStatus(parsed) {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": status})
		}
		repoFilter.Status = &parsed
	}
	if search := strings.TrimSpace(filter.SearchTerm); search != "" {
		repoFilter.SearchTerm = &search
	}

	tickets, err := s.tickets.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	return tickets, nil
}

// GetTicket fetches one ticket by numeric ID or ticket code, with its
// conversation trail and attachments. Internal notes are stripped for
// non-admin callers.
func (s *TicketService) GetTicket(ctx context.Context, caller *domain.User, idOrCode string) (*TicketDetail, error) {
	ticket, err := s.resolveTicket(ctx, idOrCode)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && ticket.RequesterID != caller.ID {
		return nil, apperrors.NewAccessDenied()
	}

	conversations, err := s.conversations.ListByTicket(ctx, ticket.ID, caller.IsAdmin())
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}

	return &TicketDetail{
		Ticket:        *ticket,
		Conversations: conversations,
		Attachments:   attachments,
	}, nil
}

// UpdateTicket applies an optional-field patch. Assignee changes by
// non-admin callers are silently ignored; any other included field still
// applies. A status change appends an internal system note.
func (s *TicketService) UpdateTicket(ctx context.Context, caller *domain.User, idOrCode string, patch TicketPatch) error {
	ticket, err := s.resolveTicket(ctx, idOrCode)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() && ticket.RequesterID != caller.ID {
		return apperrors.NewAccessDenied()
	}

	oldStatus := ticket.Status

	if patch.Subject != nil {
		subject := strings.TrimSpace(*patch.Subject)
		if subject == "" {
			return apperrors.NewValidationError("subject cannot be empty", nil)
		}
		ticket.Subject = subject
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if description == "" {
			return apperrors.NewValidationError("description cannot be empty", nil)
		}
		ticket.Description = description
	}
	if patch.Status != nil {
		if !domain.ValidStatus(*patch.Status) {
			return apperrors.NewValidationError("invalid status", map[string]any{"status": *patch.Status})
		}
		ticket.Status = *patch.Status
	}
	if patch.Priority != nil {
		if !domain.ValidPriority(*patch.Priority) {
			return apperrors.NewValidationError("invalid priority", map[string]any{"priority": *patch.Priority})
		}
		ticket.Priority = *patch.Priority
	}
	if patch.AssigneeID != nil && caller.IsAdmin() {
		if *patch.AssigneeID == 0 {
			ticket.AssigneeID = nil
		} else {
			assigneeID := *patch.AssigneeID
			ticket.AssigneeID = &assigneeID
		}
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return apperrors.MapError(err)
	}

	if ticket.Status != oldStatus {
		note := &domain.ConversationEntry{
			TicketID:   ticket.ID,
			UserID:     caller.ID,
			Message:    fmt.Sprintf("Status changed from %s to %s", oldStatus, ticket.Status),
			IsInternal: true,
		}
		if err := s.conversations.Create(ctx, note); err != nil {
			s.logger.Error("status change note failed",
				zap.Int64("ticket_id", ticket.ID), zap.Error(err))
		}
	}
	return nil
}

// AddReply appends a conversation entry. Non-admin callers can never
// create internal notes: the flag is coerced to false, not rejected.
func (s *TicketService) AddReply(ctx context.Context, caller *domain.User, idOrCode, message string, isInternal bool, attachments []AttachmentInput) (*domain.ConversationEntry, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("message is required", nil)
	}

	ticket, err := s.resolveTicket(ctx, idOrCode)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && ticket.RequesterID != caller.ID {
		return nil, apperrors.NewAccessDenied()
	}

	entry := &domain.ConversationEntry{
		TicketID:   ticket.ID,
		UserID:     caller.ID,
		Message:    message,
		IsInternal: isInternal && caller.IsAdmin(),
	}
	if err := s.conversations.Create(ctx, entry); err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	entry.AuthorName = caller.Name
	entry.AuthorEmail = caller.Email

	if err := s.tickets.TouchUpdatedAt(ctx, ticket.ID); err != nil {
		s.logger.Error("ticket touch failed", zap.Int64("ticket_id", ticket.ID), zap.Error(err))
	}

	s.registerAttachments(ctx, ticket.ID, caller.ID, attachments)

	recipients := []int64{ticket.RequesterID}
	if ticket.AssigneeID != nil {
		recipients = append(recipients, *ticket.AssigneeID)
	}
	recipients = append(recipients, s.adminRecipients(ctx)...)

	s.publishEvent(ctx, events.Event{
		Type:       events.EventTicketReply,
		TicketID:   ticket.ID,
		TicketCode: ticket.TicketCode,
		Payload: events.TicketReplyPayload{
			Message:      message,
			RequesterID:  ticket.RequesterID,
			AssigneeID:   ticket.AssigneeID,
			ActorName:    caller.Name,
			RecipientIDs: recipients,
		},
	})
	return entry, nil
}

// GetDashboardStats returns desk-wide aggregates for admins and the
// caller's own counters otherwise. Results pass through the Redis cache.
func (s *TicketService) GetDashboardStats(ctx context.Context, caller *domain.User) (any, error) {
	if caller.IsAdmin() {
		if cached := s.statsCache.GetAdmin(ctx); cached != nil {
			return cached, nil
		}
		stats, err := s.tickets.AdminStats(ctx)
		if err != nil {
			return nil, apperrors.NewStoreError(err)
		}
		s.statsCache.SetAdmin(ctx, stats)
		return stats, nil
	}

	if cached := s.statsCache.GetUser(ctx, caller.ID); cached != nil {
		return cached, nil
	}
	stats, err := s.tickets.UserStats(ctx, caller.ID)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	s.statsCache.SetUser(ctx, caller.ID, stats)
	return stats, nil
}

// registerAttachments records attachment rows best-effort: a failure is
// logged and never undoes the committed ticket or conversation entry.
func (s *TicketService) registerAttachments(ctx context.Context, ticketID, uploadedBy int64, attachments []AttachmentInput) {
	for _, att := range attachments {
		record := &domain.Attachment{
			TicketID:     ticketID,
			StorageKey:   att.StorageKey,
			OriginalName: att.OriginalName,
			ByteSize:     att.ByteSize,
			UploadedBy:   uploadedBy,
		}
		if err := s.attachments.Create(ctx, record); err != nil {
			s.logger.Error("attachment registration failed",
				zap.Int64("ticket_id", ticketID),
				zap.String("name", att.OriginalName),
				zap.Error(err))
		}
	}
}

func (s *TicketService) resolveTicket(ctx context.Context, idOrCode string) (*domain.Ticket, error) {
	var (
		ticket *domain.Ticket
		err    error
	)
	if id, parseErr := strconv.ParseInt(idOrCode, 10, 64); parseErr == nil {
		ticket, err = s.tickets.GetByID(ctx, id)
	} else {
		ticket, err = s.tickets.GetByCode(ctx, idOrCode)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket": idOrCode})
		}
		return nil, apperrors.NewStoreError(err)
	}
	return ticket, nil
}

func (s *TicketService) adminRecipients(ctx context.Context) []int64 {
	ids, err := s.users.ListAdminIDs(ctx)
	if err != nil {
		s.logger.Warn("admin recipient lookup failed", zap.Error(err))
		return nil
	}
	return ids
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketCode() string {
	return fmt.Sprintf("IT-%05d", rand.IntN(100000))
}

func isAllStatuses(status string) bool {
	return strings.EqualFold(status, "all") || strings.EqualFold(status, "All Statuses")
}
