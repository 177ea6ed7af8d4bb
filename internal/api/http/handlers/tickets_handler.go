package handlers

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/internal/storage"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service  *service.TicketService
	blobs    storage.BlobStore
	maxFiles int
	logger   *zap.Logger
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, blobs storage.BlobStore, maxFiles int, logger *zap.Logger) *TicketsHandler {
	if maxFiles <= 0 {
		maxFiles = 5
	}
	return &TicketsHandler{service: ticketService, blobs: blobs, maxFiles: maxFiles, logger: logger}
}

// Create POST /api/tickets. Accepts JSON or multipart with attachments.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	caller, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), caller, service.TicketCreateInput{
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
	}, h.storeUploads(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":        ticket.ID,
		"ticket_id": ticket.TicketCode,
		"message":   "Ticket created successfully",
	})
}

// List GET /api/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	caller, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	tickets, err := h.service.ListTickets(c.UserContext(), caller, service.TicketListFilter{
		Status:     c.Query("status"),
		SearchTerm: c.Query("search"),
	})
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(items)
}

// Get GET /api/tickets/:id. Accepts numeric ID or ticket code.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	caller, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	detail, err := h.service.GetTicket(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(ticketDetail(detail))
}

// Update PUT /api/tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	caller, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.UpdateTicket(c.UserContext(), caller, c.Params("id"), service.TicketPatch{
		Subject:     req.Subject,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
	}); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Ticket updated successfully"})
}

// AddReply POST /api/tickets/:id/conversations.
func (h *TicketsHandler) AddReply(c *fiber.Ctx) error {
	caller, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if _, err := h.service.AddReply(c.UserContext(), caller, c.Params("id"),
		req.Message, req.IsInternal, h.storeUploads(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Reply added successfully"})
}

// Stats GET /api/tickets/stats/dashboard.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	caller, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	stats, err := h.service.GetDashboardStats(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// storeUploads drains multipart attachments into the blob store. Uploads
// are auxiliary: a failed file is logged and skipped, never fatal.
func (h *TicketsHandler) storeUploads(c *fiber.Ctx) []service.AttachmentInput {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	files := form.File["attachments"]
	if len(files) > h.maxFiles {
		files = files[:h.maxFiles]
	}

	inputs := make([]service.AttachmentInput, 0, len(files))
	for _, file := range files {
		input, err := h.storeOne(file)
		if err != nil {
			h.logger.Warn("attachment upload failed",
				zap.String("name", file.Filename), zap.Error(err))
			continue
		}
		inputs = append(inputs, input)
	}
	return inputs
}

func (h *TicketsHandler) storeOne(file *multipart.FileHeader) (service.AttachmentInput, error) {
	src, err := file.Open()
	if err != nil {
		return service.AttachmentInput{}, err
	}
	defer src.Close()

	key, size, err := h.blobs.Store(src, file.Filename)
	if err != nil {
		return service.AttachmentInput{}, err
	}
	return service.AttachmentInput{
		StorageKey:   key,
		OriginalName: file.Filename,
		ByteSize:     size,
	}, nil
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:             ticket.ID,
		TicketCode:     ticket.TicketCode,
		Subject:        ticket.Subject,
		Status:         ticket.Status,
		Priority:       ticket.Priority,
		Category:       ticket.Category,
		RequesterID:    ticket.RequesterID,
		RequesterName:  ticket.RequesterName,
		RequesterEmail: ticket.RequesterEmail,
		AssigneeID:     ticket.AssigneeID,
		AssigneeName:   ticket.AssigneeName,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
	}
}

func ticketDetail(detail *service.TicketDetail) dto.TicketDetailResponse {
	conversations := make([]dto.ConversationResponse, 0, len(detail.Conversations))
	for _, entry := range detail.Conversations {
		conversations = append(conversations, dto.ConversationResponse{
			ID:         entry.ID,
			UserID:     entry.UserID,
			UserName:   entry.AuthorName,
			Message:    entry.Message,
			IsInternal: entry.IsInternal,
			CreatedAt:  entry.CreatedAt,
		})
	}
	attachments := make([]dto.AttachmentResponse, 0, len(detail.Attachments))
	for _, att := range detail.Attachments {
		attachments = append(attachments, dto.AttachmentResponse{
			ID:             att.ID,
			StorageKey:     att.StorageKey,
			OriginalName:   att.OriginalName,
			ByteSize:       att.ByteSize,
			UploadedBy:     att.UploadedBy,
			UploadedByName: att.UploadedByName,
			CreatedAt:      att.CreatedAt,
		})
	}
	return dto.TicketDetailResponse{
		TicketSummary: ticketSummary(&detail.Ticket),
		Description:   detail.Ticket.Description,
		Conversations: conversations,
		Attachments:   attachments,
	}
}
