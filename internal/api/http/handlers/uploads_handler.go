package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/storage"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// UploadsHandler serves stored attachment blobs by key.
type UploadsHandler struct {
	attachments repository.AttachmentRepository
	blobs       storage.BlobStore
}

// NewUploadsHandler constructs handler.
func NewUploadsHandler(attachments repository.AttachmentRepository, blobs storage.BlobStore) *UploadsHandler {
	return &UploadsHandler{attachments: attachments, blobs: blobs}
}

// Get GET /uploads/:key.
func (h *UploadsHandler) Get(c *fiber.Ctx) error {
	key := c.Params("key")
	attachment, err := h.attachments.GetByStorageKey(c.UserContext(), key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("attachment", nil)
		}
		return apperrors.MapError(err)
	}

	blob, err := h.blobs.Open(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NewNotFound("attachment", nil)
		}
		return apperrors.MapError(err)
	}

	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", attachment.OriginalName))
	return c.SendStream(blob, int(attachment.ByteSize))
}
