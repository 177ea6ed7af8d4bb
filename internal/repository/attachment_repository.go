package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// AttachmentRepository persists attachment metadata. Both the ticket-create
// and reply flows register attachments through the same Create path.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Attachment, error)
	GetByStorageKey(ctx context.Context, key string) (*domain.Attachment, error)
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository constructs repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	const query = `
        INSERT INTO attachments (ticket_id, storage_key, original_name, byte_size, uploaded_by)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		attachment.TicketID,
		attachment.StorageKey,
		attachment.OriginalName,
		attachment.ByteSize,
		attachment.UploadedBy,
	).Scan(&attachment.ID, &attachment.CreatedAt)
}

func (r *attachmentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Attachment, error) {
	const query = `
        SELECT a.id, a.ticket_id, a.storage_key, a.original_name, a.byte_size, a.uploaded_by, a.created_at,
               u.name
        FROM attachments a
        JOIN users u ON a.uploaded_by = u.id
        WHERE a.ticket_id=$1
        ORDER BY a.created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Attachment
	for rows.Next() {
		var attachment domain.Attachment
		if err := rows.Scan(
			&attachment.ID,
			&attachment.TicketID,
			&attachment.StorageKey,
			&attachment.OriginalName,
			&attachment.ByteSize,
			&attachment.UploadedBy,
			&attachment.CreatedAt,
			&attachment.UploadedByName,
		); err != nil {
			return nil, err
		}
		result = append(result, attachment)
	}
	return result, rows.Err()
}

func (r *attachmentRepository) GetByStorageKey(ctx context.Context, key string) (*domain.Attachment, error) {
	const query = `
        SELECT a.id, a.ticket_id, a.storage_key, a.original_name, a.byte_size, a.uploaded_by, a.created_at,
               u.name
        FROM attachments a
        JOIN users u ON a.uploaded_by = u.id
        WHERE a.storage_key=$1`
	var attachment domain.Attachment
	if err := r.pool.QueryRow(ctx, query, key).Scan(
		&attachment.ID,
		&attachment.TicketID,
		&attachment.StorageKey,
		&attachment.OriginalName,
		&attachment.ByteSize,
		&attachment.UploadedBy,
		&attachment.CreatedAt,
		&attachment.UploadedByName,
	); err != nil {
		return nil, err
	}
	return &attachment, nil
}
