package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// ConversationRepository manages the append-only conversation trail.
type ConversationRepository interface {
	Create(ctx context.Context, entry *domain.ConversationEntry) error
	ListByTicket(ctx context.Context, ticketID int64, includeInternal bool) ([]domain.ConversationEntry, error)
}

type conversationRepository struct {
	pool *pgxpool.Pool
}

// NewConversationRepository builds repository.
func NewConversationRepository(pool *pgxpool.Pool) ConversationRepository {
	return &conversationRepository{pool: pool}
}

func (r *conversationRepository) Create(ctx context.Context, entry *domain.ConversationEntry) error {
	const query = `
        INSERT INTO conversations (ticket_id, user_id, message, is_internal)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.UserID,
		entry.Message,
		entry.IsInternal,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *conversationRepository) ListByTicket(ctx context.Context, ticketID int64, includeInternal bool) ([]domain.ConversationEntry, error) {
	query := `
        SELECT c.id, c.ticket_id, c.user_id, c.message, c.is_internal, c.created_at,
               u.name, u.email
        FROM conversations c
        JOIN users u ON c.user_id = u.id
        WHERE c.ticket_id=$1`
	if !includeInternal {
		query += ` AND c.is_internal = FALSE`
	}
	query += ` ORDER BY c.created_at ASC`

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ConversationEntry
	for rows.Next() {
		var entry domain.ConversationEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.UserID,
			&entry.Message,
			&entry.IsInternal,
			&entry.CreatedAt,
			&entry.AuthorName,
			&entry.AuthorEmail,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
