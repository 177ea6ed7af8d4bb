package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// ErrDuplicateTicketCode signals a collision on the generated ticket code.
var ErrDuplicateTicketCode = errors.New("duplicate ticket code")

// TicketFilter captures list parameters. A nil Status means no status
// filtering; SearchTerm matches subject or ticket code case-insensitively.
type TicketFilter struct {
	RequesterID *int64
	Status      *domain.TicketStatus
	SearchTerm  *string
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	TouchUpdatedAt(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetByCode(ctx context.Context, code string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	AdminStats(ctx context.Context) (*domain.AdminDashboardStats, error)
	UserStats(ctx context.Context, userID int64) (*domain.UserDashboardStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_code, subject, description, status, priority, category, requester_id, assignee_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.TicketCode,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.RequesterID,
		ticket.AssigneeID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateTicketCode
	}
	return err
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET subject=$1, description=$2, status=$3, priority=$4,
            category=$5, assignee_id=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.AssigneeID,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// TouchUpdatedAt advances updated_at without changing other fields. Used
// when a conversation entry is appended.
func (r *ticketRepository) TouchUpdatedAt(ctx context.Context, id int64) error {
	const query = `UPDATE tickets SET updated_at=NOW() WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const ticketSelect = `
        SELECT t.id, t.ticket_code, t.subject, t.description, t.status, t.priority,
               t.category, t.requester_id, t.assignee_id, t.created_at, t.updated_at,
               u1.name, u1.email, u2.name
        FROM tickets t
        JOIN users u1 ON t.requester_id = u1.id
        LEFT JOIN users u2 ON t.assignee_id = u2.id`

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, ticketSelect+` WHERE t.id=$1`, id)
}

func (r *ticketRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, ticketSelect+` WHERE t.ticket_code=$1`, code)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.TicketCode,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Category,
		&ticket.RequesterID,
		&ticket.AssigneeID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.RequesterName,
		&ticket.RequesterEmail,
		&ticket.AssigneeName,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("t.requester_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(t.subject) LIKE %s OR LOWER(t.ticket_code) LIKE %s)", placeholder, placeholder))
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY t.created_at DESC",
		ticketSelect, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TicketCode,
			&ticket.Subject,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.Category,
			&ticket.RequesterID,
			&ticket.AssigneeID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.RequesterName,
			&ticket.RequesterEmail,
			&ticket.AssigneeName,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) AdminStats(ctx context.Context) (*domain.AdminDashboardStats, error) {
	const query = `
        SELECT
            COUNT(*) FILTER (WHERE status = 'Open'),
            COUNT(*) FILTER (WHERE assignee_id IS NULL AND status IN ('Open', 'In Progress')),
            COUNT(*) FILTER (WHERE status = 'Resolved' AND created_at::date = NOW()::date),
            COALESCE(AVG(EXTRACT(EPOCH FROM (updated_at - created_at)) / 3600.0) FILTER (WHERE status = 'Resolved'), 0)
        FROM tickets`
	var stats domain.AdminDashboardStats
	if err := r.pool.QueryRow(ctx, query).Scan(
		&stats.OpenTickets,
		&stats.PendingAssignment,
		&stats.ResolvedToday,
		&stats.AvgResolutionHours,
	); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *ticketRepository) UserStats(ctx context.Context, userID int64) (*domain.UserDashboardStats, error) {
	const query = `
        SELECT
            COUNT(*) FILTER (WHERE status = 'Open'),
            COUNT(*) FILTER (WHERE status = 'In Progress'),
            COUNT(*) FILTER (WHERE status = 'Closed')
        FROM tickets WHERE requester_id = $1`
	var stats domain.UserDashboardStats
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&stats.OpenTickets,
		&stats.PendingTickets,
		&stats.ClosedTickets,
	); err != nil {
		return nil, err
	}
	return &stats, nil
}
