package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
)

type fakeTicketRepo struct {
	tickets map[int64]*domain.Ticket
	nextID  int64

	createCalls int
	dupFailures int
	createErr   error
	updateErr   error
	touchedIDs  []int64
	lastFilter  repository.TicketFilter
	listResult  []domain.Ticket
	adminStats  *domain.AdminDashboardStats
	userStats   *domain.UserDashboardStats
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[int64]*domain.Ticket)}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	f.createCalls++
	if f.dupFailures > 0 {
		f.dupFailures--
		return repository.ErrDuplicateTicketCode
	}
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	ticket.ID = f.nextID
	copied := *ticket
	f.tickets[ticket.ID] = &copied
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *ticket
	f.tickets[ticket.ID] = &copied
	return nil
}

func (f *fakeTicketRepo) TouchUpdatedAt(_ context.Context, id int64) error {
	f.touchedIDs = append(f.touchedIDs, id)
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeTicketRepo) GetByCode(_ context.Context, code string) (*domain.Ticket, error) {
	for _, ticket := range f.tickets {
		if ticket.TicketCode == code {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.lastFilter = filter
	return f.listResult, nil
}

func (f *fakeTicketRepo) AdminStats(_ context.Context) (*domain.AdminDashboardStats, error) {
	if f.adminStats == nil {
		return nil, fmt.Errorf("no stats configured")
	}
	return f.adminStats, nil
}

func (f *fakeTicketRepo) UserStats(_ context.Context, _ int64) (*domain.UserDashboardStats, error) {
	if f.userStats == nil {
		return nil, fmt.Errorf("no stats configured")
	}
	return f.userStats, nil
}

type fakeConversationRepo struct {
	entries   []domain.ConversationEntry
	createErr error
}

func (f *fakeConversationRepo) Create(_ context.Context, entry *domain.ConversationEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	entry.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeConversationRepo) ListByTicket(_ context.Context, ticketID int64, includeInternal bool) ([]domain.ConversationEntry, error) {
	var result []domain.ConversationEntry
	for _, entry := range f.entries {
		if entry.TicketID != ticketID {
			continue
		}
		if entry.IsInternal && !includeInternal {
			continue
		}
		result = append(result, entry)
	}
	return result, nil
}

type fakeAttachmentRepo struct {
	entries   []domain.Attachment
	createErr error
}

func (f *fakeAttachmentRepo) Create(_ context.Context, attachment *domain.Attachment) error {
	if f.createErr != nil {
		return f.createErr
	}
	attachment.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, *attachment)
	return nil
}

func (f *fakeAttachmentRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.Attachment, error) {
	var result []domain.Attachment
	for _, entry := range f.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (f *fakeAttachmentRepo) GetByStorageKey(_ context.Context, key string) (*domain.Attachment, error) {
	for _, entry := range f.entries {
		if entry.StorageKey == key {
			copied := entry
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeUserRepo struct {
	users  map[int64]*domain.User
	nextID int64
}

func newFakeUserRepo(seed ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[int64]*domain.User)}
	for _, user := range seed {
		if user.ID == 0 {
			repo.nextID++
			user.ID = repo.nextID
		} else if user.ID > repo.nextID {
			repo.nextID = user.ID
		}
		copied := *user
		repo.users[user.ID] = &copied
	}
	return repo
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	f.nextID++
	user.ID = f.nextID
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	var result []domain.User
	for _, user := range f.users {
		result = append(result, *user)
	}
	return result, nil
}

func (f *fakeUserRepo) ListAdminIDs(_ context.Context) ([]int64, error) {
	var result []int64
	for _, user := range f.users {
		if user.Role == domain.RoleAdmin {
			result = append(result, user.ID)
		}
	}
	return result, nil
}

func (f *fakeUserRepo) EmailsByIDs(_ context.Context, ids []int64) ([]string, error) {
	var result []string
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			result = append(result, user.Email)
		}
	}
	return result, nil
}

type captureDispatcher struct {
	published []events.Event
}

func (c *captureDispatcher) Publish(_ context.Context, event events.Event) error {
	c.published = append(c.published, event)
	return nil
}

func (c *captureDispatcher) Subscribe(_ events.EventType, _ events.EventHandler) {}
