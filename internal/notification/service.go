package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/realtime"
)

// Pusher emits live-push messages to rooms. Satisfied by *realtime.Hub.
type Pusher interface {
	EmitToRoom(room, event string, payload interface{})
}

// RecipientDirectory resolves recipient IDs to email addresses. Satisfied
// by repository.UserRepository.
type RecipientDirectory interface {
	EmailsByIDs(ctx context.Context, ids []int64) ([]string, error)
}

// Service fans ticket events out over two independent channels: one email
// to the deduplicated recipient set and one live push per logical room.
// Both channels run after the triggering mutation is committed; their
// failures are logged and never reach the caller.
type Service struct {
	dispatcher events.Dispatcher
	mailer     Mailer
	pusher     Pusher
	users      RecipientDirectory
	logger     *zap.Logger
	timeout    time.Duration
	wg         sync.WaitGroup
}

// NewService creates the notification service.
func NewService(dispatcher events.Dispatcher, mailer Mailer, pusher Pusher, users RecipientDirectory, logger *zap.Logger) *Service {
	return &Service{
		dispatcher: dispatcher,
		mailer:     mailer,
		pusher:     pusher,
		users:      users,
		logger:     logger,
		timeout:    10 * time.Second,
	}
}

// RegisterHandlers subscribes to ticket events.
func (n *Service) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketReply, n.handleTicketReply)
}

// Wait blocks until in-flight fan-outs finish. Used by shutdown and tests.
func (n *Service) Wait() {
	n.wg.Wait()
}

type createdPush struct {
	TicketID    string `json:"ticketId"`
	Subject     string `json:"subject"`
	RequesterID int64  `json:"requesterId,omitempty"`
}

type replyPush struct {
	TicketID string `json:"ticketId"`
	Message  string `json:"message"`
	From     string `json:"from,omitempty"`
}

func (n *Service) handleTicketCreated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		n.logger.Warn("unexpected payload for ticket_created", zap.String("event_id", event.ID))
		return nil
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		var inner sync.WaitGroup
		inner.Add(2)

		go func() {
			defer inner.Done()
			subject := fmt.Sprintf("New ticket created: %s", event.TicketCode)
			body := fmt.Sprintf("Ticket %s created by %s: %s", event.TicketCode, payload.ActorName, payload.Subject)
			n.sendEmail(ctx, payload.RecipientIDs, subject, body)
		}()

		go func() {
			defer inner.Done()
			n.pusher.EmitToRoom(realtime.AdminRoom, string(events.EventTicketCreated), createdPush{
				TicketID:    event.TicketCode,
				Subject:     payload.Subject,
				RequesterID: payload.RequesterID,
			})
			n.pusher.EmitToRoom(realtime.UserRoom(payload.RequesterID), string(events.EventTicketCreated), createdPush{
				TicketID: event.TicketCode,
				Subject:  payload.Subject,
			})
		}()

		inner.Wait()
	}()
	return nil
}

func (n *Service) handleTicketReply(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketReplyPayload)
	if !ok {
		n.logger.Warn("unexpected payload for ticket_reply", zap.String("event_id", event.ID))
		return nil
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		var inner sync.WaitGroup
		inner.Add(2)

		go func() {
			defer inner.Done()
			subject := fmt.Sprintf("New reply on ticket %s", event.TicketCode)
			body := fmt.Sprintf("%s replied: %s", payload.ActorName, payload.Message)
			n.sendEmail(ctx, payload.RecipientIDs, subject, body)
		}()

		go func() {
			defer inner.Done()
			push := replyPush{
				TicketID: event.TicketCode,
				Message:  payload.Message,
				From:     payload.ActorName,
			}
			n.pusher.EmitToRoom(realtime.UserRoom(payload.RequesterID), string(events.EventTicketReply), push)
			if payload.AssigneeID != nil {
				n.pusher.EmitToRoom(realtime.UserRoom(*payload.AssigneeID), string(events.EventTicketReply), push)
			}
			n.pusher.EmitToRoom(realtime.AdminRoom, string(events.EventTicketReply), push)
		}()

		inner.Wait()
	}()
	return nil
}

func (n *Service) sendEmail(ctx context.Context, recipientIDs []int64, subject, body string) {
	emails, err := n.users.EmailsByIDs(ctx, dedupIDs(recipientIDs))
	if err != nil {
		n.logger.Warn("recipient lookup failed", zap.String("subject", subject), zap.Error(err))
		return
	}
	if len(emails) == 0 {
		return
	}
	if err := n.mailer.Send(dedupStrings(emails), subject, body); err != nil {
		n.logger.Warn("email send failed", zap.String("subject", subject), zap.Error(err))
	}
}

func dedupIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func dedupStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
