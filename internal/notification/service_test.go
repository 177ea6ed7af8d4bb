package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/realtime"
)

type sentMail struct {
	to      []string
	subject string
	body    string
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	sendErr error
}

func (f *fakeMailer) Send(to []string, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (f *fakeMailer) deliveries() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMail(nil), f.sent...)
}

type emittedPush struct {
	room    string
	event   string
	payload interface{}
}

type fakePusher struct {
	mu     sync.Mutex
	pushes []emittedPush
}

func (f *fakePusher) EmitToRoom(room, event string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, emittedPush{room: room, event: event, payload: payload})
}

func (f *fakePusher) emitted() []emittedPush {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]emittedPush(nil), f.pushes...)
}

type fakeDirectory struct {
	emails    map[int64]string
	lookupErr error
}

func (f *fakeDirectory) EmailsByIDs(_ context.Context, ids []int64) ([]string, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	var result []string
	for _, id := range ids {
		if email, ok := f.emails[id]; ok {
			result = append(result, email)
		}
	}
	return result, nil
}

type fanoutFixture struct {
	dispatcher events.Dispatcher
	mailer     *fakeMailer
	pusher     *fakePusher
	service    *Service
}

func newFanoutFixture(directory *fakeDirectory) *fanoutFixture {
	dispatcher := events.NewInMemoryDispatcher()
	mailer := &fakeMailer{}
	pusher := &fakePusher{}
	svc := NewService(dispatcher, mailer, pusher, directory, zap.NewNop())
	svc.RegisterHandlers()
	return &fanoutFixture{dispatcher: dispatcher, mailer: mailer, pusher: pusher, service: svc}
}

func TestTicketCreatedFanout(t *testing.T) {
	fx := newFanoutFixture(&fakeDirectory{emails: map[int64]string{
		1: "alice@example.com",
		2: "admin@example.com",
	}})

	err := fx.dispatcher.Publish(context.Background(), events.Event{
		ID:         "evt-1",
		Type:       events.EventTicketCreated,
		TicketID:   10,
		TicketCode: "IT-00042",
		Payload: events.TicketCreatedPayload{
			Subject:      "Printer broken",
			RequesterID:  1,
			ActorName:    "Alice",
			RecipientIDs: []int64{1, 2},
		},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	fx.service.Wait()

	mails := fx.mailer.deliveries()
	if len(mails) != 1 {
		t.Fatalf("emails sent = %d, want 1", len(mails))
	}
	if mails[0].subject != "New ticket created: IT-00042" {
		t.Errorf("subject = %q", mails[0].subject)
	}
	if mails[0].body != "Ticket IT-00042 created by Alice: Printer broken" {
		t.Errorf("body = %q", mails[0].body)
	}
	if len(mails[0].to) != 2 {
		t.Errorf("recipients = %v, want both addresses", mails[0].to)
	}

	rooms := map[string]bool{}
	for _, push := range fx.pusher.emitted() {
		if push.event != string(events.EventTicketCreated) {
			t.Errorf("push event = %q, want ticket_created", push.event)
		}
		rooms[push.room] = true
	}
	if !rooms[realtime.AdminRoom] || !rooms[realtime.UserRoom(1)] {
		t.Errorf("pushed rooms = %v, want admin room and requester room", rooms)
	}
}

func TestTicketReplyFanout(t *testing.T) {
	fx := newFanoutFixture(&fakeDirectory{emails: map[int64]string{
		1: "alice@example.com",
		2: "admin@example.com",
	}})

	assignee := int64(2)
	err := fx.dispatcher.Publish(context.Background(), events.Event{
		ID:         "evt-2",
		Type:       events.EventTicketReply,
		TicketID:   10,
		TicketCode: "IT-00042",
		Payload: events.TicketReplyPayload{
			Message:      "replacement ordered",
			RequesterID:  1,
			AssigneeID:   &assignee,
			ActorName:    "Admin",
			RecipientIDs: []int64{1, 2, 2},
		},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	fx.service.Wait()

	mails := fx.mailer.deliveries()
	if len(mails) != 1 {
		t.Fatalf("emails sent = %d, want 1", len(mails))
	}
	if mails[0].subject != "New reply on ticket IT-00042" {
		t.Errorf("subject = %q", mails[0].subject)
	}
	if mails[0].body != "Admin replied: replacement ordered" {
		t.Errorf("body = %q", mails[0].body)
	}
	// Duplicate recipient IDs collapse to one address each.
	if len(mails[0].to) != 2 {
		t.Errorf("recipients = %v, want deduplicated pair", mails[0].to)
	}

	rooms := map[string]int{}
	for _, push := range fx.pusher.emitted() {
		rooms[push.room]++
	}
	for _, room := range []string{realtime.UserRoom(1), realtime.UserRoom(2), realtime.AdminRoom} {
		if rooms[room] != 1 {
			t.Errorf("room %s pushes = %d, want 1", room, rooms[room])
		}
	}
}

func TestEmailFailureDoesNotBlockPush(t *testing.T) {
	fx := newFanoutFixture(&fakeDirectory{emails: map[int64]string{1: "alice@example.com"}})
	fx.mailer.sendErr = errors.New("smtp down")

	err := fx.dispatcher.Publish(context.Background(), events.Event{
		Type:       events.EventTicketCreated,
		TicketCode: "IT-00007",
		Payload: events.TicketCreatedPayload{
			Subject:      "No sound",
			RequesterID:  1,
			ActorName:    "Alice",
			RecipientIDs: []int64{1},
		},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	fx.service.Wait()

	if got := len(fx.pusher.emitted()); got != 2 {
		t.Errorf("pushes = %d, want 2 despite email failure", got)
	}
}

func TestRecipientLookupFailureIsSwallowed(t *testing.T) {
	fx := newFanoutFixture(&fakeDirectory{lookupErr: errors.New("db down")})

	err := fx.dispatcher.Publish(context.Background(), events.Event{
		Type:       events.EventTicketReply,
		TicketCode: "IT-00008",
		Payload: events.TicketReplyPayload{
			Message:      "checking",
			RequesterID:  1,
			ActorName:    "Admin",
			RecipientIDs: []int64{1},
		},
	})
	if err != nil {
		t.Fatalf("Publish returned handler error: %v", err)
	}
	fx.service.Wait()

	if got := len(fx.mailer.deliveries()); got != 0 {
		t.Errorf("emails sent = %d, want 0", got)
	}
	if got := len(fx.pusher.emitted()); got == 0 {
		t.Error("push channel silenced by email-side failure")
	}
}

func TestUnexpectedPayloadIgnored(t *testing.T) {
	fx := newFanoutFixture(&fakeDirectory{})

	err := fx.dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventTicketCreated,
		Payload: "not a struct",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	fx.service.Wait()

	if len(fx.mailer.deliveries()) != 0 || len(fx.pusher.emitted()) != 0 {
		t.Error("malformed payload still produced notifications")
	}
}
