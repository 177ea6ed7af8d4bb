package events

import (
	"context"
	"errors"
	"testing"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var first, second int
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, _ Event) error {
		first++
		return nil
	})
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, _ Event) error {
		second++
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if first != 1 || second != 1 {
		t.Errorf("handler calls = %d, %d; want 1, 1", first, second)
	}
}

func TestPublishIgnoresHandlerErrors(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var delivered bool
	dispatcher.Subscribe(EventTicketReply, func(_ context.Context, _ Event) error {
		return errors.New("handler failed")
	})
	dispatcher.Subscribe(EventTicketReply, func(_ context.Context, _ Event) error {
		delivered = true
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketReply}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !delivered {
		t.Error("failing handler blocked later subscribers")
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated}); err != nil {
		t.Fatalf("Publish with no subscribers: %v", err)
	}
}
