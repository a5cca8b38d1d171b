package contact

import (
	"context"
	"errors"
	"testing"

	"animal-rescue/internal/ports/events"
)

type testPublisher struct {
	got []events.Event
	err error
}

func (p *testPublisher) Publish(ctx context.Context, e events.Event) error {
	p.got = append(p.got, e)
	return p.err
}

func TestSend_Validation(t *testing.T) {
	pub := &testPublisher{}
	svc := NewService(pub, nil)

	cases := []SendInput{
		{Email: "a@b.com", Message: "hi"},
		{Name: "A", Message: "hi"},
		{Name: "A", Email: "a@b.com"},
		{Name: "A", Email: "not-an-email", Message: "hi"},
	}
	for _, in := range cases {
		if _, err := svc.Send(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %#v, got %v", in, err)
		}
	}
	if len(pub.got) != 0 {
		t.Fatalf("expected no events for invalid input")
	}
}

func TestSend_Publishes(t *testing.T) {
	pub := &testPublisher{err: errors.New("broker down")}
	svc := NewService(pub, nil)

	m, err := svc.Send(context.Background(), SendInput{Name: "Priya", Email: "priya@example.com", Message: "Found a puppy"})
	if err != nil {
		t.Fatalf("publish failures must not surface: %v", err)
	}
	if len(pub.got) != 1 || pub.got[0].Type != EventMessageReceived || pub.got[0].Key != m.ID {
		t.Fatalf("unexpected events: %#v", pub.got)
	}
}
