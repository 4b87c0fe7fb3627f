package eventpublisher

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/udaancredit/internal/domain"
)

func TestProcessEventsPublishesQueuedEvents(t *testing.T) {
	pub := &stubPublisher{}
	ep := newTestPublisher(pub, 10)

	enqueue(t, ep, "evt-1", "evt-2")

	if n := ep.processEvents(context.Background()); n != 2 {
		t.Fatalf("expected 2 published events, got %d", n)
	}
	if got := pub.ids(); len(got) != 2 || got[0] != "evt-1" || got[1] != "evt-2" {
		t.Fatalf("expected events in queue order, got %#v", got)
	}
	if ep.Pending() != 0 {
		t.Fatalf("expected empty queue, got %d pending", ep.Pending())
	}
}

func TestProcessEventsContinuesOnPublishError(t *testing.T) {
	pub := &stubPublisher{
		errorsByID: map[string]error{"evt-1": errors.New("fail")},
	}
	obs := &stubObserver{}
	ep := newTestPublisher(pub, 10)
	ep.observer = obs

	enqueue(t, ep, "evt-1", "evt-2")

	if n := ep.processEvents(context.Background()); n != 1 {
		t.Fatalf("expected 1 published event, got %d", n)
	}
	if got := pub.ids(); len(got) != 1 || got[0] != "evt-2" {
		t.Fatalf("expected only evt-2 to be published, got %#v", got)
	}
	if obs.ok != 1 || obs.failed != 1 {
		t.Fatalf("expected one success and one failure observed, got ok=%d failed=%d", obs.ok, obs.failed)
	}
}

func TestProcessEventsRespectsBatchSize(t *testing.T) {
	pub := &stubPublisher{}
	ep := NewEventPublisher(Config{Publisher: pub, Logger: zerolog.Nop(), BatchSize: 2})

	enqueue(t, ep, "a", "b", "c")

	if n := ep.processEvents(context.Background()); n != 2 {
		t.Fatalf("expected batch of 2, got %d", n)
	}
	if ep.Pending() != 1 {
		t.Fatalf("expected 1 pending event, got %d", ep.Pending())
	}
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	obs := &stubObserver{}
	ep := NewEventPublisher(Config{Publisher: &stubPublisher{}, Observer: obs, Logger: zerolog.Nop(), BufferSize: 1})

	if err := ep.Enqueue(context.Background(), &domain.Event{ID: "a"}); err != nil {
		t.Fatalf("first enqueue failed: %v", err)
	}

	err := ep.Enqueue(context.Background(), &domain.Event{ID: "b"})
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if obs.dropped != 1 {
		t.Fatalf("expected drop to be observed, got %d", obs.dropped)
	}
}

func TestStartDrainsOnContextCancellation(t *testing.T) {
	pub := &stubPublisher{}
	ep := newTestPublisher(pub, 10)
	ep.interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ep.Start(ctx)
	}()

	enqueue(t, ep, "evt-1", "evt-2", "evt-3")
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after cancel")
	}

	if got := len(pub.ids()); got != 3 {
		t.Fatalf("expected queued events to be drained on shutdown, got %d", got)
	}
}

func TestLogPublisherWritesEvent(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf))

	a := &domain.Assessment{ID: "asm-1", Score: 650, Risk: domain.RiskModerate}
	if err := p.Publish(context.Background(), domain.NewAssessmentCompletedEvent("evt-1", a)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"event_id":"evt-1"`, `"aggregate_id":"asm-1"`, `"score":650`, domain.EventTypeAssessmentCompleted} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected log output to contain %s, got %s", want, out)
		}
	}
}

func newTestPublisher(pub *stubPublisher, batch int) *EventPublisher {
	return NewEventPublisher(Config{
		Publisher: pub,
		Logger:    zerolog.Nop(),
		BatchSize: batch,
		Interval:  5 * time.Millisecond,
	})
}

func enqueue(t *testing.T, ep *EventPublisher, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if err := ep.Enqueue(context.Background(), &domain.Event{ID: id, EventType: "type"}); err != nil {
			t.Fatalf("enqueue %s failed: %v", id, err)
		}
	}
}

type stubPublisher struct {
	mu         sync.Mutex
	published  []*domain.Event
	errorsByID map[string]error
}

func (s *stubPublisher) Publish(ctx context.Context, event *domain.Event) error {
	if err := s.errorsByID[event.ID]; err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, event)
	return nil
}

func (s *stubPublisher) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.published))
	for _, e := range s.published {
		out = append(out, e.ID)
	}
	return out
}

type stubObserver struct {
	ok, failed, dropped int
}

func (s *stubObserver) ObservePublish(err error) {
	if err != nil {
		s.failed++
		return
	}
	s.ok++
}

func (s *stubObserver) ObserveDrop() { s.dropped++ }
