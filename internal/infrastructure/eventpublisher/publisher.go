package eventpublisher

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/udaancredit/internal/domain"
)

// ErrQueueFull is returned by Enqueue when the buffer has no room.
var ErrQueueFull = errors.New("event queue is full")

// EventPublisher buffers events in memory and publishes them in batches.
// It implements usecase.EventQueue.
type EventPublisher struct {
	queue     chan *domain.Event
	publisher Publisher
	observer  Observer
	logger    zerolog.Logger
	batchSize int
	interval  time.Duration
}

// Publisher defines the interface for publishing events to external systems.
type Publisher interface {
	Publish(ctx context.Context, event *domain.Event) error
}

// Observer records publishing outcomes.
type Observer interface {
	ObservePublish(err error)
	ObserveDrop()
}

// Config for EventPublisher.
type Config struct {
	Publisher  Publisher
	Observer   Observer
	Logger     zerolog.Logger
	BufferSize int           // Capacity of the in-memory queue
	BatchSize  int           // Max events published per tick
	Interval   time.Duration // Flush interval
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1024
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}

	return &EventPublisher{
		queue:     make(chan *domain.Event, cfg.BufferSize),
		publisher: cfg.Publisher,
		observer:  cfg.Observer,
		logger:    cfg.Logger,
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
	}
}

// Enqueue adds an event without blocking. A full queue drops the event.
func (ep *EventPublisher) Enqueue(ctx context.Context, event *domain.Event) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case ep.queue <- event:
		return nil
	default:
		if ep.observer != nil {
			ep.observer.ObserveDrop()
		}
		return ErrQueueFull
	}
}

// Pending returns the number of queued events.
func (ep *EventPublisher) Pending() int {
	return len(ep.queue)
}

// Start begins the event publishing worker.
// It runs until the context is cancelled, then flushes what is left.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().
		Int("batch_size", ep.batchSize).
		Dur("interval", ep.interval).
		Msg("event publisher started")

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ep.drain()
			ep.logger.Info().Msg("event publisher shutting down")
			return ctx.Err()
		case <-ticker.C:
			ep.processEvents(ctx)
		}
	}
}

// processEvents publishes up to one batch of queued events.
func (ep *EventPublisher) processEvents(ctx context.Context) int {
	published := 0

	for i := 0; i < ep.batchSize; i++ {
		select {
		case event := <-ep.queue:
			if ep.publishEvent(ctx, event) == nil {
				published++
			}
		default:
			return published
		}
	}

	return published
}

// drain publishes remaining events on a fresh context so shutdown does not
// lose them.
func (ep *EventPublisher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for ep.Pending() > 0 && ctx.Err() == nil {
		ep.processEvents(ctx)
	}
}

// publishEvent publishes a single event.
func (ep *EventPublisher) publishEvent(ctx context.Context, event *domain.Event) error {
	err := ep.publisher.Publish(ctx, event)
	if ep.observer != nil {
		ep.observer.ObservePublish(err)
	}

	if err != nil {
		// Failed events are not requeued: assessments are recomputable.
		ep.logger.Error().
			Err(err).
			Str("event_id", event.ID).
			Str("event_type", event.EventType).
			Msg("failed to publish event")
		return err
	}

	ep.logger.Debug().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_id", event.AggregateID).
		Msg("event published")

	return nil
}

// LogPublisher is a simple publisher that logs events.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(ctx context.Context, event *domain.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		RawJSON("payload", payload).
		Msg("EVENT PUBLISHED")

	return nil
}
