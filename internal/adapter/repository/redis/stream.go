package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/udaancredit/internal/domain"
)

// DefaultStreamMaxLen caps the event stream when no length is configured.
const DefaultStreamMaxLen = 10000

// StreamPublisher publishes events to a capped Redis stream.
type StreamPublisher struct {
	client  *redis.Client
	retrier *Retrier
	stream  string
	maxLen  int64
}

// NewStreamPublisher creates a new StreamPublisher.
func NewStreamPublisher(client *redis.Client, retrier *Retrier, stream string, maxLen int64) *StreamPublisher {
	if retrier == nil {
		retrier = NewRetrier()
	}
	if maxLen <= 0 {
		maxLen = DefaultStreamMaxLen
	}
	return &StreamPublisher{
		client:  client,
		retrier: retrier,
		stream:  stream,
		maxLen:  maxLen,
	}
}

// Publish appends the event to the stream with XADD MAXLEN ~.
func (p *StreamPublisher) Publish(ctx context.Context, event *domain.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Values: map[string]any{
			"event_id":       event.ID,
			"event_type":     event.EventType,
			"aggregate_type": event.AggregateType,
			"aggregate_id":   event.AggregateID,
			"created_at":     event.CreatedAt.UTC().Format(time.RFC3339Nano),
			"payload":        string(payload),
		},
	}

	return p.retrier.Retry(ctx, func() error {
		return p.client.XAdd(ctx, args).Err()
	})
}
