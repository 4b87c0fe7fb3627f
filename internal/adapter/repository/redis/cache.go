package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/udaancredit/internal/domain"
)

// AssessmentCache implements usecase.AssessmentCache using Redis.
type AssessmentCache struct {
	client  *redis.Client
	retrier *Retrier
	prefix  string
}

// NewAssessmentCache creates a new AssessmentCache.
func NewAssessmentCache(client *redis.Client, retrier *Retrier) *AssessmentCache {
	if retrier == nil {
		retrier = NewRetrier()
	}
	return &AssessmentCache{
		client:  client,
		retrier: retrier,
		prefix:  "assessment:",
	}
}

// Get returns the cached assessment, or domain.ErrAssessmentNotCached.
func (c *AssessmentCache) Get(ctx context.Context, key string) (*domain.Assessment, error) {
	var raw []byte
	err := c.retrier.Retry(ctx, func() error {
		var err error
		raw, err = c.client.Get(ctx, c.prefix+key).Bytes()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrAssessmentNotCached
	}
	if err != nil {
		return nil, err
	}

	var a domain.Assessment
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode cached assessment: %w", err)
	}

	return &a, nil
}

// Set stores an assessment with TTL.
func (c *AssessmentCache) Set(ctx context.Context, key string, a *domain.Assessment, ttl time.Duration) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode assessment: %w", err)
	}

	return c.retrier.Retry(ctx, func() error {
		return c.client.Set(ctx, c.prefix+key, raw, ttl).Err()
	})
}

// Delete evicts a cached assessment.
func (c *AssessmentCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}
