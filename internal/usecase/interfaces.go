package usecase

import (
	"context"
	"time"

	"github.com/iho/udaancredit/internal/domain"
)

// AssessmentCache stores assessments keyed by policy and ledger fingerprint.
type AssessmentCache interface {
	// Get returns domain.ErrAssessmentNotCached on a miss.
	Get(ctx context.Context, key string) (*domain.Assessment, error)
	Set(ctx context.Context, key string, assessment *domain.Assessment, ttl time.Duration) error
}

// EventQueue accepts events for asynchronous publishing.
type EventQueue interface {
	Enqueue(ctx context.Context, event *domain.Event) error
}

// MetricsRecorder records assessment outcomes.
type MetricsRecorder interface {
	ObserveAssessment(risk domain.RiskCategory, score domain.CreditScore, duration time.Duration)
	ObserveCache(hit bool)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
