package usecase

import "time"

const (
	// DefaultCacheTTL is how long an assessment is reused for an identical ledger.
	DefaultCacheTTL = 15 * time.Minute

	// DefaultBatchConcurrency bounds the ledgers scored in parallel by AssessBatch.
	DefaultBatchConcurrency = 8

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
