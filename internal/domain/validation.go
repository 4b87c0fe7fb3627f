package domain

import (
	"fmt"
)

// Validation constants
const (
	DefaultMaxLedgerRows = 100000
	MaxBatchLedgers      = 100
)

// ValidateLedgerSize rejects ledgers with more than maxRows rows.
func ValidateLedgerSize(rows, maxRows int) error {
	if maxRows <= 0 {
		maxRows = DefaultMaxLedgerRows
	}

	if rows > maxRows {
		return fmt.Errorf("%w: %d rows exceeds limit of %d", ErrLedgerTooLarge, rows, maxRows)
	}

	return nil
}

// ValidateBatchSize rejects batches with more than MaxBatchLedgers ledgers.
func ValidateBatchSize(n int) error {
	if n > MaxBatchLedgers {
		return fmt.Errorf("%w: batch of %d ledgers exceeds limit of %d", ErrLedgerTooLarge, n, MaxBatchLedgers)
	}

	return nil
}
