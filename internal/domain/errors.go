package domain

import "errors"

var (
	// Ledger errors
	ErrMissingColumn  = errors.New("ledger is missing a required column")
	ErrLedgerTooLarge = errors.New("ledger exceeds maximum allowed rows")

	// Scoring errors
	ErrDataIntegrity     = errors.New("feature set violates data integrity")
	ErrInvalidRiskPolicy = errors.New("invalid risk policy")

	// Cache errors
	ErrAssessmentNotCached = errors.New("assessment not cached")
)
