package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Assessment is the full result of running a ledger through the pipeline.
type Assessment struct {
	ID            string             `json:"id"`
	Fingerprint   string             `json:"fingerprint"`
	Policy        string             `json:"policy"`
	Features      FeatureSet         `json:"features"`
	Score         CreditScore        `json:"score"`
	Risk          RiskCategory       `json:"risk"`
	Breakdown     ScoreBreakdown     `json:"breakdown"`
	Loan          LoanRecommendation `json:"loan"`
	Summary       LedgerSummary      `json:"summary"`
	DailyCashflow []DailyFlow        `json:"daily_cashflow"`
	CreatedAt     time.Time          `json:"created_at"`
	Cached        bool               `json:"cached"`
}

// Fingerprint hashes the normalized content of a ledger. Ledgers that differ
// only in formatting (case, whitespace, thousands separators, date layout)
// share a fingerprint, and therefore an assessment.
func Fingerprint(ledger Ledger) string {
	h := sha256.New()

	for _, tx := range ledger {
		date := "-"
		if tx.HasDate() {
			date = tx.Date.Format(time.DateOnly)
		}
		amount := "?"
		if tx.Amount.Valid {
			amount = tx.Amount.Decimal.String()
		}
		h.Write([]byte(date + "|" + string(tx.Type) + "|" + amount + "\n"))
	}

	return hex.EncodeToString(h.Sum(nil))
}
