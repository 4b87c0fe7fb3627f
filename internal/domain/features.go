package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// ratioPrecision is the number of fractional digits kept for derived
	// ratios. It is far beyond what any tier threshold can distinguish.
	ratioPrecision = 28
	// displayPrecision is the number of fractional digits shown by ToMap.
	displayPrecision = 4
)

// FeatureSet holds the financial indicators derived from a ledger.
type FeatureSet struct {
	TotalCredit       decimal.Decimal `json:"total_credit"`
	TotalDebit        decimal.Decimal `json:"total_debit"`
	InflowCount       int             `json:"inflow_count"`
	OutflowCount      int             `json:"outflow_count"`
	AvgTicketSize     decimal.Decimal `json:"avg_ticket_size"`
	CashflowStability decimal.Decimal `json:"cashflow_stability"`
}

// ExtractFeatures reduces a ledger to its FeatureSet.
//
// Rows with an unknown type are ignored. Rows with a missing amount still
// count toward inflow/outflow counts but contribute nothing to the totals.
func ExtractFeatures(ledger Ledger) FeatureSet {
	totalCredit := decimal.Zero
	totalDebit := decimal.Zero
	inflow, outflow := 0, 0

	for _, tx := range ledger {
		switch tx.Type {
		case TransactionTypeCredit:
			inflow++
			if tx.Amount.Valid {
				totalCredit = totalCredit.Add(tx.Amount.Decimal)
			}
		case TransactionTypeDebit:
			outflow++
			if tx.Amount.Valid {
				totalDebit = totalDebit.Add(tx.Amount.Decimal)
			}
		}
	}

	avgTicket := decimal.Zero
	if inflow > 0 {
		avgTicket = totalCredit.DivRound(decimal.NewFromInt(int64(inflow)), ratioPrecision)
	}

	stability := decimal.NewFromInt(int64(inflow)).
		DivRound(decimal.NewFromInt(int64(max(outflow, 1))), ratioPrecision)

	return FeatureSet{
		TotalCredit:       totalCredit,
		TotalDebit:        totalDebit,
		InflowCount:       inflow,
		OutflowCount:      outflow,
		AvgTicketSize:     avgTicket,
		CashflowStability: stability,
	}
}

// Validate checks the invariants every extracted FeatureSet satisfies.
func (f FeatureSet) Validate() error {
	if f.InflowCount < 0 || f.OutflowCount < 0 {
		return fmt.Errorf("%w: negative transaction count (inflow=%d, outflow=%d)",
			ErrDataIntegrity, f.InflowCount, f.OutflowCount)
	}

	checks := []struct {
		name  string
		value decimal.Decimal
	}{
		{"total_credit", f.TotalCredit},
		{"total_debit", f.TotalDebit},
		{"avg_ticket_size", f.AvgTicketSize},
		{"cashflow_stability", f.CashflowStability},
	}
	for _, c := range checks {
		if c.value.IsNegative() {
			return fmt.Errorf("%w: %s is negative (%s)", ErrDataIntegrity, c.name, c.value)
		}
	}

	return nil
}

// Equal reports whether two feature sets carry the same values.
func (f FeatureSet) Equal(other FeatureSet) bool {
	return f.InflowCount == other.InflowCount &&
		f.OutflowCount == other.OutflowCount &&
		f.TotalCredit.Equal(other.TotalCredit) &&
		f.TotalDebit.Equal(other.TotalDebit) &&
		f.AvgTicketSize.Equal(other.AvgTicketSize) &&
		f.CashflowStability.Equal(other.CashflowStability)
}

// ToMap returns the feature set as a flat key/value mapping for display.
func (f FeatureSet) ToMap() map[string]any {
	return map[string]any{
		"total_credit":       f.TotalCredit.String(),
		"total_debit":        f.TotalDebit.String(),
		"inflow_count":       f.InflowCount,
		"outflow_count":      f.OutflowCount,
		"avg_ticket_size":    f.AvgTicketSize.Round(displayPrecision).String(),
		"cashflow_stability": f.CashflowStability.Round(displayPrecision).String(),
	}
}

// TransactionFrequency is the number of classified transactions.
func (f FeatureSet) TransactionFrequency() int {
	return f.InflowCount + f.OutflowCount
}
