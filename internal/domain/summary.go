package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerSummary describes how the raw rows of a ledger were absorbed.
type LedgerSummary struct {
	Rows           int `json:"rows"`
	ClassifiedRows int `json:"classified_rows"`
	UnknownType    int `json:"unknown_type"`
	MissingAmount  int `json:"missing_amount"`
	MissingDate    int `json:"missing_date"`
}

// DailyFlow is the cashflow of a single calendar day.
// Total sums every valid amount on that day regardless of type.
type DailyFlow struct {
	Date    time.Time       `json:"date"`
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Total   decimal.Decimal `json:"total"`
}

// SummarizeLedger counts raw, classified and malformed rows.
func SummarizeLedger(ledger Ledger) LedgerSummary {
	s := LedgerSummary{Rows: len(ledger)}

	for _, tx := range ledger {
		if tx.IsClassified() {
			s.ClassifiedRows++
		} else {
			s.UnknownType++
		}
		if !tx.Amount.Valid {
			s.MissingAmount++
		}
		if !tx.HasDate() {
			s.MissingDate++
		}
	}

	return s
}

// DailyCashflow groups dated rows with a valid amount by calendar day,
// in chronological order. Total sums every such row whatever its type, so
// rows with an unrecognised type make Total exceed Inflow+Outflow.
func DailyCashflow(ledger Ledger) []DailyFlow {
	byDay := make(map[time.Time]*DailyFlow)

	for _, tx := range ledger {
		if !tx.HasDate() || !tx.Amount.Valid {
			continue
		}

		day, ok := byDay[tx.Date]
		if !ok {
			day = &DailyFlow{
				Date:    tx.Date,
				Inflow:  decimal.Zero,
				Outflow: decimal.Zero,
				Total:   decimal.Zero,
			}
			byDay[tx.Date] = day
		}

		amount := tx.Amount.Decimal
		day.Total = day.Total.Add(amount)
		switch tx.Type {
		case TransactionTypeCredit:
			day.Inflow = day.Inflow.Add(amount)
		case TransactionTypeDebit:
			day.Outflow = day.Outflow.Add(amount)
		}
	}

	flows := make([]DailyFlow, 0, len(byDay))
	for _, day := range byDay {
		flows = append(flows, *day)
	}
	sort.Slice(flows, func(i, j int) bool {
		return flows[i].Date.Before(flows[j].Date)
	})

	return flows
}
