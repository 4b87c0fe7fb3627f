package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a UPI transaction.
type TransactionType string

const (
	TransactionTypeCredit  TransactionType = "CREDIT"
	TransactionTypeDebit   TransactionType = "DEBIT"
	TransactionTypeUnknown TransactionType = ""
)

// Transaction is a single ledger row.
// Amount is invalid when the raw value could not be coerced to a
// non-negative number; such rows are missing data, not zero.
type Transaction struct {
	Date   time.Time
	Type   TransactionType
	Amount decimal.NullDecimal
}

// Ledger is an ordered sequence of transactions in upload order.
type Ledger []Transaction

// dateLayouts are tried in order. Slash and dash day-first layouts follow the
// Indian locale (dd/mm/yyyy).
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02/01/2006",
	"02-01-2006",
	"2/1/2006",
	"2006/01/02",
	"02 Jan 2006",
	"2 Jan 2006",
	"02 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

var amountMarkers = []string{"₹", "INR", "RS.", "RS"}

// NewTransaction builds a Transaction from raw ledger cells.
func NewTransaction(date, txType, amount string) Transaction {
	return Transaction{
		Date:   ParseDate(date),
		Type:   ParseTransactionType(txType),
		Amount: ParseAmount(amount),
	}
}

// ParseTransactionType normalizes a raw type cell.
// Anything other than CREDIT or DEBIT maps to TransactionTypeUnknown.
func ParseTransactionType(raw string) TransactionType {
	switch TransactionType(strings.ToUpper(strings.TrimSpace(raw))) {
	case TransactionTypeCredit:
		return TransactionTypeCredit
	case TransactionTypeDebit:
		return TransactionTypeDebit
	default:
		return TransactionTypeUnknown
	}
}

// ParseAmount coerces a raw amount cell. Currency markers and thousands
// separators are stripped. Unparseable or negative input yields an
// invalid NullDecimal.
func ParseAmount(raw string) decimal.NullDecimal {
	s := strings.TrimSpace(raw)
	upper := strings.ToUpper(s)
	for _, marker := range amountMarkers {
		if strings.HasPrefix(upper, marker) {
			s = strings.TrimSpace(s[len(marker):])
			break
		}
	}
	s = strings.ReplaceAll(s, ",", "")

	if s == "" {
		return decimal.NullDecimal{}
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.NullDecimal{}
	}

	return decimal.NewNullDecimal(d)
}

// ParseDate parses a raw date cell to a UTC calendar date.
// It returns the zero time when no known layout matches.
func ParseDate(raw string) time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}

	return time.Time{}
}

// HasDate reports whether the row carries a parsed date.
func (t Transaction) HasDate() bool {
	return !t.Date.IsZero()
}

// IsClassified reports whether the row is a CREDIT or DEBIT.
func (t Transaction) IsClassified() bool {
	return t.Type == TransactionTypeCredit || t.Type == TransactionTypeDebit
}
