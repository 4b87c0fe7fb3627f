// Package csvledger reads UPI transaction ledgers from CSV.
package csvledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/iho/udaancredit/internal/domain"
)

// Required column names, matched case-insensitively.
const (
	ColumnDate   = "date"
	ColumnType   = "type"
	ColumnAmount = "amount"
)

const utf8BOM = "\ufeff"

// Parser converts CSV input into a domain.Ledger.
type Parser struct {
	maxRows int
}

// NewParser creates a Parser that rejects ledgers with more than maxRows rows.
func NewParser(maxRows int) *Parser {
	if maxRows <= 0 {
		maxRows = domain.DefaultMaxLedgerRows
	}
	return &Parser{maxRows: maxRows}
}

// Parse reads a header row followed by transaction rows. Columns may appear
// in any order and extra columns are ignored. Malformed cells never fail the
// parse; only a missing required column, an oversized ledger, or unreadable
// CSV does.
func (p *Parser) Parse(r io.Reader) (domain.Ledger, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input", domain.ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger header: %w", err)
	}

	cols, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	ledger := make(domain.Ledger, 0, 64)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ledger line %d: %w", line, err)
		}

		if len(ledger) == p.maxRows {
			return nil, domain.ValidateLedgerSize(p.maxRows+1, p.maxRows)
		}

		ledger = append(ledger, domain.NewTransaction(
			cell(record, cols.date),
			cell(record, cols.txType),
			cell(record, cols.amount),
		))
	}

	return ledger, nil
}

type columns struct {
	date, txType, amount int
}

func locateColumns(header []string) (columns, error) {
	cols := columns{date: -1, txType: -1, amount: -1}

	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case ColumnDate:
			if cols.date < 0 {
				cols.date = i
			}
		case ColumnType:
			if cols.txType < 0 {
				cols.txType = i
			}
		case ColumnAmount:
			if cols.amount < 0 {
				cols.amount = i
			}
		}
	}

	var missing []string
	if cols.date < 0 {
		missing = append(missing, ColumnDate)
	}
	if cols.txType < 0 {
		missing = append(missing, ColumnType)
	}
	if cols.amount < 0 {
		missing = append(missing, ColumnAmount)
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("%w: %s", domain.ErrMissingColumn, strings.Join(missing, ", "))
	}

	return cols, nil
}

func cell(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return record[idx]
}
