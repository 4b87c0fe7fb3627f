package csvledger

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/udaancredit/internal/domain"
)

func TestParse_ReadsLedger(t *testing.T) {
	input := "date,type,amount\n" +
		"2024-01-01,CREDIT,1000\n" +
		"2024-01-02, debit ,\"1,250.50\"\n"

	ledger, err := NewParser(0).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, ledger, 2)

	assert.Equal(t, domain.TransactionTypeCredit, ledger[0].Type)
	assert.True(t, ledger[0].Amount.Decimal.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, domain.TransactionTypeDebit, ledger[1].Type)
	assert.True(t, ledger[1].Amount.Decimal.Equal(decimal.RequireFromString("1250.5")))
}

func TestParse_ColumnsInAnyOrderWithExtras(t *testing.T) {
	input := "\ufeffAmount,Description,TYPE,Date\n" +
		"300,chai stall,credit,05/01/2024\n"

	ledger, err := NewParser(0).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, ledger, 1)

	assert.Equal(t, domain.TransactionTypeCredit, ledger[0].Type)
	assert.True(t, ledger[0].HasDate())
	assert.Equal(t, "300", ledger[0].Amount.Decimal.String())
}

func TestParse_MalformedRowsAreKept(t *testing.T) {
	input := "date,type,amount\n" +
		"not-a-date,CREDIT,abc\n" +
		"2024-01-01,REVERSAL,10\n" +
		"2024-01-01,DEBIT\n"

	ledger, err := NewParser(0).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, ledger, 3)

	assert.False(t, ledger[0].Amount.Valid)
	assert.False(t, ledger[0].HasDate())
	assert.Equal(t, domain.TransactionTypeUnknown, ledger[1].Type)
	assert.False(t, ledger[2].Amount.Valid)

	f := domain.ExtractFeatures(ledger)
	assert.Equal(t, 1, f.InflowCount)
	assert.Equal(t, 1, f.OutflowCount)
	assert.True(t, f.TotalCredit.IsZero())
}

func TestParse_HeaderOnly(t *testing.T) {
	ledger, err := NewParser(0).Parse(strings.NewReader("date,type,amount\n"))
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestParse_MissingColumns(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"missing amount", "date,type\n2024-01-01,CREDIT\n"},
		{"missing everything", "foo,bar\n1,2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(0).Parse(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, domain.ErrMissingColumn)
		})
	}
}

func TestParse_MissingColumnNamesAreReported(t *testing.T) {
	_, err := NewParser(0).Parse(strings.NewReader("date\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type, amount")
}

func TestParse_RejectsOversizedLedger(t *testing.T) {
	input := "date,type,amount\n" + strings.Repeat("2024-01-01,CREDIT,1\n", 4)

	_, err := NewParser(3).Parse(strings.NewReader(input))
	assert.ErrorIs(t, err, domain.ErrLedgerTooLarge)

	ledger, err := NewParser(4).Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, ledger, 4)
}
