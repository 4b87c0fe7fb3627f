package dto

import (
	"bytes"
	"encoding/json"

	"github.com/iho/udaancredit/internal/domain"
	"github.com/iho/udaancredit/internal/usecase"
)

// RawCell is a ledger cell that accepts a JSON string, number or null.
// Numbers keep their literal text so that no precision is lost.
type RawCell string

// UnmarshalJSON implements json.Unmarshaler.
func (c *RawCell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = RawCell(s)
		return nil
	}

	*c = RawCell(data)
	return nil
}

// TransactionItem represents a single ledger row.
type TransactionItem struct {
	Date   RawCell `json:"date"`
	Type   RawCell `json:"type"`
	Amount RawCell `json:"amount"`
}

// AssessLedgerRequest represents a request to assess one ledger.
type AssessLedgerRequest struct {
	Transactions []TransactionItem `json:"transactions"`
}

// ToLedger converts the request rows to a domain ledger. Malformed cells
// become missing values, exactly as for CSV uploads.
func (r *AssessLedgerRequest) ToLedger() domain.Ledger {
	ledger := make(domain.Ledger, 0, len(r.Transactions))
	for _, item := range r.Transactions {
		ledger = append(ledger, domain.NewTransaction(string(item.Date), string(item.Type), string(item.Amount)))
	}
	return ledger
}

// ToUseCaseInput converts to use case input.
func (r *AssessLedgerRequest) ToUseCaseInput() usecase.AssessInput {
	return usecase.AssessInput{Ledger: r.ToLedger()}
}

// BatchAssessRequest represents a request to assess several ledgers.
type BatchAssessRequest struct {
	Ledgers []AssessLedgerRequest `json:"ledgers"`
}

// ToUseCaseInputs converts to use case inputs, keeping order.
func (r *BatchAssessRequest) ToUseCaseInputs() []usecase.AssessInput {
	inputs := make([]usecase.AssessInput, 0, len(r.Ledgers))
	for i := range r.Ledgers {
		inputs = append(inputs, r.Ledgers[i].ToUseCaseInput())
	}
	return inputs
}

// ScoreRequest is a precomputed feature set to score directly.
type ScoreRequest = domain.FeatureSet
