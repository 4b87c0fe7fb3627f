package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/udaancredit/internal/domain"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// DailyFlowResponse is one day of the cashflow series.
type DailyFlowResponse struct {
	Date    string          `json:"date"`
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Total   decimal.Decimal `json:"total"`
}

// AssessmentResponse represents an assessment in API responses.
type AssessmentResponse struct {
	ID            string                    `json:"id"`
	Fingerprint   string                    `json:"fingerprint"`
	Policy        string                    `json:"policy"`
	Features      domain.FeatureSet         `json:"features"`
	Score         int                       `json:"score"`
	Risk          string                    `json:"risk"`
	Breakdown     domain.ScoreBreakdown     `json:"breakdown"`
	Loan          domain.LoanRecommendation `json:"loan"`
	Summary       domain.LedgerSummary      `json:"summary"`
	DailyCashflow []DailyFlowResponse       `json:"daily_cashflow"`
	CreatedAt     time.Time                 `json:"created_at"`
	Cached        bool                      `json:"cached"`
}

// AssessmentFromDomain converts a domain assessment to a response.
func AssessmentFromDomain(a *domain.Assessment) AssessmentResponse {
	flows := make([]DailyFlowResponse, 0, len(a.DailyCashflow))
	for _, d := range a.DailyCashflow {
		flows = append(flows, DailyFlowResponse{
			Date:    d.Date.Format(time.DateOnly),
			Inflow:  d.Inflow,
			Outflow: d.Outflow,
			Total:   d.Total,
		})
	}

	return AssessmentResponse{
		ID:            a.ID,
		Fingerprint:   a.Fingerprint,
		Policy:        a.Policy,
		Features:      a.Features,
		Score:         int(a.Score),
		Risk:          string(a.Risk),
		Breakdown:     a.Breakdown,
		Loan:          a.Loan,
		Summary:       a.Summary,
		DailyCashflow: flows,
		CreatedAt:     a.CreatedAt,
		Cached:        a.Cached,
	}
}

// BatchAssessmentResponse lists assessments in request order.
type BatchAssessmentResponse struct {
	Assessments []AssessmentResponse `json:"assessments"`
	Count       int                  `json:"count"`
}

// AssessmentsFromDomain converts a batch of domain assessments.
func AssessmentsFromDomain(as []*domain.Assessment) BatchAssessmentResponse {
	out := make([]AssessmentResponse, 0, len(as))
	for _, a := range as {
		out = append(out, AssessmentFromDomain(a))
	}
	return BatchAssessmentResponse{Assessments: out, Count: len(out)}
}

// ScoreResponse is the result of scoring a feature set directly.
type ScoreResponse struct {
	Policy    string                `json:"policy"`
	Score     int                   `json:"score"`
	Risk      string                `json:"risk"`
	Breakdown domain.ScoreBreakdown `json:"breakdown"`
}

// ScoreFromDomain converts an evaluation to a response.
func ScoreFromDomain(policy string, e domain.Evaluation) ScoreResponse {
	return ScoreResponse{
		Policy:    policy,
		Score:     int(e.Score),
		Risk:      string(e.Risk),
		Breakdown: e.Breakdown,
	}
}
