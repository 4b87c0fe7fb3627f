package domain

import "github.com/shopspring/decimal"

// Eligibility is the loan verdict shown for a risk category.
type Eligibility string

const (
	EligibilityApproved    Eligibility = "approved"
	EligibilityConditional Eligibility = "conditional"
	EligibilityDeclined    Eligibility = "declined"
)

// LoanShare is the fraction of total inflow offered as a loan ceiling.
var LoanShare = decimal.RequireFromString("0.3")

// LoanRecommendation is the loan ceiling and verdict for an assessment.
type LoanRecommendation struct {
	Amount      int64       `json:"amount"`
	Eligibility Eligibility `json:"eligibility"`
	Message     string      `json:"message"`
}

// RecommendLoan derives floor(total_credit * 0.3) and the verdict for risk.
func RecommendLoan(f FeatureSet, risk RiskCategory) LoanRecommendation {
	rec := LoanRecommendation{
		Amount: f.TotalCredit.Mul(LoanShare).Floor().IntPart(),
	}

	switch risk {
	case RiskLow:
		rec.Eligibility = EligibilityApproved
		rec.Message = "Approved for Instant Micro-Loan"
	case RiskModerate:
		rec.Eligibility = EligibilityConditional
		rec.Message = "Eligible with Conditions"
	default:
		rec.Eligibility = EligibilityDeclined
		rec.Message = "Loan Not Recommended"
	}

	return rec
}
