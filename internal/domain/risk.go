package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RiskCategory is a coarse banding of a credit score.
type RiskCategory string

const (
	RiskLow      RiskCategory = "Low Risk"
	RiskModerate RiskCategory = "Moderate Risk"
	RiskHigh     RiskCategory = "High Risk"
)

// Risk policy names.
const (
	RiskPolicyStandard = "standard"
	RiskPolicyStrict   = "strict"
)

// RiskPolicy is a score-threshold step function. When RequireFeatureMinimums
// is set, the Low and Moderate bands additionally require minimum cashflow
// stability and transaction frequency (all minimums are exclusive).
type RiskPolicy struct {
	Name                   string          `json:"name"`
	LowThreshold           CreditScore     `json:"low_threshold"`
	ModerateThreshold      CreditScore     `json:"moderate_threshold"`
	RequireFeatureMinimums bool            `json:"require_feature_minimums"`
	LowMinStability        decimal.Decimal `json:"low_min_stability"`
	LowMinFrequency        int             `json:"low_min_frequency"`
	ModerateMinStability   decimal.Decimal `json:"moderate_min_stability"`
}

// StandardRiskPolicy classifies on score alone: >=720 Low, >=580 Moderate.
func StandardRiskPolicy() RiskPolicy {
	return RiskPolicy{
		Name:                 RiskPolicyStandard,
		LowThreshold:         720,
		ModerateThreshold:    580,
		LowMinStability:      decimal.Zero,
		ModerateMinStability: decimal.Zero,
	}
}

// StrictRiskPolicy raises the Moderate band to 620 and requires
// stability > 1.2 and more than 20 transactions for Low, stability > 0.9
// for Moderate.
func StrictRiskPolicy() RiskPolicy {
	return RiskPolicy{
		Name:                   RiskPolicyStrict,
		LowThreshold:           720,
		ModerateThreshold:      620,
		RequireFeatureMinimums: true,
		LowMinStability:        decimal.RequireFromString("1.2"),
		LowMinFrequency:        20,
		ModerateMinStability:   decimal.RequireFromString("0.9"),
	}
}

// RiskPolicyByName returns a built-in policy.
func RiskPolicyByName(name string) (RiskPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", RiskPolicyStandard:
		return StandardRiskPolicy(), nil
	case RiskPolicyStrict:
		return StrictRiskPolicy(), nil
	default:
		return RiskPolicy{}, fmt.Errorf("%w: unknown policy %q", ErrInvalidRiskPolicy, name)
	}
}

// Validate checks that thresholds are ordered and inside the score range.
func (p RiskPolicy) Validate() error {
	if p.ModerateThreshold < MinCreditScore || p.LowThreshold > MaxCreditScore {
		return fmt.Errorf("%w: thresholds must lie within [%d, %d]", ErrInvalidRiskPolicy, MinCreditScore, MaxCreditScore)
	}
	if p.LowThreshold <= p.ModerateThreshold {
		return fmt.Errorf("%w: low threshold %d must exceed moderate threshold %d",
			ErrInvalidRiskPolicy, p.LowThreshold, p.ModerateThreshold)
	}
	if p.LowMinStability.IsNegative() || p.ModerateMinStability.IsNegative() || p.LowMinFrequency < 0 {
		return fmt.Errorf("%w: feature minimums must not be negative", ErrInvalidRiskPolicy)
	}
	return nil
}

// Key identifies the policy by every input that affects classification, so
// two policies sharing a name but not thresholds get different keys.
func (p RiskPolicy) Key() string {
	key := fmt.Sprintf("%s/%d/%d", p.Name, p.LowThreshold, p.ModerateThreshold)
	if p.RequireFeatureMinimums {
		key += fmt.Sprintf("/%s/%d/%s", p.LowMinStability, p.LowMinFrequency, p.ModerateMinStability)
	}
	return key
}

// Classify bands a score using the thresholds only.
func (p RiskPolicy) Classify(score CreditScore) RiskCategory {
	switch {
	case score >= p.LowThreshold:
		return RiskLow
	case score >= p.ModerateThreshold:
		return RiskModerate
	default:
		return RiskHigh
	}
}

// ClassifyFeatures bands a score, applying feature minimums when the policy
// requires them.
func (p RiskPolicy) ClassifyFeatures(score CreditScore, f FeatureSet) RiskCategory {
	if !p.RequireFeatureMinimums {
		return p.Classify(score)
	}

	switch {
	case score >= p.LowThreshold &&
		f.CashflowStability.GreaterThan(p.LowMinStability) &&
		f.TransactionFrequency() > p.LowMinFrequency:
		return RiskLow
	case score >= p.ModerateThreshold &&
		f.CashflowStability.GreaterThan(p.ModerateMinStability):
		return RiskModerate
	default:
		return RiskHigh
	}
}
