package domain

import (
	"github.com/shopspring/decimal"
)

// CreditScore is a bounded credit score.
type CreditScore int

const (
	MinCreditScore  CreditScore = 300
	MaxCreditScore  CreditScore = 900
	BaseCreditScore CreditScore = 300
)

// ClampScore bounds a raw score to [MinCreditScore, MaxCreditScore].
func ClampScore(raw int) CreditScore {
	return CreditScore(min(max(raw, int(MinCreditScore)), int(MaxCreditScore)))
}

// tier is one bracket of a ladder. A value matches when it is above the
// threshold, or equal to it for inclusive tiers.
type tier struct {
	threshold decimal.Decimal
	inclusive bool
	points    int
}

func (t tier) matches(v decimal.Decimal) bool {
	if t.inclusive {
		return v.GreaterThanOrEqual(t.threshold)
	}
	return v.GreaterThan(t.threshold)
}

// ladder awards the points of the first matching tier, highest first.
type ladder struct {
	name  string
	value func(FeatureSet) decimal.Decimal
	tiers []tier
}

func (l ladder) points(f FeatureSet) (decimal.Decimal, int) {
	v := l.value(f)
	for _, t := range l.tiers {
		if t.matches(v) {
			return v, t.points
		}
	}
	return v, 0
}

// penalty subtracts a fixed amount when its condition holds.
type penalty struct {
	name      string
	applies   func(FeatureSet) bool
	deduction int
}

var scoreLadders = []ladder{
	{
		name:  "volume",
		value: func(f FeatureSet) decimal.Decimal { return f.TotalCredit },
		tiers: []tier{
			{threshold: decimal.NewFromInt(10000), points: 150},
			{threshold: decimal.NewFromInt(5000), points: 120},
			{threshold: decimal.NewFromInt(2000), points: 70},
		},
	},
	{
		name:  "stability",
		value: func(f FeatureSet) decimal.Decimal { return f.CashflowStability },
		tiers: []tier{
			{threshold: decimal.RequireFromString("1.5"), inclusive: true, points: 150},
			{threshold: decimal.RequireFromString("1.0"), inclusive: true, points: 120},
			{threshold: decimal.RequireFromString("0.8"), inclusive: true, points: 60},
		},
	},
	{
		name:  "ticket_size",
		value: func(f FeatureSet) decimal.Decimal { return f.AvgTicketSize },
		tiers: []tier{
			{threshold: decimal.NewFromInt(800), points: 150},
			{threshold: decimal.NewFromInt(400), points: 100},
			{threshold: decimal.NewFromInt(200), points: 60},
		},
	},
	{
		name:  "frequency",
		value: func(f FeatureSet) decimal.Decimal { return decimal.NewFromInt(int64(f.InflowCount)) },
		tiers: []tier{
			{threshold: decimal.NewFromInt(8), inclusive: true, points: 80},
			{threshold: decimal.NewFromInt(5), inclusive: true, points: 50},
			{threshold: decimal.NewFromInt(3), inclusive: true, points: 25},
		},
	},
}

var minimumCredit = decimal.NewFromInt(500)

var scorePenalties = []penalty{
	{
		name:      "outflow_exceeds_inflow",
		applies:   func(f FeatureSet) bool { return f.OutflowCount > f.InflowCount },
		deduction: 100,
	},
	{
		name:      "low_total_credit",
		applies:   func(f FeatureSet) bool { return f.TotalCredit.LessThan(minimumCredit) },
		deduction: 60,
	},
}

// ScoreFactor is the contribution of a single rule.
type ScoreFactor struct {
	Name   string `json:"name"`
	Value  string `json:"value,omitempty"`
	Points int    `json:"points"`
}

// ScoreBreakdown explains how a score was reached.
type ScoreBreakdown struct {
	Base    CreditScore   `json:"base"`
	Factors []ScoreFactor `json:"factors"`
	Raw     int           `json:"raw"`
	Score   CreditScore   `json:"score"`
}

// Evaluation is the outcome of scoring a feature set.
type Evaluation struct {
	Score     CreditScore    `json:"score"`
	Risk      RiskCategory   `json:"risk"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// ScoringEngine maps a FeatureSet to a credit score and risk category.
// It holds no mutable state and is safe for concurrent use.
type ScoringEngine struct {
	policy RiskPolicy
}

// NewScoringEngine creates a ScoringEngine classifying with the given policy.
func NewScoringEngine(policy RiskPolicy) *ScoringEngine {
	return &ScoringEngine{policy: policy}
}

// Policy returns the risk policy used for classification.
func (e *ScoringEngine) Policy() RiskPolicy {
	return e.policy
}

// Breakdown scores the feature set and records every rule's contribution.
func (e *ScoringEngine) Breakdown(f FeatureSet) ScoreBreakdown {
	raw := int(BaseCreditScore)
	factors := make([]ScoreFactor, 0, len(scoreLadders)+len(scorePenalties))

	for _, l := range scoreLadders {
		v, pts := l.points(f)
		raw += pts
		factors = append(factors, ScoreFactor{Name: l.name, Value: v.Round(displayPrecision).String(), Points: pts})
	}

	for _, p := range scorePenalties {
		pts := 0
		if p.applies(f) {
			pts = -p.deduction
		}
		raw += pts
		factors = append(factors, ScoreFactor{Name: p.name, Points: pts})
	}

	return ScoreBreakdown{
		Base:    BaseCreditScore,
		Factors: factors,
		Raw:     raw,
		Score:   ClampScore(raw),
	}
}

// Score returns the clamped credit score for the feature set.
func (e *ScoringEngine) Score(f FeatureSet) CreditScore {
	return e.Breakdown(f).Score
}

// Classify bands a score using only the policy's score thresholds.
func (e *ScoringEngine) Classify(score CreditScore) RiskCategory {
	return e.policy.Classify(score)
}

// Evaluate validates the feature set, then scores and classifies it.
func (e *ScoringEngine) Evaluate(f FeatureSet) (Evaluation, error) {
	if err := f.Validate(); err != nil {
		return Evaluation{}, err
	}

	breakdown := e.Breakdown(f)

	return Evaluation{
		Score:     breakdown.Score,
		Risk:      e.policy.ClassifyFeatures(breakdown.Score, f),
		Breakdown: breakdown,
	}, nil
}
