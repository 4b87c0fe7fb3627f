package domain

import "time"

// Event types
const (
	EventTypeAssessmentCompleted = "assessment.completed"
)

// Aggregate types
const (
	AggregateTypeAssessment = "assessment"
)

// Event represents an event to be published
type Event struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
}

// NewAssessmentCompletedEvent builds the event announcing a fresh assessment.
// The payload never carries raw transactions.
func NewAssessmentCompletedEvent(id string, a *Assessment) *Event {
	return &Event{
		ID:            id,
		AggregateID:   a.ID,
		AggregateType: AggregateTypeAssessment,
		EventType:     EventTypeAssessmentCompleted,
		Payload: map[string]any{
			"assessment_id": a.ID,
			"fingerprint":   a.Fingerprint,
			"policy":        a.Policy,
			"score":         int(a.Score),
			"risk":          string(a.Risk),
			"loan_amount":   a.Loan.Amount,
			"eligibility":   string(a.Loan.Eligibility),
		},
		CreatedAt: a.CreatedAt,
	}
}
