package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/credora/credit-analysis/internal/domain/model"
)

// DomainEvent is the contract every published event satisfies.
type DomainEvent interface {
	EventID() string
	EventType() string
	AggregateID() string
	OccurredAt() time.Time
}

// BaseEvent carries the envelope fields shared by every event. Fields are
// exported so the whole event struct marshals to JSON for the broker.
type BaseEvent struct {
	ID        string    `json:"event_id"`
	Type      string    `json:"event_type"`
	Aggregate string    `json:"aggregate_id"`
	Timestamp time.Time `json:"occurred_at"`
}

func newBaseEvent(eventType, aggregateID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Aggregate: aggregateID,
		Timestamp: time.Now().UTC(),
	}
}

func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) AggregateID() string   { return e.Aggregate }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// ---------------------------------------------------------------------------
// Credit analysis events
// ---------------------------------------------------------------------------

// CreditAnalysisCompleted is raised once per finished analysis, whatever
// the outcome and however early the pipeline short-circuited. Stage fields
// a run never reached stay at their zero values.
type CreditAnalysisCompleted struct {
	BaseEvent
	CustomerID     string  `json:"customer_id"`
	Status         string  `json:"status"`
	RiskLevel      string  `json:"risk_level,omitempty"`
	RiskScore      float64 `json:"risk_score,omitempty"`
	ApprovedAmount float64 `json:"approved_amount,omitempty"`
	Installments   int     `json:"installments,omitempty"`
	Confidence     float64 `json:"confidence"`
}

func NewCreditAnalysisCompleted(result model.CreditAnalysisResult) CreditAnalysisCompleted {
	e := CreditAnalysisCompleted{
		BaseEvent:      newBaseEvent("credit.analysis.completed", result.ID),
		CustomerID:     result.CustomerID,
		Status:         result.Status.String(),
		ApprovedAmount: result.ApprovedAmount,
		Installments:   result.ApprovedInstallments,
		Confidence:     result.Confidence,
	}
	if result.RiskAssessment != nil {
		e.RiskLevel = result.RiskAssessment.Level.String()
		e.RiskScore = result.RiskAssessment.Score
	}
	return e
}

// CreditAnalysisRejected is raised whenever an analysis terminates in a
// rejection, including stage-1 short circuits.
type CreditAnalysisRejected struct {
	BaseEvent
	CustomerID      string   `json:"customer_id"`
	RejectionReason string   `json:"rejection_reason"`
	Reasons         []string `json:"reasons"`
}

func NewCreditAnalysisRejected(result model.CreditAnalysisResult) CreditAnalysisRejected {
	return CreditAnalysisRejected{
		BaseEvent:       newBaseEvent("credit.analysis.rejected", result.ID),
		CustomerID:      result.CustomerID,
		RejectionReason: result.RejectionReason.String(),
		Reasons:         result.Reasons,
	}
}

// ModelTrained is raised after a successful approval-model training run.
type ModelTrained struct {
	BaseEvent
	Samples   int     `json:"samples"`
	Epochs    int     `json:"epochs"`
	FinalLoss float64 `json:"final_loss"`
}

func NewModelTrained(modelID string, samples, epochs int, finalLoss float64) ModelTrained {
	return ModelTrained{
		BaseEvent: newBaseEvent("credit.model.trained", modelID),
		Samples:   samples,
		Epochs:    epochs,
		FinalLoss: finalLoss,
	}
}
