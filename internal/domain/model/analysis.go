package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// ApprovalStatus / RejectionReason / RiskLevel – immutable value objects
// ---------------------------------------------------------------------------

// ApprovalStatus is the terminal outcome of an analysis.
type ApprovalStatus struct {
	value string
}

var (
	ApprovalStatusApproved      = ApprovalStatus{value: "approved"}
	ApprovalStatusRejected      = ApprovalStatus{value: "rejected"}
	ApprovalStatusPendingReview = ApprovalStatus{value: "pending_review"}
)

var validApprovalStatuses = map[string]ApprovalStatus{
	"approved":       ApprovalStatusApproved,
	"rejected":       ApprovalStatusRejected,
	"pending_review": ApprovalStatusPendingReview,
}

// NewApprovalStatus creates an ApprovalStatus from a raw string.
func NewApprovalStatus(s string) (ApprovalStatus, error) {
	v, ok := validApprovalStatuses[s]
	if !ok {
		return ApprovalStatus{}, fmt.Errorf("invalid approval status: %q", s)
	}
	return v, nil
}

func (s ApprovalStatus) String() string { return s.value }
func (s ApprovalStatus) IsZero() bool   { return s.value == "" }

// RejectionReason is the enumerated rejection taxonomy.
type RejectionReason struct {
	value string
}

var (
	RejectionReasonPersonaFilter     = RejectionReason{value: "persona_filter"}
	RejectionReasonHighRisk          = RejectionReason{value: "high_risk"}
	RejectionReasonInsufficientScore = RejectionReason{value: "insufficient_credit_score"}
	RejectionReasonRegistryRestraint = RejectionReason{value: "registry_restriction"}
	RejectionReasonValidation        = RejectionReason{value: "invalid_request"}
	RejectionReasonModelDecision     = RejectionReason{value: "model_decision"}
)

var validRejectionReasons = map[string]RejectionReason{
	"persona_filter":            RejectionReasonPersonaFilter,
	"high_risk":                 RejectionReasonHighRisk,
	"insufficient_credit_score": RejectionReasonInsufficientScore,
	"registry_restriction":      RejectionReasonRegistryRestraint,
	"invalid_request":           RejectionReasonValidation,
	"model_decision":            RejectionReasonModelDecision,
}

// NewRejectionReason creates a RejectionReason from a raw string. The empty
// string maps to the zero value so stored non-rejections round-trip.
func NewRejectionReason(s string) (RejectionReason, error) {
	if s == "" {
		return RejectionReason{}, nil
	}
	v, ok := validRejectionReasons[s]
	if !ok {
		return RejectionReason{}, fmt.Errorf("invalid rejection reason: %q", s)
	}
	return v, nil
}

func (r RejectionReason) String() string { return r.value }
func (r RejectionReason) IsZero() bool   { return r.value == "" }

// RiskLevel is the ordered discrete risk classification.
type RiskLevel struct {
	value string
	order int
}

var (
	RiskLevelLow    = RiskLevel{value: "low", order: 0}
	RiskLevelMedium = RiskLevel{value: "medium", order: 1}
	RiskLevelHigh   = RiskLevel{value: "high", order: 2}
)

// NewRiskLevel creates a RiskLevel from a raw string.
func NewRiskLevel(s string) (RiskLevel, error) {
	switch s {
	case "low":
		return RiskLevelLow, nil
	case "medium":
		return RiskLevelMedium, nil
	case "high":
		return RiskLevelHigh, nil
	default:
		return RiskLevel{}, fmt.Errorf("invalid risk level: %q", s)
	}
}

func (l RiskLevel) String() string { return l.value }
func (l RiskLevel) IsZero() bool   { return l.value == "" && l.order == 0 }

// AtLeast reports whether l is the same or a more severe level than other.
func (l RiskLevel) AtLeast(other RiskLevel) bool { return l.order >= other.order }

// ---------------------------------------------------------------------------
// Stage result records. Each stage returns a new immutable record; the
// orchestrator owns the request-scoped instances.
// ---------------------------------------------------------------------------

// PersonaFilterResult is the stage-1 output.
type PersonaFilterResult struct {
	Matched      bool
	Tier         string // empty when unmatched
	Confidence   float64
	Reason       string
	DecisionPath []string
}

// TierLimits are the static limit parameters a persona tier exposes to the
// limit solver.
type TierLimits struct {
	MaxLimit         float64
	MinLimit         float64
	IncomeMultiplier float64
}

// CreditLimit is the stage-2 output.
type CreditLimit struct {
	ApprovedAmount      float64
	MaxInstallmentValue float64
	MaxInstallments     int
	InterestRate        float64 // monthly period rate
	Factors             map[string]float64
}

// RiskAssessment is the stage-3 output. RiskScore lives on [0,1].
type RiskAssessment struct {
	Level            RiskLevel
	Score            float64
	Factors          map[string]float64
	MainRiskFactors  []string
	Confidence       float64
	FuzzyMemberships map[string]float64
}

// ShouldReject reports whether the risk alone justifies rejection.
func (r RiskAssessment) ShouldReject(threshold float64) bool {
	return r.Score >= threshold
}

// ApprovalDecision is the stage-4 output.
type ApprovalDecision struct {
	Status          ApprovalStatus
	Confidence      float64
	Reasons         []string
	Probabilities   ClassProbabilities
	RejectionReason RejectionReason // zero unless Status is rejected
}

// ClassProbabilities are the network's softmax outputs; they sum to 1.
type ClassProbabilities struct {
	Approved float64 `json:"approved"`
	Pending  float64 `json:"pending"`
	Rejected float64 `json:"rejected"`
}

// ---------------------------------------------------------------------------
// CreditAnalysisResult – terminal record returned to the caller
// ---------------------------------------------------------------------------

// CreditAnalysisResult is the immutable terminal record of one analysis.
// On a stage-1 short circuit CreditLimit and RiskAssessment are nil.
type CreditAnalysisResult struct {
	ID              string
	RequestID       string
	CustomerID      string
	Status          ApprovalStatus
	Confidence      float64
	RejectionReason RejectionReason
	Reasons         []string
	Probabilities   ClassProbabilities
	PersonaFilter   PersonaFilterResult
	CreditLimit     *CreditLimit
	RiskAssessment  *RiskAssessment

	// Populated only when Status is approved.
	ApprovedAmount       float64
	ApprovedInstallments int
	InterestRate         float64
	MonthlyPayment       float64

	AnalyzedAt time.Time
}

// NewAnalysisID returns a fresh identifier for a result record.
func NewAnalysisID() string { return uuid.New().String() }

// IsApproved reports whether the analysis ended in approval.
func (r CreditAnalysisResult) IsApproved() bool {
	return r.Status == ApprovalStatusApproved
}
