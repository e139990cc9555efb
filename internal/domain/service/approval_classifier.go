package service

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/credora/credit-analysis/internal/domain/model"
)

// Overlay thresholds applied after the network's prediction. Policy always
// outranks the model.
const (
	overlayRejectRisk    = 0.85
	overlayMinScore      = 400
	overlayMinConfidence = 0.6
)

// ---------------------------------------------------------------------------
// Feature normalisation. The contract is shared by live inference and the
// synthetic dataset generator; every feature lands in [0,1].
// ---------------------------------------------------------------------------

func normAge(age float64) float64 {
	return clamp01((age - 18) / (100 - 18))
}

// normScore maps the bureau range onto [0,1] against a fixed 1000 ceiling.
// A missing score normalises to 0.
func normScore(score float64) float64 {
	return clamp01(score / 1000)
}

func normIncome(income float64) float64 {
	return math.Min(1, math.Log1p(income)/math.Log1p(50000))
}

func normInquiries(inquiries float64) float64 {
	return math.Min(1, inquiries/10)
}

func normLoans(loans float64) float64 {
	return math.Min(1, loans/5)
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// featureVector assembles the network's input from the profile and the
// upstream stage outputs. Order is part of the trained contract.
func featureVector(profile model.CustomerProfile, approvedLimit, requestedAmount float64, risk model.RiskAssessment) []float64 {
	var score float64
	if profile.CreditScore != nil {
		score = float64(*profile.CreditScore)
	}
	limitRatio := 1.0
	if approvedLimit > 0 {
		limitRatio = clamp01(requestedAmount / approvedLimit)
	}
	return []float64{
		normAge(float64(profile.Age)),
		normScore(score),
		normIncome(profile.MonthlyIncome),
		profile.DebtToIncomeRatio,
		boolFeature(profile.EmploymentStatus.IsActive()),
		boolFeature(profile.HasBankAccount),
		normInquiries(float64(profile.CreditInquiries)),
		normLoans(float64(profile.ExistingLoans)),
		risk.Score,
		limitRatio,
	}
}

// ---------------------------------------------------------------------------
// ApprovalClassifier – stage 4
// ---------------------------------------------------------------------------

// ApprovalClassifier turns the network's class probabilities into a final
// decision, then applies the non-negotiable policy overlay on top.
type ApprovalClassifier struct {
	network *ApprovalNetwork
	logger  *slog.Logger
}

func NewApprovalClassifier(network *ApprovalNetwork, logger *slog.Logger) *ApprovalClassifier {
	return &ApprovalClassifier{network: network, logger: logger}
}

// DecideApproval classifies the application. The decision's Reasons list is
// never empty and confidence is the probability of the chosen class before
// any overlay fires.
func (c *ApprovalClassifier) DecideApproval(
	profile model.CustomerProfile,
	approvedLimit float64,
	requestedAmount float64,
	risk model.RiskAssessment,
) (model.ApprovalDecision, error) {
	features := featureVector(profile, approvedLimit, requestedAmount, risk)
	probs, err := c.network.Predict(features)
	if err != nil {
		return model.ApprovalDecision{}, fmt.Errorf("predict approval: %w", err)
	}

	best := argmax(probs)
	confidence := probs[best]

	var status model.ApprovalStatus
	var reasons []string
	switch best {
	case classApproved:
		status = model.ApprovalStatusApproved
		reasons = approvalReasons(profile, risk, confidence)
	case classPending:
		status = model.ApprovalStatusPendingReview
		reasons = reviewReasons(profile, risk)
	default:
		status = model.ApprovalStatusRejected
		reasons = rejectionReasons(profile, risk)
	}

	decision := model.ApprovalDecision{
		Status:     status,
		Confidence: confidence,
		Reasons:    reasons,
		Probabilities: model.ClassProbabilities{
			Approved: probs[classApproved],
			Pending:  probs[classPending],
			Rejected: probs[classRejected],
		},
	}
	decision = c.applyPolicyOverlay(decision, profile, risk)

	if decision.Status == model.ApprovalStatusRejected && decision.RejectionReason.IsZero() {
		decision.RejectionReason = model.RejectionReasonModelDecision
	}

	c.logger.Debug("approval decided",
		"status", decision.Status.String(),
		"confidence", decision.Confidence,
		"p_approved", probs[classApproved],
		"p_pending", probs[classPending],
		"p_rejected", probs[classRejected],
	)
	return decision, nil
}

// applyPolicyOverlay enforces the hard rules, in priority order, on top of
// whatever the network predicted. The first rule that fires wins.
func (c *ApprovalClassifier) applyPolicyOverlay(
	decision model.ApprovalDecision,
	profile model.CustomerProfile,
	risk model.RiskAssessment,
) model.ApprovalDecision {
	if profile.HasRegistryRestraint {
		decision.Status = model.ApprovalStatusRejected
		decision.Reasons = []string{"registry restriction detected"}
		decision.RejectionReason = model.RejectionReasonRegistryRestraint
		return decision
	}
	if risk.Score > overlayRejectRisk {
		decision.Status = model.ApprovalStatusRejected
		decision.Reasons = append([]string{"risk score too high"}, decision.Reasons...)
		decision.RejectionReason = model.RejectionReasonHighRisk
		return decision
	}
	if profile.CreditScore == nil || *profile.CreditScore < overlayMinScore {
		decision.Status = model.ApprovalStatusRejected
		decision.Reasons = append([]string{"credit score below minimum threshold"}, decision.Reasons...)
		decision.RejectionReason = model.RejectionReasonInsufficientScore
		return decision
	}
	if decision.Status == model.ApprovalStatusApproved && decision.Confidence < overlayMinConfidence {
		decision.Status = model.ApprovalStatusPendingReview
		decision.Reasons = append([]string{"low confidence score"}, decision.Reasons...)
	}
	return decision
}

func approvalReasons(profile model.CustomerProfile, risk model.RiskAssessment, confidence float64) []string {
	var reasons []string
	if profile.CreditScore != nil && *profile.CreditScore > 700 {
		reasons = append(reasons, "excellent credit score")
	}
	if risk.Score < 0.3 {
		reasons = append(reasons, "low risk assessment")
	}
	if profile.DebtToIncomeRatio < 0.3 {
		reasons = append(reasons, "healthy debt-to-income ratio")
	}
	if profile.MonthsAtJob > 24 {
		reasons = append(reasons, "stable employment history")
	}
	if confidence > 0.8 {
		reasons = append(reasons, "high confidence prediction")
	}
	if len(reasons) == 0 {
		reasons = []string{"approved based on overall profile"}
	}
	return reasons
}

func reviewReasons(profile model.CustomerProfile, risk model.RiskAssessment) []string {
	var reasons []string
	if risk.Score >= 0.4 && risk.Score <= 0.6 {
		reasons = append(reasons, "moderate risk level requires review")
	}
	if profile.CreditInquiries > 5 {
		reasons = append(reasons, "high number of recent credit inquiries")
	}
	if profile.MonthsAtJob < 12 {
		reasons = append(reasons, "short employment history")
	}
	if profile.DebtToIncomeRatio >= 0.3 && profile.DebtToIncomeRatio <= 0.4 {
		reasons = append(reasons, "borderline debt-to-income ratio")
	}
	if len(reasons) == 0 {
		reasons = []string{"manual review recommended"}
	}
	return reasons
}

func rejectionReasons(profile model.CustomerProfile, risk model.RiskAssessment) []string {
	var reasons []string
	if risk.Score > 0.7 {
		reasons = append(reasons, "high default risk")
	}
	if profile.CreditScore == nil || *profile.CreditScore < 500 {
		reasons = append(reasons, "insufficient credit score")
	}
	if profile.DebtToIncomeRatio > 0.5 {
		reasons = append(reasons, "excessive debt-to-income ratio")
	}
	if !profile.EmploymentStatus.IsActive() {
		reasons = append(reasons, "employment status does not meet requirements")
	}
	if profile.CreditInquiries > 8 {
		reasons = append(reasons, "too many recent credit inquiries")
	}
	if len(reasons) == 0 {
		reasons = []string{"does not meet approval criteria"}
	}
	return reasons
}
