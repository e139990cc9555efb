// Package persistence holds the storage representation shared by the
// PostgreSQL repository and the Redis cache, so both round-trip the same
// shape.
package persistence

import (
	"fmt"
	"time"

	"github.com/credora/credit-analysis/internal/domain/model"
)

// AnalysisRecord is the flat, JSON-tagged snapshot of a terminal analysis.
type AnalysisRecord struct {
	ID              string              `json:"id"`
	RequestID       string              `json:"request_id"`
	CustomerID      string              `json:"customer_id"`
	Status          string              `json:"status"`
	Confidence      float64             `json:"confidence"`
	RejectionReason string              `json:"rejection_reason,omitempty"`
	Reasons         []string            `json:"reasons"`
	Probabilities   ProbabilitiesRecord `json:"probabilities"`
	PersonaFilter   PersonaRecord       `json:"persona_filter"`
	CreditLimit     *LimitRecord        `json:"credit_limit,omitempty"`
	RiskAssessment  *RiskRecord         `json:"risk_assessment,omitempty"`

	ApprovedAmount       float64 `json:"approved_amount,omitempty"`
	ApprovedInstallments int     `json:"approved_installments,omitempty"`
	InterestRate         float64 `json:"interest_rate,omitempty"`
	MonthlyPayment       float64 `json:"monthly_payment,omitempty"`

	AnalyzedAt time.Time `json:"analyzed_at"`
}

type ProbabilitiesRecord struct {
	Approved float64 `json:"approved"`
	Pending  float64 `json:"pending"`
	Rejected float64 `json:"rejected"`
}

type PersonaRecord struct {
	Matched      bool     `json:"matched"`
	Tier         string   `json:"tier,omitempty"`
	Confidence   float64  `json:"confidence"`
	Reason       string   `json:"reason"`
	DecisionPath []string `json:"decision_path"`
}

type LimitRecord struct {
	ApprovedAmount      float64            `json:"approved_amount"`
	MaxInstallmentValue float64            `json:"max_installment_value"`
	MaxInstallments     int                `json:"max_installments"`
	InterestRate        float64            `json:"interest_rate"`
	Factors             map[string]float64 `json:"factors"`
}

type RiskRecord struct {
	Level            string             `json:"level"`
	Score            float64            `json:"score"`
	Factors          map[string]float64 `json:"factors"`
	MainRiskFactors  []string           `json:"main_risk_factors"`
	Confidence       float64            `json:"confidence"`
	FuzzyMemberships map[string]float64 `json:"fuzzy_memberships"`
}

// FromModel flattens the domain record for storage.
func FromModel(result model.CreditAnalysisResult) AnalysisRecord {
	rec := AnalysisRecord{
		ID:              result.ID,
		RequestID:       result.RequestID,
		CustomerID:      result.CustomerID,
		Status:          result.Status.String(),
		Confidence:      result.Confidence,
		RejectionReason: result.RejectionReason.String(),
		Reasons:         result.Reasons,
		Probabilities: ProbabilitiesRecord{
			Approved: result.Probabilities.Approved,
			Pending:  result.Probabilities.Pending,
			Rejected: result.Probabilities.Rejected,
		},
		PersonaFilter: PersonaRecord{
			Matched:      result.PersonaFilter.Matched,
			Tier:         result.PersonaFilter.Tier,
			Confidence:   result.PersonaFilter.Confidence,
			Reason:       result.PersonaFilter.Reason,
			DecisionPath: result.PersonaFilter.DecisionPath,
		},
		ApprovedAmount:       result.ApprovedAmount,
		ApprovedInstallments: result.ApprovedInstallments,
		InterestRate:         result.InterestRate,
		MonthlyPayment:       result.MonthlyPayment,
		AnalyzedAt:           result.AnalyzedAt,
	}
	if result.CreditLimit != nil {
		rec.CreditLimit = &LimitRecord{
			ApprovedAmount:      result.CreditLimit.ApprovedAmount,
			MaxInstallmentValue: result.CreditLimit.MaxInstallmentValue,
			MaxInstallments:     result.CreditLimit.MaxInstallments,
			InterestRate:        result.CreditLimit.InterestRate,
			Factors:             result.CreditLimit.Factors,
		}
	}
	if result.RiskAssessment != nil {
		rec.RiskAssessment = &RiskRecord{
			Level:            result.RiskAssessment.Level.String(),
			Score:            result.RiskAssessment.Score,
			Factors:          result.RiskAssessment.Factors,
			MainRiskFactors:  result.RiskAssessment.MainRiskFactors,
			Confidence:       result.RiskAssessment.Confidence,
			FuzzyMemberships: result.RiskAssessment.FuzzyMemberships,
		}
	}
	return rec
}

// ToModel rebuilds the domain record, re-validating the stored enums.
func (rec AnalysisRecord) ToModel() (model.CreditAnalysisResult, error) {
	status, err := model.NewApprovalStatus(rec.Status)
	if err != nil {
		return model.CreditAnalysisResult{}, fmt.Errorf("stored analysis %s: %w", rec.ID, err)
	}
	rejection, err := model.NewRejectionReason(rec.RejectionReason)
	if err != nil {
		return model.CreditAnalysisResult{}, fmt.Errorf("stored analysis %s: %w", rec.ID, err)
	}

	result := model.CreditAnalysisResult{
		ID:              rec.ID,
		RequestID:       rec.RequestID,
		CustomerID:      rec.CustomerID,
		Status:          status,
		Confidence:      rec.Confidence,
		RejectionReason: rejection,
		Reasons:         rec.Reasons,
		Probabilities: model.ClassProbabilities{
			Approved: rec.Probabilities.Approved,
			Pending:  rec.Probabilities.Pending,
			Rejected: rec.Probabilities.Rejected,
		},
		PersonaFilter: model.PersonaFilterResult{
			Matched:      rec.PersonaFilter.Matched,
			Tier:         rec.PersonaFilter.Tier,
			Confidence:   rec.PersonaFilter.Confidence,
			Reason:       rec.PersonaFilter.Reason,
			DecisionPath: rec.PersonaFilter.DecisionPath,
		},
		ApprovedAmount:       rec.ApprovedAmount,
		ApprovedInstallments: rec.ApprovedInstallments,
		InterestRate:         rec.InterestRate,
		MonthlyPayment:       rec.MonthlyPayment,
		AnalyzedAt:           rec.AnalyzedAt,
	}
	if rec.CreditLimit != nil {
		result.CreditLimit = &model.CreditLimit{
			ApprovedAmount:      rec.CreditLimit.ApprovedAmount,
			MaxInstallmentValue: rec.CreditLimit.MaxInstallmentValue,
			MaxInstallments:     rec.CreditLimit.MaxInstallments,
			InterestRate:        rec.CreditLimit.InterestRate,
			Factors:             rec.CreditLimit.Factors,
		}
	}
	if rec.RiskAssessment != nil {
		level, err := model.NewRiskLevel(rec.RiskAssessment.Level)
		if err != nil {
			return model.CreditAnalysisResult{}, fmt.Errorf("stored analysis %s: %w", rec.ID, err)
		}
		result.RiskAssessment = &model.RiskAssessment{
			Level:            level,
			Score:            rec.RiskAssessment.Score,
			Factors:          rec.RiskAssessment.Factors,
			MainRiskFactors:  rec.RiskAssessment.MainRiskFactors,
			Confidence:       rec.RiskAssessment.Confidence,
			FuzzyMemberships: rec.RiskAssessment.FuzzyMemberships,
		}
	}
	return result, nil
}
