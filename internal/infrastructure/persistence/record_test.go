package persistence

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credora/credit-analysis/internal/domain/model"
)

func fullResult() model.CreditAnalysisResult {
	return model.CreditAnalysisResult{
		ID:         "a1",
		RequestID:  "r1",
		CustomerID: "CUST-001",
		Status:     model.ApprovalStatusApproved,
		Confidence: 0.82,
		Reasons:    []string{"excellent credit score", "low risk assessment"},
		Probabilities: model.ClassProbabilities{
			Approved: 0.82, Pending: 0.15, Rejected: 0.03,
		},
		PersonaFilter: model.PersonaFilterResult{
			Matched:      true,
			Tier:         "premium",
			Confidence:   0.95,
			Reason:       "customer classified as premium",
			DecisionPath: []string{"premium: income >= 10000: true", "premium"},
		},
		CreditLimit: &model.CreditLimit{
			ApprovedAmount:      50000,
			MaxInstallmentValue: 1800,
			MaxInstallments:     48,
			InterestRate:        0.025,
			Factors:             map[string]float64{"search_cap": 50000},
		},
		RiskAssessment: &model.RiskAssessment{
			Level:            model.RiskLevelLow,
			Score:            0.16,
			Factors:          map[string]float64{"credit_score": 820},
			MainRiskFactors:  []string{"low"},
			Confidence:       1.0,
			FuzzyMemberships: map[string]float64{"low": 1, "med": 0, "high": 0},
		},
		ApprovedAmount:       30000,
		ApprovedInstallments: 48,
		InterestRate:         0.025,
		MonthlyPayment:       1080.2,
		AnalyzedAt:           time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestRecordRoundTrip(t *testing.T) {
	t.Run("full record survives the storage shape", func(t *testing.T) {
		want := fullResult()

		data, err := json.Marshal(FromModel(want))
		require.NoError(t, err)

		var rec AnalysisRecord
		require.NoError(t, json.Unmarshal(data, &rec))

		got, err := rec.ToModel()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("short-circuit record keeps nil stage blocks", func(t *testing.T) {
		want := fullResult()
		want.Status = model.ApprovalStatusRejected
		want.RejectionReason = model.RejectionReasonPersonaFilter
		want.CreditLimit = nil
		want.RiskAssessment = nil
		want.ApprovedAmount = 0
		want.ApprovedInstallments = 0
		want.InterestRate = 0
		want.MonthlyPayment = 0

		data, err := json.Marshal(FromModel(want))
		require.NoError(t, err)

		var rec AnalysisRecord
		require.NoError(t, json.Unmarshal(data, &rec))

		got, err := rec.ToModel()
		require.NoError(t, err)
		assert.Nil(t, got.CreditLimit)
		assert.Nil(t, got.RiskAssessment)
		assert.Equal(t, want, got)
	})
}

func TestRecordRejectsInvalidEnums(t *testing.T) {
	t.Run("unknown status", func(t *testing.T) {
		rec := FromModel(fullResult())
		rec.Status = "escalated"
		_, err := rec.ToModel()
		assert.Error(t, err)
	})

	t.Run("unknown rejection reason", func(t *testing.T) {
		rec := FromModel(fullResult())
		rec.RejectionReason = "vibes"
		_, err := rec.ToModel()
		assert.Error(t, err)
	})

	t.Run("unknown risk level", func(t *testing.T) {
		rec := FromModel(fullResult())
		rec.RiskAssessment.Level = "extreme"
		_, err := rec.ToModel()
		assert.Error(t, err)
	})

	t.Run("empty rejection reason is the zero value", func(t *testing.T) {
		rec := FromModel(fullResult())
		rec.RejectionReason = ""
		got, err := rec.ToModel()
		require.NoError(t, err)
		assert.True(t, got.RejectionReason.IsZero())
	})
}
