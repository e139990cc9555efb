package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNow() time.Time {
	return time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
}

func TestApprovalStatus(t *testing.T) {
	s, err := NewApprovalStatus("pending_review")
	require.NoError(t, err)
	assert.Equal(t, ApprovalStatusPendingReview, s)

	_, err = NewApprovalStatus("maybe")
	assert.Error(t, err)

	assert.True(t, ApprovalStatus{}.IsZero())
	assert.False(t, ApprovalStatusApproved.IsZero())
}

func TestRejectionReason(t *testing.T) {
	r, err := NewRejectionReason("high_risk")
	require.NoError(t, err)
	assert.Equal(t, RejectionReasonHighRisk, r)

	r, err = NewRejectionReason("")
	require.NoError(t, err)
	assert.True(t, r.IsZero())

	_, err = NewRejectionReason("bad_vibes")
	assert.Error(t, err)
}

func TestRiskLevelOrdering(t *testing.T) {
	assert.True(t, RiskLevelHigh.AtLeast(RiskLevelMedium))
	assert.True(t, RiskLevelMedium.AtLeast(RiskLevelMedium))
	assert.False(t, RiskLevelLow.AtLeast(RiskLevelMedium))
}

func TestRiskAssessmentShouldReject(t *testing.T) {
	r := RiskAssessment{Score: 0.9}
	assert.True(t, r.ShouldReject(0.85))
	assert.False(t, RiskAssessment{Score: 0.5}.ShouldReject(0.85))
}

func TestCreditRequestValidation(t *testing.T) {
	profile, err := NewCustomerProfile(validProfile())
	require.NoError(t, err)

	t.Run("valid request gets an ID", func(t *testing.T) {
		req, err := NewCreditRequest(profile, 10000, ProductTypePersonalLoan, 24, "renovation", testNow())
		require.NoError(t, err)
		assert.NotEmpty(t, req.ID)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewCreditRequest(profile, 0, ProductTypePersonalLoan, 24, "", testNow())
		assert.Error(t, err)
	})

	t.Run("rejects zero product", func(t *testing.T) {
		_, err := NewCreditRequest(profile, 10000, ProductType{}, 24, "", testNow())
		assert.Error(t, err)
	})

	t.Run("rejects non-positive installments", func(t *testing.T) {
		_, err := NewCreditRequest(profile, 10000, ProductTypeAutoLoan, 0, "", testNow())
		assert.Error(t, err)
	})
}

func TestProductType(t *testing.T) {
	p, err := NewProductType("home_loan")
	require.NoError(t, err)
	assert.Equal(t, ProductTypeHomeLoan, p)

	_, err = NewProductType("payday_loan")
	assert.Error(t, err)
}
