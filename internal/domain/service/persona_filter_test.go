package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credora/credit-analysis/internal/domain/model"
)

func testProfile(t *testing.T, income float64, score *int, employment string) model.CustomerProfile {
	t.Helper()
	status, err := model.NewEmploymentStatus(employment)
	require.NoError(t, err)

	profile, err := model.NewCustomerProfile(model.CustomerProfile{
		CustomerID:        "CUST-100",
		Name:              "Test Customer",
		Age:               35,
		Gender:            model.GenderMale,
		MaritalStatus:     model.MaritalStatusSingle,
		MonthlyIncome:     income,
		CreditScore:       score,
		DebtToIncomeRatio: 0.2,
		EmploymentStatus:  status,
		MonthsAtJob:       24,
		HasBankAccount:    true,
		CreditInquiries:   1,
		ExistingLoans:     1,
	})
	require.NoError(t, err)
	return profile
}

func scorePtr(s int) *int { return &s }

func TestPersonaFilterIdentify(t *testing.T) {
	filter := NewPersonaFilter()

	tests := []struct {
		name       string
		income     float64
		score      *int
		employment string
		wantTier   string
	}{
		{"premium profile", 20000, scorePtr(800), "employed", "premium"},
		{"premium self-employed", 12000, scorePtr(760), "self_employed", "premium"},
		{"premium income but standard score", 20000, scorePtr(700), "employed", "standard"},
		{"standard profile", 5000, scorePtr(680), "employed", "standard"},
		{"basic profile", 2000, scorePtr(600), "employed", "basic"},
		{"retired qualifies only for basic", 12000, scorePtr(800), "retired", "basic"},
		{"score just below basic lands nowhere", 5000, scorePtr(540), "employed", ""},
		{"income below basic lands nowhere", 1000, scorePtr(800), "employed", ""},
		{"unemployed lands nowhere", 20000, scorePtr(800), "unemployed", ""},
		{"no bureau history lands nowhere", 20000, nil, "employed", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := testProfile(t, tt.income, tt.score, tt.employment)
			result := filter.Identify(profile)

			if tt.wantTier == "" {
				assert.False(t, result.Matched)
				assert.Zero(t, result.Confidence)
				assert.NotEmpty(t, result.Reason)
				return
			}
			assert.True(t, result.Matched)
			assert.Equal(t, tt.wantTier, result.Tier)
			assert.Greater(t, result.Confidence, 0.0)
			assert.LessOrEqual(t, result.Confidence, 1.0)
		})
	}
}

func TestPersonaFilterDecisionPath(t *testing.T) {
	filter := NewPersonaFilter()

	t.Run("matched path ends in the tier", func(t *testing.T) {
		result := filter.Identify(testProfile(t, 20000, scorePtr(800), "employed"))
		require.NotEmpty(t, result.DecisionPath)
		assert.Equal(t, "premium", result.DecisionPath[len(result.DecisionPath)-1])
	})

	t.Run("fallthrough records the failed checks", func(t *testing.T) {
		result := filter.Identify(testProfile(t, 5000, scorePtr(680), "employed"))
		require.True(t, result.Matched)
		// The premium income check failed first, then standard matched.
		assert.Contains(t, result.DecisionPath[0], "premium")
		assert.Contains(t, result.DecisionPath[0], "false")
	})

	t.Run("unmatched profile still has a path", func(t *testing.T) {
		result := filter.Identify(testProfile(t, 1000, nil, "unemployed"))
		assert.False(t, result.Matched)
		assert.NotEmpty(t, result.DecisionPath)
	})
}

func TestPersonaFilterConfidence(t *testing.T) {
	filter := NewPersonaFilter()

	t.Run("strong premium profile approaches the cap", func(t *testing.T) {
		result := filter.Identify(testProfile(t, 20000, scorePtr(800), "employed"))
		require.True(t, result.Matched)
		// 0.4 income + 800/850*0.4 score + 0.2 employment.
		assert.InDelta(t, 0.9765, result.Confidence, 0.001)
	})

	t.Run("modest basic profile scores lower", func(t *testing.T) {
		premium := filter.Identify(testProfile(t, 20000, scorePtr(800), "employed"))
		basic := filter.Identify(testProfile(t, 1600, scorePtr(560), "employed"))
		require.True(t, basic.Matched)
		assert.Less(t, basic.Confidence, premium.Confidence)
	})
}

func TestPersonaFilterTierLimits(t *testing.T) {
	filter := NewPersonaFilter()

	premium := filter.TierLimits("premium")
	assert.Equal(t, 100000.0, premium.MaxLimit)
	assert.Equal(t, 5.0, premium.IncomeMultiplier)

	standard := filter.TierLimits("standard")
	assert.Equal(t, 50000.0, standard.MaxLimit)

	t.Run("unknown tier falls back to basic", func(t *testing.T) {
		unknown := filter.TierLimits("platinum")
		assert.Equal(t, filter.TierLimits("basic"), unknown)
	})
}
