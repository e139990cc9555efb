package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() CustomerProfile {
	score := 720
	return CustomerProfile{
		CustomerID:        "CUST-001",
		Name:              "Ana Souza",
		Age:               34,
		Gender:            GenderFemale,
		MaritalStatus:     MaritalStatusMarried,
		MonthlyIncome:     6500,
		CreditScore:       &score,
		DebtToIncomeRatio: 0.25,
		EmploymentStatus:  EmploymentStatusEmployed,
		MonthsAtJob:       36,
		HasBankAccount:    true,
		CreditInquiries:   2,
		ExistingLoans:     1,
	}
}

func TestNewCustomerProfile(t *testing.T) {
	t.Run("accepts a valid profile", func(t *testing.T) {
		p, err := NewCustomerProfile(validProfile())
		require.NoError(t, err)
		assert.Equal(t, "CUST-001", p.CustomerID)
	})

	t.Run("accepts a profile without bureau history", func(t *testing.T) {
		in := validProfile()
		in.CreditScore = nil
		p, err := NewCustomerProfile(in)
		require.NoError(t, err)
		assert.Nil(t, p.CreditScore)
	})

	t.Run("rejects invalid fields", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*CustomerProfile)
		}{
			{"missing customer ID", func(p *CustomerProfile) { p.CustomerID = "" }},
			{"underage", func(p *CustomerProfile) { p.Age = 17 }},
			{"age above maximum", func(p *CustomerProfile) { p.Age = 101 }},
			{"zero income", func(p *CustomerProfile) { p.MonthlyIncome = 0 }},
			{"score below range", func(p *CustomerProfile) { s := 250; p.CreditScore = &s }},
			{"score above range", func(p *CustomerProfile) { s := 950; p.CreditScore = &s }},
			{"negative debt ratio", func(p *CustomerProfile) { p.DebtToIncomeRatio = -0.1 }},
			{"debt ratio above one", func(p *CustomerProfile) { p.DebtToIncomeRatio = 1.2 }},
			{"negative inquiries", func(p *CustomerProfile) { p.CreditInquiries = -1 }},
			{"negative loans", func(p *CustomerProfile) { p.ExistingLoans = -1 }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				in := validProfile()
				tt.mutate(&in)
				_, err := NewCustomerProfile(in)
				assert.Error(t, err)
			})
		}
	})
}

func TestEmploymentStatus(t *testing.T) {
	t.Run("active statuses", func(t *testing.T) {
		assert.True(t, EmploymentStatusEmployed.IsActive())
		assert.True(t, EmploymentStatusSelfEmployed.IsActive())
		assert.False(t, EmploymentStatusRetired.IsActive())
		assert.False(t, EmploymentStatusUnemployed.IsActive())
	})

	t.Run("rejects unknown value", func(t *testing.T) {
		_, err := NewEmploymentStatus("freelancer")
		assert.Error(t, err)
	})

	t.Run("round trips valid values", func(t *testing.T) {
		s, err := NewEmploymentStatus("self_employed")
		require.NoError(t, err)
		assert.Equal(t, "self_employed", s.String())
	})
}

func TestGenderAndMaritalStatus(t *testing.T) {
	_, err := NewGender("x")
	assert.Error(t, err)

	g, err := NewGender("F")
	require.NoError(t, err)
	assert.Equal(t, "F", g.String())

	_, err = NewMaritalStatus("complicated")
	assert.Error(t, err)
}
