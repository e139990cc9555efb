package model

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Customer enumerations – immutable value objects
// ---------------------------------------------------------------------------

// Gender of the customer.
type Gender struct {
	value string
}

var (
	GenderMale   = Gender{value: "M"}
	GenderFemale = Gender{value: "F"}
	GenderOther  = Gender{value: "O"}
)

var validGenders = map[string]Gender{
	"M": GenderMale,
	"F": GenderFemale,
	"O": GenderOther,
}

// NewGender creates a Gender from a raw string.
func NewGender(s string) (Gender, error) {
	v, ok := validGenders[s]
	if !ok {
		return Gender{}, fmt.Errorf("invalid gender: %q", s)
	}
	return v, nil
}

func (g Gender) String() string { return g.value }
func (g Gender) IsZero() bool   { return g.value == "" }

// MaritalStatus of the customer.
type MaritalStatus struct {
	value string
}

var (
	MaritalStatusSingle   = MaritalStatus{value: "single"}
	MaritalStatusMarried  = MaritalStatus{value: "married"}
	MaritalStatusDivorced = MaritalStatus{value: "divorced"}
	MaritalStatusWidowed  = MaritalStatus{value: "widowed"}
)

var validMaritalStatuses = map[string]MaritalStatus{
	"single":   MaritalStatusSingle,
	"married":  MaritalStatusMarried,
	"divorced": MaritalStatusDivorced,
	"widowed":  MaritalStatusWidowed,
}

// NewMaritalStatus creates a MaritalStatus from a raw string.
func NewMaritalStatus(s string) (MaritalStatus, error) {
	v, ok := validMaritalStatuses[s]
	if !ok {
		return MaritalStatus{}, fmt.Errorf("invalid marital status: %q", s)
	}
	return v, nil
}

func (m MaritalStatus) String() string { return m.value }
func (m MaritalStatus) IsZero() bool   { return m.value == "" }

// EmploymentStatus of the customer.
type EmploymentStatus struct {
	value string
}

var (
	EmploymentStatusEmployed     = EmploymentStatus{value: "employed"}
	EmploymentStatusSelfEmployed = EmploymentStatus{value: "self_employed"}
	EmploymentStatusRetired      = EmploymentStatus{value: "retired"}
	EmploymentStatusUnemployed   = EmploymentStatus{value: "unemployed"}
)

var validEmploymentStatuses = map[string]EmploymentStatus{
	"employed":      EmploymentStatusEmployed,
	"self_employed": EmploymentStatusSelfEmployed,
	"retired":       EmploymentStatusRetired,
	"unemployed":    EmploymentStatusUnemployed,
}

// NewEmploymentStatus creates an EmploymentStatus from a raw string.
func NewEmploymentStatus(s string) (EmploymentStatus, error) {
	v, ok := validEmploymentStatuses[s]
	if !ok {
		return EmploymentStatus{}, fmt.Errorf("invalid employment status: %q", s)
	}
	return v, nil
}

func (e EmploymentStatus) String() string { return e.value }
func (e EmploymentStatus) IsZero() bool   { return e.value == "" }

// IsActive reports whether the customer currently earns employment income.
func (e EmploymentStatus) IsActive() bool {
	return e == EmploymentStatusEmployed || e == EmploymentStatusSelfEmployed
}

// ---------------------------------------------------------------------------
// CustomerProfile
// ---------------------------------------------------------------------------

// Credit score bounds accepted on a profile.
const (
	MinCreditScore = 300
	MaxCreditScore = 900
)

// CustomerProfile is an immutable snapshot of a borrower at analysis time.
// CreditScore is a pointer because some applicants have no bureau history;
// every consumer must treat a nil score as "fails any score threshold".
type CustomerProfile struct {
	CustomerID           string
	Name                 string
	Age                  int
	Gender               Gender
	MaritalStatus        MaritalStatus
	MonthlyIncome        float64
	CreditScore          *int
	DebtToIncomeRatio    float64
	EmploymentStatus     EmploymentStatus
	MonthsAtJob          int
	HasBankAccount       bool
	HasRegistryRestraint bool
	CreditInquiries      int
	ExistingLoans        int
}

// NewCustomerProfile validates every field into its domain range and returns
// the profile. Construction is the only place ranges are checked; the
// pipeline stages assume a valid profile.
func NewCustomerProfile(p CustomerProfile) (CustomerProfile, error) {
	if p.CustomerID == "" {
		return CustomerProfile{}, errors.New("customer ID is required")
	}
	if p.Age < 18 || p.Age > 100 {
		return CustomerProfile{}, fmt.Errorf("age must be between 18 and 100, got %d", p.Age)
	}
	if p.MonthlyIncome <= 0 {
		return CustomerProfile{}, errors.New("monthly income must be positive")
	}
	if p.CreditScore != nil && (*p.CreditScore < MinCreditScore || *p.CreditScore > MaxCreditScore) {
		return CustomerProfile{}, fmt.Errorf("credit score must be between %d and %d, got %d",
			MinCreditScore, MaxCreditScore, *p.CreditScore)
	}
	if p.DebtToIncomeRatio < 0 || p.DebtToIncomeRatio > 1 {
		return CustomerProfile{}, fmt.Errorf("debt-to-income ratio must be in [0,1], got %.2f", p.DebtToIncomeRatio)
	}
	if p.EmploymentStatus.IsZero() {
		return CustomerProfile{}, errors.New("employment status is required")
	}
	if p.MonthsAtJob < 0 {
		return CustomerProfile{}, errors.New("months at job cannot be negative")
	}
	if p.CreditInquiries < 0 {
		return CustomerProfile{}, errors.New("credit inquiry count cannot be negative")
	}
	if p.ExistingLoans < 0 {
		return CustomerProfile{}, errors.New("existing loan count cannot be negative")
	}
	return p, nil
}
