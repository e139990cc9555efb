package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// ProductType – immutable value object
// ---------------------------------------------------------------------------

// ProductType identifies a credit product with its own catalog limits.
type ProductType struct {
	value string
}

var (
	ProductTypePersonalLoan = ProductType{value: "personal_loan"}
	ProductTypeCreditCard   = ProductType{value: "credit_card"}
	ProductTypeAutoLoan     = ProductType{value: "auto_loan"}
	ProductTypeHomeLoan     = ProductType{value: "home_loan"}
)

var validProductTypes = map[string]ProductType{
	"personal_loan": ProductTypePersonalLoan,
	"credit_card":   ProductTypeCreditCard,
	"auto_loan":     ProductTypeAutoLoan,
	"home_loan":     ProductTypeHomeLoan,
}

// NewProductType creates a ProductType from a raw string.
func NewProductType(s string) (ProductType, error) {
	v, ok := validProductTypes[s]
	if !ok {
		return ProductType{}, fmt.Errorf("invalid product type: %q", s)
	}
	return v, nil
}

func (p ProductType) String() string { return p.value }
func (p ProductType) IsZero() bool   { return p.value == "" }

// ---------------------------------------------------------------------------
// CreditRequest
// ---------------------------------------------------------------------------

// CreditRequest is the immutable input to one analysis run. It is created
// once per call and consumed by all four pipeline stages.
type CreditRequest struct {
	ID              string
	Profile         CustomerProfile
	RequestedAmount float64
	Product         ProductType
	Installments    int
	Purpose         string
	CreatedAt       time.Time
}

// NewCreditRequest validates and assembles a request around an already
// validated profile.
func NewCreditRequest(
	profile CustomerProfile,
	requestedAmount float64,
	product ProductType,
	installments int,
	purpose string,
	now time.Time,
) (CreditRequest, error) {
	if requestedAmount <= 0 {
		return CreditRequest{}, errors.New("requested amount must be positive")
	}
	if product.IsZero() {
		return CreditRequest{}, errors.New("product type is required")
	}
	if installments <= 0 {
		return CreditRequest{}, errors.New("requested installments must be positive")
	}
	return CreditRequest{
		ID:              uuid.New().String(),
		Profile:         profile,
		RequestedAmount: requestedAmount,
		Product:         product,
		Installments:    installments,
		Purpose:         purpose,
		CreatedAt:       now,
	}, nil
}
