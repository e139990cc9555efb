package service

import (
	"errors"
	"fmt"
	"math"

	"github.com/credora/credit-analysis/internal/domain/model"
)

// ---------------------------------------------------------------------------
// CreditLimitSolver – stage 2, breadth-first search over (amount, term)
// ---------------------------------------------------------------------------

// ProductConfig holds the catalog parameters of one credit product.
type ProductConfig struct {
	MinAmount       float64
	MaxAmount       float64
	MaxInstallments int
	BaseRate        float64 // monthly period rate
}

// ProductCatalog is the fixed product configuration table.
var ProductCatalog = map[model.ProductType]ProductConfig{
	model.ProductTypePersonalLoan: {MinAmount: 500, MaxAmount: 50000, MaxInstallments: 48, BaseRate: 0.025},
	model.ProductTypeCreditCard:   {MinAmount: 500, MaxAmount: 25000, MaxInstallments: 24, BaseRate: 0.089},
	model.ProductTypeAutoLoan:     {MinAmount: 5000, MaxAmount: 150000, MaxInstallments: 72, BaseRate: 0.015},
	model.ProductTypeHomeLoan:     {MinAmount: 50000, MaxAmount: 1000000, MaxInstallments: 360, BaseRate: 0.009},
}

const (
	// amountStep is the monetary granularity of the search grid.
	amountStep = 500.0
	// minRequestAmount is the absolute request floor.
	minRequestAmount = 500.0
	// affordabilityShare caps the period payment at a share of income.
	affordabilityShare = 0.30
)

// limitState is one node of the 2-D search space.
type limitState struct {
	amount       float64
	installments int
}

func (s limitState) key() string {
	return fmt.Sprintf("%d:%d", int(math.Round(s.amount)), s.installments)
}

// CreditLimitSolver computes the highest affordable amount for a product,
// bounded by tier limits and the 30%-of-income affordability rule.
type CreditLimitSolver struct {
	catalog map[model.ProductType]ProductConfig
}

// NewCreditLimitSolver creates a solver over the fixed product catalog.
func NewCreditLimitSolver() *CreditLimitSolver {
	return &CreditLimitSolver{catalog: ProductCatalog}
}

// Product returns the catalog entry for a product type.
func (s *CreditLimitSolver) Product(p model.ProductType) (ProductConfig, error) {
	cfg, ok := s.catalog[p]
	if !ok {
		return ProductConfig{}, fmt.Errorf("product %s not in catalog", p)
	}
	return cfg, nil
}

// CalculateLimit derives the multiplicative factor layers, caps their product
// into a search ceiling, then explores the (amount, installments) grid
// breadth-first for the highest amount whose annuity payment stays within
// the affordability share of income. The search always returns a usable
// candidate: when no state is affordable it degrades to the floor state.
func (s *CreditLimitSolver) CalculateLimit(
	request model.CreditRequest,
	tier model.TierLimits,
) (float64, map[string]float64, error) {
	product, err := s.Product(request.Product)
	if err != nil {
		return 0, nil, err
	}
	profile := request.Profile

	incomeLimit := profile.MonthlyIncome * tier.IncomeMultiplier
	scoreFactor := scoreFactor(profile.CreditScore)
	employmentFactor := employmentFactor(profile.EmploymentStatus)
	historyFactor := historyFactor(profile.ExistingLoans, profile.DebtToIncomeRatio)

	searchCap := incomeLimit * scoreFactor * employmentFactor * historyFactor
	searchCap = math.Min(searchCap, tier.MaxLimit)
	searchCap = math.Min(searchCap, product.MaxAmount)

	floor := limitState{
		amount:       math.Max(tier.MinLimit, product.MinAmount),
		installments: min(request.Installments, product.MaxInstallments),
	}

	best, bestPayment := s.search(floor, searchCap, product, profile.MonthlyIncome)

	factors := map[string]float64{
		"income_limit":      incomeLimit,
		"score_factor":      scoreFactor,
		"employment_factor": employmentFactor,
		"history_factor":    historyFactor,
		"search_cap":        searchCap,
		"installments":      float64(best.installments),
		"monthly_payment":   bestPayment,
	}
	return best.amount, factors, nil
}

// search runs the breadth-first exploration. Neighbors grow the amount by
// one step while under the ceiling and the term by one while under the
// product maximum; visited states are deduplicated by rounded amount and
// term, which keeps the grid finite.
func (s *CreditLimitSolver) search(
	floor limitState,
	searchCap float64,
	product ProductConfig,
	monthlyIncome float64,
) (limitState, float64) {
	maxPayment := monthlyIncome * affordabilityShare

	queue := []limitState{floor}
	visited := map[string]bool{floor.key(): true}

	best := limitState{}
	bestPayment := 0.0
	found := false

	for len(queue) > 0 {
		state := queue[0]
		queue = queue[1:]

		payment := model.MonthlyPayment(state.amount, product.BaseRate, state.installments)
		if payment <= maxPayment && state.amount > best.amount {
			best = state
			bestPayment = payment
			found = true
		}

		if next := (limitState{state.amount + amountStep, state.installments}); next.amount <= searchCap && !visited[next.key()] {
			visited[next.key()] = true
			queue = append(queue, next)
		}
		if next := (limitState{state.amount, state.installments + 1}); next.installments <= product.MaxInstallments && !visited[next.key()] {
			visited[next.key()] = true
			queue = append(queue, next)
		}
	}

	if !found {
		// Nothing affordable: hand back the floor state anyway so the
		// caller always has a concrete candidate to reason about.
		return floor, model.MonthlyPayment(floor.amount, product.BaseRate, floor.installments)
	}
	return best, bestPayment
}

// ValidateRequestedAmount checks a requested amount against the calculated
// limit and the absolute request floor.
func (s *CreditLimitSolver) ValidateRequestedAmount(requested, calculatedLimit float64) error {
	if requested <= 0 {
		return errors.New("requested amount must be positive")
	}
	if requested > calculatedLimit {
		return fmt.Errorf("requested amount exceeds the approved limit of %.2f", calculatedLimit)
	}
	if requested < minRequestAmount {
		return fmt.Errorf("minimum request amount is %.2f", minRequestAmount)
	}
	return nil
}

// scoreFactor maps credit score bands to a stepped multiplier. An absent
// score takes a flat penalty.
func scoreFactor(score *int) float64 {
	if score == nil {
		return 0.8
	}
	switch {
	case *score >= 800:
		return 1.2
	case *score >= 750:
		return 1.1
	case *score >= 700:
		return 1.0
	case *score >= 650:
		return 0.9
	case *score >= 600:
		return 0.8
	default:
		return 0.7
	}
}

func employmentFactor(status model.EmploymentStatus) float64 {
	switch status {
	case model.EmploymentStatusEmployed:
		return 1.0
	case model.EmploymentStatusSelfEmployed:
		return 0.95
	case model.EmploymentStatusRetired:
		return 0.85
	case model.EmploymentStatusUnemployed:
		return 0.5
	default:
		return 0.7
	}
}

// historyFactor combines an existing-loans bonus/penalty with a banded
// debt-to-income multiplier.
func historyFactor(existingLoans int, debtRatio float64) float64 {
	factor := 1.0
	if existingLoans > 0 {
		factor *= 1.05
	} else {
		factor *= 0.95
	}

	switch {
	case debtRatio < 0.2:
		factor *= 1.1
	case debtRatio < 0.3:
		factor *= 1.0
	case debtRatio < 0.4:
		factor *= 0.9
	default:
		factor *= 0.7
	}
	return factor
}
