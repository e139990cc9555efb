package service

import (
	"fmt"

	"github.com/credora/credit-analysis/internal/domain/model"
)

// ---------------------------------------------------------------------------
// PersonaFilter – stage 1, depth-first traversal of a fixed decision tree
// ---------------------------------------------------------------------------

// personaNode is a tagged-variant tree node: either an internal node with a
// predicate and two branches, or a leaf carrying a tier label. A nil branch
// is a dead end and resolves to "no match".
type personaNode struct {
	label   string // predicate description, recorded on the decision path
	test    func(p model.CustomerProfile) bool
	onTrue  *personaNode
	onFalse *personaNode
	tier    string // non-empty marks a leaf
}

// personaTier holds the baseline thresholds a tier was defined with, used
// for the post-hoc confidence computation, plus the static limit parameters
// the limit solver consumes.
type personaTier struct {
	minIncome  float64
	minScore   int
	employment []model.EmploymentStatus
	limits     model.TierLimits
}

// PersonaFilter classifies a borrower into an eligibility tier. The tree is
// fixed at construction; false branches of a stricter tier fall through into
// the next tier's checks so a near-miss premium profile can still match
// standard or basic.
type PersonaFilter struct {
	root  *personaNode
	tiers map[string]personaTier
}

// NewPersonaFilter builds the filter with the production tier tables.
func NewPersonaFilter() *PersonaFilter {
	f := &PersonaFilter{
		tiers: map[string]personaTier{
			"premium": {
				minIncome:  10000,
				minScore:   750,
				employment: []model.EmploymentStatus{model.EmploymentStatusEmployed, model.EmploymentStatusSelfEmployed},
				limits:     model.TierLimits{MaxLimit: 100000, MinLimit: 10000, IncomeMultiplier: 5.0},
			},
			"standard": {
				minIncome:  3000,
				minScore:   650,
				employment: []model.EmploymentStatus{model.EmploymentStatusEmployed, model.EmploymentStatusSelfEmployed},
				limits:     model.TierLimits{MaxLimit: 50000, MinLimit: 3000, IncomeMultiplier: 3.0},
			},
			"basic": {
				minIncome:  1500,
				minScore:   550,
				employment: []model.EmploymentStatus{model.EmploymentStatusEmployed, model.EmploymentStatusSelfEmployed, model.EmploymentStatusRetired},
				limits:     model.TierLimits{MaxLimit: 20000, MinLimit: 1000, IncomeMultiplier: 2.0},
			},
		},
	}
	f.root = f.buildTree()
	return f
}

// buildTree wires the shared-branch tree. Each tier contributes a chain of
// income -> score -> employment checks ending in its leaf; every failed
// check falls through to the next (less strict) tier's entry node.
func (f *PersonaFilter) buildTree() *personaNode {
	var entry *personaNode
	// Build from the least strict tier up so each stricter chain can point
	// its false branches at the next chain's entry.
	for _, name := range []string{"basic", "standard", "premium"} {
		tier := f.tiers[name]
		fallthroughNode := entry

		leaf := &personaNode{tier: name}
		employment := &personaNode{
			label:   fmt.Sprintf("%s: employment qualifies", name),
			test:    employmentIn(tier.employment),
			onTrue:  leaf,
			onFalse: fallthroughNode,
		}
		score := &personaNode{
			label:   fmt.Sprintf("%s: credit score >= %d", name, tier.minScore),
			test:    scoreAtLeast(tier.minScore),
			onTrue:  employment,
			onFalse: fallthroughNode,
		}
		income := &personaNode{
			label:   fmt.Sprintf("%s: income >= %.0f", name, tier.minIncome),
			test:    incomeAtLeast(tier.minIncome),
			onTrue:  score,
			onFalse: fallthroughNode,
		}
		entry = income
	}
	return entry
}

func incomeAtLeast(min float64) func(model.CustomerProfile) bool {
	return func(p model.CustomerProfile) bool { return p.MonthlyIncome >= min }
}

// scoreAtLeast treats an absent score as failing the threshold.
func scoreAtLeast(min int) func(model.CustomerProfile) bool {
	return func(p model.CustomerProfile) bool {
		return p.CreditScore != nil && *p.CreditScore >= min
	}
}

func employmentIn(allowed []model.EmploymentStatus) func(model.CustomerProfile) bool {
	return func(p model.CustomerProfile) bool {
		for _, s := range allowed {
			if p.EmploymentStatus == s {
				return true
			}
		}
		return false
	}
}

// Identify walks the tree depth-first and returns the stage-1 result. An
// unmatched profile yields Matched=false with confidence 0.
func (f *PersonaFilter) Identify(profile model.CustomerProfile) model.PersonaFilterResult {
	path := []string{}
	node := f.root
	for node != nil {
		if node.tier != "" {
			return model.PersonaFilterResult{
				Matched:      true,
				Tier:         node.tier,
				Confidence:   f.confidence(profile, f.tiers[node.tier]),
				Reason:       fmt.Sprintf("customer classified as %s", node.tier),
				DecisionPath: append(path, node.tier),
			}
		}
		if node.test(profile) {
			path = append(path, node.label+": true")
			node = node.onTrue
		} else {
			path = append(path, node.label+": false")
			node = node.onFalse
		}
	}
	return model.PersonaFilterResult{
		Matched:      false,
		Confidence:   0,
		Reason:       "customer does not meet the minimum criteria of any tier",
		DecisionPath: path,
	}
}

// confidence scores the match against the tier's baseline thresholds:
// income contributes up to 0.4 (relative to twice the tier minimum), the
// credit score up to 0.4 (0.2 flat when absent), employment 0.2 or 0.1.
func (f *PersonaFilter) confidence(profile model.CustomerProfile, tier personaTier) float64 {
	confidence := 0.0

	incomeRatio := profile.MonthlyIncome / (tier.minIncome * 2)
	if incomeRatio > 0.4 {
		incomeRatio = 0.4
	}
	confidence += incomeRatio

	if profile.CreditScore != nil {
		scoreRatio := float64(*profile.CreditScore) / 850 * 0.4
		if scoreRatio > 0.4 {
			scoreRatio = 0.4
		}
		confidence += scoreRatio
	} else {
		confidence += 0.2
	}

	if profile.EmploymentStatus.IsActive() {
		confidence += 0.2
	} else {
		confidence += 0.1
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// TierLimits returns the static limit parameters for a tier. Unknown tiers
// fall back to basic, mirroring the most conservative table entry.
func (f *PersonaFilter) TierLimits(tier string) model.TierLimits {
	t, ok := f.tiers[tier]
	if !ok {
		return f.tiers["basic"].limits
	}
	return t.limits
}
