package service

import "math"

// ---------------------------------------------------------------------------
// Minimal Mamdani fuzzy toolkit: membership functions as pure functions,
// rules as data. Shared by the risk engine.
// ---------------------------------------------------------------------------

// membershipFunc maps a crisp input to a degree of truth in [0,1].
type membershipFunc func(x float64) float64

// trapmf builds a trapezoidal membership function with breakpoints
// a <= b <= c <= d. Degenerate shoulders (a==b or c==d) are allowed.
func trapmf(a, b, c, d float64) membershipFunc {
	return func(x float64) float64 {
		switch {
		case x < a || x > d:
			return 0
		case x >= b && x <= c:
			return 1
		case x < b:
			if b == a {
				return 1
			}
			return (x - a) / (b - a)
		default:
			if d == c {
				return 1
			}
			return (d - x) / (d - c)
		}
	}
}

// trimf builds a triangular membership function with breakpoints a <= b <= c.
func trimf(a, b, c float64) membershipFunc {
	return trapmf(a, b, b, c)
}

// fuzzyVariable is one linguistic input variable: a numeric universe
// partitioned into named fuzzy sets. Inputs are clamped to the universe
// before fuzzification.
type fuzzyVariable struct {
	name string
	min  float64
	max  float64
	sets map[string]membershipFunc
}

func (v fuzzyVariable) clamp(x float64) float64 {
	return math.Max(v.min, math.Min(v.max, x))
}

// fuzzify returns the membership degree of a clamped input in one set.
func (v fuzzyVariable) fuzzify(set string, x float64) float64 {
	mf, ok := v.sets[set]
	if !ok {
		return 0
	}
	return mf(v.clamp(x))
}

// antecedent is one conjunct of a rule: a variable/set pair.
type antecedent struct {
	variable string
	set      string
}

// fuzzyRule maps a conjunction of antecedents (fuzzy AND = min) onto one
// output set. Rule order is irrelevant: aggregation is commutative.
type fuzzyRule struct {
	when []antecedent
	then string
}

// fuzzySystem evaluates a rule base over named input variables and a single
// output variable, defuzzifying by centroid over a sampled output universe.
type fuzzySystem struct {
	inputs     map[string]fuzzyVariable
	output     fuzzyVariable
	rules      []fuzzyRule
	resolution float64
}

// firingStrength computes min over the rule's antecedent memberships.
func (s *fuzzySystem) firingStrength(rule fuzzyRule, values map[string]float64) float64 {
	strength := 1.0
	for _, a := range rule.when {
		v, ok := s.inputs[a.variable]
		if !ok {
			return 0
		}
		strength = math.Min(strength, v.fuzzify(a.set, values[a.variable]))
	}
	return strength
}

// aggregate folds all rules into the aggregated output membership at x:
// per-rule implication is min(strength, set(x)), aggregation is max.
func (s *fuzzySystem) aggregate(strengths []float64, x float64) float64 {
	agg := 0.0
	for i, rule := range s.rules {
		if strengths[i] == 0 {
			continue
		}
		agg = math.Max(agg, math.Min(strengths[i], s.output.sets[rule.then](x)))
	}
	return agg
}

// Infer runs fuzzification, rule firing, implication, aggregation and
// centroid defuzzification, returning the crisp output score. When no rule
// fires at all the centroid is undefined; the midpoint of the output
// universe is returned instead.
func (s *fuzzySystem) Infer(values map[string]float64) float64 {
	strengths := make([]float64, len(s.rules))
	for i, rule := range s.rules {
		strengths[i] = s.firingStrength(rule, values)
	}

	var num, den float64
	for x := s.output.min; x <= s.output.max+s.resolution/2; x += s.resolution {
		mu := s.aggregate(strengths, x)
		num += x * mu
		den += mu
	}
	if den == 0 {
		return (s.output.min + s.output.max) / 2
	}
	return num / den
}

// OutputMembership evaluates one output set's membership at a crisp score.
func (s *fuzzySystem) OutputMembership(set string, score float64) float64 {
	return s.output.fuzzify(set, score)
}
