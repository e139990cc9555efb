package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrapmf(t *testing.T) {
	mf := trapmf(0.2, 0.4, 0.6, 0.8)

	tests := []struct {
		name string
		x    float64
		want float64
	}{
		{"left of support", 0.1, 0},
		{"left foot", 0.2, 0},
		{"rising edge midpoint", 0.3, 0.5},
		{"left shoulder", 0.4, 1},
		{"plateau", 0.5, 1},
		{"right shoulder", 0.6, 1},
		{"falling edge midpoint", 0.7, 0.5},
		{"right foot", 0.8, 0},
		{"right of support", 0.9, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, mf(tt.x), 1e-12)
		})
	}
}

func TestTrapmfDegenerateShoulders(t *testing.T) {
	t.Run("open left shoulder", func(t *testing.T) {
		mf := trapmf(0, 0, 0.2, 0.4)
		assert.Equal(t, 1.0, mf(0))
		assert.Equal(t, 1.0, mf(0.1))
		assert.InDelta(t, 0.5, mf(0.3), 1e-12)
		assert.Equal(t, 0.0, mf(0.5))
	})

	t.Run("open right shoulder", func(t *testing.T) {
		mf := trapmf(0.65, 0.8, 1.0, 1.0)
		assert.Equal(t, 0.0, mf(0.6))
		assert.InDelta(t, 0.5, mf(0.725), 1e-12)
		assert.Equal(t, 1.0, mf(0.9))
		assert.Equal(t, 1.0, mf(1.0))
	})
}

func TestTrimf(t *testing.T) {
	mf := trimf(0.3, 0.55, 0.75)

	assert.Equal(t, 0.0, mf(0.2))
	assert.InDelta(t, 0.5, mf(0.425), 1e-12)
	assert.Equal(t, 1.0, mf(0.55))
	assert.InDelta(t, 0.5, mf(0.65), 1e-12)
	assert.Equal(t, 0.0, mf(0.8))
}

func TestFuzzyVariableClamp(t *testing.T) {
	v := fuzzyVariable{
		name: "score", min: 0, max: 1000,
		sets: map[string]membershipFunc{"high": trapmf(700, 780, 1000, 1000)},
	}

	assert.Equal(t, 1.0, v.fuzzify("high", 1500), "above the universe clamps to max")
	assert.Equal(t, 0.0, v.fuzzify("high", -50), "below the universe clamps to min")
	assert.Equal(t, 0.0, v.fuzzify("unknown", 900), "unknown set has zero membership")
}

func newTestSystem() *fuzzySystem {
	return &fuzzySystem{
		inputs: map[string]fuzzyVariable{
			"a": {
				name: "a", min: 0, max: 1,
				sets: map[string]membershipFunc{
					"low":  trapmf(0, 0, 0.3, 0.5),
					"high": trapmf(0.5, 0.7, 1, 1),
				},
			},
			"b": {
				name: "b", min: 0, max: 1,
				sets: map[string]membershipFunc{
					"low":  trapmf(0, 0, 0.3, 0.5),
					"high": trapmf(0.5, 0.7, 1, 1),
				},
			},
		},
		output: fuzzyVariable{
			name: "out", min: 0, max: 1,
			sets: map[string]membershipFunc{
				"low":  trapmf(0, 0, 0.2, 0.4),
				"high": trapmf(0.6, 0.8, 1, 1),
			},
		},
		rules: []fuzzyRule{
			{when: []antecedent{{"a", "low"}, {"b", "low"}}, then: "low"},
			{when: []antecedent{{"a", "high"}, {"b", "high"}}, then: "high"},
		},
		resolution: 0.01,
	}
}

func TestFiringStrength(t *testing.T) {
	s := newTestSystem()

	t.Run("conjunction takes the minimum", func(t *testing.T) {
		rule := s.rules[0]
		// a=0.4 -> low membership 0.5, b=0.2 -> low membership 1.0.
		got := s.firingStrength(rule, map[string]float64{"a": 0.4, "b": 0.2})
		assert.InDelta(t, 0.5, got, 1e-12)
	})

	t.Run("unknown variable kills the rule", func(t *testing.T) {
		rule := fuzzyRule{when: []antecedent{{"missing", "low"}}, then: "low"}
		assert.Equal(t, 0.0, s.firingStrength(rule, map[string]float64{"a": 0.1}))
	})
}

func TestInfer(t *testing.T) {
	s := newTestSystem()

	t.Run("low inputs land in the low region", func(t *testing.T) {
		got := s.Infer(map[string]float64{"a": 0.1, "b": 0.1})
		assert.Less(t, got, 0.4)
	})

	t.Run("high inputs land in the high region", func(t *testing.T) {
		got := s.Infer(map[string]float64{"a": 0.9, "b": 0.9})
		assert.Greater(t, got, 0.6)
	})

	t.Run("no rule firing returns the universe midpoint", func(t *testing.T) {
		// a in the low/high gap, b low: neither rule fires.
		got := s.Infer(map[string]float64{"a": 0.5, "b": 0.9})
		assert.Equal(t, 0.5, got)
	})

	t.Run("centroid stays inside the universe", func(t *testing.T) {
		for _, a := range []float64{0, 0.25, 0.5, 0.75, 1} {
			got := s.Infer(map[string]float64{"a": a, "b": a})
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		}
	})
}
