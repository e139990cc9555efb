package service

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/credora/credit-analysis/internal/domain/model"
)

// ---------------------------------------------------------------------------
// RiskEngine – stage 3, fuzzy inference over six borrower features
// ---------------------------------------------------------------------------

// Risk level thresholds on the [0,1] output universe.
const (
	riskLowThreshold    = 0.40
	riskMediumThreshold = 0.70
)

// RiskEngine maps borrower and request features to a continuous default-risk
// score and a discrete level. The rule base is fixed at construction.
type RiskEngine struct {
	system   *fuzzySystem
	logger   *slog.Logger
	curveDir string // "" disables the diagnostic artifact
}

// NewRiskEngine builds the engine. curveDir, when non-empty, is where
// best-effort risk-curve artifacts are written.
func NewRiskEngine(logger *slog.Logger, curveDir string) *RiskEngine {
	return &RiskEngine{
		system:   newRiskSystem(),
		logger:   logger,
		curveDir: curveDir,
	}
}

func newRiskSystem() *fuzzySystem {
	inputs := map[string]fuzzyVariable{
		"credit_score": {
			name: "credit_score", min: 0, max: 1000,
			sets: map[string]membershipFunc{
				"low":  trapmf(0, 0, 450, 550),
				"med":  trimf(500, 650, 780),
				"high": trapmf(700, 780, 1000, 1000),
			},
		},
		"income": {
			name: "income", min: 0, max: 50000,
			sets: map[string]membershipFunc{
				"low":  trapmf(0, 0, 2000, 4000),
				"med":  trimf(3000, 7000, 12000),
				"high": trapmf(8000, 15000, 50000, 50000),
			},
		},
		"debt_ratio": {
			name: "debt_ratio", min: 0, max: 1,
			sets: map[string]membershipFunc{
				"low":  trapmf(0, 0, 0.2, 0.3),
				"med":  trimf(0.2, 0.4, 0.6),
				"high": trapmf(0.5, 0.7, 1.0, 1.0),
			},
		},
		"employment_time": {
			name: "employment_time", min: 0, max: 120,
			sets: map[string]membershipFunc{
				"short": trapmf(0, 0, 6, 12),
				"med":   trimf(6, 24, 48),
				"long":  trapmf(36, 60, 120, 120),
			},
		},
		"inquiries": {
			name: "inquiries", min: 0, max: 20,
			sets: map[string]membershipFunc{
				"few":  trapmf(0, 0, 2, 4),
				"many": trapmf(3, 6, 20, 20),
			},
		},
		"limit_ratio": {
			name: "limit_ratio", min: 0, max: 1,
			sets: map[string]membershipFunc{
				"low":  trapmf(0, 0, 0.4, 0.6),
				"med":  trimf(0.5, 0.7, 0.85),
				"high": trapmf(0.8, 0.9, 1.0, 1.0),
			},
		},
	}

	output := fuzzyVariable{
		name: "risk", min: 0, max: 1,
		sets: map[string]membershipFunc{
			"low":  trapmf(0.0, 0.0, 0.20, 0.40),
			"med":  trimf(0.30, 0.55, 0.75),
			"high": trapmf(0.65, 0.80, 1.0, 1.0),
		},
	}

	// The rule base encodes the precedence contract: a high score or high
	// income alone can pull risk down against one adverse factor, while
	// high debt with low/medium income, or a low score with many inquiries
	// or medium debt, pulls risk up.
	rules := []fuzzyRule{
		// low risk
		{when: []antecedent{{"credit_score", "high"}, {"debt_ratio", "low"}}, then: "low"},
		{when: []antecedent{{"credit_score", "high"}, {"debt_ratio", "med"}}, then: "low"},
		{when: []antecedent{{"credit_score", "high"}, {"inquiries", "few"}}, then: "low"},
		{when: []antecedent{{"income", "high"}, {"debt_ratio", "low"}}, then: "low"},
		{when: []antecedent{{"income", "high"}, {"inquiries", "few"}}, then: "low"},
		{when: []antecedent{{"credit_score", "med"}, {"debt_ratio", "low"}, {"inquiries", "few"}}, then: "low"},
		{when: []antecedent{{"credit_score", "med"}, {"income", "high"}}, then: "low"},

		// medium risk
		{when: []antecedent{{"credit_score", "med"}, {"debt_ratio", "med"}}, then: "med"},
		{when: []antecedent{{"credit_score", "high"}, {"debt_ratio", "high"}}, then: "med"},
		{when: []antecedent{{"credit_score", "low"}, {"debt_ratio", "low"}, {"income", "high"}}, then: "med"},
		{when: []antecedent{{"income", "med"}, {"limit_ratio", "med"}}, then: "med"},
		{when: []antecedent{{"inquiries", "many"}, {"debt_ratio", "low"}}, then: "med"},

		// high risk
		{when: []antecedent{{"credit_score", "low"}, {"debt_ratio", "med"}}, then: "high"},
		{when: []antecedent{{"credit_score", "low"}, {"inquiries", "many"}}, then: "high"},
		{when: []antecedent{{"debt_ratio", "high"}, {"income", "low"}}, then: "high"},
		{when: []antecedent{{"debt_ratio", "high"}, {"income", "med"}}, then: "high"},
		{when: []antecedent{{"income", "med"}, {"limit_ratio", "high"}}, then: "high"},
		{when: []antecedent{{"limit_ratio", "high"}, {"employment_time", "short"}, {"credit_score", "med"}}, then: "high"},
		{when: []antecedent{{"inquiries", "many"}, {"debt_ratio", "high"}}, then: "high"},
	}

	return &fuzzySystem{
		inputs:     inputs,
		output:     output,
		rules:      rules,
		resolution: 0.01,
	}
}

// AssessRisk runs the fuzzy inference for one request. A non-positive
// approved limit makes the limit ratio default to 1.0, the maximum risk
// contribution from that input. An absent credit score enters the universe
// at its floor.
func (e *RiskEngine) AssessRisk(
	profile model.CustomerProfile,
	approvedLimit float64,
	requestedAmount float64,
) model.RiskAssessment {
	limitRatio := 1.0
	if approvedLimit > 0 {
		limitRatio = requestedAmount / approvedLimit
		if limitRatio > 1.0 {
			limitRatio = 1.0
		}
	}

	score := 0.0
	if profile.CreditScore != nil {
		score = float64(*profile.CreditScore)
	}

	values := map[string]float64{
		"credit_score":    score,
		"income":          profile.MonthlyIncome,
		"debt_ratio":      profile.DebtToIncomeRatio,
		"employment_time": float64(profile.MonthsAtJob),
		"inquiries":       float64(profile.CreditInquiries),
		"limit_ratio":     limitRatio,
	}

	riskScore := e.system.Infer(values)

	memberships := map[string]float64{
		"low":  e.system.OutputMembership("low", riskScore),
		"med":  e.system.OutputMembership("med", riskScore),
		"high": e.system.OutputMembership("high", riskScore),
	}

	mainFactors := make([]string, 0, len(memberships))
	confidence := 0.0
	for label, mu := range memberships {
		if mu >= 0.5 {
			mainFactors = append(mainFactors, label)
		}
		if mu > confidence {
			confidence = mu
		}
	}
	sort.Strings(mainFactors)

	e.writeRiskCurve(riskScore)

	return model.RiskAssessment{
		Level:            riskLevelFor(riskScore),
		Score:            riskScore,
		Factors:          values,
		MainRiskFactors:  mainFactors,
		Confidence:       confidence,
		FuzzyMemberships: memberships,
	}
}

func riskLevelFor(score float64) model.RiskLevel {
	switch {
	case score < riskLowThreshold:
		return model.RiskLevelLow
	case score < riskMediumThreshold:
		return model.RiskLevelMedium
	default:
		return model.RiskLevelHigh
	}
}

// writeRiskCurve dumps the three output membership curves plus the computed
// score as CSV. Strictly best-effort diagnostics: failures are logged at
// warn and never affect the assessment.
func (e *RiskEngine) writeRiskCurve(riskScore float64) {
	if e.curveDir == "" {
		return
	}

	var b strings.Builder
	b.WriteString("x,low,med,high,score\n")
	for x := 0.0; x <= 1.0001; x += 0.01 {
		fmt.Fprintf(&b, "%.2f,%.4f,%.4f,%.4f,%.4f\n",
			x,
			e.system.OutputMembership("low", x),
			e.system.OutputMembership("med", x),
			e.system.OutputMembership("high", x),
			riskScore,
		)
	}

	if err := os.MkdirAll(e.curveDir, 0o755); err != nil {
		e.logger.Warn("risk curve dir not writable", "dir", e.curveDir, "error", err)
		return
	}
	name := filepath.Join(e.curveDir, fmt.Sprintf("risk_curve_%s.csv", uuid.New().String()[:8]))
	if err := os.WriteFile(name, []byte(b.String()), 0o644); err != nil {
		e.logger.Warn("risk curve write failed", "file", name, "error", err)
	}
}
