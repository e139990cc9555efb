package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/credora/credit-analysis/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// CustomerProfileRequest carries the applicant snapshot for one analysis.
// CreditScore is a pointer so "no bureau history" survives JSON round trips.
type CustomerProfileRequest struct {
	CustomerID           string  `json:"customer_id"`
	Name                 string  `json:"name"`
	Age                  int     `json:"age"`
	Gender               string  `json:"gender"`
	MaritalStatus        string  `json:"marital_status"`
	MonthlyIncome        float64 `json:"monthly_income"`
	CreditScore          *int    `json:"credit_score,omitempty"`
	DebtToIncomeRatio    float64 `json:"debt_to_income_ratio"`
	EmploymentStatus     string  `json:"employment_status"`
	MonthsAtJob          int     `json:"months_at_job"`
	HasBankAccount       bool    `json:"has_bank_account"`
	HasRegistryRestraint bool    `json:"has_registry_restraint"`
	CreditInquiries      int     `json:"credit_inquiries"`
	ExistingLoans        int     `json:"existing_loans"`
}

// AnalyzeCreditRequest is the input of a full pipeline run.
type AnalyzeCreditRequest struct {
	Customer        CustomerProfileRequest `json:"customer"`
	RequestedAmount float64                `json:"requested_amount"`
	ProductType     string                 `json:"product_type"`
	Installments    int                    `json:"installments"`
	Purpose         string                 `json:"purpose,omitempty"`
}

// TrainModelRequest bounds one training run of the approval model. Zero
// values fall back to the service defaults. When DatasetPath is set the run
// trains on that file instead of generating synthetic samples.
type TrainModelRequest struct {
	Samples      int     `json:"samples,omitempty"`
	Epochs       int     `json:"epochs,omitempty"`
	LearningRate float64 `json:"learning_rate,omitempty"`
	BatchSize    int     `json:"batch_size,omitempty"`
	Seed         int64   `json:"seed,omitempty"`
	DatasetPath  string  `json:"dataset_path,omitempty"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// PersonaFilterResponse is the external view of the stage-1 result.
type PersonaFilterResponse struct {
	Matched      bool     `json:"matched"`
	Tier         string   `json:"tier,omitempty"`
	Confidence   float64  `json:"confidence"`
	Reason       string   `json:"reason"`
	DecisionPath []string `json:"decision_path"`
}

// CreditLimitResponse is the external view of the stage-2 result.
type CreditLimitResponse struct {
	ApprovedAmount      float64            `json:"approved_amount"`
	MaxInstallmentValue float64            `json:"max_installment_value"`
	MaxInstallments     int                `json:"max_installments"`
	InterestRate        float64            `json:"interest_rate"`
	Factors             map[string]float64 `json:"factors"`
}

// RiskAssessmentResponse is the external view of the stage-3 result.
type RiskAssessmentResponse struct {
	Level            string             `json:"level"`
	Score            float64            `json:"score"`
	Confidence       float64            `json:"confidence"`
	MainRiskFactors  []string           `json:"main_risk_factors"`
	FuzzyMemberships map[string]float64 `json:"fuzzy_memberships"`
}

// AmortizationEntryResponse represents a single amortization schedule entry.
type AmortizationEntryResponse struct {
	Period           int             `json:"period"`
	DueDate          time.Time       `json:"due_date"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	Total            decimal.Decimal `json:"total"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// CreditAnalysisResponse is the external representation of one terminal
// analysis record. Stage blocks are nil when the stage never ran.
type CreditAnalysisResponse struct {
	ID              string                      `json:"id"`
	RequestID       string                      `json:"request_id"`
	CustomerID      string                      `json:"customer_id"`
	Status          string                      `json:"status"`
	Confidence      float64                     `json:"confidence"`
	RejectionReason string                      `json:"rejection_reason,omitempty"`
	Reasons         []string                    `json:"reasons"`
	Probabilities   *model.ClassProbabilities   `json:"probabilities,omitempty"`
	PersonaFilter   PersonaFilterResponse       `json:"persona_filter"`
	CreditLimit     *CreditLimitResponse        `json:"credit_limit,omitempty"`
	RiskAssessment  *RiskAssessmentResponse     `json:"risk_assessment,omitempty"`
	ApprovedAmount  float64                     `json:"approved_amount,omitempty"`
	Installments    int                         `json:"installments,omitempty"`
	InterestRate    float64                     `json:"interest_rate,omitempty"`
	MonthlyPayment  float64                     `json:"monthly_payment,omitempty"`
	Schedule        []AmortizationEntryResponse `json:"schedule,omitempty"`
	AnalyzedAt      time.Time                   `json:"analyzed_at"`
}

// ProductResponse is one catalog entry.
type ProductResponse struct {
	Type            string  `json:"type"`
	MinAmount       float64 `json:"min_amount"`
	MaxAmount       float64 `json:"max_amount"`
	MaxInstallments int     `json:"max_installments"`
	MonthlyRate     float64 `json:"monthly_rate"`
}

// TrainModelResponse reports a finished training run.
type TrainModelResponse struct {
	Samples    int     `json:"samples"`
	Epochs     int     `json:"epochs"`
	FinalLoss  float64 `json:"final_loss"`
	DurationMS int64   `json:"duration_ms"`
}
