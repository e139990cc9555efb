package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/credora/credit-analysis/internal/application/dto"
	"github.com/credora/credit-analysis/internal/domain/event"
	"github.com/credora/credit-analysis/internal/domain/model"
	"github.com/credora/credit-analysis/internal/domain/port"
	"github.com/credora/credit-analysis/internal/domain/service"
	"github.com/credora/credit-analysis/pkg/observability"
)

// AnalyzeCreditUseCase orchestrates the four-stage analysis pipeline:
// persona filter, limit search, fuzzy risk, neural approval.
type AnalyzeCreditUseCase struct {
	persona    *service.PersonaFilter
	solver     *service.CreditLimitSolver
	risk       *service.RiskEngine
	classifier *service.ApprovalClassifier
	repo       port.AnalysisRepository
	cache      port.AnalysisCache
	publisher  port.EventPublisher
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewAnalyzeCreditUseCase wires dependencies. repo, cache and publisher may
// be nil, in which case the corresponding side effects are skipped.
func NewAnalyzeCreditUseCase(
	persona *service.PersonaFilter,
	solver *service.CreditLimitSolver,
	risk *service.RiskEngine,
	classifier *service.ApprovalClassifier,
	repo port.AnalysisRepository,
	cache port.AnalysisCache,
	publisher port.EventPublisher,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *AnalyzeCreditUseCase {
	return &AnalyzeCreditUseCase{
		persona:    persona,
		solver:     solver,
		risk:       risk,
		classifier: classifier,
		repo:       repo,
		cache:      cache,
		publisher:  publisher,
		metrics:    metrics,
		logger:     logger,
	}
}

// Execute runs one full analysis. Validation failures return an error; every
// other path returns a terminal result. Persistence, caching and event
// publication are best effort and never change the decision.
func (uc *AnalyzeCreditUseCase) Execute(
	ctx context.Context,
	req dto.AnalyzeCreditRequest,
) (dto.CreditAnalysisResponse, error) {
	now := time.Now().UTC()

	// 1. Build the validated request aggregate.
	request, err := uc.buildRequest(req, now)
	if err != nil {
		return dto.CreditAnalysisResponse{}, fmt.Errorf("invalid analysis request: %w", err)
	}
	profile := request.Profile
	logger := uc.logger.With("request_id", request.ID, "customer_id", profile.CustomerID)

	// 2. Stage 1: persona classification.
	stageStart := time.Now()
	personaResult := uc.persona.Identify(profile)
	uc.metrics.ObserveStage("persona_filter", time.Since(stageStart))

	if !personaResult.Matched {
		logger.Info("analysis short-circuited at persona filter", "reason", personaResult.Reason)
		uc.metrics.IncShortCircuit()
		result := model.CreditAnalysisResult{
			ID:              model.NewAnalysisID(),
			RequestID:       request.ID,
			CustomerID:      profile.CustomerID,
			Status:          model.ApprovalStatusRejected,
			Confidence:      0,
			RejectionReason: model.RejectionReasonPersonaFilter,
			Reasons:         []string{personaResult.Reason},
			PersonaFilter:   personaResult,
			AnalyzedAt:      now,
		}
		uc.finish(ctx, logger, result)
		return toAnalysisResponse(result, nil), nil
	}
	logger.Info("persona identified",
		"tier", personaResult.Tier,
		"confidence", personaResult.Confidence,
	)

	// 3. Stage 2: credit limit search.
	stageStart = time.Now()
	tier := uc.persona.TierLimits(personaResult.Tier)
	limitAmount, factors, err := uc.solver.CalculateLimit(request, tier)
	uc.metrics.ObserveStage("credit_limit", time.Since(stageStart))
	if err != nil {
		return dto.CreditAnalysisResponse{}, fmt.Errorf("calculate limit: %w", err)
	}
	if err := uc.solver.ValidateRequestedAmount(request.RequestedAmount, limitAmount); err != nil {
		// Not terminal: the limit ratio carries this signal into stages 3-4.
		logger.Info("requested amount outside limit", "detail", err.Error())
	}

	product, err := uc.solver.Product(request.Product)
	if err != nil {
		return dto.CreditAnalysisResponse{}, fmt.Errorf("product lookup: %w", err)
	}
	creditLimit := model.CreditLimit{
		ApprovedAmount:      limitAmount,
		MaxInstallmentValue: factors["monthly_payment"],
		MaxInstallments:     int(factors["installments"]),
		InterestRate:        product.BaseRate,
		Factors:             factors,
	}
	logger.Info("credit limit calculated",
		"limit", limitAmount,
		"max_installments", creditLimit.MaxInstallments,
	)

	// 4. Stage 3: fuzzy risk assessment.
	stageStart = time.Now()
	riskResult := uc.risk.AssessRisk(profile, limitAmount, request.RequestedAmount)
	uc.metrics.ObserveStage("risk_engine", time.Since(stageStart))
	logger.Info("risk assessed",
		"level", riskResult.Level.String(),
		"score", riskResult.Score,
	)

	// 5. Stage 4: neural approval decision.
	stageStart = time.Now()
	decision, err := uc.classifier.DecideApproval(profile, limitAmount, request.RequestedAmount, riskResult)
	uc.metrics.ObserveStage("approval_classifier", time.Since(stageStart))
	if err != nil {
		return dto.CreditAnalysisResponse{}, fmt.Errorf("approval decision: %w", err)
	}

	// 6. Assemble the terminal record.
	result := model.CreditAnalysisResult{
		ID:              model.NewAnalysisID(),
		RequestID:       request.ID,
		CustomerID:      profile.CustomerID,
		Status:          decision.Status,
		Confidence:      decision.Confidence,
		RejectionReason: decision.RejectionReason,
		Reasons:         decision.Reasons,
		Probabilities:   decision.Probabilities,
		PersonaFilter:   personaResult,
		CreditLimit:     &creditLimit,
		RiskAssessment:  &riskResult,
		AnalyzedAt:      now,
	}

	var schedule []model.AmortizationEntry
	if decision.Status == model.ApprovalStatusApproved {
		result.ApprovedAmount = math.Min(request.RequestedAmount, limitAmount)
		result.ApprovedInstallments = minInt(request.Installments, product.MaxInstallments)
		result.InterestRate = product.BaseRate
		result.MonthlyPayment = model.MonthlyPayment(
			result.ApprovedAmount, result.InterestRate, result.ApprovedInstallments,
		)
		schedule = model.GenerateAmortizationSchedule(
			result.ApprovedAmount, result.InterestRate, result.ApprovedInstallments, now,
		)
	}

	logger.Info("analysis completed",
		"analysis_id", result.ID,
		"status", result.Status.String(),
		"confidence", result.Confidence,
		"approved_amount", result.ApprovedAmount,
	)

	// 7. Best-effort side effects.
	uc.finish(ctx, logger, result)

	return toAnalysisResponse(result, schedule), nil
}

// finish persists, caches and publishes the terminal record. Failures are
// logged and swallowed: the decision already happened.
func (uc *AnalyzeCreditUseCase) finish(ctx context.Context, logger *slog.Logger, result model.CreditAnalysisResult) {
	uc.metrics.IncAnalysis(result.Status.String())

	if uc.repo != nil {
		if err := uc.repo.Save(ctx, result); err != nil {
			logger.Warn("persist analysis failed", "error", err)
		}
	}
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, result); err != nil {
			logger.Warn("cache analysis failed", "error", err)
		}
	}
	if uc.publisher != nil {
		events := []event.DomainEvent{event.NewCreditAnalysisCompleted(result)}
		if result.Status == model.ApprovalStatusRejected {
			events = append(events, event.NewCreditAnalysisRejected(result))
		}
		if err := uc.publisher.Publish(ctx, events...); err != nil {
			logger.Warn("publish analysis events failed", "error", err)
		}
	}
}

func (uc *AnalyzeCreditUseCase) buildRequest(req dto.AnalyzeCreditRequest, now time.Time) (model.CreditRequest, error) {
	gender, err := model.NewGender(req.Customer.Gender)
	if err != nil {
		return model.CreditRequest{}, err
	}
	marital, err := model.NewMaritalStatus(req.Customer.MaritalStatus)
	if err != nil {
		return model.CreditRequest{}, err
	}
	employment, err := model.NewEmploymentStatus(req.Customer.EmploymentStatus)
	if err != nil {
		return model.CreditRequest{}, err
	}
	product, err := model.NewProductType(req.ProductType)
	if err != nil {
		return model.CreditRequest{}, err
	}

	profile, err := model.NewCustomerProfile(model.CustomerProfile{
		CustomerID:           req.Customer.CustomerID,
		Name:                 req.Customer.Name,
		Age:                  req.Customer.Age,
		Gender:               gender,
		MaritalStatus:        marital,
		MonthlyIncome:        req.Customer.MonthlyIncome,
		CreditScore:          req.Customer.CreditScore,
		DebtToIncomeRatio:    req.Customer.DebtToIncomeRatio,
		EmploymentStatus:     employment,
		MonthsAtJob:          req.Customer.MonthsAtJob,
		HasBankAccount:       req.Customer.HasBankAccount,
		HasRegistryRestraint: req.Customer.HasRegistryRestraint,
		CreditInquiries:      req.Customer.CreditInquiries,
		ExistingLoans:        req.Customer.ExistingLoans,
	})
	if err != nil {
		return model.CreditRequest{}, err
	}

	return model.NewCreditRequest(
		profile, req.RequestedAmount, product, req.Installments, req.Purpose, now,
	)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// toAnalysisResponse maps the terminal record to its external shape.
func toAnalysisResponse(result model.CreditAnalysisResult, schedule []model.AmortizationEntry) dto.CreditAnalysisResponse {
	resp := dto.CreditAnalysisResponse{
		ID:              result.ID,
		RequestID:       result.RequestID,
		CustomerID:      result.CustomerID,
		Status:          result.Status.String(),
		Confidence:      result.Confidence,
		RejectionReason: result.RejectionReason.String(),
		Reasons:         result.Reasons,
		PersonaFilter: dto.PersonaFilterResponse{
			Matched:      result.PersonaFilter.Matched,
			Tier:         result.PersonaFilter.Tier,
			Confidence:   result.PersonaFilter.Confidence,
			Reason:       result.PersonaFilter.Reason,
			DecisionPath: result.PersonaFilter.DecisionPath,
		},
		ApprovedAmount: result.ApprovedAmount,
		Installments:   result.ApprovedInstallments,
		InterestRate:   result.InterestRate,
		MonthlyPayment: result.MonthlyPayment,
		AnalyzedAt:     result.AnalyzedAt,
	}

	if result.CreditLimit != nil {
		probs := result.Probabilities
		resp.Probabilities = &probs
		resp.CreditLimit = &dto.CreditLimitResponse{
			ApprovedAmount:      result.CreditLimit.ApprovedAmount,
			MaxInstallmentValue: result.CreditLimit.MaxInstallmentValue,
			MaxInstallments:     result.CreditLimit.MaxInstallments,
			InterestRate:        result.CreditLimit.InterestRate,
			Factors:             result.CreditLimit.Factors,
		}
	}
	if result.RiskAssessment != nil {
		resp.RiskAssessment = &dto.RiskAssessmentResponse{
			Level:            result.RiskAssessment.Level.String(),
			Score:            result.RiskAssessment.Score,
			Confidence:       result.RiskAssessment.Confidence,
			MainRiskFactors:  result.RiskAssessment.MainRiskFactors,
			FuzzyMemberships: result.RiskAssessment.FuzzyMemberships,
		}
	}
	for _, entry := range schedule {
		resp.Schedule = append(resp.Schedule, dto.AmortizationEntryResponse{
			Period:           entry.Period,
			DueDate:          entry.DueDate,
			Principal:        entry.Principal,
			Interest:         entry.Interest,
			Total:            entry.Total,
			RemainingBalance: entry.RemainingBalance,
		})
	}
	return resp
}
