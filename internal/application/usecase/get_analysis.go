package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/credora/credit-analysis/internal/application/dto"
	"github.com/credora/credit-analysis/internal/domain/port"
)

// GetAnalysisUseCase retrieves a stored analysis, cache first.
type GetAnalysisUseCase struct {
	repo   port.AnalysisRepository
	cache  port.AnalysisCache
	logger *slog.Logger
}

func NewGetAnalysisUseCase(repo port.AnalysisRepository, cache port.AnalysisCache, logger *slog.Logger) *GetAnalysisUseCase {
	return &GetAnalysisUseCase{repo: repo, cache: cache, logger: logger}
}

// Execute looks the record up in the cache and falls back to the repository
// on a miss or cache error. A repository hit refills the cache.
func (uc *GetAnalysisUseCase) Execute(ctx context.Context, id string) (dto.CreditAnalysisResponse, error) {
	if uc.cache != nil {
		result, found, err := uc.cache.Get(ctx, id)
		if err != nil {
			uc.logger.Warn("analysis cache read failed", "analysis_id", id, "error", err)
		} else if found {
			return toAnalysisResponse(result, nil), nil
		}
	}

	if uc.repo == nil {
		return dto.CreditAnalysisResponse{}, fmt.Errorf("analysis %s: %w", id, port.ErrAnalysisNotFound)
	}
	result, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return dto.CreditAnalysisResponse{}, fmt.Errorf("find analysis %s: %w", id, err)
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, result); err != nil {
			uc.logger.Warn("analysis cache refill failed", "analysis_id", id, "error", err)
		}
	}
	return toAnalysisResponse(result, nil), nil
}

// ByCustomer returns every stored analysis for one customer, newest first.
// Listings always hit the repository; only single-record reads are cached.
func (uc *GetAnalysisUseCase) ByCustomer(ctx context.Context, customerID string) ([]dto.CreditAnalysisResponse, error) {
	if uc.repo == nil {
		return nil, fmt.Errorf("analyses for customer %s: %w", customerID, port.ErrAnalysisNotFound)
	}

	results, err := uc.repo.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("find analyses for customer %s: %w", customerID, err)
	}

	responses := make([]dto.CreditAnalysisResponse, 0, len(results))
	for _, result := range results {
		responses = append(responses, toAnalysisResponse(result, nil))
	}
	return responses, nil
}
