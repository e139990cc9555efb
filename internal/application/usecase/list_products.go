package usecase

import (
	"sort"

	"github.com/credora/credit-analysis/internal/application/dto"
	"github.com/credora/credit-analysis/internal/domain/service"
)

// ListProductsUseCase exposes the static product catalog.
type ListProductsUseCase struct {
	solver *service.CreditLimitSolver
}

func NewListProductsUseCase(solver *service.CreditLimitSolver) *ListProductsUseCase {
	return &ListProductsUseCase{solver: solver}
}

// Execute returns the catalog entries sorted by product type for a stable
// response order.
func (uc *ListProductsUseCase) Execute() []dto.ProductResponse {
	products := make([]dto.ProductResponse, 0, len(service.ProductCatalog))
	for productType, cfg := range service.ProductCatalog {
		products = append(products, dto.ProductResponse{
			Type:            productType.String(),
			MinAmount:       cfg.MinAmount,
			MaxAmount:       cfg.MaxAmount,
			MaxInstallments: cfg.MaxInstallments,
			MonthlyRate:     cfg.BaseRate,
		})
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Type < products[j].Type })
	return products
}
