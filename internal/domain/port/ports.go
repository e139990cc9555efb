package port

import (
	"context"
	"errors"

	"github.com/credora/credit-analysis/internal/domain/event"
	"github.com/credora/credit-analysis/internal/domain/model"
)

// ErrAnalysisNotFound is returned by repositories when no record matches.
var ErrAnalysisNotFound = errors.New("analysis not found")

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// AnalysisRepository persists and retrieves terminal analysis records.
type AnalysisRepository interface {
	Save(ctx context.Context, result model.CreditAnalysisResult) error
	FindByID(ctx context.Context, id string) (model.CreditAnalysisResult, error)
	FindByCustomerID(ctx context.Context, customerID string) ([]model.CreditAnalysisResult, error)
}

// AnalysisCache is the read-through cache in front of the repository.
// Implementations are best effort: a cache failure never fails an analysis.
type AnalysisCache interface {
	Get(ctx context.Context, id string) (model.CreditAnalysisResult, bool, error)
	Set(ctx context.Context, result model.CreditAnalysisResult) error
	Ping(ctx context.Context) error
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}
