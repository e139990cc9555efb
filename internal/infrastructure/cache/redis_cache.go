package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/credora/credit-analysis/internal/domain/model"
	"github.com/credora/credit-analysis/internal/infrastructure/persistence"
)

const analysisKeyPrefix = "credit:analysis:"

// AnalysisCache implements port.AnalysisCache on Redis. Entries expire
// after the configured TTL.
type AnalysisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAnalysisCache creates a cache adapter on an existing client.
func NewAnalysisCache(client *redis.Client, ttl time.Duration) *AnalysisCache {
	return &AnalysisCache{client: client, ttl: ttl}
}

// Get returns the cached record and whether it was present. A missing key
// is not an error.
func (c *AnalysisCache) Get(ctx context.Context, id string) (model.CreditAnalysisResult, bool, error) {
	data, err := c.client.Get(ctx, analysisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.CreditAnalysisResult{}, false, nil
	}
	if err != nil {
		return model.CreditAnalysisResult{}, false, fmt.Errorf("cache get: %w", err)
	}

	var rec persistence.AnalysisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.CreditAnalysisResult{}, false, fmt.Errorf("cache decode: %w", err)
	}
	result, err := rec.ToModel()
	if err != nil {
		return model.CreditAnalysisResult{}, false, err
	}
	return result, true, nil
}

// Set stores the record under its analysis ID.
func (c *AnalysisCache) Set(ctx context.Context, result model.CreditAnalysisResult) error {
	data, err := json.Marshal(persistence.FromModel(result))
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, analysisKeyPrefix+result.ID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Ping reports cache connectivity for readiness checks.
func (c *AnalysisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
