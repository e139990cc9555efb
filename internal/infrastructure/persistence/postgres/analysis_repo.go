package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/credora/credit-analysis/internal/domain/model"
	"github.com/credora/credit-analysis/internal/domain/port"
	"github.com/credora/credit-analysis/internal/infrastructure/persistence"
)

// AnalysisRepo implements port.AnalysisRepository on PostgreSQL. Scalar
// columns support lookups; the stage detail lives in a JSONB column.
type AnalysisRepo struct {
	pool *pgxpool.Pool
}

// NewAnalysisRepo creates a new repository backed by PostgreSQL.
func NewAnalysisRepo(pool *pgxpool.Pool) *AnalysisRepo {
	return &AnalysisRepo{pool: pool}
}

// Save persists an analysis (upsert by ID; analyses are immutable, so a
// replay simply rewrites the same row).
func (r *AnalysisRepo) Save(ctx context.Context, result model.CreditAnalysisResult) error {
	rec := persistence.FromModel(result)
	detail, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal analysis detail: %w", err)
	}

	query := `
		INSERT INTO credit_analyses (
			id, request_id, customer_id, status, confidence,
			rejection_reason, approved_amount, detail, analyzed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			status           = EXCLUDED.status,
			confidence       = EXCLUDED.confidence,
			rejection_reason = EXCLUDED.rejection_reason,
			approved_amount  = EXCLUDED.approved_amount,
			detail           = EXCLUDED.detail,
			analyzed_at      = EXCLUDED.analyzed_at
	`
	_, err = r.pool.Exec(ctx, query,
		rec.ID, rec.RequestID, rec.CustomerID, rec.Status, rec.Confidence,
		rec.RejectionReason, rec.ApprovedAmount, detail, rec.AnalyzedAt,
	)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

// FindByID retrieves a single analysis.
func (r *AnalysisRepo) FindByID(ctx context.Context, id string) (model.CreditAnalysisResult, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT detail FROM credit_analyses WHERE id = $1`, id)
	return scanAnalysis(row)
}

// FindByCustomerID retrieves all analyses for a customer, newest first.
func (r *AnalysisRepo) FindByCustomerID(ctx context.Context, customerID string) ([]model.CreditAnalysisResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT detail FROM credit_analyses WHERE customer_id = $1 ORDER BY analyzed_at DESC`,
		customerID)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var results []model.CreditAnalysisResult
	for rows.Next() {
		result, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAnalysis(s scannable) (model.CreditAnalysisResult, error) {
	var detail []byte
	if err := s.Scan(&detail); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CreditAnalysisResult{}, port.ErrAnalysisNotFound
		}
		return model.CreditAnalysisResult{}, fmt.Errorf("scan analysis: %w", err)
	}

	var rec persistence.AnalysisRecord
	if err := json.Unmarshal(detail, &rec); err != nil {
		return model.CreditAnalysisResult{}, fmt.Errorf("unmarshal analysis detail: %w", err)
	}
	return rec.ToModel()
}
