package usecase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credora/credit-analysis/internal/application/dto"
	"github.com/credora/credit-analysis/internal/domain/service"
)

func TestTrainModelExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("synthetic run trains and publishes", func(t *testing.T) {
		network := service.NewApprovalNetwork(filepath.Join(t.TempDir(), "weights.gob"))
		publisher := &mockPublisher{}
		uc := NewTrainModelUseCase(network, publisher, nil, testLogger())

		resp, err := uc.Execute(ctx, dto.TrainModelRequest{
			Samples: 200, Epochs: 3, BatchSize: 32, Seed: 7,
		})
		require.NoError(t, err)

		assert.Equal(t, 200, resp.Samples)
		assert.Equal(t, 3, resp.Epochs)
		assert.Greater(t, resp.FinalLoss, 0.0)

		require.Len(t, publisher.published, 1)
		assert.Equal(t, "credit.model.trained", publisher.published[0].EventType())
	})

	t.Run("defaults fill unset options", func(t *testing.T) {
		network := service.NewApprovalNetwork(filepath.Join(t.TempDir(), "weights.gob"))
		uc := NewTrainModelUseCase(network, nil, nil, testLogger())

		resp, err := uc.Execute(ctx, dto.TrainModelRequest{Samples: 100, Epochs: 2})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Epochs)
		assert.Equal(t, 100, resp.Samples)
	})

	t.Run("trains from a dataset file", func(t *testing.T) {
		dir := t.TempDir()
		datasetPath := filepath.Join(dir, "dataset.jsonl")
		require.NoError(t, service.SaveDataset(datasetPath, service.GenerateSyntheticDataset(80, 3)))

		network := service.NewApprovalNetwork(filepath.Join(dir, "weights.gob"))
		uc := NewTrainModelUseCase(network, nil, nil, testLogger())

		resp, err := uc.Execute(ctx, dto.TrainModelRequest{
			DatasetPath: datasetPath, Epochs: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, 80, resp.Samples)
	})

	t.Run("missing dataset file is an error", func(t *testing.T) {
		network := service.NewApprovalNetwork(filepath.Join(t.TempDir(), "weights.gob"))
		uc := NewTrainModelUseCase(network, nil, nil, testLogger())

		_, err := uc.Execute(ctx, dto.TrainModelRequest{
			DatasetPath: filepath.Join(t.TempDir(), "absent.jsonl"),
		})
		assert.Error(t, err)
	})

	t.Run("publish failure does not fail the run", func(t *testing.T) {
		network := service.NewApprovalNetwork(filepath.Join(t.TempDir(), "weights.gob"))
		publisher := &mockPublisher{err: assert.AnError}
		uc := NewTrainModelUseCase(network, publisher, nil, testLogger())

		_, err := uc.Execute(ctx, dto.TrainModelRequest{Samples: 50, Epochs: 1})
		assert.NoError(t, err)
	})
}

func TestListProductsExecute(t *testing.T) {
	uc := NewListProductsUseCase(service.NewCreditLimitSolver())

	products := uc.Execute()
	require.Len(t, products, 4)

	assert.Equal(t, "auto_loan", products[0].Type)
	assert.Equal(t, "credit_card", products[1].Type)
	assert.Equal(t, "home_loan", products[2].Type)
	assert.Equal(t, "personal_loan", products[3].Type)

	for _, p := range products {
		assert.Positive(t, p.MaxAmount)
		assert.Positive(t, p.MaxInstallments)
		assert.Positive(t, p.MonthlyRate)
	}
}
