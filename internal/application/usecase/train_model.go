package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/credora/credit-analysis/internal/application/dto"
	"github.com/credora/credit-analysis/internal/domain/event"
	"github.com/credora/credit-analysis/internal/domain/port"
	"github.com/credora/credit-analysis/internal/domain/service"
	"github.com/credora/credit-analysis/pkg/observability"
)

const defaultTrainingSamples = 5000

// TrainModelUseCase retrains the approval network and persists the new
// weights. Inference keeps serving the previous weights until the trained
// set is swapped in.
type TrainModelUseCase struct {
	network   *service.ApprovalNetwork
	publisher port.EventPublisher
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func NewTrainModelUseCase(
	network *service.ApprovalNetwork,
	publisher port.EventPublisher,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *TrainModelUseCase {
	return &TrainModelUseCase{
		network:   network,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute trains on the dataset named in the request, or on freshly drawn
// synthetic samples when no dataset path is given. Weight persistence and
// event publication are best effort.
func (uc *TrainModelUseCase) Execute(ctx context.Context, req dto.TrainModelRequest) (dto.TrainModelResponse, error) {
	opts := service.DefaultTrainingOptions()
	if req.Epochs > 0 {
		opts.Epochs = req.Epochs
	}
	if req.LearningRate > 0 {
		opts.LearningRate = req.LearningRate
	}
	if req.BatchSize > 0 {
		opts.BatchSize = req.BatchSize
	}
	if req.Seed != 0 {
		opts.Seed = req.Seed
	}

	var dataset []service.LabeledSample
	if req.DatasetPath != "" {
		var err error
		dataset, err = service.LoadDataset(req.DatasetPath)
		if err != nil {
			return dto.TrainModelResponse{}, fmt.Errorf("load training dataset: %w", err)
		}
	} else {
		samples := req.Samples
		if samples <= 0 {
			samples = defaultTrainingSamples
		}
		dataset = service.GenerateSyntheticDataset(samples, opts.Seed)
	}

	start := time.Now()
	report, err := uc.network.Train(dataset, opts)
	if err != nil {
		return dto.TrainModelResponse{}, fmt.Errorf("train approval model: %w", err)
	}
	elapsed := time.Since(start)
	uc.metrics.IncTrainingRun()

	uc.logger.Info("approval model trained",
		"samples", report.Samples,
		"epochs", report.Epochs,
		"final_loss", report.FinalLoss,
		"duration", elapsed,
	)

	if err := uc.network.SaveWeights(); err != nil {
		uc.logger.Warn("persist model weights failed", "error", err)
	}
	if uc.publisher != nil {
		trained := event.NewModelTrained("approval-model", report.Samples, report.Epochs, report.FinalLoss)
		if err := uc.publisher.Publish(ctx, trained); err != nil {
			uc.logger.Warn("publish model trained event failed", "error", err)
		}
	}

	return dto.TrainModelResponse{
		Samples:    report.Samples,
		Epochs:     report.Epochs,
		FinalLoss:  report.FinalLoss,
		DurationMS: elapsed.Milliseconds(),
	}, nil
}
