package service

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelFromRules(t *testing.T) {
	tests := []struct {
		name       string
		risk       float64
		score      float64
		debtRatio  float64
		limitRatio float64
		employed   bool
		age        float64
		want       int
	}{
		{"clean profile approves", 0.2, 720, 0.3, 0.5, true, 35, classApproved},
		{"excessive risk rejects", 0.8, 720, 0.3, 0.5, true, 35, classRejected},
		{"low score rejects", 0.2, 450, 0.3, 0.5, true, 35, classRejected},
		{"heavy debt rejects", 0.2, 720, 0.6, 0.5, true, 35, classRejected},
		{"elevated risk pends", 0.5, 720, 0.3, 0.5, true, 35, classPending},
		{"maxed out request pends", 0.2, 720, 0.3, 0.99, true, 35, classPending},
		{"no employment income pends", 0.2, 720, 0.3, 0.5, false, 35, classPending},
		{"advanced age pends", 0.2, 720, 0.3, 0.5, true, 80, classPending},
		{"rejection outranks review", 0.8, 450, 0.6, 1.0, false, 80, classRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := labelFromRules(tt.risk, tt.score, tt.debtRatio, tt.limitRatio, tt.employed, tt.age)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateSyntheticDataset(t *testing.T) {
	t.Run("deterministic per seed", func(t *testing.T) {
		a := GenerateSyntheticDataset(100, 42)
		b := GenerateSyntheticDataset(100, 42)
		assert.Equal(t, a, b)

		c := GenerateSyntheticDataset(100, 43)
		assert.NotEqual(t, a, c)
	})

	t.Run("features are normalised and labels in range", func(t *testing.T) {
		samples := GenerateSyntheticDataset(500, 1)
		require.Len(t, samples, 500)

		for _, s := range samples {
			require.Len(t, s.Features, inputSize)
			for _, f := range s.Features {
				assert.GreaterOrEqual(t, f, 0.0)
				assert.LessOrEqual(t, f, 1.0)
			}
			assert.GreaterOrEqual(t, s.Label, 0)
			assert.Less(t, s.Label, outputSize)
		}
	})

	t.Run("all three classes are represented", func(t *testing.T) {
		samples := GenerateSyntheticDataset(2000, 42)
		seen := map[int]int{}
		for _, s := range samples {
			seen[s.Label]++
		}
		assert.Positive(t, seen[classApproved])
		assert.Positive(t, seen[classPending])
		assert.Positive(t, seen[classRejected])
	})
}

func TestTrain(t *testing.T) {
	t.Run("run completes with a finite loss", func(t *testing.T) {
		network := NewApprovalNetwork("")
		dataset := GenerateSyntheticDataset(300, 42)

		report, err := network.Train(dataset, TrainingOptions{
			Epochs: 5, LearningRate: 0.01, BatchSize: 32, Seed: 42,
		})
		require.NoError(t, err)

		assert.Equal(t, 300, report.Samples)
		assert.Equal(t, 5, report.Epochs)
		assert.False(t, math.IsNaN(report.FinalLoss))
		assert.Greater(t, report.FinalLoss, 0.0)
	})

	t.Run("training changes the predictions", func(t *testing.T) {
		network := NewApprovalNetwork("")
		before, err := network.Predict(weakFeatures())
		require.NoError(t, err)

		_, err = network.Train(GenerateSyntheticDataset(300, 42), TrainingOptions{
			Epochs: 5, LearningRate: 0.01, BatchSize: 32, Seed: 42,
		})
		require.NoError(t, err)

		after, err := network.Predict(weakFeatures())
		require.NoError(t, err)
		assert.NotEqual(t, before, after)
	})

	t.Run("empty dataset is an error", func(t *testing.T) {
		network := NewApprovalNetwork("")
		_, err := network.Train(nil, DefaultTrainingOptions())
		assert.Error(t, err)
	})

	t.Run("malformed sample is an error", func(t *testing.T) {
		network := NewApprovalNetwork("")

		_, err := network.Train([]LabeledSample{{Features: []float64{0.1}, Label: 0}}, DefaultTrainingOptions())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected 10 features")

		_, err = network.Train([]LabeledSample{{Features: make([]float64, inputSize), Label: 5}}, DefaultTrainingOptions())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of range")
	})

	t.Run("invalid options are an error", func(t *testing.T) {
		network := NewApprovalNetwork("")
		dataset := GenerateSyntheticDataset(10, 1)

		for _, opts := range []TrainingOptions{
			{Epochs: 0, LearningRate: 0.01, BatchSize: 32, Seed: 1},
			{Epochs: 5, LearningRate: 0, BatchSize: 32, Seed: 1},
			{Epochs: 5, LearningRate: 0.01, BatchSize: 0, Seed: 1},
		} {
			_, err := network.Train(dataset, opts)
			assert.Error(t, err)
		}
	})
}

func TestDatasetPersistence(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dataset.jsonl")
		want := GenerateSyntheticDataset(50, 9)

		require.NoError(t, SaveDataset(path, want))
		got, err := LoadDataset(path)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := LoadDataset(filepath.Join(t.TempDir(), "absent.jsonl"))
		assert.Error(t, err)
	})
}
