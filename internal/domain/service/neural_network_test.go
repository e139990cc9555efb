package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strongFeatures() []float64 {
	// mid age, score 0.85, income near cap, low debt, employed, banked,
	// one inquiry, one loan, low risk, modest limit ratio.
	return []float64{0.2, 0.85, 0.95, 0.1, 1, 1, 0.1, 0.2, 0.1, 0.3}
}

func weakFeatures() []float64 {
	return []float64{0.1, 0.35, 0.2, 0.8, 0, 0, 0.9, 0.8, 0.9, 1.0}
}

func TestPredict(t *testing.T) {
	network := NewApprovalNetwork("")

	t.Run("probabilities form a distribution", func(t *testing.T) {
		probs, err := network.Predict(strongFeatures())
		require.NoError(t, err)

		sum := 0.0
		for _, p := range probs {
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	})

	t.Run("bootstrap weights route strong profiles to review", func(t *testing.T) {
		// The heuristic initialisation is deliberately cautious: even a
		// strong profile lands in pending until the model is trained.
		probs, err := network.Predict(strongFeatures())
		require.NoError(t, err)
		assert.Equal(t, classPending, argmax(probs))
		assert.Greater(t, probs[classPending], probs[classRejected])
	})

	t.Run("wrong feature count is an error", func(t *testing.T) {
		_, err := network.Predict([]float64{0.5, 0.5})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected 10 features")
	})

	t.Run("prediction is deterministic", func(t *testing.T) {
		a, err := network.Predict(strongFeatures())
		require.NoError(t, err)
		b, err := network.Predict(strongFeatures())
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

// The bootstrap matrices encode a fixed sign pattern against the input
// layout (age, score, income, debt, ...): score and income columns pull
// positive, debt pulls negative. Reordering the features without
// re-authoring the matrices would silently break this.
func TestHeuristicWeightSigns(t *testing.T) {
	w := heuristicWeights()
	for i, row := range w.W1 {
		assert.Greater(t, row[1], 0.0, "score column, hidden unit %d", i)
		assert.Greater(t, row[2], 0.0, "income column, hidden unit %d", i)
		assert.Less(t, row[3], 0.0, "debt column, hidden unit %d", i)
	}
}

func TestSoftmax(t *testing.T) {
	t.Run("uniform logits give uniform probabilities", func(t *testing.T) {
		out := softmax([outputSize]float64{2, 2, 2})
		for _, p := range out {
			assert.InDelta(t, 1.0/3.0, p, 1e-12)
		}
	})

	t.Run("shift invariance", func(t *testing.T) {
		a := softmax([outputSize]float64{1, 2, 3})
		b := softmax([outputSize]float64{101, 102, 103})
		for k := range a {
			assert.InDelta(t, a[k], b[k], 1e-12)
		}
	})

	t.Run("large logits stay finite", func(t *testing.T) {
		out := softmax([outputSize]float64{1000, 999, 0})
		sum := 0.0
		for _, p := range out {
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	})
}

func TestArgmax(t *testing.T) {
	assert.Equal(t, 0, argmax([outputSize]float64{0.7, 0.2, 0.1}))
	assert.Equal(t, 1, argmax([outputSize]float64{0.2, 0.5, 0.3}))
	assert.Equal(t, 2, argmax([outputSize]float64{0.1, 0.2, 0.7}))
	assert.Equal(t, 0, argmax([outputSize]float64{0.5, 0.5, 0.0}), "ties keep the lowest index")
}

func TestSigmoid(t *testing.T) {
	assert.InDelta(t, 0.5, sigmoid(0), 1e-12)
	assert.Greater(t, sigmoid(10), 0.9999)
	assert.Less(t, sigmoid(-10), 0.0001)
}

func TestWeightPersistence(t *testing.T) {
	t.Run("round trip preserves predictions", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model", "weights.gob")

		src := NewApprovalNetwork(path)
		_, err := src.Train(GenerateSyntheticDataset(200, 7), TrainingOptions{
			Epochs: 3, LearningRate: 0.01, BatchSize: 32, Seed: 7,
		})
		require.NoError(t, err)
		require.NoError(t, src.SaveWeights())

		dst := NewApprovalNetwork(path)
		loaded, err := dst.LoadWeights()
		require.NoError(t, err)
		assert.True(t, loaded)

		want, err := src.Predict(strongFeatures())
		require.NoError(t, err)
		got, err := dst.Predict(strongFeatures())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("missing file keeps the heuristic weights", func(t *testing.T) {
		network := NewApprovalNetwork(filepath.Join(t.TempDir(), "absent.gob"))
		loaded, err := network.LoadWeights()
		require.NoError(t, err)
		assert.False(t, loaded)

		probs, err := network.Predict(strongFeatures())
		require.NoError(t, err)
		reference := NewApprovalNetwork("")
		want, err := reference.Predict(strongFeatures())
		require.NoError(t, err)
		assert.Equal(t, want, probs)
	})
}
