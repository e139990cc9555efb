package service

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
)

// ---------------------------------------------------------------------------
// approvalMLP – 10→8→3 fully connected network (sigmoid hidden, softmax out)
// ---------------------------------------------------------------------------

const (
	inputSize  = 10
	hiddenSize = 8
	outputSize = 3
)

// Output class indices.
const (
	classApproved = 0
	classPending  = 1
	classRejected = 2
)

// networkWeights is the persistable parameter set. Fields are exported for
// gob encoding; the blob at rest is opaque to everything else.
type networkWeights struct {
	W1 [][]float64 // hiddenSize x inputSize
	B1 []float64
	W2 [][]float64 // outputSize x hiddenSize
	B2 []float64
}

func (w networkWeights) clone() networkWeights {
	c := networkWeights{
		W1: make([][]float64, len(w.W1)),
		B1: append([]float64(nil), w.B1...),
		W2: make([][]float64, len(w.W2)),
		B2: append([]float64(nil), w.B2...),
	}
	for i := range w.W1 {
		c.W1[i] = append([]float64(nil), w.W1[i]...)
	}
	for i := range w.W2 {
		c.W2[i] = append([]float64(nil), w.W2[i]...)
	}
	return c
}

// heuristicWeights returns the hand-authored bootstrap parameters. The sign
// pattern is deliberate business knowledge: score and income inputs push
// toward approval, debt and risk inputs away from it. Trained weights are
// the source of truth; this is only the fallback when no weight file exists.
func heuristicWeights() networkWeights {
	return networkWeights{
		W1: [][]float64{
			{0.8, 0.7, 0.6, -0.5, 0.4, 0.3, -0.4, -0.3, 0.5, 0.6},
			{-0.6, 0.5, 0.6, -0.8, 0.7, 0.4, -0.6, -0.5, 0.3, 0.4},
			{0.4, 0.6, 0.5, -0.3, 0.8, 0.5, -0.3, -0.2, 0.4, 0.5},
			{-0.7, 0.4, 0.5, -0.7, 0.6, 0.3, -0.8, -0.6, 0.2, 0.3},
			{0.5, 0.6, 0.4, -0.4, 0.5, 0.6, -0.5, -0.4, 0.7, 0.8},
			{0.3, 0.4, 0.5, -0.5, 0.4, 0.3, -0.6, -0.7, 0.3, 0.4},
			{0.7, 0.8, 0.6, -0.4, 0.5, 0.4, -0.3, -0.4, 0.4, 0.5},
			{-0.5, 0.5, 0.4, -0.6, 0.6, 0.5, -0.7, -0.5, 0.3, 0.4},
		},
		B1: []float64{0.1, -0.1, 0.2, -0.2, 0.1, -0.1, 0.2, -0.1},
		W2: [][]float64{
			{0.9, -0.7, 0.6, -0.8, 0.7, -0.5, 0.8, -0.6}, // approved
			{0.3, 0.3, 0.3, 0.3, 0.3, 0.3, 0.3, 0.3},     // pending
			{-0.8, 0.9, -0.5, 0.9, -0.6, 0.7, -0.7, 0.8}, // rejected
		},
		B2: []float64{0.2, 0.0, -0.2},
	}
}

// ApprovalNetwork wraps the MLP with concurrency-safe inference and
// exclusive training. Weights are never mutated in place during inference:
// training builds on a copy and swaps it in under the write lock.
type ApprovalNetwork struct {
	mu         sync.RWMutex
	weights    networkWeights
	weightPath string
}

// NewApprovalNetwork creates a network initialised with the heuristic
// weights. weightPath is the fixed location for persisted parameters.
func NewApprovalNetwork(weightPath string) *ApprovalNetwork {
	return &ApprovalNetwork{
		weights:    heuristicWeights(),
		weightPath: weightPath,
	}
}

// Predict runs a forward pass and returns the class probabilities. The
// features slice must have exactly inputSize entries.
func (n *ApprovalNetwork) Predict(features []float64) ([outputSize]float64, error) {
	if len(features) != inputSize {
		return [outputSize]float64{}, fmt.Errorf("expected %d features, got %d", inputSize, len(features))
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	probs, _ := forward(n.weights, features)
	return probs, nil
}

// forward computes softmax(W2·sigmoid(W1·x+b1)+b2), returning the class
// probabilities and the hidden activations (needed by backprop).
func forward(w networkWeights, x []float64) ([outputSize]float64, [hiddenSize]float64) {
	var hidden [hiddenSize]float64
	for j := 0; j < hiddenSize; j++ {
		sum := w.B1[j]
		for i := 0; i < inputSize; i++ {
			sum += w.W1[j][i] * x[i]
		}
		hidden[j] = sigmoid(sum)
	}

	var logits [outputSize]float64
	for k := 0; k < outputSize; k++ {
		sum := w.B2[k]
		for j := 0; j < hiddenSize; j++ {
			sum += w.W2[k][j] * hidden[j]
		}
		logits[k] = sum
	}

	return softmax(logits), hidden
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func softmax(logits [outputSize]float64) [outputSize]float64 {
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	var sum float64
	var out [outputSize]float64
	for k, v := range logits {
		out[k] = math.Exp(v - max)
		sum += out[k]
	}
	for k := range out {
		out[k] /= sum
	}
	return out
}

// argmax returns the index of the largest probability.
func argmax(probs [outputSize]float64) int {
	best := 0
	for k := 1; k < outputSize; k++ {
		if probs[k] > probs[best] {
			best = k
		}
	}
	return best
}

// ---------------------------------------------------------------------------
// Weight persistence
// ---------------------------------------------------------------------------

// SaveWeights persists the current parameters as an opaque gob blob at the
// fixed weight path.
func (n *ApprovalNetwork) SaveWeights() error {
	n.mu.RLock()
	w := n.weights.clone()
	n.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(n.weightPath), 0o755); err != nil {
		return fmt.Errorf("create weight dir: %w", err)
	}
	f, err := os.Create(n.weightPath)
	if err != nil {
		return fmt.Errorf("create weight file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(w); err != nil {
		return fmt.Errorf("encode weights: %w", err)
	}
	return nil
}

// LoadWeights replaces the parameters with the persisted blob. A missing
// file is not an error: the caller keeps the heuristic initialisation and
// should log the condition at warn level.
func (n *ApprovalNetwork) LoadWeights() (bool, error) {
	f, err := os.Open(n.weightPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open weight file: %w", err)
	}
	defer f.Close()

	var w networkWeights
	if err := gob.NewDecoder(f).Decode(&w); err != nil {
		return false, fmt.Errorf("decode weights: %w", err)
	}
	if len(w.W1) != hiddenSize || len(w.B1) != hiddenSize ||
		len(w.W2) != outputSize || len(w.B2) != outputSize {
		return false, fmt.Errorf("weight file %s has wrong shape", n.weightPath)
	}

	n.mu.Lock()
	n.weights = w
	n.mu.Unlock()
	return true, nil
}
