package service

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
)

// LabeledSample is one training example: a normalised feature vector and
// its class index (0 approved, 1 pending, 2 rejected).
type LabeledSample struct {
	Features []float64 `json:"features"`
	Label    int       `json:"label"`
}

// TrainingOptions bound a training run.
type TrainingOptions struct {
	Epochs       int
	LearningRate float64
	BatchSize    int
	Seed         int64
}

// DefaultTrainingOptions mirror the profile the model ships with.
func DefaultTrainingOptions() TrainingOptions {
	return TrainingOptions{
		Epochs:       50,
		LearningRate: 0.01,
		BatchSize:    32,
		Seed:         42,
	}
}

// TrainingReport summarises a completed run.
type TrainingReport struct {
	Samples   int     `json:"samples"`
	Epochs    int     `json:"epochs"`
	FinalLoss float64 `json:"final_loss"`
}

// GenerateSyntheticDataset draws count labeled samples from uniform raw
// distributions and labels them with the deterministic policy rules. The
// same seed always yields the same dataset.
func GenerateSyntheticDataset(count int, seed int64) []LabeledSample {
	rng := rand.New(rand.NewSource(seed))
	samples := make([]LabeledSample, 0, count)

	for i := 0; i < count; i++ {
		age := 18 + rng.Float64()*82
		score := 300 + rng.Float64()*600
		income := 500 + rng.Float64()*49500
		debtRatio := rng.Float64()
		employed := rng.Float64() < 0.8
		hasBank := rng.Float64() < 0.9
		inquiries := float64(rng.Intn(16))
		loans := float64(rng.Intn(7))
		risk := rng.Float64()
		limitRatio := math.Min(rng.Float64()*1.2, 1.0)

		features := []float64{
			normAge(age),
			normScore(score),
			normIncome(income),
			debtRatio,
			boolFeature(employed),
			boolFeature(hasBank),
			normInquiries(inquiries),
			normLoans(loans),
			risk,
			limitRatio,
		}
		samples = append(samples, LabeledSample{
			Features: features,
			Label:    labelFromRules(risk, score, debtRatio, limitRatio, employed, age),
		})
	}
	return samples
}

// labelFromRules is the policy oracle the synthetic data is labeled with.
// Rejection dominates, then review, then approval.
func labelFromRules(risk, score, debtRatio, limitRatio float64, employed bool, age float64) int {
	if risk > 0.75 || score < 500 || debtRatio > 0.55 {
		return classRejected
	}
	if risk >= 0.45 || limitRatio > 0.95 || !employed || age > 75 {
		return classPending
	}
	return classApproved
}

// adamState holds the first and second moment estimates for one parameter
// tensor, stored flat.
type adamState struct {
	m []float64
	v []float64
}

func newAdamState(n int) adamState {
	return adamState{m: make([]float64, n), v: make([]float64, n)}
}

const (
	adamBeta1 = 0.9
	adamBeta2 = 0.999
	adamEps   = 1e-8
)

// step applies one Adam update to params given grads, using the bias
// correction for timestep t (1-based).
func (s adamState) step(params, grads []float64, lr float64, t int) {
	c1 := 1 - math.Pow(adamBeta1, float64(t))
	c2 := 1 - math.Pow(adamBeta2, float64(t))
	for i, g := range grads {
		s.m[i] = adamBeta1*s.m[i] + (1-adamBeta1)*g
		s.v[i] = adamBeta2*s.v[i] + (1-adamBeta2)*g*g
		mHat := s.m[i] / c1
		vHat := s.v[i] / c2
		params[i] -= lr * mHat / (math.Sqrt(vHat) + adamEps)
	}
}

// Train fits the network to the dataset with minibatch Adam on the
// cross-entropy loss. Inference is blocked only for the final swap, not for
// the whole run. Returns the report with the mean loss of the last epoch.
func (n *ApprovalNetwork) Train(dataset []LabeledSample, opts TrainingOptions) (TrainingReport, error) {
	if len(dataset) == 0 {
		return TrainingReport{}, fmt.Errorf("empty training dataset")
	}
	for i, s := range dataset {
		if len(s.Features) != inputSize {
			return TrainingReport{}, fmt.Errorf("sample %d: expected %d features, got %d", i, inputSize, len(s.Features))
		}
		if s.Label < 0 || s.Label >= outputSize {
			return TrainingReport{}, fmt.Errorf("sample %d: label %d out of range", i, s.Label)
		}
	}
	if opts.Epochs <= 0 || opts.LearningRate <= 0 || opts.BatchSize <= 0 {
		return TrainingReport{}, fmt.Errorf("invalid training options: %+v", opts)
	}

	n.mu.RLock()
	w := n.weights.clone()
	n.mu.RUnlock()

	// Flat views over the parameter tensors so the optimizer state lines up.
	flatW1 := flatten(w.W1)
	flatW2 := flatten(w.W2)
	stW1 := newAdamState(len(flatW1))
	stB1 := newAdamState(len(w.B1))
	stW2 := newAdamState(len(flatW2))
	stB2 := newAdamState(len(w.B2))

	rng := rand.New(rand.NewSource(opts.Seed))
	order := make([]int, len(dataset))
	for i := range order {
		order[i] = i
	}

	var finalLoss float64
	step := 0
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		var epochLoss float64
		for start := 0; start < len(order); start += opts.BatchSize {
			end := start + opts.BatchSize
			if end > len(order) {
				end = len(order)
			}
			batch := order[start:end]

			gW1 := make([]float64, len(flatW1))
			gB1 := make([]float64, len(w.B1))
			gW2 := make([]float64, len(flatW2))
			gB2 := make([]float64, len(w.B2))

			for _, idx := range batch {
				s := dataset[idx]
				probs, hidden := forward(w, s.Features)
				epochLoss += -math.Log(math.Max(probs[s.Label], 1e-12))

				// Softmax + cross-entropy collapses to probs - onehot.
				var dOut [outputSize]float64
				for k := range dOut {
					dOut[k] = probs[k]
					if k == s.Label {
						dOut[k] -= 1
					}
				}
				for k := 0; k < outputSize; k++ {
					for j := 0; j < hiddenSize; j++ {
						gW2[k*hiddenSize+j] += dOut[k] * hidden[j]
					}
					gB2[k] += dOut[k]
				}
				for j := 0; j < hiddenSize; j++ {
					var dHidden float64
					for k := 0; k < outputSize; k++ {
						dHidden += dOut[k] * w.W2[k][j]
					}
					dHidden *= hidden[j] * (1 - hidden[j])
					for i := 0; i < inputSize; i++ {
						gW1[j*inputSize+i] += dHidden * s.Features[i]
					}
					gB1[j] += dHidden
				}
			}

			scale := 1 / float64(len(batch))
			for i := range gW1 {
				gW1[i] *= scale
			}
			for i := range gB1 {
				gB1[i] *= scale
			}
			for i := range gW2 {
				gW2[i] *= scale
			}
			for i := range gB2 {
				gB2[i] *= scale
			}

			step++
			stW1.step(flatW1, gW1, opts.LearningRate, step)
			stB1.step(w.B1, gB1, opts.LearningRate, step)
			stW2.step(flatW2, gW2, opts.LearningRate, step)
			stB2.step(w.B2, gB2, opts.LearningRate, step)
		}
		finalLoss = epochLoss / float64(len(dataset))
	}

	n.mu.Lock()
	n.weights = w
	n.mu.Unlock()

	return TrainingReport{
		Samples:   len(dataset),
		Epochs:    opts.Epochs,
		FinalLoss: finalLoss,
	}, nil
}

// flatten returns a view of rows as one slice sharing the backing arrays,
// so optimizer updates through the flat view mutate the matrix in place.
func flatten(rows [][]float64) []float64 {
	cols := len(rows[0])
	flat := make([]float64, 0, len(rows)*cols)
	for _, r := range rows {
		flat = append(flat, r...)
	}
	// Copy back references: rebuild rows over the contiguous slice.
	for i := range rows {
		rows[i] = flat[i*cols : (i+1)*cols]
	}
	return flat
}

// SaveDataset writes samples as JSON lines, one object per line.
func SaveDataset(path string, samples []LabeledSample) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	for _, s := range samples {
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode sample: %w", err)
		}
	}
	return bw.Flush()
}

// LoadDataset reads a JSON-lines dataset written by SaveDataset.
func LoadDataset(path string) ([]LabeledSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	var samples []LabeledSample
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var s LabeledSample
		if err := json.Unmarshal(sc.Bytes(), &s); err != nil {
			return nil, fmt.Errorf("dataset line %d: %w", line, err)
		}
		samples = append(samples, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return samples, nil
}
