package ml

import (
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// LogisticOptions parameterizes training. The epoch budget is fixed; there
// is no early stopping or cancellation, a run simply goes to completion.
type LogisticOptions struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	L2           float64
	Seed         uint64
}

// DefaultLogisticOptions returns the standard training configuration.
func DefaultLogisticOptions() LogisticOptions {
	return LogisticOptions{
		Epochs:       300,
		BatchSize:    32,
		LearningRate: 0.1,
		L2:           1e-4,
		Seed:         1,
	}
}

// LogisticModel is a trained binary or multinomial logistic regression.
// The artifact holds everything prediction needs: feature order, weights,
// bias, the fitted standardizer and the regularization strength it was
// trained with. Immutable once trained.
type LogisticModel struct {
	FeatureNames []string      `json:"feature_names"`
	Classes      []string      `json:"classes,omitempty"`
	Weights      [][]float64   `json:"weights"`
	Bias         []float64     `json:"bias"`
	Standardizer *Standardizer `json:"standardizer"`
	L2           float64       `json:"l2"`
	TrainedAt    time.Time     `json:"trained_at"`
}

// TrainLogistic fits a binary model on named feature rows and 0/1 labels.
func TrainLogistic(rows []map[string]float64, labels []float64, opts LogisticOptions) (*LogisticModel, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("cannot train on empty input")
	}
	if len(rows) != len(labels) {
		return nil, fmt.Errorf("feature/label length mismatch: %d rows vs %d labels", len(rows), len(labels))
	}
	targets := make([][]float64, len(labels))
	for i, y := range labels {
		targets[i] = []float64{y}
	}
	return train(rows, targets, nil, opts)
}

// TrainMultinomialLogistic fits a softmax model over the given class names.
// Labels are class indices into classes.
func TrainMultinomialLogistic(rows []map[string]float64, labels []int, classes []string, opts LogisticOptions) (*LogisticModel, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("cannot train on empty input")
	}
	if len(rows) != len(labels) {
		return nil, fmt.Errorf("feature/label length mismatch: %d rows vs %d labels", len(rows), len(labels))
	}
	if len(classes) < 2 {
		return nil, fmt.Errorf("multinomial training needs at least 2 classes, got %d", len(classes))
	}
	targets := make([][]float64, len(labels))
	for i, y := range labels {
		if y < 0 || y >= len(classes) {
			return nil, fmt.Errorf("label %d out of range for %d classes", y, len(classes))
		}
		oneHot := make([]float64, len(classes))
		oneHot[y] = 1
		targets[i] = oneHot
	}
	return train(rows, targets, classes, opts)
}

// train runs mini-batch gradient descent on the L2-penalized cross-entropy.
// targets has one column for binary models and a one-hot row per sample for
// multinomial ones.
func train(rows []map[string]float64, targets [][]float64, classes []string, opts LogisticOptions) (*LogisticModel, error) {
	if opts.Epochs <= 0 || opts.BatchSize <= 0 || opts.LearningRate <= 0 {
		return nil, fmt.Errorf("epochs, batch size and learning rate must be positive")
	}

	names := featureNames(rows)
	X := vectorizeRows(rows, names)
	std := FitStandardizer(X)
	X = std.TransformAll(X)

	n := len(X)
	d := len(names)
	k := len(targets[0])

	// Small-variance random initialization keeps the first epochs from
	// saturating the sigmoid; bias starts at zero.
	rng := rand.New(rand.NewSource(opts.Seed))
	weights := make([][]float64, k)
	for c := range weights {
		weights[c] = make([]float64, d)
		for j := range weights[c] {
			weights[c][j] = rng.NormFloat64() * 0.01
		}
	}
	bias := make([]float64, k)

	gradW := make([][]float64, k)
	for c := range gradW {
		gradW[c] = make([]float64, d)
	}
	gradB := make([]float64, k)

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		order := rng.Perm(n)
		for start := 0; start < n; start += opts.BatchSize {
			end := start + opts.BatchSize
			if end > n {
				end = n
			}
			batch := order[start:end]
			m := float64(len(batch))

			for c := range gradW {
				for j := range gradW[c] {
					gradW[c][j] = 0
				}
				gradB[c] = 0
			}

			for _, i := range batch {
				probs := activate(weights, bias, X[i])
				for c := 0; c < k; c++ {
					residual := probs[c] - targets[i][c]
					gradB[c] += residual
					for j := 0; j < d; j++ {
						gradW[c][j] += residual * X[i][j]
					}
				}
			}

			for c := 0; c < k; c++ {
				for j := 0; j < d; j++ {
					weights[c][j] -= opts.LearningRate * (gradW[c][j]/m + opts.L2*weights[c][j])
				}
				bias[c] -= opts.LearningRate * gradB[c] / m
			}
		}
	}

	return &LogisticModel{
		FeatureNames: names,
		Classes:      classes,
		Weights:      weights,
		Bias:         bias,
		Standardizer: std,
		L2:           opts.L2,
		TrainedAt:    time.Now().UTC(),
	}, nil
}

// activate computes class probabilities for one standardized vector:
// a sigmoid for single-output models, softmax otherwise.
func activate(weights [][]float64, bias []float64, x []float64) []float64 {
	k := len(weights)
	z := make([]float64, k)
	for c := 0; c < k; c++ {
		z[c] = bias[c] + floats.Dot(weights[c], x)
	}
	if k == 1 {
		z[0] = sigmoid(z[0])
		return z
	}
	return softmax(z)
}

// Predict returns the positive-class probability for a binary model.
// A nil model means no secondary signal and yields the neutral 0.5.
func (m *LogisticModel) Predict(features map[string]float64) float64 {
	if m == nil || len(m.Weights) == 0 {
		return 0.5
	}
	probs := activate(m.Weights, m.Bias, m.standardized(features))
	return probs[0]
}

// PredictClasses returns the class probability vector of a multinomial
// model, in the order of m.Classes. Nil for missing or binary models.
func (m *LogisticModel) PredictClasses(features map[string]float64) []float64 {
	if m == nil || len(m.Classes) < 2 {
		return nil
	}
	return activate(m.Weights, m.Bias, m.standardized(features))
}

// LogLoss is the mean cross-entropy of a binary model over a labelled set,
// without the L2 term. Used for training diagnostics.
func (m *LogisticModel) LogLoss(rows []map[string]float64, labels []float64) float64 {
	if m == nil || len(rows) == 0 {
		return math.NaN()
	}
	total := 0.0
	for i, row := range rows {
		p := m.Predict(row)
		p = math.Min(math.Max(p, 1e-12), 1-1e-12)
		if labels[i] > 0.5 {
			total += -math.Log(p)
		} else {
			total += -math.Log(1 - p)
		}
	}
	return total / float64(len(rows))
}

func (m *LogisticModel) standardized(features map[string]float64) []float64 {
	x := make([]float64, len(m.FeatureNames))
	for j, name := range m.FeatureNames {
		x[j] = features[name]
	}
	if m.Standardizer != nil && len(m.Standardizer.Mean) == len(x) {
		x = m.Standardizer.Transform(x)
	}
	return x
}

// featureNames collects the sorted union of feature keys across all rows so
// training and prediction agree on column order.
func featureNames(rows []map[string]float64) []string {
	seen := make(map[string]bool)
	for _, row := range rows {
		for name := range row {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func vectorizeRows(rows []map[string]float64, names []string) [][]float64 {
	X := make([][]float64, len(rows))
	for i, row := range rows {
		X[i] = make([]float64, len(names))
		for j, name := range names {
			X[i][j] = row[name]
		}
	}
	return X
}

func sigmoid(z float64) float64 {
	if z > 30 {
		return 1
	}
	if z < -30 {
		return 0
	}
	return 1 / (1 + math.Exp(-z))
}

// softmax is computed against the max logit for numerical stability.
func softmax(z []float64) []float64 {
	max := floats.Max(z)
	out := make([]float64, len(z))
	for i, v := range z {
		out[i] = math.Exp(v - max)
	}
	total := floats.Sum(out)
	for i := range out {
		out[i] /= total
	}
	return out
}
