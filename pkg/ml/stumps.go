package ml

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Stump is a depth-1 decision split: rows with the feature at or below the
// threshold take the left value, the rest take the right value.
type Stump struct {
	Feature    string  `json:"feature"`
	Threshold  float64 `json:"threshold"`
	LeftValue  float64 `json:"left_value"`
	RightValue float64 `json:"right_value"`
}

// StumpOptions parameterizes boosting.
type StumpOptions struct {
	// Rounds is the maximum number of stumps; training may stop earlier
	// when no valid split remains.
	Rounds int
	// LearningRate shrinks each stump's contribution.
	LearningRate float64
	// MaxBins caps candidate thresholds per feature; above it, midpoints
	// are sampled at a stride.
	MaxBins int
	// MinLeaf rejects splits leaving fewer rows on either side.
	MinLeaf int
}

// DefaultStumpOptions returns the standard boosting configuration.
func DefaultStumpOptions() StumpOptions {
	return StumpOptions{
		Rounds:       100,
		LearningRate: 0.1,
		MaxBins:      32,
		MinLeaf:      5,
	}
}

// StumpModel is a trained gradient-boosted stump ensemble for binary
// classification. Prediction replays the additive score from the stored
// init and sigmoid-transforms it. Immutable once trained.
type StumpModel struct {
	InitScore    float64   `json:"init_score"`
	LearningRate float64   `json:"learning_rate"`
	Stumps       []Stump   `json:"stumps"`
	TrainedAt    time.Time `json:"trained_at"`
}

// MultiStumpModel is the 1X2 multiclass ensemble: three independent
// one-vs-rest binary boosters combined at inference by a softmax over their
// raw scores. This is a deliberate simplification over a joint multinomial
// booster, and trained artifacts on disk assume exactly this inference path.
type MultiStumpModel struct {
	Classes   []string      `json:"classes"`
	Models    []*StumpModel `json:"models"`
	TrainedAt time.Time     `json:"trained_at"`
}

// TrainStumps fits a binary booster on named feature rows and 0/1 labels.
func TrainStumps(rows []map[string]float64, labels []float64, opts StumpOptions) (*StumpModel, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("cannot train on empty input")
	}
	if len(rows) != len(labels) {
		return nil, fmt.Errorf("feature/label length mismatch: %d rows vs %d labels", len(rows), len(labels))
	}
	if opts.Rounds <= 0 || opts.LearningRate <= 0 || opts.MaxBins <= 0 || opts.MinLeaf <= 0 {
		return nil, fmt.Errorf("rounds, learning rate, max bins and min leaf must be positive")
	}

	names := featureNames(rows)
	n := len(rows)

	// Init at the log-odds of the overall positive rate, clipped away from
	// the degenerate all-one/all-zero endpoints.
	positive := 0.0
	for _, y := range labels {
		positive += y
	}
	rate := positive / float64(n)
	rate = math.Min(math.Max(rate, 1e-6), 1-1e-6)
	init := math.Log(rate / (1 - rate))

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = init
	}

	model := &StumpModel{
		InitScore:    init,
		LearningRate: opts.LearningRate,
		TrainedAt:    time.Now().UTC(),
	}

	residuals := make([]float64, n)
	for round := 0; round < opts.Rounds; round++ {
		for i := range residuals {
			residuals[i] = labels[i] - sigmoid(scores[i])
		}

		best, ok := bestSplit(rows, residuals, names, opts)
		if !ok {
			break
		}
		model.Stumps = append(model.Stumps, best)

		for i, row := range rows {
			if row[best.Feature] <= best.Threshold {
				scores[i] += opts.LearningRate * best.LeftValue
			} else {
				scores[i] += opts.LearningRate * best.RightValue
			}
		}
	}

	return model, nil
}

// bestSplit scans every (feature, threshold) candidate and returns the stump
// minimizing total squared deviation of residuals from the side means.
func bestSplit(rows []map[string]float64, residuals []float64, names []string, opts StumpOptions) (Stump, bool) {
	bestSSE := math.Inf(1)
	var best Stump
	found := false

	for _, name := range names {
		for _, threshold := range candidateThresholds(rows, name, opts.MaxBins) {
			var leftSum, rightSum float64
			var leftN, rightN int
			for i, row := range rows {
				if row[name] <= threshold {
					leftSum += residuals[i]
					leftN++
				} else {
					rightSum += residuals[i]
					rightN++
				}
			}
			if leftN < opts.MinLeaf || rightN < opts.MinLeaf {
				continue
			}

			leftMean := leftSum / float64(leftN)
			rightMean := rightSum / float64(rightN)

			sse := 0.0
			for i, row := range rows {
				var diff float64
				if row[name] <= threshold {
					diff = residuals[i] - leftMean
				} else {
					diff = residuals[i] - rightMean
				}
				sse += diff * diff
			}

			if sse < bestSSE {
				bestSSE = sse
				best = Stump{
					Feature:    name,
					Threshold:  threshold,
					LeftValue:  leftMean,
					RightValue: rightMean,
				}
				found = true
			}
		}
	}

	return best, found
}

// candidateThresholds returns midpoints between sorted unique feature
// values. When the unique count exceeds maxBins the midpoints are sampled at
// a stride instead of being enumerated exhaustively.
func candidateThresholds(rows []map[string]float64, feature string, maxBins int) []float64 {
	seen := make(map[float64]bool, len(rows))
	for _, row := range rows {
		seen[row[feature]] = true
	}
	values := make([]float64, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	if len(values) < 2 {
		return nil
	}
	sort.Float64s(values)

	midpoints := make([]float64, len(values)-1)
	for i := 0; i < len(values)-1; i++ {
		midpoints[i] = (values[i] + values[i+1]) / 2
	}

	if len(midpoints) <= maxBins {
		return midpoints
	}
	stride := (len(midpoints) + maxBins - 1) / maxBins
	sampled := make([]float64, 0, maxBins)
	for i := 0; i < len(midpoints); i += stride {
		sampled = append(sampled, midpoints[i])
	}
	return sampled
}

// Score replays the additive raw score for a feature vector.
func (m *StumpModel) Score(features map[string]float64) float64 {
	score := m.InitScore
	for _, s := range m.Stumps {
		if features[s.Feature] <= s.Threshold {
			score += m.LearningRate * s.LeftValue
		} else {
			score += m.LearningRate * s.RightValue
		}
	}
	return score
}

// Predict returns the positive-class probability. A nil model means no
// secondary signal and yields the neutral 0.5.
func (m *StumpModel) Predict(features map[string]float64) float64 {
	if m == nil {
		return 0.5
	}
	return sigmoid(m.Score(features))
}

// TrainMulticlassStumps fits one one-vs-rest binary booster per class.
// Labels are class indices into classes.
func TrainMulticlassStumps(rows []map[string]float64, labels []int, classes []string, opts StumpOptions) (*MultiStumpModel, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("cannot train on empty input")
	}
	if len(rows) != len(labels) {
		return nil, fmt.Errorf("feature/label length mismatch: %d rows vs %d labels", len(rows), len(labels))
	}
	if len(classes) < 2 {
		return nil, fmt.Errorf("multiclass training needs at least 2 classes, got %d", len(classes))
	}

	model := &MultiStumpModel{
		Classes:   classes,
		Models:    make([]*StumpModel, len(classes)),
		TrainedAt: time.Now().UTC(),
	}

	binary := make([]float64, len(labels))
	for c := range classes {
		for i, y := range labels {
			if y < 0 || y >= len(classes) {
				return nil, fmt.Errorf("label %d out of range for %d classes", y, len(classes))
			}
			if y == c {
				binary[i] = 1
			} else {
				binary[i] = 0
			}
		}
		trained, err := TrainStumps(rows, binary, opts)
		if err != nil {
			return nil, fmt.Errorf("training booster for class %s: %w", classes[c], err)
		}
		model.Models[c] = trained
	}

	return model, nil
}

// PredictClasses combines the per-class boosters with a softmax over their
// raw additive scores, not over independent sigmoids. Nil for a missing
// model.
func (m *MultiStumpModel) PredictClasses(features map[string]float64) []float64 {
	if m == nil || len(m.Models) == 0 {
		return nil
	}
	scores := make([]float64, len(m.Models))
	for i, sub := range m.Models {
		scores[i] = sub.Score(features)
	}
	return softmax(scores)
}
