package ml_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richard-senior/podds/pkg/ml"
)

// separableRows builds a binary problem split cleanly at x=10.
func separableRows() ([]map[string]float64, []float64) {
	var rows []map[string]float64
	var labels []float64
	for i := 0; i < 20; i++ {
		rows = append(rows, map[string]float64{"x": float64(i), "noise": float64(i % 3)})
		if i >= 10 {
			labels = append(labels, 1)
		} else {
			labels = append(labels, 0)
		}
	}
	return rows, labels
}

func TestTrainStumpsLearnsSeparableSplit(t *testing.T) {
	rows, labels := separableRows()
	model, err := ml.TrainStumps(rows, labels, ml.DefaultStumpOptions())
	require.NoError(t, err, "Failed to train stumps")
	require.NotEmpty(t, model.Stumps)

	assert.Greater(t, model.Predict(map[string]float64{"x": 17}), 0.85)
	assert.Less(t, model.Predict(map[string]float64{"x": 2}), 0.15)
}

func TestTrainStumpsInputValidation(t *testing.T) {
	_, err := ml.TrainStumps(nil, nil, ml.DefaultStumpOptions())
	require.Error(t, err, "empty input must be rejected")

	rows, labels := separableRows()
	_, err = ml.TrainStumps(rows, labels[:5], ml.DefaultStumpOptions())
	require.Error(t, err, "length mismatch must be rejected")

	opts := ml.DefaultStumpOptions()
	opts.Rounds = 0
	_, err = ml.TrainStumps(rows, labels, opts)
	require.Error(t, err, "non-positive rounds must be rejected")
}

func TestTrainStumpsConstantLabelsConverge(t *testing.T) {
	rows, _ := separableRows()
	labels := make([]float64, len(rows))
	for i := range labels {
		labels[i] = 1
	}

	model, err := ml.TrainStumps(rows, labels, ml.DefaultStumpOptions())
	require.NoError(t, err)
	// The clipped log-odds init already fits; predictions stay near one.
	assert.Greater(t, model.Predict(map[string]float64{"x": 3}), 0.9)
}

func TestStumpModelNilPredictNeutral(t *testing.T) {
	var model *ml.StumpModel
	assert.Equal(t, 0.5, model.Predict(map[string]float64{"x": 1}))
}

func multiclassRows() ([]map[string]float64, []int) {
	var rows []map[string]float64
	var labels []int
	for i := 0; i < 30; i++ {
		offset := float64(i%6) * 0.1
		rows = append(rows, map[string]float64{"strength": 2.0 + offset})
		labels = append(labels, 0)
		rows = append(rows, map[string]float64{"strength": 0.0 + offset})
		labels = append(labels, 1)
		rows = append(rows, map[string]float64{"strength": -2.0 + offset})
		labels = append(labels, 2)
	}
	return rows, labels
}

func TestTrainMulticlassStumps(t *testing.T) {
	rows, labels := multiclassRows()
	classes := []string{"home_win", "draw", "away_win"}

	model, err := ml.TrainMulticlassStumps(rows, labels, classes, ml.DefaultStumpOptions())
	require.NoError(t, err, "Failed to train multiclass stumps")
	require.Len(t, model.Models, 3)

	probs := model.PredictClasses(map[string]float64{"strength": 2.1})
	require.Len(t, probs, 3)
	total := probs[0] + probs[1] + probs[2]
	assert.InDelta(t, 1.0, total, 1e-9, "softmax output must sum to 1")
	assert.Greater(t, probs[0], probs[1])
	assert.Greater(t, probs[0], probs[2])

	probs = model.PredictClasses(map[string]float64{"strength": -2.1})
	assert.Greater(t, probs[2], probs[0])
}

func TestTrainMulticlassStumpsValidation(t *testing.T) {
	rows, labels := multiclassRows()

	_, err := ml.TrainMulticlassStumps(rows, labels, []string{"only_one"}, ml.DefaultStumpOptions())
	require.Error(t, err, "fewer than two classes must be rejected")

	bad := make([]int, len(labels))
	copy(bad, labels)
	bad[0] = 7
	_, err = ml.TrainMulticlassStumps(rows, bad, []string{"a", "b", "c"}, ml.DefaultStumpOptions())
	require.Error(t, err, "out-of-range labels must be rejected")
}

func TestMultiStumpModelNilPredict(t *testing.T) {
	var model *ml.MultiStumpModel
	assert.Nil(t, model.PredictClasses(map[string]float64{"x": 1}))
}

func TestMultiStumpArtifactRoundTrip(t *testing.T) {
	rows, labels := multiclassRows()
	classes := []string{"home_win", "draw", "away_win"}
	model, err := ml.TrainMulticlassStumps(rows, labels, classes, ml.DefaultStumpOptions())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "stumps.json")
	require.NoError(t, model.Save(path), "Failed to save model")

	loaded, err := ml.LoadMultiStumpModel(path)
	require.NoError(t, err, "Failed to load model")
	assert.Equal(t, classes, loaded.Classes)

	features := map[string]float64{"strength": 1.3}
	assert.Equal(t, model.PredictClasses(features), loaded.PredictClasses(features),
		"a reloaded artifact must reproduce predictions exactly")
}

func TestParseMultiStumpModelRejectsInconsistentArtifact(t *testing.T) {
	_, err := ml.ParseMultiStumpModel([]byte(`{"classes":["a","b","c"],"models":[{"init_score":0}]}`))
	require.Error(t, err, "class/model count mismatch must be rejected")
}
