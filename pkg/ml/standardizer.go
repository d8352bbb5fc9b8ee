// Package ml holds the from-scratch supervised models used as secondary
// prediction signals: gradient-boosted decision stumps and L2-regularized
// logistic regression. Both train offline on historical feature rows and
// serialize to JSON artifacts that fully reconstruct prediction.
package ml

import (
	"gonum.org/v1/gonum/stat"
)

// nearZeroVariance is the sample standard deviation below which a feature is
// treated as constant and left unscaled.
const nearZeroVariance = 1e-9

// Standardizer rescales features to zero mean and unit variance using the
// statistics of the training set. Constant features pass through unchanged.
type Standardizer struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitStandardizer computes per-column mean and standard deviation over the
// training matrix.
func FitStandardizer(X [][]float64) *Standardizer {
	if len(X) == 0 {
		return &Standardizer{}
	}
	cols := len(X[0])
	s := &Standardizer{
		Mean: make([]float64, cols),
		Std:  make([]float64, cols),
	}
	column := make([]float64, len(X))
	for j := 0; j < cols; j++ {
		for i := range X {
			column[i] = X[i][j]
		}
		mean, std := stat.MeanStdDev(column, nil)
		if std < nearZeroVariance {
			// Constant feature: identity transform.
			mean, std = 0, 1
		}
		s.Mean[j] = mean
		s.Std[j] = std
	}
	return s
}

// Transform returns the standardized copy of one feature vector.
func (s *Standardizer) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		if j < len(s.Mean) {
			out[j] = (v - s.Mean[j]) / s.Std[j]
		} else {
			out[j] = v
		}
	}
	return out
}

// TransformAll standardizes every row of a matrix.
func (s *Standardizer) TransformAll(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = s.Transform(row)
	}
	return out
}
