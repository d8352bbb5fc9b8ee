package podds

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrGoalRate indicates a missing or non-positive expected-goals parameter.
// Goal rates are per-request input and must be validated by the caller; the
// grid itself never guesses a replacement.
var ErrGoalRate = errors.New("goal rate parameters must be positive")

// ScoreMatrix is the joint probability grid over (home goals, away goals) up
// to an inclusive cap, built from independent Poisson probabilities with the
// Dixon-Coles low-score correction applied, then renormalized so the
// truncated grid sums to 1.
type ScoreMatrix struct {
	LambdaHome float64
	LambdaAway float64
	Rho        float64
	MaxGoals   int

	grid [][]float64
}

// NewScoreMatrix builds the corrected, normalized score grid. Lambdas must be
// positive; rho may be zero, which reduces to independent Poissons.
func NewScoreMatrix(lambdaHome, lambdaAway, rho float64, maxGoals int) (*ScoreMatrix, error) {
	if lambdaHome <= 0 || lambdaAway <= 0 {
		return nil, fmt.Errorf("%w: home=%f away=%f", ErrGoalRate, lambdaHome, lambdaAway)
	}
	if maxGoals < 1 {
		return nil, fmt.Errorf("goal cap must be at least 1, got: %d", maxGoals)
	}

	homePois := distuv.Poisson{Lambda: lambdaHome}
	awayPois := distuv.Poisson{Lambda: lambdaAway}

	grid := make([][]float64, maxGoals+1)
	total := 0.0
	for h := 0; h <= maxGoals; h++ {
		grid[h] = make([]float64, maxGoals+1)
		ph := homePois.Prob(float64(h))
		for a := 0; a <= maxGoals; a++ {
			p := ph * awayPois.Prob(float64(a)) * tau(h, a, lambdaHome, lambdaAway, rho)
			if p < 0 {
				p = 0
			}
			grid[h][a] = p
			total += p
		}
	}

	// Renormalize the truncated grid so downstream market groups sum to 1.
	if total > 0 {
		for h := range grid {
			for a := range grid[h] {
				grid[h][a] /= total
			}
		}
	}

	return &ScoreMatrix{
		LambdaHome: lambdaHome,
		LambdaAway: lambdaAway,
		Rho:        rho,
		MaxGoals:   maxGoals,
		grid:       grid,
	}, nil
}

// tau is the Dixon-Coles correction factor. Only the four low-score cells are
// adjusted; every other scoreline keeps its independent-Poisson probability.
func tau(homeGoals, awayGoals int, lambdaHome, lambdaAway, rho float64) float64 {
	switch {
	case homeGoals == 0 && awayGoals == 0:
		return 1 - lambdaHome*lambdaAway*rho
	case homeGoals == 1 && awayGoals == 0:
		return 1 + lambdaAway*rho
	case homeGoals == 0 && awayGoals == 1:
		return 1 + lambdaHome*rho
	case homeGoals == 1 && awayGoals == 1:
		return 1 - rho
	default:
		return 1.0
	}
}

// Prob returns the probability of an exact scoreline, zero beyond the cap.
func (m *ScoreMatrix) Prob(homeGoals, awayGoals int) float64 {
	if homeGoals < 0 || awayGoals < 0 || homeGoals > m.MaxGoals || awayGoals > m.MaxGoals {
		return 0
	}
	return m.grid[homeGoals][awayGoals]
}

// Outcomes aggregates the grid into the full market probability set:
// 1X2 from the goal-difference sign, over/under from the total-goals
// threshold, BTTS from the both-sides-scored indicator.
func (m *ScoreMatrix) Outcomes(overThreshold float64) ProbabilitySet {
	probs := ProbabilitySet{
		KeyHomeWin: 0, KeyDraw: 0, KeyAwayWin: 0,
		KeyOver25: 0, KeyUnder25: 0,
		KeyBTTSYes: 0, KeyBTTSNo: 0,
	}
	for h := 0; h <= m.MaxGoals; h++ {
		for a := 0; a <= m.MaxGoals; a++ {
			p := m.grid[h][a]

			switch {
			case h > a:
				probs[KeyHomeWin] += p
			case h == a:
				probs[KeyDraw] += p
			default:
				probs[KeyAwayWin] += p
			}

			if float64(h+a) > overThreshold {
				probs[KeyOver25] += p
			} else {
				probs[KeyUnder25] += p
			}

			if h > 0 && a > 0 {
				probs[KeyBTTSYes] += p
			} else {
				probs[KeyBTTSNo] += p
			}
		}
	}
	return probs
}

// ExpectedGoals returns the expectation of each side's goals under the
// corrected, truncated grid.
func (m *ScoreMatrix) ExpectedGoals() (home, away float64) {
	for h := 0; h <= m.MaxGoals; h++ {
		for a := 0; a <= m.MaxGoals; a++ {
			p := m.grid[h][a]
			home += float64(h) * p
			away += float64(a) * p
		}
	}
	return home, away
}

// MostLikelyScore returns the modal scoreline of the grid. Ties resolve to
// the lower-scoring cell because iteration runs low to high.
func (m *ScoreMatrix) MostLikelyScore() (homeGoals, awayGoals int) {
	best := -1.0
	for h := 0; h <= m.MaxGoals; h++ {
		for a := 0; a <= m.MaxGoals; a++ {
			if m.grid[h][a] > best {
				best = m.grid[h][a]
				homeGoals, awayGoals = h, a
			}
		}
	}
	return homeGoals, awayGoals
}
