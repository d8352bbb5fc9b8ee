package podds

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/richard-senior/podds/internal/logger"
)

// ErrSampleCount indicates a Monte Carlo request below the minimum sample
// count. Surfaced to the caller before any sampling happens.
var ErrSampleCount = errors.New("sample count below minimum")

// SimulationRequest parameterizes one Monte Carlo run. Identical requests
// must yield bit-identical results: the seed fully determines the generator
// and nothing else feeds it, which is what lets historical predictions be
// re-audited.
type SimulationRequest struct {
	LambdaHome float64
	LambdaAway float64
	Samples    int
	Seed       uint64
}

// SimulationResult holds the empirical view of a match derived purely from
// simulated samples.
type SimulationResult struct {
	Probabilities ProbabilitySet
	Intervals     map[string]ConfidenceInterval
	Scorelines    []Scoreline

	// ConvergenceDelta is |first-half home-win rate - second-half home-win
	// rate|, present only when each half holds enough samples to make the
	// comparison meaningful.
	ConvergenceDelta *float64

	Samples int
	Seed    uint64
}

// z975 is the 97.5% standard-normal quantile used for the 95% intervals.
var z975 = distuv.Normal{Mu: 0, Sigma: 1}.Quantile(0.975)

// Simulate draws Samples independent seeded Poisson scorelines and derives
// empirical market probabilities, intervals, the capped scoreline histogram
// and the convergence diagnostic.
func Simulate(req SimulationRequest, cfg *Config) (*SimulationResult, error) {
	if req.Samples < minSimulations {
		return nil, fmt.Errorf("%w: got %d, need at least %d", ErrSampleCount, req.Samples, minSimulations)
	}
	if req.LambdaHome <= 0 || req.LambdaAway <= 0 {
		return nil, fmt.Errorf("%w: home=%f away=%f", ErrGoalRate, req.LambdaHome, req.LambdaAway)
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	// One shared source: home then away per iteration, so the draw order is
	// part of the reproducibility contract.
	src := rand.NewSource(req.Seed)
	homeDist := distuv.Poisson{Lambda: req.LambdaHome, Src: src}
	awayDist := distuv.Poisson{Lambda: req.LambdaAway, Src: src}

	n := req.Samples
	half := n / 2
	bound := cfg.MaxGoals

	counts := make(map[string]int, 7)
	hist := make([][]int, bound+1)
	for i := range hist {
		hist[i] = make([]int, bound+1)
	}
	firstHalfHomeWins := 0
	secondHalfHomeWins := 0

	for i := 0; i < n; i++ {
		h := int(homeDist.Rand())
		a := int(awayDist.Rand())

		switch {
		case h > a:
			counts[KeyHomeWin]++
			if i < half {
				firstHalfHomeWins++
			} else {
				secondHalfHomeWins++
			}
		case h == a:
			counts[KeyDraw]++
		default:
			counts[KeyAwayWin]++
		}

		if float64(h+a) > cfg.OverGoalsThreshold {
			counts[KeyOver25]++
		} else {
			counts[KeyUnder25]++
		}

		if h > 0 && a > 0 {
			counts[KeyBTTSYes]++
		} else {
			counts[KeyBTTSNo]++
		}

		// Goals are truncated at the cap for the histogram only; market
		// counts above use the raw draw.
		hc, ac := h, a
		if hc > bound {
			hc = bound
		}
		if ac > bound {
			ac = bound
		}
		hist[hc][ac]++
	}

	probs := make(ProbabilitySet, 7)
	intervals := make(map[string]ConfidenceInterval, 7)
	for _, key := range MarketKeys() {
		p := float64(counts[key]) / float64(n)
		probs[key] = p
		se := math.Sqrt(p * (1 - p) / float64(n))
		intervals[key] = ConfidenceInterval{
			Lo:            clamp01(p - z975*se),
			Hi:            clamp01(p + z975*se),
			StandardError: se,
		}
	}

	result := &SimulationResult{
		Probabilities: probs,
		Intervals:     intervals,
		Scorelines:    topScorelines(hist, n, cfg.TopScorelines),
		Samples:       n,
		Seed:          req.Seed,
	}

	// The diagnostic only means anything once both halves are large enough
	// to carry a stable home-win rate of their own.
	if half >= convergenceHalfMin && n-half >= convergenceHalfMin {
		delta := math.Abs(float64(firstHalfHomeWins)/float64(half) - float64(secondHalfHomeWins)/float64(n-half))
		result.ConvergenceDelta = &delta
		if delta > 0.02 {
			logger.WithFields(map[string]any{
				"delta":   delta,
				"samples": n,
			}).Warn("simulation halves disagree on home-win rate")
		}
	}

	return result, nil
}

// topScorelines converts the capped joint histogram into the most frequent
// scorelines. Ordering is probability descending with a fixed scoreline
// tiebreak so identical runs emit identical lists.
func topScorelines(hist [][]int, samples, limit int) []Scoreline {
	var lines []Scoreline
	for h := range hist {
		for a := range hist[h] {
			if hist[h][a] == 0 {
				continue
			}
			lines = append(lines, Scoreline{
				HomeGoals:   h,
				AwayGoals:   a,
				Probability: float64(hist[h][a]) / float64(samples),
			})
		}
	}

	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Probability != lines[j].Probability {
			return lines[i].Probability > lines[j].Probability
		}
		if lines[i].HomeGoals != lines[j].HomeGoals {
			return lines[i].HomeGoals < lines[j].HomeGoals
		}
		return lines[i].AwayGoals < lines[j].AwayGoals
	})

	if len(lines) > limit {
		lines = lines[:limit]
	}
	return lines
}
