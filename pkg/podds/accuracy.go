package podds

// MatchOutcome pairs a completed match result with the 1X2 probabilities
// that were predicted for it.
type MatchOutcome struct {
	HomeGoals     int
	AwayGoals     int
	Probabilities ProbabilitySet
}

// resultKey maps a final score to its 1X2 outcome key.
func resultKey(homeGoals, awayGoals int) string {
	switch {
	case homeGoals > awayGoals:
		return KeyHomeWin
	case homeGoals < awayGoals:
		return KeyAwayWin
	default:
		return KeyDraw
	}
}

// AccuracySummary aggregates prediction quality over a set of completed
// matches. Used by offline tuning runs to compare parameter sweeps.
type AccuracySummary struct {
	Matches int

	// ResultAccuracy is the fraction of matches where the highest 1X2
	// probability matched the actual result.
	ResultAccuracy float64

	// BrierScore is the mean squared error of the 1X2 probabilities
	// against the one-hot actual result; lower is better.
	BrierScore float64
}

// EvaluatePredictions scores predicted 1X2 probabilities against actual
// results. Matches without a full 1X2 triple are skipped. Returns nil when
// nothing was scorable.
func EvaluatePredictions(outcomes []MatchOutcome) *AccuracySummary {
	group := GroupFor(KeyHomeWin)
	correct := 0
	brier := 0.0
	scored := 0

	for _, outcome := range outcomes {
		complete := true
		for _, key := range group {
			if _, ok := outcome.Probabilities[key]; !ok {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		scored++

		actual := resultKey(outcome.HomeGoals, outcome.AwayGoals)

		best, bestProb := "", -1.0
		for _, key := range group {
			p := outcome.Probabilities[key]
			if p > bestProb {
				best, bestProb = key, p
			}
			target := 0.0
			if key == actual {
				target = 1.0
			}
			brier += (p - target) * (p - target)
		}
		if best == actual {
			correct++
		}
	}

	if scored == 0 {
		return nil
	}
	return &AccuracySummary{
		Matches:        scored,
		ResultAccuracy: float64(correct) / float64(scored),
		BrierScore:     brier / float64(scored),
	}
}
