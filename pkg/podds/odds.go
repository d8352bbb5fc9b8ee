package podds

// ImpliedFromOdds converts decimal odds to fair probabilities by stripping
// the bookmaker's overround: probability_i = (1/odds_i) / sum(1/odds_j),
// with the sum taken over each mutually exclusive market group separately.
// Entries with odds below 1.0 carry no information and are skipped. A group
// whose inverse-odds sum is zero is dropped rather than divided by zero.
func ImpliedFromOdds(odds map[string]float64) ProbabilitySet {
	inv := make(map[string]float64, len(odds))
	for key, o := range odds {
		if o < 1.0 {
			continue
		}
		inv[key] = 1.0 / o
	}

	probs := make(ProbabilitySet)
	for _, group := range marketGroups {
		total := 0.0
		for _, key := range group {
			total += inv[key]
		}
		if total <= 0 {
			continue
		}
		for _, key := range group {
			if v, ok := inv[key]; ok {
				probs[key] = v / total
			}
		}
	}
	return probs
}
