package podds

// Market outcome keys. Each mutually exclusive group of keys must sum to 1
// and is always renormalized independently of the other groups.
const (
	KeyHomeWin = "home_win"
	KeyDraw    = "draw"
	KeyAwayWin = "away_win"
	KeyOver25  = "over_2_5"
	KeyUnder25 = "under_2_5"
	KeyBTTSYes = "btts_yes"
	KeyBTTSNo  = "btts_no"
)

// marketGroups lists the mutually exclusive outcome groups.
var marketGroups = [][]string{
	{KeyHomeWin, KeyDraw, KeyAwayWin},
	{KeyOver25, KeyUnder25},
	{KeyBTTSYes, KeyBTTSNo},
}

// MarketKeys returns every outcome key the engine produces, group by group.
func MarketKeys() []string {
	var keys []string
	for _, group := range marketGroups {
		keys = append(keys, group...)
	}
	return keys
}

// ProbabilitySet maps a market outcome key to its probability in [0,1].
type ProbabilitySet map[string]float64

// Clone returns an independent copy of the set.
func (p ProbabilitySet) Clone() ProbabilitySet {
	out := make(ProbabilitySet, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// NormalizeGroups rescales each mutually exclusive group so its present keys
// sum to 1. Groups normalize independently, never against each other. A group
// whose probabilities sum to zero is left untouched rather than divided by
// zero.
func (p ProbabilitySet) NormalizeGroups() {
	for _, group := range marketGroups {
		total := 0.0
		present := 0
		for _, key := range group {
			if v, ok := p[key]; ok {
				total += v
				present++
			}
		}
		if present == 0 || total <= 0 {
			continue
		}
		for _, key := range group {
			if v, ok := p[key]; ok {
				p[key] = v / total
			}
		}
	}
}

// GroupFor returns the mutually exclusive group containing key, or nil.
func GroupFor(key string) []string {
	for _, group := range marketGroups {
		for _, k := range group {
			if k == key {
				return group
			}
		}
	}
	return nil
}

// ConfidenceInterval is a normal-approximation interval around a Monte Carlo
// proportion estimate.
type ConfidenceInterval struct {
	Lo            float64 `json:"lo"`
	Hi            float64 `json:"hi"`
	StandardError float64 `json:"standard_error"`
}

// Scoreline is one simulated correct-score outcome with its empirical
// probability.
type Scoreline struct {
	HomeGoals   int     `json:"home_goals"`
	AwayGoals   int     `json:"away_goals"`
	Probability float64 `json:"probability"`
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
