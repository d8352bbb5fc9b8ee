package podds

// Blend merges a secondary model's probabilities into the base set with
// weight w in [0,1]: 0 keeps the base untouched, 1 lets the secondary win
// every overlapping key. Out-of-range weights are clamped, never rejected.
// Keys only the secondary knows are inserted directly. Because the secondary
// usually covers a subset of keys, each mutually exclusive group is
// renormalized afterwards to guard against drift from partial-key blending.
func Blend(base, secondary ProbabilitySet, w float64) ProbabilitySet {
	if w < 0 {
		w = 0
	}
	if w > 1 {
		w = 1
	}

	out := base.Clone()
	for key, sec := range secondary {
		if b, ok := out[key]; ok {
			out[key] = (1-w)*b + w*sec
		} else {
			out[key] = sec
		}
	}
	out.NormalizeGroups()
	return out
}
