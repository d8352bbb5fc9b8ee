package podds

import (
	"math"
	"sort"
)

// ApplyTemperature sharpens or flattens the 1X2 triple by replacing each
// probability with p^(1/t) and renormalizing the triple. It applies only
// when all three keys are present; t=1 or a non-positive t is the identity.
// Other market groups are never touched.
func ApplyTemperature(probs ProbabilitySet, t float64) ProbabilitySet {
	if t <= 0 {
		return probs
	}
	home, okH := probs[KeyHomeWin]
	draw, okD := probs[KeyDraw]
	away, okA := probs[KeyAwayWin]
	if !okH || !okD || !okA {
		return probs
	}

	exp := 1.0 / t
	sh := math.Pow(home, exp)
	sd := math.Pow(draw, exp)
	sa := math.Pow(away, exp)
	total := sh + sd + sa
	if total <= 0 {
		return probs
	}

	out := probs.Clone()
	out[KeyHomeWin] = sh / total
	out[KeyDraw] = sd / total
	out[KeyAwayWin] = sa / total
	return out
}

// CurvePoint is one knot of a piecewise-linear calibration mapping from raw
// probability to calibrated probability.
type CurvePoint struct {
	Raw        float64 `yaml:"raw"`
	Calibrated float64 `yaml:"calibrated"`
}

// CalibrationCurve is a season/league-indexed post-hoc correction. An empty
// Season means the curve is league-wide; an empty League makes it global.
// Markets maps an outcome key to its knots; keys without a mapping pass
// through unchanged.
type CalibrationCurve struct {
	League  string                  `yaml:"league"`
	Season  string                  `yaml:"season"`
	Version string                  `yaml:"version"`
	Markets map[string][]CurvePoint `yaml:"markets"`
}

// CurveSet is the on-disk calibration artifact: a list of curves at mixed
// granularities.
type CurveSet struct {
	Curves []CalibrationCurve `yaml:"curves"`
}

// Select picks the correction for a match: the most specific match wins
// (league+season), falling back to the league-wide curve, then the global
// one, then nil.
func (s *CurveSet) Select(league, season string) *CalibrationCurve {
	var leagueWide, global *CalibrationCurve
	for i := range s.Curves {
		c := &s.Curves[i]
		switch {
		case c.League == league && c.Season == season && league != "":
			return c
		case c.League == league && c.Season == "" && league != "":
			leagueWide = c
		case c.League == "" && c.Season == "":
			global = c
		}
	}
	if leagueWide != nil {
		return leagueWide
	}
	return global
}

// Apply maps every outcome key through the curve's correction and
// renormalizes each market group. Keys without knots pass through.
func (c *CalibrationCurve) Apply(probs ProbabilitySet) ProbabilitySet {
	out := probs.Clone()
	for key, p := range out {
		points := c.Markets[key]
		if len(points) == 0 {
			continue
		}
		out[key] = interpolate(points, p)
	}
	out.NormalizeGroups()
	return out
}

// interpolate evaluates the piecewise-linear mapping at raw, clamping to the
// end knots outside their range.
func interpolate(points []CurvePoint, raw float64) float64 {
	sorted := make([]CurvePoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Raw < sorted[j].Raw })

	if raw <= sorted[0].Raw {
		return clamp01(sorted[0].Calibrated)
	}
	last := sorted[len(sorted)-1]
	if raw >= last.Raw {
		return clamp01(last.Calibrated)
	}
	for i := 1; i < len(sorted); i++ {
		lo, hi := sorted[i-1], sorted[i]
		if raw > hi.Raw {
			continue
		}
		span := hi.Raw - lo.Raw
		if span <= 0 {
			return clamp01(hi.Calibrated)
		}
		frac := (raw - lo.Raw) / span
		return clamp01(lo.Calibrated + frac*(hi.Calibrated-lo.Calibrated))
	}
	return clamp01(last.Calibrated)
}

// RevertGroup restores one market group in calibrated to the values it holds
// in original, leaving every other key calibrated. Used by the policy gate
// to suppress 1X2 calibration per league.
func RevertGroup(calibrated, original ProbabilitySet, group []string) {
	for _, key := range group {
		if v, ok := original[key]; ok {
			calibrated[key] = v
		} else {
			delete(calibrated, key)
		}
	}
}
