package podds

import (
	"fmt"

	"github.com/richard-senior/podds/internal/logger"
)

// Feature keys the request-time pipeline requires in every feature map.
const (
	FeatureLambdaHome = "lambda_home"
	FeatureLambdaAway = "lambda_away"
)

// SecondaryClasses is the class order every 1X2 secondary model is trained
// with. The trainers and the request path must agree on it.
var SecondaryClasses = []string{KeyHomeWin, KeyDraw, KeyAwayWin}

// MatchRequest is one prediction request. Features must carry the goal-rate
// parameters; decimal odds are optional and only feed the implied baseline.
type MatchRequest struct {
	League   string
	Season   string
	Features map[string]float64
	Odds     map[string]float64
	Seed     uint64
}

// Diagnostics records which optional stages fired and with what parameters,
// for audit and downstream edge computation. Artifact failures never surface
// as errors; they show up here as stages that did not fire.
type Diagnostics struct {
	LambdaHome float64 `json:"lambda_home"`
	LambdaAway float64 `json:"lambda_away"`
	Rho        float64 `json:"rho"`

	SecondaryModel string  `json:"secondary_model,omitempty"`
	Blended        bool    `json:"blended"`
	BlendWeight    float64 `json:"blend_weight"`

	TemperatureScaled bool    `json:"temperature_scaled"`
	Temperature       float64 `json:"temperature,omitempty"`

	Calibrated         bool   `json:"calibrated"`
	CalibrationVersion string `json:"calibration_version,omitempty"`
	PolicyReverted1X2  bool   `json:"policy_reverted_1x2"`

	ConvergenceDelta *float64 `json:"convergence_delta,omitempty"`

	// Implied is the overround-free baseline from the supplied odds.
	Implied ProbabilitySet `json:"implied,omitempty"`

	// Stacked combines the market baseline with the goal-rate model.
	// TODO: the stacked set is recorded here but the pipeline continues
	// from the raw goal-rate probabilities; decide whether the stacked set
	// should replace them before blending, then either wire it in or drop
	// the computation.
	Stacked ProbabilitySet `json:"stacked,omitempty"`
}

// Prediction is the full output for one match.
type Prediction struct {
	Probabilities ProbabilitySet                `json:"probabilities"`
	Intervals     map[string]ConfidenceInterval `json:"intervals"`
	Scorelines    []Scoreline                   `json:"scorelines"`

	ExpectedHomeGoals float64 `json:"expected_home_goals"`
	ExpectedAwayGoals float64 `json:"expected_away_goals"`
	PredictedHome     int     `json:"predicted_home_goals"`
	PredictedAway     int     `json:"predicted_away_goals"`

	Diagnostics Diagnostics `json:"diagnostics"`
}

// Predictor runs the probability pipeline: Dixon-Coles base, optional blend
// with a secondary supervised signal, optional temperature scaling, optional
// gated calibration. All state is the config and the injected artifact set;
// requests are independent and safe to run in parallel.
type Predictor struct {
	cfg       *Config
	artifacts *ArtifactSet
}

// NewPredictor builds a predictor. A nil artifact set is wired from the
// config paths.
func NewPredictor(cfg *Config, artifacts *ArtifactSet) *Predictor {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if artifacts == nil {
		artifacts = NewArtifactSet(cfg)
	}
	return &Predictor{cfg: cfg, artifacts: artifacts}
}

// Predict produces the final probability set with intervals, scorelines and
// diagnostics. Only input validation can fail; every artifact problem
// degrades toward the raw Dixon-Coles probabilities.
func (p *Predictor) Predict(req MatchRequest) (*Prediction, error) {
	lambdaHome, okHome := req.Features[FeatureLambdaHome]
	lambdaAway, okAway := req.Features[FeatureLambdaAway]
	if !okHome || !okAway || lambdaHome <= 0 || lambdaAway <= 0 {
		return nil, fmt.Errorf("%w: features must include positive %s and %s",
			ErrGoalRate, FeatureLambdaHome, FeatureLambdaAway)
	}

	rho := p.cfg.DefaultRho
	if table, ok := p.artifacts.Rho.Get(); ok {
		rho = table.ForLeague(req.League)
	}

	matrix, err := NewScoreMatrix(lambdaHome, lambdaAway, rho, p.cfg.MaxGoals)
	if err != nil {
		return nil, err
	}
	base := matrix.Outcomes(p.cfg.OverGoalsThreshold)

	sim, err := Simulate(SimulationRequest{
		LambdaHome: lambdaHome,
		LambdaAway: lambdaAway,
		Samples:    p.cfg.Simulations,
		Seed:       req.Seed,
	}, p.cfg)
	if err != nil {
		return nil, err
	}

	diag := Diagnostics{
		LambdaHome:       lambdaHome,
		LambdaAway:       lambdaAway,
		Rho:              rho,
		ConvergenceDelta: sim.ConvergenceDelta,
	}

	if implied := ImpliedFromOdds(req.Odds); len(implied) > 0 {
		diag.Implied = implied
		diag.Stacked = Blend(base, implied, 0.5)
	}

	current := base.Clone()

	if secondary, name := p.secondarySignal(req.Features); secondary != nil {
		weight, fromLeague := p.cfg.DefaultBlendWeight, false
		if table, ok := p.artifacts.BlendWeights.Get(); ok {
			weight, fromLeague = table.ForLeague(req.League)
		}
		current = Blend(current, secondary, weight)
		diag.Blended = true
		diag.BlendWeight = clamp01(weight)
		diag.SecondaryModel = name
		logger.WithFields(map[string]any{
			"league":      req.League,
			"model":       name,
			"weight":      diag.BlendWeight,
			"league_tune": fromLeague,
		}).Debug("blended secondary signal")
	}

	if temps, ok := p.artifacts.Temperatures.Get(); ok {
		if t, usable := temps.ForLeague(req.League); usable {
			current = ApplyTemperature(current, t)
			diag.TemperatureScaled = true
			diag.Temperature = t
		}
	}

	if curves, ok := p.artifacts.Calibrations.Get(); ok {
		if curve := curves.Select(req.League, req.Season); curve != nil {
			pre := current
			calibrated := curve.Apply(current)
			if policy, ok := p.artifacts.Policy.Get(); ok {
				if !policy.ForLeague(req.League).Calibrate1X2 {
					RevertGroup(calibrated, pre, GroupFor(KeyHomeWin))
					diag.PolicyReverted1X2 = true
				}
			}
			current = calibrated
			diag.Calibrated = true
			diag.CalibrationVersion = curve.Version
		}
	}

	expHome, expAway := matrix.ExpectedGoals()
	predHome, predAway := matrix.MostLikelyScore()

	return &Prediction{
		Probabilities:     current,
		Intervals:         sim.Intervals,
		Scorelines:        sim.Scorelines,
		ExpectedHomeGoals: expHome,
		ExpectedAwayGoals: expAway,
		PredictedHome:     predHome,
		PredictedAway:     predAway,
		Diagnostics:       diag,
	}, nil
}

// secondarySignal asks the optional supervised models for a probability set,
// preferring the stump ensemble over logistic regression. Either artifact
// being absent or malformed just means no signal.
func (p *Predictor) secondarySignal(features map[string]float64) (ProbabilitySet, string) {
	if model, ok := p.artifacts.Stumps.Get(); ok {
		if probs := model.PredictClasses(features); len(probs) > 0 && len(probs) == len(model.Classes) {
			return classProbabilities(model.Classes, probs), "stumps"
		}
	}
	if model, ok := p.artifacts.Logistic.Get(); ok {
		if probs := model.PredictClasses(features); len(probs) > 0 && len(probs) == len(model.Classes) {
			return classProbabilities(model.Classes, probs), "logistic"
		}
	}
	return nil, ""
}

func classProbabilities(classes []string, probs []float64) ProbabilitySet {
	set := make(ProbabilitySet, len(classes))
	for i, class := range classes {
		set[class] = probs[i]
	}
	return set
}
