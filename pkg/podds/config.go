package podds

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config contains all configurable parameters that influence prediction
// outcomes. This centralizes the magic numbers so tuning runs can sweep them.
type Config struct {
	// === CORE PREDICTION PARAMETERS ===

	// MaxGoals is the inclusive per-side goal cap for the closed-form score
	// grid and the simulated scoreline histogram (default: 8).
	MaxGoals int `yaml:"max_goals"`

	// Simulations is the Monte Carlo sample count per request (default: 10000).
	Simulations int `yaml:"simulations"`

	// TopScorelines is how many scorelines the simulation reports,
	// ordered by empirical probability (default: 12).
	TopScorelines int `yaml:"top_scorelines"`

	// DefaultRho is the Dixon-Coles correlation parameter used when no
	// per-competition entry exists (default: 0).
	DefaultRho float64 `yaml:"default_rho"`

	// Over/under threshold for the totals market (default: 2.5).
	OverGoalsThreshold float64 `yaml:"over_goals_threshold"`

	// === ENSEMBLE & CALIBRATION ===

	// DefaultBlendWeight is the secondary-model blend ratio used when a
	// league has no entry in the ensemble-weight artifact (default: 0.3).
	DefaultBlendWeight float64 `yaml:"default_blend_weight"`

	// === ARTIFACT LOCATIONS ===
	// All artifacts are optional; a missing or malformed file degrades the
	// pipeline to the next available signal.

	RhoTablePath      string `yaml:"rho_table_path"`
	BlendWeightsPath  string `yaml:"blend_weights_path"`
	TemperaturesPath  string `yaml:"temperatures_path"`
	CalibrationsPath  string `yaml:"calibrations_path"`
	PolicyPath        string `yaml:"policy_path"`
	StumpModelPath    string `yaml:"stump_model_path"`
	LogisticModelPath string `yaml:"logistic_model_path"`

	// TrainingDbPath is the sqlite database holding historical feature rows
	// for the offline trainers.
	TrainingDbPath string `yaml:"training_db_path"`
}

// minSimulations is the hard floor on the Monte Carlo sample count. Requests
// below it are invalid input, not a degraded mode.
const minSimulations = 1000

// convergenceHalfMin is the minimum per-half sample count required before the
// convergence diagnostic is reported.
const convergenceHalfMin = 1000

// DefaultConfig returns the standard configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxGoals:           8,
		Simulations:        10000,
		TopScorelines:      12,
		DefaultRho:         0.0,
		OverGoalsThreshold: 2.5,
		DefaultBlendWeight: 0.3,
	}
}

// LoadConfig reads YAML overrides on top of the defaults. A missing path
// returns the defaults unchanged.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateConfig ensures all configuration values are within usable ranges.
func ValidateConfig(cfg *Config) error {
	if cfg.MaxGoals < 3 {
		return fmt.Errorf("MaxGoals should be at least 3 to capture realistic scores, got: %d", cfg.MaxGoals)
	}
	if cfg.Simulations < minSimulations {
		return fmt.Errorf("Simulations should be at least %d for accuracy, got: %d", minSimulations, cfg.Simulations)
	}
	if cfg.TopScorelines < 1 {
		return fmt.Errorf("TopScorelines must be positive, got: %d", cfg.TopScorelines)
	}
	if cfg.DefaultBlendWeight < 0 || cfg.DefaultBlendWeight > 1 {
		return fmt.Errorf("DefaultBlendWeight must be between 0.0 and 1.0, got: %f", cfg.DefaultBlendWeight)
	}
	if cfg.OverGoalsThreshold <= 0 {
		return fmt.Errorf("OverGoalsThreshold must be positive, got: %f", cfg.OverGoalsThreshold)
	}
	return nil
}
