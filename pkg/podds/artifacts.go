package podds

import (
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/richard-senior/podds/internal/logger"
	"github.com/richard-senior/podds/pkg/ml"
)

// Cached holds one parsed artifact keyed by its source path and modification
// time. Get re-reads the file only when the modification time moves, so a
// retrained artifact dropped in place takes effect without a restart. An
// absent or malformed file simply reports unavailable; that is the normal
// degraded mode, never an error the request path sees.
type Cached[T any] struct {
	path  string
	parse func([]byte) (T, error)

	mu      sync.Mutex
	loaded  bool
	modTime time.Time
	value   T
}

// NewCached builds a cache entry for path. The parse function must return a
// fully formed value; partially built state is never stored.
func NewCached[T any](path string, parse func([]byte) (T, error)) *Cached[T] {
	return &Cached[T]{path: path, parse: parse}
}

// Get returns the parsed artifact and whether it is available.
func (c *Cached[T]) Get() (T, bool) {
	var zero T
	if c.path == "" {
		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	info, err := os.Stat(c.path)
	if err != nil {
		c.loaded = false
		return zero, false
	}

	if c.loaded && info.ModTime().Equal(c.modTime) {
		return c.value, true
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		logger.Warn("failed to read artifact", c.path, err)
		c.loaded = false
		return zero, false
	}

	value, err := c.parse(data)
	if err != nil {
		logger.Warn("failed to parse artifact", c.path, err)
		c.loaded = false
		return zero, false
	}

	c.loaded = true
	c.modTime = info.ModTime()
	c.value = value
	logger.Debug("artifact loaded", c.path)
	return c.value, true
}

// RhoTable maps a competition to its Dixon-Coles correlation parameter.
type RhoTable struct {
	Default float64            `yaml:"default"`
	Leagues map[string]float64 `yaml:"leagues"`
}

// ForLeague returns the league's rho, falling back to the table default.
func (t *RhoTable) ForLeague(league string) float64 {
	if rho, ok := t.Leagues[league]; ok {
		return rho
	}
	return t.Default
}

// WeightTable maps a league to its ensemble blend weight in [0,1].
type WeightTable struct {
	Default float64            `yaml:"default"`
	Leagues map[string]float64 `yaml:"leagues"`
}

// ForLeague returns the league's weight and whether it came from a
// league-specific entry. Callers clamp; the table only stores.
func (t *WeightTable) ForLeague(league string) (float64, bool) {
	if w, ok := t.Leagues[league]; ok {
		return w, true
	}
	return t.Default, false
}

// TemperatureScale is a per-league exponent applied to the 1X2 triple only.
type TemperatureScale struct {
	Exponent float64 `yaml:"exponent"`
	Enabled  bool    `yaml:"enabled"`
}

// TemperatureTable holds the per-league temperature scales.
type TemperatureTable struct {
	Leagues map[string]TemperatureScale `yaml:"leagues"`
}

// ForLeague returns the league's scale if one exists and is usable.
// Disabled or non-positive exponents behave as if no entry existed.
func (t *TemperatureTable) ForLeague(league string) (float64, bool) {
	scale, ok := t.Leagues[league]
	if !ok || !scale.Enabled || scale.Exponent <= 0 {
		return 0, false
	}
	return scale.Exponent, true
}

// PolicyTable is the per-league calibration policy gate.
type PolicyTable struct {
	Leagues map[string]CalibrationPolicy `yaml:"leagues"`
}

// CalibrationPolicy controls which calibrated markets a league accepts.
// Calibrate1X2=false reverts the 1X2 triple to its pre-calibration values
// while other calibrated markets stand, so a curve can roll out one market
// at a time.
type CalibrationPolicy struct {
	Calibrate1X2 bool `yaml:"calibrate_1x2"`
}

// ForLeague returns the league's policy; absent leagues calibrate everything.
func (t *PolicyTable) ForLeague(league string) CalibrationPolicy {
	if p, ok := t.Leagues[league]; ok {
		return p
	}
	return CalibrationPolicy{Calibrate1X2: true}
}

// ArtifactSet bundles every optional artifact the request path consults.
// It is injected into the Predictor so tests can point individual entries at
// temporary files. Every member may be unavailable; the pipeline degrades to
// the next signal, with raw Dixon-Coles probabilities as the floor.
type ArtifactSet struct {
	Rho          *Cached[*RhoTable]
	BlendWeights *Cached[*WeightTable]
	Temperatures *Cached[*TemperatureTable]
	Calibrations *Cached[*CurveSet]
	Policy       *Cached[*PolicyTable]
	Stumps       *Cached[*ml.MultiStumpModel]
	Logistic     *Cached[*ml.LogisticModel]
}

// NewArtifactSet wires the artifact caches to the paths in cfg.
func NewArtifactSet(cfg *Config) *ArtifactSet {
	return &ArtifactSet{
		Rho:          NewCached(cfg.RhoTablePath, parseYAML[RhoTable]),
		BlendWeights: NewCached(cfg.BlendWeightsPath, parseYAML[WeightTable]),
		Temperatures: NewCached(cfg.TemperaturesPath, parseYAML[TemperatureTable]),
		Calibrations: NewCached(cfg.CalibrationsPath, parseYAML[CurveSet]),
		Policy:       NewCached(cfg.PolicyPath, parseYAML[PolicyTable]),
		Stumps:       NewCached(cfg.StumpModelPath, ml.ParseMultiStumpModel),
		Logistic:     NewCached(cfg.LogisticModelPath, ml.ParseLogisticModel),
	}
}

func parseYAML[T any](data []byte) (*T, error) {
	v := new(T)
	if err := yaml.Unmarshal(data, v); err != nil {
		return nil, err
	}
	return v, nil
}
