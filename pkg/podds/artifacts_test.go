package podds_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richard-senior/podds/pkg/podds"
)

func writeArtifact(t *testing.T, path, content string, when time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "Failed to write artifact")
	require.NoError(t, os.Chtimes(path, when, when), "Failed to set artifact mtime")
}

func TestCachedReloadsOnModTimeChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rho.yaml")
	base := time.Now().Add(-time.Hour)
	writeArtifact(t, path, "default: 0.1\n", base)

	cfg := podds.DefaultConfig()
	cfg.RhoTablePath = path
	artifacts := podds.NewArtifactSet(cfg)

	table, ok := artifacts.Rho.Get()
	require.True(t, ok, "artifact should load")
	assert.Equal(t, 0.1, table.ForLeague("anything"))

	// Same mtime: the cached value is served even though bytes changed.
	writeArtifact(t, path, "default: -0.05\n", base)
	table, ok = artifacts.Rho.Get()
	require.True(t, ok)
	assert.Equal(t, 0.1, table.ForLeague("anything"))

	// Bumped mtime: the file is re-read and re-parsed.
	writeArtifact(t, path, "default: -0.05\n", base.Add(2*time.Second))
	table, ok = artifacts.Rho.Get()
	require.True(t, ok)
	assert.Equal(t, -0.05, table.ForLeague("anything"))
}

func TestCachedAbsorbsMissingAndMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weights.yaml")

	cfg := podds.DefaultConfig()
	cfg.BlendWeightsPath = path
	artifacts := podds.NewArtifactSet(cfg)

	_, ok := artifacts.BlendWeights.Get()
	assert.False(t, ok, "missing file reports unavailable, not an error")

	writeArtifact(t, path, "default: [not, a, float]\n", time.Now().Add(-time.Hour))
	_, ok = artifacts.BlendWeights.Get()
	assert.False(t, ok, "malformed file reports unavailable")

	// A valid rewrite recovers without a restart.
	writeArtifact(t, path, "default: 0.25\nleagues:\n  premier_league: 0.4\n", time.Now())
	table, ok := artifacts.BlendWeights.Get()
	require.True(t, ok)
	w, fromLeague := table.ForLeague("premier_league")
	assert.Equal(t, 0.4, w)
	assert.True(t, fromLeague)
}

func TestCachedEmptyPathUnavailable(t *testing.T) {
	artifacts := podds.NewArtifactSet(podds.DefaultConfig())
	_, ok := artifacts.Rho.Get()
	assert.False(t, ok, "unconfigured artifact paths are simply absent")
}

func TestWeightTableFallback(t *testing.T) {
	table := &podds.WeightTable{Default: 0.3, Leagues: map[string]float64{"premier_league": 0.45}}

	w, fromLeague := table.ForLeague("premier_league")
	assert.Equal(t, 0.45, w)
	assert.True(t, fromLeague)

	w, fromLeague = table.ForLeague("serie_a")
	assert.Equal(t, 0.3, w, "unknown league takes the table default")
	assert.False(t, fromLeague)
}

func TestTemperatureTableUsability(t *testing.T) {
	table := &podds.TemperatureTable{Leagues: map[string]podds.TemperatureScale{
		"premier_league": {Exponent: 1.2, Enabled: true},
		"serie_a":        {Exponent: 1.1, Enabled: false},
		"la_liga":        {Exponent: 0, Enabled: true},
	}}

	exp, ok := table.ForLeague("premier_league")
	assert.True(t, ok)
	assert.Equal(t, 1.2, exp)

	_, ok = table.ForLeague("serie_a")
	assert.False(t, ok, "disabled entries behave as absent")

	_, ok = table.ForLeague("la_liga")
	assert.False(t, ok, "non-positive exponents behave as absent")

	_, ok = table.ForLeague("ligue_1")
	assert.False(t, ok)
}

func TestPolicyTableDefaultsToCalibrate(t *testing.T) {
	table := &podds.PolicyTable{Leagues: map[string]podds.CalibrationPolicy{
		"premier_league": {Calibrate1X2: false},
	}}

	assert.False(t, table.ForLeague("premier_league").Calibrate1X2)
	assert.True(t, table.ForLeague("serie_a").Calibrate1X2, "absent leagues calibrate everything")
}
