package podds_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richard-senior/podds/pkg/podds"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := podds.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MaxGoals)
	assert.Equal(t, 10000, cfg.Simulations)
	assert.Equal(t, 12, cfg.TopScorelines)
	assert.Equal(t, 2.5, cfg.OverGoalsThreshold)
	assert.Equal(t, 0.3, cfg.DefaultBlendWeight)

	missing, err := podds.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err, "a missing config file falls back to defaults")
	assert.Equal(t, cfg, missing)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "podds.yaml")
	content := "simulations: 20000\ndefault_rho: -0.05\nrho_table_path: /tmp/rho.yaml\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := podds.LoadConfig(path)
	require.NoError(t, err, "Failed to load config")
	assert.Equal(t, 20000, cfg.Simulations)
	assert.Equal(t, -0.05, cfg.DefaultRho)
	assert.Equal(t, "/tmp/rho.yaml", cfg.RhoTablePath)
	assert.Equal(t, 8, cfg.MaxGoals, "unset keys keep their defaults")
}

func TestLoadConfigRejectsInvalidOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "podds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulations: 10\n"), 0644))

	_, err := podds.LoadConfig(path)
	require.Error(t, err, "a sample count below the floor must be rejected")
}

func TestValidateConfig(t *testing.T) {
	cfg := podds.DefaultConfig()
	require.NoError(t, podds.ValidateConfig(cfg))

	cfg.MaxGoals = 2
	assert.Error(t, podds.ValidateConfig(cfg))

	cfg = podds.DefaultConfig()
	cfg.DefaultBlendWeight = 1.5
	assert.Error(t, podds.ValidateConfig(cfg))

	cfg = podds.DefaultConfig()
	cfg.OverGoalsThreshold = 0
	assert.Error(t, podds.ValidateConfig(cfg))
}
