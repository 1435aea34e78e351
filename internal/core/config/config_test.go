package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestAvoidanceValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Avoidance)
	}{
		{"zero time horizon", func(a *Avoidance) { a.TimeHorizon = 0 }},
		{"negative time horizon", func(a *Avoidance) { a.TimeHorizon = -1 }},
		{"zero max neighbors", func(a *Avoidance) { a.MaxNeighbors = 0 }},
		{"zero neighbor distance", func(a *Avoidance) { a.NeighborDistance = 0 }},
		{"negative cell size", func(a *Avoidance) { a.CellSize = -5 }},
		{"smoothing above one", func(a *Avoidance) { a.VelocitySmoothing = 1.5 }},
		{"negative smoothing", func(a *Avoidance) { a.VelocitySmoothing = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultAvoidance()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGridCellSizeFallsBackToNeighborDistance(t *testing.T) {
	cfg := DefaultAvoidance()
	cfg.CellSize = 0
	assert.Equal(t, cfg.NeighborDistance, cfg.GridCellSize())

	cfg.CellSize = 42
	assert.Equal(t, 42.0, cfg.GridCellSize())
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := `
avoidance:
  time_horizon: 2.5
  max_neighbors: 6
simulation:
  agents: 8
  max_speed: 75
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2.5, cfg.Avoidance.TimeHorizon)
	assert.Equal(t, 6, cfg.Avoidance.MaxNeighbors)
	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultNeighborDistance, cfg.Avoidance.NeighborDistance)
	assert.Equal(t, 8, cfg.Simulation.Agents)
	assert.Equal(t, 75.0, cfg.Simulation.MaxSpeed)
}

func TestLoadRejectsInvalidDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("avoidance:\n  time_horizon: -3\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
