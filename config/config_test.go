package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Overrides(t *testing.T) {
	cfg, err := Parse([]byte(`{"timings":{"removalDebounceMs":9000},"limits":{"maxTrackedElements":8}}`))
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Timings.RemovalDebounceMs)
	assert.Equal(t, 8, cfg.Limits.MaxTrackedElements)
	// Untouched fields keep their defaults.
	assert.Equal(t, Default().Timings.SweepIntervalMs, cfg.Timings.SweepIntervalMs)
}

func TestParse_BrokenFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`{"timings":`))
	assert.Error(t, err)
	assert.Equal(t, Default(), cfg)
}
