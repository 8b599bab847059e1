package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 100, cfg.Sample.SamplesPerCurve)
	assert.Equal(t, 0.5, cfg.Sample.DistanceThreshold)
	assert.True(t, cfg.Sample.FlipY)
	assert.Equal(t, uint8(128), cfg.Binarize.Threshold)
	assert.Equal(t, TracerPotrace, cfg.Trace.Tracer)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero samples", func(c *Config) { c.Sample.SamplesPerCurve = 0 }},
		{"zero distance", func(c *Config) { c.Sample.DistanceThreshold = 0 }},
		{"negative distance", func(c *Config) { c.Sample.DistanceThreshold = -1 }},
		{"zero scale", func(c *Config) { c.Sample.Scale = 0 }},
		{"zero upscale", func(c *Config) { c.Binarize.Upscale = 0 }},
		{"no workers", func(c *Config) { c.Workers = 0 }},
		{"negative turd size", func(c *Config) { c.Trace.TurdSize = -1 }},
		{"negative preview margin", func(c *Config) { c.Preview.Margin = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cadtrace.toml")
	data := `workers = 3

[sample]
samples_per_curve = 40
distance_threshold = 0.1
flip_y = false

[trace]
tracer = "gotrace"

[output]
layer = "TRACE"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg := DefaultConfig()
	require.NoError(t, LoadConfigFile(path, &cfg))

	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 40, cfg.Sample.SamplesPerCurve)
	assert.Equal(t, 0.1, cfg.Sample.DistanceThreshold)
	assert.False(t, cfg.Sample.FlipY)
	assert.Equal(t, TracerGotrace, cfg.Trace.Tracer)
	assert.Equal(t, "TRACE", cfg.Output.Layer)

	// Untouched keys keep their defaults.
	assert.Equal(t, 1.0, cfg.Sample.Scale)
	assert.Equal(t, "potrace", cfg.Trace.PotracePath)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFileErrors(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.toml")
	require.NoError(t, os.WriteFile(unknown, []byte("[sample]\nsamples = 40\n"), 0644))
	cfg := DefaultConfig()
	assert.ErrorIs(t, LoadConfigFile(unknown, &cfg), ErrInvalidConfig)

	broken := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(broken, []byte("workers = \n"), 0644))
	assert.ErrorIs(t, LoadConfigFile(broken, &cfg), ErrInvalidConfig)

	assert.ErrorIs(t, LoadConfigFile(filepath.Join(dir, "missing.toml"), &cfg), ErrInvalidConfig)
}
