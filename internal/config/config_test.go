package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sorpcube.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func newFlagSet() *pflag.FlagSet {
	return pflag.NewFlagSet("sorpcube", pflag.ContinueOnError)
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "SorpSimpleApp", cfg.Title)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 600, cfg.Height)
	assert.Equal(t, 2, cfg.FramesInFlight)
	assert.Equal(t, PresentModeMailbox, cfg.PresentMode)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"negative height", func(c *Config) { c.Height = -1 }},
		{"no frames in flight", func(c *Config) { c.FramesInFlight = 0 }},
		{"unknown present mode", func(c *Config) { c.PresentMode = "vsync" }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
title = "cube"
width = 1024
frames_in_flight = 3
present_mode = "fifo"
`)

	cfg := Default()
	require.NoError(t, cfg.Load(path))

	assert.Equal(t, "cube", cfg.Title)
	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, 600, cfg.Height)
	assert.Equal(t, 3, cfg.FramesInFlight)
	assert.Equal(t, PresentModeFIFO, cfg.PresentMode)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "widht = 1024\n")

	cfg := Default()
	err := cfg.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "widht")
}

func TestParseFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "width = 1024\nheight = 768\n")

	cfg, err := Parse(newFlagSet(), []string{"--config", path, "--height", "480", "-n", "3"})
	require.NoError(t, err)

	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, 480, cfg.Height)
	assert.Equal(t, 3, cfg.FramesInFlight)
}

func TestParseValidates(t *testing.T) {
	_, err := Parse(newFlagSet(), []string{"--frames", "0"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}
