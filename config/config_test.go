package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	assert.Equal(t, Default(), Load(t.TempDir()))
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	data := `theme = "light"

[render]
line_threshold = 1000

[durations]
fast_ms = 50
medium_ms = 400
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "view.toml"), []byte(data), 0o644))

	cfg := Load(dir)
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, 1000, cfg.Render.LineThreshold)
	assert.Equal(t, 100, cfg.Render.RowThreshold)
	assert.Equal(t, 10, cfg.Render.LineOverscan)
	assert.Equal(t, 50*time.Millisecond, cfg.Durations.Fast())
	assert.Equal(t, 400*time.Millisecond, cfg.Durations.Medium())
	assert.True(t, cfg.Markdown.Enabled)
}

func TestLoadMalformedReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(Path(dir), []byte("theme = [unterminated"), 0o644))
	assert.Equal(t, Default(), Load(dir))
}

func TestLoadNormalizesBadValues(t *testing.T) {
	dir := t.TempDir()
	data := `[render]
line_estimate = 0
line_overscan = -3

[durations]
fast_ms = 500
medium_ms = 100
`
	require.NoError(t, os.WriteFile(Path(dir), []byte(data), 0o644))
	cfg := Load(dir)
	assert.Equal(t, 1, cfg.Render.LineEstimate)
	assert.Equal(t, 10, cfg.Render.LineOverscan)
	assert.Equal(t, Default().Durations, cfg.Durations)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "profile")
	cfg := Default()
	cfg.Theme = "tokyo-night"
	cfg.Flash.Millis = 250
	require.NoError(t, Save(dir, cfg))

	got := Load(dir)
	assert.Equal(t, cfg, got)
	assert.Equal(t, 250*time.Millisecond, got.Flash.Duration())
}
