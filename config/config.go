package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds persistent viewer settings stored at <profileDir>/view.toml.
type Config struct {
	Theme     string    `toml:"theme,omitempty"`
	LogFile   string    `toml:"log_file,omitempty"`
	Render    Render    `toml:"render"`
	Durations Durations `toml:"durations"`
	Markdown  Markdown  `toml:"markdown"`
	Flash     Flash     `toml:"flash"`
}

// Render tunes the threshold gate and the virtualizer.
type Render struct {
	LineThreshold    int `toml:"line_threshold"`
	RowThreshold     int `toml:"row_threshold"`
	LineOverscan     int `toml:"line_overscan"`
	BadgeOverscan    int `toml:"badge_overscan"`
	LineEstimate     int `toml:"line_estimate"`
	BadgeRowEstimate int `toml:"badge_row_estimate"`
	NameColumnGutter int `toml:"name_column_gutter"`
}

// Durations are the badge color buckets, in milliseconds.
type Durations struct {
	FastMillis   int `toml:"fast_ms"`
	MediumMillis int `toml:"medium_ms"`
}

// Fast returns the fast bucket bound.
func (d Durations) Fast() time.Duration { return time.Duration(d.FastMillis) * time.Millisecond }

// Medium returns the medium bucket bound.
func (d Durations) Medium() time.Duration { return time.Duration(d.MediumMillis) * time.Millisecond }

// Markdown selects the label renderer.
type Markdown struct {
	Enabled  bool   `toml:"enabled"`
	Style    string `toml:"style,omitempty"`
	WordWrap int    `toml:"word_wrap"`
}

// Flash controls how long refreshed rows stay highlighted.
type Flash struct {
	Millis int `toml:"ms"`
}

// Duration returns the flash length.
func (f Flash) Duration() time.Duration { return time.Duration(f.Millis) * time.Millisecond }

const filename = "view.toml"

// Path returns the config file location inside profileDir.
func Path(profileDir string) string { return filepath.Join(profileDir, filename) }

// Load reads <profileDir>/view.toml. If the file is absent or unreadable,
// Default is returned. Fields missing from the file keep their defaults.
func Load(profileDir string) Config {
	cfg := Default()
	data, err := os.ReadFile(Path(profileDir))
	if err != nil {
		return cfg
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Default()
	}
	return cfg.normalize()
}

// Save writes cfg to <profileDir>/view.toml, creating the directory if needed.
func Save(profileDir string, cfg Config) error {
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(Path(profileDir), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Theme: "dark",
		Render: Render{
			LineThreshold:    500,
			RowThreshold:     100,
			LineOverscan:     10,
			BadgeOverscan:    5,
			LineEstimate:     1,
			BadgeRowEstimate: 1,
			NameColumnGutter: 2,
		},
		Durations: Durations{FastMillis: 100, MediumMillis: 1000},
		Markdown:  Markdown{Enabled: true, WordWrap: 100},
		Flash:     Flash{Millis: 1500},
	}
}

// normalize replaces nonsensical values with defaults.
func (c Config) normalize() Config {
	d := Default()
	if c.Render.LineThreshold < 0 {
		c.Render.LineThreshold = d.Render.LineThreshold
	}
	if c.Render.RowThreshold < 0 {
		c.Render.RowThreshold = d.Render.RowThreshold
	}
	if c.Render.LineOverscan < 0 {
		c.Render.LineOverscan = d.Render.LineOverscan
	}
	if c.Render.BadgeOverscan < 0 {
		c.Render.BadgeOverscan = d.Render.BadgeOverscan
	}
	if c.Render.LineEstimate < 1 {
		c.Render.LineEstimate = d.Render.LineEstimate
	}
	if c.Render.BadgeRowEstimate < 1 {
		c.Render.BadgeRowEstimate = d.Render.BadgeRowEstimate
	}
	if c.Render.NameColumnGutter < 0 {
		c.Render.NameColumnGutter = d.Render.NameColumnGutter
	}
	if c.Durations.FastMillis <= 0 || c.Durations.MediumMillis < c.Durations.FastMillis {
		c.Durations = d.Durations
	}
	if c.Flash.Millis < 0 {
		c.Flash = d.Flash
	}
	return c
}
