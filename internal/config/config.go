// Package config holds the user-editable settings, persisted as YAML.
// Environment variables override the file at load time; command-line flags
// override both and are applied by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/irfansharif/epicycle/internal/fourier"
	"github.com/irfansharif/epicycle/internal/logging"
	"github.com/irfansharif/epicycle/internal/palette"
)

type SamplingConfig struct {
	Samples int `yaml:"samples"`
	Terms   int `yaml:"terms"`
	Points  int `yaml:"points"`
	Workers int `yaml:"workers"`
}

type WindowConfig struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	VSync  bool `yaml:"vsync"`
}

type PaletteConfig struct {
	Random     bool   `yaml:"random"` // derive from the seed, ignoring the colours below
	Background string `yaml:"background"`
	Stroke     string `yaml:"stroke"`
	Fill       string `yaml:"fill"`
	Arms       string `yaml:"arms"`
	Samples    string `yaml:"samples"`
}

type RenderConfig struct {
	Input       string        `yaml:"input"` // .svg, .json, "random", or empty for the built-in shape
	Seed        int64         `yaml:"seed"`
	Complexity  int           `yaml:"complexity"` // lobes of random shapes; 0 lets the seed choose
	TrailLength int           `yaml:"trail_length"`
	Fill        bool          `yaml:"fill"`
	Arms        bool          `yaml:"arms"`
	Samples     bool          `yaml:"samples"` // overlay the sampled source path
	StrokeWidth float64       `yaml:"stroke_width"`
	Palette     PaletteConfig `yaml:"palette"`
}

type ExportConfig struct {
	Dir     string   `yaml:"dir"`
	Formats []string `yaml:"formats"` // png, svg, pdf
	Terms   []int    `yaml:"terms"`
	Width   int      `yaml:"width"`
	Height  int      `yaml:"height"`
	Columns int      `yaml:"columns"` // contact sheet columns
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type Config struct {
	ConfigVersion int            `yaml:"config_version"`
	Sampling      SamplingConfig `yaml:"sampling"`
	Window        WindowConfig   `yaml:"window"`
	Render        RenderConfig   `yaml:"render"`
	Export        ExportConfig   `yaml:"export"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() Config {
	return Config{
		ConfigVersion: 1,
		Sampling: SamplingConfig{
			Samples: fourier.DefaultSamples,
			Terms:   fourier.DefaultTerms,
			Points:  fourier.DefaultPoints,
			Workers: 1,
		},
		Window: WindowConfig{Width: 1280, Height: 960, VSync: true},
		Render: RenderConfig{
			TrailLength: 16,
			StrokeWidth: 1.5,
			Palette: PaletteConfig{
				Background: "#111118",
				Stroke:     "#f0f0e8",
				Fill:       "#4060a0",
				Arms:       "#e67850",
				Samples:    "#5a5a6e",
			},
		},
		Export: ExportConfig{
			Dir:     "out",
			Formats: []string{"png"},
			Terms:   []int{1, 2, 3, 5, 8, 13, 21, 34, 55, 89},
			Width:   800,
			Height:  800,
			Columns: 4,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvSamples = "EPICYCLE_SAMPLES"
	EnvTerms   = "EPICYCLE_TERMS"
	EnvPoints  = "EPICYCLE_POINTS"
	EnvWorkers = "EPICYCLE_WORKERS"
	EnvSeed    = "EPICYCLE_SEED"
	EnvInput   = "EPICYCLE_INPUT"
	EnvTrail   = "EPICYCLE_TRAIL"

	EnvComplexity = "EPICYCLE_COMPLEXITY"

	EnvLogLevel  = "EPICYCLE_LOG_LEVEL"
	EnvLogFormat = "EPICYCLE_LOG_FORMAT"
	EnvLogSource = "EPICYCLE_LOG_SOURCE"
	EnvLogFile   = "EPICYCLE_LOG_FILE"
)

// DefaultPath returns the per-user config file path.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve config directory: %w", err)
	}
	return filepath.Join(dir, "epicycle", "config.yaml"), nil
}

// Load reads the config file at path over the defaults, then applies
// environment overrides. A missing file is not an error. Fields absent from
// the file keep their defaults; unknown fields are rejected.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, err
		default:
			dec := yaml.NewDecoder(bytes.NewReader(data))
			dec.KnownFields(true)
			if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
				return Config{}, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	normalize(&cfg)
	return cfg, nil
}

// Save writes the config as YAML, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func normalize(cfg *Config) {
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	cfg.Logging.File = strings.TrimSpace(cfg.Logging.File)
	for i, f := range cfg.Export.Formats {
		cfg.Export.Formats[i] = strings.ToLower(strings.TrimSpace(f))
	}
}

func applyEnvOverrides(cfg *Config) error {
	for _, o := range []struct {
		env string
		dst *int
	}{
		{EnvSamples, &cfg.Sampling.Samples},
		{EnvTerms, &cfg.Sampling.Terms},
		{EnvPoints, &cfg.Sampling.Points},
		{EnvWorkers, &cfg.Sampling.Workers},
		{EnvTrail, &cfg.Render.TrailLength},
		{EnvComplexity, &cfg.Render.Complexity},
	} {
		if v := strings.TrimSpace(os.Getenv(o.env)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s value %q: %w", o.env, v, err)
			}
			*o.dst = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSeed)); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvSeed, v, err)
		}
		cfg.Render.Seed = seed
	}
	if v := strings.TrimSpace(os.Getenv(EnvInput)); v != "" {
		cfg.Render.Input = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
	return nil
}

var exportFormats = map[string]bool{"png": true, "svg": true, "pdf": true}

// Validate reports the first setting that can't be used.
func (c Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Render.TrailLength < 0 {
		return fmt.Errorf("trail length must not be negative, got %d", c.Render.TrailLength)
	}
	if c.Render.Complexity < 0 {
		return fmt.Errorf("complexity must not be negative, got %d", c.Render.Complexity)
	}
	if c.Render.StrokeWidth <= 0 {
		return fmt.Errorf("stroke width must be positive, got %g", c.Render.StrokeWidth)
	}
	if _, err := c.Palette(); err != nil {
		return err
	}
	for _, f := range c.Export.Formats {
		if !exportFormats[f] {
			return fmt.Errorf("unknown export format %q (want png, svg or pdf)", f)
		}
	}
	seen := make(map[int]bool, len(c.Export.Terms))
	for _, m := range c.Export.Terms {
		if m < 0 || m >= c.Sampling.Terms {
			return fmt.Errorf("export term count %d out of range [0, %d)", m, c.Sampling.Terms)
		}
		if seen[m] {
			return fmt.Errorf("export term count %d listed twice", m)
		}
		seen[m] = true
	}
	if c.Export.Width <= 0 || c.Export.Height <= 0 {
		return fmt.Errorf("export size must be positive, got %dx%d", c.Export.Width, c.Export.Height)
	}
	if c.Export.Columns <= 0 {
		return fmt.Errorf("contact sheet columns must be positive, got %d", c.Export.Columns)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown log format %q (want console or json)", c.Logging.Format)
	}
	return nil
}

// Params returns the pipeline sizes.
func (c Config) Params() fourier.Params {
	return fourier.Params{
		Samples: c.Sampling.Samples,
		Terms:   c.Sampling.Terms,
		Points:  c.Sampling.Points,
		Workers: c.Sampling.Workers,
	}
}

// Palette returns the configured colours.
func (c Config) Palette() (palette.Palette, error) {
	p := c.Render.Palette
	return palette.FromHex(p.Background, p.Stroke, p.Fill, p.Arms, p.Samples)
}

// LogOptions returns the logger settings.
func (c Config) LogOptions() logging.Options {
	return logging.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}
