package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/irfansharif/epicycle/internal/fourier"
	"github.com/irfansharif/epicycle/internal/palette"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(fourier.DefaultParams(), cfg.Params()); d != "" {
		t.Error(d)
	}
	p, err := cfg.Palette()
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(palette.Default(), p); d != "" {
		t.Errorf("default config colours differ from the default palette:\n%s", d)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(Defaults(), cfg); d != "" {
		t.Error(d)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
sampling:
  terms: 120
render:
  fill: true
  palette:
    stroke: "#FF0000"
export:
  formats: [SVG, pdf]
logging:
  level: DEBUG
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := Defaults()
	want.Sampling.Terms = 120
	want.Render.Fill = true
	want.Render.Palette.Stroke = "#FF0000"
	want.Export.Formats = []string{"svg", "pdf"}
	want.Logging.Level = "debug"
	if d := cmp.Diff(want, cfg); d != "" {
		t.Error(d)
	}
	if err := cfg.Validate(); err != nil {
		t.Error(err)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "sampling:\n  termz: 3\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "termz") {
		t.Errorf("got %v, want error naming the unknown field", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "sampling:\n  samples: 10\n")
	t.Setenv(EnvSamples, "4096")
	t.Setenv(EnvComplexity, "9")
	t.Setenv(EnvSeed, "-7")
	t.Setenv(EnvInput, "random")
	t.Setenv(EnvLogSource, "yes")
	t.Setenv(EnvLogFormat, "JSON")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sampling.Samples != 4096 {
		t.Errorf("samples = %d, env should win over file", cfg.Sampling.Samples)
	}
	if cfg.Render.Seed != -7 || cfg.Render.Input != "random" || cfg.Render.Complexity != 9 {
		t.Errorf("render overrides not applied: %+v", cfg.Render)
	}
	if !cfg.Logging.Source || cfg.Logging.Format != "json" {
		t.Errorf("logging overrides not applied: %+v", cfg.Logging)
	}
	if opts := cfg.LogOptions(); opts.Format != "json" || !opts.AddSource {
		t.Errorf("log options: %+v", opts)
	}

	t.Setenv(EnvTerms, "lots")
	if _, err := Load(path); err == nil {
		t.Error("expected error for non-numeric override")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.Render.Arms = true
	cfg.Export.Terms = []int{0, 4, 300}
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(cfg, got); d != "" {
		t.Error(d)
	}
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero samples", func(c *Config) { c.Sampling.Samples = 0 }},
		{"negative terms", func(c *Config) { c.Sampling.Terms = -1 }},
		{"zero points", func(c *Config) { c.Sampling.Points = 0 }},
		{"window", func(c *Config) { c.Window.Height = 0 }},
		{"trail", func(c *Config) { c.Render.TrailLength = -1 }},
		{"stroke width", func(c *Config) { c.Render.StrokeWidth = 0 }},
		{"complexity", func(c *Config) { c.Render.Complexity = -1 }},
		{"colour", func(c *Config) { c.Render.Palette.Fill = "blue" }},
		{"format", func(c *Config) { c.Export.Formats = []string{"gif"} }},
		{"export terms", func(c *Config) { c.Export.Terms = []int{3, -3} }},
		{"export terms past max", func(c *Config) { c.Export.Terms = []int{3, c.Sampling.Terms} }},
		{"export terms repeated", func(c *Config) { c.Export.Terms = []int{3, 5, 3} }},
		{"export size", func(c *Config) { c.Export.Width = 0 }},
		{"columns", func(c *Config) { c.Export.Columns = 0 }},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	cfg := Defaults()
	cfg.Sampling.Terms = 0
	if err := cfg.Validate(); !errors.Is(err, fourier.ErrInvalidParams) {
		t.Errorf("got %v, want fourier.ErrInvalidParams", err)
	}
}
