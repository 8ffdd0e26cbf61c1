package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	l := Init(Options{Level: "info", Console: &buf})
	l.Debug("hidden")
	l.Info("compiled model", slog.Int("terms", 350), slog.String("input", "my shape.svg"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record written at info level: %q", out)
	}
	for _, want := range []string{"INF compiled model", "app=epicycle", "terms=350", `input="my shape.svg"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestComponentDebugGate(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "warn", Console: &buf})

	Component("render").Debug("render detail")
	t.Setenv("EPICYCLE_DEBUG_MEMORY", "1")
	WithOperation(Component("memory"), "push").Debug("slot reused", slog.Int("slot", 3))

	out := buf.String()
	if strings.Contains(out, "render detail") {
		t.Errorf("ungated component logged at debug: %q", out)
	}
	for _, want := range []string{"DBG slot reused", "component=memory", "op=push", "slot=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestJSONFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "epicycle.log")
	var console bytes.Buffer
	Init(Options{Level: "debug", Format: "json", File: file, Console: &console})
	Component("export").Info("wrote frame", slog.String("path", "frame-0001.png"))

	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	var last string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal %q: %v", last, err)
	}
	for k, want := range map[string]any{
		"msg":       "wrote frame",
		"app":       "epicycle",
		"component": "export",
		"path":      "frame-0001.png",
	} {
		if m[k] != want {
			t.Errorf("%s = %v, want %v", k, m[k], want)
		}
	}
	// The JSON console handler saw the same record.
	if !strings.Contains(console.String(), `"msg":"wrote frame"`) {
		t.Errorf("console missing record: %q", console.String())
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("EPICYCLE_LOG_LEVEL", "debug")
	t.Setenv("EPICYCLE_LOG_SOURCE", "true")
	t.Setenv("EPICYCLE_LOG_FORMAT", "")
	env := FromEnv()
	if env.Level != "debug" || !env.AddSource || env.Format != "console" {
		t.Errorf("unexpected options from env: %+v", env)
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	} {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
