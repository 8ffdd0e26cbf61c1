// Package logging sets up the process-wide slog logger: a one-line console
// handler (or JSON), an optional rotating JSON file, and per-component loggers
// whose debug output can be switched on independently.
//
// Environment:
//   - EPICYCLE_LOG_LEVEL=debug|info|warn|error
//   - EPICYCLE_LOG_FORMAT=console|json
//   - EPICYCLE_LOG_SOURCE=true|false
//   - EPICYCLE_LOG_FILE=<path>
//   - EPICYCLE_DEBUG_<COMPONENT>=1 (e.g. EPICYCLE_DEBUG_MEMORY=1)
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger initialization.
type Options struct {
	Level     string
	Format    string // "console" or "json"
	AddSource bool
	File      string    // rotated JSON log file, if set
	Console   io.Writer // defaults to os.Stderr
}

var (
	mu    sync.RWMutex
	root  slog.Handler // unfiltered; levels are applied per logger
	level slog.Level
)

// FromEnv builds Options from environment variables.
func FromEnv() Options {
	return Options{
		Level:     getenv("EPICYCLE_LOG_LEVEL", "info"),
		Format:    getenv("EPICYCLE_LOG_FORMAT", "console"),
		AddSource: strings.EqualFold(getenv("EPICYCLE_LOG_SOURCE", "false"), "true"),
		File:      os.Getenv("EPICYCLE_LOG_FILE"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Init configures the process logger and installs it as slog's default.
func Init(opts Options) *slog.Logger {
	lvl := parseLevel(opts.Level)
	w := opts.Console
	if w == nil {
		w = os.Stderr
	}
	// Handlers accept everything; levelFilter decides per logger.
	hopts := &slog.HandlerOptions{Level: slog.LevelDebug, AddSource: opts.AddSource}

	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		h = slog.NewJSONHandler(w, hopts)
	} else {
		h = &consoleHandler{w: w, addSource: opts.AddSource, mu: &sync.Mutex{}}
	}
	if strings.TrimSpace(opts.File) != "" {
		f := &lj.Logger{Filename: opts.File, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		h = fanout{h, slog.NewJSONHandler(f, hopts)}
	}
	h = h.WithAttrs([]slog.Attr{slog.String("app", "epicycle")})

	mu.Lock()
	root, level = h, lvl
	mu.Unlock()

	l := slog.New(&levelFilter{min: lvl, next: h})
	slog.SetDefault(l)
	return l
}

func handler() (slog.Handler, slog.Level) {
	mu.RLock()
	h, lvl := root, level
	mu.RUnlock()
	if h != nil {
		return h, lvl
	}
	Init(FromEnv())
	return handler()
}

// Component returns a logger tagged with the component name. If
// EPICYCLE_DEBUG_<NAME>=1 it logs at debug level regardless of the configured
// level.
func Component(name string) *slog.Logger {
	h, lvl := handler()
	if os.Getenv("EPICYCLE_DEBUG_"+strings.ToUpper(name)) == "1" {
		lvl = slog.LevelDebug
	}
	return slog.New(&levelFilter{min: lvl, next: h.WithAttrs([]slog.Attr{slog.String("component", name)})})
}

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type levelFilter struct {
	min  slog.Level
	next slog.Handler
}

func (f *levelFilter) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= f.min && f.next.Enabled(ctx, l)
}

func (f *levelFilter) Handle(ctx context.Context, r slog.Record) error { return f.next.Handle(ctx, r) }

func (f *levelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelFilter{min: f.min, next: f.next.WithAttrs(attrs)}
}

func (f *levelFilter) WithGroup(name string) slog.Handler {
	return &levelFilter{min: f.min, next: f.next.WithGroup(name)}
}

// fanout sends every record to each handler.
type fanout []slog.Handler

func (m fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (m fanout) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	res := make(fanout, len(m))
	for i, h := range m {
		res[i] = h.WithAttrs(attrs)
	}
	return res
}

func (m fanout) WithGroup(name string) slog.Handler {
	res := make(fanout, len(m))
	for i, h := range m {
		res[i] = h.WithGroup(name)
	}
	return res
}

// consoleHandler writes one human-readable line per record:
//
//	15:04:05 INF msg key=val ...
type consoleHandler struct {
	w         io.Writer
	addSource bool
	attrs     []slog.Attr
	prefix    string // dotted group prefix
	mu        *sync.Mutex
}

func (h *consoleHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	b.WriteString(ts.Format(time.TimeOnly))
	b.WriteByte(' ')
	b.WriteString(levelString(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		writeAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.prefix, a)
		return true
	})
	if h.addSource && r.PC != 0 {
		f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		b.WriteString(" src=")
		b.WriteString(f.File)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(f.Line))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		c.attrs = append(c.attrs, a)
	}
	return &c
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, g := range a.Value.Group() {
			writeAttr(b, prefix+a.Key+".", g)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindFloat64:
		b.WriteString(strconv.FormatFloat(v.Float64(), 'g', 4, 64))
	case slog.KindString:
		if s := v.String(); strings.ContainsAny(s, " =\"") {
			b.WriteString(strconv.Quote(s))
		} else {
			b.WriteString(s)
		}
	default:
		b.WriteString(v.String())
	}
}

func levelString(l slog.Level) string {
	switch l {
	case slog.LevelDebug:
		return "DBG"
	case slog.LevelInfo:
		return "INF"
	case slog.LevelWarn:
		return "WRN"
	case slog.LevelError:
		return "ERR"
	default:
		return l.String()
	}
}
