package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/irfansharif/epicycle/internal/app"
	"github.com/irfansharif/epicycle/internal/config"
	"github.com/irfansharif/epicycle/internal/logging"
	"github.com/irfansharif/epicycle/internal/memory"
	"github.com/irfansharif/epicycle/internal/palette"
	"github.com/irfansharif/epicycle/internal/render"
)

func init() {
	// OpenGL contexts are tied to specific OS threads - let's pin to just one.
	runtime.LockOSThread()
}

type flags struct {
	config      string
	input       string
	seed        int64
	complexity  int
	samples     int
	terms       int
	points      int
	workers     int
	export      string
	formats     string
	exportTerms string
	saveConfig  string
}

func parseFlags() (flags, map[string]bool) {
	var f flags
	flag.StringVar(&f.config, "config", "", "config file (default: the user config directory)")
	flag.StringVar(&f.input, "input", "", `shape to draw: an .svg or .json file, or "random"`)
	flag.Int64Var(&f.seed, "seed", 0, "seed for random shapes and palettes (default: current time)")
	flag.IntVar(&f.complexity, "complexity", 0, "lobes of random shapes (default: chosen by the seed)")
	flag.IntVar(&f.samples, "samples", 0, "points sampled along the path")
	flag.IntVar(&f.terms, "terms", 0, "Fourier coefficients computed")
	flag.IntVar(&f.points, "points", 0, "points per reconstructed frame")
	flag.IntVar(&f.workers, "workers", 0, "goroutines computing coefficients and export frames")
	flag.StringVar(&f.export, "export", "", "render frames into this directory and exit, without a window")
	flag.StringVar(&f.formats, "formats", "", "comma-separated export formats: png, svg, pdf")
	flag.StringVar(&f.exportTerms, "export-terms", "", "comma-separated term counts to export")
	flag.StringVar(&f.saveConfig, "save-config", "", "write the effective configuration to this file and exit")
	flag.Parse()

	set := make(map[string]bool)
	flag.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return f, set
}

// loadConfig reads the config file, then applies flags set on the command
// line over it.
func loadConfig(f flags, set map[string]bool) (config.Config, error) {
	path := f.config
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if set["input"] {
		cfg.Render.Input = f.input
	}
	if set["seed"] {
		cfg.Render.Seed = f.seed
	} else if cfg.Render.Seed == 0 {
		cfg.Render.Seed = time.Now().Unix()
	}
	for _, o := range []struct {
		name string
		val  int
		dst  *int
	}{
		{"samples", f.samples, &cfg.Sampling.Samples},
		{"terms", f.terms, &cfg.Sampling.Terms},
		{"points", f.points, &cfg.Sampling.Points},
		{"workers", f.workers, &cfg.Sampling.Workers},
		{"complexity", f.complexity, &cfg.Render.Complexity},
	} {
		if set[o.name] {
			*o.dst = o.val
		}
	}
	if set["export"] {
		cfg.Export.Dir = f.export
	}
	if set["formats"] {
		cfg.Export.Formats = splitList(f.formats)
	}
	if set["export-terms"] {
		terms, err := parseTerms(f.exportTerms)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Export.Terms = terms
	}
	return cfg, cfg.Validate()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseTerms(s string) ([]int, error) {
	var terms []int
	for _, part := range splitList(s) {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid -export-terms entry %q: %w", part, err)
		}
		terms = append(terms, n)
	}
	return terms, nil
}

func makeTitle(fps, avgFrameTime float64, application *app.App, renderStats render.Stats, memStats memory.Stats) string {
	state := ""
	if application.Paused {
		state = ", paused"
	}
	return fmt.Sprintf("Epicycle: %s, %d/%d terms%s (%.1f FPS, %.2fms/frame, %d triangles, %d draw calls/frame, %.2fµs/draw, %d trail frames, %.1fKiB GPU)",
		application.Source.Name,
		application.Frame().Terms,
		application.Reconstructor.MaxTerms(),
		state,
		fps,
		avgFrameTime,
		renderStats.Triangles,
		renderStats.DrawCalls,
		renderStats.LastDrawTimeUs,
		memStats.ActiveSlots,
		float64(memStats.TotalGPUBytes)/1024.0,
	)
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.Any("err", err))
	os.Exit(1)
}

func main() {
	f, set := parseFlags()
	cfg, err := loadConfig(f, set)
	if err != nil {
		logging.Init(logging.FromEnv())
		fatal(slog.Default(), "invalid configuration", err)
	}
	logger := logging.Init(cfg.LogOptions())
	runtimeLogger := logging.Component("runtime")

	if set["save-config"] {
		if err := config.Save(f.saveConfig, cfg); err != nil {
			fatal(logger, "failed to save config", err)
		}
		logger.Info("saved config", slog.String("path", f.saveConfig))
		return
	}

	ctx := context.Background()
	if set["export"] {
		if err := runExport(ctx, cfg); err != nil {
			fatal(logger, "export failed", err)
		}
		return
	}

	if err := glfw.Init(); err != nil {
		fatal(logger, "failed to initialize GLFW", err)
	}
	defer glfw.Terminate()

	// Configure GLFW window hints - use OpenGL 4.1.
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.Samples, 4)

	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, "Epicycle", nil, nil)
	if err != nil {
		fatal(logger, "failed to create window", err)
	}
	window.MakeContextCurrent()
	if cfg.Window.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	if err := gl.Init(); err != nil {
		fatal(logger, "failed to initialize OpenGL", err)
	}
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	renderer, err := render.NewRenderer(cfg.Render.TrailLength, cfg.Sampling.Points, cfg.Render.StrokeWidth)
	if err != nil {
		fatal(logger, "failed to create renderer", err)
	}
	defer renderer.Cleanup()

	cw, ch := window.GetFramebufferSize()
	application := app.NewApp(window, renderer, app.NewView(cw, ch), cfg)
	if err := application.LoadInput(ctx, cfg.Render.Input); err != nil {
		fatal(logger, "failed to load input", err)
	}

	// Initialize event handlers.
	eventHandlers := NewEventHandlers(application, logger)

	frameCount, frameTimeSum := 0, 0.0
	lastFPSUpdate := time.Now()

	// Main loop.
	for !application.Window.ShouldClose() {
		frameStart := time.Now()

		eventHandlers.handleContinuousStepping()
		eventHandlers.handleContinuousPanning()

		w, h := application.Window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(w), int32(h))
		bg := palette.Floats(application.Palette.Background)
		gl.ClearColor(bg[0], bg[1], bg[2], 1)
		gl.Clear(gl.COLOR_BUFFER_BIT)

		if err := application.Tick(); err != nil {
			fatal(logger, "advancing frame", err)
		}
		if err := application.Draw(w, h); err != nil {
			fatal(logger, "drawing frame", err)
		}
		application.Window.SwapBuffers()
		glfw.PollEvents()

		frameTime := time.Since(frameStart).Seconds() * 1000.0 // ms
		frameTimeSum += frameTime

		frameCount++
		now := time.Now()
		if now.Sub(lastFPSUpdate) >= time.Second {
			fps := float64(frameCount) / now.Sub(lastFPSUpdate).Seconds()
			avgFrameTime := frameTimeSum / float64(frameCount)
			frameCount, frameTimeSum = 0, 0.0
			lastFPSUpdate = now

			memStats := renderer.TrailStats()
			renderStats := renderer.Stats()

			application.Window.SetTitle(
				makeTitle(fps, avgFrameTime, application, renderStats, memStats),
			)

			runtimeLogger.Debug("performance",
				slog.Float64("fps", fps),
				slog.Float64("ms_per_frame", avgFrameTime),
				slog.Int("terms", application.Frame().Terms),
				slog.Int("triangles", renderStats.Triangles),
				slog.Int("draw_calls", renderStats.DrawCalls),
				slog.Float64("prepare_us", renderStats.LastPrepareTimeUs),
				slog.Float64("draw_us", renderStats.LastDrawTimeUs),
				slog.Float64("gpu_kib", float64(memStats.TotalGPUBytes)/1024.0),
			)
			renderer.LogStats()
		}
	}
}
