package app

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/irfansharif/epicycle/internal/config"
	"github.com/irfansharif/epicycle/internal/export"
	"github.com/irfansharif/epicycle/internal/fourier"
	"github.com/irfansharif/epicycle/internal/geom"
	"github.com/irfansharif/epicycle/internal/logging"
	"github.com/irfansharif/epicycle/internal/palette"
	"github.com/irfansharif/epicycle/internal/render"
	"github.com/irfansharif/epicycle/internal/source"
)

// Frames per full turn of the epicycle arms.
const armPeriod = 360

// Canvas is what the app draws on. *render.Renderer implements it.
type Canvas interface {
	SetView(w, h int, zoom, panX, panY float64)
	SetModel(viewBox geom.Box, pal palette.Palette, points int) error
	SetPalette(pal palette.Palette)
	PushTrail(frame fourier.Frame) error
	ResetTrail()
	Draw(scene render.Scene) error
}

// App encapsulates the main application state and logic.
type App struct {
	Window *glfw.Window
	Canvas Canvas
	View   *View
	Config config.Config

	Source        source.Source
	Model         *fourier.Model
	Reconstructor *fourier.Reconstructor
	Palette       palette.Palette
	Seed          int64 // of the last random shape or palette
	Complexity    int   // of random shapes; 0 lets the seed choose

	Paused      bool
	Fill        bool
	ShowArms    bool
	ShowSamples bool

	frame    fourier.Frame // on screen
	armPhase int
	logger   *slog.Logger
}

// NewApp creates a new application instance. Nothing is shown until Load or
// Regenerate succeeds.
func NewApp(window *glfw.Window, canvas Canvas, view *View, cfg config.Config) *App {
	return &App{
		Window:      window,
		Canvas:      canvas,
		View:        view,
		Config:      cfg,
		Seed:        cfg.Render.Seed,
		Complexity:  cfg.Render.Complexity,
		Fill:        cfg.Render.Fill,
		ShowArms:    cfg.Render.Arms,
		ShowSamples: cfg.Render.Samples,
		logger:      logging.Component("app"),
	}
}

// Load compiles the source and starts drawing it from zero terms.
func (app *App) Load(ctx context.Context, src source.Source) error {
	start := time.Now()
	model, err := fourier.Compile(ctx, src.Commands, app.Config.Params())
	if err != nil {
		return fmt.Errorf("%s: %w", src.Name, err)
	}
	pal, err := app.palette()
	if err != nil {
		return err
	}
	if err := app.Canvas.SetModel(src.ViewBox, pal, model.Params.Points); err != nil {
		return err
	}

	app.Source, app.Model, app.Palette = src, model, pal
	app.Reconstructor = model.Reconstructor()
	app.frame = app.Reconstructor.Next()
	app.armPhase = 0

	app.logger.Info("loaded shape",
		slog.String("source", src.Name),
		slog.Int("segments", model.Sampler.Len()),
		slog.Int("samples", len(model.Samples)),
		slog.Int("terms", len(model.Coefficients)),
		slog.Duration("took", time.Since(start)),
	)
	return nil
}

// LoadInput loads what the configuration names: a file, a random shape, or
// the built-in default.
func (app *App) LoadInput(ctx context.Context, input string) error {
	if input == source.Random {
		return app.Regenerate(ctx, app.Seed)
	}
	src, err := source.Load(input)
	if err != nil {
		return err
	}
	return app.Load(ctx, src)
}

// Regenerate replaces the drawing with a random shape for the seed, at the
// app's complexity.
func (app *App) Regenerate(ctx context.Context, seed int64) error {
	app.Seed = seed
	return app.Load(ctx, source.Generate(seed, app.Complexity))
}

func (app *App) palette() (palette.Palette, error) {
	if app.Config.Render.Palette.Random {
		return palette.RandomPalette(rand.New(rand.NewSource(app.Seed))), nil
	}
	return app.Config.Palette()
}

// RandomizePalette picks new colours from the seed, keeping the shape.
func (app *App) RandomizePalette(seed int64) {
	app.Seed = seed
	app.Palette = palette.RandomPalette(rand.New(rand.NewSource(seed)))
	app.Canvas.SetPalette(app.Palette)
}

// Frame returns the frame on screen.
func (app *App) Frame() fourier.Frame { return app.frame }

// Tick advances to the next frame unless paused. It is called once per
// display refresh.
func (app *App) Tick() error {
	if app.Reconstructor == nil || app.Paused {
		return nil
	}
	app.armPhase = (app.armPhase + 1) % armPeriod
	return app.advance(app.Reconstructor.Next())
}

// Step moves delta term counts forward (or back), wrapping around.
func (app *App) Step(delta int) error {
	if app.Reconstructor == nil {
		return nil
	}
	app.Reconstructor.Seek(app.frame.Terms + delta)
	return app.advance(app.Reconstructor.Next())
}

// SeekTerms jumps to m terms. The trail is dropped since it no longer leads
// up to the frame.
func (app *App) SeekTerms(m int) {
	if app.Reconstructor == nil {
		return
	}
	app.Canvas.ResetTrail()
	app.Reconstructor.Seek(m)
	app.frame = app.Reconstructor.Next()
}

func (app *App) advance(next fourier.Frame) error {
	if err := app.Canvas.PushTrail(app.frame); err != nil {
		return err
	}
	app.frame = next
	return nil
}

func (app *App) TogglePause()   { app.Paused = !app.Paused }
func (app *App) ToggleFill()    { app.Fill = !app.Fill }
func (app *App) ToggleArms()    { app.ShowArms = !app.ShowArms }
func (app *App) ToggleSamples() { app.ShowSamples = !app.ShowSamples }

// Scene returns what to draw for the frame on screen.
func (app *App) Scene() render.Scene {
	scene := render.Scene{Frame: app.frame, Fill: app.Fill}
	if app.Model == nil {
		return scene
	}
	if app.ShowArms && app.frame.Terms > 0 {
		theta := 2 * math.Pi * float64(app.armPhase) / armPeriod
		scene.Arms = fourier.Arms(app.Model.Coefficients, app.frame.Terms, theta)[1:]
	}
	if app.ShowSamples {
		scene.Samples = app.Model.Samples
	}
	return scene
}

// Draw renders the current frame into a w×h framebuffer.
func (app *App) Draw(w, h int) error {
	app.Canvas.SetView(w, h, app.View.Zoom, app.View.PanX, app.View.PanY)
	return app.Canvas.Draw(app.Scene())
}

// ExportCurrent writes the frame on screen in the configured formats.
func (app *App) ExportCurrent(ctx context.Context) ([]string, error) {
	if app.Model == nil {
		return nil, fmt.Errorf("nothing to export")
	}
	return export.ExportFrames(ctx, app.Model, app.Source.ViewBox, app.ExportOptions([]int{app.frame.Terms}))
}

// ExportOptions returns the export settings for the given term counts, with
// the viewer's current colours and toggles.
func (app *App) ExportOptions(terms []int) export.Options {
	cfg := app.Config
	return export.Options{
		Dir:         cfg.Export.Dir,
		Name:        app.Source.Name,
		Formats:     cfg.Export.Formats,
		Terms:       terms,
		Width:       cfg.Export.Width,
		Height:      cfg.Export.Height,
		Columns:     cfg.Export.Columns,
		Palette:     app.Palette,
		StrokeWidth: cfg.Render.StrokeWidth,
		Trail:       cfg.Render.TrailLength,
		Fill:        app.Fill,
		Arms:        app.ShowArms,
		Source:      app.ShowSamples,
		Workers:     cfg.Sampling.Workers,
	}
}

// ShapeInput is a typed request for a random shape: "<seed>",
// "<seed>,<complexity>" or ",<complexity>". Missing parts are nil.
type ShapeInput struct {
	Seed       *int64
	Complexity *int
}

// ParseShapeInput parses the digits typed before regenerating.
func ParseShapeInput(s string) (ShapeInput, error) {
	var in ShapeInput
	seed, complexity, hasComplexity := strings.Cut(s, ",")
	if seed != "" {
		n, err := strconv.ParseInt(seed, 10, 64)
		if err != nil {
			return ShapeInput{}, fmt.Errorf("invalid seed %q: %w", seed, err)
		}
		in.Seed = &n
	}
	if hasComplexity {
		c, err := strconv.Atoi(complexity)
		if err != nil {
			return ShapeInput{}, fmt.Errorf("invalid complexity %q: %w", complexity, err)
		}
		if c < 0 {
			return ShapeInput{}, fmt.Errorf("complexity must not be negative, got %d", c)
		}
		in.Complexity = &c
	}
	return in, nil
}
