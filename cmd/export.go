package main

import (
	"context"
	"log/slog"

	"github.com/irfansharif/epicycle/internal/app"
	"github.com/irfansharif/epicycle/internal/config"
	"github.com/irfansharif/epicycle/internal/export"
	"github.com/irfansharif/epicycle/internal/fourier"
	"github.com/irfansharif/epicycle/internal/geom"
	"github.com/irfansharif/epicycle/internal/logging"
	"github.com/irfansharif/epicycle/internal/palette"
	"github.com/irfansharif/epicycle/internal/render"
)

// headless is a canvas that draws nothing, for exporting without a window.
type headless struct{}

func (headless) SetView(int, int, float64, float64, float64)   {}
func (headless) SetModel(geom.Box, palette.Palette, int) error { return nil }
func (headless) SetPalette(palette.Palette)                    {}
func (headless) PushTrail(fourier.Frame) error                 { return nil }
func (headless) ResetTrail()                                   {}
func (headless) Draw(render.Scene) error                       { return nil }

// runExport renders the configured term counts of the configured input.
func runExport(ctx context.Context, cfg config.Config) error {
	application := app.NewApp(nil, headless{}, app.NewView(cfg.Export.Width, cfg.Export.Height), cfg)
	if err := application.LoadInput(ctx, cfg.Render.Input); err != nil {
		return err
	}
	paths, err := export.ExportFrames(ctx, application.Model, application.Source.ViewBox, application.ExportOptions(cfg.Export.Terms))
	if err != nil {
		return err
	}
	logger := logging.Component("export")
	for _, p := range paths {
		logger.Info("wrote", slog.String("file", p))
	}
	return nil
}
