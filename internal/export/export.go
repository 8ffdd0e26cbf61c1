// Package export renders reconstructions offline: one PNG and/or SVG per
// term count, and a PDF contact sheet of all of them.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"honnef.co/go/curve"

	"github.com/irfansharif/epicycle/internal/fourier"
	"github.com/irfansharif/epicycle/internal/geom"
	"github.com/irfansharif/epicycle/internal/logging"
	"github.com/irfansharif/epicycle/internal/outline"
	"github.com/irfansharif/epicycle/internal/palette"
)

// Formats.
const (
	PNG = "png"
	SVG = "svg"
	PDF = "pdf"
)

// Options controls what is exported and how it looks. Sizes and widths are
// in output pixels.
type Options struct {
	Dir     string
	Name    string   // file name prefix; "epicycle" if empty
	Formats []string // png, svg, pdf
	Terms   []int    // one image per term count, in this order
	Width   int
	Height  int
	Columns int // contact sheet columns

	Palette     palette.Palette
	StrokeWidth float64
	Trail       int // earlier term counts drawn faded behind each frame
	Fill        bool
	Arms        bool
	Source      bool // draw the source path under each frame
	Workers     int  // frames rendered concurrently; <= 1 means one at a time
}

func (o Options) validate() error {
	if len(o.Terms) == 0 {
		return errors.New("no term counts to export")
	}
	for _, m := range o.Terms {
		if m < 0 {
			return fmt.Errorf("term count must not be negative, got %d", m)
		}
	}
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", o.Width, o.Height)
	}
	if len(o.Formats) == 0 {
		return errors.New("no export formats")
	}
	for _, f := range o.Formats {
		switch f {
		case PNG, SVG, PDF:
		default:
			return fmt.Errorf("unknown export format %q (want png, svg or pdf)", f)
		}
	}
	if o.StrokeWidth <= 0 {
		return fmt.Errorf("stroke width must be positive, got %g", o.StrokeWidth)
	}
	if o.Trail < 0 {
		return fmt.Errorf("trail must not be negative, got %d", o.Trail)
	}
	return nil
}

func (o Options) wants(format string) bool {
	for _, f := range o.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// scene is one frame laid out in output pixels.
type scene struct {
	terms  int
	stroke []geom.Point
	trail  [][]geom.Point // oldest first
	arms   []geom.Point
	source curve.BezPath // exact source path; nil unless Options.Source
}

// rendered holds one frame's encoded outputs.
type rendered struct {
	terms int
	png   []byte
	paths []string
}

// ExportFrames renders the model at each of opts.Terms and writes the files
// under opts.Dir, returning their paths: per term count, the PNG then the
// SVG; the contact sheet last.
func ExportFrames(ctx context.Context, model *fourier.Model, viewBox geom.Box, opts Options) ([]string, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Name == "" {
		opts.Name = "epicycle"
	}
	opts.Name = FileName(opts.Name)
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	toPixels, err := fit(viewBox, opts.Width, opts.Height)
	if err != nil {
		return nil, err
	}

	logger := logging.WithOperation(logging.Component("export"), "export_frames")
	start := time.Now()

	requested := opts.Terms
	opts.Terms = wrapTerms(requested, len(model.Coefficients))
	if !slices.Equal(opts.Terms, requested) {
		logger.Warn("term counts wrapped or repeated",
			slog.Any("requested", requested),
			slog.Any("exported", opts.Terms),
			slog.Int("max_terms", len(model.Coefficients)),
		)
	}

	results := make([]rendered, len(opts.Terms))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.Workers))
	for i, m := range opts.Terms {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := renderFrame(model, toPixels, opts, m)
			if err != nil {
				return fmt.Errorf("%d terms: %w", m, err)
			}
			results[i] = res
			logger.Debug("rendered frame", slog.Int("terms", m), slog.Any("files", res.paths))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var paths []string
	for _, r := range results {
		paths = append(paths, r.paths...)
	}
	if opts.wants(PDF) {
		name := filepath.Join(opts.Dir, opts.Name+"-sheet.pdf")
		if err := writeContactSheet(name, results, opts); err != nil {
			return nil, err
		}
		paths = append(paths, name)
	}

	logger.Info("export complete",
		slog.Int("frames", len(opts.Terms)),
		slog.Int("files", len(paths)),
		slog.String("dir", opts.Dir),
		slog.Duration("took", time.Since(start)),
	)
	return paths, nil
}

func renderFrame(model *fourier.Model, toPixels geom.Affine, opts Options, m int) (rendered, error) {
	sc := layout(model, toPixels, opts, m)
	res := rendered{terms: sc.terms}
	base := filepath.Join(opts.Dir, fmt.Sprintf("%s-%04d", opts.Name, m))

	// The contact sheet is built from the PNGs, written or not.
	if opts.wants(PNG) || opts.wants(PDF) {
		data, err := encodePNG(rasterize(sc, opts))
		if err != nil {
			return rendered{}, err
		}
		res.png = data
		if opts.wants(PNG) {
			if err := os.WriteFile(base+".png", data, 0o644); err != nil {
				return rendered{}, fmt.Errorf("write png: %w", err)
			}
			res.paths = append(res.paths, base+".png")
		}
	}
	if opts.wants(SVG) {
		data, err := buildSVG(sc, opts)
		if err != nil {
			return rendered{}, err
		}
		if err := os.WriteFile(base+".svg", data, 0o644); err != nil {
			return rendered{}, fmt.Errorf("write svg: %w", err)
		}
		res.paths = append(res.paths, base+".svg")
	}
	return res, nil
}

// wrapTerms wraps term counts into [0, m) the way the viewer's seek does and
// drops repeats, keeping the first occurrence.
func wrapTerms(terms []int, m int) []int {
	seen := make(map[int]bool, len(terms))
	out := make([]int, 0, len(terms))
	for _, t := range terms {
		t = ((t % m) + m) % m
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// fit maps the viewBox into the middle of the image, leaving a margin.
func fit(viewBox geom.Box, w, h int) (geom.Affine, error) {
	const margin = 0.05
	fw, fh := float64(w), float64(h)
	return geom.FillBox(viewBox, geom.MakeBox(margin*fw, margin*fh, (1-2*margin)*fw, (1-2*margin)*fh))
}

func layout(model *fourier.Model, toPixels geom.Affine, opts Options, m int) scene {
	transform := func(points []geom.Point) []geom.Point {
		out := make([]geom.Point, len(points))
		for i, p := range points {
			out[i] = toPixels.MulPoint(p)
		}
		return out
	}

	frame := model.Frame(m)
	sc := scene{
		terms:  frame.Terms,
		stroke: transform(frame.Points),
	}
	for k := min(opts.Trail, frame.Terms); k >= 1; k-- {
		sc.trail = append(sc.trail, transform(model.Frame(frame.Terms-k).Points))
	}
	if opts.Source {
		sc.source = outline.FromCommands(model.Sampler.Commands()).Transform(outline.Affine(toPixels))
	}
	if opts.Arms && frame.Terms > 0 {
		// The chain starts at the constant term, not the origin.
		sc.arms = transform(fourier.Arms(model.Coefficients, frame.Terms, 0)[1:])
	}
	return sc
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// FileName turns a source name such as "shapes/heart.svg" or "random:42"
// into a file name prefix ("heart", "random-42").
func FileName(name string) string {
	base := filepath.Base(name)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "-"), "-")
	if base == "" {
		return "epicycle"
	}
	return base
}
