package export

import (
	"bytes"
	"fmt"
	"image/color"
	"strconv"

	"github.com/irfansharif/epicycle/internal/geom"
	"github.com/irfansharif/epicycle/internal/outline"
	"github.com/irfansharif/epicycle/internal/palette"
)

// buildSVG writes the scene as SVG markup in pixel coordinates, layered like
// the raster output.
func buildSVG(sc scene, opts Options) ([]byte, error) {
	pal := opts.Palette

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%dpx\" height=\"%dpx\" viewBox=\"0 0 %d %d\">\n",
		opts.Width, opts.Height, opts.Width, opts.Height)
	wf("  <title>%d terms</title>\n", sc.terms)
	wf("  <rect x=\"0\" y=\"0\" width=\"%d\" height=\"%d\" fill=\"%s\"/>\n", opts.Width, opts.Height, palette.Hex(pal.Background))

	if sc.source != nil {
		wf("  <path d=\"%s\" fill=\"none\" stroke=\"%s\"%s stroke-width=\"1\"/>\n",
			outline.SVG(sc.source, decimals), palette.Hex(pal.Samples), opacity("stroke-opacity", pal.Samples))
	}
	for i, points := range sc.trail {
		age := len(sc.trail) - i
		c := palette.Faded(pal, age, len(sc.trail)+1)
		wf("  <path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"1\"/>\n", pathData(points, true), palette.Hex(c))
	}
	if opts.Fill && len(sc.stroke) >= 3 {
		wf("  <path d=\"%s\" fill=\"%s\"%s stroke=\"none\"/>\n", pathData(sc.stroke, true), palette.Hex(pal.Fill), opacity("fill-opacity", pal.Fill))
	}
	wf("  <path d=\"%s\" fill=\"none\" stroke=\"%s\"%s stroke-width=\"%g\" stroke-linejoin=\"round\" stroke-linecap=\"round\"/>\n",
		pathData(sc.stroke, true), palette.Hex(pal.Stroke), opacity("stroke-opacity", pal.Stroke), opts.StrokeWidth)

	if len(sc.arms) > 1 {
		wf("  <g stroke=\"%s\" fill=\"none\">\n", palette.Hex(pal.Arms))
		for i := range len(sc.arms) - 1 {
			c := sc.arms[i]
			if r := geom.Dist(c, sc.arms[i+1]); r > 1 {
				wf("    <circle cx=\"%s\" cy=\"%s\" r=\"%s\" stroke-opacity=\"%.3g\" stroke-width=\"1\"/>\n",
					num(c.X), num(c.Y), num(r), float64(pal.Arms.A)/510)
			}
		}
		wf("    <path d=\"%s\"%s stroke-width=\"%g\" stroke-linejoin=\"round\" stroke-linecap=\"round\"/>\n",
			pathData(sc.arms, false), opacity("stroke-opacity", pal.Arms), 0.5*opts.StrokeWidth)
		wf("  </g>\n")
	}
	wf("</svg>\n")

	if werr != nil {
		return nil, fmt.Errorf("build svg: %w", werr)
	}
	return buf.Bytes(), nil
}

// Coordinates are written to a hundredth of a pixel.
const decimals = 2

// pathData formats a polyline as SVG path data.
func pathData(points []geom.Point, closed bool) string {
	return outline.SVG(outline.Polyline(points, closed), decimals)
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', decimals, 64) }

// opacity returns the attribute for a translucent colour, or nothing.
func opacity(attr string, c color.RGBA) string {
	if c.A == 255 {
		return ""
	}
	return fmt.Sprintf(" %s=\"%.3g\"", attr, float64(c.A)/255)
}
