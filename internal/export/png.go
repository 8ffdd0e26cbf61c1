package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/vector"

	"github.com/irfansharif/epicycle/internal/geom"
	"github.com/irfansharif/epicycle/internal/outline"
	"github.com/irfansharif/epicycle/internal/palette"
)

// Maximum distance, in pixels, between a curve and its flattened outline.
const tolerance = 0.1

// rasterize draws the scene the way the viewer does: source, trail, fill,
// stroke, arms.
func rasterize(sc scene, opts Options) *image.RGBA {
	pal := opts.Palette
	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(pal.Background), image.Point{}, draw.Src)

	if sc.source != nil {
		fillPolygons(img, outline.Stroke(sc.source, 1, tolerance), pal.Samples)
	}
	for i, points := range sc.trail {
		age := len(sc.trail) - i
		fillPolygons(img, outline.Stroke(outline.Polyline(points, true), 1, tolerance), palette.Faded(pal, age, len(sc.trail)+1))
	}
	if opts.Fill && len(sc.stroke) >= 3 {
		fillPolygons(img, [][]geom.Point{sc.stroke}, pal.Fill)
	}
	fillPolygons(img, outline.Stroke(outline.Polyline(sc.stroke, true), opts.StrokeWidth, tolerance), pal.Stroke)

	if len(sc.arms) > 1 {
		circle := pal.Arms
		circle.A /= 2
		var rings [][]geom.Point
		for i := range len(sc.arms) - 1 {
			c := sc.arms[i]
			if r := geom.Dist(c, sc.arms[i+1]); r > 1 {
				rings = append(rings, outline.Ring(c, r, 1, tolerance)...)
			}
		}
		fillPolygons(img, rings, circle)
		fillPolygons(img, outline.Stroke(outline.Polyline(sc.arms, false), 0.5*opts.StrokeWidth, tolerance), pal.Arms)
	}
	return img
}

// fillPolygons fills the polygons together with the non-zero rule, so
// overlaps are painted once.
func fillPolygons(img *image.RGBA, polys [][]geom.Point, c color.RGBA) {
	if len(polys) == 0 {
		return
	}
	b := img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	for _, poly := range polys {
		if len(poly) < 3 {
			continue
		}
		z.MoveTo(float32(poly[0].X), float32(poly[0].Y))
		for _, p := range poly[1:] {
			z.LineTo(float32(p.X), float32(p.Y))
		}
		z.ClosePath()
	}
	z.Draw(img, b, image.NewUniform(color.NRGBA(c)), image.Point{})
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
