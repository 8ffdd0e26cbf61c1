// Package outline moves drawings between our point and command types and
// honnef.co/go/curve paths. It is used to write SVG path data and to expand
// strokes into polygons that can be filled.
package outline

import (
	"iter"
	"math"

	"honnef.co/go/curve"

	"github.com/irfansharif/epicycle/internal/geom"
	"github.com/irfansharif/epicycle/internal/path"
)

func toCurve(p geom.Point) curve.Point   { return curve.Pt(p.X, p.Y) }
func fromCurve(p curve.Point) geom.Point { return geom.MakePoint(p.X, p.Y) }

// Affine converts a transform to curve's column order.
func Affine(t geom.Affine) curve.Affine {
	return curve.NewAffine([6]float64{t.A, t.D, t.B, t.E, t.C, t.F})
}

// Polyline returns the path through the points, closed if asked.
func Polyline(points []geom.Point, closed bool) curve.BezPath {
	if len(points) == 0 {
		return nil
	}
	p := make(curve.BezPath, 0, len(points)+1)
	p.MoveTo(toCurve(points[0]))
	for _, pt := range points[1:] {
		p.LineTo(toCurve(pt))
	}
	if closed {
		p.ClosePath()
	}
	return p
}

// FromCommands converts drawing commands into a curve path.
func FromCommands(cmds []path.Command) curve.BezPath {
	p := make(curve.BezPath, 0, len(cmds))
	for _, c := range cmds {
		switch c.Kind {
		case path.MoveToKind:
			p.MoveTo(toCurve(c.P0))
		case path.LineToKind:
			p.LineTo(toCurve(c.P0))
		case path.CubicToKind:
			p.CubicTo(toCurve(c.P0), toCurve(c.P1), toCurve(c.P2))
		case path.ClosePathKind:
			p.ClosePath()
		}
	}
	return p
}

// SVG formats the path as SVG path data, with coordinates rounded to the
// given number of decimals.
func SVG(p curve.BezPath, decimals int) string {
	scale := math.Pow(10, float64(decimals))
	round := func(v float64) float64 {
		v = math.Round(v*scale) / scale
		if v == 0 {
			return 0 // no "-0"
		}
		return v
	}
	roundPt := func(pt curve.Point) curve.Point { return curve.Pt(round(pt.X), round(pt.Y)) }
	rounded := make(curve.BezPath, len(p))
	for i, el := range p {
		el.P0, el.P1, el.P2 = roundPt(el.P0), roundPt(el.P1), roundPt(el.P2)
		rounded[i] = el
	}
	return curve.SVG(rounded.Elements(), curve.SVGOptions{})
}

// Bounds returns the tight bounding box of the path's curves.
func Bounds(p curve.BezPath) geom.Box {
	r := p.BoundingBox()
	return geom.MakeBox(r.MinX(), r.MinY(), r.Width(), r.Height())
}

// Stroke expands a path into the outline of a stroke of the given width with
// round joins and caps. Overlapping contours are meant for the non-zero fill
// rule. Curves are flattened to within tolerance.
func Stroke(p curve.BezPath, width, tolerance float64) [][]geom.Point {
	if len(p) == 0 || width <= 0 {
		return nil
	}
	style := curve.DefaultStroke.WithWidth(width)
	out := curve.StrokePath(p.Elements(), style, curve.StrokeOpts{}, tolerance)
	return Polygons(curve.Flatten(out, tolerance))
}

// Edges strokes every edge of a polyline on its own with round caps. Each
// outline is convex, so they can be triangulated one by one and drawn
// without a fill rule; the caps join consecutive edges.
func Edges(points []geom.Point, width float64, closed bool, tolerance float64) [][]geom.Point {
	n := len(points)
	if n < 2 || width <= 0 {
		return nil
	}
	edges := n - 1
	if closed {
		edges = n
	}
	var polys [][]geom.Point
	for i := range edges {
		p, q := points[i], points[(i+1)%n]
		if p == q {
			continue
		}
		polys = append(polys, Stroke(Polyline([]geom.Point{p, q}, false), width, tolerance)...)
	}
	return polys
}

// Ring strokes the circle of radius r around c.
func Ring(c geom.Point, r, width, tolerance float64) [][]geom.Point {
	circle := curve.Circle{Center: toCurve(c), Radius: r}
	return Stroke(circle.Path(tolerance), width, tolerance)
}

// Polygons collects a flattened path into one polygon per subpath. Curve
// elements contribute only their end points. Subpaths with fewer than three
// points enclose nothing and are dropped.
func Polygons(seq iter.Seq[curve.PathElement]) [][]geom.Point {
	var polys [][]geom.Point
	var cur []geom.Point
	flush := func() {
		if len(cur) >= 3 {
			polys = append(polys, cur)
		}
		cur = nil
	}
	for el := range seq {
		switch el.Kind {
		case curve.MoveToKind:
			flush()
			cur = append(cur, fromCurve(el.P0))
		case curve.LineToKind:
			cur = append(cur, fromCurve(el.P0))
		case curve.QuadToKind:
			cur = append(cur, fromCurve(el.P1))
		case curve.CubicToKind:
			cur = append(cur, fromCurve(el.P2))
		case curve.ClosePathKind:
			flush()
		}
	}
	flush()
	return polys
}
