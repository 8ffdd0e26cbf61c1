package outline

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"honnef.co/go/curve"

	"github.com/irfansharif/epicycle/internal/geom"
	"github.com/irfansharif/epicycle/internal/path"
)

func pt(x, y float64) geom.Point { return geom.MakePoint(x, y) }

// winding sums the winding numbers of the closed polygons around p.
func winding(polys [][]geom.Point, p geom.Point) int {
	var all curve.BezPath
	for _, poly := range polys {
		all = append(all, Polyline(poly, true)...)
	}
	return all.Winding(curve.Pt(p.X, p.Y))
}

func TestSVG(t *testing.T) {
	for _, tc := range []struct {
		name string
		path curve.BezPath
		want string
	}{
		{
			name: "polyline",
			path: Polyline([]geom.Point{pt(0, 0), pt(1.234, 2), pt(10, 5.5)}, true),
			want: "M0,0 L1.23,2 L10,5.5 Z",
		},
		{
			name: "open",
			path: Polyline([]geom.Point{pt(-1, 0.006), pt(3, 4)}, false),
			want: "M-1,0.01 L3,4",
		},
		{
			name: "commands",
			path: FromCommands([]path.Command{
				path.MoveTo(pt(0, 0)),
				path.CubicTo(pt(1, 2), pt(3, 4), pt(5, 6)),
				path.LineTo(pt(5, 0)),
				path.ClosePath(),
			}),
			want: "M0,0 C1,2 3,4 5,6 L5,0 Z",
		},
		{
			name: "empty",
			path: Polyline(nil, true),
			want: "",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := SVG(tc.path, 2); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBoundsIsTight(t *testing.T) {
	arch := FromCommands([]path.Command{
		path.MoveTo(pt(0, 0)),
		path.CubicTo(pt(0, 10), pt(10, 10), pt(10, 0)),
		path.ClosePath(),
	})
	// The control points reach y=10; the curve peaks at 7.5.
	want := geom.MakeBox(0, 0, 10, 7.5)
	if d := cmp.Diff(want, Bounds(arch), cmpopts.EquateApprox(0, 1e-9)); d != "" {
		t.Error(d)
	}
}

func TestAffine(t *testing.T) {
	m := geom.MakeAffine(2, 1, 5, -1, 3, 7)
	p := pt(1.5, -4)
	want := m.MulPoint(p)
	got := curve.Pt(p.X, p.Y).Transform(Affine(m))
	if d := cmp.Diff(want, pt(got.X, got.Y)); d != "" {
		t.Error(d)
	}
}

func TestStrokeClosedSquare(t *testing.T) {
	square := []geom.Point{pt(0, 0), pt(10, 0), pt(10, 10), pt(0, 10)}
	polys := Stroke(Polyline(square, true), 2, 0.01)
	if len(polys) != 2 {
		t.Fatalf("got %d contours, want an outer and an inner one", len(polys))
	}
	for _, tc := range []struct {
		p      geom.Point
		inside bool
	}{
		{pt(5, 0), true},
		{pt(5, -0.5), true},
		{pt(10.5, 5), true},
		{pt(5, 5), false},
		{pt(5, -1.5), false},
		{pt(5, 11.5), false},
		{pt(2, 2), false},
	} {
		if got := winding(polys, tc.p) != 0; got != tc.inside {
			t.Errorf("%v inside = %v, want %v", tc.p, got, tc.inside)
		}
	}
	for _, poly := range polys {
		for _, p := range poly {
			if p.X < -1.01 || p.X > 11.01 || p.Y < -1.01 || p.Y > 11.01 {
				t.Fatalf("outline point %v is further than half the width from the square", p)
			}
		}
	}
}

func TestEdges(t *testing.T) {
	points := []geom.Point{pt(0, 0), pt(10, 0), pt(10, 0), pt(10, 10)}
	polys := Edges(points, 2, false, 0.01)
	if len(polys) != 2 {
		t.Fatalf("got %d outlines, want one per non-empty edge", len(polys))
	}
	for i, tc := range []struct{ in, out geom.Point }{
		{pt(5, 0.5), pt(5, 1.5)},
		{pt(9.5, 5), pt(8.5, 5)},
	} {
		one := polys[i : i+1]
		if winding(one, tc.in) == 0 {
			t.Errorf("edge %d does not cover %v", i, tc.in)
		}
		if winding(one, tc.out) != 0 {
			t.Errorf("edge %d covers %v", i, tc.out)
		}
	}
	// Round caps cover the joint.
	if winding(polys, pt(10.8, -0.8)) != 0 {
		t.Error("joint should be round, not square")
	}
	if winding(polys, pt(10.5, -0.5)) == 0 {
		t.Error("joint not covered")
	}

	if got := Edges(points, 2, true, 0.01); len(got) != 3 {
		t.Errorf("closed polyline: got %d outlines, want 3", len(got))
	}
	if Edges(points[:1], 2, true, 0.01) != nil || Edges(points, 0, true, 0.01) != nil {
		t.Error("expected nothing for a single point or zero width")
	}
}

func TestRing(t *testing.T) {
	polys := Ring(pt(5, 5), 3, 1, 0.01)
	for _, tc := range []struct {
		p      geom.Point
		inside bool
	}{
		{pt(8, 5), true},
		{pt(5, 2.2), true},
		{pt(5, 5), false},
		{pt(9, 5), false},
	} {
		if got := winding(polys, tc.p) != 0; got != tc.inside {
			t.Errorf("%v inside = %v, want %v", tc.p, got, tc.inside)
		}
	}
}

func TestPolygons(t *testing.T) {
	p := curve.BezPath{
		curve.MoveTo(curve.Pt(0, 0)),
		curve.LineTo(curve.Pt(1, 0)),
		curve.ClosePath(),
		curve.MoveTo(curve.Pt(0, 0)),
		curve.LineTo(curve.Pt(1, 0)),
		curve.QuadTo(curve.Pt(2, 0), curve.Pt(2, 1)),
		curve.CubicTo(curve.Pt(2, 2), curve.Pt(1, 2), curve.Pt(0, 2)),
	}
	want := [][]geom.Point{{pt(0, 0), pt(1, 0), pt(2, 1), pt(0, 2)}}
	if d := cmp.Diff(want, Polygons(slices.Values(p))); d != "" {
		t.Error(d)
	}
}
