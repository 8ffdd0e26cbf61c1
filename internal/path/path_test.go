package path

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/irfansharif/epicycle/internal/geom"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func pt(x, y float64) geom.Point { return geom.MakePoint(x, y) }

func rectangle() []Command {
	return []Command{
		MoveTo(pt(0, 0)),
		LineTo(pt(4, 0)),
		LineTo(pt(4, 2)),
		LineTo(pt(0, 2)),
		LineTo(pt(0, 0)),
		ClosePath(),
	}
}

func TestLineEndpoints(t *testing.T) {
	l := Line(pt(1, 2), pt(5, -6))
	diff(t, pt(1, 2), l.PointAt(0))
	diff(t, pt(5, -6), l.PointAt(1))
	diff(t, pt(3, -2), l.PointAt(0.5))
	diff(t, l.P1, l.End())
}

func TestCubicBernstein(t *testing.T) {
	c := Cubic(pt(0, 0), pt(0, 1), pt(1, 1), pt(1, 0))
	diff(t, pt(0, 0), c.PointAt(0))
	diff(t, pt(1, 0), c.PointAt(1))
	// B(0.5) = (P0 + 3P1 + 3P2 + P3) / 8
	diff(t, pt(0.5, 0.75), c.PointAt(0.5), cmpopts.EquateApprox(0, 1e-15))
	diff(t, c.P3, c.End())

	// A cubic with evenly spaced collinear control points is a line traversed
	// at constant speed.
	straight := Cubic(pt(0, 0), pt(1, 1), pt(2, 2), pt(3, 3))
	for _, ts := range []float64{0.1, 0.25, 0.7} {
		diff(t, pt(3*ts, 3*ts), straight.PointAt(ts), cmpopts.EquateApprox(0, 1e-12))
	}
}

func TestRectangleSampling(t *testing.T) {
	s, err := NewSampler(rectangle())
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 4 {
		t.Fatalf("got %d segments, want 4", s.Len())
	}

	diff(t, pt(0, 0), s.PointAt(0))
	// Each of the 4 segments gets a quarter of the parameter range.
	diff(t, pt(4, 0), s.PointAt(0.25))
	diff(t, pt(4, 2), s.PointAt(0.5))
	diff(t, pt(2, 2), s.PointAt(0.625))

	// Just below 1 we approach the last segment's end point, which is the
	// first control point.
	near := s.PointAt(1 - 1e-9)
	if d := geom.Dist(near, pt(0, 0)); d > 1e-7 {
		t.Errorf("PointAt(1-ε) = %v is %g away from the last endpoint", near, d)
	}
}

func TestSamplingIsPeriodic(t *testing.T) {
	s, err := NewSampler([]Command{
		MoveTo(pt(0, 0)),
		CubicTo(pt(1, 2), pt(3, 2), pt(4, 0)),
		LineTo(pt(2, -3)),
		ClosePath(),
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, ts := range []float64{0, 0.1, 0.33, 0.5, 0.72, 0.999} {
		diff(t, s.PointAt(ts), s.PointAt(ts+1), cmpopts.EquateApprox(0, 1e-9))
		diff(t, s.PointAt(ts), s.PointAt(ts-1), cmpopts.EquateApprox(0, 1e-9))
	}
	diff(t, s.PointAt(0), s.PointAt(1))
}

func TestImplicitClosingLine(t *testing.T) {
	s, err := NewSampler([]Command{
		MoveTo(pt(0, 0)),
		LineTo(pt(1, 0)),
		LineTo(pt(1, 1)),
		ClosePath(),
	})
	if err != nil {
		t.Fatal(err)
	}
	segs := s.Segments()
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3 (with closing line)", len(segs))
	}
	diff(t, Line(pt(1, 1), pt(0, 0)), segs[2])

	// Segments are contiguous and form a loop.
	for i, seg := range segs {
		next := segs[(i+1)%len(segs)]
		if d := geom.Dist(seg.End(), next.Start()); d > CloseTolerance {
			t.Errorf("segment %d ends %g away from segment %d's start", i, d, i+1)
		}
	}

	// Mutating the returned copy leaves the sampler untouched.
	segs[0].P1 = pt(100, 100)
	diff(t, pt(1, 0), s.Segments()[0].P1)
}

func TestNoClosingLineWhenWithinTolerance(t *testing.T) {
	s, err := NewSampler([]Command{
		MoveTo(pt(0, 0)),
		LineTo(pt(1, 0)),
		LineTo(pt(0, 1e-12)),
		ClosePath(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 2 {
		t.Errorf("got %d segments, want 2", s.Len())
	}
}

func TestCommandsRoundTrip(t *testing.T) {
	cmds := []Command{
		MoveTo(pt(0, 0)),
		CubicTo(pt(1, 2), pt(3, 2), pt(4, 0)),
		LineTo(pt(0, 0)),
		ClosePath(),
	}
	s, err := NewSampler(cmds)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, cmds, s.Commands())
}

func TestMalformedPath(t *testing.T) {
	for _, tc := range []struct {
		name string
		cmds []Command
	}{
		{"empty", nil},
		{"no leading move", []Command{LineTo(pt(1, 0)), LineTo(pt(1, 1)), ClosePath()}},
		{"no trailing close", []Command{MoveTo(pt(0, 0)), LineTo(pt(1, 0)), LineTo(pt(1, 1))}},
		{"nested move", []Command{MoveTo(pt(0, 0)), LineTo(pt(1, 0)), MoveTo(pt(5, 5)), LineTo(pt(6, 6)), ClosePath()}},
		{"no segments", []Command{MoveTo(pt(0, 0)), ClosePath()}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSampler(tc.cmds)
			var mpe *MalformedPathError
			if !errors.As(err, &mpe) {
				t.Fatalf("got error %v, want *MalformedPathError", err)
			}
		})
	}
}

func TestPointAtNaN(t *testing.T) {
	s, err := NewSampler(rectangle())
	if err != nil {
		t.Fatal(err)
	}
	if p := s.PointAt(math.NaN()); !p.IsNaN() {
		t.Errorf("PointAt(NaN) = %v, want NaN sentinel", p)
	}
	if p := s.PointAt(math.Inf(1)); !p.IsNaN() {
		t.Errorf("PointAt(+Inf) = %v, want NaN sentinel", p)
	}
}

func TestSample(t *testing.T) {
	s, err := NewSampler(rectangle())
	if err != nil {
		t.Fatal(err)
	}
	points, err := s.Sample(8)
	if err != nil {
		t.Fatal(err)
	}
	want := []geom.Point{
		pt(0, 0), pt(2, 0), pt(4, 0), pt(4, 1),
		pt(4, 2), pt(2, 2), pt(0, 2), pt(0, 1),
	}
	diff(t, want, points, cmpopts.EquateApprox(0, 1e-12))

	if _, err := s.Sample(0); err == nil {
		t.Error("expected error for zero sample count")
	}
}
