// Package path models closed curves made of line and cubic Bézier segments
// and samples them uniformly by segment index.
//
// Paths are described the way drawing APIs describe them, as a sequence of
// pen commands (MoveTo, LineTo, CubicTo, ClosePath). A Sampler turns such a
// sequence into self-contained segments, each with an explicit start point,
// and freezes them into a loop.
package path

import (
	"fmt"

	"github.com/irfansharif/epicycle/internal/geom"
)

// SegmentKind identifies the variant stored in a Segment.
type SegmentKind int

const (
	// LineKind is a straight segment from P0 to P1.
	LineKind SegmentKind = iota + 1
	// CubicKind is a cubic Bézier with control points P0..P3.
	CubicKind
)

func (k SegmentKind) String() string {
	switch k {
	case LineKind:
		return "line"
	case CubicKind:
		return "cubic"
	default:
		return fmt.Sprintf("SegmentKind(%d)", int(k))
	}
}

// Segment is one piece of a closed path. Lines only use P0 and P1; the
// remaining points are zero.
type Segment struct {
	Kind SegmentKind
	P0   geom.Point
	P1   geom.Point
	P2   geom.Point
	P3   geom.Point
}

// Line returns a line segment from p0 to p1.
func Line(p0, p1 geom.Point) Segment {
	return Segment{Kind: LineKind, P0: p0, P1: p1}
}

// Cubic returns a cubic Bézier segment.
func Cubic(p0, p1, p2, p3 geom.Point) Segment {
	return Segment{Kind: CubicKind, P0: p0, P1: p1, P2: p2, P3: p3}
}

// PointAt evaluates the segment at t ∈ [0, 1]. t=0 yields the first control
// point and t=1 the last. Values outside [0, 1] extrapolate.
func (s Segment) PointAt(t float64) geom.Point {
	switch s.Kind {
	case LineKind:
		return geom.Lerp(s.P0, s.P1, t)
	case CubicKind:
		mt := 1 - t
		a := mt * mt * mt
		b := 3 * mt * mt * t
		c := 3 * mt * t * t
		d := t * t * t
		return geom.Point{
			X: a*s.P0.X + b*s.P1.X + c*s.P2.X + d*s.P3.X,
			Y: a*s.P0.Y + b*s.P1.Y + c*s.P2.Y + d*s.P3.Y,
		}
	default:
		panic(fmt.Sprintf("unreachable: %v", s.Kind))
	}
}

// Start returns the segment's first control point.
func (s Segment) Start() geom.Point { return s.P0 }

// End returns the segment's last control point.
func (s Segment) End() geom.Point {
	if s.Kind == CubicKind {
		return s.P3
	}
	return s.P1
}

func (s Segment) String() string {
	switch s.Kind {
	case LineKind:
		return fmt.Sprintf("Line(%v, %v)", s.P0, s.P1)
	case CubicKind:
		return fmt.Sprintf("Cubic(%v, %v, %v, %v)", s.P0, s.P1, s.P2, s.P3)
	default:
		return s.Kind.String()
	}
}
