package path

import (
	"fmt"
	"math"

	"github.com/irfansharif/epicycle/internal/geom"
)

// CloseTolerance is the distance below which a path's end point is considered
// to coincide with its start point. Paths ending further away get an implicit
// closing line.
const CloseTolerance = 1e-9

// MalformedPathError is returned when a command sequence cannot be turned into
// a single closed loop.
type MalformedPathError struct {
	Index  int // offending command index, or -1 for the sequence as a whole
	Reason string
}

func (e *MalformedPathError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed path: %s", e.Reason)
	}
	return fmt.Sprintf("malformed path: command %d: %s", e.Index, e.Reason)
}

// Sampler is a frozen closed loop of segments that can be sampled uniformly
// by segment index. It is safe for concurrent use since it is never mutated
// after construction.
type Sampler struct {
	segments []Segment
}

// NewSampler builds a closed loop from drawing commands. The sequence must
// start with MoveTo and end with ClosePath, and may not contain further moves
// or closes in between. Each LineTo and CubicTo becomes one segment starting
// at the previous command's end point. If the last drawn point does not
// coincide with the initial MoveTo, a closing line is appended.
func NewSampler(cmds []Command) (*Sampler, error) {
	if len(cmds) == 0 {
		return nil, &MalformedPathError{Index: -1, Reason: "no commands"}
	}
	if cmds[0].Kind != MoveToKind {
		return nil, &MalformedPathError{Index: 0, Reason: fmt.Sprintf("expected M, got %s", cmds[0].Kind)}
	}
	last := len(cmds) - 1
	if cmds[last].Kind != ClosePathKind {
		return nil, &MalformedPathError{Index: last, Reason: fmt.Sprintf("expected Z, got %s", cmds[last].Kind)}
	}

	start := cmds[0].P0
	pen := start
	segments := make([]Segment, 0, len(cmds))
	for i := 1; i < last; i++ {
		cmd := cmds[i]
		switch cmd.Kind {
		case LineToKind:
			segments = append(segments, Line(pen, cmd.P0))
		case CubicToKind:
			segments = append(segments, Cubic(pen, cmd.P0, cmd.P1, cmd.P2))
		default:
			return nil, &MalformedPathError{Index: i, Reason: fmt.Sprintf("unexpected %s inside a single closed path", cmd.Kind)}
		}
		pen = cmd.End()
	}

	if geom.Dist(pen, start) > CloseTolerance {
		segments = append(segments, Line(pen, start))
	}
	if len(segments) == 0 {
		return nil, &MalformedPathError{Index: -1, Reason: "path has no segments"}
	}
	return &Sampler{segments: segments}, nil
}

// Len returns the number of segments in the loop.
func (s *Sampler) Len() int { return len(s.segments) }

// Segments returns a copy of the loop's segments.
func (s *Sampler) Segments() []Segment {
	return append([]Segment(nil), s.segments...)
}

// Commands re-emits the loop as drawing commands: a MoveTo to the first
// segment's start, one command per segment, and a ClosePath.
func (s *Sampler) Commands() []Command {
	cmds := make([]Command, 0, len(s.segments)+2)
	cmds = append(cmds, MoveTo(s.segments[0].Start()))
	for _, seg := range s.segments {
		switch seg.Kind {
		case LineKind:
			cmds = append(cmds, LineTo(seg.P1))
		case CubicKind:
			cmds = append(cmds, CubicTo(seg.P1, seg.P2, seg.P3))
		}
	}
	return append(cmds, ClosePath())
}

// PointAt returns the point at parameter t along the loop. t is taken modulo
// 1, so the loop is periodic: PointAt(t) == PointAt(t+1). Each segment gets an
// equal share of the parameter range regardless of its length, so curvy or
// long segments are sampled as densely as short ones.
//
// A NaN or infinite t returns a point with NaN coordinates.
func (s *Sampler) PointAt(t float64) geom.Point {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return geom.Point{X: math.NaN(), Y: math.NaN()}
	}
	t -= math.Floor(t)

	n := len(s.segments)
	tn := t * float64(n)
	i := int(math.Floor(tn))
	i = max(0, min(n-1, i))
	return s.segments[i].PointAt(tn - float64(i))
}

// Sample evaluates the loop at n evenly spaced parameters i/n, i ∈ [0, n).
func (s *Sampler) Sample(n int) ([]geom.Point, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sample count must be positive, got %d", n)
	}
	points := make([]geom.Point, n)
	for i := range points {
		points[i] = s.PointAt(float64(i) / float64(n))
	}
	return points, nil
}
