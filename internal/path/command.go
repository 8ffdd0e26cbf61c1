package path

import (
	"fmt"

	"github.com/irfansharif/epicycle/internal/geom"
)

// CommandKind identifies a pen command.
type CommandKind int

const (
	// MoveToKind lifts the pen and moves it to P0.
	MoveToKind CommandKind = iota + 1
	// LineToKind draws a line to P0.
	LineToKind
	// CubicToKind draws a cubic Bézier with control points P0, P1 and end
	// point P2.
	CubicToKind
	// ClosePathKind closes the current subpath.
	ClosePathKind
)

func (k CommandKind) String() string {
	switch k {
	case MoveToKind:
		return "M"
	case LineToKind:
		return "L"
	case CubicToKind:
		return "C"
	case ClosePathKind:
		return "Z"
	default:
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
}

// Command is one drawing command. Unused points are zero.
type Command struct {
	Kind CommandKind
	P0   geom.Point
	P1   geom.Point
	P2   geom.Point
}

func MoveTo(p geom.Point) Command { return Command{Kind: MoveToKind, P0: p} }
func LineTo(p geom.Point) Command { return Command{Kind: LineToKind, P0: p} }
func ClosePath() Command          { return Command{Kind: ClosePathKind} }

// CubicTo returns a cubic Bézier command with control points c1, c2 ending at
// p.
func CubicTo(c1, c2, p geom.Point) Command {
	return Command{Kind: CubicToKind, P0: c1, P1: c2, P2: p}
}

// End returns the pen position after the command. ClosePath has no position
// of its own and returns the zero point.
func (c Command) End() geom.Point {
	switch c.Kind {
	case CubicToKind:
		return c.P2
	case ClosePathKind:
		return geom.Point{}
	default:
		return c.P0
	}
}

// Points returns the command's coordinates in order.
func (c Command) Points() []geom.Point {
	switch c.Kind {
	case MoveToKind, LineToKind:
		return []geom.Point{c.P0}
	case CubicToKind:
		return []geom.Point{c.P0, c.P1, c.P2}
	default:
		return nil
	}
}

func (c Command) String() string {
	switch c.Kind {
	case MoveToKind, LineToKind:
		return fmt.Sprintf("%s %g,%g", c.Kind, c.P0.X, c.P0.Y)
	case CubicToKind:
		return fmt.Sprintf("C %g,%g %g,%g %g,%g", c.P0.X, c.P0.Y, c.P1.X, c.P1.Y, c.P2.X, c.P2.Y)
	default:
		return c.Kind.String()
	}
}
