// Package gen procedurally generates closed shapes to draw.
//
// The algorithm works in a few stages:
//   - Pick features from a seeded RNG: how many lobes the shape has, how
//     irregular it is, and what fraction of its edges are straight.
//   - Place 2·lobes vertices around the origin, alternating between an outer
//     and an inner radius, each jittered by the irregularity.
//   - Join consecutive vertices with either a straight line or a cubic Bézier
//     taken from the Catmull-Rom spline through the vertices.
//
// Shapes live in unit coordinates centered on the origin; the returned view
// box frames them.
package gen

import (
	"math"
	"math/rand"

	"github.com/irfansharif/epicycle/internal/geom"
	"github.com/irfansharif/epicycle/internal/outline"
	"github.com/irfansharif/epicycle/internal/path"
)

// Features represents the configuration for the generator.
type Features struct {
	Lobes         int
	Irregularity  float64 // in [0, 1]
	StraightRatio float64 // probability an edge is a line rather than a curve
}

// Shape is a generated closed path and the box that frames it.
type Shape struct {
	Commands []path.Command
	ViewBox  geom.Box
	Features Features
}

// Generator implements the shape generation algorithm.
type Generator struct {
	Features Features
}

func NewGenerator() *Generator {
	return &Generator{}
}

// initFeatures randomizes the features of the generator.
func (g *Generator) initFeatures(rng *rand.Rand) {
	v := rng.Float64()
	if v < 0.6 {
		g.Features.Lobes = 3 + rng.Intn(4)
	} else if v < 0.9 {
		g.Features.Lobes = 7 + rng.Intn(6)
	} else {
		g.Features.Lobes = 13 + rng.Intn(12)
	}

	v = rng.Float64()
	if v < 0.5 {
		g.Features.Irregularity = 0.1
	} else if v < 0.85 {
		g.Features.Irregularity = 0.35
	} else {
		g.Features.Irregularity = 0.7
	}

	v = rng.Float64()
	if v < 0.7 {
		g.Features.StraightRatio = 0
	} else {
		g.Features.StraightRatio = 0.25 + 0.5*rng.Float64()
	}
}

// SetFeaturesForComplexity sets features based on the given complexity level.
// If complexity is nil, uses default randomization.
func (g *Generator) SetFeaturesForComplexity(rng *rand.Rand, complexity *int) {
	if complexity == nil {
		g.initFeatures(rng)
		return
	}

	g.Features.Lobes = max(2, *complexity)

	if *complexity <= 5 {
		g.Features.Irregularity = 0.1
	} else if *complexity <= 15 {
		g.Features.Irregularity = 0.35
	} else {
		g.Features.Irregularity = 0.7
	}

	// Busier shapes get more corners.
	g.Features.StraightRatio = min(0.75, float64(*complexity)/40)
}

// Generate creates a new closed shape. The same seed and complexity always
// produce the same shape.
func (g *Generator) Generate(seed int64, complexity *int) Shape {
	rng := rand.New(rand.NewSource(seed))
	g.SetFeaturesForComplexity(rng, complexity)

	verts := g.vertices(rng)
	cmds := g.edges(verts, rng)
	return Shape{
		Commands: cmds,
		ViewBox:  viewBox(cmds),
		Features: g.Features,
	}
}

// vertices places the shape's corners, alternating between lobe tips and
// the valleys between them.
func (g *Generator) vertices(rng *rand.Rand) []geom.Point {
	n := 2 * g.Features.Lobes
	irr := g.Features.Irregularity
	verts := make([]geom.Point, n)
	for i := range verts {
		step := 2 * math.Pi / float64(n)
		theta := float64(i)*step + irr*0.4*step*(2*rng.Float64()-1)
		r := 1.0
		if i%2 == 1 {
			r = 0.45 + 0.25*rng.Float64()
		}
		r *= 1 + irr*0.3*(2*rng.Float64()-1)
		// Screen space has y pointing down; walk clockwise on screen.
		verts[i] = geom.Expim(-theta).Scale(r)
	}
	return verts
}

// edges joins the vertices into a closed path, ending exactly where it
// started.
func (g *Generator) edges(verts []geom.Point, rng *rand.Rand) []path.Command {
	n := len(verts)
	at := func(i int) geom.Point { return verts[((i%n)+n)%n] }

	cmds := make([]path.Command, 0, n+2)
	cmds = append(cmds, path.MoveTo(verts[0]))
	for i := range n {
		p0, p1 := at(i), at(i+1)
		if rng.Float64() < g.Features.StraightRatio {
			cmds = append(cmds, path.LineTo(p1))
			continue
		}
		// Catmull-Rom through p(i-1), p(i), p(i+1), p(i+2) as a Bézier.
		c1 := p0.Add(p1.Sub(at(i - 1)).Scale(1.0 / 6))
		c2 := p1.Sub(at(i + 2).Sub(p0).Scale(1.0 / 6))
		cmds = append(cmds, path.CubicTo(c1, c2, p1))
	}
	return append(cmds, path.ClosePath())
}

func viewBox(cmds []path.Command) geom.Box {
	b := outline.Bounds(outline.FromCommands(cmds))
	if b.Empty() {
		// Unreachable for two or more lobes; fall back to the unit frame.
		return geom.MakeBox(-1.5, -1.5, 3, 3)
	}
	return b.Pad(0.1)
}
