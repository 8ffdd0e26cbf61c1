// Package mesh assembles coloured vertex data for the GPU without touching
// the GPU itself: interleaved vertex arrays split into draw batches, and the
// slot bookkeeping for the trail of recent frames.
package mesh

import (
	"fmt"

	"github.com/irfansharif/epicycle/internal/geom"
)

// Stride is the number of floats per vertex: x, y, r, g, b, a.
const Stride = 6

// Primitive is how a batch's vertices are assembled.
type Primitive int

const (
	Triangles Primitive = iota
	Lines
	LineStrip
	LineLoop
)

func (p Primitive) String() string {
	switch p {
	case Triangles:
		return "triangles"
	case Lines:
		return "lines"
	case LineStrip:
		return "line-strip"
	case LineLoop:
		return "line-loop"
	default:
		return fmt.Sprintf("primitive(%d)", int(p))
	}
}

// Batch is a contiguous run of vertices drawn with one primitive.
type Batch struct {
	Mode  Primitive
	First int // first vertex
	Count int // vertex count
}

// Mesh is a list of batches over one interleaved vertex array. The zero value
// is empty and ready to use.
type Mesh struct {
	Vertices []float32
	Batches  []Batch
}

// Reset empties the mesh, keeping its storage.
func (m *Mesh) Reset() {
	m.Vertices = m.Vertices[:0]
	m.Batches = m.Batches[:0]
}

// VertexCount returns the number of vertices across all batches.
func (m *Mesh) VertexCount() int { return len(m.Vertices) / Stride }

// Triangles returns the number of triangles across Triangles batches.
func (m *Mesh) Triangles() int {
	n := 0
	for _, b := range m.Batches {
		if b.Mode == Triangles {
			n += b.Count / 3
		}
	}
	return n
}

// AddLineLoop adds a closed outline through the points.
func (m *Mesh) AddLineLoop(points []geom.Point, c [4]float32) {
	if len(points) < 2 {
		return
	}
	m.add(LineLoop, points, c)
}

// AddLineStrip adds an open polyline through the points.
func (m *Mesh) AddLineStrip(points []geom.Point, c [4]float32) {
	if len(points) < 2 {
		return
	}
	m.add(LineStrip, points, c)
}

// AddTriangles adds filled triangles.
func (m *Mesh) AddTriangles(tris [][3]geom.Point, c [4]float32) {
	if len(tris) == 0 {
		return
	}
	pts := make([]geom.Point, 0, 3*len(tris))
	for _, t := range tris {
		pts = append(pts, t[0], t[1], t[2])
	}
	m.add(Triangles, pts, c)
}

// AddConvex adds filled convex polygons as triangle fans. Polygons with fewer
// than three corners are skipped.
func (m *Mesh) AddConvex(polys [][]geom.Point, c [4]float32) {
	var pts []geom.Point
	for _, poly := range polys {
		for i := 1; i+1 < len(poly); i++ {
			pts = append(pts, poly[0], poly[i], poly[i+1])
		}
	}
	if len(pts) == 0 {
		return
	}
	m.add(Triangles, pts, c)
}

func (m *Mesh) add(mode Primitive, points []geom.Point, c [4]float32) {
	first := m.VertexCount()
	for _, p := range points {
		m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), c[0], c[1], c[2], c[3])
	}
	// Triangles and line lists concatenate; strips and loops don't.
	if n := len(m.Batches); n > 0 && (mode == Triangles || mode == Lines) {
		last := &m.Batches[n-1]
		if last.Mode == mode && last.First+last.Count == first {
			last.Count += len(points)
			return
		}
	}
	m.Batches = append(m.Batches, Batch{Mode: mode, First: first, Count: len(points)})
}
