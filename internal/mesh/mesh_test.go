package mesh

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/irfansharif/epicycle/internal/geom"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

var red = [4]float32{1, 0, 0, 1}

func TestMeshBatches(t *testing.T) {
	var m Mesh
	square := []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	m.AddLineLoop(square, red)
	m.AddConvex([][]geom.Point{square, square[:2]}, red) // the second is too short
	m.AddTriangles([][3]geom.Point{{square[0], square[1], square[2]}}, red)
	m.AddLineStrip(square[:3], red)
	m.AddLineStrip(square[:1], red) // too short, dropped

	diff(t, []Batch{
		{Mode: LineLoop, First: 0, Count: 4},
		{Mode: Triangles, First: 4, Count: 9}, // fan and triangle merged
		{Mode: LineStrip, First: 13, Count: 3},
	}, m.Batches)
	diff(t, 16, m.VertexCount())
	diff(t, 3, m.Triangles())
	// Second vertex of the loop.
	diff(t, []float32{1, 0, 1, 0, 0, 1}, m.Vertices[Stride:2*Stride])

	m.Reset()
	diff(t, 0, m.VertexCount())
	diff(t, 0, len(m.Batches))
}

func TestRing(t *testing.T) {
	r := NewRing(3)
	diff(t, 0, r.Len())
	diff(t, []int{}, r.Order())

	diff(t, 0, r.Push(10))
	diff(t, 1, r.Push(11))
	diff(t, []int{0, 1}, r.Order())
	diff(t, 21, r.Vertices())

	diff(t, 2, r.Push(12))
	// Full: the oldest slot is reused.
	diff(t, 0, r.Push(13))
	diff(t, 3, r.Len())
	diff(t, []int{1, 2, 0}, r.Order())
	diff(t, 13, r.Count(0))
	diff(t, 36, r.Vertices())

	r.Reset()
	diff(t, 0, r.Len())
	diff(t, 0, r.Push(5))
}
