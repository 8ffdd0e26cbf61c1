package memory

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/irfansharif/epicycle/internal/mesh"
)

const vertexStride = mesh.Stride * 4 // bytes

// Stream is a vertex buffer re-filled every frame with interleaved
// position and colour data. It grows as needed and never shrinks.
type Stream struct {
	vao, vbo uint32
	capacity int // bytes
}

func NewStream() *Stream {
	s := &Stream{}
	gl.GenVertexArrays(1, &s.vao)
	gl.GenBuffers(1, &s.vbo)

	gl.BindVertexArray(s.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, s.vbo)
	// - Attribute 0: position (vec2)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, vertexStride, gl.PtrOffset(0))
	// - Attribute 1: colour (vec4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 4, gl.FLOAT, false, vertexStride, gl.PtrOffset(8))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return s
}

// Upload replaces the buffer contents with the mesh's vertices.
func (s *Stream) Upload(m *mesh.Mesh) {
	size := len(m.Vertices) * 4
	if size == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, s.vbo)
	if size > s.capacity {
		s.capacity = max(size, 2*s.capacity)
		gl.BufferData(gl.ARRAY_BUFFER, s.capacity, nil, gl.STREAM_DRAW)
	}
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(m.Vertices))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Draw draws batches of the last uploaded mesh in order, returning the number
// of draw calls issued.
func (s *Stream) Draw(batches []mesh.Batch) int {
	if len(batches) == 0 {
		return 0
	}
	gl.BindVertexArray(s.vao)
	for _, b := range batches {
		gl.DrawArrays(primitive(b.Mode), int32(b.First), int32(b.Count))
	}
	gl.BindVertexArray(0)
	return len(batches)
}

// Cleanup releases all OpenGL resources.
func (s *Stream) Cleanup() {
	gl.DeleteBuffers(1, &s.vbo)
	gl.DeleteVertexArrays(1, &s.vao)
}

func primitive(p mesh.Primitive) uint32 {
	switch p {
	case mesh.Triangles:
		return gl.TRIANGLES
	case mesh.Lines:
		return gl.LINES
	case mesh.LineStrip:
		return gl.LINE_STRIP
	case mesh.LineLoop:
		return gl.LINE_LOOP
	default:
		panic(fmt.Sprintf("unknown primitive %v", p))
	}
}
