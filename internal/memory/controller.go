// Package memory manages GPU memory for the drawing: a ring of fixed-capacity
// slots in one VBO holding the trail of recent frames, and a stream buffer
// re-filled every frame for everything else.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/irfansharif/epicycle/internal/geom"
	"github.com/irfansharif/epicycle/internal/logging"
	"github.com/irfansharif/epicycle/internal/mesh"
)

// Trail slots hold positions only (x, y); colour is a constant vertex
// attribute set per slot at draw time.
const positionStride = 2 * 4 // bytes

// MemoryController keeps the last few frames on the GPU.
type MemoryController struct {
	ring         *mesh.Ring
	slotCapacity int // vertices per slot
	vao, vbo     uint32
	stats        Stats
	logger       *slog.Logger
}

// Stats tracks performance metrics for the memory controller.
type Stats struct {
	Slots             int
	ActiveSlots       int
	SlotCapacity      int
	TotalVertices     int64
	TotalGPUBytes     int64
	DrawCallsPerFrame int
	Uploads           int64
	LastUploadTimeUs  float64
	Reallocations     int
}

// NewMemoryController allocates a VBO of slots × slotCapacity vertices.
func NewMemoryController(slots, slotCapacity int) (*MemoryController, error) {
	if slots <= 0 || slotCapacity <= 0 {
		return nil, fmt.Errorf("invalid trail geometry: %d slots of %d vertices", slots, slotCapacity)
	}
	mc := &MemoryController{logger: logging.Component("memory")}
	gl.GenVertexArrays(1, &mc.vao)
	gl.GenBuffers(1, &mc.vbo)
	mc.allocate(slots, slotCapacity)
	return mc, nil
}

// allocate (re)sizes the VBO and forgets any frames in it.
func (mc *MemoryController) allocate(slots, slotCapacity int) {
	mc.ring = mesh.NewRing(slots)
	mc.slotCapacity = slotCapacity

	gl.BindVertexArray(mc.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, mc.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, slots*slotCapacity*positionStride, nil, gl.DYNAMIC_DRAW)

	// - Attribute 0: position (vec2)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, positionStride, gl.PtrOffset(0))
	// - Attribute 1: colour, constant per draw
	gl.DisableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	mc.stats.Reallocations++
	mc.logger.Debug("allocated trail buffer",
		slog.Int("slots", slots),
		slog.Int("slot_capacity", slotCapacity),
		slog.String("gpu", formatNumber(int64(slots*slotCapacity*positionStride))),
	)
}

// Resize reallocates the buffer if the geometry changed, dropping the trail.
func (mc *MemoryController) Resize(slots, slotCapacity int) error {
	if slots <= 0 || slotCapacity <= 0 {
		return fmt.Errorf("invalid trail geometry: %d slots of %d vertices", slots, slotCapacity)
	}
	if slots == mc.ring.Cap() && slotCapacity == mc.slotCapacity {
		mc.Reset()
		return nil
	}
	mc.allocate(slots, slotCapacity)
	return nil
}

// Reset drops the trail without touching the GPU buffer.
func (mc *MemoryController) Reset() { mc.ring.Reset() }

// Push uploads a frame into the oldest slot.
func (mc *MemoryController) Push(points []geom.Point) error {
	if len(points) > mc.slotCapacity {
		return fmt.Errorf("frame of %d vertices exceeds slot capacity %d", len(points), mc.slotCapacity)
	}
	start := time.Now()

	data := make([]float32, 0, 2*len(points))
	for _, p := range points {
		data = append(data, float32(p.X), float32(p.Y))
	}
	slot := mc.ring.Push(len(points))
	if len(data) > 0 {
		gl.BindBuffer(gl.ARRAY_BUFFER, mc.vbo)
		gl.BufferSubData(gl.ARRAY_BUFFER, slot*mc.slotCapacity*positionStride, len(data)*4, gl.Ptr(data))
		gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	}

	mc.stats.Uploads++
	mc.stats.LastUploadTimeUs = float64(time.Since(start).Microseconds())
	return nil
}

// Draw outlines every frame in the trail, oldest first, each in the colour
// returned for its age (0 for the newest frame).
func (mc *MemoryController) Draw(colour func(age int) [4]float32) {
	order := mc.ring.Order()
	drawCalls := 0

	gl.BindVertexArray(mc.vao)
	for i, slot := range order {
		n := mc.ring.Count(slot)
		if n < 2 {
			continue
		}
		c := colour(len(order) - 1 - i)
		gl.VertexAttrib4f(1, c[0], c[1], c[2], c[3])
		gl.DrawArrays(gl.LINE_LOOP, int32(slot*mc.slotCapacity), int32(n))
		drawCalls++
	}
	gl.BindVertexArray(0)
	mc.stats.DrawCallsPerFrame = drawCalls
}

// Cleanup releases all OpenGL resources.
func (mc *MemoryController) Cleanup() {
	gl.DeleteBuffers(1, &mc.vbo)
	gl.DeleteVertexArrays(1, &mc.vao)
}

// Stats returns current memory statistics.
func (mc *MemoryController) Stats() Stats {
	mc.stats.Slots = mc.ring.Cap()
	mc.stats.ActiveSlots = mc.ring.Len()
	mc.stats.SlotCapacity = mc.slotCapacity
	mc.stats.TotalVertices = int64(mc.ring.Vertices())
	mc.stats.TotalGPUBytes = int64(mc.ring.Cap() * mc.slotCapacity * positionStride)
	return mc.stats
}

// LogStats writes memory statistics, with a utilization bar, at debug level.
func (mc *MemoryController) LogStats() {
	if !mc.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	stats := mc.Stats()
	util := 0.0
	if stats.Slots > 0 {
		util = float64(stats.ActiveSlots) / float64(stats.Slots)
	}
	mc.logger.Debug("trail stats",
		slog.String("slots", fmt.Sprintf("%s %d/%d", makeUtilizationBar(util, 12), stats.ActiveSlots, stats.Slots)),
		slog.String("vertices", formatNumber(stats.TotalVertices)),
		slog.String("gpu", formatNumber(stats.TotalGPUBytes)),
		slog.Int("draw_calls", stats.DrawCallsPerFrame),
		slog.Int64("uploads", stats.Uploads),
		slog.Float64("last_upload_us", stats.LastUploadTimeUs),
	)
}

// makeUtilizationBar creates a visual bar for utilization percentage.
func makeUtilizationBar(utilization float64, width int) string {
	utilization = max(0, min(1, utilization))
	filled := int(utilization * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// formatNumber formats large numbers with K/M suffixes for readability.
func formatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000.0)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000.0)
}
