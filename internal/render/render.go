// Package render draws the reconstruction with OpenGL.
//
// Geometry is kept in model coordinates (the source's viewBox). A single
// matrix maps it to the screen:
// 1. Fits the viewBox into the central part of the viewport.
// 2. Applies the user's zoom around the viewport center and pan.
// 3. Converts screen pixels to NDC.
package render

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/irfansharif/epicycle/internal/fourier"
	"github.com/irfansharif/epicycle/internal/geom"
	"github.com/irfansharif/epicycle/internal/logging"
	"github.com/irfansharif/epicycle/internal/memory"
	"github.com/irfansharif/epicycle/internal/mesh"
	"github.com/irfansharif/epicycle/internal/outline"
	"github.com/irfansharif/epicycle/internal/palette"
)

const viewportScaleFactor = 0.8

// Vertices per epicycle circle.
const circleSegments = 48

// Maximum distance, in pixels, between a stroke's round caps and their
// flattened outline.
const strokeTolerance = 0.25

type Renderer struct {
	w, h             int
	zoom, panX, panY float64

	trail         *memory.MemoryController
	stream        *memory.Stream
	shaderManager *ShaderManager

	viewBox     geom.Box
	palette     palette.Palette
	strokeWidth float64 // pixels
	trailLength int

	mesh   mesh.Mesh
	stats  Stats
	logger *slog.Logger
}

// Scene is what to draw on top of the trail this frame.
type Scene struct {
	Frame   fourier.Frame
	Arms    []geom.Point // epicycle joints, origin first; none if empty
	Samples []geom.Point // the sampled source path; not drawn if empty
	Fill    bool
}

// Stats tracks rendering performance metrics.
type Stats struct {
	LastPrepareTimeUs float64 // building the per-frame mesh
	LastDrawTimeUs    float64 // issuing GL calls
	Triangles         int
	DrawCalls         int
}

// NewRenderer compiles the shaders and allocates a trail of trailLength
// frames of up to points vertices each.
func NewRenderer(trailLength, points int, strokeWidth float64) (*Renderer, error) {
	sm, err := NewShaderManager()
	if err != nil {
		return nil, err
	}
	trail, err := memory.NewMemoryController(max(1, trailLength), points)
	if err != nil {
		sm.Delete()
		return nil, err
	}
	return &Renderer{
		zoom:          1.0,
		shaderManager: sm,
		trail:         trail,
		stream:        memory.NewStream(),
		viewBox:       geom.MakeBox(0, 0, 1, 1),
		palette:       palette.Default(),
		strokeWidth:   strokeWidth,
		trailLength:   trailLength,
		logger:        logging.Component("render"),
	}, nil
}

func (r *Renderer) SetView(w, h int, zoom, panX, panY float64) {
	r.w, r.h = w, h
	r.zoom = zoom
	r.panX, r.panY = panX, panY
}

// SetModel switches to a new drawing: its viewBox, colours, and frame size.
// The trail is dropped.
func (r *Renderer) SetModel(viewBox geom.Box, pal palette.Palette, points int) error {
	if viewBox.Empty() {
		return fmt.Errorf("empty viewBox %+v", viewBox)
	}
	if err := r.trail.Resize(max(1, r.trailLength), points); err != nil {
		return err
	}
	r.viewBox, r.palette = viewBox, pal
	return nil
}

// SetPalette changes colours without touching the trail.
func (r *Renderer) SetPalette(pal palette.Palette) { r.palette = pal }

// PushTrail adds a frame that is no longer current to the trail.
func (r *Renderer) PushTrail(frame fourier.Frame) error {
	if r.trailLength == 0 {
		return nil
	}
	return r.trail.Push(frame.Points)
}

// ResetTrail forgets the trail, e.g. after seeking.
func (r *Renderer) ResetTrail() { r.trail.Reset() }

// Draw renders the scene over the trail. The caller clears the framebuffer.
func (r *Renderer) Draw(scene Scene) error {
	if r.w <= 0 || r.h <= 0 {
		return fmt.Errorf("invalid viewport dimensions %dx%d", r.w, r.h)
	}
	modelToWorld, err := r.modelToWorld()
	if err != nil {
		return err
	}

	prepareStart := time.Now()
	r.buildMesh(scene, modelToWorld)
	r.stats.LastPrepareTimeUs = float64(time.Since(prepareStart).Microseconds())

	drawStart := time.Now()
	r.shaderManager.SetTransform(r.computeTransformMatrix(modelToWorld))

	// Samples go under the trail; everything else over it.
	split := 0
	if len(scene.Samples) > 1 {
		split = 1
	}
	r.stream.Upload(&r.mesh)
	calls := r.stream.Draw(r.mesh.Batches[:split])
	if r.trailLength > 0 {
		r.trail.Draw(func(age int) [4]float32 {
			return palette.Floats(palette.Faded(r.palette, age+1, r.trailLength+1))
		})
		calls += r.trail.Stats().DrawCallsPerFrame
	}
	calls += r.stream.Draw(r.mesh.Batches[split:])

	r.stats.LastDrawTimeUs = float64(time.Since(drawStart).Microseconds())
	r.stats.Triangles = r.mesh.Triangles()
	r.stats.DrawCalls = calls
	return nil
}

// buildMesh assembles everything but the trail. If samples are shown they
// are the first batch.
func (r *Renderer) buildMesh(scene Scene, modelToWorld geom.Affine) {
	r.mesh.Reset()
	pal := r.palette

	if len(scene.Samples) > 1 {
		r.mesh.AddLineLoop(scene.Samples, palette.Floats(pal.Samples))
	}
	points := scene.Frame.Points
	if scene.Fill && len(points) >= 3 {
		tris, err := triangulate(points)
		if err != nil {
			r.logger.Debug("skipping fill", slog.Int("terms", scene.Frame.Terms), slog.Any("err", err))
		} else {
			r.mesh.AddTriangles(tris, palette.Floats(pal.Fill))
		}
	}

	// Stroke widths and tolerances are in pixels; geometry is in model units.
	unit := 1 / (modelToWorld.Scale() * r.zoom)
	tol := strokeTolerance * unit
	r.mesh.AddConvex(outline.Edges(points, r.strokeWidth*unit, true, tol), palette.Floats(pal.Stroke))

	if len(scene.Arms) > 1 {
		arms := palette.Floats(pal.Arms)
		circles := arms
		circles[3] *= 0.5
		for i := range len(scene.Arms) - 1 {
			c, tip := scene.Arms[i], scene.Arms[i+1]
			if rad := geom.Dist(c, tip); rad*modelToWorld.Scale()*r.zoom > 1 {
				r.mesh.AddLineLoop(geom.Circle(c, rad, circleSegments), circles)
			}
		}
		r.mesh.AddConvex(outline.Edges(scene.Arms, 0.5*r.strokeWidth*unit, false, tol), arms)
	}
}

// Stats returns the current performance statistics.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// TrailStats returns the trail buffer's statistics.
func (r *Renderer) TrailStats() memory.Stats { return r.trail.Stats() }

// LogStats writes trail statistics at debug level.
func (r *Renderer) LogStats() { r.trail.LogStats() }

// Cleanup releases all OpenGL resources.
func (r *Renderer) Cleanup() {
	r.trail.Cleanup()
	r.stream.Cleanup()
	r.shaderManager.Delete()
}

// modelToWorld fits the viewBox into the middle of the viewport.
func (r *Renderer) modelToWorld() (geom.Affine, error) {
	w, h := float64(r.w), float64(r.h)
	screen := geom.MakeBox(
		0.5*(1-viewportScaleFactor)*w, 0.5*(1-viewportScaleFactor)*h,
		viewportScaleFactor*w, viewportScaleFactor*h,
	)
	return geom.FillBox(r.viewBox, screen)
}

// computeTransformMatrix computes the complete transformation matrix from
// model coordinates to OpenGL NDC.
func (r *Renderer) computeTransformMatrix(modelToWorld geom.Affine) [16]float32 {
	transform := modelToWorld
	transform = r.applyZoomTransform(transform)
	transform = r.applyPanTransform(transform)
	transform = r.applyScreenToNDCTransform(transform)
	return affineToMatrix4(transform)
}

// applyZoomTransform applies zoom scaling around the viewport center.
func (r *Renderer) applyZoomTransform(baseTransform geom.Affine) geom.Affine {
	viewportCenterX := float64(r.w) / 2.0
	viewportCenterY := float64(r.h) / 2.0

	translateToOrigin := geom.MakeAffine(1, 0, -viewportCenterX, 0, 1, -viewportCenterY)
	uniformScale := geom.MakeAffine(r.zoom, 0, 0, 0, r.zoom, 0)
	translateBack := geom.MakeAffine(1, 0, viewportCenterX, 0, 1, viewportCenterY)

	return translateBack.Mul(uniformScale.Mul(translateToOrigin.Mul(baseTransform)))
}

// applyPanTransform applies pan translation in screen space.
func (r *Renderer) applyPanTransform(baseTransform geom.Affine) geom.Affine {
	panTranslation := geom.MakeAffine(1, 0, r.panX, 0, 1, r.panY)
	return panTranslation.Mul(baseTransform)
}

// applyScreenToNDCTransform converts screen coordinates to OpenGL NDC.
func (r *Renderer) applyScreenToNDCTransform(baseTransform geom.Affine) geom.Affine {
	screenToNDC := geom.MakeAffine(
		2.0/float64(r.w), 0, -1,
		0, -2.0/float64(r.h), 1,
	)
	return screenToNDC.Mul(baseTransform)
}

// affineToMatrix4 converts an affine transform to OpenGL 4x4 matrix format
// (column major).
func affineToMatrix4(transform geom.Affine) [16]float32 {
	return [16]float32{
		float32(transform.A), float32(transform.D), 0, 0,
		float32(transform.B), float32(transform.E), 0, 0,
		0, 0, 1, 0,
		float32(transform.C), float32(transform.F), 0, 1,
	}
}
