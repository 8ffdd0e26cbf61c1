package app

const (
	minZoom = 0.1
	maxZoom = 40.0
)

// View manages the current view state including zoom, pan, and viewport.
// Pan is in framebuffer pixels; zoom scales around the viewport center.
type View struct {
	Zoom          float64
	PanX, PanY    float64
	Width, Height int
}

// NewView creates a new view state with default values.
func NewView(width, height int) *View {
	return &View{
		Zoom:   1.0,
		Width:  width,
		Height: height,
	}
}

// SetZoom sets the zoom level, clamping to valid range.
func (vs *View) SetZoom(zoom float64) {
	if zoom < minZoom {
		vs.Zoom = minZoom
	} else if zoom > maxZoom {
		vs.Zoom = maxZoom
	} else {
		vs.Zoom = zoom
	}
}

// SetPan sets the pan position to the given coordinates.
func (vs *View) SetPan(x, y float64) {
	vs.PanX = x
	vs.PanY = y
}

// ZoomAt multiplies the zoom by factor, keeping the canvas point under the
// framebuffer position (x, y) fixed.
func (vs *View) ZoomAt(factor, x, y float64) {
	centerX, centerY := float64(vs.Width)/2, float64(vs.Height)/2
	offsetX, offsetY := x-centerX, y-centerY

	// What canvas point (relative to center) is under the cursor right now?
	canvasX, canvasY := (offsetX-vs.PanX)/vs.Zoom, (offsetY-vs.PanY)/vs.Zoom

	vs.SetZoom(vs.Zoom * factor)
	vs.SetPan(offsetX-canvasX*vs.Zoom, offsetY-canvasY*vs.Zoom)
}

// SetViewport updates the viewport dimensions.
func (vs *View) SetViewport(width, height int) {
	vs.Width = width
	vs.Height = height
}

// Reset restores zoom 1.0 with the drawing centered.
func (vs *View) Reset() {
	vs.Zoom = 1.0
	vs.PanX, vs.PanY = 0, 0
}
