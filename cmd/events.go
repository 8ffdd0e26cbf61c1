package main

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/irfansharif/epicycle/internal/app"
)

const repeatInterval = 125 * time.Millisecond // time between successive steps/pans when held down
const basePanDistance = 100.0

// EventHandlers manages all event handling for the application.
type EventHandlers struct {
	application *app.App
	logger      *slog.Logger

	// Left/right step through term counts. If held down, we do so
	// continuously.
	stepHeld     bool
	stepDelta    int
	lastStepTime time.Time

	// J/K/H/L allow panning across through keypresses. They also do so
	// continuously if held.
	panKeyHeld                   bool
	panDirectionX, panDirectionY float64
	lastPanTime                  time.Time

	// Drag/pan state (per-gesture), captured on mouse press.
	isDragging                       bool
	dragStartMouseX, dragStartMouseY float64
	dragStartPanX, dragStartPanY     float64

	// Input buffer for numeric input (step size, term count, seed or
	// "seed,complexity"). Accumulates digits until an action key is pressed.
	inputBuffer string
}

// NewEventHandlers creates a new event handlers manager.
func NewEventHandlers(application *app.App, logger *slog.Logger) *EventHandlers {
	eh := &EventHandlers{
		application:  application,
		logger:       logger,
		lastStepTime: time.Now(),
		lastPanTime:  time.Now(),
	}
	eh.SetupCallbacks(application.Window)
	return eh
}

// SetupCallbacks configures all GLFW event callbacks.
func (eh *EventHandlers) SetupCallbacks(window *glfw.Window) {
	window.SetKeyCallback(func(wnd *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		eh.handleKey(key, action, mods)
	})
	window.SetMouseButtonCallback(func(wnd *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		eh.handleMouseButton(button, action) // for panning
	})
	window.SetCursorPosCallback(func(wnd *glfw.Window, xpos, ypos float64) {
		eh.updatePanning(xpos, ypos)
	})
	window.SetScrollCallback(func(wnd *glfw.Window, _, zoomDelta float64) {
		eh.performZoom(zoomDelta) // for zooming
	})
	window.SetFramebufferSizeCallback(func(wnd *glfw.Window, newW, newH int) {
		eh.application.View.SetViewport(newW, newH)
	})
}

// handleKey handles keyboard input events.
func (eh *EventHandlers) handleKey(key glfw.Key, action glfw.Action, mods glfw.ModifierKey) {
	shift := (mods & glfw.ModShift) != 0
	if action == glfw.Press {
		// Handle number keys for input.
		if key >= glfw.Key0 && key <= glfw.Key9 {
			eh.inputBuffer += string(rune('0' + int(key-glfw.Key0)))
			return
		}
		if key == glfw.KeyComma {
			eh.inputBuffer += ","
			return
		}
		if key == glfw.KeyEscape {
			eh.inputBuffer = ""
			return
		}
	}

	switch key {
	case glfw.KeyRight:
		eh.handleStepKeys(action, 1, shift)
	case glfw.KeyLeft:
		eh.handleStepKeys(action, -1, shift)
	case glfw.KeyJ:
		eh.handlePanKeys(action, 0 /*dx*/, -1 /*dy*/) // pan down
	case glfw.KeyK:
		eh.handlePanKeys(action, 0 /*dx*/, 1 /*dy*/) // pan up
	case glfw.KeyH:
		eh.handlePanKeys(action, 1 /*dx*/, 0 /*dy*/) // pan right
	case glfw.KeyL:
		eh.handlePanKeys(action, -1 /*dx*/, 0 /*dy*/) // pan left
	}
	if action != glfw.Press {
		return
	}

	switch key {
	case glfw.KeySpace:
		eh.application.TogglePause()
		eh.logger.Info("playback", slog.Bool("paused", eh.application.Paused))
	case glfw.KeyG:
		if n, ok := eh.takeInput(); ok {
			eh.application.SeekTerms(n)
			eh.logger.Info("seek", slog.Int("terms", eh.application.Frame().Terms))
		}
	case glfw.KeyN:
		eh.handleRegenerateKey(shift)
	case glfw.KeyC:
		seed := eh.application.Seed + 1
		if n, ok := eh.takeInput(); ok {
			seed = int64(n)
		}
		eh.application.RandomizePalette(seed)
		eh.logger.Info("new palette", slog.Int64("seed", seed))
	case glfw.KeyF:
		eh.application.ToggleFill()
	case glfw.KeyA:
		eh.application.ToggleArms()
	case glfw.KeyS:
		eh.application.ToggleSamples()
	case glfw.KeyE:
		eh.handleExportKey()
	case glfw.KeyR:
		eh.application.View.Reset()
	case glfw.KeyEqual:
		if (mods & glfw.ModSuper) != 0 {
			eh.performZoom(1) // zoom in
		}
	case glfw.KeyMinus:
		if (mods & glfw.ModSuper) != 0 {
			eh.performZoom(-1) // zoom out
		}
	}
	// Modifiers are pressed between typing a number and its action key.
	if !isModifier(key) {
		eh.inputBuffer = ""
	}
}

func isModifier(key glfw.Key) bool {
	switch key {
	case glfw.KeyLeftShift, glfw.KeyRightShift,
		glfw.KeyLeftControl, glfw.KeyRightControl,
		glfw.KeyLeftAlt, glfw.KeyRightAlt,
		glfw.KeyLeftSuper, glfw.KeyRightSuper:
		return true
	}
	return false
}

// handleStepKeys handles left/right presses and releases. The step size is
// the typed number (default 1), ten times that with shift.
func (eh *EventHandlers) handleStepKeys(action glfw.Action, direction int, shift bool) {
	switch action {
	case glfw.Press:
		n, ok := eh.takeInput()
		if !ok {
			n = 1
		}
		if shift {
			n *= 10
		}
		eh.stepHeld = true
		eh.stepDelta = direction * n
		eh.performStep()
		eh.lastStepTime = time.Now()

	case glfw.Release:
		eh.stepHeld = false

	case glfw.Repeat:
		// Ignore repeat events - we handle continuous stepping ourselves to
		// ensure consistent timing.
	}
}

func (eh *EventHandlers) performStep() {
	if err := eh.application.Step(eh.stepDelta); err != nil {
		eh.logger.Error("step failed", slog.Any("err", err))
	}
}

// handleContinuousStepping handles continuous stepping while an arrow is held.
func (eh *EventHandlers) handleContinuousStepping() {
	if !eh.stepHeld {
		return // nothing to do
	}

	now := time.Now()
	if now.Sub(eh.lastStepTime) < repeatInterval {
		return // not enough time has passed since the last step
	}

	eh.performStep()
	eh.lastStepTime = now
}

// handleRegenerateKey handles N (next seed), shift+N (previous seed), or a
// typed "<seed>", "<seed>,<complexity>" or ",<complexity>" followed by N.
// A complexity of 0 lets the seed choose again.
func (eh *EventHandlers) handleRegenerateKey(shift bool) {
	seed := eh.application.Seed + 1
	if shift {
		seed = eh.application.Seed - 1
	}
	input := eh.inputBuffer
	eh.inputBuffer = ""
	in, err := app.ParseShapeInput(input)
	if err != nil {
		eh.logger.Warn("ignoring input", slog.String("input", input), slog.Any("err", err))
		return
	}
	if in.Seed != nil {
		seed = *in.Seed
	}
	if in.Complexity != nil {
		eh.application.Complexity = *in.Complexity
	}
	if err := eh.application.Regenerate(context.Background(), seed); err != nil {
		eh.logger.Error("regenerate failed", slog.Int64("seed", seed), slog.Any("err", err))
	}
}

func (eh *EventHandlers) handleExportKey() {
	paths, err := eh.application.ExportCurrent(context.Background())
	if err != nil {
		eh.logger.Error("export failed", slog.Any("err", err))
		return
	}
	eh.logger.Info("exported frame", slog.Int("terms", eh.application.Frame().Terms), slog.Any("files", paths))
}

// handlePanKeys handles j/k/h/l key presses, and also releases for
// continuous panning.
func (eh *EventHandlers) handlePanKeys(action glfw.Action, dx, dy float64) {
	switch action {
	case glfw.Press:
		eh.panKeyHeld = true
		eh.panDirectionX = dx
		eh.panDirectionY = dy
		eh.performPan(dx, dy)
		eh.lastPanTime = time.Now()

	case glfw.Release:
		eh.panKeyHeld = false

	case glfw.Repeat:
		// Ignore repeat events - we handle continuous panning ourselves to
		// ensure consistent timing.
	}
}

// performPan executes a single pan operation.
func (eh *EventHandlers) performPan(dx, dy float64) {
	view := eh.application.View
	view.SetPan(view.PanX+dx*basePanDistance, view.PanY+dy*basePanDistance)
}

// handleContinuousPanning handles continuous panning while pan keys are held.
func (eh *EventHandlers) handleContinuousPanning() {
	if !eh.panKeyHeld {
		return // nothing to do
	}

	now := time.Now()
	if now.Sub(eh.lastPanTime) < repeatInterval {
		return // not enough time has passed since the last pan
	}

	eh.performPan(eh.panDirectionX, eh.panDirectionY)
	eh.lastPanTime = now
}

// handleMouseButton handles mouse button events for panning.
func (eh *EventHandlers) handleMouseButton(button glfw.MouseButton, action glfw.Action) {
	if button != glfw.MouseButtonLeft {
		return // nothing to do
	}

	switch action {
	case glfw.Press:
		eh.isDragging = true
		eh.dragStartMouseX, eh.dragStartMouseY = eh.application.Window.GetCursorPos()
		view := eh.application.View
		eh.dragStartPanX, eh.dragStartPanY = view.PanX, view.PanY
	case glfw.Release:
		eh.isDragging = false
	}
}

// updatePanning updates pan position based on mouse movement.
func (eh *EventHandlers) updatePanning(xpos, ypos float64) {
	if !eh.isDragging {
		return
	}

	scaleX, scaleY := eh.application.Window.GetContentScale()
	dx := (xpos - eh.dragStartMouseX) * float64(scaleX)
	dy := (ypos - eh.dragStartMouseY) * float64(scaleY)

	eh.application.View.SetPan(eh.dragStartPanX+dx, eh.dragStartPanY+dy)
}

// performZoom zooms around the cursor.
func (eh *EventHandlers) performZoom(zoomDelta float64) {
	wnd := eh.application.Window
	mouseX, mouseY := wnd.GetCursorPos()
	scaleX, scaleY := wnd.GetContentScale()
	fbMouseX, fbMouseY := mouseX*float64(scaleX), mouseY*float64(scaleY)

	eh.application.View.ZoomAt(1.0+zoomDelta*0.15, fbMouseX, fbMouseY)
}

// takeInput consumes the numeric input buffer.
func (eh *EventHandlers) takeInput() (int, bool) {
	input := eh.inputBuffer
	eh.inputBuffer = ""
	if input == "" {
		return 0, false
	}
	n, err := strconv.Atoi(input)
	if err != nil {
		return 0, false
	}
	return n, true
}
