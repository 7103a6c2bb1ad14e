// Package render defines the surface the replay engine draws through.
// The engine makes no assumption about the backing surface; anything
// that can position a viewport and draw elements at a partial reveal
// progress can play a replay.
package render

import (
	"github.com/ivlev/inkreplay/internal/element"
)

// Viewport positions and scales the drawing surface over the canvas.
// X and Y are the world coordinates mapped to the surface's top-left
// corner.
type Viewport struct {
	X     float64
	Y     float64
	Scale float64

	Width  int
	Height int
}

// Overlay describes the transient full-surface effect shown while a
// page transition is in flight.
type Overlay struct {
	Type     string
	Progress float64
}

// Frame is the read-only snapshot handed to a renderer each tick. The
// progress map is a copy; renderers must not mutate engine state
// through it.
type Frame struct {
	// Elements in play order; only those with progress > 0 are
	// visible.
	Elements []*element.Element

	// Progress maps element id to reveal progress in [0,1].
	Progress map[string]float64

	// Global is overall playback progress in [0,1].
	Global float64

	// Overlay is non-nil during a page transition.
	Overlay *Overlay

	// Badge is the page identifier shown after a transition, empty
	// once its display window has passed.
	Badge string
}

// Renderer is the external collaborator driven by the engine.
type Renderer interface {
	// SetViewport repositions and rescales the drawing surface.
	SetViewport(v Viewport)

	// RenderFrame draws every visible element at its progress. A
	// failed frame is reported, not fatal; playback continues.
	RenderFrame(f Frame) error

	// Clear wipes the surface. Called on stop.
	Clear()
}
