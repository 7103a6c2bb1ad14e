// Package camera owns the viewport during a replay: where the surface
// looks, how far it is zoomed out, and how it moves between virtual
// pages.
package camera

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/ivlev/inkreplay/internal/config"
	"github.com/ivlev/inkreplay/internal/easing"
	"github.com/ivlev/inkreplay/internal/element"
	"github.com/ivlev/inkreplay/internal/pages"
	"github.com/ivlev/inkreplay/internal/render"
)

// Zoom is clamped so a stray element can neither blow the scale up nor
// shrink the drawing to a dot.
const (
	minScale = 0.05
	maxScale = 3.0
)

// FrameWaiter delivers frame boundaries to an in-flight transition.
// playback.FrameDriver satisfies it.
type FrameWaiter interface {
	WaitFrame(ctx context.Context) (float64, error)
}

// Controller computes target viewports for virtual pages and animates
// the move between them.
type Controller struct {
	renderer render.Renderer
	index    *pages.Index
	cfg      config.Replay

	mu      sync.Mutex
	scale   float64
	current render.Viewport
	badge   string
	badgeMs float64
}

// NewController creates a controller over the given page index and
// renderer. The initial scale fits one page into the surface.
func NewController(r render.Renderer, idx *pages.Index, cfg config.Replay) *Controller {
	c := &Controller{renderer: r, index: idx, cfg: cfg}
	pw, ph := idx.PageSize()
	c.scale = clampScale(math.Min(float64(cfg.Width)/pw, float64(cfg.Height)/ph))
	c.current = c.viewportFor(pages.Key{})
	return c
}

// FitToElements picks the scale once at load time so the union bounding
// box of every element fits the surface. Pages share one coordinate
// space, so the scale is not recomputed per page.
func (c *Controller) FitToElements(elements []*element.Element) {
	if !c.cfg.AutoScale || len(elements) == 0 {
		return
	}

	minX, minY, maxX, maxY := elements[0].Bounds()
	for _, e := range elements[1:] {
		eMinX, eMinY, eMaxX, eMaxY := e.Bounds()
		minX = math.Min(minX, eMinX)
		minY = math.Min(minY, eMinY)
		maxX = math.Max(maxX, eMaxX)
		maxY = math.Max(maxY, eMaxY)
	}
	w, h := maxX-minX, maxY-minY
	if w <= 0 || h <= 0 {
		return
	}

	c.mu.Lock()
	c.scale = clampScale(math.Min(float64(c.cfg.Width)/w, float64(c.cfg.Height)/h))
	c.mu.Unlock()
}

// Viewport returns the current viewport.
func (c *Controller) Viewport() render.Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// SnapTo moves the viewport to the target page instantly, with no
// intermediate frames.
func (c *Controller) SnapTo(key pages.Key) {
	c.mu.Lock()
	v := c.viewportFor(key)
	c.current = v
	c.mu.Unlock()

	c.renderer.SetViewport(v)
}

// TransitionTo animates the viewport from its current position to the
// target page over durationMs, easing in and out, one sample per frame
// delivered by w. The base frame is redrawn under the transition
// overlay each step. Cancellation (engine stopped mid-transition) is
// not an error: the method returns nil immediately, leaving the last
// fully applied viewport in place.
func (c *Controller) TransitionTo(ctx context.Context, key pages.Key, w FrameWaiter, base render.Frame) error {
	c.mu.Lock()
	from := c.current
	to := c.viewportFor(key)
	c.mu.Unlock()

	typ := c.cfg.TransitionType
	duration := c.cfg.TransitionDuration

	if typ != config.TransitionNone && duration > 0 {
		elapsed := 0.0
		for elapsed < duration {
			delta, err := w.WaitFrame(ctx)
			if err != nil {
				// Interrupted transitions resolve, never surface.
				return nil
			}
			elapsed += delta

			t := easing.EaseInOutCubic(math.Min(1, elapsed/duration))
			v := render.Viewport{
				X:      easing.Lerp(from.X, to.X, t),
				Y:      easing.Lerp(from.Y, to.Y, t),
				Scale:  easing.Lerp(from.Scale, to.Scale, t),
				Width:  to.Width,
				Height: to.Height,
			}
			c.mu.Lock()
			c.current = v
			c.mu.Unlock()

			c.renderer.SetViewport(v)
			overlay := base
			overlay.Overlay = &render.Overlay{Type: typ, Progress: t}
			if err := c.renderer.RenderFrame(overlay); err != nil {
				return fmt.Errorf("transition frame: %w", err)
			}
		}
	}

	c.mu.Lock()
	c.current = to
	c.badge = fmt.Sprintf("Page %d,%d", key.Row, key.Col)
	c.badgeMs = c.cfg.BadgeDuration
	c.mu.Unlock()

	c.renderer.SetViewport(to)
	return nil
}

// Badge returns the page identifier to draw, or "" once its display
// window has passed. The window runs on playback frames, independent
// of the transition duration.
func (c *Controller) Badge() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.badge
}

// TickBadge counts the badge's display window down by deltaMs.
func (c *Controller) TickBadge(deltaMs float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.badge == "" {
		return
	}
	c.badgeMs -= deltaMs
	if c.badgeMs <= 0 {
		c.badge = ""
		c.badgeMs = 0
	}
}

// viewportFor centers the page under the surface at the current scale.
func (c *Controller) viewportFor(key pages.Key) render.Viewport {
	minX, minY, maxX, maxY := c.index.Bounds(key)
	cx, cy := (minX+maxX)/2, (minY+maxY)/2

	visW := float64(c.cfg.Width) / c.scale
	visH := float64(c.cfg.Height) / c.scale
	return render.Viewport{
		X:      cx - visW/2,
		Y:      cy - visH/2,
		Scale:  c.scale,
		Width:  c.cfg.Width,
		Height: c.cfg.Height,
	}
}

func clampScale(s float64) float64 {
	if math.IsNaN(s) || s <= 0 {
		return 1
	}
	if s < minScale {
		return minScale
	}
	if s > maxScale {
		return maxScale
	}
	return s
}
