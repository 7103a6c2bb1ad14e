package camera

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ivlev/inkreplay/internal/config"
	"github.com/ivlev/inkreplay/internal/element"
	"github.com/ivlev/inkreplay/internal/pages"
	"github.com/ivlev/inkreplay/internal/render"
)

type viewportRecorder struct {
	viewports []render.Viewport
	frames    []render.Frame
}

func (r *viewportRecorder) SetViewport(v render.Viewport)    { r.viewports = append(r.viewports, v) }
func (r *viewportRecorder) RenderFrame(f render.Frame) error { r.frames = append(r.frames, f); return nil }
func (r *viewportRecorder) Clear()                           {}

// stepWaiter hands out fixed frame deltas without real-time waits.
type stepWaiter struct {
	delta  float64
	cancel func(step int)
	step   int
}

func (w *stepWaiter) WaitFrame(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	w.step++
	if w.cancel != nil {
		w.cancel(w.step)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return w.delta, nil
}

func testConfig() config.Replay {
	cfg := config.DefaultReplay()
	cfg.Width = 1920
	cfg.Height = 1080
	cfg.TransitionDuration = 1000
	cfg.AutoScale = false
	return cfg
}

func TestViewportCentersPage(t *testing.T) {
	idx := pages.NewIndex(1920, 1080)
	c := NewController(&viewportRecorder{}, idx, testConfig())

	// Surface matches page size, so scale is 1 and the origin page
	// maps exactly onto the surface.
	v := c.Viewport()
	require.Equal(t, 1.0, v.Scale)
	require.Equal(t, 0.0, v.X)
	require.Equal(t, 0.0, v.Y)

	c.SnapTo(pages.Key{Row: 1, Col: 2})
	v = c.Viewport()
	require.Equal(t, 2*1920.0, v.X)
	require.Equal(t, 1080.0, v.Y)
}

func TestFitToElements(t *testing.T) {
	idx := pages.NewIndex(1920, 1080)
	cfg := testConfig()
	cfg.AutoScale = true
	c := NewController(&viewportRecorder{}, idx, cfg)

	// Content spanning 3840x1080 needs half scale to fit 1920 wide.
	c.FitToElements([]*element.Element{
		{Type: element.TypeRectangle, X: 0, Y: 0, Width: 100, Height: 100},
		{Type: element.TypeRectangle, X: 3740, Y: 980, Width: 100, Height: 100},
	})
	c.SnapTo(pages.Key{})
	require.InDelta(t, 0.5, c.Viewport().Scale, 1e-9)
}

func TestTransitionInterpolatesAndResolves(t *testing.T) {
	idx := pages.NewIndex(1920, 1080)
	r := &viewportRecorder{}
	c := NewController(r, idx, testConfig())

	w := &stepWaiter{delta: 250} // 4 frames across 1000ms
	err := c.TransitionTo(context.Background(), pages.Key{Row: 0, Col: 1}, w, render.Frame{})
	require.NoError(t, err)

	v := c.Viewport()
	require.Equal(t, 1920.0, v.X, "transition must land exactly on the target")
	require.Equal(t, 0.0, v.Y)

	// Intermediate samples move monotonically toward the target.
	require.GreaterOrEqual(t, len(r.viewports), 4)
	for i := 1; i < len(r.viewports); i++ {
		require.GreaterOrEqual(t, r.viewports[i].X, r.viewports[i-1].X)
	}

	// Each animated frame carried the overlay.
	for _, f := range r.frames {
		require.NotNil(t, f.Overlay)
		require.Equal(t, config.TransitionFade, f.Overlay.Type)
	}

	require.Equal(t, "Page 0,1", c.Badge())
}

func TestTransitionNoneIsInstant(t *testing.T) {
	idx := pages.NewIndex(1920, 1080)
	cfg := testConfig()
	cfg.TransitionType = config.TransitionNone
	r := &viewportRecorder{}
	c := NewController(r, idx, cfg)

	w := &stepWaiter{delta: 250}
	require.NoError(t, c.TransitionTo(context.Background(), pages.Key{Row: 0, Col: 1}, w, render.Frame{}))
	require.Zero(t, w.step, "no intermediate frames for transition type none")
	require.Equal(t, 1920.0, c.Viewport().X)
}

func TestCancelledTransitionLeavesValidViewport(t *testing.T) {
	idx := pages.NewIndex(1920, 1080)
	r := &viewportRecorder{}
	c := NewController(r, idx, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	w := &stepWaiter{delta: 250, cancel: func(step int) {
		if step == 2 { // stop mid-transition, ~50% through
			cancel()
		}
	}}

	err := c.TransitionTo(ctx, pages.Key{Row: 0, Col: 1}, w, render.Frame{})
	require.NoError(t, err, "interruption is expected, not exceptional")

	v := c.Viewport()
	require.False(t, math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Scale))
	require.GreaterOrEqual(t, v.X, 0.0)
	require.LessOrEqual(t, v.X, 1920.0)
	require.Greater(t, v.Scale, 0.0)
}

func TestBadgeWindowIndependentOfTransition(t *testing.T) {
	idx := pages.NewIndex(1920, 1080)
	cfg := testConfig()
	cfg.BadgeDuration = 2500
	c := NewController(&viewportRecorder{}, idx, cfg)

	w := &stepWaiter{delta: 500}
	require.NoError(t, c.TransitionTo(context.Background(), pages.Key{Row: 1, Col: 0}, w, render.Frame{}))
	require.Equal(t, "Page 1,0", c.Badge())

	c.TickBadge(2000)
	require.Equal(t, "Page 1,0", c.Badge())
	c.TickBadge(600)
	require.Empty(t, c.Badge(), "badge self-removes after its window")
}
