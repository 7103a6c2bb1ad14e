package playback

import (
	"context"
	"time"
)

// FrameDriver delivers frame boundaries to the playback loop. The
// production driver aligns to a fixed frame rate and measures real wall
// time between frames; tests substitute a manual driver with synthetic
// deltas so scenarios reproduce exactly without real-time waits.
type FrameDriver interface {
	// WaitFrame blocks until the next frame boundary and returns the
	// milliseconds elapsed since the previous frame. It returns the
	// context's error when cancelled.
	WaitFrame(ctx context.Context) (float64, error)

	// Rebaseline resets the driver's time reference. Called on resume
	// so a paused interval is never reported as elapsed time.
	Rebaseline()
}

// TickerDriver produces frames at a fixed rate from the wall clock.
type TickerDriver struct {
	interval time.Duration
	last     time.Time
}

// NewTickerDriver creates a driver running at fps frames per second.
func NewTickerDriver(fps int) *TickerDriver {
	if fps <= 0 {
		fps = 30
	}
	return &TickerDriver{interval: time.Second / time.Duration(fps)}
}

func (d *TickerDriver) WaitFrame(ctx context.Context) (float64, error) {
	timer := time.NewTimer(d.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case now := <-timer.C:
		if d.last.IsZero() {
			d.last = now
			return float64(d.interval) / float64(time.Millisecond), nil
		}
		delta := now.Sub(d.last)
		d.last = now
		return float64(delta) / float64(time.Millisecond), nil
	}
}

func (d *TickerDriver) Rebaseline() {
	d.last = time.Time{}
}

// ManualDriver replays a fixed per-frame delta; the test harness's
// frame source.
type ManualDriver struct {
	// DeltaMs is reported for every frame.
	DeltaMs float64

	// MaxFrames, when positive, bounds how many frames are delivered
	// before WaitFrame reports context.Canceled.
	MaxFrames int

	delivered int
}

func (d *ManualDriver) WaitFrame(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if d.MaxFrames > 0 && d.delivered >= d.MaxFrames {
		return 0, context.Canceled
	}
	d.delivered++
	return d.DeltaMs, nil
}

func (d *ManualDriver) Rebaseline() {}
