// Package playback drives a built schedule frame by frame: a logical
// clock, a state machine around play/pause/seek/stop, and the per-frame
// keyframe application that turns elapsed time into element progress.
package playback

// Clock is the single authoritative elapsed-time source for one
// playback session. It is purely logical: production code advances it
// with wall-clock deltas measured by a frame driver, tests advance it
// with synthetic deltas, and both see identical behaviour.
type Clock struct {
	elapsed float64
}

// Advance moves the clock forward by deltaMs and returns the new
// elapsed time. Negative deltas are ignored.
func (c *Clock) Advance(deltaMs float64) float64 {
	if deltaMs > 0 {
		c.elapsed += deltaMs
	}
	return c.elapsed
}

// Elapsed returns the current elapsed time in milliseconds.
func (c *Clock) Elapsed() float64 {
	return c.elapsed
}

// SeekTo jumps the elapsed time to ms.
func (c *Clock) SeekTo(ms float64) {
	if ms < 0 {
		ms = 0
	}
	c.elapsed = ms
}

// Reset discards all elapsed time.
func (c *Clock) Reset() {
	c.elapsed = 0
}
