package playback

import (
	"errors"
	"log"
	"sync"

	"github.com/ivlev/inkreplay/internal/render"
	"github.com/ivlev/inkreplay/internal/timeline"
)

// State is the playback lifecycle of one engine instance.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	}
	return "unknown"
}

var (
	// ErrAlreadyPlaying is returned by Play while a session is active.
	// Starting over requires an explicit Stop first.
	ErrAlreadyPlaying = errors.New("playback already in progress")

	// ErrNotPlaying is returned by Pause outside the Playing state.
	ErrNotPlaying = errors.New("playback is not playing")

	// ErrNotPaused is returned by Resume outside the Paused state.
	ErrNotPaused = errors.New("playback is not paused")

	// ErrIdle is returned by Seek before a session has started.
	ErrIdle = errors.New("no playback session")
)

// Events is the notification contract between the engine and its host.
// Nil callbacks are skipped. Callbacks run on the ticking goroutine
// with no engine lock held.
type Events struct {
	// OnProgress receives global playback progress as a percentage.
	OnProgress func(percent float64)

	// OnComplete fires exactly once per session, on natural
	// completion.
	OnComplete func()

	// OnPageChange fires when playback crosses a page switch; the
	// host runs the camera transition before resuming.
	OnPageChange func(sw timeline.PageSwitch)
}

// Engine consumes a schedule and a stream of frame deltas and turns
// them into per-element reveal progress. One session is active at a
// time; all deferred effects are guarded by a generation token so
// nothing fired for a stopped session can touch a new one.
type Engine struct {
	renderer render.Renderer

	mu           sync.Mutex
	state        State
	clock        Clock
	schedule     *timeline.Schedule
	events       Events
	progress     map[string]float64
	cursor       int
	switchCursor int
	gen          uint64
}

// NewEngine creates an engine drawing through r.
func NewEngine(r render.Renderer) *Engine {
	return &Engine{
		renderer: r,
		progress: map[string]float64{},
	}
}

// Play starts a session over the given schedule. An empty schedule is
// not an error: the engine reports completion immediately and ends in
// the Completed state without ever ticking.
func (e *Engine) Play(s *timeline.Schedule, ev Events) error {
	e.mu.Lock()
	if e.state == StatePlaying || e.state == StatePaused {
		e.mu.Unlock()
		return ErrAlreadyPlaying
	}

	e.gen++
	e.schedule = s
	e.events = ev
	e.progress = make(map[string]float64, len(s.Elements))
	e.cursor = 0
	e.switchCursor = 0
	e.clock.Reset()

	if s.Empty() {
		e.state = StateCompleted
		e.mu.Unlock()
		if ev.OnProgress != nil {
			ev.OnProgress(100)
		}
		if ev.OnComplete != nil {
			ev.OnComplete()
		}
		return nil
	}

	e.state = StatePlaying
	e.mu.Unlock()
	return nil
}

// Pause freezes the session without discarding elapsed progress.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StatePlaying {
		return ErrNotPlaying
	}
	e.state = StatePaused
	return nil
}

// Resume continues a paused session. The caller rebaselines its frame
// driver so the paused interval never reaches the clock.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StatePaused {
		return ErrNotPaused
	}
	e.state = StatePlaying
	return nil
}

// Stop discards all progress and returns to Idle. It is safe in any
// state and idempotent; the generation bump turns any stale deferred
// effect into a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.gen++
	e.state = StateIdle
	e.schedule = nil
	e.progress = map[string]float64{}
	e.cursor = 0
	e.switchCursor = 0
	e.clock.Reset()
	e.mu.Unlock()

	if e.renderer != nil {
		e.renderer.Clear()
	}
}

// SeekTo jumps the session to ms, clamped to [0, duration]. The
// per-element progress map is rebuilt from scratch by replaying every
// keyframe at or before the target, so seeking to the same time always
// yields the same map. The frame is re-rendered immediately. Seek is
// valid in any non-Idle state and does not change the state.
func (e *Engine) SeekTo(ms float64) error {
	e.mu.Lock()
	if e.state == StateIdle || e.schedule == nil {
		e.mu.Unlock()
		return ErrIdle
	}
	s := e.schedule

	if ms < 0 {
		ms = 0
	}
	if ms > s.Duration {
		ms = s.Duration
	}

	e.progress = make(map[string]float64, len(s.Elements))
	e.cursor = 0
	for e.cursor < len(s.Keyframes) && s.Keyframes[e.cursor].Time <= ms {
		kf := s.Keyframes[e.cursor]
		e.progress[kf.ElementID] = clampProgress(kf.Progress)
		e.cursor++
	}
	e.switchCursor = 0
	for e.switchCursor < len(s.PageSwitches) && s.PageSwitches[e.switchCursor].Time <= ms {
		e.switchCursor++
	}
	e.clock.SeekTo(ms)

	frame := e.frameLocked()
	e.mu.Unlock()

	e.render(frame)
	return nil
}

// Tick advances the session by deltaMs and applies every keyframe the
// clock has passed. When the advance crosses a page switch, the clock
// is held at the switch boundary and the switch is returned; playback
// of the next page's elements begins only after the host resumes.
// Outside the Playing state Tick is a no-op.
func (e *Engine) Tick(deltaMs float64) *timeline.PageSwitch {
	e.mu.Lock()
	if e.state != StatePlaying || e.schedule == nil {
		e.mu.Unlock()
		return nil
	}
	s := e.schedule

	target := e.clock.Elapsed() + deltaMs
	if target > s.Duration {
		target = s.Duration
	}
	var crossed *timeline.PageSwitch
	if e.switchCursor < len(s.PageSwitches) && s.PageSwitches[e.switchCursor].Time <= target {
		sw := s.PageSwitches[e.switchCursor]
		crossed = &sw
		target = sw.Time
		e.switchCursor++
	}
	e.clock.SeekTo(target)

	// Keyframes already consumed are never reprocessed; the cursor
	// makes per-frame advancement O(1) amortised.
	for e.cursor < len(s.Keyframes) && s.Keyframes[e.cursor].Time <= target {
		kf := s.Keyframes[e.cursor]
		e.progress[kf.ElementID] = clampProgress(kf.Progress)
		e.cursor++
	}

	global := 1.0
	if s.Duration > 0 {
		global = target / s.Duration
	}
	if global > 1 {
		global = 1
	}

	done := global >= 1 && e.state == StatePlaying
	if done {
		e.state = StateCompleted
	}
	ev := e.events
	frame := e.frameLocked()
	e.mu.Unlock()

	e.render(frame)
	if ev.OnProgress != nil {
		ev.OnProgress(global * 100)
	}
	if crossed != nil && ev.OnPageChange != nil {
		ev.OnPageChange(*crossed)
	}
	if done && ev.OnComplete != nil {
		ev.OnComplete()
	}
	return crossed
}

// State returns the current playback state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Elapsed returns the clock's elapsed milliseconds.
func (e *Engine) Elapsed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.Elapsed()
}

// GlobalPercent returns overall progress as a percentage.
func (e *Engine) GlobalPercent() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.schedule == nil || e.schedule.Duration == 0 {
		if e.state == StateCompleted {
			return 100
		}
		return 0
	}
	p := e.clock.Elapsed() / e.schedule.Duration * 100
	if p > 100 {
		p = 100
	}
	return p
}

// Progress returns a copy of the per-element progress map.
func (e *Engine) Progress() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]float64, len(e.progress))
	for id, p := range e.progress {
		out[id] = p
	}
	return out
}

// Generation returns the session token. Deferred effects captured
// under an older generation must not apply.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen
}

func (e *Engine) frameLocked() render.Frame {
	frame := render.Frame{
		Progress: make(map[string]float64, len(e.progress)),
	}
	if e.schedule != nil {
		frame.Elements = e.schedule.Elements
		if e.schedule.Duration > 0 {
			frame.Global = e.clock.Elapsed() / e.schedule.Duration
			if frame.Global > 1 {
				frame.Global = 1
			}
		}
	}
	for id, p := range e.progress {
		frame.Progress[id] = p
	}
	return frame
}

func (e *Engine) render(frame render.Frame) {
	if e.renderer == nil {
		return
	}
	if err := e.renderer.RenderFrame(frame); err != nil {
		log.Printf("[!] Frame render failed: %v", err)
	}
}

func clampProgress(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
