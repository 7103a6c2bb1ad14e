// Package replay wires the page index, timeline builder, playback
// engine and camera into the control surface the host application
// talks to.
package replay

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ivlev/inkreplay/internal/camera"
	"github.com/ivlev/inkreplay/internal/config"
	"github.com/ivlev/inkreplay/internal/element"
	"github.com/ivlev/inkreplay/internal/pages"
	"github.com/ivlev/inkreplay/internal/playback"
	"github.com/ivlev/inkreplay/internal/render"
	"github.com/ivlev/inkreplay/internal/source"
	"github.com/ivlev/inkreplay/internal/timeline"
)

// ErrNoRenderer is returned when the session is constructed without a
// drawing surface.
var ErrNoRenderer = errors.New("replay session requires a renderer")

// Stats is the session snapshot reported to UIs.
type Stats struct {
	ElementCount    int
	PageCount       int
	State           string
	IsPlaying       bool
	ProgressPercent float64
	Viewport        render.Viewport
}

// Session owns one replayable drawing: the loaded elements, their page
// partitioning, and at most one active playback at a time.
type Session struct {
	mu       sync.Mutex
	cfg      config.Replay
	settings config.Animation

	renderer render.Renderer
	index    *pages.Index
	camera   *camera.Controller
	engine   *playback.Engine

	elements []*element.Element
	switches []timeline.LayerSwitchEvent
	schedule *timeline.Schedule

	driver playback.FrameDriver
	cancel context.CancelFunc

	// NewDriver builds the frame source for each playback session.
	// The default runs at the configured FPS off the wall clock;
	// tests and the exporter substitute manual drivers.
	NewDriver func() playback.FrameDriver
}

// NewSession validates the configuration and builds an idle session.
func NewSession(r render.Renderer, cfg config.Replay, settings config.Animation) (*Session, error) {
	if r == nil {
		return nil, ErrNoRenderer
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		cfg:      cfg,
		settings: settings,
		renderer: r,
		index:    pages.NewIndex(cfg.PageWidth, cfg.PageHeight),
	}
	s.camera = camera.NewController(r, s.index, cfg)
	s.engine = playback.NewEngine(&badgeRenderer{inner: r, session: s})
	s.NewDriver = func() playback.FrameDriver {
		return playback.NewTickerDriver(s.Config().FPS)
	}
	return s, nil
}

// badgeRenderer stamps the camera's page badge onto every frame on the
// way to the real surface.
type badgeRenderer struct {
	inner   render.Renderer
	session *Session
}

func (b *badgeRenderer) SetViewport(v render.Viewport) { b.inner.SetViewport(v) }
func (b *badgeRenderer) Clear()                        { b.inner.Clear() }

func (b *badgeRenderer) RenderFrame(f render.Frame) error {
	f.Badge = b.session.camera.Badge()
	return b.inner.RenderFrame(f)
}

// LoadElements supplies the full element set, replacing whatever was
// loaded before. The page index is rebuilt and the camera scale fitted
// once over the union bounding box.
func (s *Session) LoadElements(els []*element.Element, switches []timeline.LayerSwitchEvent) error {
	if err := source.Normalize(els); err != nil {
		return err
	}

	s.mu.Lock()
	s.elements = els
	s.switches = switches
	s.index.Rebuild(els)
	s.mu.Unlock()

	s.camera.FitToElements(els)
	return nil
}

// LoadDocument loads a sketch document from disk.
func (s *Session) LoadDocument(path string) error {
	doc, err := source.Read(path)
	if err != nil {
		return err
	}
	return s.LoadElements(doc.Elements(), doc.LayerSwitches())
}

// Timeline returns the merged chronological event sequence for the
// loaded drawing.
func (s *Session) Timeline() []timeline.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return timeline.Merge(s.elements, s.switches, s.index)
}

// StartReplay builds the schedule and plays it to completion, blocking
// until the replay finishes, is stopped, or ctx is cancelled. Zero
// loaded elements is not an error: completion is reported immediately.
// A second StartReplay while one is active returns ErrAlreadyPlaying.
func (s *Session) StartReplay(ctx context.Context, ev playback.Events) error {
	s.mu.Lock()
	builder := &timeline.Builder{Settings: s.settings, Index: s.index}
	schedule, err := builder.Build(s.elements)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	// The schedule is stored only once the engine accepts the session:
	// a rejected StartReplay must leave the active session untouched,
	// or a later SeekTo would convert percent against the wrong
	// duration.
	if err := s.engine.Play(schedule, ev); err != nil {
		return err
	}
	s.mu.Lock()
	s.schedule = schedule
	s.mu.Unlock()
	if schedule.Empty() {
		return nil
	}

	s.camera.SnapTo(schedule.StartPage)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	driver := s.NewDriver()

	s.mu.Lock()
	s.driver = driver
	s.cancel = cancel
	s.mu.Unlock()

	gen := s.engine.Generation()
	for {
		delta, err := driver.WaitFrame(ctx)
		if err != nil {
			// Cancelled: the session was stopped or the context
			// closed. Either way the replay ends cleanly.
			return nil
		}
		// A stale frame from a stopped session must never touch a
		// new one.
		if s.engine.Generation() != gen {
			return nil
		}

		sw := s.engine.Tick(delta)
		s.camera.TickBadge(delta)

		if sw != nil {
			if err := s.transition(ctx, *sw, driver); err != nil {
				return err
			}
			if s.engine.Generation() != gen {
				return nil
			}
			if err := s.engine.Resume(); err == nil {
				driver.Rebaseline()
			}
		}

		switch s.engine.State() {
		case playback.StateCompleted:
			return nil
		case playback.StateIdle:
			return nil
		}
	}
}

// transition pauses element playback, runs the camera move, and leaves
// the engine paused for the caller to resume.
func (s *Session) transition(ctx context.Context, sw timeline.PageSwitch, driver playback.FrameDriver) error {
	if err := s.engine.Pause(); err != nil {
		return nil
	}

	s.mu.Lock()
	base := render.Frame{
		Elements: s.schedule.Elements,
		Progress: s.engine.Progress(),
	}
	s.mu.Unlock()

	if err := s.camera.TransitionTo(ctx, sw.To, driver, base); err != nil {
		return fmt.Errorf("page transition: %w", err)
	}
	return nil
}

// Pause freezes the active replay.
func (s *Session) Pause() error {
	return s.engine.Pause()
}

// Resume continues a paused replay from exactly where it froze.
func (s *Session) Resume() error {
	if err := s.engine.Resume(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.driver != nil {
		s.driver.Rebaseline()
	}
	s.mu.Unlock()
	return nil
}

// Stop ends the active replay, cancels any in-flight transition and
// timer, and clears the surface. Safe to call in any state, any number
// of times.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.engine.Stop()
}

// SeekTo jumps the replay to percent of its total duration.
func (s *Session) SeekTo(percent float64) error {
	s.mu.Lock()
	schedule := s.schedule
	s.mu.Unlock()
	if schedule == nil {
		return playback.ErrIdle
	}

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	ms := percent / 100 * schedule.Duration
	if err := s.engine.SeekTo(ms); err != nil {
		return err
	}
	// A seek can jump across page switches without the transition
	// machinery running, so the viewport moves to the page owning the
	// target directly.
	s.camera.SnapTo(schedule.PageAt(ms))
	return nil
}

// UpdateConfig applies a partial configuration update. Invalid patches
// leave the previous configuration in effect. Page-geometry changes
// take effect on the next LoadElements.
func (s *Session) UpdateConfig(p config.ReplayPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged, err := s.cfg.Apply(p)
	if err != nil {
		return err
	}
	s.cfg = merged
	return nil
}

// UpdateAnimationSettings applies a partial settings update. A running
// replay keeps the schedule it started with; the new settings apply to
// the next StartReplay.
func (s *Session) UpdateAnimationSettings(p config.AnimationPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged, err := s.settings.Apply(p)
	if err != nil {
		return err
	}
	s.settings = merged
	return nil
}

// Config returns the current configuration.
func (s *Session) Config() config.Replay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Settings returns the current animation settings.
func (s *Session) Settings() config.Animation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Stats reports the session snapshot.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	elementCount := len(s.elements)
	pageCount := s.index.PageCount()
	s.mu.Unlock()

	state := s.engine.State()
	return Stats{
		ElementCount:    elementCount,
		PageCount:       pageCount,
		State:           state.String(),
		IsPlaying:       state == playback.StatePlaying,
		ProgressPercent: s.engine.GlobalPercent(),
		Viewport:        s.camera.Viewport(),
	}
}
