package timeline

import (
	"sort"

	"github.com/ivlev/inkreplay/internal/config"
	"github.com/ivlev/inkreplay/internal/easing"
	"github.com/ivlev/inkreplay/internal/element"
	"github.com/ivlev/inkreplay/internal/pages"
)

// True-speed durations are clamped to keep a single element from
// flashing by or stalling the whole replay.
const (
	minTrueSpeedMs = 100
	maxTrueSpeedMs = 10000
)

// Action tags what a keyframe does to its element.
type Action int

const (
	ActionStart Action = iota
	ActionUpdate
	ActionComplete
)

// Keyframe is one (time, element, progress) sample of the schedule.
// Times are millisecond offsets from the start of playback.
type Keyframe struct {
	Time      float64
	ElementID string
	Progress  float64
	Action    Action
}

// PageSwitch marks the moment the active page changes. Switches are
// aligned to the completing element's end time, so a switch never
// interrupts an element in flight.
type PageSwitch struct {
	Time float64
	From pages.Key
	To   pages.Key
}

// Schedule is the derived animation plan for one playback session:
// keyframes sorted ascending by time, page switches, and the total
// duration. It is recomputed whenever the element set or the settings
// change and never mutated during playback.
type Schedule struct {
	Keyframes    []Keyframe
	PageSwitches []PageSwitch
	Duration     float64

	// Elements in play order; StartPage is the page of the first one.
	Elements  []*element.Element
	StartPage pages.Key

	byID map[string]*element.Element
}

// Empty reports whether there is nothing to play.
func (s *Schedule) Empty() bool {
	return len(s.Elements) == 0
}

// ElementByID resolves a scheduled element.
func (s *Schedule) ElementByID(id string) (*element.Element, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// PageAt returns the page active at offset ms: the start page until the
// first switch, then whatever the last crossed switch moved to.
func (s *Schedule) PageAt(ms float64) pages.Key {
	key := s.StartPage
	for _, sw := range s.PageSwitches {
		if sw.Time > ms {
			break
		}
		key = sw.To
	}
	return key
}

// Builder derives schedules from element sets. Settings are copied at
// Build time; mutating them later does not alter an existing schedule.
type Builder struct {
	Settings config.Animation

	// Index supplies page assignments. With a nil index the schedule
	// has no page switches (single-surface playback).
	Index *pages.Index
}

// Build produces the schedule for the given elements. A zero-length
// input yields a zero-duration schedule with no keyframes; the caller
// treats that as "nothing to play" and completes immediately.
func (b *Builder) Build(elements []*element.Element) (*Schedule, error) {
	if err := b.Settings.Validate(); err != nil {
		return nil, err
	}

	ordered := make([]*element.Element, len(elements))
	copy(ordered, elements)
	element.SortStable(ordered)

	s := &Schedule{
		Elements: ordered,
		byID:     make(map[string]*element.Element, len(ordered)),
	}
	if len(ordered) == 0 {
		return s, nil
	}

	cursor := 0.0
	var prevKey pages.Key
	for i, e := range ordered {
		s.byID[e.ID] = e

		cat := b.categorySettings(e)
		ease, err := easing.ForName(cat.Easing)
		if err != nil {
			return nil, err
		}
		duration := b.elementDuration(e, cat)

		if b.Index != nil {
			key := b.Index.KeyFor(e.Anchor())
			if i == 0 {
				s.StartPage = key
			} else if key != prevKey {
				// The switch fires once the previous element has
				// fully completed, before this element's delay.
				s.PageSwitches = append(s.PageSwitches, PageSwitch{
					Time: cursor,
					From: prevKey,
					To:   key,
				})
			}
			prevKey = key
		}

		if i > 0 {
			cursor += cat.Delay
		}

		s.Keyframes = append(s.Keyframes, Keyframe{
			Time:      cursor,
			ElementID: e.ID,
			Progress:  0,
			Action:    ActionStart,
		})
		steps := b.Settings.UpdateSteps
		for n := 1; n <= steps; n++ {
			frac := float64(n) / float64(steps+1)
			s.Keyframes = append(s.Keyframes, Keyframe{
				Time:      cursor + duration*frac,
				ElementID: e.ID,
				Progress:  ease(frac),
				Action:    ActionUpdate,
			})
		}
		s.Keyframes = append(s.Keyframes, Keyframe{
			Time:      cursor + duration,
			ElementID: e.ID,
			Progress:  1,
			Action:    ActionComplete,
		})

		cursor += duration
	}
	s.Duration = cursor

	// Emission order is already chronological; the re-sort is the
	// documented safety net keeping "keyframes sorted by time" an
	// invariant rather than an accident of the loop above.
	sort.SliceStable(s.Keyframes, func(i, j int) bool {
		return s.Keyframes[i].Time < s.Keyframes[j].Time
	})

	return s, nil
}

func (b *Builder) categorySettings(e *element.Element) config.Category {
	switch element.Classify(e) {
	case element.CategoryPenStroke:
		return b.Settings.PenStroke
	case element.CategoryLibrary:
		return b.Settings.Library
	default:
		return b.Settings.Shape
	}
}

// elementDuration resolves the reveal time for one element. True speed
// replaces the fixed duration for path-like elements with at least two
// points: length / rate, clamped to [100ms, 10s].
func (b *Builder) elementDuration(e *element.Element, cat config.Category) float64 {
	if !b.Settings.TrueSpeed || !e.Type.IsPathLike() || len(e.Points) < 2 {
		return cat.Duration
	}
	ms := e.PathLength() / b.Settings.TrueSpeedRate * 1000
	if ms < minTrueSpeedMs {
		return minTrueSpeedMs
	}
	if ms > maxTrueSpeedMs {
		return maxTrueSpeedMs
	}
	return ms
}
