// Package timeline reconstructs a chronological event sequence from
// unordered drawing elements and derives the keyframe schedule that
// drives playback.
package timeline

import (
	"sort"

	"github.com/ivlev/inkreplay/internal/element"
	"github.com/ivlev/inkreplay/internal/pages"
)

// StrokePhase tags the lifecycle stage a stroke event describes.
type StrokePhase int

const (
	StrokeStart StrokePhase = iota
	StrokeUpdate
	StrokeFinish
)

// Event is one entry in the reconstructed timeline.
type Event interface {
	// At returns the event's timestamp in milliseconds.
	At() float64
}

// StrokeEvent wraps a single drawn element.
type StrokeEvent struct {
	Element *element.Element
	Phase   StrokePhase
}

func (e StrokeEvent) At() float64 { return e.Element.Timestamp }

// LayerSwitchEvent records the active layer changing while drawing.
type LayerSwitchEvent struct {
	From      string  `yaml:"from"`
	To        string  `yaml:"to"`
	Timestamp float64 `yaml:"timestamp"`
}

func (e LayerSwitchEvent) At() float64 { return e.Timestamp }

// PageSwitchEvent records the drawing moving to a different virtual page.
type PageSwitchEvent struct {
	From      pages.Key
	To        pages.Key
	Timestamp float64
}

func (e PageSwitchEvent) At() float64 { return e.Timestamp }

// Merge combines drawing elements, an optional layer-switch log and the
// page assignments from idx into one chronologically sorted sequence.
// Ties preserve the original relative order.
func Merge(elements []*element.Element, switches []LayerSwitchEvent, idx *pages.Index) []Event {
	ordered := make([]*element.Element, len(elements))
	copy(ordered, elements)
	element.SortStable(ordered)

	var events []Event
	var prevKey pages.Key
	for i, e := range ordered {
		if idx != nil {
			key := idx.KeyFor(e.Anchor())
			if i > 0 && key != prevKey {
				events = append(events, PageSwitchEvent{From: prevKey, To: key, Timestamp: e.Timestamp})
			}
			prevKey = key
		}
		events = append(events, StrokeEvent{Element: e, Phase: StrokeFinish})
	}
	for _, s := range switches {
		events = append(events, s)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].At() < events[j].At()
	})
	return events
}
