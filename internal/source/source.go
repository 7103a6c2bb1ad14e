// Package source supplies drawing data to the replay engine. The
// canonical document format is YAML: a flat ordered element list plus
// an optional layer-switch log. The surrounding editor re-supplies the
// full document on structural changes; there is no incremental append.
package source

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/inkreplay/internal/element"
	"github.com/ivlev/inkreplay/internal/timeline"
)

// Source is implemented by anything that can hand the engine a
// complete element set.
type Source interface {
	Elements() []*element.Element
	LayerSwitches() []timeline.LayerSwitchEvent
}

// Document is the on-disk sketch format.
type Document struct {
	Version  string                      `yaml:"version"`
	Items    []*element.Element          `yaml:"elements"`
	LayerLog []timeline.LayerSwitchEvent `yaml:"layer_switches"`
}

func (d *Document) Elements() []*element.Element               { return d.Items }
func (d *Document) LayerSwitches() []timeline.LayerSwitchEvent { return d.LayerLog }

// Read loads and normalizes a sketch document: insertion order is
// recorded for timestamp tie-breaks, id-less elements get generated
// ids, and the structural invariants are checked up front so playback
// never sees an impossible element.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := Normalize(doc.Items); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &doc, nil
}

// Write saves a document as YAML.
func Write(doc *Document, path string) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Normalize prepares an element slice for playback in place. It is
// used by Read and by callers that construct elements directly.
func Normalize(elements []*element.Element) error {
	for i, e := range elements {
		if e == nil {
			return fmt.Errorf("element %d is empty", i)
		}
		e.Seq = i
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.Style.Opacity <= 0 || e.Style.Opacity > 1 {
			e.Style.Opacity = 1
		}
		if !knownType(e.Type) {
			return fmt.Errorf("element %s: unknown type %q", e.ID, e.Type)
		}
		if e.Type.IsPathLike() && len(e.Points) == 0 {
			return fmt.Errorf("element %s: %s without points", e.ID, e.Type)
		}
		if e.Width < 0 || e.Height < 0 {
			return fmt.Errorf("element %s: negative size %.1fx%.1f", e.ID, e.Width, e.Height)
		}
	}
	return nil
}

func knownType(t element.Type) bool {
	switch t {
	case element.TypePath, element.TypeHighlighter, element.TypeRectangle,
		element.TypeEllipse, element.TypeLine, element.TypeArrow,
		element.TypeDiamond, element.TypeText, element.TypeLibrary:
		return true
	}
	return false
}
