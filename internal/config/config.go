package config

import (
	"fmt"

	"github.com/ivlev/inkreplay/internal/easing"
)

// Transition types accepted by the page-transition controller.
const (
	TransitionNone  = "none"
	TransitionFade  = "fade"
	TransitionSlide = "slide"
	TransitionZoom  = "zoom"
)

// Replay holds the engine-level configuration: surface geometry, frame
// rate and page-transition behaviour. All durations are milliseconds.
type Replay struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`

	PageWidth  float64 `yaml:"page_width"`
	PageHeight float64 `yaml:"page_height"`

	TransitionType     string  `yaml:"transition_type"`
	TransitionDuration float64 `yaml:"transition_duration"`
	BadgeDuration      float64 `yaml:"badge_duration"`

	// AutoScale fits the union bounding box of all elements once at
	// load time; the scale is not recomputed per page.
	AutoScale bool `yaml:"auto_scale"`
}

// DefaultReplay returns the configuration used when the caller supplies
// nothing: a 1280x720 surface at 30 FPS over 1920x1080 virtual pages.
func DefaultReplay() Replay {
	return Replay{
		Width:              1280,
		Height:             720,
		FPS:                30,
		PageWidth:          1920,
		PageHeight:         1080,
		TransitionType:     TransitionFade,
		TransitionDuration: 800,
		BadgeDuration:      2500,
		AutoScale:          true,
	}
}

// Validate rejects malformed configuration. Callers keep the previous
// configuration when this fails.
func (r Replay) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("invalid config: surface %dx%d", r.Width, r.Height)
	}
	if r.FPS <= 0 {
		return fmt.Errorf("invalid config: fps %d", r.FPS)
	}
	if r.PageWidth <= 0 || r.PageHeight <= 0 {
		return fmt.Errorf("invalid config: page size %.0fx%.0f", r.PageWidth, r.PageHeight)
	}
	switch r.TransitionType {
	case TransitionNone, TransitionFade, TransitionSlide, TransitionZoom:
	default:
		return fmt.Errorf("invalid config: unknown transition %q", r.TransitionType)
	}
	if r.TransitionDuration < 0 || r.BadgeDuration < 0 {
		return fmt.Errorf("invalid config: negative duration")
	}
	return nil
}

// ReplayPatch carries a partial configuration update; nil fields keep
// their current value. The merged result is validated as a whole.
type ReplayPatch struct {
	Width              *int
	Height             *int
	FPS                *int
	PageWidth          *float64
	PageHeight         *float64
	TransitionType     *string
	TransitionDuration *float64
	BadgeDuration      *float64
	AutoScale          *bool
}

// Apply merges the patch onto r and validates the result. On error the
// receiver is returned unchanged.
func (r Replay) Apply(p ReplayPatch) (Replay, error) {
	merged := r
	if p.Width != nil {
		merged.Width = *p.Width
	}
	if p.Height != nil {
		merged.Height = *p.Height
	}
	if p.FPS != nil {
		merged.FPS = *p.FPS
	}
	if p.PageWidth != nil {
		merged.PageWidth = *p.PageWidth
	}
	if p.PageHeight != nil {
		merged.PageHeight = *p.PageHeight
	}
	if p.TransitionType != nil {
		merged.TransitionType = *p.TransitionType
	}
	if p.TransitionDuration != nil {
		merged.TransitionDuration = *p.TransitionDuration
	}
	if p.BadgeDuration != nil {
		merged.BadgeDuration = *p.BadgeDuration
	}
	if p.AutoScale != nil {
		merged.AutoScale = *p.AutoScale
	}
	if err := merged.Validate(); err != nil {
		return r, err
	}
	return merged, nil
}

// Category holds the timing parameters for one element category.
type Category struct {
	Duration float64 `yaml:"duration"` // per-element reveal time, ms
	Delay    float64 `yaml:"delay"`    // gap before each element except the first, ms
	Easing   string  `yaml:"easing"`
}

// Animation holds the per-category animation settings plus the true
// speed mode for path elements.
type Animation struct {
	PenStroke Category `yaml:"pen_stroke"`
	Shape     Category `yaml:"shape"`
	Library   Category `yaml:"library"`

	TrueSpeed     bool    `yaml:"true_speed"`
	TrueSpeedRate float64 `yaml:"true_speed_rate"` // pixels per second

	// UpdateSteps is the number of evenly spaced update keyframes
	// emitted between an element's start and complete keyframes.
	UpdateSteps int `yaml:"update_steps"`
}

// DefaultAnimation returns the stock timing: strokes reveal in 800ms,
// shapes in 500ms, library objects in 600ms.
func DefaultAnimation() Animation {
	return Animation{
		PenStroke:     Category{Duration: 800, Delay: 150, Easing: "ease-out"},
		Shape:         Category{Duration: 500, Delay: 200, Easing: "ease-in-out"},
		Library:       Category{Duration: 600, Delay: 250, Easing: "ease-in"},
		TrueSpeed:     false,
		TrueSpeedRate: 300,
		UpdateSteps:   20,
	}
}

// Validate rejects malformed animation settings.
func (a Animation) Validate() error {
	for _, c := range []struct {
		name string
		cat  Category
	}{
		{"pen_stroke", a.PenStroke},
		{"shape", a.Shape},
		{"library", a.Library},
	} {
		if c.cat.Duration <= 0 {
			return fmt.Errorf("invalid settings: %s duration %.1f", c.name, c.cat.Duration)
		}
		if c.cat.Delay < 0 {
			return fmt.Errorf("invalid settings: %s delay %.1f", c.name, c.cat.Delay)
		}
		if _, err := easing.ForName(c.cat.Easing); err != nil {
			return fmt.Errorf("invalid settings: %s: %w", c.name, err)
		}
	}
	if a.TrueSpeed && a.TrueSpeedRate <= 0 {
		return fmt.Errorf("invalid settings: true speed rate %.1f", a.TrueSpeedRate)
	}
	if a.UpdateSteps < 1 {
		return fmt.Errorf("invalid settings: update steps %d", a.UpdateSteps)
	}
	return nil
}

// AnimationPatch carries a partial settings update; nil fields keep
// their current value.
type AnimationPatch struct {
	PenStroke     *Category
	Shape         *Category
	Library       *Category
	TrueSpeed     *bool
	TrueSpeedRate *float64
	UpdateSteps   *int
}

// Apply merges the patch onto a and validates the result. On error the
// receiver is returned unchanged.
func (a Animation) Apply(p AnimationPatch) (Animation, error) {
	merged := a
	if p.PenStroke != nil {
		merged.PenStroke = *p.PenStroke
	}
	if p.Shape != nil {
		merged.Shape = *p.Shape
	}
	if p.Library != nil {
		merged.Library = *p.Library
	}
	if p.TrueSpeed != nil {
		merged.TrueSpeed = *p.TrueSpeed
	}
	if p.TrueSpeedRate != nil {
		merged.TrueSpeedRate = *p.TrueSpeedRate
	}
	if p.UpdateSteps != nil {
		merged.UpdateSteps = *p.UpdateSteps
	}
	if err := merged.Validate(); err != nil {
		return a, err
	}
	return merged, nil
}
