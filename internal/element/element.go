package element

import (
	"math"
	"sort"
)

// Type identifies how an element is geometrically described.
type Type string

const (
	TypePath        Type = "path"
	TypeHighlighter Type = "highlighter"
	TypeRectangle   Type = "rectangle"
	TypeEllipse     Type = "ellipse"
	TypeLine        Type = "line"
	TypeArrow       Type = "arrow"
	TypeDiamond     Type = "diamond"
	TypeText        Type = "text"
	TypeLibrary     Type = "library-component"
)

// Point is a position in world coordinates.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Style holds the visual attributes of an element.
type Style struct {
	StrokeColor string  `yaml:"stroke_color"`
	StrokeWidth float64 `yaml:"stroke_width"`
	FillColor   string  `yaml:"fill_color"`
	Opacity     float64 `yaml:"opacity"`
}

// Element is a single drawn object. Elements are created by the drawing
// surface and consumed read-only by the replay engine.
type Element struct {
	ID     string  `yaml:"id"`
	Type   Type    `yaml:"type"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Points []Point `yaml:"points"`
	Style  Style   `yaml:"style"`
	Layer  string  `yaml:"layer"`

	// Timestamp orders drawing order (milliseconds, monotonic).
	// Seq breaks timestamp ties by insertion order.
	Timestamp float64 `yaml:"timestamp"`
	Seq       int     `yaml:"-"`
}

// IsPathLike reports whether the type carries an ordered point sequence.
func (t Type) IsPathLike() bool {
	return t == TypePath || t == TypeHighlighter
}

// Anchor returns the representative point used for page assignment:
// the minimum of the point cloud for path-like elements, the top-left
// corner for everything else.
func (e *Element) Anchor() Point {
	if e.Type.IsPathLike() && len(e.Points) > 0 {
		min := e.Points[0]
		for _, p := range e.Points[1:] {
			if p.X < min.X {
				min.X = p.X
			}
			if p.Y < min.Y {
				min.Y = p.Y
			}
		}
		return min
	}
	return Point{X: e.X, Y: e.Y}
}

// Bounds returns the world-space bounding box as (minX, minY, maxX, maxY).
func (e *Element) Bounds() (float64, float64, float64, float64) {
	if e.Type.IsPathLike() && len(e.Points) > 0 {
		minX, minY := e.Points[0].X, e.Points[0].Y
		maxX, maxY := minX, minY
		for _, p := range e.Points[1:] {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
		return minX, minY, maxX, maxY
	}
	return e.X, e.Y, e.X + e.Width, e.Y + e.Height
}

// PathLength returns the cumulative Euclidean length of the point
// sequence. Elements with fewer than two points have zero length.
func (e *Element) PathLength() float64 {
	if len(e.Points) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(e.Points); i++ {
		dx := e.Points[i].X - e.Points[i-1].X
		dy := e.Points[i].Y - e.Points[i-1].Y
		total += math.Hypot(dx, dy)
	}
	return total
}

// SortStable orders elements by timestamp ascending, preserving
// insertion order for equal timestamps.
func SortStable(elements []*Element) {
	sort.SliceStable(elements, func(i, j int) bool {
		if elements[i].Timestamp != elements[j].Timestamp {
			return elements[i].Timestamp < elements[j].Timestamp
		}
		return elements[i].Seq < elements[j].Seq
	})
}
