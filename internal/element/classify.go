package element

// Category classifies an element for timing purposes. Every place that
// needs per-category durations or delays goes through Classify so the
// mapping lives in exactly one spot.
type Category int

const (
	CategoryPenStroke Category = iota
	CategoryShape
	CategoryLibrary
)

func (c Category) String() string {
	switch c {
	case CategoryPenStroke:
		return "pen_stroke"
	case CategoryShape:
		return "shape"
	case CategoryLibrary:
		return "library"
	}
	return "unknown"
}

// Classify maps an element type to its timing category. Unknown types
// animate like shapes, which is the safest default: a fixed duration and
// no path-length dependence.
func Classify(e *Element) Category {
	switch e.Type {
	case TypePath, TypeHighlighter:
		return CategoryPenStroke
	case TypeLibrary:
		return CategoryLibrary
	default:
		return CategoryShape
	}
}
