package element

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathLength(t *testing.T) {
	e := &Element{
		Type: TypePath,
		Points: []Point{
			{X: 0, Y: 0},
			{X: 300, Y: 0},
			{X: 300, Y: 100},
		},
	}
	require.InDelta(t, 400.0, e.PathLength(), 1e-9)

	single := &Element{Type: TypePath, Points: []Point{{X: 5, Y: 5}}}
	require.Zero(t, single.PathLength())

	empty := &Element{Type: TypePath}
	require.Zero(t, empty.PathLength())
}

func TestAnchor(t *testing.T) {
	path := &Element{
		Type: TypePath,
		X:    999, Y: 999, // ignored for path-like types
		Points: []Point{
			{X: 50, Y: 120},
			{X: 10, Y: 400},
			{X: 200, Y: 30},
		},
	}
	a := path.Anchor()
	require.Equal(t, Point{X: 10, Y: 30}, a)

	rect := &Element{Type: TypeRectangle, X: 100, Y: 200, Width: 50, Height: 50}
	require.Equal(t, Point{X: 100, Y: 200}, rect.Anchor())
}

func TestBounds(t *testing.T) {
	rect := &Element{Type: TypeRectangle, X: 10, Y: 20, Width: 30, Height: 40}
	minX, minY, maxX, maxY := rect.Bounds()
	require.Equal(t, []float64{10, 20, 40, 60}, []float64{minX, minY, maxX, maxY})

	path := &Element{Type: TypeHighlighter, Points: []Point{{X: -5, Y: 8}, {X: 3, Y: -2}}}
	minX, minY, maxX, maxY = path.Bounds()
	require.Equal(t, []float64{-5, -2, 3, 8}, []float64{minX, minY, maxX, maxY})
}

func TestSortStable(t *testing.T) {
	a := &Element{ID: "a", Timestamp: 100, Seq: 0}
	b := &Element{ID: "b", Timestamp: 100, Seq: 1}
	c := &Element{ID: "c", Timestamp: 50, Seq: 2}

	els := []*Element{b, a, c}
	SortStable(els)

	require.Equal(t, "c", els[0].ID)
	require.Equal(t, "a", els[1].ID, "equal timestamps keep insertion order")
	require.Equal(t, "b", els[2].ID)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		typ  Type
		want Category
	}{
		{TypePath, CategoryPenStroke},
		{TypeHighlighter, CategoryPenStroke},
		{TypeRectangle, CategoryShape},
		{TypeEllipse, CategoryShape},
		{TypeLine, CategoryShape},
		{TypeArrow, CategoryShape},
		{TypeDiamond, CategoryShape},
		{TypeText, CategoryShape},
		{TypeLibrary, CategoryLibrary},
		{Type("mystery"), CategoryShape},
	}
	for _, tc := range cases {
		got := Classify(&Element{Type: tc.typ})
		require.Equal(t, tc.want, got, "type %s", tc.typ)
	}
}
