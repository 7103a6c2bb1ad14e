package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ivlev/inkreplay/internal/element"
)

func TestNewRasterRejectsZeroDimensions(t *testing.T) {
	_, err := NewRaster(0, 720)
	require.Error(t, err)
	_, err = NewRaster(1280, 0)
	require.Error(t, err)

	r, err := NewRaster(64, 64)
	require.NoError(t, err)
	require.NotNil(t, r)
}

func TestRenderFrameDrawsVisibleElements(t *testing.T) {
	r, err := NewRaster(100, 100)
	require.NoError(t, err)

	stroke := &element.Element{
		ID:   "s",
		Type: element.TypePath,
		Points: []element.Point{
			{X: 10, Y: 50},
			{X: 90, Y: 50},
		},
		Style: element.Style{StrokeColor: "#000000", StrokeWidth: 4, Opacity: 1},
	}

	require.NoError(t, r.RenderFrame(Frame{
		Elements: []*element.Element{stroke},
		Progress: map[string]float64{"s": 1},
	}))

	img := r.Image()
	cr, cg, cb, _ := img.At(50, 50).RGBA()
	require.Zero(t, cr>>8)
	require.Zero(t, cg>>8)
	require.Zero(t, cb>>8)

	// Pixels beyond the revealed stroke stay white.
	wr, _, _, _ := img.At(5, 5).RGBA()
	require.Equal(t, uint32(0xff), wr>>8)
}

func TestRenderFramePartialReveal(t *testing.T) {
	r, err := NewRaster(100, 100)
	require.NoError(t, err)

	stroke := &element.Element{
		ID:     "s",
		Type:   element.TypePath,
		Points: []element.Point{{X: 0, Y: 50}, {X: 100, Y: 50}},
		Style:  element.Style{StrokeColor: "#ff0000", StrokeWidth: 6},
	}

	require.NoError(t, r.RenderFrame(Frame{
		Elements: []*element.Element{stroke},
		Progress: map[string]float64{"s": 0.3},
	}))
	img := r.Image()

	cr, _, _, _ := img.At(15, 50).RGBA()
	require.Equal(t, uint32(0xff), cr>>8, "first 30%% of the stroke is drawn")

	cr, cg, cb, _ := img.At(80, 50).RGBA()
	require.Equal(t, uint32(0xff), cr>>8)
	require.Equal(t, uint32(0xff), cg>>8, "last 70%% still white")
	require.Equal(t, uint32(0xff), cb>>8)
}

func TestRenderFrameSkipsMalformedElement(t *testing.T) {
	r, err := NewRaster(50, 50)
	require.NoError(t, err)

	bad := &element.Element{ID: "bad", Type: element.TypePath} // no points
	good := &element.Element{
		ID: "good", Type: element.TypeRectangle,
		X: 10, Y: 10, Width: 20, Height: 20,
		Style: element.Style{StrokeColor: "#000000", StrokeWidth: 2},
	}

	require.NoError(t, r.RenderFrame(Frame{
		Elements: []*element.Element{bad, good},
		Progress: map[string]float64{"bad": 1, "good": 1},
	}), "a malformed element must not abort the frame")

	img := r.Image()
	cr, _, _, _ := img.At(20, 10).RGBA()
	require.Zero(t, cr>>8, "remaining elements still draw")
}

func TestViewportTransform(t *testing.T) {
	r, err := NewRaster(100, 100)
	require.NoError(t, err)
	r.SetViewport(Viewport{X: 1000, Y: 1000, Scale: 1, Width: 100, Height: 100})

	dot := &element.Element{
		ID:     "d",
		Type:   element.TypePath,
		Points: []element.Point{{X: 1050, Y: 1050}, {X: 1051, Y: 1050}},
		Style:  element.Style{StrokeColor: "#000000", StrokeWidth: 8},
	}
	require.NoError(t, r.RenderFrame(Frame{
		Elements: []*element.Element{dot},
		Progress: map[string]float64{"d": 1},
	}))

	cr, _, _, _ := r.Image().At(50, 50).RGBA()
	require.Zero(t, cr>>8, "world 1050,1050 maps to surface 50,50")
}

func TestPartialPolyline(t *testing.T) {
	pts := []element.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}}

	require.Nil(t, partialPolyline(pts, 0))
	require.Equal(t, pts, partialPolyline(pts, 1))

	half := partialPolyline(pts, 0.5)
	require.Len(t, half, 2)
	require.Equal(t, element.Point{X: 100, Y: 0}, half[1])

	threeQuarters := partialPolyline(pts, 0.75)
	require.Len(t, threeQuarters, 3)
	require.Equal(t, element.Point{X: 100, Y: 50}, threeQuarters[2])
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"#ff0000", color.NRGBA{R: 255, A: 255}, true},
		{"#00ff00aa", color.NRGBA{G: 255, A: 170}, true},
		{"#fff", color.NRGBA{R: 255, G: 255, B: 255, A: 255}, true},
		{"112233", color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 255}, true},
		{"transparent", color.NRGBA{}, false},
		{"", color.NRGBA{}, false},
		{"#zzzzzz", color.NRGBA{}, false},
	}
	for _, tc := range cases {
		got, ok := parseColor(tc.in)
		require.Equal(t, tc.ok, ok, "input %q", tc.in)
		if ok {
			require.Equal(t, tc.want, got, "input %q", tc.in)
		}
	}
}
