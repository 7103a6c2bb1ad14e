package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ivlev/inkreplay/internal/element"
)

const sampleDoc = `version: "1.0"
elements:
  - id: stroke-1
    type: path
    points:
      - {x: 10, y: 20}
      - {x: 30, y: 40}
    style: {stroke_color: "#222222", stroke_width: 3, opacity: 0.9}
    layer: base
    timestamp: 100
  - type: rectangle
    x: 50
    y: 60
    width: 120
    height: 80
    style: {stroke_color: "#0000ff", fill_color: "#eeeeff"}
    layer: base
    timestamp: 250
layer_switches:
  - {from: base, to: detail, timestamp: 180}
`

func TestReadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sketch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0644))

	doc, err := Read(path)
	require.NoError(t, err)

	els := doc.Elements()
	require.Len(t, els, 2)

	require.Equal(t, "stroke-1", els[0].ID)
	require.Equal(t, element.TypePath, els[0].Type)
	require.Len(t, els[0].Points, 2)
	require.InDelta(t, 0.9, els[0].Style.Opacity, 1e-9)
	require.Equal(t, 0, els[0].Seq)

	require.NotEmpty(t, els[1].ID, "id-less elements get generated ids")
	require.Equal(t, 1, els[1].Seq)
	require.Equal(t, 1.0, els[1].Style.Opacity, "missing opacity defaults to opaque")

	switches := doc.LayerSwitches()
	require.Len(t, switches, 1)
	require.Equal(t, "detail", switches[0].To)
}

func TestReadRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"unknown type":        `elements: [{type: scribble, timestamp: 0}]`,
		"path without points": `elements: [{type: path, timestamp: 0}]`,
		"negative size":       `elements: [{type: rectangle, width: -5, height: 10, timestamp: 0}]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
			_, err := Read(path)
			require.Error(t, err)
		})
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	doc := &Document{
		Version: "1.0",
		Items: []*element.Element{
			{ID: "a", Type: element.TypeEllipse, X: 1, Y: 2, Width: 3, Height: 4, Timestamp: 10,
				Style: element.Style{Opacity: 1}},
		},
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Write(doc, path))

	got, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, doc.Items[0].ID, got.Items[0].ID)
	require.Equal(t, doc.Items[0].Type, got.Items[0].Type)
}
