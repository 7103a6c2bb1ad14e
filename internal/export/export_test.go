package export

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ivlev/inkreplay/internal/config"
	"github.com/ivlev/inkreplay/internal/element"
)

func exportConfig() config.Replay {
	cfg := config.DefaultReplay()
	cfg.Width = 320
	cfg.Height = 180
	cfg.FPS = 10
	return cfg
}

func shape(id string, x, y, ts float64) *element.Element {
	return &element.Element{
		ID:        id,
		Type:      element.TypeRectangle,
		X:         x,
		Y:         y,
		Width:     200,
		Height:    120,
		Style:     element.Style{StrokeColor: "#1971c2", StrokeWidth: 3, FillColor: "#a5d8ff", Opacity: 1},
		Timestamp: ts,
	}
}

func TestNewRejectsMissingOutDir(t *testing.T) {
	_, err := New(exportConfig(), config.DefaultAnimation(), Options{})
	require.Error(t, err)
}

func TestRunWritesFrameSequence(t *testing.T) {
	dir := t.TempDir()
	x, err := New(exportConfig(), config.DefaultAnimation(), Options{OutDir: dir, Workers: 2})
	require.NoError(t, err)

	res, err := x.Run(context.Background(), []*element.Element{
		shape("a", 100, 100, 0),
		shape("b", 600, 400, 1000),
	}, nil)
	require.NoError(t, err)

	// Two shapes back to back: 500ms + 200ms delay + 500ms of
	// animation at 10 FPS is at least 12 frames.
	require.GreaterOrEqual(t, res.Frames, 12)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, res.Frames)

	// The sequence is gapless and each file is a decodable PNG of
	// the configured size.
	for i := 0; i < res.Frames; i++ {
		path := filepath.Join(dir, fmt.Sprintf("frame_%06d.png", i))
		f, err := os.Open(path)
		require.NoError(t, err)
		img, err := png.Decode(f)
		require.NoError(t, f.Close())
		require.NoError(t, err)
		require.Equal(t, 320, img.Bounds().Dx())
		require.Equal(t, 180, img.Bounds().Dy())
	}
}

func TestRunIncludesTransitionFrames(t *testing.T) {
	dir := t.TempDir()
	x, err := New(exportConfig(), config.DefaultAnimation(), Options{OutDir: dir, Workers: 1})
	require.NoError(t, err)

	single, err := x.Run(context.Background(), []*element.Element{shape("a", 100, 100, 0)}, nil)
	require.NoError(t, err)

	dir2 := t.TempDir()
	x2, err := New(exportConfig(), config.DefaultAnimation(), Options{OutDir: dir2, Workers: 1})
	require.NoError(t, err)

	// The second element lives on another virtual page, so the
	// export carries the 800ms camera transition as extra frames on
	// top of the longer schedule.
	crossing, err := x2.Run(context.Background(), []*element.Element{
		shape("a", 100, 100, 0),
		shape("b", 5000, 100, 1000),
	}, nil)
	require.NoError(t, err)
	require.Greater(t, crossing.Frames, single.Frames+int(800/100))
}

func TestRunEmptyDrawing(t *testing.T) {
	dir := t.TempDir()
	x, err := New(exportConfig(), config.DefaultAnimation(), Options{OutDir: dir, Workers: 1})
	require.NoError(t, err)

	res, err := x.Run(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Zero(t, res.Frames)
}
