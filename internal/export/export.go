// Package export renders a full replay offline into a numbered PNG
// frame sequence. Frames are produced sequentially by the playback
// engine at exact frame deltas and handed to a pool of encoder workers
// sized for the host machine.
package export

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/inkreplay/internal/config"
	"github.com/ivlev/inkreplay/internal/element"
	"github.com/ivlev/inkreplay/internal/playback"
	"github.com/ivlev/inkreplay/internal/render"
	"github.com/ivlev/inkreplay/internal/replay"
	"github.com/ivlev/inkreplay/internal/system"
	"github.com/ivlev/inkreplay/internal/timeline"
)

// Options controls a frame-sequence export.
type Options struct {
	// OutDir receives frame_000000.png, frame_000001.png, ...
	OutDir string

	// Workers bounds the encoder pool; 0 sizes it from the host's
	// CPU count and available memory.
	Workers int
}

// Result summarizes a finished export.
type Result struct {
	Frames     int
	DurationMs float64
}

// job carries one rendered frame to the encoder pool. The buffer comes
// from the shared image pool and is returned there after encoding.
type job struct {
	index int
	img   *image.RGBA
}

// Exporter renders replays to disk.
type Exporter struct {
	cfg      config.Replay
	settings config.Animation
	opts     Options
}

// New creates an exporter for the given configuration.
func New(cfg config.Replay, settings config.Animation, opts Options) (*Exporter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if opts.OutDir == "" {
		return nil, fmt.Errorf("export: output directory not set")
	}
	return &Exporter{cfg: cfg, settings: settings, opts: opts}, nil
}

// Run replays the elements offline and writes every rendered frame,
// including page-transition frames, as a PNG. It blocks until the
// sequence is complete or ctx is cancelled.
func (x *Exporter) Run(ctx context.Context, elements []*element.Element, switches []timeline.LayerSwitchEvent) (Result, error) {
	if err := os.MkdirAll(x.opts.OutDir, 0755); err != nil {
		return Result{}, err
	}

	raster, err := render.NewRaster(x.cfg.Width, x.cfg.Height)
	if err != nil {
		return Result{}, err
	}

	workers := x.opts.Workers
	if workers <= 0 {
		workers = system.ExportWorkers(x.cfg.Width, x.cfg.Height)
	}
	log.Printf("[*] Exporting %dx%d @ %d FPS with %d encode workers",
		x.cfg.Width, x.cfg.Height, x.cfg.FPS, workers)

	pool := system.NewFramePool(x.cfg.Width, x.cfg.Height)
	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan job, workers*2)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for j := range jobs {
				err := x.encode(j)
				pool.Put(j.img)
				if err != nil {
					return err
				}
			}
			return nil
		})
	}

	capture := &captureRenderer{raster: raster, pool: pool, jobs: jobs, ctx: gctx}
	session, err := replay.NewSession(capture, x.cfg, x.settings)
	if err != nil {
		close(jobs)
		g.Wait()
		return Result{}, err
	}
	frameMs := 1000 / float64(x.cfg.FPS)
	session.NewDriver = func() playback.FrameDriver {
		return &playback.ManualDriver{DeltaMs: frameMs}
	}

	if err := session.LoadElements(elements, switches); err != nil {
		close(jobs)
		g.Wait()
		return Result{}, err
	}

	replayErr := session.StartReplay(gctx, playback.Events{})
	close(jobs)

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if replayErr != nil {
		return Result{}, replayErr
	}
	if err := gctx.Err(); err != nil {
		return Result{}, err
	}

	frames := capture.count
	durationMs := float64(frames) * frameMs
	log.Printf("[+++] Export complete: %d frames (%.1fs) in %s",
		frames, durationMs/1000, x.opts.OutDir)
	return Result{Frames: frames, DurationMs: durationMs}, nil
}

func (x *Exporter) encode(j job) error {
	path := filepath.Join(x.opts.OutDir, fmt.Sprintf("frame_%06d.png", j.index))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	if err := png.Encode(f, j.img); err != nil {
		f.Close()
		return fmt.Errorf("export: encode %s: %w", path, err)
	}
	return f.Close()
}

// captureRenderer forwards drawing to the raster surface and queues a
// pooled copy of every finished frame for encoding. The replay loop
// runs frames strictly in order, so frame indices are assigned here.
type captureRenderer struct {
	raster *render.Raster
	pool   *system.FramePool
	jobs   chan<- job
	ctx    context.Context
	count  int
}

func (c *captureRenderer) SetViewport(v render.Viewport) { c.raster.SetViewport(v) }
func (c *captureRenderer) Clear()                        { c.raster.Clear() }

func (c *captureRenderer) RenderFrame(f render.Frame) error {
	if err := c.raster.RenderFrame(f); err != nil {
		return err
	}
	img := c.raster.Snapshot(c.pool.Get())
	select {
	case c.jobs <- job{index: c.count, img: img}:
		c.count++
		return nil
	case <-c.ctx.Done():
		c.pool.Put(img)
		return c.ctx.Err()
	}
}
