package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/inkreplay/internal/config"
	"github.com/ivlev/inkreplay/internal/export"
	"github.com/ivlev/inkreplay/internal/pages"
	"github.com/ivlev/inkreplay/internal/source"
)

func main() {
	inputPtr := flag.String("input", "", "Path to the sketch document (YAML)")
	outputPtr := flag.String("output", "", "Output directory for the frame sequence (default: output/<name>_<timestamp>/)")
	widthPtr := flag.Int("width", 1280, "Surface width")
	heightPtr := flag.Int("height", 720, "Surface height")
	fpsPtr := flag.Int("fps", 30, "Frames per second")
	pageWPtr := flag.Float64("page-width", 1920, "Virtual page width")
	pageHPtr := flag.Float64("page-height", 1080, "Virtual page height")
	transitionPtr := flag.String("transition", "fade", "Page transition: fade, slide, zoom, none")
	transitionDurPtr := flag.Float64("transition-duration", 800, "Page transition duration (ms)")
	presetPtr := flag.String("preset", "", "Animation preset: default, fast, deliberate")
	settingsPtr := flag.String("settings", "", "Path to an animation settings file (overrides -preset)")
	trueSpeedPtr := flag.Bool("true-speed", false, "Reveal strokes at a constant speed derived from their length")
	ratePtr := flag.Float64("rate", 0, "True-speed rate in px/s (0 keeps the preset's rate)")
	workersPtr := flag.Int("workers", 0, "Encode workers (0 = auto)")
	statsPtr := flag.Bool("stats", false, "Print drawing statistics and exit")

	flag.Parse()

	if *inputPtr == "" {
		log.Fatalf("[-] Error: -input is required")
	}

	doc, err := source.Read(*inputPtr)
	if err != nil {
		log.Fatalf("[-] Error reading sketch: %v", err)
	}
	fmt.Printf("[*] Loaded %s: %d elements\n", *inputPtr, len(doc.Elements()))

	settings, err := config.Preset(*presetPtr)
	if err != nil {
		log.Fatalf("[-] Error: %v", err)
	}
	if *settingsPtr != "" {
		loaded, err := config.ReadSettings(*settingsPtr)
		if err != nil {
			log.Fatalf("[-] Error reading settings: %v", err)
		}
		settings = loaded.Animation
		fmt.Printf("[*] Settings loaded from %s\n", *settingsPtr)
	}
	if *trueSpeedPtr {
		settings.TrueSpeed = true
	}
	if *ratePtr > 0 {
		settings.TrueSpeedRate = *ratePtr
	}

	cfg := config.DefaultReplay()
	cfg.Width = *widthPtr
	cfg.Height = *heightPtr
	cfg.FPS = *fpsPtr
	cfg.PageWidth = *pageWPtr
	cfg.PageHeight = *pageHPtr
	cfg.TransitionType = *transitionPtr
	cfg.TransitionDuration = *transitionDurPtr
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Error: %v", err)
	}

	if *statsPtr {
		printStats(doc, cfg)
		return
	}

	outDir := *outputPtr
	if outDir == "" {
		baseName := filepath.Base(*inputPtr)
		nameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
		cleanName := strings.ReplaceAll(nameOnly, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		outDir = filepath.Join("output", fmt.Sprintf("%s_%s", cleanName, timestamp))
	}

	exp, err := export.New(cfg, settings, export.Options{OutDir: outDir, Workers: *workersPtr})
	if err != nil {
		log.Fatalf("[-] Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	res, err := exp.Run(ctx, doc.Elements(), doc.LayerSwitches())
	if err != nil {
		log.Fatalf("[-] Export failed: %v", err)
	}

	fmt.Printf("[+++] Done! %d frames (%.1fs of replay) in %.1fs: %s\n",
		res.Frames, res.DurationMs/1000, time.Since(start).Seconds(), outDir)
}

func printStats(doc *source.Document, cfg config.Replay) {
	elements := doc.Elements()

	byType := map[string]int{}
	for _, e := range elements {
		byType[string(e.Type)]++
	}

	fmt.Printf("[*] Elements: %d\n", len(elements))
	for t, n := range byType {
		fmt.Printf("    %-18s %d\n", t, n)
	}
	idx := pages.NewIndex(cfg.PageWidth, cfg.PageHeight)
	idx.Rebuild(elements)

	fmt.Printf("[*] Layer switches: %d\n", len(doc.LayerSwitches()))
	fmt.Printf("[*] Pages used: %d (grid %gx%g)\n", idx.PageCount(), cfg.PageWidth, cfg.PageHeight)
}
