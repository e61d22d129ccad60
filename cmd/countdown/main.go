package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jchen0824/new-year-countdown/internal/app"
	"github.com/jchen0824/new-year-countdown/internal/assets"
	"github.com/jchen0824/new-year-countdown/internal/audio"
	"github.com/jchen0824/new-year-countdown/internal/capture"
	"github.com/jchen0824/new-year-countdown/internal/config"
	"github.com/jchen0824/new-year-countdown/internal/countdown"
	"github.com/jchen0824/new-year-countdown/internal/detector"
	"github.com/jchen0824/new-year-countdown/internal/gesture"
	"github.com/jchen0824/new-year-countdown/internal/glyph"
	"github.com/jchen0824/new-year-countdown/internal/particle"
	"github.com/jchen0824/new-year-countdown/internal/render"
	"github.com/jchen0824/new-year-countdown/internal/termview"
	"github.com/jchen0824/new-year-countdown/internal/tray"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		renderer   = flag.String("renderer", config.RendererEbiten, "ebiten or terminal")
		cameraID   = flag.Int("camera", 0, "camera device index")
		particles  = flag.Int("particles", 0, "particle count")
		trayOn     = flag.Bool("tray", false, "show the system tray menu")
		mute       = flag.Bool("mute", false, "disable the transition chime")
		verbose    = flag.Bool("verbose", false, "log every countdown transition")
	)
	flag.Parse()

	fmt.Println("Chronos 2026 - hand tracking countdown")

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	// Only flags given on the command line override the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "renderer":
			cfg.Renderer = *renderer
		case "camera":
			cfg.Camera.Device = *cameraID
		case "particles":
			cfg.Particles.Count = *particles
		case "tray":
			cfg.Tray.Enabled = *trayOn
		case "mute":
			cfg.Audio.Enabled = !*mute
		case "verbose":
			cfg.Log.Verbose = *verbose
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := uuid.New()
	log.Printf("[main] session %s", session)

	store, err := assets.NewStore(session)
	if err != nil {
		log.Fatalf("Failed to create asset store: %v", err)
	}

	font, err := store.LoadFont(ctx, assets.FontSource{URL: cfg.Font.URL, Path: cfg.Font.Path})
	if err != nil {
		store.Close()
		log.Fatalf("Failed to load font: %v", err)
	}

	modelPath, err := store.ModelPath(ctx, cfg.Detector.ModelURL, cfg.Detector.ModelPath)
	if err != nil {
		store.Close()
		log.Fatalf("Failed to fetch hand landmarker model: %v", err)
	}

	a, err := app.New(appConfig(cfg, font, newDetector(cfg, modelPath), store.Close))
	if err != nil {
		store.Close()
		log.Fatalf("Failed to initialize: %v", err)
	}

	if cfg.Audio.Enabled {
		player := audio.NewPlayer(cfg.Audio.Volume)
		if err := player.Initialize(); err != nil {
			// Non-fatal, the countdown runs without sound
			log.Printf("[main] audio unavailable: %v", err)
		} else {
			a.OnTransition(player.Play)
			defer player.Close()
		}
	}

	if err := a.Start(ctx); err != nil {
		log.Printf("[main] camera unavailable: %v", err)
	}
	defer func() {
		if err := a.Stop(); err != nil {
			log.Printf("[main] shutdown: %v", err)
		}
	}()

	var quit func()
	switch cfg.Renderer {
	case config.RendererTerminal:
		v, err := termview.New(a, nil)
		if err != nil {
			log.Fatalf("Failed to open terminal: %v", err)
		}
		quit = v.Quit
		startTray(ctx, cfg, a, quit)
		err = v.Run(ctx)
		if err != nil {
			log.Printf("[main] terminal: %v", err)
		}

	default:
		g, err := render.NewGame(a, renderOptions(cfg))
		if err != nil {
			log.Fatalf("Failed to initialize renderer: %v", err)
		}
		quit = g.Quit
		go func() {
			<-ctx.Done()
			g.Quit()
		}()
		startTray(ctx, cfg, a, quit)
		if err := g.Run(); err != nil {
			log.Printf("[main] renderer: %v", err)
		}
	}
}

// newDetector starts the hand landmarker, falling back to a detector that
// never sees a hand when the sidecar is unavailable.
func newDetector(cfg *config.Config, modelPath string) detector.Detector {
	dc := detector.DefaultConfig()
	dc.ModelPath = modelPath
	dc.Python = cfg.Detector.Python
	dc.Script = cfg.Detector.Script
	dc.MaxHands = cfg.Detector.MaxHands
	dc.MinConfidence = cfg.Detector.MinConfidence
	dc.MinTrackingConf = cfg.Detector.MinTrackingConf

	mp, err := detector.NewMediaPipeDetector(dc)
	if err != nil {
		log.Printf("[main] MediaPipe not available (%v), hand tracking disabled", err)
		return detector.NewMockDetector()
	}
	log.Println("[main] using MediaPipe hand detection")
	return mp
}

func appConfig(cfg *config.Config, font *glyph.Font, det detector.Detector, cleanup func() error) app.Config {
	physics := particle.DefaultParams()
	physics.Damping = cfg.Particles.Damping
	physics.Noise = cfg.Particles.Noise
	physics.Implosion = cfg.Particles.Implosion
	physics.Workers = cfg.Particles.Workers

	tracker := gesture.DefaultTrackerConfig()
	tracker.FistRatio = cfg.Gesture.FistRatio
	tracker.IdleAfter = cfg.Gesture.IdleAfter
	tracker.WakeMotion = cfg.Gesture.WakeMotion
	tracker.ActiveFPS = cfg.Camera.FPS

	return app.Config{
		Camera: capture.NewCamera(capture.Config{
			DeviceID: cfg.Camera.Device,
			Width:    cfg.Camera.Width,
			Height:   cfg.Camera.Height,
			FPS:      cfg.Camera.FPS,
		}),
		Detector:    det,
		Font:        font,
		Celebration: cfg.Glyph.Celebration,
		Particles:   cfg.Particles.Count,
		Glyph: glyph.Options{
			Size:          cfg.Glyph.Size,
			Depth:         cfg.Glyph.Depth,
			CurveSegments: cfg.Glyph.CurveSegments,
		},
		Physics:  physics,
		Tracker:  tracker,
		Cooldown: cfg.Gesture.Cooldown,
		Seed:     uint64(time.Now().UnixNano()),
		Cleanup:  cleanup,
		Verbose:  cfg.Log.Verbose,
	}
}

func renderOptions(cfg *config.Config) render.Options {
	return render.Options{
		Title:          cfg.Window.Title,
		Width:          cfg.Window.Width,
		Height:         cfg.Window.Height,
		Fullscreen:     cfg.Window.Fullscreen,
		Bloom:          cfg.Effects.Bloom,
		BloomThreshold: cfg.Effects.BloomThreshold,
		BloomIntensity: cfg.Effects.BloomIntensity,
		Vignette:       cfg.Effects.Vignette,
		Stars:          cfg.Effects.Stars,
		Sparkles:       cfg.Effects.Sparkles,
	}
}

// startTray runs the tray menu on its own goroutine. The macOS tray needs
// the main thread, which the window already owns.
func startTray(ctx context.Context, cfg *config.Config, a *app.App, quit func()) {
	if !cfg.Tray.Enabled {
		return
	}
	if runtime.GOOS == "darwin" && cfg.Renderer == config.RendererEbiten {
		log.Println("[main] tray is not available alongside the window on macOS")
		return
	}

	t := tray.New(a.Countdown())
	t.OnReset(a.Reset)
	t.OnQuit(quit)
	a.OnTransition(func(tr countdown.Transition) { t.SetCountdown(tr.To) })

	go t.Run()
	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				t.Quit()
				return
			case <-ticker.C:
				t.SetLinked(a.Hand().IsPresent)
			}
		}
	}()
}
