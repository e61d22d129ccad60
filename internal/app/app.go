// Package app wires the camera, hand tracker, countdown and particle field
// into one per-frame unit of work.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jchen0824/new-year-countdown/internal/capture"
	"github.com/jchen0824/new-year-countdown/internal/countdown"
	"github.com/jchen0824/new-year-countdown/internal/detector"
	"github.com/jchen0824/new-year-countdown/internal/gesture"
	"github.com/jchen0824/new-year-countdown/internal/glyph"
	"github.com/jchen0824/new-year-countdown/internal/particle"
	"github.com/jchen0824/new-year-countdown/internal/view"
)

// pollErrorInterval limits how often repeated tracker failures are logged.
const pollErrorInterval = 5 * time.Second

// Config holds everything the application needs. Camera, Detector and Font
// are required.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector
	Font     *glyph.Font

	Celebration string
	Particles   int
	Glyph       glyph.Options
	Physics     particle.Params
	Tracker     gesture.TrackerConfig
	Cooldown    time.Duration
	View        view.Camera
	Seed        uint64

	// Cleanup runs at the end of Stop, after the camera and detector are
	// released.
	Cleanup func() error
	Verbose bool
}

// Snapshot is what a renderer needs for one frame. Instances aliases the
// field's buffer and is only valid until the next Tick.
type Snapshot struct {
	Instances []particle.Instance
	Countdown int
	Hand      gesture.HandState
	Ready     bool
	Time      float64
}

// App is the countdown toy.
type App struct {
	config Config

	stream    *capture.Stream
	tracker   *gesture.Tracker
	detector  detector.Detector
	countdown *countdown.Countdown
	glyphs    *glyph.Cache
	field     *particle.Field

	// Touched only from the frame goroutine.
	start        time.Time
	elapsed      float64
	frame        uint64
	aspect       float64
	lastPollLog  time.Time
	lastSnapshot Snapshot

	mu        sync.Mutex
	listeners []func(countdown.Transition)
	started   bool
}

// New builds the glyph table eagerly and allocates the particle field. The
// camera is not touched until Start.
func New(cfg Config) (*App, error) {
	if cfg.Camera == nil {
		return nil, errors.New("app: camera is required")
	}
	if cfg.Detector == nil {
		return nil, errors.New("app: detector is required")
	}
	if cfg.Font == nil {
		return nil, errors.New("app: font is required")
	}
	if cfg.Particles <= 0 {
		return nil, fmt.Errorf("app: particle count must be positive, got %d", cfg.Particles)
	}
	if cfg.Celebration == "" {
		cfg.Celebration = "Happy\n 2026"
	}
	if cfg.Physics == (particle.Params{}) {
		cfg.Physics = particle.DefaultParams()
	}
	if cfg.View == (view.Camera{}) {
		cfg.View = view.Default()
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	cache := glyph.NewCache(glyph.CountdownLabels(cfg.Celebration), cfg.Particles, cfg.Glyph, rng)
	if err := cache.SetFont(cfg.Font); err != nil {
		return nil, fmt.Errorf("build glyph table: %w", err)
	}

	stream := capture.NewStream(cfg.Camera)
	a := &App{
		config:    cfg,
		stream:    stream,
		tracker:   gesture.NewTracker(stream, cfg.Detector, cfg.Tracker),
		detector:  cfg.Detector,
		countdown: countdown.New(cfg.Cooldown),
		glyphs:    cache,
		field:     particle.NewField(cfg.Particles, rng),
		aspect:    16.0 / 9,
	}
	a.countdown.OnChange(a.dispatch)
	return a, nil
}

// Start opens the camera and starts the frame reader. On failure the app
// keeps running but never becomes ready.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return nil
	}
	a.started = true

	if err := a.stream.Start(ctx); err != nil {
		return err
	}
	log.Printf("[app] camera started, %d particles", a.field.N)
	return nil
}

// Stop cancels the reader, then closes the camera, the detector and the
// asset store in that order. It returns the first error.
func (a *App) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if err := a.stream.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("close camera: %w", err))
	}
	if err := a.detector.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close detector: %w", err))
	}
	a.tracker.Close()
	if a.config.Cleanup != nil {
		if err := a.config.Cleanup(); err != nil {
			errs = append(errs, fmt.Errorf("cleanup: %w", err))
		}
	}
	a.started = false

	log.Println("[app] stopped")
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// OnTransition registers fn for every countdown change. Listeners run on
// the goroutine that caused the change.
func (a *App) OnTransition(fn func(countdown.Transition)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

func (a *App) dispatch(tr countdown.Transition) {
	a.mu.Lock()
	fns := append(([]func(countdown.Transition))(nil), a.listeners...)
	a.mu.Unlock()

	if a.config.Verbose {
		log.Printf("[app] countdown %d -> %d", tr.From, tr.To)
	}
	for _, fn := range fns {
		fn(tr)
	}
}

// SetFont swaps the glyph font and rebuilds the table if it changed.
func (a *App) SetFont(f *glyph.Font) error {
	if err := a.glyphs.SetFont(f); err != nil {
		return fmt.Errorf("rebuild glyph table: %w", err)
	}
	return nil
}

// SetAspect sets the viewport aspect ratio used to map the hand position.
func (a *App) SetAspect(aspect float64) {
	if aspect > 0 {
		a.aspect = aspect
	}
}

// Reset puts the countdown back to 5.
func (a *App) Reset() {
	a.countdown.Reset()
}

// Countdown returns the current count.
func (a *App) Countdown() int {
	return a.countdown.Value()
}

// Hand returns the latest tracked hand state.
func (a *App) Hand() gesture.HandState {
	return a.tracker.State()
}

// Ready reports whether the camera has delivered a frame.
func (a *App) Ready() bool {
	return a.tracker.Ready()
}

// View returns the scene camera.
func (a *App) View() view.Camera {
	return a.config.View
}

// ParticleCount returns the fixed size of the field.
func (a *App) ParticleCount() int {
	return a.field.N
}
