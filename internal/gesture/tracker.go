package gesture

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jchen0824/new-year-countdown/internal/capture"
	"github.com/jchen0824/new-year-countdown/internal/detector"
)

// FrameSource hands out the newest camera frame. capture.Stream implements it.
type FrameSource interface {
	Grab(after uint64) (*capture.Frame, error)
	Ready() bool
}

// rateSetter is implemented by sources whose capture rate can change.
type rateSetter interface {
	SetFPS(fps int)
}

// TrackerConfig controls classification and camera pacing.
type TrackerConfig struct {
	FistRatio float64

	// When no hand has been seen for IdleAfter the source drops to IdleFPS,
	// and returns to ActiveFPS on the next detection. Zero disables.
	IdleAfter time.Duration
	IdleFPS   int
	ActiveFPS int

	// WakeMotion is the percent of pixels that must change between frames
	// before an idle tracker runs detection again. Zero detects every frame.
	WakeMotion float64
}

// DefaultTrackerConfig returns the standard ratio and a 2 s idle window.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		FistRatio:  DefaultFistRatio,
		IdleAfter:  2 * time.Second,
		IdleFPS:    10,
		ActiveFPS:  capture.DefaultFPS,
		WakeMotion: 1.0,
	}
}

// Tracker runs detection on new frames and keeps the latest HandState.
type Tracker struct {
	source   FrameSource
	detector detector.Detector
	cfg      TrackerConfig
	now      func() time.Time
	wake     *capture.MotionGate

	mu       sync.RWMutex
	state    HandState
	lastSeq  uint64
	lastSeen time.Time
	idle     bool
}

// NewTracker creates a tracker. It starts with no hand present.
func NewTracker(source FrameSource, det detector.Detector, cfg TrackerConfig) *Tracker {
	if cfg.FistRatio <= 0 {
		cfg.FistRatio = DefaultFistRatio
	}
	t := &Tracker{
		source:   source,
		detector: det,
		cfg:      cfg,
		now:      time.Now,
	}
	if cfg.WakeMotion > 0 {
		t.wake = capture.NewMotionGate(cfg.WakeMotion)
	}
	t.lastSeen = t.now()
	return t
}

// Poll processes the newest frame if there is one. Without a new frame the
// previous state is returned and no inference runs. When the frame has no
// hand, IsPresent turns false and the other fields keep their last values.
// A detector error leaves the state untouched.
func (t *Tracker) Poll() (HandState, error) {
	t.mu.RLock()
	after, idle := t.lastSeq, t.idle
	t.mu.RUnlock()

	frame, err := t.source.Grab(after)
	if errors.Is(err, capture.ErrNoNewFrame) {
		return t.State(), nil
	}
	if err != nil {
		return t.State(), fmt.Errorf("grab frame: %w", err)
	}
	defer frame.Close()

	if idle && t.wake != nil {
		if moved, _ := t.wake.Moved(&frame.Mat); !moved {
			t.mu.Lock()
			t.lastSeq = frame.Seq
			t.mu.Unlock()
			return t.State(), nil
		}
	}

	hands, err := t.detector.Detect(&frame.Mat)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastSeq = frame.Seq
	if err != nil {
		return t.state, fmt.Errorf("detect hands: %w", err)
	}

	if len(hands) == 0 {
		t.state.IsPresent = false
	} else {
		t.state = Classify(&hands[0], t.cfg.FistRatio)
		t.lastSeen = t.now()
	}
	t.pace()

	return t.state, nil
}

// pace switches the source between idle and active capture rates. Called
// with mu held.
func (t *Tracker) pace() {
	if t.cfg.IdleAfter <= 0 {
		return
	}
	rs, ok := t.source.(rateSetter)
	if !ok {
		return
	}

	switch {
	case t.state.IsPresent && t.idle:
		t.idle = false
		rs.SetFPS(t.cfg.ActiveFPS)
		log.Printf("[gesture] hand found, camera at %d fps", t.cfg.ActiveFPS)
	case !t.state.IsPresent && !t.idle && t.now().Sub(t.lastSeen) >= t.cfg.IdleAfter:
		t.idle = true
		if t.wake != nil {
			t.wake.Reset()
		}
		rs.SetFPS(t.cfg.IdleFPS)
		log.Printf("[gesture] no hand for %v, camera at %d fps", t.cfg.IdleAfter, t.cfg.IdleFPS)
	}
}

// State returns the latest hand state.
func (t *Tracker) State() HandState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Ready reports whether the camera has delivered a frame.
func (t *Tracker) Ready() bool {
	return t.source.Ready()
}

// Close releases the motion gate.
func (t *Tracker) Close() {
	if t.wake != nil {
		t.wake.Close()
	}
}

// Idle reports whether the tracker has slowed the camera down.
func (t *Tracker) Idle() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.idle
}
