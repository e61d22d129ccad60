package app

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/jchen0824/new-year-countdown/internal/capture"
	"github.com/jchen0824/new-year-countdown/internal/countdown"
	"github.com/jchen0824/new-year-countdown/internal/detector"
	"github.com/jchen0824/new-year-countdown/internal/glyph"
	"github.com/jchen0824/new-year-countdown/testdata"
)

type harness struct {
	app      *App
	camera   *capture.MockCamera
	detector *detector.MockDetector
}

func newHarness(t *testing.T, hands string) *harness {
	t.Helper()

	frame := testdata.BlankFrame(64, 48)
	t.Cleanup(func() { frame.Close() })

	cam := capture.NewMockCamera([]*gocv.Mat{frame}, true)
	cam.SetFPS(200)

	det := detector.NewMockDetector()
	if hands != "" {
		h, err := testdata.LoadHands(hands)
		if err != nil {
			t.Fatalf("LoadHands() error = %v", err)
		}
		det.SetHands(h)
	}

	font, err := glyph.DefaultFont()
	if err != nil {
		t.Fatalf("DefaultFont() error = %v", err)
	}

	a, err := New(Config{
		Camera:    cam,
		Detector:  det,
		Font:      font,
		Particles: 400,
		Cooldown:  countdown.DefaultCooldown,
		Seed:      7,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return &harness{app: a, camera: cam, detector: det}
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	if err := h.app.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { h.app.Stop() })

	deadline := time.Now().Add(2 * time.Second)
	for !h.app.Ready() {
		if time.Now().After(deadline) {
			t.Fatal("camera never became ready")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNew_RequiresInputs(t *testing.T) {
	font, err := glyph.DefaultFont()
	if err != nil {
		t.Fatalf("DefaultFont() error = %v", err)
	}
	cam := capture.NewMockCamera(nil, false)
	det := detector.NewMockDetector()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"no camera", Config{Detector: det, Font: font, Particles: 10}},
		{"no detector", Config{Camera: cam, Font: font, Particles: 10}},
		{"no font", Config{Camera: cam, Detector: det, Particles: 10}},
		{"no particles", Config{Camera: cam, Detector: det, Font: font}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("New() should fail")
			}
		})
	}
}

func TestApp_NotReadyIgnoresFist(t *testing.T) {
	h := newHarness(t, testdata.FistCenter)

	now := time.Now()
	for i := 0; i < 5; i++ {
		if err := h.app.Tick(now.Add(time.Duration(i) * 2 * time.Second)); err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
	}

	snap := h.app.Snapshot()
	if snap.Ready {
		t.Error("Snapshot().Ready = true before Start")
	}
	if snap.Countdown != countdown.Start {
		t.Errorf("countdown = %d, want %d", snap.Countdown, countdown.Start)
	}
	if h.detector.Calls() != 0 {
		t.Errorf("detector ran %d times without frames", h.detector.Calls())
	}
	if len(snap.Instances) != 400 {
		t.Errorf("instances = %d, want 400", len(snap.Instances))
	}
	if h.app.Frames() != 5 {
		t.Errorf("Frames() = %d, want 5", h.app.Frames())
	}
}

func TestApp_FistAdvancesOncePerCooldown(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	h := newHarness(t, testdata.FistCenter)
	h.start(t)

	var got []countdown.Transition
	h.app.OnTransition(func(tr countdown.Transition) {
		got = append(got, tr)
	})

	t0 := time.Now()
	steps := []struct {
		at   time.Duration
		want int
	}{
		{0, 4},
		{100 * time.Millisecond, 4},
		{1400 * time.Millisecond, 4},
		{1500 * time.Millisecond, 3},
		{2000 * time.Millisecond, 3},
		{3000 * time.Millisecond, 2},
	}
	for _, s := range steps {
		if err := h.app.Tick(t0.Add(s.at)); err != nil {
			t.Fatalf("Tick(%v) error = %v", s.at, err)
		}
		if c := h.app.Countdown(); c != s.want {
			t.Errorf("after %v countdown = %d, want %d", s.at, c, s.want)
		}
	}

	if len(got) != 3 {
		t.Fatalf("transitions = %d, want 3", len(got))
	}
	if got[0].From != 5 || got[0].To != 4 {
		t.Errorf("first transition = %+v, want 5 -> 4", got[0])
	}

	snap := h.app.Snapshot()
	if !snap.Ready || !snap.Hand.IsPresent || !snap.Hand.IsFist {
		t.Errorf("snapshot hand = %+v ready=%v, want present fist", snap.Hand, snap.Ready)
	}
}

func TestApp_OpenHandNeverAdvances(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	h := newHarness(t, testdata.OpenCenter)
	h.start(t)

	t0 := time.Now()
	for i := 0; i < 10; i++ {
		if err := h.app.Tick(t0.Add(time.Duration(i) * time.Second)); err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
	}
	if c := h.app.Countdown(); c != countdown.Start {
		t.Errorf("countdown = %d, want %d", c, countdown.Start)
	}
	if hand := h.app.Hand(); !hand.IsPresent || hand.IsFist {
		t.Errorf("hand = %+v, want present open hand", hand)
	}
}

func TestApp_HandMovesCloud(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	h := newHarness(t, "")

	hands, err := testdata.LoadHands(testdata.OpenCenter)
	if err != nil {
		t.Fatal(err)
	}
	// Shift the open hand so the palm sits at raw (0.2, 0.24).
	moved := hands[0].Translated(-0.3, -0.26)
	h.detector.SetHands([]detector.HandLandmarks{moved})
	h.start(t)

	t1 := time.Now()
	for i := 0; i < 400; i++ {
		if err := h.app.Tick(t1.Add(time.Duration(i) * 16 * time.Millisecond)); err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
		// Give the reader a chance to publish fresh frames.
		if i%50 == 0 {
			time.Sleep(10 * time.Millisecond)
		}
	}

	var cx, cy float64
	snap := h.app.Snapshot()
	for _, in := range snap.Instances {
		cx += float64(in.X)
		cy += float64(in.Y)
	}
	cx /= float64(len(snap.Instances))
	cy /= float64(len(snap.Instances))

	vw, vh := h.app.View().Extent(16.0 / 9)
	wantX := (0.8 - 0.5) * vw
	wantY := -(0.24 - 0.5) * vh
	// The sampled centroid is not exactly the bounding box center.
	if math.Abs(cx-wantX) > 2.5 || math.Abs(cy-wantY) > 2.5 {
		t.Errorf("cloud center = (%.2f, %.2f), want near (%.2f, %.2f)", cx, cy, wantX, wantY)
	}
}

func TestApp_CameraFailureStaysNotReady(t *testing.T) {
	h := newHarness(t, testdata.FistCenter)
	h.camera.FailOpen(capture.ErrCameraNotOpen)

	if err := h.app.Start(context.Background()); !errors.Is(err, capture.ErrCameraNotOpen) {
		t.Fatalf("Start() error = %v, want ErrCameraNotOpen", err)
	}
	defer h.app.Stop()

	now := time.Now()
	for i := 0; i < 3; i++ {
		if err := h.app.Tick(now.Add(time.Duration(i) * 2 * time.Second)); err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
	}
	if h.app.Ready() {
		t.Error("Ready() = true after camera failure")
	}
	if c := h.app.Countdown(); c != countdown.Start {
		t.Errorf("countdown = %d, want %d", c, countdown.Start)
	}
}

func TestApp_StopReleasesEverything(t *testing.T) {
	h := newHarness(t, "")

	cleaned := false
	h.app.config.Cleanup = func() error {
		cleaned = true
		return nil
	}

	if err := h.app.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := h.app.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if h.camera.IsOpen() {
		t.Error("camera still open after Stop")
	}
	if !h.detector.Closed() {
		t.Error("detector not closed after Stop")
	}
	if !cleaned {
		t.Error("cleanup not run")
	}
}

func TestApp_ResetNotifiesListeners(t *testing.T) {
	h := newHarness(t, "")

	var got []countdown.Transition
	h.app.OnTransition(func(tr countdown.Transition) { got = append(got, tr) })

	h.app.Reset()
	if len(got) != 0 {
		t.Fatalf("reset at 5 notified %d times, want 0", len(got))
	}

	h.app.countdown.Observe(true, time.Now())
	h.app.Reset()
	if len(got) != 2 || got[1].To != countdown.Start {
		t.Errorf("transitions = %+v, want 5 -> 4 then back to 5", got)
	}
}
