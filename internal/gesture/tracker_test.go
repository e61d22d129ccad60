package gesture

import (
	"errors"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/jchen0824/new-year-countdown/internal/capture"
	"github.com/jchen0824/new-year-countdown/internal/detector"
)

// fakeSource hands out empty frames whenever push is called.
type fakeSource struct {
	seq   uint64
	fps   int
	frame *gocv.Mat
}

func (f *fakeSource) push() { f.seq++ }

func (f *fakeSource) Grab(after uint64) (*capture.Frame, error) {
	if f.seq <= after {
		return nil, capture.ErrNoNewFrame
	}
	mat := gocv.NewMat()
	if f.frame != nil {
		mat = f.frame.Clone()
	}
	return &capture.Frame{Mat: mat, Seq: f.seq, Timestamp: time.Now()}, nil
}

func (f *fakeSource) Ready() bool { return f.seq > 0 }

func (f *fakeSource) SetFPS(fps int) { f.fps = fps }

func newTestTracker() (*Tracker, *fakeSource, *detector.MockDetector) {
	src := &fakeSource{}
	det := detector.NewMockDetector()
	cfg := DefaultTrackerConfig()
	cfg.IdleAfter = 0
	return NewTracker(src, det, cfg), src, det
}

func TestTracker_NoNewFrameSkipsInference(t *testing.T) {
	tr, src, det := newTestTracker()
	det.SetHands([]detector.HandLandmarks{detector.FistLandmarks()})

	src.push()
	if _, err := tr.Poll(); err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := tr.Poll(); err != nil {
			t.Fatalf("Poll() error = %v", err)
		}
	}

	if det.Calls() != 1 {
		t.Errorf("Detect() called %d times, want 1", det.Calls())
	}
	if !tr.State().IsFist {
		t.Error("state lost between polls")
	}
}

func TestTracker_HandLostKeepsFields(t *testing.T) {
	tr, src, det := newTestTracker()

	det.SetHands([]detector.HandLandmarks{detector.FistLandmarks()})
	src.push()
	before, err := tr.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if !before.IsPresent || !before.IsFist {
		t.Fatalf("state = %+v, want present fist", before)
	}

	det.SetHands(nil)
	src.push()
	after, err := tr.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}

	if after.IsPresent {
		t.Error("IsPresent should be false with no hand")
	}
	if after.X != before.X || after.Y != before.Y || after.IsFist != before.IsFist {
		t.Errorf("state = %+v, want fields retained from %+v", after, before)
	}
}

func TestTracker_DetectorErrorKeepsState(t *testing.T) {
	tr, src, det := newTestTracker()

	det.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})
	src.push()
	before, _ := tr.Poll()

	det.SetError(errors.New("sidecar crashed"))
	src.push()
	got, err := tr.Poll()
	if err == nil {
		t.Fatal("Poll() should surface the detector error")
	}
	if got != before || tr.State() != before {
		t.Errorf("state = %+v, want unchanged %+v", got, before)
	}

	// Retried on the next frame.
	det.SetError(nil)
	det.SetHands([]detector.HandLandmarks{detector.FistLandmarks()})
	src.push()
	if got, err := tr.Poll(); err != nil || !got.IsFist {
		t.Errorf("Poll() = %+v, %v; want fist after recovery", got, err)
	}
}

func TestTracker_Ready(t *testing.T) {
	tr, src, _ := newTestTracker()
	if tr.Ready() {
		t.Error("Ready() before any frame")
	}
	src.push()
	if !tr.Ready() {
		t.Error("Ready() should follow the source")
	}
}

func TestTracker_IdlePacing(t *testing.T) {
	src := &fakeSource{}
	det := detector.NewMockDetector()
	cfg := TrackerConfig{FistRatio: DefaultFistRatio, IdleAfter: 2 * time.Second, IdleFPS: 5, ActiveFPS: 30}
	tr := NewTracker(src, det, cfg)

	clock := time.Unix(100, 0)
	tr.now = func() time.Time { return clock }
	tr.lastSeen = clock

	// Under the idle window nothing changes.
	clock = clock.Add(time.Second)
	src.push()
	tr.Poll()
	if tr.Idle() || src.fps != 0 {
		t.Fatalf("went idle after 1s (fps %d)", src.fps)
	}

	clock = clock.Add(1500 * time.Millisecond)
	src.push()
	tr.Poll()
	if !tr.Idle() || src.fps != 5 {
		t.Fatalf("Idle() = %v, fps = %d; want idle at 5", tr.Idle(), src.fps)
	}

	det.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})
	src.push()
	tr.Poll()
	if tr.Idle() || src.fps != 30 {
		t.Errorf("Idle() = %v, fps = %d; want active at 30", tr.Idle(), src.fps)
	}
}

func TestTracker_IdleWaitsForMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	black := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer black.Close()
	white := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer white.Close()
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))

	src := &fakeSource{frame: &black}
	det := detector.NewMockDetector()
	cfg := TrackerConfig{
		FistRatio:  DefaultFistRatio,
		IdleAfter:  time.Second,
		IdleFPS:    5,
		ActiveFPS:  30,
		WakeMotion: 1.0,
	}
	tr := NewTracker(src, det, cfg)
	defer tr.Close()

	clock := time.Unix(100, 0)
	tr.now = func() time.Time { return clock }
	tr.lastSeen = clock

	clock = clock.Add(2 * time.Second)
	src.push()
	tr.Poll()
	if !tr.Idle() {
		t.Fatal("tracker should be idle")
	}
	calls := det.Calls()

	// A hand in view of a still scene is not looked for.
	det.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})
	for i := 0; i < 3; i++ {
		src.push()
		tr.Poll()
	}
	if det.Calls() != calls {
		t.Errorf("detector ran %d times on a still scene", det.Calls()-calls)
	}
	if tr.State().IsPresent {
		t.Error("hand reported without detection")
	}

	src.frame = &white
	src.push()
	state, err := tr.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if det.Calls() != calls+1 || !state.IsPresent {
		t.Errorf("motion should run detection: calls %d, state %+v", det.Calls()-calls, state)
	}
	if tr.Idle() || src.fps != 30 {
		t.Errorf("Idle() = %v, fps = %d; want active at 30", tr.Idle(), src.fps)
	}
}
