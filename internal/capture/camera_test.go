package capture

import (
	"errors"
	"testing"
)

func TestNewCamera_Config(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantFPS int
	}{
		{"zero config uses defaults", Config{}, DefaultFPS},
		{"second device", Config{DeviceID: 1}, DefaultFPS},
		{"configured rate", Config{FPS: 24}, 24},
		{"negative rate falls back", Config{FPS: -1}, DefaultFPS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera(tt.cfg)
			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
			if cam.IsOpen() {
				t.Error("camera open before Open()")
			}
		})
	}
}

func TestCamera_SetFPSIgnoresNonPositive(t *testing.T) {
	cam := NewCamera(Config{})

	// Each step applies to the camera left by the previous one.
	steps := []struct {
		set, want int
	}{
		{10, 10},
		{1, 1},
		{0, 1},
		{-5, 1},
		{60, 60},
	}
	for _, s := range steps {
		cam.SetFPS(s.set)
		if got := cam.FPS(); got != s.want {
			t.Errorf("after SetFPS(%d): FPS() = %d, want %d", s.set, got, s.want)
		}
	}
}

func TestCamera_Unopened(t *testing.T) {
	cam := NewCamera(Config{})

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
	if err := cam.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
}

func TestCamera_Device(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that needs a webcam")
	}

	cam := NewCamera(Config{Width: 640, Height: 480})
	if err := cam.Open(); err != nil {
		t.Skipf("no camera available: %v", err)
	}
	defer cam.Close()

	if !cam.IsOpen() {
		t.Fatal("IsOpen() = false after Open()")
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	defer mat.Close()
	if mat.Empty() {
		t.Fatal("ReadFrame() returned an empty frame")
	}
	// Drivers may ignore the requested size.
	if mat.Cols() != 640 || mat.Rows() != 480 {
		t.Logf("frame is %dx%d, requested 640x480", mat.Cols(), mat.Rows())
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if cam.IsOpen() {
		t.Error("IsOpen() = true after Close()")
	}
}
