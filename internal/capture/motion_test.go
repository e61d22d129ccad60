package capture

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

func TestMotionGate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	black := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer black.Close()

	// A bright hand-sized block in one corner.
	blob := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer blob.Close()
	gocv.Rectangle(&blob, image.Rect(10, 10, 70, 80), color.RGBA{255, 255, 255, 0}, -1)

	tests := []struct {
		name   string
		frames []*gocv.Mat
		want   bool
	}{
		{"first frame primes", []*gocv.Mat{&black}, false},
		{"still scene", []*gocv.Mat{&black, &black}, false},
		{"block appears", []*gocv.Mat{&black, &blob}, true},
		{"block stays", []*gocv.Mat{&black, &blob, &blob}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewMotionGate(1.0)
			defer g.Close()

			var got bool
			var pct float64
			for _, f := range tt.frames {
				got, pct = g.Moved(f)
			}
			if got != tt.want {
				t.Errorf("Moved() = %v (%.1f%% changed), want %v", got, pct, tt.want)
			}
		})
	}
}

func TestMotionGate_ResetRePrimes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	black := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer black.Close()
	white := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer white.Close()
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))

	g := NewMotionGate(1.0)
	defer g.Close()

	g.Moved(&black)
	g.Reset()
	if moved, _ := g.Moved(&white); moved {
		t.Error("first frame after Reset counted as motion")
	}
}

func TestMotionGate_EmptyFrame(t *testing.T) {
	g := NewMotionGate(1.0)
	defer g.Close()

	empty := gocv.NewMat()
	defer empty.Close()

	if moved, pct := g.Moved(&empty); moved || pct != 0 {
		t.Errorf("Moved(empty) = %v, %f", moved, pct)
	}
	if moved, _ := g.Moved(nil); moved {
		t.Error("Moved(nil) reported motion")
	}

	g.Close()
	g.Close()
}
