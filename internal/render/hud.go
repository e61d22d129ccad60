package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/jchen0824/new-year-countdown/internal/app"
)

// HUD copy.
const (
	titleText    = "CHRONOS 2026"
	hintRunning  = "SQUEEZE HAND TO ACCELERATE TIME"
	hintFinished = "SQUEEZE TO RESET TIMELINE"
	statusLinked = "LINK ESTABLISHED"
	statusSearch = "SEARCHING FOR HAND"
	gestureFist  = "[ FIST DETECTED ]"
	gestureOpen  = "[ OPEN HAND ]"
	footerText   = "Use your hand to move the energy core. Close your fist to advance the countdown or reset."
	loadingText  = "Initializing Vision Systems..."
	loadingHint  = "Please allow camera access"
)

var (
	colorCyan    = color.RGBA{0x22, 0xd3, 0xee, 0xff}
	colorCyanDim = scaleAlpha(color.RGBA{0x67, 0xe8, 0xf9, 0xff}, 0.8)
	colorGlow    = scaleAlpha(color.RGBA{0x00, 0xff, 0xff, 0xff}, 0.2)
	colorFooter  = scaleAlpha(color.RGBA{0xff, 0xff, 0xff, 0xff}, 0.4)
	colorGreen   = color.RGBA{0x4a, 0xde, 0x80, 0xff}
	colorRed     = color.RGBA{0xf8, 0x71, 0x71, 0xff}
	colorYellow  = color.RGBA{0xfa, 0xcc, 0x15, 0xff}
	colorGray    = color.RGBA{0x6b, 0x72, 0x80, 0xff}
)

// hudLines is the text content for one frame.
type hudLines struct {
	hint    string
	status  string
	linked  bool
	gesture string
	fist    bool
}

func hudFor(s app.Snapshot) hudLines {
	l := hudLines{
		hint:   hintRunning,
		status: statusSearch,
		linked: s.Hand.IsPresent,
	}
	if s.Countdown == 0 {
		l.hint = hintFinished
	}
	if s.Hand.IsPresent {
		l.status = statusLinked
		l.gesture = gestureOpen
		if s.Hand.IsFist {
			l.gesture = gestureFist
			l.fist = true
		}
	}
	return l
}

// hud draws the overlay text, the link status pill and the loading screen.
type hud struct {
	title *text.GoTextFace
	mono  *text.GoTextFace
	small *text.GoTextFace

	pulse   *gween.Tween
	spin    *gween.Tween
	fade    *gween.Tween
	pulseV  float32
	spinV   float32
	overlay float32
}

func newHUD() (*hud, error) {
	bold, err := text.NewGoTextFaceSource(bytes.NewReader(gobold.TTF))
	if err != nil {
		return nil, fmt.Errorf("load hud font: %w", err)
	}
	mono, err := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))
	if err != nil {
		return nil, fmt.Errorf("load hud font: %w", err)
	}
	return &hud{
		title:   &text.GoTextFace{Source: bold, Size: 24},
		mono:    &text.GoTextFace{Source: mono, Size: 14},
		small:   &text.GoTextFace{Source: mono, Size: 11},
		pulse:   gween.New(1, 0.3, 1, ease.InOutSine),
		spin:    gween.New(0, 2*math.Pi, 0.9, ease.Linear),
		fade:    gween.New(1, 0, 0.6, ease.OutQuad),
		pulseV:  1,
		overlay: 1,
	}, nil
}

// update advances the animations by dt seconds.
func (h *hud) update(dt float32, ready bool) {
	var done bool
	if h.pulseV, done = h.pulse.Update(dt); done {
		h.pulse = gween.New(h.pulseV, 1.3-h.pulseV, 1, ease.InOutSine)
	}
	if h.spinV, done = h.spin.Update(dt); done {
		h.spin.Reset()
	}
	if ready {
		h.overlay, _ = h.fade.Update(dt)
	}
}

func (h *hud) draw(dst *ebiten.Image, s app.Snapshot) {
	w := float64(dst.Bounds().Dx())
	ht := float64(dst.Bounds().Dy())
	l := hudFor(s)
	const pad = 32

	// Title with a soft cyan glow.
	for _, d := range [][2]float64{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		drawText(dst, titleText, h.title, pad+d[0]*2, pad+d[1]*2, colorGlow, text.AlignStart)
	}
	drawText(dst, titleText, h.title, pad, pad, color.White, text.AlignStart)
	drawText(dst, l.hint, h.mono, pad, pad+34, colorCyanDim, text.AlignStart)

	h.drawPill(dst, w-pad, pad, l)
	if l.gesture != "" {
		c := colorGray
		if l.fist {
			c = colorYellow
		}
		drawText(dst, l.gesture, h.small, w-pad, pad+36, c, text.AlignEnd)
	}

	drawText(dst, footerText, h.small, w/2, ht-pad, colorFooter, text.AlignCenter)

	if h.overlay > 0.01 {
		h.drawLoading(dst, w, ht)
	}
}

// drawPill draws the link status capsule with its right edge at x.
func (h *hud) drawPill(dst *ebiten.Image, x, y float64, l hudLines) {
	tw, th := text.Measure(l.status, h.small, 0)
	pw, ph := float32(tw+40), float32(th+12)
	px, py := float32(x)-pw, float32(y)

	fill := scaleAlpha(color.RGBA{0x7f, 0x1d, 0x1d, 0xff}, 0.2)
	edge := scaleAlpha(color.RGBA{0xef, 0x44, 0x44, 0xff}, 0.5)
	dot := colorRed
	dotA := float32(1)
	if l.linked {
		fill = scaleAlpha(color.RGBA{0x14, 0x53, 0x2d, 0xff}, 0.2)
		edge = scaleAlpha(color.RGBA{0x22, 0xc5, 0x5e, 0xff}, 0.5)
		dot = colorGreen
		dotA = h.pulseV
	}

	r := ph / 2
	vector.FillRect(dst, px+r, py, pw-2*r, ph, fill, true)
	vector.DrawFilledCircle(dst, px+r, py+r, r, fill, true)
	vector.DrawFilledCircle(dst, px+pw-r, py+r, r, fill, true)
	vector.StrokeLine(dst, px+r, py, px+pw-r, py, 1, edge, true)
	vector.StrokeLine(dst, px+r, py+ph, px+pw-r, py+ph, 1, edge, true)
	vector.StrokeCircle(dst, px+r, py+r, r, 1, edge, true)
	vector.StrokeCircle(dst, px+pw-r, py+r, r, 1, edge, true)

	vector.DrawFilledCircle(dst, px+16, py+r, 4, scaleAlpha(dot, dotA), true)
	drawText(dst, l.status, h.small, float64(px)+26, float64(py)+6, color.White, text.AlignStart)
}

func (h *hud) drawLoading(dst *ebiten.Image, w, ht float64) {
	a := h.overlay
	vector.FillRect(dst, 0, 0, float32(w), float32(ht), scaleAlpha(color.RGBA{0, 0, 0, 0xff}, a), false)

	// Spinner: a ring of dots with a rotating bright head.
	cx, cy := float32(w/2), float32(ht/2-30)
	const n = 12
	for i := 0; i < n; i++ {
		ang := float64(i) / n * 2 * math.Pi
		lag := math.Mod(float64(h.spinV)-ang+4*math.Pi, 2*math.Pi) / (2 * math.Pi)
		x := cx + 14*float32(math.Cos(ang))
		y := cy + 14*float32(math.Sin(ang))
		vector.DrawFilledCircle(dst, x, y, 3, scaleAlpha(colorCyan, a*float32(1-lag)), true)
	}

	drawText(dst, loadingText, h.mono, w/2, ht/2, scaleAlpha(colorCyan, a*(0.6+0.4*h.pulseV)), text.AlignCenter)
	drawText(dst, loadingHint, h.small, w/2, ht/2+26, scaleAlpha(colorGray, a), text.AlignCenter)
}

func drawText(dst *ebiten.Image, s string, face text.Face, x, y float64, c color.Color, align text.Align) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	op.PrimaryAlign = align
	text.Draw(dst, s, face, op)
}

func scaleAlpha(c color.RGBA, a float32) color.RGBA {
	a = clamp01(a)
	return color.RGBA{
		R: uint8(float32(c.R) * a),
		G: uint8(float32(c.G) * a),
		B: uint8(float32(c.B) * a),
		A: uint8(float32(c.A) * a),
	}
}
