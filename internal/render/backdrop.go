package render

import (
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/jchen0824/new-year-countdown/internal/view"
)

// Star shell and sparkle cube dimensions in world units.
const (
	starRadius   = 100
	starDepth    = 50
	starFactor   = 4
	sparkleCube  = 20
	sparkleSize  = 2
	sparkleSpeed = 0.4
	sparkleAlpha = 0.5
)

type mote struct {
	x, y, z float64
	size    float64
	phase   float64
}

// backdrop is the static star shell plus drifting sparkles around the
// digits.
type backdrop struct {
	stars    []mote
	sparkles []mote
}

func newBackdrop(stars, sparkles int, rng *rand.Rand) *backdrop {
	return &backdrop{
		stars:    starShell(stars, rng),
		sparkles: sparkleCloud(sparkles, rng),
	}
}

// starShell scatters n stars uniformly over directions at a distance in
// [starRadius, starRadius+starDepth].
func starShell(n int, rng *rand.Rand) []mote {
	out := make([]mote, n)
	for i := range out {
		// Uniform direction from a uniform z and azimuth.
		z := rng.Float64()*2 - 1
		a := rng.Float64() * 2 * math.Pi
		rxy := math.Sqrt(1 - z*z)
		r := starRadius + rng.Float64()*starDepth
		out[i] = mote{
			x:     r * rxy * math.Cos(a),
			y:     r * rxy * math.Sin(a),
			z:     r * z,
			size:  (0.5 + rng.Float64()*0.5) * starFactor,
			phase: rng.Float64() * 2 * math.Pi,
		}
	}
	return out
}

// sparkleCloud fills a cube of side sparkleCube centered on the origin.
func sparkleCloud(n int, rng *rand.Rand) []mote {
	out := make([]mote, n)
	for i := range out {
		out[i] = mote{
			x:     (rng.Float64() - 0.5) * sparkleCube,
			y:     (rng.Float64() - 0.5) * sparkleCube,
			z:     (rng.Float64() - 0.5) * sparkleCube,
			size:  sparkleSize * (0.5 + rng.Float64()*0.5),
			phase: rng.Float64() * 2 * math.Pi,
		}
	}
	return out
}

func (bd *backdrop) draw(b *spriteBatch, dst *ebiten.Image, cam view.Camera, t float64) {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()

	b.begin(dst)
	for i := range bd.stars {
		s := &bd.stars[i]
		sx, sy, _, ok := cam.Project(s.x, s.y, s.z, w, h)
		if !ok || sx < -8 || sy < -8 || sx > float64(w)+8 || sy > float64(h)+8 {
			continue
		}
		// Stars have a fixed pixel size and twinkle slowly.
		tw := float32(0.55 + 0.45*math.Sin(t+s.phase))
		b.add(float32(sx), float32(sy), float32(s.size)*0.5, 1, 1, 1, 0.8*tw)
	}
	for i := range bd.sparkles {
		s := &bd.sparkles[i]
		x := s.x + 0.3*math.Sin(t*sparkleSpeed+s.phase)
		y := s.y + 0.3*math.Cos(t*sparkleSpeed*0.8+s.phase)
		z := s.z + 0.3*math.Sin(t*sparkleSpeed*0.6+2*s.phase)
		sx, sy, ppu, ok := cam.Project(x, y, z, w, h)
		if !ok {
			continue
		}
		tw := float32(0.5 + 0.5*math.Sin(3*t*sparkleSpeed+s.phase))
		r := max(float32(s.size*ppu*0.04), 1)
		b.add(float32(sx), float32(sy), r, 1, 1, 1, sparkleAlpha*tw)
	}
	b.end()
}
