package render

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/jchen0824/new-year-countdown/internal/particle"
	"github.com/jchen0824/new-year-countdown/internal/view"
)

const (
	// particleRadius is the world radius of a particle at scale 1.
	particleRadius = 0.08
	particleAlpha  = 0.6
	// haloFactor widens the quad so the soft halo is not clipped.
	haloFactor = 2.5
)

// drawParticles projects every instance and draws it as an additive dot.
// Colors above 1 are clipped here; the bloom pass supplies the glow.
func drawParticles(b *spriteBatch, dst *ebiten.Image, cam view.Camera, inst []particle.Instance) {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()

	b.begin(dst)
	for i := range inst {
		p := &inst[i]
		sx, sy, ppu, ok := cam.Project(float64(p.X), float64(p.Y), float64(p.Z), w, h)
		if !ok {
			continue
		}
		r := max(float32(particleRadius*ppu)*p.Scale*haloFactor, 1)
		b.add(float32(sx), float32(sy), r,
			clamp01(p.R), clamp01(p.G), clamp01(p.B), particleAlpha)
	}
	b.end()
}
