package render

import (
	"embed"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

//go:embed shaders/*.kage
var shaderFS embed.FS

// Vignette constants.
const (
	vignetteOffset   = 0.1
	vignetteDarkness = 1.1
	bloomPasses      = 2
)

type shaders struct {
	threshold *ebiten.Shader
	blur      *ebiten.Shader
	vignette  *ebiten.Shader
}

func loadShaders() (*shaders, error) {
	load := func(name string) (*ebiten.Shader, error) {
		src, err := shaderFS.ReadFile("shaders/" + name)
		if err != nil {
			return nil, err
		}
		s, err := ebiten.NewShader(src)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", name, err)
		}
		return s, nil
	}

	var (
		sh  shaders
		err error
	)
	if sh.threshold, err = load("threshold.kage"); err != nil {
		return nil, err
	}
	if sh.blur, err = load("blur.kage"); err != nil {
		return nil, err
	}
	if sh.vignette, err = load("vignette.kage"); err != nil {
		return nil, err
	}
	return &sh, nil
}

// postFX applies bloom and vignette to the rendered scene.
type postFX struct {
	sh   *shaders
	opts Options

	w, h      int
	ping      *ebiten.Image
	pong      *ebiten.Image
	composite *ebiten.Image
}

func newPostFX(sh *shaders, opts Options) *postFX {
	return &postFX{sh: sh, opts: opts}
}

func (p *postFX) resize(w, h int) {
	if w == p.w && h == p.h {
		return
	}
	for _, img := range []*ebiten.Image{p.ping, p.pong, p.composite} {
		if img != nil {
			img.Deallocate()
		}
	}
	p.w, p.h = w, h
	hw, hh := max(w/2, 1), max(h/2, 1)
	p.ping = ebiten.NewImage(hw, hh)
	p.pong = ebiten.NewImage(hw, hh)
	p.composite = ebiten.NewImage(w, h)
}

// apply draws scene onto dst with the enabled effects.
func (p *postFX) apply(dst, scene *ebiten.Image) {
	if !p.opts.Bloom && !p.opts.Vignette {
		dst.DrawImage(scene, nil)
		return
	}

	w, h := scene.Bounds().Dx(), scene.Bounds().Dy()
	p.resize(w, h)

	src := scene
	if p.opts.Bloom {
		p.bloom(scene)
		src = p.composite
	}

	if !p.opts.Vignette {
		dst.DrawImage(src, nil)
		return
	}
	op := &ebiten.DrawRectShaderOptions{}
	op.Images[0] = src
	op.Uniforms = map[string]any{
		"Offset":   float32(vignetteOffset),
		"Darkness": float32(vignetteDarkness),
	}
	dst.DrawRectShader(w, h, p.sh.vignette, op)
}

// bloom leaves scene plus its blurred highlights in p.composite.
func (p *postFX) bloom(scene *ebiten.Image) {
	hw, hh := p.ping.Bounds().Dx(), p.ping.Bounds().Dy()

	p.ping.Clear()
	down := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	down.GeoM.Scale(0.5, 0.5)
	p.ping.DrawImage(scene, down)

	p.pong.Clear()
	th := &ebiten.DrawRectShaderOptions{}
	th.Images[0] = p.ping
	th.Uniforms = map[string]any{"Threshold": float32(p.opts.BloomThreshold)}
	p.pong.DrawRectShader(hw, hh, p.sh.threshold, th)

	// Separable blur, widening each pass.
	for i := 0; i < bloomPasses; i++ {
		radius := float32(i + 1)
		p.blurPass(p.ping, p.pong, radius, 0)
		p.blurPass(p.pong, p.ping, 0, radius)
	}

	p.composite.Clear()
	p.composite.DrawImage(scene, nil)

	up := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear, Blend: ebiten.BlendLighter}
	up.GeoM.Scale(2, 2)
	k := float32(p.opts.BloomIntensity)
	up.ColorScale.Scale(k, k, k, 1)
	p.composite.DrawImage(p.pong, up)
}

func (p *postFX) blurPass(dst, src *ebiten.Image, dx, dy float32) {
	dst.Clear()
	op := &ebiten.DrawRectShaderOptions{}
	op.Images[0] = src
	op.Uniforms = map[string]any{"Dir": []float32{dx, dy}}
	dst.DrawRectShader(dst.Bounds().Dx(), dst.Bounds().Dy(), p.sh.blur, op)
}
