package render

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	// dotSize is the side of the soft dot texture in pixels.
	dotSize = 64
	// maxQuads keeps vertex indices within uint16.
	maxQuads = 65535 / 4
)

// additive adds source onto destination, the way glowing particles stack.
var additive = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorOne,
	BlendFactorDestinationRGB:   ebiten.BlendFactorOne,
	BlendOperationRGB:           ebiten.BlendOperationAdd,
	BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
	BlendFactorDestinationAlpha: ebiten.BlendFactorOne,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}

// dotAlpha is the radial falloff of the dot texture: a bright core with a
// soft halo, zero at d >= 1.
func dotAlpha(d float64) float64 {
	if d >= 1 {
		return 0
	}
	core := math.Max(0, 1-d/0.35)
	halo := (1 - d) * (1 - d)
	return math.Min(1, core+0.6*halo)
}

func newDotImage() *ebiten.Image {
	img := image.NewRGBA(image.Rect(0, 0, dotSize, dotSize))
	c := float64(dotSize) / 2
	for y := 0; y < dotSize; y++ {
		for x := 0; x < dotSize; x++ {
			dx := (float64(x) + 0.5 - c) / c
			dy := (float64(y) + 0.5 - c) / c
			a := uint8(dotAlpha(math.Hypot(dx, dy)) * 255)
			img.SetRGBA(x, y, color.RGBA{a, a, a, a})
		}
	}
	return ebiten.NewImageFromImage(img)
}

// spriteBatch draws many tinted copies of the dot texture with additive
// blending, reusing its vertex and index buffers between frames.
type spriteBatch struct {
	dot *ebiten.Image
	dst *ebiten.Image
	vs  []ebiten.Vertex
	is  []uint16
	op  ebiten.DrawTrianglesOptions
}

func newSpriteBatch(capacity int) *spriteBatch {
	capacity = min(capacity, maxQuads)
	b := &spriteBatch{
		dot: newDotImage(),
		vs:  make([]ebiten.Vertex, 0, 4*capacity),
		is:  make([]uint16, 0, 6*capacity),
	}
	b.op.Blend = additive
	b.op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	b.op.Filter = ebiten.FilterLinear
	return b
}

func (b *spriteBatch) begin(dst *ebiten.Image) {
	b.dst = dst
	b.vs = b.vs[:0]
	b.is = b.is[:0]
}

// add queues a dot centered at (x, y) with half-size r pixels. Color is
// straight RGB with alpha a; it is premultiplied here.
func (b *spriteBatch) add(x, y, r, cr, cg, cb, a float32) {
	if len(b.vs)/4 >= maxQuads {
		b.flush()
	}
	b.vs, b.is = appendQuad(b.vs, b.is, x, y, r, cr*a, cg*a, cb*a, a)
}

func (b *spriteBatch) end() {
	b.flush()
	b.dst = nil
}

func (b *spriteBatch) flush() {
	if len(b.vs) > 0 && b.dst != nil {
		b.dst.DrawTriangles(b.vs, b.is, b.dot, &b.op)
	}
	b.vs = b.vs[:0]
	b.is = b.is[:0]
}

// appendQuad adds two triangles covering the square of half-size r around
// (x, y), mapped to the whole dot texture.
func appendQuad(vs []ebiten.Vertex, is []uint16, x, y, r, cr, cg, cb, ca float32) ([]ebiten.Vertex, []uint16) {
	base := uint16(len(vs))
	const s = float32(dotSize)
	vs = append(vs,
		ebiten.Vertex{DstX: x - r, DstY: y - r, SrcX: 0, SrcY: 0, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
		ebiten.Vertex{DstX: x + r, DstY: y - r, SrcX: s, SrcY: 0, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
		ebiten.Vertex{DstX: x - r, DstY: y + r, SrcX: 0, SrcY: s, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
		ebiten.Vertex{DstX: x + r, DstY: y + r, SrcX: s, SrcY: s, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
	)
	is = append(is,
		base+0, base+1, base+2,
		base+1, base+3, base+2,
	)
	return vs, is
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
