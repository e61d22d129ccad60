// Package glyph turns text into fixed-size point clouds that lie on the
// surface of the extruded glyph geometry.
package glyph

import (
	"errors"
	"fmt"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/math/fixed"
)

// ErrEmptyText is returned when there is no text to lay out.
var ErrEmptyText = errors.New("empty text")

// Options controls text geometry.
type Options struct {
	// Size is the em size in world units.
	Size float64
	// Depth is the extrusion depth.
	Depth float64
	// CurveSegments is the number of line segments per quadratic curve.
	CurveSegments int
}

// DefaultOptions matches the reference look: size 8, a thin 0.01 extrusion
// and six segments per curve.
func DefaultOptions() Options {
	return Options{Size: 8, Depth: 0.01, CurveSegments: 6}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Size <= 0 {
		o.Size = d.Size
	}
	if o.Depth < 0 {
		o.Depth = 0
	}
	if o.CurveSegments < 1 {
		o.CurveSegments = d.CurveSegments
	}
	return o
}

// Font is a parsed TrueType font.
type Font struct {
	tt   *truetype.Font
	upem int32
}

// LoadFont parses TrueType data.
func LoadFont(ttf []byte) (*Font, error) {
	tt, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	upem := tt.FUnitsPerEm()
	if upem <= 0 {
		return nil, fmt.Errorf("font has invalid units per em %d", upem)
	}
	return &Font{tt: tt, upem: upem}, nil
}

// DefaultFont returns the embedded Go Bold face.
func DefaultFont() (*Font, error) {
	return LoadFont(gobold.TTF)
}

// scale loads glyphs at one pixel per font unit so coordinates come back in
// font units.
func (f *Font) scale() fixed.Int26_6 {
	return fixed.I(int(f.upem))
}

// LineHeight returns the distance between baselines at the given em size.
func (f *Font) LineHeight(size float64) float64 {
	b := f.tt.Bounds(f.scale())
	units := float64(b.Max.Y-b.Min.Y) / 64
	return units * size / float64(f.upem)
}

// Outline lays out text and returns its flattened contours. A newline starts
// a new line one line height lower; every other rune advances by its
// horizontal metric plus kerning against the previous rune.
func (f *Font) Outline(text string, opts Options) ([]Contour, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	opts = opts.withDefaults()

	var (
		scale    = f.scale()
		k        = opts.Size / float64(f.upem)
		lineStep = f.LineHeight(opts.Size)
		buf      truetype.GlyphBuf
		contours []Contour
		penX     float64
		penY     float64
		prev     truetype.Index
		hasPrev  bool
	)

	for _, r := range text {
		if r == '\n' {
			penX = 0
			penY -= lineStep
			hasPrev = false
			continue
		}

		idx := f.tt.Index(r)
		if hasPrev {
			penX += float64(f.tt.Kern(scale, prev, idx)) / 64 * k
		}

		if err := buf.Load(f.tt, scale, idx, font.HintingNone); err != nil {
			return nil, fmt.Errorf("failed to load glyph %q: %w", r, err)
		}

		start := 0
		for _, end := range buf.Ends {
			pts := flattenQuadratic(buf.Points[start:end], opts.CurveSegments)
			start = end
			if len(pts) < 3 {
				continue
			}
			c := make(Contour, len(pts))
			for i, p := range pts {
				c[i] = Vec2{X: penX + p.X*k, Y: penY + p.Y*k}
			}
			contours = append(contours, c)
		}

		penX += float64(f.tt.HMetric(scale, idx).AdvanceWidth) / 64 * k
		prev, hasPrev = idx, true
	}

	return contours, nil
}

// flattenQuadratic converts one TrueType contour into a polyline. Two
// consecutive off-curve points imply an on-curve point at their midpoint.
// The returned polyline does not repeat its first point.
func flattenQuadratic(pts []truetype.Point, segments int) []Vec2 {
	n := len(pts)
	if n == 0 {
		return nil
	}

	pos := func(i int) Vec2 {
		p := pts[i]
		return Vec2{X: float64(p.X) / 64, Y: float64(p.Y) / 64}
	}
	onCurve := func(i int) bool { return pts[i].Flags&0x01 != 0 }

	first := -1
	for i := 0; i < n; i++ {
		if onCurve(i) {
			first = i
			break
		}
	}

	var start Vec2
	order := make([]int, 0, n)
	if first < 0 {
		// No on-curve points at all: start from an implied midpoint.
		start = mid(pos(n-1), pos(0))
		for i := 0; i < n; i++ {
			order = append(order, i)
		}
	} else {
		start = pos(first)
		for i := 1; i < n; i++ {
			order = append(order, (first+i)%n)
		}
	}

	out := []Vec2{start}
	cur := start
	var ctrl Vec2
	hasCtrl := false

	for _, i := range order {
		p := pos(i)
		if onCurve(i) {
			if hasCtrl {
				out = appendQuad(out, cur, ctrl, p, segments)
				hasCtrl = false
			} else {
				out = append(out, p)
			}
			cur = p
			continue
		}
		if hasCtrl {
			m := mid(ctrl, p)
			out = appendQuad(out, cur, ctrl, m, segments)
			cur = m
		}
		ctrl, hasCtrl = p, true
	}

	if hasCtrl {
		out = appendQuad(out, cur, ctrl, start, segments)
	}

	// Closing point duplicates the start.
	if len(out) > 1 && out[len(out)-1] == start {
		out = out[:len(out)-1]
	}
	return out
}

// appendQuad appends the points of the quadratic Bézier a-c-b, excluding a.
func appendQuad(out []Vec2, a, c, b Vec2, segments int) []Vec2 {
	for s := 1; s <= segments; s++ {
		t := float64(s) / float64(segments)
		u := 1 - t
		out = append(out, Vec2{
			X: u*u*a.X + 2*u*t*c.X + t*t*b.X,
			Y: u*u*a.Y + 2*u*t*c.Y + t*t*b.Y,
		})
	}
	return out
}

func mid(a, b Vec2) Vec2 {
	return Vec2{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
