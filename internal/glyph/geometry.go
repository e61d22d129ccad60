package glyph

import "math"

// Vec2 is a point in the text plane, y up.
type Vec2 struct {
	X, Y float64
}

// Vec3 is a point in model space.
type Vec3 struct {
	X, Y, Z float64
}

// Contour is a closed outline. The closing edge from the last point back to
// the first is implicit.
type Contour []Vec2

// Triangle is a 2D triangle produced by Triangulate.
type Triangle [3]Vec2

func (a Vec2) sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }

func (a Vec3) sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

func cross2(a, b Vec2) float64 { return a.X*b.Y - a.Y*b.X }

func cross3(a, b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) length() float64 { return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z) }

// orient returns twice the signed area of (a, b, c); positive when the turn
// a->b->c is counter-clockwise.
func orient(a, b, c Vec2) float64 {
	return cross2(b.sub(a), c.sub(b))
}

// SignedArea returns the contour's signed area, positive for
// counter-clockwise winding.
func (c Contour) SignedArea() float64 {
	var sum float64
	for i := range c {
		j := (i + 1) % len(c)
		sum += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	return sum / 2
}

// Contains reports whether p lies inside the contour using the even-odd rule.
func (c Contour) Contains(p Vec2) bool {
	inside := false
	for i, j := 0, len(c)-1; i < len(c); j, i = i, i+1 {
		a, b := c[i], c[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

func (c Contour) reversed() Contour {
	out := make(Contour, len(c))
	for i, p := range c {
		out[len(c)-1-i] = p
	}
	return out
}

// Area returns the unsigned area of the triangle.
func (t Triangle) Area() float64 {
	return math.Abs(orient(t[0], t[1], t[2])) / 2
}

// cleanContour drops repeated consecutive points and a duplicated closing
// point. Contours that collapse below three points return nil.
func cleanContour(c Contour) Contour {
	const eps = 1e-9

	out := make(Contour, 0, len(c))
	for _, p := range c {
		if len(out) > 0 {
			last := out[len(out)-1]
			if math.Abs(last.X-p.X) < eps && math.Abs(last.Y-p.Y) < eps {
				continue
			}
		}
		out = append(out, p)
	}
	for len(out) > 1 {
		first, last := out[0], out[len(out)-1]
		if math.Abs(last.X-first.X) >= eps || math.Abs(last.Y-first.Y) >= eps {
			break
		}
		out = out[:len(out)-1]
	}

	if len(out) < 3 || math.Abs(out.SignedArea()) < eps {
		return nil
	}
	return out
}
