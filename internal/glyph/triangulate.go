package glyph

import (
	"errors"
	"math"
	"sort"
)

// ErrNoGeometry is returned when no contour encloses any area.
var ErrNoGeometry = errors.New("no fillable geometry")

const epsilon = 1e-12

// shape is one filled region: an outer boundary and the holes cut from it.
type shape struct {
	outer Contour
	holes []Contour
}

// Triangulate fills the regions described by contours. Contours nested an
// even number of times are filled outlines; odd nesting marks holes, which
// are bridged into their enclosing outline before ear clipping. Winding
// direction of the input does not matter.
func Triangulate(contours []Contour) ([]Triangle, error) {
	shapes := groupShapes(contours)
	if len(shapes) == 0 {
		return nil, ErrNoGeometry
	}

	var tris []Triangle
	for _, s := range shapes {
		poly := s.outer
		holes := append([]Contour(nil), s.holes...)
		sort.Slice(holes, func(i, j int) bool {
			return maxX(holes[i]) > maxX(holes[j])
		})
		for _, h := range holes {
			poly = bridgeHole(poly, h)
		}
		tris = earClip(poly, tris)
	}
	return tris, nil
}

// groupShapes cleans contours, orients outers counter-clockwise and holes
// clockwise, and attaches each hole to the smallest outer containing it.
func groupShapes(contours []Contour) []shape {
	cleaned := make([]Contour, 0, len(contours))
	for _, c := range contours {
		if cc := cleanContour(c); cc != nil {
			cleaned = append(cleaned, cc)
		}
	}

	depth := make([]int, len(cleaned))
	for i, c := range cleaned {
		for j, other := range cleaned {
			if i != j && other.Contains(c[0]) {
				depth[i]++
			}
		}
	}

	var shapes []shape
	outerIdx := make(map[int]int)
	for i, c := range cleaned {
		if depth[i]%2 != 0 {
			continue
		}
		if c.SignedArea() < 0 {
			c = c.reversed()
		}
		outerIdx[i] = len(shapes)
		shapes = append(shapes, shape{outer: c})
	}

	for i, c := range cleaned {
		if depth[i]%2 == 0 {
			continue
		}
		parent, best := -1, math.Inf(1)
		for j, other := range cleaned {
			if depth[j] != depth[i]-1 || !other.Contains(c[0]) {
				continue
			}
			if a := math.Abs(other.SignedArea()); a < best {
				parent, best = j, a
			}
		}
		if parent < 0 {
			continue
		}
		if c.SignedArea() > 0 {
			c = c.reversed()
		}
		s := &shapes[outerIdx[parent]]
		s.holes = append(s.holes, c)
	}

	return shapes
}

func maxX(c Contour) float64 {
	m := math.Inf(-1)
	for _, p := range c {
		m = math.Max(m, p.X)
	}
	return m
}

// bridgeHole splices a clockwise hole into a counter-clockwise polygon
// through a mutually visible vertex pair, producing one weakly simple
// polygon.
func bridgeHole(poly, hole Contour) Contour {
	// Rightmost hole vertex.
	m := 0
	for i, p := range hole {
		if p.X > hole[m].X || (p.X == hole[m].X && p.Y < hole[m].Y) {
			m = i
		}
	}
	M := hole[m]

	// Closest edge hit by a ray from M towards +x.
	hitX := math.Inf(1)
	pIdx := -1
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		if a.Y == b.Y {
			// Horizontal edge on the ray: take its nearest endpoint.
			for _, k := range []int{i, (i + 1) % len(poly)} {
				q := poly[k]
				if q.Y == M.Y && q.X >= M.X && q.X < hitX {
					hitX, pIdx = q.X, k
				}
			}
			continue
		}
		if (a.Y-M.Y)*(b.Y-M.Y) > 0 {
			continue
		}
		x := a.X + (M.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
		if x < M.X || x >= hitX {
			continue
		}
		hitX = x
		switch {
		case a.Y == M.Y:
			pIdx = i
		case b.Y == M.Y:
			pIdx = (i + 1) % len(poly)
		case a.X > b.X:
			pIdx = i
		default:
			pIdx = (i + 1) % len(poly)
		}
	}
	if pIdx < 0 {
		// Hole outside its outline; fall back to the nearest vertex.
		best := math.Inf(1)
		for i, q := range poly {
			d := (q.X-M.X)*(q.X-M.X) + (q.Y-M.Y)*(q.Y-M.Y)
			if d < best {
				best, pIdx = d, i
			}
		}
	} else if poly[pIdx].X != hitX || poly[pIdx].Y != M.Y {
		// The hit lies inside an edge. Any reflex vertex inside the
		// triangle (M, I, P) blocks the view of P; pick the one closest in
		// angle to the ray instead.
		I := Vec2{X: hitX, Y: M.Y}
		P := poly[pIdx]
		bestCos := -2.0
		bestDist := math.Inf(1)
		candidate := -1
		n := len(poly)
		for i, q := range poly {
			if i == pIdx {
				continue
			}
			if orient(poly[(i+n-1)%n], q, poly[(i+1)%n]) >= 0 {
				continue
			}
			if !pointInTriangle(q, M, I, P) {
				continue
			}
			d := q.sub(M)
			dist := math.Hypot(d.X, d.Y)
			if dist == 0 {
				continue
			}
			cos := d.X / dist
			if cos > bestCos || (cos == bestCos && dist < bestDist) {
				bestCos, bestDist, candidate = cos, dist, i
			}
		}
		if candidate >= 0 {
			pIdx = candidate
		}
	}

	out := make(Contour, 0, len(poly)+len(hole)+2)
	out = append(out, poly[:pIdx+1]...)
	for i := 0; i <= len(hole); i++ {
		out = append(out, hole[(m+i)%len(hole)])
	}
	out = append(out, poly[pIdx])
	out = append(out, poly[pIdx+1:]...)
	return out
}

// pointInTriangle reports whether p lies inside or on triangle abc,
// regardless of its winding.
func pointInTriangle(p, a, b, c Vec2) bool {
	d1 := orient(a, b, p)
	d2 := orient(b, c, p)
	d3 := orient(c, a, p)
	hasNeg := d1 < -epsilon || d2 < -epsilon || d3 < -epsilon
	hasPos := d1 > epsilon || d2 > epsilon || d3 > epsilon
	return !(hasNeg && hasPos)
}

// earClip triangulates a counter-clockwise polygon and appends the result.
func earClip(poly Contour, tris []Triangle) []Triangle {
	n := len(poly)
	if n < 3 {
		return tris
	}

	prev := make([]int, n)
	next := make([]int, n)
	for i := range poly {
		prev[i] = (i + n - 1) % n
		next[i] = (i + 1) % n
	}

	remaining := n
	i := 0
	misses := 0
	for remaining > 3 {
		p, nx := prev[i], next[i]
		a, b, c := poly[p], poly[i], poly[nx]

		if isEar(poly, next, p, i, nx) {
			tris = append(tris, Triangle{a, b, c})
		} else if misses < remaining {
			i = nx
			misses++
			continue
		} else if math.Abs(orient(a, b, c)) > epsilon {
			// No ear left because of numerical noise. Clip anyway, but only
			// emit counter-clockwise triangles.
			if orient(a, b, c) > 0 {
				tris = append(tris, Triangle{a, b, c})
			}
		}

		next[p], prev[nx] = nx, p
		remaining--
		misses = 0
		i = nx
	}

	p, nx := prev[i], next[i]
	if orient(poly[p], poly[i], poly[nx]) > epsilon {
		tris = append(tris, Triangle{poly[p], poly[i], poly[nx]})
	}
	return tris
}

func isEar(poly Contour, next []int, p, i, nx int) bool {
	a, b, c := poly[p], poly[i], poly[nx]
	if orient(a, b, c) <= epsilon {
		return false
	}
	for j := next[nx]; j != p; j = next[j] {
		q := poly[j]
		if q == a || q == b || q == c {
			continue
		}
		if pointInTriangle(q, a, b, c) {
			return false
		}
	}
	return true
}
