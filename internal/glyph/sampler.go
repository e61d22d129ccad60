package glyph

import (
	"math"
	"math/rand/v2"
	"sort"
)

// PointSet is a flat x,y,z interleaved list of surface points.
type PointSet []float32

// Len returns the number of points.
func (ps PointSet) Len() int {
	return len(ps) / 3
}

// At returns point i.
func (ps PointSet) At(i int) (x, y, z float32) {
	return ps[3*i], ps[3*i+1], ps[3*i+2]
}

// Sample draws n points uniformly over the mesh surface. Triangles are chosen
// with probability proportional to their area and points inside a triangle
// use the square-root barycentric mapping, so density is uniform per unit
// area. Zero-area triangles are never chosen unless the whole mesh has zero
// area, in which case every point lands in the first triangle.
func Sample(m *Mesh, n int, rng *rand.Rand) PointSet {
	count := m.TriangleCount()
	if n <= 0 || count == 0 {
		return PointSet{}
	}

	cum := make([]float64, count)
	total := 0.0
	last := 0
	for i := 0; i < count; i++ {
		a := m.TriangleArea(i)
		if a > 0 {
			last = i
		}
		total += a
		cum[i] = total
	}

	out := make(PointSet, 0, n*3)
	for k := 0; k < n; k++ {
		idx := 0
		if total > 0 {
			r := rng.Float64() * total
			idx = sort.Search(count, func(i int) bool { return cum[i] > r })
			if idx >= count {
				idx = last
			}
		}

		a, b, c := m.Triangle(idx)
		s1 := math.Sqrt(rng.Float64())
		r2 := rng.Float64()
		u, v, w := 1-s1, s1*(1-r2), s1*r2

		out = append(out,
			float32(u*a.X+v*b.X+w*c.X),
			float32(u*a.Y+v*b.Y+w*c.Y),
			float32(u*a.Z+v*b.Z+w*c.Z),
		)
	}
	return out
}

// SampleText builds the centered mesh for text and samples n points on it.
func SampleText(f *Font, text string, n int, opts Options, rng *rand.Rand) (PointSet, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	m, err := f.BuildMesh(text, opts)
	if err != nil {
		return nil, err
	}
	return Sample(m, n, rng), nil
}
