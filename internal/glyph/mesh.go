package glyph

import "math"

// Mesh is a triangle soup; every three vertices form one triangle.
type Mesh struct {
	Vertices []Vec3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Vertices) / 3
}

// Triangle returns the vertices of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c Vec3) {
	return m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2]
}

// TriangleArea returns half the magnitude of the edge cross product.
func (m *Mesh) TriangleArea(i int) float64 {
	a, b, c := m.Triangle(i)
	return cross3(b.sub(a), c.sub(a)).length() / 2
}

// Bounds returns the axis-aligned bounding box of the mesh.
func (m *Mesh) Bounds() (lo, hi Vec3) {
	if len(m.Vertices) == 0 {
		return Vec3{}, Vec3{}
	}
	lo = Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi = Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, v := range m.Vertices {
		lo.X, hi.X = math.Min(lo.X, v.X), math.Max(hi.X, v.X)
		lo.Y, hi.Y = math.Min(lo.Y, v.Y), math.Max(hi.Y, v.Y)
		lo.Z, hi.Z = math.Min(lo.Z, v.Z), math.Max(hi.Z, v.Z)
	}
	return lo, hi
}

// Center translates the mesh so its bounding box is centered on the origin.
func (m *Mesh) Center() {
	lo, hi := m.Bounds()
	cx, cy, cz := (lo.X+hi.X)/2, (lo.Y+hi.Y)/2, (lo.Z+hi.Z)/2
	for i := range m.Vertices {
		m.Vertices[i].X -= cx
		m.Vertices[i].Y -= cy
		m.Vertices[i].Z -= cz
	}
}

// Extrude builds a closed solid from the filled triangles: the front face at
// z=depth, the back face at z=0 and one wall quad per contour edge. With
// zero depth only the front face is emitted.
func Extrude(contours []Contour, tris []Triangle, depth float64) *Mesh {
	m := &Mesh{Vertices: make([]Vec3, 0, len(tris)*6)}

	for _, t := range tris {
		m.Vertices = append(m.Vertices,
			Vec3{t[0].X, t[0].Y, depth},
			Vec3{t[1].X, t[1].Y, depth},
			Vec3{t[2].X, t[2].Y, depth},
		)
	}
	if depth <= 0 {
		return m
	}

	for _, t := range tris {
		m.Vertices = append(m.Vertices,
			Vec3{t[0].X, t[0].Y, 0},
			Vec3{t[2].X, t[2].Y, 0},
			Vec3{t[1].X, t[1].Y, 0},
		)
	}

	for _, c := range contours {
		c = cleanContour(c)
		for i := range c {
			p, q := c[i], c[(i+1)%len(c)]
			p0, q0 := Vec3{p.X, p.Y, 0}, Vec3{q.X, q.Y, 0}
			p1, q1 := Vec3{p.X, p.Y, depth}, Vec3{q.X, q.Y, depth}
			m.Vertices = append(m.Vertices, p0, q0, q1, p0, q1, p1)
		}
	}
	return m
}

// BuildMesh outlines, fills, extrudes and centers text.
func (f *Font) BuildMesh(text string, opts Options) (*Mesh, error) {
	opts = opts.withDefaults()

	contours, err := f.Outline(text, opts)
	if err != nil {
		return nil, err
	}
	tris, err := Triangulate(contours)
	if err != nil {
		return nil, err
	}

	m := Extrude(contours, tris, opts.Depth)
	m.Center()
	return m, nil
}
