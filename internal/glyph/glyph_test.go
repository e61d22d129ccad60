package glyph

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func square(x0, y0, size float64) Contour {
	return Contour{
		{x0, y0}, {x0 + size, y0}, {x0 + size, y0 + size}, {x0, y0 + size},
	}
}

func totalArea(tris []Triangle) float64 {
	var sum float64
	for _, t := range tris {
		sum += t.Area()
	}
	return sum
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestTriangulate(t *testing.T) {
	tests := []struct {
		name     string
		contours []Contour
		wantArea float64
	}{
		{"square", []Contour{square(0, 0, 1)}, 1},
		{"clockwise square", []Contour{square(0, 0, 2).reversed()}, 4},
		{"square with hole", []Contour{square(0, 0, 4), square(1, 1, 2).reversed()}, 12},
		{"hole wound like outer", []Contour{square(0, 0, 4), square(1, 1, 2)}, 12},
		{"two holes", []Contour{square(0, 0, 6), square(1, 1, 1), square(4, 4, 1)}, 34},
		{"island in hole", []Contour{square(0, 0, 6), square(1, 1, 4), square(2, 2, 2)}, 36 - 16 + 4},
		{"disjoint", []Contour{square(0, 0, 1), square(5, 5, 2)}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tris, err := Triangulate(tt.contours)
			if err != nil {
				t.Fatalf("Triangulate() error = %v", err)
			}
			if got := totalArea(tris); math.Abs(got-tt.wantArea) > 1e-9 {
				t.Errorf("area = %g, want %g", got, tt.wantArea)
			}
			for i, tri := range tris {
				if orient(tri[0], tri[1], tri[2]) < 0 {
					t.Errorf("triangle %d is clockwise", i)
				}
			}
		})
	}
}

func TestTriangulate_HoleLeftEmpty(t *testing.T) {
	tris, err := Triangulate([]Contour{square(0, 0, 4), square(1, 1, 2)})
	if err != nil {
		t.Fatalf("Triangulate() error = %v", err)
	}
	for _, tri := range tris {
		cx := (tri[0].X + tri[1].X + tri[2].X) / 3
		cy := (tri[0].Y + tri[1].Y + tri[2].Y) / 3
		if cx > 1 && cx < 3 && cy > 1 && cy < 3 {
			t.Errorf("triangle %v has its centroid inside the hole", tri)
		}
	}
}

func TestTriangulate_NoGeometry(t *testing.T) {
	line := Contour{{0, 0}, {1, 1}, {2, 2}}
	if _, err := Triangulate([]Contour{line}); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("Triangulate() error = %v, want ErrNoGeometry", err)
	}
}

func TestExtrude(t *testing.T) {
	contours := []Contour{square(0, 0, 1)}
	tris, err := Triangulate(contours)
	if err != nil {
		t.Fatalf("Triangulate() error = %v", err)
	}

	t.Run("flat", func(t *testing.T) {
		m := Extrude(contours, tris, 0)
		if m.TriangleCount() != len(tris) {
			t.Errorf("TriangleCount() = %d, want %d", m.TriangleCount(), len(tris))
		}
	})

	t.Run("solid", func(t *testing.T) {
		m := Extrude(contours, tris, 0.5)
		// front + back + 4 walls of 2 triangles
		want := 2*len(tris) + 8
		if m.TriangleCount() != want {
			t.Errorf("TriangleCount() = %d, want %d", m.TriangleCount(), want)
		}

		var area float64
		for i := 0; i < m.TriangleCount(); i++ {
			area += m.TriangleArea(i)
		}
		// two unit faces plus four 1x0.5 walls
		if math.Abs(area-4) > 1e-9 {
			t.Errorf("surface area = %g, want 4", area)
		}
	})
}

func TestMesh_Center(t *testing.T) {
	contours := []Contour{square(10, 20, 2)}
	tris, _ := Triangulate(contours)
	m := Extrude(contours, tris, 1)
	m.Center()

	lo, hi := m.Bounds()
	for _, v := range []float64{lo.X + hi.X, lo.Y + hi.Y, lo.Z + hi.Z} {
		if math.Abs(v) > 1e-9 {
			t.Errorf("bounds %v..%v are not centered", lo, hi)
		}
	}
}

func TestSample_ExactCount(t *testing.T) {
	f, err := DefaultFont()
	if err != nil {
		t.Fatalf("DefaultFont() error = %v", err)
	}

	for _, n := range []int{1, 100, 9000} {
		ps, err := SampleText(f, "8", n, DefaultOptions(), newRand(1))
		if err != nil {
			t.Fatalf("SampleText() error = %v", err)
		}
		if ps.Len() != n {
			t.Errorf("Len() = %d, want %d", ps.Len(), n)
		}
	}
}

func TestSample_PointsOnSurface(t *testing.T) {
	contours := []Contour{square(0, 0, 4), square(1, 1, 2)}
	tris, err := Triangulate(contours)
	if err != nil {
		t.Fatalf("Triangulate() error = %v", err)
	}
	const depth = 0.25
	m := Extrude(contours, tris, depth)

	const eps = 1e-5
	ps := Sample(m, 5000, newRand(2))
	for i := 0; i < ps.Len(); i++ {
		x, y, z := ps.At(i)
		if x < -eps || x > 4+eps || y < -eps || y > 4+eps {
			t.Fatalf("point %d (%g,%g) outside outline", i, x, y)
		}
		if x > 1+eps && x < 3-eps && y > 1+eps && y < 3-eps {
			t.Fatalf("point %d (%g,%g) inside hole", i, x, y)
		}
		if z < -eps || z > depth+eps {
			t.Fatalf("point %d z=%g outside extrusion", i, z)
		}
	}
}

func TestSample_AreaProportional(t *testing.T) {
	small := []Contour{square(0, 0, 1)}
	large := []Contour{square(10, 0, math.Sqrt(3))}
	contours := append(small, large...)
	tris, err := Triangulate(contours)
	if err != nil {
		t.Fatalf("Triangulate() error = %v", err)
	}
	m := Extrude(contours, tris, 0)

	const n = 40000
	ps := Sample(m, n, newRand(3))
	inSmall := 0
	for i := 0; i < ps.Len(); i++ {
		if x, _, _ := ps.At(i); x < 5 {
			inSmall++
		}
	}

	got := float64(inSmall) / n
	if math.Abs(got-0.25) > 0.02 {
		t.Errorf("fraction in unit square = %.3f, want ~0.25", got)
	}
}

func TestSample_ZeroArea(t *testing.T) {
	m := &Mesh{Vertices: []Vec3{
		{1, 1, 0}, {1, 1, 0}, {1, 1, 0},
		{5, 5, 0}, {5, 5, 0}, {5, 5, 0},
	}}
	ps := Sample(m, 10, newRand(4))
	if ps.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", ps.Len())
	}
	for i := 0; i < ps.Len(); i++ {
		if x, y, _ := ps.At(i); x != 1 || y != 1 {
			t.Errorf("point %d = (%g,%g), want first triangle (1,1)", i, x, y)
		}
	}
}

func TestSampleText_Empty(t *testing.T) {
	f, err := DefaultFont()
	if err != nil {
		t.Fatalf("DefaultFont() error = %v", err)
	}
	if _, err := SampleText(f, "", 10, DefaultOptions(), newRand(5)); !errors.Is(err, ErrEmptyText) {
		t.Errorf("SampleText(\"\") error = %v, want ErrEmptyText", err)
	}
}

func TestOutline(t *testing.T) {
	f, err := DefaultFont()
	if err != nil {
		t.Fatalf("DefaultFont() error = %v", err)
	}

	t.Run("counter becomes a hole", func(t *testing.T) {
		contours, err := f.Outline("O", DefaultOptions())
		if err != nil {
			t.Fatalf("Outline() error = %v", err)
		}
		if len(contours) != 2 {
			t.Fatalf("len(contours) = %d, want 2", len(contours))
		}
		shapes := groupShapes(contours)
		if len(shapes) != 1 || len(shapes[0].holes) != 1 {
			t.Errorf("want one outline with one hole, got %d shapes", len(shapes))
		}
	})

	t.Run("newline drops a line", func(t *testing.T) {
		opts := DefaultOptions()
		one, err := f.BuildMesh("2026", opts)
		if err != nil {
			t.Fatalf("BuildMesh() error = %v", err)
		}
		two, err := f.BuildMesh("Happy\n 2026", opts)
		if err != nil {
			t.Fatalf("BuildMesh() error = %v", err)
		}

		lo1, hi1 := one.Bounds()
		lo2, hi2 := two.Bounds()
		h1, h2 := hi1.Y-lo1.Y, hi2.Y-lo2.Y
		if h2 < h1+f.LineHeight(opts.Size)/2 {
			t.Errorf("two-line height %g not taller than one line %g", h2, h1)
		}
	})

	t.Run("curve segments add points", func(t *testing.T) {
		coarse, _ := f.Outline("O", Options{Size: 8, CurveSegments: 1})
		fine, _ := f.Outline("O", Options{Size: 8, CurveSegments: 6})
		if len(fine[0]) <= len(coarse[0]) {
			t.Errorf("6 segments gave %d points, 1 segment gave %d", len(fine[0]), len(coarse[0]))
		}
	})
}

func TestBuildTable(t *testing.T) {
	f, err := DefaultFont()
	if err != nil {
		t.Fatalf("DefaultFont() error = %v", err)
	}
	labels := CountdownLabels("Happy\n 2026")

	table, err := BuildTable(f, labels, 500, DefaultOptions(), newRand(6))
	if err != nil {
		t.Fatalf("BuildTable() error = %v", err)
	}

	if got := len(table.Keys()); got != 7 {
		t.Errorf("len(Keys()) = %d, want 7", got)
	}
	for _, k := range table.Keys() {
		ps, err := table.Lookup(k)
		if err != nil {
			t.Fatalf("Lookup(%q) error = %v", k, err)
		}
		if ps.Len() != 500 {
			t.Errorf("Lookup(%q).Len() = %d, want 500", k, ps.Len())
		}
	}

	if _, err := table.Lookup("9"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Lookup(\"9\") error = %v, want ErrUnknownKey", err)
	}

	// Lookup must return the stored set, not a fresh sample.
	a, _ := table.Lookup(DigitKey(3))
	b, _ := table.Lookup(DigitKey(3))
	if &a[0] != &b[0] {
		t.Error("Lookup() resampled")
	}

	again, err := BuildTable(f, labels, 500, DefaultOptions(), newRand(6))
	if err != nil {
		t.Fatalf("BuildTable() error = %v", err)
	}
	c, _ := again.Lookup(DigitKey(3))
	for i := range a {
		if a[i] != c[i] {
			t.Fatalf("same seed produced different tables at %d", i)
		}
	}
}

func TestCache_SetFont(t *testing.T) {
	f, err := DefaultFont()
	if err != nil {
		t.Fatalf("DefaultFont() error = %v", err)
	}

	c := NewCache(Labels{DigitKey(1): "1"}, 50, DefaultOptions(), newRand(7))
	if c.Table() != nil {
		t.Fatal("Table() should be nil before SetFont")
	}

	if err := c.SetFont(f); err != nil {
		t.Fatalf("SetFont() error = %v", err)
	}
	first := c.Table()

	if err := c.SetFont(f); err != nil {
		t.Fatalf("SetFont() error = %v", err)
	}
	if c.Table() != first {
		t.Error("SetFont() with the same font rebuilt the table")
	}

	other, err := DefaultFont()
	if err != nil {
		t.Fatalf("DefaultFont() error = %v", err)
	}
	if err := c.SetFont(other); err != nil {
		t.Fatalf("SetFont() error = %v", err)
	}
	if c.Table() == first {
		t.Error("SetFont() with a new font kept the old table")
	}
}
