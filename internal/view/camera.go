// Package view holds the perspective camera shared by the renderers and
// the hand-to-world mapping.
package view

import "math"

// Camera looks down -z from (0, 0, Z) with a vertical field of view.
type Camera struct {
	Z    float64
	FOVY float64 // degrees
}

// Default is the camera at z=15 with a 45° vertical field of view.
func Default() Camera {
	return Camera{Z: 15, FOVY: 45}
}

// Extent returns the visible width and height of the z=0 plane for a
// viewport of the given aspect ratio (width / height).
func (c Camera) Extent(aspect float64) (w, h float64) {
	h = 2 * c.Z * math.Tan(c.FOVY*math.Pi/360)
	return h * aspect, h
}

// Project maps a world point to pixel coordinates in a w×h viewport. The
// returned factor converts world lengths at that depth into pixels. ok is
// false for points at or behind the camera.
func (c Camera) Project(x, y, z float64, w, h int) (sx, sy, pxPerUnit float64, ok bool) {
	d := c.Z - z
	if d <= 1e-3 {
		return 0, 0, 0, false
	}
	f := float64(h) / 2 / math.Tan(c.FOVY*math.Pi/360)
	pxPerUnit = f / d
	sx = float64(w)/2 + x*pxPerUnit
	sy = float64(h)/2 - y*pxPerUnit
	return sx, sy, pxPerUnit, true
}
