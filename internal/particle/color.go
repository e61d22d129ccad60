package particle

import "math"

// hslToRGB converts hue, saturation and lightness in [0,1] to RGB in [0,1].
// Hue wraps.
func hslToRGB(h, s, l float64) (r, g, b float64) {
	h -= math.Floor(h)
	if s == 0 {
		return l, l, l
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	return hueToRGB(p, q, h+1.0/3), hueToRGB(p, q, h), hueToRGB(p, q, h-1.0/3)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}

// hash01 maps (i, frame) to a well-mixed value in [0,1). It replaces a
// random draw so a step stays reproducible.
func hash01(i, frame uint64) float64 {
	x := i*0x9e3779b97f4a7c15 ^ frame*0xbf58476d1ce4e5b9
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return float64(x>>11) / (1 << 53)
}
