// Package particle simulates the glyph-seeking particle cloud.
package particle

import (
	"math"
	"math/rand/v2"
)

// Instance is the render record for one particle. Colors are HDR and may
// exceed 1 so the bloom pass picks them up.
type Instance struct {
	X, Y, Z float32
	Scale   float32
	R, G, B float32
}

// Field holds particle state in flat per-attribute buffers. Pos and Vel are
// x,y,z interleaved. The particle count never changes after NewField.
type Field struct {
	N     int
	Pos   []float32
	Vel   []float32
	Speed []float32
	Phase []float32
	Inst  []Instance
}

// NewField scatters n particles uniformly over x,y in [-10,10] and z in
// [-5,5], at rest, each with its own spring speed and noise phase.
func NewField(n int, rng *rand.Rand) *Field {
	f := &Field{
		N:     n,
		Pos:   make([]float32, 3*n),
		Vel:   make([]float32, 3*n),
		Speed: make([]float32, n),
		Phase: make([]float32, n),
		Inst:  make([]Instance, n),
	}
	for i := 0; i < n; i++ {
		f.Pos[3*i] = float32(rng.Float64()*20 - 10)
		f.Pos[3*i+1] = float32(rng.Float64()*20 - 10)
		f.Pos[3*i+2] = float32(rng.Float64()*10 - 5)
		f.Speed[i] = float32(0.08 + rng.Float64()*0.06)
		f.Phase[i] = float32(rng.Float64() * 2 * math.Pi)
	}
	return f
}

// Clone returns a deep copy.
func (f *Field) Clone() *Field {
	return &Field{
		N:     f.N,
		Pos:   append([]float32(nil), f.Pos...),
		Vel:   append([]float32(nil), f.Vel...),
		Speed: append([]float32(nil), f.Speed...),
		Phase: append([]float32(nil), f.Phase...),
		Inst:  append([]Instance(nil), f.Inst...),
	}
}
