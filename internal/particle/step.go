package particle

import (
	"errors"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/jchen0824/new-year-countdown/internal/gesture"
	"github.com/jchen0824/new-year-countdown/internal/glyph"
)

// ErrNoTargets is returned when the target point set is empty.
var ErrNoTargets = errors.New("no target points")

// minChunk keeps small fields on the calling goroutine.
const minChunk = 1024

// Input is everything outside the field that one step depends on.
type Input struct {
	Targets   glyph.PointSet
	Countdown int
	Hand      gesture.HandState

	// ViewW and ViewH are the visible extent of the z=0 plane in world
	// units, used to map the normalized hand position.
	ViewW, ViewH float64

	// Time is elapsed seconds; Frame counts steps.
	Time  float64
	Frame uint64
}

// Params are the tunable constants of the simulation.
type Params struct {
	Damping          float64
	Noise            float64
	Implosion        float64
	DigitScale       float64
	CelebrationScale float64
	BaseScale        float64
	Brightness       float64
	Workers          int
}

// DefaultParams returns the reference tuning.
func DefaultParams() Params {
	return Params{
		Damping:          0.90,
		Noise:            0.02,
		Implosion:        0.1,
		DigitScale:       1.1,
		CelebrationScale: 0.55,
		BaseScale:        0.5,
		Brightness:       2,
	}
}

// Step advances every particle once. Particle i seeks target point
// i mod len(Targets); the result depends only on the field, the input and
// the params, so the work is split into contiguous chunks that run in
// parallel.
func Step(f *Field, in Input, p Params) error {
	m := in.Targets.Len()
	if m == 0 {
		return ErrNoTargets
	}

	k := frameConsts(in, p)

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if limit := (f.N + minChunk - 1) / minChunk; workers > limit {
		workers = limit
	}
	if workers <= 1 {
		stepRange(f, in, p, k, 0, f.N)
		return nil
	}

	var g errgroup.Group
	chunk := (f.N + workers - 1) / workers
	for lo := 0; lo < f.N; lo += chunk {
		lo, hi := lo, min(lo+chunk, f.N)
		g.Go(func() error {
			stepRange(f, in, p, k, lo, hi)
			return nil
		})
	}
	return g.Wait()
}

// consts are per-frame values shared by every particle.
type consts struct {
	scale      float64
	offX, offY float64
	gold       bool
}

func frameConsts(in Input, p Params) consts {
	k := consts{scale: p.DigitScale}
	if in.Countdown == 0 {
		k.scale = p.CelebrationScale
		k.gold = true
	}
	if in.Hand.IsPresent {
		if in.Hand.IsFist && in.Countdown > 0 {
			k.scale *= p.Implosion
		}
		k.offX = (in.Hand.X - 0.5) * in.ViewW
		k.offY = -(in.Hand.Y - 0.5) * in.ViewH
	}
	return k
}

func stepRange(f *Field, in Input, p Params, k consts, lo, hi int) {
	m := in.Targets.Len()
	t := in.Time
	damping := float32(p.Damping)

	for i := lo; i < hi; i++ {
		tx, ty, tz := in.Targets.At(i % m)
		targetX := k.offX + float64(tx)*k.scale
		targetY := k.offY + float64(ty)*k.scale
		targetZ := float64(tz) * k.scale

		ix, iy, iz := 3*i, 3*i+1, 3*i+2
		speed := float64(f.Speed[i])
		phase := float64(f.Phase[i])

		fx := (targetX-float64(f.Pos[ix]))*speed + math.Sin(t*4+phase)*p.Noise
		fy := (targetY-float64(f.Pos[iy]))*speed + math.Cos(t*3+phase)*p.Noise
		fz := (targetZ-float64(f.Pos[iz]))*speed + math.Sin(t*5+phase)*p.Noise

		f.Vel[ix] = (f.Vel[ix] + float32(fx)) * damping
		f.Vel[iy] = (f.Vel[iy] + float32(fy)) * damping
		f.Vel[iz] = (f.Vel[iz] + float32(fz)) * damping
		f.Pos[ix] += f.Vel[ix]
		f.Pos[iy] += f.Vel[iy]
		f.Pos[iz] += f.Vel[iz]

		x := float64(f.Pos[ix])
		var r, g, b float64
		if k.gold {
			hue := 0.1 + math.Sin(t+x*0.1)*0.05
			r, g, b = hslToRGB(hue, 1, 0.6+hash01(uint64(i), in.Frame)*0.4)
		} else {
			hue := 0.5 + (math.Sin(t*0.5+x*0.1)+1)*0.15
			r, g, b = hslToRGB(hue, 1, 0.6)
		}

		f.Inst[i] = Instance{
			X:     f.Pos[ix],
			Y:     f.Pos[iy],
			Z:     f.Pos[iz],
			Scale: float32(p.BaseScale * (math.Sin(t*8+phase)*0.2 + 1)),
			R:     float32(r * p.Brightness),
			G:     float32(g * p.Brightness),
			B:     float32(b * p.Brightness),
		}
	}
}
