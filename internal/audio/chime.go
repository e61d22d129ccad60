// Package audio synthesizes the countdown chimes.
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// chime is a bell-like tone: a fundamental plus two inharmonic partials
// under an exponential decay.
type chime struct {
	freq     float64
	rate     beep.SampleRate
	pos      int
	total    int
	decaySec float64
}

// NewChime returns a finite bell tone at freq lasting dur.
func NewChime(freq float64, dur time.Duration, rate beep.SampleRate) beep.Streamer {
	return &chime{
		freq:     freq,
		rate:     rate,
		total:    rate.N(dur),
		decaySec: dur.Seconds() / 5,
	}
}

func (c *chime) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if c.pos >= c.total {
			return i, i > 0
		}
		t := float64(c.pos) / float64(c.rate)
		env := math.Exp(-t / c.decaySec)

		// Short attack avoids a click.
		if attack := 0.005; t < attack {
			env *= t / attack
		}

		v := 0.6*math.Sin(2*math.Pi*c.freq*t) +
			0.25*math.Sin(2*math.Pi*c.freq*2.76*t) +
			0.15*math.Sin(2*math.Pi*c.freq*5.4*t)
		v *= env

		samples[i][0] = v
		samples[i][1] = v
		c.pos++
	}
	return len(samples), true
}

func (c *chime) Err() error { return nil }

// Tick is the short chime for one step down.
func Tick(rate beep.SampleRate) beep.Streamer {
	return NewChime(880, 400*time.Millisecond, rate)
}

// Fanfare is the rising arpeggio played when the countdown reaches zero.
func Fanfare(rate beep.SampleRate) beep.Streamer {
	notes := []float64{523.25, 659.25, 783.99, 1046.5}
	parts := make([]beep.Streamer, 0, len(notes))
	for i, f := range notes {
		dur := 180 * time.Millisecond
		if i == len(notes)-1 {
			dur = 1200 * time.Millisecond
		}
		parts = append(parts, NewChime(f, dur, rate))
	}
	return beep.Seq(parts...)
}

// Rewind is the falling pair played when the countdown wraps back to five.
func Rewind(rate beep.SampleRate) beep.Streamer {
	return beep.Seq(
		NewChime(659.25, 150*time.Millisecond, rate),
		NewChime(440, 500*time.Millisecond, rate),
	)
}

// withVolume scales s by vol in [0,1]; zero is silent.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}
