package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/jchen0824/new-year-countdown/internal/countdown"
)

// drain streams s to completion and returns the sample count and peak.
func drain(s beep.Streamer) (int, float64) {
	buf := make([][2]float64, 512)
	total, peak := 0, 0.0
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			peak = math.Max(peak, math.Abs(buf[i][0]))
		}
		total += n
		if !ok {
			return total, peak
		}
	}
}

func TestChime(t *testing.T) {
	rate := beep.SampleRate(44100)
	c := NewChime(440, 200*time.Millisecond, rate)

	n, peak := drain(c)
	if want := rate.N(200 * time.Millisecond); n != want {
		t.Errorf("streamed %d samples, want %d", n, want)
	}
	if peak <= 0.1 || peak > 1 {
		t.Errorf("peak = %f, want within (0.1, 1]", peak)
	}
	if c.Err() != nil {
		t.Errorf("Err() = %v", c.Err())
	}
}

func TestChime_Decays(t *testing.T) {
	rate := beep.SampleRate(44100)
	c := NewChime(440, time.Second, rate)

	head := make([][2]float64, rate.N(50*time.Millisecond))
	c.Stream(head)
	skip := make([][2]float64, rate.N(850*time.Millisecond))
	c.Stream(skip)
	tail := make([][2]float64, rate.N(50*time.Millisecond))
	c.Stream(tail)

	peak := func(s [][2]float64) float64 {
		p := 0.0
		for _, v := range s {
			p = math.Max(p, math.Abs(v[0]))
		}
		return p
	}
	if peak(tail) >= peak(head)/4 {
		t.Errorf("tail peak %f not well below head peak %f", peak(tail), peak(head))
	}
}

func TestSoundFor(t *testing.T) {
	rate := beep.SampleRate(44100)
	tick, _ := drain(Tick(rate))
	fanfare, _ := drain(Fanfare(rate))
	rewind, _ := drain(Rewind(rate))

	tests := []struct {
		name string
		tr   countdown.Transition
		want int
	}{
		{"step down", countdown.Transition{From: 4, To: 3}, tick},
		{"reach zero", countdown.Transition{From: 1, To: 0}, fanfare},
		{"wrap", countdown.Transition{From: 0, To: 5}, rewind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if n, _ := drain(SoundFor(tt.tr, rate)); n != tt.want {
				t.Errorf("sound length = %d samples, want %d", n, tt.want)
			}
		})
	}
}

func TestWithVolume(t *testing.T) {
	rate := beep.SampleRate(44100)

	_, full := drain(withVolume(Tick(rate), 1))
	_, half := drain(withVolume(Tick(rate), 0.5))
	_, mute := drain(withVolume(Tick(rate), 0))

	if math.Abs(half-full/2) > 1e-6 {
		t.Errorf("half volume peak %f, want %f", half, full/2)
	}
	if mute != 0 {
		t.Errorf("muted peak = %f, want 0", mute)
	}
}

func TestPlayer_PlayBeforeInitialize(t *testing.T) {
	p := NewPlayer(2)
	if p.volume != 1 {
		t.Errorf("volume = %f, want clamped to 1", p.volume)
	}

	// Must not touch the speaker.
	p.Play(countdown.Transition{From: 5, To: 4})
	p.Close()
}
