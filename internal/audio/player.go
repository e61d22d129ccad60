package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/jchen0824/new-year-countdown/internal/countdown"
)

const sampleRate = beep.SampleRate(48000)

// Player plays a chime for each countdown transition through one mixer.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool
}

// NewPlayer creates a player. Volume is clamped to [0,1].
func NewPlayer(volume float64) *Player {
	return &Player{
		mixer:  &beep.Mixer{},
		volume: min(max(volume, 0), 1),
	}
}

// Initialize opens the speaker.
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Close silences everything still playing.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.initialized = false
}

// Play queues the sound for a transition. It is a no-op before Initialize.
func (p *Player) Play(tr countdown.Transition) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}

	s := SoundFor(tr, sampleRate)
	speaker.Lock()
	p.mixer.Add(withVolume(s, p.volume))
	speaker.Unlock()
}

// SoundFor picks the sound for a transition: a fanfare on reaching zero, a
// falling pair on wrapping back up and a tick otherwise.
func SoundFor(tr countdown.Transition, rate beep.SampleRate) beep.Streamer {
	switch {
	case tr.To == 0:
		return Fanfare(rate)
	case tr.To > tr.From:
		return Rewind(rate)
	default:
		return Tick(rate)
	}
}
