// Package countdown implements the debounced 5..0 counter driven by the fist
// gesture.
package countdown

import (
	"sync"
	"time"

	"github.com/jchen0824/new-year-countdown/internal/glyph"
)

// Start is the initial and wrap-around value.
const Start = 5

// DefaultCooldown is the minimum spacing between accepted transitions.
const DefaultCooldown = 1500 * time.Millisecond

// Transition describes one accepted step.
type Transition struct {
	From, To int
	At       time.Time
}

// Countdown is a cooldown-gated counter. It is safe for concurrent use so the
// tray menu can reset it from its own goroutine.
type Countdown struct {
	mu       sync.Mutex
	value    int
	cooldown time.Duration
	last     time.Time
	fired    bool

	onChange func(Transition)
}

// New creates a countdown at Start. A non-positive cooldown accepts every
// observed fist.
func New(cooldown time.Duration) *Countdown {
	if cooldown < 0 {
		cooldown = 0
	}
	return &Countdown{value: Start, cooldown: cooldown}
}

// OnChange registers a callback invoked after every accepted transition,
// including Reset.
func (c *Countdown) OnChange(fn func(Transition)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Value returns the current count.
func (c *Countdown) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Key returns the glyph to display for the current count.
func (c *Countdown) Key() glyph.Key {
	return KeyFor(c.Value())
}

// KeyFor maps a count to its glyph key; zero shows the celebration.
func KeyFor(v int) glyph.Key {
	if v == 0 {
		return glyph.Celebration
	}
	return glyph.DigitKey(v)
}

// Observe feeds one gesture sample. While the fist is held a transition is
// accepted whenever at least the cooldown has passed since the previous
// accepted transition, so holding fires once per cooldown window. Positive
// values decrement and zero wraps to Start. It reports whether a transition
// happened.
func (c *Countdown) Observe(isFist bool, now time.Time) bool {
	if !isFist {
		return false
	}

	c.mu.Lock()
	if c.fired && now.Sub(c.last) < c.cooldown {
		c.mu.Unlock()
		return false
	}

	from := c.value
	if c.value > 0 {
		c.value--
	} else {
		c.value = Start
	}
	c.last, c.fired = now, true
	tr := Transition{From: from, To: c.value, At: now}
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(tr)
	}
	return true
}

// Reset returns to Start. The cooldown window is left untouched.
func (c *Countdown) Reset() {
	c.mu.Lock()
	from := c.value
	c.value = Start
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil && from != Start {
		fn(Transition{From: from, To: Start, At: time.Now()})
	}
}
