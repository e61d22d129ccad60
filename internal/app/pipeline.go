package app

import (
	"fmt"
	"log"
	"time"

	"github.com/jchen0824/new-year-countdown/internal/countdown"
	"github.com/jchen0824/new-year-countdown/internal/particle"
)

// Tick runs one frame:
//  1. Poll the tracker; without a new camera frame the last hand state is reused
//  2. Feed the countdown, but only once the camera is ready
//  3. Look up the target point set for the current count
//  4. Step the particle field
//
// Tracker errors are logged and the frame continues with the previous state.
func (a *App) Tick(now time.Time) error {
	if a.start.IsZero() {
		a.start = now
	}

	hand, err := a.tracker.Poll()
	if err != nil && now.Sub(a.lastPollLog) > pollErrorInterval {
		log.Printf("[app] hand tracking: %v", err)
		a.lastPollLog = now
	}

	ready := a.tracker.Ready()
	if ready {
		a.countdown.Observe(hand.IsPresent && hand.IsFist, now)
	}

	count := a.countdown.Value()
	table := a.glyphs.Table()
	targets, err := table.Lookup(countdown.KeyFor(count))
	if err != nil {
		return fmt.Errorf("targets for %d: %w", count, err)
	}

	vw, vh := a.config.View.Extent(a.aspect)
	a.elapsed = now.Sub(a.start).Seconds()
	in := particle.Input{
		Targets:   targets,
		Countdown: count,
		Hand:      hand,
		ViewW:     vw,
		ViewH:     vh,
		Time:      a.elapsed,
		Frame:     a.frame,
	}
	if err := particle.Step(a.field, in, a.config.Physics); err != nil {
		return fmt.Errorf("step particles: %w", err)
	}
	a.frame++

	a.lastSnapshot = Snapshot{
		Instances: a.field.Inst,
		Countdown: count,
		Hand:      hand,
		Ready:     ready,
		Time:      a.elapsed,
	}
	return nil
}

// Snapshot returns the state produced by the last Tick.
func (a *App) Snapshot() Snapshot {
	return a.lastSnapshot
}

// Frames returns how many ticks have completed.
func (a *App) Frames() uint64 {
	return a.frame
}
