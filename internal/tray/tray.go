// Package tray provides a system tray menu showing the countdown and hand
// link state, with reset and quit actions.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray menu.
type Tray struct {
	onReset func()
	onQuit  func()
	mu      sync.RWMutex

	count  int
	linked bool

	// Menu items stored for later updates
	menuCount *systray.MenuItem
	menuLink  *systray.MenuItem
}

// New creates a Tray showing the starting count.
func New(count int) *Tray {
	return &Tray{count: count}
}

// OnReset sets the callback for the reset menu item.
func (t *Tray) OnReset(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReset = fn
}

// OnQuit sets the callback for the quit menu item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Chronos")
	systray.SetTooltip("Chronos 2026 countdown")

	t.mu.Lock()
	t.menuCount = systray.AddMenuItem(countLabel(t.count), "Current countdown value")
	t.menuCount.Disable()
	t.menuLink = systray.AddMenuItem(linkLabel(t.linked), "Hand tracking state")
	t.menuLink.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuReset := systray.AddMenuItem("Reset countdown", "Start again from 5")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Chronos")

	go func() {
		for {
			select {
			case <-menuReset.ClickedCh:
				t.handleReset()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func (t *Tray) handleReset() {
	t.mu.RLock()
	callback := t.onReset
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetCountdown updates the countdown line.
func (t *Tray) SetCountdown(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.count = n
	if t.menuCount != nil {
		t.menuCount.SetTitle(countLabel(n))
	}
}

// SetLinked updates the hand tracking line. It only touches the menu when
// the state changes.
func (t *Tray) SetLinked(linked bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if linked == t.linked {
		return
	}
	t.linked = linked
	if t.menuLink != nil {
		t.menuLink.SetTitle(linkLabel(linked))
	}
}

// Countdown returns the value last shown.
func (t *Tray) Countdown() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

func countLabel(n int) string {
	if n == 0 {
		return "Countdown: Happy 2026"
	}
	return fmt.Sprintf("Countdown: %d", n)
}

func linkLabel(linked bool) string {
	if linked {
		return "● Link established"
	}
	return "○ Searching for hand"
}
