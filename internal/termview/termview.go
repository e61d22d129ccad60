// Package termview renders the same simulation in a terminal by binning
// projected particles into character cells.
package termview

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/jchen0824/new-year-countdown/internal/app"
	"github.com/jchen0824/new-year-countdown/internal/particle"
	"github.com/jchen0824/new-year-countdown/internal/view"
)

// frameInterval paces the terminal at about 30 fps.
const frameInterval = 33 * time.Millisecond

// ramp maps cell density to a glyph, sparse to dense.
var ramp = []rune{' ', '.', ':', '*', 'o', 'O', '@', '#'}

// cell accumulates the particles that land in one character cell.
type cell struct {
	n       int
	r, g, b float32
}

// grid is a cols×rows density map.
type grid struct {
	cols, rows int
	cells      []cell
}

// bin projects instances into a cols×rows grid. Terminal cells are about
// twice as tall as wide, so projection uses a cols×(2·rows) virtual
// viewport.
func bin(inst []particle.Instance, cam view.Camera, cols, rows int) grid {
	g := grid{cols: cols, rows: rows, cells: make([]cell, cols*rows)}
	if cols <= 0 || rows <= 0 {
		return g
	}
	for i := range inst {
		p := &inst[i]
		sx, sy, _, ok := cam.Project(float64(p.X), float64(p.Y), float64(p.Z), cols, 2*rows)
		if !ok {
			continue
		}
		x, y := int(math.Floor(sx)), int(math.Floor(sy/2))
		if x < 0 || y < 0 || x >= cols || y >= rows {
			continue
		}
		c := &g.cells[y*cols+x]
		c.n++
		c.r += p.R
		c.g += p.G
		c.b += p.B
	}
	return g
}

// glyph returns the character and color for a cell. peak is the density
// that maps to the last ramp entry.
func (c cell) glyph(peak int) (rune, tcell.Color) {
	if c.n == 0 {
		return ' ', tcell.ColorDefault
	}
	idx := 1 + (len(ramp)-2)*c.n/max(peak, 1)
	idx = min(idx, len(ramp)-1)

	n := float32(c.n)
	to8 := func(v float32) int32 {
		return int32(min(max(v/n*0.5, 0), 1) * 255)
	}
	return ramp[idx], tcell.NewRGBColor(to8(c.r), to8(c.g), to8(c.b))
}

// peak is the density of the busiest cell.
func (g grid) peak() int {
	p := 0
	for _, c := range g.cells {
		p = max(p, c.n)
	}
	return p
}

// Viewer drives the app from a terminal loop.
type Viewer struct {
	app    *app.App
	screen tcell.Screen
	quit   chan struct{}
}

// New creates a viewer on the given screen. Pass nil to open the real
// terminal.
func New(a *app.App, screen tcell.Screen) (*Viewer, error) {
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("open terminal: %w", err)
		}
		screen = s
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init terminal: %w", err)
	}
	return &Viewer{app: a, screen: screen, quit: make(chan struct{}, 1)}, nil
}

// Quit ends Run. Safe from any goroutine.
func (v *Viewer) Quit() {
	select {
	case v.quit <- struct{}{}:
	default:
	}
}

// Run ticks and draws until ctx ends, Quit is called, or the user presses
// Esc, q or Ctrl-C. The terminal is restored on return.
func (v *Viewer) Run(ctx context.Context) error {
	defer v.screen.Fini()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	log.Println("[termview] running")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-v.quit:
			return nil
		case ev := <-events:
			if !v.handle(ev) {
				return nil
			}
		case now := <-ticker.C:
			if err := v.app.Tick(now); err != nil {
				return err
			}
			v.draw()
		}
	}
}

func (v *Viewer) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'r':
			v.app.Reset()
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *Viewer) draw() {
	cols, rows := v.screen.Size()
	if rows > 0 {
		v.app.SetAspect(float64(cols) / float64(2*rows))
	}
	snap := v.app.Snapshot()

	v.screen.Clear()
	if snap.Ready {
		g := bin(snap.Instances, v.app.View(), cols, rows)
		peak := g.peak()
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				ch, col := g.cells[y*cols+x].glyph(peak)
				if ch == ' ' {
					continue
				}
				v.screen.SetContent(x, y, ch, nil, tcell.StyleDefault.Foreground(col))
			}
		}
	}
	v.drawHUD(snap, cols, rows)
	v.screen.Show()
}

func (v *Viewer) drawHUD(s app.Snapshot, cols, rows int) {
	title := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	cyan := tcell.StyleDefault.Foreground(tcell.ColorDarkCyan)
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)

	if !s.Ready {
		msg := "Initializing Vision Systems..."
		putString(v.screen, (cols-len(msg))/2, rows/2, msg, cyan)
		hint := "Please allow camera access"
		putString(v.screen, (cols-len(hint))/2, rows/2+1, hint, dim)
		return
	}

	putString(v.screen, 2, 1, "CHRONOS 2026", title)
	hint := "SQUEEZE HAND TO ACCELERATE TIME"
	if s.Countdown == 0 {
		hint = "SQUEEZE TO RESET TIMELINE"
	}
	putString(v.screen, 2, 2, hint, cyan)

	status, st := "SEARCHING FOR HAND", tcell.StyleDefault.Foreground(tcell.ColorRed)
	if s.Hand.IsPresent {
		status, st = "LINK ESTABLISHED", tcell.StyleDefault.Foreground(tcell.ColorGreen)
	}
	putString(v.screen, cols-len(status)-4, 1, "● "+status, st)
	if s.Hand.IsPresent {
		g, gs := "[ OPEN HAND ]", dim
		if s.Hand.IsFist {
			g, gs = "[ FIST DETECTED ]", tcell.StyleDefault.Foreground(tcell.ColorYellow)
		}
		putString(v.screen, cols-len(g)-2, 2, g, gs)
	}

	putString(v.screen, 2, rows-1, "q quit  r reset", dim)
}

func putString(s tcell.Screen, x, y int, str string, style tcell.Style) {
	for _, r := range str {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
