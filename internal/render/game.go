// Package render draws the countdown in an ebiten window: projected
// additive particles over a star backdrop, bloom and vignette, and the HUD.
package render

import (
	"fmt"
	"image/color"
	"log"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/jchen0824/new-year-countdown/internal/app"
)

// background is #050510.
var background = color.RGBA{0x05, 0x05, 0x10, 0xff}

// Options configures the window and the presentation layer.
type Options struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool

	Bloom          bool
	BloomThreshold float64
	BloomIntensity float64
	Vignette       bool
	Stars          int
	Sparkles       int
}

// Game adapts the app to ebiten's loop. Update ticks the simulation once
// per frame; Draw only reads the last snapshot.
type Game struct {
	app  *app.App
	opts Options

	batch    *spriteBatch
	backdrop *backdrop
	post     *postFX
	hud      *hud
	scene    *ebiten.Image

	quit atomic.Bool
}

// NewGame compiles the shaders and prepares the static scene.
func NewGame(a *app.App, opts Options) (*Game, error) {
	sh, err := loadShaders()
	if err != nil {
		return nil, fmt.Errorf("load shaders: %w", err)
	}
	h, err := newHUD()
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(1, 2))

	return &Game{
		app:      a,
		opts:     opts,
		batch:    newSpriteBatch(a.ParticleCount()),
		backdrop: newBackdrop(opts.Stars, opts.Sparkles, rng),
		post:     newPostFX(sh, opts),
		hud:      h,
	}, nil
}

// Quit asks the loop to end after the current frame. Safe from any
// goroutine.
func (g *Game) Quit() {
	g.quit.Store(true)
}

func (g *Game) Update() error {
	if g.quit.Load() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}

	if err := g.app.Tick(time.Now()); err != nil {
		return err
	}
	g.hud.update(1/float32(ebiten.TPS()), g.app.Snapshot().Ready)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	if g.scene == nil || g.scene.Bounds().Dx() != w || g.scene.Bounds().Dy() != h {
		if g.scene != nil {
			g.scene.Deallocate()
		}
		g.scene = ebiten.NewImage(w, h)
	}

	snap := g.app.Snapshot()
	cam := g.app.View()

	g.scene.Fill(background)
	g.backdrop.draw(g.batch, g.scene, cam, snap.Time)
	if snap.Ready {
		drawParticles(g.batch, g.scene, cam, snap.Instances)
	}

	g.post.apply(screen, g.scene)
	g.hud.draw(screen, snap)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideHeight > 0 {
		g.app.SetAspect(float64(outsideWidth) / float64(outsideHeight))
	}
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until it is closed.
func (g *Game) Run() error {
	ebiten.SetWindowTitle(g.opts.Title)
	ebiten.SetWindowSize(g.opts.Width, g.opts.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(g.opts.Fullscreen)

	log.Printf("[render] window %dx%d, bloom=%v vignette=%v", g.opts.Width, g.opts.Height, g.opts.Bloom, g.opts.Vignette)
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("run game: %w", err)
	}
	return nil
}
