//go:build ebiten

package app

import (
	"log/slog"

	"stellarator/internal/catalog"
	"stellarator/internal/render"
	"stellarator/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Game adapts a map View to the ebiten.Game interface.
type Game struct {
	view    *View
	painter *render.MapPainter
	hud     *ui.HUD
	overlay *ui.Overlay
	log     *slog.Logger

	width int
	panel int
	dirty bool
}

// New constructs a Game showing view.
func New(view *View, cfg *Config, log *slog.Logger) *Game {
	return &Game{
		view:    view,
		painter: render.NewMapPainter(),
		hud:     ui.NewHUD(cfg.Panel),
		overlay: ui.NewOverlay(),
		log:     log,
		width:   cfg.Width,
		panel:   cfg.Panel,
		dirty:   true,
	}
}

// Update handles key input and reloads the map when the selection changes.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		g.view.Step(1)
		g.dirty = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) {
		g.view.Step(-1)
		g.dirty = true
	}
	for i, key := range []ebiten.Key{ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3} {
		if inpututil.IsKeyJustPressed(key) {
			g.view.SetKind(catalog.Kinds[i])
			g.dirty = true
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.view.Reload(); err != nil {
			g.log.Warn("reload", "reason", err)
		}
		g.dirty = true
	}
	g.overlay.Update()

	if g.dirty {
		g.dirty = false
		img, err := g.view.Image()
		if err != nil {
			g.log.Warn("load map", "body", g.view.Current().Name, "kind", g.view.Kind().String(), "reason", err)
			return nil
		}
		g.painter.Upload(img)
		g.hud.Update(ui.InfoLines(g.view.Current(), g.view.Kind(), g.view.Index(), g.view.Len()))
		ebiten.SetWindowTitle("stellarator: " + g.view.Current().Name)
	}
	return nil
}

// Draw renders the map, the grid and the info panel.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.width)
	g.overlay.Draw(screen, g.width, g.height())
	g.hud.Draw(screen, g.width, g.height())
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width + g.panel, g.height()
}

func (g *Game) height() int { return g.width / 2 }
