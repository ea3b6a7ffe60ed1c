//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Overlay draws a longitude/latitude grid over the equirectangular map.
type Overlay struct {
	show  bool
	step  float64
	pixel *ebiten.Image
}

// NewOverlay constructs a grid overlay with lines every 30 degrees.
func NewOverlay() *Overlay {
	o := &Overlay{step: 30}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update toggles the grid.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		o.show = !o.show
	}
}

// Draw renders the grid over a w by h map view.
func (o *Overlay) Draw(screen *ebiten.Image, w, h int) {
	if !o.show || w <= 0 || h <= 0 {
		return
	}
	lineColor := color.RGBA{R: 240, G: 240, B: 255, A: 90}
	equator := color.RGBA{R: 255, G: 200, B: 80, A: 150}
	for _, x := range GridLines(o.step, 360, float64(w)) {
		o.drawLine(screen, x, 0, x, float64(h), 1, lineColor)
	}
	for _, y := range GridLines(o.step, 180, float64(h)) {
		col := lineColor
		if math.Abs(y-float64(h)/2) < 0.5 {
			col = equator
		}
		o.drawLine(screen, 0, y, float64(w), y, 1, col)
	}
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	if o.pixel == nil || thickness <= 0 {
		return
	}
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorM.Scale(float64(col.R)/255.0, float64(col.G)/255.0, float64(col.B)/255.0, float64(col.A)/255.0)
	screen.DrawImage(o.pixel, op)
}
