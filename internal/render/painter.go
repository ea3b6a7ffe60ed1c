//go:build ebiten

package render

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// MapPainter uploads decoded map images into a reusable ebiten image.
type MapPainter struct {
	w, h int
	img  *ebiten.Image
}

// NewMapPainter returns an empty painter; the first Blit allocates.
func NewMapPainter() *MapPainter { return &MapPainter{} }

// Upload replaces the painter image with src.
func (mp *MapPainter) Upload(src *image.NRGBA) {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if mp.img == nil || mp.w != w || mp.h != h {
		mp.img = ebiten.NewImage(w, h)
		mp.w, mp.h = w, h
	}
	mp.img.ReplacePixels(src.Pix)
}

// Blit draws the uploaded map scaled to width.
func (mp *MapPainter) Blit(dst *ebiten.Image, width int) {
	if mp.img == nil || mp.w == 0 {
		return
	}
	scale := float64(width) / float64(mp.w)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(mp.img, op)
}

// Size returns the dimensions of the uploaded map.
func (mp *MapPainter) Size() (int, int) { return mp.w, mp.h }
