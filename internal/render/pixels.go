// Package render converts sampled raster buffers into pixel data for PNG
// export and on-screen preview.
package render

import (
	"image"

	"stellarator/internal/core"
)

// fillColorsRGBA converts float colors into non-premultiplied RGBA bytes in buf.
func fillColorsRGBA(buf []byte, colors []core.Color) {
	for i, c := range colors {
		n := c.NRGBA()
		base := i * 4
		buf[base+0] = n.R
		buf[base+1] = n.G
		buf[base+2] = n.B
		buf[base+3] = n.A
	}
}

func grayLevel(v float64) uint8 {
	return uint8(core.Clamp01(v)*255 + 0.5)
}

// ColorImage builds an NRGBA image from a row-major color buffer.
func ColorImage(w, h int, colors []core.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	fillColorsRGBA(img.Pix, colors[:min(len(colors), w*h)])
	return img
}

// GrayImage builds a grayscale image from a row-major buffer of values in [0, 1].
func GrayImage(w, h int, values []float64) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i, v := range values[:min(len(values), w*h)] {
		img.Pix[i] = grayLevel(v)
	}
	return img
}
