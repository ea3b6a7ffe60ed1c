package render

import (
	"testing"

	"stellarator/internal/core"
)

func TestFillColorsRGBA(t *testing.T) {
	buf := make([]byte, 8)
	fillColorsRGBA(buf, []core.Color{{R: 1, G: 0, B: 0.5, A: 1}, {R: 2, G: -1, B: 0, A: 0}})
	want := []byte{255, 0, 128, 255, 255, 0, 0, 0}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d: got %d want %d", i, buf[i], want[i])
		}
	}
}

func TestGrayImages(t *testing.T) {
	vals := []float64{0, 0.5, 1, 3}
	g := GrayImage(2, 2, vals)
	if g.Pix[0] != 0 || g.Pix[1] != 128 || g.Pix[2] != 255 || g.Pix[3] != 255 {
		t.Fatalf("unexpected gray pixels %v", g.Pix)
	}
	c := ColorImage(1, 1, []core.Color{{R: 0.5, G: 0.5, B: 0.5, A: 1}, core.White})
	if len(c.Pix) != 4 || c.Pix[0] != 128 {
		t.Fatalf("unexpected color pixels %v", c.Pix)
	}
}
