package raster

import (
	"fmt"
	"strings"

	"stellarator/internal/core"
)

// Seam selects how neighbors across the image edges are addressed.
type Seam int

const (
	// SeamLegacy reads index width left of column 0 and index height above
	// row 0. With repeat addressing both land on the edge pixel itself, so the
	// first column and row see a one-sided gradient.
	SeamLegacy Seam = iota
	// SeamToroidal reads the opposite edge (width-1, height-1).
	SeamToroidal
)

func (s Seam) String() string {
	if s == SeamToroidal {
		return "toroidal"
	}
	return "legacy"
}

// ParseSeam accepts "legacy" and "toroidal".
func ParseSeam(s string) (Seam, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "legacy":
		return SeamLegacy, nil
	case "toroidal":
		return SeamToroidal, nil
	}
	return SeamLegacy, fmt.Errorf("unknown seam mode %q", s)
}

// MaxStrength bounds the normal-map strength.
const MaxStrength = 10

// Normals derives the packed two-channel normal map from the normalized
// heights: RGB carries the vertical gradient and alpha the horizontal one,
// both as ((a-b)+1)/2 of strength-scaled neighbors.
func (r *Raster) Normals(strength float64, seam Seam) []core.Color {
	return DeriveNormals(core.WrapFloatGrid(r.Width, r.Height, r.Heights), strength, seam)
}

// DeriveNormals computes the normal map of a height grid.
func DeriveNormals(g *core.FloatGrid, strength float64, seam Seam) []core.Color {
	strength = max(0, min(MaxStrength, strength))
	out := make([]core.Color, g.W*g.H)
	for by := 0; by < g.H; by++ {
		up, down := by-1, by+1
		if by == 0 {
			up = g.H
			if seam == SeamToroidal {
				up = g.H - 1
			}
		}
		for bx := 0; bx < g.W; bx++ {
			left, right := bx-1, bx+1
			if bx == 0 {
				left = g.W
				if seam == SeamToroidal {
					left = g.W - 1
				}
			}
			l := g.At(left, by) * strength
			r := g.At(right, by) * strength
			u := g.At(bx, up) * strength
			d := g.At(bx, down) * strength
			hg := ((l - r) + 1) * 0.5
			vg := ((u - d) + 1) * 0.5
			out[g.Index(bx, by)] = core.Color{R: vg, G: vg, B: vg, A: hg}
		}
	}
	return out
}
