// Package mods holds the concrete deformation mods. Every type registers itself
// with the core registry from init, so importing the package for its side
// effects makes the types available to reconciliation.
package mods

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ojrac/opensimplex-go"
)

// octaveNoise sums octaves of normalized simplex noise sampled on the unit
// sphere. Values are in [0, 1].
type octaveNoise struct {
	os         opensimplex.Noise
	frequency  float64
	amplitudes []float64
	total      float64
}

func newOctaveNoise(seed int64, frequency float64, octaves int, persistence float64) *octaveNoise {
	if octaves < 1 {
		octaves = 1
	}
	n := &octaveNoise{
		os:         opensimplex.NewNormalized(seed),
		frequency:  frequency,
		amplitudes: make([]float64, octaves),
	}
	for i := range n.amplitudes {
		n.amplitudes[i] = math.Pow(persistence, float64(i))
		n.total += n.amplitudes[i]
	}
	if n.total == 0 {
		n.total = 1
	}
	return n
}

func (n *octaveNoise) eval(dir mgl64.Vec3) float64 {
	var sum float64
	f := n.frequency
	for _, amp := range n.amplitudes {
		sum += amp * n.os.Eval3(dir[0]*f, dir[1]*f, dir[2]*f)
		f *= 2
	}
	return sum / n.total
}

// signed maps the noise to [-1, 1].
func (n *octaveNoise) signed(dir mgl64.Vec3) float64 {
	return n.eval(dir)*2 - 1
}
