package core

import "math/rand/v2"

// Random is the draw surface every generation stage consumes. Stages take it
// explicitly so tests can hand in a scripted source.
type Random interface {
	IntN(n int) int
	Float64() float64
}

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// IntN returns a random int in [0, n). It returns 0 when n <= 0.
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.IntN(n)
}

// Float64 returns a random float in [0, 1).
func (r *RNG) Float64() float64 { return r.r.Float64() }

// Range returns a random float in [min, max).
func Range(r Random, min, max float64) float64 {
	if max < min {
		min, max = max, min
	}
	return min + r.Float64()*(max-min)
}

// Next returns a random int in [min, max).
func Next(r Random, min, max int) int {
	if max <= min {
		return min
	}
	return min + r.IntN(max-min)
}

// Chance reports true with the given probability in percent.
func Chance(r Random, prob int) bool {
	return r.IntN(100) < prob
}

// Color draws an opaque color with 8-bit channel resolution.
func Color(r Random) (red, green, blue uint8) {
	return uint8(r.IntN(256)), uint8(r.IntN(256)), uint8(r.IntN(256))
}
