package core

// FloatGrid stores a 2D grid of float samples in row-major order.
type FloatGrid struct {
	W, H int
	data []float64
}

// NewFloatGrid allocates a grid with the given dimensions.
func NewFloatGrid(w, h int) *FloatGrid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &FloatGrid{W: w, H: h, data: make([]float64, w*h)}
}

// WrapFloatGrid views an existing slice as a grid. The slice must hold w*h values.
func WrapFloatGrid(w, h int, data []float64) *FloatGrid {
	return &FloatGrid{W: w, H: h, data: data}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *FloatGrid) Cells() []float64 { return g.data }

// Index returns the linear slice index for coordinates (x, y).
func (g *FloatGrid) Index(x, y int) int { return y*g.W + x }

// Wrap applies toroidal wrapping to the provided coordinates.
func (g *FloatGrid) Wrap(x, y int) (int, int) {
	x = (x%g.W + g.W) % g.W
	y = (y%g.H + g.H) % g.H
	return x, y
}

// At reads a cell with repeat addressing, so any coordinate is valid.
func (g *FloatGrid) At(x, y int) float64 {
	x, y = g.Wrap(x, y)
	return g.data[g.Index(x, y)]
}

// Set writes a cell. Coordinates must be in range.
func (g *FloatGrid) Set(x, y int, v float64) { g.data[g.Index(x, y)] = v }
