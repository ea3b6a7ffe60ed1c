package ui

// GridLines returns the screen positions of lines every step degrees across
// span degrees mapped onto size pixels, excluding both edges.
func GridLines(step, span, size float64) []float64 {
	if step <= 0 || span <= 0 {
		return nil
	}
	var out []float64
	for deg := step; deg < span; deg += step {
		out = append(out, deg/span*size)
	}
	return out
}
