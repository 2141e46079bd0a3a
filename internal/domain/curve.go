package domain

// Point is a single (x, y) pair of a density curve.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DensityCurve is an ordered discretisation of a probability density, used only
// for rendering.
type DensityCurve []Point

// Xs returns the x coordinates of the curve.
func (c DensityCurve) Xs() []float64 {
	xs := make([]float64, len(c))
	for i, p := range c {
		xs[i] = p.X
	}
	return xs
}

// Ys returns the y coordinates of the curve.
func (c DensityCurve) Ys() []float64 {
	ys := make([]float64, len(c))
	for i, p := range c {
		ys[i] = p.Y
	}
	return ys
}

// MaxY returns the largest density value, or 0 for an empty curve.
func (c DensityCurve) MaxY() float64 {
	var m float64
	for _, p := range c {
		if p.Y > m {
			m = p.Y
		}
	}
	return m
}

// Linspace returns n evenly spaced values over the closed interval [start, stop].
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	xs := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range xs {
		xs[i] = start + float64(i)*step
	}
	// Pin the last point so rounding never pushes it past stop.
	xs[n-1] = stop
	return xs
}
