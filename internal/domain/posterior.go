package domain

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// BetaPosterior is a Beta(Alpha, Beta) distribution over a success rate.
type BetaPosterior struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
}

func (b BetaPosterior) dist(src rand.Source) distuv.Beta {
	return distuv.Beta{Alpha: b.Alpha, Beta: b.Beta, Src: src}
}

// Valid reports whether both shape parameters are strictly positive.
func (b BetaPosterior) Valid() bool {
	return b.Alpha > 0 && b.Beta > 0
}

// PDF evaluates the density at x. The endpoints use the analytic limit so a
// shape parameter of exactly 1 gives a finite value there.
func (b BetaPosterior) PDF(x float64) float64 {
	switch {
	case x < 0 || x > 1:
		return 0
	case x == 0:
		if b.Alpha == 1 {
			return b.Beta
		}
		return 0
	case x == 1:
		if b.Beta == 1 {
			return b.Alpha
		}
		return 0
	}
	return b.dist(nil).Prob(x)
}

// Density evaluates the pdf at each grid point.
func (b BetaPosterior) Density(grid []float64) DensityCurve {
	curve := make(DensityCurve, len(grid))
	for i, x := range grid {
		curve[i] = Point{X: x, Y: b.PDF(x)}
	}
	return curve
}

// Sample draws n independent values using a PCG source seeded with seed.
// The same seed always yields the same draws.
func (b BetaPosterior) Sample(n int, seed uint64) []float64 {
	if n <= 0 {
		return nil
	}
	d := b.dist(rand.NewPCG(seed, seed))
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = d.Rand()
	}
	return xs
}

// Mean returns the posterior mean α/(α+β).
func (b BetaPosterior) Mean() float64 {
	return b.Alpha / (b.Alpha + b.Beta)
}

// CredibleInterval returns the equal-tailed interval holding mass of the
// posterior probability.
func (b BetaPosterior) CredibleInterval(mass float64) (lo, hi float64) {
	if mass <= 0 || mass >= 1 || math.IsNaN(mass) {
		return b.Mean(), b.Mean()
	}
	tail := (1 - mass) / 2
	d := b.dist(nil)
	return d.Quantile(tail), d.Quantile(1 - tail)
}

// GridSize is the number of points used to draw the posterior: ten times the
// larger shape parameter.
func (b BetaPosterior) GridSize() int {
	return int(10 * math.Max(b.Alpha, b.Beta))
}
