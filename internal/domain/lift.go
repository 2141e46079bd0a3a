package domain

import (
	"fmt"
	"math"
	"slices"

	"github.com/aclements/go-moremath/stats"
	gstat "gonum.org/v1/gonum/stat"
)

const (
	DefaultSampleSize  = 100_000
	DefaultBinSize     = 0.005
	DefaultCurvePoints = 500

	// maxHistogramBins caps the histogram; wider lift ranges get wider bins.
	maxHistogramBins = 2000
)

// Seeds fixes the random streams of the two groups so analyses are reproducible.
type Seeds struct {
	Control    uint64 `json:"control"`
	Experiment uint64 `json:"experiment"`
}

// DefaultSeeds are the seeds used when the caller has no preference.
var DefaultSeeds = Seeds{Control: 1, Experiment: 2}

// LiftSample holds the relative lift (e-c)/c of paired posterior draws.
type LiftSample []float64

// FractionAbove returns the share of draws strictly greater than threshold.
func (s LiftSample) FractionAbove(threshold float64) float64 {
	if len(s) == 0 {
		return 0
	}
	n := 0
	for _, x := range s {
		if x > threshold {
			n++
		}
	}
	return float64(n) / float64(len(s))
}

// LiftSummary describes the lift sample.
type LiftSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
}

// HistogramBin is one bar of the lift histogram, normalised to a density.
type HistogramBin struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Density float64 `json:"density"`
}

// LiftAnalysis is the result of Analyze.
type LiftAnalysis struct {
	Control       BetaPosterior  `json:"control"`
	Experiment    BetaPosterior  `json:"experiment"`
	Threshold     float64        `json:"threshold"`
	Seeds         Seeds          `json:"seeds"`
	SampleSize    int            `json:"sample_size"`
	ExcludedDraws int            `json:"excluded_draws"`
	Probability   float64        `json:"probability"`
	Verdict       Verdict        `json:"verdict"`
	Curve         DensityCurve   `json:"curve"`
	Histogram     []HistogramBin `json:"histogram"`
	Summary       LiftSummary    `json:"summary"`
}

type liftOptions struct {
	sampleSize  int
	binSize     float64
	curvePoints int
	bounds      DecisionBounds
	draw        func(p BetaPosterior, n int, seed uint64) []float64
}

// LiftOption customises Analyze.
type LiftOption func(*liftOptions)

// WithSampleSize sets the number of draws per group.
func WithSampleSize(n int) LiftOption {
	return func(o *liftOptions) { o.sampleSize = n }
}

// WithBinSize sets the histogram bin width.
func WithBinSize(w float64) LiftOption {
	return func(o *liftOptions) { o.binSize = w }
}

// WithCurvePoints sets how many points the density curve is evaluated on.
func WithCurvePoints(n int) LiftOption {
	return func(o *liftOptions) { o.curvePoints = n }
}

// WithDecisionBounds overrides the win/lose probabilities.
func WithDecisionBounds(b DecisionBounds) LiftOption {
	return func(o *liftOptions) { o.bounds = b }
}

func (o liftOptions) validate() error {
	switch {
	case o.sampleSize <= 0:
		return fmt.Errorf("%w: sample size %d", ErrInvalidOptions, o.sampleSize)
	case !(o.binSize > 0):
		return fmt.Errorf("%w: bin size %g", ErrInvalidOptions, o.binSize)
	case o.curvePoints < 2:
		return fmt.Errorf("%w: curve points %d", ErrInvalidOptions, o.curvePoints)
	case !o.bounds.Valid():
		return fmt.Errorf("%w: decision bounds %+v", ErrInvalidOptions, o.bounds)
	}
	return nil
}

// Analyze estimates the probability that the experiment's relative lift over
// the control exceeds threshold, by sampling both posteriors with fixed seeds.
//
// Paired draws whose control value is exactly zero have no defined lift; they
// are dropped and counted in ExcludedDraws. If nothing remains the call fails
// with a *LiftError.
func Analyze(ctl, exp GroupObservation, threshold float64, seeds Seeds, opts ...LiftOption) (*LiftAnalysis, error) {
	o := liftOptions{
		sampleSize:  DefaultSampleSize,
		binSize:     DefaultBinSize,
		curvePoints: DefaultCurvePoints,
		bounds:      DefaultDecisionBounds,
		draw:        BetaPosterior.Sample,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	ctlPost, err := ctl.posterior("control")
	if err != nil {
		return nil, err
	}
	expPost, err := exp.posterior("experiment")
	if err != nil {
		return nil, err
	}

	ctlDraws := o.draw(ctlPost, o.sampleSize, seeds.Control)
	expDraws := o.draw(expPost, o.sampleSize, seeds.Experiment)

	lift, excluded := relativeLift(ctlDraws, expDraws)
	if len(lift) == 0 {
		return nil, &LiftError{Excluded: excluded, Total: o.sampleSize}
	}

	prob := lift.FractionAbove(threshold)

	return &LiftAnalysis{
		Control:       ctlPost,
		Experiment:    expPost,
		Threshold:     threshold,
		Seeds:         seeds,
		SampleSize:    o.sampleSize,
		ExcludedDraws: excluded,
		Probability:   prob,
		Verdict:       o.bounds.Classify(prob),
		Curve:         kernelDensity(lift, o.curvePoints),
		Histogram:     histogram(lift, o.binSize),
		Summary:       summarize(lift),
	}, nil
}

func relativeLift(ctl, exp []float64) (LiftSample, int) {
	lift := make(LiftSample, 0, len(ctl))
	excluded := 0
	for i, c := range ctl {
		if c == 0 {
			excluded++
			continue
		}
		l := (exp[i] - c) / c
		if math.IsNaN(l) || math.IsInf(l, 0) {
			excluded++
			continue
		}
		lift = append(lift, l)
	}
	return lift, excluded
}

// scottBandwidth is σ·n^(-1/5), the Scott factor scaled by the sample
// deviation. stats.BandwidthScott uses the narrower 1.06·min(σ, IQR/1.349) rule.
func scottBandwidth(sample stats.Sample) float64 {
	return sample.StdDev() * math.Pow(float64(len(sample.Xs)), -0.2)
}

// kernelDensity evaluates a Gaussian KDE on n evenly spaced points between
// the smallest and largest draw.
func kernelDensity(lift LiftSample, n int) DensityCurve {
	sample := stats.Sample{Xs: lift}
	lo, hi := sample.Bounds()
	bw := scottBandwidth(sample)
	if lo == hi || !(bw > 0) {
		// All draws coincide; there is no density to draw.
		return nil
	}
	kde := stats.KDE{
		Sample:    sample,
		Kernel:    stats.GaussianKernel,
		Bandwidth: bw,
	}
	grid := Linspace(lo, hi, n)
	curve := make(DensityCurve, len(grid))
	for i, x := range grid {
		curve[i] = Point{X: x, Y: kde.PDF(x)}
	}
	return curve
}

func histogram(lift LiftSample, binSize float64) []HistogramBin {
	sample := stats.Sample{Xs: lift}
	lo, hi := sample.Bounds()
	if lo == hi {
		return []HistogramBin{{Start: lo, End: lo + binSize, Density: 1 / binSize}}
	}
	nbins := int(math.Ceil((hi - lo) / binSize))
	if nbins > maxHistogramBins {
		nbins = maxHistogramBins
		binSize = (hi - lo) / float64(nbins)
	}
	// Extend the upper edge so the maximum lands inside the last bin.
	upper := lo + float64(nbins)*binSize
	if upper <= hi {
		upper = math.Nextafter(hi, math.Inf(1))
	}
	h := stats.NewLinearHist(lo, upper, nbins)
	for _, x := range lift {
		h.Add(x)
	}
	_, counts, _ := h.Counts()
	width := (upper - lo) / float64(nbins)
	total := float64(len(lift))
	bins := make([]HistogramBin, len(counts))
	for i, c := range counts {
		start := lo + float64(i)*width
		bins[i] = HistogramBin{
			Start:   start,
			End:     start + width,
			Density: float64(c) / (total * width),
		}
	}
	return bins
}

func summarize(lift LiftSample) LiftSummary {
	sorted := slices.Clone([]float64(lift))
	slices.Sort(sorted)
	return LiftSummary{
		Mean:   gstat.Mean(sorted, nil),
		Median: gstat.Quantile(0.5, gstat.Empirical, sorted, nil),
		Lower:  gstat.Quantile((1-CredibleMass)/2, gstat.Empirical, sorted, nil),
		Upper:  gstat.Quantile(1-(1-CredibleMass)/2, gstat.Empirical, sorted, nil),
	}
}
