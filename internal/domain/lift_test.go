package domain

import (
	"math"
	"testing"

	"github.com/aclements/go-moremath/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		ctl, exp    GroupObservation
		threshold   float64
		wantVerdict Verdict
		check       func(t *testing.T, p float64)
	}{
		{
			name:        "experiment clearly better",
			ctl:         GroupObservation{Trials: 1000, Successes: 100},
			exp:         GroupObservation{Trials: 1000, Successes: 150},
			wantVerdict: ExperimentWins,
			check:       func(t *testing.T, p float64) { assert.Greater(t, p, 0.95) },
		},
		{
			name:        "control clearly better",
			ctl:         GroupObservation{Trials: 1000, Successes: 150},
			exp:         GroupObservation{Trials: 1000, Successes: 100},
			wantVerdict: ControlWins,
			check:       func(t *testing.T, p float64) { assert.Less(t, p, 0.05) },
		},
		{
			name:        "too close to call",
			ctl:         GroupObservation{Trials: 1000, Successes: 100},
			exp:         GroupObservation{Trials: 1000, Successes: 102},
			wantVerdict: Inconclusive,
			check:       func(t *testing.T, p float64) { assert.InDelta(t, 0.5, p, 0.2) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Analyze(tt.ctl, tt.exp, tt.threshold, DefaultSeeds)
			require.NoError(t, err)

			tt.check(t, a.Probability)
			assert.Equal(t, tt.wantVerdict, a.Verdict)
			assert.Equal(t, DefaultSampleSize, a.SampleSize)
			assert.Zero(t, a.ExcludedDraws)
			assert.Len(t, a.Curve, DefaultCurvePoints)
			assert.NotEmpty(t, a.Histogram)
		})
	}
}

func TestAnalyze_HighThresholdFlipsVerdict(t *testing.T) {
	ctl := GroupObservation{Trials: 1000, Successes: 100}
	exp := GroupObservation{Trials: 1000, Successes: 150}

	a, err := Analyze(ctl, exp, 1.5, DefaultSeeds)
	require.NoError(t, err)
	assert.Equal(t, ControlWins, a.Verdict)
}

func TestAnalyze_Reproducible(t *testing.T) {
	ctl := GroupObservation{Trials: 500, Successes: 40}
	exp := GroupObservation{Trials: 480, Successes: 45}

	a, err := Analyze(ctl, exp, 0.05, DefaultSeeds, WithSampleSize(20_000))
	require.NoError(t, err)
	b, err := Analyze(ctl, exp, 0.05, DefaultSeeds, WithSampleSize(20_000))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Analyze(ctl, exp, 0.05, Seeds{Control: 3, Experiment: 4}, WithSampleSize(20_000))
	require.NoError(t, err)
	assert.NotEqual(t, a.Probability, c.Probability)
}

func TestAnalyze_RejectsInvalidGroups(t *testing.T) {
	ok := GroupObservation{Trials: 10, Successes: 1}
	bad := GroupObservation{Trials: 5, Successes: 10}

	_, err := Analyze(bad, ok, 0, DefaultSeeds)
	var se *ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "control", se.Group)

	_, err = Analyze(ok, bad, 0, DefaultSeeds)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "experiment", se.Group)
	assert.ErrorIs(t, err, ErrInvalidShapeParameters)
}

func TestAnalyze_RejectsInvalidOptions(t *testing.T) {
	obs := GroupObservation{Trials: 10, Successes: 1}
	opts := []LiftOption{
		WithSampleSize(0),
		WithBinSize(0),
		WithCurvePoints(1),
		WithDecisionBounds(DecisionBounds{Win: 0.5, Lose: 0.6}),
	}
	for _, opt := range opts {
		_, err := Analyze(obs, obs, 0, DefaultSeeds, opt)
		assert.ErrorIs(t, err, ErrInvalidOptions)
	}
}

func TestAnalyze_SummaryAndCurve(t *testing.T) {
	ctl := GroupObservation{Trials: 1000, Successes: 100}
	exp := GroupObservation{Trials: 1000, Successes: 150}

	a, err := Analyze(ctl, exp, 0, DefaultSeeds, WithSampleSize(20_000), WithCurvePoints(200))
	require.NoError(t, err)

	assert.InDelta(t, 0.5, a.Summary.Mean, 0.05)
	assert.Less(t, a.Summary.Lower, a.Summary.Median)
	assert.Greater(t, a.Summary.Upper, a.Summary.Median)

	require.Len(t, a.Curve, 200)
	for i := 1; i < len(a.Curve); i++ {
		assert.Greater(t, a.Curve[i].X, a.Curve[i-1].X)
	}

	// Histogram densities integrate to one.
	var area float64
	for _, b := range a.Histogram {
		area += b.Density * (b.End - b.Start)
	}
	assert.InDelta(t, 1.0, area, 1e-6)
}

func TestRelativeLift_ExcludesZeroControl(t *testing.T) {
	lift, excluded := relativeLift([]float64{0, 0.1, 0.2}, []float64{0.5, 0.15, 0.1})
	assert.Equal(t, 1, excluded)
	require.Len(t, lift, 2)
	assert.InDelta(t, 0.5, lift[0], 1e-12)
	assert.InDelta(t, -0.5, lift[1], 1e-12)

	lift, excluded = relativeLift([]float64{0, 0}, []float64{0.1, 0.2})
	assert.Empty(t, lift)
	assert.Equal(t, 2, excluded)
}

func TestLiftSample_FractionAbove(t *testing.T) {
	s := LiftSample{-0.1, 0, 0.1, 0.2}
	assert.Equal(t, 0.5, s.FractionAbove(0))
	assert.Equal(t, 0.0, s.FractionAbove(0.2))
	assert.Equal(t, 0.0, LiftSample{}.FractionAbove(0))
}

func TestHistogram_CapsBins(t *testing.T) {
	lift := LiftSample{0, 100}
	bins := histogram(lift, 0.005)
	assert.Len(t, bins, maxHistogramBins)

	var area float64
	for _, b := range bins {
		area += b.Density * (b.End - b.Start)
	}
	assert.InDelta(t, 1.0, area, 1e-9)
}

func TestKernelDensity_Degenerate(t *testing.T) {
	assert.Nil(t, kernelDensity(LiftSample{0.3, 0.3}, 10))
}

func TestLiftError(t *testing.T) {
	err := &LiftError{Excluded: 5, Total: 5}
	assert.ErrorIs(t, err, ErrDivisionByZeroLift)
	assert.Contains(t, err.Error(), "5 of 5")
}

func withDraws(fn func(p BetaPosterior, n int, seed uint64) []float64) LiftOption {
	return func(o *liftOptions) { o.draw = fn }
}

func TestAnalyze_AllControlDrawsZero(t *testing.T) {
	ctl := GroupObservation{Trials: 10, Successes: 0}
	exp := GroupObservation{Trials: 10, Successes: 5}

	zeroControl := withDraws(func(p BetaPosterior, n int, seed uint64) []float64 {
		if seed == DefaultSeeds.Control {
			return make([]float64, n)
		}
		return p.Sample(n, seed)
	})

	a, err := Analyze(ctl, exp, 0, DefaultSeeds, WithSampleSize(50), zeroControl)
	assert.Nil(t, a)
	require.ErrorIs(t, err, ErrDivisionByZeroLift)

	var liftErr *LiftError
	require.ErrorAs(t, err, &liftErr)
	assert.Equal(t, 50, liftErr.Excluded)
	assert.Equal(t, 50, liftErr.Total)
}

func TestAnalyze_SomeControlDrawsZero(t *testing.T) {
	ctl := GroupObservation{Trials: 10, Successes: 1}
	exp := GroupObservation{Trials: 10, Successes: 5}

	halfZero := withDraws(func(p BetaPosterior, n int, seed uint64) []float64 {
		draws := p.Sample(n, seed)
		if seed == DefaultSeeds.Control {
			for i := 0; i < n; i += 2 {
				draws[i] = 0
			}
		}
		return draws
	})

	a, err := Analyze(ctl, exp, 0, DefaultSeeds, WithSampleSize(100), WithCurvePoints(20), halfZero)
	require.NoError(t, err)
	assert.Equal(t, 50, a.ExcludedDraws)
	assert.Equal(t, 100, a.SampleSize)
}

func TestScottBandwidth(t *testing.T) {
	// σ = 1 for {-1, 0, 1} with the unbiased estimator.
	sample := stats.Sample{Xs: []float64{-1, 0, 1}}
	assert.InDelta(t, math.Pow(3, -0.2), scottBandwidth(sample), 1e-12)
}
