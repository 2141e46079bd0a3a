package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupObservation_Posterior(t *testing.T) {
	tests := []struct {
		name      string
		obs       GroupObservation
		wantAlpha float64
		wantBeta  float64
		wantErr   bool
	}{
		{name: "no data", obs: GroupObservation{}, wantAlpha: 1, wantBeta: 1},
		{name: "typical", obs: GroupObservation{Trials: 1000, Successes: 100}, wantAlpha: 101, wantBeta: 901},
		{name: "all successes", obs: GroupObservation{Trials: 10, Successes: 10}, wantAlpha: 11, wantBeta: 1},
		{name: "successes exceed trials", obs: GroupObservation{Trials: 5, Successes: 10}, wantErr: true},
		{name: "negative trials", obs: GroupObservation{Trials: -1, Successes: 0}, wantErr: true},
		{name: "negative successes", obs: GroupObservation{Trials: 3, Successes: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post, err := tt.obs.Posterior()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidShapeParameters)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAlpha, post.Alpha)
			assert.Equal(t, tt.wantBeta, post.Beta)
		})
	}
}

func TestShapeError_CarriesGroup(t *testing.T) {
	_, err := GroupObservation{Trials: 5, Successes: 10}.posterior("control")

	var se *ShapeError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "control", se.Group)
	assert.Equal(t, float64(-4), se.Beta)
	assert.Contains(t, err.Error(), "control")
}

func TestBetaPosterior_PDFEndpoints(t *testing.T) {
	uniform := BetaPosterior{Alpha: 1, Beta: 1}
	assert.Equal(t, 1.0, uniform.PDF(0))
	assert.Equal(t, 1.0, uniform.PDF(1))

	skewed := BetaPosterior{Alpha: 11, Beta: 1}
	assert.Equal(t, 0.0, skewed.PDF(0))
	assert.Equal(t, 11.0, skewed.PDF(1))

	assert.Equal(t, 0.0, skewed.PDF(-0.1))
	assert.Equal(t, 0.0, skewed.PDF(1.1))
}

func TestBetaPosterior_SampleIsSeeded(t *testing.T) {
	post := BetaPosterior{Alpha: 11, Beta: 91}

	a := post.Sample(1000, 7)
	b := post.Sample(1000, 7)
	c := post.Sample(1000, 8)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	for _, x := range a {
		assert.True(t, x >= 0 && x <= 1, "draw %v outside [0,1]", x)
	}
}

func TestBetaPosterior_SampleMean(t *testing.T) {
	post := BetaPosterior{Alpha: 101, Beta: 901}
	draws := post.Sample(50_000, 1)

	var sum float64
	for _, x := range draws {
		sum += x
	}
	assert.InDelta(t, post.Mean(), sum/float64(len(draws)), 0.001)
}

func TestBetaPosterior_SampleNonPositive(t *testing.T) {
	assert.Nil(t, BetaPosterior{Alpha: 1, Beta: 1}.Sample(0, 1))
}

func TestBetaPosterior_CredibleInterval(t *testing.T) {
	post := BetaPosterior{Alpha: 1, Beta: 1}
	lo, hi := post.CredibleInterval(0.95)
	assert.InDelta(t, 0.025, lo, 1e-9)
	assert.InDelta(t, 0.975, hi, 1e-9)

	lo, hi = post.CredibleInterval(0)
	assert.Equal(t, 0.5, lo)
	assert.Equal(t, 0.5, hi)
}

func TestLinspace(t *testing.T) {
	assert.Nil(t, Linspace(0, 1, 0))
	assert.Equal(t, []float64{0.25}, Linspace(0.25, 1, 1))

	xs := Linspace(0, 1, 5)
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, xs)

	xs = Linspace(0, 1, 1003)
	assert.Equal(t, 1.0, xs[len(xs)-1])
	for i := 1; i < len(xs); i++ {
		assert.GreaterOrEqual(t, xs[i], xs[i-1])
	}
}

func TestDensityCurve_MaxY(t *testing.T) {
	c := DensityCurve{{0, 1}, {0.5, 3}, {1, 2}}
	assert.Equal(t, 3.0, c.MaxY())
	assert.Equal(t, []float64{0, 0.5, 1}, c.Xs())
	assert.Equal(t, []float64{1, 3, 2}, c.Ys())
	assert.Equal(t, 0.0, DensityCurve(nil).MaxY())
	assert.False(t, math.IsNaN(c.MaxY()))
}
