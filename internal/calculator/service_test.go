package calculator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/bayesab/internal/domain"
	"github.com/emiliopalmerini/bayesab/internal/ports"
)

type recordingRecorder struct {
	mu    sync.Mutex
	calls []ports.Calculation
	err   error
}

func (r *recordingRecorder) RecordCalculation(_ context.Context, c ports.Calculation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

func (r *recordingRecorder) Close(context.Context) error { return r.err }

func (r *recordingRecorder) byOp(op string) []ports.Calculation {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ports.Calculation
	for _, c := range r.calls {
		if c.Operation == op {
			out = append(out, c)
		}
	}
	return out
}

func testSettings() Settings {
	return Settings{
		Seeds:   domain.DefaultSeeds,
		Options: []domain.LiftOption{domain.WithSampleSize(20_000), domain.WithCurvePoints(100)},
	}
}

var winning = Input{
	ControlTrials:       1000,
	ControlSuccesses:    100,
	ExperimentTrials:    1000,
	ExperimentSuccesses: 150,
}

func TestInput_Validate(t *testing.T) {
	assert.NoError(t, winning.Validate())

	bad := winning
	bad.ControlTrials = -1
	assert.ErrorIs(t, bad.Validate(), ErrInvalidInput)

	bad = winning
	bad.MinLift = 1.5
	err := bad.Validate()
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "MinLift")

	bad = winning
	bad.ExperimentTrials = MaxTrials + 1
	err = bad.Validate()
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "ExperimentTrials must be lte 250000")

	atLimit := winning
	atLimit.ControlTrials = MaxTrials
	assert.NoError(t, atLimit.Validate())

	// successes > trials is left to the posterior
	over := winning
	over.ControlSuccesses = 2000
	assert.NoError(t, over.Validate())
}

func TestService_Evaluate(t *testing.T) {
	rec := &recordingRecorder{}
	svc := NewService(testSettings(), rec, nil)

	res, err := svc.Evaluate(context.Background(), winning)
	require.NoError(t, err)

	assert.Equal(t, "control", res.Posteriors.Control.Group)
	assert.Equal(t, "experiment", res.Posteriors.Experiment.Group)
	assert.Equal(t, domain.ExperimentWins, res.Lift.Verdict)
	assert.Equal(t, domain.DefaultSeeds, res.Lift.Seeds)
	assert.Len(t, res.Lift.Curve, 100)

	require.Len(t, rec.byOp(ports.OpEstimate), 1)
	analyses := rec.byOp(ports.OpAnalyze)
	require.Len(t, analyses, 1)
	assert.Equal(t, "experiment_wins", analyses[0].Verdict)
	assert.NoError(t, analyses[0].Err)
}

func TestService_EvaluateShapeError(t *testing.T) {
	rec := &recordingRecorder{}
	svc := NewService(testSettings(), rec, nil)

	in := winning
	in.ControlTrials, in.ControlSuccesses = 5, 10
	_, err := svc.Evaluate(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidShapeParameters)

	for _, c := range rec.byOp(ports.OpEstimate) {
		assert.Error(t, c.Err)
	}
}

func TestService_Deterministic(t *testing.T) {
	svc := NewService(testSettings(), nil, nil)
	a, err := svc.Lift(context.Background(), winning)
	require.NoError(t, err)
	b, err := svc.Lift(context.Background(), winning)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestService_PersistenceDisabled(t *testing.T) {
	svc := NewService(testSettings(), nil, nil)
	ctx := context.Background()

	assert.False(t, svc.PersistenceEnabled())
	_, err := svc.Save(ctx, "x", winning)
	assert.ErrorIs(t, err, ErrPersistenceDisabled)
	_, err = svc.Readouts(ctx, 10)
	assert.ErrorIs(t, err, ErrPersistenceDisabled)
	_, err = svc.Readout(ctx, "id")
	assert.ErrorIs(t, err, ErrPersistenceDisabled)
	assert.ErrorIs(t, svc.DeleteReadout(ctx, "id"), ErrPersistenceDisabled)
}

func TestService_Save(t *testing.T) {
	var saved *domain.Readout
	repo := &MockReadoutRepository{
		CreateFunc: func(ctx context.Context, ro *domain.Readout) error {
			saved = ro
			return nil
		},
	}
	svc := NewService(testSettings(), nil, repo)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	ro, err := svc.Save(context.Background(), "", winning)
	require.NoError(t, err)

	require.Same(t, ro, saved)
	assert.NotEmpty(t, ro.ID)
	assert.Equal(t, "Untitled readout", ro.Name)
	assert.Equal(t, domain.ExperimentWins, ro.Verdict)
	assert.Equal(t, fixed, ro.CreatedAt)
	assert.Equal(t, 20_000, ro.SampleSize)
	assert.Equal(t, winning, InputFromReadout(ro))
}

func TestService_SaveAnalysisReusesLift(t *testing.T) {
	rec := &recordingRecorder{}
	var saved *domain.Readout
	repo := &MockReadoutRepository{
		CreateFunc: func(ctx context.Context, ro *domain.Readout) error {
			saved = ro
			return nil
		},
	}
	svc := NewService(testSettings(), rec, repo)
	ctx := context.Background()

	res, err := svc.Evaluate(ctx, winning)
	require.NoError(t, err)
	ro, err := svc.SaveAnalysis(ctx, "checkout", winning, res.Lift)
	require.NoError(t, err)

	require.Same(t, ro, saved)
	assert.Equal(t, res.Lift.Probability, ro.Probability)
	assert.Len(t, rec.byOp(ports.OpAnalyze), 1)

	_, err = svc.SaveAnalysis(ctx, "x", winning, nil)
	assert.Error(t, err)
}

func TestService_SaveRepositoryError(t *testing.T) {
	repo := &MockReadoutRepository{
		CreateFunc: func(ctx context.Context, ro *domain.Readout) error {
			return errors.New("disk full")
		},
	}
	svc := NewService(testSettings(), nil, repo)

	_, err := svc.Save(context.Background(), "x", winning)
	assert.ErrorContains(t, err, "disk full")
}

func TestRecorders_FanOut(t *testing.T) {
	a, b := &recordingRecorder{}, &recordingRecorder{err: errors.New("flush failed")}
	r := Recorders(a, b)

	r.RecordCalculation(context.Background(), ports.Calculation{Operation: ports.OpEstimate})
	assert.Len(t, a.calls, 1)
	assert.Len(t, b.calls, 1)
	assert.ErrorContains(t, r.Close(context.Background()), "flush failed")
}
