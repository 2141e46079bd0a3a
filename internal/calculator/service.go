package calculator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/bayesab/internal/domain"
	"github.com/emiliopalmerini/bayesab/internal/ports"
)

// ErrPersistenceDisabled is returned by readout operations when no repository
// is configured.
var ErrPersistenceDisabled = errors.New("readout storage is disabled")

// Posteriors holds the control and experiment posterior curves.
type Posteriors struct {
	Control    *domain.PosteriorCurve `json:"control"`
	Experiment *domain.PosteriorCurve `json:"experiment"`
}

// Result is a full evaluation of an Input.
type Result struct {
	Input      Input                `json:"input"`
	Posteriors *Posteriors          `json:"posteriors"`
	Lift       *domain.LiftAnalysis `json:"lift"`
}

// Settings are the analysis parameters applied to every call.
type Settings struct {
	Seeds   domain.Seeds
	Options []domain.LiftOption
}

// Service runs calculations, records metrics and manages saved readouts.
type Service struct {
	settings Settings
	metrics  ports.MetricsRecorder
	readouts ports.ReadoutRepository
	now      func() time.Time
}

// NewService creates a Service. readouts may be nil to disable persistence.
func NewService(settings Settings, metrics ports.MetricsRecorder, readouts ports.ReadoutRepository) *Service {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &Service{
		settings: settings,
		metrics:  metrics,
		readouts: readouts,
		now:      time.Now,
	}
}

// PersistenceEnabled reports whether readouts can be saved.
func (s *Service) PersistenceEnabled() bool {
	return s.readouts != nil
}

// Seeds returns the seeds used for lift analyses.
func (s *Service) Seeds() domain.Seeds {
	return s.settings.Seeds
}

// Posteriors computes both groups' posterior curves.
func (s *Service) Posteriors(ctx context.Context, in Input) (*Posteriors, error) {
	start := time.Now()
	p, err := s.posteriors(in)
	s.record(ctx, ports.Calculation{Operation: ports.OpEstimate, Duration: time.Since(start), Err: err})
	return p, err
}

func (s *Service) posteriors(in Input) (*Posteriors, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	ctl, err := domain.EstimateGroup("control", in.Control())
	if err != nil {
		return nil, err
	}
	exp, err := domain.EstimateGroup("experiment", in.Experiment())
	if err != nil {
		return nil, err
	}
	return &Posteriors{Control: ctl, Experiment: exp}, nil
}

// Lift runs the Monte Carlo lift analysis.
func (s *Service) Lift(ctx context.Context, in Input) (*domain.LiftAnalysis, error) {
	start := time.Now()
	a, err := s.lift(in)
	c := ports.Calculation{Operation: ports.OpAnalyze, Duration: time.Since(start), Err: err}
	if a != nil {
		c.Verdict = a.Verdict.String()
		c.Probability = a.Probability
	}
	s.record(ctx, c)
	return a, err
}

func (s *Service) lift(in Input) (*domain.LiftAnalysis, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return domain.Analyze(in.Control(), in.Experiment(), in.MinLift, s.settings.Seeds, s.settings.Options...)
}

// Evaluate computes posteriors and the lift analysis concurrently.
func (s *Service) Evaluate(ctx context.Context, in Input) (*Result, error) {
	res := &Result{Input: in}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		res.Posteriors, err = s.Posteriors(gctx, in)
		return err
	})
	g.Go(func() error {
		var err error
		res.Lift, err = s.Lift(gctx, in)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) record(ctx context.Context, c ports.Calculation) {
	s.metrics.RecordCalculation(ctx, c)

	fields := []zap.Field{
		zap.String("operation", c.Operation),
		zap.Duration("duration", c.Duration),
	}
	if c.Err != nil {
		zap.L().Warn("calculation failed", append(fields, zap.Error(c.Err))...)
		return
	}
	if c.Verdict != "" {
		fields = append(fields, zap.String("verdict", c.Verdict), zap.Float64("probability", c.Probability))
	}
	zap.L().Debug("calculation complete", fields...)
}

// Save evaluates the lift for in and stores it as a named readout.
func (s *Service) Save(ctx context.Context, name string, in Input) (*domain.Readout, error) {
	if s.readouts == nil {
		return nil, ErrPersistenceDisabled
	}
	a, err := s.Lift(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.SaveAnalysis(ctx, name, in, a)
}

// SaveAnalysis stores an analysis already computed for in as a named readout.
func (s *Service) SaveAnalysis(ctx context.Context, name string, in Input, a *domain.LiftAnalysis) (*domain.Readout, error) {
	if s.readouts == nil {
		return nil, ErrPersistenceDisabled
	}
	if a == nil {
		return nil, errors.New("no analysis to save")
	}
	if name == "" {
		name = "Untitled readout"
	}
	ro := domain.NewReadout(uuid.NewString(), name, in.Control(), in.Experiment(), a, s.now().UTC())
	if err := s.readouts.Create(ctx, ro); err != nil {
		return nil, fmt.Errorf("failed to save readout: %w", err)
	}
	zap.L().Info("readout saved",
		zap.String("id", ro.ID),
		zap.String("name", ro.Name),
		zap.String("verdict", ro.Verdict.String()),
	)
	return ro, nil
}

// Readouts lists saved readouts, newest first.
func (s *Service) Readouts(ctx context.Context, limit int) ([]*domain.Readout, error) {
	if s.readouts == nil {
		return nil, ErrPersistenceDisabled
	}
	return s.readouts.List(ctx, limit)
}

// Readout returns a saved readout, or nil if it doesn't exist.
func (s *Service) Readout(ctx context.Context, id string) (*domain.Readout, error) {
	if s.readouts == nil {
		return nil, ErrPersistenceDisabled
	}
	return s.readouts.GetByID(ctx, id)
}

// DeleteReadout removes a saved readout.
func (s *Service) DeleteReadout(ctx context.Context, id string) error {
	if s.readouts == nil {
		return ErrPersistenceDisabled
	}
	return s.readouts.Delete(ctx, id)
}

// InputFromReadout rebuilds the form input that produced a readout.
func InputFromReadout(ro *domain.Readout) Input {
	return Input{
		ControlTrials:       ro.Control.Trials,
		ControlSuccesses:    ro.Control.Successes,
		ExperimentTrials:    ro.Experiment.Trials,
		ExperimentSuccesses: ro.Experiment.Successes,
		MinLift:             ro.MinLift,
	}
}
