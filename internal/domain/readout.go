package domain

import "time"

// Readout is a saved lift analysis: the inputs that produced it and its outcome.
type Readout struct {
	ID          string
	Name        string
	Control     GroupObservation
	Experiment  GroupObservation
	MinLift     float64
	Seeds       Seeds
	SampleSize  int
	Probability float64
	Verdict     Verdict
	CreatedAt   time.Time
}

// NewReadout captures an analysis under the given name.
func NewReadout(id, name string, ctl, exp GroupObservation, a *LiftAnalysis, now time.Time) *Readout {
	return &Readout{
		ID:          id,
		Name:        name,
		Control:     ctl,
		Experiment:  exp,
		MinLift:     a.Threshold,
		Seeds:       a.Seeds,
		SampleSize:  a.SampleSize,
		Probability: a.Probability,
		Verdict:     a.Verdict,
		CreatedAt:   now,
	}
}
