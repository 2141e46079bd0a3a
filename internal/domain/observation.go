package domain

// GroupObservation is the observed outcome of one arm of an A/B test.
type GroupObservation struct {
	Trials    int64 `json:"trials"`
	Successes int64 `json:"successes"`
}

// Failures returns trials minus successes.
func (o GroupObservation) Failures() int64 {
	return o.Trials - o.Successes
}

// Rate returns the observed success rate, or 0 when there are no trials.
func (o GroupObservation) Rate() float64 {
	if o.Trials == 0 {
		return 0
	}
	return float64(o.Successes) / float64(o.Trials)
}

// Posterior returns the Beta posterior under a uniform Beta(1,1) prior.
func (o GroupObservation) Posterior() (BetaPosterior, error) {
	return o.posterior("")
}

func (o GroupObservation) posterior(group string) (BetaPosterior, error) {
	alpha := float64(o.Successes + 1)
	beta := float64(o.Trials - o.Successes + 1)
	if o.Trials < 0 || o.Successes < 0 || o.Successes > o.Trials {
		return BetaPosterior{}, &ShapeError{
			Group:     group,
			Trials:    o.Trials,
			Successes: o.Successes,
			Alpha:     alpha,
			Beta:      beta,
		}
	}
	return BetaPosterior{Alpha: alpha, Beta: beta}, nil
}
