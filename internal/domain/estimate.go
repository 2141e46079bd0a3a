package domain

// CredibleMass is the posterior mass of the interval reported next to each curve.
const CredibleMass = 0.95

// Estimate returns the posterior density of the success rate for a group with
// the given counts, sampled on 10*max(α,β) evenly spaced points over [0, 1].
func Estimate(trials, successes int64) (DensityCurve, error) {
	post, err := GroupObservation{Trials: trials, Successes: successes}.Posterior()
	if err != nil {
		return nil, err
	}
	return post.Density(Linspace(0, 1, post.GridSize())), nil
}

// PosteriorCurve is a labelled posterior ready to be drawn.
type PosteriorCurve struct {
	Group     string           `json:"group"`
	Observed  GroupObservation `json:"observed"`
	Posterior BetaPosterior    `json:"posterior"`
	Mean      float64          `json:"mean"`
	Lower     float64          `json:"lower"`
	Upper     float64          `json:"upper"`
	Curve     DensityCurve     `json:"curve"`
}

// EstimateGroup is Estimate for a labelled observation, with summary statistics.
func EstimateGroup(group string, obs GroupObservation) (*PosteriorCurve, error) {
	post, err := obs.posterior(group)
	if err != nil {
		return nil, err
	}
	lo, hi := post.CredibleInterval(CredibleMass)
	return &PosteriorCurve{
		Group:     group,
		Observed:  obs,
		Posterior: post,
		Mean:      post.Mean(),
		Lower:     lo,
		Upper:     hi,
		Curve:     post.Density(Linspace(0, 1, post.GridSize())),
	}, nil
}
