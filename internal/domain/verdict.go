package domain

import "fmt"

// Verdict is the outcome of a lift analysis.
type Verdict int

const (
	Inconclusive Verdict = iota
	ExperimentWins
	ControlWins
)

func (v Verdict) String() string {
	switch v {
	case ExperimentWins:
		return "experiment_wins"
	case ControlWins:
		return "control_wins"
	default:
		return "inconclusive"
	}
}

// Headline is the sentence shown to the user for the verdict.
func (v Verdict) Headline() string {
	switch v {
	case ExperimentWins:
		return "Experiment group is the winner!"
	case ControlWins:
		return "Control group is the winner!"
	default:
		return "The result is inconclusive. Keep running to get more data."
	}
}

// ParseVerdict is the inverse of Verdict.String.
func ParseVerdict(s string) (Verdict, error) {
	switch s {
	case "experiment_wins":
		return ExperimentWins, nil
	case "control_wins":
		return ControlWins, nil
	case "inconclusive":
		return Inconclusive, nil
	}
	return Inconclusive, fmt.Errorf("unknown verdict %q", s)
}

func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Verdict) UnmarshalText(b []byte) error {
	parsed, err := ParseVerdict(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// DecisionBounds are the tail probabilities at which a winner is declared.
type DecisionBounds struct {
	Win  float64 // probability at or above which the experiment wins
	Lose float64 // probability at or below which the control wins
}

// DefaultDecisionBounds requires 95% probability either way.
var DefaultDecisionBounds = DecisionBounds{Win: 0.95, Lose: 0.05}

// Valid reports whether 0 < Lose < Win < 1.
func (d DecisionBounds) Valid() bool {
	return d.Lose > 0 && d.Lose < d.Win && d.Win < 1
}

// Classify maps the probability that lift exceeds the threshold to a verdict.
func (d DecisionBounds) Classify(probability float64) Verdict {
	switch {
	case probability >= d.Win:
		return ExperimentWins
	case probability <= d.Lose:
		return ControlWins
	default:
		return Inconclusive
	}
}
