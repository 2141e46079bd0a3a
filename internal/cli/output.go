package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/emiliopalmerini/bayesab/internal/calculator"
	"github.com/emiliopalmerini/bayesab/internal/domain"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

// writeStructured encodes v as json or yaml.
func writeStructured(out io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return checkFormat(format)
	}
}

type groupReport struct {
	Trials    int64   `json:"trials" yaml:"trials"`
	Successes int64   `json:"successes" yaml:"successes"`
	Alpha     float64 `json:"alpha" yaml:"alpha"`
	Beta      float64 `json:"beta" yaml:"beta"`
	Mean      float64 `json:"mean" yaml:"mean"`
	Lower     float64 `json:"lower" yaml:"lower"`
	Upper     float64 `json:"upper" yaml:"upper"`
}

// analysisReport is the machine-readable form of an analysis, without curves.
type analysisReport struct {
	Control       groupReport  `json:"control" yaml:"control"`
	Experiment    groupReport  `json:"experiment" yaml:"experiment"`
	MinLift       float64      `json:"min_lift" yaml:"min_lift"`
	Probability   float64      `json:"probability" yaml:"probability"`
	Verdict       string       `json:"verdict" yaml:"verdict"`
	Headline      string       `json:"headline" yaml:"headline"`
	LiftMean      float64      `json:"lift_mean" yaml:"lift_mean"`
	LiftMedian    float64      `json:"lift_median" yaml:"lift_median"`
	LiftLower     float64      `json:"lift_lower" yaml:"lift_lower"`
	LiftUpper     float64      `json:"lift_upper" yaml:"lift_upper"`
	SampleSize    int          `json:"sample_size" yaml:"sample_size"`
	ExcludedDraws int          `json:"excluded_draws" yaml:"excluded_draws"`
	Seeds         domain.Seeds `json:"seeds" yaml:"seeds"`
}

func toGroupReport(pc *domain.PosteriorCurve) groupReport {
	return groupReport{
		Trials:    pc.Observed.Trials,
		Successes: pc.Observed.Successes,
		Alpha:     pc.Posterior.Alpha,
		Beta:      pc.Posterior.Beta,
		Mean:      pc.Mean,
		Lower:     pc.Lower,
		Upper:     pc.Upper,
	}
}

func toAnalysisReport(res *calculator.Result) analysisReport {
	a := res.Lift
	return analysisReport{
		Control:       toGroupReport(res.Posteriors.Control),
		Experiment:    toGroupReport(res.Posteriors.Experiment),
		MinLift:       a.Threshold,
		Probability:   a.Probability,
		Verdict:       a.Verdict.String(),
		Headline:      a.Verdict.Headline(),
		LiftMean:      a.Summary.Mean,
		LiftMedian:    a.Summary.Median,
		LiftLower:     a.Summary.Lower,
		LiftUpper:     a.Summary.Upper,
		SampleSize:    a.SampleSize,
		ExcludedDraws: a.ExcludedDraws,
		Seeds:         a.Seeds,
	}
}

type readoutReport struct {
	ID                  string       `json:"id" yaml:"id"`
	Name                string       `json:"name" yaml:"name"`
	CreatedAt           string       `json:"created_at" yaml:"created_at"`
	ControlTrials       int64        `json:"control_trials" yaml:"control_trials"`
	ControlSuccesses    int64        `json:"control_successes" yaml:"control_successes"`
	ExperimentTrials    int64        `json:"experiment_trials" yaml:"experiment_trials"`
	ExperimentSuccesses int64        `json:"experiment_successes" yaml:"experiment_successes"`
	MinLift             float64      `json:"min_lift" yaml:"min_lift"`
	Probability         float64      `json:"probability" yaml:"probability"`
	Verdict             string       `json:"verdict" yaml:"verdict"`
	SampleSize          int          `json:"sample_size" yaml:"sample_size"`
	Seeds               domain.Seeds `json:"seeds" yaml:"seeds"`
}

func toReadoutReport(ro *domain.Readout) readoutReport {
	return readoutReport{
		ID:                  ro.ID,
		Name:                ro.Name,
		CreatedAt:           ro.CreatedAt.UTC().Format(time.RFC3339),
		ControlTrials:       ro.Control.Trials,
		ControlSuccesses:    ro.Control.Successes,
		ExperimentTrials:    ro.Experiment.Trials,
		ExperimentSuccesses: ro.Experiment.Successes,
		MinLift:             ro.MinLift,
		Probability:         ro.Probability,
		Verdict:             ro.Verdict.String(),
		SampleSize:          ro.SampleSize,
		Seeds:               ro.Seeds,
	}
}
