package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/bayesab/internal/calculator"
	"github.com/emiliopalmerini/bayesab/internal/domain"
)

func TestWriteAnalysis(t *testing.T) {
	svc := calculator.NewService(calculator.Settings{
		Seeds:   domain.DefaultSeeds,
		Options: []domain.LiftOption{domain.WithSampleSize(20_000), domain.WithCurvePoints(50)},
	}, nil, nil)

	res, err := svc.Evaluate(context.Background(), calculator.Input{
		ControlTrials:       1000,
		ControlSuccesses:    100,
		ExperimentTrials:    1000,
		ExperimentSuccesses: 150,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	writeAnalysis(&buf, res)
	out := buf.String()

	assert.Contains(t, out, "Beta(101, 901)")
	assert.Contains(t, out, "Beta(151, 851)")
	assert.Contains(t, out, "Minimum lift:")
	assert.Contains(t, out, "20.0K per group (seeds 1, 2)")
	assert.NotContains(t, out, "Excluded:")
	assert.True(t, strings.HasSuffix(out, "Experiment group is the winner!\n"))
}

func TestWriteEstimate(t *testing.T) {
	pc, err := domain.EstimateGroup("group", domain.GroupObservation{Trials: 10, Successes: 3})
	require.NoError(t, err)

	var buf bytes.Buffer
	writeEstimate(&buf, pc)
	out := buf.String()

	assert.Contains(t, out, "3 / 10 (0.3000)")
	assert.Contains(t, out, "Beta(4, 8)")
	assert.Regexp(t, `Grid points:\s+80\n`, out)
}

func TestWriteCurve(t *testing.T) {
	curve, err := domain.Estimate(0, 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	writeCurve(&buf, curve)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	require.Len(t, lines, 11)
	assert.Equal(t, "x\tpdf", lines[0])
	assert.Equal(t, "0\t1", lines[1])
	assert.Equal(t, "1\t1", lines[10])
}

func TestWriteReadouts(t *testing.T) {
	var buf bytes.Buffer
	writeReadouts(&buf, nil)
	assert.Equal(t, "No readouts saved yet.\n", buf.String())

	ro := &domain.Readout{
		ID:          "r-1",
		Name:        "checkout",
		Control:     domain.GroupObservation{Trials: 100, Successes: 10},
		Experiment:  domain.GroupObservation{Trials: 100, Successes: 20},
		MinLift:     0.05,
		Seeds:       domain.DefaultSeeds,
		SampleSize:  100_000,
		Probability: 0.97,
		Verdict:     domain.ExperimentWins,
		CreatedAt:   time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC),
	}

	buf.Reset()
	writeReadouts(&buf, []*domain.Readout{ro})
	out := buf.String()
	assert.Contains(t, out, "checkout")
	assert.Contains(t, out, "2024-06-15 10:30")
	assert.Contains(t, out, "experiment_wins")

	buf.Reset()
	writeReadout(&buf, ro)
	out = buf.String()
	assert.Contains(t, out, "10 / 100 (0.1000)")
	assert.Contains(t, out, "97%")
	assert.Contains(t, out, "Experiment group is the winner!")
}

func TestWriteStructured(t *testing.T) {
	ro := &domain.Readout{
		ID:          "r-1",
		Name:        "checkout",
		Control:     domain.GroupObservation{Trials: 100, Successes: 10},
		Experiment:  domain.GroupObservation{Trials: 100, Successes: 20},
		Seeds:       domain.Seeds{Control: 7, Experiment: 8},
		Probability: 0.5,
		Verdict:     domain.Inconclusive,
		CreatedAt:   time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, writeStructured(&buf, formatYAML, toReadoutReport(ro)))
	out := buf.String()
	assert.Contains(t, out, "name: checkout\n")
	assert.Contains(t, out, "verdict: inconclusive\n")
	assert.Contains(t, out, "2024-06-15T10:30:00Z")
	assert.Contains(t, out, "seeds:\n  control: 7\n  experiment: 8\n")

	buf.Reset()
	require.NoError(t, writeStructured(&buf, formatJSON, toReadoutReport(ro)))
	assert.Contains(t, buf.String(), `"control_successes": 10`)

	assert.Error(t, writeStructured(&buf, "xml", ro))
	assert.NoError(t, checkFormat(formatTable))
	assert.Error(t, checkFormat("csv"))
}
