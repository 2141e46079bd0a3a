package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/bayesab/internal/calculator"
	"github.com/emiliopalmerini/bayesab/internal/domain"
	"github.com/emiliopalmerini/bayesab/internal/util"
	"github.com/emiliopalmerini/bayesab/internal/web/templates"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func writeJSONError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), map[string]string{"error": err.Error()})
}

// statusForError maps calculator and domain errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, calculator.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidShapeParameters),
		errors.Is(err, domain.ErrDivisionByZeroLift):
		return http.StatusUnprocessableEntity
	case errors.Is(err, calculator.ErrPersistenceDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorData(err error) templates.ErrorData {
	switch {
	case errors.Is(err, calculator.ErrInvalidInput):
		return templates.ErrorData{Title: "Invalid input", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidShapeParameters):
		return templates.ErrorData{
			Title:   "Successes can't exceed the sample size",
			Message: err.Error(),
		}
	case errors.Is(err, domain.ErrDivisionByZeroLift):
		return templates.ErrorData{
			Title:   "Lift is undefined",
			Message: "Every control draw had a zero conversion rate. Collect more control data.",
		}
	case errors.Is(err, calculator.ErrPersistenceDisabled):
		return templates.ErrorData{Title: "Storage disabled", Message: err.Error()}
	default:
		return templates.ErrorData{Title: "Something went wrong", Message: "The calculation failed."}
	}
}

func probabilityTitle(threshold, probability float64) string {
	return fmt.Sprintf("Probability that lift exceeds %s is %s",
		util.FormatPercent(threshold), util.FormatPercent(probability))
}

func groupSummary(label string, pc *domain.PosteriorCurve) templates.GroupSummary {
	return templates.GroupSummary{
		Label:     label,
		Trials:    pc.Observed.Trials,
		Successes: pc.Observed.Successes,
		Rate:      pc.Observed.Rate(),
		Alpha:     pc.Posterior.Alpha,
		Beta:      pc.Posterior.Beta,
		Mean:      pc.Mean,
		Lower:     pc.Lower,
		Upper:     pc.Upper,
	}
}

func buildResultsData(res *calculator.Result, persistence bool) templates.ResultsData {
	a := res.Lift
	return templates.ResultsData{
		Charts:           chartData{Posterior: posteriorFigure(res.Posteriors), Lift: liftFigure(a)},
		Verdict:          a.Verdict.String(),
		Headline:         a.Verdict.Headline(),
		ProbabilityTitle: probabilityTitle(a.Threshold, a.Probability),
		MinLift:          a.Threshold,
		Probability:      a.Probability,
		LiftMean:         a.Summary.Mean,
		LiftLower:        a.Summary.Lower,
		LiftUpper:        a.Summary.Upper,
		ExcludedDraws:    a.ExcludedDraws,
		SampleSize:       a.SampleSize,
		Groups: []templates.GroupSummary{
			groupSummary("Control", res.Posteriors.Control),
			groupSummary("Experiment", res.Posteriors.Experiment),
		},
		PersistenceEnabled: persistence,
	}
}

func readoutRow(ro *domain.Readout) templates.ReadoutRow {
	return templates.ReadoutRow{
		ID:          ro.ID,
		Name:        ro.Name,
		CreatedAt:   util.FormatDateTime(ro.CreatedAt),
		Control:     fmt.Sprintf("%d / %d", ro.Control.Successes, ro.Control.Trials),
		Experiment:  fmt.Sprintf("%d / %d", ro.Experiment.Successes, ro.Experiment.Trials),
		MinLift:     ro.MinLift,
		Probability: ro.Probability,
		Verdict:     ro.Verdict.String(),
		Headline:    ro.Verdict.Headline(),
		OpenURL:     "/?" + inputQuery(calculator.InputFromReadout(ro)),
	}
}
