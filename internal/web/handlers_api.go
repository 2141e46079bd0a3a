package web

import (
	"net/http"

	"github.com/emiliopalmerini/bayesab/internal/domain"
)

type posteriorSummary struct {
	Group     string                  `json:"group"`
	Observed  domain.GroupObservation `json:"observed"`
	Alpha     float64                 `json:"alpha"`
	Beta      float64                 `json:"beta"`
	Mean      float64                 `json:"mean"`
	Lower     float64                 `json:"lower"`
	Upper     float64                 `json:"upper"`
	NumPoints int                     `json:"num_points"`
}

func summarizePosterior(pc *domain.PosteriorCurve) posteriorSummary {
	return posteriorSummary{
		Group:     pc.Group,
		Observed:  pc.Observed,
		Alpha:     pc.Posterior.Alpha,
		Beta:      pc.Posterior.Beta,
		Mean:      pc.Mean,
		Lower:     pc.Lower,
		Upper:     pc.Upper,
		NumPoints: len(pc.Curve),
	}
}

type posteriorResponse struct {
	Figure     figure           `json:"figure"`
	Control    posteriorSummary `json:"control"`
	Experiment posteriorSummary `json:"experiment"`
}

type liftResponse struct {
	Figure        figure                `json:"figure"`
	Threshold     float64               `json:"threshold"`
	Probability   float64               `json:"probability"`
	Verdict       domain.Verdict        `json:"verdict"`
	Headline      string                `json:"headline"`
	Title         string                `json:"title"`
	SampleSize    int                   `json:"sample_size"`
	ExcludedDraws int                   `json:"excluded_draws"`
	Seeds         domain.Seeds          `json:"seeds"`
	Summary       domain.LiftSummary    `json:"summary"`
	Histogram     []domain.HistogramBin `json:"histogram"`
}

func (s *Server) handleAPIPosterior(w http.ResponseWriter, r *http.Request) {
	in, err := parseInput(r)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	p, err := s.svc.Posteriors(r.Context(), in)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posteriorResponse{
		Figure:     posteriorFigure(p),
		Control:    summarizePosterior(p.Control),
		Experiment: summarizePosterior(p.Experiment),
	})
}

func (s *Server) handleAPILift(w http.ResponseWriter, r *http.Request) {
	in, err := parseInput(r)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	a, err := s.svc.Lift(r.Context(), in)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, liftResponse{
		Figure:        liftFigure(a),
		Threshold:     a.Threshold,
		Probability:   a.Probability,
		Verdict:       a.Verdict,
		Headline:      a.Verdict.Headline(),
		Title:         probabilityTitle(a.Threshold, a.Probability),
		SampleSize:    a.SampleSize,
		ExcludedDraws: a.ExcludedDraws,
		Seeds:         a.Seeds,
		Summary:       a.Summary,
		Histogram:     a.Histogram,
	})
}
