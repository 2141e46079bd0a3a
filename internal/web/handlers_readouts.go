package web

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/bayesab/internal/domain"
	"github.com/emiliopalmerini/bayesab/internal/shared/middleware"
	"github.com/emiliopalmerini/bayesab/internal/web/templates"
)

const readoutPageLimit = 100

type readoutResponse struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Control     domain.GroupObservation `json:"control"`
	Experiment  domain.GroupObservation `json:"experiment"`
	MinLift     float64                 `json:"min_lift"`
	Seeds       domain.Seeds            `json:"seeds"`
	SampleSize  int                     `json:"sample_size"`
	Probability float64                 `json:"probability"`
	Verdict     domain.Verdict          `json:"verdict"`
	CreatedAt   time.Time               `json:"created_at"`
}

func toReadoutResponse(ro *domain.Readout) readoutResponse {
	return readoutResponse{
		ID:          ro.ID,
		Name:        ro.Name,
		Control:     ro.Control,
		Experiment:  ro.Experiment,
		MinLift:     ro.MinLift,
		Seeds:       ro.Seeds,
		SampleSize:  ro.SampleSize,
		Probability: ro.Probability,
		Verdict:     ro.Verdict,
		CreatedAt:   ro.CreatedAt,
	}
}

func (s *Server) handleReadouts(w http.ResponseWriter, r *http.Request) {
	data := templates.ReadoutsPageData{PersistenceEnabled: s.svc.PersistenceEnabled()}
	if data.PersistenceEnabled {
		readouts, err := s.svc.Readouts(r.Context(), readoutPageLimit)
		if err != nil {
			zap.L().Error("failed to list readouts", zap.Error(err))
			http.Error(w, "Failed to load readouts", http.StatusInternalServerError)
			return
		}
		data.Readouts = make([]templates.ReadoutRow, 0, len(readouts))
		for _, ro := range readouts {
			data.Readouts = append(data.Readouts, readoutRow(ro))
		}
	}
	render(w, r, http.StatusOK, templates.ReadoutsPage(data))
}

func (s *Server) handleAPIListReadouts(w http.ResponseWriter, r *http.Request) {
	readouts, err := s.svc.Readouts(r.Context(), readoutPageLimit)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	out := make([]readoutResponse, 0, len(readouts))
	for _, ro := range readouts {
		out = append(out, toReadoutResponse(ro))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPIGetReadout(w http.ResponseWriter, r *http.Request) {
	ro, err := s.svc.Readout(r.Context(), r.PathValue("id"))
	if err != nil {
		writeJSONError(w, err)
		return
	}
	if ro == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "readout not found"})
		return
	}
	writeJSON(w, http.StatusOK, toReadoutResponse(ro))
}

func (s *Server) handleAPICreateReadout(w http.ResponseWriter, r *http.Request) {
	in, err := parseInput(r)
	if err != nil {
		saveFailed(w, r, err)
		return
	}

	ro, err := s.svc.Save(r.Context(), strings.TrimSpace(r.FormValue(fieldName)), in)
	if err != nil {
		saveFailed(w, r, err)
		return
	}

	if middleware.IsHTMX(r) {
		render(w, r, http.StatusOK, templates.SaveStatus(ro.Name))
		return
	}
	writeJSON(w, http.StatusCreated, toReadoutResponse(ro))
}

func saveFailed(w http.ResponseWriter, r *http.Request, err error) {
	if middleware.IsHTMX(r) {
		render(w, r, statusForError(err), templates.ErrorBanner(errorData(err)))
		return
	}
	writeJSONError(w, err)
}

func (s *Server) handleAPIDeleteReadout(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteReadout(r.Context(), r.PathValue("id")); err != nil {
		zap.L().Error("failed to delete readout", zap.String("id", r.PathValue("id")), zap.Error(err))
		writeJSONError(w, err)
		return
	}
	if middleware.IsHTMX(r) {
		// htmx swaps the row out with the empty body.
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
