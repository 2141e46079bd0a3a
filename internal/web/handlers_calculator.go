package web

import (
	"net/http"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/bayesab/internal/calculator"
	"github.com/emiliopalmerini/bayesab/internal/web/templates"
)

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		zap.L().Warn("failed to render component", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func (s *Server) handleCalculator(w http.ResponseWriter, r *http.Request) {
	// A bad query string just falls back to the empty form.
	in, err := parseInput(r)
	if err != nil {
		in = calculator.Input{}
	}
	render(w, r, http.StatusOK, templates.CalculatorPage(templates.CalculatorPageData{
		Form:               formValues(in),
		PersistenceEnabled: s.svc.PersistenceEnabled(),
	}))
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	in, err := parseInput(r)
	if err != nil {
		render(w, r, statusForError(err), templates.ErrorBanner(errorData(err)))
		return
	}

	res, err := s.svc.Evaluate(ctx, in)
	if err != nil {
		render(w, r, statusForError(err), templates.ErrorBanner(errorData(err)))
		return
	}

	w.Header().Set("HX-Replace-Url", "/?"+inputQuery(in))
	render(w, r, http.StatusOK, templates.Results(buildResultsData(res, s.svc.PersistenceEnabled())))
}
