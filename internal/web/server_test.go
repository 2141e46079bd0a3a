package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "github.com/tursodatabase/go-libsql"

	"github.com/emiliopalmerini/bayesab/internal/adapters/prometheus"
	"github.com/emiliopalmerini/bayesab/internal/adapters/turso"
	"github.com/emiliopalmerini/bayesab/internal/calculator"
	"github.com/emiliopalmerini/bayesab/internal/domain"
	"github.com/emiliopalmerini/bayesab/internal/migrate"
	"github.com/emiliopalmerini/bayesab/internal/ports"
)

const winningQuery = "ctl_sample=1000&ctl_success=100&exp_sample=1000&exp_success=150&lift=0"

func testSettings() calculator.Settings {
	return calculator.Settings{
		Seeds:   domain.DefaultSeeds,
		Options: []domain.LiftOption{domain.WithSampleSize(20_000), domain.WithCurvePoints(100)},
	}
}

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", "file:"+t.TempDir()+"/web.db")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := migrate.RunAll(context.Background(), db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func testServer(t *testing.T, readouts ports.ReadoutRepository) http.Handler {
	t.Helper()
	rec := prometheus.NewRecorder()
	svc := calculator.NewService(testSettings(), rec, readouts)
	return NewServer(svc, 0, rec.Handler()).Handler()
}

func do(t *testing.T, h http.Handler, method, target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func winningForm() url.Values {
	v, _ := url.ParseQuery(winningQuery)
	return v
}

func TestHealthAndStatic(t *testing.T) {
	h := testServer(t, nil)

	w := do(t, h, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	w = do(t, h, http.MethodGet, "/static/app.js", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "drawCharts")

	w = do(t, h, http.MethodGet, "/nope", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := testServer(t, nil)

	w := do(t, h, http.MethodPost, "/calculate", winningForm(), true)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/metrics", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bayesab_calculations_total")
}

func TestMetricsEndpoint_NotConfigured(t *testing.T) {
	svc := calculator.NewService(testSettings(), nil, nil)
	h := NewServer(svc, 0, nil).Handler()

	w := do(t, h, http.MethodGet, "/metrics", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCalculatorPage(t *testing.T) {
	h := testServer(t, nil)

	w := do(t, h, http.MethodGet, "/?"+winningQuery, nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, `name="ctl_sample" value="1000"`)
	assert.Contains(t, body, `name="exp_success" value="150"`)
	assert.Contains(t, body, "varianceexplained.org")

	w = do(t, h, http.MethodGet, "/?ctl_sample=abc", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="ctl_sample" value="0"`)
}

func TestCalculate(t *testing.T) {
	h := testServer(t, nil)

	w := do(t, h, http.MethodPost, "/calculate", winningForm(), true)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<span id="experiment_group">Experiment group</span> is the winner!`)
	assert.Contains(t, body, "Probability that lift exceeds 0% is")
	assert.Contains(t, body, "Beta(101, 901)")
	assert.Equal(t, "/?"+winningQuery, w.Header().Get("HX-Replace-Url"))

	// The figures ride along with the fragment.
	charts := embeddedCharts(t, body)
	require.Len(t, charts.Posterior.Data, 2)
	assert.Len(t, charts.Posterior.Data[0].X, 9010)
	require.NotEmpty(t, charts.Lift.Data)
	assert.Len(t, charts.Lift.Data[0].X, 100)
	assert.Contains(t, charts.Lift.Layout.Title, "Probability that lift exceeds 0% is")
}

func embeddedCharts(t *testing.T, body string) chartData {
	t.Helper()
	i := strings.Index(body, `id="chart-data"`)
	require.GreaterOrEqual(t, i, 0, "no chart data in fragment")
	start := i + strings.Index(body[i:], ">") + 1
	end := start + strings.Index(body[start:], "</script>")
	require.Greater(t, end, start)

	var charts chartData
	require.NoError(t, json.Unmarshal([]byte(body[start:end]), &charts))
	return charts
}

func TestCalculate_Errors(t *testing.T) {
	h := testServer(t, nil)

	tests := []struct {
		name   string
		form   url.Values
		status int
		title  string
	}{
		{
			name:   "successes exceed trials",
			form:   url.Values{"ctl_sample": {"10"}, "ctl_success": {"20"}},
			status: http.StatusUnprocessableEntity,
			title:  "Successes can&#39;t exceed the sample size",
		},
		{
			name:   "not a number",
			form:   url.Values{"ctl_sample": {"ten"}},
			status: http.StatusBadRequest,
			title:  "Invalid input",
		},
		{
			name:   "lift out of range",
			form:   url.Values{"lift": {"2"}},
			status: http.StatusBadRequest,
			title:  "Invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/calculate", tt.form, true)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), "error-banner")
			assert.Contains(t, w.Body.String(), tt.title)
		})
	}
}

func TestAPIPosterior(t *testing.T) {
	h := testServer(t, nil)

	w := do(t, h, http.MethodGet, "/api/posterior?"+winningQuery, nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp posteriorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Figure.Data, 2)
	assert.Equal(t, colorControl, resp.Figure.Data[0].Marker.Color)
	assert.Equal(t, colorExperiment, resp.Figure.Data[1].Marker.Color)
	assert.Equal(t, "tozerox", resp.Figure.Data[0].Fill)
	assert.Len(t, resp.Figure.Data[0].X, 9010)
	assert.Equal(t, 101.0, resp.Control.Alpha)
	assert.Equal(t, 901.0, resp.Control.Beta)
	assert.Equal(t, 9010, resp.Control.NumPoints)
	assert.Equal(t, "experiment", resp.Experiment.Group)
}

func TestAPIPosterior_ShapeError(t *testing.T) {
	h := testServer(t, nil)

	w := do(t, h, http.MethodGet, "/api/posterior?exp_sample=5&exp_success=6", nil, false)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode(t, w)["error"], "experiment")
}

func TestOversizedCountsRejected(t *testing.T) {
	h := testServer(t, nil)
	const query = "ctl_sample=3000000&ctl_success=0&exp_sample=3000000&exp_success=0&lift=0"

	for _, path := range []string{"/api/posterior", "/api/lift"} {
		t.Run(path, func(t *testing.T) {
			w := do(t, h, http.MethodGet, path+"?"+query, nil, false)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decode(t, w)["error"], "lte 250000")
		})
	}

	t.Run("/calculate", func(t *testing.T) {
		form, _ := url.ParseQuery(query)
		w := do(t, h, http.MethodPost, "/calculate", form, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid input")
	})
}

func TestThin(t *testing.T) {
	curve := make(domain.DensityCurve, 25)
	for i := range curve {
		curve[i] = domain.Point{X: float64(i)}
	}

	thinned := thin(curve, 5)
	require.Len(t, thinned, 5)
	assert.Equal(t, []float64{0, 6, 12, 18, 24}, thinned.Xs())

	assert.Len(t, thin(curve, 100), 25)
}

func TestAPILift(t *testing.T) {
	h := testServer(t, nil)

	w := do(t, h, http.MethodGet, "/api/lift?"+winningQuery, nil, false)
	require.Equal(t, http.StatusOK, w.Code)

	var resp liftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.ExperimentWins, resp.Verdict)
	assert.Equal(t, "Experiment group is the winner!", resp.Headline)
	assert.Equal(t, 20_000, resp.SampleSize)
	assert.Equal(t, domain.DefaultSeeds, resp.Seeds)
	assert.Greater(t, resp.Probability, 0.95)

	require.NotEmpty(t, resp.Figure.Data)
	lift := resp.Figure.Data[0]
	assert.Len(t, lift.X, 100)
	assert.Equal(t, colorLift, lift.Line.Color)

	var maxY float64
	for _, y := range lift.Y {
		maxY = max(maxY, y)
	}
	require.Len(t, resp.Figure.Layout.Shapes, 1)
	assert.InDelta(t, maxY*1.2, resp.Figure.Layout.Shapes[0].Y1, 1e-9)
	assert.InDelta(t, maxY*1.1, resp.Figure.Layout.Annotations[0].Y, 1e-9)
	assert.Equal(t, "minimum %lift", resp.Figure.Layout.Annotations[0].Text)
	assert.Equal(t, resp.Title, resp.Figure.Layout.Title)

	raw := decode(t, w)
	assert.Equal(t, "experiment_wins", raw["verdict"])
}

func TestReadouts_PersistenceDisabled(t *testing.T) {
	h := testServer(t, nil)

	w := do(t, h, http.MethodGet, "/readouts", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Readout storage is disabled.")

	w = do(t, h, http.MethodPost, "/api/readouts", winningForm(), false)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(t, h, http.MethodGet, "/api/readouts", nil, false)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReadouts_Lifecycle(t *testing.T) {
	repos := turso.NewRepositories(testDB(t))
	h := testServer(t, repos.Readouts)

	form := winningForm()
	form.Set("name", "Checkout button")
	w := do(t, h, http.MethodPost, "/api/readouts", form, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "Checkout button", created["name"])
	assert.Equal(t, "experiment_wins", created["verdict"])

	w = do(t, h, http.MethodPost, "/api/readouts", winningForm(), true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Untitled readout")

	w = do(t, h, http.MethodGet, "/api/readouts", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var list []readoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	w = do(t, h, http.MethodGet, "/readouts", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Checkout button")
	assert.Contains(t, w.Body.String(), `hx-delete="/api/readouts/`+id+`"`)

	w = do(t, h, http.MethodGet, "/api/readouts/"+id, nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var got readoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(150), got.Experiment.Successes)

	w = do(t, h, http.MethodDelete, "/api/readouts/"+id, nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(t, h, http.MethodGet, "/api/readouts/"+id, nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReadouts_SaveErrors(t *testing.T) {
	repo := &calculator.MockReadoutRepository{
		CreateFunc: func(context.Context, *domain.Readout) error {
			return errors.New("disk full")
		},
		DeleteFunc: func(context.Context, string) error {
			return errors.New("locked")
		},
	}
	h := testServer(t, repo)

	w := do(t, h, http.MethodPost, "/api/readouts", winningForm(), true)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Something went wrong")

	bad := url.Values{"ctl_sample": {"1"}, "ctl_success": {"2"}}
	w = do(t, h, http.MethodPost, "/api/readouts", bad, false)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, h, http.MethodDelete, "/api/readouts/abc", nil, false)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRateLimit(t *testing.T) {
	svc := calculator.NewService(testSettings(), nil, nil)
	h := NewServer(svc, 0, nil, WithRateLimit(0.001, 1)).Handler()

	w := do(t, h, http.MethodGet, "/api/posterior?"+winningQuery, nil, false)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/api/posterior?"+winningQuery, nil, false)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Pages and health checks are not limited.
	w = do(t, h, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
}
