package web

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/emiliopalmerini/bayesab/internal/calculator"
	"github.com/emiliopalmerini/bayesab/internal/shared/middleware"
)

type Server struct {
	svc     *calculator.Service
	router  *http.ServeMux
	port    int
	metrics http.Handler
	limiter *rate.Limiter
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit limits calculation endpoints to perSecond requests with the
// given burst, shared by all clients.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		if perSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// NewServer wires the calculator routes. metrics may be nil, in which case
// /metrics is not served.
func NewServer(svc *calculator.Service, port int, metrics http.Handler, opts ...Option) *Server {
	s := &Server{
		svc:     svc,
		router:  http.NewServeMux(),
		port:    port,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

// limited applies the calculation rate limit to h.
func (s *Server) limited(h http.HandlerFunc) http.Handler {
	return middleware.RateLimit(s.limiter, h)
}

func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to create static filesystem: %v", err))
	}
	s.router.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		s.router.Handle("GET /metrics", s.metrics)
	}

	// Pages
	s.router.HandleFunc("GET /{$}", s.handleCalculator)
	s.router.HandleFunc("GET /readouts", s.handleReadouts)

	// HTMX fragments
	s.router.Handle("POST /calculate", s.limited(s.handleCalculate))

	// JSON API
	s.router.Handle("GET /api/posterior", s.limited(s.handleAPIPosterior))
	s.router.Handle("GET /api/lift", s.limited(s.handleAPILift))
	s.router.HandleFunc("GET /api/readouts", s.handleAPIListReadouts)
	s.router.Handle("POST /api/readouts", s.limited(s.handleAPICreateReadout))
	s.router.HandleFunc("GET /api/readouts/{id}", s.handleAPIGetReadout)
	s.router.HandleFunc("DELETE /api/readouts/{id}", s.handleAPIDeleteReadout)
}

// Handler returns the router wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	return middleware.HTMX(middleware.RequestLogger(s.router))
}

func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info("starting server", zap.String("url", fmt.Sprintf("http://localhost:%d", s.port)))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("server shutdown failed", zap.Error(err))
		}
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
