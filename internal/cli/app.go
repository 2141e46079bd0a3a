package cli

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/bayesab/internal/adapters/otel"
	"github.com/emiliopalmerini/bayesab/internal/adapters/prometheus"
	"github.com/emiliopalmerini/bayesab/internal/adapters/turso"
	"github.com/emiliopalmerini/bayesab/internal/calculator"
	"github.com/emiliopalmerini/bayesab/internal/infrastructure/config"
	"github.com/emiliopalmerini/bayesab/internal/ports"
)

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	DB         *turso.DB
	Readouts   ports.ReadoutRepository
	Prometheus *prometheus.Recorder
	Metrics    ports.MetricsRecorder
	Service    *calculator.Service
}

// NewAppContext builds the calculator service from c. Storage is opened only
// when withStorage is set and the database isn't disabled in the config.
func NewAppContext(ctx context.Context, c *config.Config, withStorage bool) (*AppContext, error) {
	a := &AppContext{Prometheus: prometheus.NewRecorder()}

	var exporter ports.MetricsRecorder = otel.NewNoOpExporter()
	if c.Otel.Enabled {
		e, err := otel.NewExporter(ctx, otel.Config{
			Endpoint: c.Otel.Endpoint,
			Enabled:  c.Otel.Enabled,
			Insecure: c.Otel.Insecure,
		})
		if err != nil {
			zap.L().Warn("otel exporter unavailable, continuing without it", zap.Error(err))
		} else {
			exporter = e
		}
	}
	a.Metrics = calculator.Recorders(a.Prometheus, exporter)

	if withStorage && !c.Database.Disabled {
		db, err := turso.NewDB(ctx, c.Database.URL, c.Database.AuthToken)
		if err != nil {
			_ = a.Metrics.Close(ctx)
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.DB = db
		a.Readouts = turso.NewRepositories(db.DB).Readouts
	}

	a.Service = calculator.NewService(calculator.Settings{
		Seeds:   c.Analysis.Seeds(),
		Options: c.Analysis.Options(),
	}, a.Metrics, a.Readouts)

	return a, nil
}

// Close flushes metrics and releases the database.
func (a *AppContext) Close(ctx context.Context) error {
	var errs []error
	if a.Metrics != nil {
		errs = append(errs, a.Metrics.Close(ctx))
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
