package otel

import (
	"context"

	"github.com/emiliopalmerini/bayesab/internal/ports"
)

// NoOpExporter is a metrics recorder that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) RecordCalculation(ctx context.Context, c ports.Calculation) {}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}
