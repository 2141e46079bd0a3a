package ports

import (
	"context"
	"time"
)

// Operation names recorded by a MetricsRecorder.
const (
	OpEstimate = "estimate"
	OpAnalyze  = "analyze"
)

// MetricsRecorder records calculator activity in an external observability system.
type MetricsRecorder interface {
	// RecordCalculation records one run of an operation and whether it failed.
	RecordCalculation(ctx context.Context, c Calculation)
	// Close shuts down the recorder and flushes any pending metrics.
	Close(ctx context.Context) error
}

// Calculation describes a single estimate or analyze call.
type Calculation struct {
	Operation   string
	Duration    time.Duration
	Err         error
	Verdict     string  // empty for estimate
	Probability float64 // tail probability, analyze only
}
