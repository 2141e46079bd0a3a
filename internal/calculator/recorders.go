package calculator

import (
	"context"
	"errors"

	"github.com/emiliopalmerini/bayesab/internal/ports"
)

type nopRecorder struct{}

func (nopRecorder) RecordCalculation(context.Context, ports.Calculation) {}
func (nopRecorder) Close(context.Context) error                          { return nil }

type multiRecorder []ports.MetricsRecorder

// Recorders fans every calculation out to each recorder.
func Recorders(rs ...ports.MetricsRecorder) ports.MetricsRecorder {
	return multiRecorder(rs)
}

func (m multiRecorder) RecordCalculation(ctx context.Context, c ports.Calculation) {
	for _, r := range m {
		r.RecordCalculation(ctx, c)
	}
}

func (m multiRecorder) Close(ctx context.Context) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Close(ctx))
	}
	return errors.Join(errs...)
}
