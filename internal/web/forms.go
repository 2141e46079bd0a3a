package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/emiliopalmerini/bayesab/internal/calculator"
	"github.com/emiliopalmerini/bayesab/internal/web/templates"
)

const (
	fieldControlTrials       = "ctl_sample"
	fieldControlSuccesses    = "ctl_success"
	fieldExperimentTrials    = "exp_sample"
	fieldExperimentSuccesses = "exp_success"
	fieldMinLift             = "lift"
	fieldName                = "name"
)

// parseInput reads the calculator fields from the query string or form body.
// Missing fields default to zero like the empty form.
func parseInput(r *http.Request) (calculator.Input, error) {
	var in calculator.Input
	if err := r.ParseForm(); err != nil {
		return in, fmt.Errorf("%w: %v", calculator.ErrInvalidInput, err)
	}
	return inputFromValues(r.Form)
}

func inputFromValues(v url.Values) (calculator.Input, error) {
	var (
		in  calculator.Input
		err error
	)
	if in.ControlTrials, err = intField(v, fieldControlTrials); err != nil {
		return in, err
	}
	if in.ControlSuccesses, err = intField(v, fieldControlSuccesses); err != nil {
		return in, err
	}
	if in.ExperimentTrials, err = intField(v, fieldExperimentTrials); err != nil {
		return in, err
	}
	if in.ExperimentSuccesses, err = intField(v, fieldExperimentSuccesses); err != nil {
		return in, err
	}
	if in.MinLift, err = floatField(v, fieldMinLift); err != nil {
		return in, err
	}
	return in, nil
}

func intField(v url.Values, key string) (int64, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a whole number", calculator.ErrInvalidInput, key)
	}
	return n, nil
}

func floatField(v url.Values, key string) (float64, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", calculator.ErrInvalidInput, key)
	}
	return f, nil
}

// inputQuery encodes in as the query string understood by parseInput.
func inputQuery(in calculator.Input) string {
	v := url.Values{}
	v.Set(fieldControlTrials, strconv.FormatInt(in.ControlTrials, 10))
	v.Set(fieldControlSuccesses, strconv.FormatInt(in.ControlSuccesses, 10))
	v.Set(fieldExperimentTrials, strconv.FormatInt(in.ExperimentTrials, 10))
	v.Set(fieldExperimentSuccesses, strconv.FormatInt(in.ExperimentSuccesses, 10))
	v.Set(fieldMinLift, strconv.FormatFloat(in.MinLift, 'f', -1, 64))
	return v.Encode()
}

func formValues(in calculator.Input) templates.FormValues {
	return templates.FormValues{
		ControlTrials:       in.ControlTrials,
		ControlSuccesses:    in.ControlSuccesses,
		ExperimentTrials:    in.ExperimentTrials,
		ExperimentSuccesses: in.ExperimentSuccesses,
		MinLift:             in.MinLift,
	}
}
