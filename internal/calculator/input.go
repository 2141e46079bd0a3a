package calculator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/emiliopalmerini/bayesab/internal/domain"
)

// ErrInvalidInput wraps validation failures of an Input.
var ErrInvalidInput = errors.New("invalid input")

// MaxTrials bounds every count. The posterior grid has 10·max(α, β) points,
// so larger counts cost memory proportional to the input.
const MaxTrials = 250_000

// Input is the five numbers the calculator form collects.
type Input struct {
	ControlTrials       int64   `json:"ctl_sample" validate:"gte=0,lte=250000"`
	ControlSuccesses    int64   `json:"ctl_success" validate:"gte=0,lte=250000"`
	ExperimentTrials    int64   `json:"exp_sample" validate:"gte=0,lte=250000"`
	ExperimentSuccesses int64   `json:"exp_success" validate:"gte=0,lte=250000"`
	MinLift             float64 `json:"lift" validate:"gte=-1,lte=1"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks form-level ranges. successes > trials is not checked here;
// the posterior reports it as a shape error.
func (in Input) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s must be %s %s", fe.Field(), fe.Tag(), fe.Param()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

func (in Input) Control() domain.GroupObservation {
	return domain.GroupObservation{Trials: in.ControlTrials, Successes: in.ControlSuccesses}
}

func (in Input) Experiment() domain.GroupObservation {
	return domain.GroupObservation{Trials: in.ExperimentTrials, Successes: in.ExperimentSuccesses}
}
