package pharmaforecast

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidModelName = errors.New("unrecognized model name")
	ErrNoSeries         = errors.New("no product series provided")
)

// Attempt records a single model attempt during a forecast run.
type Attempt struct {
	Model ModelName
	Err   error
}

// AllModelsFailedError reports that the primary model and every
// fallback failed. The message enumerates each attempt so callers can
// see which model was tried and why it failed.
type AllModelsFailedError struct {
	Attempts []Attempt
}

func (e *AllModelsFailedError) Error() string {
	msgs := make([]string, 0, len(e.Attempts))
	for i, a := range e.Attempts {
		role := "fallback"
		if i == 0 {
			role = "primary"
		}
		msgs = append(msgs, fmt.Sprintf("%s %s: %s", role, a.Model, a.Err))
	}
	return "all models failed: " + strings.Join(msgs, "; ")
}

func (e *AllModelsFailedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}
