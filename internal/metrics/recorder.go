package metrics

import (
	"time"

	ferrors "git.home.luguber.info/inful/exportcfg/internal/foundation/errors"
)

// Outcome labels a resolution or reload result.
type Outcome string

const (
	OutcomeSuccess           Outcome = "success"
	OutcomeInvalidOption     Outcome = "invalid_option"
	OutcomeUnknownCapability Outcome = "unknown_capability"
	OutcomeError             Outcome = "error"
)

// OutcomeOf classifies a resolution error.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case ferrors.IsInvalidOption(err):
		return OutcomeInvalidOption
	case ferrors.IsUnknownCapability(err):
		return OutcomeUnknownCapability
	default:
		return OutcomeError
	}
}

// Recorder defines observability hooks for configuration resolution.
type Recorder interface {
	ObserveResolve(d time.Duration, outcome Outcome)
	IncReload(outcome Outcome)
	SetConfigInfo(fingerprint string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveResolve(time.Duration, Outcome) {}
func (NoopRecorder) IncReload(Outcome)                     {}
func (NoopRecorder) SetConfigInfo(string)                  {}
