package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrOracle            = errors.New("oracle failure")
	ErrExternalTool      = errors.New("external tool error")
	ErrValidation        = errors.New("validation error")
	ErrConfiguration     = errors.New("configuration error")
	ErrTimeout           = errors.New("timeout")
	ErrTransient         = errors.New("transient failure")
)

// Failure classifies why a run ended in the FAILED state.
type Failure string

const (
	FailureSourceUnavailable Failure = "source_unavailable"
	FailureOracle            Failure = "oracle"
	FailureConfiguration     Failure = "configuration"
	FailureValidation        Failure = "validation"
	FailureExternalTool      Failure = "external_tool"
	FailureTimeout           Failure = "timeout"
	FailureTransient         Failure = "transient"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureState maps a pipeline error to the failure label recorded on the run
// report and surfaced by the CLI and HTTP API.
func FailureState(err error) Failure {
	switch {
	case errors.Is(err, ErrValidation):
		return FailureValidation
	case errors.Is(err, ErrConfiguration):
		return FailureConfiguration
	case errors.Is(err, ErrSourceUnavailable):
		return FailureSourceUnavailable
	case errors.Is(err, ErrOracle):
		return FailureOracle
	case errors.Is(err, ErrExternalTool):
		return FailureExternalTool
	case errors.Is(err, ErrTimeout):
		return FailureTimeout
	default:
		return FailureTransient
	}
}

// IsClientError reports whether err stems from caller input rather than the system.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrSourceUnavailable)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
