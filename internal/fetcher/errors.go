package fetcher

import (
	"fmt"

	"github.com/rohmanhakim/pypi-scraper/internal/telemetry"
	"github.com/rohmanhakim/pypi-scraper/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseTimeout               = "timeout"
	ErrCauseNetworkFailure        = "network issues"
	ErrCauseReadResponseBodyError = "failed to read response body"
	ErrCauseRequestNotFound       = "not found"
	ErrCauseRequestForbidden      = "forbidden"
	ErrCauseRequestTooMany        = "too many requests"
	ErrCauseRequest4xx            = "4xx"
	ErrCauseRequest5xx            = "5xx"
)

type FetchError struct {
	Message   string
	Retryable bool
	Cause     FetchErrorCause
	// Status is the HTTP status observed, 0 for transport-level failures.
	Status int
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetcher error: %s (status %d)", e.Cause, e.Status)
	}
	return fmt.Sprintf("fetcher error: %s", e.Cause)
}

func (e *FetchError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// IsRetryable returns whether this error is retryable
func (e *FetchError) IsRetryable() bool {
	return e.Retryable
}

// mapFetchErrorToTelemetryCause maps fetcher-local error semantics
// to the canonical telemetry.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapFetchErrorToTelemetryCause(err *FetchError) telemetry.ErrorCause {
	switch err.Cause {
	case ErrCauseTimeout, ErrCauseNetworkFailure:
		return telemetry.CauseNetworkFailure
	case ErrCauseRequestNotFound, ErrCauseRequestForbidden, ErrCauseRequest4xx:
		return telemetry.CauseRemoteRejection
	case ErrCauseRequestTooMany:
		return telemetry.CauseRemoteRejection
	default:
		return telemetry.CauseUnknown
	}
}
