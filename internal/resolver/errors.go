package resolver

import (
	"fmt"

	"github.com/rohmanhakim/pypi-scraper/internal/telemetry"
	"github.com/rohmanhakim/pypi-scraper/pkg/failure"
)

type ResolutionErrorCause string

const (
	ErrCauseIndexUnreachable = "index page unreachable"
	ErrCauseIndexUnparseable = "index page unparseable"
	ErrCauseNoPackagesFound  = "no package names found"
)

// ResolutionError is fatal to the run: without a package list there is nothing to do.
type ResolutionError struct {
	Message string
	Cause   ResolutionErrorCause
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolution error: %s", e.Cause)
}

func (e *ResolutionError) Severity() failure.Severity {
	return failure.SeverityFatal
}

// mapResolutionErrorToTelemetryCause maps resolver-local error semantics
// to the canonical telemetry.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapResolutionErrorToTelemetryCause(err *ResolutionError) telemetry.ErrorCause {
	switch err.Cause {
	case ErrCauseIndexUnreachable:
		return telemetry.CauseNetworkFailure
	case ErrCauseIndexUnparseable, ErrCauseNoPackagesFound:
		return telemetry.CauseContentInvalid
	default:
		return telemetry.CauseUnknown
	}
}
