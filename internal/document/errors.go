package document

import (
	"fmt"

	"github.com/rohmanhakim/pypi-scraper/internal/telemetry"
	"github.com/rohmanhakim/pypi-scraper/pkg/failure"
)

type DocumentErrorCause string

const (
	ErrCauseInvalidJSON = "metadata body is not valid JSON"
	ErrCauseEmptyBody   = "metadata body is empty"
)

// DocumentError is a per-package failure: recorded in the report, never fatal.
type DocumentError struct {
	Message string
	Cause   DocumentErrorCause
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document error: %s", e.Cause)
}

func (e *DocumentError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// mapDocumentErrorToTelemetryCause maps document-local error semantics
// to the canonical telemetry.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapDocumentErrorToTelemetryCause(err *DocumentError) telemetry.ErrorCause {
	switch err.Cause {
	case ErrCauseInvalidJSON, ErrCauseEmptyBody:
		return telemetry.CauseContentInvalid
	default:
		return telemetry.CauseUnknown
	}
}
