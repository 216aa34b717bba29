package storage

import (
	"fmt"

	"github.com/rohmanhakim/pypi-scraper/internal/telemetry"
	"github.com/rohmanhakim/pypi-scraper/pkg/failure"
)

type StorageErrorCause string

const (
	ErrCauseDiskFull              = "disk is full"
	ErrCauseWriteFailure          = "write failed"
	ErrCausePathError             = "path error"
	ErrCauseUnsafePackageName     = "unsafe package name"
	ErrCauseHashComputationFailed = "hash computation failed"
)

type StorageError struct {
	Message   string
	Retryable bool
	Cause     StorageErrorCause
	Path      string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s", e.Cause)
}

// Severity is always recoverable: a failed write is recorded against its
// package in the report and the run continues with the next package.
func (e *StorageError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// IsRetryable reports whether another attempt could plausibly succeed
// (e.g. transient disk pressure) as opposed to a rejected name or bad path.
func (e *StorageError) IsRetryable() bool {
	return e.Retryable
}

// mapStorageErrorToTelemetryCause maps storage-local error semantics
// to the canonical telemetry.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapStorageErrorToTelemetryCause(err *StorageError) telemetry.ErrorCause {
	switch err.Cause {
	case ErrCauseDiskFull, ErrCauseWriteFailure, ErrCausePathError:
		return telemetry.CauseStorageFailure
	case ErrCauseUnsafePackageName:
		return telemetry.CauseContentInvalid
	default:
		return telemetry.CauseUnknown
	}
}
