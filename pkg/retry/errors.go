package retry

import (
	"fmt"

	"github.com/rohmanhakim/pypi-scraper/pkg/failure"
)

type RetryErrorCause string

const (
	ErrZeroAttempt       = "zero attempt"
	ErrExhaustedAttempts = "exhausted attempt"
)

type RetryError struct {
	Message   string
	Retryable bool
	Cause     RetryErrorCause
	// LastErr is the error observed on the final attempt, preserved so
	// per-package reports can name the underlying failure.
	LastErr failure.ClassifiedError
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("retry error: %s, %s", e.Cause, e.Message)
}

func (e *RetryError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *RetryError) IsRetryable() bool {
	return e.Retryable
}

// Unwrap exposes the last attempt's error to errors.Is / errors.As.
func (e *RetryError) Unwrap() error {
	if e.LastErr == nil {
		return nil
	}
	return e.LastErr
}

// Is allows errors.Is to match RetryError types
func (e *RetryError) Is(target error) bool {
	_, ok := target.(*RetryError)
	return ok
}
