package fileutil

import (
	"fmt"

	"github.com/rohmanhakim/pypi-scraper/pkg/failure"
)

type FileErrorCause string

const (
	ErrCausePathError  FileErrorCause = "path error"
	ErrCauseWriteError FileErrorCause = "write error"
)

type FileError struct {
	Message   string
	Retryable bool
	Cause     FileErrorCause
	// Err is the underlying filesystem error, kept so callers can
	// distinguish conditions like ENOSPC with errors.Is.
	Err error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file error: %s: %s", e.Cause, e.Message)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

func (e *FileError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
