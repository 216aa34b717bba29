package fileutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rohmanhakim/pypi-scraper/pkg/failure"
)

// EnsureDir check if a given directory plus the following path exist, then create one if not
func EnsureDir(dir string, path ...string) failure.ClassifiedError {
	targetPath := []string{dir}
	targetPath = append(targetPath, path...)

	target := filepath.Join(targetPath...)
	if err := os.MkdirAll(target, 0755); err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
			Err:       err,
		}
	}
	return nil
}

// WriteFileAtomic writes data to path so that readers never observe a partial file.
//
// The bytes land in a temporary file in the same directory, which is then renamed
// over the destination. Rename within one filesystem is atomic, so an interrupted
// run leaves either the previous file or the new one, never a torn write.
// The temporary file is removed on every failure path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) failure.ClassifiedError {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return &FileError{
			Message:   fmt.Sprintf("create temp file: %v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
			Err:       err,
		}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &FileError{
			Message:   fmt.Sprintf("write temp file: %v", err),
			Retryable: false,
			Cause:     ErrCauseWriteError,
			Err:       err,
		}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &FileError{
			Message:   fmt.Sprintf("close temp file: %v", err),
			Retryable: false,
			Cause:     ErrCauseWriteError,
			Err:       err,
		}
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return &FileError{
			Message:   fmt.Sprintf("chmod temp file: %v", err),
			Retryable: false,
			Cause:     ErrCauseWriteError,
			Err:       err,
		}
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return &FileError{
			Message:   fmt.Sprintf("rename temp file: %v", err),
			Retryable: false,
			Cause:     ErrCauseWriteError,
			Err:       err,
		}
	}
	return nil
}
