package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rohmanhakim/pypi-scraper/internal/document"
	"github.com/rohmanhakim/pypi-scraper/internal/telemetry"
	"github.com/rohmanhakim/pypi-scraper/pkg/failure"
	"github.com/rohmanhakim/pypi-scraper/pkg/fileutil"
	"github.com/rohmanhakim/pypi-scraper/pkg/hashutil"
)

/*
Responsibilities
- Persist one JSON file per package under the data directory
- Reject package names that could escape the data directory
- Write atomically so reruns and interruptions never expose partial files

Output Characteristics
- Stable filenames: <sanitized name>.json
- Byte-for-byte bodies as fetched, no re-serialization
- Idempotent, overwrite-safe reruns
*/

const documentExtension = ".json"

type Sink interface {
	Write(
		dataDir string,
		doc document.Document,
		hashAlgo hashutil.HashAlgo,
	) (WriteResult, failure.ClassifiedError)

	ListExisting(dataDir string) ([]string, failure.ClassifiedError)
}

type LocalSink struct {
	telemetrySink telemetry.Sink
}

func NewLocalSink(
	telemetrySink telemetry.Sink,
) LocalSink {
	return LocalSink{
		telemetrySink: telemetrySink,
	}
}

func (s *LocalSink) Write(
	dataDir string,
	doc document.Document,
	hashAlgo hashutil.HashAlgo,
) (WriteResult, failure.ClassifiedError) {
	writeResult, err := write(dataDir, doc, hashAlgo)
	if err != nil {
		var storageError *StorageError
		errors.As(err, &storageError)
		s.telemetrySink.RecordError(
			time.Now(),
			"storage",
			"LocalSink.Write",
			mapStorageErrorToTelemetryCause(storageError),
			err.Error(),
			[]telemetry.Attribute{
				telemetry.NewAttr(telemetry.AttrPackage, doc.Name()),
				telemetry.NewAttr(telemetry.AttrWritePath, storageError.Path),
			},
		)
		return WriteResult{}, storageError
	}
	s.telemetrySink.RecordArtifact(
		telemetry.ArtifactMetadataDocument,
		writeResult.Path(),
		[]telemetry.Attribute{
			telemetry.NewAttr(telemetry.AttrPackage, doc.Name()),
			telemetry.NewAttr(telemetry.AttrWritePath, writeResult.Path()),
			telemetry.NewAttr(telemetry.AttrField, writeResult.ContentHash()),
		},
	)
	return writeResult, nil
}

// ListExisting returns the package names that already have a document under
// dataDir, i.e. filenames with the document extension stripped. A missing
// data directory is not an error; it simply means nothing exists yet.
func (s *LocalSink) ListExisting(dataDir string) ([]string, failure.ClassifiedError) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCausePathError,
			Path:      dataDir,
		}
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fileName := entry.Name()
		if !strings.HasSuffix(fileName, documentExtension) {
			continue
		}
		names = append(names, strings.TrimSuffix(fileName, documentExtension))
	}
	return names, nil
}

// SanitizePackageName validates that a package name is safe to use as a
// filename component. Names containing path separators or traversal
// sequences are rejected outright rather than escaped: a name like
// "../etc/passwd" is not a package, it is an attack.
func SanitizePackageName(name string) failure.ClassifiedError {
	if name == "" {
		return &StorageError{
			Message:   "package name is empty",
			Retryable: false,
			Cause:     ErrCauseUnsafePackageName,
		}
	}
	if name == "." || name == ".." {
		return &StorageError{
			Message:   "package name is a path traversal sequence",
			Retryable: false,
			Cause:     ErrCauseUnsafePackageName,
		}
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return &StorageError{
			Message:   "package name contains path separators or traversal sequences",
			Retryable: false,
			Cause:     ErrCauseUnsafePackageName,
		}
	}
	return nil
}

func write(
	dataDir string,
	doc document.Document,
	hashAlgo hashutil.HashAlgo,
) (WriteResult, failure.ClassifiedError) {
	name := doc.Name()

	if err := SanitizePackageName(name); err != nil {
		var storageErr *StorageError
		errors.As(err, &storageErr)
		storageErr.Path = dataDir
		return WriteResult{}, storageErr
	}

	if err := fileutil.EnsureDir(dataDir); err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: true, // could be transient disk pressure
			Cause:     ErrCausePathError,
			Path:      dataDir,
		}
	}

	fullPath := filepath.Join(dataDir, name+documentExtension)

	if err := fileutil.WriteFileAtomic(fullPath, doc.Body(), 0644); err != nil {
		cause := StorageErrorCause(ErrCauseWriteFailure)
		retryable := false
		if errors.Is(err, syscall.ENOSPC) {
			cause = ErrCauseDiskFull
			retryable = true
		}
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: retryable,
			Cause:     cause,
			Path:      fullPath,
		}
	}

	contentHash, err := hashutil.HashBytes(doc.Body(), hashAlgo)
	if err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseHashComputationFailed,
			Path:      fullPath,
		}
	}

	return NewWriteResult(name, fullPath, contentHash), nil
}
