package scheduler_test

import (
	"context"
	"time"

	"github.com/rohmanhakim/pypi-scraper/internal/document"
	"github.com/rohmanhakim/pypi-scraper/internal/storage"
	"github.com/rohmanhakim/pypi-scraper/pkg/failure"
	"github.com/rohmanhakim/pypi-scraper/pkg/hashutil"
	"github.com/rohmanhakim/pypi-scraper/pkg/retry"
	"github.com/stretchr/testify/mock"
)

// mockClassifiedError is a minimal ClassifiedError for mock returns
type mockClassifiedError struct {
	msg      string
	severity failure.Severity
}

func (m *mockClassifiedError) Error() string {
	return m.msg
}

func (m *mockClassifiedError) Severity() failure.Severity {
	return m.severity
}

// resolverMock is a testify mock for the package list Resolver
type resolverMock struct {
	mock.Mock
}

func (r *resolverMock) Resolve(
	ctx context.Context,
	retryParam retry.RetryParam,
) ([]string, failure.ClassifiedError) {
	args := r.Called(ctx, retryParam)
	var names []string
	if args.Get(0) != nil {
		names = args.Get(0).([]string)
	}
	var err failure.ClassifiedError
	if args.Get(1) != nil {
		err = args.Get(1).(failure.ClassifiedError)
	}
	return names, err
}

// documentFetcherMock is a testify mock for the metadata Fetcher
type documentFetcherMock struct {
	mock.Mock
}

func (d *documentFetcherMock) FetchMetadata(
	ctx context.Context,
	name string,
	retryParam retry.RetryParam,
) (document.Document, failure.ClassifiedError) {
	args := d.Called(ctx, name, retryParam)
	doc := args.Get(0).(document.Document)
	var err failure.ClassifiedError
	if args.Get(1) != nil {
		err = args.Get(1).(failure.ClassifiedError)
	}
	return doc, err
}

// storageSinkMock is a testify mock for the storage Sink
type storageSinkMock struct {
	mock.Mock
}

func (s *storageSinkMock) Write(
	dataDir string,
	doc document.Document,
	hashAlgo hashutil.HashAlgo,
) (storage.WriteResult, failure.ClassifiedError) {
	args := s.Called(dataDir, doc, hashAlgo)
	result := args.Get(0).(storage.WriteResult)
	var err failure.ClassifiedError
	if args.Get(1) != nil {
		err = args.Get(1).(failure.ClassifiedError)
	}
	return result, err
}

func (s *storageSinkMock) ListExisting(dataDir string) ([]string, failure.ClassifiedError) {
	args := s.Called(dataDir)
	var names []string
	if args.Get(0) != nil {
		names = args.Get(0).([]string)
	}
	var err failure.ClassifiedError
	if args.Get(1) != nil {
		err = args.Get(1).(failure.ClassifiedError)
	}
	return names, err
}

// noWaitLimiter satisfies limiter.RateLimiter without ever pausing tests
type noWaitLimiter struct{}

func (n *noWaitLimiter) SetBaseDelay(baseDelay time.Duration) {}
func (n *noWaitLimiter) SetJitter(jitter time.Duration)       {}
func (n *noWaitLimiter) SetRandomSeed(randomSeed int64)       {}
func (n *noWaitLimiter) MarkLastFetchAsNow(host string)       {}
func (n *noWaitLimiter) ResolveDelay(host string) time.Duration {
	return 0
}
