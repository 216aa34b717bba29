package resolver_test

import (
	"context"
	"net/url"

	"github.com/rohmanhakim/pypi-scraper/internal/fetcher"
	"github.com/rohmanhakim/pypi-scraper/pkg/failure"
	"github.com/rohmanhakim/pypi-scraper/pkg/retry"
	"github.com/stretchr/testify/mock"
)

// fetcherMock is a testify mock for the Fetcher
type fetcherMock struct {
	mock.Mock
}

func (f *fetcherMock) Fetch(
	ctx context.Context,
	fetchParam fetcher.FetchParam,
	retryParam retry.RetryParam,
) (fetcher.FetchResult, failure.ClassifiedError) {
	args := f.Called(ctx, fetchParam, retryParam)
	result := args.Get(0).(fetcher.FetchResult)
	var err failure.ClassifiedError
	if args.Get(1) != nil {
		err = args.Get(1).(failure.ClassifiedError)
	}
	return result, err
}

// setupFetcherMockWithPage sets up the fetcher mock to serve an index page
func setupFetcherMockWithPage(m *fetcherMock, urlStr string, body []byte) {
	testURL, _ := url.Parse(urlStr)
	result := fetcher.NewFetchResultForTest(
		*testURL,
		body,
		200,
		map[string]string{
			"Content-Type": "text/html",
		},
	)
	m.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return(result, nil)
}

// setupFetcherMockWithError sets up the fetcher mock to return an error
func setupFetcherMockWithError(m *fetcherMock, err failure.ClassifiedError) {
	m.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return(fetcher.FetchResult{}, err)
}

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
