package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rohmanhakim/pypi-scraper/internal/fetcher"
	"github.com/rohmanhakim/pypi-scraper/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fetchRecordSpy captures RecordFetch calls so tests can assert recorded
// status codes and retry counts.
type fetchRecordSpy struct {
	mu      sync.Mutex
	fetches []recordedFetch
}

type recordedFetch struct {
	url        string
	httpStatus int
	retryCount int
}

func (s *fetchRecordSpy) RecordFetch(fetchUrl string, httpStatus int, duration time.Duration, retryCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches = append(s.fetches, recordedFetch{
		url:        fetchUrl,
		httpStatus: httpStatus,
		retryCount: retryCount,
	})
}

func (s *fetchRecordSpy) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause telemetry.ErrorCause,
	details string,
	attrs []telemetry.Attribute,
) {
}

func (s *fetchRecordSpy) RecordArtifact(kind telemetry.ArtifactKind, path string, attrs []telemetry.Attribute) {
}

func (s *fetchRecordSpy) recorded() []recordedFetch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]recordedFetch, len(s.fetches))
	copy(out, s.fetches)
	return out
}

func TestFetch_RecordsZeroRetriesOnFirstAttemptSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	spy := &fetchRecordSpy{}
	h := fetcher.NewHttpFetcher(spy, 5*time.Second)
	param := fetcher.NewFetchParam(mustParseURL(t, server.URL), "test-agent/1.0")

	_, err := h.Fetch(context.Background(), param, testRetryParam(3))
	require.Nil(t, err)

	fetches := spy.recorded()
	require.Len(t, fetches, 1)
	assert.Equal(t, http.StatusOK, fetches[0].httpStatus)
	assert.Equal(t, 0, fetches[0].retryCount)
}

func TestFetch_RecordsRetryCountAfterRecovery(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	spy := &fetchRecordSpy{}
	h := fetcher.NewHttpFetcher(spy, 5*time.Second)
	param := fetcher.NewFetchParam(mustParseURL(t, server.URL), "test-agent/1.0")

	_, err := h.Fetch(context.Background(), param, testRetryParam(3))
	require.Nil(t, err)

	// Two failed attempts preceded the success.
	fetches := spy.recorded()
	require.Len(t, fetches, 1)
	assert.Equal(t, 2, fetches[0].retryCount)
}

func TestFetch_RecordsRetryCountOnExhaustion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	spy := &fetchRecordSpy{}
	h := fetcher.NewHttpFetcher(spy, 5*time.Second)
	param := fetcher.NewFetchParam(mustParseURL(t, server.URL), "test-agent/1.0")

	_, err := h.Fetch(context.Background(), param, testRetryParam(3))
	require.NotNil(t, err)

	fetches := spy.recorded()
	require.Len(t, fetches, 1)
	assert.Equal(t, 2, fetches[0].retryCount)
	assert.Equal(t, http.StatusServiceUnavailable, fetches[0].httpStatus)
}
