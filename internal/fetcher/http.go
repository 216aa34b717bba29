package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rohmanhakim/pypi-scraper/internal/telemetry"
	"github.com/rohmanhakim/pypi-scraper/pkg/failure"
	"github.com/rohmanhakim/pypi-scraper/pkg/retry"
)

/*
Responsibilities

- Perform HTTP GET requests
- Apply headers and timeouts
- Classify responses

Fetch Semantics

- A 2xx response yields the raw body bytes, untouched
- Network errors, timeouts, 5xx and 429 are retryable
- Other 4xx responses are terminal for the call
- All attempts are absorbed by the retry handler; callers see either
  a result or a single classified error

The fetcher never interprets content; it only returns bytes and metadata.
*/

type HttpFetcher struct {
	telemetrySink telemetry.Sink
	httpClient    *http.Client
}

func NewHttpFetcher(
	telemetrySink telemetry.Sink,
	timeout time.Duration,
) HttpFetcher {
	return HttpFetcher{
		telemetrySink: telemetrySink,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

func (h *HttpFetcher) Fetch(
	ctx context.Context,
	fetchParam FetchParam,
	retryParam retry.RetryParam,
) (FetchResult, failure.ClassifiedError) {
	callerMethod := "HttpFetcher.Fetch"
	startTime := time.Now()

	result, attempts, err := h.fetchWithRetry(ctx, fetchParam.fetchUrl, fetchParam.userAgent, retryParam)

	duration := time.Since(startTime)

	// Attempts beyond the first are retries, for successes as well as failures.
	retryCount := attempts - 1
	if retryCount < 0 {
		retryCount = 0
	}

	var statusCode int
	if err != nil {
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			statusCode = fetchErr.Status
		}
	} else {
		statusCode = result.Code()
	}

	h.telemetrySink.RecordFetch(
		fetchParam.fetchUrl.String(),
		statusCode,
		duration,
		retryCount,
	)

	if err != nil {
		if errors.Is(err, &retry.RetryError{}) {
			h.recordRetryError(callerMethod, fetchParam.fetchUrl, err)
		} else {
			h.recordFetchError(callerMethod, fetchParam.fetchUrl, err)
		}

		return FetchResult{}, err
	}

	return result, nil
}

func (h *HttpFetcher) recordFetchError(callerMethod string, fetchUrl url.URL, err failure.ClassifiedError) {
	var fetchError *FetchError
	if errors.As(err, &fetchError) {
		h.telemetrySink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			mapFetchErrorToTelemetryCause(fetchError),
			err.Error(),
			[]telemetry.Attribute{
				telemetry.NewAttr(telemetry.AttrURL, fetchUrl.String()),
				telemetry.NewAttr(telemetry.AttrHTTPStatus, fmt.Sprintf("%d", fetchError.Status)),
			},
		)
	}
}

func (h *HttpFetcher) recordRetryError(callerMethod string, fetchUrl url.URL, err failure.ClassifiedError) {
	var retryError *retry.RetryError
	if errors.As(err, &retryError) {
		h.telemetrySink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			telemetry.CauseRetryFailure,
			err.Error(),
			[]telemetry.Attribute{
				telemetry.NewAttr(telemetry.AttrMessage, retryError.Error()),
				telemetry.NewAttr(telemetry.AttrURL, fetchUrl.String()),
			},
		)
	}
}

// fetchWithRetry reports the number of attempts actually made alongside the
// outcome, so callers can record a truthful retry count.
func (h *HttpFetcher) fetchWithRetry(ctx context.Context, fetchUrl url.URL, userAgent string, retryParam retry.RetryParam) (FetchResult, int, failure.ClassifiedError) {
	attempts := 0
	fetchTask := func() (FetchResult, failure.ClassifiedError) {
		attempts++
		return h.performFetch(ctx, fetchUrl, userAgent)
	}

	result, retryErr := retry.Retry(retryParam, fetchTask)

	if retryErr != nil {
		// A FetchError here means the task failed with a non-retryable error;
		// a RetryError means attempts were exhausted.
		var fetchErr *FetchError
		if errors.As(retryErr, &fetchErr) && !errors.Is(retryErr, &retry.RetryError{}) {
			return FetchResult{}, attempts, fetchErr
		}

		return FetchResult{}, attempts, retryErr
	}

	return result, attempts, nil
}

func (h *HttpFetcher) performFetch(ctx context.Context, fetchUrl url.URL, userAgent string) (FetchResult, failure.ClassifiedError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseNetworkFailure,
		}
	}

	for key, value := range requestHeaders(userAgent) {
		req.Header.Set(key, value)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		// Network/transport errors and client timeouts are retryable
		cause := FetchErrorCause(ErrCauseNetworkFailure)
		if errors.Is(err, context.DeadlineExceeded) {
			cause = ErrCauseTimeout
		}
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
			Cause:     cause,
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		// Server errors (5xx) are retryable
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("server error: %d", resp.StatusCode),
			Retryable: true,
			Cause:     ErrCauseRequest5xx,
			Status:    resp.StatusCode,
		}

	case resp.StatusCode == http.StatusTooManyRequests:
		// Too Many Requests is retryable
		return FetchResult{}, &FetchError{
			Message:   "rate limited (429)",
			Retryable: true,
			Cause:     ErrCauseRequestTooMany,
			Status:    resp.StatusCode,
		}

	case resp.StatusCode == http.StatusNotFound:
		return FetchResult{}, &FetchError{
			Message:   "not found (404)",
			Retryable: false,
			Cause:     ErrCauseRequestNotFound,
			Status:    resp.StatusCode,
		}

	case resp.StatusCode == http.StatusForbidden:
		return FetchResult{}, &FetchError{
			Message:   "access forbidden (403)",
			Retryable: false,
			Cause:     ErrCauseRequestForbidden,
			Status:    resp.StatusCode,
		}

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// Other client errors are not retryable
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("client error: %d", resp.StatusCode),
			Retryable: false,
			Cause:     ErrCauseRequest4xx,
			Status:    resp.StatusCode,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("failed to read response body: %v", err),
			Retryable: true,
			Cause:     ErrCauseReadResponseBodyError,
		}
	}

	responseHeaders := make(map[string]string)
	for key, values := range resp.Header {
		if len(values) > 0 {
			responseHeaders[key] = values[0]
		}
	}

	result := FetchResult{
		url:  fetchUrl,
		body: body,
		meta: ResponseMeta{
			statusCode:          resp.StatusCode,
			transferredSizeByte: uint64(len(body)),
			responseHeaders:     responseHeaders,
		},
	}

	return result, nil
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent": userAgent,
		"Accept":     "application/json,text/html;q=0.9,*/*;q=0.8",
	}
}
