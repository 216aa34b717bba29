package resolver

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rohmanhakim/pypi-scraper/internal/fetcher"
	"github.com/rohmanhakim/pypi-scraper/internal/telemetry"
	"github.com/rohmanhakim/pypi-scraper/internal/worklist"
	"github.com/rohmanhakim/pypi-scraper/pkg/failure"
	"github.com/rohmanhakim/pypi-scraper/pkg/retry"
	"github.com/rohmanhakim/pypi-scraper/pkg/urlutil"
)

/*
Responsibilities
- Fetch the index homepage through the retrying fetcher
- Extract package names from the listing markup
- De-duplicate names preserving first-seen order

Failure Semantics
- An unreachable homepage (after retries) is fatal
- A page with no extractable names is fatal
- The resolver never decides what happens to individual packages
*/

type Resolver interface {
	Resolve(
		ctx context.Context,
		retryParam retry.RetryParam,
	) ([]string, failure.ClassifiedError)
}

type IndexResolver struct {
	telemetrySink telemetry.Sink
	httpFetcher   fetcher.Fetcher
	indexURL      url.URL
	userAgent     string
}

func NewIndexResolver(
	telemetrySink telemetry.Sink,
	httpFetcher fetcher.Fetcher,
	indexURL url.URL,
	userAgent string,
) IndexResolver {
	return IndexResolver{
		telemetrySink: telemetrySink,
		httpFetcher:   httpFetcher,
		indexURL:      urlutil.Canonicalize(indexURL),
		userAgent:     userAgent,
	}
}

func (r *IndexResolver) Resolve(
	ctx context.Context,
	retryParam retry.RetryParam,
) ([]string, failure.ClassifiedError) {
	names, err := r.resolve(ctx, retryParam)
	if err != nil {
		r.telemetrySink.RecordError(
			time.Now(),
			"resolver",
			"IndexResolver.Resolve",
			resolutionCause(err),
			err.Error(),
			[]telemetry.Attribute{
				telemetry.NewAttr(telemetry.AttrURL, r.indexURL.String()),
			},
		)
		return nil, err
	}
	return names, nil
}

func (r *IndexResolver) resolve(
	ctx context.Context,
	retryParam retry.RetryParam,
) ([]string, failure.ClassifiedError) {
	fetchParam := fetcher.NewFetchParam(r.indexURL, r.userAgent)

	result, fetchErr := r.httpFetcher.Fetch(ctx, fetchParam, retryParam)
	if fetchErr != nil {
		return nil, &ResolutionError{
			Message: fmt.Sprintf("failed to fetch index homepage: %v", fetchErr),
			Cause:   ErrCauseIndexUnreachable,
		}
	}

	names, extractErr := ExtractPackageNames(result.Body())
	if extractErr != nil {
		return nil, extractErr
	}

	deduped := worklist.Dedupe(names)
	if len(deduped) == 0 {
		return nil, &ResolutionError{
			Message: "index page contained no package links",
			Cause:   ErrCauseNoPackagesFound,
		}
	}

	return deduped, nil
}

func resolutionCause(err failure.ClassifiedError) telemetry.ErrorCause {
	if resErr, ok := err.(*ResolutionError); ok {
		return mapResolutionErrorToTelemetryCause(resErr)
	}
	return telemetry.CauseUnknown
}
