package document

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/rohmanhakim/pypi-scraper/internal/fetcher"
	"github.com/rohmanhakim/pypi-scraper/internal/telemetry"
	"github.com/rohmanhakim/pypi-scraper/pkg/failure"
	"github.com/rohmanhakim/pypi-scraper/pkg/retry"
	"github.com/rohmanhakim/pypi-scraper/pkg/urlutil"
)

/*
Responsibilities
- Build the per-package metadata URL deterministically from the package name
- Retrieve the JSON body through the retrying fetcher
- Validate the body parses as JSON; malformed data must never reach storage

The fetcher's retry and status classification are reused as-is; this stage
adds only URL construction and content validation.
*/

type Fetcher interface {
	FetchMetadata(
		ctx context.Context,
		name string,
		retryParam retry.RetryParam,
	) (Document, failure.ClassifiedError)
}

type MetadataFetcher struct {
	telemetrySink telemetry.Sink
	httpFetcher   fetcher.Fetcher
	indexURL      url.URL
	userAgent     string
}

func NewMetadataFetcher(
	telemetrySink telemetry.Sink,
	httpFetcher fetcher.Fetcher,
	indexURL url.URL,
	userAgent string,
) MetadataFetcher {
	return MetadataFetcher{
		telemetrySink: telemetrySink,
		httpFetcher:   httpFetcher,
		indexURL:      urlutil.Canonicalize(indexURL),
		userAgent:     userAgent,
	}
}

// MetadataURL returns the metadata endpoint for a package name:
// {index}/{name}/json.
func (m *MetadataFetcher) MetadataURL(name string) url.URL {
	metadataURL := m.indexURL
	metadataURL.Path = metadataURL.Path + "/" + name + "/json"
	return metadataURL
}

func (m *MetadataFetcher) FetchMetadata(
	ctx context.Context,
	name string,
	retryParam retry.RetryParam,
) (Document, failure.ClassifiedError) {
	metadataURL := m.MetadataURL(name)
	fetchParam := fetcher.NewFetchParam(metadataURL, m.userAgent)

	result, fetchErr := m.httpFetcher.Fetch(ctx, fetchParam, retryParam)
	if fetchErr != nil {
		// Already recorded by the fetcher; surfaced for the report.
		return Document{}, fetchErr
	}

	body := result.Body()
	if validationErr := validateBody(body); validationErr != nil {
		m.telemetrySink.RecordError(
			time.Now(),
			"document",
			"MetadataFetcher.FetchMetadata",
			mapDocumentErrorToTelemetryCause(validationErr),
			validationErr.Error(),
			[]telemetry.Attribute{
				telemetry.NewAttr(telemetry.AttrPackage, name),
				telemetry.NewAttr(telemetry.AttrURL, metadataURL.String()),
			},
		)
		return Document{}, validationErr
	}

	return NewDocument(name, body, metadataURL), nil
}

func validateBody(body []byte) *DocumentError {
	if len(body) == 0 {
		return &DocumentError{
			Message: "index returned an empty metadata body",
			Cause:   ErrCauseEmptyBody,
		}
	}
	if !json.Valid(body) {
		return &DocumentError{
			Message: fmt.Sprintf("index returned %d bytes of invalid JSON", len(body)),
			Cause:   ErrCauseInvalidJSON,
		}
	}
	return nil
}
