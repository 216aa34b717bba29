package telemetry

import (
	"time"

	"go.uber.org/zap"
)

/*
Telemetry Collected
- Fetch timestamps, HTTP status codes, retry counts
- Written document paths and content hashes
- Per-run aggregate stats

Structured logging is preferred.

Determinism guarantees:
 - Telemetry does not affect control flow
 - No component may read telemetry to influence scrape decisions

Telemetry is write-only.
*/

// Sink receives structured scrape events.
// Implementations must be safe for concurrent use; the scheduler's workers
// share a single sink.
type Sink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		retryCount int,
	)

	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

// RunFinalizer records the terminal summary of a completed scrape run.
//
// Contract:
//   - MUST be called exactly once per run.
//   - MUST be called only after the run terminates.
//   - The provided stats MUST be derived from scheduler state,
//     not accumulated incrementally via the sink.
//   - Recorded stats MUST NOT influence control flow or scheduling.
type RunFinalizer interface {
	RecordFinalRunStats(
		totalPackages int,
		totalWritten int,
		totalErrors int,
		duration time.Duration,
	)
}

/*
Recorder captures structured scrape events and emits them through zap.
It must not:
- perform I/O decisions
- affect control flow
Ordering guarantees:
- Events are recorded synchronously in the order they are received by a single worker.
- No global ordering across workers is guaranteed.
*/
type Recorder struct {
	log *zap.SugaredLogger
}

func NewRecorder(log *zap.SugaredLogger) Recorder {
	return Recorder{
		log: log,
	}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	fields := []interface{}{
		"observed_at", observedAt.Format(time.RFC3339),
		"package", packageName,
		"action", action,
		"cause", cause,
	}
	for _, attr := range attrs {
		fields = append(fields, string(attr.Key), attr.Value)
	}
	r.log.Errorw(errorString, fields...)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	retryCount int,
) {
	r.log.Infow("fetch",
		"url", fetchUrl,
		"http_status", httpStatus,
		"duration_ms", duration.Milliseconds(),
		"retry_count", retryCount,
	)
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	fields := []interface{}{
		"kind", string(kind),
		"path", path,
	}
	for _, attr := range attrs {
		fields = append(fields, string(attr.Key), attr.Value)
	}
	r.log.Infow("artifact", fields...)
}

func (r *Recorder) RecordFinalRunStats(
	totalPackages int,
	totalWritten int,
	totalErrors int,
	duration time.Duration,
) {
	stats := runStats{
		totalPackages: totalPackages,
		totalWritten:  totalWritten,
		totalErrors:   totalErrors,
		durationMs:    duration.Milliseconds(),
	}

	r.log.Infow("run complete",
		"total_packages", stats.totalPackages,
		"total_written", stats.totalWritten,
		"total_errors", stats.totalErrors,
		"duration_ms", stats.durationMs,
	)
}

// NoopSink implements Sink and RunFinalizer but does nothing.
// The scheduler (or a test) decides whether to inject Recorder or NoopSink;
// the point is to keep telemetry orthogonal.
type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	retryCount int,
) {
}

func (n *NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}

func (n *NoopSink) RecordFinalRunStats(
	totalPackages int,
	totalWritten int,
	totalErrors int,
	duration time.Duration,
) {
}
