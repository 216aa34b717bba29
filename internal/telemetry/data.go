package telemetry

/*
runStats
  - Represents a terminal, derived summary of a completed scrape run
  - Contains only aggregate counts and durations
  - Is computed by the scheduler after the run terminates
  - Is recorded exactly once
  - Must not influence scheduling, retries, or run termination
*/
type runStats struct {
	totalPackages int
	totalWritten  int
	totalErrors   int
	durationMs    int64
}

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, metrics, reporting).

	Rules:
	 - ErrorCause is for observability only.
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause MUST NOT be used for retry, continuation, or abort decisions.
	 - ErrorCause values MUST have stable, package-agnostic semantics.
	 - Pipeline packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

  - The failure does not map cleanly to any known category.
  - Used as a safe fallback.

# CauseNetworkFailure

  - Failure caused by network transport or remote availability.
  - TCP timeouts, DNS failures, connection resets.

# CauseRemoteRejection

  - The index explicitly refused the request.
  - HTTP 403 / 404 / other non-retryable client errors.

# CauseRetryFailure

  - All configured retry attempts were exhausted.

# CauseContentInvalid

  - Content was fetched but could not be processed meaningfully.
  - Malformed JSON metadata, unparseable index markup, empty listings.

# CauseStorageFailure

  - Failure while persisting documents.
  - Disk full, write permission errors, filesystem I/O failures.
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CauseRemoteRejection
	CauseRetryFailure
	CauseContentInvalid
	CauseStorageFailure
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CauseRemoteRejection:
		return "remote_rejection"
	case CauseRetryFailure:
		return "retry_failure"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	default:
		return "unknown"
	}
}

type ArtifactKind string

const (
	ArtifactMetadataDocument ArtifactKind = "metadata_document"
)

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL        AttributeKey = "url"
	AttrHost       AttributeKey = "host"
	AttrPackage    AttributeKey = "package"
	AttrField      AttributeKey = "field"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrWritePath  AttributeKey = "write_path"
	AttrMessage    AttributeKey = "message"
)
