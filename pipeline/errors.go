package pipeline

import "errors"

var (
	// ErrEngineRequired is returned when no analysis engine is provided.
	ErrEngineRequired = errors.New("analysis engine required")

	// ErrFetcherRequired is returned when no content fetcher is provided.
	ErrFetcherRequired = errors.New("content fetcher required")

	// ErrGatewayRequired is returned when no metadata gateway is provided.
	ErrGatewayRequired = errors.New("metadata gateway required")

	// ErrBusRequired is returned when no event bus is provided.
	ErrBusRequired = errors.New("event bus required")
)

// Failure categories. ProcessFile wraps each stage error in one of these so
// callers can classify the failure without knowing stage internals.
var (
	// ErrUnsupportedContentType means no configured provider handles the
	// event's MIME type. Raised before any content is acquired.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrAcquisitionFailed wraps content download errors.
	ErrAcquisitionFailed = errors.New("content acquisition failed")

	// ErrAnalysisFailed wraps provider chain errors.
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrCallbackFailed wraps completion webhook delivery errors.
	ErrCallbackFailed = errors.New("completion callback failed")
)
