package analysis

import "errors"

var (
	// ErrProvidersRequired is returned when an Engine is created without
	// providers.
	ErrProvidersRequired = errors.New("at least one provider is required")

	// ErrUnsupportedMimeType is returned when no configured provider
	// supports the content's MIME type.
	ErrUnsupportedMimeType = errors.New("no provider supports mime type")

	// ErrAllProvidersFailed is returned when every capable provider failed
	// to analyze the content.
	ErrAllProvidersFailed = errors.New("all capable providers failed")
)
