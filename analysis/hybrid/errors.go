package hybrid

import "errors"

var (
	// ErrCorruptContent indicates the content is not valid text in the
	// claimed encoding and cannot be analyzed.
	ErrCorruptContent = errors.New("content is not valid text")

	// ErrConfigRequired is returned when a provider is created without
	// configuration.
	ErrConfigRequired = errors.New("config is required")
)
