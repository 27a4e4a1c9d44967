package analysis

import (
	"context"

	"github.com/tamylaa/content-skimmer/core"
)

// Provider analyzes file content of the MIME types it supports.
// Implementations must be thread-safe for concurrent use.
type Provider interface {
	// Name identifies the provider in results, logs and metrics.
	Name() string

	// Supports reports whether the provider can analyze content of the
	// given MIME type. The type is normalized (lowercase, no parameters)
	// before the call.
	Supports(mimeType string) bool

	// ExtractText converts raw file content into analyzable plain text.
	// Returns an error if the content cannot be decoded, for example when
	// it is not valid text in the claimed encoding.
	ExtractText(ctx context.Context, content []byte, mimeType string) (string, error)

	// AnalyzeContent produces the structured analysis of extracted text.
	// Returns an error if the provider cannot produce a result; the engine
	// then moves on to the next provider in the chain.
	AnalyzeContent(ctx context.Context, text string, mimeType string) (*core.AnalysisResult, error)
}
