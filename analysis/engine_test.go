package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamylaa/content-skimmer/analysis/mock"
	"github.com/tamylaa/content-skimmer/core"
)

func TestNormalizeMimeType(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "already normal", in: "text/plain", want: "text/plain"},
		{name: "uppercase", in: "Text/Plain", want: "text/plain"},
		{name: "parameters stripped", in: "text/html; charset=utf-8", want: "text/html"},
		{name: "surrounding space", in: "  text/csv ", want: "text/csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeMimeType(tt.in))
		})
	}
}

func TestNewEngine_RequiresProviders(t *testing.T) {
	_, err := NewEngine(nil)
	assert.ErrorIs(t, err, ErrProvidersRequired)
}

func TestEngine_AnalyzeFile(t *testing.T) {
	provider := mock.NewMockProvider()
	engine, err := NewEngine([]Provider{provider})
	require.NoError(t, err)

	result, err := engine.AnalyzeFile(context.Background(), []byte("hello world"), "text/plain")

	require.NoError(t, err)
	assert.Equal(t, "hello world", result.Summary)
	assert.Equal(t, "mock", result.Provider)
	assert.Equal(t, core.AnalysisStatusCompleted, result.Status)
}

func TestEngine_FallsBackToNextProvider(t *testing.T) {
	failing := mock.NewMockProvider()
	failing.ProviderName = "primary"
	failing.AnalyzeContentFunc = func(ctx context.Context, text, mimeType string) (*core.AnalysisResult, error) {
		return nil, errors.New("model unavailable")
	}

	backup := mock.NewMockProvider()
	backup.ProviderName = "backup"

	engine, err := NewEngine([]Provider{failing, backup})
	require.NoError(t, err)

	result, err := engine.AnalyzeFile(context.Background(), []byte("content"), "text/plain")

	require.NoError(t, err)
	assert.Equal(t, "backup", result.Provider)
	assert.Equal(t, 1, failing.AnalyzeCalls())
	assert.Equal(t, 1, backup.AnalyzeCalls())
}

func TestEngine_SkipsUnsupportedProviders(t *testing.T) {
	images := mock.NewMockProvider()
	images.ProviderName = "images"
	images.SupportsFunc = func(mimeType string) bool { return mimeType == "image/png" }

	text := mock.NewMockProvider()
	text.ProviderName = "text"

	engine, err := NewEngine([]Provider{images, text})
	require.NoError(t, err)

	result, err := engine.AnalyzeFile(context.Background(), []byte("content"), "text/plain")

	require.NoError(t, err)
	assert.Equal(t, "text", result.Provider)
	assert.Equal(t, 0, images.ExtractCalls(), "unsupported provider must not be invoked")
}

func TestEngine_AllProvidersFailed(t *testing.T) {
	lastErr := errors.New("parse error")

	first := mock.NewMockProvider()
	first.AnalyzeContentFunc = func(ctx context.Context, text, mimeType string) (*core.AnalysisResult, error) {
		return nil, errors.New("timeout")
	}
	second := mock.NewMockProvider()
	second.AnalyzeContentFunc = func(ctx context.Context, text, mimeType string) (*core.AnalysisResult, error) {
		return nil, lastErr
	}

	engine, err := NewEngine([]Provider{first, second})
	require.NoError(t, err)

	_, err = engine.AnalyzeFile(context.Background(), []byte("content"), "text/plain")

	require.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.ErrorIs(t, err, lastErr, "last provider failure should be wrapped")
}

func TestEngine_ExtractFailureTriesNext(t *testing.T) {
	corrupt := mock.NewMockProvider()
	corrupt.ProviderName = "strict"
	corrupt.ExtractTextFunc = func(ctx context.Context, content []byte, mimeType string) (string, error) {
		return "", errors.New("invalid encoding")
	}

	lenient := mock.NewMockProvider()
	lenient.ProviderName = "lenient"

	engine, err := NewEngine([]Provider{corrupt, lenient})
	require.NoError(t, err)

	result, err := engine.AnalyzeFile(context.Background(), []byte("content"), "text/plain")

	require.NoError(t, err)
	assert.Equal(t, "lenient", result.Provider)
	assert.Equal(t, 0, corrupt.AnalyzeCalls(), "analyze must not run after extract fails")
}

func TestEngine_UnsupportedMimeType(t *testing.T) {
	provider := mock.NewMockProvider()
	engine, err := NewEngine([]Provider{provider})
	require.NoError(t, err)

	_, err = engine.AnalyzeFile(context.Background(), []byte{0x50, 0x4b}, "application/zip")

	require.ErrorIs(t, err, ErrUnsupportedMimeType)
	assert.Equal(t, 0, provider.ExtractCalls())
}

func TestEngine_HasCompatibleProvider(t *testing.T) {
	provider := mock.NewMockProvider()
	engine, err := NewEngine([]Provider{provider})
	require.NoError(t, err)

	assert.True(t, engine.HasCompatibleProvider("text/plain"))
	assert.True(t, engine.HasCompatibleProvider("Text/Markdown; charset=utf-8"))
	assert.False(t, engine.HasCompatibleProvider("application/zip"))
}

func TestEngine_CachesByContentAndMimeType(t *testing.T) {
	provider := mock.NewMockProvider()
	engine, err := NewEngine([]Provider{provider})
	require.NoError(t, err)

	ctx := context.Background()
	content := []byte("cached content")

	_, err = engine.AnalyzeFile(ctx, content, "text/plain")
	require.NoError(t, err)
	_, err = engine.AnalyzeFile(ctx, content, "text/plain")
	require.NoError(t, err)

	assert.Equal(t, 1, provider.AnalyzeCalls(), "identical content must be served from cache")

	// A different mime type is a different cache entry.
	_, err = engine.AnalyzeFile(ctx, content, "text/markdown")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.AnalyzeCalls())
}

func TestEngine_CacheReturnsCopies(t *testing.T) {
	provider := mock.NewMockProvider()
	provider.AnalyzeContentFunc = func(ctx context.Context, text, mimeType string) (*core.AnalysisResult, error) {
		return &core.AnalysisResult{
			Summary:    "summary",
			Entities:   []string{"Acme"},
			Enrichment: map[string]any{"language": "en"},
			Status:     core.AnalysisStatusCompleted,
		}, nil
	}

	engine, err := NewEngine([]Provider{provider})
	require.NoError(t, err)

	ctx := context.Background()
	first, err := engine.AnalyzeFile(ctx, []byte("content"), "text/plain")
	require.NoError(t, err)

	// Callers may annotate their copy without poisoning the cache.
	first.Summary = "mutated"
	first.Entities[0] = "mutated"
	first.Enrichment["language"] = "mutated"

	second, err := engine.AnalyzeFile(ctx, []byte("content"), "text/plain")
	require.NoError(t, err)

	assert.Equal(t, "summary", second.Summary)
	assert.Equal(t, "Acme", second.Entities[0])
	assert.Equal(t, "en", second.Enrichment["language"])
}

func TestEngine_CacheEviction(t *testing.T) {
	provider := mock.NewMockProvider()
	engine, err := NewEngine([]Provider{provider}, WithCacheSize(1))
	require.NoError(t, err)

	ctx := context.Background()

	_, err = engine.AnalyzeFile(ctx, []byte("first"), "text/plain")
	require.NoError(t, err)
	_, err = engine.AnalyzeFile(ctx, []byte("second"), "text/plain")
	require.NoError(t, err)
	_, err = engine.AnalyzeFile(ctx, []byte("first"), "text/plain")
	require.NoError(t, err)

	assert.Equal(t, 3, provider.AnalyzeCalls(), "capacity one evicts the older entry")
}

func TestEngine_DoesNotCacheFailures(t *testing.T) {
	attempts := 0
	provider := mock.NewMockProvider()
	provider.AnalyzeContentFunc = func(ctx context.Context, text, mimeType string) (*core.AnalysisResult, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("transient")
		}
		return &core.AnalysisResult{Summary: "ok", Status: core.AnalysisStatusCompleted}, nil
	}

	engine, err := NewEngine([]Provider{provider})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = engine.AnalyzeFile(ctx, []byte("content"), "text/plain")
	require.ErrorIs(t, err, ErrAllProvidersFailed)

	result, err := engine.AnalyzeFile(ctx, []byte("content"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Summary)
}
