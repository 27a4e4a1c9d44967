// Copyright 2026 Tamyla
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package mock provides test doubles for the analysis package.
package mock

import (
	"context"
	"strings"

	"github.com/tamylaa/content-skimmer/core"
)

// MockProvider is a test double for analysis.Provider.
// It allows custom behavior injection via function fields.
type MockProvider struct {
	// ProviderName is returned by Name. Defaults to "mock".
	ProviderName string

	// SupportsFunc is called by Supports if set.
	// If nil, every mime type with a "text/" prefix is supported.
	SupportsFunc func(mimeType string) bool

	// ExtractTextFunc is called by ExtractText if set.
	// If nil, the content bytes are returned as a string.
	ExtractTextFunc func(ctx context.Context, content []byte, mimeType string) (string, error)

	// AnalyzeContentFunc is called by AnalyzeContent if set.
	// If nil, a minimal deterministic result is returned.
	AnalyzeContentFunc func(ctx context.Context, text string, mimeType string) (*core.AnalysisResult, error)

	extractCalls int
	analyzeCalls int
}

// NewMockProvider creates a mock provider with default deterministic
// behavior.
// Note: Returns concrete type to allow test assertions via call counters.
func NewMockProvider() *MockProvider {
	return &MockProvider{ProviderName: "mock"}
}

// Name returns the configured provider name.
func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// Supports reports support for "text/*" types unless overridden.
func (m *MockProvider) Supports(mimeType string) bool {
	if m.SupportsFunc != nil {
		return m.SupportsFunc(mimeType)
	}
	return strings.HasPrefix(mimeType, "text/")
}

// ExtractText returns the content as a string unless overridden.
func (m *MockProvider) ExtractText(ctx context.Context, content []byte, mimeType string) (string, error) {
	m.extractCalls++

	if m.ExtractTextFunc != nil {
		return m.ExtractTextFunc(ctx, content, mimeType)
	}
	return string(content), nil
}

// AnalyzeContent returns a minimal deterministic result unless overridden.
func (m *MockProvider) AnalyzeContent(ctx context.Context, text string, mimeType string) (*core.AnalysisResult, error) {
	m.analyzeCalls++

	if m.AnalyzeContentFunc != nil {
		return m.AnalyzeContentFunc(ctx, text, mimeType)
	}

	summary := text
	if len(summary) > 64 {
		summary = summary[:64]
	}
	return &core.AnalysisResult{
		Summary:  summary,
		Entities: []string{},
		Topics:   []string{},
		Status:   core.AnalysisStatusCompleted,
	}, nil
}

// ExtractCalls returns the number of ExtractText invocations.
func (m *MockProvider) ExtractCalls() int {
	return m.extractCalls
}

// AnalyzeCalls returns the number of AnalyzeContent invocations.
func (m *MockProvider) AnalyzeCalls() int {
	return m.analyzeCalls
}

// Reset clears the call counters and injected behavior.
func (m *MockProvider) Reset() {
	m.extractCalls = 0
	m.analyzeCalls = 0
	m.SupportsFunc = nil
	m.ExtractTextFunc = nil
	m.AnalyzeContentFunc = nil
}
