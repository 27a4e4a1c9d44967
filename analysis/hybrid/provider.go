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


package hybrid

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/tamylaa/content-skimmer/analysis"
	"github.com/tamylaa/content-skimmer/core"
)

// Provider implements analysis.Provider with a rule-based pass plus a
// policy-gated remote model tier.
type Provider struct {
	config  *Config
	client  llms.Model
	tracker *Tracker
	logger  *slog.Logger
}

var _ analysis.Provider = (*Provider)(nil)

// newProvider is an internal constructor that returns the concrete type.
func newProvider(config *Config) (*Provider, error) {
	if config == nil {
		return nil, ErrConfigRequired
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create the OpenAI-compatible chat client for the remote tier.
	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	return newProviderWithClient(config, client), nil
}

// newProviderWithClient wires a prebuilt model client; used by tests.
func newProviderWithClient(config *Config, client llms.Model) *Provider {
	return &Provider{
		config:  config,
		client:  client,
		tracker: NewTracker(config.DailyBudget),
		logger:  slog.Default().With("component", "hybrid-provider"),
	}
}

// NewProvider creates the hybrid provider from the given configuration.
// The config is validated and normalized before use.
//
// Returns analysis.Provider interface (not *Provider) to enforce
// abstraction; use CostReport via a type assertion where needed.
func NewProvider(config *Config) (analysis.Provider, error) {
	return newProvider(config)
}

// Name identifies this provider in results and logs.
func (p *Provider) Name() string {
	return "hybrid"
}

// Supports reports support for textual content: any "text/*" type plus
// JSON.
func (p *Provider) Supports(mimeType string) bool {
	if mimeType == "application/json" {
		return true
	}
	return strings.HasPrefix(mimeType, "text/")
}

// ExtractText converts raw bytes into plain text, stripping HTML markup
// and validating encodings.
func (p *Provider) ExtractText(ctx context.Context, content []byte, mimeType string) (string, error) {
	return extractText(content, mimeType)
}

// AnalyzeContent runs the rule-based pass and, when the policy allows,
// augments it with the remote model. The remote tier can only improve the
// result; any remote failure degrades to the rule-based result instead of
// failing the analysis.
func (p *Provider) AnalyzeContent(ctx context.Context, text string, mimeType string) (*core.AnalysisResult, error) {
	result := analyzeRules(text)

	decision := DecideStrategy(PolicyInput{
		Size:            int64(len(text)),
		MimeType:        mimeType,
		Priority:        analysis.PriorityFromContext(ctx),
		BudgetRemaining: p.tracker.Remaining(),
		CostPerCall:     p.config.CostPerCall,
		MinRemoteSize:   p.config.MinRemoteSize,
		MaxRemoteSize:   p.config.MaxRemoteSize,
	})

	strategy := decision.Strategy
	reason := decision.Reasoning

	if decision.UseRemoteModel {
		model, err := p.analyzeRemote(ctx, text)
		if err != nil {
			p.logger.Warn("remote analysis failed, keeping rule-based result", "err", err)
			strategy = StrategyRules
			reason = "remote analysis failed, degraded to rules"
			p.tracker.RecordRulesOnly()
		} else {
			result = mergeResults(result, model)
			p.tracker.RecordRemote(decision.EstimatedCost)
		}
	} else {
		p.tracker.RecordRulesOnly()
	}

	result.Enrichment["analysisStrategy"] = strategy
	result.Enrichment["strategyReason"] = reason
	return result, nil
}

// CostReport returns the current day's remote spend accounting.
func (p *Provider) CostReport() CostReport {
	return p.tracker.Report()
}

// mergeResults overlays the model output on the rule-based result. The
// model summary wins when present; entity and topic lists are unioned with
// case-insensitive deduplication.
func mergeResults(rules *core.AnalysisResult, model *modelAnalysis) *core.AnalysisResult {
	if s := strings.TrimSpace(model.Summary); s != "" {
		rules.Summary = s
	}
	rules.Entities = union(rules.Entities, model.Entities)
	rules.Topics = union(rules.Topics, model.Topics)
	if model.Language != "" {
		rules.Enrichment["language"] = model.Language
	}
	return rules
}

// union concatenates two lists preserving order, dropping duplicates
// case-insensitively; the first occurrence keeps its casing.
func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, item := range list {
			item = strings.TrimSpace(item)
			key := strings.ToLower(item)
			if item == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, item)
		}
	}
	return out
}
