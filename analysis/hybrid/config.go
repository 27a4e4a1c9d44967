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
	"errors"
	"strings"
)

// Config holds configuration for the hybrid analysis provider.
type Config struct {
	// Host is the base URL of the OpenAI-compatible chat API used for the
	// remote tier.
	// Example: "http://localhost:11434/v1" for a local server
	Host string

	// Model is the model identifier for remote analysis.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	Model string

	// Token authenticates against the remote API. Use "none" for local
	// services that don't require authentication.
	Token string

	// MinRemoteSize is the content size in bytes below which the remote
	// tier is skipped; tiny files gain nothing from a model call.
	// Default: 280
	MinRemoteSize int64

	// MaxRemoteSize is the content size in bytes above which the remote
	// tier is skipped to bound prompt cost.
	// Default: 1 MiB
	MaxRemoteSize int64

	// MaxPromptChars truncates the text sent to the model.
	// Default: 6000
	MaxPromptChars int

	// DailyBudget is the estimated spend ceiling per UTC day, in dollars.
	// Once reached, the remote tier is skipped until the day rolls over.
	// Default: 5.0
	DailyBudget float64

	// CostPerCall is the estimated cost of one remote call, in dollars.
	// Default: 0.002
	CostPerCall float64
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the remote API host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the remote model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithToken sets the remote API token.
func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

// WithSizeBounds sets the content size window for the remote tier.
func WithSizeBounds(min, max int64) ConfigOption {
	return func(c *Config) {
		c.MinRemoteSize = min
		c.MaxRemoteSize = max
	}
}

// WithDailyBudget sets the daily remote spend ceiling in dollars.
func WithDailyBudget(budget float64) ConfigOption {
	return func(c *Config) {
		c.DailyBudget = budget
	}
}

// WithCostPerCall sets the estimated cost of one remote call in dollars.
func WithCostPerCall(cost float64) ConfigOption {
	return func(c *Config) {
		c.CostPerCall = cost
	}
}

// WithMaxPromptChars sets the prompt truncation length.
func WithMaxPromptChars(n int) ConfigOption {
	return func(c *Config) {
		c.MaxPromptChars = n
	}
}

// DefaultConfig returns a Config with sensible defaults for a local
// OpenAI-compatible service.
func DefaultConfig() *Config {
	return &Config{
		Host:           "http://localhost:11434/v1",
		Model:          "qwen2.5:3b",
		Token:          "none",
		MinRemoteSize:  280,
		MaxRemoteSize:  1 << 20,
		MaxPromptChars: 6000,
		DailyBudget:    5.0,
		CostPerCall:    0.002,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to the host if missing, which is
// required by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/")
		c.Host = c.Host + "/v1"
	}
	if c.Token == "" {
		c.Token = "none"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return errors.New("hybrid config: Host is required")
	}
	if c.Model == "" {
		return errors.New("hybrid config: Model is required")
	}
	if c.MinRemoteSize < 0 {
		return errors.New("hybrid config: MinRemoteSize cannot be negative")
	}
	if c.MaxRemoteSize <= c.MinRemoteSize {
		return errors.New("hybrid config: MaxRemoteSize must exceed MinRemoteSize")
	}
	if c.MaxPromptChars < 1 {
		return errors.New("hybrid config: MaxPromptChars must be positive")
	}
	if c.DailyBudget < 0 {
		return errors.New("hybrid config: DailyBudget cannot be negative")
	}
	if c.CostPerCall < 0 {
		return errors.New("hybrid config: CostPerCall cannot be negative")
	}
	return nil
}
