package hybrid

import (
	"github.com/tamylaa/content-skimmer/core"
)

// Analysis strategies reported in results.
const (
	// StrategyRules means only the rule-based pass ran.
	StrategyRules = "rules_only"
	// StrategyHybrid means the remote model augmented the rule-based pass.
	StrategyHybrid = "hybrid"
)

// PolicyInput carries the facts the strategy decision is made from.
type PolicyInput struct {
	// Size is the extracted text size in bytes.
	Size int64
	// MimeType is the normalized content type.
	MimeType string
	// Priority is the processing priority of the request.
	Priority string
	// BudgetRemaining is the uncommitted remote spend for the current day,
	// in dollars.
	BudgetRemaining float64
	// CostPerCall is the estimated cost of one remote call, in dollars.
	CostPerCall float64
	// MinRemoteSize and MaxRemoteSize bound the content sizes worth a
	// remote call.
	MinRemoteSize int64
	MaxRemoteSize int64
}

// Decision is the outcome of the strategy policy.
type Decision struct {
	// UseRemoteModel reports whether the remote tier should run.
	UseRemoteModel bool
	// Strategy is the resulting strategy label.
	Strategy string
	// EstimatedCost is the projected spend of this decision, in dollars.
	EstimatedCost float64
	// Reasoning explains the decision for result enrichment and logs.
	Reasoning string
}

// DecideStrategy picks the analysis strategy for one file. It is a pure
// function of its input, which keeps the policy testable and its decisions
// reproducible.
func DecideStrategy(in PolicyInput) Decision {
	rules := func(reason string) Decision {
		return Decision{Strategy: StrategyRules, Reasoning: reason}
	}

	switch {
	case in.Size < in.MinRemoteSize:
		return rules("content below threshold, rule-based analysis is sufficient")
	case in.Size > in.MaxRemoteSize:
		return rules("content too large for remote analysis")
	case in.Priority == core.PriorityLow:
		return rules("low priority, reserving remote budget")
	case in.BudgetRemaining < in.CostPerCall:
		return rules("daily remote budget exhausted")
	}

	return Decision{
		UseRemoteModel: true,
		Strategy:       StrategyHybrid,
		EstimatedCost:  in.CostPerCall,
		Reasoning:      "content within remote analysis window",
	}
}
