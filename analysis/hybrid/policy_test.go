package hybrid

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tamylaa/content-skimmer/core"
)

func TestDecideStrategy(t *testing.T) {
	base := PolicyInput{
		Size:            1000,
		MimeType:        "text/plain",
		Priority:        core.PriorityNormal,
		BudgetRemaining: 5.0,
		CostPerCall:     0.002,
		MinRemoteSize:   280,
		MaxRemoteSize:   1 << 20,
	}

	tests := []struct {
		name       string
		mutate     func(*PolicyInput)
		wantRemote bool
		wantLabel  string
	}{
		{
			name:       "content in window uses remote",
			mutate:     func(in *PolicyInput) {},
			wantRemote: true,
			wantLabel:  StrategyHybrid,
		},
		{
			name:       "tiny content stays on rules",
			mutate:     func(in *PolicyInput) { in.Size = 100 },
			wantRemote: false,
			wantLabel:  StrategyRules,
		},
		{
			name:       "size just below minimum",
			mutate:     func(in *PolicyInput) { in.Size = 279 },
			wantRemote: false,
			wantLabel:  StrategyRules,
		},
		{
			name:       "size exactly at minimum",
			mutate:     func(in *PolicyInput) { in.Size = 280 },
			wantRemote: true,
			wantLabel:  StrategyHybrid,
		},
		{
			name:       "oversized content stays on rules",
			mutate:     func(in *PolicyInput) { in.Size = 2 << 20 },
			wantRemote: false,
			wantLabel:  StrategyRules,
		},
		{
			name:       "size exactly at maximum",
			mutate:     func(in *PolicyInput) { in.Size = 1 << 20 },
			wantRemote: true,
			wantLabel:  StrategyHybrid,
		},
		{
			name:       "low priority stays on rules",
			mutate:     func(in *PolicyInput) { in.Priority = core.PriorityLow },
			wantRemote: false,
			wantLabel:  StrategyRules,
		},
		{
			name:       "high priority uses remote",
			mutate:     func(in *PolicyInput) { in.Priority = core.PriorityHigh },
			wantRemote: true,
			wantLabel:  StrategyHybrid,
		},
		{
			name:       "exhausted budget stays on rules",
			mutate:     func(in *PolicyInput) { in.BudgetRemaining = 0.001 },
			wantRemote: false,
			wantLabel:  StrategyRules,
		},
		{
			name:       "budget exactly covers one call",
			mutate:     func(in *PolicyInput) { in.BudgetRemaining = 0.002 },
			wantRemote: true,
			wantLabel:  StrategyHybrid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)

			d := DecideStrategy(in)

			assert.Equal(t, tt.wantRemote, d.UseRemoteModel)
			assert.Equal(t, tt.wantLabel, d.Strategy)
			assert.NotEmpty(t, d.Reasoning)
			if tt.wantRemote {
				assert.Equal(t, in.CostPerCall, d.EstimatedCost)
			} else {
				assert.Zero(t, d.EstimatedCost)
			}
		})
	}
}

func TestDecideStrategy_SizeBeatsOtherRules(t *testing.T) {
	// Size gating applies before priority or budget checks, so an oversized
	// high-priority file still stays on rules.
	d := DecideStrategy(PolicyInput{
		Size:            5 << 20,
		Priority:        core.PriorityHigh,
		BudgetRemaining: 100,
		CostPerCall:     0.002,
		MinRemoteSize:   280,
		MaxRemoteSize:   1 << 20,
	})

	assert.False(t, d.UseRemoteModel)
	assert.Equal(t, StrategyRules, d.Strategy)
	assert.Contains(t, d.Reasoning, "too large")
}

func TestDecideStrategy_IsDeterministic(t *testing.T) {
	in := PolicyInput{
		Size:            500,
		Priority:        core.PriorityNormal,
		BudgetRemaining: 1.0,
		CostPerCall:     0.002,
		MinRemoteSize:   280,
		MaxRemoteSize:   1 << 20,
	}

	first := DecideStrategy(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, DecideStrategy(in))
	}
}
