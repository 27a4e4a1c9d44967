package analysis

import (
	"context"

	"github.com/tamylaa/content-skimmer/core"
)

type priorityKey struct{}

// WithPriority annotates a context with the processing priority of the
// current request. Providers may use it to pick a cheaper or more thorough
// analysis strategy.
func WithPriority(ctx context.Context, priority string) context.Context {
	if priority == "" {
		priority = core.PriorityNormal
	}
	return context.WithValue(ctx, priorityKey{}, priority)
}

// PriorityFromContext returns the processing priority carried by the
// context, or PriorityNormal when none was set.
func PriorityFromContext(ctx context.Context) string {
	if p, ok := ctx.Value(priorityKey{}).(string); ok && p != "" {
		return p
	}
	return core.PriorityNormal
}
