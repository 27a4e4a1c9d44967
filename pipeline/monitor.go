package pipeline

import "github.com/tamylaa/content-skimmer/core"

// Monitor provides hooks to observe one processing attempt.
// Implement this interface to track the pipeline's stage transitions.
type Monitor interface {
	Started(pctx core.ProcessingContext)
	StatusMarked(pctx core.ProcessingContext)
	ContentAcquired(pctx core.ProcessingContext, size int)
	Analyzed(pctx core.ProcessingContext, result *core.AnalysisResult)
	Completed(pctx core.ProcessingContext, result *core.AnalysisResult)
	Failed(pctx core.ProcessingContext, err error)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Started(_ core.ProcessingContext)                           {}
func (n *noopMonitor) StatusMarked(_ core.ProcessingContext)                      {}
func (n *noopMonitor) ContentAcquired(_ core.ProcessingContext, _ int)            {}
func (n *noopMonitor) Analyzed(_ core.ProcessingContext, _ *core.AnalysisResult)  {}
func (n *noopMonitor) Completed(_ core.ProcessingContext, _ *core.AnalysisResult) {}
func (n *noopMonitor) Failed(_ core.ProcessingContext, _ error)                   {}
