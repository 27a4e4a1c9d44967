package core

// Names of the domain events published on the in-process bus after each
// processing attempt.
const (
	// EventAnalysisCompleted is published after results are persisted and the
	// completion callback was delivered.
	EventAnalysisCompleted = "analysis_completed"
	// EventAnalysisFailed is published when a processing attempt ends in any
	// failure category.
	EventAnalysisFailed = "analysis_failed"
)

// AnalysisCompleted is the payload of EventAnalysisCompleted.
type AnalysisCompleted struct {
	Context ProcessingContext
	Result  *AnalysisResult
}

// AnalysisFailed is the payload of EventAnalysisFailed.
type AnalysisFailed struct {
	Context ProcessingContext
	Reason  string
}
