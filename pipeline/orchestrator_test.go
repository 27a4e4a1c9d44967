package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamylaa/content-skimmer/analysis"
	analysismock "github.com/tamylaa/content-skimmer/analysis/mock"
	contentmock "github.com/tamylaa/content-skimmer/content/mock"
	"github.com/tamylaa/content-skimmer/core"
)

// fakeGateway records persistence and callback traffic. The pipeline's own
// mock package would import this package back, so the double lives inline.
type fakeGateway struct {
	markCalls   []string
	saved       map[string]*core.AnalysisResult
	completions []core.ProcessingContext
	failures    []string

	markErr     error
	saveErr     error
	completeErr error
	failErr     error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{saved: make(map[string]*core.AnalysisResult)}
}

func (g *fakeGateway) MarkAnalyzing(_ context.Context, fileID string) error {
	g.markCalls = append(g.markCalls, fileID)
	return g.markErr
}

func (g *fakeGateway) SaveResult(_ context.Context, fileID string, result *core.AnalysisResult) error {
	if g.saveErr != nil {
		return g.saveErr
	}
	g.saved[fileID] = result
	return nil
}

func (g *fakeGateway) ReportCompletion(_ context.Context, pctx core.ProcessingContext, _ *core.AnalysisResult) error {
	if g.completeErr != nil {
		return g.completeErr
	}
	g.completions = append(g.completions, pctx)
	return nil
}

func (g *fakeGateway) ReportFailure(_ context.Context, _ core.ProcessingContext, reason string) error {
	if g.failErr != nil {
		return g.failErr
	}
	g.failures = append(g.failures, reason)
	return nil
}

type busEvent struct {
	eventType string
	payload   any
}

type fakeBus struct {
	events []busEvent
}

func (b *fakeBus) Emit(eventType string, payload any) {
	b.events = append(b.events, busEvent{eventType: eventType, payload: payload})
}

// recordingMonitor captures stage hooks in invocation order.
type recordingMonitor struct {
	stages    []string
	failedErr error
}

func (m *recordingMonitor) Started(core.ProcessingContext)      { m.stages = append(m.stages, "started") }
func (m *recordingMonitor) StatusMarked(core.ProcessingContext) { m.stages = append(m.stages, "status_marked") }
func (m *recordingMonitor) ContentAcquired(_ core.ProcessingContext, _ int) {
	m.stages = append(m.stages, "content_acquired")
}
func (m *recordingMonitor) Analyzed(core.ProcessingContext, *core.AnalysisResult) {
	m.stages = append(m.stages, "analyzed")
}
func (m *recordingMonitor) Completed(core.ProcessingContext, *core.AnalysisResult) {
	m.stages = append(m.stages, "completed")
}
func (m *recordingMonitor) Failed(_ core.ProcessingContext, err error) {
	m.stages = append(m.stages, "failed")
	m.failedErr = err
}

type testHarness struct {
	orch     *Orchestrator
	provider *analysismock.MockProvider
	fetcher  *contentmock.Fetcher
	gateway  *fakeGateway
	bus      *fakeBus
	monitor  *recordingMonitor
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	h := &testHarness{
		provider: analysismock.NewMockProvider(),
		fetcher:  contentmock.NewFetcher(),
		gateway:  newFakeGateway(),
		bus:      &fakeBus{},
		monitor:  &recordingMonitor{},
	}

	engine, err := analysis.NewEngine([]analysis.Provider{h.provider})
	require.NoError(t, err)

	h.orch, err = NewOrchestrator(engine, h.fetcher, h.gateway, h.bus, WithMonitor(h.monitor))
	require.NoError(t, err)

	// Deterministic clock stepping 250ms per reading.
	step := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	h.orch.now = func() time.Time {
		step = step.Add(250 * time.Millisecond)
		return step
	}
	return h
}

func testEvent() *core.FileRegistrationEvent {
	return &core.FileRegistrationEvent{
		FileID:     "f-1",
		UserID:     "u-1",
		Filename:   "report.txt",
		MimeType:   "text/plain",
		FileSize:   64,
		UploadedAt: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestNewOrchestrator(t *testing.T) {
	provider := analysismock.NewMockProvider()
	engine, err := analysis.NewEngine([]analysis.Provider{provider})
	require.NoError(t, err)
	fetcher := contentmock.NewFetcher()
	gateway := newFakeGateway()
	bus := &fakeBus{}

	t.Run("requires an engine", func(t *testing.T) {
		_, err := NewOrchestrator(nil, fetcher, gateway, bus)
		assert.ErrorIs(t, err, ErrEngineRequired)
	})

	t.Run("requires a fetcher", func(t *testing.T) {
		_, err := NewOrchestrator(engine, nil, gateway, bus)
		assert.ErrorIs(t, err, ErrFetcherRequired)
	})

	t.Run("requires a gateway", func(t *testing.T) {
		_, err := NewOrchestrator(engine, fetcher, nil, bus)
		assert.ErrorIs(t, err, ErrGatewayRequired)
	})

	t.Run("requires a bus", func(t *testing.T) {
		_, err := NewOrchestrator(engine, fetcher, gateway, nil)
		assert.ErrorIs(t, err, ErrBusRequired)
	})

	t.Run("valid", func(t *testing.T) {
		o, err := NewOrchestrator(engine, fetcher, gateway, bus)
		require.NoError(t, err)
		assert.NotNil(t, o)
	})
}

func TestProcessFileSuccess(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	err := h.orch.ProcessFile(ctx, testEvent())
	require.NoError(t, err)

	t.Run("status marked before anything else", func(t *testing.T) {
		assert.Equal(t, []string{"f-1"}, h.gateway.markCalls)
	})

	t.Run("result persisted with enrichment", func(t *testing.T) {
		result := h.gateway.saved["f-1"]
		require.NotNil(t, result)
		assert.Equal(t, "mock", result.Provider)
		assert.Equal(t, core.AnalysisStatusCompleted, result.Status)
		assert.Equal(t, 250*time.Millisecond, result.Duration)
		// Default mock content is "content of f-1", three words.
		assert.Equal(t, 3, result.Enrichment["wordCount"])
		assert.Equal(t, "document", result.Enrichment["contentCategory"])
	})

	t.Run("completion callback delivered", func(t *testing.T) {
		require.Len(t, h.gateway.completions, 1)
		pctx := h.gateway.completions[0]
		assert.Equal(t, "f-1", pctx.FileID)
		assert.Equal(t, "u-1", pctx.UserID)
		assert.NotEmpty(t, pctx.JobID)
	})

	t.Run("completed event emitted", func(t *testing.T) {
		require.Len(t, h.bus.events, 1)
		assert.Equal(t, core.EventAnalysisCompleted, h.bus.events[0].eventType)
		payload, ok := h.bus.events[0].payload.(core.AnalysisCompleted)
		require.True(t, ok)
		assert.Equal(t, "f-1", payload.Context.FileID)
		require.NotNil(t, payload.Result)
		assert.Equal(t, "mock", payload.Result.Provider)
	})

	t.Run("stages in order", func(t *testing.T) {
		assert.Equal(t,
			[]string{"started", "status_marked", "content_acquired", "analyzed", "completed"},
			h.monitor.stages)
	})

	t.Run("no failure traffic", func(t *testing.T) {
		assert.Empty(t, h.gateway.failures)
	})
}

func TestProcessFileInvalidEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("nil event", func(t *testing.T) {
		h := newTestHarness(t)

		err := h.orch.ProcessFile(ctx, nil)

		assert.ErrorIs(t, err, core.ErrInvalidEvent)
		assert.Empty(t, h.gateway.markCalls)
		assert.Empty(t, h.bus.events)
		assert.Empty(t, h.monitor.stages)
	})

	t.Run("missing user id", func(t *testing.T) {
		h := newTestHarness(t)
		event := testEvent()
		event.UserID = ""

		err := h.orch.ProcessFile(ctx, event)

		assert.ErrorIs(t, err, core.ErrInvalidEvent)
		assert.Empty(t, h.gateway.markCalls)
	})
}

func TestProcessFileUnsupportedType(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)
	event := testEvent()
	event.MimeType = "application/x-unknown"

	err := h.orch.ProcessFile(ctx, event)

	assert.ErrorIs(t, err, ErrUnsupportedContentType)
	assert.Equal(t, 0, h.fetcher.CallCount(), "no download may happen for an unsupported type")

	require.Len(t, h.gateway.failures, 1)
	assert.Contains(t, h.gateway.failures[0], "unsupported content type")

	require.Len(t, h.bus.events, 1)
	assert.Equal(t, core.EventAnalysisFailed, h.bus.events[0].eventType)
	payload, ok := h.bus.events[0].payload.(core.AnalysisFailed)
	require.True(t, ok)
	assert.Equal(t, "f-1", payload.Context.FileID)
	assert.Contains(t, payload.Reason, "unsupported content type")

	assert.Equal(t, []string{"started", "status_marked", "failed"}, h.monitor.stages)
	assert.ErrorIs(t, h.monitor.failedErr, ErrUnsupportedContentType)
	assert.Empty(t, h.gateway.completions)
}

func TestProcessFileAcquisitionFailure(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)
	h.fetcher.FetchFunc = func(context.Context, *core.FileRegistrationEvent) ([]byte, error) {
		return nil, errors.New("store unreachable")
	}

	err := h.orch.ProcessFile(ctx, testEvent())

	assert.ErrorIs(t, err, ErrAcquisitionFailed)
	assert.Contains(t, err.Error(), "store unreachable")
	assert.Equal(t, []string{"started", "status_marked", "failed"}, h.monitor.stages)
	require.Len(t, h.bus.events, 1)
	assert.Equal(t, core.EventAnalysisFailed, h.bus.events[0].eventType)
	assert.Empty(t, h.gateway.saved)
}

func TestProcessFileAnalysisFailure(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)
	h.provider.AnalyzeContentFunc = func(context.Context, string, string) (*core.AnalysisResult, error) {
		return nil, errors.New("model exploded")
	}

	err := h.orch.ProcessFile(ctx, testEvent())

	assert.ErrorIs(t, err, ErrAnalysisFailed)
	assert.ErrorIs(t, err, analysis.ErrAllProvidersFailed)
	assert.Equal(t,
		[]string{"started", "status_marked", "content_acquired", "failed"},
		h.monitor.stages)
	require.Len(t, h.gateway.failures, 1)
	assert.Empty(t, h.gateway.completions)
}

func TestProcessFileCallbackFailure(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)
	h.gateway.completeErr = errors.New("webhook 503")

	err := h.orch.ProcessFile(ctx, testEvent())

	assert.ErrorIs(t, err, ErrCallbackFailed)

	// The result was persisted before the callback attempt.
	assert.NotNil(t, h.gateway.saved["f-1"])

	// A failed callback routes the attempt through the failure path.
	require.Len(t, h.gateway.failures, 1)
	require.Len(t, h.bus.events, 1)
	assert.Equal(t, core.EventAnalysisFailed, h.bus.events[0].eventType)
	assert.Equal(t,
		[]string{"started", "status_marked", "content_acquired", "analyzed", "failed"},
		h.monitor.stages)
}

func TestProcessFileStatusFailureContinues(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)
	h.gateway.markErr = errors.New("store down")

	err := h.orch.ProcessFile(ctx, testEvent())

	require.NoError(t, err, "the status transition is advisory")
	assert.Len(t, h.gateway.completions, 1)
}

func TestProcessFileSaveFailureContinues(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)
	h.gateway.saveErr = errors.New("store down")

	err := h.orch.ProcessFile(ctx, testEvent())

	require.NoError(t, err, "persisting the result is best effort")
	assert.Len(t, h.gateway.completions, 1)
	require.Len(t, h.bus.events, 1)
	assert.Equal(t, core.EventAnalysisCompleted, h.bus.events[0].eventType)
}

func TestProcessFileFailureCallbackNeverMasks(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)
	h.fetcher.FetchFunc = func(context.Context, *core.FileRegistrationEvent) ([]byte, error) {
		return nil, errors.New("store unreachable")
	}
	h.gateway.failErr = errors.New("failure webhook also down")

	err := h.orch.ProcessFile(ctx, testEvent())

	assert.ErrorIs(t, err, ErrAcquisitionFailed)
	assert.NotContains(t, err.Error(), "failure webhook also down")

	// The failure event still goes out for local consumers.
	require.Len(t, h.bus.events, 1)
	assert.Equal(t, core.EventAnalysisFailed, h.bus.events[0].eventType)
}

func TestProcessFileThreadsPriority(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)

	var seen string
	h.provider.AnalyzeContentFunc = func(ctx context.Context, text string, _ string) (*core.AnalysisResult, error) {
		seen = analysis.PriorityFromContext(ctx)
		return &core.AnalysisResult{Summary: text, Status: core.AnalysisStatusCompleted}, nil
	}

	event := testEvent()
	event.Priority = core.PriorityLow
	require.NoError(t, h.orch.ProcessFile(ctx, event))

	assert.Equal(t, core.PriorityLow, seen, "the event priority must reach the provider")
}

func TestProcessFileKeepsProviderWordCount(t *testing.T) {
	ctx := context.Background()
	h := newTestHarness(t)
	h.provider.AnalyzeContentFunc = func(_ context.Context, text string, _ string) (*core.AnalysisResult, error) {
		return &core.AnalysisResult{
			Summary:    "provider summary",
			Entities:   []string{},
			Topics:     []string{},
			Status:     core.AnalysisStatusCompleted,
			Enrichment: map[string]any{"wordCount": 42},
		}, nil
	}

	require.NoError(t, h.orch.ProcessFile(ctx, testEvent()))

	result := h.gateway.saved["f-1"]
	require.NotNil(t, result)
	assert.Equal(t, 42, result.Enrichment["wordCount"], "a provider count wins over the byte estimate")
	assert.Equal(t, "document", result.Enrichment["contentCategory"])
}

func TestContentCategory(t *testing.T) {
	cases := []struct {
		mimeType string
		want     string
	}{
		{"text/plain", "document"},
		{"TEXT/PLAIN; charset=utf-8", "document"},
		{"text/csv", "document"},
		{"application/pdf", "document"},
		{"image/png", "image"},
		{"audio/mpeg", "audio"},
		{"video/mp4", "video"},
		{"application/json", "data"},
		{"application/zip", "archive"},
		{"application/octet-stream", "other"},
	}
	for _, tc := range cases {
		t.Run(tc.mimeType, func(t *testing.T) {
			assert.Equal(t, tc.want, contentCategory(tc.mimeType))
		})
	}
}
