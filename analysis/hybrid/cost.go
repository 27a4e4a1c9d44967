package hybrid

import (
	"sync"
	"time"
)

// Tracker accounts estimated remote-model spend against a daily budget.
// The budget day rolls over at midnight UTC. All methods are safe for
// concurrent use.
type Tracker struct {
	budget float64
	now    func() time.Time // replaced in tests

	mu        sync.Mutex
	day       string
	spent     float64
	remote    int
	rulesOnly int
}

// NewTracker creates a tracker with the given daily budget in dollars.
func NewTracker(budget float64) *Tracker {
	return &Tracker{
		budget: budget,
		now:    time.Now,
	}
}

// rolloverLocked resets counters when the UTC day changed. Must be called
// with the mutex held.
func (t *Tracker) rolloverLocked() {
	day := t.now().UTC().Format(time.DateOnly)
	if day != t.day {
		t.day = day
		t.spent = 0
		t.remote = 0
		t.rulesOnly = 0
	}
}

// Remaining returns the uncommitted budget for the current day.
func (t *Tracker) Remaining() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rolloverLocked()

	remaining := t.budget - t.spent
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// RecordRemote books the estimated cost of one remote call.
func (t *Tracker) RecordRemote(cost float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rolloverLocked()

	t.spent += cost
	t.remote++
}

// RecordRulesOnly counts an analysis answered by the rule-based tier alone.
func (t *Tracker) RecordRulesOnly() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rolloverLocked()

	t.rulesOnly++
}

// CostReport summarizes the current day's analysis spend.
type CostReport struct {
	Day            string  `json:"day"`
	Budget         float64 `json:"budget"`
	Spent          float64 `json:"spent"`
	Remaining      float64 `json:"remaining"`
	RemoteCalls    int     `json:"remoteCalls"`
	RulesOnlyCalls int     `json:"rulesOnlyCalls"`
}

// Report returns the current day's accounting.
func (t *Tracker) Report() CostReport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rolloverLocked()

	remaining := t.budget - t.spent
	if remaining < 0 {
		remaining = 0
	}
	return CostReport{
		Day:            t.day,
		Budget:         t.budget,
		Spent:          t.spent,
		Remaining:      remaining,
		RemoteCalls:    t.remote,
		RulesOnlyCalls: t.rulesOnly,
	}
}
