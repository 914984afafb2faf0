package status

import (
	"sync"
	"time"
)

// Labels and presentation classes shown next to the table.
const (
	LabelFetching = "Fetching…"
	LabelOK       = "OK"
	errorPrefix   = "Error: "

	ClassPending = "meta-value"
	ClassOK      = "meta-value ok"
	ClassBad     = "meta-value bad"
)

// Snapshot is a read-only copy of the tracker state.
type Snapshot struct {
	Label                 string
	Class                 string
	LastSuccessfulFetchAt time.Time
}

// HasSucceeded reports whether any fetch has completed successfully.
func (s Snapshot) HasSucceeded() bool {
	return !s.LastSuccessfulFetchAt.IsZero()
}

// Tracker records the outcome of the latest fetch attempt and the time of the
// latest successful one. Every mark overwrites the label unconditionally.
type Tracker struct {
	mu          sync.RWMutex
	label       string
	class       string
	lastSuccess time.Time
}

// NewTracker returns a tracker with an empty label and no recorded success.
func NewTracker() *Tracker {
	return &Tracker{class: ClassPending}
}

// MarkFetching switches the label to the transient fetching state.
func (t *Tracker) MarkFetching() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.label = LabelFetching
	t.class = ClassPending
}

// MarkOK records a successful fetch finished at the given time.
// The last-success time never moves backwards.
func (t *Tracker) MarkOK(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if at.After(t.lastSuccess) {
		t.lastSuccess = at
	}
	t.label = LabelOK
	t.class = ClassOK
}

// MarkError records a failed fetch. The last-success time is left untouched.
func (t *Tracker) MarkError(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.label = errorPrefix + message
	t.class = ClassBad
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return Snapshot{
		Label:                 t.label,
		Class:                 t.class,
		LastSuccessfulFetchAt: t.lastSuccess,
	}
}
