package pipeline

import (
	"sync"
	"time"
)

// State is a pipeline run state.
type State string

const (
	StateIdle                 State = "IDLE"
	StateSampling             State = "SAMPLING"
	StateDuplicateScan        State = "DUPLICATE_SCAN"
	StateTextExtraction       State = "TEXT_EXTRACTION"
	StateNormalizing          State = "NORMALIZING"
	StateAggregating          State = "AGGREGATING"
	StateAwaitingVerification State = "AWAITING_VERIFICATION"
	StateDone                 State = "DONE"
	StateFailed               State = "FAILED"
)

// Stage names used for timings that are not run states.
const (
	StageDownload      = "DOWNLOAD"
	StageTranscription = "TRANSCRIPTION"
)

// StageTiming records how long a stage took.
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration_ns"`
}

// tracker records state transitions and timings. Branches report from their
// own goroutines, so access is serialized.
type tracker struct {
	mu      sync.Mutex
	now     func() time.Time
	current State
	history []State
	timings []StageTiming
}

func newTracker(now func() time.Time) *tracker {
	return &tracker{now: now, current: StateIdle, history: []State{StateIdle}}
}

func (t *tracker) enter(state State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = state
	t.history = append(t.history, state)
}

// time runs fn and records its duration under stage.
func (t *tracker) time(stage string, fn func()) {
	start := t.now()
	fn()
	elapsed := t.now().Sub(start)
	t.mu.Lock()
	t.timings = append(t.timings, StageTiming{Stage: stage, Duration: elapsed})
	t.mu.Unlock()
}

func (t *tracker) state() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

func (t *tracker) snapshot() ([]State, []StageTiming) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]State(nil), t.history...), append([]StageTiming(nil), t.timings...)
}
