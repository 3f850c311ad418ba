package pipeline

import (
	"sync"

	"lingopod/internal/transcript"
)

// State names a pipeline phase.
type State string

const (
	StateIdle         State = "idle"
	StateDownloading  State = "downloading"
	StateTranscribing State = "transcribing"
	StateTranslating  State = "translating"
	StateCaching      State = "caching"
	StateDone         State = "done"
	StateError        State = "error"
)

// Status is a point-in-time snapshot of the active (or most recent) job. It
// is reset on every start call, mutated by the running job, and read by
// status pollers.
type Status struct {
	State        State   `json:"state"`
	JobID        string  `json:"job_id,omitempty"`
	EpisodeID    string  `json:"episode_id,omitempty"`
	Progress     float64 `json:"progress"`
	Message      string  `json:"message"`
	IsProcessing bool    `json:"is_processing"`
	Error        string  `json:"error,omitempty"`
}

// tracker is the single-writer job status holder. The active job writes
// through it; pollers take snapshots.
type tracker struct {
	mu       sync.RWMutex
	status   Status
	segments []transcript.Segment
}

func newTracker() *tracker {
	return &tracker{status: Status{State: StateIdle}}
}

// begin resets the tracker for a new job.
func (t *tracker) begin(jobID, episodeID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = Status{
		State:        StateIdle,
		JobID:        jobID,
		EpisodeID:    episodeID,
		Message:      "Starting...",
		IsProcessing: true,
	}
	t.segments = nil
}

// setState enters a new phase with the given progress and message.
func (t *tracker) setState(state State, progress float64, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.State = state
	t.status.Progress = progress
	t.status.Message = message
}

// report updates progress and message within the current phase.
func (t *tracker) report(percent float64, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Progress = percent
	if message != "" {
		t.status.Message = message
	}
}

// fail moves the job to the error terminal state.
func (t *tracker) fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.State = StateError
	t.status.Error = err.Error()
	t.status.Message = "Processing failed"
	t.status.IsProcessing = false
}

// complete moves the job to done and publishes its segments.
func (t *tracker) complete(segments []transcript.Segment, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.State = StateDone
	t.status.Progress = 100
	t.status.Message = message
	t.status.IsProcessing = false
	t.segments = segments
}

// Snapshot returns a copy of the current status.
func (t *tracker) Snapshot() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Segments returns a copy of the finished job's segments.
func (t *tracker) Segments() []transcript.Segment {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]transcript.Segment, len(t.segments))
	copy(out, t.segments)
	return out
}
