package inmemory

import (
	"sync"
	"time"

	"tradewinds/internal/app/ports"
)

type Snapshot struct {
	ActionTotal    uint64            `json:"action_total"`
	ActionSuccess  uint64            `json:"action_success"`
	ActionConflict uint64            `json:"action_conflict"`
	ActionFailure  uint64            `json:"action_failure"`
	ByResultCode   map[string]uint64 `json:"by_result_code"`
	// SinkRate is sunk voyages over all committed voyages.
	SinkRate      float64 `json:"sink_rate"`
	LastSuccessAt int64   `json:"last_success_at,omitempty"`
}

// Recorder implements ports.ActionMetrics in process memory. Counters reset
// on restart.
type Recorder struct {
	Now func() time.Time

	mu            sync.Mutex
	success       uint64
	conflict      uint64
	failure       uint64
	byResult      map[ports.ResultCode]uint64
	lastSuccessAt time.Time
}

func NewRecorder() *Recorder {
	return &Recorder{
		Now:      time.Now,
		byResult: map[ports.ResultCode]uint64{},
	}
}

func (r *Recorder) RecordSuccess(resultCode ports.ResultCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success++
	r.byResult[resultCode]++
	if r.Now != nil {
		r.lastSuccessAt = r.Now()
	}
}

func (r *Recorder) RecordConflict() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflict++
}

func (r *Recorder) RecordFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failure++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		ActionSuccess:  r.success,
		ActionConflict: r.conflict,
		ActionFailure:  r.failure,
		ActionTotal:    r.success + r.conflict + r.failure,
		ByResultCode:   make(map[string]uint64, len(r.byResult)),
	}
	for k, v := range r.byResult {
		out.ByResultCode[string(k)] = v
	}
	voyages := r.byResult[ports.ResultSailed] + r.byResult[ports.ResultSunk]
	if voyages > 0 {
		out.SinkRate = float64(r.byResult[ports.ResultSunk]) / float64(voyages)
	}
	if !r.lastSuccessAt.IsZero() {
		out.LastSuccessAt = r.lastSuccessAt.UnixMilli()
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
