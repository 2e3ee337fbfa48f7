// Package stats provides run statistics for batch command execution.
//
// This file implements the Recorder, which accumulates per-step outcomes:
// - Success/failure counts
// - HTTP status code distribution
// - Command duration percentiles (t-digest, constant memory)
// - Recent failures for display
//
// The Recorder is written by the execution loop and read concurrently by the
// TUI and the exit summary, so all access goes through a mutex.
package stats

import (
	"sync"
	"time"

	"github.com/influxdata/tdigest"
)

// RecentFailureRingSize is the number of recent failures kept for display.
const RecentFailureRingSize = 5

// Failure describes one failed step for display purposes.
type Failure struct {
	ID         string
	ExitCode   int
	StatusCode int // 0 when no HTTP status was extracted
	TimedOut   bool
}

// Recorder accumulates outcomes across one batch run.
type Recorder struct {
	mu sync.Mutex

	startTime time.Time
	total     int
	dryRun    bool

	processed int
	success   int
	failure   int
	timeouts  int
	infra     int

	currentID string

	aborted   bool
	abortID   string
	abortCode int

	httpStatuses map[int]int64

	durations *tdigest.TDigest

	recentFailures []Failure
}

// NewRecorder creates a recorder for a run over total identifiers.
func NewRecorder(total int, dryRun bool) *Recorder {
	return &Recorder{
		startTime:    time.Now(),
		total:        total,
		dryRun:       dryRun,
		httpStatuses: make(map[int]int64),
		durations:    tdigest.NewWithCompression(100),
	}
}

// RecordStart marks an identifier as the currently executing step.
func (r *Recorder) RecordStart(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currentID = id
}

// RecordResult records one completed step.
func (r *Recorder) RecordResult(id string, success bool, exitCode int, duration time.Duration, timedOut bool, statusCode int, hasStatus bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.processed++
	if success {
		r.success++
	} else {
		r.failure++
		r.pushFailure(Failure{
			ID:         id,
			ExitCode:   exitCode,
			StatusCode: statusCode,
			TimedOut:   timedOut,
		})
	}

	if timedOut {
		r.timeouts++
	}
	if exitCode < 0 {
		r.infra++
	}
	if hasStatus {
		r.httpStatuses[statusCode]++
	}
	if duration > 0 {
		r.durations.Add(duration.Seconds(), 1)
	}
}

// RecordDryRun records one rehearsed (not executed) step.
func (r *Recorder) RecordDryRun() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed++
	r.success++
}

// RecordAbort marks the run as halted by stop-on-HTTP-error.
func (r *Recorder) RecordAbort(id string, statusCode int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aborted = true
	r.abortID = id
	r.abortCode = statusCode
}

// pushFailure appends to the bounded recent-failure ring. Caller holds mu.
func (r *Recorder) pushFailure(f Failure) {
	r.recentFailures = append(r.recentFailures, f)
	if len(r.recentFailures) > RecentFailureRingSize {
		r.recentFailures = r.recentFailures[1:]
	}
}

// Snapshot is a point-in-time copy of the recorder's state.
type Snapshot struct {
	StartTime time.Time
	Elapsed   time.Duration
	Total     int
	DryRun    bool

	Processed int
	Success   int
	Failure   int
	Timeouts  int
	Infra     int

	CurrentID string

	Aborted   bool
	AbortID   string
	AbortCode int

	HTTPStatuses map[int]int64

	// Command duration percentiles in wall-clock time.
	DurationP50 time.Duration
	DurationP95 time.Duration
	DurationP99 time.Duration

	RecentFailures []Failure

	// Rate is processed steps per second of elapsed time.
	Rate float64
}

// GetSnapshot returns a copy of the current state, safe to read without
// further synchronization.
func (r *Recorder) GetSnapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	elapsed := time.Since(r.startTime)

	snap := Snapshot{
		StartTime:    r.startTime,
		Elapsed:      elapsed,
		Total:        r.total,
		DryRun:       r.dryRun,
		Processed:    r.processed,
		Success:      r.success,
		Failure:      r.failure,
		Timeouts:     r.timeouts,
		Infra:        r.infra,
		CurrentID:    r.currentID,
		Aborted:      r.aborted,
		AbortID:      r.abortID,
		AbortCode:    r.abortCode,
		HTTPStatuses: make(map[int]int64, len(r.httpStatuses)),
	}

	for code, count := range r.httpStatuses {
		snap.HTTPStatuses[code] = count
	}

	snap.RecentFailures = append(snap.RecentFailures, r.recentFailures...)

	if r.durations.Count() > 0 {
		snap.DurationP50 = secondsToDuration(r.durations.Quantile(0.50))
		snap.DurationP95 = secondsToDuration(r.durations.Quantile(0.95))
		snap.DurationP99 = secondsToDuration(r.durations.Quantile(0.99))
	}

	if elapsed > 0 {
		snap.Rate = float64(r.processed) / elapsed.Seconds()
	}

	return snap
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
