package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/tikz/dock/grid"
	"github.com/tikz/dock/result"
)

// Status tracks a job through its lifecycle:
// Created -> Initializing -> FilesStaged -> Executing -> ParsingOutput ->
// {Completed, Failed, Aborted, TimedOut}.
type Status int

const (
	Created Status = iota
	Initializing
	FilesStaged
	Executing
	ParsingOutput
	Completed
	Failed
	Aborted
	TimedOut
)

var statusNames = [...]string{
	"created", "initializing", "files-staged", "executing",
	"parsing-output", "completed", "failed", "aborted", "timed-out",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// Terminal returns true once the job has settled.
func (s Status) Terminal() bool {
	return s >= Completed
}

// Failure taxonomy. Every failed run settles with an error wrapping exactly
// one of these; none is ever retried silently.
var (
	ErrEngineInit = errors.New("engine init failed")
	ErrMount      = errors.New("staging files failed")
	ErrCrashed    = errors.New("engine crashed")
	ErrNoOutput   = errors.New("engine produced no output")
	ErrTimeout    = errors.New("docking run timed out")
	ErrAborted    = errors.New("docking run aborted")
)

// SearchParams are the engine's conformational search settings.
type SearchParams struct {
	Exhaustiveness int
	NumModes       int
	EnergyRange    float64
	Seed           *int64 // nil lets the engine pick its own
}

// DefaultParams returns the engine's standard search settings.
func DefaultParams() SearchParams {
	return SearchParams{
		Exhaustiveness: 8,
		NumModes:       9,
		EnergyRange:    3.0,
	}
}

// Job is one docking submission: receptor and ligand text in docking format,
// the search volume, and the search parameters. Jobs are single-use; the
// controller stages, runs and settles each one in its own isolated context.
type Job struct {
	ID       string
	Receptor string
	Ligand   string
	Box      grid.Box
	Params   SearchParams
	Timeout  time.Duration // wall clock; zero means the controller default
}

// Event is a progress notification emitted at fixed lifecycle milestones.
// The engine offers no intermediate signal, so progress is coarse and
// phase-based.
type Event struct {
	Status   Status
	Progress int // 0-100
	Message  string
}

// Run is the caller's handle for one submitted job. It settles exactly once,
// with either a result or an error wrapping one of the failure kinds.
type Run struct {
	ID string

	events  chan Event
	done    chan struct{}
	cancel  func()
	aborted atomic.Bool

	mu       sync.Mutex
	status   Status
	progress int
	res      *result.Result
	err      error
}

func newRun(id string, cancel func()) *Run {
	return &Run{
		ID:     id,
		events: make(chan Event, 16),
		done:   make(chan struct{}),
		cancel: cancel,
		status: Created,
	}
}

// Events streams progress notifications. The channel is closed on
// settlement; a slow consumer drops notifications rather than stalling
// the run.
func (r *Run) Events() <-chan Event {
	return r.events
}

// Done is closed when the run settles.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Status returns the run's current lifecycle state.
func (r *Run) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Wait blocks until the run settles and returns its outcome.
func (r *Run) Wait() (*result.Result, error) {
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.res, r.err
}

// Abort terminates the run immediately. It is idempotent and a no-op once
// the run has settled.
func (r *Run) Abort() {
	if r.aborted.CompareAndSwap(false, true) {
		r.cancel()
	}
}

// emit records a state transition and publishes it without blocking.
func (r *Run) emit(status Status, progress int, message string) {
	r.mu.Lock()
	if r.status.Terminal() {
		r.mu.Unlock()
		return
	}
	r.status = status
	r.progress = progress
	r.mu.Unlock()

	select {
	case r.events <- Event{Status: status, Progress: progress, Message: message}:
	default:
	}
}

// settle records the terminal state exactly once and releases the handle's
// channels.
func (r *Run) settle(status Status, res *result.Result, err error) {
	r.mu.Lock()
	if r.status.Terminal() {
		r.mu.Unlock()
		return
	}
	r.status = status
	r.res = res
	r.err = err
	progress := 100
	if err != nil {
		progress = r.progress
	}
	r.mu.Unlock()

	message := "done"
	if err != nil {
		message = err.Error()
	}
	select {
	case r.events <- Event{Status: status, Progress: progress, Message: message}:
	default:
	}

	close(r.events)
	close(r.done)
	r.cancel()
}
