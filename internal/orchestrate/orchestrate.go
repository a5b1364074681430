// Package orchestrate sequences every mutation against the backend.
// Each action follows the same contract: validate locally first (no
// network on refusal), guard against double-execution with a
// per-entity in-flight flag, call the API, and on success re-fetch
// only the resources the action touched. Views are never updated
// optimistically.
package orchestrate

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"twintrack/internal/api"
	"twintrack/internal/gather"
	"twintrack/internal/media"
)

// Orchestrator wires the API client, the photo uploader, and the
// in-flight tracker together.
type Orchestrator struct {
	API      *api.Client
	Uploader *media.Uploader
	Log      *logrus.Logger

	// PageSize applies to worker-pool refreshes.
	PageSize int

	inflight InFlight
}

// New creates an orchestrator.
func New(client *api.Client, uploader *media.Uploader, log *logrus.Logger) *Orchestrator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Orchestrator{API: client, Uploader: uploader, Log: log, PageSize: 20}
}

func (o *Orchestrator) pageSize() int {
	if o.PageSize > 0 {
		return o.PageSize
	}
	return 20
}

// ErrBusy is returned when the same action is already running for the
// same entity.
var ErrBusy = &ValidationError{Reason: "this action is already in progress"}

// ValidationError is a local refusal. No network call was made.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

func validation(err error) *ValidationError {
	return &ValidationError{Err: err}
}

// PartialBatchError reports a batch where some members failed while
// siblings succeeded.
type PartialBatchError struct {
	Action    string
	Completed []string
	Failures  []gather.Failure
}

func (e *PartialBatchError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Key, f.Err))
	}
	return fmt.Sprintf("%s: %d of %d failed (%s)",
		e.Action, len(e.Failures), len(e.Failures)+len(e.Completed), strings.Join(parts, "; "))
}

// InFlight tracks running actions per entity so a repeated invocation
// becomes a no-op instead of a duplicate request.
type InFlight struct {
	mu     sync.Mutex
	active map[string]bool
}

// Start marks an action running. It returns false when the same key
// is already active.
func (f *InFlight) Start(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active == nil {
		f.active = make(map[string]bool)
	}
	if f.active[key] {
		return false
	}
	f.active[key] = true
	return true
}

// Done releases a key.
func (f *InFlight) Done(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.active, key)
}

// begin acquires the in-flight flag for action+entity and returns the
// release func.
func (o *Orchestrator) begin(action, entityID string) (func(), error) {
	key := action + ":" + entityID
	if !o.inflight.Start(key) {
		return nil, ErrBusy
	}
	return func() { o.inflight.Done(key) }, nil
}
