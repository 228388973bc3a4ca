// Package budget enforces per-run resource ceilings.
//
// A RunState is constructed fresh for every run and passed into each
// orchestrator invocation; it is never a process-wide singleton, so parallel
// runs in tests cannot bleed into each other. Admission and counter increment
// happen as one operation under the state's lock, which keeps concurrent
// admissions from overrunning the configured ceiling.
package budget

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrFileTooLarge denies a single oversized file; the run continues.
	ErrFileTooLarge = errors.New("file exceeds maximum size")

	// ErrRunBudgetExhausted denies every candidate after the per-run file
	// count is reached. Sticky for the remainder of the run.
	ErrRunBudgetExhausted = errors.New("run budget exhausted")
)

// Limits are the per-run ceilings, taken from configuration.
type Limits struct {
	MaxFileSize    int64
	MaxFilesPerRun int
}

// RunState holds the mutable counters for one pipeline run.
type RunState struct {
	id string

	mu             sync.Mutex
	filesProcessed int
	bytesProcessed int64
}

// NewRunState returns a zeroed state with a fresh run ID for log correlation.
func NewRunState() *RunState {
	return &RunState{id: uuid.NewString()}
}

// ID returns the run's correlation ID.
func (s *RunState) ID() string { return s.id }

// Admit checks fileSize against the limits and, on success, consumes one
// file-count slot and fileSize bytes of budget. The check and the increment
// are a single atomic step: two concurrent admissions can never both take the
// last slot.
func (s *RunState) Admit(limits Limits, fileSize int64) error {
	if fileSize > limits.MaxFileSize {
		return ErrFileTooLarge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.filesProcessed >= limits.MaxFilesPerRun {
		return ErrRunBudgetExhausted
	}
	s.filesProcessed++
	s.bytesProcessed += fileSize
	return nil
}

// Stats returns the counters accumulated so far.
func (s *RunState) Stats() (files int, bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filesProcessed, s.bytesProcessed
}
