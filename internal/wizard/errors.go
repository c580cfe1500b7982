package wizard

import (
	"errors"
	"fmt"
)

var (
	// ErrStepInFlight is returned while a generation call is outstanding.
	ErrStepInFlight = errors.New("step generation already in progress")
	// ErrCompleted is returned for calls on a finished wizard.
	ErrCompleted = errors.New("wizard already completed")
	// ErrNoSession is returned when no live session exists for an analysis.
	ErrNoSession = errors.New("wizard session not found")
)

// StateError reports an operation that is illegal in the current step status.
type StateError struct {
	Op     string
	Status StepStatus
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s a step in status %q", e.Op, e.Status)
}

// GenerationError wraps a failed generator call.
type GenerationError struct {
	AnalysisID string
	Step       int
	Op         string
	Cause      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s failed for analysis %s step %d: %v", e.Op, e.AnalysisID, e.Step, e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
