// Package editor implements the War Room editing operations over typed framework payloads.
package editor

import (
	"errors"
	"fmt"
)

// ErrNotEditable is returned when the analysis is outside the review stage.
var ErrNotEditable = errors.New("analysis is not editable at the current stage")

// IndexError reports an out-of-range list position.
type IndexError struct {
	List  string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range for %s (len %d)", e.Index, e.List, e.Len)
}

// FieldError reports an invalid list name or value.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// SaveError wraps a failed save.
type SaveError struct {
	AnalysisID string
	Version    int
	Cause      error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to save analysis %s (version %d): %v", e.AnalysisID, e.Version, e.Cause)
}

func (e *SaveError) Unwrap() error {
	return e.Cause
}
