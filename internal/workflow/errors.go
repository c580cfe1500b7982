package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrAutomaticTransition means the selected move has no admin action; a
	// worker applies it when statuses change.
	ErrAutomaticTransition = errors.New("stage change happens automatically")

	// ErrTransitionInFlight means another stage change for the same submission is pending.
	ErrTransitionInFlight = errors.New("a stage change is already in progress for this submission")

	// ErrNothingSelected means Apply or Confirm was called out of order.
	ErrNothingSelected = errors.New("no target stage selected")
)

// MoveRejectedError carries the reason CanMoveToStage gave for an illegal move.
type MoveRejectedError struct {
	From   AdminStage
	To     AdminStage
	Reason string
}

func (e *MoveRejectedError) Error() string {
	return fmt.Sprintf("cannot move from stage %d to %d: %s", e.From, e.To, e.Reason)
}

// TransitionError wraps a failed backend call for a stage change.
type TransitionError struct {
	SubmissionID string
	From         AdminStage
	To           AdminStage
	Action       Action
	Cause        error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("stage change %s (%d -> %d) failed for submission %s: %v",
		e.Action, e.From, e.To, e.SubmissionID, e.Cause)
}

func (e *TransitionError) Unwrap() error {
	return e.Cause
}
