package workflow

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jonathan/strategy-report/internal/types"
)

// ControllerState is the stage-change dialog state.
type ControllerState string

// Controller states.
const (
	StateIdle       ControllerState = "idle"
	StateSelected   ControllerState = "selected"
	StateConfirming ControllerState = "confirming"
	StateApplying   ControllerState = "applying"
)

// StageChanger applies a stage change on the backend.
type StageChanger interface {
	ChangeStage(ctx context.Context, submissionID string, target AdminStage) error
}

// StageChangeFunc adapts a function to StageChanger.
type StageChangeFunc func(ctx context.Context, submissionID string, target AdminStage) error

// ChangeStage calls f.
func (f StageChangeFunc) ChangeStage(ctx context.Context, submissionID string, target AdminStage) error {
	return f(ctx, submissionID, target)
}

// Snapshot is the backend state a controller is built from.
type Snapshot struct {
	SubmissionID     string
	EnrichmentStatus types.EnrichmentStatus
	AnalysisStatus   types.AnalysisStatus
	VisibleToUser    bool
}

// Stage derives the admin stage of the snapshot.
func (s Snapshot) Stage() AdminStage {
	return ComputeAdminStage(s.EnrichmentStatus, s.AnalysisStatus, s.VisibleToUser)
}

// Confirmation is what the admin sees before a transition is applied.
type Confirmation struct {
	From         AdminStage `json:"from"`
	To           AdminStage `json:"to"`
	Direction    Direction  `json:"direction"`
	Action       Action     `json:"action"`
	Description  string     `json:"description"`
	Consequences []string   `json:"consequences,omitempty"`
	Destructive  bool       `json:"destructive"`
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithGuard shares an in-flight guard across controllers.
func WithGuard(g *InFlight) ControllerOption {
	return func(c *Controller) { c.guard = g }
}

// WithTimeout bounds each backend call.
func WithTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) { c.timeout = d }
}

// Controller drives one stage change: idle → selected → confirming → applying → idle.
// The current stage is never stored; it is derived from the snapshot.
type Controller struct {
	mu        sync.Mutex
	snapshot  Snapshot
	state     ControllerState
	selected  AdminStage
	pending   *StageTransition
	isLoading bool

	guard   *InFlight
	timeout time.Duration
}

// NewController creates an idle controller for snapshot.
func NewController(snapshot Snapshot, opts ...ControllerOption) *Controller {
	c := &Controller{snapshot: snapshot, state: StateIdle}
	for _, opt := range opts {
		opt(c)
	}
	if c.guard == nil {
		c.guard = NewInFlight()
	}
	return c
}

// Current returns the derived admin stage.
func (c *Controller) Current() AdminStage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot.Stage()
}

// State returns the dialog state.
func (c *Controller) State() ControllerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Selected returns the armed target, or 0 when nothing is selected.
func (c *Controller) Selected() AdminStage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// IsLoading reports whether a backend call is pending.
func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isLoading
}

// Select arms target when the move is legal. An illegal move is a logged no-op.
func (c *Controller) Select(target AdminStage) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isLoading {
		return "Aguarde a conclusão da mudança de etapa em andamento", false
	}
	current := c.snapshot.Stage()
	reason := CanMoveToStage(current, target, c.snapshot.EnrichmentStatus, c.snapshot.AnalysisStatus)
	if reason != "" {
		log.Printf("[stage] submission %s: ignoring move %d -> %d: %s", c.snapshot.SubmissionID, current, target, reason)
		return reason, false
	}
	c.state = StateSelected
	c.selected = target
	c.pending = nil
	return "", true
}

// Apply looks up the transition for the armed target. Automatic moves reset
// the controller and return ErrAutomaticTransition without touching the backend.
func (c *Controller) Apply() (*Confirmation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateSelected {
		return nil, ErrNothingSelected
	}
	from := c.snapshot.Stage()
	t := GetStageTransition(from, c.selected)
	if t == nil {
		log.Printf("[stage] submission %s: move %d -> %d is automatic", c.snapshot.SubmissionID, from, c.selected)
		c.reset()
		return nil, ErrAutomaticTransition
	}
	c.state = StateConfirming
	c.pending = t
	return &Confirmation{
		From:         t.From,
		To:           t.To,
		Direction:    t.Direction,
		Action:       t.Action,
		Description:  t.Description,
		Consequences: t.Consequences,
		Destructive:  t.Direction == Backward,
	}, nil
}

// Confirm calls changer exactly once for the pending transition. The controller
// returns to idle whether or not the call succeeds.
func (c *Controller) Confirm(ctx context.Context, changer StageChanger) error {
	c.mu.Lock()
	if c.state != StateConfirming || c.pending == nil {
		c.mu.Unlock()
		return ErrNothingSelected
	}
	release, ok := c.guard.TryAcquire(c.snapshot.SubmissionID)
	if !ok {
		c.mu.Unlock()
		return ErrTransitionInFlight
	}
	t := *c.pending
	id := c.snapshot.SubmissionID
	c.state = StateApplying
	c.isLoading = true
	c.mu.Unlock()

	defer release()

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	log.Printf("[stage] submission %s: applying %s (%d -> %d)", id, t.Action, t.From, t.To)
	err := changer.ChangeStage(callCtx, id, t.To)

	c.mu.Lock()
	c.isLoading = false
	c.reset()
	c.mu.Unlock()

	if err != nil {
		log.Printf("[stage] submission %s: %s failed: %v", id, t.Action, err)
		return &TransitionError{SubmissionID: id, From: t.From, To: t.To, Action: t.Action, Cause: err}
	}
	return nil
}

// Cancel drops the selection.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateApplying {
		return
	}
	c.reset()
}

// Refresh replaces the snapshot with freshly fetched statuses.
func (c *Controller) Refresh(snapshot Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = snapshot
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.selected = 0
	c.pending = nil
}
