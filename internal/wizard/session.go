package wizard

import (
	"context"
	"fmt"
	"log"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/strategy-report/internal/types"
)

// State is a point-in-time view of a wizard session.
type State struct {
	AnalysisID     string                    `json:"analysis_id"`
	CurrentStep    int                       `json:"current_step"`
	TotalSteps     int                       `json:"total_steps"`
	Framework      types.FrameworkInfo       `json:"framework"`
	Status         StepStatus                `json:"status"`
	IterationCount int                       `json:"iteration_count"`
	HumanContext   string                    `json:"human_context,omitempty"`
	HumanAnswers   map[string]string         `json:"human_answers,omitempty"`
	Output         types.Framework           `json:"output,omitempty"`
	PreviousSteps  []types.WizardStepSummary `json:"previous_steps"`
	Completed      bool                      `json:"completed"`
	LastError      string                    `json:"last_error,omitempty"`
}

// Session drives one analysis through the wizard steps. It is safe for
// concurrent use; at most one generator call is outstanding at a time.
type Session struct {
	mu    sync.Mutex
	state State
	busy  bool

	// the last failed call was a refine with this context
	retryRefine bool
	refineInput string
	now         func() time.Time
}

// NewSession starts a wizard at step 1.
func NewSession(analysisID string) *Session {
	return &Session{
		state: State{
			AnalysisID:    analysisID,
			CurrentStep:   1,
			TotalSteps:    TotalSteps,
			Framework:     Steps[0].Info(),
			Status:        StatusPending,
			PreviousSteps: []types.WizardStepSummary{},
		},
		now: time.Now,
	}
}

// ResumeSession rebuilds a session from the approved-step history.
func ResumeSession(analysisID string, history []types.WizardStepSummary) *Session {
	s := NewSession(analysisID)
	s.state.PreviousSteps = append(s.state.PreviousSteps, history...)
	if len(history) >= TotalSteps {
		s.state.CurrentStep = TotalSteps
		s.state.Framework = Steps[TotalSteps-1].Info()
		s.state.Status = StatusApproved
		s.state.Completed = true
		return s
	}
	s.state.CurrentStep = len(history) + 1
	s.state.Framework = Steps[len(history)].Info()
	return s
}

// State returns a copy of the session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.HumanAnswers = maps.Clone(s.state.HumanAnswers)
	st.PreviousSteps = append([]types.WizardStepSummary{}, s.state.PreviousSteps...)
	return st
}

// Busy reports an outstanding generator call.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

type call struct {
	analysisID string
	step       int
	context    string
	answers    map[string]string
}

// begin checks the status against allowed and marks the session busy. The
// caller must call end exactly once.
func (s *Session) begin(op string, allowed ...StepStatus) (call, error) {
	if s.state.Completed {
		return call{}, ErrCompleted
	}
	if s.busy {
		return call{}, ErrStepInFlight
	}
	ok := false
	for _, st := range allowed {
		if s.state.Status == st {
			ok = true
			break
		}
	}
	if !ok {
		return call{}, &StateError{Op: op, Status: s.state.Status}
	}
	s.busy = true
	return call{
		analysisID: s.state.AnalysisID,
		step:       s.state.CurrentStep,
		context:    s.state.HumanContext,
		answers:    maps.Clone(s.state.HumanAnswers),
	}, nil
}

// finish records a generate or refine result.
func (s *Session) finish(c call, op string, out types.Framework, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err == nil && out == nil {
		err = fmt.Errorf("generator returned no output")
	}
	if err != nil {
		s.state.Status = StatusFailed
		s.state.LastError = err.Error()
		log.Printf("[wizard] %s failed for analysis %s step %d: %v", op, c.analysisID, c.step, err)
		return &GenerationError{AnalysisID: c.analysisID, Step: c.step, Op: op, Cause: err}
	}
	s.state.Status = StatusGenerated
	s.state.Output = out
	s.state.LastError = ""
	s.retryRefine = false
	return nil
}

// SetContext replaces the accumulated context and answers with the non-empty
// inputs. It is refused while a call is outstanding.
func (s *Session) SetContext(humanContext string, answers map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrStepInFlight
	}
	if strings.TrimSpace(humanContext) != "" {
		s.state.HumanContext = humanContext
	}
	if len(answers) > 0 {
		s.state.HumanAnswers = maps.Clone(answers)
	}
	return nil
}

// Generate runs the current step for the first time. Non-empty inputs
// replace the accumulated context and answers.
func (s *Session) Generate(ctx context.Context, gen Generator, humanContext string, answers map[string]string) error {
	s.mu.Lock()
	if !s.state.Completed && !s.busy && s.state.Status == StatusPending {
		if strings.TrimSpace(humanContext) != "" {
			s.state.HumanContext = humanContext
		}
		if len(answers) > 0 {
			s.state.HumanAnswers = maps.Clone(answers)
		}
	}
	c, err := s.begin("generate", StatusPending)
	if err == nil {
		s.state.Status = StatusGenerating
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	out, genErr := gen.Generate(ctx, c.analysisID, c.step, c.context, c.answers)
	return s.finish(c, "generate", out, genErr)
}

// Refine regenerates the current step with additional context. The context
// is appended to the session's accumulated context.
func (s *Session) Refine(ctx context.Context, gen Generator, additional string) error {
	additional = strings.TrimSpace(additional)
	if additional == "" {
		return fmt.Errorf("refine context must not be empty")
	}

	s.mu.Lock()
	c, err := s.begin("refine", StatusGenerated, StatusFailed)
	if err == nil {
		s.state.Status = StatusGenerating
		s.state.IterationCount++
		if s.state.HumanContext == "" {
			s.state.HumanContext = additional
		} else {
			s.state.HumanContext += "\n\n" + additional
		}
		s.retryRefine = true
		s.refineInput = additional
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	out, genErr := gen.Refine(ctx, c.analysisID, c.step, additional)
	return s.finish(c, "refine", out, genErr)
}

// Retry re-issues the failed call with identical inputs.
func (s *Session) Retry(ctx context.Context, gen Generator) error {
	s.mu.Lock()
	c, err := s.begin("retry", StatusFailed)
	refine, input := s.retryRefine, s.refineInput
	if err == nil {
		s.state.Status = StatusGenerating
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	var out types.Framework
	var genErr error
	if refine {
		out, genErr = gen.Refine(ctx, c.analysisID, c.step, input)
	} else {
		out, genErr = gen.Generate(ctx, c.analysisID, c.step, c.context, c.answers)
	}
	if genErr != nil {
		return s.finish(c, "retry", nil, genErr)
	}
	return s.finish(c, "retry", out, nil)
}

// Approve accepts the current step. The last step completes the wizard
// instead of advancing. It returns the summary appended to PreviousSteps.
func (s *Session) Approve(ctx context.Context, gen Generator) (types.WizardStepSummary, error) {
	s.mu.Lock()
	c, err := s.begin("approve", StatusGenerated)
	s.mu.Unlock()
	if err != nil {
		return types.WizardStepSummary{}, err
	}

	apErr := gen.Approve(ctx, c.analysisID, c.step)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if apErr != nil {
		s.state.LastError = apErr.Error()
		log.Printf("[wizard] approve failed for analysis %s step %d: %v", c.analysisID, c.step, apErr)
		return types.WizardStepSummary{}, &GenerationError{AnalysisID: c.analysisID, Step: c.step, Op: "approve", Cause: apErr}
	}

	now := s.now().UTC()
	info := Steps[c.step-1].Info()
	summary := types.WizardStepSummary{
		Step:          c.step,
		FrameworkCode: info.Code,
		FrameworkName: info.Name,
		Status:        string(StatusApproved),
		ApprovedAt:    &now,
	}
	s.state.PreviousSteps = append(s.state.PreviousSteps, summary)
	s.state.LastError = ""

	if s.state.CurrentStep >= s.state.TotalSteps {
		s.state.Status = StatusApproved
		s.state.Completed = true
		log.Printf("[wizard] analysis %s completed", c.analysisID)
		return summary, nil
	}

	s.state.CurrentStep++
	s.state.Framework = Steps[s.state.CurrentStep-1].Info()
	s.state.Status = StatusPending
	s.state.Output = nil
	s.state.IterationCount = 0
	s.retryRefine = false
	return summary, nil
}
