package wizard

import (
	"context"
	"log"
	"sync"

	"github.com/jonathan/strategy-report/internal/types"
)

// HistoryStore persists approved steps so a session survives restarts.
type HistoryStore interface {
	AppendWizardStep(ctx context.Context, analysisID string, summary types.WizardStepSummary) error
	ListWizardSteps(ctx context.Context, analysisID string) ([]types.WizardStepSummary, error)
	ClearWizardSteps(ctx context.Context, analysisID string) error
}

// Manager keeps one live session per analysis.
type Manager struct {
	gen     Generator
	history HistoryStore

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a manager. history may be nil.
func NewManager(gen Generator, history HistoryStore) *Manager {
	return &Manager{gen: gen, history: history, sessions: make(map[string]*Session)}
}

// Start returns the live session for analysisID, resuming it from history
// when none is in memory.
func (m *Manager) Start(ctx context.Context, analysisID string) (State, error) {
	m.mu.Lock()
	if s, ok := m.sessions[analysisID]; ok {
		m.mu.Unlock()
		return s.State(), nil
	}
	m.mu.Unlock()

	s, err := m.Resume(ctx, analysisID)
	if err != nil {
		return State{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[analysisID]; ok {
		return existing.State(), nil
	}
	m.sessions[analysisID] = s
	return s.State(), nil
}

// Resume builds a session from the history store without registering it.
func (m *Manager) Resume(ctx context.Context, analysisID string) (*Session, error) {
	if m.history == nil {
		return NewSession(analysisID), nil
	}
	history, err := m.history.ListWizardSteps(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	if len(history) > 0 {
		log.Printf("[wizard] resuming analysis %s after %d approved steps", analysisID, len(history))
	}
	return ResumeSession(analysisID, history), nil
}

// Session returns the live session for analysisID.
func (m *Manager) Session(analysisID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[analysisID]
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

// Generate runs the current step.
func (m *Manager) Generate(ctx context.Context, analysisID, humanContext string, answers map[string]string) (State, error) {
	s, err := m.Session(analysisID)
	if err != nil {
		return State{}, err
	}
	err = s.Generate(ctx, m.gen, humanContext, answers)
	return s.State(), err
}

// Refine regenerates the current step with more context.
func (m *Manager) Refine(ctx context.Context, analysisID, additional string) (State, error) {
	s, err := m.Session(analysisID)
	if err != nil {
		return State{}, err
	}
	err = s.Refine(ctx, m.gen, additional)
	return s.State(), err
}

// Retry re-issues a failed step.
func (m *Manager) Retry(ctx context.Context, analysisID string) (State, error) {
	s, err := m.Session(analysisID)
	if err != nil {
		return State{}, err
	}
	err = s.Retry(ctx, m.gen)
	return s.State(), err
}

// Approve accepts the current step and records it in history. A history
// write failure is logged; the approval itself stands.
func (m *Manager) Approve(ctx context.Context, analysisID string) (State, error) {
	s, err := m.Session(analysisID)
	if err != nil {
		return State{}, err
	}
	summary, err := s.Approve(ctx, m.gen)
	if err != nil {
		return s.State(), err
	}
	if m.history != nil {
		if herr := m.history.AppendWizardStep(ctx, analysisID, summary); herr != nil {
			log.Printf("[wizard] failed to record step %d for analysis %s: %v", summary.Step, analysisID, herr)
		}
	}
	return s.State(), nil
}

// SetContext seeds the context carried into every later step.
func (m *Manager) SetContext(analysisID, humanContext string, answers map[string]string) (State, error) {
	s, err := m.Session(analysisID)
	if err != nil {
		return State{}, err
	}
	err = s.SetContext(humanContext, answers)
	return s.State(), err
}

// Restart discards the approved-step history and the live session of
// analysisID and registers a fresh session at step 1. It runs when the
// analysis is sent back to generation.
func (m *Manager) Restart(ctx context.Context, analysisID string) (State, error) {
	if m.history != nil {
		if err := m.history.ClearWizardSteps(ctx, analysisID); err != nil {
			return State{}, err
		}
	}
	s := NewSession(analysisID)

	m.mu.Lock()
	m.sessions[analysisID] = s
	m.mu.Unlock()
	log.Printf("[wizard] restarted generation for analysis %s", analysisID)
	return s.State(), nil
}
