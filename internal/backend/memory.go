package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/strategy-report/internal/types"
	"github.com/jonathan/strategy-report/internal/workflow"
)

// Memory is an in-process Backend, used for local runs from a seed file and
// as the reference behaviour of the contract.
type Memory struct {
	mu           sync.RWMutex
	submissions  map[string]types.Submission
	enrichments  map[string]types.Enrichment // by submission id
	analyses     map[string]types.Analysis
	bySubmission map[string]string // submission id -> analysis id
	codes        map[string]string // access code -> analysis id
	now          func() time.Time
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		submissions:  make(map[string]types.Submission),
		enrichments:  make(map[string]types.Enrichment),
		analyses:     make(map[string]types.Analysis),
		bySubmission: make(map[string]string),
		codes:        make(map[string]string),
		now:          time.Now,
	}
}

// Put stores a submission with its optional enrichment and analysis.
func (m *Memory) Put(sub types.Submission, enrichment *types.Enrichment, analysis *types.Analysis) error {
	if sub.ID == "" {
		return fmt.Errorf("submission id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions[sub.ID] = sub
	if enrichment != nil {
		e := *enrichment
		e.SubmissionID = sub.ID
		m.enrichments[sub.ID] = e
	}
	if analysis != nil {
		a, err := cloneAnalysis(analysis)
		if err != nil {
			return err
		}
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		a.SubmissionID = sub.ID
		m.analyses[a.ID] = *a
		m.bySubmission[sub.ID] = a.ID
	}
	return nil
}

type seedFile struct {
	Submissions []json.RawMessage `json:"submissions"`
	Enrichments []json.RawMessage `json:"enrichments"`
	Analyses    []json.RawMessage `json:"analyses"`
}

// LoadSeed builds a Memory from a JSON file with submissions, enrichments
// and analyses arrays. Records go through the normalization boundary.
func LoadSeed(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	m := NewMemory()
	for _, raw := range seed.Submissions {
		s, err := types.DecodeSubmission(raw)
		if err != nil {
			return nil, err
		}
		if err := m.Put(*s, nil, nil); err != nil {
			return nil, err
		}
	}
	for _, raw := range seed.Enrichments {
		e, err := types.DecodeEnrichment(raw)
		if err != nil {
			return nil, err
		}
		m.enrichments[e.SubmissionID] = *e
	}
	for _, raw := range seed.Analyses {
		a, err := decodeAnalysis(raw)
		if err != nil {
			return nil, err
		}
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		m.analyses[a.ID] = *a
		m.bySubmission[a.SubmissionID] = a.ID
	}
	return m, nil
}

func cloneAnalysis(a *types.Analysis) (*types.Analysis, error) {
	cp := *a
	data, err := a.Analysis.Clone()
	if err != nil {
		return nil, err
	}
	cp.Analysis = data
	return &cp, nil
}

// ListSubmissions implements Backend, newest first.
func (m *Memory) ListSubmissions(_ context.Context) ([]types.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Submission, 0, len(m.submissions))
	for _, s := range m.submissions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// GetSubmission implements Backend.
func (m *Memory) GetSubmission(_ context.Context, id string) (*types.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.submissions[id]
	if !ok {
		return nil, fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	return &s, nil
}

// GetEnrichment implements Backend.
func (m *Memory) GetEnrichment(_ context.Context, submissionID string) (*types.Enrichment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.enrichments[submissionID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

// GetSubmissionAnalysis implements Backend.
func (m *Memory) GetSubmissionAnalysis(_ context.Context, submissionID string) (*types.Analysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.bySubmission[submissionID]
	if !ok {
		return nil, nil
	}
	a := m.analyses[id]
	return cloneAnalysis(&a)
}

// GetAnalysis implements Backend.
func (m *Memory) GetAnalysis(_ context.Context, id string) (*types.Analysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.analyses[id]
	if !ok {
		return nil, fmt.Errorf("analysis %s: %w", id, ErrNotFound)
	}
	return cloneAnalysis(&a)
}

// GetAnalysisByAccessCode implements Backend.
func (m *Memory) GetAnalysisByAccessCode(ctx context.Context, code string) (*types.Analysis, error) {
	m.mu.RLock()
	id, ok := m.codes[code]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("access code: %w", ErrNotFound)
	}
	return m.GetAnalysis(ctx, id)
}

// ChangeStage implements Backend. The move is validated against the stage
// model before the statuses are rewritten.
func (m *Memory) ChangeStage(_ context.Context, submissionID string, target workflow.AdminStage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.submissions[submissionID]; !ok {
		return fmt.Errorf("submission %s: %w", submissionID, ErrNotFound)
	}
	var enrichment *types.Enrichment
	if e, ok := m.enrichments[submissionID]; ok {
		enrichment = &e
	}
	var analysis *types.Analysis
	if id, ok := m.bySubmission[submissionID]; ok {
		a := m.analyses[id]
		analysis = &a
	}

	es, as := types.EnrichmentStatusOf(enrichment), types.AnalysisStatusOf(analysis)
	current := workflow.ComputeAdminStage(es, as, types.VisibleToUser(analysis))
	if reason := workflow.CanMoveToStage(current, target, es, as); reason != "" {
		return &workflow.MoveRejectedError{From: current, To: target, Reason: reason}
	}
	eff, err := workflow.EffectFor(target)
	if err != nil {
		return err
	}

	now := m.now().UTC()
	if enrichment == nil {
		enrichment = &types.Enrichment{ID: uuid.NewString(), SubmissionID: submissionID}
	}
	enrichment.Status = eff.Enrichment
	enrichment.UpdatedAt = now
	m.enrichments[submissionID] = *enrichment

	if analysis == nil {
		analysis = &types.Analysis{ID: uuid.NewString(), SubmissionID: submissionID, Version: 1, CreatedAt: now}
		m.bySubmission[submissionID] = analysis.ID
	}
	analysis.Status = eff.Analysis
	analysis.IsVisibleToUser = eff.VisibleToUser
	analysis.UpdatedAt = now
	m.analyses[analysis.ID] = *analysis
	return nil
}

// SetBlur implements Backend.
func (m *Memory) SetBlur(_ context.Context, analysisID string, blurred bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.analyses[analysisID]
	if !ok {
		return fmt.Errorf("analysis %s: %w", analysisID, ErrNotFound)
	}
	a.IsBlurred = blurred
	a.UpdatedAt = m.now().UTC()
	m.analyses[analysisID] = a
	return nil
}

// GenerateAccessCode implements Backend.
func (m *Memory) GenerateAccessCode(_ context.Context, analysisID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.analyses[analysisID]; !ok {
		return "", fmt.Errorf("analysis %s: %w", analysisID, ErrNotFound)
	}
	code := NewAccessCode()
	m.codes[code] = analysisID
	return code, nil
}

// SaveAnalysis implements Backend.
func (m *Memory) SaveAnalysis(_ context.Context, analysis *types.Analysis) error {
	if analysis == nil || analysis.ID == "" {
		return fmt.Errorf("analysis id is required")
	}
	data, err := analysis.Analysis.Clone()
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.analyses[analysis.ID]
	if !ok {
		return fmt.Errorf("analysis %s: %w", analysis.ID, ErrNotFound)
	}
	if stored.Version != analysis.Version-1 {
		return fmt.Errorf("analysis %s at version %d, save of version %d: %w",
			analysis.ID, stored.Version, analysis.Version, ErrVersionConflict)
	}
	stored.Analysis = data
	stored.Version = analysis.Version
	stored.UpdatedAt = m.now().UTC()
	m.analyses[analysis.ID] = stored
	return nil
}

// SetAnalysisStatus implements Backend.
func (m *Memory) SetAnalysisStatus(_ context.Context, analysisID string, status types.AnalysisStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.analyses[analysisID]
	if !ok {
		return fmt.Errorf("analysis %s: %w", analysisID, ErrNotFound)
	}
	a.Status = status
	a.UpdatedAt = m.now().UTC()
	m.analyses[analysisID] = a
	return nil
}

var _ Backend = (*Memory)(nil)
var _ Backend = (*HTTPClient)(nil)
