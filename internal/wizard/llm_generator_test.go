package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/strategy-report/internal/llm"
	"github.com/jonathan/strategy-report/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	replies []string
	prompts []string
	tiers   []llm.ModelTier
	err     error
}

func (f *fakeLLM) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.GenerateJSON(ctx, prompt, tier)
}

func (f *fakeLLM) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.tiers = append(f.tiers, tier)
	if f.err != nil {
		return "", f.err
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

func (f *fakeLLM) GetModel(tier llm.ModelTier) string { return string(tier) }
func (f *fakeLLM) Close() error                       { return nil }

type memStore struct {
	submission *types.Submission
	analysis   *types.Analysis
	saves      int
	statuses   []types.AnalysisStatus
}

func (m *memStore) GetSubmission(_ context.Context, id string) (*types.Submission, error) {
	if m.submission == nil || m.submission.ID != id {
		return nil, errors.New("not found")
	}
	cp := *m.submission
	return &cp, nil
}

func (m *memStore) GetAnalysis(_ context.Context, id string) (*types.Analysis, error) {
	if m.analysis == nil || m.analysis.ID != id {
		return nil, errors.New("not found")
	}
	cp := *m.analysis
	data, err := m.analysis.Analysis.Clone()
	if err != nil {
		return nil, err
	}
	cp.Analysis = data
	return &cp, nil
}

func (m *memStore) SaveAnalysis(_ context.Context, a *types.Analysis) error {
	if a.Version != m.analysis.Version+1 {
		return errors.New("version conflict")
	}
	m.saves++
	m.analysis.Analysis = a.Analysis
	m.analysis.Version = a.Version
	return nil
}

func (m *memStore) SetAnalysisStatus(_ context.Context, id string, status types.AnalysisStatus) error {
	if m.analysis == nil || m.analysis.ID != id {
		return errors.New("not found")
	}
	m.statuses = append(m.statuses, status)
	m.analysis.Status = status
	return nil
}

func newMemStore() *memStore {
	return &memStore{
		submission: &types.Submission{ID: "sub-1", CompanyName: "Padaria Real", Industry: "Alimentos"},
		analysis:   &types.Analysis{ID: "an-1", SubmissionID: "sub-1", Status: types.AnalysisPending, Version: 1},
	}
}

func TestLLMGenerator_GenerateRefineApprove(t *testing.T) {
	client := &fakeLLM{replies: []string{
		`{"pestel":{"economic":["Inflação"]}}`,
		`{"pestel":{"economic":["Inflação","Juros"]}}`,
	}}
	store := newMemStore()
	g := NewLLMGenerator(client, store)
	ctx := context.Background()

	out, err := g.Generate(ctx, "an-1", 1, "", map[string]string{"canal": "varejo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Inflação"}, out.(*types.Pestel).Economic)
	assert.Contains(t, client.prompts[0], "Padaria Real")
	assert.Contains(t, client.prompts[0], "- canal: varejo")
	assert.Equal(t, llm.TierStandard, client.tiers[0])

	out, err = g.Refine(ctx, "an-1", 1, "inclua juros")
	require.NoError(t, err)
	assert.Len(t, out.(*types.Pestel).Economic, 2)
	assert.Contains(t, client.prompts[1], "inclua juros")
	assert.Contains(t, client.prompts[1], "Inflação", "refine sees the previous version")

	require.NoError(t, g.Approve(ctx, "an-1", 1))
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, 2, store.analysis.Version)
	assert.Equal(t, types.AnalysisGenerating, store.analysis.Status)
	assert.Equal(t, []types.AnalysisStatus{types.AnalysisGenerating}, store.statuses)
	require.NotNil(t, store.analysis.Analysis.Pestel)
	assert.Len(t, store.analysis.Analysis.Pestel.Economic, 2)

	assert.Error(t, g.Approve(ctx, "an-1", 1), "draft is consumed by approval")
}

func TestLLMGenerator_ApproveKeepsReleaseFlags(t *testing.T) {
	client := &fakeLLM{replies: []string{`{"porter":{"forces":[{"force":"Rivalidade","intensity":"Alta"}]}}`}}
	store := newMemStore()
	store.analysis.Status = types.AnalysisGenerating
	g := NewLLMGenerator(client, store)
	ctx := context.Background()

	_, err := g.Generate(ctx, "an-1", 2, "", nil)
	require.NoError(t, err)
	store.analysis.IsBlurred = true

	require.NoError(t, g.Approve(ctx, "an-1", 2))
	assert.True(t, store.analysis.IsBlurred)
	assert.Empty(t, store.statuses, "a mid-run approval leaves a generating analysis alone")
	require.NotNil(t, store.analysis.Analysis.Porter)
}

func TestLLMGenerator_SynthesisUsesAdvancedTierAndFinishes(t *testing.T) {
	client := &fakeLLM{replies: []string{"```json\n{\"synthesis\":{\"executiveSummary\":\"Resumo\"}}\n```"}}
	store := newMemStore()
	store.analysis.Analysis.Swot = &types.Swot{Strengths: []types.SwotItem{{Content: "Marca"}}}
	g := NewLLMGenerator(client, store)

	_, err := g.Generate(context.Background(), "an-1", TotalSteps, "", nil)
	require.NoError(t, err)
	assert.Equal(t, llm.TierAdvanced, client.tiers[0])
	assert.Contains(t, client.prompts[0], "Marca", "earlier frameworks are passed as context")

	require.NoError(t, g.Approve(context.Background(), "an-1", TotalSteps))
	assert.Equal(t, types.AnalysisGenerated, store.analysis.Status)
}

func TestLLMGenerator_Errors(t *testing.T) {
	store := newMemStore()
	g := NewLLMGenerator(&fakeLLM{replies: []string{`{"swot":"nada"}`}}, store)

	_, err := g.Generate(context.Background(), "an-1", 3, "", nil)
	assert.Error(t, err, "invalid output is rejected")

	_, err = g.Refine(context.Background(), "an-1", 3, "x")
	assert.Error(t, err, "no draft after a failed generate")

	_, err = g.Generate(context.Background(), "missing", 1, "", nil)
	assert.Error(t, err)

	g = NewLLMGenerator(&fakeLLM{err: errors.New("quota")}, store)
	_, err = g.Generate(context.Background(), "an-1", 1, "", nil)
	assert.ErrorContains(t, err, "quota")
}
