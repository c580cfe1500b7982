package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/strategy-report/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memHistory struct {
	steps   map[string][]types.WizardStepSummary
	listErr error
	addErr  error
}

func (m *memHistory) AppendWizardStep(_ context.Context, id string, s types.WizardStepSummary) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.steps[id] = append(m.steps[id], s)
	return nil
}

func (m *memHistory) ListWizardSteps(_ context.Context, id string) ([]types.WizardStepSummary, error) {
	return m.steps[id], m.listErr
}

func (m *memHistory) ClearWizardSteps(_ context.Context, id string) error {
	delete(m.steps, id)
	return nil
}

func TestManager_Flow(t *testing.T) {
	history := &memHistory{steps: map[string][]types.WizardStepSummary{}}
	m := NewManager(&fakeGenerator{}, history)
	ctx := context.Background()

	_, err := m.Generate(ctx, "an-1", "", nil)
	assert.ErrorIs(t, err, ErrNoSession)

	st, err := m.Start(ctx, "an-1")
	require.NoError(t, err)
	assert.Equal(t, 1, st.CurrentStep)

	_, err = m.Generate(ctx, "an-1", "ctx", nil)
	require.NoError(t, err)
	st, err = m.Refine(ctx, "an-1", "mais")
	require.NoError(t, err)
	assert.Equal(t, 1, st.IterationCount)
	st, err = m.Approve(ctx, "an-1")
	require.NoError(t, err)
	assert.Equal(t, 2, st.CurrentStep)
	require.Len(t, history.steps["an-1"], 1)

	// a new manager resumes from history
	m2 := NewManager(&fakeGenerator{}, history)
	st, err = m2.Start(ctx, "an-1")
	require.NoError(t, err)
	assert.Equal(t, 2, st.CurrentStep)
	assert.Len(t, st.PreviousSteps, 1)

	st, err = m2.Restart(ctx, "an-1")
	require.NoError(t, err)
	assert.Equal(t, 1, st.CurrentStep)
	assert.Empty(t, st.PreviousSteps)
	assert.Empty(t, history.steps["an-1"], "restart clears the recorded history")

	live, err := m2.Session("an-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, live.State().Status)
}

func TestManager_StartIsIdempotent(t *testing.T) {
	m := NewManager(&fakeGenerator{}, nil)
	ctx := context.Background()
	_, err := m.Start(ctx, "an-1")
	require.NoError(t, err)
	_, err = m.Generate(ctx, "an-1", "", nil)
	require.NoError(t, err)

	st, err := m.Start(ctx, "an-1")
	require.NoError(t, err)
	assert.Equal(t, StatusGenerated, st.Status, "start keeps the live session")
}

func TestManager_RetryAndHistoryErrors(t *testing.T) {
	history := &memHistory{steps: map[string][]types.WizardStepSummary{}, addErr: errors.New("db down")}
	gen := &fakeGenerator{genErr: errors.New("boom")}
	m := NewManager(gen, history)
	ctx := context.Background()
	_, err := m.Start(ctx, "an-1")
	require.NoError(t, err)

	st, err := m.Generate(ctx, "an-1", "", nil)
	require.Error(t, err)
	assert.Equal(t, StatusFailed, st.Status)

	gen.genErr = nil
	st, err = m.Retry(ctx, "an-1")
	require.NoError(t, err)
	assert.Equal(t, StatusGenerated, st.Status)

	st, err = m.Approve(ctx, "an-1")
	require.NoError(t, err, "history failures do not undo an approval")
	assert.Equal(t, 2, st.CurrentStep)

	history.listErr = errors.New("db down")
	_, err = NewManager(gen, history).Start(ctx, "an-2")
	assert.Error(t, err)
}

func TestManager_SetContext(t *testing.T) {
	m := NewManager(&fakeGenerator{}, nil)
	_, err := m.SetContext("an-1", "ctx", nil)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = m.Start(context.Background(), "an-1")
	require.NoError(t, err)
	st, err := m.SetContext("an-1", "Foco em exportação", map[string]string{"prazo": "12 meses"})
	require.NoError(t, err)
	assert.Equal(t, "Foco em exportação", st.HumanContext)
	assert.Equal(t, "12 meses", st.HumanAnswers["prazo"])

	st, err = m.SetContext("an-1", "  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "Foco em exportação", st.HumanContext, "blank input keeps the stored context")
}
