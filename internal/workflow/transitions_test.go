package workflow

import (
	"testing"

	"github.com/jonathan/strategy-report/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStageTransition_Table(t *testing.T) {
	tests := []struct {
		from, to  AdminStage
		action    Action
		direction Direction
	}{
		{2, 3, ActionApproveEnrichment, Forward},
		{4, 5, ActionApproveAnalysis, Forward},
		{5, 6, ActionReleaseToUser, Forward},
		{4, 6, ActionApproveAndRelease, Forward},
		{3, 2, ActionUnlockEnrichment, Backward},
		{4, 3, ActionRegenerateAnalysis, Backward},
		{5, 4, ActionUnlockAnalysis, Backward},
		{6, 5, ActionHideFromUser, Backward},
		{6, 4, ActionUnlockAndHide, Backward},
	}
	for _, tt := range tests {
		tr := GetStageTransition(tt.from, tt.to)
		require.NotNil(t, tr, "%d -> %d", tt.from, tt.to)
		assert.Equal(t, tt.action, tr.Action)
		assert.Equal(t, tt.direction, tr.Direction)
		assert.NotEmpty(t, tr.Description)
		if tt.direction == Backward {
			assert.NotEmpty(t, tr.Consequences, "%s must list consequences", tr.Action)
		}
	}
}

func TestGetStageTransition_Automatic(t *testing.T) {
	assert.Nil(t, GetStageTransition(1, 2))
	assert.Nil(t, GetStageTransition(3, 4))
	assert.True(t, IsAutomatic(1, 2))
	assert.True(t, IsAutomatic(3, 4))
	assert.False(t, IsAutomatic(2, 3))
	assert.True(t, IsAutomatic(2, 4))
	assert.False(t, IsAutomatic(4, 3))
}

func TestTransitions_BackwardEntriesMatchAllowList(t *testing.T) {
	for _, from := range AdminStages() {
		for _, to := range AdminStages() {
			tr := GetStageTransition(from, to)
			if tr == nil {
				continue
			}
			if tr.Direction == Backward {
				assert.True(t, IsBackwardAllowed(tr.From, tr.To), "%d -> %d", tr.From, tr.To)
			} else {
				assert.Greater(t, tr.To, tr.From)
			}
		}
	}
}

func TestTransitions_EveryLegalMoveIsTabledOrAutomatic(t *testing.T) {
	for _, e := range types.EnrichmentStatuses {
		for _, a := range types.AnalysisStatuses {
			for _, from := range AdminStages() {
				for _, to := range LegalTargets(from, e, a) {
					assert.True(t, GetStageTransition(from, to) != nil || IsAutomatic(from, to), "%d -> %d", from, to)
				}
			}
		}
	}
}

func TestGetStageTransition_ReturnsCopy(t *testing.T) {
	tr := GetStageTransition(6, 4)
	require.NotNil(t, tr)
	tr.Consequences[0] = "changed"
	assert.NotEqual(t, "changed", GetStageTransition(6, 4).Consequences[0])
}
