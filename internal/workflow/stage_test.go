package workflow

import (
	"fmt"
	"testing"

	"github.com/jonathan/strategy-report/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAdminStage_Table(t *testing.T) {
	tests := []struct {
		enrichment types.EnrichmentStatus
		analysis   types.AnalysisStatus
		visible    bool
		want       AdminStage
	}{
		{types.EnrichmentPending, types.AnalysisPending, false, StageEnrichmentInProgress},
		{types.EnrichmentProcessing, types.AnalysisPending, false, StageEnrichmentInProgress},
		{types.EnrichmentCompleted, types.AnalysisPending, false, StageEnrichmentReview},
		{types.EnrichmentApproved, types.AnalysisPending, false, StageAnalysisGeneration},
		{types.EnrichmentApproved, types.AnalysisGenerating, false, StageAnalysisGeneration},
		{types.EnrichmentApproved, types.AnalysisFailed, false, StageAnalysisGeneration},
		{types.EnrichmentApproved, types.AnalysisGenerated, false, StageAnalysisReview},
		{types.EnrichmentApproved, types.AnalysisCompleted, true, StageAnalysisReview},
		{types.EnrichmentApproved, types.AnalysisApproved, false, StageApprovedHidden},
		{types.EnrichmentApproved, types.AnalysisApproved, true, StageReleased},
		{types.EnrichmentApproved, types.AnalysisSent, false, StageReleased},
		{"bogus", "bogus", true, StageEnrichmentInProgress},
	}
	for _, tt := range tests {
		name := fmt.Sprintf("%s/%s/%v", tt.enrichment, tt.analysis, tt.visible)
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeAdminStage(tt.enrichment, tt.analysis, tt.visible))
		})
	}
}

func TestComputeAdminStage_Totality(t *testing.T) {
	for _, e := range types.EnrichmentStatuses {
		for _, a := range types.AnalysisStatuses {
			for _, visible := range []bool{false, true} {
				s := ComputeAdminStage(e, a, visible)
				assert.True(t, s.Valid(), "%s/%s/%v -> %d", e, a, visible, s)
			}
		}
	}
}

func TestComputeUserStage_NeverAheadOfAdmin(t *testing.T) {
	for _, e := range types.EnrichmentStatuses {
		for _, a := range types.AnalysisStatuses {
			for _, visible := range []bool{false, true} {
				admin := ComputeAdminStage(e, a, visible)
				user := ComputeUserStage(e, a, visible)
				assert.LessOrEqual(t, int(user), int(admin), "%s/%s/%v", e, a, visible)
				assert.LessOrEqual(t, user.AdminFloor(), admin, "%s/%s/%v", e, a, visible)
			}
		}
	}
}

func TestUserStageFor(t *testing.T) {
	want := map[AdminStage]UserStage{
		StageEnrichmentInProgress: UserStageReceived,
		StageEnrichmentReview:     UserStageInProgress,
		StageAnalysisGeneration:   UserStageInProgress,
		StageAnalysisReview:       UserStageInProgress,
		StageApprovedHidden:       UserStageInProgress,
		StageReleased:             UserStageAvailable,
	}
	for admin, user := range want {
		assert.Equal(t, user, UserStageFor(admin), "admin stage %d", admin)
	}
}

func TestCanMoveToStage_SameStageRejected(t *testing.T) {
	for _, s := range AdminStages() {
		for _, e := range types.EnrichmentStatuses {
			for _, a := range types.AnalysisStatuses {
				assert.NotEmpty(t, CanMoveToStage(s, s, e, a), "stage %d", s)
			}
		}
	}
}

func TestCanMoveToStage_BackwardAllowList(t *testing.T) {
	allowed := map[[2]AdminStage]bool{
		{3, 2}: true, {4, 3}: true, {5, 4}: true, {6, 5}: true, {6, 4}: true,
	}
	for _, from := range AdminStages() {
		for _, to := range AdminStages() {
			if to >= from {
				continue
			}
			reason := CanMoveToStage(from, to, types.EnrichmentApproved, types.AnalysisSent)
			if allowed[[2]AdminStage{from, to}] {
				assert.Empty(t, reason, "%d -> %d should be allowed", from, to)
			} else {
				assert.NotEmpty(t, reason, "%d -> %d should be rejected", from, to)
			}
		}
	}
}

func TestCanMoveToStage_ForwardPrerequisites(t *testing.T) {
	tests := []struct {
		name       string
		from, to   AdminStage
		enrichment types.EnrichmentStatus
		analysis   types.AnalysisStatus
		legal      bool
	}{
		{"approve enrichment", 2, 3, types.EnrichmentCompleted, types.AnalysisPending, true},
		{"enrichment still processing", 1, 2, types.EnrichmentProcessing, types.AnalysisPending, false},
		{"release while analysis pending", 5, 6, types.EnrichmentApproved, types.AnalysisPending, false},
		{"jump to released without analysis", 2, 6, types.EnrichmentCompleted, types.AnalysisPending, false},
		{"approve analysis", 4, 5, types.EnrichmentApproved, types.AnalysisGenerated, true},
		{"approve and release", 4, 6, types.EnrichmentApproved, types.AnalysisCompleted, true},
		{"release approved", 5, 6, types.EnrichmentApproved, types.AnalysisApproved, true},
		{"out of range", 4, 7, types.EnrichmentApproved, types.AnalysisGenerated, false},
		{"zero target", 4, 0, types.EnrichmentApproved, types.AnalysisGenerated, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason := CanMoveToStage(tt.from, tt.to, tt.enrichment, tt.analysis)
			if tt.legal {
				assert.Empty(t, reason)
			} else {
				assert.NotEmpty(t, reason)
			}
		})
	}
}

func TestLegalTargets(t *testing.T) {
	got := LegalTargets(StageAnalysisReview, types.EnrichmentApproved, types.AnalysisGenerated)
	assert.Equal(t, []AdminStage{StageAnalysisGeneration, StageApprovedHidden, StageReleased}, got)
}

func TestApproveEnrichmentScenario(t *testing.T) {
	current := ComputeAdminStage(types.EnrichmentCompleted, types.AnalysisPending, false)
	require.Equal(t, StageEnrichmentReview, current)
	require.Empty(t, CanMoveToStage(current, StageAnalysisGeneration, types.EnrichmentCompleted, types.AnalysisPending))

	tr := GetStageTransition(current, StageAnalysisGeneration)
	require.NotNil(t, tr)
	assert.Equal(t, ActionApproveEnrichment, tr.Action)
	assert.Equal(t, Forward, tr.Direction)
	assert.Contains(t, tr.Description, "bloqueia o enriquecimento")
	assert.Contains(t, tr.Description, "inicia automaticamente a geração da análise")
}

func TestVisibilityFor(t *testing.T) {
	v := VisibilityFor(StageAnalysisReview, false)
	assert.True(t, v.EnrichmentVisible)
	assert.False(t, v.AnalysisVisible)
	assert.True(t, v.AnalysisEditable)

	v = VisibilityFor(StageReleased, true)
	assert.True(t, v.AnalysisVisible)
	assert.False(t, v.PremiumVisible)
	assert.False(t, v.AnalysisEditable)

	v = VisibilityFor(StageEnrichmentReview, false)
	assert.False(t, v.EnrichmentVisible)
	assert.False(t, v.EnrichmentLocked)
}
