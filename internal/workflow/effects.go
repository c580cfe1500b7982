package workflow

import (
	"fmt"

	"github.com/jonathan/strategy-report/internal/types"
)

// StageEffect is the status triple a submission ends up in when an admin
// moves it to a stage. ComputeAdminStage of the triple is the target stage.
type StageEffect struct {
	Enrichment    types.EnrichmentStatus `json:"enrichment_status"`
	Analysis      types.AnalysisStatus   `json:"analysis_status"`
	VisibleToUser bool                   `json:"is_visible_to_user"`
	// StartGeneration is set when the analysis must be (re)generated.
	StartGeneration bool `json:"start_generation"`
}

// EffectFor returns the statuses an adapter writes to reach target. Stage 1
// is only reached by the intake pipeline.
func EffectFor(target AdminStage) (StageEffect, error) {
	switch target {
	case StageEnrichmentReview:
		return StageEffect{Enrichment: types.EnrichmentCompleted, Analysis: types.AnalysisPending}, nil
	case StageAnalysisGeneration:
		return StageEffect{Enrichment: types.EnrichmentApproved, Analysis: types.AnalysisGenerating, StartGeneration: true}, nil
	case StageAnalysisReview:
		return StageEffect{Enrichment: types.EnrichmentApproved, Analysis: types.AnalysisGenerated}, nil
	case StageApprovedHidden:
		return StageEffect{Enrichment: types.EnrichmentApproved, Analysis: types.AnalysisApproved}, nil
	case StageReleased:
		return StageEffect{Enrichment: types.EnrichmentApproved, Analysis: types.AnalysisApproved, VisibleToUser: true}, nil
	default:
		return StageEffect{}, fmt.Errorf("stage %d cannot be set by an admin", int(target))
	}
}
