package workflow

// Visibility is the panel gating derived from the admin stage.
type Visibility struct {
	EnrichmentVisible bool `json:"enrichment_visible"`
	AnalysisVisible   bool `json:"analysis_visible"`
	PremiumVisible    bool `json:"premium_visible"`
	EnrichmentLocked  bool `json:"enrichment_locked"`
	AnalysisEditable  bool `json:"analysis_editable"`
}

// VisibilityFor derives what the client may see and what the admin may edit.
func VisibilityFor(stage AdminStage, blurred bool) Visibility {
	return Visibility{
		EnrichmentVisible: stage >= StageAnalysisGeneration,
		AnalysisVisible:   stage >= StageReleased,
		PremiumVisible:    stage >= StageReleased && !blurred,
		EnrichmentLocked:  stage >= StageAnalysisGeneration,
		AnalysisEditable:  stage == StageAnalysisReview,
	}
}
