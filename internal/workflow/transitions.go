package workflow

// Direction tells forward moves from backward ones.
type Direction string

// Directions.
const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// Action names the side effect the backend applies for a transition.
type Action string

// Transition actions.
const (
	ActionApproveEnrichment  Action = "approve_enrichment"
	ActionApproveAnalysis    Action = "approve_analysis"
	ActionReleaseToUser      Action = "release_to_user"
	ActionApproveAndRelease  Action = "approve_and_release"
	ActionUnlockEnrichment   Action = "unlock_enrichment"
	ActionRegenerateAnalysis Action = "regenerate_analysis"
	ActionUnlockAnalysis     Action = "unlock_analysis"
	ActionHideFromUser       Action = "hide_from_user"
	ActionUnlockAndHide      Action = "unlock_and_hide"
)

// StageTransition describes an admin-movable stage change.
type StageTransition struct {
	From         AdminStage `json:"from"`
	To           AdminStage `json:"to"`
	Action       Action     `json:"action"`
	Direction    Direction  `json:"direction"`
	Description  string     `json:"description"`
	Consequences []string   `json:"consequences,omitempty"`
}

var transitions = []StageTransition{
	{
		From: StageEnrichmentReview, To: StageAnalysisGeneration,
		Action: ActionApproveEnrichment, Direction: Forward,
		Description: "Aprova e bloqueia o enriquecimento para edição e inicia automaticamente a geração da análise",
	},
	{
		From: StageAnalysisReview, To: StageApprovedHidden,
		Action: ActionApproveAnalysis, Direction: Forward,
		Description: "Aprova a análise sem liberá-la ao cliente",
	},
	{
		From: StageApprovedHidden, To: StageReleased,
		Action: ActionReleaseToUser, Direction: Forward,
		Description: "Libera o relatório aprovado para o cliente",
	},
	{
		From: StageAnalysisReview, To: StageReleased,
		Action: ActionApproveAndRelease, Direction: Forward,
		Description: "Aprova a análise e a libera imediatamente para o cliente",
	},
	{
		From: StageAnalysisGeneration, To: StageEnrichmentReview,
		Action: ActionUnlockEnrichment, Direction: Backward,
		Description: "Desbloqueia o enriquecimento para edição",
		Consequences: []string{
			"O enriquecimento volta a ser editável",
			"A geração da análise em andamento é descartada",
		},
	},
	{
		From: StageAnalysisReview, To: StageAnalysisGeneration,
		Action: ActionRegenerateAnalysis, Direction: Backward,
		Description: "Descarta a análise atual e gera uma nova versão",
		Consequences: []string{
			"O conteúdo atual da análise será substituído",
			"Edições manuais feitas no War Room serão perdidas",
		},
	},
	{
		From: StageApprovedHidden, To: StageAnalysisReview,
		Action: ActionUnlockAnalysis, Direction: Backward,
		Description: "Revoga a aprovação e reabre a análise para edição",
		Consequences: []string{
			"A análise deixa de estar aprovada",
		},
	},
	{
		From: StageReleased, To: StageApprovedHidden,
		Action: ActionHideFromUser, Direction: Backward,
		Description: "Oculta o relatório do cliente mantendo a aprovação",
		Consequences: []string{
			"O cliente perde acesso ao relatório",
			"Links de compartilhamento deixam de funcionar",
		},
	},
	{
		From: StageReleased, To: StageAnalysisReview,
		Action: ActionUnlockAndHide, Direction: Backward,
		Description: "Oculta o relatório do cliente e reabre a análise para edição",
		Consequences: []string{
			"O cliente perde acesso ao relatório",
			"Links de compartilhamento deixam de funcionar",
			"A análise deixa de estar aprovada",
		},
	},
}

// GetStageTransition looks up the admin-movable transition from→to. A nil
// result means the move is automatic (worker driven) or not in the table.
func GetStageTransition(from, to AdminStage) *StageTransition {
	for i := range transitions {
		if transitions[i].From == from && transitions[i].To == to {
			t := transitions[i]
			t.Consequences = append([]string(nil), t.Consequences...)
			return &t
		}
	}
	return nil
}

// IsAutomatic reports whether from→to happens without an admin action:
// a forward move with no entry in the transition table, driven by the
// workers (1→2, 3→4) or by the statuses they produce.
func IsAutomatic(from, to AdminStage) bool {
	return to > from && GetStageTransition(from, to) == nil
}
