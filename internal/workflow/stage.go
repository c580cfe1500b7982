// Package workflow derives the pipeline stage of a submission from backend
// statuses and validates admin stage moves.
package workflow

import (
	"fmt"

	"github.com/jonathan/strategy-report/internal/types"
)

// AdminStage is the fine-grained stage shown in the War Room.
type AdminStage int

// Admin stages.
const (
	StageEnrichmentInProgress AdminStage = 1
	StageEnrichmentReview     AdminStage = 2
	StageAnalysisGeneration   AdminStage = 3
	StageAnalysisReview       AdminStage = 4
	StageApprovedHidden       AdminStage = 5
	StageReleased             AdminStage = 6
)

// MinAdminStage and MaxAdminStage bound the admin stage range.
const (
	MinAdminStage = StageEnrichmentInProgress
	MaxAdminStage = StageReleased
)

var adminStageNames = map[AdminStage]string{
	StageEnrichmentInProgress: "Enriquecimento em andamento",
	StageEnrichmentReview:     "Revisão do enriquecimento",
	StageAnalysisGeneration:   "Geração da análise",
	StageAnalysisReview:       "Revisão da análise",
	StageApprovedHidden:       "Aprovada (oculta)",
	StageReleased:             "Liberada ao cliente",
}

// AdminStages lists every admin stage in order.
func AdminStages() []AdminStage {
	out := make([]AdminStage, 0, int(MaxAdminStage))
	for s := MinAdminStage; s <= MaxAdminStage; s++ {
		out = append(out, s)
	}
	return out
}

// Valid reports whether s is within 1..6.
func (s AdminStage) Valid() bool {
	return s >= MinAdminStage && s <= MaxAdminStage
}

// Name returns the display label.
func (s AdminStage) Name() string {
	if name, ok := adminStageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Etapa %d", int(s))
}

// UserStage is the coarse stage shown to the client.
type UserStage int

// User stages.
const (
	UserStageReceived   UserStage = 1
	UserStageInProgress UserStage = 2
	UserStageAvailable  UserStage = 3
)

var userStageNames = map[UserStage]string{
	UserStageReceived:   "Recebido",
	UserStageInProgress: "Em andamento",
	UserStageAvailable:  "Disponível",
}

// Name returns the display label.
func (s UserStage) Name() string {
	if name, ok := userStageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Etapa %d", int(s))
}

// AdminFloor returns the earliest admin stage this user stage stands for.
func (s UserStage) AdminFloor() AdminStage {
	switch s {
	case UserStageAvailable:
		return StageReleased
	case UserStageInProgress:
		return StageEnrichmentReview
	default:
		return StageEnrichmentInProgress
	}
}

// ComputeAdminStage maps backend statuses to an admin stage. Unknown status
// values count as the earliest value of their enum, so the function is total.
func ComputeAdminStage(enrichment types.EnrichmentStatus, analysis types.AnalysisStatus, visibleToUser bool) AdminStage {
	enrichment = types.ParseEnrichmentStatus(string(enrichment))
	analysis = types.ParseAnalysisStatus(string(analysis))

	switch analysis {
	case types.AnalysisSent:
		return StageReleased
	case types.AnalysisApproved:
		if visibleToUser {
			return StageReleased
		}
		return StageApprovedHidden
	case types.AnalysisGenerated, types.AnalysisCompleted:
		return StageAnalysisReview
	case types.AnalysisGenerating, types.AnalysisFailed:
		return StageAnalysisGeneration
	}

	switch enrichment {
	case types.EnrichmentApproved:
		return StageAnalysisGeneration
	case types.EnrichmentCompleted:
		return StageEnrichmentReview
	default:
		return StageEnrichmentInProgress
	}
}

// ComputeUserStage collapses the admin stage into what the client may see.
func ComputeUserStage(enrichment types.EnrichmentStatus, analysis types.AnalysisStatus, visibleToUser bool) UserStage {
	return UserStageFor(ComputeAdminStage(enrichment, analysis, visibleToUser))
}

// UserStageFor maps an admin stage to the user stage.
func UserStageFor(admin AdminStage) UserStage {
	switch {
	case admin >= StageReleased:
		return UserStageAvailable
	case admin >= StageEnrichmentReview:
		return UserStageInProgress
	default:
		return UserStageReceived
	}
}

// backwardAllowed enumerates every admin-movable backward edge.
var backwardAllowed = map[[2]AdminStage]bool{
	{StageAnalysisGeneration, StageEnrichmentReview}: true,
	{StageAnalysisReview, StageAnalysisGeneration}:   true,
	{StageApprovedHidden, StageAnalysisReview}:       true,
	{StageReleased, StageApprovedHidden}:             true,
	{StageReleased, StageAnalysisReview}:             true,
}

// IsBackwardAllowed reports whether from→to is on the backward allow-list.
func IsBackwardAllowed(from, to AdminStage) bool {
	return backwardAllowed[[2]AdminStage{from, to}]
}

// prerequisite returns a reason when stage s cannot be reached with the given statuses.
func prerequisite(s AdminStage, enrichment types.EnrichmentStatus, analysis types.AnalysisStatus) string {
	switch s {
	case StageEnrichmentReview, StageAnalysisGeneration:
		if !enrichment.HasContent() {
			return fmt.Sprintf("O enriquecimento precisa estar concluído para avançar para \"%s\" (status atual: %s)", s.Name(), enrichment)
		}
	case StageAnalysisReview, StageApprovedHidden, StageReleased:
		if !analysis.HasContent() {
			return fmt.Sprintf("A análise precisa estar gerada para avançar para \"%s\" (status atual: %s)", s.Name(), analysis)
		}
	}
	return ""
}

// CanMoveToStage returns "" when the move is legal, otherwise the reason it is not.
func CanMoveToStage(current, target AdminStage, enrichment types.EnrichmentStatus, analysis types.AnalysisStatus) string {
	enrichment = types.ParseEnrichmentStatus(string(enrichment))
	analysis = types.ParseAnalysisStatus(string(analysis))

	if !target.Valid() {
		return fmt.Sprintf("Etapa inválida: %d", int(target))
	}
	if !current.Valid() {
		return fmt.Sprintf("Etapa atual inválida: %d", int(current))
	}
	if current == target {
		return "A submissão já está nesta etapa"
	}

	if target < current {
		if !IsBackwardAllowed(current, target) {
			return fmt.Sprintf("Não é permitido voltar de \"%s\" para \"%s\"", current.Name(), target.Name())
		}
		return ""
	}

	for s := current + 1; s <= target; s++ {
		if reason := prerequisite(s, enrichment, analysis); reason != "" {
			return reason
		}
	}
	return ""
}

// LegalTargets lists every stage CanMoveToStage accepts from current.
func LegalTargets(current AdminStage, enrichment types.EnrichmentStatus, analysis types.AnalysisStatus) []AdminStage {
	var out []AdminStage
	for _, s := range AdminStages() {
		if CanMoveToStage(current, s, enrichment, analysis) == "" {
			out = append(out, s)
		}
	}
	return out
}
