// Package backend defines the contract the report service consumes for
// submissions, enrichments and analyses, and a REST adapter for it.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/strategy-report/internal/types"
	"github.com/jonathan/strategy-report/internal/workflow"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrVersionConflict is returned by SaveAnalysis when the stored analysis
// moved past the version the edit started from.
var ErrVersionConflict = errors.New("analysis version conflict")

// Backend is the persistence collaborator. Lookups by id return ErrNotFound;
// the per-submission enrichment and analysis lookups return nil, nil when the
// record has not been created yet.
//
// SaveAnalysis writes only the framework payload and the version. The stored
// version must be analysis.Version-1, otherwise ErrVersionConflict. Status and
// release flags change only through ChangeStage, SetBlur and
// SetAnalysisStatus.
type Backend interface {
	ListSubmissions(ctx context.Context) ([]types.Submission, error)
	GetSubmission(ctx context.Context, id string) (*types.Submission, error)
	GetEnrichment(ctx context.Context, submissionID string) (*types.Enrichment, error)
	GetSubmissionAnalysis(ctx context.Context, submissionID string) (*types.Analysis, error)
	GetAnalysis(ctx context.Context, id string) (*types.Analysis, error)
	GetAnalysisByAccessCode(ctx context.Context, code string) (*types.Analysis, error)
	ChangeStage(ctx context.Context, submissionID string, target workflow.AdminStage) error
	SetBlur(ctx context.Context, analysisID string, blurred bool) error
	GenerateAccessCode(ctx context.Context, analysisID string) (string, error)
	SaveAnalysis(ctx context.Context, analysis *types.Analysis) error
	SetAnalysisStatus(ctx context.Context, analysisID string, status types.AnalysisStatus) error
}

// ShareURL composes the public report link for an access code.
func ShareURL(origin, code string) string {
	return fmt.Sprintf("%s/report/%s", strings.TrimRight(origin, "/"), code)
}

// NewAccessCode returns a random share code.
func NewAccessCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// Snapshot loads the status triple the stage model is computed from.
func Snapshot(ctx context.Context, b Backend, submissionID string) (workflow.Snapshot, error) {
	if _, err := b.GetSubmission(ctx, submissionID); err != nil {
		return workflow.Snapshot{}, err
	}
	enrichment, err := b.GetEnrichment(ctx, submissionID)
	if err != nil {
		return workflow.Snapshot{}, err
	}
	analysis, err := b.GetSubmissionAnalysis(ctx, submissionID)
	if err != nil {
		return workflow.Snapshot{}, err
	}
	return workflow.Snapshot{
		SubmissionID:     submissionID,
		EnrichmentStatus: types.EnrichmentStatusOf(enrichment),
		AnalysisStatus:   types.AnalysisStatusOf(analysis),
		VisibleToUser:    types.VisibleToUser(analysis),
	}, nil
}
