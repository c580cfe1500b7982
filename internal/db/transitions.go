package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/strategy-report/internal/backend"
	"github.com/jonathan/strategy-report/internal/types"
	"github.com/jonathan/strategy-report/internal/workflow"
)

// StageTransitionRecord is one row of the stage-change audit trail.
type StageTransitionRecord struct {
	ID           uuid.UUID           `json:"id"`
	SubmissionID string              `json:"submission_id"`
	From         workflow.AdminStage `json:"from"`
	To           workflow.AdminStage `json:"to"`
	Action       string              `json:"action"`
	Direction    workflow.Direction  `json:"direction"`
	CreatedAt    time.Time           `json:"created_at"`
}

// ActionDirect labels forward moves that skip stages and have no table entry.
const ActionDirect = "direct"

// ChangeStage validates the move against the stage model and writes the
// target statuses plus an audit row in one transaction. The submission row
// is locked so concurrent changes serialize.
func (db *DB) ChangeStage(ctx context.Context, submissionID string, target workflow.AdminStage) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	err = tx.QueryRow(ctx, `SELECT id FROM submissions WHERE id = $1 FOR UPDATE`, submissionID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("submission %s: %w", submissionID, backend.ErrNotFound)
		}
		return fmt.Errorf("failed to lock submission: %w", err)
	}

	enrichment := types.EnrichmentPending
	var es string
	err = tx.QueryRow(ctx, `SELECT status FROM enrichments WHERE submission_id = $1`, submissionID).Scan(&es)
	switch {
	case err == nil:
		enrichment = types.ParseEnrichmentStatus(es)
	case !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("failed to read enrichment status: %w", err)
	}

	analysis := types.AnalysisPending
	visible := false
	var as string
	err = tx.QueryRow(ctx, `SELECT status, is_visible_to_user FROM analyses WHERE submission_id = $1`, submissionID).Scan(&as, &visible)
	switch {
	case err == nil:
		analysis = types.ParseAnalysisStatus(as)
	case !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("failed to read analysis status: %w", err)
	}

	current := workflow.ComputeAdminStage(enrichment, analysis, visible)
	if reason := workflow.CanMoveToStage(current, target, enrichment, analysis); reason != "" {
		return &workflow.MoveRejectedError{From: current, To: target, Reason: reason}
	}
	eff, err := workflow.EffectFor(target)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO enrichments (id, submission_id, status) VALUES ($1, $2, $3)
		 ON CONFLICT (submission_id) DO UPDATE SET status = $3, updated_at = NOW()`,
		uuid.NewString(), submissionID, string(eff.Enrichment),
	)
	if err != nil {
		return fmt.Errorf("failed to update enrichment status: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO analyses (id, submission_id, status, is_visible_to_user) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (submission_id) DO UPDATE SET status = $3, is_visible_to_user = $4, updated_at = NOW()`,
		uuid.NewString(), submissionID, string(eff.Analysis), eff.VisibleToUser,
	)
	if err != nil {
		return fmt.Errorf("failed to update analysis status: %w", err)
	}

	action, direction := ActionDirect, workflow.Forward
	if t := workflow.GetStageTransition(current, target); t != nil {
		action, direction = string(t.Action), t.Direction
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO stage_transitions (id, submission_id, from_stage, to_stage, action, direction)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), submissionID, int(current), int(target), action, string(direction),
	)
	if err != nil {
		return fmt.Errorf("failed to record stage transition: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit stage change: %w", err)
	}
	log.Printf("[db] submission %s: stage %d -> %d (%s)", submissionID, current, target, action)
	return nil
}

// ListStageTransitions returns the audit trail of a submission, oldest first.
func (db *DB) ListStageTransitions(ctx context.Context, submissionID string) ([]StageTransitionRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, submission_id, from_stage, to_stage, action, direction, created_at
		 FROM stage_transitions WHERE submission_id = $1 ORDER BY created_at, id`,
		submissionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage transitions: %w", err)
	}
	defer rows.Close()

	out := []StageTransitionRecord{}
	for rows.Next() {
		var r StageTransitionRecord
		var from, to int
		var direction string
		if err := rows.Scan(&r.ID, &r.SubmissionID, &from, &to, &r.Action, &direction, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stage transition: %w", err)
		}
		r.From, r.To, r.Direction = workflow.AdminStage(from), workflow.AdminStage(to), workflow.Direction(direction)
		out = append(out, r)
	}
	return out, rows.Err()
}
