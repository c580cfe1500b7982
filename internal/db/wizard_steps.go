package db

import (
	"context"
	"fmt"

	"github.com/jonathan/strategy-report/internal/types"
)

// AppendWizardStep records an approved step. Re-recording a step is a no-op,
// so the history only grows.
func (db *DB) AppendWizardStep(ctx context.Context, analysisID string, s types.WizardStepSummary) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO wizard_steps (analysis_id, step, framework_code, framework_name, status, approved_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (analysis_id, step) DO NOTHING`,
		analysisID, s.Step, s.FrameworkCode, s.FrameworkName, s.Status, s.ApprovedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record wizard step %d: %w", s.Step, err)
	}
	return nil
}

// ListWizardSteps returns the approved steps of an analysis in step order.
func (db *DB) ListWizardSteps(ctx context.Context, analysisID string) ([]types.WizardStepSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT step, framework_code, framework_name, status, approved_at
		 FROM wizard_steps WHERE analysis_id = $1 ORDER BY step`,
		analysisID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list wizard steps: %w", err)
	}
	defer rows.Close()

	out := []types.WizardStepSummary{}
	for rows.Next() {
		var s types.WizardStepSummary
		if err := rows.Scan(&s.Step, &s.FrameworkCode, &s.FrameworkName, &s.Status, &s.ApprovedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wizard step: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ClearWizardSteps drops the history of an analysis sent back to generation.
func (db *DB) ClearWizardSteps(ctx context.Context, analysisID string) error {
	if _, err := db.pool.Exec(ctx, `DELETE FROM wizard_steps WHERE analysis_id = $1`, analysisID); err != nil {
		return fmt.Errorf("failed to clear wizard steps: %w", err)
	}
	return nil
}
