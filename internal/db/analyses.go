package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/strategy-report/internal/backend"
	"github.com/jonathan/strategy-report/internal/types"
)

const analysisColumns = `id, submission_id, status, version, is_visible_to_user, is_blurred, pdf_url, analysis, created_at, updated_at`

func scanAnalysis(row pgx.Row) (*types.Analysis, error) {
	var a types.Analysis
	var status string
	var pdfURL *string
	var payload []byte
	if err := row.Scan(&a.ID, &a.SubmissionID, &status, &a.Version, &a.IsVisibleToUser,
		&a.IsBlurred, &pdfURL, &payload, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Status = types.ParseAnalysisStatus(status)
	a.PDFURL = derefString(pdfURL)

	res, err := types.DecodeAnalysisData(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode analysis %s: %w", a.ID, err)
	}
	for _, d := range res.Dropped {
		log.Printf("[db] analysis %s: dropped %s: %s", a.ID, d.Key, d.Reason)
	}
	a.Analysis = res.Data
	return &a, nil
}

func (db *DB) queryAnalysis(ctx context.Context, where string, arg any) (*types.Analysis, error) {
	a, err := scanAnalysis(db.pool.QueryRow(ctx,
		`SELECT `+analysisColumns+` FROM analyses WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return a, nil
}

// CreateAnalysis inserts an analysis for a submission. An empty ID is generated.
func (db *DB) CreateAnalysis(ctx context.Context, a *types.Analysis) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Version == 0 {
		a.Version = 1
	}
	payload, err := json.Marshal(&a.Analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}
	err = db.pool.QueryRow(ctx,
		`INSERT INTO analyses (id, submission_id, status, version, is_visible_to_user, is_blurred, pdf_url, analysis)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		a.ID, a.SubmissionID, string(a.Status), a.Version, a.IsVisibleToUser, a.IsBlurred, nullIfEmpty(a.PDFURL), payload,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}
	return nil
}

// GetSubmissionAnalysis returns nil, nil when no analysis exists yet.
func (db *DB) GetSubmissionAnalysis(ctx context.Context, submissionID string) (*types.Analysis, error) {
	return db.queryAnalysis(ctx, `submission_id = $1`, submissionID)
}

// GetAnalysis returns backend.ErrNotFound for an unknown id.
func (db *DB) GetAnalysis(ctx context.Context, id string) (*types.Analysis, error) {
	a, err := db.queryAnalysis(ctx, `id = $1`, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("analysis %s: %w", id, backend.ErrNotFound)
	}
	return a, nil
}

// GetAnalysisByAccessCode resolves a share code.
func (db *DB) GetAnalysisByAccessCode(ctx context.Context, code string) (*types.Analysis, error) {
	a, err := db.queryAnalysis(ctx, `id = (SELECT analysis_id FROM access_codes WHERE code = $1)`, code)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("access code: %w", backend.ErrNotFound)
	}
	return a, nil
}

// SaveAnalysis writes the framework payload and version. The row must still
// be at a.Version-1; status and release flags are left as stored.
func (db *DB) SaveAnalysis(ctx context.Context, a *types.Analysis) error {
	payload, err := json.Marshal(&a.Analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE analyses
		 SET version = $2, analysis = $3, updated_at = NOW()
		 WHERE id = $1 AND version = $4`,
		a.ID, a.Version, payload, a.Version-1,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var stored int
	err = db.pool.QueryRow(ctx, `SELECT version FROM analyses WHERE id = $1`, a.ID).Scan(&stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("analysis %s: %w", a.ID, backend.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read analysis version: %w", err)
	}
	return fmt.Errorf("analysis %s at version %d, save of version %d: %w",
		a.ID, stored, a.Version, backend.ErrVersionConflict)
}

// SetAnalysisStatus updates only the analysis status.
func (db *DB) SetAnalysisStatus(ctx context.Context, analysisID string, status types.AnalysisStatus) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE analyses SET status = $2, updated_at = NOW() WHERE id = $1`,
		analysisID, string(status),
	)
	if err != nil {
		return fmt.Errorf("failed to set analysis status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("analysis %s: %w", analysisID, backend.ErrNotFound)
	}
	return nil
}

// SetBlur toggles the premium blur flag.
func (db *DB) SetBlur(ctx context.Context, analysisID string, blurred bool) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE analyses SET is_blurred = $2, updated_at = NOW() WHERE id = $1`,
		analysisID, blurred,
	)
	if err != nil {
		return fmt.Errorf("failed to set blur: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("analysis %s: %w", analysisID, backend.ErrNotFound)
	}
	return nil
}

// GenerateAccessCode stores and returns a new share code.
func (db *DB) GenerateAccessCode(ctx context.Context, analysisID string) (string, error) {
	code := backend.NewAccessCode()
	tag, err := db.pool.Exec(ctx,
		`INSERT INTO access_codes (code, analysis_id)
		 SELECT $1, id FROM analyses WHERE id = $2`,
		code, analysisID,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create access code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return "", fmt.Errorf("analysis %s: %w", analysisID, backend.ErrNotFound)
	}
	return code, nil
}
