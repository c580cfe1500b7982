package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/strategy-report/internal/backend"
	"github.com/jonathan/strategy-report/internal/types"
)

const submissionColumns = `id, company_name, cnpj, industry, website, strategic_goal, contact_email, answers, created_at`

func scanSubmission(row pgx.Row) (*types.Submission, error) {
	var s types.Submission
	var cnpj, industry, website, goal, email *string
	var answers []byte
	if err := row.Scan(&s.ID, &s.CompanyName, &cnpj, &industry, &website, &goal, &email, &answers, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.CNPJ = derefString(cnpj)
	s.Industry = derefString(industry)
	s.Website = derefString(website)
	s.StrategicGoal = derefString(goal)
	s.ContactEmail = derefString(email)
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &s.Answers); err != nil {
			return nil, fmt.Errorf("failed to decode answers: %w", err)
		}
	}
	return &s, nil
}

// CreateSubmission inserts or replaces a submission. An empty ID is generated.
func (db *DB) CreateSubmission(ctx context.Context, s *types.Submission) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}
	if s.Answers == nil {
		answers = []byte("{}")
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO submissions (id, company_name, cnpj, industry, website, strategic_goal, contact_email, answers, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
		     company_name = $2, cnpj = $3, industry = $4, website = $5,
		     strategic_goal = $6, contact_email = $7, answers = $8`,
		s.ID, s.CompanyName, nullIfEmpty(s.CNPJ), nullIfEmpty(s.Industry), nullIfEmpty(s.Website),
		nullIfEmpty(s.StrategicGoal), nullIfEmpty(s.ContactEmail), answers, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// ListSubmissions returns all submissions, newest first.
func (db *DB) ListSubmissions(ctx context.Context) ([]types.Submission, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+submissionColumns+` FROM submissions ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	out := []types.Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// GetSubmission returns backend.ErrNotFound for an unknown id.
func (db *DB) GetSubmission(ctx context.Context, id string) (*types.Submission, error) {
	s, err := scanSubmission(db.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("submission %s: %w", id, backend.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return s, nil
}

// UpsertEnrichment stores the enrichment of a submission.
func (db *DB) UpsertEnrichment(ctx context.Context, e *types.Enrichment) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal enrichment: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO enrichments (id, submission_id, status, payload)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (submission_id) DO UPDATE SET status = $3, payload = $4, updated_at = NOW()`,
		e.ID, e.SubmissionID, string(e.Status), payload,
	)
	if err != nil {
		return fmt.Errorf("failed to save enrichment: %w", err)
	}
	return nil
}

// GetEnrichment returns nil, nil when the submission has no enrichment yet.
func (db *DB) GetEnrichment(ctx context.Context, submissionID string) (*types.Enrichment, error) {
	var id, status string
	var payload []byte
	var updatedAt time.Time
	err := db.pool.QueryRow(ctx,
		`SELECT id, status, payload, updated_at FROM enrichments WHERE submission_id = $1`,
		submissionID,
	).Scan(&id, &status, &payload, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get enrichment: %w", err)
	}

	e, err := types.DecodeEnrichment(payload)
	if err != nil {
		return nil, err
	}
	e.ID = id
	e.SubmissionID = submissionID
	e.Status = types.ParseEnrichmentStatus(status)
	e.UpdatedAt = updatedAt
	return e, nil
}
