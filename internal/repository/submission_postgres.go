package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/formloom/forms-backend/internal/entity"
)

// SubmissionRepository defines the interface for submission persistence.
// The log is append-only: there are no update or delete operations.
type SubmissionRepository interface {
	Append(ctx context.Context, submission entity.Submission) (*entity.Submission, error)
	ListByForm(ctx context.Context, formID string) ([]*entity.Submission, error)
	CountByForm(ctx context.Context, formID string) (int, error)
}

var _ SubmissionRepository = &SubmissionPostgres{}

// SubmissionPostgres implements SubmissionRepository using PostgreSQL
type SubmissionPostgres struct {
	db *pgxpool.Pool
}

func NewSubmissionPostgres(db *pgxpool.Pool) *SubmissionPostgres {
	return &SubmissionPostgres{db: db}
}

func (r *SubmissionPostgres) Append(ctx context.Context, submission entity.Submission) (*entity.Submission, error) {
	submissionID, err := uuid.Parse(submission.ID)
	if err != nil {
		return nil, fmt.Errorf("parse submission ID: %w", err)
	}

	formID, err := uuid.Parse(submission.FormID)
	if err != nil {
		return nil, fmt.Errorf("parse form ID: %w", err)
	}

	valuesJSON, err := json.Marshal(submission.Values)
	if err != nil {
		return nil, fmt.Errorf("marshal submission values: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO submissions (id, form_id, data)
		VALUES ($1, $2, $3)
		RETURNING id, form_id, data, submitted_at`,
		pgtype.UUID{Bytes: submissionID, Valid: true},
		pgtype.UUID{Bytes: formID, Valid: true},
		valuesJSON,
	)

	saved, err := scanSubmission(row)
	if err != nil {
		return nil, fmt.Errorf("append submission: %w", err)
	}

	return saved, nil
}

// ListByForm returns the form's submissions oldest first, matching the
// order they were appended.
func (r *SubmissionPostgres) ListByForm(ctx context.Context, formID string) ([]*entity.Submission, error) {
	parsedID, err := uuid.Parse(formID)
	if err != nil {
		return nil, fmt.Errorf("parse form ID: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, form_id, data, submitted_at
		FROM submissions
		WHERE form_id = $1
		ORDER BY submitted_at ASC, id ASC`,
		pgtype.UUID{Bytes: parsedID, Valid: true},
	)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	submissions := make([]*entity.Submission, 0)
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		submissions = append(submissions, submission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	return submissions, nil
}

func (r *SubmissionPostgres) CountByForm(ctx context.Context, formID string) (int, error) {
	parsedID, err := uuid.Parse(formID)
	if err != nil {
		return 0, fmt.Errorf("parse form ID: %w", err)
	}

	var count int
	err = r.db.QueryRow(ctx,
		`SELECT count(*) FROM submissions WHERE form_id = $1`,
		pgtype.UUID{Bytes: parsedID, Valid: true},
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}

	return count, nil
}
