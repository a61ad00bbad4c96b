package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/formloom/forms-backend/internal/entity"
)

// FormRepository defines the interface for form persistence
type FormRepository interface {
	Create(ctx context.Context, form entity.Form) (*entity.Form, error)
	Get(ctx context.Context, id string) (*entity.Form, error)
	GetByPromptHash(ctx context.Context, hash string) (*entity.Form, error)
	List(ctx context.Context, skip, limit int) ([]*entity.Form, error)
	UpdateSchema(ctx context.Context, id string, schema entity.FormSchema) (*entity.Form, error)
}

var _ FormRepository = &FormPostgres{}

// FormPostgres implements FormRepository using PostgreSQL
type FormPostgres struct {
	db *pgxpool.Pool
}

func NewFormPostgres(db *pgxpool.Pool) *FormPostgres {
	return &FormPostgres{db: db}
}

const formColumns = `id, title, prompt, prompt_hash, schema, webhook_url, created_at, updated_at`

func (r *FormPostgres) Create(ctx context.Context, form entity.Form) (*entity.Form, error) {
	formID, err := uuid.Parse(form.ID)
	if err != nil {
		return nil, fmt.Errorf("parse form ID: %w", err)
	}

	schemaJSON, err := json.Marshal(form.Schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	var webhookURL pgtype.Text
	if form.WebhookURL != nil {
		webhookURL = pgtype.Text{String: *form.WebhookURL, Valid: true}
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO forms (id, title, prompt, prompt_hash, schema, webhook_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+formColumns,
		pgtype.UUID{Bytes: formID, Valid: true},
		form.Title,
		form.Prompt,
		form.PromptHash,
		schemaJSON,
		webhookURL,
	)

	return scanForm(row)
}

func (r *FormPostgres) Get(ctx context.Context, id string) (*entity.Form, error) {
	formID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse form ID: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`SELECT `+formColumns+` FROM forms WHERE id = $1`,
		pgtype.UUID{Bytes: formID, Valid: true},
	)

	form, err := scanForm(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrFormNotFound
		}
		return nil, fmt.Errorf("get form: %w", err)
	}

	return form, nil
}

func (r *FormPostgres) GetByPromptHash(ctx context.Context, hash string) (*entity.Form, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+formColumns+` FROM forms WHERE prompt_hash = $1`,
		hash,
	)

	form, err := scanForm(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrFormNotFound
		}
		return nil, fmt.Errorf("get form by prompt hash: %w", err)
	}

	return form, nil
}

func (r *FormPostgres) List(ctx context.Context, skip, limit int) ([]*entity.Form, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+formColumns+` FROM forms ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		int32(limit), int32(skip),
	)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	defer rows.Close()

	forms := make([]*entity.Form, 0, limit)
	for rows.Next() {
		form, err := scanForm(rows)
		if err != nil {
			return nil, fmt.Errorf("scan form: %w", err)
		}
		forms = append(forms, form)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}

	return forms, nil
}

func (r *FormPostgres) UpdateSchema(ctx context.Context, id string, schema entity.FormSchema) (*entity.Form, error) {
	formID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse form ID: %w", err)
	}

	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		UPDATE forms
		SET schema = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+formColumns,
		pgtype.UUID{Bytes: formID, Valid: true},
		schemaJSON,
	)

	form, err := scanForm(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrFormNotFound
		}
		return nil, fmt.Errorf("update form schema: %w", err)
	}

	return form, nil
}
