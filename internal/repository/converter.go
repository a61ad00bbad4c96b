package repository

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/formloom/forms-backend/internal/entity"
)

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanForm(row rowScanner) (*entity.Form, error) {
	var (
		id         pgtype.UUID
		title      string
		prompt     string
		promptHash string
		schemaJSON []byte
		webhookURL pgtype.Text
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)

	if err := row.Scan(&id, &title, &prompt, &promptHash, &schemaJSON, &webhookURL, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	form := &entity.Form{
		ID:         uuid.UUID(id.Bytes).String(),
		Title:      title,
		Prompt:     prompt,
		PromptHash: promptHash,
		CreatedAt:  createdAt.Time,
		UpdatedAt:  updatedAt.Time,
	}

	if err := json.Unmarshal(schemaJSON, &form.Schema); err != nil {
		return nil, fmt.Errorf("unmarshal form schema: %w", err)
	}

	if webhookURL.Valid {
		url := webhookURL.String
		form.WebhookURL = &url
	}

	return form, nil
}

func scanSubmission(row rowScanner) (*entity.Submission, error) {
	var (
		id          pgtype.UUID
		formID      pgtype.UUID
		dataJSON    []byte
		submittedAt pgtype.Timestamptz
	)

	if err := row.Scan(&id, &formID, &dataJSON, &submittedAt); err != nil {
		return nil, err
	}

	submission := &entity.Submission{
		ID:          uuid.UUID(id.Bytes).String(),
		FormID:      uuid.UUID(formID.Bytes).String(),
		SubmittedAt: submittedAt.Time,
	}

	if err := json.Unmarshal(dataJSON, &submission.Values); err != nil {
		return nil, fmt.Errorf("unmarshal submission values: %w", err)
	}

	return submission, nil
}
