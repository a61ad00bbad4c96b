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

	"github.com/formloom/forms-backend/internal/telegram/state"
)

// TelegramSessionRepository handles telegram dialog state persistence
type TelegramSessionRepository struct {
	db *pgxpool.Pool
}

func NewTelegramSessionRepository(db *pgxpool.Pool) *TelegramSessionRepository {
	return &TelegramSessionRepository{db: db}
}

var _ state.Storage = &TelegramSessionRepository{}

// Get retrieves the dialog session by telegram user ID
func (r *TelegramSessionRepository) Get(ctx context.Context, userID int64) (*state.TelegramSession, error) {
	row := r.db.QueryRow(ctx, `
		SELECT user_id, form_id, state, state_data, created_at, updated_at
		FROM telegram_sessions
		WHERE user_id = $1`,
		userID,
	)

	session, err := scanTelegramSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", state.ErrSessionNotFound, userID)
		}
		return nil, fmt.Errorf("query telegram session: %w", err)
	}

	return session, nil
}

// Set saves the dialog session, inserting or replacing by user ID
func (r *TelegramSessionRepository) Set(ctx context.Context, session *state.TelegramSession) error {
	var formID pgtype.UUID
	if session.FormID != "" {
		parsed, err := uuid.Parse(session.FormID)
		if err != nil {
			return fmt.Errorf("parse form ID: %w", err)
		}
		formID = pgtype.UUID{Bytes: parsed, Valid: true}
	}

	stateData := []byte(session.StateData)
	if len(stateData) == 0 {
		stateData = []byte("{}")
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO telegram_sessions (user_id, form_id, state, state_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET form_id = EXCLUDED.form_id,
		    state = EXCLUDED.state,
		    state_data = EXCLUDED.state_data,
		    updated_at = EXCLUDED.updated_at`,
		session.UserID,
		formID,
		session.State,
		stateData,
		pgtype.Timestamptz{Time: session.CreatedAt, Valid: true},
		pgtype.Timestamptz{Time: session.UpdatedAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("upsert telegram session: %w", err)
	}

	return nil
}

// Delete removes the dialog session
func (r *TelegramSessionRepository) Delete(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM telegram_sessions WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete telegram session: %w", err)
	}

	return nil
}

func scanTelegramSession(row rowScanner) (*state.TelegramSession, error) {
	var (
		userID    int64
		formID    pgtype.UUID
		dialog    string
		stateData []byte
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	if err := row.Scan(&userID, &formID, &dialog, &stateData, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	session := &state.TelegramSession{
		UserID:    userID,
		State:     dialog,
		CreatedAt: createdAt.Time,
		UpdatedAt: updatedAt.Time,
	}

	if formID.Valid {
		session.FormID = uuid.UUID(formID.Bytes).String()
	}

	if len(stateData) > 0 {
		session.StateData = json.RawMessage(stateData)
	} else {
		session.StateData = json.RawMessage("{}")
	}

	return session, nil
}
