package state

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrSessionNotFound is returned when a user has no stored dialog session.
var ErrSessionNotFound = errors.New("telegram session not found")

// Dialog states. A user is always in exactly one of them.
const (
	// StateIdle: no active flow, commands only.
	StateIdle = "IDLE"

	// StateAwaitingPrompt: the bot asked for a form description.
	StateAwaitingPrompt = "AWAITING_PROMPT"

	// StateFilling: the user answers the form's fields one by one.
	StateFilling = "FILLING"
)

// TelegramSession maps a telegram user to the form they work with and
// the current dialog state.
type TelegramSession struct {
	UserID    int64           `json:"user_id"`
	FormID    string          `json:"form_id,omitempty"`
	State     string          `json:"state"`
	StateData json.RawMessage `json:"state_data,omitempty"` // Telegram-specific UI state
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StateData contains telegram-specific UI state (stored in StateData JSONB)
// Version 1: Initial implementation
type StateData struct {
	// Version for compatibility tracking (current version: 1)
	Version int `json:"version,omitempty"`

	// Fill flow tracking
	FieldIndex int            `json:"field_index,omitempty"`
	Answers    map[string]any `json:"answers,omitempty"`

	// Last message ID (for editing)
	LastMessageID int `json:"last_message_id,omitempty"`

	// Confirmation for destructive actions
	PendingConfirmation string `json:"pending_confirmation,omitempty"` // "cancel"
}

const (
	// StateDataCurrentVersion is the current version of StateData
	StateDataCurrentVersion = 1
)

// Storage defines the interface for telegram session persistence
type Storage interface {
	// Get retrieves telegram session by user ID
	Get(ctx context.Context, userID int64) (*TelegramSession, error)

	// Set saves telegram session
	Set(ctx context.Context, session *TelegramSession) error

	// Delete removes telegram session
	Delete(ctx context.Context, userID int64) error
}
