package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Form is a persisted generated form: the schema together with the
// prompt that produced it. PromptHash identifies the form by content,
// so repeating the same request returns the same form.
type Form struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Prompt     string     `json:"prompt"`
	PromptHash string     `json:"prompt_hash"`
	Schema     FormSchema `json:"schema"`
	WebhookURL *string    `json:"webhook_url,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// HashPrompt derives the content identity of a form request:
// sha256 hex over the trimmed prompt.
func HashPrompt(prompt string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(prompt)))
	return hex.EncodeToString(sum[:])
}

// FormAnalytics is derived from the submission log on demand and never stored.
type FormAnalytics struct {
	FormID          string       `json:"form_id"`
	SubmissionCount int          `json:"submission_count"`
	FirstSubmission *time.Time   `json:"first_submission,omitempty"`
	LastSubmission  *time.Time   `json:"last_submission,omitempty"`
	Fields          []FieldStats `json:"fields"`
}

// FieldStats aggregates one field across all submissions.
// OptionCounts is populated for choice fields only.
type FieldStats struct {
	Name         string         `json:"name"`
	Label        string         `json:"label"`
	Type         FieldType      `json:"type"`
	FilledCount  int            `json:"filled_count"`
	FillRate     float64        `json:"fill_rate"`
	OptionCounts map[string]int `json:"option_counts,omitempty"`
}
