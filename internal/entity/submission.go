package entity

import "time"

// Submission is one filled form: a mapping from field name to the
// submitted value. Submissions are appended and never mutated or deleted.
// Values are JSON-typed: strings for text inputs, booleans for
// checkboxes, numbers where the client sends them.
type Submission struct {
	ID          string         `json:"id"`
	FormID      string         `json:"form_id"`
	Values      map[string]any `json:"values"`
	SubmittedAt time.Time      `json:"submitted_at"`
}
