package entity

import "time"

type SubmitFormRequest struct {
	Values map[string]any `json:"values"`
}

type SubmitFormResponse struct {
	Status       string `json:"status"`
	SubmissionID string `json:"submission_id"`
}

// ValidationErrorResponse lists the collected human-readable violations
// for a rejected submission or schema edit.
type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SubmissionDTO struct {
	ID          string         `json:"id"`
	Values      map[string]any `json:"values"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

type ListSubmissionsResponse struct {
	FormID      string           `json:"form_id"`
	Submissions []*SubmissionDTO `json:"submissions"`
}

// ExportResult is a rendered submission document ready for download.
type ExportResult struct {
	Data        []byte
	ContentType string
	Filename    string
}
