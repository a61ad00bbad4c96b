package entity

import "time"

type ExportFormat string

const (
	FormatCSV      ExportFormat = "csv"
	FormatMarkdown ExportFormat = "markdown"
	FormatDOCX     ExportFormat = "docx"
	FormatPDF      ExportFormat = "pdf"
	FormatXLSX     ExportFormat = "xlsx"
)

func (f ExportFormat) IsValid() bool {
	switch f {
	case FormatCSV, FormatMarkdown, FormatDOCX, FormatPDF, FormatXLSX:
		return true
	default:
		return false
	}
}

type GenerateFormRequest struct {
	Prompt     string `json:"prompt"`
	Title      string `json:"title,omitempty"`
	WebhookURL string `json:"webhook_url,omitempty"`
}

// Generation outcomes.
const (
	GenerateStatusCreated       = "created"
	GenerateStatusExists        = "exists"
	GenerateStatusClarification = "clarification"
)

// GenerateFormResponse carries either the stored form or the model's
// clarification question when the request was contradictory.
type GenerateFormResponse struct {
	Status        string      `json:"status"`
	FormID        string      `json:"form_id,omitempty"`
	Clarification *string     `json:"clarification,omitempty"`
	Schema        *FormSchema `json:"schema,omitempty"`
}

type ListFormsRequest struct {
	Skip  int
	Limit int
}

func (lf *ListFormsRequest) Normalize() {
	if lf.Limit <= 0 {
		lf.Limit = 10
	}

	lf.Limit = min(lf.Limit, 100)
}

type ListFormsResponse struct {
	Forms []*FormSummary `json:"forms"`
}

type FormSummary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Prompt     string    `json:"prompt"`
	FieldCount int       `json:"field_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type FormDetailResponse struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Prompt     string     `json:"prompt"`
	Schema     FormSchema `json:"schema"`
	WebhookURL *string    `json:"webhook_url,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// UpdateSchemaRequest is a manual schema edit: the raw document replaces
// the stored schema after structural validation.
type UpdateSchemaRequest struct {
	Schema FormSchema `json:"schema"`
}

type UpdateSchemaResponse struct {
	Status string `json:"status"`
}

// SubmissionExport is the input every export formatter renders:
// the form plus its submissions in append order.
type SubmissionExport struct {
	Form        *Form
	Submissions []*Submission
}
