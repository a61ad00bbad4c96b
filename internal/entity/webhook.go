package entity

// WebhookEventType represents the type of webhook event
type WebhookEventType string

const (
	WebhookEventSubmissionReceived WebhookEventType = "submissionReceived"
	WebhookEventSchemaUpdated      WebhookEventType = "schemaUpdated"
)

// WebhookEvent represents a webhook notification payload
type WebhookEvent struct {
	Event     WebhookEventType `json:"event"`
	Timestamp string           `json:"timestamp"` // ISO-8601 UTC
	Data      any              `json:"data"`
}

// WebhookSubmissionData represents data for a submission received event
type WebhookSubmissionData struct {
	FormID       string         `json:"form_id"`
	FormTitle    string         `json:"form_title"`
	SubmissionID string         `json:"submission_id"`
	Values       map[string]any `json:"values"`
}

// WebhookSchemaData represents data for a schema updated event
type WebhookSchemaData struct {
	FormID     string     `json:"form_id"`
	FormTitle  string     `json:"form_title"`
	Schema     FormSchema `json:"schema"`
	FieldCount int        `json:"field_count"`
}
