package entity

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors
var (
	// Form errors
	ErrFormNotFound  = errors.New("form not found")
	ErrInvalidForm   = errors.New("invalid form data")
	ErrEmptyPrompt   = errors.New("prompt is empty")
	ErrInvalidSchema = errors.New("invalid form schema")

	// Submission errors
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrSubmissionRejected   = errors.New("submission failed validation")
	ErrFormWithoutFields    = errors.New("form has no fields to fill")
	ErrUnsupportedExportFmt = errors.New("unsupported export format")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ValidationError carries the collected human-readable violations of a
// rejected submission or schema edit. Reason is the matching sentinel
// (ErrSubmissionRejected or ErrInvalidSchema) so callers can errors.Is it.
type ValidationError struct {
	Reason     error
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", e.Reason, strings.Join(e.Violations, "; "))
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}
