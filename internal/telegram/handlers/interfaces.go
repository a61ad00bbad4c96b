package handlers

import (
	"context"

	"github.com/formloom/forms-backend/internal/entity"
)

// FormUsecase defines the form operations the Telegram bot relies on
type FormUsecase interface {
	GenerateForm(ctx context.Context, req *entity.GenerateFormRequest) (*entity.GenerateFormResponse, error)
	ListForms(ctx context.Context, req *entity.ListFormsRequest) ([]*entity.Form, error)
	GetForm(ctx context.Context, id string) (*entity.Form, error)
}

// SubmissionUsecase defines the submission operations the Telegram bot relies on
type SubmissionUsecase interface {
	SubmitForm(ctx context.Context, formID string, values map[string]any) (*entity.Submission, error)
	GetAnalytics(ctx context.Context, formID string) (*entity.FormAnalytics, error)
	ExportSubmissions(ctx context.Context, formID string, format entity.ExportFormat) (*entity.ExportResult, error)
}
