package submission

import (
	"context"

	"github.com/formloom/forms-backend/internal/entity"
)

type SubmissionUsecase interface {
	SubmitForm(ctx context.Context, formID string, values map[string]any) (*entity.Submission, error)
	ListSubmissions(ctx context.Context, formID string) ([]*entity.Submission, error)
	GetAnalytics(ctx context.Context, formID string) (*entity.FormAnalytics, error)
	ExportSubmissions(ctx context.Context, formID string, format entity.ExportFormat) (*entity.ExportResult, error)
}
