package submission

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/formloom/forms-backend/internal/entity"
	"github.com/formloom/forms-backend/internal/pkg/formatter"
	"github.com/formloom/forms-backend/internal/pkg/validator"
	"github.com/formloom/forms-backend/internal/repository"
)

// SubmissionUsecase implements the submission log: rule validation,
// append, analytics and exports.
type SubmissionUsecase struct {
	formRepo       repository.FormRepository
	submissionRepo repository.SubmissionRepository
	webhookConn    WebhookConnector
	formatters     *formatter.Factory
	logger         *zap.Logger
}

// NewUsecase creates a new submission use case
func NewUsecase(
	formRepo repository.FormRepository,
	submissionRepo repository.SubmissionRepository,
	webhookConn WebhookConnector,
	formatters *formatter.Factory,
	logger *zap.Logger,
) *SubmissionUsecase {
	return &SubmissionUsecase{
		formRepo:       formRepo,
		submissionRepo: submissionRepo,
		webhookConn:    webhookConn,
		formatters:     formatters,
		logger:         logger,
	}
}

// SubmitForm validates submitted values against the form's rules and
// appends the submission. All violations are collected and returned as
// data; keys that match no field are ignored.
func (uc *SubmissionUsecase) SubmitForm(ctx context.Context, formID string, values map[string]any) (*entity.Submission, error) {
	form, err := uc.getForm(ctx, formID)
	if err != nil {
		return nil, err
	}

	if len(form.Schema.Fields) == 0 {
		return nil, entity.ErrFormWithoutFields
	}

	if violations := validator.ValidateSubmission(&form.Schema, values); len(violations) > 0 {
		ctxzap.Info(ctx, "submission rejected",
			zap.String("form_id", form.ID),
			zap.Int("violation_count", len(violations)),
		)
		return nil, &entity.ValidationError{
			Reason:     entity.ErrSubmissionRejected,
			Violations: violations,
		}
	}

	submission := entity.Submission{
		ID:     uuid.New().String(),
		FormID: form.ID,
		Values: keepKnownFields(&form.Schema, values),
	}

	saved, err := uc.submissionRepo.Append(ctx, submission)
	if err != nil {
		return nil, fmt.Errorf("append submission: %w", err)
	}

	ctxzap.Info(ctx, "submission appended",
		zap.String("form_id", form.ID),
		zap.String("submission_id", saved.ID),
	)

	if form.WebhookURL != nil && *form.WebhookURL != "" {
		uc.notifySubmissionReceived(ctx, form, saved)
	}

	return saved, nil
}

// ListSubmissions returns the form's submissions oldest first
func (uc *SubmissionUsecase) ListSubmissions(ctx context.Context, formID string) ([]*entity.Submission, error) {
	if _, err := uc.getForm(ctx, formID); err != nil {
		return nil, err
	}

	submissions, err := uc.submissionRepo.ListByForm(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	return submissions, nil
}

// GetAnalytics derives aggregate statistics from the submission log.
// Nothing is precomputed or stored.
func (uc *SubmissionUsecase) GetAnalytics(ctx context.Context, formID string) (*entity.FormAnalytics, error) {
	form, err := uc.getForm(ctx, formID)
	if err != nil {
		return nil, err
	}

	submissions, err := uc.submissionRepo.ListByForm(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	return computeAnalytics(form, submissions), nil
}

// ExportSubmissions renders the form's submission log as a downloadable
// document in the requested format.
func (uc *SubmissionUsecase) ExportSubmissions(ctx context.Context, formID string, format entity.ExportFormat) (*entity.ExportResult, error) {
	if !format.IsValid() {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedExportFmt, format)
	}

	form, err := uc.getForm(ctx, formID)
	if err != nil {
		return nil, err
	}

	submissions, err := uc.submissionRepo.ListByForm(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, fmt.Errorf("create formatter: %w", err)
	}

	data, err := f.Format(&entity.SubmissionExport{
		Form:        form,
		Submissions: submissions,
	})
	if err != nil {
		return nil, fmt.Errorf("format submissions: %w", err)
	}

	ctxzap.Info(ctx, "submissions exported",
		zap.String("form_id", form.ID),
		zap.String("format", string(format)),
		zap.Int("submission_count", len(submissions)),
	)

	return &entity.ExportResult{
		Data:        data,
		ContentType: f.ContentType(),
		Filename:    exportFilename(form, f.FileExtension()),
	}, nil
}

func (uc *SubmissionUsecase) getForm(ctx context.Context, formID string) (*entity.Form, error) {
	if _, err := uuid.Parse(formID); err != nil {
		return nil, fmt.Errorf("%w: invalid form ID format", entity.ErrInvalidParameter)
	}

	form, err := uc.formRepo.Get(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("get form: %w", err)
	}

	return form, nil
}

// notifySubmissionReceived delivers the webhook event asynchronously on
// a detached context so the submission does not block on delivery
// retries.
func (uc *SubmissionUsecase) notifySubmissionReceived(ctx context.Context, form *entity.Form, submission *entity.Submission) {
	bgCtx := ctxzap.ToContext(context.Background(), ctxzap.Extract(ctx))

	go uc.webhookConn.SendSubmissionReceived(bgCtx, *form.WebhookURL, submission.ID, &entity.WebhookSubmissionData{
		FormID:       form.ID,
		FormTitle:    form.Title,
		SubmissionID: submission.ID,
		Values:       submission.Values,
	})
}
