package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/formloom/forms-backend/internal/entity"
	"github.com/formloom/forms-backend/internal/pkg/logger"
)

type Handler struct {
	usecase SubmissionUsecase
}

func NewHandler(usecase SubmissionUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// SubmitForm handles POST /forms/{form_id}/submissions
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "form_id")
	ctx := logger.WithForm(logger.WithAction(r.Context(), "SubmitForm"), formID)

	var req entity.SubmitFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctxzap.Info(ctx, "submitting form", zap.Int("value_count", len(req.Values)))

	sub, err := h.usecase.SubmitForm(ctx, formID, req.Values)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "form submitted successfully", zap.String("submission_id", sub.ID))
	h.respondJSON(w, http.StatusCreated, &entity.SubmitFormResponse{
		Status:       "accepted",
		SubmissionID: sub.ID,
	})
}

// ListSubmissions handles GET /forms/{form_id}/submissions
func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "form_id")
	ctx := logger.WithForm(logger.WithAction(r.Context(), "ListSubmissions"), formID)

	ctxzap.Debug(ctx, "listing submissions")

	submissions, err := h.usecase.ListSubmissions(ctx, formID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	dtos := make([]*entity.SubmissionDTO, 0, len(submissions))
	for _, s := range submissions {
		dtos = append(dtos, toSubmissionDTO(s))
	}

	ctxzap.Info(ctx, "submissions listed successfully", zap.Int("count", len(dtos)))
	h.respondJSON(w, http.StatusOK, &entity.ListSubmissionsResponse{
		FormID:      formID,
		Submissions: dtos,
	})
}

// GetAnalytics handles GET /forms/{form_id}/analytics
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "form_id")
	ctx := logger.WithForm(logger.WithAction(r.Context(), "GetAnalytics"), formID)

	ctxzap.Debug(ctx, "computing analytics")

	analytics, err := h.usecase.GetAnalytics(ctx, formID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "analytics computed successfully",
		zap.Int("submission_count", analytics.SubmissionCount),
	)
	h.respondJSON(w, http.StatusOK, analytics)
}

// ExportSubmissions handles GET /forms/{form_id}/export?format=csv
func (h *Handler) ExportSubmissions(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "form_id")

	format := entity.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = entity.FormatCSV
	}

	ctx := logger.WithForm(logger.WithAction(r.Context(), "ExportSubmissions"), formID)
	ctx = logger.AddFields(ctx, zap.String("format", string(format)))

	ctxzap.Info(ctx, "exporting submissions")

	result, err := h.usecase.ExportSubmissions(ctx, formID, format)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "submissions exported successfully",
		zap.String("filename", result.Filename),
		zap.Int("size", len(result.Data)),
	)

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Data)
}

// Helper methods
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Error(ctx, message)
	}
	h.respondJSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	var validationErr *entity.ValidationError
	if errors.As(err, &validationErr) {
		ctxzap.Info(ctx, "submission rejected by validation",
			zap.Int("violation_count", len(validationErr.Violations)),
		)
		h.respondJSON(w, http.StatusUnprocessableEntity, entity.ValidationErrorResponse{
			Error:  validationErr.Reason.Error(),
			Errors: validationErr.Violations,
		})
		return
	}

	if errors.Is(err, entity.ErrFormNotFound) {
		h.respondError(ctx, w, http.StatusNotFound, "resource not found", err)
	} else if errors.Is(err, entity.ErrInvalidParameter) || errors.Is(err, entity.ErrUnsupportedExportFmt) {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	} else if errors.Is(err, entity.ErrFormWithoutFields) {
		h.respondError(ctx, w, http.StatusConflict, "form has no fields to fill", err)
	} else {
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
