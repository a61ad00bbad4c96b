package form

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/formloom/forms-backend/internal/entity"
	"github.com/formloom/forms-backend/internal/pkg/logger"
)

type Handler struct {
	usecase FormUsecase
}

func NewHandler(usecase FormUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// GenerateForm handles POST /forms/generate
func (h *Handler) GenerateForm(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GenerateForm")

	var req entity.GenerateFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctxzap.Info(ctx, "generating form", zap.Int("prompt_length", len(req.Prompt)))

	resp, err := h.usecase.GenerateForm(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "form generation finished",
		zap.String("status", resp.Status),
		zap.String("form_id", resp.FormID),
	)

	// A clarification or a prompt-hash hit changes nothing, so neither
	// is a 201.
	status := http.StatusCreated
	if resp.Status != entity.GenerateStatusCreated {
		status = http.StatusOK
	}

	h.respondJSON(w, status, resp)
}

// ListForms handles GET /forms
func (h *Handler) ListForms(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListForms")

	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	req := entity.ListFormsRequest{
		Skip:  skip,
		Limit: limit,
	}

	req.Normalize()

	ctxzap.Debug(ctx, "listing forms",
		zap.Int("skip", req.Skip),
		zap.Int("limit", req.Limit),
	)

	forms, err := h.usecase.ListForms(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	summaries := make([]*entity.FormSummary, 0, len(forms))
	for _, f := range forms {
		summaries = append(summaries, toFormSummary(f))
	}

	ctxzap.Info(ctx, "forms listed successfully", zap.Int("count", len(summaries)))

	h.respondJSON(w, http.StatusOK, &entity.ListFormsResponse{
		Forms: summaries,
	})
}

// GetForm handles GET /forms/{form_id}
func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "form_id")
	ctx := logger.WithForm(logger.WithAction(r.Context(), "GetForm"), formID)

	ctxzap.Debug(ctx, "fetching form")

	form, err := h.usecase.GetForm(ctx, formID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "form fetched successfully")
	h.respondJSON(w, http.StatusOK, toFormDetail(form))
}

// UpdateSchema handles PUT /forms/{form_id}/schema
func (h *Handler) UpdateSchema(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "form_id")
	ctx := logger.WithForm(logger.WithAction(r.Context(), "UpdateSchema"), formID)

	var req entity.UpdateSchemaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctxzap.Info(ctx, "updating form schema", zap.Int("field_count", len(req.Schema.Fields)))

	if _, err := h.usecase.UpdateSchema(ctx, formID, req.Schema); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "form schema updated successfully")
	h.respondJSON(w, http.StatusOK, &entity.UpdateSchemaResponse{
		Status: "updated",
	})
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
		ctxzap.Info(ctx, "request rejected by validation",
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
	} else if errors.Is(err, entity.ErrInvalidParameter) || errors.Is(err, entity.ErrEmptyPrompt) {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	} else {
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
