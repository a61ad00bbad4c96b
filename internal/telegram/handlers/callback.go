package handlers

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/formloom/forms-backend/internal/entity"
	"github.com/formloom/forms-backend/internal/telegram/keyboard"
	"github.com/formloom/forms-backend/internal/telegram/render"
	"github.com/formloom/forms-backend/internal/telegram/state"
)

// CallbackHandler routes all inline button presses
type CallbackHandler struct {
	BaseHandler
	bot          *tgbotapi.BotAPI
	stateManager *state.Manager
	formUC       FormUsecase
	submissionUC SubmissionUsecase
	fillHandler  *FillHandler
	keyboard     *keyboard.Builder
	logger       *zap.Logger
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(
	bot *tgbotapi.BotAPI,
	stateManager *state.Manager,
	formUC FormUsecase,
	submissionUC SubmissionUsecase,
	fillHandler *FillHandler,
	kb *keyboard.Builder,
	logger *zap.Logger,
) *CallbackHandler {
	return &CallbackHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateCallback,
			messageSender: NewMessageSender(bot, logger),
		},
		bot:          bot,
		stateManager: stateManager,
		formUC:       formUC,
		submissionUC: submissionUC,
		fillHandler:  fillHandler,
		keyboard:     kb,
		logger:       logger,
	}
}

// Handle dispatches a callback by its action prefix
func (h *CallbackHandler) Handle(ctx context.Context, msg *Message) error {
	data, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		return fmt.Errorf("parse callback: %w", err)
	}

	ctxzap.Info(ctx, "handling callback",
		zap.String("callback_action", data.Action),
		zap.String("callback_value", data.Value),
		zap.Int64("user_id", msg.UserID),
	)

	switch data.Action {
	case "action":
		return h.handleAction(ctx, msg, data.Value)
	case "form":
		return h.showFormPreview(ctx, msg, data.Value)
	case "fill":
		return h.startFilling(ctx, msg, data.Value)
	case "opt":
		return h.handleOption(ctx, msg, data.Value)
	case "chk":
		return h.handleCheckbox(ctx, msg, data.Value)
	case "skip":
		return h.handleSkip(ctx, msg)
	case "stats":
		return h.showAnalytics(ctx, msg, data.Value)
	case "export":
		return h.showExportFormats(ctx, msg, data.Value)
	case "dl":
		return h.sendExport(ctx, msg, data.Value)
	case "confirm":
		return h.handleConfirm(ctx, msg, data.Value)
	default:
		ctxzap.Warn(ctx, "unknown callback action",
			zap.String("callback_action", data.Action),
		)
		h.sendMessage(msg.ChatID, render.ErrInvalidState, nil)
		return nil
	}
}

func (h *CallbackHandler) handleAction(ctx context.Context, msg *Message, value string) error {
	switch value {
	case "new":
		if err := h.stateManager.Transition(ctx, msg.UserID, state.StateAwaitingPrompt, ""); err != nil {
			return fmt.Errorf("transition to awaiting prompt: %w", err)
		}
		h.sendMessage(msg.ChatID, render.MsgAskPrompt, nil)
		return nil
	case "list":
		return h.listForms(ctx, msg)
	default:
		h.sendMessage(msg.ChatID, render.ErrInvalidState, nil)
		return nil
	}
}

func (h *CallbackHandler) listForms(ctx context.Context, msg *Message) error {
	forms, err := h.formUC.ListForms(ctx, &entity.ListFormsRequest{Limit: 10})
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	if len(forms) == 0 {
		h.sendMessage(msg.ChatID, render.MsgFormsListEmpty, h.keyboard.StartKeyboard())
		return nil
	}

	kbForms := make([]keyboard.Form, 0, len(forms))
	for _, f := range forms {
		kbForms = append(kbForms, keyboard.Form{
			ID:    f.ID,
			Title: fmt.Sprintf("%s (%s)", f.Title, render.FormatCreatedAt(f.CreatedAt)),
		})
	}

	h.sendMessage(msg.ChatID, render.MsgFormsList, h.keyboard.FormListKeyboard(kbForms))
	return nil
}

func (h *CallbackHandler) showFormPreview(ctx context.Context, msg *Message, formID string) error {
	form, err := h.formUC.GetForm(ctx, formID)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	if err := h.stateManager.Transition(ctx, msg.UserID, state.StateIdle, form.ID); err != nil {
		return fmt.Errorf("bind form to session: %w", err)
	}

	h.sendMessage(msg.ChatID, render.RenderFormPreview(form), h.keyboard.FormPreviewKeyboard(form.ID))
	return nil
}

func (h *CallbackHandler) startFilling(ctx context.Context, msg *Message, formID string) error {
	form, err := h.formUC.GetForm(ctx, formID)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	return h.fillHandler.StartFilling(ctx, msg.UserID, msg.ChatID, form)
}

func (h *CallbackHandler) handleOption(ctx context.Context, msg *Message, value string) error {
	form, stateData, err := h.loadFillFlow(ctx, msg)
	if err != nil {
		return nil
	}

	index, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse option index: %w", err)
	}

	field := form.Schema.Fields[stateData.FieldIndex]
	if index < 0 || index >= len(field.Options) {
		ctxzap.Warn(ctx, "option index out of range",
			zap.Int("index", index),
			zap.String("field", field.Name),
		)
		h.sendMessage(msg.ChatID, render.ErrInvalidState, nil)
		return nil
	}

	return h.fillHandler.AcceptAnswer(ctx, msg.UserID, msg.ChatID, form, stateData, field.Options[index])
}

func (h *CallbackHandler) handleCheckbox(ctx context.Context, msg *Message, value string) error {
	form, stateData, err := h.loadFillFlow(ctx, msg)
	if err != nil {
		return nil
	}

	return h.fillHandler.AcceptAnswer(ctx, msg.UserID, msg.ChatID, form, stateData, value == "yes")
}

func (h *CallbackHandler) handleSkip(ctx context.Context, msg *Message) error {
	form, stateData, err := h.loadFillFlow(ctx, msg)
	if err != nil {
		return nil
	}

	return h.fillHandler.SkipCurrentField(ctx, msg.UserID, msg.ChatID, form, stateData)
}

func (h *CallbackHandler) showAnalytics(ctx context.Context, msg *Message, formID string) error {
	form, err := h.formUC.GetForm(ctx, formID)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	analytics, err := h.submissionUC.GetAnalytics(ctx, formID)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	h.sendMessage(msg.ChatID, render.RenderAnalytics(analytics, form.Title), h.keyboard.FormPreviewKeyboard(form.ID))
	return nil
}

func (h *CallbackHandler) showExportFormats(ctx context.Context, msg *Message, formID string) error {
	// Bind the form so the dl callback knows what to export
	if err := h.stateManager.Transition(ctx, msg.UserID, state.StateIdle, formID); err != nil {
		return fmt.Errorf("bind form to session: %w", err)
	}

	h.sendMessage(msg.ChatID, "📥 В каком формате выгрузить ответы?", h.keyboard.ExportKeyboard())
	return nil
}

func (h *CallbackHandler) sendExport(ctx context.Context, msg *Message, format string) error {
	session, err := h.stateManager.GetSession(ctx, msg.UserID)
	if err != nil || session.FormID == "" {
		h.sendMessage(msg.ChatID, render.ErrSessionNotFound, nil)
		return nil
	}

	result, err := h.submissionUC.ExportSubmissions(ctx, session.FormID, entity.ExportFormat(format))
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	ctxzap.Info(ctx, "sending export document",
		zap.String("form_id", session.FormID),
		zap.String("format", format),
		zap.Int("size", len(result.Data)),
	)

	if err := h.messageSender.SendDocument(msg.ChatID, result.Filename, result.Data); err != nil {
		h.sendMessage(msg.ChatID, render.ErrGeneric, nil)
	}
	return nil
}

func (h *CallbackHandler) handleConfirm(ctx context.Context, msg *Message, value string) error {
	switch value {
	case "cancel":
		if err := h.stateManager.DeleteSession(ctx, msg.UserID); err != nil {
			ctxzap.Warn(ctx, "failed to delete telegram session",
				zap.Error(err),
				zap.Int64("user_id", msg.UserID),
			)
		}
		h.sendMessage(msg.ChatID, render.MsgSessionFinished, nil)
	case "continue":
		stateData, err := h.stateManager.GetStateData(ctx, msg.UserID)
		if err == nil && stateData.PendingConfirmation != "" {
			stateData.PendingConfirmation = ""
			h.stateManager.UpdateStateData(ctx, msg.UserID, stateData)
		}
		h.sendMessage(msg.ChatID, render.MsgContinue, nil)
	default:
		h.sendMessage(msg.ChatID, render.ErrInvalidState, nil)
	}
	return nil
}

// loadFillFlow loads the fill context for answer callbacks; errors are
// reported to the user here so callers can just return.
func (h *CallbackHandler) loadFillFlow(ctx context.Context, msg *Message) (*entity.Form, *state.StateData, error) {
	session, err := h.stateManager.GetSession(ctx, msg.UserID)
	if err != nil || session.State != state.StateFilling || session.FormID == "" {
		h.sendMessage(msg.ChatID, render.ErrSessionNotFound, nil)
		return nil, nil, fmt.Errorf("no active fill flow")
	}

	form, err := h.formUC.GetForm(ctx, session.FormID)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil, nil, err
	}

	stateData, err := h.stateManager.GetStateData(ctx, msg.UserID)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil, nil, err
	}

	if stateData.FieldIndex >= len(form.Schema.Fields) {
		h.sendMessage(msg.ChatID, render.ErrInvalidState, nil)
		return nil, nil, fmt.Errorf("field index out of range")
	}

	return form, stateData, nil
}
