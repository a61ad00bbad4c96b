package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/formloom/forms-backend/internal/entity"
	"github.com/formloom/forms-backend/internal/pkg/validator"
	"github.com/formloom/forms-backend/internal/telegram/keyboard"
	"github.com/formloom/forms-backend/internal/telegram/render"
	"github.com/formloom/forms-backend/internal/telegram/state"
)

// FillHandler handles FILLING state: the user answers the form's fields
// one by one, each answer checked against the field's rules before the
// next question.
type FillHandler struct {
	BaseHandler
	bot          *tgbotapi.BotAPI
	stateManager *state.Manager
	formUC       FormUsecase
	submissionUC SubmissionUsecase
	keyboard     *keyboard.Builder
	logger       *zap.Logger
}

// NewFillHandler creates a new fill handler
func NewFillHandler(
	bot *tgbotapi.BotAPI,
	stateManager *state.Manager,
	formUC FormUsecase,
	submissionUC SubmissionUsecase,
	kb *keyboard.Builder,
	logger *zap.Logger,
) *FillHandler {
	return &FillHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateFilling,
			messageSender: NewMessageSender(bot, logger),
		},
		bot:          bot,
		stateManager: stateManager,
		formUC:       formUC,
		submissionUC: submissionUC,
		keyboard:     kb,
		logger:       logger,
	}
}

// Handle processes a typed answer for the current field
func (h *FillHandler) Handle(ctx context.Context, msg *Message) error {
	form, stateData, err := h.loadFlow(ctx, msg.UserID)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	if stateData.FieldIndex >= len(form.Schema.Fields) {
		// Stale state, restart the flow from scratch
		ctxzap.Warn(ctx, "field index out of range",
			zap.Int("field_index", stateData.FieldIndex),
			zap.Int64("user_id", msg.UserID),
		)
		return h.StartFilling(ctx, msg.UserID, msg.ChatID, form)
	}

	field := form.Schema.Fields[stateData.FieldIndex]

	if msg.Text == "" {
		h.sendMessage(msg.ChatID, render.ErrGeneric, nil)
		return nil
	}

	value, ok := h.coerceTypedAnswer(&field, msg.Text)
	if !ok {
		// Choice fields expect a button press; re-show the options
		h.askField(msg.ChatID, form, stateData.FieldIndex)
		return nil
	}

	return h.AcceptAnswer(ctx, msg.UserID, msg.ChatID, form, stateData, value)
}

// StartFilling begins the fill flow from the first field
func (h *FillHandler) StartFilling(ctx context.Context, userID, chatID int64, form *entity.Form) error {
	if len(form.Schema.Fields) == 0 {
		h.sendMessage(chatID, render.ErrFormWithoutFields, nil)
		return nil
	}

	if err := h.stateManager.Transition(ctx, userID, state.StateFilling, form.ID); err != nil {
		return fmt.Errorf("transition to filling: %w", err)
	}

	if err := h.stateManager.ResetStateData(ctx, userID); err != nil {
		return fmt.Errorf("reset fill state: %w", err)
	}

	ctxzap.Info(ctx, "fill flow started",
		zap.Int64("user_id", userID),
		zap.String("form_id", form.ID),
		zap.Int("field_count", len(form.Schema.Fields)),
	)

	h.askField(chatID, form, 0)
	return nil
}

// AcceptAnswer validates the value against the current field, stores it
// and advances the flow. A nil value skips the field.
func (h *FillHandler) AcceptAnswer(ctx context.Context, userID, chatID int64, form *entity.Form, stateData *state.StateData, value any) error {
	field := form.Schema.Fields[stateData.FieldIndex]

	if violations := validator.ValidateField(field, value); len(violations) > 0 {
		h.sendMessage(chatID, render.RenderAnswerRejected(violations), nil)
		h.askField(chatID, form, stateData.FieldIndex)
		return nil
	}

	if stateData.Answers == nil {
		stateData.Answers = make(map[string]any)
	}
	if value != nil {
		stateData.Answers[field.Name] = value
	}
	stateData.FieldIndex++

	if stateData.FieldIndex >= len(form.Schema.Fields) {
		return h.finishFilling(ctx, userID, chatID, form, stateData)
	}

	if err := h.stateManager.UpdateStateData(ctx, userID, stateData); err != nil {
		return fmt.Errorf("save fill progress: %w", err)
	}

	h.askField(chatID, form, stateData.FieldIndex)
	return nil
}

// SkipCurrentField skips an optional field; a required field re-asks.
func (h *FillHandler) SkipCurrentField(ctx context.Context, userID, chatID int64, form *entity.Form, stateData *state.StateData) error {
	field := form.Schema.Fields[stateData.FieldIndex]

	if strings.Contains(field.Validation, "required") {
		h.sendMessage(chatID, render.RenderAnswerRejected([]string{fmt.Sprintf("%s is required.", field.Label)}), nil)
		h.askField(chatID, form, stateData.FieldIndex)
		return nil
	}

	return h.AcceptAnswer(ctx, userID, chatID, form, stateData, nil)
}

// finishFilling submits the collected answers and closes the dialog
func (h *FillHandler) finishFilling(ctx context.Context, userID, chatID int64, form *entity.Form, stateData *state.StateData) error {
	ctxzap.Info(ctx, "submitting collected answers",
		zap.Int64("user_id", userID),
		zap.String("form_id", form.ID),
		zap.Int("answer_count", len(stateData.Answers)),
	)

	if _, err := h.submissionUC.SubmitForm(ctx, form.ID, stateData.Answers); err != nil {
		var validationErr *entity.ValidationError
		if errors.As(err, &validationErr) {
			// Per-field checks should have caught this; restart cleanly
			h.sendMessage(chatID, render.RenderAnswerRejected(validationErr.Violations), nil)
			return h.StartFilling(ctx, userID, chatID, form)
		}
		h.HandleError(ctx, chatID, err)
		return nil
	}

	h.sendMessage(chatID, render.RenderSubmissionSummary(form, stateData.Answers), nil)
	h.sendMessage(chatID, render.MsgSubmissionAccepted, nil)

	if err := h.stateManager.DeleteSession(ctx, userID); err != nil {
		ctxzap.Warn(ctx, "failed to delete telegram session after submit",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
	}

	return nil
}

// askField sends the field question with the keyboard matching its type
func (h *FillHandler) askField(chatID int64, form *entity.Form, index int) {
	field := form.Schema.Fields[index]
	optional := !strings.Contains(field.Validation, "required")

	var markup interface{}
	switch {
	case field.Type.TakesOptions():
		markup = h.keyboard.OptionsKeyboard(field.Options, optional)
	case field.Type == entity.FieldTypeCheckbox:
		markup = h.keyboard.CheckboxKeyboard()
	case optional:
		markup = h.keyboard.SkipKeyboard()
	}

	h.sendMessage(chatID, render.RenderField(&field, index+1, len(form.Schema.Fields)), markup)
}

// loadFlow fetches the form and fill progress for the user's session
func (h *FillHandler) loadFlow(ctx context.Context, userID int64) (*entity.Form, *state.StateData, error) {
	session, err := h.stateManager.GetSession(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get telegram session: %w", err)
	}

	if session.FormID == "" {
		return nil, nil, fmt.Errorf("%w: no form bound to session", state.ErrSessionNotFound)
	}

	form, err := h.formUC.GetForm(ctx, session.FormID)
	if err != nil {
		return nil, nil, fmt.Errorf("get form: %w", err)
	}

	stateData, err := h.stateManager.GetStateData(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get state data: %w", err)
	}

	return form, stateData, nil
}

// coerceTypedAnswer maps free text onto the field's expected value.
// Choice fields accept text only when it exactly matches an option.
func (h *FillHandler) coerceTypedAnswer(field *entity.FieldDefinition, text string) (any, bool) {
	text = strings.TrimSpace(text)

	switch {
	case field.Type.TakesOptions():
		for _, option := range field.Options {
			if strings.EqualFold(option, text) {
				return option, true
			}
		}
		return nil, false
	case field.Type == entity.FieldTypeCheckbox:
		switch strings.ToLower(text) {
		case "да", "yes", "true":
			return true, true
		case "нет", "no", "false":
			return false, true
		}
		return nil, false
	default:
		return text, true
	}
}
