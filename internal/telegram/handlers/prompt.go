package handlers

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/formloom/forms-backend/internal/entity"
	"github.com/formloom/forms-backend/internal/telegram/keyboard"
	"github.com/formloom/forms-backend/internal/telegram/render"
	"github.com/formloom/forms-backend/internal/telegram/state"
)

// PromptHandler handles AWAITING_PROMPT state: the user's text is a form
// description that goes to the schema generator.
type PromptHandler struct {
	BaseHandler
	bot          *tgbotapi.BotAPI
	stateManager *state.Manager
	formUC       FormUsecase
	keyboard     *keyboard.Builder
	logger       *zap.Logger
}

// NewPromptHandler creates a new prompt handler
func NewPromptHandler(
	bot *tgbotapi.BotAPI,
	stateManager *state.Manager,
	formUC FormUsecase,
	kb *keyboard.Builder,
	logger *zap.Logger,
) *PromptHandler {
	return &PromptHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateAwaitingPrompt,
			messageSender: NewMessageSender(bot, logger),
		},
		bot:          bot,
		stateManager: stateManager,
		formUC:       formUC,
		keyboard:     kb,
		logger:       logger,
	}
}

// Handle turns the form description into a stored form
func (h *PromptHandler) Handle(ctx context.Context, msg *Message) error {
	if msg.Text == "" {
		h.sendMessage(msg.ChatID, render.MsgAskPrompt, nil)
		return nil
	}

	ctxzap.Info(ctx, "processing form prompt",
		zap.Int64("user_id", msg.UserID),
		zap.Int("prompt_length", len(msg.Text)),
	)

	// Generation can take a while, show activity
	typing := NewTypingNotifier(h.bot, msg.ChatID, h.logger)
	typing.Start(ctx)
	defer typing.Stop()

	resp, err := h.formUC.GenerateForm(ctx, &entity.GenerateFormRequest{Prompt: msg.Text})
	if err != nil {
		var validationErr *entity.ValidationError
		if errors.As(err, &validationErr) {
			h.sendMessage(msg.ChatID, render.RenderAnswerRejected(validationErr.Violations), nil)
			h.sendMessage(msg.ChatID, render.MsgAskPrompt, nil)
			return nil
		}
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	if resp.Status == entity.GenerateStatusClarification {
		clarification := ""
		if resp.Clarification != nil {
			clarification = *resp.Clarification
		}
		h.sendMessage(msg.ChatID, render.RenderClarification(clarification), nil)
		// Stay in AWAITING_PROMPT for the refined description
		return nil
	}

	form, err := h.formUC.GetForm(ctx, resp.FormID)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	if err := h.stateManager.Transition(ctx, msg.UserID, state.StateIdle, form.ID); err != nil {
		return fmt.Errorf("transition to idle: %w", err)
	}

	ctxzap.Info(ctx, "form ready",
		zap.String("form_id", form.ID),
		zap.String("status", resp.Status),
		zap.Int64("user_id", msg.UserID),
	)

	h.sendMessage(msg.ChatID, render.RenderFormPreview(form), h.keyboard.FormPreviewKeyboard(form.ID))
	return nil
}
