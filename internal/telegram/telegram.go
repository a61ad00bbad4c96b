package telegram

import (
	"context"
	"fmt"

	"github.com/formloom/forms-backend/internal/config"
	"github.com/formloom/forms-backend/internal/telegram/bot"
	"github.com/formloom/forms-backend/internal/telegram/handlers"
	"github.com/formloom/forms-backend/internal/telegram/state"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot initializes the telegram bot with all dependencies
func NewBot(
	cfg *config.TelegramConfig,
	storage state.Storage,
	formUC handlers.FormUsecase,
	submissionUC handlers.SubmissionUsecase,
	logger *zap.Logger,
) (Bot, error) {
	stateManager := state.NewManager(storage)

	b, err := bot.New(cfg, stateManager, formUC, submissionUC, logger)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	registerHandlers(b, logger)

	logger.Info("telegram bot initialized successfully")

	return b, nil
}

// registerHandlers registers all handlers with the bot
func registerHandlers(b *bot.Bot, logger *zap.Logger) {
	api := b.GetAPI()
	stateManager := b.GetStateManager()
	formUC := b.GetFormUsecase()
	submissionUC := b.GetSubmissionUsecase()
	keyboard := b.GetKeyboard()

	// Prompt handler (AWAITING_PROMPT state)
	promptHandler := handlers.NewPromptHandler(api, stateManager, formUC, keyboard, logger)
	b.RegisterHandler(promptHandler)

	// Fill handler (FILLING state)
	fillHandler := handlers.NewFillHandler(api, stateManager, formUC, submissionUC, keyboard, logger)
	b.RegisterHandler(fillHandler)

	// Callback handler routes button presses, including fill-flow answers,
	// so it needs the fill handler
	callbackHandler := handlers.NewCallbackHandler(api, stateManager, formUC, submissionUC, fillHandler, keyboard, logger)
	b.RegisterHandler(callbackHandler)

	logger.Info("telegram handlers registered",
		zap.Int("handler_count", 3),
	)
}
