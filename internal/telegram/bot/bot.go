package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/formloom/forms-backend/internal/config"
	"github.com/formloom/forms-backend/internal/telegram/handlers"
	"github.com/formloom/forms-backend/internal/telegram/keyboard"
	"github.com/formloom/forms-backend/internal/telegram/middleware"
	"github.com/formloom/forms-backend/internal/telegram/render"
	"github.com/formloom/forms-backend/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Bot represents the Telegram bot
type Bot struct {
	api          *tgbotapi.BotAPI
	cfg          *config.TelegramConfig
	stateManager *state.Manager
	handlers     map[string]handlers.Handler
	formUC       handlers.FormUsecase
	submissionUC handlers.SubmissionUsecase
	keyboard     *keyboard.Builder
	logger       *zap.Logger
	loggingMW    *middleware.LoggingMiddleware
	recoveryMW   *middleware.RecoveryMiddleware
	rateLimitMW  *middleware.RateLimiterMiddleware
	updatesChan  tgbotapi.UpdatesChannel
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

// New creates a new Telegram bot
func New(
	cfg *config.TelegramConfig,
	stateManager *state.Manager,
	formUC handlers.FormUsecase,
	submissionUC handlers.SubmissionUsecase,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	api.Debug = false

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	bot := &Bot{
		api:          api,
		cfg:          cfg,
		stateManager: stateManager,
		formUC:       formUC,
		submissionUC: submissionUC,
		keyboard:     keyboard.NewBuilder(),
		logger:       logger,
		handlers:     make(map[string]handlers.Handler),
		stopChan:     make(chan struct{}),
	}

	bot.loggingMW = middleware.NewLoggingMiddleware(logger)
	bot.recoveryMW = middleware.NewRecoveryMiddleware(logger, api)
	bot.rateLimitMW = middleware.NewRateLimiterMiddleware(
		cfg.RateLimitPerMinute,
		cfg.RateLimitBurst,
		logger,
		api,
	)

	return bot, nil
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout

	updates := b.api.GetUpdatesChan(u)
	b.updatesChan = updates

	ctx = ctxzap.ToContext(ctx, b.logger)

	go b.processUpdates(ctx)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops the bot gracefully with timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	close(b.stopChan)
	b.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

// processUpdates processes incoming updates
func (b *Bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update := <-b.updatesChan:
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdateWithMiddleware(u)
			}(update)
		}
	}
}

// handleUpdateWithMiddleware processes update through middleware chain
func (b *Bot) handleUpdateWithMiddleware(update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, func(u3 tgbotapi.Update) {
				b.handleUpdate(u3)
			})
		})
	})
}

// handleUpdate routes update to appropriate handler
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	ctx := ctxzap.ToContext(context.Background(), b.logger)

	if update.CallbackQuery != nil {
		b.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
		return
	}
}

// handleMessage handles incoming messages
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	userID := message.From.ID
	session, err := b.stateManager.GetSession(ctx, userID)
	if err != nil {
		if errors.Is(err, state.ErrSessionNotFound) {
			b.sendError(message.Chat.ID, "Нет активного диалога. Используйте /start")
			return
		}
		ctxzap.Error(ctx, "failed to get telegram session",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		b.sendError(message.Chat.ID, render.ErrGeneric)
		return
	}

	// Load StateData once and attach to context for request-scoped caching
	stateData, err := b.stateManager.GetStateData(ctx, userID)
	if err != nil {
		ctxzap.Error(ctx, "failed to get state data",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		b.sendError(message.Chat.ID, render.ErrGeneric)
		return
	}
	ctx = state.ContextWithStateData(ctx, stateData)

	handler, exists := b.handlers[session.State]
	if !exists {
		// IDLE has no text handler: buttons drive the flow from there
		ctxzap.Warn(ctx, "no handler for state",
			zap.String("state", session.State),
			zap.Int64("user_id", userID),
		)
		b.sendError(message.Chat.ID, render.ErrInvalidState)
		return
	}

	msg := &handlers.Message{
		ChatID:    message.Chat.ID,
		UserID:    message.From.ID,
		MessageID: message.MessageID,
		Text:      message.Text,
	}

	if err := handler.Handle(ctx, msg); err != nil {
		ctxzap.Error(ctx, "handler error",
			zap.Error(err),
			zap.String("state", session.State),
			zap.Int64("user_id", userID),
		)
		b.sendError(message.Chat.ID, render.ErrGeneric)
	}
}

// handleCommand handles bot commands
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()

	ctxzap.Info(ctx, "command received",
		zap.String("command", command),
		zap.Int64("user_id", message.From.ID),
	)

	switch command {
	case "start":
		b.handleStartCommand(ctx, message)
	case "help":
		b.handleHelpCommand(ctx, message)
	case "cancel":
		b.handleCancelCommand(ctx, message)
	default:
		b.sendError(message.Chat.ID, "❌ Неизвестная команда. Используйте /start")
	}
}

// handleStartCommand handles /start command
func (b *Bot) handleStartCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if _, err := b.sendMessage(chatID, render.MsgWelcome, b.keyboard.StartKeyboard()); err != nil {
		ctxzap.Error(ctx, "failed to send welcome message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// handleHelpCommand handles /help command
func (b *Bot) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) {
	helpText := `🤖 **Команды бота:**

/start - Главное меню
/help - Показать эту справку
/cancel - Прервать текущий диалог

**Как это работает:**
1. Опиши, какая форма тебе нужна
2. Бот соберёт форму с нужными полями
3. Заполняй форму, отвечая на вопросы по одному
4. Смотри статистику ответов и выгружай их в csv, markdown, docx, pdf или xlsx

Начни с /start`

	msg := tgbotapi.NewMessage(message.Chat.ID, helpText)
	msg.ParseMode = "Markdown"
	if _, err := b.api.Send(msg); err != nil {
		ctxzap.Error(ctx, "failed to send help message",
			zap.Error(err),
		)
	}
}

// handleCancelCommand handles /cancel command
func (b *Bot) handleCancelCommand(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	_, err := b.stateManager.GetSession(ctx, userID)
	if err != nil {
		b.sendMessage(chatID, render.MsgNothingToCancel, nil)
		return
	}

	stateData, err := b.stateManager.GetStateData(ctx, userID)
	if err != nil {
		ctxzap.Error(ctx, "failed to get state data", zap.Error(err))
		stateData = &state.StateData{Version: state.StateDataCurrentVersion}
	}

	if stateData.PendingConfirmation != "cancel" {
		// First time - ask for confirmation
		stateData.PendingConfirmation = "cancel"
		b.stateManager.UpdateStateData(ctx, userID, stateData)
		b.sendMessage(chatID, render.MsgConfirmCancel, b.keyboard.ConfirmCancelKeyboard())
		return
	}

	// Already confirmed - drop the dialog
	if err := b.stateManager.DeleteSession(ctx, userID); err != nil {
		ctxzap.Error(ctx, "failed to delete telegram session",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
	}
	b.sendMessage(chatID, render.MsgSessionFinished, nil)
}

// handleCallbackQuery handles callback button clicks
func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	callbackData, err := keyboard.ParseCallback(query.Data)
	if err != nil {
		ctxzap.Error(ctx, "invalid callback data",
			zap.Error(err),
			zap.String("data", query.Data),
		)
		b.answerCallback(query.ID, "❌ Неверные данные")
		return
	}

	ctxzap.Info(ctx, "callback query received",
		zap.String("action", callbackData.Action),
		zap.String("value", callbackData.Value),
		zap.Int64("user_id", query.From.ID),
	)

	userID := query.From.ID
	chatID := query.Message.Chat.ID

	msg := &handlers.Message{
		ChatID:       chatID,
		UserID:       userID,
		MessageID:    query.Message.MessageID,
		CallbackData: query.Data,
		CallbackID:   query.ID,
	}

	// Fill-flow callbacks read StateData right away; preload it so the
	// handler hits the request-scoped cache instead of a second query.
	switch callbackData.Action {
	case "opt", "chk", "skip", "confirm":
		stateData, err := b.stateManager.GetStateData(ctx, userID)
		if err == nil {
			ctx = state.ContextWithStateData(ctx, stateData)
		}
	}

	handler, exists := b.handlers[handlers.HandlerStateCallback]
	if !exists {
		ctxzap.Warn(ctx, "callback handler not registered")
		b.answerCallback(query.ID, "❌ Обработчик не найден")
		return
	}

	// Answer immediately so Telegram does not treat the query as stale;
	// the actual work runs asynchronously and reports into the chat.
	b.answerCallback(query.ID, "⏳ Обрабатываю запрос...")

	b.wg.Add(1)
	go func(ctx context.Context, m *handlers.Message, uid, cid int64) {
		defer b.wg.Done()
		if err := handler.Handle(ctx, m); err != nil {
			ctxzap.Error(ctx, "callback handler error",
				zap.Error(err),
				zap.Int64("user_id", uid),
			)
			b.sendError(cid, render.ErrGeneric)
		}
	}(ctx, msg, userID, chatID)
}

// sendMessage sends a message to chat
func (b *Bot) sendMessage(chatID int64, text string, replyMarkup interface{}) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if replyMarkup != nil {
		msg.ReplyMarkup = replyMarkup
	}
	return b.api.Send(msg)
}

// sendError sends an error message
func (b *Bot) sendError(chatID int64, text string) {
	if _, err := b.sendMessage(chatID, text, nil); err != nil {
		b.logger.Error("failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// answerCallback answers a callback query
func (b *Bot) answerCallback(callbackID string, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Error("failed to answer callback",
			zap.Error(err),
			zap.String("callback_id", callbackID),
		)
	}
}

// RegisterHandler registers a handler for a state
func (b *Bot) RegisterHandler(handler handlers.Handler) {
	state := handler.GetState()

	if !handlers.IsValidState(state) {
		b.logger.Fatal("invalid handler state",
			zap.String("state", state),
		)
	}

	b.handlers[state] = handler
	b.logger.Info("handler registered",
		zap.String("state", state),
	)
}

// GetAPI returns the bot API instance (for handlers)
func (b *Bot) GetAPI() *tgbotapi.BotAPI {
	return b.api
}

// GetStateManager returns the state manager (for handlers)
func (b *Bot) GetStateManager() *state.Manager {
	return b.stateManager
}

// GetKeyboard returns the keyboard builder (for handlers)
func (b *Bot) GetKeyboard() *keyboard.Builder {
	return b.keyboard
}

// GetFormUsecase returns the form usecase (for handlers)
func (b *Bot) GetFormUsecase() handlers.FormUsecase {
	return b.formUC
}

// GetSubmissionUsecase returns the submission usecase (for handlers)
func (b *Bot) GetSubmissionUsecase() handlers.SubmissionUsecase {
	return b.submissionUC
}
