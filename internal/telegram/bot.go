package telegram

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// Bot wraps the Telegram bot API and acts as the chat gateway
type Bot struct {
	api     *tgbotapi.BotAPI
	logger  *logrus.Logger
	router  *Router
	ready   *atomic.Bool
	mu      sync.Mutex
	onReady []func()
}

// NewBot creates a new Telegram bot instance
func NewBot(token string, logger *logrus.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.Infof("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:    api,
		logger: logger,
		router: NewRouter(logger),
		ready:  atomic.NewBool(false),
	}, nil
}

// OnReady registers fn to run once the bot is connected, before the first
// update is processed
func (b *Bot) OnReady(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onReady = append(b.onReady, fn)
}

// Ready reports whether the bot has finished connecting
func (b *Bot) Ready() bool {
	return b.ready.Load()
}

// Start starts the bot with long polling and blocks until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	// Delete webhook if exists and use polling
	_, err := b.api.Request(tgbotapi.DeleteWebhookConfig{})
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	if b.ready.CAS(false, true) {
		b.mu.Lock()
		hooks := b.onReady
		b.mu.Unlock()
		for _, fn := range hooks {
			fn()
		}
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Bot started with long polling")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Stopping bot...")
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			if update.Message != nil {
				go b.router.HandleMessage(b, update.Message)
			}
		}
	}
}

// Send delivers text to the chat identified by chatID
func (b *Bot) Send(_ context.Context, chatID string, text string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}
	return b.SendMessage(id, text)
}

// SendMessage sends a plain-text message to a chat
func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// SendMarkdown sends a Markdown-formatted message to a chat
func (b *Bot) SendMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// RegisterCommand registers a command handler on the router
func (b *Bot) RegisterCommand(command string, handler CommandHandler) {
	b.router.RegisterCommand(command, handler)
}
