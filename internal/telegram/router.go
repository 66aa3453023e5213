package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Replies sent by the router itself
const (
	ErrorReply   = "❌ Sorry, something went wrong while processing your command. Please try again."
	UnknownReply = "❓ Unknown command. Use /help to see available commands."
)

// Responder sends replies to a chat. *Bot implements it.
type Responder interface {
	SendMessage(chatID int64, text string) error
	SendMarkdown(chatID int64, text string) error
}

// Router handles message routing and command parsing
type Router struct {
	logger   *logrus.Logger
	handlers map[string]CommandHandler
}

// CommandHandler defines the interface for command handlers
type CommandHandler interface {
	Handle(r Responder, message *tgbotapi.Message, args []string) error
}

// NewRouter creates a new message router
func NewRouter(logger *logrus.Logger) *Router {
	return &Router{
		logger:   logger,
		handlers: make(map[string]CommandHandler),
	}
}

// RegisterCommand registers a command handler
func (r *Router) RegisterCommand(command string, handler CommandHandler) {
	r.handlers[command] = handler
	r.logger.Debugf("Registered command: %s", command)
}

// HandleMessage dispatches a command message to its handler. A failing or
// panicking handler is logged and answered with a generic apology.
func (r *Router) HandleMessage(resp Responder, message *tgbotapi.Message) {
	// Only process text commands
	if message.Text == "" || !message.IsCommand() {
		return
	}

	fields := logrus.Fields{
		"chat_id":    message.Chat.ID,
		"message_id": message.MessageID,
	}
	if message.From != nil {
		fields["user_id"] = message.From.ID
		fields["username"] = message.From.UserName
	}

	command := message.Command()
	fields["command"] = command
	log := r.logger.WithFields(fields)
	log.Info("Received command")

	handler, exists := r.handlers[command]
	if !exists {
		log.Warn("Unknown command")
		r.reply(resp, message.Chat.ID, UnknownReply)
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Errorf("Panic in command handler: %v", rec)
			r.reply(resp, message.Chat.ID, ErrorReply)
		}
	}()

	args := strings.Fields(message.CommandArguments())
	if err := handler.Handle(resp, message, args); err != nil {
		log.WithError(err).Error("Command handler failed")
		r.reply(resp, message.Chat.ID, ErrorReply)
	}
}

func (r *Router) reply(resp Responder, chatID int64, text string) {
	if err := resp.SendMessage(chatID, text); err != nil {
		r.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to send reply")
	}
}
