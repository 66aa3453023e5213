package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/RemindBot/internal/telegram"
)

// StartHandler handles the /start command
type StartHandler struct {
	trigger string
	logger  *logrus.Logger
}

// NewStartHandler creates a new start command handler
func NewStartHandler(trigger string, logger *logrus.Logger) *StartHandler {
	return &StartHandler{
		trigger: trigger,
		logger:  logger,
	}
}

// Handle processes the /start command
func (h *StartHandler) Handle(r telegram.Responder, message *tgbotapi.Message, args []string) error {
	welcomeText := fmt.Sprintf(`🎯 *Welcome to RemindBot!*

Tell me about an upcoming event and I'll remind the group the day before at 09:00.

• /%[1]s next friday rent is due
• /%[1]s list reminders
• /help for more`, h.trigger)

	if err := r.SendMarkdown(message.Chat.ID, welcomeText); err != nil {
		return fmt.Errorf("failed to send start message: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
	}).Info("Sent start message")

	return nil
}
