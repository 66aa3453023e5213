package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/RemindBot/internal/command"
	"github.com/Kerhoff/RemindBot/internal/telegram"
)

// HelpHandler handles the /help command
type HelpHandler struct {
	trigger string
	logger  *logrus.Logger
}

func NewHelpHandler(trigger string, logger *logrus.Logger) *HelpHandler {
	return &HelpHandler{trigger: trigger, logger: logger}
}

func (h *HelpHandler) Handle(r telegram.Responder, message *tgbotapi.Message, args []string) error {
	if err := r.SendMarkdown(message.Chat.ID, helpText(h.trigger)); err != nil {
		return fmt.Errorf("failed to send help message: %w", err)
	}

	h.logger.WithField("chat_id", message.Chat.ID).Info("Sent help message")
	return nil
}

func helpText(trigger string) string {
	return fmt.Sprintf(`📚 *RemindBot Help*

*Reminders* (group chats only):
• /%[1]s <date> <what> - remind this chat the day before at 09:00
• /%[1]s %[2]s - show pending reminders

*Examples:*
• /%[1]s next monday exam fees due
• /%[1]s march 3rd Anna's birthday
• /%[1]s tomorrow team dinner

_Reminders cannot be edited or cancelled once set._`, trigger, command.ListKeyword)
}
