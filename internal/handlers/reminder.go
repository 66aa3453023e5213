package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/RemindBot/internal/command"
	"github.com/Kerhoff/RemindBot/internal/models"
	"github.com/Kerhoff/RemindBot/internal/service"
	"github.com/Kerhoff/RemindBot/internal/telegram"
)

// ReminderEngine is the part of the reminder service used by the chat commands
type ReminderEngine interface {
	CreateReminder(ctx context.Context, chatID, subject string, eventAt time.Time) (*models.Reminder, error)
	ListReminders(ctx context.Context, chatID string) ([]*models.Reminder, error)
}

// RemindHandler handles the trigger command: listing reminders or creating one
// from "<date expression> <subject>"
type RemindHandler struct {
	engine      ReminderEngine
	interpreter *command.Interpreter
	trigger     string
	logger      *logrus.Logger
	now         func() time.Time
}

func NewRemindHandler(engine ReminderEngine, interpreter *command.Interpreter, trigger string, logger *logrus.Logger) *RemindHandler {
	return &RemindHandler{
		engine:      engine,
		interpreter: interpreter,
		trigger:     trigger,
		logger:      logger,
		now:         time.Now,
	}
}

func (h *RemindHandler) Handle(r telegram.Responder, message *tgbotapi.Message, args []string) error {
	chatID := message.Chat.ID
	if !message.Chat.IsGroup() && !message.Chat.IsSuperGroup() {
		return r.SendMessage(chatID, "👥 Reminders work in group chats only. Add me to a group and try again.")
	}

	ctx := context.Background()
	key := strconv.FormatInt(chatID, 10)
	action := h.interpreter.Interpret(strings.Join(args, " "), h.now())

	h.logger.WithFields(logrus.Fields{
		"chat_id": chatID,
		"action":  action.Kind.String(),
	}).Debug("Interpreted reminder command")

	switch action.Kind {
	case command.List:
		reminders, err := h.engine.ListReminders(ctx, key)
		if err != nil {
			return fmt.Errorf("list reminders: %w", err)
		}
		return r.SendMessage(chatID, formatReminderList(reminders))

	case command.MissingSubject:
		return r.SendMessage(chatID, fmt.Sprintf(
			"🤔 I found the date but not what it is for.\nTry: /%s next monday exam fees due", h.trigger))

	case command.CreateReminder:
		reminder, err := h.engine.CreateReminder(ctx, key, action.Subject, action.EventAt)
		if errors.Is(err, service.ErrTooSoon) {
			return r.SendMessage(chatID, fmt.Sprintf(
				"⌛ %s is too soon: reminders go out at 09:00 the day before, and that moment has already passed.",
				action.EventAt.Format("Mon, 02 Jan 2006")))
		}
		if err != nil {
			return fmt.Errorf("create reminder: %w", err)
		}
		return r.SendMessage(chatID, fmt.Sprintf("✅ Got it! I'll remind this chat on %s about:\n📝 %s",
			reminder.RemindAt.Format("Mon, 02 Jan 2006 15:04"), reminder.Subject))

	default:
		return r.SendMessage(chatID, fmt.Sprintf(
			"❌ I couldn't find a date in that.\nTry: /%s next monday exam fees due\nor: /%s %s",
			h.trigger, h.trigger, command.ListKeyword))
	}
}

func formatReminderList(reminders []*models.Reminder) string {
	if len(reminders) == 0 {
		return "⏰ No pending reminders in this chat."
	}

	var sb strings.Builder
	sb.WriteString("⏰ Pending reminders:\n\n")
	for i, r := range reminders {
		sb.WriteString(fmt.Sprintf("%d. %s\n   📆 %s · 🔔 %s\n",
			i+1, r.Subject, r.EventAt.Format("Mon, 02 Jan 2006"), r.RemindAt.Format("Mon, 02 Jan 15:04")))
	}
	return sb.String()
}
