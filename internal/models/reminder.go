package models

import (
	"fmt"
	"time"
)

// Reminder represents a pending one-time notification for a chat
type Reminder struct {
	ID       string    `json:"id"`
	ChatID   string    `json:"chat_id"`
	Message  string    `json:"message"`
	RemindAt time.Time `json:"remind_at"`
	Subject  string    `json:"subject"`
	EventAt  time.Time `json:"event_at"`
}

// ReminderID derives the storage key of a reminder from its chat and fire time.
// Two reminders for the same chat firing in the same millisecond share an ID.
func ReminderID(chatID string, remindAt time.Time) string {
	return fmt.Sprintf("%s_%d", chatID, remindAt.UnixMilli())
}

// IsDue returns true if the reminder's fire time is not after now
func (r *Reminder) IsDue(now time.Time) bool {
	return !r.RemindAt.After(now)
}
