package repository

import (
	"context"

	"github.com/Kerhoff/RemindBot/internal/models"
)

// ReminderRepository defines the durable collection of pending reminders.
// Implementations treat every load-modify-save sequence as one critical section.
type ReminderRepository interface {
	// Load returns the whole collection. A missing backing resource yields an
	// empty collection.
	Load(ctx context.Context) ([]*models.Reminder, error)
	// Save replaces the whole collection.
	Save(ctx context.Context, reminders []*models.Reminder) error
	// Add appends a reminder, replacing any stored reminder with the same ID.
	Add(ctx context.Context, reminder *models.Reminder) error
	// Remove deletes the reminder with the given ID. Removing an unknown ID is a no-op.
	Remove(ctx context.Context, id string) error
}
