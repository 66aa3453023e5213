package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/RemindBot/internal/models"
	"github.com/Kerhoff/RemindBot/internal/repository"
)

// timestampLayout matches the ISO-8601 form written by earlier versions of the
// bot: UTC with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// record is the on-disk shape of a reminder. Field order is the serialized order.
type record struct {
	ID              string `json:"id"`
	ChatID          string `json:"chatId"`
	ReminderMessage string `json:"reminderMessage"`
	RemindAt        string `json:"remindAt"`
	OriginalSubject string `json:"originalSubject"`
	OriginalDate    string `json:"originalDate"`
}

type reminderRepository struct {
	path   string
	logger *logrus.Logger
	mu     sync.Mutex
}

// NewReminderRepository creates a reminder repository backed by a single JSON file
func NewReminderRepository(path string, logger *logrus.Logger) repository.ReminderRepository {
	return &reminderRepository{path: path, logger: logger}
}

func (r *reminderRepository) Load(_ context.Context) ([]*models.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loadLocked()
}

func (r *reminderRepository) Save(_ context.Context, reminders []*models.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.saveLocked(reminders)
}

func (r *reminderRepository) Add(_ context.Context, reminder *models.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reminders, err := r.loadLocked()
	if err != nil {
		return err
	}

	kept := reminders[:0]
	for _, existing := range reminders {
		if existing.ID != reminder.ID {
			kept = append(kept, existing)
		}
	}

	return r.saveLocked(append(kept, reminder))
}

func (r *reminderRepository) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reminders, err := r.loadLocked()
	if err != nil {
		return err
	}

	kept := reminders[:0]
	for _, existing := range reminders {
		if existing.ID != id {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(reminders) {
		return nil
	}

	return r.saveLocked(kept)
}

// loadLocked reads the collection. Caller must hold r.mu.
func (r *reminderRepository) loadLocked() ([]*models.Reminder, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		r.logger.WithField("path", r.path).Info("Reminder store not found, creating an empty one")
		if err := r.saveLocked(nil); err != nil {
			return nil, err
		}
		return []*models.Reminder{}, nil
	}
	if err != nil {
		r.logger.WithError(err).WithField("path", r.path).Error("Failed to read reminder store")
		return []*models.Reminder{}, nil
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		r.logger.WithError(err).WithField("path", r.path).Error("Reminder store is corrupt, treating it as empty")
		return []*models.Reminder{}, nil
	}

	reminders := make([]*models.Reminder, 0, len(records))
	for _, rec := range records {
		reminder, err := rec.toModel()
		if err != nil {
			r.logger.WithError(err).WithField("reminder_id", rec.ID).Warn("Skipping unreadable reminder")
			continue
		}
		reminders = append(reminders, reminder)
	}

	return reminders, nil
}

// saveLocked replaces the file contents. Caller must hold r.mu.
func (r *reminderRepository) saveLocked(reminders []*models.Reminder) error {
	records := make([]record, 0, len(reminders))
	for _, reminder := range reminders {
		records = append(records, fromModel(reminder))
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal reminders: %w", err)
	}

	if err := atomicWrite(r.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write reminder store: %w", err)
	}

	return nil
}

func fromModel(reminder *models.Reminder) record {
	return record{
		ID:              reminder.ID,
		ChatID:          reminder.ChatID,
		ReminderMessage: reminder.Message,
		RemindAt:        reminder.RemindAt.UTC().Format(timestampLayout),
		OriginalSubject: reminder.Subject,
		OriginalDate:    reminder.EventAt.UTC().Format(timestampLayout),
	}
}

func (rec record) toModel() (*models.Reminder, error) {
	remindAt, err := time.Parse(time.RFC3339Nano, rec.RemindAt)
	if err != nil {
		return nil, fmt.Errorf("invalid remindAt %q: %w", rec.RemindAt, err)
	}
	eventAt, err := time.Parse(time.RFC3339Nano, rec.OriginalDate)
	if err != nil {
		return nil, fmt.Errorf("invalid originalDate %q: %w", rec.OriginalDate, err)
	}

	return &models.Reminder{
		ID:       rec.ID,
		ChatID:   rec.ChatID,
		Message:  rec.ReminderMessage,
		RemindAt: remindAt.Local(),
		Subject:  rec.OriginalSubject,
		EventAt:  eventAt.Local(),
	}, nil
}

// atomicWrite writes data to path via a temporary file and a rename so a crash
// never leaves a truncated store behind.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
