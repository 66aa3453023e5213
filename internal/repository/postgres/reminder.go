package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Kerhoff/RemindBot/internal/models"
	"github.com/Kerhoff/RemindBot/internal/repository"
)

type reminderRepository struct {
	db *sql.DB
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(db *sql.DB) repository.ReminderRepository {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) Load(ctx context.Context) ([]*models.Reminder, error) {
	query := `
		SELECT id, chat_id, message, remind_at, subject, event_at
		FROM reminders
		ORDER BY remind_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	reminders := []*models.Reminder{}
	for rows.Next() {
		reminder := &models.Reminder{}
		if err := rows.Scan(
			&reminder.ID,
			&reminder.ChatID,
			&reminder.Message,
			&reminder.RemindAt,
			&reminder.Subject,
			&reminder.EventAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, reminder)
	}

	return reminders, rows.Err()
}

func (r *reminderRepository) Save(ctx context.Context, reminders []*models.Reminder) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM reminders`); err != nil {
		return fmt.Errorf("failed to clear reminders: %w", err)
	}

	for _, reminder := range reminders {
		if err := upsert(ctx, tx, reminder); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reminders: %w", err)
	}

	return nil
}

func (r *reminderRepository) Add(ctx context.Context, reminder *models.Reminder) error {
	return upsert(ctx, r.db, reminder)
}

func (r *reminderRepository) Remove(ctx context.Context, id string) error {
	query := `DELETE FROM reminders WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}

	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, reminder *models.Reminder) error {
	query := `
		INSERT INTO reminders (id, chat_id, message, remind_at, subject, event_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET chat_id = EXCLUDED.chat_id,
			message = EXCLUDED.message,
			remind_at = EXCLUDED.remind_at,
			subject = EXCLUDED.subject,
			event_at = EXCLUDED.event_at`

	_, err := db.ExecContext(ctx, query,
		reminder.ID,
		reminder.ChatID,
		reminder.Message,
		reminder.RemindAt,
		reminder.Subject,
		reminder.EventAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store reminder %s: %w", reminder.ID, err)
	}

	return nil
}
