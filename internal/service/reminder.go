package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/RemindBot/internal/metrics"
	"github.com/Kerhoff/RemindBot/internal/models"
	"github.com/Kerhoff/RemindBot/internal/repository"
	"github.com/Kerhoff/RemindBot/internal/scheduler"
	"github.com/Kerhoff/RemindBot/pkg/logger"
)

// reminderHour is the local hour of day at which reminders fire
const reminderHour = 9

// ErrTooSoon is returned when a reminder's fire time is not in the future
var ErrTooSoon = errors.New("reminder fire time is not in the future")

// Sender delivers a notification to a chat
type Sender interface {
	Send(ctx context.Context, chatID string, text string) error
}

// JobScheduler owns the live one-shot jobs. *scheduler.Scheduler implements it.
type JobScheduler interface {
	Start(fire scheduler.FireFunc)
	Stop() context.Context
	Schedule(job scheduler.Job)
	Cancel(id string) bool
	Len() int
}

// ReminderService is the only component that creates or destroys reminders.
// It keeps the store and the scheduler consistent: every stored reminder has a
// live job and every live job has a stored reminder.
type ReminderService struct {
	store   repository.ReminderRepository
	sched   JobScheduler
	sender  Sender
	metrics *metrics.Metrics
	logger  *logrus.Logger
	now     func() time.Time

	// mu serialises every store mutation made by the service: create, fire
	// (send + remove) and reconcile.
	mu sync.Mutex
}

// NewReminderService creates a ReminderService. The scheduler is started by Start.
func NewReminderService(store repository.ReminderRepository, sched JobScheduler, sender Sender,
	m *metrics.Metrics, logger *logrus.Logger) *ReminderService {
	return &ReminderService{
		store:   store,
		sched:   sched,
		sender:  sender,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Start starts dispatching due reminders
func (s *ReminderService) Start() {
	s.sched.Start(s.onFire)
}

// Stop stops dispatching; the returned context is done once in-flight
// notifications have finished.
func (s *ReminderService) Stop() context.Context {
	return s.sched.Stop()
}

// FireTime returns the instant a reminder for an event at eventAt fires:
// the previous calendar day at 09:00 local time.
func FireTime(eventAt time.Time) time.Time {
	day := eventAt.In(time.Local).AddDate(0, 0, -1)
	return time.Date(day.Year(), day.Month(), day.Day(), reminderHour, 0, 0, 0, time.Local)
}

// RenderMessage builds the notification text sent when a reminder fires
func RenderMessage(subject string) string {
	return fmt.Sprintf("⏰ Reminder! Tomorrow: %s", subject)
}

// CreateReminder stores and schedules a reminder for subject, one day before
// eventAt. It returns ErrTooSoon when that moment is not in the future.
func (s *ReminderService) CreateReminder(ctx context.Context, chatID, subject string, eventAt time.Time) (*models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remindAt := FireTime(eventAt)
	if !remindAt.After(s.now()) {
		s.metrics.IncRejected(metrics.ReasonTooSoon)
		return nil, ErrTooSoon
	}

	reminder := &models.Reminder{
		ID:       models.ReminderID(chatID, remindAt),
		ChatID:   chatID,
		Message:  RenderMessage(subject),
		RemindAt: remindAt,
		Subject:  subject,
		EventAt:  eventAt,
	}

	s.sched.Schedule(jobFor(reminder))
	if err := s.store.Add(ctx, reminder); err != nil {
		s.sched.Cancel(reminder.ID)
		return nil, fmt.Errorf("failed to store reminder: %w", err)
	}

	s.metrics.IncCreated()
	s.metrics.SetPending(s.sched.Len())
	logger.WithReminder(s.logger, chatID, reminder.ID).
		WithField("remind_at", remindAt.Format(time.RFC3339)).
		Info("Reminder created")

	return reminder, nil
}

// ReconcileOnStartup reschedules every stored reminder that is still ahead and
// drops the ones whose fire time has passed. It returns the number of
// reminders scheduled.
func (s *ReminderService) ReconcileOnStartup(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reminders, err := s.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load reminders: %w", err)
	}

	now := s.now()
	future := make([]*models.Reminder, 0, len(reminders))
	for _, r := range reminders {
		if r.IsDue(now) {
			logger.WithReminder(s.logger, r.ChatID, r.ID).
				WithField("remind_at", r.RemindAt.Format(time.RFC3339)).
				Warn("Dropping reminder that expired while the bot was offline")
			continue
		}
		future = append(future, r)
		s.sched.Schedule(jobFor(r))
	}

	if err := s.store.Save(ctx, future); err != nil {
		return len(future), fmt.Errorf("failed to save reconciled reminders: %w", err)
	}

	expired := len(reminders) - len(future)
	s.metrics.AddExpired(expired)
	s.metrics.SetPending(s.sched.Len())
	s.logger.WithFields(logrus.Fields{
		"scheduled": len(future),
		"expired":   expired,
	}).Info("Reminders reconciled")

	return len(future), nil
}

// ListReminders returns the chat's pending reminders ordered by fire time.
// The list is read from the store on every call.
func (s *ReminderService) ListReminders(ctx context.Context, chatID string) ([]*models.Reminder, error) {
	reminders, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reminders: %w", err)
	}

	result := make([]*models.Reminder, 0, len(reminders))
	for _, r := range reminders {
		if r.ChatID == chatID {
			result = append(result, r)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].RemindAt.Before(result[j].RemindAt)
	})

	return result, nil
}

// onFire delivers a due reminder and removes it from the store. Delivery is
// best effort: the reminder is removed whether or not the send succeeded.
func (s *ReminderService) onFire(job scheduler.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	log := logger.WithReminder(s.logger, job.ChatID, job.ID)

	s.metrics.IncFired()
	if err := s.sender.Send(ctx, job.ChatID, job.Message); err != nil {
		s.metrics.IncSendFailure()
		log.WithError(err).Error("Failed to send reminder")
	} else {
		log.Info("Reminder sent")
	}

	if err := s.store.Remove(ctx, job.ID); err != nil {
		log.WithError(err).Error("Failed to remove fired reminder")
	}
	s.metrics.SetPending(s.sched.Len())
}

func jobFor(r *models.Reminder) scheduler.Job {
	return scheduler.Job{
		ID:      r.ID,
		ChatID:  r.ChatID,
		Message: r.Message,
		FireAt:  r.RemindAt,
	}
}
