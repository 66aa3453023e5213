// Package scheduler keeps the in-memory set of pending one-shot reminder jobs.
// Jobs are plain data; every due job is handed to a single FireFunc.
// Nothing here is persisted: a restart drops every job.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is a pending notification bound to a reminder ID
type Job struct {
	ID      string
	ChatID  string
	Message string
	FireAt  time.Time
}

// FireFunc receives a job once its fire time has been reached
type FireFunc func(Job)

// registration ties a job to its cron entry. A pointer identity check tells a
// firing entry apart from one that replaced it.
type registration struct {
	job     Job
	entryID cron.EntryID
}

// Scheduler runs one-shot jobs on top of robfig/cron
type Scheduler struct {
	cron     *cron.Cron
	fire     FireFunc
	logger   *logrus.Logger
	mu       sync.Mutex
	entries  map[string]*registration
	stopOnce sync.Once
}

// New creates a stopped scheduler
func New(logger *logrus.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.Local),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		logger:  logger,
		entries: make(map[string]*registration),
	}
}

// Start starts dispatching due jobs to fire
func (s *Scheduler) Start(fire FireFunc) {
	s.mu.Lock()
	s.fire = fire
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("Reminder scheduler started")
}

// Stop stops dispatching. The returned context is done once running jobs have
// finished. Safe to call multiple times.
func (s *Scheduler) Stop() context.Context {
	ctx := s.cron.Stop()
	s.stopOnce.Do(func() {
		s.logger.Info("Reminder scheduler stopped")
	})
	return ctx
}

// Schedule registers job to fire at job.FireAt. A pending job with the same ID
// is replaced. A job whose fire time has already passed never fires.
func (s *Scheduler) Schedule(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.entries[job.ID]; ok {
		s.cron.Remove(prev.entryID)
		delete(s.entries, job.ID)
		s.logger.WithField("reminder_id", job.ID).Debug("Replacing scheduled reminder")
	}

	reg := &registration{job: job}
	reg.entryID = s.cron.Schedule(once{at: job.FireAt}, cron.FuncJob(func() {
		s.run(reg)
	}))
	s.entries[job.ID] = reg

	s.logger.WithFields(logrus.Fields{
		"reminder_id": job.ID,
		"fire_at":     job.FireAt.Format(time.RFC3339),
	}).Debug("Scheduled reminder")
}

// Cancel drops the pending job with the given ID and reports whether one existed
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.entries[id]
	if !ok {
		return false
	}
	s.cron.Remove(reg.entryID)
	delete(s.entries, id)
	return true
}

// Pending returns the IDs of all live jobs, sorted
func (s *Scheduler) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of live jobs
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Scheduler) run(reg *registration) {
	s.mu.Lock()
	current, ok := s.entries[reg.job.ID]
	if !ok || current != reg {
		s.mu.Unlock()
		return
	}
	delete(s.entries, reg.job.ID)
	s.cron.Remove(reg.entryID)
	fire := s.fire
	s.mu.Unlock()

	fire(reg.job)
}

// once is a cron.Schedule that yields a single activation time
type once struct {
	at time.Time
}

// Next returns the activation time while it lies ahead of t, and the zero time
// afterwards, which cron treats as never.
func (o once) Next(t time.Time) time.Time {
	if t.Before(o.at) {
		return o.at
	}
	return time.Time{}
}

// cronLogger adapts logrus to cron.Logger
type cronLogger struct {
	logger *logrus.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(fields(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.WithError(err).WithFields(fields(keysAndValues)).Error("cron: " + msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			f[key] = keysAndValues[i+1]
		}
	}
	return f
}
