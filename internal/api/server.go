package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/RemindBot/internal/models"
)

// ReminderLister is the read side of the reminder service
type ReminderLister interface {
	ListReminders(ctx context.Context, chatID string) ([]*models.Reminder, error)
}

// Server exposes health, metrics and a read-only reminder listing over HTTP.
type Server struct {
	reminders ReminderLister
	ready     func() bool
	gatherer  prometheus.Gatherer
	logger    *logrus.Logger
	mux       *http.ServeMux
}

// NewServer creates a Server, registers all routes, and returns it.
// ready reports whether the chat gateway is connected.
func NewServer(reminders ReminderLister, ready func() bool, gatherer prometheus.Gatherer, logger *logrus.Logger) *Server {
	s := &Server{
		reminders: reminders,
		ready:     ready,
		gatherer:  gatherer,
		logger:    logger,
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	s.mux.HandleFunc("GET /api/reminders", s.handleGetReminders)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// requireChatID reads the chat_id query parameter. It writes an error
// response when the parameter is absent or not a Telegram chat id.
func (s *Server) requireChatID(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := r.URL.Query().Get("chat_id")
	if raw == "" {
		s.respondError(w, http.StatusBadRequest, "chat_id query parameter is required")
		return "", false
	}
	if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
		s.respondError(w, http.StatusBadRequest, "chat_id must be an integer")
		return "", false
	}
	return raw, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil && !s.ready() {
		s.respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetReminders(w http.ResponseWriter, r *http.Request) {
	chatID, ok := s.requireChatID(w, r)
	if !ok {
		return
	}

	reminders, err := s.reminders.ListReminders(r.Context(), chatID)
	if err != nil {
		s.logger.WithError(err).WithField("chat_id", chatID).Error("failed to list reminders")
		s.respondError(w, http.StatusInternalServerError, "failed to list reminders")
		return
	}
	if reminders == nil {
		reminders = []*models.Reminder{}
	}

	s.respondJSON(w, http.StatusOK, reminders)
}
