package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Option customises a logger built by New
type Option func(*logrus.Logger)

// WithOutput redirects log output, e.g. to io.Discard in tests
func WithOutput(w io.Writer) Option {
	return func(l *logrus.Logger) {
		l.SetOutput(w)
	}
}

// WithFormat selects the "json" formatter; anything else keeps the text one
func WithFormat(format string) Option {
	return func(l *logrus.Logger) {
		if format == "json" {
			l.SetFormatter(&logrus.JSONFormatter{})
		}
	}
}

// New creates a logger at the given level. Unknown levels fall back to info.
func New(level string, opts ...Option) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stdout)

	for _, opt := range opts {
		opt(logger)
	}

	return logger
}

// WithReminder returns an entry tagged with a reminder's chat and id
func WithReminder(logger *logrus.Logger, chatID, reminderID string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"chat_id":     chatID,
		"reminder_id": reminderID,
	})
}
