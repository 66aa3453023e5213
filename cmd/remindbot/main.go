package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/RemindBot/internal/api"
	"github.com/Kerhoff/RemindBot/internal/command"
	"github.com/Kerhoff/RemindBot/internal/config"
	"github.com/Kerhoff/RemindBot/internal/dateparse"
	"github.com/Kerhoff/RemindBot/internal/handlers"
	"github.com/Kerhoff/RemindBot/internal/metrics"
	"github.com/Kerhoff/RemindBot/internal/repository"
	"github.com/Kerhoff/RemindBot/internal/repository/file"
	"github.com/Kerhoff/RemindBot/internal/repository/postgres"
	"github.com/Kerhoff/RemindBot/internal/scheduler"
	"github.com/Kerhoff/RemindBot/internal/service"
	"github.com/Kerhoff/RemindBot/internal/telegram"
	"github.com/Kerhoff/RemindBot/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel, logger.WithFormat(cfg.LogFormat))
	l.Info("Starting RemindBot...")

	store, closeStore, err := openStore(cfg, l)
	if err != nil {
		l.Fatalf("Failed to open reminder store: %v", err)
	}
	defer closeStore()

	// Telegram bot
	bot, err := telegram.NewBot(cfg.TelegramToken, l)
	if err != nil {
		l.Fatalf("Failed to create Telegram bot: %v", err)
	}

	// Reminder engine
	m := metrics.New(prometheus.DefaultRegisterer)
	svc := service.NewReminderService(store, scheduler.New(l), bot, m, l)
	svc.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reminders are rescheduled once the gateway is connected, before the
	// first chat command is handled.
	bot.OnReady(func() {
		if _, err := svc.ReconcileOnStartup(ctx); err != nil {
			l.WithError(err).Error("Failed to reconcile stored reminders")
		}
	})

	// Register command handlers
	interpreter := command.NewInterpreter(dateparse.New())
	bot.RegisterCommand(cfg.Trigger, handlers.NewRemindHandler(svc, interpreter, cfg.Trigger, l))
	bot.RegisterCommand("start", handlers.NewStartHandler(cfg.Trigger, l))
	bot.RegisterCommand("help", handlers.NewHelpHandler(cfg.Trigger, l))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		l.Info("Received shutdown signal...")
		cancel()
	}()

	// HTTP server for health, metrics and the reminder listing
	apiServer := api.NewServer(svc, bot.Ready, prometheus.DefaultGatherer, l)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		l.Infof("HTTP server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Errorf("HTTP server error: %v", err)
		}
	}()

	// Start Telegram bot polling
	go func() {
		if err := bot.Start(ctx); err != nil {
			l.Errorf("Bot error: %v", err)
			cancel()
		}
	}()

	l.Info("RemindBot started successfully")

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	l.Info("Shutting down HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		l.WithError(err).Warn("HTTP server shutdown failed")
	}

	l.Info("Waiting for in-flight reminders...")
	select {
	case <-svc.Stop().Done():
	case <-shutdownCtx.Done():
		l.Warn("Timed out waiting for in-flight reminders")
	}

	l.Info("RemindBot stopped")
}

// openStore returns the reminder store selected by STORE_DRIVER and a func
// releasing its resources.
func openStore(cfg *config.Config, l *logrus.Logger) (repository.ReminderRepository, func(), error) {
	if cfg.StoreDriver != config.StoreDriverPostgres {
		l.WithField("path", cfg.StorePath).Info("Using file reminder store")
		return file.NewReminderRepository(cfg.StorePath, l), func() {}, nil
	}

	db, err := config.NewDatabase(cfg.DatabaseURL, l)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(cfg.MigrationsPath); err != nil {
		db.Close()
		return nil, nil, err
	}

	l.Info("Using PostgreSQL reminder store")
	return postgres.NewReminderRepository(db.DB), func() { db.Close() }, nil
}
