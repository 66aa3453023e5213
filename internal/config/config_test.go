package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TELEGRAM_TOKEN", "LOG_LEVEL", "LOG_FORMAT", "PORT", "BOT_TRIGGER",
		"STORE_DRIVER", "STORE_PATH", "DATABASE_URL", "MIGRATIONS_PATH",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "token")

	cfg, err := fromEnv()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "remind", cfg.Trigger)
	assert.Equal(t, StoreDriverFile, cfg.StoreDriver)
	assert.Equal(t, "reminders.json", cfg.StorePath)
	assert.Equal(t, "migrations", cfg.MigrationsPath)
}

func TestFromEnv_TriggerSlashIsStripped(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("BOT_TRIGGER", "/remindme")

	cfg, err := fromEnv()
	require.NoError(t, err)
	assert.Equal(t, "remindme", cfg.Trigger)
}

func TestFromEnv_ReportsEveryProblem(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "postgres")

	_, err := fromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_TOKEN")
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestFromEnv_UnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("STORE_DRIVER", "redis")

	_, err := fromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}

func TestFromEnv_LogFormat(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := fromEnv()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)

	t.Setenv("LOG_FORMAT", "xml")
	_, err = fromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}
