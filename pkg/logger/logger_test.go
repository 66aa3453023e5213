package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Level(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, New("debug").GetLevel())
	assert.Equal(t, logrus.InfoLevel, New("loud").GetLevel())
}

func TestNew_JSONWithReminderFields(t *testing.T) {
	var buf bytes.Buffer
	l := New("info", WithOutput(&buf), WithFormat("json"))

	WithReminder(l, "-1001", "-1001_42").Info("fired")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "fired", entry["msg"])
	assert.Equal(t, "-1001", entry["chat_id"])
	assert.Equal(t, "-1001_42", entry["reminder_id"])
}
