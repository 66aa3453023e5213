package dateparse

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday
var base = time.Date(2030, 3, 6, 12, 0, 0, 0, time.Local)

func dateOf(t time.Time) string {
	return t.Format("2006-01-02")
}

func TestParse_NextMonday(t *testing.T) {
	matches, err := New().Parse("exam fees due next monday", base)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	assert.Equal(t, "2030-03-11", dateOf(matches[0].Time))
	assert.Contains(t, strings.ToLower(matches[0].Text), "monday")
}

func TestParse_Tomorrow(t *testing.T) {
	matches, err := New().Parse("tomorrow dentist", base)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	assert.Equal(t, "2030-03-07", dateOf(matches[0].Time))
	assert.Equal(t, "tomorrow", strings.ToLower(matches[0].Text))
	assert.Equal(t, 0, matches[0].Index)
}

func TestParse_NoDate(t *testing.T) {
	matches, err := New().Parse("buy some milk", base)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
