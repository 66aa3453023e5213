package file

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/RemindBot/internal/models"
)

func newTestRepo(t *testing.T) (*reminderRepository, string) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	path := filepath.Join(t.TempDir(), "reminders.json")
	return NewReminderRepository(path, logger).(*reminderRepository), path
}

func newTestReminder(chatID string, remindAt time.Time, subject string) *models.Reminder {
	return &models.Reminder{
		ID:       models.ReminderID(chatID, remindAt),
		ChatID:   chatID,
		Message:  "Reminder: " + subject,
		RemindAt: remindAt,
		Subject:  subject,
		EventAt:  remindAt.AddDate(0, 0, 1),
	}
}

func TestLoad_MissingFileCreatesEmptyStore(t *testing.T) {
	repo, path := newTestRepo(t)

	reminders, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reminders)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestLoad_CorruptFileIsTreatedAsEmpty(t *testing.T) {
	repo, path := newTestRepo(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	reminders, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reminders)
}

func TestLoad_SkipsRecordWithBadTimestamp(t *testing.T) {
	repo, path := newTestRepo(t)
	content := `[
  {"id":"1_1","chatId":"1","reminderMessage":"m","remindAt":"yesterday","originalSubject":"s","originalDate":"2030-01-02T09:00:00.000Z"},
  {"id":"1_2","chatId":"1","reminderMessage":"m","remindAt":"2030-01-01T09:00:00.000Z","originalSubject":"s","originalDate":"2030-01-02T09:00:00.000Z"}
]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reminders, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, "1_2", reminders[0].ID)
}

func TestLoad_ReadsLegacyLayout(t *testing.T) {
	repo, path := newTestRepo(t)
	content := `[{"id":"-100_1893488400000","chatId":"-100","reminderMessage":"Reminder!","remindAt":"2030-01-01T09:00:00.000Z","originalSubject":"exam fees due","originalDate":"2030-01-02T12:30:00.000Z"}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reminders, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, reminders, 1)

	r := reminders[0]
	assert.Equal(t, "-100", r.ChatID)
	assert.Equal(t, "Reminder!", r.Message)
	assert.Equal(t, "exam fees due", r.Subject)
	assert.True(t, r.RemindAt.Equal(time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)))
	assert.True(t, r.EventAt.Equal(time.Date(2030, 1, 2, 12, 30, 0, 0, time.UTC)))
}

func TestSaveLoad_RoundTripIsStable(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2030, 3, 4, 9, 0, 0, 0, time.Local)

	require.NoError(t, repo.Save(ctx, []*models.Reminder{
		newTestReminder("10", base, "dentist"),
		newTestReminder("20", base.AddDate(0, 0, 2), "rent"),
	}))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, loaded))

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	reloaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, reloaded, 2)
	for i := range loaded {
		assert.Equal(t, loaded[i].ID, reloaded[i].ID)
		assert.Equal(t, loaded[i].Message, reloaded[i].Message)
		assert.True(t, loaded[i].RemindAt.Equal(reloaded[i].RemindAt))
		assert.True(t, loaded[i].EventAt.Equal(reloaded[i].EventAt))
	}
}

func TestSave_WritesOnDiskFieldNames(t *testing.T) {
	repo, path := newTestRepo(t)
	remindAt := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(context.Background(), []*models.Reminder{newTestReminder("7", remindAt, "x")}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, field := range []string{`"id"`, `"chatId"`, `"reminderMessage"`, `"remindAt": "2030-01-01T09:00:00.000Z"`, `"originalSubject"`, `"originalDate"`} {
		assert.Contains(t, string(data), field)
	}
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file must be renamed away")
}

func TestAddRemove(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2030, 5, 6, 9, 0, 0, 0, time.Local)

	a := newTestReminder("1", base, "a")
	b := newTestReminder("1", base.Add(time.Hour), "b")
	require.NoError(t, repo.Add(ctx, a))
	require.NoError(t, repo.Add(ctx, b))

	reminders, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, reminders, 2)

	require.NoError(t, repo.Remove(ctx, a.ID))
	reminders, err = repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, b.ID, reminders[0].ID)

	// removing again is a no-op
	require.NoError(t, repo.Remove(ctx, a.ID))
	require.NoError(t, repo.Remove(ctx, "missing"))
	reminders, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, reminders, 1)
}

func TestAdd_SameIDOverwrites(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	at := time.Date(2030, 5, 6, 9, 0, 0, 0, time.Local)

	require.NoError(t, repo.Add(ctx, newTestReminder("1", at, "first")))
	require.NoError(t, repo.Add(ctx, newTestReminder("1", at, "second")))

	reminders, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, "second", reminders[0].Subject)
}

func TestAdd_ConcurrentWritesAreNotLost(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2030, 1, 1, 9, 0, 0, 0, time.Local)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.Add(ctx, newTestReminder("1", base.Add(time.Duration(i)*time.Minute), "s")))
		}(i)
	}
	wg.Wait()

	reminders, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, reminders, n)
}
