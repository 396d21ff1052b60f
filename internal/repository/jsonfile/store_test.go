package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pathmentor/learning-app/internal/domain"
	"pathmentor/learning-app/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func pathFor(topic string) *domain.LearningPath {
	now := time.Now().UTC()
	return &domain.LearningPath{
		Topic: topic,
		StudyPlan: domain.StudyPlan{
			Topic:      topic,
			TotalWeeks: 1,
			Weeks: []domain.WeeklyUnit{
				{WeekNumber: 1, Title: "Intro", Objectives: []string{"Start"}, Resources: []domain.LearningResource{}, Deadline: now.Add(7 * 24 * time.Hour)},
			},
		},
		ProgressUpdates: []domain.ProgressUpdate{},
		Recommendations: []string{},
		CreatedAt:       now,
	}
}

func TestOpen_MissingFilesStartEmpty(t *testing.T) {
	store, err := Open(t.TempDir(), false, quietLogger())
	require.NoError(t, err)

	paths, err := store.Paths().GetAllByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, paths)

	_, err = store.Users().GetByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOpen_CorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte("{not json"), 0o644))

	store, err := Open(dir, false, quietLogger())
	require.NoError(t, err)

	_, err = store.Users().GetByUsername(context.Background(), "anyone")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPathStore_UpsertPreservesPosition(t *testing.T) {
	store, err := Open(t.TempDir(), false, quietLogger())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Paths().Save(ctx, "user-1", pathFor("Go")))
	require.NoError(t, store.Paths().Save(ctx, "user-1", pathFor("SQL")))

	// Replacing "Go" must keep it first in the list, not move it to the end.
	replacement := pathFor("Go")
	replacement.Goals = "rewritten"
	require.NoError(t, store.Paths().Save(ctx, "user-1", replacement))

	all, err := store.Paths().GetAllByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Go", all[0].Topic)
	assert.Equal(t, "rewritten", all[0].Goals)
	assert.Equal(t, "SQL", all[1].Topic)
}

func TestPathStore_GetByTopicIsCaseInsensitive(t *testing.T) {
	store, err := Open(t.TempDir(), false, quietLogger())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Paths().Save(ctx, "user-1", pathFor("Machine Learning")))

	got, err := store.Paths().GetByTopic(ctx, "user-1", "machine learning")
	require.NoError(t, err)
	assert.Equal(t, "Machine Learning", got.Topic)

	// Exact-topic upsert: a differently-cased save creates a second entry.
	require.NoError(t, store.Paths().Save(ctx, "user-1", pathFor("MACHINE LEARNING")))
	all, err := store.Paths().GetAllByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStore_ReloadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(dir, false, quietLogger())
	require.NoError(t, err)

	require.NoError(t, store.Users().Create(ctx, &domain.User{ID: "u1", Username: "marat", Email: "marat@example.com", PasswordHash: "bcrypt-hash"}))
	require.NoError(t, store.Paths().Save(ctx, "u1", pathFor("Go")))
	require.NoError(t, store.Progress().Save(ctx, "u1", "Go", &domain.ProgressUpdate{
		Topic:         "Go",
		CurrentStatus: "started",
		Timestamp:     time.Now().UTC(),
	}))

	reloaded, err := Open(dir, false, quietLogger())
	require.NoError(t, err)

	user, err := reloaded.Users().GetByUsername(ctx, "marat")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	// The hash must survive the round trip even though the domain type
	// hides it from JSON.
	assert.Equal(t, "bcrypt-hash", user.PasswordHash)

	path, err := reloaded.Paths().GetByTopic(ctx, "u1", "Go")
	require.NoError(t, err)
	assert.Equal(t, 1, path.StudyPlan.TotalWeeks)

	progress, err := reloaded.Progress().GetAllByUser(ctx, "u1")
	require.NoError(t, err)
	require.Contains(t, progress, "Go")
	assert.Equal(t, "started", progress["Go"].CurrentStatus)
}

func TestPathStore_ReadsAreIndependentSnapshots(t *testing.T) {
	store, err := Open(t.TempDir(), false, quietLogger())
	require.NoError(t, err)
	ctx := context.Background()

	saved := pathFor("Go")
	require.NoError(t, store.Paths().Save(ctx, "user-1", saved))

	// Mutating a returned path without saving must not touch the store.
	got, err := store.Paths().GetByTopic(ctx, "user-1", "Go")
	require.NoError(t, err)
	got.StudyPlan.Weeks[0].Completed = true
	got.StudyPlan.Weeks[0].Objectives[0] = "changed"
	got.Recommendations = append(got.Recommendations, "extra")

	again, err := store.Paths().GetByTopic(ctx, "user-1", "Go")
	require.NoError(t, err)
	assert.False(t, again.StudyPlan.Weeks[0].Completed)
	assert.Equal(t, "Start", again.StudyPlan.Weeks[0].Objectives[0])
	assert.Empty(t, again.Recommendations)

	// Same for list reads and for the value handed to Save.
	all, err := store.Paths().GetAllByUser(ctx, "user-1")
	require.NoError(t, err)
	all[0].StudyPlan.Weeks[0].Completed = true
	saved.StudyPlan.Weeks[0].Title = "renamed"

	again, err = store.Paths().GetByTopic(ctx, "user-1", "Go")
	require.NoError(t, err)
	assert.False(t, again.StudyPlan.Weeks[0].Completed)
	assert.Equal(t, "Intro", again.StudyPlan.Weeks[0].Title)
}

func TestProgressStore_ReadsAreIndependentSnapshots(t *testing.T) {
	store, err := Open(t.TempDir(), false, quietLogger())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Progress().Save(ctx, "u1", "Go", &domain.ProgressUpdate{
		Topic:          "Go",
		CompletedItems: []string{"intro"},
		CurrentStatus:  "started",
	}))

	got, err := store.Progress().GetByTopic(ctx, "u1", "Go")
	require.NoError(t, err)
	got.CompletedItems[0] = "changed"

	again, err := store.Progress().GetByTopic(ctx, "u1", "Go")
	require.NoError(t, err)
	assert.Equal(t, []string{"intro"}, again.CompletedItems)
}

// blockFile forces the next flush of name to fail by putting a directory
// where the data file would be written.
func blockFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.Mkdir(filepath.Join(dir, name), 0o755))
}

func TestStore_FailedFlushRollsBackMemory(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir, false, quietLogger())
	require.NoError(t, err)
	ctx := context.Background()

	blockFile(t, dir, "learning_paths.json")
	blockFile(t, dir, "users.json")
	blockFile(t, dir, "progress.json")

	err = store.Paths().Save(ctx, "u1", pathFor("Go"))
	assert.ErrorIs(t, err, repository.ErrWriteFailed)
	_, err = store.Paths().GetByTopic(ctx, "u1", "Go")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	all, err := store.Paths().GetAllByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, all)

	err = store.Users().Create(ctx, &domain.User{ID: "u1", Username: "marat", Email: "marat@example.com"})
	assert.ErrorIs(t, err, repository.ErrWriteFailed)
	_, err = store.Users().GetByUsername(ctx, "marat")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = store.Progress().Save(ctx, "u1", "Go", &domain.ProgressUpdate{Topic: "Go", CurrentStatus: "started"})
	assert.ErrorIs(t, err, repository.ErrWriteFailed)
	_, err = store.Progress().GetByTopic(ctx, "u1", "Go")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_FailedFlushRestoresPreviousEntry(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir, false, quietLogger())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Paths().Save(ctx, "u1", pathFor("Go")))

	require.NoError(t, os.Remove(filepath.Join(dir, "learning_paths.json")))
	blockFile(t, dir, "learning_paths.json")

	replacement := pathFor("Go")
	replacement.Goals = "rewritten"
	err = store.Paths().Save(ctx, "u1", replacement)
	assert.ErrorIs(t, err, repository.ErrWriteFailed)

	// The pre-failure path is still the one visible.
	got, err := store.Paths().GetByTopic(ctx, "u1", "Go")
	require.NoError(t, err)
	assert.Empty(t, got.Goals)
}

func TestStore_DegradedWritesKeepMemoryState(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir, true, quietLogger())
	require.NoError(t, err)
	ctx := context.Background()

	blockFile(t, dir, "learning_paths.json")

	require.NoError(t, store.Paths().Save(ctx, "u1", pathFor("Go")))
	got, err := store.Paths().GetByTopic(ctx, "u1", "Go")
	require.NoError(t, err)
	assert.Equal(t, "Go", got.Topic)
}

func TestProgressStore_KeepsLatestOnly(t *testing.T) {
	store, err := Open(t.TempDir(), false, quietLogger())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Progress().Save(ctx, "u1", "Go", &domain.ProgressUpdate{Topic: "Go", CurrentStatus: "first"}))
	require.NoError(t, store.Progress().Save(ctx, "u1", "Go", &domain.ProgressUpdate{Topic: "Go", CurrentStatus: "second"}))

	latest, err := store.Progress().GetByTopic(ctx, "u1", "Go")
	require.NoError(t, err)
	assert.Equal(t, "second", latest.CurrentStatus)

	all, err := store.Progress().GetAllByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUserStore_DuplicateDetection(t *testing.T) {
	store, err := Open(t.TempDir(), false, quietLogger())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Users().Create(ctx, &domain.User{ID: "u1", Username: "marat", Email: "marat@example.com"}))

	err = store.Users().Create(ctx, &domain.User{ID: "u2", Username: "marat", Email: "other@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	err = store.Users().Create(ctx, &domain.User{ID: "u3", Username: "other", Email: "marat@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}
