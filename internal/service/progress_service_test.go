package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pathmentor/learning-app/internal/domain"
	"pathmentor/learning-app/internal/repository"
	"pathmentor/learning-app/internal/repository/jsonfile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *jsonfile.Store {
	t.Helper()
	store, err := jsonfile.Open(t.TempDir(), false, testLogger())
	require.NoError(t, err)
	return store
}

func seedRustPath(t *testing.T, pathRepo repository.LearningPathRepository, userID string) *domain.LearningPath {
	t.Helper()
	now := time.Now().UTC()
	path := &domain.LearningPath{
		UserID:          userID,
		Topic:           "Rust",
		ExperienceLevel: domain.LevelBeginner,
		EffortBand:      domain.EffortModerate,
		StudyPlan: domain.StudyPlan{
			Topic:      "Rust",
			TotalWeeks: 4,
			Weeks: []domain.WeeklyUnit{
				{WeekNumber: 1, Title: "Rust Basics", Objectives: []string{"Install the toolchain", "Write hello world"}, Resources: []domain.LearningResource{}, Deadline: now.Add(7 * 24 * time.Hour)},
				{WeekNumber: 2, Title: "Ownership", Objectives: []string{"Understand borrowing"}, Resources: []domain.LearningResource{}, Deadline: now.Add(14 * 24 * time.Hour)},
				{WeekNumber: 3, Title: "Traits and Generics", Objectives: []string{"Implement a trait"}, Resources: []domain.LearningResource{}, Deadline: now.Add(21 * 24 * time.Hour)},
				{WeekNumber: 4, Title: "Project Week", Objectives: []string{"Build a CLI with ownership in mind"}, Resources: []domain.LearningResource{}, Deadline: now.Add(28 * 24 * time.Hour)},
			},
		},
		ProgressUpdates: []domain.ProgressUpdate{},
		Recommendations: []string{},
		CreatedAt:       now,
		LastUpdated:     now,
	}
	require.NoError(t, pathRepo.Save(context.Background(), userID, path))
	return path
}

func TestRecord_UnknownTopic(t *testing.T) {
	store := openTestStore(t)
	tracker := NewProgressTracker(store.Paths(), store.Progress(), &fakeCurriculum{}, testLogger())

	_, err := tracker.Record(context.Background(), "user-1", ProgressUpdateInput{
		Topic:         "Haskell",
		CurrentStatus: "just started",
	})
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestRecord_ValidatesInput(t *testing.T) {
	store := openTestStore(t)
	tracker := NewProgressTracker(store.Paths(), store.Progress(), &fakeCurriculum{}, testLogger())

	_, err := tracker.Record(context.Background(), "user-1", ProgressUpdateInput{CurrentStatus: "ok"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = tracker.Record(context.Background(), "user-1", ProgressUpdateInput{Topic: "Rust"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	bad := 11
	_, err = tracker.Record(context.Background(), "user-1", ProgressUpdateInput{Topic: "Rust", CurrentStatus: "ok", MoodRating: &bad})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRecord_MarksAllMatchingUnits(t *testing.T) {
	store := openTestStore(t)
	seedRustPath(t, store.Paths(), "user-1")
	curriculum := &fakeCurriculum{recs: []string{"Read the Rustonomicon"}}
	tracker := NewProgressTracker(store.Paths(), store.Progress(), curriculum, testLogger())

	// "ownership" appears in week 2's title and in week 4's objectives;
	// matching is a case-insensitive substring check, so both must flip.
	path, err := tracker.Record(context.Background(), "user-1", ProgressUpdateInput{
		Topic:          "Rust",
		CompletedItems: []string{"OWNERSHIP"},
		CurrentStatus:  "working through the borrow checker",
	})
	require.NoError(t, err)

	assert.False(t, path.StudyPlan.Weeks[0].Completed)
	assert.True(t, path.StudyPlan.Weeks[1].Completed)
	assert.False(t, path.StudyPlan.Weeks[2].Completed)
	assert.True(t, path.StudyPlan.Weeks[3].Completed)
	assert.Equal(t, float64(100), path.StudyPlan.Weeks[1].ProgressPercent)
	assert.Equal(t, float64(50), path.StudyPlan.OverallProgress)
	assert.Equal(t, []string{"Read the Rustonomicon"}, path.Recommendations)

	// The persisted copy must match what was returned.
	stored, err := store.Paths().GetByTopic(context.Background(), "user-1", "Rust")
	require.NoError(t, err)
	assert.True(t, stored.StudyPlan.Weeks[1].Completed)
	assert.Len(t, stored.ProgressUpdates, 1)
	assert.Equal(t, []string{"Read the Rustonomicon"}, stored.Recommendations)
}

func TestRecord_CompletionIsMonotonic(t *testing.T) {
	store := openTestStore(t)
	seedRustPath(t, store.Paths(), "user-1")
	tracker := NewProgressTracker(store.Paths(), store.Progress(), &fakeCurriculum{recs: []string{}}, testLogger())

	_, err := tracker.Record(context.Background(), "user-1", ProgressUpdateInput{
		Topic:          "Rust",
		CompletedItems: []string{"rust basics"},
		CurrentStatus:  "done with week one",
	})
	require.NoError(t, err)

	// A later update without any matching items must not unmark week 1.
	path, err := tracker.Record(context.Background(), "user-1", ProgressUpdateInput{
		Topic:         "Rust",
		CurrentStatus: "slow week, nothing new finished",
	})
	require.NoError(t, err)

	assert.True(t, path.StudyPlan.Weeks[0].Completed)
	assert.Len(t, path.ProgressUpdates, 2)
	assert.Equal(t, "done with week one", path.ProgressUpdates[0].CurrentStatus)
	assert.Equal(t, "slow week, nothing new finished", path.ProgressUpdates[1].CurrentStatus)
}

func TestRecord_RecommendationFailureDoesNotLoseProgress(t *testing.T) {
	store := openTestStore(t)
	seedRustPath(t, store.Paths(), "user-1")
	curriculum := &fakeCurriculum{recsErr: errors.New("model unavailable")}
	tracker := NewProgressTracker(store.Paths(), store.Progress(), curriculum, testLogger())

	path, err := tracker.Record(context.Background(), "user-1", ProgressUpdateInput{
		Topic:          "Rust",
		CompletedItems: []string{"rust basics"},
		CurrentStatus:  "finished the basics",
	})
	assert.ErrorIs(t, err, ErrRecommendationFailed)
	require.NotNil(t, path)
	assert.True(t, path.StudyPlan.Weeks[0].Completed)

	// The write happened before the recommendation call.
	stored, err := store.Paths().GetByTopic(context.Background(), "user-1", "Rust")
	require.NoError(t, err)
	assert.True(t, stored.StudyPlan.Weeks[0].Completed)
	assert.Len(t, stored.ProgressUpdates, 1)
	assert.Empty(t, stored.Recommendations)

	latest, err := store.Progress().GetByTopic(context.Background(), "user-1", "Rust")
	require.NoError(t, err)
	assert.Equal(t, "finished the basics", latest.CurrentStatus)
}

func TestRecord_AnonymousFallback(t *testing.T) {
	store := openTestStore(t)
	seedRustPath(t, store.Paths(), domain.AnonymousUserID)
	tracker := NewProgressTracker(store.Paths(), store.Progress(), &fakeCurriculum{recs: []string{}}, testLogger())

	path, err := tracker.Record(context.Background(), "", ProgressUpdateInput{
		Topic:         "Rust",
		CurrentStatus: "started",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AnonymousUserID, path.UserID)
}

func TestWeeklyRecommendations(t *testing.T) {
	store := openTestStore(t)
	seedRustPath(t, store.Paths(), "user-1")
	curriculum := &fakeCurriculum{recs: []string{"Pair the reading with exercism"}}
	tracker := NewProgressTracker(store.Paths(), store.Progress(), curriculum, testLogger())

	recs, err := tracker.WeeklyRecommendations(context.Background(), "user-1", "Rust", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pair the reading with exercism"}, recs)

	// Unknown week yields an empty list without calling the provider again.
	calls := curriculum.recCalls
	recs, err = tracker.WeeklyRecommendations(context.Background(), "user-1", "Rust", 99)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Equal(t, calls, curriculum.recCalls)

	_, err = tracker.WeeklyRecommendations(context.Background(), "user-1", "Haskell", 1)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}
