package service

import (
	"context"
	"testing"
	"time"

	"pathmentor/learning-app/internal/domain"
	"pathmentor/learning-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPlainPath(t *testing.T, pathRepo repository.LearningPathRepository, userID, topic string, weeks int) {
	t.Helper()
	now := time.Now().UTC()
	units := make([]domain.WeeklyUnit, 0, weeks)
	for i := 1; i <= weeks; i++ {
		units = append(units, domain.WeeklyUnit{
			WeekNumber: i,
			Title:      "Unit",
			Objectives: []string{"Objective"},
			Resources:  []domain.LearningResource{},
			Deadline:   now.Add(time.Duration(i) * 7 * 24 * time.Hour),
		})
	}
	require.NoError(t, pathRepo.Save(context.Background(), userID, &domain.LearningPath{
		UserID:    userID,
		Topic:     topic,
		StudyPlan: domain.StudyPlan{Topic: topic, TotalWeeks: weeks, Weeks: units},
		CreatedAt: now,
	}))
}

func TestStats_EmptyUser(t *testing.T) {
	store := openTestStore(t)
	agg := NewDashboardAggregator(store.Paths(), store.Progress())

	stats, err := agg.Stats(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalPaths)
	assert.Equal(t, 0, stats.TotalUnits)
	assert.Equal(t, float64(0), stats.OverallProgress)
	assert.Nil(t, stats.NextDeadline)
}

func TestStats_AveragesAcrossPaths(t *testing.T) {
	store := openTestStore(t)
	seedPlainPath(t, store.Paths(), "user-1", "Go", 4)
	seedPlainPath(t, store.Paths(), "user-1", "SQL", 2)

	// Six completed items against 4 units: 6/(4*3) = 50%. The labels are
	// chosen so none of them substring-match a unit title or objective.
	items := []string{"x1", "x2", "x3", "x4", "x5", "x6"}
	require.NoError(t, store.Progress().Save(context.Background(), "user-1", "Go", &domain.ProgressUpdate{
		Topic:          "Go",
		CompletedItems: items,
		CurrentStatus:  "halfway",
		Timestamp:      time.Now().UTC(),
	}))
	// Six completed items against 2 units: 6/(2*3) = 100%.
	require.NoError(t, store.Progress().Save(context.Background(), "user-1", "SQL", &domain.ProgressUpdate{
		Topic:          "SQL",
		CompletedItems: items,
		CurrentStatus:  "done",
		Timestamp:      time.Now().UTC(),
	}))

	agg := NewDashboardAggregator(store.Paths(), store.Progress())
	stats, err := agg.Stats(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalPaths)
	assert.Equal(t, 2, stats.ActivePaths)
	assert.Equal(t, 6, stats.TotalUnits)
	assert.InDelta(t, 75.0, stats.OverallProgress, 0.01)

	// None of the completed items mention a unit, so everything is still
	// incomplete and the deadline is approximated a week out.
	assert.Equal(t, 0, stats.CompletedUnits)
	require.NotNil(t, stats.NextDeadline)
	assert.WithinDuration(t, time.Now().UTC().Add(7*24*time.Hour), *stats.NextDeadline, time.Minute)
}

func TestStats_CompletedUnitsUseSubstringMatch(t *testing.T) {
	store := openTestStore(t)
	seedRustPath(t, store.Paths(), "user-1")
	require.NoError(t, store.Progress().Save(context.Background(), "user-1", "Rust", &domain.ProgressUpdate{
		Topic:          "Rust",
		CompletedItems: []string{"Rust Basics", "ownership"},
		CurrentStatus:  "moving along",
		Timestamp:      time.Now().UTC(),
	}))

	agg := NewDashboardAggregator(store.Paths(), store.Progress())
	stats, err := agg.Stats(context.Background(), "user-1")
	require.NoError(t, err)

	// "Rust Basics" covers week 1, "ownership" covers weeks 2 and 4.
	assert.Equal(t, 4, stats.TotalUnits)
	assert.Equal(t, 3, stats.CompletedUnits)
	assert.NotNil(t, stats.NextDeadline)
}

func TestStats_PathWithoutProgressIsInactive(t *testing.T) {
	store := openTestStore(t)
	seedPlainPath(t, store.Paths(), "user-1", "Go", 3)

	agg := NewDashboardAggregator(store.Paths(), store.Progress())
	stats, err := agg.Stats(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TotalPaths)
	assert.Equal(t, 0, stats.ActivePaths)
	assert.Equal(t, 3, stats.TotalUnits)
	assert.Equal(t, float64(0), stats.OverallProgress)
	assert.Nil(t, stats.NextDeadline)
}
