package service

import (
	"context"
	"errors"
	"testing"

	"pathmentor/learning-app/internal/domain"
	"pathmentor/learning-app/internal/provider"
	"pathmentor/learning-app/internal/repository/jsonfile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPathService(t *testing.T, curriculum *fakeCurriculum) (LearningPathService, *jsonfile.Store) {
	t.Helper()
	store := openTestStore(t)
	generator := NewCurriculumGenerator(curriculum)
	enricher := NewResourceEnricher(
		&fakeVideoProvider{hits: []provider.VideoHit{{Title: "Intro video", URL: "https://youtube.com/watch?v=1"}}},
		&fakeRepoProvider{hits: []provider.RepoHit{{Name: "starter-kit", URL: "https://github.com/x/starter-kit"}}},
		3, 2, testLogger(),
	)
	svc := NewLearningPathService(generator, enricher, store.Paths(), nil, testLogger())
	return svc, store
}

func TestCreate_GeneratesEnrichesAndStores(t *testing.T) {
	svc, store := newPathService(t, &fakeCurriculum{draft: validDraft()})

	path, err := svc.Create(context.Background(), "user-1", provider.Profile{
		Topic:           "Rust",
		ExperienceLevel: "beginner",
		EffortBand:      "5-10 hours per week",
	})
	require.NoError(t, err)
	require.NotNil(t, path)

	assert.Equal(t, "user-1", path.UserID)
	assert.Equal(t, "Rust", path.Topic)
	require.Len(t, path.StudyPlan.Weeks, 2)

	// Enrichment ran: each week carries the video and repository hits.
	require.Len(t, path.StudyPlan.Weeks[0].Resources, 2)
	assert.Equal(t, domain.ResourceVideo, path.StudyPlan.Weeks[0].Resources[0].Type)
	assert.Equal(t, domain.ResourceRepository, path.StudyPlan.Weeks[0].Resources[1].Type)

	stored, err := store.Paths().GetByTopic(context.Background(), "user-1", "Rust")
	require.NoError(t, err)
	assert.Equal(t, path.Topic, stored.Topic)
	assert.Empty(t, stored.ProgressUpdates)
	assert.Empty(t, stored.Recommendations)
}

func TestCreate_ReplacesExistingTopic(t *testing.T) {
	svc, store := newPathService(t, &fakeCurriculum{draft: validDraft()})

	first, err := svc.Create(context.Background(), "user-1", provider.Profile{
		Topic: "Rust", ExperienceLevel: "beginner", EffortBand: "5-10 hours per week",
	})
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), "user-1", provider.Profile{
		Topic: "Rust", ExperienceLevel: "advanced", EffortBand: "10-20 hours per week",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LevelAdvanced, second.ExperienceLevel)

	all, err := store.Paths().GetAllByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.LevelAdvanced, all[0].ExperienceLevel)
	assert.NotEqual(t, first.ExperienceLevel, all[0].ExperienceLevel)
}

func TestCreate_GenerationFailurePropagates(t *testing.T) {
	svc, store := newPathService(t, &fakeCurriculum{draftErr: errors.New("model down")})

	_, err := svc.Create(context.Background(), "user-1", provider.Profile{
		Topic: "Rust", ExperienceLevel: "beginner", EffortBand: "5-10 hours per week",
	})
	assert.ErrorIs(t, err, ErrGenerationFailed)

	// Nothing was stored.
	all, err := store.Paths().GetAllByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetByTopic_CaseInsensitive(t *testing.T) {
	svc, _ := newPathService(t, &fakeCurriculum{draft: validDraft()})

	_, err := svc.Create(context.Background(), "user-1", provider.Profile{
		Topic: "Rust", ExperienceLevel: "beginner", EffortBand: "5-10 hours per week",
	})
	require.NoError(t, err)

	path, err := svc.GetByTopic(context.Background(), "user-1", "rUsT")
	require.NoError(t, err)
	assert.Equal(t, "Rust", path.Topic)

	_, err = svc.GetByTopic(context.Background(), "user-1", "Haskell")
	assert.ErrorIs(t, err, ErrPlanNotFound)

	_, err = svc.GetByTopic(context.Background(), "user-1", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCreate_AnonymousFallback(t *testing.T) {
	svc, _ := newPathService(t, &fakeCurriculum{draft: validDraft()})

	path, err := svc.Create(context.Background(), "", provider.Profile{
		Topic: "Rust", ExperienceLevel: "beginner", EffortBand: "5-10 hours per week",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AnonymousUserID, path.UserID)

	listed, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, listed, 1)
}
