package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pathmentor/learning-app/internal/domain"
	"pathmentor/learning-app/internal/provider"
	"pathmentor/learning-app/internal/repository"

	"github.com/sirupsen/logrus"
)

// --- Error Definitions ---
var (
	ErrRecommendationFailed = errors.New("adaptive recommendation generation failed")
)

// ProgressUpdateInput carries a learner-submitted progress snapshot.
type ProgressUpdateInput struct {
	Topic          string
	CompletedItems []string
	CurrentStatus  string
	Challenges     string
	MoodRating     *int
	HoursSpent     *float64
}

// ProgressTracker records progress against a learning path, reconciles unit
// completion, and requests adaptive recommendations.
type ProgressTracker interface {
	// Record persists the update and returns the refreshed path. When the
	// recommendation step fails the returned error wraps
	// ErrRecommendationFailed and the path is still valid: the progress
	// write has already succeeded and must not be lost.
	Record(ctx context.Context, userID string, input ProgressUpdateInput) (*domain.LearningPath, error)
	WeeklyRecommendations(ctx context.Context, userID, topic string, weekNumber int) ([]string, error)
}

type progressTracker struct {
	pathRepo     repository.LearningPathRepository
	progressRepo repository.ProgressRepository
	curriculum   provider.CurriculumProvider
	log          *logrus.Logger
}

// NewProgressTracker creates a new instance of progressTracker.
func NewProgressTracker(
	pathRepo repository.LearningPathRepository,
	progressRepo repository.ProgressRepository,
	curriculum provider.CurriculumProvider,
	log *logrus.Logger,
) ProgressTracker {
	return &progressTracker{
		pathRepo:     pathRepo,
		progressRepo: progressRepo,
		curriculum:   curriculum,
		log:          log,
	}
}

func (t *progressTracker) Record(ctx context.Context, userID string, input ProgressUpdateInput) (*domain.LearningPath, error) {
	if input.Topic == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrInvalidArgument)
	}
	if input.CurrentStatus == "" {
		return nil, fmt.Errorf("%w: current status is required", ErrInvalidArgument)
	}
	if input.MoodRating != nil && (*input.MoodRating < 1 || *input.MoodRating > 10) {
		return nil, fmt.Errorf("%w: mood rating must be between 1 and 10", ErrInvalidArgument)
	}

	userID = resolveUserID(userID)

	path, err := t.pathRepo.GetByTopic(ctx, userID, input.Topic)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	update := domain.ProgressUpdate{
		Topic:          path.Topic,
		CompletedItems: input.CompletedItems,
		CurrentStatus:  input.CurrentStatus,
		Challenges:     input.Challenges,
		MoodRating:     input.MoodRating,
		HoursSpent:     input.HoursSpent,
		Timestamp:      now,
	}

	path.ProgressUpdates = append(path.ProgressUpdates, update)
	markCompletedUnits(&path.StudyPlan, input.CompletedItems)
	path.StudyPlan.OverallProgress = path.OverallProgress()
	path.StudyPlan.LastUpdated = now
	path.LastUpdated = now

	if err := t.pathRepo.Save(ctx, userID, path); err != nil {
		return nil, err
	}
	if err := t.progressRepo.Save(ctx, userID, path.Topic, &update); err != nil {
		return nil, err
	}

	// The progress write is already committed. A recommendation failure is
	// reported alongside the saved path, never instead of it.
	recs, err := t.curriculum.GenerateRecommendations(ctx, provider.ProgressContext{
		Topic:          path.Topic,
		CurrentStatus:  input.CurrentStatus,
		Challenges:     input.Challenges,
		CompletedItems: input.CompletedItems,
	})
	if err != nil {
		t.log.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"topic":   path.Topic,
		}).Warn("recommendation generation failed after progress was saved")
		return path, fmt.Errorf("%w: %v", ErrRecommendationFailed, err)
	}

	if len(recs) > 0 {
		path.Recommendations = append(path.Recommendations, recs...)
		path.LastUpdated = time.Now().UTC()
		if err := t.pathRepo.Save(ctx, userID, path); err != nil {
			return path, err
		}
	}

	t.log.WithFields(logrus.Fields{
		"user_id":         userID,
		"topic":           path.Topic,
		"completed_items": len(input.CompletedItems),
		"recommendations": len(recs),
	}).Info("progress recorded")

	return path, nil
}

// WeeklyRecommendations generates guidance aimed at one week of the plan.
// An unknown week number yields an empty list, not an error.
func (t *progressTracker) WeeklyRecommendations(ctx context.Context, userID, topic string, weekNumber int) ([]string, error) {
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrInvalidArgument)
	}

	path, err := t.pathRepo.GetByTopic(ctx, resolveUserID(userID), topic)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	var week *domain.WeeklyUnit
	for i := range path.StudyPlan.Weeks {
		if path.StudyPlan.Weeks[i].WeekNumber == weekNumber {
			week = &path.StudyPlan.Weeks[i]
			break
		}
	}
	if week == nil {
		return []string{}, nil
	}

	recs, err := t.curriculum.GenerateRecommendations(ctx, provider.ProgressContext{
		Topic:          path.Topic,
		CurrentStatus:  fmt.Sprintf("Week %d: %s", weekNumber, week.Title),
		CompletedItems: []string{},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecommendationFailed, err)
	}
	return recs, nil
}

// markCompletedUnits marks every unit whose title or objectives mention one
// of the completed items, matched as a case-insensitive substring. Already
// completed units are never unmarked.
func markCompletedUnits(plan *domain.StudyPlan, completedItems []string) {
	for _, item := range completedItems {
		needle := strings.ToLower(strings.TrimSpace(item))
		if needle == "" {
			continue
		}
		for i := range plan.Weeks {
			week := &plan.Weeks[i]
			if week.Completed {
				continue
			}
			if unitMentions(week, needle) {
				week.Completed = true
				week.ProgressPercent = 100
			}
		}
	}
}

func unitMentions(week *domain.WeeklyUnit, needle string) bool {
	if strings.Contains(strings.ToLower(week.Title), needle) {
		return true
	}
	for _, obj := range week.Objectives {
		if strings.Contains(strings.ToLower(obj), needle) {
			return true
		}
	}
	return false
}
