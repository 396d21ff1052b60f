package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pathmentor/learning-app/internal/archive"
	"pathmentor/learning-app/internal/domain"
	"pathmentor/learning-app/internal/provider"
	"pathmentor/learning-app/internal/repository"

	"github.com/sirupsen/logrus"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound = errors.New("no learning path exists for this topic")
)

// LearningPathService orchestrates the full path lifecycle: generation,
// resource enrichment, persistence and retrieval.
type LearningPathService interface {
	Create(ctx context.Context, userID string, profile provider.Profile) (*domain.LearningPath, error)
	List(ctx context.Context, userID string) ([]domain.LearningPath, error)
	GetByTopic(ctx context.Context, userID, topic string) (*domain.LearningPath, error)
}

type learningPathService struct {
	generator CurriculumGenerator
	enricher  ResourceEnricher
	pathRepo  repository.LearningPathRepository
	archiver  archive.PathArchiver
	log       *logrus.Logger
}

// NewLearningPathService creates a new instance of learningPathService.
func NewLearningPathService(
	generator CurriculumGenerator,
	enricher ResourceEnricher,
	pathRepo repository.LearningPathRepository,
	archiver archive.PathArchiver,
	log *logrus.Logger,
) LearningPathService {
	if archiver == nil {
		archiver = archive.Noop{}
	}
	return &learningPathService{
		generator: generator,
		enricher:  enricher,
		pathRepo:  pathRepo,
		archiver:  archiver,
		log:       log,
	}
}

// Create generates a curriculum for the profile, enriches it with external
// resources, and persists the resulting path. Creating a path for a topic
// the user already has replaces the stored path in place. An empty user id
// falls back to the shared anonymous owner.
func (s *learningPathService) Create(ctx context.Context, userID string, profile provider.Profile) (*domain.LearningPath, error) {
	userID = resolveUserID(userID)

	plan, err := s.generator.Generate(ctx, profile)
	if err != nil {
		return nil, err
	}

	if err := s.enricher.Enrich(ctx, profile.Topic, plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	now := time.Now().UTC()
	path := &domain.LearningPath{
		UserID:          userID,
		Topic:           plan.Topic,
		ExperienceLevel: plan.ExperienceLevel,
		EffortBand:      plan.EffortBand,
		Goals:           plan.Goals,
		StudyPlan:       *plan,
		ProgressUpdates: []domain.ProgressUpdate{},
		Recommendations: []string{},
		CreatedAt:       now,
		LastUpdated:     now,
	}

	if err := s.pathRepo.Save(ctx, userID, path); err != nil {
		return nil, err
	}

	s.snapshot(ctx, userID, path)

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"topic":   path.Topic,
		"weeks":   path.StudyPlan.TotalWeeks,
	}).Info("learning path created")

	return path, nil
}

// List returns every learning path owned by the user, oldest first.
func (s *learningPathService) List(ctx context.Context, userID string) ([]domain.LearningPath, error) {
	return s.pathRepo.GetAllByUser(ctx, resolveUserID(userID))
}

// GetByTopic retrieves a single path by topic, matched case-insensitively.
func (s *learningPathService) GetByTopic(ctx context.Context, userID, topic string) (*domain.LearningPath, error) {
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrInvalidArgument)
	}

	path, err := s.pathRepo.GetByTopic(ctx, resolveUserID(userID), topic)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return path, nil
}

// snapshot archives the path best-effort. The repository is the store of
// record; an archive failure is logged and swallowed.
func (s *learningPathService) snapshot(ctx context.Context, userID string, path *domain.LearningPath) {
	if err := s.archiver.Snapshot(ctx, userID, path); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"topic":   path.Topic,
		}).Warn("path snapshot failed")
	}
}

func resolveUserID(userID string) string {
	if userID == "" {
		return domain.AnonymousUserID
	}
	return userID
}
