package service

import (
	"context"
	"fmt"

	"pathmentor/learning-app/internal/domain"
	"pathmentor/learning-app/internal/provider"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ResourceEnricher attaches externally-sourced resources to each week of a
// study plan. Provider failures are isolated per unit and category: a dead
// search backend means empty resource lists, never a failed plan.
type ResourceEnricher interface {
	Enrich(ctx context.Context, topic string, plan *domain.StudyPlan) error
}

type resourceEnricher struct {
	videos     provider.VideoProvider
	repos      provider.RepositoryProvider
	videoLimit int
	repoLimit  int
	log        *logrus.Logger
}

// NewResourceEnricher creates a new instance of resourceEnricher. Limits
// cap how many resources of each category are attached per week.
func NewResourceEnricher(videos provider.VideoProvider, repos provider.RepositoryProvider, videoLimit, repoLimit int, log *logrus.Logger) ResourceEnricher {
	if videoLimit <= 0 {
		videoLimit = 3
	}
	if repoLimit <= 0 {
		repoLimit = 2
	}
	return &resourceEnricher{
		videos:     videos,
		repos:      repos,
		videoLimit: videoLimit,
		repoLimit:  repoLimit,
		log:        log,
	}
}

// Enrich queries every provider for every week concurrently and attaches
// the normalized results in place. Results for a week are only written once
// both categories for that week have resolved.
func (e *resourceEnricher) Enrich(ctx context.Context, topic string, plan *domain.StudyPlan) error {
	if plan == nil || len(plan.Weeks) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range plan.Weeks {
		week := &plan.Weeks[i]
		g.Go(func() error {
			query := fmt.Sprintf("%s %s", topic, week.Title)
			week.Resources = append(e.videoResources(gctx, query, week.WeekNumber),
				e.repoResources(gctx, query, week.WeekNumber)...)
			return nil
		})
	}
	// Workers never return errors; Wait only fences the goroutines.
	_ = g.Wait()
	return ctx.Err()
}

func (e *resourceEnricher) videoResources(ctx context.Context, query string, week int) []domain.LearningResource {
	hits, err := e.videos.SearchVideos(ctx, query, e.videoLimit)
	if err != nil {
		e.log.WithError(err).WithFields(logrus.Fields{
			"week":  week,
			"query": query,
		}).Warn("video lookup failed, attaching no video resources")
		return []domain.LearningResource{}
	}
	if len(hits) > e.videoLimit {
		hits = hits[:e.videoLimit]
	}

	resources := make([]domain.LearningResource, 0, len(hits))
	for _, hit := range hits {
		resources = append(resources, domain.LearningResource{
			Title:       hit.Title,
			Description: hit.Description,
			URL:         hit.URL,
			Type:        domain.ResourceVideo,
			Duration:    hit.Duration,
			Tags:        hit.Tags,
		})
	}
	return resources
}

func (e *resourceEnricher) repoResources(ctx context.Context, query string, week int) []domain.LearningResource {
	hits, err := e.repos.SearchRepositories(ctx, query, e.repoLimit)
	if err != nil {
		e.log.WithError(err).WithFields(logrus.Fields{
			"week":  week,
			"query": query,
		}).Warn("repository lookup failed, attaching no repository resources")
		return []domain.LearningResource{}
	}
	if len(hits) > e.repoLimit {
		hits = hits[:e.repoLimit]
	}

	resources := make([]domain.LearningResource, 0, len(hits))
	for _, hit := range hits {
		resources = append(resources, domain.LearningResource{
			Title:       hit.Name,
			Description: hit.Description,
			URL:         hit.URL,
			Type:        domain.ResourceRepository,
			Tags:        hit.Topics,
		})
	}
	return resources
}
