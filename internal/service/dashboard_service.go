package service

import (
	"context"
	"strings"
	"time"

	"pathmentor/learning-app/internal/domain"
	"pathmentor/learning-app/internal/repository"
)

// DashboardStats is the aggregate view of a learner's activity across all
// of their paths.
type DashboardStats struct {
	TotalUnits      int        `json:"total_units"`
	CompletedUnits  int        `json:"completed_units"`
	OverallProgress float64    `json:"overall_progress_percent"`
	NextDeadline    *time.Time `json:"next_deadline,omitempty"`
	TotalPaths      int        `json:"total_paths"`
	ActivePaths     int        `json:"active_paths"`
}

// DashboardAggregator computes dashboard statistics from stored paths and
// the latest progress update per topic.
type DashboardAggregator interface {
	Stats(ctx context.Context, userID string) (*DashboardStats, error)
}

type dashboardAggregator struct {
	pathRepo     repository.LearningPathRepository
	progressRepo repository.ProgressRepository
}

// NewDashboardAggregator creates a new instance of dashboardAggregator.
func NewDashboardAggregator(pathRepo repository.LearningPathRepository, progressRepo repository.ProgressRepository) DashboardAggregator {
	return &dashboardAggregator{pathRepo: pathRepo, progressRepo: progressRepo}
}

// Stats aggregates across every path the user owns. Per-path progress is
// estimated as completed items over three items per unit, capped at 100,
// then averaged over all paths. The estimate counts items only and does not
// consult the substring matching behind CompletedUnits, so a path can show
// a nonzero percentage with zero completed units. The next deadline is
// approximated as a week from now whenever an active path still has
// incomplete units.
func (a *dashboardAggregator) Stats(ctx context.Context, userID string) (*DashboardStats, error) {
	userID = resolveUserID(userID)

	paths, err := a.pathRepo.GetAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	progress, err := a.progressRepo.GetAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{TotalPaths: len(paths)}

	var progressSum float64
	for i := range paths {
		path := &paths[i]
		units := path.StudyPlan.Weeks
		stats.TotalUnits += len(units)

		update, active := progress[path.Topic]
		if !active {
			continue
		}
		stats.ActivePaths++

		incomplete := false
		for j := range units {
			if unitCoveredBy(&units[j], update.CompletedItems) {
				stats.CompletedUnits++
			} else {
				incomplete = true
			}
		}

		if len(units) > 0 && len(update.CompletedItems) > 0 {
			pct := float64(len(update.CompletedItems)) / float64(len(units)*3) * 100
			if pct > 100 {
				pct = 100
			}
			progressSum += pct
		}

		if incomplete && stats.NextDeadline == nil {
			deadline := time.Now().UTC().Add(7 * 24 * time.Hour)
			stats.NextDeadline = &deadline
		}
	}

	if len(paths) > 0 {
		stats.OverallProgress = progressSum / float64(len(paths))
	}
	return stats, nil
}

// unitCoveredBy reports whether any completed item mentions the unit, using
// the same case-insensitive substring match as progress recording.
func unitCoveredBy(week *domain.WeeklyUnit, completedItems []string) bool {
	for _, item := range completedItems {
		needle := strings.ToLower(strings.TrimSpace(item))
		if needle == "" {
			continue
		}
		if unitMentions(week, needle) {
			return true
		}
	}
	return false
}
