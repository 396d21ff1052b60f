package archive

import (
	"context"

	"pathmentor/learning-app/internal/domain"
)

// PathArchiver stores an off-site snapshot of a learning path whenever it
// is saved. Archiving is best-effort: callers log failures and move on, the
// store of record is the repository layer.
type PathArchiver interface {
	Snapshot(ctx context.Context, userID string, path *domain.LearningPath) error
}

// Noop discards snapshots. Used when no archive backend is configured.
type Noop struct{}

func (Noop) Snapshot(ctx context.Context, userID string, path *domain.LearningPath) error {
	return nil
}
