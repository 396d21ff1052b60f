package repository

import (
	"context"

	"pathmentor/learning-app/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound    = RepositoryError("not found")
	ErrDuplicate   = RepositoryError("already exists")
	ErrWriteFailed = RepositoryError("write failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// LearningPathRepository stores learning paths keyed by owner.
//
// Save is an upsert: when a path with the same topic (case-sensitive match)
// already exists for the owner it is replaced in place, otherwise the path
// is appended. GetByTopic matches the topic case-insensitively.
type LearningPathRepository interface {
	Save(ctx context.Context, userID string, path *domain.LearningPath) error
	GetAllByUser(ctx context.Context, userID string) ([]domain.LearningPath, error)
	GetByTopic(ctx context.Context, userID, topic string) (*domain.LearningPath, error)
}

// ProgressRepository stores the latest progress update per (owner, topic).
// The full update history lives on the LearningPath itself.
type ProgressRepository interface {
	Save(ctx context.Context, userID, topic string, update *domain.ProgressUpdate) error
	GetAllByUser(ctx context.Context, userID string) (map[string]domain.ProgressUpdate, error)
	GetByTopic(ctx context.Context, userID, topic string) (*domain.ProgressUpdate, error)
}
