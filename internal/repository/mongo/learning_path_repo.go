package mongo

import (
	"context"
	"errors"
	"regexp"

	"pathmentor/learning-app/internal/domain"
	"pathmentor/learning-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const learningPathCollectionName = "learning_paths"

// mongoLearningPathRepository implements repository.LearningPathRepository.
// Each learning path is stored as one document keyed by (userId, topic).
type mongoLearningPathRepository struct {
	collection *mongo.Collection
}

// NewMongoLearningPathRepository creates a new LearningPath repository.
func NewMongoLearningPathRepository(db *mongo.Database) repository.LearningPathRepository {
	return &mongoLearningPathRepository{
		collection: db.Collection(learningPathCollectionName),
	}
}

// Save upserts the path for its owner. The (userId, topic) filter is
// case-sensitive: re-creating a plan for "rust" after "Rust" stores two
// documents, matching the replace-in-place contract.
func (r *mongoLearningPathRepository) Save(ctx context.Context, userID string, path *domain.LearningPath) error {
	if userID == "" || path == nil || path.Topic == "" {
		return errors.New("user ID and path topic are required")
	}
	path.UserID = userID

	filter := bson.M{"userId": userID, "topic": path.Topic}
	opts := options.Replace().SetUpsert(true)

	_, err := r.collection.ReplaceOne(ctx, filter, path, opts)
	if err != nil {
		return err
	}
	return nil
}

// GetAllByUser retrieves all learning paths for a user, oldest first so the
// original insertion order is preserved.
func (r *mongoLearningPathRepository) GetAllByUser(ctx context.Context, userID string) ([]domain.LearningPath, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	paths := []domain.LearningPath{}
	if err = cursor.All(ctx, &paths); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return paths, nil
}

// GetByTopic retrieves a user's path by topic, matched case-insensitively.
func (r *mongoLearningPathRepository) GetByTopic(ctx context.Context, userID, topic string) (*domain.LearningPath, error) {
	filter := bson.M{
		"userId": userID,
		"topic": primitive.Regex{
			Pattern: "^" + regexp.QuoteMeta(topic) + "$",
			Options: "i",
		},
	}

	var path domain.LearningPath
	err := r.collection.FindOne(ctx, filter).Decode(&path)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &path, nil
}

// EnsureLearningPathIndexes creates necessary indexes. Call during startup.
func EnsureLearningPathIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "topic", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
