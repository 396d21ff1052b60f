package mongo

import (
	"context"
	"errors"

	"pathmentor/learning-app/internal/domain"
	"pathmentor/learning-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const progressCollectionName = "progress"

// progressDocument wraps a ProgressUpdate with its owner key. Only the
// latest update per (userId, topic) is kept here; the full history lives on
// the learning path document.
type progressDocument struct {
	UserID string                `bson:"userId"`
	Topic  string                `bson:"topic"`
	Update domain.ProgressUpdate `bson:"update"`
}

// mongoProgressRepository implements repository.ProgressRepository.
type mongoProgressRepository struct {
	collection *mongo.Collection
}

// NewMongoProgressRepository creates a new Progress repository.
func NewMongoProgressRepository(db *mongo.Database) repository.ProgressRepository {
	return &mongoProgressRepository{
		collection: db.Collection(progressCollectionName),
	}
}

// Save stores the latest progress update for a (user, topic) pair.
func (r *mongoProgressRepository) Save(ctx context.Context, userID, topic string, update *domain.ProgressUpdate) error {
	if userID == "" || topic == "" || update == nil {
		return errors.New("user ID, topic, and update are required")
	}

	doc := progressDocument{UserID: userID, Topic: topic, Update: *update}
	filter := bson.M{"userId": userID, "topic": topic}
	opts := options.Replace().SetUpsert(true)

	_, err := r.collection.ReplaceOne(ctx, filter, doc, opts)
	return err
}

// GetAllByUser returns the latest update per topic for a user. A user with
// no recorded progress yields an empty map, not an error.
func (r *mongoProgressRepository) GetAllByUser(ctx context.Context, userID string) (map[string]domain.ProgressUpdate, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []progressDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	result := make(map[string]domain.ProgressUpdate, len(docs))
	for _, doc := range docs {
		result[doc.Topic] = doc.Update
	}
	return result, nil
}

// GetByTopic returns the latest update for a specific topic.
func (r *mongoProgressRepository) GetByTopic(ctx context.Context, userID, topic string) (*domain.ProgressUpdate, error) {
	var doc progressDocument
	err := r.collection.FindOne(ctx, bson.M{"userId": userID, "topic": topic}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &doc.Update, nil
}

// EnsureProgressIndexes creates necessary indexes. Call during startup.
func EnsureProgressIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "topic", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
