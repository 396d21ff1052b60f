package domain

// ResourceType categorizes a learning resource by where it came from.
type ResourceType string

const (
	ResourceVideo      ResourceType = "video"
	ResourceRepository ResourceType = "code_repository"
	ResourceArticle    ResourceType = "article"
	ResourceCourse     ResourceType = "course"
	ResourceBook       ResourceType = "book"
	ResourceExercise   ResourceType = "exercise"
)

// LearningResource is a single external resource attached to a weekly unit.
// Immutable once attached.
type LearningResource struct {
	Title       string       `bson:"title" json:"title"`
	Description string       `bson:"description,omitempty" json:"description,omitempty"`
	URL         string       `bson:"url" json:"url"`
	Type        ResourceType `bson:"type" json:"type"`
	Duration    string       `bson:"duration,omitempty" json:"duration,omitempty"`     // e.g. "45 minutes", "2 hours"
	Difficulty  string       `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	Tags        []string     `bson:"tags,omitempty" json:"tags,omitempty"`
}
