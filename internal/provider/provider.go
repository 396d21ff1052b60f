package provider

import (
	"context"
)

// Profile describes the learner input used to request a curriculum.
type Profile struct {
	Topic           string
	ExperienceLevel string
	EffortBand      string
	Goals           string
}

// DraftWeek is one unvalidated weekly unit as returned by the generative
// provider. Deadlines arrive as ISO-8601 strings and are parsed during
// validation, not here.
type DraftWeek struct {
	WeekNumber     int      `json:"week_number"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Objectives     []string `json:"objectives"`
	EstimatedHours float64  `json:"estimated_hours"`
	Deadline       string   `json:"deadline"`
}

// CurriculumDraft is the structured curriculum produced by the generative
// provider before validation and enrichment.
type CurriculumDraft struct {
	Topic      string      `json:"topic"`
	TotalWeeks int         `json:"total_weeks"`
	Weeks      []DraftWeek `json:"weekly_goals"`
}

// ProgressContext carries the learner's progress state into the adaptive
// recommendation call.
type ProgressContext struct {
	Topic          string
	CurrentStatus  string
	Challenges     string
	CompletedItems []string
}

// CurriculumProvider is the generative collaborator: it drafts curricula
// from a learner profile and produces adaptive guidance from progress.
type CurriculumProvider interface {
	GenerateCurriculum(ctx context.Context, profile Profile) (*CurriculumDraft, error)
	GenerateRecommendations(ctx context.Context, progress ProgressContext) ([]string, error)
}

// VideoHit is one raw result from the video search provider.
type VideoHit struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Channel     string   `json:"channel,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// RepoHit is one raw result from the repository search provider.
type RepoHit struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Language    string   `json:"language,omitempty"`
	Stars       int      `json:"stars"`
	Topics      []string `json:"topics,omitempty"`
}

// VideoProvider searches for educational videos.
type VideoProvider interface {
	SearchVideos(ctx context.Context, query string, limit int) ([]VideoHit, error)
}

// RepositoryProvider searches for example code repositories.
type RepositoryProvider interface {
	SearchRepositories(ctx context.Context, query string, limit int) ([]RepoHit, error)
}
