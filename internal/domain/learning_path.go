package domain

import (
	"time"
)

// ExperienceLevel describes where the learner is starting from.
type ExperienceLevel string

const (
	LevelBeginner     ExperienceLevel = "beginner"
	LevelIntermediate ExperienceLevel = "intermediate"
	LevelAdvanced     ExperienceLevel = "advanced"
)

func (l ExperienceLevel) IsValid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// EffortBand is the learner's weekly time commitment.
type EffortBand string

const (
	EffortLight     EffortBand = "2-5 hours per week"
	EffortModerate  EffortBand = "5-10 hours per week"
	EffortIntensive EffortBand = "10-20 hours per week"
	EffortFullTime  EffortBand = "20+ hours per week"
)

func (e EffortBand) IsValid() bool {
	switch e {
	case EffortLight, EffortModerate, EffortIntensive, EffortFullTime:
		return true
	}
	return false
}

// WeeklyUnit is one week of a study plan: objectives, resources, effort
// estimate, deadline and completion state.
type WeeklyUnit struct {
	WeekNumber      int                `bson:"weekNumber" json:"weekNumber"` // 1-based, contiguous within a plan
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	Objectives      []string           `bson:"objectives" json:"objectives"`
	Resources       []LearningResource `bson:"resources" json:"resources"`
	EstimatedHours  float64            `bson:"estimatedHours" json:"estimatedHours"`
	Deadline        time.Time          `bson:"deadline" json:"deadline"`
	Completed       bool               `bson:"completed" json:"completed"`
	ProgressPercent float64            `bson:"progressPercent" json:"progressPercent"` // 0-100
}

// StudyPlan is the ordered set of weekly units generated for a topic.
type StudyPlan struct {
	Topic           string          `bson:"topic" json:"topic"`
	ExperienceLevel ExperienceLevel `bson:"experienceLevel" json:"experienceLevel"`
	EffortBand      EffortBand      `bson:"effortBand" json:"effortBand"`
	Goals           string          `bson:"goals,omitempty" json:"goals,omitempty"`
	TotalWeeks      int             `bson:"totalWeeks" json:"totalWeeks"`
	Weeks           []WeeklyUnit    `bson:"weeks" json:"weeks"`
	CreatedAt       time.Time       `bson:"createdAt" json:"createdAt"`
	LastUpdated     time.Time       `bson:"lastUpdated" json:"lastUpdated"`
	OverallProgress float64         `bson:"overallProgress" json:"overallProgress"` // Derived from completed weeks
}

// ProgressUpdate is a learner-submitted snapshot of completed items and
// narrative status. Append-only; never mutated after creation.
type ProgressUpdate struct {
	Topic          string    `bson:"topic" json:"topic"`
	CompletedItems []string  `bson:"completedItems" json:"completedItems"`
	CurrentStatus  string    `bson:"currentStatus" json:"currentStatus"`
	Challenges     string    `bson:"challenges,omitempty" json:"challenges,omitempty"`
	MoodRating     *int      `bson:"moodRating,omitempty" json:"moodRating,omitempty"` // 1-10
	HoursSpent     *float64  `bson:"hoursSpent,omitempty" json:"hoursSpent,omitempty"`
	Timestamp      time.Time `bson:"timestamp" json:"timestamp"`
}

// LearningPath ties a study plan to its owner together with the progress
// history and the adaptive recommendation log. At most one path exists per
// (owner, topic); re-creating replaces the stored plan in place.
type LearningPath struct {
	UserID          string           `bson:"userId" json:"userId"`
	Topic           string           `bson:"topic" json:"topic"`
	ExperienceLevel ExperienceLevel  `bson:"experienceLevel" json:"experienceLevel"`
	EffortBand      EffortBand       `bson:"effortBand" json:"effortBand"`
	Goals           string           `bson:"goals,omitempty" json:"goals,omitempty"`
	StudyPlan       StudyPlan        `bson:"studyPlan" json:"studyPlan"`
	ProgressUpdates []ProgressUpdate `bson:"progressUpdates" json:"progressUpdates"`
	Recommendations []string         `bson:"recommendations" json:"recommendations"`
	CreatedAt       time.Time        `bson:"createdAt" json:"createdAt"`
	LastUpdated     time.Time        `bson:"lastUpdated" json:"lastUpdated"`
}

// OverallProgress returns the share of completed weekly units, 0-100.
func (p *LearningPath) OverallProgress() float64 {
	if len(p.StudyPlan.Weeks) == 0 {
		return 0
	}
	completed := 0
	for _, w := range p.StudyPlan.Weeks {
		if w.Completed {
			completed++
		}
	}
	return float64(completed) / float64(len(p.StudyPlan.Weeks)) * 100
}

// CurrentWeek returns the first incomplete unit, or nil when the plan is done.
func (p *LearningPath) CurrentWeek() *WeeklyUnit {
	for i := range p.StudyPlan.Weeks {
		if !p.StudyPlan.Weeks[i].Completed {
			return &p.StudyPlan.Weeks[i]
		}
	}
	return nil
}

// NextDeadline returns the deadline of the first incomplete unit, if any.
func (p *LearningPath) NextDeadline() *time.Time {
	if w := p.CurrentWeek(); w != nil {
		return &w.Deadline
	}
	return nil
}
