package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pathmentor/learning-app/internal/domain"
	"pathmentor/learning-app/internal/provider"
)

// --- Error Definitions ---
var (
	ErrGenerationFailed = errors.New("curriculum generation failed")
	ErrInvalidArgument  = errors.New("invalid argument")
)

// CurriculumGenerator turns a learner profile into a validated draft study
// plan with empty resource lists. Enrichment happens separately.
type CurriculumGenerator interface {
	Generate(ctx context.Context, profile provider.Profile) (*domain.StudyPlan, error)
}

type curriculumGenerator struct {
	curriculum provider.CurriculumProvider
}

// NewCurriculumGenerator creates a new instance of curriculumGenerator.
func NewCurriculumGenerator(curriculum provider.CurriculumProvider) CurriculumGenerator {
	return &curriculumGenerator{curriculum: curriculum}
}

// Generate calls the generative provider and validates its draft: week
// ordinals must form a contiguous 1-based sequence, each week needs at
// least one objective, and every deadline must parse. Provider errors and
// validation failures both surface as ErrGenerationFailed; the caller may
// retry, this service never does.
func (g *curriculumGenerator) Generate(ctx context.Context, profile provider.Profile) (*domain.StudyPlan, error) {
	if profile.Topic == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrInvalidArgument)
	}
	level := domain.ExperienceLevel(profile.ExperienceLevel)
	if !level.IsValid() {
		return nil, fmt.Errorf("%w: unknown experience level %q", ErrInvalidArgument, profile.ExperienceLevel)
	}
	effort := domain.EffortBand(profile.EffortBand)
	if !effort.IsValid() {
		return nil, fmt.Errorf("%w: unknown effort band %q", ErrInvalidArgument, profile.EffortBand)
	}

	draft, err := g.curriculum.GenerateCurriculum(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	weeks, err := validateDraft(draft)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	now := time.Now().UTC()
	return &domain.StudyPlan{
		Topic:           profile.Topic,
		ExperienceLevel: level,
		EffortBand:      effort,
		Goals:           profile.Goals,
		TotalWeeks:      len(weeks),
		Weeks:           weeks,
		CreatedAt:       now,
		LastUpdated:     now,
	}, nil
}

func validateDraft(draft *provider.CurriculumDraft) ([]domain.WeeklyUnit, error) {
	if draft == nil || len(draft.Weeks) == 0 {
		return nil, errors.New("draft contains no weeks")
	}

	weeks := make([]domain.WeeklyUnit, 0, len(draft.Weeks))
	for i, dw := range draft.Weeks {
		if dw.WeekNumber != i+1 {
			return nil, fmt.Errorf("week ordinals are not contiguous: position %d has week_number %d", i+1, dw.WeekNumber)
		}
		if dw.Title == "" {
			return nil, fmt.Errorf("week %d has no title", dw.WeekNumber)
		}
		if len(dw.Objectives) == 0 {
			return nil, fmt.Errorf("week %d has no objectives", dw.WeekNumber)
		}
		deadline, err := parseDeadline(dw.Deadline)
		if err != nil {
			return nil, fmt.Errorf("week %d has an invalid deadline %q: %v", dw.WeekNumber, dw.Deadline, err)
		}

		weeks = append(weeks, domain.WeeklyUnit{
			WeekNumber:     dw.WeekNumber,
			Title:          dw.Title,
			Description:    dw.Description,
			Objectives:     dw.Objectives,
			Resources:      []domain.LearningResource{},
			EstimatedHours: dw.EstimatedHours,
			Deadline:       deadline,
		})
	}
	return weeks, nil
}

// parseDeadline accepts full RFC 3339 timestamps as well as bare dates,
// since models frequently return the latter.
func parseDeadline(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
