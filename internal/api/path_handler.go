package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"pathmentor/learning-app/internal/domain"
	"pathmentor/learning-app/internal/provider"
	"pathmentor/learning-app/internal/service"

	"github.com/gin-gonic/gin"
)

// LearningPathHandler holds the learning path service dependency.
type LearningPathHandler struct {
	pathService service.LearningPathService
}

// NewLearningPathHandler creates a new LearningPathHandler.
func NewLearningPathHandler(pathService service.LearningPathService) *LearningPathHandler {
	return &LearningPathHandler{pathService: pathService}
}

// --- Request/Response Structs ---

type CreateLearningPathRequest struct {
	Topic           string `json:"topic" binding:"required"`
	ExperienceLevel string `json:"experience_level" binding:"omitempty,oneof=beginner intermediate advanced"`
	TimeCommitment  string `json:"time_commitment"`
	LearningGoals   string `json:"learning_goals"`
}

type ResourceResponse struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url"`
	Type        string   `json:"type"`
	Duration    string   `json:"duration,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type WeeklyUnitResponse struct {
	WeekNumber      int                `json:"week_number"`
	Title           string             `json:"title"`
	Description     string             `json:"description,omitempty"`
	Objectives      []string           `json:"objectives"`
	Resources       []ResourceResponse `json:"resources"`
	EstimatedHours  float64            `json:"estimated_hours"`
	Deadline        time.Time          `json:"deadline"`
	Completed       bool               `json:"completed"`
	ProgressPercent float64            `json:"progress_percentage"`
}

type LearningPathResponse struct {
	Topic           string               `json:"topic"`
	ExperienceLevel string               `json:"experience_level"`
	TimeCommitment  string               `json:"time_commitment"`
	LearningGoals   string               `json:"learning_goals,omitempty"`
	TotalWeeks      int                  `json:"total_weeks"`
	WeeklyGoals     []WeeklyUnitResponse `json:"weekly_goals"`
	Recommendations []string             `json:"adaptive_recommendations"`
	OverallProgress float64              `json:"overall_progress"`
	NextDeadline    *time.Time           `json:"next_deadline,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	LastUpdated     time.Time            `json:"last_updated"`
}

// --- Handler Methods ---

// CreateLearningPath godoc
// @Summary Create a learning path
// @Description Generates a multi-week curriculum for a topic, enriches it with videos and repositories, and stores it. Creating a path for an existing topic replaces it.
// @Tags LearningPaths
// @Accept json
// @Produce json
// @Param path body CreateLearningPathRequest true "Topic and learner profile"
// @Success 201 {object} LearningPathResponse "Learning path created"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 502 {object} gin.H "Curriculum generation failed"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /learning-paths [post]
func (h *LearningPathHandler) CreateLearningPath(c *gin.Context) {
	var req CreateLearningPathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	if req.ExperienceLevel == "" {
		req.ExperienceLevel = string(domain.LevelBeginner)
	}
	if req.TimeCommitment == "" {
		req.TimeCommitment = string(domain.EffortModerate)
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	path, err := h.pathService.Create(c.Request.Context(), userID, provider.Profile{
		Topic:           req.Topic,
		ExperienceLevel: req.ExperienceLevel,
		EffortBand:      req.TimeCommitment,
		Goals:           req.LearningGoals,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else if errors.Is(err, service.ErrGenerationFailed) {
			abortWithError(c, http.StatusBadGateway, "Could not generate a curriculum for this topic")
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred while creating the learning path")
		}
		return
	}

	c.JSON(http.StatusCreated, MapPathToResponse(path))
}

// GetLearningPaths godoc
// @Summary List learning paths
// @Description Returns every learning path owned by the authenticated user, oldest first.
// @Tags LearningPaths
// @Produce json
// @Success 200 {array} LearningPathResponse "Learning paths"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /learning-paths [get]
func (h *LearningPathHandler) GetLearningPaths(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	paths, err := h.pathService.List(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve learning paths")
		return
	}

	responses := make([]LearningPathResponse, 0, len(paths))
	for i := range paths {
		responses = append(responses, MapPathToResponse(&paths[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// GetLearningPathByTopic godoc
// @Summary Get a learning path by topic
// @Description Retrieves a single learning path; the topic is matched case-insensitively.
// @Tags LearningPaths
// @Produce json
// @Param topic path string true "Topic"
// @Success 200 {object} LearningPathResponse "Learning path"
// @Failure 404 {object} gin.H "No learning path for this topic"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /learning-paths/{topic} [get]
func (h *LearningPathHandler) GetLearningPathByTopic(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	path, err := h.pathService.GetByTopic(c.Request.Context(), userID, c.Param("topic"))
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrInvalidArgument) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve learning path")
		}
		return
	}

	c.JSON(http.StatusOK, MapPathToResponse(path))
}

// MapPathToResponse converts a domain LearningPath to its response DTO.
func MapPathToResponse(path *domain.LearningPath) LearningPathResponse {
	if path == nil {
		return LearningPathResponse{}
	}

	weeks := make([]WeeklyUnitResponse, 0, len(path.StudyPlan.Weeks))
	for _, w := range path.StudyPlan.Weeks {
		weeks = append(weeks, WeeklyUnitResponse{
			WeekNumber:      w.WeekNumber,
			Title:           w.Title,
			Description:     w.Description,
			Objectives:      w.Objectives,
			Resources:       mapResources(w.Resources),
			EstimatedHours:  w.EstimatedHours,
			Deadline:        w.Deadline,
			Completed:       w.Completed,
			ProgressPercent: w.ProgressPercent,
		})
	}

	recommendations := path.Recommendations
	if recommendations == nil {
		recommendations = []string{}
	}

	return LearningPathResponse{
		Topic:           path.Topic,
		ExperienceLevel: string(path.ExperienceLevel),
		TimeCommitment:  string(path.EffortBand),
		LearningGoals:   path.Goals,
		TotalWeeks:      path.StudyPlan.TotalWeeks,
		WeeklyGoals:     weeks,
		Recommendations: recommendations,
		OverallProgress: path.OverallProgress(),
		NextDeadline:    path.NextDeadline(),
		CreatedAt:       path.CreatedAt,
		LastUpdated:     path.LastUpdated,
	}
}

func mapResources(resources []domain.LearningResource) []ResourceResponse {
	out := make([]ResourceResponse, 0, len(resources))
	for _, r := range resources {
		out = append(out, ResourceResponse{
			Title:       r.Title,
			Description: r.Description,
			URL:         r.URL,
			Type:        string(r.Type),
			Duration:    r.Duration,
			Difficulty:  r.Difficulty,
			Tags:        r.Tags,
		})
	}
	return out
}
