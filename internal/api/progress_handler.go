package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"pathmentor/learning-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ProgressHandler holds the progress tracking service dependency.
type ProgressHandler struct {
	tracker service.ProgressTracker
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(tracker service.ProgressTracker) *ProgressHandler {
	return &ProgressHandler{tracker: tracker}
}

// --- Request/Response Structs ---

type ProgressUpdateRequest struct {
	Topic           string   `json:"topic" binding:"required"`
	CompletedItems  []string `json:"completed_items"`
	CurrentProgress string   `json:"current_progress" binding:"required"`
	ChallengesFaced string   `json:"challenges_faced"`
	MoodRating      *int     `json:"mood_rating" binding:"omitempty,min=1,max=10"`
	HoursSpent      *float64 `json:"hours_spent" binding:"omitempty,min=0"`
}

type ProgressUpdateResponse struct {
	Path    LearningPathResponse `json:"learning_path"`
	Warning string               `json:"warning,omitempty"`
}

type WeeklyRecommendationsResponse struct {
	Topic           string   `json:"topic"`
	WeekNumber      int      `json:"week_number"`
	Recommendations []string `json:"recommendations"`
}

// --- Handler Methods ---

// UpdateProgress godoc
// @Summary Record a progress update
// @Description Appends a progress snapshot to the topic's learning path, marks completed weeks, and requests adaptive recommendations. If recommendation generation fails the progress is still saved and the response carries a warning.
// @Tags Progress
// @Accept json
// @Produce json
// @Param progress body ProgressUpdateRequest true "Progress update"
// @Success 200 {object} ProgressUpdateResponse "Progress recorded"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 404 {object} gin.H "No learning path for this topic"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /progress [post]
func (h *ProgressHandler) UpdateProgress(c *gin.Context) {
	var req ProgressUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	path, err := h.tracker.Record(c.Request.Context(), userID, service.ProgressUpdateInput{
		Topic:          req.Topic,
		CompletedItems: req.CompletedItems,
		CurrentStatus:  req.CurrentProgress,
		Challenges:     req.ChallengesFaced,
		MoodRating:     req.MoodRating,
		HoursSpent:     req.HoursSpent,
	})
	if err != nil {
		// The update is already persisted when only the recommendation step
		// failed, so the client still gets the refreshed path.
		if errors.Is(err, service.ErrRecommendationFailed) && path != nil {
			c.JSON(http.StatusOK, ProgressUpdateResponse{
				Path:    MapPathToResponse(path),
				Warning: "Progress saved, but adaptive recommendations are temporarily unavailable",
			})
			return
		}
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrInvalidArgument) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to record progress")
		}
		return
	}

	c.JSON(http.StatusOK, ProgressUpdateResponse{Path: MapPathToResponse(path)})
}

// GetWeeklyRecommendations godoc
// @Summary Get recommendations for one week
// @Description Generates study guidance targeted at a specific week of the topic's plan.
// @Tags Progress
// @Produce json
// @Param topic path string true "Topic"
// @Param week path int true "Week number (1-based)"
// @Success 200 {object} WeeklyRecommendationsResponse "Recommendations"
// @Failure 400 {object} gin.H "Invalid week number"
// @Failure 404 {object} gin.H "No learning path for this topic"
// @Failure 502 {object} gin.H "Recommendation generation failed"
// @Router /progress/{topic}/weekly/{week} [get]
func (h *ProgressHandler) GetWeeklyRecommendations(c *gin.Context) {
	week, err := strconv.Atoi(c.Param("week"))
	if err != nil || week < 1 {
		abortWithError(c, http.StatusBadRequest, "Week must be a positive integer")
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	topic := c.Param("topic")
	recs, err := h.tracker.WeeklyRecommendations(c.Request.Context(), userID, topic, week)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrInvalidArgument) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else if errors.Is(err, service.ErrRecommendationFailed) {
			abortWithError(c, http.StatusBadGateway, "Could not generate recommendations")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve recommendations")
		}
		return
	}

	c.JSON(http.StatusOK, WeeklyRecommendationsResponse{
		Topic:           topic,
		WeekNumber:      week,
		Recommendations: recs,
	})
}
