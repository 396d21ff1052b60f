package api

import (
	"net/http"

	"pathmentor/learning-app/internal/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler holds the dashboard aggregation dependency.
type DashboardHandler struct {
	aggregator service.DashboardAggregator
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(aggregator service.DashboardAggregator) *DashboardHandler {
	return &DashboardHandler{aggregator: aggregator}
}

// GetDashboard godoc
// @Summary Get dashboard statistics
// @Description Aggregates unit counts, estimated progress, and the next deadline across all of the user's learning paths.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} service.DashboardStats "Dashboard statistics"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	stats, err := h.aggregator.Stats(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to compute dashboard statistics")
		return
	}

	c.JSON(http.StatusOK, stats)
}
