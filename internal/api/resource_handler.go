package api

import (
	"net/http"
	"strconv"

	"pathmentor/learning-app/internal/provider"

	"github.com/gin-gonic/gin"
)

// ResourceHandler exposes raw resource search for browsing outside of a
// learning path.
type ResourceHandler struct {
	videos provider.VideoProvider
	repos  provider.RepositoryProvider
}

// NewResourceHandler creates a new ResourceHandler.
func NewResourceHandler(videos provider.VideoProvider, repos provider.RepositoryProvider) *ResourceHandler {
	return &ResourceHandler{videos: videos, repos: repos}
}

// GetVideos godoc
// @Summary Search educational videos
// @Description Searches for tutorial videos about a topic. The optional max_results query parameter caps the result count (default 10).
// @Tags Resources
// @Produce json
// @Param topic path string true "Topic"
// @Param max_results query int false "Maximum number of results"
// @Success 200 {object} gin.H "Video results"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /resources/videos/{topic} [get]
func (h *ResourceHandler) GetVideos(c *gin.Context) {
	topic := c.Param("topic")
	limit := parseMaxResults(c, 10)

	hits, err := h.videos.SearchVideos(c.Request.Context(), topic, limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Video search failed")
		return
	}
	if hits == nil {
		hits = []provider.VideoHit{}
	}

	c.JSON(http.StatusOK, gin.H{"topic": topic, "videos": hits})
}

// GetRepositories godoc
// @Summary Search example repositories
// @Description Searches for popular open source repositories about a topic, ordered by stars.
// @Tags Resources
// @Produce json
// @Param topic path string true "Topic"
// @Param max_results query int false "Maximum number of results"
// @Success 200 {object} gin.H "Repository results"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /resources/repositories/{topic} [get]
func (h *ResourceHandler) GetRepositories(c *gin.Context) {
	topic := c.Param("topic")
	limit := parseMaxResults(c, 10)

	hits, err := h.repos.SearchRepositories(c.Request.Context(), topic, limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Repository search failed")
		return
	}
	if hits == nil {
		hits = []provider.RepoHit{}
	}

	c.JSON(http.StatusOK, gin.H{"topic": topic, "repositories": hits})
}

func parseMaxResults(c *gin.Context, fallback int) int {
	raw := c.Query("max_results")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	if n > 25 {
		return 25
	}
	return n
}
