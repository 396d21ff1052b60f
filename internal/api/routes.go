package api

import (
	"net/http"

	"pathmentor/learning-app/internal/provider"
	"pathmentor/learning-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	pathService service.LearningPathService,
	tracker service.ProgressTracker,
	aggregator service.DashboardAggregator,
	videos provider.VideoProvider,
	repos provider.RepositoryProvider,
) {

	authHandler := NewAuthHandler(authService)
	pathHandler := NewLearningPathHandler(pathService)
	progressHandler := NewProgressHandler(tracker)
	dashboardHandler := NewDashboardHandler(aggregator)
	resourceHandler := NewResourceHandler(videos, repos)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			username, _ := getUsernameFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "username": username})
		})

		// --- Learning Path Routes ---
		pathGroup := protected.Group("/learning-paths")
		{
			// POST /api/v1/learning-paths - generate, enrich and store a path
			pathGroup.POST("", pathHandler.CreateLearningPath)
			// GET /api/v1/learning-paths - all paths for the current user
			pathGroup.GET("", pathHandler.GetLearningPaths)
			// GET /api/v1/learning-paths/{topic} - case-insensitive topic lookup
			pathGroup.GET("/:topic", pathHandler.GetLearningPathByTopic)
		}

		// --- Progress Routes ---
		progressGroup := protected.Group("/progress")
		{
			// POST /api/v1/progress - record an update and refresh recommendations
			progressGroup.POST("", progressHandler.UpdateProgress)
			// GET /api/v1/progress/{topic}/weekly/{week}
			progressGroup.GET("/:topic/weekly/:week", progressHandler.GetWeeklyRecommendations)
		}

		// GET /api/v1/dashboard
		protected.GET("/dashboard", dashboardHandler.GetDashboard)

		// --- Resource Browsing ---
		resourceGroup := protected.Group("/resources")
		{
			resourceGroup.GET("/videos/:topic", resourceHandler.GetVideos)
			resourceGroup.GET("/repositories/:topic", resourceHandler.GetRepositories)
		}
	}
}
