package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pathmentor/learning-app/internal/api"
	"pathmentor/learning-app/internal/archive"
	"pathmentor/learning-app/internal/config"
	"pathmentor/learning-app/internal/provider"
	"pathmentor/learning-app/internal/provider/github"
	"pathmentor/learning-app/internal/provider/openai"
	"pathmentor/learning-app/internal/provider/youtube"
	"pathmentor/learning-app/internal/repository"
	"pathmentor/learning-app/internal/repository/jsonfile"
	mongorepo "pathmentor/learning-app/internal/repository/mongo"
	"pathmentor/learning-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// @title Learning Path Mentor API
// @version 1.0
// @description API for generating multi-week learning paths, tracking progress, and serving adaptive study recommendations.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.Info("Starting Learning Path Mentor server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.WithError(err).Fatal("Could not load config")
	}
	log.Info("Configuration loaded.")

	// --- Persistence ---
	var (
		userRepo     repository.UserRepository
		pathRepo     repository.LearningPathRepository
		progressRepo repository.ProgressRepository
	)

	switch cfg.Storage.Driver {
	case "mongo":
		dbClient, err := mongorepo.ConnectDB(cfg.Storage.URI)
		if err != nil {
			log.WithError(err).Fatal("Could not connect to MongoDB")
		}
		defer func() {
			log.Info("Disconnecting MongoDB...")
			if err := mongorepo.DisconnectDB(dbClient); err != nil {
				log.WithError(err).Error("Failed to disconnect MongoDB")
			}
		}()
		appDB := dbClient.Database(cfg.Storage.Name)
		log.Info("Database connection established.")

		// Run index creation in the background.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
			defer cancel()
			if err := mongorepo.EnsureUserIndexes(ctx, appDB.Collection("users")); err != nil {
				log.WithError(err).Warn("user index creation failed")
			}
			if err := mongorepo.EnsureLearningPathIndexes(ctx, appDB.Collection("learning_paths")); err != nil {
				log.WithError(err).Warn("learning path index creation failed")
			}
			if err := mongorepo.EnsureProgressIndexes(ctx, appDB.Collection("progress")); err != nil {
				log.WithError(err).Warn("progress index creation failed")
			}
		}()

		userRepo = mongorepo.NewMongoUserRepository(appDB)
		pathRepo = mongorepo.NewMongoLearningPathRepository(appDB)
		progressRepo = mongorepo.NewMongoProgressRepository(appDB)

	case "jsonfile":
		store, err := jsonfile.Open(cfg.Storage.Dir, cfg.Storage.DegradedWrites, log)
		if err != nil {
			log.WithError(err).Fatal("Could not open JSON file store")
		}
		log.WithField("dir", cfg.Storage.Dir).Info("JSON file store opened.")
		userRepo = store.Users()
		pathRepo = store.Paths()
		progressRepo = store.Progress()

	default:
		log.WithField("driver", cfg.Storage.Driver).Fatal("Unknown storage driver")
	}

	// --- Providers ---
	curriculumProvider, err := openai.NewClient(cfg.OpenAI, log)
	if err != nil {
		log.WithError(err).Fatal("Could not initialize curriculum provider")
	}

	videoProvider, err := youtube.NewClient(context.Background(), cfg.YouTube.APIKey, log)
	if err != nil {
		log.WithError(err).Fatal("Could not initialize video provider")
	}
	repoProvider := github.NewClient(cfg.GitHub.BaseURL, cfg.GitHub.Token, log)

	var (
		videos provider.VideoProvider      = videoProvider
		repos  provider.RepositoryProvider = repoProvider
	)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		videos = provider.NewCachedVideoProvider(videos, rdb, cfg.Redis.TTL, log)
		repos = provider.NewCachedRepositoryProvider(repos, rdb, cfg.Redis.TTL, log)
		log.WithField("addr", cfg.Redis.Addr).Info("Resource search cache enabled.")
	}

	// --- Archive ---
	var archiver archive.PathArchiver = archive.Noop{}
	if cfg.Archive.BucketName != "" {
		archiver, err = archive.NewS3Archiver(cfg.Archive, log)
		if err != nil {
			log.WithError(err).Fatal("Could not initialize path archive")
		}
	}

	// --- Services ---
	log.Info("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	generator := service.NewCurriculumGenerator(curriculumProvider)
	enricher := service.NewResourceEnricher(videos, repos, cfg.Enrich.VideoLimit, cfg.Enrich.RepoLimit, log)
	pathService := service.NewLearningPathService(generator, enricher, pathRepo, archiver, log)
	tracker := service.NewProgressTracker(pathRepo, progressRepo, curriculumProvider, log)
	aggregator := service.NewDashboardAggregator(pathRepo, progressRepo)

	// --- HTTP ---
	router := gin.Default()
	api.SetupRoutes(router, cfg.JWT.Secret, authService, pathService, tracker, aggregator, videos, repos)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 180 * time.Second, // curriculum generation can be slow
		IdleTimeout:  120 * time.Second,
	}

	log.WithField("address", cfg.Server.Address).Info("Server starting")

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("ListenAndServe error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server exiting.")
}
