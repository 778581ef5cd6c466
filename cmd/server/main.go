package main

import (
	"alcyxob/fitness-coach/internal/api"
	"alcyxob/fitness-coach/internal/authz"
	"alcyxob/fitness-coach/internal/cache"
	"alcyxob/fitness-coach/internal/config"
	"alcyxob/fitness-coach/internal/repository"
	"alcyxob/fitness-coach/internal/repository/mongo"
	"alcyxob/fitness-coach/internal/repository/sqlite"
	"alcyxob/fitness-coach/internal/schedule"
	"alcyxob/fitness-coach/internal/service"
	"alcyxob/fitness-coach/internal/storage"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// stores is the set of repositories the services need, whichever driver backs them.
type stores struct {
	users       repository.UserRepository
	links       repository.LinkRepository
	assessments repository.AssessmentRepository
	plans       repository.WorkoutPlanRepository
	logs        repository.WorkoutLogRepository
	close       func() error
}

// @title Fitness Coach API
// @version 1.0
// @description API for trainers tracking their students' body composition and weekly workouts.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	setupLogger(cfg.Log.Level)
	slog.Info("Starting Fitness Coach Server...", "driver", cfg.Database.Driver, "requireLink", cfg.Authz.RequireLink)

	if cfg.JWT.Secret == "" {
		return errors.New("jwt.secret must be set")
	}

	// --- Database Connection ---
	st, err := openStores(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	// --- History cache (optional) ---
	redisCtx, cancelRedis := context.WithTimeout(context.Background(), 5*time.Second)
	redisClient, err := cache.NewClient(redisCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	cancelRedis()
	if err != nil {
		slog.Warn("redis unavailable, history cache disabled", "addr", cfg.Redis.Addr, "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	historyCache := cache.NewHistoryCache(redisClient, cfg.Redis.TTL)

	// --- Initialize Storage (optional) ---
	var fileStorage storage.FileStorage
	if cfg.S3.BucketName != "" {
		fileStorage, err = storage.NewS3Storage(context.Background(), cfg.S3)
		if err != nil {
			return fmt.Errorf("initialize S3 storage: %w", err)
		}
	} else {
		slog.Warn("s3.bucket_name not set, media endpoints disabled")
	}

	// --- Initialize Services ---
	guard := authz.NewGuard(st.links, authz.Policy{RequireLink: cfg.Authz.RequireLink})
	services := api.Services{
		Auth:       service.NewAuthService(st.users, cfg.JWT.Secret, cfg.JWT.Expiration),
		Trainer:    service.NewTrainerService(guard, st.users, st.links, st.assessments, st.plans, st.logs),
		Assessment: service.NewAssessmentService(guard, st.users, st.assessments, historyCache),
		Workout:    service.NewWorkoutService(guard, schedule.Default, st.users, st.plans, st.logs, fileStorage),
		Profile:    service.NewProfileService(guard, st.users, st.links),
	}

	// --- Initialize Gin Engine ---
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	api.SetupRoutes(router, cfg.JWT.Secret, services)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "addr", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	slog.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server exiting.")
	return nil
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}

func openStores(cfg config.DatabaseConfig) (*stores, error) {
	switch cfg.Driver {
	case "mongo", "":
		client, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		db := client.Database(cfg.Name)

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = mongo.DisconnectDB(client)
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		slog.Info("Database connection established.", "database", cfg.Name)

		return &stores{
			users:       mongo.NewMongoUserRepository(db),
			links:       mongo.NewMongoLinkRepository(db),
			assessments: mongo.NewMongoAssessmentRepository(db),
			plans:       mongo.NewMongoWorkoutPlanRepository(db),
			logs:        mongo.NewMongoWorkoutLogRepository(db),
			close:       func() error { return mongo.DisconnectDB(client) },
		}, nil

	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open SQLite database: %w", err)
		}
		slog.Info("Database opened.", "path", cfg.SQLitePath)

		return &stores{
			users:       sqlite.NewUserStore(db),
			links:       sqlite.NewLinkStore(db),
			assessments: sqlite.NewAssessmentStore(db),
			plans:       sqlite.NewWorkoutPlanStore(db),
			logs:        sqlite.NewWorkoutLogStore(db),
			close:       db.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}
