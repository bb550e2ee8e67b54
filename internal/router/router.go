package router

import (
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/snapgram-app/backend/internal/handlers"
	"github.com/snapgram-app/backend/internal/middleware"
	"github.com/snapgram-app/backend/internal/models"
	"github.com/snapgram-app/backend/internal/repositories"
	"github.com/snapgram-app/backend/internal/services"
	"github.com/snapgram-app/backend/internal/storage"
	"github.com/snapgram-app/backend/pkg/cache"
	"github.com/snapgram-app/backend/pkg/config"
	"github.com/snapgram-app/backend/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// Deps bundles everything the routes need.
type Deps struct {
	Config       *config.Config
	Postgres     *gorm.DB
	Mongo        *mongo.Client
	FirebaseAuth *auth.Client
	FileStore    storage.FileStore
	AuthorCache  *cache.Cache
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Deps) error {
	// AutoMigrate PostgreSQL models
	if err := deps.Postgres.AutoMigrate(&models.User{}, &models.SavedPost{}); err != nil {
		return err
	}
	logger.Log.Info("PostgreSQL auto-migrations completed")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Repositories and services ---
	userRepo := repositories.NewPostgresUserRepository(deps.Postgres)
	postRepo := repositories.NewMongoPostRepository(deps.Mongo.Database("snapgram"))
	savedPostRepo := repositories.NewPostgresSavedPostRepository(deps.Postgres)

	lifecycle := services.NewPostLifecycle(postRepo, savedPostRepo, deps.FileStore)
	profileService := services.NewProfileService(userRepo, deps.FileStore)

	// --- Public routes ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, deps.FirebaseAuth, deps.Config.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)

	if local, ok := deps.FileStore.(*storage.LocalStorage); ok {
		fileHandler := handlers.NewFileHandler(local)
		fileHandler.RegisterFileRoutes(e)
	}

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())

	userHandler := handlers.NewUserHandler(userRepo, profileService, lifecycle)
	userHandler.RegisterUserRoutes(api)

	postHandler := handlers.NewPostHandler(lifecycle)
	postHandler.RegisterPostRoutes(api)

	feedHandler := handlers.NewFeedHandler(lifecycle, userRepo, savedPostRepo, deps.AuthorCache)
	feedHandler.RegisterFeedRoutes(api)

	savedPostHandler := handlers.NewSavedPostHandler(lifecycle, savedPostRepo)
	savedPostHandler.RegisterSavedPostRoutes(api)

	logger.Log.Info("All routes configured")
	return nil
}
