package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/snapgram-app/backend/internal/router"
	"github.com/snapgram-app/backend/internal/storage"
	"github.com/snapgram-app/backend/pkg/cache"
	"github.com/snapgram-app/backend/pkg/config"
	"github.com/snapgram-app/backend/pkg/firebase"
	"github.com/snapgram-app/backend/pkg/logger"
	"github.com/snapgram-app/backend/pkg/metrics"
	"github.com/snapgram-app/backend/pkg/validators"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger.Init(cfg.Env)
	defer logger.Sync()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	ctx := context.Background()

	// Firebase login is optional; without credentials only local auth works.
	var firebaseApp *firebase.App
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err = firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
	} else {
		logger.Log.Warn("FIREBASE_CREDENTIALS_PATH not set, firebase login disabled")
	}

	fileStore, err := newFileStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	// Create Echo instance
	e := echo.New()
	e.Validator = validators.NewValidator()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	deps := router.Deps{
		Config:      cfg,
		Postgres:    db.Postgres,
		Mongo:       db.Mongo,
		FileStore:   fileStore,
		AuthorCache: cache.New(cfg.RedisAddr),
	}
	if firebaseApp != nil {
		deps.FirebaseAuth = firebaseApp.AuthClient
	}
	if err := router.SetupRoutes(e, deps); err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}

	// Prometheus listener on its own port
	go func() {
		if err := metrics.Serve(cfg.MetricsPort); err != nil {
			logger.Log.Error("metrics listener stopped", zap.Error(err))
		}
	}()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

func newFileStore(ctx context.Context, cfg *config.Config) (storage.FileStore, error) {
	if cfg.StorageBackend == "gcs" {
		return storage.NewGCSStorage(ctx, cfg.GCSBucket, cfg.FirebaseCredentialsPath)
	}
	return storage.NewLocalStorage(cfg.LocalStoragePath, cfg.PublicBaseURL)
}
