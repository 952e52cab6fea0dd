package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/campus-board/backend/internal/middleware"
	"github.com/anonto42/campus-board/backend/internal/models"
	"github.com/anonto42/campus-board/backend/internal/repositories"
	"github.com/anonto42/campus-board/backend/internal/router"
	"github.com/anonto42/campus-board/backend/internal/services"
	"github.com/anonto42/campus-board/backend/internal/worker"
	"github.com/anonto42/campus-board/backend/pkg/config"
	"github.com/anonto42/campus-board/backend/pkg/firebase"
	"github.com/anonto42/campus-board/backend/pkg/lock"
	"github.com/anonto42/campus-board/backend/pkg/logger"
	"github.com/anonto42/campus-board/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func main() {
	bootLog := logrus.New()
	config.LoadEnv(bootLog)

	// Load configuration
	cfg := config.Load()

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Format = cfg.LogFormat
	logCfg.File = cfg.LogFile
	log, err := logger.New(logCfg)
	if err != nil {
		bootLog.WithError(err).Fatal("Failed to configure logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize databases")
	}
	defer db.CloseDB()

	deps := router.Dependencies{
		JWTSecret: cfg.JWTSecret,
		CORS:      cfg.CORSConfig(),
		Log:       log,
	}

	var (
		store repositories.AdEnvelopeRepository
		runs  repositories.SyncRunRepository = repositories.NewMemorySyncRunRepository()
	)
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn("Using in-memory storage, data is lost on restart")
		deps.Events = repositories.NewMemoryClubAdRepository[models.EventAd](models.AdTypeEvent)
		deps.Products = repositories.NewMemoryClubAdRepository[models.ProductAd](models.AdTypeProduct)
		deps.Others = repositories.NewMemoryClubAdRepository[models.OtherAd](models.AdTypeOther)
		deps.Users = repositories.NewMemoryUserRepository()
		store = repositories.NewMemoryAdEnvelopeRepository()
	} else {
		mdb := db.Mongo.Database(cfg.MongoDatabase)
		deps.Events = repositories.NewMongoEventAdRepository(mdb)
		deps.Products = repositories.NewMongoProductAdRepository(mdb)
		deps.Others = repositories.NewMongoOtherAdRepository(mdb)
		envelopes := repositories.NewMongoAdEnvelopeRepository(mdb)
		if err := envelopes.EnsureIndexes(ctx); err != nil {
			log.WithError(err).Fatal("Failed to create student ad indexes")
		}
		store = envelopes
	}

	if db.Postgres != nil {
		if err := db.Postgres.AutoMigrate(&models.User{}, &models.SyncRun{}); err != nil {
			log.WithError(err).Fatal("Failed to auto migrate models")
		}
		log.Info("PostgreSQL auto-migrations completed.")
		deps.Users = repositories.NewPostgresUserRepository(db.Postgres)
		runs = repositories.NewPostgresSyncRunRepository(db.Postgres)
	}

	var locker lock.Locker = lock.NewLocalLocker()
	if db.Redis != nil {
		locker = lock.NewRedisLocker(db.Redis, "campusboard:lock:")
		log.Info("Using Redis resync lock.")
	}

	// Initialize Firebase
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize Firebase")
	}
	if firebaseApp != nil {
		deps.FirebaseAuth = middleware.TokenVerifier(firebaseApp.AuthClient)
	}

	deps.Sync = services.NewSyncService(store, runs, locker, log, deps.Events, deps.Products, deps.Others)
	deps.Feed = services.NewFeedService(store)
	deps.Engagement = services.NewEngagementService(store)

	if cfg.ResyncSchedule != "" {
		w, err := worker.NewResyncWorker(deps.Sync, cfg.ResyncSchedule, services.SyncMode(cfg.ResyncMode), log)
		if err != nil {
			log.WithError(err).Fatal("Failed to configure resync worker")
		}
		w.Start()
		defer w.Stop()
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	router.SetupMiddleware(e, deps)
	router.SetupRoutes(e, deps)

	go func() {
		log.WithField("port", cfg.Port).Info("Starting HTTP server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
