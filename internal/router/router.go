package router

import (
	"github.com/anonto42/campus-board/backend/internal/handlers"
	"github.com/anonto42/campus-board/backend/internal/middleware"
	"github.com/anonto42/campus-board/backend/internal/models"
	"github.com/anonto42/campus-board/backend/internal/repositories"
	"github.com/anonto42/campus-board/backend/internal/services"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// Dependencies are the repositories and services the routes are built from
type Dependencies struct {
	Events   repositories.ClubAdRepository[models.EventAd]
	Products repositories.ClubAdRepository[models.ProductAd]
	Others   repositories.ClubAdRepository[models.OtherAd]
	Users    repositories.UserRepository // nil disables the auth routes

	Sync       *services.SyncService
	Feed       *services.FeedService
	Engagement *services.EngagementService

	JWTSecret    string
	FirebaseAuth middleware.TokenVerifier // optional
	CORS         eMiddleware.CORSConfig
	Log          logrus.FieldLogger
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, deps Dependencies) {
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORSWithConfig(deps.CORS))
	deps.Log.Info("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	log := deps.Log

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	var firebaseAuth echo.MiddlewareFunc
	if deps.FirebaseAuth != nil {
		firebaseAuth = middleware.FirebaseAuthMiddleware(deps.FirebaseAuth, deps.Users)
	}
	requireUser := middleware.JWTAuthMiddleware(deps.JWTSecret, firebaseAuth)

	// --- Auth ---
	if deps.Users != nil {
		authHandler := handlers.NewAuthHandler(deps.Users, deps.FirebaseAuth, deps.JWTSecret)
		authHandler.RegisterAuthRoutes(e.Group("/api/v1/auth"))
		handlers.NewUserHandler(deps.Users).RegisterProfileRoutes(e.Group("/api/v1"), requireUser)
		log.Info("Auth and profile routes configured.")
	} else {
		log.Warn("No user store configured, auth and profile routes disabled.")
	}

	// --- Student ads ---
	ads := e.Group("/api/v1/ads")
	syncHandler := handlers.NewSyncHandler(deps.Sync)
	syncHandler.RegisterSyncRoutes(ads)
	adHandler := handlers.NewAdHandler(deps.Feed, deps.Engagement)
	adHandler.RegisterEngagementRoutes(ads, requireUser)
	adHandler.RegisterPublicRoutes(ads)
	log.Info("Student ad routes configured.")

	// --- Club ads (protected) ---
	clubs := e.Group("/api/v1/clubs", requireUser)
	writeGuard := middleware.RequireRole(models.RoleClub, models.RoleAdmin)
	handlers.NewClubAdHandler[models.EventAd, models.EventAdRequest](deps.Events, "/event-ads").
		RegisterClubAdRoutes(clubs, writeGuard)
	handlers.NewClubAdHandler[models.ProductAd, models.ProductAdRequest](deps.Products, "/product-ads").
		RegisterClubAdRoutes(clubs, writeGuard)
	handlers.NewClubAdHandler[models.OtherAd, models.OtherAdRequest](deps.Others, "/other-ads").
		RegisterClubAdRoutes(clubs, writeGuard)
	log.Info("Club ad routes configured.")

	log.Info("All routes configured.")
}
