package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/joho/godotenv"

	"github.com/cinetalkapp/cinetalk-backend/internal/cache"
	"github.com/cinetalkapp/cinetalk-backend/internal/config"
	"github.com/cinetalkapp/cinetalk-backend/internal/database"
	"github.com/cinetalkapp/cinetalk-backend/internal/handlers"
	"github.com/cinetalkapp/cinetalk-backend/internal/logging"
	"github.com/cinetalkapp/cinetalk-backend/internal/middleware"
	"github.com/cinetalkapp/cinetalk-backend/internal/providers/catalog"
	"github.com/cinetalkapp/cinetalk-backend/internal/providers/showtimes"
	"github.com/cinetalkapp/cinetalk-backend/internal/routes"
	"github.com/cinetalkapp/cinetalk-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(db)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cleanupDone)

	// Showtimes responses are cached on disk between feed fetches
	fileCache, err := cache.New(cfg.CacheDir, cfg.CacheTTL)
	if err != nil {
		slog.Error("cache directory unavailable", "dir", cfg.CacheDir, "error", err)
		os.Exit(1)
	}

	// Upstream providers
	catalogClient := catalog.New(cfg.CatalogAPIURL, cfg.CatalogAPIKey, cfg.ProviderTimeout)
	showtimesClient := showtimes.New(cfg.ShowtimesFeedURL, cfg.ProviderTimeout)

	// Services
	authService := services.NewAuthService(db, cfg)
	movieService := services.NewMovieService(db, catalogClient)
	groupService := services.NewGroupService(db)
	favoriteService := services.NewFavoriteService(db, groupService, movieService)
	reviewService := services.NewReviewService(db, movieService)
	reportService := services.NewReportService(db)
	showtimeService := services.NewShowtimeService(showtimesClient, fileCache)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, db, routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Health:     handlers.NewHealthHandler(db),
		User:       handlers.NewUserHandler(authService),
		Group:      handlers.NewGroupHandler(groupService),
		Favorite:   handlers.NewFavoriteHandler(favoriteService),
		Movie:      handlers.NewMovieHandler(movieService, reviewService),
		Review:     handlers.NewReviewHandler(reviewService),
		Showtime:   handlers.NewShowtimeHandler(showtimeService),
		Moderation: handlers.NewModerationHandler(reportService),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Close database connections
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
