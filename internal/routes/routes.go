package routes

import (
	"time"

	"github.com/cinetalkapp/cinetalk-backend/internal/config"
	"github.com/cinetalkapp/cinetalk-backend/internal/handlers"
	"github.com/cinetalkapp/cinetalk-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

// Handlers bundles every route handler so Setup stays a single call site.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Health     *handlers.HealthHandler
	User       *handlers.UserHandler
	Group      *handlers.GroupHandler
	Favorite   *handlers.FavoriteHandler
	Movie      *handlers.MovieHandler
	Review     *handlers.ReviewHandler
	Showtime   *handlers.ShowtimeHandler
	Moderation *handlers.ModerationHandler
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Auth endpoints are public, with a stricter rate limit of 10 req/min per IP.
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)

	protected := middleware.JWTProtected(cfg)
	optional := middleware.OptionalAuth(cfg)

	api.Post("/auth/logout", protected, h.Auth.Logout)
	api.Delete("/auth/account", protected, h.Auth.DeleteAccount)

	// Users
	api.Get("/users/me", protected, h.User.Me)
	api.Get("/users/:userId", h.User.Profile)
	api.Get("/users/:userId/reviews", h.Review.ListByUser)
	api.Get("/users/:userId/groups", optional, h.Group.ListForUser)

	// Groups. Reads take optional auth so private and closed groups resolve
	// visibility against the caller; writes require a token.
	api.Get("/groups/search", h.Group.Search)
	api.Get("/groups/by-genres", h.Group.ByGenres)
	api.Get("/groups/popular", h.Group.Popular)
	api.Post("/groups", protected, h.Group.Create)
	api.Get("/groups/:id", optional, h.Group.Get)
	api.Put("/groups/:id", protected, h.Group.Update)
	api.Delete("/groups/:id", protected, h.Group.Delete)
	api.Post("/groups/:id/join", protected, h.Group.Join)
	api.Post("/groups/:id/join-request", protected, h.Group.RequestJoin)
	api.Post("/groups/:id/members/:userId/approve", protected, h.Group.ApproveRequest)
	api.Post("/groups/:id/members", protected, h.Group.AddMember)
	api.Delete("/groups/:id/members/:userId", protected, h.Group.RemoveMember)
	api.Put("/groups/:id/members/:userId/role", protected, h.Group.UpdateMemberRole)

	// Favorites
	api.Post("/favorites", protected, h.Favorite.Add)
	api.Delete("/favorites/:movieId/:type", protected, h.Favorite.Remove)
	api.Delete("/favorites/:movieId/:type/group/:groupId", protected, h.Favorite.Remove)
	api.Get("/favorites/user/:userId/:type", optional, h.Favorite.ListForUser)
	api.Get("/favorites/group/:groupId", optional, h.Favorite.ListForGroup)
	api.Get("/favorites/status/:movieIds", optional, h.Favorite.Status)

	// Movies and reviews
	api.Get("/movies/:id", h.Movie.Get)
	api.Get("/movies/:id/reviews", h.Movie.Reviews)
	api.Post("/reviews", protected, h.Review.Create)
	api.Put("/reviews/:id", protected, h.Review.Update)
	api.Delete("/reviews/:id", protected, h.Review.Delete)
	api.Post("/reviews/:id/react", protected, h.Review.React)

	// Showtimes
	api.Get("/showtimes", h.Showtime.Get)

	// Moderation
	api.Post("/reports", protected, h.Moderation.CreateReport)

	admin := api.Group("/admin", protected, middleware.AdminRequired(db, cfg))
	admin.Get("/reports", h.Moderation.ListReports)
	admin.Put("/reports/:id", h.Moderation.ActionReport)
}
