package handlers

import (
	"strconv"

	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
	"github.com/cinetalkapp/cinetalk-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type MovieHandler struct {
	movies  *services.MovieService
	reviews *services.ReviewService
}

func NewMovieHandler(movies *services.MovieService, reviews *services.ReviewService) *MovieHandler {
	return &MovieHandler{movies: movies, reviews: reviews}
}

// Get handles GET /api/movies/:id. The movie is pulled from the catalog
// provider on first access and served from the local table afterwards.
func (h *MovieHandler) Get(c *fiber.Ctx) error {
	movieID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fail(c, apperr.Invalid("invalid movie id"))
	}
	movie, err := h.movies.Ensure(movieID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, movie)
}

// Reviews handles GET /api/movies/:id/reviews.
func (h *MovieHandler) Reviews(c *fiber.Ctx) error {
	movieID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fail(c, apperr.Invalid("invalid movie id"))
	}
	reviews, err := h.reviews.ListByMovie(movieID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, reviews)
}
