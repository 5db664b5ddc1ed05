package handlers

import (
	"strconv"
	"strings"

	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
	"github.com/cinetalkapp/cinetalk-backend/internal/dto"
	"github.com/cinetalkapp/cinetalk-backend/internal/middleware"
	"github.com/cinetalkapp/cinetalk-backend/internal/models"
	"github.com/cinetalkapp/cinetalk-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type FavoriteHandler struct {
	favorites *services.FavoriteService
}

func NewFavoriteHandler(favorites *services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites}
}

func parseFavoriteType(raw string) (models.FavoriteType, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Invalid("invalid favorite type")
	}
	t := models.FavoriteType(n)
	if !t.Valid() {
		return 0, apperr.Invalid("invalid favorite type")
	}
	return t, nil
}

// Add handles POST /api/favorites.
func (h *FavoriteHandler) Add(c *fiber.Ctx) error {
	var req dto.AddFavoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := h.favorites.Add(middleware.Identity(c), &req); err != nil {
		return fail(c, err)
	}
	return created(c, fiber.Map{"movie_id": req.MovieID, "type": req.Type})
}

// Remove handles DELETE /api/favorites/:movieId/:type and its group variant
// DELETE /api/favorites/:movieId/:type/group/:groupId.
func (h *FavoriteHandler) Remove(c *fiber.Ctx) error {
	movieID, err := strconv.Atoi(c.Params("movieId"))
	if err != nil {
		return fail(c, apperr.Invalid("invalid movie id"))
	}
	favType, err := parseFavoriteType(c.Params("type"))
	if err != nil {
		return fail(c, err)
	}

	var groupID *uuid.UUID
	if raw := c.Params("groupId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fail(c, apperr.Invalid("invalid group id"))
		}
		groupID = &id
	}

	if err := h.favorites.Remove(middleware.Identity(c), movieID, favType, groupID); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"removed": true})
}

// ListForUser handles GET /api/favorites/user/:userId/:type.
func (h *FavoriteHandler) ListForUser(c *fiber.Ctx) error {
	targetID, err := parseUserID(c)
	if err != nil {
		return fail(c, err)
	}
	favType, err := parseFavoriteType(c.Params("type"))
	if err != nil {
		return fail(c, err)
	}
	entries, err := h.favorites.ListForUser(targetID, favType, middleware.Identity(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, entries)
}

// ListForGroup handles GET /api/favorites/group/:groupId.
func (h *FavoriteHandler) ListForGroup(c *fiber.Ctx) error {
	groupID, err := uuid.Parse(c.Params("groupId"))
	if err != nil {
		return fail(c, apperr.Invalid("invalid group id"))
	}
	resp, err := h.favorites.ListForGroup(groupID, middleware.Identity(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, resp)
}

// Status handles GET /api/favorites/status/:movieIds where movieIds is a
// comma-separated list of catalog ids.
func (h *FavoriteHandler) Status(c *fiber.Ctx) error {
	parts := strings.Split(c.Params("movieIds"), ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.Atoi(p)
		if err != nil {
			return fail(c, apperr.Invalid("movieIds must be a comma-separated list of ids"))
		}
		ids = append(ids, id)
	}
	status, err := h.favorites.Status(middleware.Identity(c), ids)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, status)
}
