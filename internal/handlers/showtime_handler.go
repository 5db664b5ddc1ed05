package handlers

import (
	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
	"github.com/cinetalkapp/cinetalk-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ShowtimeHandler struct {
	showtimes *services.ShowtimeService
}

func NewShowtimeHandler(showtimes *services.ShowtimeService) *ShowtimeHandler {
	return &ShowtimeHandler{showtimes: showtimes}
}

// Get handles GET /api/showtimes?area=. Responses are served from the file
// cache when a fresh entry exists for the area.
func (h *ShowtimeHandler) Get(c *fiber.Ctx) error {
	area := c.Query("area")
	if area == "" {
		return fail(c, apperr.Invalid("area is required"))
	}
	feed, err := h.showtimes.Get(area)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, feed)
}
