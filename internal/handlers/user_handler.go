package handlers

import (
	"github.com/cinetalkapp/cinetalk-backend/internal/middleware"
	"github.com/cinetalkapp/cinetalk-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	auth *services.AuthService
}

func NewUserHandler(auth *services.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// Me handles GET /api/users/me.
func (h *UserHandler) Me(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return fail(c, err)
	}
	user, err := h.auth.GetUser(userID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, user)
}

// Profile handles GET /api/users/:userId. Only public fields are returned.
func (h *UserHandler) Profile(c *fiber.Ctx) error {
	targetID, err := parseUserID(c)
	if err != nil {
		return fail(c, err)
	}
	user, err := h.auth.GetUser(targetID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, user.Public())
}
