package handlers

import (
	"errors"
	"log/slog"

	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
	"github.com/cinetalkapp/cinetalk-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// fail translates a service error to its HTTP response. Internal details are
// logged server-side and never shown to the caller.
func fail(c *fiber.Ctx, err error) error {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Internal("unexpected error", err)
	}

	if ae.Kind == apperr.KindInternal {
		slog.Error("request failed",
			"method", c.Method(), "path", c.Path(), "error", ae.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Err("internal server error"))
	}
	if ae.Kind == apperr.KindUpstream {
		slog.Error("upstream provider failed",
			"method", c.Method(), "path", c.Path(), "error", ae.Error())
	}
	return c.Status(ae.Kind.Status()).JSON(dto.Err(ae.Msg))
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.Err("invalid request body"))
}

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
}
