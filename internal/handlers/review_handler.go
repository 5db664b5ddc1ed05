package handlers

import (
	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
	"github.com/cinetalkapp/cinetalk-backend/internal/dto"
	"github.com/cinetalkapp/cinetalk-backend/internal/middleware"
	"github.com/cinetalkapp/cinetalk-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ReviewHandler struct {
	reviews *services.ReviewService
}

func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

func parseReviewID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperr.Invalid("invalid review id")
	}
	return id, nil
}

// Create handles POST /api/reviews.
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	review, err := h.reviews.Create(middleware.Identity(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, review)
}

// Update handles PUT /api/reviews/:id.
func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	id, err := parseReviewID(c)
	if err != nil {
		return fail(c, err)
	}
	var req dto.UpdateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	review, err := h.reviews.Update(id, middleware.Identity(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, review)
}

// Delete handles DELETE /api/reviews/:id.
func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	id, err := parseReviewID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.reviews.Delete(id, middleware.Identity(c)); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"deleted": true})
}

// React handles POST /api/reviews/:id/react. Sending the same reaction twice
// withdraws it, sending the opposite one switches it.
func (h *ReviewHandler) React(c *fiber.Ctx) error {
	id, err := parseReviewID(c)
	if err != nil {
		return fail(c, err)
	}
	var req dto.ReactionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	review, err := h.reviews.React(id, middleware.Identity(c), req.Reaction)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, review)
}

// ListByUser handles GET /api/users/:userId/reviews.
func (h *ReviewHandler) ListByUser(c *fiber.Ctx) error {
	targetID, err := parseUserID(c)
	if err != nil {
		return fail(c, err)
	}
	reviews, err := h.reviews.ListByUser(targetID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, reviews)
}
