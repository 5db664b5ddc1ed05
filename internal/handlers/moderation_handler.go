package handlers

import (
	"github.com/cinetalkapp/cinetalk-backend/internal/dto"
	"github.com/cinetalkapp/cinetalk-backend/internal/middleware"
	"github.com/cinetalkapp/cinetalk-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ModerationHandler struct {
	reports *services.ReportService
}

func NewModerationHandler(reports *services.ReportService) *ModerationHandler {
	return &ModerationHandler{reports: reports}
}

// CreateReport handles POST /api/reports
func (h *ModerationHandler) CreateReport(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return fail(c, err)
	}

	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	report, err := h.reports.Create(userID, &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, report)
}

// ListReports handles GET /api/admin/reports
func (h *ModerationHandler) ListReports(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	reports, total, err := h.reports.List(c.Query("status"), limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": reports, "total": total})
}

// ActionReport handles PUT /api/admin/reports/:id
func (h *ModerationHandler) ActionReport(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Err("invalid report id"))
	}

	var req dto.ActionReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := h.reports.Action(reportID, &req); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "report updated"})
}
