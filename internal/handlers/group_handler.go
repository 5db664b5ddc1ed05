package handlers

import (
	"strconv"
	"strings"

	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
	"github.com/cinetalkapp/cinetalk-backend/internal/dto"
	"github.com/cinetalkapp/cinetalk-backend/internal/middleware"
	"github.com/cinetalkapp/cinetalk-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type GroupHandler struct {
	groups *services.GroupService
}

func NewGroupHandler(groups *services.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

func parseGroupID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperr.Invalid("invalid group id")
	}
	return id, nil
}

func parseUserID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return uuid.Nil, apperr.Invalid("invalid user id")
	}
	return id, nil
}

// Create handles POST /api/groups
func (h *GroupHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	group, err := h.groups.Create(middleware.Identity(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, group)
}

// Get handles GET /api/groups/:id (auth optional, visibility-gated)
func (h *GroupHandler) Get(c *fiber.Ctx) error {
	id, err := parseGroupID(c)
	if err != nil {
		return fail(c, err)
	}

	group, err := h.groups.GetByID(id, middleware.Identity(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, group)
}

// Update handles PUT /api/groups/:id (owner only)
func (h *GroupHandler) Update(c *fiber.Ctx) error {
	id, err := parseGroupID(c)
	if err != nil {
		return fail(c, err)
	}

	var req dto.UpdateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	group, err := h.groups.Update(id, middleware.Identity(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, group)
}

// Delete handles DELETE /api/groups/:id (owner only, cascades)
func (h *GroupHandler) Delete(c *fiber.Ctx) error {
	id, err := parseGroupID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.groups.Delete(id, middleware.Identity(c)); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "group deleted"})
}

// Search handles GET /api/groups/search?query=&limit=
func (h *GroupHandler) Search(c *fiber.Ctx) error {
	results, err := h.groups.Search(c.Query("query"), c.QueryInt("limit", 20))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, results)
}

// ByGenres handles GET /api/groups/by-genres?genres=28,18&matchType=any|all
func (h *GroupHandler) ByGenres(c *fiber.Ctx) error {
	raw := strings.Split(c.Query("genres"), ",")
	genreIDs := make([]int, 0, len(raw))
	for _, part := range raw {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.Err("genres must be a comma-separated list of ids"))
		}
		genreIDs = append(genreIDs, id)
	}

	matchType := c.Query("matchType", "any")
	if matchType != "any" && matchType != "all" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Err("matchType must be any or all"))
	}

	results, err := h.groups.ByGenres(genreIDs, matchType == "all")
	if err != nil {
		return fail(c, err)
	}
	return ok(c, results)
}

// Popular handles GET /api/groups/popular?limit=
func (h *GroupHandler) Popular(c *fiber.Ctx) error {
	results, err := h.groups.Popular(c.QueryInt("limit", 10))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, results)
}

// ListForUser handles GET /api/users/:userId/groups.
func (h *GroupHandler) ListForUser(c *fiber.Ctx) error {
	targetID, err := parseUserID(c)
	if err != nil {
		return fail(c, err)
	}
	results, err := h.groups.ListForUser(targetID, middleware.Identity(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, results)
}

// Join handles POST /api/groups/:id/join (public groups only)
func (h *GroupHandler) Join(c *fiber.Ctx) error {
	id, err := parseGroupID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.groups.Join(id, middleware.Identity(c)); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "joined group"})
}

// RequestJoin handles POST /api/groups/:id/join-request
func (h *GroupHandler) RequestJoin(c *fiber.Ctx) error {
	id, err := parseGroupID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.groups.RequestJoin(id, middleware.Identity(c)); err != nil {
		return fail(c, err)
	}
	return created(c, fiber.Map{"message": "join request filed"})
}

// ApproveRequest handles POST /api/groups/:id/members/:userId/approve
func (h *GroupHandler) ApproveRequest(c *fiber.Ctx) error {
	id, err := parseGroupID(c)
	if err != nil {
		return fail(c, err)
	}
	targetID, err := parseUserID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.groups.Approve(id, middleware.Identity(c), targetID); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "join request approved"})
}

// AddMember handles POST /api/groups/:id/members (owner only)
func (h *GroupHandler) AddMember(c *fiber.Ctx) error {
	id, err := parseGroupID(c)
	if err != nil {
		return fail(c, err)
	}

	var req dto.AddMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := h.groups.AddMember(id, middleware.Identity(c), &req); err != nil {
		return fail(c, err)
	}
	return created(c, fiber.Map{"message": "member added"})
}

// RemoveMember handles DELETE /api/groups/:id/members/:userId
func (h *GroupHandler) RemoveMember(c *fiber.Ctx) error {
	id, err := parseGroupID(c)
	if err != nil {
		return fail(c, err)
	}
	targetID, err := parseUserID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.groups.RemoveMember(id, middleware.Identity(c), targetID); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "member removed"})
}

// UpdateMemberRole handles PUT /api/groups/:id/members/:userId/role (owner only)
func (h *GroupHandler) UpdateMemberRole(c *fiber.Ctx) error {
	id, err := parseGroupID(c)
	if err != nil {
		return fail(c, err)
	}
	targetID, err := parseUserID(c)
	if err != nil {
		return fail(c, err)
	}

	var req dto.UpdateMemberRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := h.groups.UpdateMemberRole(id, middleware.Identity(c), targetID, req.Role); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "role updated"})
}
