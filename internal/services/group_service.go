package services

import (
	"errors"
	"strings"

	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
	"github.com/cinetalkapp/cinetalk-backend/internal/authz"
	"github.com/cinetalkapp/cinetalk-backend/internal/dto"
	"github.com/cinetalkapp/cinetalk-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GroupService owns group lifecycle, membership rows, and role transitions.
// Every access decision goes through the authz package.
type GroupService struct {
	db *gorm.DB
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{db: db}
}

func (s *GroupService) getGroup(tx *gorm.DB, id uuid.UUID) (*models.Group, error) {
	var group models.Group
	if err := tx.Preload("Genres").First(&group, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("group not found")
		}
		return nil, apperr.Internal("failed to load group", err)
	}
	return &group, nil
}

// roleOf returns the actor's membership role in a group, RoleNone if no row
// exists or the actor is anonymous.
func (s *GroupService) roleOf(tx *gorm.DB, groupID, userID uuid.UUID) models.GroupRole {
	if userID == uuid.Nil {
		return models.RoleNone
	}
	var member models.GroupMember
	if err := tx.First(&member, "group_id = ? AND user_id = ?", groupID, userID).Error; err != nil {
		return models.RoleNone
	}
	return member.Role
}

func (s *GroupService) memberCount(tx *gorm.DB, groupID uuid.UUID) int64 {
	var count int64
	tx.Model(&models.GroupMember{}).
		Where("group_id = ? AND role <> ?", groupID, models.RolePending).
		Count(&count)
	return count
}

func nameConflict(tx *gorm.DB, name string, excludeID uuid.UUID) bool {
	var count int64
	q := tx.Model(&models.Group{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	q.Count(&count)
	return count > 0
}

func validateGenreIDs(ids []int) error {
	for _, id := range ids {
		if id <= 0 {
			return apperr.Invalid("genre ids must be positive")
		}
	}
	return nil
}

// Create makes a group and its owner membership row in one transaction, so a
// group row without an owner row is never observable.
func (s *GroupService) Create(actor authz.Actor, req *dto.CreateGroupRequest) (*dto.GroupResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 100 {
		return nil, apperr.Invalid("group name is required and must be at most 100 characters")
	}

	visibility := models.GroupVisibility(req.Visibility)
	if req.Visibility == "" {
		visibility = models.VisibilityPublic
	}
	if !visibility.Valid() {
		return nil, apperr.Invalid("visibility must be public, private or closed")
	}
	if req.ThemeID != nil && *req.ThemeID <= 0 {
		return nil, apperr.Invalid("theme id must be positive")
	}
	if err := validateGenreIDs(req.GenreIDs); err != nil {
		return nil, err
	}

	if nameConflict(s.db, name, uuid.Nil) {
		return nil, apperr.Conflict("a group with this name already exists")
	}

	group := models.Group{
		ID:          uuid.New(),
		Name:        name,
		Description: req.Description,
		Visibility:  visibility,
		OwnerID:     actor.ID,
		ThemeID:     req.ThemeID,
		PosterURL:   req.PosterURL,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		owner := models.GroupMember{GroupID: group.ID, UserID: actor.ID, Role: models.RoleOwner}
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}
		for _, genreID := range dedupeInts(req.GenreIDs) {
			tag := models.GroupGenre{GroupID: group.ID, GenreID: genreID}
			if err := tx.Create(&tag).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("a group with this name already exists")
		}
		return nil, apperr.Internal("failed to create group", err)
	}

	return s.GetByID(group.ID, actor)
}

// GetByID returns a group's details, visibility-checked. The member roster is
// included only when the stricter list-members rule also passes.
func (s *GroupService) GetByID(id uuid.UUID, actor authz.Actor) (*dto.GroupResponse, error) {
	group, err := s.getGroup(s.db, id)
	if err != nil {
		return nil, err
	}
	role := s.roleOf(s.db, id, actor.ID)
	if err := authz.ViewGroup(group, actor, role); err != nil {
		return nil, err
	}

	resp := s.toResponse(group)

	if authz.ListMembers(group, actor, role) == nil {
		var members []models.GroupMember
		if err := s.db.Preload("User").
			Where("group_id = ?", id).
			Order("created_at ASC").
			Find(&members).Error; err != nil {
			return nil, apperr.Internal("failed to load members", err)
		}
		resp.Members = make([]dto.GroupMemberResponse, 0, len(members))
		for _, m := range members {
			resp.Members = append(resp.Members, dto.GroupMemberResponse{
				UserID:   m.UserID,
				Username: m.User.Username,
				Role:     m.Role,
				JoinedAt: m.CreatedAt,
			})
		}
	}
	return resp, nil
}

// Update applies a typed partial update; a non-nil GenreIDs replaces the full
// tag set in the same transaction as the row update.
func (s *GroupService) Update(id uuid.UUID, actor authz.Actor, req *dto.UpdateGroupRequest) (*dto.GroupResponse, error) {
	group, err := s.getGroup(s.db, id)
	if err != nil {
		return nil, err
	}
	if err := authz.ManageGroup(group, actor); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > 100 {
			return nil, apperr.Invalid("group name must be 1-100 characters")
		}
		if nameConflict(s.db, name, id) {
			return nil, apperr.Conflict("a group with this name already exists")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Visibility != nil {
		v := models.GroupVisibility(*req.Visibility)
		if !v.Valid() {
			return nil, apperr.Invalid("visibility must be public, private or closed")
		}
		updates["visibility"] = v
	}
	if req.ThemeID != nil {
		if *req.ThemeID <= 0 {
			return nil, apperr.Invalid("theme id must be positive")
		}
		updates["theme_id"] = *req.ThemeID
	}
	if req.PosterURL != nil {
		updates["poster_url"] = *req.PosterURL
	}
	if req.GenreIDs != nil {
		if err := validateGenreIDs(*req.GenreIDs); err != nil {
			return nil, err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Group{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.GenreIDs != nil {
			if err := tx.Where("group_id = ?", id).Delete(&models.GroupGenre{}).Error; err != nil {
				return err
			}
			for _, genreID := range dedupeInts(*req.GenreIDs) {
				if err := tx.Create(&models.GroupGenre{GroupID: id, GenreID: genreID}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("a group with this name already exists")
		}
		return nil, apperr.Internal("failed to update group", err)
	}

	return s.GetByID(id, actor)
}

// Delete removes the group with its membership rows, genre tags, and group
// favorites in one transaction.
func (s *GroupService) Delete(id uuid.UUID, actor authz.Actor) error {
	group, err := s.getGroup(s.db, id)
	if err != nil {
		return err
	}
	if err := authz.ManageGroup(group, actor); err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupGenre{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, "id = ?", id).Error
	})
	if err != nil {
		return apperr.Internal("failed to delete group", err)
	}
	return nil
}

// Search finds public groups by name: exact-prefix matches rank before
// substring matches, case-insensitively.
func (s *GroupService) Search(query string, limit int) ([]dto.GroupSummary, error) {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return nil, apperr.Invalid("query is required")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	pattern := escapeLike(query)

	// Exact-prefix matches rank first, then other substring matches.
	var prefix []models.Group
	err := s.db.
		Where("visibility = ?", models.VisibilityPublic).
		Where("LOWER(name) LIKE ?", pattern+"%").
		Order("name ASC").
		Limit(limit).
		Find(&prefix).Error
	if err != nil {
		return nil, apperr.Internal("search failed", err)
	}

	groups := prefix
	if len(groups) < limit {
		var rest []models.Group
		err = s.db.
			Where("visibility = ?", models.VisibilityPublic).
			Where("LOWER(name) LIKE ?", "%"+pattern+"%").
			Where("LOWER(name) NOT LIKE ?", pattern+"%").
			Order("name ASC").
			Limit(limit - len(groups)).
			Find(&rest).Error
		if err != nil {
			return nil, apperr.Internal("search failed", err)
		}
		groups = append(groups, rest...)
	}
	return s.toSummaries(groups), nil
}

// ByGenres filters groups by genre tags. matchAll requires every supplied id
// to be present; otherwise any overlap qualifies. Closed groups are excluded
// from discovery.
func (s *GroupService) ByGenres(genreIDs []int, matchAll bool) ([]dto.GroupSummary, error) {
	if len(genreIDs) == 0 {
		return nil, apperr.Invalid("at least one genre id is required")
	}
	if err := validateGenreIDs(genreIDs); err != nil {
		return nil, err
	}
	genreIDs = dedupeInts(genreIDs)

	sub := s.db.Model(&models.GroupGenre{}).
		Select("group_id").
		Where("genre_id IN ?", genreIDs).
		Group("group_id")
	if matchAll {
		sub = sub.Having("COUNT(DISTINCT genre_id) = ?", len(genreIDs))
	}

	var groups []models.Group
	err := s.db.
		Where("visibility IN ?", []models.GroupVisibility{models.VisibilityPublic, models.VisibilityPrivate}).
		Where("id IN (?)", sub).
		Order("name ASC").
		Find(&groups).Error
	if err != nil {
		return nil, apperr.Internal("genre filter failed", err)
	}
	return s.toSummaries(groups), nil
}

// Popular ranks public groups by member count, pending rows excluded.
func (s *GroupService) Popular(limit int) ([]dto.GroupSummary, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var groups []models.Group
	err := s.db.
		Joins("LEFT JOIN group_members gm ON gm.group_id = groups.id AND gm.role <> ?", models.RolePending).
		Where("groups.visibility = ?", models.VisibilityPublic).
		Group("groups.id").
		Order("COUNT(gm.user_id) DESC").
		Limit(limit).
		Find(&groups).Error
	if err != nil {
		return nil, apperr.Internal("failed to rank groups", err)
	}
	return s.toSummaries(groups), nil
}

// ListForUser returns the groups a user belongs to, pending requests
// excluded. Closed groups are hidden from everyone but the member
// themselves and platform admins.
func (s *GroupService) ListForUser(targetID uuid.UUID, actor authz.Actor) ([]dto.GroupSummary, error) {
	q := s.db.
		Joins("JOIN group_members gm ON gm.group_id = groups.id").
		Where("gm.user_id = ? AND gm.role <> ?", targetID, models.RolePending)
	if actor.ID != targetID && !actor.Admin {
		q = q.Where("groups.visibility <> ?", models.VisibilityClosed)
	}

	var groups []models.Group
	if err := q.Order("groups.created_at DESC").Find(&groups).Error; err != nil {
		return nil, apperr.Internal("failed to list user groups", err)
	}
	return s.toSummaries(groups), nil
}

// Join is the one-step join flow for public groups.
func (s *GroupService) Join(id uuid.UUID, actor authz.Actor) error {
	group, err := s.getGroup(s.db, id)
	if err != nil {
		return err
	}
	role := s.roleOf(s.db, id, actor.ID)
	if err := authz.JoinDirect(group, actor, role); err != nil {
		return err
	}

	member := models.GroupMember{GroupID: id, UserID: actor.ID, Role: models.RoleMember}
	if err := s.db.Create(&member).Error; err != nil {
		// Lost a race against a concurrent join; the membership row exists.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("you are already a member of this group")
		}
		return apperr.Internal("failed to join group", err)
	}
	return nil
}

// RequestJoin files a pending membership row, for any visibility.
func (s *GroupService) RequestJoin(id uuid.UUID, actor authz.Actor) error {
	group, err := s.getGroup(s.db, id)
	if err != nil {
		return err
	}
	role := s.roleOf(s.db, id, actor.ID)
	if err := authz.RequestJoin(group, actor, role); err != nil {
		return err
	}

	member := models.GroupMember{GroupID: id, UserID: actor.ID, Role: models.RolePending}
	if err := s.db.Create(&member).Error; err != nil {
		// The primary key on (group_id, user_id) guarantees at most one row
		// survives two concurrent requests; the loser gets a conflict.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("a join request is already pending")
		}
		return apperr.Internal("failed to file join request", err)
	}
	return nil
}

// Approve transitions a pending row to member.
func (s *GroupService) Approve(id uuid.UUID, actor authz.Actor, targetID uuid.UUID) error {
	group, err := s.getGroup(s.db, id)
	if err != nil {
		return err
	}
	actorRole := s.roleOf(s.db, id, actor.ID)
	targetRole := s.roleOf(s.db, id, targetID)
	if err := authz.ApprovePending(group, actor, actorRole, targetRole); err != nil {
		return err
	}

	err = s.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ? AND role = ?", id, targetID, models.RolePending).
		Update("role", models.RoleMember).Error
	if err != nil {
		return apperr.Internal("failed to approve join request", err)
	}
	return nil
}

// AddMember is the owner-only direct-add shortcut.
func (s *GroupService) AddMember(id uuid.UUID, actor authz.Actor, req *dto.AddMemberRequest) error {
	group, err := s.getGroup(s.db, id)
	if err != nil {
		return err
	}

	var target models.User
	if err := s.db.First(&target, "id = ?", req.UserID).Error; err != nil {
		return apperr.NotFound("user not found")
	}

	newRole := models.GroupRole(req.Role)
	if req.Role == "" {
		newRole = models.RoleMember
	}
	targetRole := s.roleOf(s.db, id, req.UserID)
	if err := authz.AddMember(group, actor, req.UserID, targetRole, newRole); err != nil {
		return err
	}

	member := models.GroupMember{GroupID: id, UserID: req.UserID, Role: newRole}
	if err := s.db.Create(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("user already has a membership in this group")
		}
		return apperr.Internal("failed to add member", err)
	}
	return nil
}

// RemoveMember deletes a membership row under the self/owner/moderator rules.
func (s *GroupService) RemoveMember(id uuid.UUID, actor authz.Actor, targetID uuid.UUID) error {
	group, err := s.getGroup(s.db, id)
	if err != nil {
		return err
	}
	actorRole := s.roleOf(s.db, id, actor.ID)
	targetRole := s.roleOf(s.db, id, targetID)

	if targetRole == models.RoleNone && targetID != group.OwnerID {
		return apperr.NotFound("membership not found")
	}
	if err := authz.RemoveMember(group, actor, actorRole, targetID, targetRole); err != nil {
		return err
	}

	err = s.db.Where("group_id = ? AND user_id = ?", id, targetID).
		Delete(&models.GroupMember{}).Error
	if err != nil {
		return apperr.Internal("failed to remove member", err)
	}
	return nil
}

// UpdateMemberRole reassigns member <-> moderator, owner only.
func (s *GroupService) UpdateMemberRole(id uuid.UUID, actor authz.Actor, targetID uuid.UUID, role string) error {
	group, err := s.getGroup(s.db, id)
	if err != nil {
		return err
	}
	targetRole := s.roleOf(s.db, id, targetID)
	if targetRole == models.RoleNone {
		return apperr.NotFound("membership not found")
	}
	newRole := models.GroupRole(role)
	if err := authz.UpdateRole(group, actor, targetID, targetRole, newRole); err != nil {
		return err
	}

	err = s.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", id, targetID).
		Update("role", newRole).Error
	if err != nil {
		return apperr.Internal("failed to update member role", err)
	}
	return nil
}

func (s *GroupService) toResponse(group *models.Group) *dto.GroupResponse {
	genreIDs := make([]int, 0, len(group.Genres))
	for _, g := range group.Genres {
		genreIDs = append(genreIDs, g.GenreID)
	}
	return &dto.GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		Visibility:  group.Visibility,
		OwnerID:     group.OwnerID,
		ThemeID:     group.ThemeID,
		PosterURL:   group.PosterURL,
		GenreIDs:    genreIDs,
		MemberCount: s.memberCount(s.db, group.ID),
		CreatedAt:   group.CreatedAt,
	}
}

func (s *GroupService) toSummaries(groups []models.Group) []dto.GroupSummary {
	summaries := make([]dto.GroupSummary, 0, len(groups))
	for i := range groups {
		g := &groups[i]
		summaries = append(summaries, dto.GroupSummary{
			ID:          g.ID,
			Name:        g.Name,
			Description: g.Description,
			Visibility:  g.Visibility,
			PosterURL:   g.PosterURL,
			MemberCount: s.memberCount(s.db, g.ID),
		})
	}
	return summaries
}

func dedupeInts(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
