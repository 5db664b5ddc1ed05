package services

import (
	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
	"github.com/cinetalkapp/cinetalk-backend/internal/authz"
	"github.com/cinetalkapp/cinetalk-backend/internal/dto"
	"github.com/cinetalkapp/cinetalk-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MovieResolver materializes a catalog movie locally before a favorite row
// may reference it.
type MovieResolver interface {
	Ensure(movieID int) (*models.Movie, error)
}

// StatusBatchLimit caps how many movie ids one status call may ask about.
const StatusBatchLimit = 100

// FavoriteService owns the three list types. Access decisions defer to authz;
// movie existence defers to the resolver; group existence to GroupService
// helpers on the same handle.
type FavoriteService struct {
	db     *gorm.DB
	groups *GroupService
	movies MovieResolver
}

func NewFavoriteService(db *gorm.DB, groups *GroupService, movies MovieResolver) *FavoriteService {
	return &FavoriteService{db: db, groups: groups, movies: movies}
}

// scope resolves an add/remove request into the row's (user_id, group_id)
// pair after running the matching authorization rule.
func (s *FavoriteService) scope(actor authz.Actor, favType models.FavoriteType, groupID *uuid.UUID) (uuid.UUID, uuid.UUID, error) {
	if !favType.Valid() {
		return uuid.Nil, uuid.Nil, apperr.Invalid("type must be 1 (watchlist), 2 (favorites) or 3 (group favorites)")
	}

	if favType == models.FavoriteGroup {
		if groupID == nil || *groupID == uuid.Nil {
			return uuid.Nil, uuid.Nil, apperr.Invalid("group_id is required for group favorites")
		}
		group, err := s.groups.getGroup(s.db, *groupID)
		if err != nil {
			return uuid.Nil, uuid.Nil, err
		}
		role := s.groups.roleOf(s.db, *groupID, actor.ID)
		if err := authz.WriteGroupFavorites(group, actor, role); err != nil {
			return uuid.Nil, uuid.Nil, err
		}
		// Group rows carry no user id so ownership transfer never orphans them.
		return uuid.Nil, *groupID, nil
	}

	if groupID != nil && *groupID != uuid.Nil {
		return uuid.Nil, uuid.Nil, apperr.Invalid("group_id is only valid for group favorites")
	}
	if err := authz.WritePersonalList(actor.ID, actor); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return actor.ID, uuid.Nil, nil
}

// Add inserts a favorite row, resolving the movie first. Re-adding an
// existing entry refreshes its timestamp instead of erroring, and concurrent
// adds collapse into one row through the store's upsert.
func (s *FavoriteService) Add(actor authz.Actor, req *dto.AddFavoriteRequest) error {
	userID, groupID, err := s.scope(actor, req.Type, req.GroupID)
	if err != nil {
		return err
	}

	// Resolution strictly precedes the insert: an upstream failure must not
	// leave an orphaned favorite row.
	if _, err := s.movies.Ensure(req.MovieID); err != nil {
		return err
	}

	fav := models.Favorite{
		ID:      uuid.New(),
		UserID:  userID,
		GroupID: groupID,
		MovieID: req.MovieID,
		Type:    req.Type,
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "group_id"}, {Name: "movie_id"}, {Name: "favorite_type"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"created_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&fav).Error
	if err != nil {
		return apperr.Internal("failed to add favorite", err)
	}
	return nil
}

// Remove deletes a favorite row; a missing row is NotFound.
func (s *FavoriteService) Remove(actor authz.Actor, movieID int, favType models.FavoriteType, groupID *uuid.UUID) error {
	userID, gID, err := s.scope(actor, favType, groupID)
	if err != nil {
		return err
	}

	result := s.db.Where(
		"user_id = ? AND group_id = ? AND movie_id = ? AND favorite_type = ?",
		userID, gID, movieID, favType,
	).Delete(&models.Favorite{})
	if result.Error != nil {
		return apperr.Internal("failed to remove favorite", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("favorite not found")
	}
	return nil
}

// ListForUser returns a user's watchlist or personal favorites, gated per the
// list type's read rule.
func (s *FavoriteService) ListForUser(targetID uuid.UUID, favType models.FavoriteType, actor authz.Actor) ([]dto.FavoriteEntry, error) {
	if favType != models.FavoriteWatchlist && favType != models.FavoritePersonal {
		return nil, apperr.Invalid("type must be 1 (watchlist) or 2 (favorites)")
	}

	var target models.User
	if err := s.db.First(&target, "id = ?", targetID).Error; err != nil {
		return nil, apperr.NotFound("user not found")
	}
	if err := authz.ReadUserList(targetID, favType, actor); err != nil {
		return nil, err
	}

	var favs []models.Favorite
	err := s.db.Preload("Movie").
		Where("user_id = ? AND favorite_type = ?", targetID, favType).
		Order("created_at DESC").
		Find(&favs).Error
	if err != nil {
		return nil, apperr.Internal("failed to list favorites", err)
	}
	return toEntries(favs), nil
}

// ListForGroup returns a group's favorites plus the group metadata,
// visibility-gated like the group details themselves.
func (s *FavoriteService) ListForGroup(groupID uuid.UUID, actor authz.Actor) (*dto.GroupFavoritesResponse, error) {
	group, err := s.groups.getGroup(s.db, groupID)
	if err != nil {
		return nil, err
	}
	role := s.groups.roleOf(s.db, groupID, actor.ID)
	if err := authz.ViewGroup(group, actor, role); err != nil {
		return nil, err
	}

	var favs []models.Favorite
	err = s.db.Preload("Movie").
		Where("group_id = ? AND favorite_type = ?", groupID, models.FavoriteGroup).
		Order("created_at DESC").
		Find(&favs).Error
	if err != nil {
		return nil, apperr.Internal("failed to list group favorites", err)
	}

	return &dto.GroupFavoritesResponse{
		Group: dto.GroupSummary{
			ID:          group.ID,
			Name:        group.Name,
			Description: group.Description,
			Visibility:  group.Visibility,
			PosterURL:   group.PosterURL,
			MemberCount: s.groups.memberCount(s.db, groupID),
		},
		Favorites: toEntries(favs),
	}, nil
}

// Status reports, per movie id, whether the actor has it on their watchlist
// or favorites and which of their groups favorited it. Anonymous callers get
// all-false rather than an error.
func (s *FavoriteService) Status(actor authz.Actor, movieIDs []int) (map[int]dto.MovieStatus, error) {
	if len(movieIDs) == 0 {
		return nil, apperr.Invalid("at least one movie id is required")
	}
	if len(movieIDs) > StatusBatchLimit {
		return nil, apperr.Invalidf("at most %d movie ids per call", StatusBatchLimit)
	}

	result := make(map[int]dto.MovieStatus, len(movieIDs))
	for _, id := range movieIDs {
		result[id] = dto.MovieStatus{Groups: []dto.GroupRef{}}
	}
	if actor.Anonymous() {
		return result, nil
	}

	var personal []models.Favorite
	err := s.db.
		Where("user_id = ? AND movie_id IN ?", actor.ID, movieIDs).
		Find(&personal).Error
	if err != nil {
		return nil, apperr.Internal("failed to load status", err)
	}
	for _, f := range personal {
		st := result[f.MovieID]
		switch f.Type {
		case models.FavoriteWatchlist:
			st.Watchlist = true
		case models.FavoritePersonal:
			st.Favorites = true
		}
		result[f.MovieID] = st
	}

	// Group favorites surface only for groups the actor actually belongs to.
	type groupHit struct {
		MovieID int
		GroupID uuid.UUID
		Name    string
	}
	var hits []groupHit
	err = s.db.Model(&models.Favorite{}).
		Select("favorites.movie_id, favorites.group_id, groups.name").
		Joins("JOIN groups ON groups.id = favorites.group_id").
		Joins("JOIN group_members gm ON gm.group_id = favorites.group_id AND gm.user_id = ? AND gm.role <> ?",
			actor.ID, models.RolePending).
		Where("favorites.favorite_type = ? AND favorites.movie_id IN ?", models.FavoriteGroup, movieIDs).
		Scan(&hits).Error
	if err != nil {
		return nil, apperr.Internal("failed to load group status", err)
	}
	for _, h := range hits {
		st := result[h.MovieID]
		st.Groups = append(st.Groups, dto.GroupRef{ID: h.GroupID, Name: h.Name})
		result[h.MovieID] = st
	}

	return result, nil
}

func toEntries(favs []models.Favorite) []dto.FavoriteEntry {
	entries := make([]dto.FavoriteEntry, 0, len(favs))
	for _, f := range favs {
		entries = append(entries, dto.FavoriteEntry{Movie: f.Movie, AddedAt: f.CreatedAt})
	}
	return entries
}
