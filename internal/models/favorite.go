package models

import (
	"time"

	"github.com/google/uuid"
)

// FavoriteType distinguishes the three list kinds.
type FavoriteType int

const (
	FavoriteWatchlist FavoriteType = 1 // private to the owner
	FavoritePersonal  FavoriteType = 2 // publicly readable
	FavoriteGroup     FavoriteType = 3 // scoped to a group, writable by owner/moderator
)

func (t FavoriteType) Valid() bool {
	return t == FavoriteWatchlist || t == FavoritePersonal || t == FavoriteGroup
}

// Favorite is one entry in a watchlist, a personal favorites list, or a group
// favorites list. Personal rows (types 1 and 2) carry the owning user id and a
// nil-uuid group id; group rows (type 3) carry the group id and a nil-uuid
// user id so that ownership transfer of the group never orphans them. The
// composite unique index makes re-adding an upsert rather than a duplicate.
type Favorite struct {
	ID        uuid.UUID    `gorm:"type:uuid;default:(gen_random_uuid());primaryKey" json:"id"`
	UserID    uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_scope" json:"user_id"`
	GroupID   uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_scope" json:"group_id"`
	MovieID   int          `gorm:"not null;uniqueIndex:idx_favorites_scope" json:"movie_id"`
	Type      FavoriteType `gorm:"column:favorite_type;not null;uniqueIndex:idx_favorites_scope" json:"type"`
	CreatedAt time.Time    `json:"created_at"`

	Movie Movie `gorm:"foreignKey:MovieID" json:"movie,omitempty"`
}

func (Favorite) TableName() string {
	return "favorites"
}
