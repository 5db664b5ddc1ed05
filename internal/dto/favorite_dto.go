package dto

import (
	"time"

	"github.com/cinetalkapp/cinetalk-backend/internal/models"
	"github.com/google/uuid"
)

type AddFavoriteRequest struct {
	MovieID int                 `json:"movie_id"`
	Type    models.FavoriteType `json:"type"`
	GroupID *uuid.UUID          `json:"group_id"`
}

type FavoriteEntry struct {
	Movie   models.Movie `json:"movie"`
	AddedAt time.Time    `json:"added_at"`
}

type GroupFavoritesResponse struct {
	Group     GroupSummary    `json:"group"`
	Favorites []FavoriteEntry `json:"favorites"`
}

// GroupRef identifies a group favoriting a movie in a status response.
type GroupRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// MovieStatus reports where a single movie sits in the caller's lists.
type MovieStatus struct {
	Watchlist bool       `json:"watchlist"`
	Favorites bool       `json:"favorites"`
	Groups    []GroupRef `json:"groups"`
}
