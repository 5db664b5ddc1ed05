package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateReviewRequest struct {
	MovieID int    `json:"movie_id"`
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Content *string `json:"content"`
}

type ReactionRequest struct {
	Reaction string `json:"reaction"` // like | dislike
}

type ReviewResponse struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	MovieID      int       `json:"movie_id"`
	Rating       int       `json:"rating"`
	Content      string    `json:"content,omitempty"`
	LikeCount    int       `json:"like_count"`
	DislikeCount int       `json:"dislike_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
