package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is a user's writeup of a movie. One review per (user, movie).
type Review struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:(gen_random_uuid());primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_movie" json:"user_id"`
	MovieID      int            `gorm:"not null;uniqueIndex:idx_reviews_user_movie" json:"movie_id"`
	Rating       int            `gorm:"not null" json:"rating"` // 1..10
	Content      string         `gorm:"type:text" json:"content,omitempty"`
	LikeCount    int            `gorm:"default:0" json:"like_count"`
	DislikeCount int            `gorm:"default:0" json:"dislike_count"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	User  User  `gorm:"foreignKey:UserID" json:"-"`
	Movie Movie `gorm:"foreignKey:MovieID" json:"-"`
}

// ReactionLike and ReactionDislike are the two review interaction kinds.
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// ReviewReaction tracks who liked or disliked a review. Sending the same
// reaction again removes it; sending the opposite one switches it.
type ReviewReaction struct {
	ID        uuid.UUID `gorm:"type:uuid;default:(gen_random_uuid());primaryKey" json:"id"`
	ReviewID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reactions_review_user" json:"review_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reactions_review_user" json:"user_id"`
	Reaction  string    `gorm:"size:10;not null" json:"reaction"`
	CreatedAt time.Time `json:"created_at"`
}
