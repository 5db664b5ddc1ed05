package dto

import (
	"time"

	"github.com/cinetalkapp/cinetalk-backend/internal/models"
	"github.com/google/uuid"
)

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
	ThemeID     *int   `json:"theme_id"`
	PosterURL   string `json:"poster_url"`
	GenreIDs    []int  `json:"genre_ids"`
}

// UpdateGroupRequest is a typed partial update: nil fields are left untouched.
// A non-nil GenreIDs replaces the tag set wholesale, empty slice included.
type UpdateGroupRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Visibility  *string `json:"visibility"`
	ThemeID     *int    `json:"theme_id"`
	PosterURL   *string `json:"poster_url"`
	GenreIDs    *[]int  `json:"genre_ids"`
}

type AddMemberRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role"`
}

type GroupMemberResponse struct {
	UserID   uuid.UUID        `json:"user_id"`
	Username string           `json:"username"`
	Role     models.GroupRole `json:"role"`
	JoinedAt time.Time        `json:"joined_at"`
}

type GroupResponse struct {
	ID          uuid.UUID              `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Visibility  models.GroupVisibility `json:"visibility"`
	OwnerID     uuid.UUID              `json:"owner_id"`
	ThemeID     *int                   `json:"theme_id,omitempty"`
	PosterURL   string                 `json:"poster_url,omitempty"`
	GenreIDs    []int                  `json:"genre_ids"`
	MemberCount int64                  `json:"member_count"`
	CreatedAt   time.Time              `json:"created_at"`
	Members     []GroupMemberResponse  `json:"members,omitempty"`
}

type GroupSummary struct {
	ID          uuid.UUID              `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Visibility  models.GroupVisibility `json:"visibility"`
	PosterURL   string                 `json:"poster_url,omitempty"`
	MemberCount int64                  `json:"member_count"`
}
