package models

import (
	"time"

	"github.com/google/uuid"
)

// GroupVisibility controls who can see a group and how it can be joined.
type GroupVisibility string

const (
	VisibilityPublic  GroupVisibility = "public"
	VisibilityPrivate GroupVisibility = "private"
	VisibilityClosed  GroupVisibility = "closed"
)

func (v GroupVisibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityClosed:
		return true
	}
	return false
}

// GroupRole is a user's role within a group. Pending denotes an unapproved
// join request, not a member.
type GroupRole string

const (
	RoleOwner     GroupRole = "owner"
	RoleModerator GroupRole = "moderator"
	RoleMember    GroupRole = "member"
	RolePending   GroupRole = "pending"

	// RoleNone is the zero value: no membership row exists.
	RoleNone GroupRole = ""
)

// IsMember reports whether the role counts as actual membership.
func (r GroupRole) IsMember() bool {
	return r == RoleOwner || r == RoleModerator || r == RoleMember
}

// Group is a user-owned discussion collection with a visibility tier and a
// membership roster. The owner always has a membership row with RoleOwner.
type Group struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:(gen_random_uuid());primaryKey" json:"id"`
	Name        string          `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Visibility  GroupVisibility `gorm:"size:20;not null;default:'public'" json:"visibility"`
	OwnerID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"owner_id"`
	ThemeID     *int            `json:"theme_id,omitempty"`
	PosterURL   string          `gorm:"size:255" json:"poster_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Owner   User          `gorm:"foreignKey:OwnerID" json:"-"`
	Members []GroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"`
	Genres  []GroupGenre  `gorm:"foreignKey:GroupID" json:"genres,omitempty"`
}

func (Group) TableName() string {
	return "groups"
}

// GroupMember links a user to a group with a role. At most one row exists per
// (group, user), pending included.
type GroupMember struct {
	GroupID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"group_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Role      GroupRole `gorm:"size:20;not null;default:'member'" json:"role"`
	CreatedAt time.Time `json:"joined_at"`
	UpdatedAt time.Time `json:"-"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (GroupMember) TableName() string {
	return "group_members"
}

// GroupGenre labels a group with a catalog genre id for discovery filtering.
// Mutated only as a full-replace set by the owner.
type GroupGenre struct {
	GroupID uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	GenreID int       `gorm:"primaryKey;autoIncrement:false" json:"genre_id"`
}

func (GroupGenre) TableName() string {
	return "group_genres"
}
