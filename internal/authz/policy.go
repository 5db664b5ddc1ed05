// Package authz holds the access rules for groups and favorite lists as pure
// decision functions. Services fetch the rows, authz decides; nothing in here
// touches storage, so every rule is testable in isolation and no handler
// re-implements a check inline.
package authz

import (
	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
	"github.com/cinetalkapp/cinetalk-backend/internal/models"
	"github.com/google/uuid"
)

// Actor is the resolved identity of a request. A zero Actor is anonymous.
type Actor struct {
	ID    uuid.UUID
	Admin bool
}

func (a Actor) Anonymous() bool {
	return a.ID == uuid.Nil
}

// ViewGroup gates group detail reads. Public groups are visible to anyone;
// private and closed groups require the owner or any non-pending member.
func ViewGroup(g *models.Group, actor Actor, role models.GroupRole) error {
	if g.Visibility == models.VisibilityPublic {
		return nil
	}
	if actor.Anonymous() {
		return apperr.Unauthenticated("authentication required to view this group")
	}
	if actor.Admin || actor.ID == g.OwnerID || role.IsMember() {
		return nil
	}
	return apperr.Forbidden("you are not a member of this group")
}

// ListMembers gates the member roster. The rule set is deliberately stricter
// than ViewGroup for closed groups: members of a closed group can view its
// details yet never its roster, which stays admin-only.
func ListMembers(g *models.Group, actor Actor, role models.GroupRole) error {
	if g.Visibility == models.VisibilityPublic {
		return nil
	}
	if actor.Admin {
		return nil
	}
	if actor.Anonymous() {
		return apperr.Unauthenticated("authentication required to list members")
	}
	switch g.Visibility {
	case models.VisibilityPrivate:
		if actor.ID == g.OwnerID {
			return nil
		}
		return apperr.Forbidden("only the group owner can list members of a private group")
	default: // closed
		return apperr.Forbidden("the member list of a closed group is not available")
	}
}

// JoinDirect gates the one-step join flow, which only public groups allow.
// role is the actor's existing membership row, RoleNone if absent.
func JoinDirect(g *models.Group, actor Actor, role models.GroupRole) error {
	if actor.ID == g.OwnerID || role == models.RoleOwner {
		return apperr.Conflict("you are the owner of this group")
	}
	if role.IsMember() {
		return apperr.Conflict("you are already a member of this group")
	}
	if role == models.RolePending {
		return apperr.Conflict("a join request is already pending")
	}
	if g.Visibility != models.VisibilityPublic {
		return apperr.Forbidden("this group does not allow direct joining")
	}
	return nil
}

// RequestJoin gates the pending-request flow, available for any visibility.
func RequestJoin(g *models.Group, actor Actor, role models.GroupRole) error {
	if actor.ID == g.OwnerID || role == models.RoleOwner {
		return apperr.Conflict("you are the owner of this group")
	}
	if role.IsMember() {
		return apperr.Conflict("you are already a member of this group")
	}
	if role == models.RolePending {
		return apperr.Conflict("a join request is already pending")
	}
	return nil
}

// ApprovePending gates the pending -> member transition. The approver must be
// the owner or a moderator; the target must actually have a pending row.
func ApprovePending(g *models.Group, actor Actor, actorRole models.GroupRole, targetRole models.GroupRole) error {
	if actor.ID != g.OwnerID && actorRole != models.RoleModerator {
		return apperr.Forbidden("only the owner or a moderator can approve join requests")
	}
	if targetRole != models.RolePending {
		return apperr.NotFound("no pending join request for this user")
	}
	return nil
}

// AddMember gates the owner-only direct-add shortcut. newRole must be member
// or moderator; the target must not already hold a membership row.
func AddMember(g *models.Group, actor Actor, targetID uuid.UUID, targetRole models.GroupRole, newRole models.GroupRole) error {
	if actor.ID != g.OwnerID {
		return apperr.Forbidden("only the group owner can add members directly")
	}
	if newRole != models.RoleMember && newRole != models.RoleModerator {
		return apperr.Invalid("role must be member or moderator")
	}
	if targetID == g.OwnerID {
		return apperr.Conflict("user is the owner of this group")
	}
	if targetRole != models.RoleNone {
		return apperr.Conflict("user already has a membership in this group")
	}
	return nil
}

// RemoveMember gates membership removal. The owner can remove anyone but
// themself; a moderator can remove members and pending requests but not other
// moderators; everyone may remove themself. The owner is never removable
// through this path; deleting the group is the only way out for them.
func RemoveMember(g *models.Group, actor Actor, actorRole models.GroupRole, targetID uuid.UUID, targetRole models.GroupRole) error {
	if targetID == g.OwnerID || targetRole == models.RoleOwner {
		return apperr.Forbidden("the owner cannot be removed; delete the group instead")
	}
	if actor.ID == targetID {
		return nil
	}
	if actor.ID == g.OwnerID {
		return nil
	}
	if actorRole == models.RoleModerator {
		if targetRole == models.RoleModerator {
			return apperr.Forbidden("only the owner can remove a moderator")
		}
		return nil
	}
	return apperr.Forbidden("you cannot remove this member")
}

// UpdateRole gates role reassignment: owner only, never targeting the owner,
// and a no-op reassignment is a conflict.
func UpdateRole(g *models.Group, actor Actor, targetID uuid.UUID, currentRole models.GroupRole, newRole models.GroupRole) error {
	if actor.ID != g.OwnerID {
		return apperr.Forbidden("only the group owner can change member roles")
	}
	if targetID == g.OwnerID || currentRole == models.RoleOwner {
		return apperr.Forbidden("the owner role cannot be reassigned")
	}
	if newRole != models.RoleMember && newRole != models.RoleModerator {
		return apperr.Invalid("role must be member or moderator")
	}
	if currentRole == newRole {
		return apperr.Conflictf("user is already a %s", newRole)
	}
	return nil
}

// ManageGroup gates detail updates and deletion: owner only.
func ManageGroup(g *models.Group, actor Actor) error {
	if actor.Anonymous() {
		return apperr.Unauthenticated("authentication required")
	}
	if actor.ID != g.OwnerID {
		return apperr.Forbidden("only the group owner can modify this group")
	}
	return nil
}

// WriteGroupFavorites gates adding/removing type-3 favorites: the group's
// owner or a moderator.
func WriteGroupFavorites(g *models.Group, actor Actor, role models.GroupRole) error {
	if actor.Anonymous() {
		return apperr.Unauthenticated("authentication required")
	}
	if actor.ID == g.OwnerID || role == models.RoleModerator {
		return nil
	}
	return apperr.Forbidden("only the group owner or a moderator can manage group favorites")
}

// ReadUserList gates reads of a user's personal lists. Watchlists are visible
// to the owner and platform admins only; personal favorites are public.
func ReadUserList(ownerID uuid.UUID, listType models.FavoriteType, actor Actor) error {
	if listType == models.FavoritePersonal {
		return nil
	}
	if actor.Anonymous() {
		return apperr.Unauthenticated("authentication required to view a watchlist")
	}
	if actor.ID == ownerID || actor.Admin {
		return nil
	}
	return apperr.Forbidden("watchlists are private")
}

// WritePersonalList gates adds/removes on types 1 and 2: the list owner only.
func WritePersonalList(ownerID uuid.UUID, actor Actor) error {
	if actor.Anonymous() {
		return apperr.Unauthenticated("authentication required")
	}
	if actor.ID != ownerID {
		return apperr.Forbidden("you can only modify your own lists")
	}
	return nil
}
