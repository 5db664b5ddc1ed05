package services

import (
	"testing"

	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
	"github.com/cinetalkapp/cinetalk-backend/internal/authz"
	"github.com/cinetalkapp/cinetalk-backend/internal/dto"
	"github.com/cinetalkapp/cinetalk-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedGroup(t *testing.T, svc *GroupService, owner *models.User, name string, visibility string) *dto.GroupResponse {
	t.Helper()
	resp, err := svc.Create(asActor(owner), &dto.CreateGroupRequest{Name: name, Visibility: visibility})
	require.NoError(t, err)
	return resp
}

func TestCreateGroupWritesOwnerMembership(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "alice")

	resp, err := svc.Create(asActor(owner), &dto.CreateGroupRequest{
		Name:       "Noir Nights",
		Visibility: "private",
		GenreIDs:   []int{80, 9648, 80},
	})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, resp.OwnerID)
	assert.Equal(t, models.VisibilityPrivate, resp.Visibility)
	assert.Equal(t, int64(1), resp.MemberCount)
	assert.ElementsMatch(t, []int{80, 9648}, resp.GenreIDs)

	var member models.GroupMember
	require.NoError(t, db.First(&member, "group_id = ? AND user_id = ?", resp.ID, owner.ID).Error)
	assert.Equal(t, models.RoleOwner, member.Role)
}

func TestCreateGroupDuplicateNameCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "alice")

	seedGroup(t, svc, owner, "Film Club", "public")
	_, err := svc.Create(asActor(owner), &dto.CreateGroupRequest{Name: "film club"})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestGetGroupClosedHidesRosterFromMembers(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "alice")
	member := seedUser(t, db, "bob")
	stranger := seedUser(t, db, "carol")
	admin := seedUser(t, db, "root")
	admin.Role = "admin"
	require.NoError(t, db.Save(admin).Error)

	group := seedGroup(t, svc, owner, "Secret Cinema", "closed")
	require.NoError(t, db.Create(&models.GroupMember{
		GroupID: group.ID, UserID: member.ID, Role: models.RoleMember,
	}).Error)

	// Members and even the owner see the details but not the roster.
	resp, err := svc.GetByID(group.ID, asActor(member))
	require.NoError(t, err)
	assert.Empty(t, resp.Members)

	resp, err = svc.GetByID(group.ID, asActor(owner))
	require.NoError(t, err)
	assert.Empty(t, resp.Members)

	// A platform admin sees the roster.
	resp, err = svc.GetByID(group.ID, asActor(admin))
	require.NoError(t, err)
	assert.Len(t, resp.Members, 2)

	// A non-member sees nothing at all.
	_, err = svc.GetByID(group.ID, asActor(stranger))
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestUpdateGroupReplacesGenreTags(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "alice")

	resp, err := svc.Create(asActor(owner), &dto.CreateGroupRequest{
		Name: "Horror Club", GenreIDs: []int{27, 53},
	})
	require.NoError(t, err)

	updated, err := svc.Update(resp.ID, asActor(owner), &dto.UpdateGroupRequest{
		GenreIDs: &[]int{27, 878},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{27, 878}, updated.GenreIDs)

	// An empty non-nil slice clears the tags entirely.
	updated, err = svc.Update(resp.ID, asActor(owner), &dto.UpdateGroupRequest{
		GenreIDs: &[]int{},
	})
	require.NoError(t, err)
	assert.Empty(t, updated.GenreIDs)
}

func TestUpdateGroupNonOwnerForbidden(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "alice")
	other := seedUser(t, db, "bob")

	group := seedGroup(t, svc, owner, "Film Club", "public")
	name := "Hijacked"
	_, err := svc.Update(group.ID, asActor(other), &dto.UpdateGroupRequest{Name: &name})
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestDeleteGroupCascades(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "alice")
	seedMovie(t, db, 550)

	group := seedGroup(t, svc, owner, "Film Club", "public")
	require.NoError(t, db.Create(&models.Favorite{
		ID: uuid.New(), UserID: uuid.Nil, GroupID: group.ID,
		MovieID: 550, Type: models.FavoriteGroup,
	}).Error)

	require.NoError(t, svc.Delete(group.ID, asActor(owner)))

	var members, favorites int64
	db.Model(&models.GroupMember{}).Where("group_id = ?", group.ID).Count(&members)
	db.Model(&models.Favorite{}).Where("group_id = ?", group.ID).Count(&favorites)
	assert.Zero(t, members)
	assert.Zero(t, favorites)

	_, err := svc.GetByID(group.ID, asActor(owner))
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestSearchRanksPrefixFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "alice")

	seedGroup(t, svc, owner, "Classic Horror", "public")
	seedGroup(t, svc, owner, "Horror Fans", "public")
	seedGroup(t, svc, owner, "Hidden Horror", "closed")

	results, err := svc.Search("horror", 20)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Horror Fans", results[0].Name)
	assert.Equal(t, "Classic Horror", results[1].Name)
}

func TestByGenresMatchAll(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "alice")

	g1, err := svc.Create(asActor(owner), &dto.CreateGroupRequest{
		Name: "Sci-Fi Horror", GenreIDs: []int{27, 878},
	})
	require.NoError(t, err)
	_, err = svc.Create(asActor(owner), &dto.CreateGroupRequest{
		Name: "Pure Horror", GenreIDs: []int{27},
	})
	require.NoError(t, err)

	all, err := svc.ByGenres([]int{27, 878}, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, g1.ID, all[0].ID)

	any, err := svc.ByGenres([]int{27, 878}, false)
	require.NoError(t, err)
	assert.Len(t, any, 2)
}

func TestByGenresExcludesClosed(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "alice")

	_, err := svc.Create(asActor(owner), &dto.CreateGroupRequest{
		Name: "Closed Horror", Visibility: "closed", GenreIDs: []int{27},
	})
	require.NoError(t, err)
	g, err := svc.Create(asActor(owner), &dto.CreateGroupRequest{
		Name: "Private Horror", Visibility: "private", GenreIDs: []int{27},
	})
	require.NoError(t, err)

	results, err := svc.ByGenres([]int{27}, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, g.ID, results[0].ID)
}

func TestPopularExcludesPending(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "alice")
	pending := seedUser(t, db, "bob")

	big := seedGroup(t, svc, owner, "Big Club", "public")
	small := seedGroup(t, svc, owner, "Small Club", "public")
	require.NoError(t, db.Create(&models.GroupMember{
		GroupID: small.ID, UserID: pending.ID, Role: models.RolePending,
	}).Error)
	member := seedUser(t, db, "carol")
	require.NoError(t, db.Create(&models.GroupMember{
		GroupID: big.ID, UserID: member.ID, Role: models.RoleMember,
	}).Error)

	results, err := svc.Popular(10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, big.ID, results[0].ID)
	assert.Equal(t, int64(2), results[0].MemberCount)
	assert.Equal(t, int64(1), results[1].MemberCount)
}

func TestJoinPublicGroup(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "alice")
	joiner := seedUser(t, db, "bob")

	group := seedGroup(t, svc, owner, "Film Club", "public")
	require.NoError(t, svc.Join(group.ID, asActor(joiner)))

	// Re-joining conflicts rather than duplicating the row.
	err := svc.Join(group.ID, asActor(joiner))
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	var count int64
	db.Model(&models.GroupMember{}).Where("group_id = ?", group.ID).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestJoinPrivateGroupForbidden(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "alice")
	joiner := seedUser(t, db, "bob")

	group := seedGroup(t, svc, owner, "Film Club", "private")
	err := svc.Join(group.ID, asActor(joiner))
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestRequestJoinAndApprove(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "alice")
	moderator := seedUser(t, db, "bob")
	applicant := seedUser(t, db, "carol")

	group := seedGroup(t, svc, owner, "Film Club", "private")
	require.NoError(t, db.Create(&models.GroupMember{
		GroupID: group.ID, UserID: moderator.ID, Role: models.RoleModerator,
	}).Error)

	require.NoError(t, svc.RequestJoin(group.ID, asActor(applicant)))

	// A second request while one is pending conflicts.
	err := svc.RequestJoin(group.ID, asActor(applicant))
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	// The applicant cannot approve themselves.
	err = svc.Approve(group.ID, asActor(applicant), applicant.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	require.NoError(t, svc.Approve(group.ID, asActor(moderator), applicant.ID))

	var member models.GroupMember
	require.NoError(t, db.First(&member, "group_id = ? AND user_id = ?", group.ID, applicant.ID).Error)
	assert.Equal(t, models.RoleMember, member.Role)
}

func TestApproveNonPendingNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "alice")
	stranger := seedUser(t, db, "bob")

	group := seedGroup(t, svc, owner, "Film Club", "private")
	err := svc.Approve(group.ID, asActor(owner), stranger.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestRemoveMemberRules(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "alice")
	moderator := seedUser(t, db, "bob")
	member := seedUser(t, db, "carol")

	group := seedGroup(t, svc, owner, "Film Club", "public")
	require.NoError(t, db.Create(&models.GroupMember{
		GroupID: group.ID, UserID: moderator.ID, Role: models.RoleModerator,
	}).Error)
	require.NoError(t, db.Create(&models.GroupMember{
		GroupID: group.ID, UserID: member.ID, Role: models.RoleMember,
	}).Error)

	// The owner can never be removed, not even by themselves.
	err := svc.RemoveMember(group.ID, asActor(owner), owner.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	// A plain member cannot remove others.
	err = svc.RemoveMember(group.ID, asActor(member), moderator.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	// A moderator can remove a plain member.
	require.NoError(t, svc.RemoveMember(group.ID, asActor(moderator), member.ID))

	// Leaving is removing yourself.
	require.NoError(t, svc.RemoveMember(group.ID, asActor(moderator), moderator.ID))

	var count int64
	db.Model(&models.GroupMember{}).Where("group_id = ?", group.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpdateMemberRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "alice")
	member := seedUser(t, db, "bob")

	group := seedGroup(t, svc, owner, "Film Club", "public")
	require.NoError(t, svc.Join(group.ID, asActor(member)))

	require.NoError(t, svc.UpdateMemberRole(group.ID, asActor(owner), member.ID, "moderator"))

	// Promoting to the same role again is a conflict, not a silent no-op.
	err := svc.UpdateMemberRole(group.ID, asActor(owner), member.ID, "moderator")
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	// Only the owner reassigns roles.
	err = svc.UpdateMemberRole(group.ID, asActor(member), owner.ID, "member")
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestListForUserHidesClosedFromStrangers(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "alice")
	viewer := seedUser(t, db, "bob")

	seedGroup(t, svc, owner, "Open Club", "public")
	seedGroup(t, svc, owner, "Secret Club", "closed")

	mine, err := svc.ListForUser(owner.ID, asActor(owner))
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	theirs, err := svc.ListForUser(owner.ID, asActor(viewer))
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, "Open Club", theirs[0].Name)
}

func TestGetGroupAnonymousVisibility(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "alice")

	public := seedGroup(t, svc, owner, "Open Club", "public")
	private := seedGroup(t, svc, owner, "Private Club", "private")

	resp, err := svc.GetByID(public.ID, authz.Actor{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Members, "public rosters are visible to anonymous callers")

	_, err = svc.GetByID(private.ID, authz.Actor{})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}
