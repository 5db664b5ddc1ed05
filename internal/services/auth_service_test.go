package services

import (
	"testing"
	"time"

	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
	"github.com/cinetalkapp/cinetalk-backend/internal/config"
	"github.com/cinetalkapp/cinetalk-backend/internal/dto"
	"github.com/cinetalkapp/cinetalk-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *AuthService {
	return NewAuthService(db, &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: 24 * time.Hour,
	})
}

func register(t *testing.T, svc *AuthService, username string) *dto.AuthResponse {
	t.Helper()
	resp, err := svc.Register(&dto.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	resp := register(t, svc, "alice")
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "alice", resp.User.Username)

	login, err := svc.Login(&dto.LoginRequest{
		Email: "alice@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = svc.Login(&dto.LoginRequest{
		Email: "alice@example.com", Password: "wrong",
	})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	register(t, svc, "alice")
	_, err := svc.Register(&dto.RegisterRequest{
		Username: "alice2", Email: "alice@example.com", Password: "correct-horse",
	})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	_, err = svc.Register(&dto.RegisterRequest{
		Username: "alice", Email: "other@example.com", Password: "correct-horse",
	})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestRefreshRotatesToken(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	resp := register(t, svc, "alice")
	rotated, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, rotated.RefreshToken)

	// The presented token is spent; replaying it fails.
	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	resp := register(t, svc, "alice")
	require.NoError(t, svc.Logout(resp.User.ID, &dto.LogoutRequest{
		RefreshToken: resp.RefreshToken,
	}))

	_, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}

func TestDeleteAccountCascades(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	groups := NewGroupService(db)
	favorites := NewFavoriteService(db, groups, &stubResolver{db: db})

	owner := register(t, svc, "alice")
	member := register(t, svc, "bob")

	var ownerUser models.User
	require.NoError(t, db.First(&ownerUser, "id = ?", owner.User.ID).Error)
	actor := asActor(&ownerUser)

	group, err := groups.Create(actor, &dto.CreateGroupRequest{Name: "Film Club"})
	require.NoError(t, err)
	var memberUser models.User
	require.NoError(t, db.First(&memberUser, "id = ?", member.User.ID).Error)
	require.NoError(t, groups.Join(group.ID, asActor(&memberUser)))
	require.NoError(t, favorites.Add(actor, &dto.AddFavoriteRequest{
		MovieID: 550, Type: models.FavoriteWatchlist,
	}))

	err = svc.DeleteAccount(owner.User.ID, "wrong")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))

	require.NoError(t, svc.DeleteAccount(owner.User.ID, "correct-horse"))

	var groupCount, memberCount, favCount, tokenCount int64
	db.Model(&models.Group{}).Count(&groupCount)
	db.Model(&models.GroupMember{}).Count(&memberCount)
	db.Model(&models.Favorite{}).Count(&favCount)
	db.Model(&models.RefreshToken{}).Where("user_id = ?", owner.User.ID).Count(&tokenCount)
	assert.Zero(t, groupCount, "owned groups go with the account")
	assert.Zero(t, memberCount)
	assert.Zero(t, favCount)
	assert.Zero(t, tokenCount)

	_, err = svc.GetUser(owner.User.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
