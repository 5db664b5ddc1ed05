package services

import (
	"fmt"
	"testing"

	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
	"github.com/cinetalkapp/cinetalk-backend/internal/authz"
	"github.com/cinetalkapp/cinetalk-backend/internal/database"
	"github.com/cinetalkapp/cinetalk-backend/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory database with the same error translation the
// production connection uses, so duplicate-key paths behave identically.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Role:     "user",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedMovie(t *testing.T, db *gorm.DB, id int) *models.Movie {
	t.Helper()
	movie := &models.Movie{ID: id, Title: fmt.Sprintf("Movie %d", id)}
	require.NoError(t, db.Create(movie).Error)
	return movie
}

func asActor(u *models.User) authz.Actor {
	return authz.Actor{ID: u.ID, Admin: u.Role == "admin"}
}

// stubResolver satisfies MovieResolver without an upstream catalog. When fail
// is set it returns an upstream error and writes nothing.
type stubResolver struct {
	db   *gorm.DB
	fail bool
}

func (r *stubResolver) Ensure(movieID int) (*models.Movie, error) {
	if r.fail {
		return nil, apperr.Upstream("catalog unavailable", nil)
	}
	movie := models.Movie{ID: movieID, Title: fmt.Sprintf("Movie %d", movieID)}
	if err := r.db.Where("id = ?", movieID).FirstOrCreate(&movie).Error; err != nil {
		return nil, apperr.Internal("failed to store movie", err)
	}
	return &movie, nil
}
