package services

import (
	"testing"

	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
	"github.com/cinetalkapp/cinetalk-backend/internal/models"
	"github.com/cinetalkapp/cinetalk-backend/internal/providers/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	records map[int]*catalog.MovieRecord
	calls   int
}

func (c *stubCatalog) GetMovie(id int) (*catalog.MovieRecord, error) {
	c.calls++
	if rec, ok := c.records[id]; ok {
		return rec, nil
	}
	return nil, apperr.NotFound("movie not found upstream")
}

func TestEnsureMaterializesOnce(t *testing.T) {
	db := newTestDB(t)
	api := &stubCatalog{records: map[int]*catalog.MovieRecord{
		550: {ID: 550, Title: "Fight Club", Runtime: 139, VoteAverage: 8.4},
	}}
	svc := NewMovieService(db, api)

	movie, err := svc.Ensure(550)
	require.NoError(t, err)
	assert.Equal(t, "Fight Club", movie.Title)

	// The second resolve is a local hit.
	_, err = svc.Ensure(550)
	require.NoError(t, err)
	assert.Equal(t, 1, api.calls)

	var stored models.Movie
	require.NoError(t, db.First(&stored, "id = ?", 550).Error)
	assert.Equal(t, 139, stored.Runtime)
}

func TestEnsureUnknownMovie(t *testing.T) {
	db := newTestDB(t)
	svc := NewMovieService(db, &stubCatalog{})

	_, err := svc.Ensure(999999)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = svc.Ensure(0)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))

	var count int64
	db.Model(&models.Movie{}).Count(&count)
	assert.Zero(t, count)
}
