package services

import (
	"errors"
	"log/slog"

	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
	"github.com/cinetalkapp/cinetalk-backend/internal/models"
	"github.com/cinetalkapp/cinetalk-backend/internal/providers/catalog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogAPI is the slice of the metadata provider the resolver needs.
type CatalogAPI interface {
	GetMovie(id int) (*catalog.MovieRecord, error)
}

// MovieService lazily materializes catalog movies into local records.
type MovieService struct {
	db      *gorm.DB
	catalog CatalogAPI
}

func NewMovieService(db *gorm.DB, api CatalogAPI) *MovieService {
	return &MovieService{db: db, catalog: api}
}

// Ensure returns the local record for movieID, fetching it from the catalog
// on first reference. Resolution happens before any dependent row is written,
// so an upstream failure never leaves an orphaned favorite or review.
func (s *MovieService) Ensure(movieID int) (*models.Movie, error) {
	if movieID <= 0 {
		return nil, apperr.Invalid("movie id must be positive")
	}

	var movie models.Movie
	err := s.db.First(&movie, "id = ?", movieID).Error
	if err == nil {
		return &movie, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal("failed to look up movie", err)
	}

	record, err := s.catalog.GetMovie(movieID)
	if err != nil {
		return nil, err
	}

	movie = models.Movie{
		ID:          record.ID,
		Title:       record.Title,
		Overview:    record.Overview,
		ReleaseDate: record.ReleaseDate,
		PosterPath:  record.PosterPath,
		Runtime:     record.Runtime,
		VoteAverage: record.VoteAverage,
	}

	// Two requests may resolve the same movie at once; the second insert is a
	// no-op rather than an error.
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&movie).Error; err != nil {
		return nil, apperr.Internal("failed to store movie", err)
	}
	slog.Info("movie materialized from catalog", "movie_id", movie.ID, "title", movie.Title)
	return &movie, nil
}

// Get is the read-through variant used by GET /movies/:id.
func (s *MovieService) Get(movieID int) (*models.Movie, error) {
	return s.Ensure(movieID)
}
