package models

import "time"

// Movie is a locally materialized record of a catalog movie. The primary key
// is the external catalog id; rows are created lazily on first reference from
// a review or favorite.
type Movie struct {
	ID          int       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Overview    string    `gorm:"type:text" json:"overview,omitempty"`
	ReleaseDate string    `gorm:"size:10" json:"release_date,omitempty"`
	PosterPath  string    `gorm:"size:255" json:"poster_path,omitempty"`
	Runtime     int       `json:"runtime,omitempty"`
	VoteAverage float64   `json:"vote_average,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
