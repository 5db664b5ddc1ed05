package services

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
	"github.com/cinetalkapp/cinetalk-backend/internal/cache"
	"github.com/cinetalkapp/cinetalk-backend/internal/providers/showtimes"
)

// FeedFetcher is the slice of the showtimes provider the service needs.
type FeedFetcher interface {
	FetchRaw(area string) ([]byte, error)
}

// ShowtimeService is a read-through proxy to the cinema feed: cache first,
// provider on miss, cache refreshed on fetch.
type ShowtimeService struct {
	feed  FeedFetcher
	cache *cache.FileCache
}

func NewShowtimeService(feed FeedFetcher, fc *cache.FileCache) *ShowtimeService {
	return &ShowtimeService{feed: feed, cache: fc}
}

func (s *ShowtimeService) Get(area string) (*showtimes.Feed, error) {
	area = strings.TrimSpace(strings.ToLower(area))
	if area == "" {
		return nil, apperr.Invalid("area is required")
	}

	key := "showtimes:" + area
	if raw, err := s.cache.Get(key); err == nil {
		if feed, err := showtimes.Parse(raw); err == nil {
			return feed, nil
		}
		// A corrupt cache entry falls through to a fresh fetch.
		slog.Warn("discarding unparseable showtimes cache entry", "area", area)
	} else if !errors.Is(err, cache.ErrMiss) {
		slog.Warn("showtimes cache read failed", "area", area, "error", err)
	}

	raw, err := s.feed.FetchRaw(area)
	if err != nil {
		return nil, err
	}
	feed, err := showtimes.Parse(raw)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Put(key, raw); err != nil {
		slog.Warn("showtimes cache write failed", "area", area, "error", err)
	}
	return feed, nil
}
