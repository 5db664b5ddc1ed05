// Package catalog is the client for the external movie-metadata provider
// (a TMDB-compatible JSON API).
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
)

// MovieRecord is the subset of the provider's movie payload we materialize
// locally.
type MovieRecord struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	Runtime     int     `json:"runtime"`
	VoteAverage float64 `json:"vote_average"`
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New builds a catalog client with a bounded per-request timeout. Transport
// failures are retried once; the provider is never allowed to block a request
// indefinitely.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// GetMovie fetches one movie by its catalog id. A provider 404 means the
// movie does not exist; any other failure is an upstream error.
func (c *Client) GetMovie(id int) (*MovieRecord, error) {
	url := fmt.Sprintf("%s/movie/%d?api_key=%s", c.baseURL, id, c.apiKey)

	resp, err := c.http.Get(url)
	if err != nil {
		// Single retry on transport error.
		resp, err = c.http.Get(url)
		if err != nil {
			return nil, apperr.Upstream("movie catalog unreachable", err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperr.NotFound("movie not found upstream")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperr.Upstream(fmt.Sprintf("movie catalog error: status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Upstream("failed to read catalog response", err)
	}

	var record MovieRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, apperr.Upstream("malformed catalog response", err)
	}
	if record.ID == 0 {
		record.ID = id
	}
	return &record, nil
}
