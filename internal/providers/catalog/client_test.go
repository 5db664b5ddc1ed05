package catalog

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMovie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/550", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":550,"title":"Fight Club","release_date":"1999-10-15","runtime":139,"vote_average":8.4}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", 5*time.Second)
	movie, err := client.GetMovie(550)
	require.NoError(t, err)
	assert.Equal(t, 550, movie.ID)
	assert.Equal(t, "Fight Club", movie.Title)
	assert.Equal(t, 139, movie.Runtime)
}

func TestGetMovieNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(srv.URL, "k", 5*time.Second)
	_, err := client.GetMovie(999999)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestGetMovieUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := New(srv.URL, "k", 5*time.Second)
	_, err := client.GetMovie(550)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}

func TestGetMovieUnreachable(t *testing.T) {
	client := New("http://127.0.0.1:1", "k", 200*time.Millisecond)
	_, err := client.GetMovie(550)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}
