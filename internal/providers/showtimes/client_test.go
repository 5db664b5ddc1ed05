package showtimes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<showdata>
  <cinemas>
    <cinema id="c1" name="Grand Palace">
      <address>1 Main St</address>
      <films>
        <film>
          <title>Fight Club</title>
          <rating>R</rating>
          <runtime>139</runtime>
          <showtimes>
            <showtime time="19:30" screen="2"/>
            <showtime time="22:00" screen="2"/>
          </showtimes>
        </film>
      </films>
    </cinema>
  </cinemas>
</showdata>`

func TestFetchAndParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "berlin", r.URL.Query().Get("area"))
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	client := New(srv.URL, 5*time.Second)
	raw, err := client.FetchRaw("berlin")
	require.NoError(t, err)

	feed, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, feed.Cinemas, 1)
	assert.Equal(t, "Grand Palace", feed.Cinemas[0].Name)
	require.Len(t, feed.Cinemas[0].Films, 1)
	assert.Equal(t, "Fight Club", feed.Cinemas[0].Films[0].Title)
	assert.Len(t, feed.Cinemas[0].Films[0].Showtimes, 2)
	assert.Equal(t, "19:30", feed.Cinemas[0].Films[0].Showtimes[0].Time)
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("not xml at all <"))
	assert.Error(t, err)
}
