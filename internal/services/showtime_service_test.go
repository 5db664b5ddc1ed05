package services

import (
	"testing"
	"time"

	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
	"github.com/cinetalkapp/cinetalk-backend/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<showdata>
  <cinemas>
    <cinema id="c1" name="Downtown Cinema">
      <address>1 Main St</address>
      <films>
        <film>
          <title>Fight Club</title>
          <showtimes>
            <showtime time="19:30" screen="2"/>
          </showtimes>
        </film>
      </films>
    </cinema>
  </cinemas>
</showdata>`

// countingFetcher records how many times the feed was actually hit.
type countingFetcher struct {
	payload []byte
	err     error
	calls   int
}

func (f *countingFetcher) FetchRaw(area string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func newShowtimeService(t *testing.T, fetcher FeedFetcher) *ShowtimeService {
	t.Helper()
	fc, err := cache.New(t.TempDir(), time.Minute)
	require.NoError(t, err)
	return NewShowtimeService(fetcher, fc)
}

func TestShowtimesFetchesAndCaches(t *testing.T) {
	fetcher := &countingFetcher{payload: []byte(feedXML)}
	svc := newShowtimeService(t, fetcher)

	feed, err := svc.Get("Helsinki")
	require.NoError(t, err)
	require.Len(t, feed.Cinemas, 1)
	assert.Equal(t, "Downtown Cinema", feed.Cinemas[0].Name)
	require.Len(t, feed.Cinemas[0].Films, 1)
	assert.Equal(t, "19:30", feed.Cinemas[0].Films[0].Showtimes[0].Time)

	// The second read is served from the cache.
	_, err = svc.Get("helsinki")
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls, "area keys are case-insensitive")

	// A different area is its own cache entry.
	_, err = svc.Get("Tampere")
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)
}

func TestShowtimesUpstreamFailurePropagates(t *testing.T) {
	fetcher := &countingFetcher{err: apperr.Upstream("showtimes feed unreachable", nil)}
	svc := newShowtimeService(t, fetcher)

	_, err := svc.Get("Helsinki")
	assert.True(t, apperr.IsKind(err, apperr.KindUpstream))
}

func TestShowtimesEmptyArea(t *testing.T) {
	svc := newShowtimeService(t, &countingFetcher{payload: []byte(feedXML)})

	_, err := svc.Get("   ")
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))
}

func TestShowtimesCorruptCacheEntryRefetches(t *testing.T) {
	fetcher := &countingFetcher{payload: []byte(feedXML)}
	fc, err := cache.New(t.TempDir(), time.Minute)
	require.NoError(t, err)
	svc := NewShowtimeService(fetcher, fc)

	require.NoError(t, fc.Put("showtimes:helsinki", []byte("not xml at all <<<")))

	feed, err := svc.Get("Helsinki")
	require.NoError(t, err)
	assert.Len(t, feed.Cinemas, 1)
	assert.Equal(t, 1, fetcher.calls)
}
