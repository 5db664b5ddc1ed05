// Package showtimes is the client for the external cinema-showtimes XML feed.
package showtimes

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
)

// Feed is the parsed showtimes document for one area.
type Feed struct {
	XMLName xml.Name `xml:"showdata" json:"-"`
	Cinemas []Cinema `xml:"cinemas>cinema" json:"cinemas"`
}

type Cinema struct {
	ID      string    `xml:"id,attr" json:"id"`
	Name    string    `xml:"name,attr" json:"name"`
	Address string    `xml:"address" json:"address,omitempty"`
	Films   []Film    `xml:"films>film" json:"films"`
}

type Film struct {
	Title     string     `xml:"title" json:"title"`
	Rating    string     `xml:"rating" json:"rating,omitempty"`
	Runtime   int        `xml:"runtime" json:"runtime,omitempty"`
	Showtimes []Showtime `xml:"showtimes>showtime" json:"showtimes"`
}

type Showtime struct {
	Time   string `xml:"time,attr" json:"time"`
	Screen string `xml:"screen,attr" json:"screen,omitempty"`
}

type Client struct {
	feedURL string
	http    *http.Client
}

func New(feedURL string, timeout time.Duration) *Client {
	return &Client{
		feedURL: feedURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchRaw returns the raw XML for an area, for cache storage.
func (c *Client) FetchRaw(area string) ([]byte, error) {
	u := fmt.Sprintf("%s?area=%s", c.feedURL, url.QueryEscape(area))

	resp, err := c.http.Get(u)
	if err != nil {
		resp, err = c.http.Get(u)
		if err != nil {
			return nil, apperr.Upstream("showtimes feed unreachable", err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperr.Upstream(fmt.Sprintf("showtimes feed error: status %d", resp.StatusCode), nil)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Upstream("failed to read showtimes feed", err)
	}
	return raw, nil
}

// Parse decodes a raw feed document.
func Parse(raw []byte) (*Feed, error) {
	var feed Feed
	if err := xml.Unmarshal(raw, &feed); err != nil {
		return nil, apperr.Upstream("malformed showtimes feed", err)
	}
	return &feed, nil
}
