// Package nowplaying reads the live stream's current track from the stream
// provider's metadata endpoint.
package nowplaying

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/bilgisen/radiocast/internal/logger"
	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"
)

// Titles shown when the provider has nothing usable
const (
	NoTrackInfo = "No track info"
	Unavailable = "Unable to fetch track info"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// Track is what the public site shows under the player
type Track struct {
	Title     string    `json:"title"`
	Available bool      `json:"available"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// metadata is the provider payload; only the title is used
type metadata struct {
	Title string `json:"title"`
}

// Client fetches and briefly caches the current track
type Client struct {
	http    *resty.Client
	url     string
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
	group   singleflight.Group

	mu      sync.Mutex
	last    *Track
	expires time.Time
}

func NewClient(url string, ttl, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetTimeout(timeout).
			SetRetryCount(2).
			SetRetryWaitTime(500 * time.Millisecond).
			SetRetryMaxWaitTime(2 * time.Second),
		url:     url,
		ttl:     ttl,
		timeout: timeout,
		now:     time.Now,
	}
}

// Current returns the cached track while it is fresh and refreshes it
// otherwise. Concurrent callers share one refresh, bounded by the client
// timeout and independent of any caller's context; a caller whose context
// ends first gets the fallback. When the provider fails the last known track
// is returned; with no last track the result is marked unavailable and the
// error is returned.
func (c *Client) Current(ctx context.Context) (Track, error) {
	if track, ok := c.fresh(); ok {
		return track, nil
	}

	ch := c.group.DoChan("current", func() (interface{}, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		track, err := c.fetch(refreshCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.last = &track
		c.expires = c.now().Add(c.ttl)
		c.mu.Unlock()
		return track, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return c.fallback(res.Err)
		}
		return res.Val.(Track), nil
	case <-ctx.Done():
		return c.fallback(ctx.Err())
	}
}

func (c *Client) fresh() (Track, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last != nil && c.now().Before(c.expires) {
		return *c.last, true
	}
	return Track{}, false
}

func (c *Client) fallback(err error) (Track, error) {
	c.mu.Lock()
	last := c.last
	c.mu.Unlock()

	if last != nil {
		log := logger.Component("nowplaying")
		log.Warn().Err(err).Msg("Refresh failed, serving last known track")
		return *last, nil
	}
	return Track{Title: Unavailable, FetchedAt: c.now().UTC()}, err
}

func (c *Client) fetch(ctx context.Context) (Track, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(c.url)
	if err != nil {
		return Track{}, fmt.Errorf("failed to fetch now playing from %s: %w", c.url, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return Track{}, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode(), c.url)
	}

	var meta metadata
	if err := json.Unmarshal(resp.Body(), &meta); err != nil {
		return Track{}, fmt.Errorf("failed to parse now playing response: %w", err)
	}

	track := Track{Title: CleanTitle(meta.Title), Available: true, FetchedAt: c.now().UTC()}
	if track.Title == "" {
		track.Title = NoTrackInfo
		track.Available = false
	}
	return track, nil
}

// CleanTitle removes HTML tags and entities and normalizes whitespace
func CleanTitle(input string) string {
	cleaned := htmlTagRegex.ReplaceAllString(input, " ")
	cleaned = html.UnescapeString(cleaned)
	return strings.Join(strings.Fields(cleaned), " ")
}
