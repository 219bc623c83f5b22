// Package content holds the news and podcast services: validation, slug
// derivation, media association, caching and change events around the
// repositories.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/bilgisen/radiocast/internal/cache"
	"github.com/bilgisen/radiocast/internal/events"
	"github.com/bilgisen/radiocast/internal/logger"
	"github.com/bilgisen/radiocast/internal/slug"
	"github.com/bilgisen/radiocast/internal/storage"
	"github.com/bilgisen/radiocast/internal/utils"
)

// MediaSaver persists an uploaded file and returns its key
type MediaSaver interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
}

// Upload is a file attached to a create or update request
type Upload struct {
	Filename string
	Body     io.Reader
}

// Origin is the scheme and host of the inbound request. Media URLs are built from it.
type Origin struct {
	Scheme string
	Host   string
}

// Deps are the collaborators shared by the services. Nil fields get working defaults.
type Deps struct {
	Media        MediaSaver
	Cache        cache.Cache
	CacheTTL     time.Duration
	Events       events.Publisher
	Validator    *Validator
	DefaultLimit int
	MaxLimit     int
	Now          func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Cache == nil {
		d.Cache = cache.NewMemoryCache()
		d.CacheTTL = 0
	}
	if d.Events == nil {
		d.Events = events.Noop{}
	}
	if d.Validator == nil {
		d.Validator = NewValidator()
	}
	if d.DefaultLimit <= 0 {
		d.DefaultLimit = DefaultLimit
	}
	if d.MaxLimit <= 0 {
		d.MaxLimit = MaxLimit
	}
	if d.DefaultLimit > d.MaxLimit {
		d.DefaultLimit = d.MaxLimit
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// base carries what both services do around their repository calls
type base struct {
	Deps
	kind string

	// fillMu orders cache fills against invalidation. gen counts writes of this kind.
	fillMu sync.Mutex
	gen    uint64
}

func (b *base) normalize(q ListQuery) ListQuery {
	return q.Normalize(b.DefaultLimit, b.MaxLimit)
}

func (b *base) slugKey(slug string) string {
	return b.kind + ":slug:" + slug
}

func (b *base) listKey(q ListQuery) string {
	return b.kind + ":list:" + utils.Key(fmt.Sprint(q.Page), fmt.Sprint(q.Limit), q.Search, q.Category)
}

// lookup fills dst from the cache. Any cache problem counts as a miss.
func (b *base) lookup(ctx context.Context, key string, dst interface{}) bool {
	if b.CacheTTL <= 0 {
		return false
	}
	data, err := b.Cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			logger.Get().Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logger.Get().Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		return false
	}
	return true
}

// generation is taken before a read whose result may be cached
func (b *base) generation() uint64 {
	b.fillMu.Lock()
	defer b.fillMu.Unlock()
	return b.gen
}

// remember caches v unless a write of this kind landed since the read began.
// Writes from other processes are only bounded by the TTL.
func (b *base) remember(ctx context.Context, key string, since uint64, v interface{}) {
	if b.CacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		logger.Get().Warn().Err(err).Str("key", key).Msg("Failed to encode cache entry")
		return
	}

	b.fillMu.Lock()
	defer b.fillMu.Unlock()
	if b.gen != since {
		return
	}
	if err := b.Cache.Set(ctx, key, data, b.CacheTTL); err != nil {
		logger.Get().Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

// invalidate drops every cached page and record of this kind
func (b *base) invalidate(ctx context.Context) {
	b.fillMu.Lock()
	defer b.fillMu.Unlock()
	b.gen++
	if err := b.Cache.DeletePrefix(ctx, b.kind+":"); err != nil {
		logger.Get().Warn().Err(err).Str("kind", b.kind).Msg("Cache invalidation failed")
	}
}

func (b *base) publish(ctx context.Context, eventType, slug, id string, record interface{}) {
	err := b.Events.Publish(ctx, events.Event{
		Type:      eventType,
		Slug:      slug,
		ID:        id,
		Record:    record,
		Timestamp: b.Now().UTC(),
	})
	if err != nil {
		logger.Get().Warn().Err(err).Str("event", eventType).Str("slug", slug).Msg("Failed to publish event")
	}
}

// store saves an upload and returns its key and public URL
func (b *base) store(ctx context.Context, up *Upload, origin Origin) (string, string, error) {
	if b.Media == nil {
		return "", "", errors.New("no media store configured")
	}
	key, err := b.Media.Save(ctx, up.Filename, up.Body)
	if err != nil {
		return "", "", fmt.Errorf("save %q: %w", up.Filename, err)
	}
	scheme := origin.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return key, storage.URL(scheme, origin.Host, key), nil
}

// slugFor derives the slug from a title, flagging titles with nothing usable in them
func (b *base) slugFor(title *string, verr *ValidationError) string {
	if blank(title) {
		return ""
	}
	derived := slug.Make(*title)
	if derived == "" {
		verr.Add("title", "title must contain at least one letter or digit")
	}
	return derived
}

var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDatetime accepts RFC 3339 and the shorter forms HTML date inputs send
func parseDatetime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", s)
}

func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
