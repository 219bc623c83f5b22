package api

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/bilgisen/radiocast/internal/config"
	"github.com/bilgisen/radiocast/internal/content"
	"github.com/bilgisen/radiocast/internal/logger"
	"github.com/bilgisen/radiocast/internal/metrics"
	"github.com/bilgisen/radiocast/internal/nowplaying"
	"github.com/bilgisen/radiocast/internal/storage"
	"github.com/gofiber/fiber/v2"
)

// NowPlaying reports the live stream's current track
type NowPlaying interface {
	Current(ctx context.Context) (nowplaying.Track, error)
}

type Handlers struct {
	config     *config.Config
	news       *content.NewsService
	podcasts   *content.PodcastService
	media      storage.Store
	nowPlaying NowPlaying
	started    time.Time
}

func NewHandlers(cfg *config.Config, news *content.NewsService, podcasts *content.PodcastService, media storage.Store, np NowPlaying) *Handlers {
	return &Handlers{
		config:     cfg,
		news:       news,
		podcasts:   podcasts,
		media:      media,
		nowPlaying: np,
		started:    time.Now(),
	}
}

// Root handles GET /
func (h *Handlers) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "service": "radio-backend"})
}

// HealthCheck handles the /api/health endpoint
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
		"time":   time.Now().Format(time.RFC3339),
	})
}

// NowPlaying handles GET /api/now-playing. Provider failures still answer
// 200 so the player can show the fallback title.
func (h *Handlers) NowPlaying(c *fiber.Ctx) error {
	if h.nowPlaying == nil {
		return c.JSON(nowplaying.Track{Title: nowplaying.NoTrackInfo, FetchedAt: time.Now().UTC()})
	}

	track, err := h.nowPlaying.Current(c.UserContext())
	if err != nil {
		logger.Get().Warn().Err(err).Msg("Now playing unavailable")
	}
	return c.JSON(track)
}

// ServeUpload handles GET /uploads/:key
func (h *Handlers) ServeUpload(c *fiber.Ctx) error {
	key := c.Params("key")
	if !storage.ValidKey(key) {
		return notFound(c)
	}

	obj, err := h.media.Open(c.UserContext(), key)
	if errors.Is(err, storage.ErrNotFound) {
		return notFound(c)
	}
	if err != nil {
		return respondError(c, err)
	}

	if obj.ContentType != "" {
		c.Set(fiber.HeaderContentType, obj.ContentType)
	}
	// keys are random and never reused
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	return c.SendStream(obj.Body, int(obj.Size))
}

func origin(c *fiber.Ctx) content.Origin {
	return content.Origin{Scheme: c.Protocol(), Host: c.Hostname()}
}

// formFile returns the first file found under any of names. A request that
// is not multipart simply has no files.
func formFile(c *fiber.Ctx, names ...string) (*content.Upload, func(), error) {
	noop := func() {}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, noop, nil
	}

	for _, name := range names {
		files := form.File[name]
		if len(files) == 0 {
			continue
		}
		return openUpload(name, files[0])
	}
	return nil, noop, nil
}

func openUpload(field string, fh *multipart.FileHeader) (*content.Upload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	metrics.MediaUploadBytes.WithLabelValues(field).Add(float64(fh.Size))
	return &content.Upload{Filename: fh.Filename, Body: f}, func() { _ = f.Close() }, nil
}
