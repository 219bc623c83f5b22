package api

import (
	"github.com/bilgisen/radiocast/internal/content"
	"github.com/bilgisen/radiocast/internal/metrics"
	"github.com/bilgisen/radiocast/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// audioFields are the multipart names accepted for an audio file. The admin
// form sends the file as audioUrl; API clients use audioFile.
var audioFields = []string{"audioFile", "audio", "audioUrl"}

// ListPodcasts handles GET /api/podcasts
func (h *Handlers) ListPodcasts(c *fiber.Ctx) error {
	page, err := h.podcasts.List(c.UserContext(), middleware.ListQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetPodcast handles GET /api/podcasts/:slug
func (h *Handlers) GetPodcast(c *fiber.Ctx) error {
	episode, err := h.podcasts.Get(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(episode)
}

// CreatePodcast handles POST /api/podcasts (fields, optional cover, required audio)
func (h *Handlers) CreatePodcast(c *fiber.Ctx) error {
	var in content.PodcastInput
	if err := parseBody(c, &in); err != nil {
		return badBody(c, err)
	}

	media, done, err := podcastMedia(c)
	if err != nil {
		return respondError(c, err)
	}
	defer done()

	episode, err := h.podcasts.Create(c.UserContext(), in, media, origin(c))
	metrics.RecordWrite("podcasts", "create", err)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(episode)
}

// UpdatePodcast handles PUT /api/podcasts/:slug
func (h *Handlers) UpdatePodcast(c *fiber.Ctx) error {
	var in content.PodcastInput
	if err := parseBody(c, &in); err != nil {
		return badBody(c, err)
	}

	media, done, err := podcastMedia(c)
	if err != nil {
		return respondError(c, err)
	}
	defer done()

	episode, err := h.podcasts.Update(c.UserContext(), c.Params("slug"), in, media, origin(c))
	metrics.RecordWrite("podcasts", "update", err)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(episode)
}

// DeletePodcast handles DELETE /api/podcasts/:slug
func (h *Handlers) DeletePodcast(c *fiber.Ctx) error {
	err := h.podcasts.Delete(c.UserContext(), c.Params("slug"))
	metrics.RecordWrite("podcasts", "delete", err)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Deleted"})
}

func podcastMedia(c *fiber.Ctx) (content.PodcastMedia, func(), error) {
	image, closeImage, err := formFile(c, imageFields...)
	if err != nil {
		return content.PodcastMedia{}, closeImage, err
	}
	audio, closeAudio, err := formFile(c, audioFields...)
	if err != nil {
		closeImage()
		return content.PodcastMedia{}, closeAudio, err
	}
	return content.PodcastMedia{Image: image, Audio: audio}, func() {
		closeImage()
		closeAudio()
	}, nil
}
