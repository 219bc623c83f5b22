package api

import (
	"github.com/bilgisen/radiocast/internal/content"
	"github.com/bilgisen/radiocast/internal/metrics"
	"github.com/bilgisen/radiocast/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// imageFields are the multipart names accepted for a cover image
var imageFields = []string{"image", "coverImage"}

// ListNews handles GET /api/news
func (h *Handlers) ListNews(c *fiber.Ctx) error {
	page, err := h.news.List(c.UserContext(), middleware.ListQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetNews handles GET /api/news/:slug
func (h *Handlers) GetNews(c *fiber.Ctx) error {
	article, err := h.news.Get(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(article)
}

// CreateNews handles POST /api/news (multipart fields plus an optional image)
func (h *Handlers) CreateNews(c *fiber.Ctx) error {
	var in content.NewsInput
	if err := parseBody(c, &in); err != nil {
		return badBody(c, err)
	}

	image, done, err := formFile(c, imageFields...)
	if err != nil {
		return respondError(c, err)
	}
	defer done()

	article, err := h.news.Create(c.UserContext(), in, image, origin(c))
	metrics.RecordWrite("news", "create", err)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(article)
}

// UpdateNews handles PUT /api/news/:slug. Fields left out keep their values.
func (h *Handlers) UpdateNews(c *fiber.Ctx) error {
	var in content.NewsInput
	if err := parseBody(c, &in); err != nil {
		return badBody(c, err)
	}

	image, done, err := formFile(c, imageFields...)
	if err != nil {
		return respondError(c, err)
	}
	defer done()

	article, err := h.news.Update(c.UserContext(), c.Params("slug"), in, image, origin(c))
	metrics.RecordWrite("news", "update", err)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(article)
}

// DeleteNews handles DELETE /api/news/:slug
func (h *Handlers) DeleteNews(c *fiber.Ctx) error {
	err := h.news.Delete(c.UserContext(), c.Params("slug"))
	metrics.RecordWrite("news", "delete", err)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Deleted"})
}

// parseBody fills dst from a JSON, urlencoded or multipart body. An empty
// body leaves dst untouched.
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(dst)
}
