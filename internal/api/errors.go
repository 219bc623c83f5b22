package api

import (
	"errors"

	"github.com/bilgisen/radiocast/internal/content"
	"github.com/bilgisen/radiocast/internal/logger"
	"github.com/gofiber/fiber/v2"
)

// respondError maps service errors onto status codes. Unknown errors are
// logged and answered with a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	var verr *content.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
	case errors.Is(err, content.ErrNotFound):
		return notFound(c)
	case errors.Is(err, content.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": content.ErrConflict.Error(),
		})
	}

	logger.Get().Error().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("Request failed")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
	})
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"message": "Not found",
	})
}

func badBody(c *fiber.Ctx, err error) error {
	logger.Get().Debug().Err(err).Str("path", c.Path()).Msg("Unparseable request body")
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
	})
}
