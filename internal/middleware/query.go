package middleware

import (
	"errors"

	"github.com/bilgisen/radiocast/internal/content"
	"github.com/bilgisen/radiocast/internal/logger"
	"github.com/gofiber/fiber/v2"
)

// QueryKey is the Locals key holding the parsed content.ListQuery
const QueryKey = "listQuery"

// ValidateQueryParams parses page, limit, q and category into a
// content.ListQuery, clamps it into range and stores it under QueryKey
func ValidateQueryParams(defaultLimit, maxLimit int) fiber.Handler {
	v := content.NewValidator()

	return func(c *fiber.Ctx) error {
		var q content.ListQuery
		if err := c.QueryParser(&q); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid query parameters",
				"errors":  []content.FieldError{{Field: "query", Message: "page and limit must be whole numbers"}},
			})
		}

		verr := &content.ValidationError{}
		if err := v.Check(q, verr); err != nil {
			return err
		}
		if len(verr.Fields) > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid query parameters",
				"errors":  verr.Fields,
			})
		}

		c.Locals(QueryKey, q.Normalize(defaultLimit, maxLimit))
		return c.Next()
	}
}

// ListQuery returns the query stored by ValidateQueryParams
func ListQuery(c *fiber.Ctx) content.ListQuery {
	if q, ok := c.Locals(QueryKey).(content.ListQuery); ok {
		return q
	}
	return content.ListQuery{}
}

// ErrorHandler is the app-wide fallback for errors returned by handlers.
// Bodies always carry a message and 5xx details stay in the log.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if code < fiber.StatusInternalServerError {
			message = fe.Message
		}
	}
	if code == fiber.StatusNotFound {
		message = "Not found"
	}

	event := logger.Get().Warn()
	if code >= fiber.StatusInternalServerError {
		event = logger.Get().Error()
	}
	event.Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", code).
		Msg("HTTP error")

	return c.Status(code).JSON(fiber.Map{
		"message": message,
	})
}
