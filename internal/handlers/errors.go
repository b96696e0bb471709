package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"userhub/internal/errs"
)

// ErrorHandler renders errors returned by handlers. *errs.HTTPError and
// *fiber.Error keep their status; anything else is logged and answered with
// a generic 500.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if httpErr, ok := errs.As(err); ok {
			return c.Status(httpErr.Status).JSON(httpErr)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(&errs.HTTPError{
				Code:    errs.StatusCode(fiberErr.Code),
				Message: fiberErr.Message,
				Status:  fiberErr.Code,
			})
		}

		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("unhandled error")
		internal := errs.NewInternalServerError()
		return c.Status(internal.Status).JSON(internal)
	}
}
