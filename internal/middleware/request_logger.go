package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"userhub/internal/errs"
)

// RequestLogger writes one structured line per request. The level follows the
// status class: 5xx error, 4xx warn, otherwise info.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// The error handler has not written the response yet when a handler
		// fails, so take the status from the error.
		status := c.Response().StatusCode()
		if err != nil {
			status = statusOf(err)
		}

		var e *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			e = log.Error().Err(err)
		case status >= fiber.StatusBadRequest:
			e = log.Warn()
		default:
			e = log.Info()
		}

		if requestID := c.GetRespHeader(fiber.HeaderXRequestID); requestID != "" {
			e = e.Str("request_id", requestID)
		}
		e.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Msg("request")

		return err
	}
}

func statusOf(err error) int {
	if httpErr, ok := errs.As(err); ok {
		return httpErr.Status
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}
