package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/nikitalevshuk/university-tests/backend/utils"
)

// LoggingMiddleware writes one entry per request and puts a request-scoped
// logger into the user context for handlers.
func LoggingMiddleware(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID, _ := c.Locals("requestid").(string)
		c.SetUserContext(utils.WithLogger(c.UserContext(),
			logger.With().Str("request_id", requestID).Logger()))

		// Передаем управление следующему обработчику
		err := c.Next()
		if err != nil {
			// Let the app's error handler set the final status before logging.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		event := logger.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			event = logger.Error()
		case status >= fiber.StatusBadRequest:
			event = logger.Warn()
		}

		event.
			Str("ip", c.IP()).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_agent", c.Get(fiber.HeaderUserAgent)).
			Str("request_id", requestID).
			AnErr("error", err).
			Msg("request")

		return nil
	}
}
