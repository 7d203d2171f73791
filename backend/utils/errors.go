package utils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// AppError is an error with a client-facing status and message.
type AppError struct {
	Code    int
	Message string
	Details interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

const credentialsMessage = "Could not validate credentials"

func ValidationFailed(details map[string]string) *AppError {
	return &AppError{Code: fiber.StatusUnprocessableEntity, Message: "Validation Error", Details: details}
}

// AuthenticationFailed hides err from the client; every auth failure
// looks the same from outside.
func AuthenticationFailed(err error) *AppError {
	return &AppError{Code: fiber.StatusUnauthorized, Message: credentialsMessage, Err: err}
}

// InvalidCredentials is the login failure. It names no field.
func InvalidCredentials(err error) *AppError {
	return &AppError{Code: fiber.StatusUnauthorized, Message: "Invalid credentials", Err: err}
}

func NotFoundError(message string) *AppError {
	return &AppError{Code: fiber.StatusNotFound, Message: message}
}

func ConflictError(message string) *AppError {
	return &AppError{Code: fiber.StatusConflict, Message: message}
}

// ErrorHandler renders errors returned by handlers. Anything that is not
// an AppError or fiber.Error is logged and reported as a bare 500.
func ErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *AppError
		if errors.As(err, &appErr) {
			if appErr.Code == fiber.StatusUnauthorized {
				c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
				if appErr.Err != nil {
					logger.Debug().Err(appErr.Err).Str("path", c.Path()).Msg("authentication failed")
				}
			}
			return writeError(c, appErr.Code, appErr.Message, appErr.Details)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return writeError(c, fiberErr.Code, fiberErr.Message, nil)
		}

		logger.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("unhandled error")
		return writeError(c, fiber.StatusInternalServerError, "Internal server error", nil)
	}
}
