package middleware

import (
	"errors"

	"spending-backend/internal/pkg/apperr"
	"spending-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// statusFor maps an error returned by a handler to its HTTP status.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case apperr.IsInvalid(err):
		return fiber.StatusBadRequest
	case apperr.IsUpstream(err):
		return fiber.StatusServiceUnavailable
	case errors.As(err, &fe):
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler is the global error handler. Returns the standard error format.
// Internal errors are logged and their text is not exposed.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	message := "Internal Server Error"
	details := map[string]interface{}{}

	var fe *fiber.Error
	switch {
	case apperr.IsInvalid(err), apperr.IsUpstream(err):
		message = apperr.Message(err)
	case errors.As(err, &fe):
		message = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("trace_id", GetTraceID(c)).Str("path", c.Path()).Int("status", code).Msg("request failed")
	}
	if id := GetTraceID(c); id != "" {
		details["traceId"] = id
	}
	return response.Error(c, message, code, details)
}
