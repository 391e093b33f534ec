package controller

import (
	"context"
	"errors"

	"github.com/Freeeeeet/lms_backoffice/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler converts errors returned by handlers into the JSON error envelope.
// Anything that is not a business or validation error is logged and reported as 500.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			serviceErr *service.Error
			invalid    validator.ValidationErrors
			fiberErr   *fiber.Error
		)

		switch {
		case errors.As(err, &serviceErr):
			return Error(c, statusFor(serviceErr.Kind), serviceErr.Message, serviceErr.Reason)
		case errors.As(err, &invalid):
			return ValidationError(c, invalid)
		case errors.As(err, &fiberErr):
			return Error(c, fiberErr.Code, fiberErr.Message, "")
		case errors.Is(err, context.DeadlineExceeded):
			logger.Warn("Request timed out",
				zap.String("request_id", RequestID(c)),
				zap.String("path", c.Path()),
			)
			return Error(c, fiber.StatusServiceUnavailable, "request timed out", "Timeout")
		}

		logger.Error("Request failed",
			zap.String("request_id", RequestID(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return Error(c, fiber.StatusInternalServerError, "internal server error", "Internal")
	}
}

func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindNotFound:
		return fiber.StatusNotFound
	case service.KindConflict:
		return fiber.StatusConflict
	case service.KindValidation:
		return fiber.StatusBadRequest
	case service.KindInternal:
		return fiber.StatusInternalServerError
	}
	return fiber.StatusInternalServerError
}
