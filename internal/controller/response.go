package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Success отвечает 200 с данными
func Success(c *fiber.Ctx, message string, data any) error {
	return SuccessWithCode(c, fiber.StatusOK, message, data)
}

// SuccessWithCode отвечает с произвольным кодом, например 201 при создании
func SuccessWithCode(c *fiber.Ctx, code int, message string, data any) error {
	return c.Status(code).JSON(fiber.Map{
		"code":    code,
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

// Error отвечает ошибкой; reason позволяет клиенту различать нарушенные правила
func Error(c *fiber.Ctx, code int, message, reason string) error {
	return c.Status(code).JSON(fiber.Map{
		"code":    code,
		"status":  "error",
		"message": message,
		"reason":  reason,
	})
}

// ValidationError отвечает 400 со списком невалидных полей
func ValidationError(c *fiber.Ctx, errs validator.ValidationErrors) error {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = fe.Tag()
	}

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"code":    fiber.StatusBadRequest,
		"status":  "error",
		"message": "validation failed",
		"reason":  "Validation",
		"errors":  fields,
	})
}
