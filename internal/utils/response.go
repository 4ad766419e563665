package utils

import (
	"errors"

	domain "habitstake/internal/errors"

	"github.com/gofiber/fiber/v2"
)

// Respond sends a JSON response with the specified status code.
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// Success sends a successful JSON response.
func Success(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusOK, data)
}

// BadRequest sends a JSON error response with status 400.
func BadRequest(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusBadRequest, fiber.Map{"error": message})
}

// Unauthorized sends a JSON error response with status 401.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusUnauthorized, fiber.Map{"error": message})
}

// Forbidden sends a JSON error response with status 403.
func Forbidden(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusForbidden, fiber.Map{"error": message})
}

// NotFound sends a JSON error response with status 404.
func NotFound(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusNotFound, fiber.Map{"error": message})
}

// Conflict sends a JSON error response with status 409.
func Conflict(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusConflict, fiber.Map{"error": message})
}

// InternalError sends a JSON error response with status 500.
func InternalError(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusInternalServerError, fiber.Map{"error": message})
}

// DomainErrorResponse maps a classified domain error onto an HTTP status
// and includes its stable code, so clients can tell "fix your input"
// from "not authorized" from "already resolved".
func DomainErrorResponse(c *fiber.Ctx, err error) error {
	var derr *domain.DomainError
	if !errors.As(err, &derr) {
		return InternalError(c, "operation failed")
	}

	status := fiber.StatusBadRequest
	switch derr {
	case domain.ErrUnauthorized:
		status = fiber.StatusForbidden
	case domain.ErrBetNotFound, domain.ErrAccountNotFound, domain.ErrNotInitialized:
		status = fiber.StatusNotFound
	case domain.ErrBetNotActive, domain.ErrBetExists, domain.ErrAlreadyInitialized:
		status = fiber.StatusConflict
	}

	return Respond(c, status, fiber.Map{
		"error": derr.Message,
		"code":  derr.Code,
	})
}
