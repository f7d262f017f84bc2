package handlers

import (
	"errors"
	"fmt"
	"log"

	"multistore/internal/repositories"
	"multistore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// respondError maps service and repository errors to an HTTP status and the
// standard error body. action names what failed, e.g. "Could not load cart".
func respondError(c *fiber.Ctx, action string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, repositories.ErrNotFound), errors.Is(err, services.ErrStoreUnavailable):
		status = fiber.StatusNotFound
	case errors.Is(err, repositories.ErrConflict), errors.Is(err, services.ErrEmailTaken):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrPlanLimitReached):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrPaymentFailed):
		status = fiber.StatusPaymentRequired
	case errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrPhoneRequired),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidTheme),
		errors.Is(err, services.ErrUnknownEvent):
		status = fiber.StatusUnprocessableEntity
	}
	if status == fiber.StatusInternalServerError {
		log.Printf("%s: %v", action, err)
	}
	return c.Status(status).JSON(fiber.Map{
		"message": action,
		"error":   err.Error(),
	})
}

// badBody answers a request body that could not be parsed.
func badBody(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing request body for %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// validationFailed answers a struct that failed validation, listing every field.
func validationFailed(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// bind parses the request body into v and validates it. ok is false when a
// response was already written.
func bind(c *fiber.Ctx, validate *validator.Validate, v any) (bool, error) {
	if err := c.BodyParser(v); err != nil {
		return false, badBody(c, err)
	}
	if err := validate.Struct(v); err != nil {
		return false, validationFailed(c, err)
	}
	return true, nil
}
