package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"traqcheck/candidate-onboarding/internal/models"
	"traqcheck/candidate-onboarding/internal/services"
)

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	switch services.KindOf(err) {
	case services.KindValidation:
		return fiber.StatusBadRequest
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindExtraction:
		return fiber.StatusUnprocessableEntity
	case services.KindStorage:
		return fiber.StatusServiceUnavailable
	case services.KindState:
		return fiber.StatusConflict
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

func errorBody(err error) *models.ErrorBody {
	body := &models.ErrorBody{Message: err.Error()}
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		body.Kind = string(svcErr.Kind)
		body.Subtype = svcErr.Subtype
	}
	return body
}

func respondError(c *fiber.Ctx, err error) error {
	code := StatusFor(err)
	body := errorBody(err)
	return c.Status(code).JSON(fiber.Map{
		"error":   body.Message,
		"code":    code,
		"kind":    body.Kind,
		"subtype": body.Subtype,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
		"code":  fiber.StatusBadRequest,
		"kind":  string(services.KindValidation),
	})
}
