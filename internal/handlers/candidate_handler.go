package handlers

import (
	"github.com/gofiber/fiber/v2"

	"traqcheck/candidate-onboarding/internal/models"
	"traqcheck/candidate-onboarding/internal/services"
)

type CandidateHandler struct {
	candidateService services.CandidateService
}

func NewCandidateHandler(candidateService services.CandidateService) *CandidateHandler {
	return &CandidateHandler{candidateService: candidateService}
}

func (h *CandidateHandler) HandleList(c *fiber.Ctx) error {
	candidates, err := h.candidateService.ListCandidates(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	responses := make([]models.CandidateResponse, 0, len(candidates))
	for i := range candidates {
		responses = append(responses, models.NewCandidateResponse(&candidates[i]))
	}
	return c.JSON(fiber.Map{
		"candidates": responses,
		"count":      len(responses),
	})
}

func (h *CandidateHandler) HandleGet(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	candidate, err := h.candidateService.GetCandidate(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.NewCandidateResponse(candidate))
}

// HandleCancelExtraction stops a pending or running extraction.
func (h *CandidateHandler) HandleCancelExtraction(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	status, err := h.candidateService.CancelExtraction(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	code := fiber.StatusOK
	message := "Extraction cancelled"
	if status == models.StatusProcessing {
		code = fiber.StatusAccepted
		message = "Cancellation requested, extraction is stopping"
	}
	return c.Status(code).JSON(fiber.Map{
		"message":           message,
		"id":                id.String(),
		"extraction_status": status,
	})
}

func (h *CandidateHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.candidateService.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
