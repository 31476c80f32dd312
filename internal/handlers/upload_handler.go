package handlers

import (
	"github.com/gofiber/fiber/v2"

	"traqcheck/candidate-onboarding/internal/models"
	"traqcheck/candidate-onboarding/internal/services"
)

type UploadHandler struct {
	candidateService services.CandidateService
	maxFileSize      int64
}

func NewUploadHandler(
	candidateService services.CandidateService,
	maxFileSize int64,
) *UploadHandler {
	return &UploadHandler{
		candidateService: candidateService,
		maxFileSize:      maxFileSize,
	}
}

// HandleUpload accepts a resume in the "resume" field and creates a pending candidate.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "failed to parse multipart form")
	}

	fh := formFile(form, "resume")
	if fh == nil {
		return badRequest(c, "No resume file provided. Upload a PDF or DOCX file in the 'resume' field.")
	}

	upload, err := readUpload(fh, h.maxFileSize)
	if err != nil {
		return respondError(c, err)
	}

	candidate, err := h.candidateService.Upload(c.UserContext(), *upload)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Resume uploaded, extraction queued",
		"candidate": models.UploadResponse{
			ID:               candidate.ID.String(),
			Filename:         candidate.ResumeFilename,
			ExtractionStatus: string(candidate.ExtractionStatus),
		},
	})
}
