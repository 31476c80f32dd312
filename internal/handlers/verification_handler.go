package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"traqcheck/candidate-onboarding/internal/models"
	"traqcheck/candidate-onboarding/internal/services"
)

type VerificationHandler struct {
	workflow    *services.VerificationWorkflow
	maxFileSize int64
}

func NewVerificationHandler(workflow *services.VerificationWorkflow, maxFileSize int64) *VerificationHandler {
	return &VerificationHandler{
		workflow:    workflow,
		maxFileSize: maxFileSize,
	}
}

func (h *VerificationHandler) HandleRequestDocuments(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	outcome, err := h.workflow.RequestDocuments(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.RequestDocumentsResponse{
		Message:   "Document request generated successfully",
		Request:   outcome.Request,
		AgentLogs: outcome.Logs,
	})
}

// HandleSubmitDocuments accepts "pan" and/or "aadhaar" files. Each file is judged on
// its own; a mixed outcome answers 207.
func (h *VerificationHandler) HandleSubmitDocuments(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "failed to parse multipart form")
	}

	var submission services.Submission
	if fh := formFile(form, string(models.DocumentPAN)); fh != nil {
		if submission.PAN, err = readUpload(fh, h.maxFileSize); err != nil {
			return respondError(c, err)
		}
	}
	if fh := formFile(form, string(models.DocumentAadhaar)); fh != nil {
		if submission.Aadhaar, err = readUpload(fh, h.maxFileSize); err != nil {
			return respondError(c, err)
		}
	}

	result, err := h.workflow.SubmitDocuments(c.UserContext(), id, submission)
	if err != nil {
		return respondError(c, err)
	}

	response := models.SubmitDocumentsResponse{
		Documents:        result.Documents,
		Slots:            make([]models.SlotResponse, 0, len(result.Slots)),
		DocumentComplete: result.Complete,
	}
	for _, slot := range result.Slots {
		sr := models.SlotResponse{Slot: slot.Slot, Status: "accepted", Document: slot.Document}
		if slot.Err != nil {
			sr.Status = "rejected"
			sr.Error = errorBody(slot.Err)
		}
		response.Slots = append(response.Slots, sr)
	}

	failed := result.Failed()
	switch {
	case failed == 0:
		response.Message = "Documents submitted successfully"
		return c.Status(fiber.StatusCreated).JSON(response)
	case failed == len(result.Slots):
		response.Message = "No documents were accepted"
		return c.Status(StatusFor(result.Slots[0].Err)).JSON(response)
	default:
		response.Message = fmt.Sprintf("%d of %d documents accepted", len(result.Slots)-failed, len(result.Slots))
		return c.Status(fiber.StatusMultiStatus).JSON(response)
	}
}

// HandleDownload streams a stored identity document.
func (h *VerificationHandler) HandleDownload(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	doc, data, err := h.workflow.OpenDocument(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, doc.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.Filename))
	return c.Send(data)
}
