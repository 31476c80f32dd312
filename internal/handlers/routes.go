package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything the API routes need.
type Handlers struct {
	Upload       *UploadHandler
	Candidate    *CandidateHandler
	Verification *VerificationHandler
	// UploadLimit guards the routes that accept files. Nil disables it.
	UploadLimit fiber.Handler
}

// Register mounts the API under /api/v1.
func Register(app *fiber.App, h Handlers) {
	limit := h.UploadLimit
	if limit == nil {
		limit = func(c *fiber.Ctx) error { return c.Next() }
	}

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/candidates/upload", limit, h.Upload.HandleUpload)
	api.Get("/candidates", h.Candidate.HandleList)
	api.Get("/candidates/:id", h.Candidate.HandleGet)
	api.Delete("/candidates/:id/extraction", h.Candidate.HandleCancelExtraction)
	api.Post("/candidates/:id/request-documents", h.Verification.HandleRequestDocuments)
	api.Post("/candidates/:id/submit-documents", limit, h.Verification.HandleSubmitDocuments)
	api.Get("/documents/:id", h.Verification.HandleDownload)
	api.Get("/stats", h.Candidate.HandleStats)
}
