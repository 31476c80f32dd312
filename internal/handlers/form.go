package handlers

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"traqcheck/candidate-onboarding/internal/services"
)

// readUpload reads one multipart file. It reads at most limit+1 bytes so the services
// still see an oversized file and reject it with their own error.
func readUpload(fh *multipart.FileHeader, limit int64) (*services.Upload, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return &services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// formFile returns the named file or nil when the field is absent or has no filename.
func formFile(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil {
		return nil
	}
	files, ok := form.File[field]
	if !ok || len(files) == 0 || files[0].Filename == "" {
		return nil
	}
	return files[0]
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %q", name, c.Params(name))
	}
	return id, nil
}
