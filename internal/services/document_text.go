package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// TextDecoder turns the raw bytes of one document format into plain text.
type TextDecoder interface {
	MimeType() string
	DecodeText(ctx context.Context, data []byte) (string, error)
}

type pdfDecoder struct{}

func NewPDFDecoder() TextDecoder {
	return &pdfDecoder{}
}

func (p *pdfDecoder) MimeType() string {
	return MimePDF
}

func (p *pdfDecoder) DecodeText(ctx context.Context, data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, the rest may still carry the fields
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

type docxDecoder struct{}

func NewDOCXDecoder() TextDecoder {
	return &docxDecoder{}
}

func (d *docxDecoder) MimeType() string {
	return MimeDOCX
}

func (d *docxDecoder) DecodeText(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, _, err := docconv.ConvertDocx(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse DOCX: %w", err)
	}
	return text, nil
}

// CleanText trims every line and drops blank runs longer than one line.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	cleanedLines := make([]string, 0, len(lines))
	blank := false

	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(cleanedLines) > 0 {
				cleanedLines = append(cleanedLines, "")
			}
			blank = true
			continue
		}
		blank = false
		cleanedLines = append(cleanedLines, line)
	}

	return strings.TrimSpace(strings.Join(cleanedLines, "\n"))
}
