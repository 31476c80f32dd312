package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"

	"traqcheck/candidate-onboarding/internal/models"
)

const (
	// MaxResumeBytes is the hard cap on resume input.
	MaxResumeBytes = 16 << 20
	// DefaultMinTextLength is the least amount of text a resume must carry.
	DefaultMinTextLength = 50
)

// fieldOrder is the order fields are scored and reported in.
var fieldOrder = []string{
	models.FieldName,
	models.FieldEmail,
	models.FieldPhone,
	models.FieldCompany,
	models.FieldDesignation,
	models.FieldSkills,
}

// ExtractionResult is the outcome of one extraction.
type ExtractionResult struct {
	models.ExtractedFields
	TextLength int
	// Ambiguous lists the fields whose strategies disagreed.
	Ambiguous []string
}

// FieldExtractor turns resume bytes into candidate fields. It holds no mutable state and
// may be shared between goroutines once configured.
type FieldExtractor struct {
	decoders      map[string]TextDecoder
	strategies    []FieldStrategy
	scorer        *ConfidenceScorer
	minTextLength int
	maxBytes      int
}

func NewFieldExtractor(minTextLength int) *FieldExtractor {
	if minTextLength <= 0 {
		minTextLength = DefaultMinTextLength
	}
	e := &FieldExtractor{
		decoders:      make(map[string]TextDecoder),
		strategies:    DefaultStrategies(),
		scorer:        NewConfidenceScorer(),
		minTextLength: minTextLength,
		maxBytes:      MaxResumeBytes,
	}
	e.WithDecoder(NewPDFDecoder())
	e.WithDecoder(NewDOCXDecoder())
	return e
}

// WithDecoder registers or replaces the decoder for its MIME type.
func (e *FieldExtractor) WithDecoder(d TextDecoder) *FieldExtractor {
	e.decoders[d.MimeType()] = d
	return e
}

// Register adds a strategy at the end of the pipeline. Its matches join those of the
// built-in strategies for the same field.
func (e *FieldExtractor) Register(s FieldStrategy) *FieldExtractor {
	e.strategies = append(e.strategies, s)
	return e
}

// Supports reports whether the MIME type or extension alias has a decoder.
func (e *FieldExtractor) Supports(mimeType string) bool {
	_, ok := e.decoders[NormalizeMimeType(mimeType)]
	return ok
}

// NormalizeMimeType strips parameters and resolves the extension aliases.
func NormalizeMimeType(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}
	switch mimeType {
	case ".pdf", "pdf":
		return MimePDF
	case ".docx", "docx":
		return MimeDOCX
	}
	return mimeType
}

// ExtractText decodes and cleans the document text without running the strategies.
func (e *FieldExtractor) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	normalized := NormalizeMimeType(mimeType)
	decoder, ok := e.decoders[normalized]
	if !ok {
		return "", newExtractionError(SubtypeUnsupportedFormat, nil, "unsupported format %q", mimeType)
	}
	if len(data) > e.maxBytes {
		return "", newExtractionError(SubtypeUnsupportedFormat, nil, "document of %d bytes exceeds the %d byte limit", len(data), e.maxBytes)
	}
	if len(data) == 0 {
		return "", newExtractionError(SubtypeEmptyDocument, nil, "document is empty")
	}

	raw, err := decode(ctx, decoder, data)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", newExtractionError(SubtypeCorruptDocument, err, "failed to decode %s", normalized)
	}

	text := CleanText(raw)
	if len(text) < e.minTextLength {
		return "", newExtractionError(SubtypeEmptyDocument, nil, "document has %d characters of text, need at least %d", len(text), e.minTextLength)
	}
	return text, nil
}

// Extract decodes the document and runs every strategy over its text. Fields that no
// strategy found stay nil and get no confidence entry.
func (e *FieldExtractor) Extract(ctx context.Context, data []byte, mimeType string) (*ExtractionResult, error) {
	text, err := e.ExtractText(ctx, data, mimeType)
	if err != nil {
		return nil, err
	}

	doc := NewResumeText(text)
	matches := make(map[string][]Match, len(fieldOrder))
	for _, strategy := range e.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		field := strategy.Field()
		matches[field] = append(matches[field], strategy.Extract(ctx, doc)...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &ExtractionResult{TextLength: len(text)}
	result.ConfidenceScores = make(map[string]float64)

	for _, field := range fieldOrder {
		scored, ok := e.scorer.Score(matches[field])
		if !ok {
			continue
		}
		if scored.Ambiguous {
			result.Ambiguous = append(result.Ambiguous, field)
		}
		if field == models.FieldSkills {
			if len(scored.Values) == 0 {
				continue
			}
			result.Skills = append([]string{}, scored.Values...)
			result.ConfidenceScores[field] = scored.Confidence
			continue
		}
		if scored.Value == "" {
			continue
		}
		value := scored.Value
		if !result.set(field, &value) {
			continue
		}
		result.ConfidenceScores[field] = scored.Confidence
	}

	if result.Skills == nil {
		result.Skills = []string{}
	}
	return result, nil
}

func (r *ExtractionResult) set(field string, value *string) bool {
	switch field {
	case models.FieldName:
		r.Name = value
	case models.FieldEmail:
		r.Email = value
	case models.FieldPhone:
		r.Phone = value
	case models.FieldCompany:
		r.Company = value
	case models.FieldDesignation:
		r.Designation = value
	default:
		return false
	}
	return true
}

func decode(ctx context.Context, decoder TextDecoder, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoder panic: %v", r)
		}
	}()
	return decoder.DecodeText(ctx, data)
}
