package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traqcheck/candidate-onboarding/internal/models"
)

func TestFieldExtractorExtract(t *testing.T) {
	e := testExtractor()

	result, err := e.Extract(context.Background(), []byte(sampleResume), MimePDF)
	require.NoError(t, err)

	require.NotNil(t, result.Name)
	assert.Equal(t, "Jane Doe", *result.Name)
	require.NotNil(t, result.Email)
	assert.Equal(t, "jane.doe@example.com", *result.Email)
	require.NotNil(t, result.Phone)
	assert.Equal(t, "+91 98765 43210", *result.Phone)
	require.NotNil(t, result.Company)
	assert.Equal(t, "Acme Technologies", *result.Company)
	require.NotNil(t, result.Designation)
	assert.Equal(t, "Senior Software Engineer", *result.Designation)
	assert.Equal(t, []string{"Go", "Python", "Docker", "Kubernetes", "PostgreSQL", "Microservices"}, result.Skills)
	assert.Empty(t, result.Ambiguous)

	assert.Len(t, result.ConfidenceScores, 6)
	for field, score := range result.ConfidenceScores {
		assert.GreaterOrEqual(t, score, 0.0, field)
		assert.LessOrEqual(t, score, 1.0, field)
	}
}

func TestFieldExtractorSingleLineResume(t *testing.T) {
	e := testExtractor()

	result, err := e.Extract(context.Background(), []byte("Jane Doe, jane@x.com, +1-555-0100, Acme Corp, Engineer"), MimePDF)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", *result.Name)
	assert.Equal(t, "jane@x.com", *result.Email)
	assert.Equal(t, "+1-555-0100", *result.Phone)
	assert.Equal(t, "Acme Corp", *result.Company)
	assert.Equal(t, "Engineer", *result.Designation)
	assert.Empty(t, result.Skills)

	assert.InDelta(t, 0.95, result.ConfidenceScores[models.FieldEmail], 1e-9)
	assert.InDelta(t, 0.9, result.ConfidenceScores[models.FieldPhone], 1e-9)
	assert.Greater(t, result.ConfidenceScores[models.FieldEmail], result.ConfidenceScores[models.FieldDesignation])
	assert.NotContains(t, result.ConfidenceScores, models.FieldSkills)
}

func TestFieldExtractorAmbiguousEmail(t *testing.T) {
	e := testExtractor()
	text := "Jane Doe\nPersonal: jane@home.org\nWork: jane.doe@acme.com\nLooking for backend roles."

	result, err := e.Extract(context.Background(), []byte(text), MimePDF)
	require.NoError(t, err)

	assert.Equal(t, "jane@home.org", *result.Email)
	assert.InDelta(t, 0.475, result.ConfidenceScores[models.FieldEmail], 1e-9)
	assert.Contains(t, result.Ambiguous, models.FieldEmail)
}

func TestFieldExtractorMissingFieldsHaveNoScore(t *testing.T) {
	e := testExtractor()
	text := "Contact me at someone@example.org for any further information you need."

	result, err := e.Extract(context.Background(), []byte(text), MimePDF)
	require.NoError(t, err)

	assert.Nil(t, result.Name)
	assert.Nil(t, result.Phone)
	assert.Equal(t, map[string]float64{models.FieldEmail: 0.95}, result.ConfidenceScores)
	assert.NotNil(t, result.Skills)
}

func TestFieldExtractorErrors(t *testing.T) {
	longText := []byte(strings.Repeat("plain words without any fields ", 5))

	tests := []struct {
		name      string
		extractor *FieldExtractor
		data      []byte
		mime      string
		want      error
	}{
		{
			name:      "unsupported mime type",
			extractor: testExtractor(),
			data:      longText,
			mime:      "text/plain",
			want:      ErrUnsupportedFormat,
		},
		{
			name:      "too large",
			extractor: testExtractor(),
			data:      make([]byte, MaxResumeBytes+1),
			mime:      MimePDF,
			want:      ErrUnsupportedFormat,
		},
		{
			name:      "no bytes",
			extractor: testExtractor(),
			data:      nil,
			mime:      MimePDF,
			want:      ErrEmptyDocument,
		},
		{
			name:      "too little text",
			extractor: testExtractor(),
			data:      []byte("Jane Doe"),
			mime:      MimePDF,
			want:      ErrEmptyDocument,
		},
		{
			name:      "real pdf decoder on garbage",
			extractor: NewFieldExtractor(0),
			data:      []byte("this is definitely not a pdf file, just some bytes"),
			mime:      MimePDF,
			want:      ErrCorruptDocument,
		},
		{
			name:      "real docx decoder on garbage",
			extractor: NewFieldExtractor(0),
			data:      []byte("this is definitely not a docx archive either"),
			mime:      ".docx",
			want:      ErrCorruptDocument,
		},
		{
			name:      "decoder error",
			extractor: testExtractor().WithDecoder(failingDecoder{mime: MimePDF}),
			data:      longText,
			mime:      MimePDF,
			want:      ErrCorruptDocument,
		},
		{
			name:      "decoder panic",
			extractor: testExtractor().WithDecoder(failingDecoder{mime: MimePDF, panic: true}),
			data:      longText,
			mime:      MimePDF,
			want:      ErrCorruptDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.extractor.Extract(context.Background(), tt.data, tt.mime)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, KindExtraction, KindOf(err))
		})
	}
}

func TestFieldExtractorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testExtractor().Extract(ctx, []byte(sampleResume), MimePDF)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFieldExtractorDeadlineDuringStrategies(t *testing.T) {
	e := testExtractor().Register(slowStrategy{delay: 100 * time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result, err := e.Extract(ctx, []byte(sampleResume), MimePDF)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFieldExtractorRegisterStrategy(t *testing.T) {
	e := testExtractor().Register(staticStrategy{field: models.FieldCompany, match: Match{Value: "Acme Technologies", Confidence: 0.85}})

	result, err := e.Extract(context.Background(), []byte(sampleResume), MimePDF)
	require.NoError(t, err)

	assert.Equal(t, "Acme Technologies", *result.Company)
	assert.InDelta(t, 0.9, result.ConfidenceScores[models.FieldCompany], 1e-9)
}

func TestNormalizeMimeType(t *testing.T) {
	assert.Equal(t, MimePDF, NormalizeMimeType(".PDF"))
	assert.Equal(t, MimePDF, NormalizeMimeType("application/pdf; charset=binary"))
	assert.Equal(t, MimeDOCX, NormalizeMimeType("docx"))
	assert.Equal(t, "image/png", NormalizeMimeType("image/png"))

	e := NewFieldExtractor(0)
	assert.True(t, e.Supports(".docx"))
	assert.False(t, e.Supports("image/png"))
}

type staticStrategy struct {
	field string
	match Match
}

func (s staticStrategy) Field() string { return s.field }

func (s staticStrategy) Extract(context.Context, *ResumeText) []Match { return []Match{s.match} }
