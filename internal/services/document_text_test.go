package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "collapses spaces", input: "  Jane   Doe \t ", want: "Jane Doe"},
		{name: "windows newlines", input: "Jane\r\nDoe\rSmith", want: "Jane\nDoe\nSmith"},
		{name: "blank runs", input: "\n\nJane\n\n\n\nDoe\n\n", want: "Jane\n\nDoe"},
		{name: "empty", input: " \n \n", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestDecodersRejectGarbage(t *testing.T) {
	ctx := context.Background()

	_, err := NewPDFDecoder().DecodeText(ctx, []byte("not a pdf at all"))
	assert.Error(t, err)

	_, err = NewDOCXDecoder().DecodeText(ctx, []byte("not a zip archive"))
	assert.Error(t, err)
}

func TestDOCXDecoderHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDOCXDecoder().DecodeText(ctx, []byte("PK\x03\x04"))
	assert.ErrorIs(t, err, context.Canceled)
}
