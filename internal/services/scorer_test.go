package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfidenceScorerNormalize(t *testing.T) {
	s := NewConfidenceScorer()

	assert.Equal(t, 0.0, s.Normalize(-0.2))
	assert.Equal(t, 0.0, s.Normalize(math.NaN()))
	assert.Equal(t, 1.0, s.Normalize(1.7))
	assert.Equal(t, 0.42, s.Normalize(0.42))
}

func TestConfidenceScorerScore(t *testing.T) {
	s := NewConfidenceScorer()

	tests := []struct {
		name          string
		matches       []Match
		wantOK        bool
		wantValue     string
		wantConf      float64
		wantAmbiguous bool
	}{
		{
			name:   "no matches",
			wantOK: false,
		},
		{
			name:    "only blank matches",
			matches: []Match{{Value: "  ", Confidence: 0.9}},
			wantOK:  false,
		},
		{
			name:      "single match",
			matches:   []Match{{Value: "Jane Doe", Confidence: 0.75}},
			wantOK:    true,
			wantValue: "Jane Doe",
			wantConf:  0.75,
		},
		{
			name: "agreeing matches are corroborated",
			matches: []Match{
				{Value: "jane@x.com", Confidence: 0.6},
				{Value: "JANE@X.COM", Confidence: 0.95},
			},
			wantOK:    true,
			wantValue: "jane@x.com",
			wantConf:  1.0,
		},
		{
			name: "disagreeing matches keep the most specific",
			matches: []Match{
				{Value: "Acme Corp", Confidence: 0.65},
				{Value: "Globex", Confidence: 0.85},
			},
			wantOK:        true,
			wantValue:     "Globex",
			wantConf:      0.425,
			wantAmbiguous: true,
		},
		{
			name: "ties go to the first seen",
			matches: []Match{
				{Value: "a@x.com", Confidence: 0.95},
				{Value: "b@y.com", Confidence: 0.95},
			},
			wantOK:        true,
			wantValue:     "a@x.com",
			wantConf:      0.475,
			wantAmbiguous: true,
		},
		{
			name: "explicit keys group differently formatted values",
			matches: []Match{
				{Value: "(555) 123-4567", Key: "5551234567", Confidence: 0.75},
				{Value: "+1 555 123 4567", Key: "5551234567", Confidence: 0.9},
			},
			wantOK:    true,
			wantValue: "(555) 123-4567",
			wantConf:  0.95,
		},
		{
			name:      "raw confidence above one is clamped",
			matches:   []Match{{Value: "x", Confidence: 3}},
			wantOK:    true,
			wantValue: "x",
			wantConf:  1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.Score(tt.matches)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantValue, got.Value)
			assert.InDelta(t, tt.wantConf, got.Confidence, 1e-9)
			assert.Equal(t, tt.wantAmbiguous, got.Ambiguous)
			assert.GreaterOrEqual(t, got.Confidence, 0.0)
			assert.LessOrEqual(t, got.Confidence, 1.0)
		})
	}
}

func TestConfidenceScorerListValues(t *testing.T) {
	s := NewConfidenceScorer()

	got, ok := s.Score([]Match{{Values: []string{"Go", "Docker"}, Confidence: 0.85}})
	require.True(t, ok)
	assert.Equal(t, []string{"Go", "Docker"}, got.Values)
	assert.InDelta(t, 0.85, got.Confidence, 1e-9)
}
