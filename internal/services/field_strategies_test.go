package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(matches []Match) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Value)
	}
	return out
}

func TestEmailStrategy(t *testing.T) {
	s := &EmailStrategy{}

	t.Run("strict", func(t *testing.T) {
		matches := s.Extract(context.Background(), NewResumeText("Contact: Jane.Doe@Example.COM"))
		require.Len(t, matches, 1)
		assert.Equal(t, "jane.doe@example.com", matches[0].Value)
		assert.Equal(t, confidenceEmailStrict, matches[0].Confidence)
	})

	t.Run("obfuscated", func(t *testing.T) {
		matches := s.Extract(context.Background(), NewResumeText("Reach me: john [at] example [dot] com"))
		require.Len(t, matches, 1)
		assert.Equal(t, "john@example.com", matches[0].Value)
		assert.Equal(t, confidenceEmailLoose, matches[0].Confidence)
	})

	t.Run("no address", func(t *testing.T) {
		assert.Empty(t, s.Extract(context.Background(), NewResumeText("Meet me at the office at noon")))
	})
}

func TestPhoneStrategy(t *testing.T) {
	s := &PhoneStrategy{}

	t.Run("international", func(t *testing.T) {
		matches := s.Extract(context.Background(), NewResumeText("Phone: +91 98765 43210"))
		require.Len(t, matches, 1)
		assert.Equal(t, "+91 98765 43210", matches[0].Value)
		assert.Equal(t, "9876543210", matches[0].Key)
		assert.Equal(t, confidencePhoneIntl, matches[0].Confidence)
	})

	t.Run("local and international of the same number share a key", func(t *testing.T) {
		matches := s.Extract(context.Background(), NewResumeText("Mobile: (555) 123-4567\nWork: +1 555 123 4567"))
		require.Len(t, matches, 2)
		assert.Equal(t, []string{"(555) 123-4567", "+1 555 123 4567"}, values(matches))
		assert.Equal(t, matches[0].Key, matches[1].Key)
	})

	t.Run("plain ten digits", func(t *testing.T) {
		matches := s.Extract(context.Background(), NewResumeText("Call 9876543210 anytime"))
		require.Len(t, matches, 1)
		assert.Equal(t, confidencePhonePlain, matches[0].Confidence)
	})

	t.Run("years are not phones", func(t *testing.T) {
		assert.Empty(t, s.Extract(context.Background(), NewResumeText("2015 - 2019 at Initech")))
	})
}

func TestNameStrategy(t *testing.T) {
	s := &NameStrategy{}

	t.Run("header line", func(t *testing.T) {
		matches := s.Extract(context.Background(), NewResumeText("RESUME\nJane Doe, Bangalore\njane@x.com"))
		require.Len(t, matches, 1)
		assert.Equal(t, "Jane Doe", matches[0].Value)
		assert.Equal(t, confidenceNameHeader, matches[0].Confidence)
	})

	t.Run("label", func(t *testing.T) {
		matches := s.Extract(context.Background(), NewResumeText("Name: John Smith\njohn@x.com"))
		require.Len(t, matches, 1)
		assert.Equal(t, "John Smith", matches[0].Value)
		assert.Equal(t, confidenceNameLabel, matches[0].Confidence)
	})

	t.Run("section headings and titles are not names", func(t *testing.T) {
		assert.Empty(t, s.Extract(context.Background(), NewResumeText("Professional Summary\nSoftware Engineer\nWork Experience")))
	})
}

func TestCompanyAndDesignationStrategies(t *testing.T) {
	company := &CompanyStrategy{}
	designation := &DesignationStrategy{}

	t.Run("at phrase", func(t *testing.T) {
		doc := NewResumeText("Senior Software Engineer at Acme Technologies (2019 - Present)")

		c := company.Extract(context.Background(), doc)
		require.NotEmpty(t, c)
		assert.Equal(t, "Acme Technologies", c[0].Value)
		assert.Equal(t, confidenceAtPhrase, c[0].Confidence)

		d := designation.Extract(context.Background(), doc)
		require.NotEmpty(t, d)
		assert.Equal(t, "Senior Software Engineer", d[0].Value)
	})

	t.Run("labels", func(t *testing.T) {
		doc := NewResumeText("Company: Globex Corporation\nDesignation: Data Analyst")

		assert.Equal(t, []string{"Globex Corporation"}, values(company.Extract(context.Background(), doc)))
		assert.Equal(t, []string{"Data Analyst"}, values(designation.Extract(context.Background(), doc)))
	})

	t.Run("bare segments", func(t *testing.T) {
		doc := NewResumeText("Jane Doe, jane@x.com, +1-555-0100, Acme Corp, Engineer")

		c := company.Extract(context.Background(), doc)
		require.Len(t, c, 1)
		assert.Equal(t, "Acme Corp", c[0].Value)
		assert.Equal(t, confidenceCompanySuffix, c[0].Confidence)

		d := designation.Extract(context.Background(), doc)
		require.Len(t, d, 1)
		assert.Equal(t, "Engineer", d[0].Value)
		assert.Equal(t, confidenceTitleKeyword, d[0].Confidence)
	})
}

func TestSkillsStrategy(t *testing.T) {
	s := NewSkillsStrategy(DefaultSkillDictionary)

	t.Run("section and dictionary", func(t *testing.T) {
		matches := s.Extract(context.Background(), NewResumeText(sampleResume))
		require.Len(t, matches, 1)
		assert.Equal(t, []string{"Go", "Python", "Docker", "Kubernetes", "PostgreSQL", "Microservices"}, matches[0].Values)
		assert.Equal(t, confidenceSkillsSection, matches[0].Confidence)
	})

	t.Run("section on following lines", func(t *testing.T) {
		text := "Technical Skills\n- Terraform\n- Team Leadership\n\nEducation\nB.Tech"
		matches := s.Extract(context.Background(), NewResumeText(text))
		require.Len(t, matches, 1)
		assert.Equal(t, []string{"Terraform", "Team Leadership"}, matches[0].Values)
	})

	t.Run("dictionary only, case-insensitive de-duplication", func(t *testing.T) {
		matches := s.Extract(context.Background(), NewResumeText("Worked with docker and DOCKER compose, then Kubernetes"))
		require.Len(t, matches, 1)
		assert.Equal(t, []string{"Docker", "Kubernetes"}, matches[0].Values)
		assert.Equal(t, confidenceSkillsKeywords, matches[0].Confidence)
	})

	t.Run("word boundaries", func(t *testing.T) {
		assert.Empty(t, s.Extract(context.Background(), NewResumeText("Ongoing gitops migration for javascripting fans")))
	})

	t.Run("multi-byte neighbours", func(t *testing.T) {
		assert.Empty(t, s.Extract(context.Background(), NewResumeText("ÉGo Goñ")))

		matches := s.Extract(context.Background(), NewResumeText("Écrit en «Go» et Kotlin"))
		require.Len(t, matches, 1)
		assert.Equal(t, []string{"Go", "Kotlin"}, matches[0].Values)
	})

	t.Run("cancelled scan finds nothing", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Empty(t, s.Extract(ctx, NewResumeText("Worked with docker and Kubernetes")))
	})
}

func TestSkillsStrategyLargeText(t *testing.T) {
	s := NewSkillsStrategy(DefaultSkillDictionary)
	// Every repetition is a rejected hit for Go and Git.
	text := strings.Repeat("Google github ", 40000) + "Kubernetes"

	start := time.Now()
	matches := s.Extract(context.Background(), NewResumeText(text))
	elapsed := time.Since(start)

	require.Len(t, matches, 1)
	assert.Equal(t, []string{"Kubernetes"}, matches[0].Values)
	assert.Less(t, elapsed, 2*time.Second)
}
