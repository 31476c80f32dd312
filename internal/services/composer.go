package services

import (
	"fmt"
	"strings"

	"traqcheck/candidate-onboarding/internal/models"
)

// CandidateContext is what the composer may mention about a candidate.
type CandidateContext struct {
	Name        *string
	Email       *string
	Phone       *string
	Company     *string
	Designation *string
	Channel     models.RequestChannel
}

// NewCandidateContext builds the composer context and picks the delivery channel.
func NewCandidateContext(c *models.Candidate) CandidateContext {
	return CandidateContext{
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		Company:     c.Company,
		Designation: c.Designation,
		Channel:     SelectChannel(c),
	}
}

// SelectChannel prefers email, falls back to sms when only a phone is known.
func SelectChannel(c *models.Candidate) models.RequestChannel {
	if present(c.Email) {
		return models.ChannelEmail
	}
	if present(c.Phone) {
		return models.ChannelSMS
	}
	return models.ChannelEmail
}

// RequestComposer writes the text of document requests. Output depends only on its
// inputs, so the same candidate always gets the same message.
type RequestComposer struct{}

func NewRequestComposer() *RequestComposer {
	return &RequestComposer{}
}

func (rc *RequestComposer) Compose(requestType models.RequestType, cc CandidateContext) (string, error) {
	if requestType != models.RequestIdentityVerification {
		return "", newValidationError("compose", "", "unknown request type %q", requestType)
	}
	if cc.Channel == models.ChannelSMS {
		return rc.buildIdentitySMS(cc), nil
	}
	return rc.buildIdentityEmail(cc), nil
}

func (rc *RequestComposer) buildIdentityEmail(cc CandidateContext) string {
	name := valueOr(cc.Name, "Candidate")

	var role string
	switch {
	case present(cc.Designation) && present(cc.Company):
		role = fmt.Sprintf(" for your role as %s at %s", strings.TrimSpace(*cc.Designation), strings.TrimSpace(*cc.Company))
	case present(cc.Designation):
		role = fmt.Sprintf(" for your role as %s", strings.TrimSpace(*cc.Designation))
	case present(cc.Company):
		role = fmt.Sprintf(" for your onboarding with %s", strings.TrimSpace(*cc.Company))
	}

	return fmt.Sprintf(`SUBJECT: Identity verification documents required

BODY:
Dear %s,

Thank you for your interest%s. To complete the identity verification for your employment records, please share the following documents:

%s

You can upload them through our candidate portal as PDF, JPG or PNG files.

If you have any questions, simply reply to this email.

Best regards,
HR Team`, name, role, formatDocumentList(models.RequiredDocuments))
}

func (rc *RequestComposer) buildIdentitySMS(cc CandidateContext) string {
	labels := make([]string, 0, len(models.RequiredDocuments))
	for _, d := range models.RequiredDocuments {
		labels = append(labels, d.Label())
	}
	return fmt.Sprintf("Hi %s, please upload your %s on our candidate portal to complete identity verification. - HR Team",
		valueOr(cc.Name, "Candidate"), strings.Join(labels, " and "))
}

func formatDocumentList(docs []models.DocumentType) string {
	lines := make([]string, 0, len(docs))
	for i, d := range docs {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, d.Label()))
	}
	return strings.Join(lines, "\n")
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func valueOr(s *string, fallback string) string {
	if present(s) {
		return strings.TrimSpace(*s)
	}
	return fallback
}
