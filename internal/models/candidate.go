package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ExtractionStatus string

const (
	StatusPending    ExtractionStatus = "pending"
	StatusProcessing ExtractionStatus = "processing"
	StatusCompleted  ExtractionStatus = "completed"
	StatusFailed     ExtractionStatus = "failed"
)

// IsTerminal reports whether no further automatic transition may leave the status.
func (s ExtractionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Field names used as keys of Candidate.ConfidenceScores.
const (
	FieldName        = "name"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldCompany     = "company"
	FieldDesignation = "designation"
	FieldSkills      = "skills"
)

type Candidate struct {
	ID                uuid.UUID                                `gorm:"type:uuid;primary_key" json:"id"`
	Name              *string                                  `gorm:"type:text;index" json:"name"`
	Email             *string                                  `gorm:"type:text;index" json:"email"`
	Phone             *string                                  `gorm:"type:text;index" json:"phone"`
	Company           *string                                  `gorm:"type:text" json:"company"`
	Designation       *string                                  `gorm:"type:text" json:"designation"`
	Skills            datatypes.JSONSlice[string]              `gorm:"type:jsonb" json:"skills"`
	ConfidenceScores  datatypes.JSONType[map[string]float64]   `gorm:"type:jsonb" json:"confidence_scores"`
	ExtractionStatus  ExtractionStatus                         `gorm:"type:text;not null;default:'pending';index" json:"extraction_status"`
	ExtractionError   *string                                  `gorm:"type:text" json:"extraction_error,omitempty"`
	ResumeFilename    string                                   `gorm:"type:text" json:"resume_filename"`
	ResumeRef         string                                   `gorm:"type:text" json:"-"`
	ResumeContentType string                                   `gorm:"type:text" json:"resume_content_type"`
	CreatedAt         time.Time                                `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time                                `json:"updated_at"`

	// Relations
	DocumentRequests []DocumentRequest `gorm:"foreignKey:CandidateID" json:"document_requests"`
	Documents        []Document        `gorm:"foreignKey:CandidateID" json:"documents"`
}

func (Candidate) TableName() string {
	return "candidates"
}

// Scores returns the confidence map, never nil.
func (c *Candidate) Scores() map[string]float64 {
	scores := c.ConfidenceScores.Data()
	if scores == nil {
		return map[string]float64{}
	}
	return scores
}

// ExtractedFields is the structured part of a completed extraction.
type ExtractedFields struct {
	Name             *string
	Email            *string
	Phone            *string
	Company          *string
	Designation      *string
	Skills           []string
	ConfidenceScores map[string]float64
}

// HasIdentity reports whether the extraction produced a name or an email.
func (f *ExtractedFields) HasIdentity() bool {
	return f != nil && (f.Name != nil || f.Email != nil)
}

// Apply copies the extracted fields onto the candidate.
func (f *ExtractedFields) Apply(c *Candidate) {
	c.Name = f.Name
	c.Email = f.Email
	c.Phone = f.Phone
	c.Company = f.Company
	c.Designation = f.Designation
	c.Skills = datatypes.NewJSONSlice(append([]string{}, f.Skills...))
	scores := make(map[string]float64, len(f.ConfidenceScores))
	for k, v := range f.ConfidenceScores {
		scores[k] = v
	}
	c.ConfidenceScores = datatypes.NewJSONType(scores)
}

// ClearExtraction drops every extracted field; used on failure.
func (c *Candidate) ClearExtraction() {
	c.Name = nil
	c.Email = nil
	c.Phone = nil
	c.Company = nil
	c.Designation = nil
	c.Skills = datatypes.NewJSONSlice([]string{})
	c.ConfidenceScores = datatypes.NewJSONType(map[string]float64{})
}
