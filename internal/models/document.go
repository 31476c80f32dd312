package models

import (
	"time"

	"github.com/google/uuid"
)

type DocumentType string

const (
	DocumentPAN     DocumentType = "pan"
	DocumentAadhaar DocumentType = "aadhaar"
)

// RequiredDocuments lists the identity documents every candidate must supply, in display order.
var RequiredDocuments = []DocumentType{DocumentPAN, DocumentAadhaar}

func (t DocumentType) Valid() bool {
	return t == DocumentPAN || t == DocumentAadhaar
}

// Label is the human readable document name.
func (t DocumentType) Label() string {
	switch t {
	case DocumentPAN:
		return "PAN card"
	case DocumentAadhaar:
		return "Aadhaar card"
	default:
		return string(t)
	}
}

type Document struct {
	ID           uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	CandidateID  uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_documents_candidate_position" json:"candidate_id"`
	Position     int          `gorm:"not null;uniqueIndex:idx_documents_candidate_position" json:"position"`
	DocumentType DocumentType `gorm:"type:text;not null" json:"document_type"`
	Filename     string       `gorm:"type:text" json:"filename"`
	ContentType  string       `gorm:"type:text" json:"content_type"`
	Size         int64        `json:"size"`
	StorageRef   string       `gorm:"type:text" json:"-"`
	UploadedAt   time.Time    `gorm:"not null" json:"uploaded_at"`
}

func (Document) TableName() string {
	return "documents"
}

// DocumentComplete reports whether the history holds at least one document of every
// required type. It is recomputed from the append-only history on every call.
func DocumentComplete(docs []Document) bool {
	seen := make(map[DocumentType]bool, len(RequiredDocuments))
	for _, doc := range docs {
		seen[doc.DocumentType] = true
	}
	for _, t := range RequiredDocuments {
		if !seen[t] {
			return false
		}
	}
	return true
}

// LatestDocuments returns the most recent submission per document type.
func LatestDocuments(docs []Document) map[DocumentType]Document {
	latest := make(map[DocumentType]Document, len(RequiredDocuments))
	for _, doc := range docs {
		current, ok := latest[doc.DocumentType]
		if !ok || doc.Position >= current.Position {
			latest[doc.DocumentType] = doc
		}
	}
	return latest
}

// MissingDocuments lists the required types with no submission yet.
func MissingDocuments(docs []Document) []DocumentType {
	latest := LatestDocuments(docs)
	var missing []DocumentType
	for _, t := range RequiredDocuments {
		if _, ok := latest[t]; !ok {
			missing = append(missing, t)
		}
	}
	return missing
}
