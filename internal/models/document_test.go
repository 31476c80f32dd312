package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentComplete(t *testing.T) {
	assert.False(t, DocumentComplete(nil))
	assert.False(t, DocumentComplete([]Document{{DocumentType: DocumentPAN}, {DocumentType: DocumentPAN}}))
	assert.True(t, DocumentComplete([]Document{{DocumentType: DocumentAadhaar}, {DocumentType: DocumentPAN}}))
}

func TestLatestAndMissingDocuments(t *testing.T) {
	docs := []Document{
		{Position: 0, DocumentType: DocumentPAN, Filename: "pan-v1.pdf"},
		{Position: 1, DocumentType: DocumentPAN, Filename: "pan-v2.pdf"},
	}

	latest := LatestDocuments(docs)
	assert.Len(t, latest, 1)
	assert.Equal(t, "pan-v2.pdf", latest[DocumentPAN].Filename)
	assert.Equal(t, []DocumentType{DocumentAadhaar}, MissingDocuments(docs))
	assert.Equal(t, RequiredDocuments, MissingDocuments(nil))
	assert.Nil(t, MissingDocuments(append(docs, Document{Position: 2, DocumentType: DocumentAadhaar})))
}

func TestDocumentTypeLabel(t *testing.T) {
	assert.Equal(t, "PAN card", DocumentPAN.Label())
	assert.Equal(t, "Aadhaar card", DocumentAadhaar.Label())
	assert.True(t, DocumentAadhaar.Valid())
	assert.False(t, DocumentType("passport").Valid())
}

func TestNewCandidateResponse(t *testing.T) {
	c := &Candidate{Documents: []Document{{DocumentType: DocumentPAN}}}

	resp := NewCandidateResponse(c)
	assert.False(t, resp.DocumentComplete)
	assert.Equal(t, []DocumentType{DocumentAadhaar}, resp.MissingDocuments)

	c.Documents = append(c.Documents, Document{Position: 1, DocumentType: DocumentAadhaar})
	resp = NewCandidateResponse(c)
	assert.True(t, resp.DocumentComplete)
	assert.Equal(t, []DocumentType{}, resp.MissingDocuments)
}
