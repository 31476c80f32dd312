package models

type UploadResponse struct {
	ID               string `json:"id"`
	Filename         string `json:"filename"`
	ExtractionStatus string `json:"extraction_status"`
}

type CandidateResponse struct {
	*Candidate
	DocumentComplete bool                      `json:"document_complete"`
	MissingDocuments []DocumentType            `json:"missing_documents"`
	LatestDocuments  map[DocumentType]Document `json:"latest_documents"`
}

// NewCandidateResponse attaches the derived document views to a candidate.
func NewCandidateResponse(c *Candidate) CandidateResponse {
	missing := MissingDocuments(c.Documents)
	if missing == nil {
		missing = []DocumentType{}
	}
	return CandidateResponse{
		Candidate:        c,
		DocumentComplete: DocumentComplete(c.Documents),
		MissingDocuments: missing,
		LatestDocuments:  LatestDocuments(c.Documents),
	}
}

type RequestDocumentsResponse struct {
	Message   string          `json:"message"`
	Request   DocumentRequest `json:"request"`
	AgentLogs []string        `json:"agent_logs"`
}

type SlotResponse struct {
	Slot     DocumentType `json:"slot"`
	Status   string       `json:"status"`
	Document *Document    `json:"document,omitempty"`
	Error    *ErrorBody   `json:"error,omitempty"`
}

type SubmitDocumentsResponse struct {
	Message          string         `json:"message"`
	Documents        []Document     `json:"documents"`
	Slots            []SlotResponse `json:"slots"`
	DocumentComplete bool           `json:"document_complete"`
}

type ErrorBody struct {
	Kind    string `json:"kind"`
	Subtype string `json:"subtype,omitempty"`
	Message string `json:"message"`
}

type Stats struct {
	TotalCandidates    int64 `json:"total_candidates" yaml:"total_candidates"`
	Pending            int64 `json:"pending" yaml:"pending"`
	Processing         int64 `json:"processing" yaml:"processing"`
	Completed          int64 `json:"completed" yaml:"completed"`
	Failed             int64 `json:"failed" yaml:"failed"`
	DocumentsSubmitted int64 `json:"documents_submitted" yaml:"documents_submitted"`
	RequestsGenerated  int64 `json:"requests_generated" yaml:"requests_generated"`
}
