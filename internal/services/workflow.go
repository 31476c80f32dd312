package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"traqcheck/candidate-onboarding/internal/logger"
	"traqcheck/candidate-onboarding/internal/models"
	"traqcheck/candidate-onboarding/internal/repositories"
)

// DefaultMaxDocumentBytes caps a single identity document.
const DefaultMaxDocumentBytes = 10 << 20

var allowedDocumentExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Upload is one file handed to the workflow.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Submission carries the files of one submit call. At least one slot must be set.
type Submission struct {
	PAN     *Upload
	Aadhaar *Upload
}

type slotUpload struct {
	slot   models.DocumentType
	upload *Upload
}

func (s Submission) slots() []slotUpload {
	var slots []slotUpload
	if s.PAN != nil {
		slots = append(slots, slotUpload{slot: models.DocumentPAN, upload: s.PAN})
	}
	if s.Aadhaar != nil {
		slots = append(slots, slotUpload{slot: models.DocumentAadhaar, upload: s.Aadhaar})
	}
	return slots
}

// SlotResult is the outcome of one submitted file.
type SlotResult struct {
	Slot     models.DocumentType
	Document *models.Document
	Err      error
}

type SubmissionResult struct {
	// Documents holds only the documents created by this call.
	Documents []models.Document
	Slots     []SlotResult
	Complete  bool
}

// Failed counts the slots that were rejected.
func (r *SubmissionResult) Failed() int {
	n := 0
	for _, s := range r.Slots {
		if s.Err != nil {
			n++
		}
	}
	return n
}

type RequestOutcome struct {
	Request models.DocumentRequest
	Logs    []string
}

// VerificationWorkflow records document requests and identity document submissions.
// Both only ever append to a candidate's history.
type VerificationWorkflow struct {
	repo             repositories.CandidateRepository
	store            DocumentStore
	composer         *RequestComposer
	locks            *KeyedMutex
	notifier         Notifier
	maxDocumentBytes int64
	now              func() time.Time
	logger           *zap.Logger
}

func NewVerificationWorkflow(
	repo repositories.CandidateRepository,
	store DocumentStore,
	composer *RequestComposer,
	locks *KeyedMutex,
	notifier Notifier,
	maxDocumentBytes int64,
	logger *zap.Logger,
) *VerificationWorkflow {
	if maxDocumentBytes <= 0 {
		maxDocumentBytes = DefaultMaxDocumentBytes
	}
	return &VerificationWorkflow{
		repo:             repo,
		store:            store,
		composer:         composer,
		locks:            locks,
		notifier:         notifier,
		maxDocumentBytes: maxDocumentBytes,
		now:              time.Now,
		logger:           logger,
	}
}

// RequestDocuments composes an identity verification request and appends it to the
// candidate's history. Repeating the call appends another request.
func (w *VerificationWorkflow) RequestDocuments(ctx context.Context, candidateID uuid.UUID) (*RequestOutcome, error) {
	const op = "request_documents"

	candidate, err := w.findCandidate(ctx, op, candidateID)
	if err != nil {
		return nil, err
	}

	logs := []string{fmt.Sprintf("Analyzing candidate: %s", valueOr(candidate.Name, "Candidate"))}

	cc := NewCandidateContext(candidate)
	logs = append(logs, fmt.Sprintf("Selected %s channel", cc.Channel))

	message, err := w.composer.Compose(models.RequestIdentityVerification, cc)
	if err != nil {
		return nil, wrapCollaborator(op, candidateID, err)
	}
	if cc.Channel == models.ChannelSMS {
		logs = append(logs, "Generated personalized SMS request")
	} else {
		logs = append(logs, "Generated personalized email request")
	}

	request := &models.DocumentRequest{
		ID:             uuid.New(),
		RequestType:    models.RequestIdentityVerification,
		Channel:        cc.Channel,
		RequestMessage: message,
		CreatedAt:      w.now(),
	}
	if err := w.appendRequest(ctx, candidateID, request); err != nil {
		if errors.Is(err, repositories.ErrCandidateNotFound) {
			return nil, notFound(op, candidateID, err)
		}
		return nil, wrapCollaborator(op, candidateID, err)
	}
	logs = append(logs, fmt.Sprintf("Recorded document request #%d", request.Position+1))

	w.logger.Info("document request generated",
		zap.String("candidate_id", candidateID.String()),
		zap.String("channel", string(request.Channel)),
		zap.Int("position", request.Position),
	)

	if w.notifier != nil {
		w.notifier.Notify(ctx, candidate, request)
	}

	return &RequestOutcome{Request: *request, Logs: logs}, nil
}

// SubmitDocuments stores and records each provided file. A rejected file does not undo
// the files accepted in the same call.
func (w *VerificationWorkflow) SubmitDocuments(ctx context.Context, candidateID uuid.UUID, submission Submission) (*SubmissionResult, error) {
	const op = "submit_documents"

	slots := submission.slots()
	if len(slots) == 0 {
		err := newValidationError(op, SubtypeMissingFile, "at least one of pan or aadhaar is required")
		err.CandidateID = candidateID
		return nil, err
	}

	candidate, err := w.findCandidate(ctx, op, candidateID)
	if err != nil {
		return nil, err
	}

	log := logger.ForCandidate(w.logger, candidateID)
	result := &SubmissionResult{Documents: []models.Document{}}
	for _, s := range slots {
		doc, err := w.submitSlot(ctx, op, candidateID, s)
		if err != nil {
			if KindOf(err) == KindNotFound {
				return nil, err
			}
			log.Warn("document slot rejected", zap.String(logger.FieldSlot, string(s.slot)), zap.Error(err))
			result.Slots = append(result.Slots, SlotResult{Slot: s.slot, Err: err})
			continue
		}
		result.Documents = append(result.Documents, *doc)
		result.Slots = append(result.Slots, SlotResult{Slot: s.slot, Document: doc})
	}

	result.Complete = w.completeAfter(ctx, candidate, result.Documents)

	log.Info("documents submitted",
		zap.Int("accepted", len(result.Documents)),
		zap.Int("rejected", result.Failed()),
		zap.Bool("document_complete", result.Complete),
	)
	return result, nil
}

// IsDocumentComplete recomputes the completion flag from the stored history.
func (w *VerificationWorkflow) IsDocumentComplete(ctx context.Context, candidateID uuid.UUID) (bool, error) {
	candidate, err := w.findCandidate(ctx, "document_complete", candidateID)
	if err != nil {
		return false, err
	}
	return models.DocumentComplete(candidate.Documents), nil
}

// OpenDocument returns a submitted document and its stored bytes.
func (w *VerificationWorkflow) OpenDocument(ctx context.Context, documentID uuid.UUID) (*models.Document, []byte, error) {
	const op = "open_document"

	doc, err := w.repo.FindDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, repositories.ErrDocumentNotFound) {
			return nil, nil, &Error{Kind: KindNotFound, Op: op, Message: "document not found", Err: err}
		}
		return nil, nil, fmt.Errorf("%s: document %s: %w", op, documentID, err)
	}

	data, err := w.store.Get(ctx, doc.StorageRef)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			return nil, nil, &Error{Kind: KindNotFound, Op: op, CandidateID: doc.CandidateID, Message: "document file not found", Err: err}
		}
		return nil, nil, wrapCollaborator(op, doc.CandidateID, err)
	}
	return doc, data, nil
}

func (w *VerificationWorkflow) submitSlot(ctx context.Context, op string, candidateID uuid.UUID, s slotUpload) (*models.Document, error) {
	if err := w.validateUpload(op, s.upload); err != nil {
		err.CandidateID = candidateID
		return nil, err
	}

	contentType := s.upload.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = ContentTypeFor(s.upload.Filename)
	}

	ref, err := w.store.Put(ctx, s.upload.Data, contentType, s.upload.Filename)
	if err != nil {
		return nil, wrapCollaborator(op, candidateID, err)
	}

	doc := &models.Document{
		ID:           uuid.New(),
		DocumentType: s.slot,
		Filename:     filepath.Base(s.upload.Filename),
		ContentType:  contentType,
		Size:         int64(len(s.upload.Data)),
		StorageRef:   ref,
		UploadedAt:   w.now(),
	}
	if err := w.appendDocument(ctx, candidateID, doc); err != nil {
		if delErr := w.store.Delete(context.Background(), ref); delErr != nil {
			w.logger.Warn("failed to remove orphaned document",
				zap.String("candidate_id", candidateID.String()),
				zap.String("ref", ref),
				zap.Error(delErr),
			)
		}
		if errors.Is(err, repositories.ErrCandidateNotFound) {
			return nil, notFound(op, candidateID, err)
		}
		return nil, wrapCollaborator(op, candidateID, err)
	}
	return doc, nil
}

func (w *VerificationWorkflow) validateUpload(op string, upload *Upload) *Error {
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if !allowedDocumentExtensions[ext] {
		return newValidationError(op, SubtypeInvalidFileType, "file %q must be a PDF, JPG, JPEG or PNG", upload.Filename)
	}
	if len(upload.Data) == 0 {
		return newValidationError(op, SubtypeEmptyFile, "file %q is empty", upload.Filename)
	}
	if int64(len(upload.Data)) > w.maxDocumentBytes {
		return newValidationError(op, SubtypeFileTooLarge, "file %q is %d bytes, limit is %d", upload.Filename, len(upload.Data), w.maxDocumentBytes)
	}
	return nil
}

func (w *VerificationWorkflow) appendRequest(ctx context.Context, id uuid.UUID, request *models.DocumentRequest) error {
	unlock := w.locks.Lock(id)
	defer unlock()
	return w.repo.AppendRequest(ctx, id, request)
}

func (w *VerificationWorkflow) appendDocument(ctx context.Context, id uuid.UUID, doc *models.Document) error {
	unlock := w.locks.Lock(id)
	defer unlock()
	return w.repo.AppendDocument(ctx, id, doc)
}

// completeAfter reads the history back so concurrent submissions are counted. If the
// read fails it falls back to the history loaded before the call plus this call's documents.
func (w *VerificationWorkflow) completeAfter(ctx context.Context, before *models.Candidate, created []models.Document) bool {
	current, err := w.repo.FindByID(ctx, before.ID)
	if err == nil {
		return models.DocumentComplete(current.Documents)
	}
	w.logger.Warn("failed to reload candidate history", zap.String("candidate_id", before.ID.String()), zap.Error(err))
	docs := append(append([]models.Document{}, before.Documents...), created...)
	return models.DocumentComplete(docs)
}

func (w *VerificationWorkflow) findCandidate(ctx context.Context, op string, id uuid.UUID) (*models.Candidate, error) {
	candidate, err := w.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCandidateNotFound) {
			return nil, notFound(op, id, err)
		}
		return nil, wrapCollaborator(op, id, err)
	}
	return candidate, nil
}
