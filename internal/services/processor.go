package services

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"traqcheck/candidate-onboarding/internal/logger"
	"traqcheck/candidate-onboarding/internal/models"
	"traqcheck/candidate-onboarding/internal/repositories"
)

// DefaultExtractionTimeout bounds a single extraction.
const DefaultExtractionTimeout = 60 * time.Second

// ExtractionProcessor runs the extraction of one pending candidate.
type ExtractionProcessor interface {
	Process(ctx context.Context, candidateID uuid.UUID) error
}

type extractionProcessor struct {
	repo      repositories.CandidateRepository
	store     DocumentStore
	extractor *FieldExtractor
	timeout   time.Duration
	logger    *zap.Logger
}

func NewExtractionProcessor(
	repo repositories.CandidateRepository,
	store DocumentStore,
	extractor *FieldExtractor,
	timeout time.Duration,
	logger *zap.Logger,
) ExtractionProcessor {
	if timeout <= 0 {
		timeout = DefaultExtractionTimeout
	}
	return &extractionProcessor{
		repo:      repo,
		store:     store,
		extractor: extractor,
		timeout:   timeout,
		logger:    logger,
	}
}

// Process checks the stored resume, claims the candidate and writes the extraction
// outcome. A candidate that is no longer pending is skipped.
func (p *extractionProcessor) Process(ctx context.Context, candidateID uuid.UUID) error {
	const op = "process_extraction"
	log := logger.ForCandidate(p.logger, candidateID)

	candidate, err := p.repo.FindByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, repositories.ErrCandidateNotFound) {
			return notFound(op, candidateID, err)
		}
		return wrapCollaborator(op, candidateID, err)
	}
	if candidate.ExtractionStatus != models.StatusPending {
		log.Debug("candidate no longer pending, skipping", zap.String("status", string(candidate.ExtractionStatus)))
		return nil
	}

	data, err := p.loadResume(ctx, candidate)
	if err != nil {
		if _, failErr := p.repo.FailExtraction(context.Background(), candidateID, models.StatusPending, err.Error()); failErr != nil {
			return wrapCollaborator(op, candidateID, failErr)
		}
		log.Warn("resume rejected before extraction", zap.Error(err))
		return err
	}

	claimed, err := p.repo.TransitionStatus(ctx, candidateID, models.StatusPending, models.StatusProcessing)
	if err != nil {
		return wrapCollaborator(op, candidateID, err)
	}
	if !claimed {
		log.Debug("candidate claimed elsewhere, skipping")
		return nil
	}

	jobCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	result, err := p.extractor.Extract(jobCtx, data, candidate.ResumeContentType)
	if err != nil {
		err = p.classify(err)
		return p.fail(candidateID, err, log)
	}
	if err := jobCtx.Err(); err != nil {
		return p.fail(candidateID, p.classify(err), log)
	}
	if !result.HasIdentity() {
		return p.fail(candidateID, newExtractionError(SubtypeEmptyDocument, nil, "no name or email found in resume"), log)
	}

	completed, err := p.repo.CompleteExtraction(context.Background(), candidateID, &result.ExtractedFields)
	if err != nil {
		return wrapCollaborator(op, candidateID, err)
	}
	if !completed {
		log.Warn("extraction finished after the candidate left processing")
		return nil
	}

	log.Info("extraction completed",
		zap.Duration("took", time.Since(start)),
		zap.Int("text_length", result.TextLength),
		zap.Strings("ambiguous", result.Ambiguous),
		zap.Int("skills", len(result.Skills)),
	)
	return nil
}

// loadResume fetches the blob and checks that its bytes agree with the declared format.
func (p *extractionProcessor) loadResume(ctx context.Context, candidate *models.Candidate) ([]byte, error) {
	data, err := p.store.Get(ctx, candidate.ResumeRef)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			return nil, newExtractionError(SubtypeCorruptDocument, err, "stored resume is missing")
		}
		return nil, wrapCollaborator("load_resume", candidate.ID, err)
	}
	if len(data) > MaxResumeBytes {
		return nil, newExtractionError(SubtypeUnsupportedFormat, nil, "resume of %d bytes exceeds the %d byte limit", len(data), MaxResumeBytes)
	}
	if !matchesSignature(data, NormalizeMimeType(candidate.ResumeContentType)) {
		return nil, newExtractionError(SubtypeCorruptDocument, nil, "resume content does not match %s", candidate.ResumeContentType)
	}
	return data, nil
}

func (p *extractionProcessor) classify(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return newExtractionError(SubtypeTimedOut, err, "extraction timed out after %s", p.timeout)
	case errors.Is(err, context.Canceled):
		return newExtractionError(SubtypeCancelled, err, "extraction cancelled")
	}
	return err
}

// fail records the failure with a fresh context so a cancelled job still leaves processing.
func (p *extractionProcessor) fail(candidateID uuid.UUID, cause error, log *zap.Logger) error {
	if _, err := p.repo.FailExtraction(context.Background(), candidateID, models.StatusProcessing, cause.Error()); err != nil {
		return wrapCollaborator("process_extraction", candidateID, err)
	}
	log.Warn("extraction failed", zap.Error(cause))
	return cause
}

var (
	pdfSignature  = []byte("%PDF-")
	docxSignature = []byte("PK\x03\x04")
)

func matchesSignature(data []byte, mimeType string) bool {
	switch mimeType {
	case MimePDF:
		return bytes.HasPrefix(data, pdfSignature)
	case MimeDOCX:
		return bytes.HasPrefix(data, docxSignature)
	}
	return false
}
