package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"traqcheck/candidate-onboarding/internal/models"
	"traqcheck/candidate-onboarding/internal/repositories"
)

// JobQueue hands candidates to the extraction worker.
type JobQueue interface {
	// EnqueueJob reports false when the job could not be queued right away; the
	// pending poller picks it up later.
	EnqueueJob(candidateID uuid.UUID) bool
	// Cancel aborts an in-flight extraction and reports whether one was running.
	Cancel(candidateID uuid.UUID) bool
}

type CandidateService interface {
	Upload(ctx context.Context, upload Upload) (*models.Candidate, error)
	GetCandidate(ctx context.Context, id uuid.UUID) (*models.Candidate, error)
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
	Stats(ctx context.Context) (*models.Stats, error)
	// CancelExtraction stops a pending or running extraction and returns the status the
	// candidate ends up in.
	CancelExtraction(ctx context.Context, id uuid.UUID) (models.ExtractionStatus, error)
}

type candidateService struct {
	repo           repositories.CandidateRepository
	store          DocumentStore
	queue          JobQueue
	maxResumeBytes int64
	logger         *zap.Logger
}

func NewCandidateService(
	repo repositories.CandidateRepository,
	store DocumentStore,
	queue JobQueue,
	maxResumeBytes int64,
	logger *zap.Logger,
) CandidateService {
	if maxResumeBytes <= 0 || maxResumeBytes > MaxResumeBytes {
		maxResumeBytes = MaxResumeBytes
	}
	return &candidateService{
		repo:           repo,
		store:          store,
		queue:          queue,
		maxResumeBytes: maxResumeBytes,
		logger:         logger,
	}
}

// Upload stores the resume and creates a pending candidate. Extraction runs on the worker.
func (s *candidateService) Upload(ctx context.Context, upload Upload) (*models.Candidate, error) {
	const op = "upload"

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if ext != ".pdf" && ext != ".docx" {
		return nil, newValidationError(op, SubtypeInvalidFileType, "resume %q must be a PDF or DOCX file", upload.Filename)
	}
	if len(upload.Data) == 0 {
		return nil, newValidationError(op, SubtypeEmptyFile, "resume %q is empty", upload.Filename)
	}
	if int64(len(upload.Data)) > s.maxResumeBytes {
		return nil, newValidationError(op, SubtypeFileTooLarge, "resume %q is %d bytes, limit is %d", upload.Filename, len(upload.Data), s.maxResumeBytes)
	}

	id := uuid.New()
	contentType := NormalizeMimeType(ext)

	ref, err := s.store.Put(ctx, upload.Data, contentType, upload.Filename)
	if err != nil {
		return nil, wrapCollaborator(op, id, err)
	}

	candidate := &models.Candidate{
		ID:                id,
		Skills:            datatypes.NewJSONSlice([]string{}),
		ConfidenceScores:  datatypes.NewJSONType(map[string]float64{}),
		ExtractionStatus:  models.StatusPending,
		ResumeFilename:    filepath.Base(upload.Filename),
		ResumeRef:         ref,
		ResumeContentType: contentType,
	}
	if err := s.repo.Create(ctx, candidate); err != nil {
		if delErr := s.store.Delete(context.Background(), ref); delErr != nil {
			s.logger.Warn("failed to remove orphaned resume", zap.String("ref", ref), zap.Error(delErr))
		}
		return nil, wrapCollaborator(op, id, err)
	}

	s.logger.Info("resume uploaded",
		zap.String("candidate_id", id.String()),
		zap.String("filename", candidate.ResumeFilename),
		zap.Int("size", len(upload.Data)),
	)

	if s.queue != nil && !s.queue.EnqueueJob(id) {
		s.logger.Warn("extraction queue full, leaving candidate for the poller", zap.String("candidate_id", id.String()))
	}
	return candidate, nil
}

func (s *candidateService) GetCandidate(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	candidate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCandidateNotFound) {
			return nil, notFound("get_candidate", id, err)
		}
		return nil, wrapCollaborator("get_candidate", id, err)
	}
	return candidate, nil
}

func (s *candidateService) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	candidates, err := s.repo.List(ctx)
	if err != nil {
		return nil, &Error{Kind: KindStorage, Subtype: SubtypeStorageUnavailable, Op: "list_candidates", Err: err}
	}
	return candidates, nil
}

func (s *candidateService) Stats(ctx context.Context) (*models.Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, &Error{Kind: KindStorage, Subtype: SubtypeStorageUnavailable, Op: "stats", Err: err}
	}
	return stats, nil
}

func (s *candidateService) CancelExtraction(ctx context.Context, id uuid.UUID) (models.ExtractionStatus, error) {
	const op = "cancel_extraction"

	candidate, err := s.GetCandidate(ctx, id)
	if err != nil {
		return "", err
	}

	switch candidate.ExtractionStatus {
	case models.StatusPending:
		ok, err := s.repo.FailExtraction(ctx, id, models.StatusPending, "extraction cancelled")
		if err != nil {
			return "", wrapCollaborator(op, id, err)
		}
		if ok {
			s.logger.Info("pending extraction cancelled", zap.String("candidate_id", id.String()))
			return models.StatusFailed, nil
		}
		// A worker claimed it in between.
		if s.queue != nil && s.queue.Cancel(id) {
			return models.StatusProcessing, nil
		}
	case models.StatusProcessing:
		if s.queue != nil && s.queue.Cancel(id) {
			s.logger.Info("running extraction cancelled", zap.String("candidate_id", id.String()))
			return models.StatusProcessing, nil
		}
	}

	current, err := s.GetCandidate(ctx, id)
	if err != nil {
		return "", err
	}
	return "", &Error{
		Kind:        KindState,
		Op:          op,
		CandidateID: id,
		Message:     "extraction is " + string(current.ExtractionStatus) + " and cannot be cancelled",
	}
}
