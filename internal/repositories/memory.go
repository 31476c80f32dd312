package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"traqcheck/candidate-onboarding/internal/models"
)

// memoryCandidateRepository keeps candidates and their append-only child collections
// in per-candidate arenas. Child slices only ever grow.
type memoryCandidateRepository struct {
	mu         sync.RWMutex
	candidates map[uuid.UUID]*models.Candidate
	created    []uuid.UUID
	requests   map[uuid.UUID][]models.DocumentRequest
	documents  map[uuid.UUID][]models.Document
	clock      func() time.Time
}

func NewMemoryCandidateRepository() CandidateRepository {
	return &memoryCandidateRepository{
		candidates: make(map[uuid.UUID]*models.Candidate),
		requests:   make(map[uuid.UUID][]models.DocumentRequest),
		documents:  make(map[uuid.UUID][]models.Document),
		clock:      time.Now,
	}
}

func (r *memoryCandidateRepository) Create(_ context.Context, candidate *models.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if candidate.ID == uuid.Nil {
		candidate.ID = uuid.New()
	}
	now := r.clock()
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = now
	}
	if candidate.UpdatedAt.IsZero() {
		candidate.UpdatedAt = now
	}
	if candidate.ExtractionStatus == "" {
		candidate.ExtractionStatus = models.StatusPending
	}

	stored := cloneCandidate(candidate)
	stored.DocumentRequests = nil
	stored.Documents = nil
	r.candidates[candidate.ID] = stored
	r.created = append(r.created, candidate.ID)
	return nil
}

func (r *memoryCandidateRepository) FindByID(_ context.Context, id uuid.UUID) (*models.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.candidates[id]; !ok {
		return nil, ErrCandidateNotFound
	}
	return r.snapshot(id), nil
}

func (r *memoryCandidateRepository) List(_ context.Context) ([]models.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.Candidate, 0, len(r.created))
	for i := len(r.created) - 1; i >= 0; i-- {
		result = append(result, *r.snapshot(r.created[i]))
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *memoryCandidateRepository) AppendRequest(_ context.Context, id uuid.UUID, request *models.DocumentRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.candidates[id]; !ok {
		return ErrCandidateNotFound
	}
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = r.clock()
	}
	request.CandidateID = id
	request.Position = len(r.requests[id])
	r.requests[id] = append(r.requests[id], *request)
	return nil
}

func (r *memoryCandidateRepository) AppendDocument(_ context.Context, id uuid.UUID, document *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.candidates[id]; !ok {
		return ErrCandidateNotFound
	}
	if document.ID == uuid.Nil {
		document.ID = uuid.New()
	}
	if document.UploadedAt.IsZero() {
		document.UploadedAt = r.clock()
	}
	document.CandidateID = id
	document.Position = len(r.documents[id])
	r.documents[id] = append(r.documents[id], *document)
	return nil
}

func (r *memoryCandidateRepository) FindDocument(_ context.Context, documentID uuid.UUID) (*models.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, docs := range r.documents {
		for _, doc := range docs {
			if doc.ID == documentID {
				found := doc
				return &found, nil
			}
		}
	}
	return nil, ErrDocumentNotFound
}

func (r *memoryCandidateRepository) TransitionStatus(_ context.Context, id uuid.UUID, from, to models.ExtractionStatus) (bool, error) {
	return r.update(id, from, func(c *models.Candidate) {
		c.ExtractionStatus = to
	})
}

func (r *memoryCandidateRepository) CompleteExtraction(_ context.Context, id uuid.UUID, fields *models.ExtractedFields) (bool, error) {
	return r.update(id, models.StatusProcessing, func(c *models.Candidate) {
		fields.Apply(c)
		c.ExtractionStatus = models.StatusCompleted
		c.ExtractionError = nil
	})
}

func (r *memoryCandidateRepository) FailExtraction(_ context.Context, id uuid.UUID, from models.ExtractionStatus, reason string) (bool, error) {
	return r.update(id, from, func(c *models.Candidate) {
		c.ClearExtraction()
		c.ExtractionStatus = models.StatusFailed
		c.ExtractionError = &reason
	})
}

func (r *memoryCandidateRepository) FindByStatus(_ context.Context, status models.ExtractionStatus, limit int) ([]models.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []models.Candidate
	for _, id := range r.created {
		if limit > 0 && len(result) >= limit {
			break
		}
		if r.candidates[id].ExtractionStatus == status {
			result = append(result, *r.snapshot(id))
		}
	}
	return result, nil
}

func (r *memoryCandidateRepository) FindStale(_ context.Context, status models.ExtractionStatus, olderThan time.Time, limit int) ([]models.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []models.Candidate
	for _, id := range r.created {
		if limit > 0 && len(result) >= limit {
			break
		}
		c := r.candidates[id]
		if c.ExtractionStatus == status && c.UpdatedAt.Before(olderThan) {
			result = append(result, *r.snapshot(id))
		}
	}
	return result, nil
}

func (r *memoryCandidateRepository) Stats(_ context.Context) (*models.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &models.Stats{TotalCandidates: int64(len(r.candidates))}
	for _, c := range r.candidates {
		switch c.ExtractionStatus {
		case models.StatusPending:
			stats.Pending++
		case models.StatusProcessing:
			stats.Processing++
		case models.StatusCompleted:
			stats.Completed++
		case models.StatusFailed:
			stats.Failed++
		}
	}
	for _, docs := range r.documents {
		stats.DocumentsSubmitted += int64(len(docs))
	}
	for _, reqs := range r.requests {
		stats.RequestsGenerated += int64(len(reqs))
	}
	return stats, nil
}

func (r *memoryCandidateRepository) update(id uuid.UUID, from models.ExtractionStatus, mutate func(c *models.Candidate)) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.candidates[id]
	if !ok {
		return false, ErrCandidateNotFound
	}
	if c.ExtractionStatus != from {
		return false, nil
	}
	mutate(c)
	c.UpdatedAt = r.clock()
	return true, nil
}

// snapshot must be called with the lock held.
func (r *memoryCandidateRepository) snapshot(id uuid.UUID) *models.Candidate {
	c := cloneCandidate(r.candidates[id])
	c.DocumentRequests = append([]models.DocumentRequest{}, r.requests[id]...)
	c.Documents = append([]models.Document{}, r.documents[id]...)
	return c
}

func cloneCandidate(c *models.Candidate) *models.Candidate {
	clone := *c
	clone.Name = cloneString(c.Name)
	clone.Email = cloneString(c.Email)
	clone.Phone = cloneString(c.Phone)
	clone.Company = cloneString(c.Company)
	clone.Designation = cloneString(c.Designation)
	clone.ExtractionError = cloneString(c.ExtractionError)
	fields := models.ExtractedFields{
		Name:             clone.Name,
		Email:            clone.Email,
		Phone:            clone.Phone,
		Company:          clone.Company,
		Designation:      clone.Designation,
		Skills:           c.Skills,
		ConfidenceScores: c.Scores(),
	}
	fields.Apply(&clone)
	return &clone
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
