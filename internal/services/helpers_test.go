package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"traqcheck/candidate-onboarding/internal/models"
	"traqcheck/candidate-onboarding/internal/repositories"
)

const sampleResume = `Jane Doe
jane.doe@example.com | +91 98765 43210
Senior Software Engineer at Acme Technologies (2019 - Present)

Skills: Go, Python, Docker, Kubernetes

Experience
Built microservices with Go and PostgreSQL.`

const pdfHeader = "%PDF-1.4\n"

// plainDecoder treats the bytes after the PDF header as the document text.
type plainDecoder struct {
	mime string
}

func (d plainDecoder) MimeType() string { return d.mime }

func (d plainDecoder) DecodeText(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.TrimPrefix(string(data), pdfHeader), nil
}

type failingDecoder struct {
	mime  string
	panic bool
}

func (d failingDecoder) MimeType() string { return d.mime }

func (d failingDecoder) DecodeText(_ context.Context, _ []byte) (string, error) {
	if d.panic {
		panic("broken xref table")
	}
	return "", fmt.Errorf("malformed document")
}

// blockingDecoder waits for the context to end.
type blockingDecoder struct {
	started chan struct{}
}

func (d blockingDecoder) MimeType() string { return MimePDF }

func (d blockingDecoder) DecodeText(ctx context.Context, _ []byte) (string, error) {
	if d.started != nil {
		close(d.started)
	}
	<-ctx.Done()
	return "", ctx.Err()
}

// slowStrategy sleeps past any short deadline without looking at the context.
type slowStrategy struct {
	delay time.Duration
}

func (s slowStrategy) Field() string { return models.FieldCompany }

func (s slowStrategy) Extract(context.Context, *ResumeText) []Match {
	time.Sleep(s.delay)
	return []Match{{Value: "Late Corp", Confidence: 0.85}}
}

func testExtractor() *FieldExtractor {
	return NewFieldExtractor(0).WithDecoder(plainDecoder{mime: MimePDF})
}

// memoryStore is a DocumentStore kept in a map. Put fails for filenames in failPut.
type memoryStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	failPut map[string]error
	deleted []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		blobs:   make(map[string][]byte),
		failPut: make(map[string]error),
	}
}

func (s *memoryStore) Put(_ context.Context, data []byte, _ string, filename string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failPut[filename]; ok {
		return "", err
	}
	ref := uuid.New().String()
	s.blobs[ref] = append([]byte{}, data...)
	return ref, nil
}

func (s *memoryStore) Get(_ context.Context, ref string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, ref)
	}
	return data, nil
}

func (s *memoryStore) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, ref)
	s.deleted = append(s.deleted, ref)
	return nil
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

// fakeQueue records enqueued jobs.
type fakeQueue struct {
	mu        sync.Mutex
	jobs      []uuid.UUID
	full      bool
	cancelled []uuid.UUID
	running   map[uuid.UUID]bool
}

func (q *fakeQueue) EnqueueJob(id uuid.UUID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.full {
		return false
	}
	q.jobs = append(q.jobs, id)
	return true
}

func (q *fakeQueue) Cancel(id uuid.UUID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cancelled = append(q.cancelled, id)
	return q.running[id]
}

type fixture struct {
	repo      repositories.CandidateRepository
	store     *memoryStore
	queue     *fakeQueue
	service   CandidateService
	processor ExtractionProcessor
	workflow  *VerificationWorkflow
}

func newFixture() *fixture {
	repo := repositories.NewMemoryCandidateRepository()
	store := newMemoryStore()
	queue := &fakeQueue{running: make(map[uuid.UUID]bool)}
	logger := zap.NewNop()
	return &fixture{
		repo:      repo,
		store:     store,
		queue:     queue,
		service:   NewCandidateService(repo, store, queue, 0, logger),
		processor: NewExtractionProcessor(repo, store, testExtractor(), DefaultExtractionTimeout, logger),
		workflow:  NewVerificationWorkflow(repo, store, NewRequestComposer(), NewKeyedMutex(), nil, 0, logger),
	}
}

// addCandidate creates a candidate in the given status with the given fields.
func (f *fixture) addCandidate(status models.ExtractionStatus, fields *models.ExtractedFields) *models.Candidate {
	c := &models.Candidate{ExtractionStatus: status, ResumeFilename: "resume.pdf", ResumeContentType: MimePDF}
	if fields != nil {
		fields.Apply(c)
	} else {
		c.ClearExtraction()
	}
	if err := f.repo.Create(context.Background(), c); err != nil {
		panic(err)
	}
	return c
}

func strPtr(s string) *string {
	return &s
}
