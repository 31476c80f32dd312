package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"traqcheck/candidate-onboarding/internal/models"
	"traqcheck/candidate-onboarding/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(candidateID uuid.UUID) bool
	Cancel(candidateID uuid.UUID) bool
}

type WorkerConfig struct {
	Concurrency  int
	QueueSize    int
	PollInterval time.Duration
	// WatchdogCeiling is how long a candidate may stay processing before it is failed.
	WatchdogCeiling  time.Duration
	WatchdogInterval time.Duration
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = 3
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 100
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 10 * time.Second
	}
	if c.WatchdogCeiling <= 0 {
		c.WatchdogCeiling = 5 * time.Minute
	}
	if c.WatchdogInterval <= 0 {
		c.WatchdogInterval = 30 * time.Second
	}
	return c
}

type worker struct {
	repo      repositories.CandidateRepository
	processor ExtractionProcessor
	cfg       WorkerConfig
	jobQueue  chan uuid.UUID
	wg        sync.WaitGroup
	stopChan  chan struct{}
	stopOnce  sync.Once
	now       func() time.Time
	logger    *zap.Logger

	mu       sync.Mutex
	inFlight map[uuid.UUID]context.CancelFunc
}

func NewWorker(
	repo repositories.CandidateRepository,
	processor ExtractionProcessor,
	cfg WorkerConfig,
	logger *zap.Logger,
) Worker {
	cfg = cfg.withDefaults()
	return &worker{
		repo:      repo,
		processor: processor,
		cfg:       cfg,
		jobQueue:  make(chan uuid.UUID, cfg.QueueSize),
		stopChan:  make(chan struct{}),
		now:       time.Now,
		logger:    logger,
		inFlight:  make(map[uuid.UUID]context.CancelFunc),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.logger.Info("starting extraction worker", zap.Int("concurrency", w.cfg.Concurrency))

	for i := 0; i < w.cfg.Concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)

	w.wg.Add(1)
	go w.watchStaleJobs(ctx)
}

// Stop implements Worker. Running extractions finish before it returns.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("stopping extraction worker")
		close(w.stopChan)
	})
	w.wg.Wait()
	w.logger.Info("extraction worker stopped")
}

// EnqueueJob implements Worker. It never blocks; a full queue is drained by the poller.
func (w *worker) EnqueueJob(candidateID uuid.UUID) bool {
	select {
	case <-w.stopChan:
		w.logger.Warn("worker stopped, cannot enqueue job", zap.String("candidate_id", candidateID.String()))
		return false
	default:
	}

	select {
	case w.jobQueue <- candidateID:
		w.logger.Debug("job enqueued", zap.String("candidate_id", candidateID.String()))
		return true
	default:
		return false
	}
}

// Cancel implements Worker.
func (w *worker) Cancel(candidateID uuid.UUID) bool {
	w.mu.Lock()
	cancel, ok := w.inFlight[candidateID]
	w.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log := w.logger.With(zap.Int("worker_id", workerID))

	for {
		select {
		case <-w.stopChan:
			log.Debug("worker stopped")
			return
		case <-ctx.Done():
			return
		case candidateID := <-w.jobQueue:
			w.runJob(ctx, log, candidateID)
		}
	}
}

func (w *worker) runJob(ctx context.Context, log *zap.Logger, candidateID uuid.UUID) {
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w.mu.Lock()
	if _, busy := w.inFlight[candidateID]; busy {
		w.mu.Unlock()
		log.Debug("job already running", zap.String("candidate_id", candidateID.String()))
		return
	}
	w.inFlight[candidateID] = cancel
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.inFlight, candidateID)
		w.mu.Unlock()
	}()

	log.Debug("processing job", zap.String("candidate_id", candidateID.String()))
	if err := w.processor.Process(jobCtx, candidateID); err != nil {
		log.Warn("job failed", zap.String("candidate_id", candidateID.String()), zap.Error(err))
		return
	}
	log.Debug("job done", zap.String("candidate_id", candidateID.String()))
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.enqueuePending(ctx)
		}
	}
}

func (w *worker) enqueuePending(ctx context.Context) {
	pending, err := w.repo.FindByStatus(ctx, models.StatusPending, w.cfg.QueueSize)
	if err != nil {
		w.logger.Warn("failed to fetch pending candidates", zap.Error(err))
		return
	}
	if len(pending) > 0 {
		w.logger.Debug("found pending candidates", zap.Int("count", len(pending)))
	}
	for _, c := range pending {
		if !w.EnqueueJob(c.ID) {
			return
		}
	}
}

func (w *worker) watchStaleJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.cfg.WatchdogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.failStale(ctx)
		}
	}
}

// failStale moves candidates stuck in processing past the ceiling to failed.
func (w *worker) failStale(ctx context.Context) int {
	cutoff := w.now().Add(-w.cfg.WatchdogCeiling)
	stale, err := w.repo.FindStale(ctx, models.StatusProcessing, cutoff, 100)
	if err != nil {
		w.logger.Warn("failed to fetch stale candidates", zap.Error(err))
		return 0
	}

	failed := 0
	for _, c := range stale {
		w.Cancel(c.ID)
		ok, err := w.repo.FailExtraction(ctx, c.ID, models.StatusProcessing, "extraction did not finish within "+w.cfg.WatchdogCeiling.String())
		if err != nil {
			w.logger.Warn("failed to fail stale candidate", zap.String("candidate_id", c.ID.String()), zap.Error(err))
			continue
		}
		if ok {
			failed++
			w.logger.Warn("stale extraction failed by watchdog", zap.String("candidate_id", c.ID.String()))
		}
	}
	return failed
}
