package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(candidateID uuid.UUID)
}

type worker struct {
	candidateRepo repositories.CandidateRepository
	screening     ScreeningService
	jobQueue      chan uuid.UUID
	concurrency   int
	logger        *zap.Logger
	wg            sync.WaitGroup
	stopChan      chan struct{}
}

func NewWorker(
	candidateRepo repositories.CandidateRepository,
	screening ScreeningService,
	concurrency int,
	logger *zap.Logger,
) Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &worker{
		candidateRepo: candidateRepo,
		screening:     screening,
		jobQueue:      make(chan uuid.UUID, 100),
		concurrency:   concurrency,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.logger.Info("starting worker pool", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.logger.Info("stopping worker pool")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("worker pool stopped")
}

// EnqueueJob implements Worker.
func (w *worker) EnqueueJob(candidateID uuid.UUID) {
	select {
	case w.jobQueue <- candidateID:
		w.logger.Debug("job enqueued", zap.String("candidate_id", candidateID.String()))
	case <-w.stopChan:
		w.logger.Warn("worker stopped, dropping job", zap.String("candidate_id", candidateID.String()))
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			w.logger.Debug("worker stopped", zap.Int("worker_id", workerID))
			return
		case candidateID := <-w.jobQueue:
			w.logger.Info("processing screening job",
				zap.Int("worker_id", workerID),
				zap.String("candidate_id", candidateID.String()),
			)
			if err := w.screening.ScreenCandidate(ctx, candidateID); err != nil {
				w.logger.Error("screening job failed",
					zap.Int("worker_id", workerID),
					zap.String("candidate_id", candidateID.String()),
					zap.Error(err),
				)
			}
		}
	}
}

// pollPendingJobs re-enqueues candidates that are still queued, picking up
// jobs lost to a restart.
func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			pendingJobs, err := w.candidateRepo.FindPendingJobs(10)
			if err != nil {
				w.logger.Warn("failed to fetch pending jobs", zap.Error(err))
				continue
			}

			if len(pendingJobs) > 0 {
				w.logger.Info("found pending jobs", zap.Int("count", len(pendingJobs)))
			}
			for _, job := range pendingJobs {
				w.EnqueueJob(job.ID)
			}
		}
	}
}
