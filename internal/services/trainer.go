package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/ml"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/training"
)

// ErrTrainingBusy is returned when a training run is already in flight.
// Runs are serialized: artifacts share one registry namespace.
var ErrTrainingBusy = fmt.Errorf("a training run is already in progress")

type TrainerService interface {
	// StartRun launches a training run in the background and returns its
	// ID, or ErrTrainingBusy when one is already running.
	StartRun(req *models.TrainRequest) (uuid.UUID, error)
	GetRun(id uuid.UUID) (*models.TrainingRun, error)
}

type trainerService struct {
	runRepo  repositories.TrainingRunRepository
	store    *ml.ArtifactStore
	registry *ml.Registry
	defaults training.Config
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
}

func NewTrainerService(
	runRepo repositories.TrainingRunRepository,
	store *ml.ArtifactStore,
	registry *ml.Registry,
	defaults training.Config,
	logger *zap.Logger,
) TrainerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &trainerService{
		runRepo:  runRepo,
		store:    store,
		registry: registry,
		defaults: defaults,
		logger:   logger,
	}
}

// StartRun implements TrainerService.
func (t *trainerService) StartRun(req *models.TrainRequest) (uuid.UUID, error) {
	cfg := t.applyOverrides(req)

	// Validate before taking the run slot so a bad request never blocks
	// a later good one.
	orchestrator, err := training.NewOrchestrator(cfg, t.store, t.registry, t.logger)
	if err != nil {
		return uuid.Nil, err
	}

	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return uuid.Nil, ErrTrainingBusy
	}
	t.running = true
	t.mu.Unlock()

	cfgJSON, _ := json.Marshal(cfg)
	run := &models.TrainingRun{
		ID:          uuid.New(),
		DatasetPath: req.DatasetPath,
		Status:      models.StatusQueued,
		Stage:       string(training.StageLoad),
		Config:      string(cfgJSON),
	}
	if err := t.runRepo.Create(run); err != nil {
		t.release()
		return uuid.Nil, err
	}

	go t.execute(orchestrator, run.ID, req.DatasetPath)
	return run.ID, nil
}

// GetRun implements TrainerService.
func (t *trainerService) GetRun(id uuid.UUID) (*models.TrainingRun, error) {
	return t.runRepo.FindByID(id)
}

func (t *trainerService) execute(orchestrator *training.Orchestrator, runID uuid.UUID, datasetPath string) {
	defer t.release()

	if err := t.runRepo.UpdateStage(runID, models.StatusProcessing, string(training.StageLoad)); err != nil {
		t.logger.Warn("failed to mark run processing", zap.String("run_id", runID.String()), zap.Error(err))
	}

	report, err := orchestrator.Run(context.Background(), datasetPath)

	stage := string(training.StageLoad)
	var reportJSON string
	if report != nil {
		stage = string(report.Stage)
		if encoded, encErr := json.Marshal(report); encErr == nil {
			reportJSON = string(encoded)
		}
	}

	if err != nil {
		t.logger.Error("training run failed",
			zap.String("run_id", runID.String()),
			zap.String("stage", stage),
			zap.Error(err),
		)
		if reportJSON != "" {
			if dbErr := t.runRepo.UpdateReport(runID, models.StatusFailed, stage, reportJSON); dbErr == nil {
				t.runRepo.UpdateError(runID, stage, err.Error())
				return
			}
		}
		t.runRepo.UpdateError(runID, stage, err.Error())
		return
	}

	if dbErr := t.runRepo.UpdateReport(runID, models.StatusCompleted, stage, reportJSON); dbErr != nil {
		t.logger.Error("failed to persist run report", zap.String("run_id", runID.String()), zap.Error(dbErr))
	}
	t.logger.Info("training run completed", zap.String("run_id", runID.String()))
}

func (t *trainerService) release() {
	t.mu.Lock()
	t.running = false
	t.mu.Unlock()
}

func (t *trainerService) applyOverrides(req *models.TrainRequest) training.Config {
	cfg := t.defaults
	if req.Epochs > 0 {
		cfg.Epochs = req.Epochs
	}
	if req.BatchSize > 0 {
		cfg.BatchSize = req.BatchSize
	}
	if req.LearningRate > 0 {
		cfg.LearningRate = req.LearningRate
	}
	if req.ModelFamily != "" {
		cfg.ModelFamily = ml.ModelFamily(req.ModelFamily)
	}
	if req.AugmentationFraction > 0 {
		cfg.AugmentationFraction = req.AugmentationFraction
	}
	if req.Seed != 0 {
		cfg.Seed = req.Seed
	}
	return cfg
}
