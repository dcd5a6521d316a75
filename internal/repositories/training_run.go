package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-screener/internal/models"
)

type TrainingRunRepository interface {
	Create(run *models.TrainingRun) error
	FindByID(id uuid.UUID) (*models.TrainingRun, error)
	UpdateStage(id uuid.UUID, status models.ScreeningStatus, stage string) error
	UpdateReport(id uuid.UUID, status models.ScreeningStatus, stage string, reportJSON string) error
	UpdateError(id uuid.UUID, stage string, errorMsg string) error
}

type trainingRunRepository struct {
	db *gorm.DB
}

func NewTrainingRunRepository(db *gorm.DB) TrainingRunRepository {
	return &trainingRunRepository{db: db}
}

// Create implements TrainingRunRepository.
func (r *trainingRunRepository) Create(run *models.TrainingRun) error {
	if err := r.db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to create training run: %w", err)
	}
	return nil
}

// FindByID implements TrainingRunRepository.
func (r *trainingRunRepository) FindByID(id uuid.UUID) (*models.TrainingRun, error) {
	var run models.TrainingRun
	if err := r.db.Where("id = ?", id).First(&run).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("training run not found")
		}
		return nil, fmt.Errorf("failed to find training run: %w", err)
	}
	return &run, nil
}

// UpdateStage implements TrainingRunRepository.
func (r *trainingRunRepository) UpdateStage(id uuid.UUID, status models.ScreeningStatus, stage string) error {
	return r.update(id, map[string]interface{}{
		"status":     status,
		"stage":      stage,
		"updated_at": time.Now(),
	})
}

// UpdateReport implements TrainingRunRepository.
func (r *trainingRunRepository) UpdateReport(id uuid.UUID, status models.ScreeningStatus, stage string, reportJSON string) error {
	return r.update(id, map[string]interface{}{
		"status":     status,
		"stage":      stage,
		"report":     reportJSON,
		"updated_at": time.Now(),
	})
}

// UpdateError implements TrainingRunRepository.
func (r *trainingRunRepository) UpdateError(id uuid.UUID, stage string, errorMsg string) error {
	return r.update(id, map[string]interface{}{
		"status":        models.StatusFailed,
		"stage":         stage,
		"error_message": errorMsg,
		"updated_at":    time.Now(),
	})
}

func (r *trainingRunRepository) update(id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.Model(&models.TrainingRun{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update training run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("training run not found")
	}
	return nil
}
