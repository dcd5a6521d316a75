package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-screener/internal/models"
)

type CandidateRepository interface {
	Create(candidate *models.Candidate) error
	FindByID(id uuid.UUID) (*models.Candidate, error)
	UpdateStatus(id uuid.UUID, status models.ScreeningStatus) error
	UpdateResult(id uuid.UUID, result *CandidateResultData) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPendingJobs(limit int) ([]models.Candidate, error)
}

type CandidateResultData struct {
	SimilarityScore *float64
	SkillMatchScore *float64
	ExperienceScore *float64
	TotalScore      *float64
	FitCategory     *string
	JobCategory     *string
	MissingSkills   *string
	ExperienceYears *float64
	Summary         *string
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

// Create implements CandidateRepository.
func (r *candidateRepository) Create(candidate *models.Candidate) error {
	if err := r.db.Create(candidate).Error; err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

// FindByID implements CandidateRepository.
func (r *candidateRepository) FindByID(id uuid.UUID) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := r.db.Where("id = ?", id).First(&candidate).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("candidate not found")
		}
		return nil, fmt.Errorf("failed to find candidate: %w", err)
	}
	return &candidate, nil
}

// UpdateStatus implements CandidateRepository.
func (r *candidateRepository) UpdateStatus(id uuid.UUID, status models.ScreeningStatus) error {
	result := r.db.Model(&models.Candidate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("candidate not found")
	}
	return nil
}

// UpdateResult implements CandidateRepository.
func (r *candidateRepository) UpdateResult(id uuid.UUID, data *CandidateResultData) error {
	updates := map[string]interface{}{
		"status":     models.StatusCompleted,
		"updated_at": time.Now(),
	}

	if data.SimilarityScore != nil {
		updates["similarity_score"] = *data.SimilarityScore
	}
	if data.SkillMatchScore != nil {
		updates["skill_match_score"] = *data.SkillMatchScore
	}
	if data.ExperienceScore != nil {
		updates["experience_score"] = *data.ExperienceScore
	}
	if data.TotalScore != nil {
		updates["total_score"] = *data.TotalScore
	}
	if data.FitCategory != nil {
		updates["fit_category"] = *data.FitCategory
	}
	if data.JobCategory != nil {
		updates["job_category"] = *data.JobCategory
	}
	if data.MissingSkills != nil {
		updates["missing_skills"] = *data.MissingSkills
	}
	if data.ExperienceYears != nil {
		updates["experience_years"] = *data.ExperienceYears
	}
	if data.Summary != nil {
		updates["summary"] = *data.Summary
	}

	result := r.db.Model(&models.Candidate{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update result: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("candidate not found")
	}
	return nil
}

// UpdateError implements CandidateRepository.
func (r *candidateRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	result := r.db.Model(&models.Candidate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.StatusFailed,
			"error_message": errorMsg,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update error: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("candidate not found")
	}
	return nil
}

// FindPendingJobs implements CandidateRepository.
func (r *candidateRepository) FindPendingJobs(limit int) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := r.db.
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&candidates).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}
	return candidates, nil
}
