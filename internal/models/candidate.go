package models

import (
	"time"

	"github.com/google/uuid"
)

type ScreeningStatus string

const (
	StatusQueued     ScreeningStatus = "queued"
	StatusProcessing ScreeningStatus = "processing"
	StatusCompleted  ScreeningStatus = "completed"
	StatusFailed     ScreeningStatus = "failed"
)

type Candidate struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name             string          `gorm:"type:text" json:"name"`
	ResumeText       string          `gorm:"type:text;not null" json:"resume_text"`
	JobTitle         string          `gorm:"type:text" json:"job_title"`
	JobDescription   string          `gorm:"type:text" json:"job_description"`
	JobExpectedYears float64         `gorm:"type:decimal(4,1)" json:"job_expected_years"`
	Status           ScreeningStatus `gorm:"not null;default:'queued'" json:"status"`

	SimilarityScore *float64 `gorm:"type:decimal(4,1)" json:"similarity_score,omitempty"`
	SkillMatchScore *float64 `gorm:"type:decimal(4,1)" json:"skill_match_score,omitempty"`
	ExperienceScore *float64 `gorm:"type:decimal(4,1)" json:"experience_score,omitempty"`
	TotalScore      *float64 `gorm:"type:decimal(4,1)" json:"total_ai_score,omitempty"`
	FitCategory     *string  `gorm:"type:text" json:"fit_category,omitempty"`
	JobCategory     *string  `gorm:"type:text" json:"job_category,omitempty"`
	MissingSkills   *string  `gorm:"type:text" json:"-"`
	ExperienceYears *float64 `gorm:"type:decimal(4,1)" json:"experience_years,omitempty"`
	Summary         *string  `gorm:"type:text" json:"summary,omitempty"`
	ErrorMessage    *string  `gorm:"type:text" json:"error_message,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Candidate) TableName() string {
	return "candidates"
}
