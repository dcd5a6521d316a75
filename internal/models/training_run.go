package models

import (
	"time"

	"github.com/google/uuid"
)

type TrainingRun struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DatasetPath string          `gorm:"type:text;not null" json:"dataset_path"`
	Status      ScreeningStatus `gorm:"not null;default:'queued'" json:"status"`
	Stage       string          `gorm:"type:text" json:"stage"`
	Config      string          `gorm:"type:text" json:"-"`

	// Report holds the JSON-encoded run report once the run finishes or
	// fails past the load stage.
	Report       *string `gorm:"type:text" json:"-"`
	ErrorMessage *string `gorm:"type:text" json:"error_message,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (TrainingRun) TableName() string {
	return "training_runs"
}
