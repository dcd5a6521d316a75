package models

type ScreenRequest struct {
	ResumeText       string  `json:"resume_text" validate:"required"`
	JobDescription   string  `json:"job_description"`
	JobExpectedYears float64 `json:"job_expected_years"`
}

type ScreenResponse struct {
	SimilarityScore float64  `json:"similarity_score"`
	SkillMatchScore float64  `json:"skill_match_score"`
	ExperienceScore float64  `json:"experience_score"`
	TotalScore      float64  `json:"total_ai_score"`
	Category        string   `json:"category"`
	MissingSkills   []string `json:"missing_skills"`
	Skills          []string `json:"skills"`
	ExperienceYears float64  `json:"experience_years"`
	JobCategory     string   `json:"job_category,omitempty"`
}

type CreateCandidateRequest struct {
	Name             string  `json:"name"`
	ResumeText       string  `json:"resume_text" validate:"required"`
	JobTitle         string  `json:"job_title"`
	JobDescription   string  `json:"job_description"`
	JobExpectedYears float64 `json:"job_expected_years"`
}

type CreateCandidateResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type CandidateResultResponse struct {
	ID           string         `json:"id"`
	Name         string         `json:"name,omitempty"`
	JobTitle     string         `json:"job_title,omitempty"`
	Status       string         `json:"status"`
	Result       *ScreeningData `json:"result,omitempty"`
	ErrorMessage *string        `json:"error_message,omitempty"`
}

type ScreeningData struct {
	SimilarityScore float64  `json:"similarity_score"`
	SkillMatchScore float64  `json:"skill_match_score"`
	ExperienceScore float64  `json:"experience_score"`
	TotalScore      float64  `json:"total_ai_score"`
	Category        string   `json:"category"`
	JobCategory     string   `json:"job_category,omitempty"`
	MissingSkills   []string `json:"missing_skills"`
	ExperienceYears float64  `json:"experience_years"`
	Summary         string   `json:"summary,omitempty"`
}

type SimilarCandidate struct {
	ID       string  `json:"id"`
	Name     string  `json:"name,omitempty"`
	JobTitle string  `json:"job_title,omitempty"`
	Score    float32 `json:"score"`
}

type TrainRequest struct {
	DatasetPath string `json:"dataset_path" validate:"required"`

	// Optional overrides; zero values fall back to the configured
	// training defaults.
	Epochs               int     `json:"epochs"`
	BatchSize            int     `json:"batch_size"`
	LearningRate         float64 `json:"learning_rate"`
	ModelFamily          string  `json:"model_family"`
	AugmentationFraction float64 `json:"augmentation_fraction"`
	Seed                 int64   `json:"seed"`
}

type TrainResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
