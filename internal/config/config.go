package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"alfredoptarigan/resume-screener/internal/scoring"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Qdrant   QdrantConfig
	Gemini   GeminiConfig
	Models   ModelsConfig
	Scoring  ScoringConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Enabled    bool
}

type GeminiConfig struct {
	APIKey string
}

type ModelsConfig struct {
	// ArtifactDir holds the versioned model artifacts.
	ArtifactDir string
	// VocabularyPath optionally overrides the built-in skills catalog.
	VocabularyPath string
	EmbeddingDim   int
}

type ScoringConfig struct {
	Weights scoring.Weights
}

type WorkerConfig struct {
	Concurrency      int
	RetryMaxAttempts int
}

// Load reads the environment (and an optional .env file) into a validated
// Config. Invalid scoring weights fail startup rather than skewing every
// score afterwards.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_screener"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "talent_index"),
			Enabled:    getEnvAsBool("QDRANT_ENABLED", true),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
		},
		Models: ModelsConfig{
			ArtifactDir:    getEnv("MODEL_ARTIFACT_DIR", "./artifacts"),
			VocabularyPath: getEnv("SKILL_VOCABULARY_PATH", ""),
			EmbeddingDim:   getEnvAsInt("EMBEDDING_DIM", 256),
		},
		Scoring: ScoringConfig{
			Weights: scoring.Weights{
				Similarity: getEnvAsFloat("WEIGHT_SIMILARITY", 0.6),
				SkillMatch: getEnvAsFloat("WEIGHT_SKILL_MATCH", 0.3),
				Experience: getEnvAsFloat("WEIGHT_EXPERIENCE", 0.1),
			},
		},
		Worker: WorkerConfig{
			Concurrency:      getEnvAsInt("WORKER_CONCURRENCY", 3),
			RetryMaxAttempts: getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
		},
	}

	if err := cfg.Scoring.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring configuration: %w", err)
	}
	if cfg.Models.EmbeddingDim < 1 {
		return nil, fmt.Errorf("EMBEDDING_DIM must be positive, got %d", cfg.Models.EmbeddingDim)
	}
	if cfg.Worker.Concurrency < 1 {
		return nil, fmt.Errorf("WORKER_CONCURRENCY must be positive, got %d", cfg.Worker.Concurrency)
	}

	return cfg, nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
