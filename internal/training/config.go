package training

import (
	"fmt"
	"math"

	"alfredoptarigan/resume-screener/internal/ml"
)

// SplitRatios divide the dataset into train/validation/test. They must sum
// to 1.
type SplitRatios struct {
	Train      float64 `json:"train"`
	Validation float64 `json:"validation"`
	Test       float64 `json:"test"`
}

// Config is the full, typed training configuration. It is validated once
// at orchestrator entry; stages assume a valid config.
type Config struct {
	Epochs               int            `json:"epochs"`
	BatchSize            int            `json:"batch_size"`
	LearningRate         float64        `json:"learning_rate"`
	ModelFamily          ml.ModelFamily `json:"model_family"`
	EarlyStopping        bool           `json:"early_stopping"`
	Patience             int            `json:"patience"`
	CrossValidation      bool           `json:"cross_validation"`
	CVFolds              int            `json:"cv_folds"`
	AugmentationFraction float64        `json:"augmentation_fraction"`
	SplitRatios          SplitRatios    `json:"split_ratios"`
	Seed                 int64          `json:"seed"`
	EmbeddingDim         int            `json:"embedding_dim"`

	// MinExamplesPerSplit is the minimal viable split size; a run aborts
	// when any split falls below it.
	MinExamplesPerSplit int `json:"min_examples_per_split"`
}

// DefaultConfig mirrors the defaults of the original training script.
func DefaultConfig() Config {
	return Config{
		Epochs:               5,
		BatchSize:            16,
		LearningRate:         0.05,
		ModelFamily:          ml.FamilyAuto,
		EarlyStopping:        true,
		Patience:             3,
		CrossValidation:      true,
		CVFolds:              5,
		AugmentationFraction: 0.1,
		SplitRatios:          SplitRatios{Train: 0.70, Validation: 0.15, Test: 0.15},
		Seed:                 42,
		EmbeddingDim:         ml.DefaultDim,
		MinExamplesPerSplit:  3,
	}
}

func (c Config) Validate() error {
	if c.Epochs < 1 {
		return fmt.Errorf("%w: epochs must be positive, got %d", ml.ErrConfig, c.Epochs)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("%w: batch_size must be positive, got %d", ml.ErrConfig, c.BatchSize)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("%w: learning_rate must be positive, got %g", ml.ErrConfig, c.LearningRate)
	}
	if _, err := ml.ParseFamily(string(c.ModelFamily)); err != nil {
		return err
	}
	if c.Patience < 1 {
		return fmt.Errorf("%w: patience must be positive, got %d", ml.ErrConfig, c.Patience)
	}
	if c.CVFolds < 2 {
		return fmt.Errorf("%w: cv_folds must be at least 2, got %d", ml.ErrConfig, c.CVFolds)
	}
	if c.AugmentationFraction < 0 || c.AugmentationFraction > 1 {
		return fmt.Errorf("%w: augmentation_fraction must be in [0,1], got %g", ml.ErrConfig, c.AugmentationFraction)
	}
	r := c.SplitRatios
	if r.Train <= 0 || r.Validation <= 0 || r.Test <= 0 {
		return fmt.Errorf("%w: split ratios must all be positive, got %+v", ml.ErrConfig, r)
	}
	if sum := r.Train + r.Validation + r.Test; math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("%w: split ratios must sum to 1.0, got %g", ml.ErrConfig, sum)
	}
	if c.EmbeddingDim < 1 {
		return fmt.Errorf("%w: embedding_dim must be positive, got %d", ml.ErrConfig, c.EmbeddingDim)
	}
	if c.MinExamplesPerSplit < 1 {
		return fmt.Errorf("%w: min_examples_per_split must be positive, got %d", ml.ErrConfig, c.MinExamplesPerSplit)
	}
	return nil
}
