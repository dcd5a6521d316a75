package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/ml"
	"alfredoptarigan/resume-screener/internal/training"
)

func main() {
	defaults := training.DefaultConfig()

	var (
		dataset      = flag.String("dataset", "", "path to the labeled CSV dataset (required)")
		artifactDir  = flag.String("artifacts", "./artifacts", "directory for versioned model artifacts")
		epochs       = flag.Int("epochs", defaults.Epochs, "fine-tuning epochs")
		batchSize    = flag.Int("batch-size", defaults.BatchSize, "fine-tuning batch size")
		learningRate = flag.Float64("learning-rate", defaults.LearningRate, "fine-tuning learning rate")
		family       = flag.String("model-family", string(defaults.ModelFamily), "classifier family: linear, ensemble or auto")
		noEarlyStop  = flag.Bool("no-early-stopping", false, "disable early stopping")
		patience     = flag.Int("patience", defaults.Patience, "early stopping patience in epochs")
		noCV         = flag.Bool("no-cv", false, "disable cross-validated family selection")
		folds        = flag.Int("cv-folds", defaults.CVFolds, "cross-validation fold count")
		augment      = flag.Float64("augment", defaults.AugmentationFraction, "augmentation fraction of the training split")
		seed         = flag.Int64("seed", defaults.Seed, "random seed")
		dim          = flag.Int("embedding-dim", defaults.EmbeddingDim, "embedding dimensionality")
		jsonLog      = flag.Bool("json-log", false, "emit JSON logs")
	)
	flag.Parse()

	if *dataset == "" {
		fmt.Fprintln(os.Stderr, "usage: train -dataset <path.csv> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	log, err := logger.New(*jsonLog, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := defaults
	cfg.Epochs = *epochs
	cfg.BatchSize = *batchSize
	cfg.LearningRate = *learningRate
	cfg.ModelFamily = ml.ModelFamily(*family)
	cfg.EarlyStopping = !*noEarlyStop
	cfg.Patience = *patience
	cfg.CrossValidation = !*noCV
	cfg.CVFolds = *folds
	cfg.AugmentationFraction = *augment
	cfg.Seed = *seed
	cfg.EmbeddingDim = *dim

	store := ml.NewArtifactStore(*artifactDir)
	orchestrator, err := training.NewOrchestrator(cfg, store, nil, log)
	if err != nil {
		log.Fatal("invalid training configuration", zap.Error(err))
	}

	report, runErr := orchestrator.Run(context.Background(), *dataset)
	if report != nil {
		if encoded, err := json.MarshalIndent(report, "", "  "); err == nil {
			fmt.Println(string(encoded))
		}
	}
	if runErr != nil {
		log.Fatal("training run failed", zap.Error(runErr))
	}
}
