package training

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/ml"
)

// Stage names the sequential steps of a training run. Stages are hard
// barriers: each starts only after the previous one completed for the
// whole dataset.
type Stage string

const (
	StageLoad            Stage = "load"
	StageSplit           Stage = "split"
	StageAugment         Stage = "augment"
	StageTrainSimilarity Stage = "train_similarity"
	StageTrainClassifier Stage = "train_classifier"
	StageEvaluate        Stage = "evaluate"
	StagePersist         Stage = "persist"
	StageDone            Stage = "done"
)

// SimilaritySummary is the reportable slice of a fine-tuning result.
type SimilaritySummary struct {
	BestScore    float64   `json:"best_score"`
	EpochScores  []float64 `json:"epoch_scores"`
	EpochsRun    int       `json:"epochs_run"`
	StoppedEarly bool      `json:"stopped_early"`
}

// Report accumulates everything a run produced. On failure it is returned
// alongside the error so completed-stage outputs stay visible for
// diagnostics.
type Report struct {
	Stage         Stage                `json:"stage"`
	SkippedRows   int                  `json:"skipped_rows"`
	AugmentedRows int                  `json:"augmented_rows"`
	SplitSizes    map[string]int       `json:"split_sizes,omitempty"`
	Similarity    *SimilaritySummary   `json:"similarity,omitempty"`
	Selection     *ml.SelectionResult  `json:"selection,omitempty"`
	Evaluation    *ml.EvaluationReport `json:"evaluation,omitempty"`
	ArtifactPaths map[string]string    `json:"artifact_paths,omitempty"`
}

// Orchestrator owns one training run: Load → Split → Augment →
// TrainSimilarity → TrainClassifier → Evaluate → Persist. It is a
// single sequential job; callers serialize runs against one artifact
// namespace.
type Orchestrator struct {
	cfg      Config
	store    *ml.ArtifactStore
	registry *ml.Registry
	logger   *zap.Logger
}

// NewOrchestrator validates the configuration up front; no stage starts
// with a bad config.
func NewOrchestrator(cfg Config, store *ml.ArtifactStore, registry *ml.Registry, logger *zap.Logger) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("%w: artifact store is required", ml.ErrConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{cfg: cfg, store: store, registry: registry, logger: logger}, nil
}

// Run executes the full pipeline against the dataset at path. Artifacts
// become visible to the scoring path only at the Persist stage.
func (o *Orchestrator) Run(ctx context.Context, datasetPath string) (*Report, error) {
	report := &Report{Stage: StageLoad, ArtifactPaths: map[string]string{}}

	// Load
	o.logger.Info("loading dataset", zap.String("path", datasetPath))
	ds, err := LoadCSV(datasetPath)
	if err != nil {
		return report, err
	}
	report.SkippedRows = ds.SkippedRows
	o.logger.Info("dataset loaded",
		zap.Int("rows", len(ds.Rows)),
		zap.Int("skipped", ds.SkippedRows),
	)

	// Split
	if err := o.barrier(ctx, report, StageSplit); err != nil {
		return report, err
	}
	split := StratifiedSplit(ds.Rows, o.cfg.SplitRatios, o.cfg.Seed)
	report.SplitSizes = map[string]int{
		"train":      len(split.Train),
		"validation": len(split.Validation),
		"test":       len(split.Test),
	}
	for name, size := range report.SplitSizes {
		if size < o.cfg.MinExamplesPerSplit {
			return report, fmt.Errorf("%w: %s split has %d examples, need at least %d",
				ml.ErrDataQuality, name, size, o.cfg.MinExamplesPerSplit)
		}
	}
	o.logger.Info("dataset split",
		zap.Int("train", len(split.Train)),
		zap.Int("validation", len(split.Validation)),
		zap.Int("test", len(split.Test)),
	)

	// Augment (train split only)
	if err := o.barrier(ctx, report, StageAugment); err != nil {
		return report, err
	}
	if o.cfg.AugmentationFraction > 0 {
		synthetic := Augment(split.Train, o.cfg.AugmentationFraction, o.cfg.Seed)
		split.Train = append(split.Train, synthetic...)
		report.AugmentedRows = len(synthetic)
		o.logger.Info("training split augmented",
			zap.Int("synthetic", len(synthetic)),
			zap.Int("train_total", len(split.Train)),
		)
	}

	// TrainSimilarity
	if err := o.barrier(ctx, report, StageTrainSimilarity); err != nil {
		return report, err
	}
	embedder, err := o.trainSimilarity(split, report)
	if err != nil {
		return report, err
	}

	// TrainClassifier
	if err := o.barrier(ctx, report, StageTrainClassifier); err != nil {
		return report, err
	}
	selection, err := o.trainClassifier(embedder, split, report)
	if err != nil {
		return report, err
	}

	// Evaluate on the untouched test split only. These numbers are
	// reporting-only and never feed back into selection.
	if err := o.barrier(ctx, report, StageEvaluate); err != nil {
		return report, err
	}
	report.Evaluation = o.evaluate(embedder, selection.Model, split.Test)
	o.logger.Info("held-out evaluation",
		zap.Float64("classifier_accuracy", report.Evaluation.Classifier.Accuracy),
		zap.Float64("similarity_pearson", report.Evaluation.SimilarityPearson),
	)

	// Persist. The registry swap is the only point where new artifacts
	// become visible to the scoring path.
	if err := o.barrier(ctx, report, StagePersist); err != nil {
		return report, err
	}
	if err := o.persist(embedder, selection, report); err != nil {
		return report, err
	}

	report.Stage = StageDone
	o.logger.Info("training run complete")
	return report, nil
}

func (o *Orchestrator) barrier(ctx context.Context, report *Report, next Stage) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("training run canceled before %s: %w", next, err)
	}
	report.Stage = next
	return nil
}

func (o *Orchestrator) trainSimilarity(split *Split, report *Report) (*ml.Embedder, error) {
	o.logger.Info("training similarity model",
		zap.Int("epochs", o.cfg.Epochs),
		zap.Int("batch_size", o.cfg.BatchSize),
	)

	result, err := ml.NewEmbedder(o.cfg.EmbeddingDim).FineTune(
		toPairs(split.Train),
		toPairs(split.Validation),
		ml.FineTuneConfig{
			Epochs:        o.cfg.Epochs,
			BatchSize:     o.cfg.BatchSize,
			LearningRate:  o.cfg.LearningRate,
			EarlyStopping: o.cfg.EarlyStopping,
			Patience:      o.cfg.Patience,
			Seed:          o.cfg.Seed,
		},
	)
	if err != nil {
		return nil, err
	}

	report.SkippedRows += result.SkippedRows
	report.Similarity = &SimilaritySummary{
		BestScore:    result.BestScore,
		EpochScores:  result.EpochScores,
		EpochsRun:    result.EpochsRun,
		StoppedEarly: result.StoppedEarly,
	}
	o.logger.Info("similarity model trained",
		zap.Float64("best_validation_score", result.BestScore),
		zap.Int("epochs_run", result.EpochsRun),
		zap.Bool("stopped_early", result.StoppedEarly),
	)
	return result.Best, nil
}

func (o *Orchestrator) trainClassifier(embedder *ml.Embedder, split *Split, report *Report) (*ml.SelectionResult, error) {
	o.logger.Info("training category classifier", zap.String("family", string(o.cfg.ModelFamily)))

	features := make([][]float64, len(split.Train))
	labels := make([]string, len(split.Train))
	for i, row := range split.Train {
		features[i] = embedder.Embed(row.ResumeText)
		labels[i] = row.Category
	}

	selection, err := ml.FitClassifier(features, labels, ml.SelectionConfig{
		Family:          o.cfg.ModelFamily,
		Folds:           o.cfg.CVFolds,
		Seed:            o.cfg.Seed,
		CrossValidation: o.cfg.CrossValidation,
	})
	if err != nil {
		return nil, err
	}

	report.Selection = selection
	for _, score := range selection.Scores {
		o.logger.Info("cross-validation result",
			zap.String("family", string(score.Family)),
			zap.Float64("mean", score.Mean),
			zap.Float64("variance", score.Variance),
			zap.Int("failed_folds", score.FailedFolds),
		)
	}
	o.logger.Info("classifier family selected", zap.String("family", string(selection.Selected)))
	return selection, nil
}

func (o *Orchestrator) evaluate(embedder *ml.Embedder, classifier *ml.Classifier, test []Row) *ml.EvaluationReport {
	report := &ml.EvaluationReport{TestExamples: len(test)}

	features := make([][]float64, len(test))
	wantLabels := make([]string, len(test))
	predSims := make([]float64, len(test))
	wantSims := make([]float64, len(test))
	for i, row := range test {
		features[i] = embedder.Embed(row.ResumeText)
		wantLabels[i] = row.Category
		predSims[i] = embedder.Similarity(row.ResumeText, row.JobText)
		wantSims[i] = row.MatchLabel
	}

	if pred, err := classifier.PredictBatch(features); err == nil {
		report.Classifier = ml.Classification(pred, wantLabels)
	}
	report.SimilarityPearson = ml.Pearson(predSims, wantSims)
	report.SimilarityMAE = ml.MeanAbsoluteError(predSims, wantSims)
	return report
}

func (o *Orchestrator) persist(embedder *ml.Embedder, selection *ml.SelectionResult, report *Report) error {
	cfgJSON, err := json.Marshal(o.cfg)
	if err != nil {
		return fmt.Errorf("%w: encoding run config: %v", ml.ErrArtifactIO, err)
	}

	simPath, err := o.store.Save(ml.ArtifactSimilarity, embedder, ml.ArtifactMeta{
		Metric: report.Similarity.BestScore,
		Config: cfgJSON,
	})
	if err != nil {
		return err
	}
	report.ArtifactPaths[ml.ArtifactSimilarity] = simPath

	var selectionMetric float64
	for _, score := range selection.Scores {
		if score.Family == selection.Selected {
			selectionMetric = score.Mean
		}
	}
	clfPath, err := o.store.Save(ml.ArtifactClassifier, selection.Model, ml.ArtifactMeta{
		Metric: selectionMetric,
		Config: cfgJSON,
	})
	if err != nil {
		return err
	}
	report.ArtifactPaths[ml.ArtifactClassifier] = clfPath

	if o.registry != nil {
		o.registry.Publish(&ml.ModelSet{
			Embedder:   embedder,
			Classifier: selection.Model,
		})
	}

	o.logger.Info("artifacts persisted",
		zap.String("similarity", simPath),
		zap.String("classifier", clfPath),
	)
	return nil
}

func toPairs(rows []Row) []ml.Pair {
	pairs := make([]ml.Pair, len(rows))
	for i, row := range rows {
		pairs[i] = ml.Pair{ResumeText: row.ResumeText, JobText: row.JobText, Label: row.MatchLabel}
	}
	return pairs
}
