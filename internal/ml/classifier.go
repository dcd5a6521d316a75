package ml

import (
	"fmt"
	"math/rand"
	"sort"
)

// ModelFamily is the closed set of candidate classifier families.
type ModelFamily string

const (
	FamilyLinear   ModelFamily = "linear"
	FamilyEnsemble ModelFamily = "ensemble"
	FamilyAuto     ModelFamily = "auto"
)

// candidateFamilies is the declaration order used both for "auto"
// evaluation and for breaking exact cross-validation ties.
var candidateFamilies = []ModelFamily{FamilyLinear, FamilyEnsemble}

func ParseFamily(s string) (ModelFamily, error) {
	switch ModelFamily(s) {
	case FamilyLinear, FamilyEnsemble, FamilyAuto:
		return ModelFamily(s), nil
	case "":
		return FamilyAuto, nil
	}
	return "", fmt.Errorf("%w: unknown model family %q", ErrConfig, s)
}

// Classifier predicts a role category from an embedding vector. Exactly one
// of the family fields is populated.
type Classifier struct {
	Family   ModelFamily    `json:"family"`
	Linear   *logisticModel `json:"linear,omitempty"`
	Ensemble *forestModel   `json:"ensemble,omitempty"`
}

// Predict returns the label for one feature vector.
func (c *Classifier) Predict(x []float64) (string, error) {
	switch {
	case c.Linear != nil:
		return c.Linear.predict(x), nil
	case c.Ensemble != nil:
		return c.Ensemble.predict(x), nil
	}
	return "", fmt.Errorf("%w: classifier has no fitted model", ErrModelFit)
}

// PredictBatch labels every vector, preserving input order. Equivalent to
// calling Predict element-wise.
func (c *Classifier) PredictBatch(xs [][]float64) ([]string, error) {
	out := make([]string, len(xs))
	for i, x := range xs {
		label, err := c.Predict(x)
		if err != nil {
			return nil, err
		}
		out[i] = label
	}
	return out, nil
}

// SelectionConfig controls model-family selection.
type SelectionConfig struct {
	Family          ModelFamily
	Folds           int
	Seed            int64
	CrossValidation bool
}

func (c SelectionConfig) withDefaults() SelectionConfig {
	if c.Family == "" {
		c.Family = FamilyAuto
	}
	if c.Folds == 0 {
		c.Folds = 5
	}
	return c
}

// FamilyScore is one candidate's cross-validation outcome.
type FamilyScore struct {
	Family      ModelFamily `json:"family"`
	Mean        float64     `json:"mean"`
	Variance    float64     `json:"variance"`
	FoldScores  []float64   `json:"fold_scores"`
	FailedFolds int         `json:"failed_folds"`
	Excluded    bool        `json:"excluded"`
}

// SelectionResult is the fitted classifier plus the evidence that selected
// it.
type SelectionResult struct {
	Selected ModelFamily   `json:"selected"`
	Scores   []FamilyScore `json:"scores"`
	Model    *Classifier   `json:"-"`
}

// FitClassifier selects a model family by stratified k-fold
// cross-validation over the training split (the same fold partition is
// reused for every candidate), then refits the winner on the full split.
func FitClassifier(features [][]float64, labels []string, cfg SelectionConfig) (*SelectionResult, error) {
	cfg = cfg.withDefaults()
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: no training features", ErrConfig)
	}
	if len(features) != len(labels) {
		return nil, fmt.Errorf("%w: %d features for %d labels", ErrConfig, len(features), len(labels))
	}
	if cfg.Folds < 2 {
		return nil, fmt.Errorf("%w: need at least 2 folds, got %d", ErrConfig, cfg.Folds)
	}

	candidates := candidateFamilies
	if cfg.Family != FamilyAuto {
		candidates = []ModelFamily{cfg.Family}
	}

	result := &SelectionResult{}
	selected := candidates[0]

	if cfg.CrossValidation && len(features) >= cfg.Folds*2 {
		folds := StratifiedFolds(labels, cfg.Folds, cfg.Seed)

		bestIdx := -1
		for fi, family := range candidates {
			score := crossValidate(family, features, labels, folds, cfg)
			result.Scores = append(result.Scores, score)
			if score.Excluded {
				continue
			}
			if bestIdx < 0 || betterFamily(score, result.Scores[bestIdx]) {
				bestIdx = fi
			}
		}
		if bestIdx < 0 {
			return nil, fmt.Errorf("%w: every candidate family failed cross-validation", ErrModelFit)
		}
		selected = candidates[bestIdx]
	}

	model, err := fitFamily(selected, features, labels, cfg.Seed)
	if err != nil {
		return nil, err
	}
	result.Selected = selected
	result.Model = model
	return result, nil
}

// betterFamily implements the deterministic preference order: higher mean,
// then lower variance, then earlier declaration (the incumbent wins ties
// because candidates are visited in declaration order).
func betterFamily(candidate, incumbent FamilyScore) bool {
	const eps = 1e-9
	if candidate.Mean > incumbent.Mean+eps {
		return true
	}
	if candidate.Mean < incumbent.Mean-eps {
		return false
	}
	return candidate.Variance < incumbent.Variance-eps
}

func crossValidate(family ModelFamily, features [][]float64, labels []string, folds []int, cfg SelectionConfig) FamilyScore {
	score := FamilyScore{Family: family}

	for fold := 0; fold < cfg.Folds; fold++ {
		var trainX [][]float64
		var trainY []string
		var testX [][]float64
		var testY []string
		for i, f := range folds {
			if f == fold {
				testX = append(testX, features[i])
				testY = append(testY, labels[i])
			} else {
				trainX = append(trainX, features[i])
				trainY = append(trainY, labels[i])
			}
		}
		if len(trainX) == 0 || len(testX) == 0 {
			score.FailedFolds++
			continue
		}

		model, err := fitFamily(family, trainX, trainY, cfg.Seed)
		if err != nil {
			// A single failed fold drops out of the mean; the family
			// survives unless every fold fails.
			score.FailedFolds++
			continue
		}
		pred, err := model.PredictBatch(testX)
		if err != nil {
			score.FailedFolds++
			continue
		}
		correct := 0
		for i := range pred {
			if pred[i] == testY[i] {
				correct++
			}
		}
		score.FoldScores = append(score.FoldScores, float64(correct)/float64(len(testY)))
	}

	if len(score.FoldScores) == 0 {
		score.Excluded = true
		return score
	}

	var sum float64
	for _, s := range score.FoldScores {
		sum += s
	}
	score.Mean = sum / float64(len(score.FoldScores))
	var varsum float64
	for _, s := range score.FoldScores {
		varsum += (s - score.Mean) * (s - score.Mean)
	}
	score.Variance = varsum / float64(len(score.FoldScores))
	return score
}

func fitFamily(family ModelFamily, features [][]float64, labels []string, seed int64) (*Classifier, error) {
	switch family {
	case FamilyLinear:
		m, err := trainLogistic(features, labels)
		if err != nil {
			return nil, err
		}
		return &Classifier{Family: FamilyLinear, Linear: m}, nil
	case FamilyEnsemble:
		m, err := trainForest(features, labels, seed)
		if err != nil {
			return nil, err
		}
		return &Classifier{Family: FamilyEnsemble, Ensemble: m}, nil
	}
	return nil, fmt.Errorf("%w: cannot fit family %q", ErrConfig, family)
}

// StratifiedFolds assigns every row to one of k folds so that each fold
// preserves the label proportions (±1 per label for remainders). The
// assignment is deterministic for a fixed seed.
func StratifiedFolds(labels []string, k int, seed int64) []int {
	byLabel := map[string][]int{}
	for i, l := range labels {
		byLabel[l] = append(byLabel[l], i)
	}

	names := make([]string, 0, len(byLabel))
	for l := range byLabel {
		names = append(names, l)
	}
	sort.Strings(names)

	rng := rand.New(rand.NewSource(seed))
	folds := make([]int, len(labels))
	next := 0
	for _, l := range names {
		group := byLabel[l]
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
		for _, idx := range group {
			folds[idx] = next % k
			next++
		}
	}
	return folds
}
